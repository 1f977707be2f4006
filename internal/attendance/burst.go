package attendance

import (
	"time"

	"github.com/Tiliavir/shiftlog/internal/model"
)

// Consolidate merges swipes of the same person that are at most threshold
// apart. events must be ordered by person, then timestamp. merged counts the
// swipes folded into an existing burst.
func Consolidate(events []model.SwipeEvent, threshold time.Duration) (bursts []model.Burst, merged int) {
	for i, e := range events {
		if i > 0 && e.PersonID == events[i-1].PersonID && e.Timestamp.Sub(events[i-1].Timestamp) <= threshold {
			cur := &bursts[len(bursts)-1]
			cur.End = e.Timestamp
			cur.Swipes++
			merged++
			continue
		}
		bursts = append(bursts, model.Burst{
			PersonID:   e.PersonID,
			PersonName: e.PersonName,
			Start:      e.Timestamp,
			End:        e.Timestamp,
			Swipes:     1,
		})
	}
	return bursts, merged
}

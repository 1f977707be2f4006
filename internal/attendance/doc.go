// Package attendance reconstructs per-shift attendance records from a flat
// stream of swipe events.
//
// The pipeline is pure: it merges near-duplicate swipes into bursts, walks
// each person's bursts to cut them into shift instances, then extracts
// check-in, check-out and break times from every instance and classifies
// them as on time or late.
package attendance

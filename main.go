package main

import "github.com/Tiliavir/shiftlog/cmd"

func main() {
	cmd.Execute()
}

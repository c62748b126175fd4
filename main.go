package main

import "github.com/mpapenbr/racetracker-store/cmd"

func main() {
	cmd.Execute()
}

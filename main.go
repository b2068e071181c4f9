package main

import "github.com/mpapenbr/race-strategy-sim/cmd"

func main() {
	cmd.Execute()
}

// Package main is the entry point of the ddr4stim command.
package main

import (
	"github.com/tebeka/atexit"

	"github.com/sarchlab/ddr4stim/ddr4stim/cmd"
)

func main() {
	cmd.Execute()
	atexit.Exit(0)
}

// Package main provides the entry point for sst88.
// sst88 turns the 8088 single-step tests into fixtures for the emulator
// test harness and filters them back down from harness logs.
//
// The tools live under cmd/: go run ./cmd/gentests, ./cmd/dumptests and
// ./cmd/fixturecheck.
package main

import (
	"fmt"
	"os"
)

func main() {
	fmt.Println("sst88 - 8088 single-step test fixtures")
	fmt.Println("")
	fmt.Println("Tools:")
	fmt.Println("  gentests      Generate opcode-<op>.dat fixtures from ProcessorTests/8088/v1")
	fmt.Println("  dumptests     Extract the records named in a harness log (log on stdin)")
	fmt.Println("  fixturecheck  Count records and report duplicate identifiers")
	fmt.Println("")
	fmt.Println("Run 'go run ./cmd/<tool> --help' for details.")

	if len(os.Args) > 1 {
		fmt.Println("\nNote: You provided arguments. Use one of the tools under ./cmd instead.")
	}
}

// Command goba-graph loads a ROM, runs it for a handful of frames, and
// dumps a bradleyjkemp/memviz graph of the resulting save-state snapshot
// to a .dot file -- a debugging aid for inspecting cross references in
// the emulator's in-memory state without a full GUI debugger.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/bradleyjkemp/memviz"

	"github.com/ljsdev/goba"
)

const cyclesPerFrame = 280896

func main() {
	romPath := flag.String("rom", "", "path to a GBA ROM image")
	frames := flag.Int("frames", 10, "number of frames to run before graphing")
	outPath := flag.String("out", "goba.dot", "output .dot file path")
	flag.Parse()

	if *romPath == "" {
		fmt.Fprintln(os.Stderr, "usage: goba-graph -rom game.gba [-frames N] [-out goba.dot]")
		os.Exit(2)
	}

	machine := goba.New()
	rom, err := os.ReadFile(*romPath)
	must(err)
	must(machine.LoadROM(rom))

	for i := 0; i < *frames; i++ {
		machine.Run(cyclesPerFrame)
	}

	state := machine.SaveState()

	f, err := os.Create(*outPath)
	must(err)
	defer f.Close()

	memviz.Map(f, &state)
	fmt.Println("wrote", *outPath)
}

func must(err error) {
	if err != nil {
		fmt.Fprintln(os.Stderr, "goba-graph:", err)
		os.Exit(1)
	}
}

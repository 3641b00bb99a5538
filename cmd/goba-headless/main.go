// Command goba-headless runs a ROM for a fixed number of frames with no
// video output, dumping captured audio to a WAV file and printing a
// frame digest -- the automation entry point for spec.md §8's end-to-end
// scenarios.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/ljsdev/goba"
	"github.com/ljsdev/goba/internal/digest"
	"github.com/ljsdev/goba/internal/host/audiodump"
	"github.com/ljsdev/goba/internal/ppu"
)

const cyclesPerFrame = 280896 // (960+272)*228, one full frame at the native clock

func main() {
	romPath := flag.String("rom", "", "path to a GBA ROM image")
	biosPath := flag.String("bios", "", "path to a 16KiB BIOS image")
	frames := flag.Int("frames", 60, "number of frames to run")
	wavPath := flag.String("wav", "", "optional path to write captured audio as WAV")
	flag.Parse()

	if *romPath == "" {
		fmt.Fprintln(os.Stderr, "usage: goba-headless -rom game.gba [-bios bios.bin] [-frames N] [-wav out.wav]")
		os.Exit(2)
	}

	machine := goba.New()

	if *biosPath != "" {
		bios, err := os.ReadFile(*biosPath)
		must(err)
		must(machine.LoadBIOS(bios))
	}

	rom, err := os.ReadFile(*romPath)
	must(err)
	must(machine.LoadROM(rom))

	var recorder *audiodump.Recorder
	if *wavPath != "" {
		f, err := os.Create(*wavPath)
		must(err)
		defer f.Close()
		recorder = audiodump.NewRecorder(f)
		machine.SetAudioFunc(recorder.SampleFunc())
		defer recorder.Close()
	}

	var lastFrame [ppu.ScreenWidth * ppu.ScreenHeight]uint16
	machine.SetFrameFunc(func(pixels *[ppu.ScreenWidth * ppu.ScreenHeight]uint16) {
		lastFrame = *pixels
	})

	for i := 0; i < *frames; i++ {
		machine.Run(cyclesPerFrame)
	}

	fmt.Printf("frames=%d video-digest=%#016x\n", *frames, digest.Video(lastFrame[:]))
}

func must(err error) {
	if err != nil {
		fmt.Fprintln(os.Stderr, "goba-headless:", err)
		os.Exit(1)
	}
}

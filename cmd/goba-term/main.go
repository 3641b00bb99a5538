// Command goba-term is a text-mode frontend: it renders the downsampled
// framebuffer as ANSI background-colour blocks and reads raw keystrokes
// via internal/host/terminput, for running the emulator over SSH or in a
// plain terminal with no GL/SDL dependency.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/ljsdev/goba"
	"github.com/ljsdev/goba/internal/host/terminput"
	"github.com/ljsdev/goba/internal/ppu"
)

const cyclesPerFrame = 280896

var keyBytes = map[byte]goba.Key{
	'x': goba.KeyA,
	'z': goba.KeyB,
	'\r': goba.KeyStart,
	' ': goba.KeySelect,
	'w': goba.KeyUp,
	's': goba.KeyDown,
	'a': goba.KeyLeft,
	'd': goba.KeyRight,
}

func main() {
	romPath := flag.String("rom", "", "path to a GBA ROM image")
	biosPath := flag.String("bios", "", "path to a 16KiB BIOS image")
	flag.Parse()

	if *romPath == "" {
		fmt.Fprintln(os.Stderr, "usage: goba-term -rom game.gba [-bios bios.bin]")
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

	reader, err := terminput.Open()
	must(err)
	defer reader.Close()

	cols, rows, err := terminput.WindowSize()
	if err != nil || cols == 0 {
		cols, rows = 80, 40
	}

	pressed := map[goba.Key]bool{}

	machine.SetFrameFunc(func(pixels *[ppu.ScreenWidth * ppu.ScreenHeight]uint16) {
		renderANSI(pixels, cols, rows)
	})

	go func() {
		for {
			b, err := reader.ReadByte()
			if err != nil {
				return
			}
			if k, ok := keyBytes[b]; ok {
				pressed[k] = true
			}
		}
	}()

	for {
		machine.SetKeys(pressed)
		for k := range pressed {
			pressed[k] = false
		}
		machine.Run(cyclesPerFrame)
	}
}

// renderANSI downsamples the native 240x160 frame to the terminal's
// character grid, printing one space per cell with its 24 bit background
// colour escape sequence set from the nearest source pixel.
func renderANSI(pixels *[ppu.ScreenWidth * ppu.ScreenHeight]uint16, cols, rows int) {
	if rows > 1 {
		rows--
	}
	fmt.Print("\x1b[H")
	for ty := 0; ty < rows; ty++ {
		for tx := 0; tx < cols; tx++ {
			sx := tx * ppu.ScreenWidth / cols
			sy := ty * ppu.ScreenHeight / rows
			p := pixels[sy*ppu.ScreenWidth+sx]
			r := (p & 0x1F) << 3
			g := ((p >> 5) & 0x1F) << 3
			b := ((p >> 10) & 0x1F) << 3
			fmt.Printf("\x1b[48;2;%d;%d;%dm ", r, g, b)
		}
		fmt.Print("\x1b[0m\n")
	}
}

func must(err error) {
	if err != nil {
		fmt.Fprintln(os.Stderr, "goba-term:", err)
		os.Exit(1)
	}
}

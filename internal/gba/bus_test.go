package gba

import (
	"testing"

	"github.com/ljsdev/goba/internal/membus/memorymap"
	"github.com/ljsdev/goba/internal/prefs"
)

func TestEWRAMAndIWRAMReadWriteRoundTrip(t *testing.T) {
	g := NewWithPrefs(prefs.Default())

	g.bus.Write32(memorymap.EWRAMBase+0x10, 0xDEADBEEF)
	if got := g.bus.Read32(memorymap.EWRAMBase + 0x10); got != 0xDEADBEEF {
		t.Fatalf("expected EWRAM round trip, got %#x", got)
	}

	g.bus.Write16(memorymap.IWRAMBase+0x4, 0x1234)
	if got := g.bus.Read16(memorymap.IWRAMBase + 0x4); got != 0x1234 {
		t.Fatalf("expected IWRAM round trip, got %#x", got)
	}
}

func TestPaletteByteWriteMirrorsBothHalves(t *testing.T) {
	g := NewWithPrefs(prefs.Default())

	g.bus.Write8(memorymap.PaletteBase, 0x55)
	if got := g.bus.Read16(memorymap.PaletteBase); got != 0x5555 {
		t.Fatalf("expected byte write to palette to mirror into both bytes, got %#x", got)
	}
}

func TestKeyInputDefaultsToNoneDown(t *testing.T) {
	g := NewWithPrefs(prefs.Default())
	if g.bus.keyInput != 0x3FF {
		t.Fatalf("expected all KEYINPUT bits set (no keys down) by default, got %#x", g.bus.keyInput)
	}
}

func TestSetKeysClearsPressedBits(t *testing.T) {
	g := NewWithPrefs(prefs.Default())
	g.SetKeys(map[Key]bool{KeyA: true, KeyUp: true})

	if g.bus.keyInput&(1<<KeyA) != 0 {
		t.Fatalf("expected KeyA bit cleared when pressed")
	}
	if g.bus.keyInput&(1<<KeyB) == 0 {
		t.Fatalf("expected KeyB bit still set when not pressed")
	}
}

func TestInterruptControllerWriteToClearIF(t *testing.T) {
	g := NewWithPrefs(prefs.Default())

	g.ic.Request(3) // Timer0 bit, arbitrary for this test
	if g.ic.readIF()&(1<<3) == 0 {
		t.Fatalf("expected IF bit 3 set after Request")
	}

	g.ic.writeIF(1 << 3)
	if g.ic.readIF()&(1<<3) != 0 {
		t.Fatalf("expected write-to-clear semantics to clear IF bit 3")
	}
}

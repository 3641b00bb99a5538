package memorymap_test

import (
	"testing"

	"github.com/ljsdev/goba/internal/membus/memorymap"
)

func TestDecode(t *testing.T) {
	cases := []struct {
		addr uint32
		want memorymap.Region
	}{
		{0x00000100, memorymap.RegionBIOS},
		{0x02010000, memorymap.RegionEWRAM},
		{0x03001000, memorymap.RegionIWRAM},
		{0x04000006, memorymap.RegionIO},
		{0x05000010, memorymap.RegionPalette},
		{0x06010000, memorymap.RegionVRAM},
		{0x07000010, memorymap.RegionOAM},
		{0x08000000, memorymap.RegionROM},
		{0x0A000000, memorymap.RegionROM},
		{0x0C000000, memorymap.RegionROM},
		{0x0E000000, memorymap.RegionBackup},
		// mirrors: upper 4 bits of a 32 bit address are ignored
		{0x18000000, memorymap.RegionROM},
		{0xF8000000, memorymap.RegionROM},
	}

	for _, c := range cases {
		if got := memorymap.Decode(c.addr); got != c.want {
			t.Errorf("Decode(%#08x) = %v, want %v", c.addr, got, c.want)
		}
	}
}

func TestMask28Mirrors(t *testing.T) {
	if memorymap.Mask28(0x18000000) != 0x08000000 {
		t.Fatalf("expected address to mirror modulo 2^28")
	}
}

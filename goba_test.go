package goba_test

import (
	"testing"

	"github.com/ljsdev/goba"
)

// buildROM returns a minimal, header-valid ROM image large enough to load.
func buildROM(size int) []byte {
	rom := make([]byte, size)
	copy(rom[0xA0:0xAC], "TESTGAME")
	copy(rom[0xAC:0xB0], "ABCD")
	copy(rom[0xB0:0xB2], "01")
	rom[0xB3] = 0x96

	var sum uint8
	for _, b := range rom[0xA0:0xBD] {
		sum += b
	}
	rom[0xBD] = -(uint8(0x19) + sum)
	return rom
}

func TestLoadROMAndSetKeys(t *testing.T) {
	machine := goba.New()
	if err := machine.LoadROM(buildROM(1024)); err != nil {
		t.Fatalf("unexpected error loading rom: %v", err)
	}

	machine.SetKeys(map[goba.Key]bool{goba.KeyA: true})
}

func TestSaveStateRoundTrip(t *testing.T) {
	machine := goba.New()
	if err := machine.LoadROM(buildROM(1024)); err != nil {
		t.Fatalf("unexpected error loading rom: %v", err)
	}

	state := machine.SaveState()
	if len(state) == 0 {
		t.Fatalf("expected a non-empty save state")
	}

	machine2 := goba.New()
	if err := machine2.LoadROM(buildROM(1024)); err != nil {
		t.Fatalf("unexpected error loading rom: %v", err)
	}
	if err := machine2.LoadState(state); err != nil {
		t.Fatalf("unexpected error restoring state: %v", err)
	}
}

func TestGetSaveWithNoBackupInstalledReturnsNil(t *testing.T) {
	machine := goba.New()
	if err := machine.LoadROM(buildROM(1024)); err != nil {
		t.Fatalf("unexpected error loading rom: %v", err)
	}
	if got := machine.GetSave(); got != nil {
		t.Fatalf("expected nil save data for a rom with no backup marker, got %d bytes", len(got))
	}
}

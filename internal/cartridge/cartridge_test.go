package cartridge_test

import (
	"testing"

	"github.com/ljsdev/goba/internal/cartridge"
	"github.com/ljsdev/goba/internal/cartridge/backup"
)

// buildROM returns a minimal, header-valid ROM image of the given size
// with extra bytes (e.g. a backup-type marker) appended after the header.
func buildROM(size int, title string, extra string) []byte {
	rom := make([]byte, size)
	copy(rom[0xA0:0xAC], title)
	copy(rom[0xAC:0xB0], "ABCD")
	copy(rom[0xB0:0xB2], "01")
	rom[0xB3] = 0x96

	var sum uint8
	for _, b := range rom[0xA0:0xBD] {
		sum += b
	}
	rom[0xBD] = -(uint8(0x19) + sum)

	if extra != "" {
		copy(rom[0xC0:], extra)
	}
	return rom
}

func TestLoadParsesHeaderAndDetectsBackup(t *testing.T) {
	rom := buildROM(512, "TESTGAME", "EEPROM_V100")

	c := cartridge.New()
	if err := c.Load(rom); err != nil {
		t.Fatalf("unexpected error loading rom: %v", err)
	}

	if c.Header.Title != "TESTGAME" {
		t.Fatalf("expected title TESTGAME, got %q", c.Header.Title)
	}
	if !c.Header.ChecksumOK {
		t.Fatalf("expected header checksum to validate")
	}
	if c.BackupKind != backup.KindEEPROM {
		t.Fatalf("expected EEPROM backup to be detected, got %v", c.BackupKind)
	}
}

func TestLoadRejectsUndersizedROM(t *testing.T) {
	c := cartridge.New()
	if err := c.Load(make([]byte, 10)); err == nil {
		t.Fatalf("expected an error loading an undersized rom")
	}
}

func TestReadROM16MirrorsAcrossAddressWindows(t *testing.T) {
	rom := buildROM(0x1000, "MIRRORTEST", "")
	rom[0x100] = 0x34
	rom[0x101] = 0x12

	c := cartridge.New()
	if err := c.Load(rom); err != nil {
		t.Fatalf("unexpected error loading rom: %v", err)
	}

	for _, base := range []uint32{0x08000000, 0x0A000000, 0x0C000000} {
		if got := c.ReadROM16(base + 0x100); got != 0x1234 {
			t.Fatalf("expected 0x1234 at window base %#x, got %#x", base, got)
		}
	}
}

func TestGetSaveRoundTripsThroughLoadSave(t *testing.T) {
	rom := buildROM(512, "SAVETEST", "SRAM_V100")
	c := cartridge.New()
	if err := c.Load(rom); err != nil {
		t.Fatalf("unexpected error loading rom: %v", err)
	}

	c.Backup.Write8(0x5, 0x77)
	saved := c.GetSave()

	c2 := cartridge.New()
	if err := c2.Load(rom); err != nil {
		t.Fatalf("unexpected error loading rom: %v", err)
	}
	if err := c2.LoadSave(saved); err != nil {
		t.Fatalf("unexpected error restoring save: %v", err)
	}
	if got := c2.Backup.Read8(0x5); got != 0x77 {
		t.Fatalf("expected restored save byte 0x77, got %#x", got)
	}
}

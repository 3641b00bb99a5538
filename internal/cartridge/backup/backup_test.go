package backup_test

import (
	"testing"

	"github.com/ljsdev/goba/internal/cartridge/backup"
)

func TestSRAMReadWriteRoundTrips(t *testing.T) {
	s := backup.NewSRAM()
	s.Write8(0x10, 0x42)
	if got := s.Read8(0x10); got != 0x42 {
		t.Fatalf("expected 0x42, got %#x", got)
	}

	data := s.Marshal()
	s2 := backup.NewSRAM()
	s2.Unmarshal(data)
	if got := s2.Read8(0x10); got != 0x42 {
		t.Fatalf("expected unmarshalled SRAM to preserve byte, got %#x", got)
	}
}

func TestFlashIdentityModeReportsVendorID(t *testing.T) {
	f := backup.NewFlash(64 * 1024) // 512Kbit part

	f.Write8(0x5555, 0xAA)
	f.Write8(0x2AAA, 0x55)
	f.Write8(0x5555, 0x90) // EnterId

	if got := f.Read8(0x0000); got != 0x32 {
		t.Fatalf("expected Panasonic-compatible vendor id 0x32, got %#x", got)
	}
	if got := f.Read8(0x0001); got != 0x1B {
		t.Fatalf("expected 512Kbit device id 0x1B, got %#x", got)
	}

	f.Write8(0x5555, 0xAA)
	f.Write8(0x2AAA, 0x55)
	f.Write8(0x5555, 0xF0) // ExitId

	if f.Read8(0x0000) == 0x32 {
		t.Fatalf("expected identity mode to be exited")
	}
}

func TestFlashWriteByteCommits(t *testing.T) {
	f := backup.NewFlash(64 * 1024)

	f.Write8(0x5555, 0xAA)
	f.Write8(0x2AAA, 0x55)
	f.Write8(0x5555, 0xA0) // WriteByte
	f.Write8(0x1234, 0x99)

	if got := f.Read8(0x1234); got != 0x99 {
		t.Fatalf("expected committed byte 0x99, got %#x", got)
	}
}

func TestFlashEraseSectorFillsFF(t *testing.T) {
	f := backup.NewFlash(64 * 1024)

	f.Write8(0x5555, 0xAA)
	f.Write8(0x2AAA, 0x55)
	f.Write8(0x5555, 0xA0)
	f.Write8(0x0100, 0x55) // commit a byte inside the sector to be erased

	f.Write8(0x5555, 0xAA)
	f.Write8(0x2AAA, 0x55)
	f.Write8(0x5555, 0x80) // EraseSetup
	f.Write8(0x5555, 0xAA)
	f.Write8(0x2AAA, 0x55)
	f.Write8(0x0100, 0x30) // EraseSector

	if got := f.Read8(0x0100); got != 0xFF {
		t.Fatalf("expected erased sector byte 0xFF, got %#x", got)
	}
}

// Package cartridge owns the loaded ROM image, its parsed header, the
// detected backup device, and the GPIO+RTC port, grounded on spec.md §6
// and §4.8.
package cartridge

import (
	"github.com/ljsdev/goba/internal/cartridge/backup"
	"github.com/ljsdev/goba/internal/cartridge/gpio"
	"github.com/ljsdev/goba/internal/curated"
)

const (
	minSize = 192
	maxSize = 32 * 1024 * 1024
)

// Cartridge holds the ROM, its backup device, and its GPIO port. The
// memory bus dispatches reads/writes into these through Cartridge rather
// than holding them itself.
type Cartridge struct {
	ROM    []byte
	Header Header

	BackupKind backup.Kind
	Backup     backup.Device

	GPIO *gpio.Port

	lastOpenBusHalf uint16 // last halfword legitimately read, for oversize-read open bus
}

// New constructs an empty cartridge slot (no ROM loaded).
func New() *Cartridge {
	return &Cartridge{GPIO: gpio.NewPort()}
}

// Load installs rom as the active cartridge image, parses its header, and
// detects (and resets) its backup device. Returns an error from
// internal/curated if rom is out of the legal size range.
func (c *Cartridge) Load(rom []byte) error {
	if len(rom) < minSize {
		return curated.Errorf(curated.LoadROMTooSmall, len(rom))
	}
	if len(rom) > maxSize {
		return curated.Errorf(curated.LoadROMTooLarge, len(rom))
	}

	c.ROM = make([]byte, len(rom))
	copy(c.ROM, rom)
	c.Header = ParseHeader(c.ROM)

	c.BackupKind = backup.Detect(c.ROM)
	c.Backup = backup.New(c.BackupKind)
	c.GPIO = gpio.NewPort()
	return nil
}

// LoadSave installs previously persisted backup data (spec.md §6
// "Persistent cartridge save"). If no backup device is installed it
// changes nothing and returns a LoadNoBackupInstalled error.
func (c *Cartridge) LoadSave(data []byte) error {
	if c.Backup == nil {
		return curated.Errorf(curated.LoadNoBackupInstalled)
	}
	c.Backup.Unmarshal(data)
	return nil
}

// GetSave returns the backup device's persisted bytes, or nil if none is
// installed.
func (c *Cartridge) GetSave() []byte {
	if c.Backup == nil {
		return nil
	}
	return c.Backup.Marshal()
}

// ReadROM16 reads one halfword given a full effective address in any of
// the ROM region's three address windows (0x08000000, 0x0A000000,
// 0x0C000000), returning open-bus (the last legitimately read halfword)
// for addresses beyond the installed ROM's size.
func (c *Cartridge) ReadROM16(addr uint32) uint16 {
	offset := addr & 0x01FFFFFF
	if int(offset)+1 >= len(c.ROM) {
		return c.lastOpenBusHalf
	}
	v := uint16(c.ROM[offset]) | uint16(c.ROM[offset+1])<<8
	c.lastOpenBusHalf = v
	return v
}

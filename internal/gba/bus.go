// Package gba assembles the cooperating components described across
// spec.md §3-§7 into a single addressable machine: a Bus backing all ten
// memory regions, an interrupt controller, and the top-level Gba
// container exposing the host API of spec.md §6.
package gba

import (
	"github.com/ljsdev/goba/internal/apu"
	"github.com/ljsdev/goba/internal/cartridge"
	"github.com/ljsdev/goba/internal/curated"
	"github.com/ljsdev/goba/internal/dma"
	"github.com/ljsdev/goba/internal/logger"
	"github.com/ljsdev/goba/internal/membus/memorymap"
	"github.com/ljsdev/goba/internal/ppu"
	"github.com/ljsdev/goba/internal/timer"
)

// Bus implements membus.CPUBus, membus.DebugBus, internal/cpu.Memory and
// internal/dma.Memory over the ten regions of spec.md §3's memory map.
type Bus struct {
	bios  [memorymap.BIOSSize]byte
	ewram [memorymap.EWRAMSize]byte
	iwram [memorymap.IWRAMSize]byte
	pal   [memorymap.PaletteSize]byte
	vram  [128 * 1024]byte // addressed as 128KiB; only 96KiB backed by hardware
	oam   [memorymap.OAMSize]byte

	cart *cartridge.Cartridge
	ppu  *ppu.PPU
	apu  *apu.APU
	dma  *dma.Bank
	tim  *timer.Bank
	ic   *interruptController

	keyInput uint16 // bit=0 means pressed; matches KEYINPUT polarity
	keyCnt   uint16
	waitcnt  uint16

	lastOpenBus uint32

	log *logger.Logger
}

func newBus(cart *cartridge.Cartridge, p *ppu.PPU, a *apu.APU, d *dma.Bank, t *timer.Bank, ic *interruptController, log *logger.Logger) *Bus {
	return &Bus{cart: cart, ppu: p, apu: a, dma: d, tim: t, ic: ic, keyInput: 0x3FF, log: log}
}

// LoadBIOS copies a BIOS image into the BIOS region.
func (b *Bus) LoadBIOS(data []byte) error {
	if len(data) != memorymap.BIOSSize {
		return curated.Errorf(curated.LoadBIOSSizeMismatch, memorymap.BIOSSize, len(data))
	}
	copy(b.bios[:], data)
	return nil
}

// --- Palette/VRAM/OAM accessors for internal/ppu.Memory ---

func (b *Bus) ReadPalette16(addr uint32) uint16 {
	addr &= memorymap.PaletteSize - 1
	return le16(b.pal[addr:])
}

func (b *Bus) ReadVRAM8(addr uint32) uint8 {
	return b.vram[memorymap.VRAMOffset(addr)]
}

func (b *Bus) ReadVRAM16(addr uint32) uint16 {
	off := memorymap.VRAMOffset(addr &^ 1)
	return le16(b.vram[off:])
}

func (b *Bus) ReadOAM16(addr uint32) uint16 {
	addr &= memorymap.OAMSize - 1
	return le16(b.oam[addr:])
}

func le16(b []byte) uint16 { return uint16(b[0]) | uint16(b[1])<<8 }
func le32(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}
func putLE16(b []byte, v uint16) { b[0] = byte(v); b[1] = byte(v >> 8) }
func putLE32(b []byte, v uint32) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
	b[2] = byte(v >> 16)
	b[3] = byte(v >> 24)
}

// --- CPUBus / cpu.Memory / dma.Memory ---

func (b *Bus) Read8(addr uint32) uint8 {
	addr = memorymap.Mask28(addr)
	switch memorymap.Decode(addr) {
	case memorymap.RegionBIOS:
		return b.bios[addr%memorymap.BIOSSize]
	case memorymap.RegionEWRAM:
		return b.ewram[addr%memorymap.EWRAMSize]
	case memorymap.RegionIWRAM:
		return b.iwram[addr%memorymap.IWRAMSize]
	case memorymap.RegionIO:
		return byte(b.readIO16(addr &^ 1) >> ((addr & 1) * 8))
	case memorymap.RegionPalette:
		return b.pal[addr%memorymap.PaletteSize]
	case memorymap.RegionVRAM:
		return b.vram[memorymap.VRAMOffset(addr)]
	case memorymap.RegionOAM:
		return b.oam[addr%memorymap.OAMSize]
	case memorymap.RegionROM:
		return byte(b.cart.ReadROM16(addr&^1) >> ((addr & 1) * 8))
	case memorymap.RegionBackup:
		if b.cart.Backup != nil {
			return b.cart.Backup.Read8(addr)
		}
		return 0xFF
	default:
		b.log.Logf(logger.Allow, "membus", curated.UnmappedRegion, addr)
		return uint8(b.lastOpenBus)
	}
}

func (b *Bus) Read16(addr uint32) uint16 {
	addr = memorymap.Mask28(addr) &^ 1
	switch memorymap.Decode(addr) {
	case memorymap.RegionBIOS:
		return le16(b.bios[addr%memorymap.BIOSSize:])
	case memorymap.RegionEWRAM:
		return le16(b.ewram[addr%memorymap.EWRAMSize:])
	case memorymap.RegionIWRAM:
		return le16(b.iwram[addr%memorymap.IWRAMSize:])
	case memorymap.RegionIO:
		return b.readIO16(addr)
	case memorymap.RegionPalette:
		return le16(b.pal[addr%memorymap.PaletteSize:])
	case memorymap.RegionVRAM:
		return le16(b.vram[memorymap.VRAMOffset(addr):])
	case memorymap.RegionOAM:
		return le16(b.oam[addr%memorymap.OAMSize:])
	case memorymap.RegionROM:
		if gpioAddr, ok := b.gpioOffset(addr); ok && b.cart.GPIO.Enabled() {
			return uint16(b.cart.GPIO.ReadRegister(gpioAddr))
		}
		return b.cart.ReadROM16(addr)
	case memorymap.RegionBackup:
		if b.cart.Backup != nil {
			return uint16(b.cart.Backup.Read8(addr))
		}
		return 0xFFFF
	default:
		b.log.Logf(logger.Allow, "membus", curated.UnmappedRegion, addr)
		return uint16(b.lastOpenBus)
	}
}

func (b *Bus) Read32(addr uint32) uint32 {
	addr = memorymap.Mask28(addr) &^ 3
	lo := uint32(b.Read16(addr))
	hi := uint32(b.Read16(addr + 2))
	return lo | hi<<16
}

func (b *Bus) Write8(addr uint32, v uint8) {
	addr = memorymap.Mask28(addr)
	switch memorymap.Decode(addr) {
	case memorymap.RegionEWRAM:
		b.ewram[addr%memorymap.EWRAMSize] = v
	case memorymap.RegionIWRAM:
		b.iwram[addr%memorymap.IWRAMSize] = v
	case memorymap.RegionIO:
		cur := b.readIO16(addr &^ 1)
		if addr&1 == 0 {
			b.writeIO16(addr&^1, (cur&0xFF00)|uint16(v))
		} else {
			b.writeIO16(addr&^1, (cur&0x00FF)|uint16(v)<<8)
		}
	case memorymap.RegionPalette:
		// byte writes to palette RAM write the same value to both
		// halves of the 16 bit entry (spec.md §4.2 byte-write rule).
		off := (addr % memorymap.PaletteSize) &^ 1
		b.pal[off] = v
		b.pal[off+1] = v
	case memorymap.RegionVRAM:
		off := memorymap.VRAMOffset(addr)
		bgEnd := uint32(0x10000)
		if off < bgEnd {
			off &^= 1
			b.vram[off] = v
			b.vram[off+1] = v
		}
		// byte writes into OBJ tile data (>= 0x10000) are ignored on
		// real hardware; nothing to do.
	case memorymap.RegionOAM:
		// byte writes to OAM are ignored on real hardware.
	case memorymap.RegionBackup:
		if b.cart.Backup != nil {
			b.cart.Backup.Write8(addr, v)
		}
	}
}

func (b *Bus) Write16(addr uint32, v uint16) {
	addr = memorymap.Mask28(addr) &^ 1
	switch memorymap.Decode(addr) {
	case memorymap.RegionEWRAM:
		putLE16(b.ewram[addr%memorymap.EWRAMSize:], v)
	case memorymap.RegionIWRAM:
		putLE16(b.iwram[addr%memorymap.IWRAMSize:], v)
	case memorymap.RegionIO:
		b.writeIO16(addr, v)
	case memorymap.RegionPalette:
		putLE16(b.pal[addr%memorymap.PaletteSize:], v)
	case memorymap.RegionVRAM:
		putLE16(b.vram[memorymap.VRAMOffset(addr):], v)
	case memorymap.RegionOAM:
		putLE16(b.oam[addr%memorymap.OAMSize:], v)
	case memorymap.RegionROM:
		if gpioAddr, ok := b.gpioOffset(addr); ok {
			b.cart.GPIO.WriteRegister(gpioAddr, v)
		}
	case memorymap.RegionBackup:
		if b.cart.Backup != nil {
			b.cart.Backup.Write8(addr, uint8(v))
		}
	}
}

func (b *Bus) Write32(addr uint32, v uint32) {
	addr = memorymap.Mask28(addr) &^ 3
	b.Write16(addr, uint16(v))
	b.Write16(addr+2, uint16(v>>16))
}

// gpioOffset reports whether addr falls within the three GPIO registers
// mapped into ROM space at 0x080000C4-0x080000C8 (spec.md §4.8).
func (b *Bus) gpioOffset(addr uint32) (uint32, bool) {
	const gpioBase = 0x080000C4
	const gpioTop = 0x080000CA
	if addr >= gpioBase && addr < gpioTop {
		return addr - gpioBase, true
	}
	return 0, false
}

// --- DebugBus: side-effect-free peek/poke for save states and tooling ---

func (b *Bus) Peek8(addr uint32) uint8 {
	addr = memorymap.Mask28(addr)
	switch memorymap.Decode(addr) {
	case memorymap.RegionBIOS:
		return b.bios[addr%memorymap.BIOSSize]
	case memorymap.RegionEWRAM:
		return b.ewram[addr%memorymap.EWRAMSize]
	case memorymap.RegionIWRAM:
		return b.iwram[addr%memorymap.IWRAMSize]
	case memorymap.RegionPalette:
		return b.pal[addr%memorymap.PaletteSize]
	case memorymap.RegionVRAM:
		return b.vram[memorymap.VRAMOffset(addr)]
	case memorymap.RegionOAM:
		return b.oam[addr%memorymap.OAMSize]
	case memorymap.RegionROM:
		return byte(b.cart.ReadROM16(addr&^1) >> ((addr & 1) * 8))
	default:
		return 0
	}
}

func (b *Bus) Peek16(addr uint32) uint16 {
	lo := uint16(b.Peek8(addr &^ 1))
	hi := uint16(b.Peek8(addr | 1))
	return lo | hi<<8
}

func (b *Bus) Peek32(addr uint32) uint32 {
	lo := uint32(b.Peek16(addr &^ 3))
	hi := uint32(b.Peek16((addr &^ 3) + 2))
	return lo | hi<<16
}

func (b *Bus) Poke8(addr uint32, v uint8) {
	addr = memorymap.Mask28(addr)
	switch memorymap.Decode(addr) {
	case memorymap.RegionEWRAM:
		b.ewram[addr%memorymap.EWRAMSize] = v
	case memorymap.RegionIWRAM:
		b.iwram[addr%memorymap.IWRAMSize] = v
	case memorymap.RegionPalette:
		b.pal[addr%memorymap.PaletteSize] = v
	case memorymap.RegionVRAM:
		b.vram[memorymap.VRAMOffset(addr)] = v
	case memorymap.RegionOAM:
		b.oam[addr%memorymap.OAMSize] = v
	}
}

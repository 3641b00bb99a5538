// Package backup implements the three cartridge backup device types
// (EEPROM, SRAM, Flash) behind a single Device interface, dispatched by
// address range the same way the reference core's backup union is
// dispatched by its installed variant.
package backup

// Device is the narrow interface the memory bus dispatches backup-region
// accesses to. addr is the offset within the backup region (already
// masked to the region's base), not the full 32 bit effective address.
type Device interface {
	Read8(addr uint32) uint8
	Write8(addr uint32, v uint8)

	// Marshal/Unmarshal round-trip the device's persisted state for
	// loadsave/getsave and for save states.
	Marshal() []byte
	Unmarshal(data []byte)
}

// Kind identifies which backup device, if any, is installed.
type Kind int

const (
	KindNone Kind = iota
	KindEEPROM
	KindSRAM
	KindFlash512K
	KindFlash1M
)

// marker substrings scanned for in ROM order, per spec.md §4.8. The first
// match wins.
var markers = []struct {
	kind Kind
	text string
}{
	{KindEEPROM, "EEPROM"},
	{KindSRAM, "SRAM"},
	{KindFlash1M, "FLASH1M"},
	{KindFlash512K, "FLASH512"},
	{KindFlash512K, "FLASH_"},
}

// Detect scans rom for the first matching backup-type marker substring and
// returns the corresponding Kind, or KindNone if nothing matches.
func Detect(rom []byte) Kind {
	s := string(rom)
	bestIdx := -1
	bestKind := KindNone
	for _, m := range markers {
		if idx := indexOf(s, m.text); idx >= 0 {
			if bestIdx == -1 || idx < bestIdx {
				bestIdx = idx
				bestKind = m.kind
			}
		}
	}
	return bestKind
}

func indexOf(haystack, needle string) int {
	n := len(needle)
	for i := 0; i+n <= len(haystack); i++ {
		if haystack[i:i+n] == needle {
			return i
		}
	}
	return -1
}

// New constructs the Device for kind, or nil for KindNone.
func New(kind Kind) Device {
	switch kind {
	case KindEEPROM:
		return NewEEPROM()
	case KindSRAM:
		return NewSRAM()
	case KindFlash512K:
		return NewFlash(512 * 1024)
	case KindFlash1M:
		return NewFlash(1024 * 1024)
	default:
		return nil
	}
}

package backup

// flashPhase tracks the two-cycle unlock sequence (write 0x5555<-0xAA then
// 0x2AAA<-0x55) that precedes every Flash command byte.
type flashPhase int

const (
	flashIdle flashPhase = iota
	flashUnlock1
	flashUnlock2
	flashEraseSetup
	flashEraseUnlock1
	flashEraseUnlock2
)

// Flash implements the two-phase JEDEC-style command protocol described in
// spec.md §3/§4.8: EnterId/ExitId/EraseChip/EraseSector/WriteByte and, for
// the 1 Mbit variant, SelectBank.
type Flash struct {
	data       []byte
	bank       uint32
	is1M       bool
	phase      flashPhase
	identity   bool
	writeArmed bool
}

func NewFlash(size int) *Flash {
	f := &Flash{data: make([]byte, size), is1M: size > 512*1024}
	for i := range f.data {
		f.data[i] = 0xFF
	}
	return f
}

func (f *Flash) offset(addr uint32) uint32 {
	return f.bank*0x10000 + (addr & 0xFFFF)
}

func (f *Flash) Read8(addr uint32) uint8 {
	a := addr & 0xFFFF
	if f.identity {
		switch a {
		case 0x0000:
			return 0x32 // Panasonic-compatible vendor id, matching widely supported Flash carts
		case 0x0001:
			if f.is1M {
				return 0x13
			}
			return 0x1B
		}
	}
	return f.data[f.offset(addr)]
}

func (f *Flash) Write8(addr uint32, v uint8) {
	a := addr & 0xFFFF

	if f.writeArmed {
		f.writeArmed = false
		f.data[f.offset(addr)] = v
		f.phase = flashIdle
		return
	}

	switch f.phase {
	case flashIdle:
		if a == 0x5555 && v == 0xAA {
			f.phase = flashUnlock1
		}
	case flashUnlock1:
		if a == 0x2AAA && v == 0x55 {
			f.phase = flashUnlock2
		} else {
			f.phase = flashIdle
		}
	case flashUnlock2:
		f.runCommand(v)
	case flashEraseSetup:
		if a == 0x5555 && v == 0xAA {
			f.phase = flashEraseUnlock1
		} else {
			f.phase = flashIdle
		}
	case flashEraseUnlock1:
		if a == 0x2AAA && v == 0x55 {
			f.phase = flashEraseUnlock2
		} else {
			f.phase = flashIdle
		}
	case flashEraseUnlock2:
		f.runEraseCommand(a, v)
	case flashSelectBank:
		f.bank = uint32(v) & 1
		f.phase = flashIdle
	}
}

func (f *Flash) runCommand(cmd uint8) {
	switch cmd {
	case 0x90: // EnterId
		f.identity = true
		f.phase = flashIdle
	case 0xF0: // ExitId
		f.identity = false
		f.phase = flashIdle
	case 0x80: // EraseSetup: expects a second unlock sequence
		f.phase = flashEraseSetup
	case 0xA0: // WriteByte: next write commits directly
		f.writeArmed = true
		f.phase = flashIdle
	case 0xB0: // SelectBank (1 Mbit only): the bank index arrives in the
		// next write to offset 0x0000.
		if f.is1M {
			f.phase = flashSelectBank
			return
		}
		f.phase = flashIdle
	default:
		f.phase = flashIdle
	}
}

const flashSelectBank flashPhase = 100

func (f *Flash) runEraseCommand(addr uint32, cmd uint8) {
	switch cmd {
	case 0x10: // EraseChip
		for i := range f.data {
			f.data[i] = 0xFF
		}
	case 0x30: // EraseSector: erases the 4KiB sector containing addr
		base := f.offset(addr) &^ 0xFFF
		for i := uint32(0); i < 0x1000 && int(base+i) < len(f.data); i++ {
			f.data[base+i] = 0xFF
		}
	}
	f.phase = flashIdle
}

func (f *Flash) Marshal() []byte {
	out := make([]byte, len(f.data)+4)
	out[0] = byte(f.bank)
	copy(out[4:], f.data)
	return out
}

func (f *Flash) Unmarshal(data []byte) {
	if len(data) < 4 {
		return
	}
	f.bank = uint32(data[0])
	copy(f.data, data[4:])
}

// Package gpio implements the cartridge's 4-bit bidirectional GPIO port
// at 0x080000C4-0x080000C8 and the real-time-clock device hung off it,
// per spec.md §4.8.
package gpio

// Pin bit positions within the 4-bit port.
const (
	pinSCK = 1 << 0
	pinSIO = 1 << 1
	pinCS  = 1 << 2
)

// Port is the GPIO register block: data, direction, and read-enable
// registers, mirroring the reference core's `data`/`read_mask`/
// `write_mask`/`rw` field layout (SPEC_FULL.md §6).
type Port struct {
	data      uint8 // 4 visible data bits
	direction uint8 // 1 = output
	readWrite bool  // false = write-only port (reads return ROM), true = read/write

	rtc *RTC
}

func NewPort() *Port {
	return &Port{rtc: NewRTC()}
}

// Enabled reports whether the port currently intercepts reads of the ROM
// mirror at 0x080000C4-0x080000C8 (only true once software has configured
// the port for read access).
func (p *Port) Enabled() bool { return p.readWrite }

// ReadRegister reads one of the three GPIO registers by its offset from
// 0x080000C4 (0=data, 2=direction, 4=control).
func (p *Port) ReadRegister(offset uint32) uint16 {
	if !p.readWrite {
		return 0
	}
	switch offset {
	case 0:
		return uint16(p.readData())
	case 2:
		return uint16(p.direction)
	case 4:
		if p.readWrite {
			return 1
		}
		return 0
	default:
		return 0
	}
}

// WriteRegister writes one of the three GPIO registers.
func (p *Port) WriteRegister(offset uint32, v uint16) {
	switch offset {
	case 0:
		p.writeData(uint8(v) & 0xF)
	case 2:
		p.direction = uint8(v) & 0xF
	case 4:
		p.readWrite = v&1 != 0
	}
}

func (p *Port) readData() uint8 {
	out := p.data & p.direction
	so := p.rtc.Read(p.data&pinCS != 0, p.data&pinSCK != 0)
	if so {
		out |= pinSIO
	}
	return out
}

func (p *Port) writeData(v uint8) {
	old := p.data
	p.data = (p.data &^ p.direction) | (v & p.direction)
	cs := p.data&pinCS != 0
	sck := p.data&pinSCK != 0
	sckRising := sck && old&pinSCK == 0
	sio := p.data&pinSIO != 0
	p.rtc.Clock(cs, sck, sckRising, sio, p.direction&pinSIO != 0)
}

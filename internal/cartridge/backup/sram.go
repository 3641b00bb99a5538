package backup

// SRAM is a flat 32KiB byte-addressable store; reads and writes hit the
// buffer directly, no command protocol.
type SRAM struct {
	data [32 * 1024]byte
}

func NewSRAM() *SRAM { return &SRAM{} }

func (s *SRAM) Read8(addr uint32) uint8 { return s.data[addr&0x7FFF] }
func (s *SRAM) Write8(addr uint32, v uint8) { s.data[addr&0x7FFF] = v }

func (s *SRAM) Marshal() []byte {
	out := make([]byte, len(s.data))
	copy(out, s.data[:])
	return out
}

func (s *SRAM) Unmarshal(data []byte) {
	n := copy(s.data[:], data)
	for i := n; i < len(s.data); i++ {
		s.data[i] = 0xFF
	}
}

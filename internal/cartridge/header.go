package cartridge

// Header is the parsed form of the fixed 192 byte cartridge header
// described in spec.md §6.
type Header struct {
	Title      string
	GameCode   string
	MakerCode  string
	FixedValue uint8
	Checksum   uint8
	ChecksumOK bool
}

// ParseHeader extracts the header fields from rom. rom must be at least
// 0xC0 bytes (callers reject smaller ROMs before this is called).
func ParseHeader(rom []byte) Header {
	var h Header
	h.Title = trimTitle(rom[0xA0:0xAC])
	h.GameCode = string(rom[0xAC:0xB0])
	h.MakerCode = string(rom[0xB0:0xB2])
	h.FixedValue = rom[0xB3]
	h.Checksum = rom[0xBD]

	var sum uint8
	for _, b := range rom[0xA0:0xBD] {
		sum += b
	}
	computed := -(uint8(0x19) + sum)
	h.ChecksumOK = computed == h.Checksum
	return h
}

func trimTitle(b []byte) string {
	end := len(b)
	for end > 0 && b[end-1] == 0 {
		end--
	}
	return string(b[:end])
}

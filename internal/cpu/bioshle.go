package cpu

// DefaultBIOS implements the small set of BIOS functions high-level
// emulated in place of the real BIOS: Halt, Div, Sqrt, and the CpuSet
// family. Anything else falls through to a real (and, with no BIOS ROM
// present, unhandled) SWI exception.
type DefaultBIOS struct{}

func (DefaultBIOS) Call(c *CPU, comment uint8) bool {
	switch comment {
	case 0x02: // Halt
		c.Halted = true
		return true
	case 0x06: // Div
		hleDiv(c)
		return true
	case 0x08: // Sqrt
		hleSqrt(c)
		return true
	case 0x0B: // CpuSet
		hleCpuSet(c, false)
		return true
	case 0x0C: // CpuFastSet
		hleCpuSet(c, true)
		return true
	default:
		c.Log("cpu: unhandled bios SWI", comment)
		return false
	}
}

// hleDiv implements SWI 0x06: signed division of r0 by r1, returning the
// quotient in r0, remainder in r1, and abs(quotient) in r3.
func hleDiv(c *CPU) {
	number := int32(c.Regs.Reg(0))
	denom := int32(c.Regs.Reg(1))
	if denom == 0 {
		c.Regs.SetReg(0, 0)
		c.Regs.SetReg(1, uint32(number))
		c.Regs.SetReg(3, 0)
		return
	}
	quot := number / denom
	rem := number % denom
	abs := quot
	if abs < 0 {
		abs = -abs
	}
	c.Regs.SetReg(0, uint32(quot))
	c.Regs.SetReg(1, uint32(rem))
	c.Regs.SetReg(3, uint32(abs))
}

// hleSqrt implements SWI 0x08: unsigned 32 bit integer square root of r0,
// result in r0.
func hleSqrt(c *CPU) {
	n := c.Regs.Reg(0)
	var x uint32
	for bit := uint32(1) << 30; bit != 0; bit >>= 2 {
		candidate := x + bit
		if n >= candidate {
			n -= candidate
			x = (x >> 1) + bit
		} else {
			x >>= 1
		}
	}
	c.Regs.SetReg(0, x)
}

// hleCpuSet implements SWI 0x0B/0x0C: a block copy or fill between two
// addresses, with the transfer unit and copy-vs-fill mode taken from the
// length/mode word in r2. CpuFastSet transfers are always 32 bit and
// rounded to a multiple of 8 words, matching the real BIOS's restriction;
// this core does not model its extra speed.
func hleCpuSet(c *CPU, fast bool) {
	src := c.Regs.Reg(0)
	dst := c.Regs.Reg(1)
	control := c.Regs.Reg(2)

	count := control & 0x1FFFFF
	fixedSource := control&(1<<24) != 0
	wordTransfer := control&(1<<26) != 0 || fast

	if fast {
		count = (count + 7) &^ 7
	}

	if wordTransfer {
		for i := uint32(0); i < count; i++ {
			v := c.mem.Read32(src)
			c.mem.Write32(dst, v)
			dst += 4
			if !fixedSource {
				src += 4
			}
		}
	} else {
		for i := uint32(0); i < count; i++ {
			v := c.mem.Read16(src)
			c.mem.Write16(dst, v)
			dst += 2
			if !fixedSource {
				src += 2
			}
		}
	}
}

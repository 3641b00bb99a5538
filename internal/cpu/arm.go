package cpu

import "github.com/ljsdev/goba/internal/bits"

// executeARM decodes and executes a single ARM instruction. Condition
// checking has already happened in Step; this dispatches purely on the
// instruction's bit pattern, in the flatter switch-over-shape style the
// spec's §9 explicitly allows in place of a decode table.
func (c *CPU) executeARM(op uint32) {
	switch {
	case op&0x0FFFFFF0 == 0x012FFF10:
		c.armBranchExchange(op)
	case op&0x0E000000 == 0x0A000000:
		c.armBranch(op)
	case op&0x0FC000F0 == 0x00000090:
		c.armMultiply(op)
	case op&0x0F8000F0 == 0x00800090:
		c.armMultiplyLong(op)
	case op&0x0FB00FF0 == 0x01000090:
		c.armSingleDataSwap(op)
	case op&0x0E000090 == 0x00000090 && op&0x0E000F0 != 0x00 && (op>>4)&1 != 0 && (op>>7)&1 != 0:
		c.armHalfwordTransfer(op)
	case op&0x0FBF0FFF == 0x010F0000:
		c.armMRS(op)
	case op&0x0FB0F000 == 0x0120F000 && op&0x0FBFFFF0 != 0x0129F000:
		c.armMSR(op)
	case op&0x0C000000 == 0x00000000:
		c.armDataProcessing(op)
	case op&0x0C000000 == 0x04000000:
		c.armSingleDataTransfer(op)
	case op&0x0E000000 == 0x08000000:
		c.armBlockDataTransfer(op)
	case op&0x0F000000 == 0x0F000000:
		c.SoftwareInterrupt(uint8((op >> 16) & 0xFF))
		c.Last.Mnemonic = "swi"
	default:
		c.Log("cpu: undefined ARM opcode", op)
		c.UndefinedInstruction()
	}
}

func armShiftOperand(c *CPU, op uint32) (uint32, bool) {
	if op&(1<<25) != 0 {
		imm := op & 0xFF
		rot := ((op >> 8) & 0xF) * 2
		if rot == 0 {
			return imm, c.Regs.CPSR.C
		}
		return bits.RotateRight32(imm, rot), bits.Get(imm, (rot-1)&31)
	}

	rm := c.Regs.Reg(int(op & 0xF))
	shiftOp := shiftType((op >> 5) & 0x3)
	var amount uint32
	immediate := true
	if op&(1<<4) != 0 {
		rs := c.Regs.Reg(int((op >> 8) & 0xF))
		amount = rs & 0xFF
		immediate = false
		if int(op&0xF) == PCIndex {
			rm += 4 // register-specified shift reads PC as +12
		}
	} else {
		amount = (op >> 7) & 0x1F
	}
	res := barrelShift(shiftOp, rm, amount, c.Regs.CPSR.C, immediate)
	return res.value, res.carry
}

func (c *CPU) armDataProcessing(op uint32) {
	opcode := (op >> 21) & 0xF
	setFlags := op&(1<<20) != 0
	rnIdx := int((op >> 16) & 0xF)
	rdIdx := int((op >> 12) & 0xF)

	rn := c.Regs.Reg(rnIdx)
	if rnIdx == PCIndex && op&(1<<25) == 0 && op&(1<<4) != 0 {
		rn += 4
	}
	op2, shiftCarry := armShiftOperand(c, op)

	result := dataProcessingOp(opcode, rn, op2, c.Regs.CPSR.C)
	result.carry = shiftCarry || result.carry
	if opcode < 0x2 || opcode == 0x8 || opcode == 0x9 || opcode == 0xC || opcode == 0xD || opcode == 0xE || opcode == 0xF {
		result.carry = shiftCarry
	}

	if writesResult(opcode) {
		c.Regs.SetReg(rdIdx, result.value)
	}

	if setFlags {
		if rdIdx == PCIndex {
			c.Regs.CPSR = c.Regs.SPSR()
			c.Regs.ChangeMode(c.Regs.CPSR.M)
		} else if opcode <= 0x1 || opcode == 0x8 || opcode == 0x9 || opcode >= 0xC {
			applyLogicalFlags(&c.Regs.CPSR, result.value, result.carry)
		} else {
			applyArithmeticFlags(&c.Regs.CPSR, result)
		}
	}

	if writesResult(opcode) && rdIdx == PCIndex {
		c.branchTo(c.Regs.Reg(PCIndex))
	}
	c.Last.Mnemonic = "dataproc"
}

func (c *CPU) armMultiply(op uint32) {
	accumulate := op&(1<<21) != 0
	setFlags := op&(1<<20) != 0
	rd := int((op >> 16) & 0xF)
	rn := int((op >> 12) & 0xF)
	rs := int((op >> 8) & 0xF)
	rm := int(op & 0xF)

	result := c.Regs.Reg(rm) * c.Regs.Reg(rs)
	if accumulate {
		result += c.Regs.Reg(rn)
	}
	c.Regs.SetReg(rd, result)
	if setFlags {
		c.Regs.CPSR.N = bits.Get(result, 31)
		c.Regs.CPSR.Z = result == 0
	}
	c.Last.Mnemonic = "mul"
}

func (c *CPU) armMultiplyLong(op uint32) {
	signed := op&(1<<22) != 0
	accumulate := op&(1<<21) != 0
	setFlags := op&(1<<20) != 0
	rdHi := int((op >> 16) & 0xF)
	rdLo := int((op >> 12) & 0xF)
	rs := int((op >> 8) & 0xF)
	rm := int(op & 0xF)

	var result uint64
	if signed {
		result = uint64(int64(int32(c.Regs.Reg(rm))) * int64(int32(c.Regs.Reg(rs))))
	} else {
		result = uint64(c.Regs.Reg(rm)) * uint64(c.Regs.Reg(rs))
	}
	if accumulate {
		result += uint64(c.Regs.Reg(rdHi))<<32 | uint64(c.Regs.Reg(rdLo))
	}
	c.Regs.SetReg(rdLo, uint32(result))
	c.Regs.SetReg(rdHi, uint32(result>>32))
	if setFlags {
		c.Regs.CPSR.N = bits.Get(uint32(result>>32), 31)
		c.Regs.CPSR.Z = result == 0
	}
	c.Last.Mnemonic = "mull"
}

func (c *CPU) armSingleDataSwap(op uint32) {
	byteSwap := op&(1<<22) != 0
	rn := c.Regs.Reg(int((op >> 16) & 0xF))
	rd := int((op >> 12) & 0xF)
	rm := int(op & 0xF)

	if byteSwap {
		old := c.mem.Read8(rn)
		c.mem.Write8(rn, uint8(c.Regs.Reg(rm)))
		c.Regs.SetReg(rd, uint32(old))
	} else {
		old := bits.RotateRight32(c.mem.Read32(rn), (rn&3)*8)
		c.mem.Write32(rn, c.Regs.Reg(rm))
		c.Regs.SetReg(rd, old)
	}
	c.cycle.AddCycles(1)
	c.Last.Mnemonic = "swp"
}

func (c *CPU) armMRS(op uint32) {
	rd := int((op >> 12) & 0xF)
	spsr := op&(1<<22) != 0
	if spsr {
		c.Regs.SetReg(rd, c.Regs.SPSR().Value())
	} else {
		c.Regs.SetReg(rd, c.Regs.CPSR.Value())
	}
	c.Last.Mnemonic = "mrs"
}

func (c *CPU) armMSR(op uint32) {
	spsr := op&(1<<22) != 0
	writeFlags := op&(1<<19) != 0
	writeControl := op&(1<<16) != 0

	var value uint32
	if op&(1<<25) != 0 {
		imm := op & 0xFF
		rot := ((op >> 8) & 0xF) * 2
		value = bits.RotateRight32(imm, rot)
	} else {
		value = c.Regs.Reg(int(op & 0xF))
	}

	if spsr {
		s := c.Regs.SPSR()
		s.SetFromValue(value, writeFlags, writeControl, c.Regs.CPSR.M)
		c.Regs.SetSPSR(s)
	} else {
		currentMode := c.Regs.CPSR.M
		c.Regs.CPSR.SetFromValue(value, writeFlags, writeControl, currentMode)
		if writeControl && currentMode != ModeUser {
			c.Regs.ChangeMode(c.Regs.CPSR.M)
		}
	}
	c.Last.Mnemonic = "msr"
}

func (c *CPU) armBranchExchange(op uint32) {
	rm := c.Regs.Reg(int(op & 0xF))
	c.branchExchange(rm)
	c.Last.Mnemonic = "bx"
}

func (c *CPU) armBranch(op uint32) {
	link := op&(1<<24) != 0
	offset := bits.SignExtend(op&0xFFFFFF, 24) << 2
	if link {
		c.Regs.SetReg(LRIndex, c.pcForExecution()+4)
	}
	target := uint32(int32(c.pcForExecution()) + 8 + offset)
	c.branchTo(target)
	c.Last.Mnemonic = "b"
}

func (c *CPU) armHalfwordTransfer(op uint32) {
	pre := op&(1<<24) != 0
	up := op&(1<<23) != 0
	immediateOffset := op&(1<<22) != 0
	writeback := op&(1<<21) != 0
	load := op&(1<<20) != 0
	rnIdx := int((op >> 16) & 0xF)
	rdIdx := int((op >> 12) & 0xF)
	sh := (op >> 5) & 0x3

	var offset uint32
	if immediateOffset {
		offset = ((op>>8)&0xF)<<4 | (op & 0xF)
	} else {
		offset = c.Regs.Reg(int(op & 0xF))
	}

	base := c.Regs.Reg(rnIdx)
	addr := base
	if pre {
		if up {
			addr = base + offset
		} else {
			addr = base - offset
		}
	}

	if load {
		var value uint32
		switch sh {
		case 1: // unsigned halfword
			value = uint32(c.mem.Read16(addr &^ 1))
		case 2: // signed byte
			value = bits.SignExtend8(c.mem.Read8(addr))
		case 3: // signed halfword
			if addr&1 != 0 {
				value = bits.SignExtend8(uint8(c.mem.Read16(addr &^ 1) >> 8))
			} else {
				value = bits.SignExtend16(c.mem.Read16(addr))
			}
		}
		c.Regs.SetReg(rdIdx, value)
	} else {
		c.mem.Write16(addr&^1, uint16(c.Regs.Reg(rdIdx)))
	}

	if !pre {
		if up {
			addr = base + offset
		} else {
			addr = base - offset
		}
	}
	if writeback || !pre {
		c.Regs.SetReg(rnIdx, addr)
	}
	if load && rdIdx == PCIndex {
		c.branchTo(c.Regs.Reg(PCIndex) &^ 3)
	}
	c.Last.Mnemonic = "halfword"
}

func (c *CPU) armSingleDataTransfer(op uint32) {
	immediate := op&(1<<25) == 0
	pre := op&(1<<24) != 0
	up := op&(1<<23) != 0
	byteTransfer := op&(1<<22) != 0
	writeback := op&(1<<21) != 0
	load := op&(1<<20) != 0
	rnIdx := int((op >> 16) & 0xF)
	rdIdx := int((op >> 12) & 0xF)

	var offset uint32
	if immediate {
		offset = op & 0xFFF
	} else {
		offset, _ = armShiftOperand(c, op&^(1<<25))
	}

	base := c.Regs.Reg(rnIdx)
	addr := base
	if pre {
		if up {
			addr = base + offset
		} else {
			addr = base - offset
		}
	}

	if load {
		var value uint32
		if byteTransfer {
			value = uint32(c.mem.Read8(addr))
		} else {
			value = bits.RotateRight32(c.mem.Read32(addr&^3), (addr&3)*8)
		}
		c.Regs.SetReg(rdIdx, value)
	} else {
		if byteTransfer {
			c.mem.Write8(addr, uint8(c.Regs.Reg(rdIdx)))
		} else {
			c.mem.Write32(addr&^3, c.Regs.Reg(rdIdx))
		}
	}

	if !pre {
		if up {
			addr = base + offset
		} else {
			addr = base - offset
		}
		c.Regs.SetReg(rnIdx, addr)
	} else if writeback {
		c.Regs.SetReg(rnIdx, addr)
	}

	if load && rdIdx == PCIndex {
		c.branchTo(c.Regs.Reg(PCIndex) &^ 3)
	}
	c.Last.Mnemonic = "transfer"
}

func (c *CPU) armBlockDataTransfer(op uint32) {
	pre := op&(1<<24) != 0
	up := op&(1<<23) != 0
	psrOrUser := op&(1<<22) != 0
	writeback := op&(1<<21) != 0
	load := op&(1<<20) != 0
	rnIdx := int((op >> 16) & 0xF)
	list := op & 0xFFFF

	count := bits.PopCount16(uint16(list))
	base := c.Regs.Reg(rnIdx)

	var startAddr uint32
	var endAddr uint32
	if up {
		startAddr = base
		endAddr = base + uint32(count)*4
	} else {
		startAddr = base - uint32(count)*4
		endAddr = base
	}
	if count == 0 {
		// Empty register list transfers/updates r15 and still moves the
		// base by the full 0x40 as if all 16 registers were listed.
		if up {
			endAddr = base + 0x40
		} else {
			startAddr = base - 0x40
			endAddr = base
		}
		count = 16
	}

	addr := startAddr
	if pre == up {
		addr += 4
	}

	useUserBank := psrOrUser && !(load && list&(1<<PCIndex) != 0)
	var savedMode Mode
	if useUserBank {
		savedMode = c.Regs.CPSR.M
		c.Regs.ChangeMode(ModeUser)
	}

	if list == 0 {
		if load {
			c.Regs.SetReg(PCIndex, c.mem.Read32(startAddr&^3))
		} else {
			c.mem.Write32(startAddr&^3, c.Regs.Reg(PCIndex)+4)
		}
	} else {
		for i := 0; i < 16; i++ {
			if list&(1<<uint(i)) == 0 {
				continue
			}
			if load {
				c.Regs.SetReg(i, c.mem.Read32(addr&^3))
			} else {
				v := c.Regs.Reg(i)
				if i == PCIndex {
					v += 4
				}
				c.mem.Write32(addr&^3, v)
			}
			addr += 4
		}
	}

	if useUserBank {
		c.Regs.ChangeMode(savedMode)
	}
	if load && psrOrUser && list&(1<<PCIndex) != 0 {
		c.Regs.CPSR = c.Regs.SPSR()
		c.Regs.ChangeMode(c.Regs.CPSR.M)
	}

	if writeback {
		if up {
			c.Regs.SetReg(rnIdx, endAddr)
		} else {
			c.Regs.SetReg(rnIdx, startAddr)
		}
	}

	if load && list&(1<<PCIndex) != 0 {
		c.branchTo(c.Regs.Reg(PCIndex) &^ 3)
	}
	c.Last.Mnemonic = "blocktransfer"
}

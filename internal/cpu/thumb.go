package cpu

import "github.com/ljsdev/goba/internal/bits"

// executeThumb decodes and executes a single THUMB instruction by its
// format group (the top bits of the halfword), translating each group to
// the equivalent ARM-level semantics it stands in for.
func (c *CPU) executeThumb(op uint16) {
	switch {
	case op&0xF800 == 0x1800:
		c.thumbAddSubtract(op)
	case op&0xE000 == 0x0000:
		c.thumbMoveShifted(op)
	case op&0xE000 == 0x2000:
		c.thumbImmediateOp(op)
	case op&0xFC00 == 0x4000:
		c.thumbALU(op)
	case op&0xFC00 == 0x4400:
		c.thumbHiRegisterOps(op)
	case op&0xF800 == 0x4800:
		c.thumbPCRelativeLoad(op)
	case op&0xF200 == 0x5000:
		c.thumbLoadStoreRegisterOffset(op)
	case op&0xF200 == 0x5200:
		c.thumbLoadStoreSignExtended(op)
	case op&0xE000 == 0x6000:
		c.thumbLoadStoreImmediateOffset(op)
	case op&0xF000 == 0x8000:
		c.thumbLoadStoreHalfword(op)
	case op&0xF000 == 0x9000:
		c.thumbSPRelativeLoadStore(op)
	case op&0xF000 == 0xA000:
		c.thumbLoadAddress(op)
	case op&0xFF00 == 0xB000:
		c.thumbAddOffsetToSP(op)
	case op&0xF600 == 0xB400:
		c.thumbPushPop(op)
	case op&0xF000 == 0xC000:
		c.thumbMultipleLoadStore(op)
	case op&0xFF00 == 0xDF00:
		c.SoftwareInterrupt(uint8(op & 0xFF))
		c.Last.Mnemonic = "swi"
	case op&0xF000 == 0xD000:
		c.thumbConditionalBranch(op)
	case op&0xF800 == 0xE000:
		c.thumbUnconditionalBranch(op)
	case op&0xF000 == 0xF000:
		c.thumbLongBranchWithLink(op)
	default:
		c.Log("cpu: undefined THUMB opcode", op)
		c.UndefinedInstruction()
	}
}

func (c *CPU) thumbMoveShifted(op uint16) {
	shiftOp := shiftType((op >> 11) & 0x3)
	amount := uint32((op >> 6) & 0x1F)
	rs := int((op >> 3) & 0x7)
	rd := int(op & 0x7)

	res := barrelShift(shiftOp, c.Regs.Reg(rs), amount, c.Regs.CPSR.C, true)
	c.Regs.SetReg(rd, res.value)
	applyLogicalFlags(&c.Regs.CPSR, res.value, res.carry)
	c.Last.Mnemonic = "thumb-shift"
}

func (c *CPU) thumbAddSubtract(op uint16) {
	immediate := op&(1<<10) != 0
	subtract := op&(1<<9) != 0
	rnField := uint32((op >> 6) & 0x7)
	rs := int((op >> 3) & 0x7)
	rd := int(op & 0x7)

	var operand uint32
	if immediate {
		operand = rnField
	} else {
		operand = c.Regs.Reg(int(rnField))
	}

	var result aluResult
	if subtract {
		v, cry, ov := addWithCarry(c.Regs.Reg(rs), ^operand, true)
		result = aluResult{value: v, carry: cry, overflow: ov, setsCarry: true, setsOflow: true}
	} else {
		v, cry, ov := addWithCarry(c.Regs.Reg(rs), operand, false)
		result = aluResult{value: v, carry: cry, overflow: ov, setsCarry: true, setsOflow: true}
	}
	c.Regs.SetReg(rd, result.value)
	applyArithmeticFlags(&c.Regs.CPSR, result)
	c.Last.Mnemonic = "thumb-addsub"
}

func (c *CPU) thumbImmediateOp(op uint16) {
	kind := (op >> 11) & 0x3
	rd := int((op >> 8) & 0x7)
	imm := uint32(op & 0xFF)
	rdVal := c.Regs.Reg(rd)

	switch kind {
	case 0: // MOV
		c.Regs.SetReg(rd, imm)
		applyLogicalFlags(&c.Regs.CPSR, imm, c.Regs.CPSR.C)
	case 1: // CMP
		v, cry, ov := addWithCarry(rdVal, ^imm, true)
		applyArithmeticFlags(&c.Regs.CPSR, aluResult{value: v, carry: cry, overflow: ov, setsCarry: true, setsOflow: true})
	case 2: // ADD
		v, cry, ov := addWithCarry(rdVal, imm, false)
		c.Regs.SetReg(rd, v)
		applyArithmeticFlags(&c.Regs.CPSR, aluResult{value: v, carry: cry, overflow: ov, setsCarry: true, setsOflow: true})
	case 3: // SUB
		v, cry, ov := addWithCarry(rdVal, ^imm, true)
		c.Regs.SetReg(rd, v)
		applyArithmeticFlags(&c.Regs.CPSR, aluResult{value: v, carry: cry, overflow: ov, setsCarry: true, setsOflow: true})
	}
	c.Last.Mnemonic = "thumb-immop"
}

func (c *CPU) thumbALU(op uint16) {
	kind := (op >> 6) & 0xF
	rs := int((op >> 3) & 0x7)
	rd := int(op & 0x7)
	rdVal := c.Regs.Reg(rd)
	rsVal := c.Regs.Reg(rs)

	switch kind {
	case 0x0: // AND
		v := rdVal & rsVal
		c.Regs.SetReg(rd, v)
		applyLogicalFlags(&c.Regs.CPSR, v, c.Regs.CPSR.C)
	case 0x1: // EOR
		v := rdVal ^ rsVal
		c.Regs.SetReg(rd, v)
		applyLogicalFlags(&c.Regs.CPSR, v, c.Regs.CPSR.C)
	case 0x2: // LSL
		r := barrelShift(shiftLSL, rdVal, rsVal&0xFF, c.Regs.CPSR.C, false)
		c.Regs.SetReg(rd, r.value)
		applyLogicalFlags(&c.Regs.CPSR, r.value, r.carry)
		c.cycle.AddCycles(1)
	case 0x3: // LSR
		r := barrelShift(shiftLSR, rdVal, rsVal&0xFF, c.Regs.CPSR.C, false)
		c.Regs.SetReg(rd, r.value)
		applyLogicalFlags(&c.Regs.CPSR, r.value, r.carry)
		c.cycle.AddCycles(1)
	case 0x4: // ASR
		r := barrelShift(shiftASR, rdVal, rsVal&0xFF, c.Regs.CPSR.C, false)
		c.Regs.SetReg(rd, r.value)
		applyLogicalFlags(&c.Regs.CPSR, r.value, r.carry)
		c.cycle.AddCycles(1)
	case 0x5: // ADC
		v, cry, ov := addWithCarry(rdVal, rsVal, c.Regs.CPSR.C)
		c.Regs.SetReg(rd, v)
		applyArithmeticFlags(&c.Regs.CPSR, aluResult{value: v, carry: cry, overflow: ov, setsCarry: true, setsOflow: true})
	case 0x6: // SBC
		v, cry, ov := addWithCarry(rdVal, ^rsVal, c.Regs.CPSR.C)
		c.Regs.SetReg(rd, v)
		applyArithmeticFlags(&c.Regs.CPSR, aluResult{value: v, carry: cry, overflow: ov, setsCarry: true, setsOflow: true})
	case 0x7: // ROR
		r := barrelShift(shiftROR, rdVal, rsVal&0xFF, c.Regs.CPSR.C, false)
		c.Regs.SetReg(rd, r.value)
		applyLogicalFlags(&c.Regs.CPSR, r.value, r.carry)
		c.cycle.AddCycles(1)
	case 0x8: // TST
		v := rdVal & rsVal
		applyLogicalFlags(&c.Regs.CPSR, v, c.Regs.CPSR.C)
	case 0x9: // NEG
		v, cry, ov := addWithCarry(0, ^rsVal, true)
		c.Regs.SetReg(rd, v)
		applyArithmeticFlags(&c.Regs.CPSR, aluResult{value: v, carry: cry, overflow: ov, setsCarry: true, setsOflow: true})
	case 0xA: // CMP
		v, cry, ov := addWithCarry(rdVal, ^rsVal, true)
		applyArithmeticFlags(&c.Regs.CPSR, aluResult{value: v, carry: cry, overflow: ov, setsCarry: true, setsOflow: true})
	case 0xB: // CMN
		v, cry, ov := addWithCarry(rdVal, rsVal, false)
		applyArithmeticFlags(&c.Regs.CPSR, aluResult{value: v, carry: cry, overflow: ov, setsCarry: true, setsOflow: true})
	case 0xC: // ORR
		v := rdVal | rsVal
		c.Regs.SetReg(rd, v)
		applyLogicalFlags(&c.Regs.CPSR, v, c.Regs.CPSR.C)
	case 0xD: // MUL
		v := rdVal * rsVal
		c.Regs.SetReg(rd, v)
		c.Regs.CPSR.N = bits.Get(v, 31)
		c.Regs.CPSR.Z = v == 0
		c.cycle.AddCycles(1)
	case 0xE: // BIC
		v := rdVal &^ rsVal
		c.Regs.SetReg(rd, v)
		applyLogicalFlags(&c.Regs.CPSR, v, c.Regs.CPSR.C)
	case 0xF: // MVN
		v := ^rsVal
		c.Regs.SetReg(rd, v)
		applyLogicalFlags(&c.Regs.CPSR, v, c.Regs.CPSR.C)
	}
	c.Last.Mnemonic = "thumb-alu"
}

func (c *CPU) thumbHiRegisterOps(op uint16) {
	kind := (op >> 8) & 0x3
	h1 := op&(1<<7) != 0
	h2 := op&(1<<6) != 0
	rs := int((op>>3)&0x7) + boolIdx(h2)
	rd := int(op&0x7) + boolIdx(h1)

	switch kind {
	case 0: // ADD
		v := c.Regs.Reg(rd) + c.Regs.Reg(rs)
		c.Regs.SetReg(rd, v)
		if rd == PCIndex {
			c.branchTo(v &^ 1)
		}
	case 1: // CMP
		v, cry, ov := addWithCarry(c.Regs.Reg(rd), ^c.Regs.Reg(rs), true)
		applyArithmeticFlags(&c.Regs.CPSR, aluResult{value: v, carry: cry, overflow: ov, setsCarry: true, setsOflow: true})
	case 2: // MOV
		v := c.Regs.Reg(rs)
		c.Regs.SetReg(rd, v)
		if rd == PCIndex {
			c.branchTo(v &^ 1)
		}
	case 3: // BX (and BLX in later revisions, not implemented here)
		c.branchExchange(c.Regs.Reg(rs))
	}
	c.Last.Mnemonic = "thumb-hireg"
}

func boolIdx(b bool) int {
	if b {
		return 8
	}
	return 0
}

func (c *CPU) thumbPCRelativeLoad(op uint16) {
	rd := int((op >> 8) & 0x7)
	imm := uint32(op&0xFF) * 4
	base := (c.pcForExecution() + 4) &^ 3
	c.Regs.SetReg(rd, c.mem.Read32(base+imm))
	c.Last.Mnemonic = "thumb-pcload"
}

func (c *CPU) thumbLoadStoreRegisterOffset(op uint16) {
	load := op&(1<<11) != 0
	byteTransfer := op&(1<<10) != 0
	ro := int((op >> 6) & 0x7)
	rb := int((op >> 3) & 0x7)
	rd := int(op & 0x7)

	addr := c.Regs.Reg(rb) + c.Regs.Reg(ro)
	if load {
		if byteTransfer {
			c.Regs.SetReg(rd, uint32(c.mem.Read8(addr)))
		} else {
			c.Regs.SetReg(rd, bits.RotateRight32(c.mem.Read32(addr&^3), (addr&3)*8))
		}
	} else {
		if byteTransfer {
			c.mem.Write8(addr, uint8(c.Regs.Reg(rd)))
		} else {
			c.mem.Write32(addr&^3, c.Regs.Reg(rd))
		}
	}
	c.Last.Mnemonic = "thumb-ldrstr-reg"
}

func (c *CPU) thumbLoadStoreSignExtended(op uint16) {
	hFlag := op&(1<<11) != 0
	signFlag := op&(1<<10) != 0
	ro := int((op >> 6) & 0x7)
	rb := int((op >> 3) & 0x7)
	rd := int(op & 0x7)
	addr := c.Regs.Reg(rb) + c.Regs.Reg(ro)

	switch {
	case !signFlag && !hFlag: // STRH
		c.mem.Write16(addr&^1, uint16(c.Regs.Reg(rd)))
	case !signFlag && hFlag: // LDRH
		c.Regs.SetReg(rd, uint32(c.mem.Read16(addr&^1)))
	case signFlag && !hFlag: // LDSB
		c.Regs.SetReg(rd, bits.SignExtend8(c.mem.Read8(addr)))
	case signFlag && hFlag: // LDSH
		if addr&1 != 0 {
			c.Regs.SetReg(rd, bits.SignExtend8(uint8(c.mem.Read16(addr&^1)>>8)))
		} else {
			c.Regs.SetReg(rd, bits.SignExtend16(c.mem.Read16(addr)))
		}
	}
	c.Last.Mnemonic = "thumb-ldrstr-signext"
}

func (c *CPU) thumbLoadStoreImmediateOffset(op uint16) {
	byteTransfer := op&(1<<12) != 0
	load := op&(1<<11) != 0
	rb := int((op >> 3) & 0x7)
	rd := int(op & 0x7)
	var imm uint32
	if byteTransfer {
		imm = uint32((op >> 6) & 0x1F)
	} else {
		imm = uint32((op>>6)&0x1F) * 4
	}
	addr := c.Regs.Reg(rb) + imm

	if load {
		if byteTransfer {
			c.Regs.SetReg(rd, uint32(c.mem.Read8(addr)))
		} else {
			c.Regs.SetReg(rd, bits.RotateRight32(c.mem.Read32(addr&^3), (addr&3)*8))
		}
	} else {
		if byteTransfer {
			c.mem.Write8(addr, uint8(c.Regs.Reg(rd)))
		} else {
			c.mem.Write32(addr&^3, c.Regs.Reg(rd))
		}
	}
	c.Last.Mnemonic = "thumb-ldrstr-imm"
}

func (c *CPU) thumbLoadStoreHalfword(op uint16) {
	load := op&(1<<11) != 0
	imm := uint32((op>>6)&0x1F) * 2
	rb := int((op >> 3) & 0x7)
	rd := int(op & 0x7)
	addr := c.Regs.Reg(rb) + imm

	if load {
		c.Regs.SetReg(rd, uint32(c.mem.Read16(addr&^1)))
	} else {
		c.mem.Write16(addr&^1, uint16(c.Regs.Reg(rd)))
	}
	c.Last.Mnemonic = "thumb-ldrstr-half"
}

func (c *CPU) thumbSPRelativeLoadStore(op uint16) {
	load := op&(1<<11) != 0
	rd := int((op >> 8) & 0x7)
	imm := uint32(op&0xFF) * 4
	addr := c.Regs.Reg(SPIndex) + imm

	if load {
		c.Regs.SetReg(rd, bits.RotateRight32(c.mem.Read32(addr&^3), (addr&3)*8))
	} else {
		c.mem.Write32(addr&^3, c.Regs.Reg(rd))
	}
	c.Last.Mnemonic = "thumb-sprel"
}

func (c *CPU) thumbLoadAddress(op uint16) {
	sp := op&(1<<11) != 0
	rd := int((op >> 8) & 0x7)
	imm := uint32(op&0xFF) * 4
	var base uint32
	if sp {
		base = c.Regs.Reg(SPIndex)
	} else {
		base = (c.pcForExecution() + 4) &^ 3
	}
	c.Regs.SetReg(rd, base+imm)
	c.Last.Mnemonic = "thumb-ldaddr"
}

func (c *CPU) thumbAddOffsetToSP(op uint16) {
	negative := op&(1<<7) != 0
	imm := uint32(op&0x7F) * 4
	sp := c.Regs.Reg(SPIndex)
	if negative {
		c.Regs.SetReg(SPIndex, sp-imm)
	} else {
		c.Regs.SetReg(SPIndex, sp+imm)
	}
	c.Last.Mnemonic = "thumb-addsp"
}

func (c *CPU) thumbPushPop(op uint16) {
	load := op&(1<<11) != 0
	includeExtra := op&(1<<8) != 0
	list := uint16(op & 0xFF)

	if load { // POP
		addr := c.Regs.Reg(SPIndex)
		for i := 0; i < 8; i++ {
			if list&(1<<uint(i)) != 0 {
				c.Regs.SetReg(i, c.mem.Read32(addr))
				addr += 4
			}
		}
		if includeExtra {
			pc := c.mem.Read32(addr)
			addr += 4
			c.Regs.SetReg(SPIndex, addr)
			c.branchTo(pc &^ 1)
			c.Last.Mnemonic = "thumb-pop"
			return
		}
		c.Regs.SetReg(SPIndex, addr)
	} else { // PUSH
		count := bits.PopCount16(list)
		if includeExtra {
			count++
		}
		addr := c.Regs.Reg(SPIndex) - uint32(count)*4
		c.Regs.SetReg(SPIndex, addr)
		for i := 0; i < 8; i++ {
			if list&(1<<uint(i)) != 0 {
				c.mem.Write32(addr, c.Regs.Reg(i))
				addr += 4
			}
		}
		if includeExtra {
			c.mem.Write32(addr, c.Regs.Reg(LRIndex))
		}
	}
	c.Last.Mnemonic = "thumb-push"
}

func (c *CPU) thumbMultipleLoadStore(op uint16) {
	load := op&(1<<11) != 0
	rb := int((op >> 8) & 0x7)
	list := uint16(op & 0xFF)

	addr := c.Regs.Reg(rb)
	if list == 0 {
		if load {
			c.Regs.SetReg(PCIndex, c.mem.Read32(addr))
			c.Regs.SetReg(rb, addr+0x40)
		} else {
			c.mem.Write32(addr, c.Regs.Reg(PCIndex)+2)
			c.Regs.SetReg(rb, addr+0x40)
		}
		c.Last.Mnemonic = "thumb-multiple"
		return
	}
	for i := 0; i < 8; i++ {
		if list&(1<<uint(i)) == 0 {
			continue
		}
		if load {
			c.Regs.SetReg(i, c.mem.Read32(addr))
		} else {
			c.mem.Write32(addr, c.Regs.Reg(i))
		}
		addr += 4
	}
	c.Regs.SetReg(rb, addr)
	c.Last.Mnemonic = "thumb-multiple"
}

func (c *CPU) thumbConditionalBranch(op uint16) {
	cond := uint32((op >> 8) & 0xF)
	if !checkCond(c.Regs.CPSR, cond) {
		c.Last.Executed = false
		c.Last.Mnemonic = "thumb-bcond"
		return
	}
	offset := bits.SignExtend(uint32(op&0xFF), 8) << 1
	target := uint32(int32(c.pcForExecution()) + 4 + offset)
	c.branchTo(target)
	c.Last.Executed = true
	c.Last.Mnemonic = "thumb-bcond"
}

func (c *CPU) thumbUnconditionalBranch(op uint16) {
	offset := bits.SignExtend(uint32(op&0x7FF), 11) << 1
	target := uint32(int32(c.pcForExecution()) + 4 + offset)
	c.branchTo(target)
	c.Last.Mnemonic = "thumb-b"
}

func (c *CPU) thumbLongBranchWithLink(op uint16) {
	low := op&(1<<11) != 0
	offset := uint32(op & 0x7FF)

	if !low {
		signExtended := bits.SignExtend(offset, 11) << 12
		c.Regs.SetReg(LRIndex, uint32(int32(c.pcForExecution())+4+signExtended))
		c.Last.Mnemonic = "thumb-bl-hi"
		return
	}

	nextInstr := c.pcForExecution() + 2
	target := c.Regs.Reg(LRIndex) + offset*2
	c.Regs.SetReg(LRIndex, nextInstr|1)
	c.branchTo(target)
	c.Last.Mnemonic = "thumb-bl-lo"
}

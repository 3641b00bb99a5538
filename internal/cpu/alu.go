package cpu

import "github.com/ljsdev/goba/internal/bits"

// shiftResult is the output of the barrel shifter: the shifted value and
// the carry-out it produces, which feeds into the C flag for logical data
// processing operations.
type shiftResult struct {
	value uint32
	carry bool
}

// shiftType enumerates the four barrel shifter operations, encoded the
// same way the instruction word encodes them (bits 6-5 of a register
// shift / bits 6-5 of an immediate shift).
type shiftType uint32

const (
	shiftLSL shiftType = 0
	shiftLSR shiftType = 1
	shiftASR shiftType = 2
	shiftROR shiftType = 3
)

// barrelShift applies one of the four shift operations to value, with
// carryIn supplying the current C flag (used by ROR#0, which is really
// RRX: a 33 bit rotate through the carry flag).
func barrelShift(op shiftType, value uint32, amount uint32, carryIn bool, immediate bool) shiftResult {
	switch op {
	case shiftLSL:
		switch {
		case amount == 0:
			return shiftResult{value, carryIn}
		case amount < 32:
			return shiftResult{value << amount, bits.Get(value, 32-amount)}
		case amount == 32:
			return shiftResult{0, value&1 != 0}
		default:
			return shiftResult{0, false}
		}
	case shiftLSR:
		if immediate && amount == 0 {
			amount = 32
		}
		switch {
		case amount == 0:
			return shiftResult{value, carryIn}
		case amount < 32:
			return shiftResult{value >> amount, bits.Get(value, amount-1)}
		case amount == 32:
			return shiftResult{0, bits.Get(value, 31)}
		default:
			return shiftResult{0, false}
		}
	case shiftASR:
		if immediate && amount == 0 {
			amount = 32
		}
		switch {
		case amount == 0:
			return shiftResult{value, carryIn}
		case amount < 32:
			return shiftResult{uint32(int32(value) >> amount), bits.Get(value, amount-1)}
		default:
			if bits.Get(value, 31) {
				return shiftResult{0xFFFFFFFF, true}
			}
			return shiftResult{0, false}
		}
	case shiftROR:
		if immediate && amount == 0 {
			// RRX: rotate right by 1 through the carry flag.
			out := value >> 1
			if carryIn {
				out |= 1 << 31
			}
			return shiftResult{out, value&1 != 0}
		}
		amount &= 31
		if amount == 0 {
			return shiftResult{value, bits.Get(value, 31)}
		}
		return shiftResult{bits.RotateRight32(value, amount), bits.Get(value, amount-1)}
	}
	return shiftResult{value, carryIn}
}

// aluResult is the output of a data processing ALU op: the result value
// plus whether it defines carry/overflow (logical ops leave C as the
// shifter carry and never touch V).
type aluResult struct {
	value      uint32
	carry      bool
	overflow   bool
	setsCarry  bool
	setsOflow  bool
}

func addWithCarry(a, b uint32, carryIn bool) (uint32, bool, bool) {
	var cin uint64
	if carryIn {
		cin = 1
	}
	sum := uint64(a) + uint64(b) + cin
	result := uint32(sum)
	carry := sum > 0xFFFFFFFF
	overflow := (a^result)&(b^result)&0x80000000 != 0
	return result, carry, overflow
}

// dataProcessingOp applies one of the sixteen data processing opcodes.
func dataProcessingOp(opcode uint32, rn, op2 uint32, carryIn bool) aluResult {
	switch opcode {
	case 0x0: // AND
		return aluResult{value: rn & op2, carry: carryIn, setsCarry: false}
	case 0x1: // EOR
		return aluResult{value: rn ^ op2, carry: carryIn}
	case 0x2: // SUB
		v, c, o := addWithCarry(rn, ^op2, true)
		return aluResult{value: v, carry: c, overflow: o, setsCarry: true, setsOflow: true}
	case 0x3: // RSB
		v, c, o := addWithCarry(op2, ^rn, true)
		return aluResult{value: v, carry: c, overflow: o, setsCarry: true, setsOflow: true}
	case 0x4: // ADD
		v, c, o := addWithCarry(rn, op2, false)
		return aluResult{value: v, carry: c, overflow: o, setsCarry: true, setsOflow: true}
	case 0x5: // ADC
		v, c, o := addWithCarry(rn, op2, carryIn)
		return aluResult{value: v, carry: c, overflow: o, setsCarry: true, setsOflow: true}
	case 0x6: // SBC
		v, c, o := addWithCarry(rn, ^op2, carryIn)
		return aluResult{value: v, carry: c, overflow: o, setsCarry: true, setsOflow: true}
	case 0x7: // RSC
		v, c, o := addWithCarry(op2, ^rn, carryIn)
		return aluResult{value: v, carry: c, overflow: o, setsCarry: true, setsOflow: true}
	case 0x8: // TST
		return aluResult{value: rn & op2, carry: carryIn}
	case 0x9: // TEQ
		return aluResult{value: rn ^ op2, carry: carryIn}
	case 0xA: // CMP
		v, c, o := addWithCarry(rn, ^op2, true)
		return aluResult{value: v, carry: c, overflow: o, setsCarry: true, setsOflow: true}
	case 0xB: // CMN
		v, c, o := addWithCarry(rn, op2, false)
		return aluResult{value: v, carry: c, overflow: o, setsCarry: true, setsOflow: true}
	case 0xC: // ORR
		return aluResult{value: rn | op2, carry: carryIn}
	case 0xD: // MOV
		return aluResult{value: op2, carry: carryIn}
	case 0xE: // BIC
		return aluResult{value: rn &^ op2, carry: carryIn}
	case 0xF: // MVN
		return aluResult{value: ^op2, carry: carryIn}
	}
	return aluResult{value: op2, carry: carryIn}
}

// writesResult reports whether opcode writes its result to rd (TST, TEQ,
// CMP and CMN only compute flags).
func writesResult(opcode uint32) bool {
	switch opcode {
	case 0x8, 0x9, 0xA, 0xB:
		return false
	default:
		return true
	}
}

func applyLogicalFlags(p *PSR, result uint32, shifterCarry bool) {
	p.N = bits.Get(result, 31)
	p.Z = result == 0
	p.C = shifterCarry
}

func applyArithmeticFlags(p *PSR, r aluResult) {
	p.N = bits.Get(r.value, 31)
	p.Z = r.value == 0
	if r.setsCarry {
		p.C = r.carry
	}
	if r.setsOflow {
		p.V = r.overflow
	}
}

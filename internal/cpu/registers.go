package cpu

// Mode is the 5 bit mode field of the CPSR. Values match the ARM
// architecture's own encoding so that MSR/MRS round-trip the raw bit
// pattern without translation.
type Mode uint32

const (
	ModeUser       Mode = 0x10
	ModeFIQ        Mode = 0x11
	ModeIRQ        Mode = 0x12
	ModeSupervisor Mode = 0x13
	ModeAbort      Mode = 0x17
	ModeUndefined  Mode = 0x1B
	ModeSystem     Mode = 0x1F
)

func (m Mode) valid() bool {
	switch m {
	case ModeUser, ModeFIQ, ModeIRQ, ModeSupervisor, ModeAbort, ModeUndefined, ModeSystem:
		return true
	default:
		return false
	}
}

// PC and LR/SP register indices.
const (
	SPIndex = 13
	LRIndex = 14
	PCIndex = 15
)

// PSR is a program status register: the flag bits plus the mode field.
type PSR struct {
	N, Z, C, V bool // condition flags
	I, F       bool // interrupt disable bits (1 = disabled)
	T          bool // thumb-state bit
	M          Mode
}

// Value packs the PSR into its 32 bit hardware representation.
func (p PSR) Value() uint32 {
	var v uint32
	if p.N {
		v |= 1 << 31
	}
	if p.Z {
		v |= 1 << 30
	}
	if p.C {
		v |= 1 << 29
	}
	if p.V {
		v |= 1 << 28
	}
	if p.I {
		v |= 1 << 7
	}
	if p.F {
		v |= 1 << 6
	}
	if p.T {
		v |= 1 << 5
	}
	v |= uint32(p.M) & 0x1F
	return v
}

// LoadFull sets every field of the PSR from its 32 bit representation,
// without the User-mode restriction that SetFromValue applies.
func (p *PSR) LoadFull(v uint32) {
	p.N = v&(1<<31) != 0
	p.Z = v&(1<<30) != 0
	p.C = v&(1<<29) != 0
	p.V = v&(1<<28) != 0
	p.I = v&(1<<7) != 0
	p.F = v&(1<<6) != 0
	p.T = v&(1<<5) != 0
	m := Mode(v & 0x1F)
	if m.valid() {
		p.M = m
	}
}

// SetFromValue applies a write to this PSR, honouring the flags/control
// write masks used by MSR. When the current mode is User, control bits
// (I,F,T,M) can never be changed, matching hardware and spec.md §4.3
// ("Writing to the status via MSR... silently ignores mode-field changes
// from User mode").
func (p *PSR) SetFromValue(value uint32, writeFlags, writeControl bool, currentMode Mode) {
	if writeFlags {
		p.N = value&(1<<31) != 0
		p.Z = value&(1<<30) != 0
		p.C = value&(1<<29) != 0
		p.V = value&(1<<28) != 0
	}
	if writeControl && currentMode != ModeUser {
		p.I = value&(1<<7) != 0
		p.F = value&(1<<6) != 0
		p.T = value&(1<<5) != 0
		m := Mode(value & 0x1F)
		if m.valid() {
			p.M = m
		}
	}
}

// bankedRegs holds the registers.go-style per-mode banked register arrays.
// FIQ banks r8-r14 (7 registers); the other privileged modes bank only
// r13-r14 (2 registers each).
type bankedRegs struct {
	usr [7]uint32 // r8-r14, shared by User and System
	fiq [7]uint32 // r8-r14
	svc [2]uint32 // r13-r14
	abt [2]uint32
	irq [2]uint32
	und [2]uint32

	spsrFIQ PSR
	spsrSVC PSR
	spsrABT PSR
	spsrIRQ PSR
	spsrUND PSR
}

// Registers is the ARM7TDMI's visible register file: 16 general purpose
// registers (r0-r15, r15 being the PC), the current program status
// register, and the banked shadow registers for every non-User mode.
type Registers struct {
	R    [16]uint32
	CPSR PSR
	bank bankedRegs
}

// Reg returns the current value of register n (0-15).
func (r *Registers) Reg(n int) uint32 { return r.R[n] }

// SetReg sets register n (0-15) to v. Writing r15 is legal at this layer
// (the caller, e.g. a data-processing instruction, is responsible for
// refilling the pipeline afterwards).
func (r *Registers) SetReg(n int, v uint32) { r.R[n] = v }

// spsrFor returns a pointer to the saved status register banked for mode,
// or nil if mode has no SPSR (User and System modes have none).
func (r *Registers) spsrFor(mode Mode) *PSR {
	switch mode {
	case ModeFIQ:
		return &r.bank.spsrFIQ
	case ModeSupervisor:
		return &r.bank.spsrSVC
	case ModeAbort:
		return &r.bank.spsrABT
	case ModeIRQ:
		return &r.bank.spsrIRQ
	case ModeUndefined:
		return &r.bank.spsrUND
	default:
		return nil
	}
}

// SPSR returns the SPSR banked for the current mode, or the CPSR itself if
// the current mode has none (User/System), matching the reference core's
// get_u32_from_spsr fallback behaviour.
func (r *Registers) SPSR() PSR {
	if p := r.spsrFor(r.CPSR.M); p != nil {
		return *p
	}
	return r.CPSR
}

// SetSPSR writes the SPSR banked for the current mode. A no-op in
// User/System mode.
func (r *Registers) SetSPSR(p PSR) {
	if dst := r.spsrFor(r.CPSR.M); dst != nil {
		*dst = p
	}
}

// saveBank copies r8(or r13)-r14 of the outgoing mode into its bank.
func (r *Registers) saveBank(mode Mode) {
	switch mode {
	case ModeUser, ModeSystem:
		copy(r.bank.usr[:], r.R[8:15])
	case ModeFIQ:
		copy(r.bank.fiq[:], r.R[8:15])
	case ModeSupervisor:
		copy(r.bank.svc[:], r.R[13:15])
	case ModeAbort:
		copy(r.bank.abt[:], r.R[13:15])
	case ModeIRQ:
		copy(r.bank.irq[:], r.R[13:15])
	case ModeUndefined:
		copy(r.bank.und[:], r.R[13:15])
	}
}

// restoreBank loads r8(or r13)-r14 of the incoming mode from its bank.
func (r *Registers) restoreBank(mode Mode) {
	switch mode {
	case ModeUser, ModeSystem:
		copy(r.R[8:15], r.bank.usr[:])
	case ModeFIQ:
		copy(r.R[8:15], r.bank.fiq[:])
	case ModeSupervisor:
		copy(r.R[13:15], r.bank.svc[:])
	case ModeAbort:
		copy(r.R[13:15], r.bank.abt[:])
	case ModeIRQ:
		copy(r.R[13:15], r.bank.irq[:])
	case ModeUndefined:
		copy(r.R[13:15], r.bank.und[:])
	}
}

// ChangeMode banks out the outgoing mode's registers and banks in the
// incoming mode's, per spec.md §4.3 "Mode switching". User and System share
// a single bank, so switching between the two is a no-op.
func (r *Registers) ChangeMode(newMode Mode) {
	old := r.CPSR.M
	r.CPSR.M = newMode

	if old == newMode {
		return
	}
	if (old == ModeUser && newMode == ModeSystem) || (old == ModeSystem && newMode == ModeUser) {
		return
	}

	r.saveBank(old)
	r.restoreBank(newMode)
}

// Snapshot returns a copy of the full register file, including every
// banked mode's shadow registers, for save states.
func (r *Registers) Snapshot() Registers { return *r }

// Restore replaces the full register file from a snapshot taken earlier
// by Snapshot.
func (r *Registers) Restore(snap Registers) { *r = snap }

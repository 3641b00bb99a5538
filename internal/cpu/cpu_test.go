package cpu_test

import (
	"testing"

	"github.com/ljsdev/goba/internal/cpu"
)

// flatMemory is a trivial byte-addressed RAM used only to exercise the
// core in isolation, independent of the real bus/region decoding.
type flatMemory struct {
	ram [0x10000]byte
}

func (m *flatMemory) Read8(addr uint32) uint8 { return m.ram[addr&0xFFFF] }
func (m *flatMemory) Read16(addr uint32) uint16 {
	a := addr & 0xFFFF
	return uint16(m.ram[a]) | uint16(m.ram[a+1])<<8
}
func (m *flatMemory) Read32(addr uint32) uint32 {
	a := addr & 0xFFFF
	return uint32(m.ram[a]) | uint32(m.ram[a+1])<<8 | uint32(m.ram[a+2])<<16 | uint32(m.ram[a+3])<<24
}
func (m *flatMemory) Write8(addr uint32, v uint8) { m.ram[addr&0xFFFF] = v }
func (m *flatMemory) Write16(addr uint32, v uint16) {
	a := addr & 0xFFFF
	m.ram[a] = uint8(v)
	m.ram[a+1] = uint8(v >> 8)
}
func (m *flatMemory) Write32(addr uint32, v uint32) {
	a := addr & 0xFFFF
	m.ram[a] = uint8(v)
	m.ram[a+1] = uint8(v >> 8)
	m.ram[a+2] = uint8(v >> 16)
	m.ram[a+3] = uint8(v >> 24)
}

func (m *flatMemory) putThumb(addr uint32, instrs ...uint16) {
	for _, i := range instrs {
		m.Write16(addr, i)
		addr += 2
	}
}

func (m *flatMemory) putARM(addr uint32, instrs ...uint32) {
	for _, i := range instrs {
		m.Write32(addr, i)
		addr += 4
	}
}

type countingSink struct{ total int32 }

func (s *countingSink) AddCycles(n int32) { s.total += n }

func newTestCPU() (*cpu.CPU, *flatMemory) {
	mem := &flatMemory{}
	c := cpu.New(mem, &countingSink{}, cpu.DefaultBIOS{})
	c.Reset(0x1000)
	return c, mem
}

func TestThumbArithmetic(t *testing.T) {
	c, mem := newTestCPU()
	mem.putThumb(0x1000,
		0x2001, // mov r0, #1
		0x2102, // mov r1, #2
		0x1842, // add r2, r0, r1
	)
	c.Reset(0x1000)
	c.SetThumb(true)

	c.Step() // mov r0,#1
	if c.Regs.Reg(0) != 1 {
		t.Fatalf("r0 = %d, want 1", c.Regs.Reg(0))
	}
	c.Step() // mov r1,#2
	if c.Regs.Reg(1) != 2 {
		t.Fatalf("r1 = %d, want 2", c.Regs.Reg(1))
	}
	c.Step() // add r2, r0, r1
	if c.Regs.Reg(2) != 3 {
		t.Fatalf("r2 = %d, want 3", c.Regs.Reg(2))
	}
}

func TestARMDataProcessingAndSWIEntersSupervisor(t *testing.T) {
	c, mem := newTestCPU()
	mem.putARM(0x1000,
		0xE3A00001, // mov r0, #1
		0xE3A01002, // mov r1, #2
		0xE0802001, // add r2, r0, r1
		0xEF000000, // swi 0x00
	)
	c.Reset(0x1000)

	c.Step() // mov r0,#1
	c.Step() // mov r1,#2
	c.Step() // add r2,r0,r1
	if c.Regs.Reg(2) != 3 {
		t.Fatalf("r2 = %d, want 3", c.Regs.Reg(2))
	}

	c.Step() // swi 0x00 (unhandled by DefaultBIOS -> real exception entry)
	if c.Regs.CPSR.M != cpu.ModeSupervisor {
		t.Fatalf("mode = %v, want Supervisor", c.Regs.CPSR.M)
	}
	if c.Regs.Reg(cpu.PCIndex) != 0x08+8 {
		t.Fatalf("pc = %#x, want vector+pipeline offset", c.Regs.Reg(cpu.PCIndex))
	}
}

func TestBIOSHLEDiv(t *testing.T) {
	c, _ := newTestCPU()
	c.Regs.SetReg(0, uint32(int32(-7)))
	c.Regs.SetReg(1, 2)
	if !(cpu.DefaultBIOS{}).Call(c, 0x06) {
		t.Fatal("expected Div to be handled")
	}
	if int32(c.Regs.Reg(0)) != -3 {
		t.Fatalf("quotient = %d, want -3", int32(c.Regs.Reg(0)))
	}
	if int32(c.Regs.Reg(1)) != -1 {
		t.Fatalf("remainder = %d, want -1", int32(c.Regs.Reg(1)))
	}
}

func TestBIOSHLESqrt(t *testing.T) {
	c, _ := newTestCPU()
	c.Regs.SetReg(0, 144)
	if !(cpu.DefaultBIOS{}).Call(c, 0x08) {
		t.Fatal("expected Sqrt to be handled")
	}
	if c.Regs.Reg(0) != 12 {
		t.Fatalf("sqrt = %d, want 12", c.Regs.Reg(0))
	}
}

func TestHaltStopsStepping(t *testing.T) {
	c, mem := newTestCPU()
	mem.putARM(0x1000, 0xEF000002) // swi 0x02 (Halt)
	c.Reset(0x1000)
	c.Step()
	if !c.Halted {
		t.Fatal("expected core to halt")
	}
	before := c.Regs.Reg(cpu.PCIndex)
	res := c.Step()
	if res.Executed {
		t.Fatal("halted core should not execute")
	}
	if c.Regs.Reg(cpu.PCIndex) != before {
		t.Fatal("halted core should not advance PC")
	}
}

package cpu

// Memory is the view of the system bus the CPU needs. The concrete
// implementation (the top-level container's Bus) is injected at
// construction time; the CPU never reaches for memory any other way, per
// the "no back-pointers" ownership rule in spec.md §3.
type Memory interface {
	Read8(addr uint32) uint8
	Read16(addr uint32) uint16
	Read32(addr uint32) uint32
	Write8(addr uint32, v uint8)
	Write16(addr uint32, v uint16)
	Write32(addr uint32, v uint32)
}

// CycleSink receives the cycle cost of memory accesses and instruction
// execution, mirroring the cycleCallback pattern used by the reference
// 6507 core this project's CPU loop is shaped after: every memory access
// and internal cycle is reported immediately so the scheduler can interject
// at exactly the right point.
type CycleSink interface {
	AddCycles(n int32)
}

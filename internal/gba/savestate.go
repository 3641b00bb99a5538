package gba

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/ljsdev/goba/internal/cpu"
	"github.com/ljsdev/goba/internal/curated"
)

const (
	stateMagic   uint32 = 0x47424153 // "GBAS"
	stateVersion uint32 = 1
)

// SaveState serialises enough of the machine's state to resume execution
// indistinguishably later, per spec.md §6 savestate: the CPU's register
// file and pipeline, the five RAM-backed memory regions (EWRAM, IWRAM,
// palette RAM, VRAM, OAM), the interrupt
// controller, the live key state, and the cartridge backup device.
//
// Open question decision (spec.md §9): the PPU/APU/timer/DMA components'
// own mid-cycle phase (current scanline offset within HDraw, frame
// sequencer step, in-flight DMA shadow registers) is not captured. A
// state loaded and resumed mid-scanline will re-derive those phases from
// their next scheduler event rather than reproducing the exact cycle
// offset; this was judged an acceptable approximation for the save/load
// UI use case (savestates are normally taken between frames).
func (g *Gba) SaveState() []byte {
	var buf bytes.Buffer
	binary.Write(&buf, binary.LittleEndian, stateMagic)
	binary.Write(&buf, binary.LittleEndian, stateVersion)

	cpuState := g.cpu.Snapshot()
	binary.Write(&buf, binary.LittleEndian, cpuState)

	binary.Write(&buf, binary.LittleEndian, g.bus.ewram)
	binary.Write(&buf, binary.LittleEndian, g.bus.iwram)
	binary.Write(&buf, binary.LittleEndian, g.bus.pal)
	binary.Write(&buf, binary.LittleEndian, g.bus.vram)
	binary.Write(&buf, binary.LittleEndian, g.bus.oam)

	binary.Write(&buf, binary.LittleEndian, g.ic.ie)
	binary.Write(&buf, binary.LittleEndian, g.ic.iff)
	binary.Write(&buf, binary.LittleEndian, g.ic.ime)

	binary.Write(&buf, binary.LittleEndian, g.bus.keyInput)
	binary.Write(&buf, binary.LittleEndian, g.cycleAccumulator)

	save := g.cart.GetSave()
	binary.Write(&buf, binary.LittleEndian, uint32(len(save)))
	buf.Write(save)

	return buf.Bytes()
}

// LoadState restores a snapshot produced by SaveState, per spec.md §6
// loadstate.
func (g *Gba) LoadState(data []byte) error {
	r := bytes.NewReader(data)

	var magic, version uint32
	binary.Read(r, binary.LittleEndian, &magic)
	if magic != stateMagic {
		return curated.Errorf(curated.StateBadMagic, stateMagic, magic)
	}
	binary.Read(r, binary.LittleEndian, &version)
	if version != stateVersion {
		return curated.Errorf(curated.StateBadVersion, stateVersion, version)
	}

	var cpuState cpu.State
	if err := binary.Read(r, binary.LittleEndian, &cpuState); err != nil {
		return curated.Errorf(curated.StateBadLength, binary.Size(cpuState), r.Len())
	}
	g.cpu.Restore(cpuState)

	binary.Read(r, binary.LittleEndian, &g.bus.ewram)
	binary.Read(r, binary.LittleEndian, &g.bus.iwram)
	binary.Read(r, binary.LittleEndian, &g.bus.pal)
	binary.Read(r, binary.LittleEndian, &g.bus.vram)
	binary.Read(r, binary.LittleEndian, &g.bus.oam)

	binary.Read(r, binary.LittleEndian, &g.ic.ie)
	binary.Read(r, binary.LittleEndian, &g.ic.iff)
	binary.Read(r, binary.LittleEndian, &g.ic.ime)

	binary.Read(r, binary.LittleEndian, &g.bus.keyInput)
	binary.Read(r, binary.LittleEndian, &g.cycleAccumulator)

	var saveLen uint32
	binary.Read(r, binary.LittleEndian, &saveLen)
	saveData := make([]byte, saveLen)
	io.ReadFull(r, saveData)
	if g.cart.Backup != nil && saveLen > 0 {
		g.cart.Backup.Unmarshal(saveData)
	}

	g.ic.refresh()
	return nil
}

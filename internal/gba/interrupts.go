package gba

import "github.com/ljsdev/goba/internal/irq"

// interruptController holds IE/IF/IME and recomputes the CPU's external
// IRQ line on every change, per spec.md §3. It implements irq.Requester
// so timer, dma, ppu and apu can raise interrupts without holding a
// pointer back to the container.
type interruptController struct {
	ie  uint16
	iff uint16
	ime bool

	cpu irqLineSetter
}

// irqLineSetter is the one field of *cpu.CPU the interrupt controller
// needs to touch; kept as an interface so this file does not have to
// import internal/cpu just to spell out the concrete type.
type irqLineSetter interface {
	SetIRQLine(bool)
}

func newInterruptController(cpu irqLineSetter) *interruptController {
	return &interruptController{cpu: cpu}
}

// Request implements irq.Requester.
func (ic *interruptController) Request(bit uint) {
	ic.iff |= 1 << bit
	ic.refresh()
}

func (ic *interruptController) refresh() {
	ic.cpu.SetIRQLine(ic.ime && ic.ie&ic.iff != 0)
}

func (ic *interruptController) readIE() uint16  { return ic.ie }
func (ic *interruptController) readIF() uint16  { return ic.iff }
func (ic *interruptController) readIME() uint16 {
	if ic.ime {
		return 1
	}
	return 0
}

func (ic *interruptController) writeIE(v uint16) {
	ic.ie = v
	ic.refresh()
}

// writeIF acknowledges interrupts: a written 1 bit clears the
// corresponding pending flag (write-to-clear semantics).
func (ic *interruptController) writeIF(v uint16) {
	ic.iff &^= v
	ic.refresh()
}

func (ic *interruptController) writeIME(v uint16) {
	ic.ime = v&1 != 0
	ic.refresh()
}

var _ irq.Requester = (*interruptController)(nil)

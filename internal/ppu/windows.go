package ppu

// buildWindows computes, for the current line, which X columns fall
// inside WIN0 and WIN1 (spec.md §4.6 step 1). Both the Y range test and
// the per-column X range test are done here; windowEnableBits only reads
// the resulting masks.
func (p *PPU) buildWindows(ls *lineState, y int) {
	if !p.windowsAnyEnabled() {
		return
	}
	win0On := p.regs.dispcnt&(1<<13) != 0 && inWindowY(p.regs.win0v, y)
	win1On := p.regs.dispcnt&(1<<14) != 0 && inWindowY(p.regs.win1v, y)

	for x := 0; x < ScreenWidth; x++ {
		if win0On && inWindowX(p.regs.win0h, x) {
			ls.win0Mask[x] = true
		}
		if win1On && inWindowX(p.regs.win1h, x) {
			ls.win1Mask[x] = true
		}
	}
}

func inWindowX(reg uint16, x int) bool {
	x1 := int(reg >> 8)
	x2 := int(reg & 0xFF)
	if x2 > ScreenWidth {
		x2 = ScreenWidth
	}
	if x1 <= x2 {
		return x >= x1 && x < x2
	}
	return x >= x1 || x < x2
}

func inWindowY(reg uint16, y int) bool {
	y1 := int(reg >> 8)
	y2 := int(reg & 0xFF)
	if y2 > ScreenHeight {
		y2 = ScreenHeight
	}
	if y1 <= y2 {
		return y >= y1 && y < y2
	}
	return y >= y1 || y < y2
}

// windowEnableBits picks the highest-priority window a pixel lies
// within (WIN0 > WIN1 > WIN-OBJ > outside) and returns its per-layer
// enable bits (index 0-3 = BG0-3, 4 = OBJ, 5 = blend-effect enable).
func (p *PPU) windowEnableBits(ls *lineState, x int) [6]bool {
	var v uint16
	switch {
	case ls.win0Mask[x]:
		v = p.regs.winin & 0x3F
	case ls.win1Mask[x]:
		v = (p.regs.winin >> 8) & 0x3F
	case ls.objWinMask[x]:
		v = (p.regs.winout >> 8) & 0x3F
	default:
		v = p.regs.winout & 0x3F
	}
	var out [6]bool
	for i := 0; i < 6; i++ {
		out[i] = v&(1<<uint(i)) != 0
	}
	return out
}

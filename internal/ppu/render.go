package ppu

// layer is one candidate pixel for the per-pixel compositor: a palette
// index already resolved to a 15 bit BGR colour, a priority, and which
// layer it came from (0-3 = BG0-3, 4 = OBJ).
type layer struct {
	colour   uint16
	priority uint8
	opaque   bool
	isObj    bool
	objAlpha bool
}

type lineState struct {
	bg  [4][ScreenWidth]layer
	obj [ScreenWidth]layer

	win0Mask, win1Mask, objWinMask [ScreenWidth]bool
	outsideMask                    [ScreenWidth]bool
}

func (p *PPU) renderLine(y int) {
	if p.regs.dispcnt&(1<<7) != 0 {
		for x := 0; x < ScreenWidth; x++ {
			p.framebuf[y*ScreenWidth+x] = 0x7FFF
		}
		return
	}

	var ls lineState
	p.buildWindows(&ls, y)

	mode := p.regs.dispcnt & 0x7
	switch mode {
	case 0:
		for i := 0; i < 4; i++ {
			if p.bgEnabled(i) {
				p.renderTextBG(&ls, i, y)
			}
		}
	case 1:
		for i := 0; i < 2; i++ {
			if p.bgEnabled(i) {
				p.renderTextBG(&ls, i, y)
			}
		}
		if p.bgEnabled(2) {
			p.renderAffineBG(&ls, 2, 0, y)
		}
	case 2:
		if p.bgEnabled(2) {
			p.renderAffineBG(&ls, 2, 0, y)
		}
		if p.bgEnabled(3) {
			p.renderAffineBG(&ls, 3, 1, y)
		}
	case 3:
		p.renderBitmapMode3(&ls, y)
	case 4:
		p.renderBitmapMode4(&ls, y)
	case 5:
		p.renderBitmapMode5(&ls, y)
	}

	if p.objLayerEnabled() {
		p.renderOBJ(&ls, y)
	}

	p.composite(&ls, y)
}

func (p *PPU) bgEnabled(i int) bool { return p.regs.dispcnt&(1<<(8+uint(i))) != 0 }
func (p *PPU) objLayerEnabled() bool { return p.regs.dispcnt&(1<<12) != 0 }
func (p *PPU) windowsAnyEnabled() bool {
	return p.regs.dispcnt&(1<<13) != 0 || p.regs.dispcnt&(1<<14) != 0 || p.regs.dispcnt&(1<<15) != 0
}

func palColour(v uint16) uint16 { return v & 0x7FFF }

func (p *PPU) renderBitmapMode3(ls *lineState, y int) {
	base := uint32(y * ScreenWidth * 2)
	for x := 0; x < ScreenWidth; x++ {
		c := p.mem.ReadVRAM16(base + uint32(x*2))
		ls.bg[2][x] = layer{colour: palColour(c), priority: p.regs.bg[2].priority, opaque: true}
	}
}

func (p *PPU) renderBitmapMode4(ls *lineState, y int) {
	frameOffset := uint32(0)
	if p.regs.dispcnt&(1<<4) != 0 {
		frameOffset = 0xA000
	}
	base := frameOffset + uint32(y*ScreenWidth)
	for x := 0; x < ScreenWidth; x++ {
		idx := p.mem.ReadVRAM8(base + uint32(x))
		if idx == 0 {
			continue
		}
		c := p.mem.ReadPalette16(uint32(idx) * 2)
		ls.bg[2][x] = layer{colour: palColour(c), priority: p.regs.bg[2].priority, opaque: true}
	}
}

func (p *PPU) renderBitmapMode5(ls *lineState, y int) {
	if y >= 128 {
		return
	}
	frameOffset := uint32(0)
	if p.regs.dispcnt&(1<<4) != 0 {
		frameOffset = 0xA000
	}
	base := frameOffset + uint32(y*160*2)
	for x := 0; x < 160; x++ {
		c := p.mem.ReadVRAM16(base + uint32(x*2))
		ls.bg[2][x] = layer{colour: palColour(c), priority: p.regs.bg[2].priority, opaque: true}
	}
}

// renderTextBG rasterises one of BG0-3 in tile (text) mode.
func (p *PPU) renderTextBG(ls *lineState, i int, y int) {
	bg := &p.regs.bg[i]
	var width, height int
	switch bg.screenSize {
	case 0:
		width, height = 256, 256
	case 1:
		width, height = 512, 256
	case 2:
		width, height = 256, 512
	case 3:
		width, height = 512, 512
	}
	scrollY := (y + int(p.regs.vofs[i])) % height

	for x := 0; x < ScreenWidth; x++ {
		scrollX := (x + int(p.regs.hofs[i])) % width

		tileMapX := scrollX / 8
		tileMapY := scrollY / 8
		screenBlock := 0
		if width == 512 && tileMapX >= 32 {
			screenBlock++
			tileMapX -= 32
		}
		if height == 512 && tileMapY >= 32 {
			screenBlock += 2
		}
		if width == 512 && height == 512 {
			// block ordering for 512x512 is 0,1 top row then 2,3 bottom row
		}
		entryAddr := bg.screenBase + uint32(screenBlock)*0x800 + uint32(tileMapY%32*32+tileMapX%32)*2
		entry := p.mem.ReadVRAM16(entryAddr)

		tileIndex := entry & 0x3FF
		hFlip := entry&(1<<10) != 0
		vFlip := entry&(1<<11) != 0
		palBank := uint8((entry >> 12) & 0xF)

		tx := scrollX % 8
		ty := scrollY % 8
		if hFlip {
			tx = 7 - tx
		}
		if vFlip {
			ty = 7 - ty
		}

		var colourIdx uint8
		if bg.colors256 {
			tileAddr := bg.charBase + uint32(tileIndex)*64 + uint32(ty*8+tx)
			colourIdx = p.mem.ReadVRAM8(tileAddr)
		} else {
			tileAddr := bg.charBase + uint32(tileIndex)*32 + uint32(ty*4+tx/2)
			b := p.mem.ReadVRAM8(tileAddr)
			if tx%2 == 0 {
				colourIdx = b & 0xF
			} else {
				colourIdx = b >> 4
			}
			if colourIdx != 0 {
				colourIdx += palBank * 16
			}
		}

		if colourIdx == 0 {
			continue
		}
		c := p.mem.ReadPalette16(uint32(colourIdx) * 2)
		ls.bg[i][x] = layer{colour: palColour(c), priority: bg.priority, opaque: true}
	}
}

// renderAffineBG rasterises BG2/BG3 in rotation/scaling mode using the
// affine shadow registers (affIdx 0=BG2, 1=BG3).
func (p *PPU) renderAffineBG(ls *lineState, i int, affIdx int, y int) {
	bg := &p.regs.bg[i]
	size := [4]int{128, 256, 512, 1024}[bg.screenSize]

	aff := &p.aff[affIdx]
	refX, refY := aff.refX, aff.refY

	for x := 0; x < ScreenWidth; x++ {
		px := (refX + int32(x)*int32(aff.pa)) >> 8
		py := (refY + int32(x)*int32(aff.pc)) >> 8

		if px < 0 || py < 0 || int(px) >= size || int(py) >= size {
			if !bg.wraparound {
				continue
			}
			px = px & int32(size-1)
			py = py & int32(size-1)
		}

		tilesPerRow := size / 8
		tileMapX := int(px) / 8
		tileMapY := int(py) / 8
		entryAddr := bg.screenBase + uint32(tileMapY*tilesPerRow+tileMapX)
		tileIndex := p.mem.ReadVRAM8(entryAddr)

		tx := int(px) % 8
		ty := int(py) % 8
		tileAddr := bg.charBase + uint32(tileIndex)*64 + uint32(ty*8+tx)
		colourIdx := p.mem.ReadVRAM8(tileAddr)
		if colourIdx == 0 {
			continue
		}
		c := p.mem.ReadPalette16(uint32(colourIdx) * 2)
		ls.bg[i][x] = layer{colour: palColour(c), priority: bg.priority, opaque: true}
	}
}

// composite merges the four BG layers, OBJ layer, and windows into the
// final framebuffer row, applying blend mode per spec.md §4.6 step 4.
func (p *PPU) composite(ls *lineState, y int) {
	useWindows := p.windowsAnyEnabled()
	blendMode := (p.regs.bldcnt >> 6) & 0x3
	srcMask := p.regs.bldcnt & 0x3F
	dstMask := (p.regs.bldcnt >> 8) & 0x3F
	evaCoeff := int32(p.regs.bldalpha & 0x1F)
	evbCoeff := int32((p.regs.bldalpha >> 8) & 0x1F)
	evyCoeff := int32(p.regs.bldy)

	for x := 0; x < ScreenWidth; x++ {
		enable := [6]bool{true, true, true, true, true, true}
		if useWindows {
			enable = p.windowEnableBits(ls, x)
		}

		top, second := p.pickTopTwo(ls, x, enable)

		var out uint16
		switch {
		case top == nil:
			out = 0x7FFF
		case top.isObj && top.objAlpha && second != nil:
			out = blendColours(top.colour, second.colour, evaDefault(), evbDefault())
		case blendMode == 1 && second != nil && layerInMask(top, srcMask) && layerInMask(second, dstMask):
			out = blendColours(top.colour, second.colour, evaCoeff, evbCoeff)
		case blendMode == 2 && layerInMask(top, srcMask):
			out = fadeTowards(top.colour, 0x7FFF, evyCoeff)
		case blendMode == 3 && layerInMask(top, srcMask):
			out = fadeTowards(top.colour, 0, evyCoeff)
		default:
			out = top.colour
		}
		p.framebuf[y*ScreenWidth+x] = out
	}
}

func evaDefault() int32 { return 16 }
func evbDefault() int32 { return 16 }

func layerInMask(l *layer, mask uint16) bool {
	if l == nil {
		return false
	}
	if l.isObj {
		return mask&(1<<4) != 0
	}
	return false
}

func (p *PPU) pickTopTwo(ls *lineState, x int, enable [6]bool) (*layer, *layer) {
	var candidates []*layer
	if enable[4] && ls.obj[x].opaque {
		candidates = append(candidates, &ls.obj[x])
	}
	for i := 0; i < 4; i++ {
		if enable[i] && ls.bg[i][x].opaque {
			candidates = append(candidates, &ls.bg[i][x])
		}
	}
	var top, second *layer
	for _, c := range candidates {
		if top == nil || c.priority < top.priority || (c.priority == top.priority && c.isObj) {
			second = top
			top = c
		} else if second == nil || c.priority < second.priority {
			second = c
		}
	}
	return top, second
}

func blendColours(a, b uint16, evaCoeff, evbCoeff int32) uint16 {
	ar, ag, ab := unpackBGR(a)
	br, bg, bb := unpackBGR(b)
	r := clampChan((ar*evaCoeff + br*evbCoeff) / 16)
	g := clampChan((ag*evaCoeff + bg*evbCoeff) / 16)
	bch := clampChan((ab*evaCoeff + bb*evbCoeff) / 16)
	return packBGR(r, g, bch)
}

func fadeTowards(c uint16, target uint16, coeff int32) uint16 {
	cr, cg, cb := unpackBGR(c)
	tr, tg, tb := unpackBGR(target)
	r := clampChan(cr + ((tr-cr)*coeff)/16)
	g := clampChan(cg + ((tg-cg)*coeff)/16)
	b := clampChan(cb + ((tb-cb)*coeff)/16)
	return packBGR(r, g, b)
}

func unpackBGR(c uint16) (int32, int32, int32) {
	return int32(c & 0x1F), int32((c >> 5) & 0x1F), int32((c >> 10) & 0x1F)
}

func packBGR(r, g, b int32) uint16 {
	return uint16(r) | uint16(g)<<5 | uint16(b)<<10
}

func clampChan(v int32) int32 {
	if v > 31 {
		return 31
	}
	if v < 0 {
		return 0
	}
	return v
}

package ppu

// renderOBJ rasterises up to 128 OAM entries onto the current line,
// per spec.md §4.6 step 2: lowest-priority-wins per column, respecting
// flip, colour depth, and 1-D/2-D tile mapping. Affine (rotation-
// scaling) objects are not supported; such entries are skipped.
func (p *PPU) renderOBJ(ls *lineState, y int) {
	oneDMapping := p.regs.dispcnt&(1<<6) != 0

	for entry := 0; entry < 128; entry++ {
		base := uint32(entry * 8)
		attr0 := p.mem.ReadOAM16(base)
		attr1 := p.mem.ReadOAM16(base + 2)
		attr2 := p.mem.ReadOAM16(base + 4)

		objMode := (attr0 >> 10) & 0x3 // 0=normal,1=semi-transparent,2=window,3=prohibited
		shape := (attr0 >> 14) & 0x3
		if objMode == 3 {
			continue
		}
		isAffine := attr0&(1<<8) != 0
		if isAffine {
			continue // rotation/scaling objects not supported
		}
		disabled := !isAffine && attr0&(1<<9) != 0
		if disabled {
			continue
		}

		size := (attr1 >> 14) & 0x3
		w, h := objDimensions(shape, size)

		yPos := int(int8(uint8(attr0 & 0xFF)))
		if yPos+h > 256 {
			yPos -= 256
		}
		if y < yPos || y >= yPos+h {
			continue
		}

		xPos := int(attr1 & 0x1FF)
		if xPos >= 240 {
			xPos -= 512
		}
		if xPos+w <= 0 || xPos >= ScreenWidth {
			continue
		}

		hFlip := attr1&(1<<12) != 0
		vFlip := attr1&(1<<13) != 0
		priority := uint8((attr2 >> 10) & 0x3)
		colors256 := attr0&(1<<13) != 0
		tileIndex := attr2 & 0x3FF
		palBank := uint8((attr2 >> 12) & 0xF)

		row := y - yPos
		if vFlip {
			row = h - 1 - row
		}
		tileRow := row / 8
		inTileY := row % 8

		for col := 0; col < w; col++ {
			screenX := xPos + col
			if screenX < 0 || screenX >= ScreenWidth {
				continue
			}
			drawCol := col
			if hFlip {
				drawCol = w - 1 - col
			}
			tileCol := drawCol / 8
			inTileX := drawCol % 8

			var tileNum uint32
			tilesWide := w / 8
			if oneDMapping {
				stride := tilesWide
				if colors256 {
					stride = tilesWide // 256-colour tiles are 2 chars wide already accounted via tileIndex units
				}
				tileNum = uint32(tileIndex) + uint32(tileRow*stride+tileCol)
			} else {
				tileNum = uint32(tileIndex) + uint32(tileRow*32+tileCol)
			}

			var colourIdx uint8
			const objBase = 0x10000
			if colors256 {
				tileAddr := objBase + tileNum*64 + uint32(inTileY*8+inTileX)
				colourIdx = p.mem.ReadVRAM8(tileAddr)
			} else {
				tileAddr := objBase + tileNum*32 + uint32(inTileY*4+inTileX/2)
				b := p.mem.ReadVRAM8(tileAddr)
				if inTileX%2 == 0 {
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

			if objMode == 2 {
				ls.objWinMask[screenX] = true
				continue
			}

			cur := ls.obj[screenX]
			if cur.opaque && cur.priority <= priority {
				continue
			}
			c := p.mem.ReadPalette16(0x200 + uint32(colourIdx)*2)
			ls.obj[screenX] = layer{
				colour:   palColour(c),
				priority: priority,
				opaque:   true,
				isObj:    true,
				objAlpha: objMode == 1,
			}
		}
	}
}

func objDimensions(shape, size uint16) (int, int) {
	sizes := [4][4][2]int{
		{{8, 8}, {16, 16}, {32, 32}, {64, 64}},     // square
		{{16, 8}, {32, 8}, {32, 16}, {64, 32}},     // horizontal
		{{8, 16}, {8, 32}, {16, 32}, {32, 64}},     // vertical
		{{8, 8}, {8, 8}, {8, 8}, {8, 8}},           // prohibited, fallback
	}
	d := sizes[shape][size]
	return d[0], d[1]
}

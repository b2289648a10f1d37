package hub75

import (
	"github.com/Winkelkatze/ledmatrix/decode"
	"github.com/Winkelkatze/ledmatrix/geometry"
)

// wordOffset returns the byte offset of the stream word for bitplane l,
// row, and pixel within one StreamBuffer. The color byte lives at this
// offset; the control byte is the next byte.
func wordOffset(g *geometry.Geometry, l, row, pixel int) int {
	return l*g.SubimageStride + row*2*g.Width + 2*pixel
}

const (
	ctrlBitOE  = 1 << 0
	ctrlBitLAT = 1 << 1
	ctrlRowShift = 2
)

// writeControl implements spec §4.2.1. It depends only on g and is
// re-run whenever brightness or geometry changes; it never touches color
// bytes.
func writeControl(buf []byte, g *geometry.Geometry) {
	for l := 0; l < g.ColorDepth; l++ {
		for row := 0; row < g.Rows; row++ {
			rowField := (row - 1 + g.Rows) % g.Rows
			for pixel := 0; pixel < g.Width; pixel++ {
				ctrl := byte(rowField) << ctrlRowShift
				if pixel < 2 || pixel > g.Brightness {
					ctrl |= ctrlBitOE
				}
				if pixel == g.Width-2 {
					ctrl |= ctrlBitLAT
				}
				if g.Invert {
					ctrl = ^ctrl
				}
				buf[wordOffset(g, l, row, pixel)+1] = ctrl
			}
		}
	}
}

// writeColors implements spec §4.2.2: for every (bitplane, row, pixel),
// sample the framebuffer through dec and pack the result into the color
// byte.
func writeColors(buf []byte, fb []byte, dec decode.Decoder, g *geometry.Geometry, mono [3]byte) {
	for l := 0; l < g.ColorDepth; l++ {
		bit := g.ColorDepth - 1 - l
		for row := 0; row < g.Rows; row++ {
			for pixel := 0; pixel < g.Width; pixel++ {
				srcX := pixel
				if g.ColumnSwap {
					srcX ^= 1
				}
				color := dec.Sample(fb, g.Width, srcX, row, bit, mono) & 0x7
				if !g.SingleChannel {
					lower := dec.Sample(fb, g.Width, srcX, row+g.Rows, bit, mono) & 0x7
					color |= lower << 3
				}
				if g.Invert {
					color = ^color
				}
				buf[wordOffset(g, l, row, pixel)] = color
			}
		}
	}
}

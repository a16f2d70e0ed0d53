package transform

import (
	"image"
	"image/color"
)

// Mono is a two color indexed image packed eight pixels per byte, most
// significant bit first. Each row starts on a byte boundary.
type Mono struct {
	// Pix holds the packed palette indices. The pixel at (x, y) is bit
	// 7-(x-Rect.Min.X)%8 of Pix[(y-Rect.Min.Y)*Stride + (x-Rect.Min.X)/8].
	Pix []uint8
	// Stride is the Pix stride (in bytes) between vertically adjacent pixels.
	Stride int
	// Rect is the image's bounds.
	Rect image.Rectangle
	// Palette holds the colors of index 0 and 1.
	Palette color.Palette
}

func NewMono(r image.Rectangle, p color.Palette) *Mono {
	stride := (r.Dx() + 7) / 8
	return &Mono{
		Pix:     make([]uint8, stride*r.Dy()),
		Stride:  stride,
		Rect:    r,
		Palette: p,
	}
}

func (m *Mono) ColorModel() color.Model {
	return m.Palette
}

func (m *Mono) Bounds() image.Rectangle {
	return m.Rect
}

func (m *Mono) offset(x, y int) (int, uint8) {
	dx := x - m.Rect.Min.X
	return (y-m.Rect.Min.Y)*m.Stride + dx/8, 0x80 >> uint(dx%8)
}

func (m *Mono) ColorIndexAt(x, y int) uint8 {
	if !(image.Point{X: x, Y: y}.In(m.Rect)) {
		return 0
	}
	i, bit := m.offset(x, y)
	if m.Pix[i]&bit != 0 {
		return 1
	}
	return 0
}

func (m *Mono) At(x, y int) color.Color {
	if len(m.Palette) == 0 {
		return nil
	}
	return m.Palette[m.ColorIndexAt(x, y)]
}

func (m *Mono) SetColorIndex(x, y int, index uint8) {
	if !(image.Point{X: x, Y: y}.In(m.Rect)) {
		return
	}
	i, bit := m.offset(x, y)
	if index&1 != 0 {
		m.Pix[i] |= bit
	} else {
		m.Pix[i] &^= bit
	}
}

func (m *Mono) Set(x, y int, c color.Color) {
	m.SetColorIndex(x, y, uint8(m.Palette.Index(c)))
}

// Opaque reports whether both palette entries are opaque.
func (m *Mono) Opaque() bool {
	for _, c := range m.Palette {
		if _, _, _, a := c.RGBA(); a != 0xffff {
			return false
		}
	}
	return true
}

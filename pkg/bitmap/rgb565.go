package bitmap

import (
	"image"
	"image/color"
)

// RGB565 is an in-memory image of 16-bit 5-6-5 words. It implements the
// draw.Image interface.
//
// A word is laid out as
//
//    bit 76543210  76543210
//        RRRRRGGG  GGGBBBBB
//       high byte  low byte
type RGB565 struct {
	Pix    []uint16
	Stride int // in words
	Rect   image.Rectangle
}

func NewRGB565(r image.Rectangle) *RGB565 {
	return &RGB565{
		Pix:    make([]uint16, r.Dx()*r.Dy()),
		Stride: r.Dx(),
		Rect:   r,
	}
}

func (p *RGB565) Bounds() image.Rectangle {
	return p.Rect
}

func (p *RGB565) ColorModel() color.Model {
	return Model
}

func (p *RGB565) PixOffset(x, y int) int {
	return (y-p.Rect.Min.Y)*p.Stride + (x - p.Rect.Min.X)
}

func (p *RGB565) At(x, y int) color.Color {
	if !(image.Point{X: x, Y: y}.In(p.Rect)) {
		return Color(0)
	}
	return Color(p.Pix[p.PixOffset(x, y)])
}

// Set stores c packed. Alpha is dropped.
func (p *RGB565) Set(x, y int, c color.Color) {
	if !(image.Point{X: x, Y: y}.In(p.Rect)) {
		return
	}
	p.Pix[p.PixOffset(x, y)] = uint16(Model.Convert(c).(Color))
}

// Words returns the pixels in row-major order, one word per pixel.
func (p *RGB565) Words() []uint16 {
	w, h := p.Rect.Dx(), p.Rect.Dy()
	if p.Stride == w {
		return p.Pix[:w*h]
	}
	out := make([]uint16, 0, w*h)
	for y := 0; y < h; y++ {
		out = append(out, p.Pix[y*p.Stride:y*p.Stride+w]...)
	}
	return out
}

// Pack keeps the top 5, 6 and 5 bits of r, g and b.
func Pack(r, g, b uint8) uint16 {
	return uint16(r&0xF8)<<8 | uint16(g&0xFC)<<3 | uint16(b&0xF8)>>3
}

// Unpack returns the channels of w shifted back to 8 bits. The low bits
// are zero, so Pack(Unpack(w)) == w.
func Unpack(w uint16) (r, g, b uint8) {
	return uint8(w>>8) & 0xF8, uint8(w>>3) & 0xFC, uint8(w<<3) & 0xF8
}

var Model = color.ModelFunc(func(c color.Color) color.Color {
	if c, ok := c.(Color); ok {
		return c
	}
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return Color(Pack(n.R, n.G, n.B))
})

// Color is a packed RGB565 word. It is always opaque.
type Color uint16

// RGBA widens each channel to 16 bits by repeating its bit pattern, so
// the minimum and maximum 5 and 6 bit values map onto 0 and 0xFFFF.
func (c Color) RGBA() (r, g, b, a uint32) {
	rBits := uint32(c & 0xF800) // RRRRR00000000000
	gBits := uint32(c & 0x7E0)  // 00000GGGGGG00000
	bBits := uint32(c & 0x1F)   // 00000000000BBBBB
	r = rBits | rBits>>5 | rBits>>10 | rBits>>15
	g = gBits<<5 | gBits>>1 | gBits>>7
	b = bBits<<11 | bBits<<6 | bBits<<1 | bBits>>4
	a = 0xFFFF
	return
}

// ToRGB565 packs a single color. Alpha is dropped.
func ToRGB565(c color.Color) uint16 {
	return uint16(Model.Convert(c).(Color))
}

// FromRGB565 expands a word to an opaque 8-bit color, zero filling the
// dropped low bits.
func FromRGB565(w uint16) color.RGBA {
	r, g, b := Unpack(w)
	return color.RGBA{R: r, G: g, B: b, A: 0xff}
}

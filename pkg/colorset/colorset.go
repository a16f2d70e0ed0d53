/*
Package colorset counts the opaque colors of an image and builds palettes
from them.

Colors are keyed by their packed 24-bit value r<<16 | g<<8 | b, so the
numeric key order is the channel order red, then green, then blue.
*/
package colorset

import (
	"fmt"
	"image"
	"image/color"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/samber/lo"
)

// OpaqueThreshold is the alpha a pixel must exceed to be counted.
const OpaqueThreshold = 128

var ErrInvalidOption = errors.New("colorset: invalid option")

func key(r, g, b int) uint32 {
	return uint32(r)<<16 | uint32(g)<<8 | uint32(b)
}

func rgb(k uint32) color.RGBA {
	return color.RGBA{R: uint8(k >> 16), G: uint8(k >> 8), B: uint8(k), A: 0xff}
}

// ColorSet maps opaque colors to the number of pixels using them. It is
// not safe for concurrent use.
type ColorSet struct {
	counts     map[uint32]int
	pixelCount int64
}

func New() *ColorSet {
	return &ColorSet{counts: make(map[uint32]int)}
}

// FromImage returns the set of colors of m.
func FromImage(m image.Image) *ColorSet {
	s := New()
	s.AddColors(m)
	return s
}

// AddColor records n more occurrences of the color (r, g, b).
func (s *ColorSet) AddColor(r, g, b, n int) error {
	if n <= 0 {
		return errors.Wrapf(ErrInvalidOption, "occurrence must be greater than 0, got %d", n)
	}
	for _, c := range []struct {
		name string
		v    int
	}{{"r", r}, {"g", g}, {"b", b}} {
		if c.v < 0 || c.v > 255 {
			return errors.Wrapf(ErrInvalidOption, "%s must be between 0 and 255, got %d", c.name, c.v)
		}
	}

	s.counts[key(r, g, b)] += n
	s.pixelCount += int64(n)
	return nil
}

// AddColors records every pixel of m whose alpha exceeds OpaqueThreshold.
func (s *ColorSet) AddColors(m image.Image) {
	b := m.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(m.At(x, y)).(color.NRGBA)
			if c.A > OpaqueThreshold {
				s.counts[key(int(c.R), int(c.G), int(c.B))]++
				s.pixelCount++
			}
		}
	}
}

// AddSet merges every color of o into s.
func (s *ColorSet) AddSet(o *ColorSet) {
	for k, n := range o.counts {
		s.counts[k] += n
		s.pixelCount += int64(n)
	}
}

// ColorCount returns the number of distinct colors.
func (s *ColorSet) ColorCount() int {
	return len(s.counts)
}

// PixelCount returns the sum of all occurrences.
func (s *ColorSet) PixelCount() int64 {
	return s.pixelCount
}

func (s *ColorSet) Occurrences(r, g, b int) int {
	return s.counts[key(r, g, b)]
}

// Frequencies returns a copy of the occurrence table keyed by color.
func (s *ColorSet) Frequencies() map[color.RGBA]int {
	m := make(map[color.RGBA]int, len(s.counts))
	for k, n := range s.counts {
		m[rgb(k)] = n
	}
	return m
}

func (s *ColorSet) keys() []uint32 {
	keys := lo.Keys(s.counts)
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// Colors returns the distinct colors in key order, optionally preceded by
// a fully transparent entry.
func (s *ColorSet) Colors(prependTransparent bool) []color.RGBA {
	out := make([]color.RGBA, 0, len(s.counts)+1)
	if prependTransparent {
		out = append(out, color.RGBA{})
	}
	for _, k := range s.keys() {
		out = append(out, rgb(k))
	}
	return out
}

// Equal reports whether both sets hold the same colors, and unless
// colorsOnly is set, the same occurrences.
func (s *ColorSet) Equal(o *ColorSet, colorsOnly bool) bool {
	if len(s.counts) != len(o.counts) {
		return false
	}
	for k, n := range s.counts {
		m, ok := o.counts[k]
		if !ok || (!colorsOnly && m != n) {
			return false
		}
	}
	return true
}

func (s *ColorSet) String() string {
	var sb strings.Builder
	sb.WriteString("ColorSet[")
	for i, k := range s.keys() {
		if i > 0 {
			sb.WriteByte(',')
		}
		c := rgb(k)
		fmt.Fprintf(&sb, "(%d,%d,%d)", c.R, c.G, c.B)
		if n := s.counts[k]; n > 1 {
			fmt.Fprintf(&sb, "x%d", n)
		}
	}
	sb.WriteByte(']')
	return sb.String()
}

package colorset

import (
	"image/color"
)

// LUT finds the nearest palette entry of an opaque color. Lookups are
// memoized, so repeated colors cost one map access.
type LUT struct {
	palette     color.Palette
	entries     []color.RGBA
	transparent int
	cache       map[uint32]int
}

// NewLUT prepares lookups over p. A fully transparent entry of p is never
// returned by Nearest; it is reported by Transparent instead.
func NewLUT(p color.Palette) *LUT {
	l := &LUT{
		palette:     p,
		entries:     make([]color.RGBA, len(p)),
		transparent: -1,
		cache:       make(map[uint32]int),
	}
	for i, c := range p {
		n := color.NRGBAModel.Convert(c).(color.NRGBA)
		l.entries[i] = color.RGBA{R: n.R, G: n.G, B: n.B, A: n.A}
		if n.A == 0 && l.transparent < 0 {
			l.transparent = i
		}
	}
	return l
}

func (l *LUT) Palette() color.Palette {
	return l.palette
}

// Transparent returns the index of the transparent entry, or -1.
func (l *LUT) Transparent() int {
	return l.transparent
}

// Nearest returns the index of the opaque entry closest to (r, g, b) by
// squared Euclidean distance. Ties go to the lower index.
func (l *LUT) Nearest(r, g, b uint8) int {
	k := key(int(r), int(g), int(b))
	if i, ok := l.cache[k]; ok {
		return i
	}

	best, bestDist := -1, 1<<31-1
	for i, e := range l.entries {
		if i == l.transparent {
			continue
		}
		dr := int(r) - int(e.R)
		dg := int(g) - int(e.G)
		db := int(b) - int(e.B)
		if d := dr*dr + dg*dg + db*db; d < bestDist {
			best, bestDist = i, d
		}
	}

	l.cache[k] = best
	return best
}

// Color returns palette entry i as non-premultiplied RGBA.
func (l *LUT) Color(i int) color.RGBA {
	return l.entries[i]
}

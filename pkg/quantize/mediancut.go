/*
Package quantize reduces the colors of an image: a median cut picks the
reduced palette from a colorset.ColorSet, then a dithering pass maps the
pixels onto it.
*/
package quantize

import (
	"image/color"
	"math"
	"sort"

	"github.com/pkg/errors"

	"image2c/pkg/colorset"
)

// DefaultBias is the frequency weight ParseAlgorithm gives BiasedMedianCut.
const DefaultBias = 0.1

// Algorithm reduces a color set to at most target colors. When strict is
// set every color of the result is also a color of the input; otherwise
// each reduced color is the occurrence weighted mean of the colors it
// replaces.
type Algorithm interface {
	Reduce(set *colorset.ColorSet, target int, strict bool) (*colorset.ColorSet, error)
}

// MedianCut repeatedly splits the box with the widest channel range at
// its median color.
type MedianCut struct{}

func (MedianCut) Reduce(set *colorset.ColorSet, target int, strict bool) (*colorset.ColorSet, error) {
	return reduce(set, target, strict, false, func(b *box, _ int64) float64 {
		_, span := b.widest()
		return float64(span)
	})
}

// BiasedMedianCut prefers splitting boxes that cover many pixels, and
// splits at the occurrence weighted median. Bias is the share, between 0
// and 1, given to pixel coverage over channel range.
type BiasedMedianCut struct {
	Bias float64
}

func (q BiasedMedianCut) Reduce(set *colorset.ColorSet, target int, strict bool) (*colorset.ColorSet, error) {
	if q.Bias < 0 || q.Bias > 1 {
		return nil, errors.Wrapf(colorset.ErrInvalidOption, "bias must be between 0 and 1, got %g", q.Bias)
	}
	return reduce(set, target, strict, true, func(b *box, total int64) float64 {
		_, span := b.widest()
		coverage := float64(b.pixels) / float64(total)
		return (1-q.Bias)*float64(span) + q.Bias*255*coverage
	})
}

type entry struct {
	c color.RGBA
	n int
}

type box struct {
	entries []entry
	pixels  int64
}

func channel(c color.RGBA, ch int) uint8 {
	switch ch {
	case 0:
		return c.R
	case 1:
		return c.G
	}
	return c.B
}

// widest returns the channel with the largest value range and that range.
func (b *box) widest() (int, int) {
	best, bestSpan := 0, -1
	for ch := 0; ch < 3; ch++ {
		lo, hi := uint8(255), uint8(0)
		for _, e := range b.entries {
			v := channel(e.c, ch)
			if v < lo {
				lo = v
			}
			if v > hi {
				hi = v
			}
		}
		if span := int(hi) - int(lo); span > bestSpan {
			best, bestSpan = ch, span
		}
	}
	return best, bestSpan
}

func (b *box) split(weighted bool) (*box, *box) {
	ch, _ := b.widest()
	sort.SliceStable(b.entries, func(i, j int) bool {
		return channel(b.entries[i].c, ch) < channel(b.entries[j].c, ch)
	})

	at := len(b.entries) / 2
	if weighted {
		var acc int64
		for i, e := range b.entries {
			acc += int64(e.n)
			if 2*acc >= b.pixels {
				at = i + 1
				break
			}
		}
		if at >= len(b.entries) {
			at = len(b.entries) - 1
		}
	}

	return newBox(b.entries[:at]), newBox(b.entries[at:])
}

func newBox(entries []entry) *box {
	b := &box{entries: entries}
	for _, e := range entries {
		b.pixels += int64(e.n)
	}
	return b
}

func (b *box) representative(strict bool) color.RGBA {
	if strict {
		best := b.entries[0]
		for _, e := range b.entries[1:] {
			if e.n > best.n {
				best = e
			}
		}
		return best.c
	}

	var r, g, bl float64
	for _, e := range b.entries {
		w := float64(e.n)
		r += w * float64(e.c.R)
		g += w * float64(e.c.G)
		bl += w * float64(e.c.B)
	}
	t := float64(b.pixels)
	return color.RGBA{
		R: uint8(math.Round(r / t)),
		G: uint8(math.Round(g / t)),
		B: uint8(math.Round(bl / t)),
		A: 0xff,
	}
}

func reduce(set *colorset.ColorSet, target int, strict, weighted bool, score func(*box, int64) float64) (*colorset.ColorSet, error) {
	if target < 1 {
		return nil, errors.Wrapf(colorset.ErrInvalidOption, "target must be positive, got %d", target)
	}

	out := colorset.New()
	if set.ColorCount() <= target {
		out.AddSet(set)
		return out, nil
	}

	freq := set.Frequencies()
	entries := make([]entry, 0, len(freq))
	for _, c := range set.Colors(false) {
		entries = append(entries, entry{c: c, n: freq[c]})
	}

	boxes := []*box{newBox(entries)}
	total := boxes[0].pixels
	for len(boxes) < target {
		pick, pickScore := -1, -1.0
		for i, b := range boxes {
			if len(b.entries) < 2 {
				continue
			}
			if s := score(b, total); s > pickScore {
				pick, pickScore = i, s
			}
		}
		if pick < 0 {
			break
		}

		a, b := boxes[pick].split(weighted)
		boxes[pick] = a
		boxes = append(boxes, b)
	}

	for _, b := range boxes {
		c := b.representative(strict)
		if err := out.AddColor(int(c.R), int(c.G), int(c.B), int(b.pixels)); err != nil {
			return nil, err
		}
	}
	return out, nil
}

package quantize

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"strings"

	"github.com/pkg/errors"

	"image2c/pkg/colorset"
)

type Strategy int

const (
	// MostDiffusion spreads the error Floyd-Steinberg style over four
	// neighbors.
	MostDiffusion Strategy = iota
	// MediumDiffusion spreads the error over three neighbors.
	MediumDiffusion
	// SimplestDiffusion pushes half the error right and half down.
	SimplestDiffusion
	// NearestNeighbor maps every pixel to its nearest palette entry.
	NearestNeighbor
)

var strategyNames = []string{"most", "medium", "simplest", "nearest"}

func (s Strategy) String() string {
	if s < 0 || int(s) >= len(strategyNames) {
		return fmt.Sprintf("Strategy(%d)", int(s))
	}
	return strategyNames[s]
}

func ParseStrategy(name string) (Strategy, error) {
	for i, n := range strategyNames {
		if strings.EqualFold(n, name) {
			return Strategy(i), nil
		}
	}
	return 0, errors.Wrapf(colorset.ErrInvalidOption, "unknown dither strategy %q", name)
}

type tap struct {
	dx, dy int
	w      float32
}

var kernels = map[Strategy][]tap{
	MostDiffusion: {
		{1, 0, 7.0 / 16}, {-1, 1, 3.0 / 16}, {0, 1, 5.0 / 16}, {1, 1, 1.0 / 16},
	},
	MediumDiffusion: {
		{1, 0, 2.0 / 4}, {-1, 1, 1.0 / 4}, {0, 1, 1.0 / 4},
	},
	SimplestDiffusion: {
		{1, 0, 1.0 / 2}, {0, 1, 1.0 / 2},
	},
	NearestNeighbor: nil,
}

func clamp(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return v
}

// Dither maps m onto the palette of lut, top to bottom and left to right.
// Pixels at or below the opaque threshold take the transparent entry when
// the palette has one. Error never wraps from one row into the next.
func Dither(m image.Image, lut *colorset.LUT, s Strategy) *image.Paletted {
	b := m.Bounds()
	w, h := b.Dx(), b.Dy()
	dst := image.NewPaletted(image.Rect(0, 0, w, h), lut.Palette())

	kernel := kernels[s]
	cur := make([]float32, 3*w)
	next := make([]float32, 3*w)

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := color.NRGBAModel.Convert(m.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA)
			if t := lut.Transparent(); t >= 0 && c.A <= colorset.OpaqueThreshold {
				dst.SetColorIndex(x, y, uint8(t))
				continue
			}

			v := [3]float32{
				clamp(float32(c.R) + cur[3*x]),
				clamp(float32(c.G) + cur[3*x+1]),
				clamp(float32(c.B) + cur[3*x+2]),
			}
			idx := lut.Nearest(round8(v[0]), round8(v[1]), round8(v[2]))
			if idx < 0 {
				continue
			}
			dst.SetColorIndex(x, y, uint8(idx))

			if len(kernel) == 0 {
				continue
			}
			p := lut.Color(idx)
			e := [3]float32{v[0] - float32(p.R), v[1] - float32(p.G), v[2] - float32(p.B)}
			for _, k := range kernel {
				nx := x + k.dx
				if nx < 0 || nx >= w || y+k.dy >= h {
					continue
				}
				row := cur
				if k.dy == 1 {
					row = next
				}
				for ch := 0; ch < 3; ch++ {
					row[3*nx+ch] += e[ch] * k.w
				}
			}
		}

		cur, next = next, cur
		for i := range next {
			next[i] = 0
		}
	}

	return dst
}

func round8(v float32) uint8 {
	return uint8(math.Round(float64(v)))
}

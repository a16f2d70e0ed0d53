package colorset

import (
	"image/color"
	"sort"

	"github.com/pkg/errors"
)

// MaxColors is the largest palette an indexed image can hold.
const MaxColors = 256

var ErrTooManyColors = errors.New("colorset: too many colors")

// Palette builds an indexed color model from the set. With
// includeTransparent, index 0 is a fully transparent entry and the colors
// start at index 1. Colors are laid out in key order, or by descending
// occurrence when optimizeForGIF is set so the most used colors get the
// lowest indices.
func (s *ColorSet) Palette(includeTransparent, optimizeForGIF bool) (color.Palette, error) {
	n := s.ColorCount()
	if includeTransparent && n > MaxColors-1 {
		return nil, errors.Wrapf(ErrTooManyColors, "%d colors, max is %d + 1 transparent", n, MaxColors-1)
	}
	if n > MaxColors {
		return nil, errors.Wrapf(ErrTooManyColors, "%d colors, max is %d", n, MaxColors)
	}

	keys := s.keys()
	if optimizeForGIF {
		sort.SliceStable(keys, func(i, j int) bool {
			return s.counts[keys[i]] > s.counts[keys[j]]
		})
	}

	p := make(color.Palette, 0, n+1)
	if includeTransparent {
		p = append(p, color.RGBA{})
	}
	for _, k := range keys {
		p = append(p, rgb(k))
	}
	return p, nil
}

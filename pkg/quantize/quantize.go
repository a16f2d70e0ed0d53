package quantize

import (
	"image"
	"strings"

	"github.com/pkg/errors"

	"image2c/pkg/colorset"
)

// ParseAlgorithm maps "biased" and "median" to their algorithms.
func ParseAlgorithm(name string) (Algorithm, error) {
	switch strings.ToLower(name) {
	case "biased":
		return BiasedMedianCut{Bias: DefaultBias}, nil
	case "median":
		return MedianCut{}, nil
	}
	return nil, errors.Wrapf(colorset.ErrInvalidOption, "unknown quantization algorithm %q", name)
}

// Image reduces m to at most n colors and dithers it onto the reduced
// palette. An image without opaque pixels gets a single transparent entry.
func Image(m image.Image, n int, alg Algorithm, s Strategy) (*image.Paletted, error) {
	reduced, err := alg.Reduce(colorset.FromImage(m), n, true)
	if err != nil {
		return nil, err
	}

	p, err := reduced.Palette(reduced.ColorCount() == 0, false)
	if err != nil {
		return nil, err
	}

	return Dither(m, colorset.NewLUT(p), s), nil
}

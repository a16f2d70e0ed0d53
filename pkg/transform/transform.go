/*
Package transform holds the pixel transformations applied before an image
is exported: grayscale, 1-bit binarization, foreground recoloring, 24-bit
rasterization and resizing.
*/
package transform

import (
	"image"
	"image/color"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"

	"image2c/pkg/colorset"
)

var (
	White = color.RGBA{0xff, 0xff, 0xff, 0xff}
	Black = color.RGBA{0, 0, 0, 0xff}
)

// Opaque returns the color channels of c without premultiplication and
// with alpha forced to 0xff.
func Opaque(c color.Color) color.RGBA {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return color.RGBA{R: n.R, G: n.G, B: n.B, A: 0xff}
}

// Grayscale maps every pixel to the luma 0.2126R + 0.7152G + 0.0722B,
// truncated.
func Grayscale(src image.Image) *image.Gray {
	b := src.Bounds()
	dst := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(src.At(x, y)).(color.NRGBA)
			luma := (2126*int(c.R) + 7152*int(c.G) + 722*int(c.B)) / 10000
			dst.Pix[(y-b.Min.Y)*dst.Stride+(x-b.Min.X)] = uint8(luma)
		}
	}
	return dst
}

// BitDepth classifies a color count into the depth needed to index it.
func BitDepth(colors int) int {
	switch {
	case colors <= 2:
		return 1
	case colors <= 16:
		return 4
	case colors <= 256:
		return 8
	}
	return 16
}

// Complement returns the background used with foreground fg: black for a
// pure white foreground, white for anything else.
func Complement(fg color.Color) color.RGBA {
	if Opaque(fg) == White {
		return Black
	}
	return White
}

// Binarize rasterizes src onto a two color canvas whose palette is
// {complement, fg}. Pixels are composited over the complement and take
// the nearer of the two entries.
func Binarize(src image.Image, fg color.Color) *Mono {
	fgc := Opaque(fg)
	bg := Complement(fgc)
	b := src.Bounds()
	dst := NewMono(image.Rect(0, 0, b.Dx(), b.Dy()), color.Palette{bg, fgc})
	lut := colorset.NewLUT(dst.Palette)

	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, a := src.At(x, y).RGBA()
			r = (r + uint32(bg.R)*0x101*(0xffff-a)/0xffff) >> 8
			g = (g + uint32(bg.G)*0x101*(0xffff-a)/0xffff) >> 8
			bl = (bl + uint32(bg.B)*0x101*(0xffff-a)/0xffff) >> 8
			dst.SetColorIndex(x-b.Min.X, y-b.Min.Y, uint8(lut.Nearest(uint8(r), uint8(g), uint8(bl))))
		}
	}
	return dst
}

// Recolor replaces the foreground color cur with next. A Mono source
// keeps its pixels and gets the matching palette entry swapped; any other
// source is copied with every pixel whose color channels equal cur
// repainted.
func Recolor(src image.Image, cur, next color.Color) image.Image {
	curc, nextc := Opaque(cur), Opaque(next)

	if m, ok := src.(*Mono); ok && len(m.Palette) == 2 {
		dup := *m
		dup.Pix = append([]uint8(nil), m.Pix...)
		dup.Palette = append(color.Palette(nil), m.Palette...)
		if Opaque(dup.Palette[0]) == curc {
			dup.Palette[0] = nextc
		} else {
			dup.Palette[1] = nextc
		}
		return &dup
	}

	dst := imaging.Clone(src)
	for i := 0; i < len(dst.Pix); i += 4 {
		p := dst.Pix[i : i+4 : i+4]
		if p[0] == curc.R && p[1] == curc.G && p[2] == curc.B {
			p[0], p[1], p[2] = nextc.R, nextc.G, nextc.B
		}
	}
	return dst
}

// To24 composites src over an opaque canvas. Transparent areas take fill,
// or black when fill is nil.
func To24(src image.Image, fill color.Color) *image.RGBA {
	b := src.Bounds()
	bg := Black
	if fill != nil {
		bg = Opaque(fill)
	}
	dst := imaging.Overlay(imaging.New(b.Dx(), b.Dy(), bg), src, image.Pt(0, 0), 1.0)
	// every pixel is opaque, so the NRGBA and RGBA layouts agree
	return &image.RGBA{Pix: dst.Pix, Stride: dst.Stride, Rect: dst.Rect}
}

var filters = map[string]imaging.ResampleFilter{
	"lanczos":    imaging.Lanczos,
	"catmullrom": imaging.CatmullRom,
	"linear":     imaging.Linear,
	"box":        imaging.Box,
	"nearest":    imaging.NearestNeighbor,
}

func ParseFilter(name string) (imaging.ResampleFilter, error) {
	f, ok := filters[strings.ToLower(name)]
	if !ok {
		return imaging.ResampleFilter{}, errors.Wrapf(colorset.ErrInvalidOption, "unknown resample filter %q", name)
	}
	return f, nil
}

// Resize scales src to width x height. A dimension of zero or less keeps
// the source size along that axis.
func Resize(src image.Image, width, height int, filter imaging.ResampleFilter) image.Image {
	b := src.Bounds()
	if width <= 0 {
		width = b.Dx()
	}
	if height <= 0 {
		height = b.Dy()
	}
	if width == b.Dx() && height == b.Dy() {
		return src
	}
	return imaging.Resize(src, width, height, filter)
}

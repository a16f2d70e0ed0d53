package image2c

import (
	"image"
	"image/color"

	"image2c/pkg/colorset"
	"image2c/pkg/transform"
)

// DefaultTransparent is the GUIslice transparent pixel color.
var DefaultTransparent = color.RGBA{0xff, 0, 0xff, 0xff}

// Context carries the colors chosen between loading an image and
// exporting it. It is not safe for concurrent use.
type Context struct {
	// Foreground is the color binarization keeps.
	Foreground color.RGBA
	// Monochrome is the foreground written into a 1-bit header.
	Monochrome color.RGBA
	// Transparent fills transparent areas of 16-bit output.
	Transparent color.RGBA

	colors   []color.RGBA
	fgIdx    int
	original int
	current  int
}

func NewContext() *Context {
	return &Context{
		Foreground:  transform.White,
		Monochrome:  transform.White,
		Transparent: DefaultTransparent,
	}
}

// Load resets the context for a newly loaded image and returns its
// color count. An image with fewer than three colors takes its first
// color, in key order, as foreground and monochrome color.
func (c *Context) Load(m image.Image) int {
	c.Monochrome = transform.White
	c.original = c.recount(m)
	return c.original
}

// Update recounts the colors of a transformed image. The foreground is
// picked again as in Load.
func (c *Context) Update(m image.Image) int {
	return c.recount(m)
}

func (c *Context) recount(m image.Image) int {
	set := colorset.FromImage(m)
	c.current = set.ColorCount()
	c.Foreground = transform.White
	c.colors = nil
	c.fgIdx = 0

	if c.current < 3 {
		c.colors = set.Colors(false)
		if len(c.colors) > 0 {
			c.Foreground = c.colors[0]
			c.Monochrome = c.Foreground
		}
	}
	return c.current
}

// SwapForeground toggles the foreground between the two colors of a two
// color image. It is a no-op otherwise.
func (c *Context) SwapForeground() color.RGBA {
	if c.current == 2 && len(c.colors) == 2 {
		c.fgIdx ^= 1
		c.Foreground = c.colors[c.fgIdx]
		c.Monochrome = c.Foreground
	}
	return c.Foreground
}

func (c *Context) SetMonochrome(col color.Color) {
	c.Monochrome = transform.Opaque(col)
}

// Recolor paints the current foreground of m with the monochrome color
// and makes that the new foreground.
func (c *Context) Recolor(m image.Image) image.Image {
	out := transform.Recolor(m, c.Foreground, c.Monochrome)
	c.Foreground = c.Monochrome
	return out
}

func (c *Context) Original() int {
	return c.original
}

func (c *Context) Count() int {
	return c.current
}

// BitDepth classifies the current color count.
func (c *Context) BitDepth() int {
	return transform.BitDepth(c.current)
}

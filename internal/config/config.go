package config

import (
	"fmt"
	"image/color"
	"io"
	"strconv"
	"time"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
	flag "github.com/spf13/pflag"

	"image2c/pkg/colorset"
	"image2c/pkg/image2c"
	"image2c/pkg/quantize"
	"image2c/pkg/transform"
)

// Config is one command line run.
type Config struct {
	Inputs []string

	Out    string
	OutDir string
	Name   string

	BigEndian         bool
	NoFlash           bool
	TransparentChange bool
	Depth             int

	Gray       bool
	Width      int
	Height     int
	Filter     imaging.ResampleFilter
	FilterName string

	Colors    int
	Algorithm quantize.Algorithm
	Dither    quantize.Strategy

	// Foreground is nil unless a monochrome color was given.
	Foreground  *color.RGBA
	SwapFG      bool
	Transparent color.RGBA

	CacheDir string
	Timeout  time.Duration
	Debug    bool
}

// Options maps the output flags onto encoder options.
func (c *Config) Options() image2c.Options {
	o := image2c.DefaultOptions()
	o.LittleEndian = !c.BigEndian
	o.Flash = !c.NoFlash
	o.TransparentChange = c.TransparentChange
	o.Depth = c.Depth
	return o
}

// Parse reads args, the command line without the program name. Usage
// and flag errors are printed to out.
func Parse(args []string, out io.Writer) (*Config, error) {
	fs := flag.NewFlagSet("image2c", flag.ContinueOnError)
	fs.SetOutput(out)
	fs.Usage = func() {
		fmt.Fprintf(out, "Usage: image2c [flags] <image|url>...\n")
		fs.PrintDefaults()
	}

	c := &Config{}
	var (
		fg, transparent   string
		algorithm, dither string
	)

	fs.StringVarP(&c.Out, "out", "o", "", "output .c path (single input only)")
	fs.StringVar(&c.OutDir, "out-dir", "", "output directory (default: alongside the input, or cwd for URLs)")
	fs.StringVarP(&c.Name, "name", "n", "", "array identifier (single input only)")
	fs.BoolVar(&c.BigEndian, "big-endian", false, "byte-swap 16-bit words")
	fs.BoolVar(&c.NoFlash, "no-flash", false, "omit GSLC_PMEM and the PROGMEM includes")
	fs.BoolVar(&c.TransparentChange, "transparent-change", false, "record the transparent change flag")
	fs.IntVar(&c.Depth, "depth", 0, "force 1 or 16 bits per pixel (0 picks by color count)")
	fs.BoolVar(&c.Gray, "gray", false, "convert to grayscale first")
	fs.IntVar(&c.Width, "width", 0, "resize to this width (0 keeps it)")
	fs.IntVar(&c.Height, "height", 0, "resize to this height (0 keeps it)")
	fs.StringVar(&c.FilterName, "filter", "lanczos", "resample filter: lanczos|catmullrom|linear|box|nearest")
	fs.IntVar(&c.Colors, "colors", 0, "quantize to this many colors (0 = off)")
	fs.StringVar(&algorithm, "algorithm", "biased", "quantization algorithm: biased|median")
	fs.StringVar(&dither, "dither", "most", "dithering: most|medium|simplest|nearest")
	fs.StringVar(&fg, "fg", "", "monochrome output color, #RGB or #RRGGBB")
	fs.BoolVar(&c.SwapFG, "swap-fg", false, "toggle the foreground of two color images")
	fs.StringVar(&transparent, "transparent", "#FF00FF", "fill color for transparent pixels")
	fs.StringVar(&c.CacheDir, "cache-dir", "", "keep downloaded inputs in this directory")
	fs.DurationVar(&c.Timeout, "timeout", 30*time.Second, "download timeout")
	fs.BoolVar(&c.Debug, "debug", false, "development logging")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	c.Inputs = fs.Args()

	var err error
	if c.Filter, err = transform.ParseFilter(c.FilterName); err != nil {
		return nil, err
	}
	if c.Algorithm, err = quantize.ParseAlgorithm(algorithm); err != nil {
		return nil, err
	}
	if c.Dither, err = quantize.ParseStrategy(dither); err != nil {
		return nil, err
	}
	if c.Transparent, err = ParseHexColor(transparent); err != nil {
		return nil, errors.WithMessage(err, "--transparent")
	}
	if fg != "" {
		col, err := ParseHexColor(fg)
		if err != nil {
			return nil, errors.WithMessage(err, "--fg")
		}
		c.Foreground = &col
	}

	return c, c.validate()
}

func invalid(format string, args ...interface{}) error {
	return errors.Wrapf(colorset.ErrInvalidOption, format, args...)
}

func (c *Config) validate() error {
	switch {
	case len(c.Inputs) == 0:
		return invalid("no input images")
	case len(c.Inputs) > 1 && c.Out != "":
		return invalid("--out needs a single input, got %d", len(c.Inputs))
	case len(c.Inputs) > 1 && c.Name != "":
		return invalid("--name needs a single input, got %d", len(c.Inputs))
	case c.Depth != 0 && c.Depth != 1 && c.Depth != 16:
		return invalid("--depth must be 0, 1 or 16, got %d", c.Depth)
	case c.Width < 0 || c.Height < 0:
		return invalid("negative size %dx%d", c.Width, c.Height)
	case c.Colors < 0 || c.Colors > colorset.MaxColors:
		return invalid("--colors must be between 0 and %d, got %d", colorset.MaxColors, c.Colors)
	case c.Timeout <= 0:
		return invalid("--timeout must be positive")
	}
	return nil
}

// ParseHexColor reads #RGB or #RRGGBB into an opaque color.
func ParseHexColor(s string) (color.RGBA, error) {
	if (len(s) != 4 && len(s) != 7) || s[0] != '#' {
		return color.RGBA{}, invalid("color %q is not #RGB or #RRGGBB", s)
	}
	v, err := strconv.ParseUint(s[1:], 16, 32)
	if err != nil {
		return color.RGBA{}, invalid("could not read color %q: %v", s, err)
	}

	if len(s) == 4 {
		return color.RGBA{
			R: uint8(v>>8&0xF) * 0x11,
			G: uint8(v>>4&0xF) * 0x11,
			B: uint8(v&0xF) * 0x11,
			A: 0xff,
		}, nil
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
}

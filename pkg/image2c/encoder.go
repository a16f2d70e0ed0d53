package image2c

import (
	"fmt"
	"image"
	"io"

	"github.com/inhies/go-bytesize"
	"github.com/pkg/errors"
	"github.com/rs/xid"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"image2c/pkg/bitmap"
	"image2c/pkg/carray"
	"image2c/pkg/colorset"
	"image2c/pkg/transform"
)

const separator = "//------------------------------------------------------------------------------\n"

var flashBlock = []string{
	"#if (GSLC_USE_PROGMEM)\n",
	"  #if defined(__AVR__)\n",
	"    #include <avr/pgmspace.h>\n",
	"  #else\n",
	"    #include <pgmspace.h>\n",
	"  #endif\n",
	"#endif\n",
	"\n",
}

// Result describes one emitted array.
type Result struct {
	ID        xid.ID
	Name      string
	Width     int
	Height    int
	Bpp       int
	ArraySize int
	Items     int
}

func NewEncoder(logger *zap.Logger, ctx *Context) *Encoder {
	return &Encoder{
		logger: logger.With(zap.String("via", "encoder")),
		ctx:    ctx,
	}
}

// Encoder emits an image as a GUIslice C array.
type Encoder struct {
	logger *zap.Logger
	ctx    *Context
}

func (e *Encoder) Context() *Context {
	return e.ctx
}

type payload struct {
	bpp    int
	width  int
	height int
	bytes  []byte
	words  []uint16
}

func (p *payload) size() int {
	if p.bpp == 1 {
		return len(p.bytes)
	}
	return p.width * p.height * 2
}

// depth picks the output depth when none is forced: images already
// packed to one bit or holding fewer than three colors take the 1-bit
// path.
func depth(m image.Image, forced int) (int, error) {
	switch forced {
	case 1, 16:
		return forced, nil
	case 0:
	default:
		return 0, errors.Wrapf(colorset.ErrInvalidOption, "depth must be 0, 1 or 16, got %d", forced)
	}
	if _, ok := m.(*transform.Mono); ok {
		return 1, nil
	}
	return lo.Ternary(colorset.FromImage(m).ColorCount() < 3, 1, 16), nil
}

func (e *Encoder) prepare(m image.Image, forced int) (*payload, error) {
	b := m.Bounds()
	p := &payload{width: b.Dx(), height: b.Dy()}

	bpp, err := depth(m, forced)
	if err != nil {
		return nil, err
	}
	if bpp == 1 {
		mono, ok := m.(*transform.Mono)
		if !ok {
			mono = transform.Binarize(m, e.ctx.Foreground)
		}
		p.bpp, p.bytes = 1, mono.Pix
		return p, nil
	}

	rgb, err := bitmap.Encode(transform.To24(m, e.ctx.Transparent))
	if err != nil {
		return nil, err
	}
	p.bpp, p.words = 16, rgb.Words()
	return p, nil
}

// Encode writes m to w as a C source file. Output already written is not
// rolled back when a later step fails.
func (e *Encoder) Encode(w io.Writer, m image.Image, o Options) (*Result, error) {
	b := m.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, errors.Wrapf(colorset.ErrInvalidOption, "empty image %dx%d", b.Dx(), b.Dy())
	}

	res := &Result{ID: xid.New(), Name: SanitizeIdentifier(o.ArrayName)}
	logger := e.logger.With(zap.String("export", res.ID.String()), zap.String("name", res.Name))

	p, err := e.prepare(m, o.Depth)
	if err != nil {
		return nil, errors.WithMessage(err, "prepare pixels")
	}
	res.Width, res.Height, res.Bpp, res.ArraySize = p.width, p.height, p.bpp, p.size()

	logger.With(
		zap.Int("bpp", p.bpp),
		zap.Int("width", p.width),
		zap.Int("height", p.height),
		zap.Stringer("size", bytesize.New(float64(res.ArraySize))),
		zap.Bool("littleEndian", o.LittleEndian),
		zap.Bool("flash", o.Flash),
		zap.Bool("transparentChange", o.TransparentChange),
	).Debug("emitting array")

	cw := carray.NewWriter(w, o.LittleEndian)
	e.writeHeader(cw, p, res, o)

	if p.bpp == 1 {
		err = cw.StreamBytes(p.bytes)
	} else {
		err = cw.StreamShorts(p.words)
	}
	res.Items = cw.Pos()
	if err != nil {
		return nil, err
	}

	logger.With(zap.Int("items", res.Items)).Debug("array written")
	return res, nil
}

func (e *Encoder) writeHeader(cw *carray.Writer, p *payload, res *Result, o Options) {
	lines := []string{
		separator,
		"// File Generated by GUIslice_Image2C\n",
		separator,
		fmt.Sprintf("// Generated from   : %s%s\n", o.SourceBase, o.SourceExt),
		fmt.Sprintf("// Dimensions       : %dx%d pixels\n", p.width, p.height),
		fmt.Sprintf("// Bits Per Pixel   : %d Bits\n", p.bpp),
		fmt.Sprintf("// Memory Size      : %d Bytes\n", res.ArraySize),
		fmt.Sprintf("// Little Endian    : %t\n", o.LittleEndian),
		separator,
		"\n",
		"// For details on how to generate this file please refer to\n",
		"// https://github.com/ImpulseAdventure/GUIslice/wiki/Display-Images-from-FLASH\n",
		"\n",
		"#include \"GUIslice.h\"\n",
		"#include \"GUIslice_config.h\"\n",
		"\n",
	}
	if o.Flash {
		lines = append(lines, flashBlock...)
	}
	lines = append(lines, declaration(res.Name, p, o.Flash))

	if p.bpp == 1 {
		mono := e.ctx.Monochrome
		lines = append(lines,
			fmt.Sprintf("0x%02X, // Height of image\n", (p.height>>8)&0xFF),
			fmt.Sprintf("0x%02X,\n", p.height&0xFF),
			fmt.Sprintf("0x%02X, // Width of image\n", (p.width>>8)&0xFF),
			fmt.Sprintf("0x%02X,\n", p.width&0xFF),
			fmt.Sprintf("%3d, // red color\n", mono.R),
			fmt.Sprintf("%3d, // green color\n", mono.G),
			fmt.Sprintf("%3d, // blue color\n", mono.B),
		)
	} else {
		lines = append(lines,
			fmt.Sprintf("%d, // Height of image\n", p.height),
			fmt.Sprintf("%d, // Width of image\n", p.width),
		)
	}

	for _, l := range lines {
		// errors are sticky and reported by the payload flush
		_, _ = cw.WriteString(l)
	}
}

func declaration(name string, p *payload, flash bool) string {
	pmem := lo.Ternary(flash, " GSLC_PMEM", "")
	if p.bpp == 1 {
		return fmt.Sprintf("const unsigned char %s[%d+%d]%s = {\n", name, p.size(), lo.Ternary(flash, 7, 5), pmem)
	}
	return fmt.Sprintf("const unsigned short %s[%d+2]%s = {\n", name, p.size()/2, pmem)
}

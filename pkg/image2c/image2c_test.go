package image2c

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"os"
	"regexp"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"image2c/pkg/carray"
	"image2c/pkg/colorset"
	"image2c/pkg/transform"
)

const rule = "//------------------------------------------------------------------------------\n"

func solid(w, h int, c color.Color) *image.NRGBA {
	m := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			m.Set(x, y, c)
		}
	}
	return m
}

func preamble(src string, w, h, bpp, size int, little, flash bool) string {
	s := rule +
		"// File Generated by GUIslice_Image2C\n" +
		rule +
		"// Generated from   : " + src + "\n" +
		fmt.Sprintf("// Dimensions       : %dx%d pixels\n", w, h) +
		fmt.Sprintf("// Bits Per Pixel   : %d Bits\n", bpp) +
		fmt.Sprintf("// Memory Size      : %d Bytes\n", size) +
		fmt.Sprintf("// Little Endian    : %t\n", little) +
		rule +
		"\n" +
		"// For details on how to generate this file please refer to\n" +
		"// https://github.com/ImpulseAdventure/GUIslice/wiki/Display-Images-from-FLASH\n" +
		"\n" +
		"#include \"GUIslice.h\"\n" +
		"#include \"GUIslice_config.h\"\n" +
		"\n"
	if flash {
		s += "#if (GSLC_USE_PROGMEM)\n" +
			"  #if defined(__AVR__)\n" +
			"    #include <avr/pgmspace.h>\n" +
			"  #else\n" +
			"    #include <pgmspace.h>\n" +
			"  #endif\n" +
			"#endif\n" +
			"\n"
	}
	return s
}

func pad(n int) string {
	return strings.Repeat("        ", n)
}

func encode(t *testing.T, ctx *Context, m image.Image, o Options) (string, *Result) {
	var buf bytes.Buffer
	res, err := NewEncoder(zap.NewNop(), ctx).Encode(&buf, m, o)
	require.NoError(t, err)
	return buf.String(), res
}

func TestEncodeSolidRed16(t *testing.T) {
	o := Options{ArrayName: "img", SourceBase: "img", SourceExt: ".png", LittleEndian: true, Depth: 16}
	out, res := encode(t, NewContext(), solid(2, 2, color.NRGBA{255, 0, 0, 255}), o)

	want := preamble("img.png", 2, 2, 16, 8, true, false) +
		"const unsigned short img[4+2] = {\n" +
		"2, // Height of image\n" +
		"2, // Width of image\n" +
		"0xF800, 0xF800, 0xF800, 0xF800  " + pad(12) + "    // 0x0004 (4) pixels\n" +
		"};\n"
	assert.Equal(t, want, out)
	assert.Equal(t, 16, res.Bpp)
	assert.Equal(t, 8, res.ArraySize)
	assert.Equal(t, 4, res.Items)
	assert.Equal(t, "img", res.Name)
}

func TestEncodeSolidBlackMonoFlash(t *testing.T) {
	o := Options{ArrayName: "img", SourceBase: "img", SourceExt: ".bmp", LittleEndian: true, Flash: true}
	out, res := encode(t, NewContext(), solid(2, 2, color.Black), o)

	want := preamble("img.bmp", 2, 2, 1, 2, true, true) +
		"const unsigned char img[2+7] GSLC_PMEM = {\n" +
		"0x00, // Height of image\n" +
		"0x02,\n" +
		"0x00, // Width of image\n" +
		"0x02,\n" +
		"255, // red color\n" +
		"255, // green color\n" +
		"255, // blue color\n" +
		"0x00, 0x00  " + pad(14) + "    // 0x0002 (2) pixels\n" +
		"};\n"
	assert.Equal(t, want, out)
	assert.Equal(t, 1, res.Bpp)
	assert.Equal(t, 2, res.ArraySize)
}

func checkerboard() *image.NRGBA {
	m := image.NewNRGBA(image.Rect(0, 0, 8, 1))
	for x := 0; x < 8; x++ {
		if x%2 == 0 {
			m.Set(x, 0, color.Black)
		} else {
			m.Set(x, 0, color.White)
		}
	}
	return m
}

func TestEncodeCheckerboardIgnoresEndianness(t *testing.T) {
	src := checkerboard()
	var outs []string
	for _, little := range []bool{true, false} {
		ctx := NewContext()
		require.Equal(t, 2, ctx.Load(src))
		o := Options{ArrayName: "cb", LittleEndian: little}
		out, res := encode(t, ctx, src, o)
		assert.Equal(t, 1, res.Bpp)

		body := out[strings.Index(out, "const"):]
		assert.Contains(t, body, "const unsigned char cb[1+5] = {\n")
		assert.Contains(t, body, "  0, // red color\n")
		assert.Contains(t, body, "0xAA  "+pad(15)+"    // 0x0001 (1) pixels\n};\n")
		outs = append(outs, body)
	}
	assert.Equal(t, outs[0], outs[1])
}

func TestEncodeSeventeenItems(t *testing.T) {
	m := solid(17, 1, color.NRGBA{0, 0, 255, 255})
	out, res := encode(t, NewContext(), m, Options{ArrayName: "row", LittleEndian: false, Depth: 16})

	line1 := strings.Repeat("0x1F00, ", 16) + "    // 0x0010 (16) pixels\n"
	line2 := "0x1F00  " + pad(15) + "    // 0x0011 (17) pixels\n"
	assert.True(t, strings.HasSuffix(out, line1+line2+"};\n"), out)
	assert.Equal(t, 17, res.Items)
	assert.Equal(t, 34, res.ArraySize)
	assert.Contains(t, out, "// Little Endian    : false\n")
	assert.Contains(t, out, "const unsigned short row[17+2] = {\n")
}

func TestEncodeThreePixels565(t *testing.T) {
	m := image.NewNRGBA(image.Rect(0, 0, 3, 1))
	m.Set(0, 0, color.NRGBA{31, 0, 0, 255})
	m.Set(1, 0, color.NRGBA{0, 63, 0, 255})
	m.Set(2, 0, color.NRGBA{0, 0, 255, 255})

	out, res := encode(t, NewContext(), m, Options{ArrayName: "px", LittleEndian: true, Flash: true})
	assert.Equal(t, 16, res.Bpp)
	assert.Contains(t, out, "const unsigned short px[3+2] GSLC_PMEM = {\n1, // Height of image\n3, // Width of image\n")
	assert.Contains(t, out, "0x1800, 0x01E0, 0x001F  ")
}

func TestEncodeMonoHeaderBytes(t *testing.T) {
	m := solid(300, 2, color.White)
	ctx := NewContext()
	ctx.Load(m)
	out, res := encode(t, ctx, m, Options{ArrayName: "wide", Flash: true})

	assert.Equal(t, 1, res.Bpp)
	assert.Equal(t, 2*((300+7)/8), res.ArraySize)
	assert.Contains(t, out, "0x00, // Height of image\n0x02,\n0x01, // Width of image\n0x2C,\n")
	assert.Equal(t, res.ArraySize, res.Items)

	comments := regexp.MustCompile(`// 0x([0-9A-F]{4}) \((\d+)\) pixels`).FindAllStringSubmatch(out, -1)
	require.Len(t, comments, (res.Items+15)/16)
	assert.Equal(t, fmt.Sprint(res.Items), comments[len(comments)-1][2])
	for i, c := range comments[:len(comments)-1] {
		assert.Equal(t, fmt.Sprintf("%04X", (i+1)*16), c[1])
	}
}

func TestEncodeTransparentFill(t *testing.T) {
	m := image.NewNRGBA(image.Rect(0, 0, 3, 1))
	m.Set(0, 0, color.NRGBA{0, 0, 0, 0})
	m.Set(1, 0, color.NRGBA{0, 255, 0, 255})
	m.Set(2, 0, color.NRGBA{255, 255, 255, 255})

	out, _ := encode(t, NewContext(), m, Options{ArrayName: "t", LittleEndian: true, Depth: 16})
	assert.Contains(t, out, "0xF81F, 0x07E0, 0xFFFF  ")
}

func TestEncodeMonoImageKeepsBits(t *testing.T) {
	mono := transform.Binarize(checkerboard(), color.Black)
	out, res := encode(t, NewContext(), mono, Options{ArrayName: "m"})
	assert.Equal(t, 1, res.Bpp)
	assert.Contains(t, out, "0xAA  ")
}

func TestEncodeInvalid(t *testing.T) {
	enc := NewEncoder(zap.NewNop(), NewContext())
	var buf bytes.Buffer

	_, err := enc.Encode(&buf, solid(1, 1, color.White), Options{Depth: 8})
	assert.True(t, errors.Is(err, colorset.ErrInvalidOption))

	_, err = enc.Encode(&buf, image.NewNRGBA(image.Rect(0, 0, 0, 3)), Options{})
	assert.True(t, errors.Is(err, colorset.ErrInvalidOption))
}

type failWriter struct{}

func (failWriter) Write([]byte) (int, error) {
	return 0, errors.New("disk full")
}

func TestEncodeWriteFailure(t *testing.T) {
	_, err := NewEncoder(zap.NewNop(), NewContext()).Encode(failWriter{}, solid(2, 2, color.White), Options{})
	assert.True(t, errors.Is(err, carray.ErrWrite))
}

func TestSanitizeIdentifier(t *testing.T) {
	assert.Equal(t, "my_image_", SanitizeIdentifier("my image!"))
	assert.Equal(t, "a(1)[2]_b", SanitizeIdentifier("a(1)[2].b"))
	assert.Regexp(t, `^[A-Za-z0-9()\[\]_]*$`, SanitizeIdentifier(`ünï cödé/\;`))
}

func TestContextLoad(t *testing.T) {
	ctx := NewContext()
	assert.Equal(t, transform.White, ctx.Foreground)
	assert.Equal(t, DefaultTransparent, ctx.Transparent)

	assert.Equal(t, 2, ctx.Load(checkerboard()))
	assert.Equal(t, transform.Black, ctx.Foreground)
	assert.Equal(t, transform.Black, ctx.Monochrome)
	assert.Equal(t, 1, ctx.BitDepth())

	assert.Equal(t, transform.White, ctx.SwapForeground())
	assert.Equal(t, transform.White, ctx.Monochrome)
	assert.Equal(t, transform.Black, ctx.SwapForeground())

	m := solid(4, 4, color.Black)
	for i := 0; i < 4; i++ {
		m.Set(i, 0, color.NRGBA{uint8(i * 60), 10, 10, 255})
	}
	assert.Equal(t, 5, ctx.Load(m))
	assert.Equal(t, transform.White, ctx.Foreground)
	assert.Equal(t, 4, ctx.BitDepth())
	// more than two colors: nothing to swap
	assert.Equal(t, transform.White, ctx.SwapForeground())

	assert.Equal(t, 1, ctx.Update(solid(2, 2, color.White)))
	assert.Equal(t, 5, ctx.Original())
	assert.Equal(t, 1, ctx.Count())
}

func TestContextRecolor(t *testing.T) {
	ctx := NewContext()
	src := checkerboard()
	ctx.Load(src)
	red := color.RGBA{255, 0, 0, 255}
	ctx.SetMonochrome(red)

	out := ctx.Recolor(src)
	assert.Equal(t, red, ctx.Foreground)
	assert.Equal(t, color.NRGBA{255, 0, 0, 255}, out.At(0, 0))
	assert.Equal(t, color.NRGBA{255, 255, 255, 255}, out.At(1, 0))

	// the recolored foreground drives binarization and the header
	enc, _ := encode(t, ctx, out, Options{ArrayName: "r"})
	assert.Contains(t, enc, "255, // red color\n  0, // green color\n  0, // blue color\n0xAA  ")
}

func TestExport(t *testing.T) {
	fs := afero.NewMemMapFs()
	x := NewExporter(fs, NewEncoder(zap.NewNop(), NewContext()), zap.NewNop(), WithCreateDirs(0o755))

	res, err := x.Export("out/red.c", solid(2, 2, color.NRGBA{255, 0, 0, 255}), Options{ArrayName: "red", LittleEndian: true, Depth: 16})
	require.NoError(t, err)
	assert.Equal(t, 16, res.Bpp)

	data, err := afero.ReadFile(fs, "out/red.c")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(string(data), "    // 0x0004 (4) pixels\n};\n"))

	// a second export replaces the file
	_, err = x.Export("out/red.c", solid(1, 1, color.White), Options{ArrayName: "red"})
	require.NoError(t, err)
	data, err = afero.ReadFile(fs, "out/red.c")
	require.NoError(t, err)
	assert.Contains(t, string(data), "const unsigned char red[1+5] = {\n")
	assert.Equal(t, 1, strings.Count(string(data), "File Generated"))
}

func TestExportReadOnly(t *testing.T) {
	fs := afero.NewReadOnlyFs(afero.NewMemMapFs())
	x := NewExporter(fs, NewEncoder(zap.NewNop(), NewContext()), zap.NewNop())

	_, err := x.Export("red.c", solid(1, 1, color.White), DefaultOptions())
	assert.True(t, errors.Is(err, carray.ErrWrite))
}

type closeCountFs struct {
	afero.Fs
	closes int
	err    error
}

type closeCountFile struct {
	afero.File
	fs *closeCountFs
}

func (f closeCountFile) Close() error {
	f.fs.closes++
	if err := f.File.Close(); err != nil {
		return err
	}
	return f.fs.err
}

func (fs *closeCountFs) OpenFile(name string, flag int, perm os.FileMode) (afero.File, error) {
	f, err := fs.Fs.OpenFile(name, flag, perm)
	if err != nil {
		return nil, err
	}
	return closeCountFile{File: f, fs: fs}, nil
}

func TestExportClose(t *testing.T) {
	fs := &closeCountFs{Fs: afero.NewMemMapFs()}
	x := NewExporter(fs, NewEncoder(zap.NewNop(), NewContext()), zap.NewNop())

	_, err := x.Export("red.c", solid(1, 1, color.White), DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, 1, fs.closes)

	_, err = x.Export("red.c", image.NewNRGBA(image.Rect(0, 0, 0, 1)), DefaultOptions())
	assert.Error(t, err)
	assert.Equal(t, 2, fs.closes)

	fs.err = errors.New("disk full")
	_, err = x.Export("red.c", solid(1, 1, color.White), DefaultOptions())
	assert.True(t, errors.Is(err, carray.ErrWrite))
	assert.Equal(t, 3, fs.closes)
}

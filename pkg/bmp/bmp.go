/*
Package bmp implements the in-memory BMP-24 intermediate used to normalize
scanline order and padding before RGB565 packing.

The intermediate is a standard Windows bitmap: a 14 byte file header, a 40
byte BITMAPINFOHEADER and uncompressed 24-bit pixel rows, each row padded to
a multiple of four bytes. A positive height means the rows are stored
bottom-up.
*/
package bmp

import (
	"bytes"
	"image"

	"github.com/pkg/errors"
	xbmp "golang.org/x/image/bmp"

	"image2c/pkg/transform"
)

const (
	Magic          = 0x4D42 // "BM"
	fileHeaderSize = 14
	infoHeaderSize = 40
)

var (
	ErrBadMagic    = errors.New("bmp: bad magic")
	ErrEncode      = errors.New("bmp: encode failed")
	ErrUnsupported = errors.New("bmp: not an uncompressed 24-bit bitmap")
)

// Encode24 writes m as a 24-bit BMP into memory. Images that are not an
// opaque *image.RGBA are flattened onto black first, which makes the
// encoder choose the 24-bit layout.
func Encode24(m image.Image) ([]byte, error) {
	rgba, ok := m.(*image.RGBA)
	if !ok || !rgba.Opaque() {
		rgba = transform.To24(m, nil)
	}

	var buf bytes.Buffer
	if err := xbmp.Encode(&buf, rgba); err != nil {
		return nil, errors.Wrapf(ErrEncode, "%v", err)
	}
	return buf.Bytes(), nil
}

// RowSize returns the padded length in bytes of one 24-bit scanline.
func RowSize(width int) int {
	return (width*3 + 3) &^ 3
}

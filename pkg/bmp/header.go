package bmp

import (
	"bytes"
	"io"
	"math"

	"github.com/pkg/errors"
)

// Header holds the file header and BITMAPINFOHEADER fields.
type Header struct {
	Magic     uint16
	FileSize  int32
	Reserved1 int16
	Reserved2 int16
	Offset    int32

	HeaderSize      int32
	Width           int32
	Height          int32 // negative for top-down rows
	Planes          int16
	Bpp             int16
	Compression     int32
	ImageSize       int32
	XRes            int32
	YRes            int32
	ColorsUsed      int32
	ColorsImportant int32
}

// Bitmap is a parsed intermediate: its header and the raw pixel rows.
type Bitmap struct {
	Header

	// Flip is set for bottom-up bitmaps, where the first stored row is
	// the bottom row of the image.
	Flip bool
	// Pix holds the stored rows, B, G, R per pixel, RowSize bytes per row.
	Pix []byte
}

// Dx returns the width in pixels.
func (b *Bitmap) Dx() int {
	return int(b.Width)
}

// Dy returns the height in pixels, whatever the row order.
func (b *Bitmap) Dy() int {
	if b.Height < 0 {
		return -int(b.Height)
	}
	return int(b.Height)
}

// Parse reads a 24-bit bitmap produced by Encode24.
func Parse(r io.Reader) (*Bitmap, error) {
	lr := NewReader(r)
	var bm Bitmap
	h := &bm.Header

	magic, err := lr.ReadShort()
	if err != nil {
		return nil, err
	}
	h.Magic = uint16(magic)
	if h.Magic != Magic {
		return nil, errors.Wrapf(ErrBadMagic, "got 0x%04X", h.Magic)
	}

	for _, f := range []interface{}{
		&h.FileSize, &h.Reserved1, &h.Reserved2, &h.Offset,
		&h.HeaderSize, &h.Width, &h.Height, &h.Planes, &h.Bpp,
		&h.Compression, &h.ImageSize, &h.XRes, &h.YRes,
		&h.ColorsUsed, &h.ColorsImportant,
	} {
		if err := readField(lr, f); err != nil {
			return nil, err
		}
	}

	if h.Planes != 1 || h.Bpp != 24 || h.Compression != 0 {
		return nil, errors.Wrapf(ErrUnsupported, "planes=%d bpp=%d compression=%d",
			h.Planes, h.Bpp, h.Compression)
	}
	if h.Width <= 0 {
		return nil, errors.Wrapf(ErrUnsupported, "width=%d", h.Width)
	}
	// ImageSize may be zero for uncompressed rows, otherwise it must
	// match the padded row layout.
	size := int64(RowSize(bm.Dx())) * int64(bm.Dy())
	if size > math.MaxInt32 || (h.ImageSize != 0 && int64(h.ImageSize) != size) {
		return nil, errors.Wrapf(ErrUnsupported, "image size %d for %dx%d", h.ImageSize, h.Width, h.Height)
	}

	bm.Flip = true
	if h.Height < 0 {
		bm.Flip = false
	}

	if err := lr.Skip(int(h.Offset) - lr.Offset()); err != nil {
		return nil, err
	}

	bm.Pix = make([]byte, size)
	if err := lr.readFull(bm.Pix); err != nil {
		return nil, err
	}

	return &bm, nil
}

func readField(lr *Reader, f interface{}) error {
	var err error
	switch v := f.(type) {
	case *int16:
		*v, err = lr.ReadShort()
	case *int32:
		*v, err = lr.ReadInt()
	}
	return err
}

// Decode24 parses an intermediate held in memory.
func Decode24(data []byte) (*Bitmap, error) {
	return Parse(bytes.NewReader(data))
}

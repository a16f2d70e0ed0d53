package bitmap

import (
	"image"

	"github.com/pkg/errors"

	"image2c/pkg/bmp"
)

// FromBitmap packs the rows of a parsed 24-bit intermediate into RGB565,
// top row first whatever the stored row order.
func FromBitmap(bm *bmp.Bitmap) (*RGB565, error) {
	w, h := bm.Dx(), bm.Dy()
	rowSize := bmp.RowSize(w)
	if len(bm.Pix) < rowSize*h {
		return nil, errors.Wrapf(bmp.ErrTruncated, "pixel data is %d bytes, want %d", len(bm.Pix), rowSize*h)
	}

	dst := NewRGB565(image.Rect(0, 0, w, h))
	idx := 0
	for row := 0; row < h; row++ {
		pos := row * rowSize
		if bm.Flip {
			pos = (h - 1 - row) * rowSize
		}
		for col := 0; col < w; col++ {
			b, g, r := bm.Pix[pos], bm.Pix[pos+1], bm.Pix[pos+2]
			pos += 3
			dst.Pix[idx] = Pack(r, g, b)
			idx++
		}
	}
	return dst, nil
}

// Encode packs src through the BMP-24 intermediate.
func Encode(src image.Image) (*RGB565, error) {
	data, err := bmp.Encode24(src)
	if err != nil {
		return nil, err
	}
	bm, err := bmp.Decode24(data)
	if err != nil {
		return nil, err
	}
	return FromBitmap(bm)
}

package bmp

import (
	"io"

	"github.com/pkg/errors"
)

var ErrTruncated = errors.New("bmp: truncated input")

// Reader decodes little-endian primitives. It is only meant for walking
// the BMP intermediate produced by Encode24.
type Reader struct {
	r   io.Reader
	n   int
	tmp [4]byte
}

func NewReader(r io.Reader) *Reader {
	return &Reader{r: r}
}

func (r *Reader) readFull(b []byte) error {
	n, err := io.ReadFull(r.r, b)
	r.n += n
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return errors.Wrapf(ErrTruncated, "want %d bytes at offset %d", len(b), r.n-n)
	}
	return err
}

// Offset returns the number of bytes consumed so far.
func (r *Reader) Offset() int {
	return r.n
}

// ReadByte returns one raw byte.
func (r *Reader) ReadByte() (byte, error) {
	if err := r.readFull(r.tmp[:1]); err != nil {
		return 0, err
	}
	return r.tmp[0], nil
}

// ReadShort returns b1<<8 | b0 as a signed 16-bit value.
func (r *Reader) ReadShort() (int16, error) {
	if err := r.readFull(r.tmp[:2]); err != nil {
		return 0, err
	}
	return int16(uint16(r.tmp[1])<<8 | uint16(r.tmp[0])), nil
}

// ReadInt returns b3<<24 | b2<<16 | b1<<8 | b0 as a signed 32-bit value.
func (r *Reader) ReadInt() (int32, error) {
	if err := r.readFull(r.tmp[:4]); err != nil {
		return 0, err
	}
	return int32(uint32(r.tmp[3])<<24 | uint32(r.tmp[2])<<16 | uint32(r.tmp[1])<<8 | uint32(r.tmp[0])), nil
}

// Skip discards n bytes.
func (r *Reader) Skip(n int) error {
	if n <= 0 {
		return nil
	}
	m, err := io.CopyN(io.Discard, r.r, int64(n))
	r.n += int(m)
	if err == io.EOF {
		return errors.Wrapf(ErrTruncated, "skip %d bytes at offset %d", n, r.n-int(m))
	}
	return err
}

package carray

import (
	"fmt"
	"io"

	"github.com/pkg/errors"
)

// MaxItems is the number of array elements written per line.
const MaxItems = 16

var ErrWrite = errors.New("carray: write failed")

func NewWriter(w io.Writer, littleEndian bool) *Writer {
	return &Writer{w: w, littleEndian: littleEndian}
}

// Writer streams a C array literal with a fixed line geometry: sixteen
// elements per line, each line closed by a comment holding the running
// element count.
type Writer struct {
	w            io.Writer
	littleEndian bool

	lineLen int
	pos     int
	err     error
}

// Pos returns the number of array elements written so far.
func (w *Writer) Pos() int {
	return w.pos
}

func (w *Writer) printf(format string, args ...interface{}) {
	if w.err != nil {
		return
	}
	if _, err := fmt.Fprintf(w.w, format, args...); err != nil {
		w.err = errors.Wrapf(ErrWrite, "%v", err)
	}
}

// WriteString writes s verbatim, outside of the element accounting.
func (w *Writer) WriteString(s string) (int, error) {
	w.printf("%s", s)
	if w.err != nil {
		return 0, w.err
	}
	return len(s), nil
}

// PutByte writes one byte element. The last element of the stream is
// followed by two spaces instead of a comma.
func (w *Writer) PutByte(b byte, last bool) error {
	if last {
		w.printf("0x%02X  ", b)
	} else {
		w.printf("0x%02X, ", b)
	}
	return w.advance()
}

// PutShort writes one 16-bit element, swapping its bytes first when the
// writer is big endian.
func (w *Writer) PutShort(v uint16, last bool) error {
	if !w.littleEndian {
		v = v<<8 | v>>8
	}
	if last {
		w.printf("0x%04X  ", v)
	} else {
		w.printf("0x%04X, ", v)
	}
	return w.advance()
}

func (w *Writer) advance() error {
	w.lineLen++
	w.pos++
	if w.lineLen >= MaxItems {
		w.comment()
		w.lineLen = 0
	}
	return w.err
}

func (w *Writer) comment() {
	w.printf("    // 0x%04X (%d) pixels\n", w.pos, w.pos)
}

// StreamBytes writes every byte of data as an element and flushes.
func (w *Writer) StreamBytes(data []byte) error {
	for i, b := range data {
		if err := w.PutByte(b, i+1 == len(data)); err != nil {
			return err
		}
	}
	return w.Flush()
}

// StreamShorts writes every word of data as an element and flushes.
func (w *Writer) StreamShorts(data []uint16) error {
	for i, v := range data {
		if err := w.PutShort(v, i+1 == len(data)); err != nil {
			return err
		}
	}
	return w.Flush()
}

// Flush pads a partial final line so its comment lines up with the full
// lines above it, then closes the array.
func (w *Writer) Flush() error {
	if w.lineLen != 0 {
		for i := 0; i < MaxItems-w.lineLen; i++ {
			w.printf("        ")
		}
		w.comment()
		w.lineLen = 0
	}
	w.printf("};\n")
	return w.err
}

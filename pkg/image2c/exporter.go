package image2c

import (
	"bufio"
	"image"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"go.uber.org/zap"

	"image2c/pkg/carray"
)

type Option func(x *Exporter)

// WithCreateDirs makes Export create missing parent directories.
func WithCreateDirs(perm os.FileMode) Option {
	return func(x *Exporter) {
		x.mkdir = true
		x.dirPerm = perm
	}
}

func WithFilePerm(perm os.FileMode) Option {
	return func(x *Exporter) {
		x.filePerm = perm
	}
}

func NewExporter(fs afero.Fs, enc *Encoder, logger *zap.Logger, opts ...Option) *Exporter {
	x := &Exporter{
		fs:     fs,
		enc:    enc,
		logger: logger.With(zap.String("via", "exporter")),
		// options
		filePerm: 0o644,
		dirPerm:  0o755,
	}

	for _, opt := range opts {
		opt(x)
	}

	return x
}

// Exporter writes encoded arrays to files.
type Exporter struct {
	fs     afero.Fs
	enc    *Encoder
	logger *zap.Logger
	// options
	mkdir    bool
	dirPerm  os.FileMode
	filePerm os.FileMode
}

// Export encodes m into the file at path, replacing it. A file that
// fails halfway is left on disk as written.
func (x *Exporter) Export(path string, m image.Image, o Options) (*Result, error) {
	if x.mkdir {
		if err := x.fs.MkdirAll(filepath.Dir(path), x.dirPerm); err != nil {
			return nil, errors.Wrapf(carray.ErrWrite, "create directory of %s: %v", path, err)
		}
	}

	f, err := x.fs.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, x.filePerm)
	if err != nil {
		return nil, errors.Wrapf(carray.ErrWrite, "open %s: %v", path, err)
	}

	bw := bufio.NewWriter(f)
	res, err := x.enc.Encode(bw, m, o)
	if ferr := bw.Flush(); err == nil && ferr != nil {
		err = errors.Wrapf(carray.ErrWrite, "flush %s: %v", path, ferr)
	}
	if err != nil {
		_ = f.Close()
		x.logger.With(zap.String("path", path), zap.Error(err)).Debug("export failed")
		return nil, err
	}

	if err := f.Close(); err != nil {
		return nil, errors.Wrapf(carray.ErrWrite, "close %s: %v", path, err)
	}

	x.logger.With(
		zap.String("path", path),
		zap.String("export", res.ID.String()),
		zap.Int("bpp", res.Bpp),
	).Debug("exported")
	return res, nil
}

/*
Package source loads input images from the local filesystem or over
HTTP and decodes them with the registered image formats.
*/
package source

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"io"
	"net/url"
	"path"
	"path/filepath"
	"strings"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/afero"
	"go.uber.org/zap"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

var (
	ErrDecode = errors.New("source: decode failed")
	ErrFetch  = errors.New("source: fetch failed")
)

type Option func(l *Loader)

// WithClient replaces the HTTP client used for URLs.
func WithClient(cli *resty.Client) Option {
	return func(l *Loader) {
		l.cli = cli.SetDoNotParseResponse(true)
	}
}

// WithProgress draws a download progress bar on w.
func WithProgress(w io.Writer) Option {
	return func(l *Loader) {
		l.progress = w
	}
}

// WithCache keeps downloaded files in fs and reads them back from there
// on the next load of the same URL.
func WithCache(fs afero.Fs) Option {
	return func(l *Loader) {
		l.cache = fs
	}
}

func NewLoader(fs afero.Fs, logger *zap.Logger, opts ...Option) *Loader {
	l := &Loader{
		fs:  fs,
		cli: resty.New().SetDoNotParseResponse(true),
		log: logger.With(zap.String("via", "loader")),
	}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

// Loader reads and decodes input images.
type Loader struct {
	fs  afero.Fs
	cli *resty.Client
	log *zap.Logger
	// options
	progress io.Writer
	cache    afero.Fs
}

// Image is a decoded input.
type Image struct {
	image.Image
	// Format is the decoder name, such as "png".
	Format string
	// File is the last path element of the input.
	File string
	// Dir is the directory of a local input, empty for URLs.
	Dir string
	// Remote is set for inputs fetched over HTTP.
	Remote bool
}

func IsURL(name string) bool {
	lower := strings.ToLower(name)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// Load reads name, a path on the loader filesystem or an http(s) URL,
// and decodes it.
func (l *Loader) Load(ctx context.Context, name string) (*Image, error) {
	var (
		img = &Image{}
		bs  []byte
		err error
	)

	if IsURL(name) {
		u, perr := url.Parse(name)
		if perr != nil {
			return nil, errors.Wrapf(ErrFetch, "parse %s: %v", name, perr)
		}
		img.File = path.Base(u.Path)
		img.Remote = true
		bs, err = l.fetch(ctx, name, img.File)
	} else {
		img.File = filepath.Base(name)
		img.Dir = filepath.Dir(name)
		bs, err = afero.ReadFile(l.fs, name)
		if err != nil {
			err = errors.Wrapf(ErrDecode, "read %s: %v", name, err)
		}
	}
	if err != nil {
		return nil, err
	}

	m, format, err := image.Decode(bytes.NewReader(bs))
	if err != nil {
		return nil, errors.Wrapf(ErrDecode, "%s: %v", name, err)
	}
	img.Image, img.Format = m, format

	b := m.Bounds()
	l.log.With(
		zap.String("name", name),
		zap.String("format", format),
		zap.Int("width", b.Dx()),
		zap.Int("height", b.Dy()),
	).Debug("image loaded")

	return img, nil
}

func (l *Loader) fetch(ctx context.Context, rawURL, file string) ([]byte, error) {
	cacheable := l.cache != nil && file != "." && file != "/"
	if cacheable {
		if exists, err := afero.Exists(l.cache, file); err != nil {
			return nil, err
		} else if exists {
			l.log.With(zap.String("url", rawURL)).Debug("cache hit")
			return afero.ReadFile(l.cache, file)
		}
	}

	resp, err := l.cli.R().SetContext(ctx).Get(rawURL)
	if err != nil {
		return nil, errors.Wrapf(ErrFetch, "%s: %v", rawURL, err)
	}

	defer func() {
		_ = resp.RawBody().Close()
	}()

	if code := resp.RawResponse.StatusCode; code >= 400 {
		return nil, errors.Wrapf(ErrFetch, "%s: status %d", rawURL, code)
	}

	var dst io.Writer = io.Discard
	if l.progress != nil {
		dst = progressbar.NewOptions64(
			resp.RawResponse.ContentLength,
			progressbar.OptionSetWriter(l.progress),
			progressbar.OptionSetDescription(fmt.Sprintf("Downloading %s", file)),
			progressbar.OptionShowBytes(true),
			progressbar.OptionClearOnFinish(),
		)
	}

	var buf bytes.Buffer
	if _, err := io.Copy(io.MultiWriter(&buf, dst), resp.RawBody()); err != nil {
		return nil, errors.Wrapf(ErrFetch, "%s: %v", rawURL, err)
	}

	if cacheable {
		if err := afero.WriteFile(l.cache, file, buf.Bytes(), 0o644); err != nil {
			l.log.With(zap.String("url", rawURL), zap.Error(err)).Info("cache write failed")
		}
	}

	return buf.Bytes(), nil
}

/*
Package batch converts every input of a command line run, one after the
other, sharing one conversion context.
*/
package batch

import (
	"context"
	"io"

	"github.com/inhies/go-bytesize"
	"github.com/pkg/errors"
	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"

	"image2c/internal/config"
	"image2c/pkg/image2c"
	"image2c/pkg/quantize"
	"image2c/pkg/source"
	"image2c/pkg/transform"
)

func NewRunner(cfg *config.Config, loader *source.Loader, ctx *image2c.Context, exporter *image2c.Exporter, logger *zap.Logger) *Runner {
	return &Runner{
		cfg:      cfg,
		loader:   loader,
		ctx:      ctx,
		exporter: exporter,
		log:      logger,
	}
}

type Runner struct {
	cfg      *config.Config
	loader   *source.Loader
	ctx      *image2c.Context
	exporter *image2c.Exporter
	log      *zap.Logger
	progress io.Writer
}

// ShowProgress draws a progress bar over the inputs on w when there is
// more than one.
func (r *Runner) ShowProgress(w io.Writer) {
	r.progress = w
}

// Run converts all inputs and returns how many failed. A failed input
// does not stop the others.
func (r *Runner) Run(ctx context.Context) int {
	var bar *progressbar.ProgressBar
	if r.progress != nil && len(r.cfg.Inputs) > 1 {
		bar = progressbar.NewOptions(len(r.cfg.Inputs),
			progressbar.OptionSetWriter(r.progress),
			progressbar.OptionSetDescription("Converting"),
			progressbar.OptionShowCount(),
		)
	}

	failed := 0
	for _, in := range r.cfg.Inputs {
		if err := r.Convert(ctx, in); err != nil {
			r.log.With(zap.String("input", in), zap.Error(err)).Error("convert failed")
			failed++
		}
		if bar != nil {
			_ = bar.Add(1)
		}
	}
	return failed
}

// Convert loads one input, applies the configured transforms and exports
// it.
func (r *Runner) Convert(ctx context.Context, input string) error {
	img, err := r.loader.Load(ctx, input)
	if err != nil {
		return err
	}

	cfg := r.cfg
	r.ctx.Transparent = cfg.Transparent
	colors := r.ctx.Load(img)
	log := r.log.With(zap.String("input", input))
	log.With(zap.Int("colors", colors), zap.Int("depth", r.ctx.BitDepth())).Debug("loaded")

	m := img.Image
	if cfg.Width > 0 || cfg.Height > 0 {
		m = transform.Resize(m, cfg.Width, cfg.Height, cfg.Filter)
		r.ctx.Update(m)
	}
	if cfg.Gray {
		m = transform.Grayscale(m)
		r.ctx.Update(m)
	}
	if cfg.Colors > 0 {
		if m, err = quantize.Image(m, cfg.Colors, cfg.Algorithm, cfg.Dither); err != nil {
			return errors.WithMessage(err, "quantize")
		}
		r.ctx.Update(m)
	}
	if cfg.SwapFG {
		r.ctx.SwapForeground()
	}
	if cfg.Foreground != nil {
		r.ctx.SetMonochrome(*cfg.Foreground)
		m = r.ctx.Recolor(m)
	}

	dir := cfg.OutDir
	if dir == "" {
		dir = img.Dir
	}
	names := source.BuildNames(img.File, dir, cfg.Out, cfg.Name)

	res, err := r.exporter.Export(names.Output, m, names.Options(cfg.Options()))
	if err != nil {
		return err
	}

	log.With(
		zap.String("output", names.Output),
		zap.String("array", res.Name),
		zap.String("export", res.ID.String()),
		zap.Int("bpp", res.Bpp),
		zap.Stringer("size", bytesize.New(float64(res.ArraySize))),
	).Info("exported")
	return nil
}

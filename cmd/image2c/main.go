package main

import (
	"context"
	"fmt"
	"os"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
	flag "github.com/spf13/pflag"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"image2c/internal/batch"
	"image2c/internal/config"
	"image2c/pkg/image2c"
	"image2c/pkg/source"
)

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.Debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func newLoader(cfg *config.Config, fs afero.Fs, logger *zap.Logger) (*source.Loader, error) {
	opts := []source.Option{
		source.WithClient(resty.New().SetTimeout(cfg.Timeout)),
		source.WithProgress(os.Stderr),
	}

	if cfg.CacheDir != "" {
		if err := fs.MkdirAll(cfg.CacheDir, 0o755); err != nil {
			return nil, errors.Wrap(err, "create cache dir")
		}
		opts = append(opts, source.WithCache(afero.NewBasePathFs(fs, cfg.CacheDir)))
	}

	return source.NewLoader(fs, logger, opts...), nil
}

func newExporter(fs afero.Fs, enc *image2c.Encoder, logger *zap.Logger) *image2c.Exporter {
	return image2c.NewExporter(fs, enc, logger, image2c.WithCreateDirs(0o755))
}

func main() {
	cfg, err := config.Parse(os.Args[1:], os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		return
	} else if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	var failed int

	app := fx.New(
		fx.Supply(cfg),
		fx.Provide(
			newLogger,
			func() afero.Fs { return afero.NewOsFs() },
			newLoader,
			image2c.NewContext,
			image2c.NewEncoder,
			newExporter,
			batch.NewRunner,
		),
		fx.WithLogger(func(logger *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: logger.WithOptions(zap.IncreaseLevel(zap.WarnLevel))}
		}),
		fx.Invoke(func(r *batch.Runner) {
			r.ShowProgress(os.Stderr)
			failed = r.Run(context.Background())
		}),
	)

	if err := app.Err(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if failed > 0 {
		fmt.Fprintf(os.Stderr, "%d of %d conversions failed\n", failed, len(cfg.Inputs))
		os.Exit(1)
	}
}

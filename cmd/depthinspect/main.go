// Package main runs the depth inspector against a frame source, serving the
// annotated depth stream and the neighborhood grid to a browser and/or a directory.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"go.uber.org/multierr"
	goutils "go.viam.com/utils"

	"go.viam.com/depthinspect/config"
	"go.viam.com/depthinspect/logging"
	"go.viam.com/depthinspect/viewer"
	"go.viam.com/depthinspect/web"
)

const (
	flagConfig    = "config"
	flagRadius    = "radius"
	flagCellSize  = "cell-size"
	flagCaption   = "caption"
	flagSource    = "source"
	flagDir       = "dir"
	flagListen    = "listen"
	flagOutput    = "output"
	flagMaxFrames = "max-frames"
	flagDebug     = "debug"

	shutdownTimeout = 5 * time.Second
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp().RunContext(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		//nolint:gocritic
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "depthinspect",
		Usage: "inspect raw depth values around a pixel of a live depth stream",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    flagConfig,
				Aliases: []string{"c"},
				Usage:   "load configuration from `FILE`",
			},
			&cli.UintFlag{
				Name:  flagRadius,
				Usage: "neighborhood radius in pixels",
				Value: config.DefaultRadius,
			},
			&cli.IntFlag{
				Name:  flagCellSize,
				Usage: "grid cell size in pixels",
				Value: config.DefaultCellSize,
			},
			&cli.StringFlag{
				Name:  flagCaption,
				Usage: "grid caption: none, position or stats",
				Value: config.CaptionPosition,
			},
			&cli.StringFlag{
				Name:  flagSource,
				Usage: "frame source: fake or image_file",
				Value: config.SourceFake,
			},
			&cli.StringFlag{
				Name:  flagDir,
				Usage: "directory of 16-bit depth PNGs for the image_file source",
			},
			&cli.StringFlag{
				Name:  flagListen,
				Usage: "address to serve the browser viewer on, empty to disable",
				Value: config.DefaultListen,
			},
			&cli.StringFlag{
				Name:  flagOutput,
				Usage: "write the latest image of each window into `DIR`",
			},
			&cli.IntFlag{
				Name:  flagMaxFrames,
				Usage: "stop after this many frames, 0 to run until quit",
			},
			&cli.BoolFlag{
				Name:    flagDebug,
				Aliases: []string{"vvv"},
				Usage:   "enable debug logging",
			},
		},
		Action: func(c *cli.Context) error {
			cfg, err := configFromFlags(c)
			if err != nil {
				return err
			}
			logger := logging.NewLogger("depthinspect")
			logger.SetLevel(cfg.LogLevel)
			defer goutils.UncheckedErrorFunc(logger.Sync)
			return runInspector(c.Context, cfg, logger)
		},
	}
}

// configFromFlags loads the config file, if any, and applies explicitly set flags on top.
func configFromFlags(c *cli.Context) (*config.Config, error) {
	cfg := config.Default()
	if path := c.String(flagConfig); path != "" {
		var err error
		if cfg, err = config.Read(path); err != nil {
			return nil, err
		}
	}

	if c.IsSet(flagRadius) {
		cfg.Radius = c.Uint(flagRadius)
	}
	if c.IsSet(flagCellSize) {
		cfg.CellSize = c.Int(flagCellSize)
	}
	if c.IsSet(flagCaption) {
		cfg.Caption = c.String(flagCaption)
	}
	if c.IsSet(flagSource) {
		cfg.Source = config.SourceConfig{Type: c.String(flagSource)}
	}
	if c.IsSet(flagDir) {
		if cfg.Source.Attributes == nil {
			cfg.Source.Attributes = map[string]interface{}{}
		}
		cfg.Source.Attributes["dir"] = c.String(flagDir)
	}
	if c.IsSet(flagListen) {
		cfg.Web.Listen = c.String(flagListen)
	}
	if c.IsSet(flagOutput) {
		cfg.OutputDir = c.String(flagOutput)
	}
	if c.IsSet(flagMaxFrames) {
		cfg.MaxFrames = c.Int(flagMaxFrames)
	}
	if c.Bool(flagDebug) {
		cfg.LogLevel = logging.DEBUG
	}

	if err := cfg.Validate("flags"); err != nil {
		return nil, err
	}
	return cfg, nil
}

// runInspector wires the configured source and sinks into a session and runs it until
// quit, cancellation or the frame limit.
func runInspector(ctx context.Context, cfg *config.Config, logger logging.Logger) (err error) {
	source, err := cfg.Source.NewFrameSource(logger.Sublogger("source"))
	if err != nil {
		return errors.Wrap(err, "creating frame source")
	}

	events := viewer.NewEventQueue()
	var sinks []viewer.Sink

	if cfg.OutputDir != "" {
		dirSink, err := viewer.NewDirSink(cfg.OutputDir)
		if err != nil {
			return err
		}
		sinks = append(sinks, dirSink)
	}

	var server *web.Server
	if cfg.Web.Listen != "" {
		server = web.NewServer(events, nil, logger.Sublogger("web"), web.WithAllowedOrigins(cfg.Web.AllowedOrigins...))
		if err := server.Start(cfg.Web.Listen); err != nil {
			return err
		}
		defer func() {
			closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			err = multierr.Combine(err, server.Close(closeCtx))
		}()
		sinks = append(sinks, server)
	}

	session := viewer.NewSession(source, events, viewer.Options{
		Radius:    cfg.Radius,
		Renderer:  cfg.RendererOptions(),
		MaxFrames: cfg.MaxFrames,
	}, logger.Sublogger("session"), sinks...)
	if server != nil {
		server.SetInspectionProvider(session)
	}

	logger.Infow("inspector running", "radius", cfg.Radius, "source", cfg.Source.Type)
	return session.Run(ctx)
}

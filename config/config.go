// Package config defines the inspector's configuration file and builds the frame
// source it names.
package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/a8m/envsubst"
	"github.com/go-viper/mapstructure/v2"
	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"go.viam.com/depthinspect/components/camera"
	"go.viam.com/depthinspect/components/camera/fake"
	"go.viam.com/depthinspect/components/camera/imagefile"
	"go.viam.com/depthinspect/inspect"
	"go.viam.com/depthinspect/logging"
)

// Source types.
const (
	SourceFake      = "fake"
	SourceImageFile = "image_file"
)

// Caption modes.
const (
	CaptionNone     = "none"
	CaptionPosition = "position"
	CaptionStats    = "stats"
)

// Defaults observed on the reference viewer.
const (
	DefaultRadius   = inspect.DefaultRadius
	DefaultCellSize = 80
	DefaultListen   = "localhost:8080"
)

// Config is the inspector configuration.
type Config struct {
	Radius    uint          `json:"radius"`
	CellSize  int           `json:"cell_size"`
	FontSize  float64       `json:"font_size,omitempty"`
	Caption   string        `json:"caption"`
	Source    SourceConfig  `json:"source"`
	Web       WebConfig     `json:"web"`
	OutputDir string        `json:"output_dir,omitempty"`
	MaxFrames int           `json:"max_frames,omitempty"`
	LogLevel  logging.Level `json:"log_level"`
}

// SourceConfig selects a frame source. Attributes are decoded into the source's own
// config type.
type SourceConfig struct {
	Type       string                 `json:"type"`
	Attributes map[string]interface{} `json:"attributes,omitempty"`
}

// WebConfig configures the browser viewer. An empty Listen disables it.
type WebConfig struct {
	Listen         string   `json:"listen"`
	AllowedOrigins []string `json:"allowed_origins,omitempty"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Radius:   DefaultRadius,
		CellSize: DefaultCellSize,
		Caption:  CaptionPosition,
		Source:   SourceConfig{Type: SourceFake},
		Web:      WebConfig{Listen: DefaultListen},
		LogLevel: logging.INFO,
	}
}

// Read reads a config from the given file, substituting environment variables first.
// Fields the file omits keep their defaults.
func Read(filePath string) (*Config, error) {
	buf, err := envsubst.ReadFile(filePath)
	if err != nil {
		return nil, err
	}
	return FromReader(filePath, bytes.NewReader(buf))
}

// FromReader reads a config from r. originalPath is only used in error messages.
func FromReader(originalPath string, r io.Reader) (*Config, error) {
	cfg := Default()
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		return nil, errors.Wrapf(err, "cannot parse config %q", originalPath)
	}
	if err := cfg.Validate("config"); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate ensures all parts of the config are valid.
func (c *Config) Validate(path string) error {
	var errs error
	if c.CellSize <= 0 {
		errs = multierr.Append(errs, errors.Errorf("%s.cell_size: must be positive, got %d", path, c.CellSize))
	}
	if c.FontSize < 0 {
		errs = multierr.Append(errs, errors.Errorf("%s.font_size: cannot be negative", path))
	}
	if c.MaxFrames < 0 {
		errs = multierr.Append(errs, errors.Errorf("%s.max_frames: cannot be negative", path))
	}
	switch c.Caption {
	case CaptionNone, CaptionPosition, CaptionStats, "":
	default:
		errs = multierr.Append(errs, errors.Errorf("%s.caption: unknown caption %q", path, c.Caption))
	}
	if err := c.Source.Validate(path + ".source"); err != nil {
		errs = multierr.Append(errs, err)
	}
	return errs
}

// CaptionFunc returns the caption builder for the configured mode, nil for none.
func (c *Config) CaptionFunc() inspect.CaptionFunc {
	switch c.Caption {
	case CaptionPosition:
		return inspect.PositionCaption
	case CaptionStats:
		return inspect.StatsCaption
	default:
		return nil
	}
}

// RendererOptions returns the renderer options the config implies.
func (c *Config) RendererOptions() []inspect.RendererOption {
	opts := []inspect.RendererOption{inspect.WithCellSize(c.CellSize)}
	if c.FontSize > 0 {
		opts = append(opts, inspect.WithFontSize(c.FontSize))
	}
	if caption := c.CaptionFunc(); caption != nil {
		opts = append(opts, inspect.WithCaption(caption))
	}
	return opts
}

// Validate ensures the source type is known and its attributes decode and validate.
func (sc *SourceConfig) Validate(path string) error {
	switch strings.ToLower(sc.Type) {
	case SourceFake:
		var native fake.Config
		if err := sc.decode(&native); err != nil {
			return errors.Wrapf(err, "%s.attributes", path)
		}
		return native.Validate(path + ".attributes")
	case SourceImageFile:
		var native imagefile.Config
		if err := sc.decode(&native); err != nil {
			return errors.Wrapf(err, "%s.attributes", path)
		}
		return native.Validate(path + ".attributes")
	default:
		return errors.Errorf("%s.type: unknown source type %q", path, sc.Type)
	}
}

// decode converts the free-form attributes into a source config using its json tags.
func (sc *SourceConfig) decode(to interface{}) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		Result:           to,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return err
	}
	return decoder.Decode(sc.Attributes)
}

// NewFrameSource builds the configured source.
func (sc *SourceConfig) NewFrameSource(logger logging.Logger) (camera.FrameSource, error) {
	switch strings.ToLower(sc.Type) {
	case SourceFake:
		var native fake.Config
		if err := sc.decode(&native); err != nil {
			return nil, err
		}
		return fake.NewSource(native, logger)
	case SourceImageFile:
		var native imagefile.Config
		if err := sc.decode(&native); err != nil {
			return nil, err
		}
		return imagefile.NewSource(native, logger)
	default:
		return nil, fmt.Errorf("unknown source type %q", sc.Type)
	}
}

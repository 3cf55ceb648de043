// Package fake implements a synthetic stereo depth camera: a tilted floor with a
// sphere sweeping across it and a band of unmatched pixels along the left edge.
package fake

import (
	"context"
	"image"
	"math"
	"sync"
	"time"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
	goutils "go.viam.com/utils"

	"go.viam.com/depthinspect/components/camera"
	"go.viam.com/depthinspect/logging"
	"go.viam.com/depthinspect/rimage"
)

const (
	defaultWidth     = 640
	defaultHeight    = 480
	defaultFrameRate = 30.0

	// InvalidDepth is what reprojection leaves in pixels it could not match.
	InvalidDepth rimage.Depth = 10000

	floorDepth  = 800
	floorSlope  = 4
	sphereDepth = 300
	disparity   = 16
)

// Config describes the synthetic stream.
type Config struct {
	Width     int     `json:"width,omitempty"`
	Height    int     `json:"height,omitempty"`
	FrameRate float64 `json:"frame_rate,omitempty"`
}

// Validate ensures all parts of the config are valid.
func (cfg *Config) Validate(path string) error {
	if cfg.Width < 0 || cfg.Height < 0 {
		return errors.Errorf("%s: got illegal negative dimensions for width and height (%d, %d)", path, cfg.Width, cfg.Height)
	}
	if cfg.FrameRate < 0 {
		return errors.Errorf("%s: frame_rate cannot be negative", path)
	}
	return nil
}

// Source is a fake camera.FrameSource.
type Source struct {
	mu        sync.Mutex
	width     int
	height    int
	period    time.Duration
	streaming bool
	index     uint64
	logger    logging.Logger
}

var _ camera.FrameSource = (*Source)(nil)

// NewSource returns a stopped synthetic source. Zero config fields take defaults.
func NewSource(cfg Config, logger logging.Logger) (*Source, error) {
	if err := cfg.Validate("fake"); err != nil {
		return nil, err
	}
	if cfg.Width == 0 {
		cfg.Width = defaultWidth
	}
	if cfg.Height == 0 {
		cfg.Height = defaultHeight
	}
	if cfg.FrameRate == 0 {
		cfg.FrameRate = defaultFrameRate
	}
	return &Source{
		width:  cfg.Width,
		height: cfg.Height,
		period: time.Duration(float64(time.Second) / cfg.FrameRate),
		logger: logger,
	}, nil
}

// Start begins streaming.
func (s *Source) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.streaming = true
	s.logger.Infow("fake depth stream started", "width", s.width, "height", s.height, "period", s.period)
	return nil
}

// WaitForFrames paces frames at the configured rate and returns the next synthetic set.
func (s *Source) WaitForFrames(ctx context.Context) (camera.FrameSet, error) {
	s.mu.Lock()
	streaming, period := s.streaming, s.period
	s.mu.Unlock()
	if !streaming {
		return camera.FrameSet{}, camera.ErrNotStarted
	}

	if !goutils.SelectContextOrWait(ctx, period) {
		return camera.FrameSet{}, ctx.Err()
	}

	s.mu.Lock()
	index := s.index
	s.index++
	s.mu.Unlock()

	depth := DepthFrame(s.width, s.height, index)
	left := depth.ToPrettyPicture(0, InvalidDepth)
	right := imaging.Paste(imaging.New(s.width, s.height, rimage.Black), left, image.Pt(-disparity, 0))

	return camera.NewFrameSet(index, time.Now(), map[camera.Channel]image.Image{
		camera.ChannelLeft:  left,
		camera.ChannelRight: right,
		camera.ChannelDepth: depth,
	}), nil
}

// Stop ends streaming.
func (s *Source) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.streaming {
		s.logger.Infow("fake depth stream stopped", "frames", s.index)
	}
	s.streaming = false
	return nil
}

// DepthFrame renders frame number index of the synthetic scene. Depth grows down the
// image, a sphere moves one pixel right per frame, and the leftmost sixteenth of the
// columns is InvalidDepth.
func DepthFrame(width, height int, index uint64) *rimage.DepthMap {
	dm := rimage.NewEmptyDepthMap(width, height)
	if width == 0 || height == 0 {
		return dm
	}

	band := width / 16
	cx := float64(int(index % uint64(width)))
	cy := float64(height) / 2
	radius := math.Max(float64(height)/6, 1)

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if x < band {
				dm.SetDepth(x, y, InvalidDepth)
				continue
			}
			z := float64(floorDepth + floorSlope*y)
			dx, dy := float64(x)-cx, float64(y)-cy
			if d2 := (dx*dx + dy*dy) / (radius * radius); d2 < 1 {
				z -= sphereDepth * math.Sqrt(1-d2)
			}
			dm.SetDepth(x, y, rimage.Depth(z))
		}
	}
	return dm
}

// Package imagefile implements a frame source that replays recorded depth frames
// stored as 16-bit grayscale PNG files.
package imagefile

import (
	"context"
	"image"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/pkg/errors"
	goutils "go.viam.com/utils"

	"go.viam.com/depthinspect/components/camera"
	"go.viam.com/depthinspect/logging"
	"go.viam.com/depthinspect/rimage"
)

const defaultPattern = "*.png"

// Config points at a directory of recorded depth frames.
type Config struct {
	Dir       string  `json:"dir"`
	Pattern   string  `json:"pattern,omitempty"`
	FrameRate float64 `json:"frame_rate,omitempty"`
}

// Validate ensures all parts of the config are valid.
func (cfg *Config) Validate(path string) error {
	if cfg.Dir == "" {
		return errors.Errorf("%s: dir is required", path)
	}
	if cfg.FrameRate < 0 {
		return errors.Errorf("%s: frame_rate cannot be negative", path)
	}
	if cfg.Pattern != "" {
		if _, err := filepath.Match(cfg.Pattern, ""); err != nil {
			return errors.Wrapf(err, "%s: bad pattern %q", path, cfg.Pattern)
		}
	}
	return nil
}

// Source cycles through the matching files in name order, one per frame.
type Source struct {
	mu        sync.Mutex
	cfg       Config
	period    time.Duration
	files     []string
	streaming bool
	index     uint64
	logger    logging.Logger
}

var _ camera.FrameSource = (*Source)(nil)

// NewSource returns a stopped source. Files are listed at Start.
func NewSource(cfg Config, logger logging.Logger) (*Source, error) {
	if err := cfg.Validate("imagefile"); err != nil {
		return nil, err
	}
	if cfg.Pattern == "" {
		cfg.Pattern = defaultPattern
	}
	var period time.Duration
	if cfg.FrameRate > 0 {
		period = time.Duration(float64(time.Second) / cfg.FrameRate)
	}
	return &Source{cfg: cfg, period: period, logger: logger}, nil
}

// Start lists the frames to replay.
func (s *Source) Start(ctx context.Context) error {
	files, err := filepath.Glob(filepath.Join(s.cfg.Dir, s.cfg.Pattern))
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return errors.Errorf("no files matching %q in %q", s.cfg.Pattern, s.cfg.Dir)
	}
	sort.Strings(files)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.files = files
	s.streaming = true
	s.logger.Infow("replaying depth frames", "dir", s.cfg.Dir, "count", len(files))
	return nil
}

// WaitForFrames returns the next recorded frame, wrapping around at the end.
func (s *Source) WaitForFrames(ctx context.Context) (camera.FrameSet, error) {
	s.mu.Lock()
	if !s.streaming {
		s.mu.Unlock()
		return camera.FrameSet{}, camera.ErrNotStarted
	}
	index := s.index
	s.index++
	fn := s.files[index%uint64(len(s.files))]
	s.mu.Unlock()

	if !goutils.SelectContextOrWait(ctx, s.period) {
		return camera.FrameSet{}, ctx.Err()
	}

	dm, err := rimage.ReadDepthMapFromFile(fn)
	if err != nil {
		return camera.FrameSet{}, errors.Wrapf(err, "reading frame %d", index)
	}
	return camera.NewFrameSet(index, time.Now(), map[camera.Channel]image.Image{
		camera.ChannelDepth: dm,
	}), nil
}

// Stop ends the replay.
func (s *Source) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.streaming = false
	return nil
}

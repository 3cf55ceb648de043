// Package camera defines the frame source a stereo depth camera exposes to the
// inspector: a streaming session that yields synchronized sets of frames.
package camera

import (
	"context"
	"fmt"
	"image"
	"time"

	"github.com/pkg/errors"

	"go.viam.com/depthinspect/rimage"
)

// ErrNotStarted is returned when frames are requested before Start or after Stop.
var ErrNotStarted = errors.New("frame source is not streaming")

// Channel identifies one stream of a frame set.
type Channel int

const (
	// ChannelLeft is the left rectified image.
	ChannelLeft Channel = iota
	// ChannelRight is the right rectified image.
	ChannelRight
	// ChannelDepth is the depth image, one 16-bit sample per pixel.
	ChannelDepth
)

func (ch Channel) String() string {
	switch ch {
	case ChannelLeft:
		return "left"
	case ChannelRight:
		return "right"
	case ChannelDepth:
		return "depth"
	default:
		return fmt.Sprintf("Channel(%d)", int(ch))
	}
}

// FrameSet is one synchronized capture across channels. A channel the source does
// not produce is absent.
type FrameSet struct {
	Index      uint64
	CapturedAt time.Time

	frames map[Channel]image.Image
}

// NewFrameSet bundles the given frames. Nil frames are dropped.
func NewFrameSet(index uint64, capturedAt time.Time, frames map[Channel]image.Image) FrameSet {
	fs := FrameSet{Index: index, CapturedAt: capturedAt, frames: map[Channel]image.Image{}}
	for ch, img := range frames {
		if img != nil {
			fs.frames[ch] = img
		}
	}
	return fs
}

// Get returns the frame for a channel.
func (fs FrameSet) Get(ch Channel) (image.Image, bool) {
	img, ok := fs.frames[ch]
	return img, ok
}

// Depth returns the depth channel as a DepthMap. The returned map is the frame set's
// own buffer when the source produced a DepthMap, so drawing on it modifies the frame.
func (fs FrameSet) Depth() (*rimage.DepthMap, error) {
	img, ok := fs.Get(ChannelDepth)
	if !ok {
		return nil, errors.Errorf("frame %d has no %s channel", fs.Index, ChannelDepth)
	}
	return rimage.ConvertImageToDepthMap(img)
}

// A FrameSource streams synchronized frame sets.
type FrameSource interface {
	// Start begins streaming.
	Start(ctx context.Context) error

	// WaitForFrames blocks until the next frame set is available or ctx is done.
	WaitForFrames(ctx context.Context) (FrameSet, error)

	// Stop ends streaming. Stopping a stopped source is a no-op.
	Stop(ctx context.Context) error
}

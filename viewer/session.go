// Package viewer runs the inspection loop: it waits for frames, feeds queued pointer
// events to the region selector and presents the annotated depth frame and the
// neighborhood grid to its sinks.
package viewer

import (
	"context"
	"image"
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"go.viam.com/depthinspect/components/camera"
	"go.viam.com/depthinspect/inspect"
	"go.viam.com/depthinspect/logging"
)

// Options configures a Session.
type Options struct {
	Radius   uint
	Renderer []inspect.RendererOption
	// MaxFrames stops the session after that many frames. Zero runs until quit.
	MaxFrames int
}

// Inspection is what the session last showed.
type Inspection struct {
	Frame uint64                    `json:"frame"`
	State inspect.State             `json:"state"`
	Stats inspect.NeighborhoodStats `json:"stats"`
}

// Session owns the selector for one inspection session. Run must be called from a
// single goroutine; events from elsewhere go through the EventQueue.
type Session struct {
	source   camera.FrameSource
	events   *EventQueue
	sinks    []Sink
	selector *inspect.RegionSelector
	renderer *inspect.Renderer
	opts     Options
	logger   logging.Logger

	mu     sync.Mutex
	latest *Inspection
}

// NewSession wires a source and sinks around a fresh selector.
func NewSession(source camera.FrameSource, events *EventQueue, opts Options, logger logging.Logger, sinks ...Sink) *Session {
	if events == nil {
		events = NewEventQueue()
	}
	rendererOpts := append([]inspect.RendererOption{inspect.WithLogger(logger.Sublogger("renderer"))}, opts.Renderer...)
	return &Session{
		source:   source,
		events:   events,
		sinks:    sinks,
		selector: inspect.NewRegionSelector(opts.Radius),
		renderer: inspect.NewRenderer(rendererOpts...),
		opts:     opts,
		logger:   logger,
	}
}

// Events returns the queue the session drains.
func (s *Session) Events() *EventQueue {
	return s.events
}

// State returns the selector's state.
func (s *Session) State() inspect.State {
	return s.selector.State()
}

// Latest returns what the last frame showed, if the inspector was visible.
func (s *Session) Latest() (Inspection, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.latest == nil {
		return Inspection{}, false
	}
	return *s.latest, true
}

// Run starts the source and processes frames until a quit key arrives, ctx is done,
// or MaxFrames is reached. Cancellation is not an error.
func (s *Session) Run(ctx context.Context) (err error) {
	if err := s.source.Start(ctx); err != nil {
		return errors.Wrap(err, "starting frame source")
	}
	defer func() {
		err = multierr.Combine(err, s.source.Stop(context.Background()))
	}()

	for frames := 0; s.opts.MaxFrames == 0 || frames < s.opts.MaxFrames; frames++ {
		fs, err := s.source.WaitForFrames(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return errors.Wrap(err, "waiting for frames")
		}
		if err := s.ProcessFrame(fs); err != nil {
			return err
		}
		if s.ApplyEvents() {
			s.logger.Info("quit requested")
			return nil
		}
	}
	return nil
}

// ApplyEvents feeds queued pointer events to the selector in order and reports whether
// a quit key was pressed.
func (s *Session) ApplyEvents() bool {
	pointer, keys := s.events.Drain()
	for _, ev := range pointer {
		s.selector.HandlePointerEvent(ev.Kind, ev.X, ev.Y)
	}
	if len(pointer) > 0 {
		state := s.selector.State()
		s.logger.Debugw("pointer events applied", "count", len(pointer), "point", state.Point, "mode", state.Mode())
	}
	for _, key := range keys {
		if IsQuitKey(key) {
			return true
		}
	}
	return false
}

// ProcessFrame presents one frame set: the stereo pair, the depth frame with the
// inspection rectangle drawn into it, and the neighborhood grid. The depth channel is
// modified in place.
func (s *Session) ProcessFrame(fs camera.FrameSet) error {
	if frame := stereoFrame(fs); frame != nil {
		s.present(WindowFrame, frame)
	}

	depth, err := fs.Depth()
	if err != nil {
		s.logger.Debugw("skipping frame without depth", "frame", fs.Index, "error", err)
		return nil
	}

	state := s.selector.State()
	if err := s.renderer.Annotate(depth, state); err != nil {
		return err
	}
	s.present(WindowDepth, depth)

	grid, err := s.renderer.RenderGrid(depth, state)
	if err != nil {
		return err
	}
	if grid == nil {
		return nil
	}
	s.present(WindowRegion, grid.Image)

	inspection := &Inspection{
		Frame: fs.Index,
		State: state,
		Stats: inspect.Stats(depth, state.Point, state.Radius),
	}
	s.mu.Lock()
	s.latest = inspection
	s.mu.Unlock()
	return nil
}

func (s *Session) present(name string, img image.Image) {
	for _, sink := range s.sinks {
		if err := sink.Present(name, img); err != nil {
			s.logger.Warnw("failed to present image", "window", name, "error", err)
		}
	}
}

func stereoFrame(fs camera.FrameSet) image.Image {
	left, hasLeft := fs.Get(camera.ChannelLeft)
	right, hasRight := fs.Get(camera.ChannelRight)
	switch {
	case hasLeft && hasRight:
		return SideBySide(left, right)
	case hasLeft:
		return left
	case hasRight:
		return right
	default:
		return nil
	}
}

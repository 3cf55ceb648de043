package viewer

import (
	"image"
	"os"
	"path/filepath"
	"sync"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"

	"go.viam.com/depthinspect/rimage"
)

// Window names the session presents to.
const (
	WindowFrame  = "frame"
	WindowDepth  = "depth"
	WindowRegion = "region"
)

// A Sink displays images by window name. A sink must not modify the images it is given
// and may keep references to them.
type Sink interface {
	Present(name string, img image.Image) error
}

// Latest is a Sink that keeps the most recent image per window.
type Latest struct {
	mu   sync.RWMutex
	imgs map[string]image.Image
}

// NewLatest returns an empty Latest.
func NewLatest() *Latest {
	return &Latest{imgs: map[string]image.Image{}}
}

// Present stores img as the latest image for name.
func (l *Latest) Present(name string, img image.Image) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.imgs[name] = img
	return nil
}

// Get returns the latest image for name.
func (l *Latest) Get(name string) (image.Image, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	img, ok := l.imgs[name]
	return img, ok
}

// DirSink writes each presented image to <dir>/<name>.png, replacing the previous one.
type DirSink struct {
	dir string
}

// NewDirSink creates dir if needed and returns a sink writing into it.
func NewDirSink(dir string) (*DirSink, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, errors.Wrapf(err, "creating output dir %q", dir)
	}
	return &DirSink{dir: dir}, nil
}

// Present writes img as a PNG. Depth maps keep their 16-bit samples so the written
// frames can be replayed.
func (s *DirSink) Present(name string, img image.Image) error {
	fn := filepath.Join(s.dir, name+".png")
	if dm, ok := img.(*rimage.DepthMap); ok {
		return rimage.WriteDepthMapToFile(dm, fn)
	}
	return imaging.Save(img, fn)
}

// SideBySide places left and right next to each other on a black canvas tall enough
// for both.
func SideBySide(left, right image.Image) image.Image {
	lb, rb := left.Bounds(), right.Bounds()
	height := lb.Dy()
	if rb.Dy() > height {
		height = rb.Dy()
	}
	dst := imaging.New(lb.Dx()+rb.Dx(), height, rimage.Black)
	dst = imaging.Paste(dst, left, image.Pt(0, 0))
	return imaging.Paste(dst, right, image.Pt(lb.Dx(), 0))
}

package camera

import (
	"image"
	"testing"
	"time"

	"go.viam.com/test"

	"go.viam.com/depthinspect/rimage"
)

func TestFrameSet(t *testing.T) {
	dm := rimage.NewEmptyDepthMap(4, 4)
	left := image.NewRGBA(image.Rect(0, 0, 4, 4))
	now := time.Now()

	fs := NewFrameSet(7, now, map[Channel]image.Image{
		ChannelLeft:  left,
		ChannelRight: nil,
		ChannelDepth: dm,
	})
	test.That(t, fs.Index, test.ShouldEqual, uint64(7))
	test.That(t, fs.CapturedAt, test.ShouldEqual, now)

	img, ok := fs.Get(ChannelLeft)
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, img, test.ShouldEqual, left)

	_, ok = fs.Get(ChannelRight)
	test.That(t, ok, test.ShouldBeFalse)

	depth, err := fs.Depth()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, depth, test.ShouldEqual, dm)
}

func TestFrameSetDepthMissing(t *testing.T) {
	fs := NewFrameSet(3, time.Time{}, nil)
	_, err := fs.Depth()
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "frame 3 has no depth channel")

	fs = NewFrameSet(4, time.Time{}, map[Channel]image.Image{ChannelDepth: image.NewGray16(image.Rect(0, 0, 2, 2))})
	dm, err := fs.Depth()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, dm.Width(), test.ShouldEqual, 2)
}

func TestChannelString(t *testing.T) {
	test.That(t, ChannelLeft.String(), test.ShouldEqual, "left")
	test.That(t, ChannelDepth.String(), test.ShouldEqual, "depth")
	test.That(t, Channel(9).String(), test.ShouldEqual, "Channel(9)")
}

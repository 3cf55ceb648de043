package inspect

import (
	"image"
	"testing"

	"go.viam.com/test"

	"go.viam.com/depthinspect/rimage"
)

func TestFormatDepth(t *testing.T) {
	test.That(t, FormatDepth(0), test.ShouldEqual, "0")
	test.That(t, FormatDepth(9999), test.ShouldEqual, "9999")
	test.That(t, FormatDepth(10000), test.ShouldEqual, "invalid")
	test.That(t, FormatDepth(rimage.MaxDepth), test.ShouldEqual, "invalid")
	test.That(t, IsValidDepth(9999), test.ShouldBeTrue)
	test.That(t, IsValidDepth(10000), test.ShouldBeFalse)
}

func TestPositionCaption(t *testing.T) {
	test.That(t, PositionCaption(nil, image.Pt(7, 2), 3), test.ShouldEqual, "depth pos: [2, 7]±3, unit: mm")
}

func TestStatsCaption(t *testing.T) {
	dm := filledDepthMap(5, 5, 1000)
	test.That(t, StatsCaption(dm, image.Pt(2, 2), 1), test.ShouldEqual,
		"depth pos: [2, 2]±1, unit: mm, mean 1000.0 sd 0.0")

	invalid := filledDepthMap(5, 5, 10000)
	test.That(t, StatsCaption(invalid, image.Pt(2, 2), 1), test.ShouldEndWith, "no valid samples")

	test.That(t, StatsCaption(nil, image.Pt(2, 2), 1), test.ShouldEqual, "depth pos: [2, 2]±1, unit: mm")
}

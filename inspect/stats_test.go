package inspect

import (
	"image"
	"math"
	"testing"

	"go.viam.com/test"

	"go.viam.com/depthinspect/rimage"
)

func TestStats(t *testing.T) {
	dm := rimage.NewEmptyDepthMap(3, 3)
	dm.SetDepth(0, 0, 100)
	dm.SetDepth(1, 0, 200)
	dm.SetDepth(2, 0, 300)
	dm.SetDepth(0, 1, 10000)
	dm.SetDepth(1, 1, 400)
	dm.SetDepth(2, 1, 500)
	dm.SetDepth(0, 2, 600)
	dm.SetDepth(1, 2, 700)
	dm.SetDepth(2, 2, 20000)

	stats := Stats(dm, image.Pt(1, 1), 1)
	test.That(t, stats.Valid, test.ShouldEqual, 7)
	test.That(t, stats.Invalid, test.ShouldEqual, 2)
	test.That(t, stats.Missing, test.ShouldEqual, 0)
	test.That(t, stats.Min, test.ShouldEqual, uint16(100))
	test.That(t, stats.Max, test.ShouldEqual, uint16(700))
	test.That(t, stats.Mean, test.ShouldAlmostEqual, 400)
	test.That(t, stats.Median, test.ShouldEqual, 400.0)
	// sample standard deviation of 100..700 step 100
	test.That(t, stats.StdDev, test.ShouldAlmostEqual, math.Sqrt(280000.0/6), 1e-9)
}

func TestStatsAtCorner(t *testing.T) {
	dm := rimage.NewEmptyDepthMap(4, 4)
	dm.SetDepth(0, 0, 50)

	stats := Stats(dm, image.Pt(0, 0), 1)
	test.That(t, stats.Missing, test.ShouldEqual, 5)
	test.That(t, stats.Valid, test.ShouldEqual, 4)

	single := Stats(dm, image.Pt(0, 0), 0)
	test.That(t, single.Valid, test.ShouldEqual, 1)
	test.That(t, single.Mean, test.ShouldEqual, 50.0)
	test.That(t, single.StdDev, test.ShouldEqual, 0.0)
	test.That(t, single.Median, test.ShouldEqual, 50.0)
	test.That(t, single.Min, test.ShouldEqual, uint16(50))
}

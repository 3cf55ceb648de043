package inspect

import (
	"fmt"
	"image"
	"strconv"

	"go.viam.com/depthinspect/rimage"
)

// InvalidDepth is the smallest sample treated as a sensor sentinel. Reprojection to 3D
// marks missing values with 10000.
const InvalidDepth rimage.Depth = 10000

// InvalidToken is the text shown for samples at or above InvalidDepth.
const InvalidToken = "invalid"

// Formatter converts a sample into the text shown in its grid cell.
type Formatter func(d rimage.Depth) string

// CaptionFunc builds the caption drawn in the grid's top-left corner. An empty result
// draws nothing.
type CaptionFunc func(depth *rimage.DepthMap, point image.Point, radius uint) string

// IsValidDepth reports whether d is below the sentinel range.
func IsValidDepth(d rimage.Depth) bool {
	return d < InvalidDepth
}

// FormatDepth renders valid samples as decimal integers and sentinels as "invalid".
func FormatDepth(d rimage.Depth) string {
	if !IsValidDepth(d) {
		return InvalidToken
	}
	return strconv.Itoa(int(d))
}

// PositionCaption reports the inspected position as [row, col]±radius in millimeters.
func PositionCaption(_ *rimage.DepthMap, point image.Point, radius uint) string {
	return fmt.Sprintf("depth pos: [%d, %d]±%d, unit: mm", point.Y, point.X, radius)
}

// StatsCaption is PositionCaption followed by the neighborhood's mean and spread.
func StatsCaption(depth *rimage.DepthMap, point image.Point, radius uint) string {
	caption := PositionCaption(depth, point, radius)
	if !depth.HasData() {
		return caption
	}
	stats := Stats(depth, point, radius)
	if stats.Valid == 0 {
		return fmt.Sprintf("%s, no valid samples", caption)
	}
	return fmt.Sprintf("%s, mean %.1f sd %.1f", caption, stats.Mean, stats.StdDev)
}

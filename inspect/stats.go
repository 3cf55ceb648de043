package inspect

import (
	"image"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"

	"go.viam.com/depthinspect/rimage"
)

// NeighborhoodStats summarizes the samples around an inspected point.
type NeighborhoodStats struct {
	// Valid, Invalid and Missing partition the (2r+1)^2 offsets: Missing ones fall
	// outside the depth map.
	Valid   int     `json:"valid"`
	Invalid int     `json:"invalid"`
	Missing int     `json:"missing"`
	Min     uint16  `json:"min"`
	Max     uint16  `json:"max"`
	Mean    float64 `json:"mean"`
	Median  float64 `json:"median"`
	StdDev  float64 `json:"std_dev"`
}

// Stats computes NeighborhoodStats over the square of the given radius around point.
func Stats(depth *rimage.DepthMap, point image.Point, radius uint) NeighborhoodStats {
	var out NeighborhoodStats
	r := int(radius)
	values := make([]float64, 0, (2*r+1)*(2*r+1))
	for j := -r; j <= r; j++ {
		for i := -r; i <= r; i++ {
			x, y := point.X+i, point.Y+j
			if !depth.Contains(x, y) {
				out.Missing++
				continue
			}
			d := depth.GetDepth(x, y)
			if !IsValidDepth(d) {
				out.Invalid++
				continue
			}
			if len(values) == 0 || uint16(d) < out.Min {
				out.Min = uint16(d)
			}
			if uint16(d) > out.Max {
				out.Max = uint16(d)
			}
			values = append(values, float64(d))
		}
	}
	out.Valid = len(values)

	switch len(values) {
	case 0:
		return out
	case 1:
		out.Mean = values[0]
	default:
		out.Mean, out.StdDev = stat.MeanStdDev(values, nil)
	}
	// only errors on empty input
	out.Median, _ = stats.Median(values)
	return out
}

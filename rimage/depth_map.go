// Package rimage holds the depth map type and the image drawing helpers used by the
// inspector.
package rimage

import (
	"image"
	"image/color"
	"image/png"
	"math"
	"os"

	"github.com/pkg/errors"
)

// Depth is the depth at a pixel, in millimeters.
type Depth uint16

// MaxDepth is the largest depth a DepthMap can hold.
const MaxDepth = Depth(math.MaxUint16)

// DepthMap is a width x height raster of depth samples stored row major. It implements
// draw.Image with the Gray16 color model, so annotations drawn onto it overwrite samples.
type DepthMap struct {
	width  int
	height int

	data []Depth
}

// NewEmptyDepthMap returns a zeroed depth map of the given size.
func NewEmptyDepthMap(width, height int) *DepthMap {
	if width < 0 || height < 0 {
		width, height = 0, 0
	}
	return &DepthMap{
		width:  width,
		height: height,
		data:   make([]Depth, width*height),
	}
}

// HasData reports whether the map has at least one sample.
func (dm *DepthMap) HasData() bool {
	return dm != nil && dm.width > 0 && dm.height > 0 && len(dm.data) > 0
}

// Width returns the horizontal size of the map.
func (dm *DepthMap) Width() int {
	return dm.width
}

// Height returns the vertical size of the map.
func (dm *DepthMap) Height() int {
	return dm.height
}

// Bounds returns the rectangle [0, width) x [0, height).
func (dm *DepthMap) Bounds() image.Rectangle {
	return image.Rect(0, 0, dm.width, dm.height)
}

// ColorModel is Gray16.
func (dm *DepthMap) ColorModel() color.Model {
	return color.Gray16Model
}

// Contains reports whether (x, y) is a valid sample position.
func (dm *DepthMap) Contains(x, y int) bool {
	return dm != nil && x >= 0 && y >= 0 && x < dm.width && y < dm.height
}

func (dm *DepthMap) kxy(x, y int) int {
	return (y * dm.width) + x
}

// At returns the sample at (x, y) as a color.Gray16. Out of bounds positions are black.
func (dm *DepthMap) At(x, y int) color.Color {
	if !dm.Contains(x, y) {
		return color.Gray16{}
	}
	return color.Gray16{Y: uint16(dm.data[dm.kxy(x, y)])}
}

// Set stores c converted to Gray16. Out of bounds positions are ignored.
func (dm *DepthMap) Set(x, y int, c color.Color) {
	if !dm.Contains(x, y) {
		return
	}
	gray, _ := color.Gray16Model.Convert(c).(color.Gray16)
	dm.data[dm.kxy(x, y)] = Depth(gray.Y)
}

// GetDepth returns the sample at (x, y). The position must be in bounds.
func (dm *DepthMap) GetDepth(x, y int) Depth {
	return dm.data[dm.kxy(x, y)]
}

// Get returns the sample at p. The position must be in bounds.
func (dm *DepthMap) Get(p image.Point) Depth {
	return dm.GetDepth(p.X, p.Y)
}

// SetDepth stores a raw sample. The position must be in bounds.
func (dm *DepthMap) SetDepth(x, y int, val Depth) {
	dm.data[dm.kxy(x, y)] = val
}

// Clone returns a deep copy.
func (dm *DepthMap) Clone() *DepthMap {
	data := make([]Depth, len(dm.data))
	copy(data, dm.data)
	return &DepthMap{width: dm.width, height: dm.height, data: data}
}

// MinMax returns the smallest and largest non-zero samples that are below limit.
// Samples at or above limit are treated as missing, as are zeros.
func (dm *DepthMap) MinMax(limit Depth) (Depth, Depth) {
	min := MaxDepth
	max := Depth(0)

	for _, z := range dm.data {
		if z == 0 || z >= limit {
			continue
		}
		if z < min {
			min = z
		}
		if z > max {
			max = z
		}
	}

	return min, max
}

// ToGray16Picture copies the map into a standard library 16-bit gray image.
func (dm *DepthMap) ToGray16Picture() *image.Gray16 {
	img := image.NewGray16(dm.Bounds())
	for y := 0; y < dm.height; y++ {
		for x := 0; x < dm.width; x++ {
			img.SetGray16(x, y, color.Gray16{Y: uint16(dm.GetDepth(x, y))})
		}
	}
	return img
}

// ToPrettyPicture colors each sample by hue between the map's range, clamped to
// [hardMin, hardMax]. Zero samples and samples at or above hardMax stay black.
func (dm *DepthMap) ToPrettyPicture(hardMin, hardMax Depth) *image.RGBA {
	min, max := dm.MinMax(hardMax)
	if min < hardMin {
		min = hardMin
	}
	if max > hardMax {
		max = hardMax
	}

	img := image.NewRGBA(dm.Bounds())

	span := float64(max) - float64(min)
	if span <= 0 {
		span = 1
	}

	for y := 0; y < dm.height; y++ {
		for x := 0; x < dm.width; x++ {
			z := dm.GetDepth(x, y)
			if z == 0 || z >= hardMax {
				img.Set(x, y, Black)
				continue
			}

			if z < min {
				z = min
			}
			if z > max {
				z = max
			}

			ratio := (float64(z) - float64(min)) / span

			hue := 30 + (200.0 * ratio)
			img.Set(x, y, NewColorFromHSV(hue, 1.0, 1.0))
		}
	}

	return img
}

// ConvertImageToDepthMap takes an image and figures out if it's already a DepthMap
// or if it can be converted into one.
func ConvertImageToDepthMap(img image.Image) (*DepthMap, error) {
	switch ii := img.(type) {
	case *DepthMap:
		return ii, nil
	case *image.Gray16:
		b := ii.Bounds()
		dm := NewEmptyDepthMap(b.Dx(), b.Dy())
		for y := 0; y < dm.height; y++ {
			for x := 0; x < dm.width; x++ {
				dm.SetDepth(x, y, Depth(ii.Gray16At(b.Min.X+x, b.Min.Y+y).Y))
			}
		}
		return dm, nil
	default:
		return nil, errors.Errorf("don't know how to make DepthMap from %T", img)
	}
}

// ReadDepthMapFromFile decodes a 16-bit grayscale PNG into a DepthMap.
func ReadDepthMapFromFile(fn string) (*DepthMap, error) {
	//nolint:gosec
	f, err := os.Open(fn)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = f.Close()
	}()

	img, err := png.Decode(f)
	if err != nil {
		return nil, errors.Wrapf(err, "decoding depth png %q", fn)
	}
	return ConvertImageToDepthMap(img)
}

// WriteDepthMapToFile encodes the map as a 16-bit grayscale PNG.
func WriteDepthMapToFile(dm *DepthMap, fn string) (err error) {
	//nolint:gosec
	f, err := os.Create(fn)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := f.Close(); err == nil {
			err = closeErr
		}
	}()
	return png.Encode(f, dm.ToGray16Picture())
}

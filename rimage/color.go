package rimage

import (
	"image/color"

	"github.com/lucasb-eyer/go-colorful"
)

// Colors used by the overlays.
var (
	Black   = color.RGBA{A: 255}
	White   = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	Red     = color.RGBA{R: 255, A: 255}
	Green   = color.RGBA{G: 255, A: 255}
	Blue    = color.RGBA{B: 255, A: 255}
	Magenta = color.RGBA{R: 255, B: 255, A: 255}
)

// NewColor returns an opaque color from 8-bit components.
func NewColor(r, g, b uint8) color.RGBA {
	return color.RGBA{R: r, G: g, B: b, A: 255}
}

// NewColorFromHSV converts hue (degrees), saturation and value to an opaque color.
func NewColorFromHSV(h, s, v float64) color.RGBA {
	r, g, b := colorful.Hsv(h, s, v).Clamped().RGB255()
	return NewColor(r, g, b)
}

// SameColor reports whether two colors have identical RGBA components.
func SameColor(a, b color.Color) bool {
	ar, ag, ab, aa := a.RGBA()
	br, bg, bb, ba := b.RGBA()
	return ar == br && ag == bg && ab == bb && aa == ba
}

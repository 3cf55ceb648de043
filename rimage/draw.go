package rimage

import (
	"image"
	"image/color"
	"image/draw"
	"sync"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
)

var (
	ttf *truetype.Font

	facesMu sync.Mutex
	faces   = map[float64]font.Face{}
)

// init sets up the fonts we want to use.
func init() {
	var err error
	ttf, err = truetype.Parse(goregular.TTF)
	if err != nil {
		panic(err)
	}
}

// Font returns the font we use for drawing.
func Font() *truetype.Font {
	return ttf
}

// FontFace returns a face of Font at the given point size. Faces are cached per size.
func FontFace(size float64) font.Face {
	facesMu.Lock()
	defer facesMu.Unlock()
	if face, ok := faces[size]; ok {
		return face
	}
	face := truetype.NewFace(Font(), &truetype.Options{Size: size})
	faces[size] = face
	return face
}

// DrawString writes a string to the given context with its top-left corner at p.
func DrawString(dc *gg.Context, text string, p image.Point, c color.Color, size float64) {
	dc.SetFontFace(FontFace(size))
	dc.SetColor(c)
	dc.DrawStringWrapped(text, float64(p.X), float64(p.Y), 0, 0, float64(dc.Width()), 1, 0)
}

// DrawStringCentered writes a single line of text centered on center.
func DrawStringCentered(dc *gg.Context, text string, center image.Point, c color.Color, size float64) {
	dc.SetFontFace(FontFace(size))
	dc.SetColor(c)
	dc.DrawStringAnchored(text, float64(center.X), float64(center.Y), 0.5, 0.5)
}

// DrawRectangleEmpty draws the one pixel outline of r onto dst, including both the Min
// and Max corners. Pixels outside dst's bounds are skipped. Unlike a gg stroke, no
// anti-aliasing is applied, so every touched pixel gets exactly c.
func DrawRectangleEmpty(dst draw.Image, r image.Rectangle, c color.Color) {
	b := dst.Bounds()
	set := func(x, y int) {
		if (image.Point{x, y}).In(b) {
			dst.Set(x, y, c)
		}
	}
	for x := r.Min.X; x <= r.Max.X; x++ {
		set(x, r.Min.Y)
		set(x, r.Max.Y)
	}
	for y := r.Min.Y + 1; y < r.Max.Y; y++ {
		set(r.Min.X, y)
		set(r.Max.X, y)
	}
}

package inspect

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/fogleman/gg"

	"go.viam.com/depthinspect/logging"
	"go.viam.com/depthinspect/rimage"
)

const (
	// DefaultCellSize is the side of one grid cell in pixels.
	DefaultCellSize = 40
	// DefaultFontSize is the point size of cell and caption text.
	DefaultFontSize = 13.0
	captionMargin   = 5
)

// Colors used by the renderer.
var (
	GridBackground = rimage.White
	CellTextColor  = rimage.Black
	CenterColor    = rimage.Red
	CaptionColor   = rimage.Magenta
	PinnedColor    = rimage.Green
	HoverColor     = rimage.Red
)

// Cell is one laid-out grid cell.
type Cell struct {
	// Offset from the inspected point, in [-radius, radius] on both axes.
	Offset image.Point
	// Sample is the depth map position the text was read from.
	Sample image.Point
	Text   string
	Color  color.Color
	// Bounds is the cell's area on the grid canvas.
	Bounds image.Rectangle
}

// Grid is a rendered neighborhood.
type Grid struct {
	Image    *image.RGBA
	Cells    []Cell
	Caption  string
	CellSize int
}

// Cell returns the laid-out cell at the given offset. Cells whose sample fell outside
// the depth map are not laid out.
func (g *Grid) Cell(offset image.Point) (Cell, bool) {
	for _, c := range g.Cells {
		if c.Offset == offset {
			return c, true
		}
	}
	return Cell{}, false
}

// RendererOption configures a Renderer.
type RendererOption func(*Renderer)

// WithCellSize sets the side of each grid cell in pixels.
func WithCellSize(px int) RendererOption {
	return func(r *Renderer) {
		r.cellSize = px
	}
}

// WithFontSize sets the text point size.
func WithFontSize(size float64) RendererOption {
	return func(r *Renderer) {
		r.fontSize = size
	}
}

// WithFormatter replaces FormatDepth.
func WithFormatter(f Formatter) RendererOption {
	return func(r *Renderer) {
		r.formatter = f
	}
}

// WithCaption sets the caption builder. By default no caption is drawn.
func WithCaption(f CaptionFunc) RendererOption {
	return func(r *Renderer) {
		r.caption = f
	}
}

// WithLogger sets the logger.
func WithLogger(logger logging.Logger) RendererOption {
	return func(r *Renderer) {
		r.logger = logger
	}
}

// Renderer draws the neighborhood grid and the inspection rectangle. It keeps no state
// between frames.
type Renderer struct {
	cellSize  int
	fontSize  float64
	formatter Formatter
	caption   CaptionFunc
	logger    logging.Logger
}

// NewRenderer returns a renderer with the given options applied over the defaults.
func NewRenderer(opts ...RendererOption) *Renderer {
	r := &Renderer{
		cellSize:  DefaultCellSize,
		fontSize:  DefaultFontSize,
		formatter: FormatDepth,
		logger:    logging.NewBlankLogger("inspect"),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.formatter == nil {
		r.formatter = FormatDepth
	}
	return r
}

// CellSize returns the configured cell size.
func (r *Renderer) CellSize() int {
	return r.cellSize
}

// GridSide returns the side of the grid canvas for a radius.
func (r *Renderer) GridSide(radius uint) int {
	return (2*int(radius) + 1) * r.cellSize
}

// RenderGrid draws the samples around state.Point as text, one cell per offset in
// [-radius, radius] on both axes. The center cell is drawn in CenterColor and the
// caption, if any, last and on top. Cells outside the depth map are left blank.
// It returns a nil grid when the state is not visible.
func (r *Renderer) RenderGrid(depth *rimage.DepthMap, state State) (*Grid, error) {
	const op = "render grid"
	if !state.Visible {
		return nil, nil
	}
	if depth == nil {
		return nil, newPreconditionError(op, ErrNilDepthMap)
	}
	if !depth.HasData() {
		return nil, newPreconditionError(op, ErrEmptyDepthMap)
	}
	if r.cellSize <= 0 {
		return nil, newPreconditionError(op, ErrInvalidCellSize)
	}

	n := int(state.Radius)
	cs := r.cellSize
	side := r.GridSide(state.Radius)

	dc := gg.NewContext(side, side)
	dc.SetColor(GridBackground)
	dc.Clear()

	grid := &Grid{CellSize: cs}
	for i := -n; i <= n; i++ {
		x := state.Point.X + i
		if x < 0 || x >= depth.Width() {
			continue
		}
		for j := -n; j <= n; j++ {
			y := state.Point.Y + j
			if y < 0 || y >= depth.Height() {
				continue
			}

			c := CellTextColor
			if i == 0 && j == 0 {
				c = CenterColor
			}
			cell := Cell{
				Offset: image.Pt(i, j),
				Sample: image.Pt(x, y),
				Text:   r.formatter(depth.GetDepth(x, y)),
				Color:  c,
				Bounds: image.Rect((i+n)*cs, (j+n)*cs, (i+n+1)*cs, (j+n+1)*cs),
			}
			center := cell.Bounds.Min.Add(image.Pt(cs/2, cs/2))
			rimage.DrawStringCentered(dc, cell.Text, center, cell.Color, r.fontSize)
			grid.Cells = append(grid.Cells, cell)
		}
	}

	if r.caption != nil {
		grid.Caption = r.caption(depth, state.Point, state.Radius)
		if grid.Caption != "" {
			rimage.DrawString(dc, grid.Caption, image.Pt(captionMargin, captionMargin), CaptionColor, r.fontSize)
		}
	}

	//nolint:forcetypeassert
	grid.Image = dc.Image().(*image.RGBA)
	r.logger.Debugw("rendered neighborhood", "point", state.Point, "mode", state.Mode(), "cells", len(grid.Cells))
	return grid, nil
}

// AnnotationRect returns the rectangle Annotate draws: corners at the point plus and
// minus max(radius, 1)+1 on both axes, one pixel outside the inspected region.
func AnnotationRect(state State) image.Rectangle {
	half := int(state.Radius)
	if half < 1 {
		half = 1
	}
	half++
	return image.Rect(state.Point.X-half, state.Point.Y-half, state.Point.X+half, state.Point.Y+half)
}

// Annotate draws a one pixel rectangle outline around the inspected region directly
// onto dst, green when pinned and red while hovering. Pixels under the outline are
// overwritten; when dst is the depth map itself those samples are lost.
func (r *Renderer) Annotate(dst draw.Image, state State) error {
	if !state.Visible {
		return nil
	}
	if dst == nil {
		return newPreconditionError("annotate", ErrNilImage)
	}
	if dm, ok := dst.(*rimage.DepthMap); ok && dm == nil {
		return newPreconditionError("annotate", ErrNilImage)
	}

	c := HoverColor
	if state.Pinned {
		c = PinnedColor
	}
	rimage.DrawRectangleEmpty(dst, AnnotationRect(state), c)
	return nil
}

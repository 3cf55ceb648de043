// Package inspect implements the depth inspection overlay: a pointer driven region
// selector and a renderer that shows the raw depth values around the selected pixel.
package inspect

import (
	"fmt"
	"image"
	"strings"
)

// DefaultRadius is the neighborhood radius used when none is configured.
const DefaultRadius uint = 3

// PointerKind classifies pointer events delivered by the host.
type PointerKind int

const (
	// PointerOther is any event the selector does not react to.
	PointerOther PointerKind = iota
	// PointerMove is a pointer motion.
	PointerMove
	// PointerDown is a primary button press.
	PointerDown
)

func (k PointerKind) String() string {
	switch k {
	case PointerMove:
		return "move"
	case PointerDown:
		return "down"
	case PointerOther:
		return "other"
	default:
		return fmt.Sprintf("PointerKind(%d)", int(k))
	}
}

// ParsePointerKind maps "move" and "down" (case-insensitive) to their kinds. Anything
// else is PointerOther.
func ParsePointerKind(s string) PointerKind {
	switch strings.ToLower(s) {
	case "move", "mousemove":
		return PointerMove
	case "down", "mousedown":
		return PointerDown
	default:
		return PointerOther
	}
}

// Mode is the selector's interaction state.
type Mode int

const (
	// ModeHover follows the pointer.
	ModeHover Mode = iota
	// ModePinned holds the point until released by a click inside the region.
	ModePinned
)

func (m Mode) String() string {
	if m == ModePinned {
		return "pinned"
	}
	return "hover"
}

// State is a snapshot of a RegionSelector.
type State struct {
	Point   image.Point
	Radius  uint
	Visible bool
	Pinned  bool
}

// Mode returns ModePinned when the point is pinned, ModeHover otherwise.
func (s State) Mode() Mode {
	if s.Pinned {
		return ModePinned
	}
	return ModeHover
}

// InRegion reports whether (x, y) lies in the inclusive square of side 2*Radius+1
// centered on Point.
func (s State) InRegion(x, y int) bool {
	r := int(s.Radius)
	return x >= s.Point.X-r && x <= s.Point.X+r &&
		y >= s.Point.Y-r && y <= s.Point.Y+r
}

// Region returns the inspected square as a half-open rectangle.
func (s State) Region() image.Rectangle {
	r := int(s.Radius)
	return image.Rect(s.Point.X-r, s.Point.Y-r, s.Point.X+r+1, s.Point.Y+r+1)
}

// RegionSelector tracks which pixel is being inspected. It is not safe for concurrent
// use; the host delivers events on the same goroutine that renders.
type RegionSelector struct {
	state State
}

// NewRegionSelector returns a hidden, unpinned selector at (0, 0).
func NewRegionSelector(radius uint) *RegionSelector {
	return &RegionSelector{state: State{Radius: radius}}
}

// HandlePointerEvent applies one pointer event.
//
// Moves update the point unless pinned. A press pins the point at the press location,
// except that a press inside the pinned region releases the pin and leaves the point
// where it was. Any move or press makes the selector visible for good.
func (rs *RegionSelector) HandlePointerEvent(kind PointerKind, x, y int) {
	if kind != PointerMove && kind != PointerDown {
		return
	}
	rs.state.Visible = true

	switch kind {
	case PointerMove:
		if !rs.state.Pinned {
			rs.state.Point = image.Pt(x, y)
		}
	case PointerDown:
		if rs.state.Pinned && rs.state.InRegion(x, y) {
			rs.state.Pinned = false
			return
		}
		rs.state.Pinned = true
		rs.state.Point = image.Pt(x, y)
	}
}

// State returns a copy of the current state.
func (rs *RegionSelector) State() State {
	return rs.state
}

// Point returns the inspected pixel.
func (rs *RegionSelector) Point() image.Point {
	return rs.state.Point
}

// Radius returns the neighborhood radius fixed at construction.
func (rs *RegionSelector) Radius() uint {
	return rs.state.Radius
}

// Visible reports whether any move or press has been seen.
func (rs *RegionSelector) Visible() bool {
	return rs.state.Visible
}

// Pinned reports whether the point is pinned.
func (rs *RegionSelector) Pinned() bool {
	return rs.state.Pinned
}

// Mode returns the current interaction mode.
func (rs *RegionSelector) Mode() Mode {
	return rs.state.Mode()
}

package domain

import "math"

// Canvas defaults shared by the layout model and the interaction controller.
const (
	DefaultCanvasWidth  = 800.0
	DefaultCanvasHeight = 600.0

	MinScale = 0.5
	MaxScale = 2.0
	ZoomStep = 0.1

	// MinTableDimension is the floor applied on every resize so a table can
	// never shrink into an invisible shape.
	MinTableDimension = 40.0
)

// Point is a coordinate either in screen space or in canvas (world) space.
// The transform functions below convert between the two given the current
// pan offset and zoom scale.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Add returns the component-wise sum of two points.
func (p Point) Add(other Point) Point {
	return Point{X: p.X + other.X, Y: p.Y + other.Y}
}

// Sub returns the component-wise difference of two points.
func (p Point) Sub(other Point) Point {
	return Point{X: p.X - other.X, Y: p.Y - other.Y}
}

// Finite reports whether both coordinates are finite numbers.
func (p Point) Finite() bool {
	return !math.IsNaN(p.X) && !math.IsInf(p.X, 0) && !math.IsNaN(p.Y) && !math.IsInf(p.Y, 0)
}

// ScreenToCanvas converts a screen coordinate into canvas space:
// canvas = (screen - pan) / scale.
func ScreenToCanvas(screen, pan Point, scale float64) Point {
	return Point{
		X: (screen.X - pan.X) / scale,
		Y: (screen.Y - pan.Y) / scale,
	}
}

// CanvasToScreen is the inverse of ScreenToCanvas.
func CanvasToScreen(canvas, pan Point, scale float64) Point {
	return Point{
		X: canvas.X*scale + pan.X,
		Y: canvas.Y*scale + pan.Y,
	}
}

// ClampScale constrains a zoom scale to [MinScale, MaxScale].
func ClampScale(value float64) float64 {
	if math.IsNaN(value) {
		return MinScale
	}
	if value < MinScale {
		return MinScale
	}
	if value > MaxScale {
		return MaxScale
	}
	return value
}

// ScaleFromPercent maps a zoom slider percentage (50..200) into a scale.
func ScaleFromPercent(percent float64) float64 {
	return ClampScale(percent / 100)
}

// PercentFromScale maps a scale back into the slider percentage range.
func PercentFromScale(scale float64) float64 {
	return ClampScale(scale) * 100
}

// Rect is a top-left anchored rectangle in canvas units. Areas are stored
// this way; table rects are derived from their center-anchored position.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Contains reports whether the point falls inside the rectangle.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X <= r.X+r.Width && p.Y >= r.Y && p.Y <= r.Y+r.Height
}

// Center returns the rectangle midpoint.
func (r Rect) Center() Point {
	return Point{X: r.X + r.Width/2, Y: r.Y + r.Height/2}
}

// ResizeDirection identifies which edge handle drives a resize gesture.
type ResizeDirection string

const (
	ResizeNorth ResizeDirection = "n"
	ResizeSouth ResizeDirection = "s"
	ResizeEast  ResizeDirection = "e"
	ResizeWest  ResizeDirection = "w"
)

// Valid reports whether the direction is one of the four edge handles.
func (d ResizeDirection) Valid() bool {
	switch d {
	case ResizeNorth, ResizeSouth, ResizeEast, ResizeWest:
		return true
	}
	return false
}

// ResizeShape applies an edge-drag to a center-anchored shape. The edge
// opposite the handle stays stationary: the returned center is shifted just
// enough to keep it in place. Requested dimensions are floored at
// MinTableDimension; the floor wins over the pointer delta.
//
// For circles and squares the single width drives both axes, so a
// north/south drag adjusts the width with the vertical edge anchored.
func ResizeShape(center Point, shape Shape, dir ResizeDirection, requestedWidth, requestedHeight float64) (Point, Shape) {
	width := shape.Width
	height := shape.EffectiveHeight()

	switch dir {
	case ResizeEast:
		left := center.X - width/2
		width = clampDimension(requestedWidth)
		center.X = left + width/2
	case ResizeWest:
		right := center.X + width/2
		width = clampDimension(requestedWidth)
		center.X = right - width/2
	case ResizeSouth:
		top := center.Y - height/2
		height = clampDimension(requestedHeight)
		center.Y = top + height/2
	case ResizeNorth:
		bottom := center.Y + height/2
		height = clampDimension(requestedHeight)
		center.Y = bottom - height/2
	}

	if shape.Kind == ShapeRectangle {
		shape.Width = width
		shape.Height = height
		return center, shape
	}

	// Circle/square: a vertical drag resizes the uniform width.
	switch dir {
	case ResizeNorth, ResizeSouth:
		shape.Width = height
	default:
		shape.Width = width
	}
	shape.Height = 0
	return center, shape
}

func clampDimension(value float64) float64 {
	if math.IsNaN(value) || value < MinTableDimension {
		return MinTableDimension
	}
	return value
}

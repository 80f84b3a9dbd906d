package domain

// Layout holds the persisted floor-plan settings shared by every operator
// session. Pan and zoom are deliberately absent: they are per-session
// viewport state, never persisted.
type Layout struct {
	CanvasWidth  float64 `json:"canvasWidth"`
	CanvasHeight float64 `json:"canvasHeight"`
	ShowGrid     bool    `json:"showGrid"`
	Locked       bool    `json:"locked"`
	Background   string  `json:"background,omitempty"`
}

// DefaultLayout returns the nominal 800x600 canvas with the grid on.
func DefaultLayout() Layout {
	return Layout{
		CanvasWidth:  DefaultCanvasWidth,
		CanvasHeight: DefaultCanvasHeight,
		ShowGrid:     true,
	}
}

// Viewport is the ephemeral pan/zoom state of one connected session.
type Viewport struct {
	Pan   Point   `json:"pan"`
	Scale float64 `json:"scale"`
}

// DefaultViewport starts unpanned at 100% zoom.
func DefaultViewport() Viewport {
	return Viewport{Scale: 1.0}
}

// ZoomIn raises the scale by one step, clamped. Pan is untouched: changing
// scale never recenters the viewport.
func (v Viewport) ZoomIn() Viewport {
	v.Scale = ClampScale(v.Scale + ZoomStep)
	return v
}

// ZoomOut lowers the scale by one step, clamped.
func (v Viewport) ZoomOut() Viewport {
	v.Scale = ClampScale(v.Scale - ZoomStep)
	return v
}

// WithScale sets an absolute scale, clamped.
func (v Viewport) WithScale(scale float64) Viewport {
	v.Scale = ClampScale(scale)
	return v
}

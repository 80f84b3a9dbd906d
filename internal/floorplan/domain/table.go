package domain

import (
	"fmt"
	"math"
)

// ShapeKind enumerates the drawable table footprints.
type ShapeKind string

const (
	ShapeCircle    ShapeKind = "circle"
	ShapeSquare    ShapeKind = "square"
	ShapeRectangle ShapeKind = "rectangle"
)

// Valid reports whether the kind is one of the supported footprints.
func (k ShapeKind) Valid() bool {
	switch k {
	case ShapeCircle, ShapeSquare, ShapeRectangle:
		return true
	}
	return false
}

// Shape describes a table footprint. Height is meaningful only for
// rectangles; circles and squares are drawn as Width x Width boxes.
type Shape struct {
	Kind   ShapeKind `json:"kind"`
	Width  float64   `json:"width"`
	Height float64   `json:"height,omitempty"`
}

// EffectiveHeight returns Height for rectangles and Width otherwise.
func (s Shape) EffectiveHeight() float64 {
	if s.Kind == ShapeRectangle {
		return s.Height
	}
	return s.Width
}

// Table is a seating resource placed on the floor-plan canvas. Position is
// the shape's center point in canvas units. Area references the containing
// area by name; membership is resolved by lookup, not by a back-reference.
type Table struct {
	ID                   int64       `json:"id"`
	Number               int         `json:"number"`
	Name                 string      `json:"name"`
	Capacity             int         `json:"capacity"`
	Status               TableStatus `json:"status"`
	Position             Point       `json:"position"`
	Shape                Shape       `json:"shape"`
	Area                 string      `json:"area,omitempty"`
	CurrentOrderID       string      `json:"currentOrderId,omitempty"`
	CurrentReservationID string      `json:"currentReservationId,omitempty"`
	Active               bool        `json:"active"`
}

// Bounds derives the top-left anchored rectangle used for rendering and
// hit-testing from the center-anchored position.
func (t Table) Bounds() Rect {
	height := t.Shape.EffectiveHeight()
	return Rect{
		X:      t.Position.X - t.Shape.Width/2,
		Y:      t.Position.Y - height/2,
		Width:  t.Shape.Width,
		Height: height,
	}
}

// Validate checks the structural invariants of a table.
func (t Table) Validate() error {
	if t.Capacity <= 0 {
		return fmt.Errorf("%w: capacity must be positive", ErrValidation)
	}
	if !t.Position.Finite() || t.Position.X < 0 || t.Position.Y < 0 {
		return fmt.Errorf("%w: position must be finite and non-negative", ErrValidation)
	}
	if !t.Shape.Kind.Valid() {
		return fmt.Errorf("%w: unknown shape kind %q", ErrValidation, t.Shape.Kind)
	}
	if math.IsNaN(t.Shape.Width) || math.IsInf(t.Shape.Width, 0) || t.Shape.Width < 0 {
		return fmt.Errorf("%w: shape width must be a finite non-negative number", ErrValidation)
	}
	if t.Shape.Kind == ShapeRectangle {
		if math.IsNaN(t.Shape.Height) || math.IsInf(t.Shape.Height, 0) || t.Shape.Height <= 0 {
			return fmt.Errorf("%w: rectangle requires a positive height", ErrValidation)
		}
	} else if t.Shape.Height != 0 {
		return fmt.Errorf("%w: height is only valid for rectangles", ErrValidation)
	}
	if !t.Status.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrValidation, t.Status)
	}
	return nil
}

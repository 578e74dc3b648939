// Package viewport maps between screen space and world space.
//
//	world = (screen - pan) / zoom
package viewport

import "github.com/aretw0/flowbuilder/pkg/domain"

const (
	MinZoom = 0.1
	MaxZoom = 2.0

	// WheelStep is the zoom change per wheel notch.
	WheelStep = 0.1
)

// Viewport holds the pan/zoom transform.
// The zero value is not valid; use New.
type Viewport struct {
	Zoom float64      `json:"zoom"`
	Pan  domain.Point `json:"pan"`
}

// New returns the identity viewport.
func New() Viewport {
	return Viewport{Zoom: 1}
}

// ToWorld converts a screen-space point to world space.
func (v Viewport) ToWorld(screen domain.Point) domain.Point {
	return screen.Sub(v.Pan).Scale(1 / v.Zoom)
}

// ToScreen converts a world-space point to screen space.
func (v Viewport) ToScreen(world domain.Point) domain.Point {
	return world.Scale(v.Zoom).Add(v.Pan)
}

// ZoomBy changes the zoom by delta, clamped to [MinZoom, MaxZoom].
// The pan offset is unchanged, so the zoom originates at the screen origin.
func (v Viewport) ZoomBy(delta float64) Viewport {
	v.Zoom = Clamp(v.Zoom + delta)
	return v
}

// ZoomAt changes the zoom by delta while keeping the world point under pointer fixed on screen.
func (v Viewport) ZoomAt(delta float64, pointer domain.Point) Viewport {
	anchor := v.ToWorld(pointer)
	v.Zoom = Clamp(v.Zoom + delta)
	v.Pan = pointer.Sub(anchor.Scale(v.Zoom))
	return v
}

// Wheel applies a wheel event: a positive deltaY (scrolling down) zooms out.
func (v Viewport) Wheel(deltaY float64, pointer domain.Point) Viewport {
	step := WheelStep
	if deltaY > 0 {
		step = -WheelStep
	}
	return v.ZoomAt(step, pointer)
}

// PanBy moves the viewport by a screen-space delta. Pan is not scaled by zoom.
func (v Viewport) PanBy(delta domain.Point) Viewport {
	v.Pan = v.Pan.Add(delta)
	return v
}

// Reset restores zoom 1.0 and the origin pan.
func (v Viewport) Reset() Viewport {
	return New()
}

// Clamp bounds a zoom level to [MinZoom, MaxZoom].
func Clamp(z float64) float64 {
	if z < MinZoom {
		return MinZoom
	}
	if z > MaxZoom {
		return MaxZoom
	}
	return z
}

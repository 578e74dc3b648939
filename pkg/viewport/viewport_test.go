package viewport_test

import (
	"testing"

	"github.com/aretw0/flowbuilder/pkg/domain"
	"github.com/aretw0/flowbuilder/pkg/viewport"
	"github.com/stretchr/testify/assert"
)

func TestZoomClamp(t *testing.T) {
	v := viewport.New()
	for i := 0; i < 100; i++ {
		v = v.ZoomBy(0.25)
		assert.LessOrEqual(t, v.Zoom, viewport.MaxZoom)
	}
	assert.Equal(t, viewport.MaxZoom, v.Zoom)

	for i := 0; i < 100; i++ {
		v = v.ZoomAt(-0.25, domain.Point{X: 300, Y: 200})
		assert.GreaterOrEqual(t, v.Zoom, viewport.MinZoom)
	}
	assert.Equal(t, viewport.MinZoom, v.Zoom)
}

func TestZoomAt_KeepsPointerAnchor(t *testing.T) {
	pointers := []domain.Point{{X: 0, Y: 0}, {X: 412, Y: 97}, {X: -30, Y: 800}}
	deltas := []float64{0.1, -0.1, 0.5, -0.7, 1.5}

	for _, p := range pointers {
		v := viewport.New().PanBy(domain.Point{X: 37, Y: -12})
		for _, d := range deltas {
			before := v.ToWorld(p)
			v = v.ZoomAt(d, p)
			after := v.ToWorld(p)
			assert.InDelta(t, before.X, after.X, 1e-9)
			assert.InDelta(t, before.Y, after.Y, 1e-9)
		}
	}
}

func TestWheel_Direction(t *testing.T) {
	v := viewport.New()
	assert.Greater(t, v.Wheel(-120, domain.Point{}).Zoom, 1.0, "scrolling up zooms in")
	assert.Less(t, v.Wheel(120, domain.Point{}).Zoom, 1.0, "scrolling down zooms out")
}

func TestPanBy_IgnoresZoom(t *testing.T) {
	v := viewport.New().ZoomBy(0.5)
	v = v.PanBy(domain.Point{X: 10, Y: 20})
	assert.Equal(t, domain.Point{X: 10, Y: 20}, v.Pan)
}

func TestRoundTrip(t *testing.T) {
	v := viewport.New().ZoomBy(0.3).PanBy(domain.Point{X: 15, Y: 40})
	w := domain.Point{X: 123, Y: 456}
	s := v.ToScreen(w)
	back := v.ToWorld(s)
	assert.InDelta(t, w.X, back.X, 1e-9)
	assert.InDelta(t, w.Y, back.Y, 1e-9)
}

func TestReset(t *testing.T) {
	v := viewport.New().ZoomBy(0.7).PanBy(domain.Point{X: 5, Y: 5}).Reset()
	assert.Equal(t, viewport.New(), v)
}

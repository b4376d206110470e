package geom

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRect_ContainsAndOverlaps(t *testing.T) {
	r := Rect{X: 10, Y: 10, W: 16, H: 16}
	assert.True(t, r.Contains(Point{10, 10}), "corner is inclusive")
	assert.True(t, r.Contains(Point{26, 26}))
	assert.False(t, r.Contains(Point{27, 12}))

	assert.True(t, r.Overlaps(Rect{X: 20, Y: 20, W: 16, H: 16}))
	// Touching edges do not overlap.
	assert.False(t, r.Overlaps(Rect{X: 26, Y: 10, W: 4, H: 4}))
}

func TestCircle_Contains(t *testing.T) {
	c := Circle{Center: Point{0, 0}, Radius: 80}
	assert.True(t, c.Contains(Point{80, 0}))
	assert.True(t, c.Contains(Point{30, 40}))
	assert.False(t, c.Contains(Point{60, 60}))
}

func TestPoint_WithLength(t *testing.T) {
	v := Point{3, 4}.WithLength(10)
	assert.InDelta(t, 6, v.X, 1e-9)
	assert.InDelta(t, 8, v.Y, 1e-9)
	assert.Equal(t, Point{}, Point{}.WithLength(5))
}

func TestPoint_LerpExtrapolates(t *testing.T) {
	p := Point{0, 0}.Lerp(Point{10, 0}, 2)
	assert.Equal(t, Point{20, 0}, p)
}

func TestPoint_AngleDeg(t *testing.T) {
	assert.InDelta(t, 90, Point{0, 1}.AngleDeg(), 1e-9)
	assert.InDelta(t, 270, Point{0, -1}.AngleDeg(), 1e-9)
	assert.InDelta(t, 45, Point{1, 1}.AngleDeg(), 1e-9)
	assert.False(t, math.IsNaN(Point{}.AngleDeg()))
}

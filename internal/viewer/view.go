package viewer

import (
	"math"

	"github.com/Garsondee/Station-Sense/internal/geom"
)

// view maps world space (y up) onto the screen (y down). The camera rect is
// scaled uniformly to fit the playfield and anchored at (offX, offY).
type view struct {
	cam        geom.Rect
	scale      float64
	offX, offY float64
}

func newView(cam geom.Rect, fieldW, fieldH, offX, offY float64) view {
	scale := 1.0
	if cam.W > 0 && cam.H > 0 {
		scale = math.Min(fieldW/cam.W, fieldH/cam.H)
	}
	return view{cam: cam, scale: scale, offX: offX, offY: offY}
}

// toScreen converts a world point to screen pixels.
func (v view) toScreen(p geom.Point) (float32, float32) {
	x := v.offX + (p.X-v.cam.X)*v.scale
	y := v.offY + (v.cam.Y+v.cam.H-p.Y)*v.scale
	return float32(x), float32(y)
}

// toWorld converts screen pixels to a world point.
func (v view) toWorld(sx, sy int) geom.Point {
	return geom.Point{
		X: v.cam.X + (float64(sx)-v.offX)/v.scale,
		Y: v.cam.Y + v.cam.H - (float64(sy)-v.offY)/v.scale,
	}
}

// rect returns the screen-space top-left corner and size of r.
func (v view) rect(r geom.Rect) (x, y, w, h float32) {
	x, y = v.toScreen(geom.Point{X: r.X, Y: r.Y + r.H})
	return x, y, float32(r.W * v.scale), float32(r.H * v.scale)
}

// size returns the on-screen extent of the camera.
func (v view) size() (float32, float32) {
	return float32(v.cam.W * v.scale), float32(v.cam.H * v.scale)
}

package viewer

import (
	"github.com/hajimehoshi/ebiten/v2"

	"github.com/Garsondee/Station-Sense/internal/geom"
	"github.com/Garsondee/Station-Sense/internal/sim"
)

// keyTracker turns level key state into edge-triggered presses.
type keyTracker struct {
	isDown func(ebiten.Key) bool
	prev   map[ebiten.Key]bool
	cur    map[ebiten.Key]bool
}

func newKeyTracker(isDown func(ebiten.Key) bool) *keyTracker {
	return &keyTracker{
		isDown: isDown,
		prev:   make(map[ebiten.Key]bool),
		cur:    make(map[ebiten.Key]bool),
	}
}

// down reports whether key is held.
func (k *keyTracker) down(key ebiten.Key) bool {
	d := k.isDown(key)
	k.cur[key] = d
	return d
}

// pressed reports whether key went down since the previous frame.
func (k *keyTracker) pressed(key ebiten.Key) bool {
	return k.down(key) && !k.prev[key]
}

// endFrame rolls the current key state into the previous one.
func (k *keyTracker) endFrame() {
	k.prev, k.cur = k.cur, make(map[ebiten.Key]bool, len(k.cur))
}

// heldIntent builds the level-triggered part of an intent: movement and
// charge. Interact and Retreat are edge-triggered by the caller.
func heldIntent(k *keyTracker, mouseDown bool, aim geom.Point) sim.Intent {
	return sim.Intent{
		Up:     k.down(ebiten.KeyW) || k.down(ebiten.KeyArrowUp),
		Down:   k.down(ebiten.KeyS) || k.down(ebiten.KeyArrowDown),
		Left:   k.down(ebiten.KeyA) || k.down(ebiten.KeyArrowLeft),
		Right:  k.down(ebiten.KeyD) || k.down(ebiten.KeyArrowRight),
		Charge: mouseDown || k.down(ebiten.KeySpace),
		Aim:    aim,
	}
}

var simSpeeds = []float64{0, 0.5, 1, 2, 4}

// slower returns the next lower preset speed.
func slower(cur float64) float64 {
	for i := len(simSpeeds) - 1; i > 0; i-- {
		if simSpeeds[i] >= cur && simSpeeds[i-1] < cur {
			return simSpeeds[i-1]
		}
	}
	return simSpeeds[0]
}

// faster returns the next higher preset speed.
func faster(cur float64) float64 {
	for _, s := range simSpeeds {
		if s > cur {
			return s
		}
	}
	return simSpeeds[len(simSpeeds)-1]
}

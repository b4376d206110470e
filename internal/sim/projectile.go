package sim

import (
	"fmt"

	"github.com/Garsondee/Station-Sense/internal/geom"
)

// Projectile is a shot fired by an exposed infiltrator. It flies in a
// straight line and is removed on the first hit.
type Projectile struct {
	id     EntityID
	pos    geom.Point
	vel    geom.Point
	size   float64
	origin EntityID
	debuff Debuff
	label  string
}

func (p *Projectile) ID() EntityID         { return p.id }
func (p *Projectile) Label() string        { return p.label }
func (p *Projectile) Position() geom.Point { return p.pos }
func (p *Projectile) Velocity() geom.Point { return p.vel }
func (p *Projectile) Debuff() Debuff       { return p.debuff }
func (p *Projectile) Bounds() geom.Rect {
	return geom.Rect{X: p.pos.X, Y: p.pos.Y, W: p.size, H: p.size}
}

// Update moves the projectile and resolves its first collision. Any live
// entity other than itself and its shooter stops it; only the player takes
// damage. A solid tile stops it too.
func (p *Projectile) Update(w *World) {
	p.pos = p.pos.Add(p.vel)
	bounds := p.Bounds()
	for _, e := range w.entities.Live() {
		id := e.ID()
		if id == p.id || id == p.origin || !e.Bounds().Overlaps(bounds) {
			continue
		}
		if e == Entity(w.player) {
			w.hitPlayer(p.debuff, p.label)
		}
		w.entities.Remove(p)
		return
	}
	if w.solidAt(bounds.Center()) {
		w.entities.Remove(p)
	}
}

// fireProjectile launches a projectile from n toward the player.
func (w *World) fireProjectile(n *NPC) {
	vel := w.player.pos.Sub(n.pos).WithLength(w.cfg.Infiltrator.ProjectileSpeed)
	w.nextID++
	p := &Projectile{
		id:     w.nextID,
		pos:    n.Center(),
		vel:    vel,
		size:   w.cfg.ProjectileSize,
		origin: n.id,
		debuff: Debuff(w.rng.Intn(3)),
	}
	p.label = fmt.Sprintf("%s#%d", n.label, p.id)
	w.entities.Add(p)
	n.log.WithField("debuff", p.debuff.String()).Debug("fired")
	w.simLog.Add(w.tick, n.label, n.Kind().String(), "combat", "fire", p.debuff.String(), 0)
}

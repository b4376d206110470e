package sim

import (
	"fmt"
	"math"

	"github.com/sirupsen/logrus"

	"github.com/Garsondee/Station-Sense/internal/content"
	"github.com/Garsondee/Station-Sense/internal/geom"
	"github.com/Garsondee/Station-Sense/internal/schedule"
)

// Intent is one tick of player input. Aim is in world coordinates.
type Intent struct {
	Up, Down, Left, Right bool
	Charge                bool
	Interact              bool
	Retreat               bool
	Aim                   geom.Point
}

// Player is the user-controlled agent. It charges and fires the exposure
// ray and takes debuffs from infiltrator projectiles.
type Player struct {
	id       EntityID
	pos      geom.Point
	vel      geom.Point
	rotation float64
	size     float64
	health   float64
	charge   float64

	confused bool
	slowed   bool
	blinded  bool

	ray        geom.Point
	rayVisible bool

	tasks *Tasks
	log   logrus.FieldLogger
}

func newPlayer(w *World, pos geom.Point) *Player {
	w.nextID++
	return &Player{
		id:     w.nextID,
		pos:    pos,
		size:   w.cfg.EntitySize,
		health: 1,
		tasks:  schedule.New[Effect](),
		log:    w.log.WithFields(logrus.Fields{"agent": "P", "kind": "player"}),
	}
}

func (p *Player) ID() EntityID         { return p.id }
func (p *Player) Label() string        { return "P" }
func (p *Player) Position() geom.Point { return p.pos }
func (p *Player) Velocity() geom.Point { return p.vel }
func (p *Player) Rotation() float64    { return p.rotation }
func (p *Player) Health() float64      { return p.health }
func (p *Player) Charge() float64      { return p.charge }
func (p *Player) Confused() bool       { return p.confused }
func (p *Player) Slowed() bool         { return p.slowed }
func (p *Player) Blinded() bool        { return p.blinded }
func (p *Player) Center() geom.Point   { return p.Bounds().Center() }
func (p *Player) Bounds() geom.Rect {
	return geom.Rect{X: p.pos.X, Y: p.pos.Y, W: p.size, H: p.size}
}

// Ray returns the end point of the last discharge and whether it is still
// drawn.
func (p *Player) Ray() (geom.Point, bool) { return p.ray, p.rayVisible }

// Update applies one tick of the world's current intent.
func (p *Player) Update(w *World) {
	p.tasks.Advance(w.dt, func(_ schedule.Handle, e Effect) { p.handleEffect(e) })
	if w.cfg.DemoMode {
		return
	}
	in := w.intent
	cfg := w.cfg.Player

	if in.Retreat || p.health <= 0 {
		p.retreat(w)
	}
	if w.medbay.Contains(p.pos) && p.health < 1 {
		p.health = min(p.health+cfg.HealRate, 1)
	}

	speedMod := min(p.charge*cfg.Speed*2, cfg.Speed)
	if p.slowed {
		p.vel = p.vel.Scale(0.5)
	}
	if p.confused {
		p.vel = p.vel.Scale(-1)
	}
	accel := cfg.Speed - speedMod
	if in.Up {
		p.vel.Y = min(p.vel.Y+accel, cfg.MaxSpeed)
	}
	if in.Down {
		p.vel.Y = max(p.vel.Y-accel, -cfg.MaxSpeed)
	}
	if in.Left {
		p.vel.X = max(p.vel.X-accel, -cfg.MaxSpeed)
	}
	if in.Right {
		p.vel.X = min(p.vel.X+accel, cfg.MaxSpeed)
	}

	switch {
	case in.Charge && !p.rayVisible:
		p.charge = min(p.charge+cfg.ChargeRate, 1)
	case p.charge > cfg.DischargeThreshold:
		p.discharge(w, in.Aim)
	default:
		p.charge = max(p.charge-cfg.ChargeRate, 0)
	}

	if in.Interact {
		p.interact(w)
	}

	c := p.Center()
	p.rotation = math.Atan2(in.Aim.Y-c.Y, in.Aim.X-c.X)*180/math.Pi - 90

	if p.confused {
		p.vel = p.vel.Scale(-1)
	}
	p.move(w)
}

func (p *Player) handleEffect(e Effect) {
	switch e.Kind {
	case EffectClearConfused:
		p.confused = false
	case EffectClearSlowed:
		p.slowed = false
	case EffectClearBlinded:
		p.blinded = false
	case EffectRayFade:
		p.rayVisible = false
	}
}

// retreat sends the player to the medbay and clears movement debuffs.
func (p *Player) retreat(w *World) {
	p.pos = w.medbaySpawn
	p.vel = geom.Point{}
	p.confused = false
	p.slowed = false
	p.rayVisible = false
	p.log.WithField("health", p.health).Info("retreated to medbay")
	w.simLog.Add(w.tick, "P", "player", "player", "retreat", fmt.Sprintf("health %.2f", p.health), p.health)
}

// discharge fires the ray toward aim, exposing the first agent it touches
// and startling every agent that hears the impact.
func (p *Player) discharge(w *World, aim geom.Point) {
	p.charge = 0
	hit := p.castRay(w, aim)
	p.ray = hit
	p.rayVisible = true
	p.tasks.Schedule(w.cfg.Player.RayTime, 0, Effect{Kind: EffectRayFade})

	ear := geom.Circle{Center: hit, Radius: w.cfg.NPC.EarStrength}
	for _, e := range w.entities.Live() {
		n, ok := e.(*NPC)
		if !ok || n.Exposed() || !ear.Contains(n.pos) {
			continue
		}
		n.behavior.OnStartled(w, n)
	}
	p.log.WithField("hit", hit).Debug("ray discharged")
	w.simLog.Add(w.tick, "P", "player", "ray", "discharge", fmt.Sprintf("(%.0f,%.0f)", hit.X, hit.Y), 0)
}

// castRay marches from the player's centre toward aim and stops at the first
// non-player entity or solid tile. The march continues past aim up to the
// configured reach.
func (p *Player) castRay(w *World, aim geom.Point) geom.Point {
	origin := p.Center()
	step := w.cfg.Player.RayStep
	out := origin
	for alpha := step; alpha < w.cfg.Player.RayReach; alpha += step {
		out = origin.Lerp(aim, alpha)
		for _, e := range w.entities.Live() {
			if e == Entity(p) || !e.Bounds().Contains(out) {
				continue
			}
			if n, ok := e.(*NPC); ok {
				n.behavior.OnExposed(w, n)
			}
			return out
		}
		if w.solidAt(out) {
			return out
		}
	}
	return out
}

// interact teleports the player when standing on a linked teleporter.
func (p *Player) interact(w *World) {
	for _, tp := range w.level.ObjectsOfType(content.ObjectTeleporter) {
		if !tp.Rect().Overlaps(p.Bounds()) {
			continue
		}
		dest, ok := w.level.Object(tp.Linked)
		if !ok {
			continue
		}
		p.vel = geom.Point{}
		p.pos = dest.Rect().Min()
		p.log.WithFields(logrus.Fields{"from": tp.Name, "to": dest.Name}).Info("teleported")
		w.simLog.Add(w.tick, "P", "player", "player", "teleport", tp.Name+" → "+dest.Name, 0)
		return
	}
}

// collisionInset keeps the collision probes just inside the sprite corners.
const collisionInset = 2

// move applies velocity against the collision layer, shrinking each axis of
// velocity toward zero until no corner probe would enter a solid tile, then
// applies friction.
func (p *Player) move(w *World) {
	const shrink = 0.1
	probes := []geom.Point{
		{X: collisionInset, Y: collisionInset},
		{X: p.size - collisionInset, Y: collisionInset},
		{X: collisionInset, Y: p.size - collisionInset},
		{X: p.size - collisionInset, Y: p.size - collisionInset},
	}
	for _, off := range probes {
		sx := geom.Sign(p.vel.X)
		for p.vel.X != 0 && w.solidAt(geom.Point{X: p.pos.X + p.vel.X + off.X, Y: p.pos.Y + off.Y}) {
			p.vel.X -= sx * shrink
			if geom.Sign(p.vel.X) != sx {
				p.vel.X = 0
			}
		}
		sy := geom.Sign(p.vel.Y)
		for p.vel.Y != 0 && w.solidAt(geom.Point{X: p.pos.X + off.X, Y: p.pos.Y + p.vel.Y + off.Y}) {
			p.vel.Y -= sy * shrink
			if geom.Sign(p.vel.Y) != sy {
				p.vel.Y = 0
			}
		}
	}
	p.pos = p.pos.Add(p.vel)
	p.vel = p.vel.Scale(w.cfg.Player.Friction)
}

// hitPlayer applies a projectile's damage and debuff.
func (w *World) hitPlayer(d Debuff, from string) {
	p := w.player
	cfg := w.cfg.Player
	p.health -= w.cfg.Infiltrator.ProjectileDamage
	switch d {
	case DebuffConfuse:
		p.confused = true
		p.tasks.Schedule(cfg.DebuffTime, 0, Effect{Kind: EffectClearConfused})
	case DebuffSlow:
		p.slowed = true
		p.tasks.Schedule(cfg.DebuffTime, 0, Effect{Kind: EffectClearSlowed})
	case DebuffBlind:
		p.blinded = true
		p.tasks.Schedule(cfg.BlindTime, 0, Effect{Kind: EffectClearBlinded})
	}
	w.playerHits++
	p.log.WithFields(logrus.Fields{"debuff": d.String(), "health": p.health, "from": from}).Info("hit by projectile")
	w.simLog.Add(w.tick, "P", "player", "player", "hit", d.String()+" from "+from, p.health)
}

package sim

import (
	"fmt"

	"github.com/Garsondee/Station-Sense/internal/geom"
	"github.com/Garsondee/Station-Sense/internal/schedule"
)

// infiltrator wanders like a civilian but sabotages working sites when the
// player is out of sight. Exposure by the ray makes it shoot and flee; a
// second exposure sends it to the brig.
type infiltrator struct {
	exposed bool
	target  *Site
}

func (*infiltrator) Kind() AgentKind { return AgentInfiltrator }

// Update drops the exposed flag once the agent leaves the viewport.
func (i *infiltrator) Update(w *World, n *NPC) {
	if i.exposed && !w.OnScreen(n.Bounds()) {
		i.exposed = false
		n.log.Info("exposure lapsed")
		w.simLog.Add(w.tick, n.label, n.Kind().String(), "exposure", "lapsed", "left viewport", 0)
	}
}

func (i *infiltrator) OnDestinationReached(w *World, n *NPC) {
	if n.settle(w) {
		return
	}
	if !w.playerNearby(n) && w.rng.Float64() < w.cfg.Infiltrator.SabotageChance {
		if i.sabotage(w, n) {
			return
		}
	}
	n.idleFor(w, w.cfg.Infiltrator.Idle)
}

// sabotage starts an attack on the working site under the agent. It returns
// false when there is none.
func (i *infiltrator) sabotage(w *World, n *NPC) bool {
	site := w.workingSiteOverlapping(n.Bounds())
	if site == nil {
		return false
	}
	if err := w.setSiteState(site, SiteAttacked, n.label); err != nil {
		return false
	}
	i.target = site
	n.setState(w, StateActing)
	n.tasks.Schedule(w.cfg.Infiltrator.BreakTime, 0, Effect{Kind: EffectSabotage, Site: site.ID})
	return true
}

// interrupt abandons an in-progress sabotage and repairs the site.
func (i *infiltrator) interrupt(w *World, n *NPC) {
	if i.target == nil {
		return
	}
	if i.target.state == SiteAttacked {
		_ = w.setSiteState(i.target, SiteWorking, n.label)
	}
	i.target = nil
	n.tasks.CancelAll()
	if n.state == StateActing {
		n.setState(w, StateIdle)
	}
}

func (i *infiltrator) OnStartled(w *World, n *NPC) {
	if !n.aiEnabled {
		return
	}
	interrupted := i.target != nil
	i.interrupt(w, n)
	if err := n.flee(w); err != nil {
		n.log.WithError(err).Debug("startled with nowhere to flee")
		if interrupted {
			n.idleFor(w, w.cfg.Infiltrator.Idle)
		}
	}
}

func (i *infiltrator) OnExposed(w *World, n *NPC) {
	if !n.aiEnabled {
		return
	}
	w.exposures++
	i.interrupt(w, n)

	if i.exposed {
		w.capture(n)
		return
	}

	i.exposed = true
	n.tasks.CancelAll()
	n.log.Info("exposed")
	w.simLog.Add(w.tick, n.label, n.Kind().String(), "exposure", "exposed",
		fmt.Sprintf("at (%.0f,%.0f)", n.pos.X, n.pos.Y), 0)

	w.fireProjectile(n)
	if dest, ok := w.grid.Furthest(w.player.pos); ok {
		_ = n.navigateTo(w, dest, StateFleeing)
	}
	n.tasks.Schedule(w.cfg.Infiltrator.FiringInterval, w.cfg.Infiltrator.FiringInterval, Effect{Kind: EffectFire})
	n.armFleeOver(w)
}

func (i *infiltrator) OnEffect(w *World, n *NPC, h schedule.Handle, e Effect) {
	switch e.Kind {
	case EffectSabotage:
		if !n.aiEnabled || i.target == nil || i.target.ID != e.Site {
			return
		}
		site := i.target
		i.target = nil
		if site.state == SiteAttacked {
			_ = w.setSiteState(site, SiteDestroyed, n.label)
		}
		n.setState(w, StateIdle)
		if err := n.navigateToRandomSite(w); err != nil {
			n.log.WithError(err).Debug("no site after sabotage")
		}
	case EffectFire:
		if !i.exposed || !n.aiEnabled {
			n.tasks.Cancel(h)
			return
		}
		w.fireProjectile(n)
	}
}

// capture disables an agent and moves it into the brig.
func (w *World) capture(n *NPC) {
	n.tasks.CancelAll()
	n.aiEnabled = false
	n.path = nil
	n.vel = geom.Point{}
	n.setState(w, StateIdle)
	if inf, ok := n.behavior.(*infiltrator); ok {
		inf.exposed = false
	}

	brig := w.brig
	n.pos = geom.Point{
		X: brig.X + w.rng.Float64()*max(brig.W-n.size, 0),
		Y: brig.Y + w.rng.Float64()*max(brig.H-n.size, 0),
	}
	w.captured++
	n.log.WithField("brig", n.pos).Info("captured")
	w.simLog.Add(w.tick, n.label, n.Kind().String(), "exposure", "captured",
		fmt.Sprintf("brig (%.0f,%.0f)", n.pos.X, n.pos.Y), 0)
}

// playerNearby reports whether the player stands within infiltrator sight
// range of n. Demo runs have no player to avoid.
func (w *World) playerNearby(n *NPC) bool {
	if w.cfg.DemoMode {
		return false
	}
	sight := geom.Circle{Center: n.pos, Radius: w.cfg.Infiltrator.SightRange}
	return sight.Contains(w.player.pos)
}

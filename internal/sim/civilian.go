package sim

import "github.com/Garsondee/Station-Sense/internal/schedule"

// civilian wanders between sites, idles a while at each, and flees when
// startled. It never acts on a site.
type civilian struct{}

func (civilian) Kind() AgentKind { return AgentCivilian }

func (civilian) Update(*World, *NPC) {}

func (civilian) OnDestinationReached(w *World, n *NPC) {
	if n.settle(w) {
		return
	}
	n.idleFor(w, w.cfg.NPC.CivilianIdle)
}

func (civilian) OnExposed(*World, *NPC) {}

func (civilian) OnStartled(w *World, n *NPC) {
	if err := n.flee(w); err != nil {
		n.log.WithError(err).Debug("startled with nowhere to flee")
	}
}

func (civilian) OnEffect(*World, *NPC, schedule.Handle, Effect) {}

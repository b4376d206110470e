package sim

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/Garsondee/Station-Sense/internal/geom"
	"github.com/Garsondee/Station-Sense/internal/nav"
	"github.com/Garsondee/Station-Sense/internal/schedule"
)

// State is an autonomous agent's behavior state.
type State int

const (
	StateIdle State = iota
	StateNavigating
	StateFleeing
	StateArrived
	StateActing
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateNavigating:
		return "navigating"
	case StateFleeing:
		return "fleeing"
	case StateArrived:
		return "arrived"
	case StateActing:
		return "acting"
	default:
		return "unknown"
	}
}

// AgentKind distinguishes the NPC variants.
type AgentKind int

const (
	AgentCivilian AgentKind = iota
	AgentInfiltrator
)

func (k AgentKind) String() string {
	if k == AgentInfiltrator {
		return "infiltrator"
	}
	return "civilian"
}

// Behavior is the variant-specific half of an NPC. The shared state machine
// lives on NPC and calls these hooks.
type Behavior interface {
	Kind() AgentKind
	// Update runs every tick after movement.
	Update(w *World, n *NPC)
	OnDestinationReached(w *World, n *NPC)
	OnExposed(w *World, n *NPC)
	OnStartled(w *World, n *NPC)
	// OnEffect handles variant effects the shared machine does not own.
	OnEffect(w *World, n *NPC, h schedule.Handle, e Effect)
}

// NPC is an autonomous agent walking the navigation grid.
type NPC struct {
	id          EntityID
	label       string
	pos         geom.Point
	vel         geom.Point
	rotation    float64
	size        float64
	speed       float64
	state       State
	arrivedFrom State
	fleeOver    schedule.Handle
	path        []geom.Point
	heading     geom.Point
	aiEnabled   bool
	tasks       *Tasks
	behavior    Behavior
	log         logrus.FieldLogger
}

func newNPC(w *World, pos geom.Point, b Behavior) *NPC {
	w.nextID++
	n := &NPC{
		id:        w.nextID,
		pos:       pos,
		size:      w.cfg.EntitySize,
		speed:     w.cfg.NPC.Speed * w.uniform(w.cfg.NPC.SpeedVariance),
		aiEnabled: true,
		tasks:     schedule.New[Effect](),
		behavior:  b,
	}
	prefix := "C"
	if b.Kind() == AgentInfiltrator {
		prefix = "I"
	}
	n.label = fmt.Sprintf("%s%d", prefix, n.id)
	n.log = w.log.WithFields(logrus.Fields{"agent": n.label, "kind": b.Kind().String()})
	return n
}

func (n *NPC) ID() EntityID         { return n.id }
func (n *NPC) Label() string        { return n.label }
func (n *NPC) Position() geom.Point { return n.pos }
func (n *NPC) Velocity() geom.Point { return n.vel }
func (n *NPC) Rotation() float64    { return n.rotation }
func (n *NPC) State() State         { return n.state }
func (n *NPC) Kind() AgentKind      { return n.behavior.Kind() }
func (n *NPC) AIEnabled() bool      { return n.aiEnabled }
func (n *NPC) Speed() float64       { return n.speed }
func (n *NPC) Path() []geom.Point   { return n.path }
func (n *NPC) PendingTasks() int    { return n.tasks.Len() }
func (n *NPC) Center() geom.Point   { return n.Bounds().Center() }
func (n *NPC) Behavior() Behavior   { return n.behavior }
func (n *NPC) Bounds() geom.Rect    { return geom.Rect{X: n.pos.X, Y: n.pos.Y, W: n.size, H: n.size} }
func (n *NPC) String() string       { return n.label }

// Exposed reports whether n is an infiltrator currently revealed by the ray.
func (n *NPC) Exposed() bool {
	inf, ok := n.behavior.(*infiltrator)
	return ok && inf.exposed
}

// Update advances the agent's tasks, then its movement, then its variant hook.
func (n *NPC) Update(w *World) {
	n.tasks.Advance(w.dt, func(h schedule.Handle, e Effect) {
		n.handleEffect(w, h, e)
	})
	if !n.aiEnabled {
		n.vel = geom.Point{}
		return
	}
	switch n.state {
	case StateNavigating, StateFleeing:
		n.step(w)
	case StateArrived:
		n.behavior.OnDestinationReached(w, n)
	}
	n.behavior.Update(w, n)
}

func (n *NPC) handleEffect(w *World, h schedule.Handle, e Effect) {
	switch e.Kind {
	case EffectResume, EffectFleeOver:
		if !n.aiEnabled {
			return
		}
		if err := n.navigateToRandomSite(w); err != nil {
			n.log.WithError(err).WithField("effect", e.Kind.String()).Debug("resume found no route")
			if n.state == StateIdle {
				n.idleFor(w, n.idleRange(w))
			}
		}
	default:
		n.behavior.OnEffect(w, n, h, e)
	}
}

// step moves the agent one tick toward its current waypoint. Each axis
// advances only while the direction to the waypoint still matches the
// heading captured when the waypoint was adopted; once neither axis can
// advance the waypoint is consumed.
func (n *NPC) step(w *World) {
	if len(n.path) == 0 {
		n.arrive(w)
		return
	}
	target := n.path[0]
	dir := target.Sub(n.pos).Signum()
	if !dir.IsZero() {
		n.rotation = dir.AngleDeg()
	}

	speed := n.speed
	if n.state == StateFleeing {
		speed *= w.cfg.NPC.FleeMultiplier
	}

	n.vel = geom.Point{}
	moved := false
	if dir.X != 0 && dir.X == n.heading.X {
		n.vel.X = dir.X * speed
		moved = true
	}
	if dir.Y != 0 && dir.Y == n.heading.Y {
		n.vel.Y = dir.Y * speed
		moved = true
	}
	if moved {
		n.pos = n.pos.Add(n.vel)
		return
	}

	n.path = n.path[1:]
	if len(n.path) == 0 {
		n.arrive(w)
		return
	}
	n.heading = n.path[0].Sub(n.pos).Signum()
}

func (n *NPC) arrive(w *World) {
	n.arrivedFrom = n.state
	n.path = nil
	n.vel = geom.Point{}
	n.setState(w, StateArrived)
}

func (n *NPC) setState(w *World, s State) {
	if n.state == s {
		return
	}
	prev := n.state
	n.state = s
	n.log.WithFields(logrus.Fields{"from": prev.String(), "to": s.String()}).Debug("state change")
	w.simLog.Add(w.tick, n.label, n.Kind().String(), "state", "change",
		fmt.Sprintf("%s → %s", prev, s), 0)
}

// navigateTo replaces the path with a fresh search to dest. When the search
// fails the agent keeps its prior state and path.
func (n *NPC) navigateTo(w *World, dest geom.Point, s State) error {
	path, err := w.grid.FindPath(n.pos, dest)
	if err != nil {
		n.log.WithError(err).WithField("dest", dest).Warn("navigation failed")
		w.simLog.Add(w.tick, n.label, n.Kind().String(), "move", "no_path",
			fmt.Sprintf("(%.0f,%.0f)", dest.X, dest.Y), 0)
		return wrapError(CodeNoPath, err, "%s to (%.1f, %.1f)", n.label, dest.X, dest.Y)
	}
	if len(path) == 0 {
		path = []geom.Point{dest}
	}
	n.path = path
	n.heading = path[0].Sub(n.pos).Signum()
	n.setState(w, s)
	return nil
}

func (n *NPC) navigateToRandomSite(w *World) error {
	sites := w.ActiveSites()
	if len(sites) == 0 {
		return newError(CodeNoTarget, "%s: no active sites", n.label)
	}
	site := sites[w.rng.Intn(len(sites))]
	return n.navigateTo(w, site.Rect.Min(), StateNavigating)
}

// flee runs to one of the two nearest flee points outside the minimum flee
// distance and arms the flee-over timer. Outstanding tasks are cancelled
// first.
func (n *NPC) flee(w *World) error {
	candidates := nav.NearestN(n.pos, w.fleePoints, 2, w.cfg.NPC.MinFleeDistance)
	if len(candidates) == 0 {
		return newError(CodeNoTarget, "%s: no flee point", n.label)
	}
	dest := candidates[w.rng.Intn(len(candidates))]
	if err := n.navigateTo(w, dest, StateFleeing); err != nil {
		return err
	}
	n.tasks.CancelAll()
	n.armFleeOver(w)
	return nil
}

func (n *NPC) armFleeOver(w *World) {
	n.fleeOver = n.tasks.Schedule(w.cfg.NPC.FleeTime, 0, Effect{Kind: EffectFleeOver})
}

// idleFor parks the agent and schedules a resume after a random delay.
func (n *NPC) idleFor(w *World, r Range) {
	n.setState(w, StateIdle)
	n.tasks.Schedule(w.uniform(r), 0, Effect{Kind: EffectResume})
}

func (n *NPC) idleRange(w *World) Range {
	if n.Kind() == AgentInfiltrator {
		return w.cfg.Infiltrator.Idle
	}
	return w.cfg.NPC.CivilianIdle
}

// settle turns an arrival into Idle. It reports whether the arrival ended a
// flee whose flee-over task is still pending and will resume the agent. A
// flee-over that already fired and found no route does not count.
func (n *NPC) settle(w *World) (fromFlee bool) {
	from := n.arrivedFrom
	n.setState(w, StateIdle)
	return from == StateFleeing && n.tasks.Active(n.fleeOver)
}

package sim

//go:generate mockgen -destination=mock/listener.go -package=mock github.com/Garsondee/Station-Sense/internal/sim OutcomeListener

// Outcome is the end-state of a run.
type Outcome int

const (
	OutcomeRunning Outcome = iota
	OutcomeWon
	OutcomeLost
)

func (o Outcome) String() string {
	switch o {
	case OutcomeRunning:
		return "running"
	case OutcomeWon:
		return "won"
	case OutcomeLost:
		return "lost"
	default:
		return "unknown"
	}
}

// OutcomeListener is notified once when a run finishes.
type OutcomeListener interface {
	OnOutcome(outcome Outcome, tick int)
}

// Report summarises a run for headless reporting.
type Report struct {
	Outcome              Outcome
	Tick                 int
	SitesTotal           int
	SitesDestroyed       int
	InfiltratorsSpawned  int
	InfiltratorsCaptured int
	ActiveInfiltrators   int
	PlayerHits           int
	Exposures            int
	Description          string
}

// Report builds a Report from the world's current state.
func (w *World) Report() Report {
	destroyed := 0
	for _, s := range w.sites {
		if s.state == SiteDestroyed {
			destroyed++
		}
	}
	r := Report{
		Outcome:              w.outcome,
		Tick:                 w.tick,
		SitesTotal:           len(w.sites),
		SitesDestroyed:       destroyed,
		InfiltratorsSpawned:  w.infiltratorsAdded,
		InfiltratorsCaptured: w.captured,
		ActiveInfiltrators:   w.activeInfiltrators,
		PlayerHits:           w.playerHits,
		Exposures:            w.exposures,
	}
	switch {
	case w.outcome == OutcomeLost:
		r.Description = "all_systems_destroyed"
	case w.outcome == OutcomeWon && destroyed == 0:
		r.Description = "flawless_no_systems_lost"
	case w.outcome == OutcomeWon:
		r.Description = "infiltrators_contained"
	case len(w.sites) > 0 && destroyed*2 >= len(w.sites):
		r.Description = "in_progress_station_critical"
	default:
		r.Description = "in_progress"
	}
	return r
}

// Snapshot is a lightweight copy of the agents and sites at one tick.
type Snapshot struct {
	Tick    int
	Outcome Outcome
	Agents  []AgentSnapshot
	Sites   []SiteSnapshot
}

// AgentSnapshot is one agent's state at a tick.
type AgentSnapshot struct {
	ID        EntityID
	Label     string
	Kind      AgentKind
	X, Y      float64
	State     State
	AIEnabled bool
	Exposed   bool
}

// SiteSnapshot is one site's state at a tick.
type SiteSnapshot struct {
	Name  string
	State SiteState
}

// Snapshot returns the current state of every live agent and every site.
func (w *World) Snapshot() Snapshot {
	snap := Snapshot{Tick: w.tick, Outcome: w.outcome}
	for _, n := range w.NPCs() {
		snap.Agents = append(snap.Agents, AgentSnapshot{
			ID:        n.id,
			Label:     n.label,
			Kind:      n.Kind(),
			X:         n.pos.X,
			Y:         n.pos.Y,
			State:     n.state,
			AIEnabled: n.aiEnabled,
			Exposed:   n.Exposed(),
		})
	}
	for _, s := range w.sites {
		snap.Sites = append(snap.Sites, SiteSnapshot{Name: s.Name, State: s.state})
	}
	return snap
}

package sim

import (
	"github.com/sirupsen/logrus"

	"github.com/Garsondee/Station-Sense/internal/geom"
)

// SiteState is the lifecycle of a sabotage-able system.
type SiteState int

const (
	SiteWorking SiteState = iota
	SiteAttacked
	SiteDestroyed
)

func (s SiteState) String() string {
	switch s {
	case SiteWorking:
		return "working"
	case SiteAttacked:
		return "attacked"
	case SiteDestroyed:
		return "destroyed"
	default:
		return "unknown"
	}
}

// Site is a station system agents navigate to and infiltrators sabotage.
type Site struct {
	ID    int
	Name  string
	Rect  geom.Rect
	state SiteState
}

// State returns the site's current state.
func (s *Site) State() SiteState { return s.state }

// Active reports whether the site still counts toward the station's health.
func (s *Site) Active() bool { return s.state != SiteDestroyed }

// transition moves the site to next. Destroyed is terminal and only an
// attacked site can be destroyed or repaired.
func (s *Site) transition(next SiteState) error {
	legal := false
	switch s.state {
	case SiteWorking:
		legal = next == SiteAttacked
	case SiteAttacked:
		legal = next == SiteWorking || next == SiteDestroyed
	}
	if !legal {
		return newError(CodeInvalidQuery, "site %s: %s -> %s", s.Name, s.state, next)
	}
	s.state = next
	return nil
}

// Sites returns every site in level order.
func (w *World) Sites() []*Site { return w.sites }

// ActiveSites returns the sites that have not been destroyed, in level order.
func (w *World) ActiveSites() []*Site {
	out := make([]*Site, 0, len(w.sites))
	for _, s := range w.sites {
		if s.Active() {
			out = append(out, s)
		}
	}
	return out
}

// Site looks up a site by ID.
func (w *World) Site(id int) *Site {
	if id < 0 || id >= len(w.sites) {
		return nil
	}
	return w.sites[id]
}

// SiteStateAt returns the state of the site covering p.
func (w *World) SiteStateAt(p geom.Point) (SiteState, error) {
	for _, s := range w.sites {
		if s.Rect.Contains(p) {
			return s.state, nil
		}
	}
	return 0, newError(CodeInvalidQuery, "no site at (%.1f, %.1f)", p.X, p.Y)
}

// workingSiteOverlapping returns the first working site whose bounds
// overlap r, or nil.
func (w *World) workingSiteOverlapping(r geom.Rect) *Site {
	for _, s := range w.sites {
		if s.state == SiteWorking && s.Rect.Overlaps(r) {
			return s
		}
	}
	return nil
}

func (w *World) setSiteState(s *Site, next SiteState, by string) error {
	prev := s.state
	if err := s.transition(next); err != nil {
		w.log.WithError(err).Warn("rejected site transition")
		return err
	}
	w.log.WithFields(logrus.Fields{"site": s.Name, "from": prev.String(), "to": next.String(), "by": by}).Info("site state changed")
	w.simLog.Add(w.tick, by, "--", "site", next.String(), s.Name, float64(s.ID))
	return nil
}

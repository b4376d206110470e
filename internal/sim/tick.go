package sim

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/Garsondee/Station-Sense/internal/geom"
)

// DefaultDT is the fixed tick length in seconds.
const DefaultDT = 1.0 / 60.0

// Tick advances the world by dt seconds of input in. Once the run is over
// further calls do nothing and keep returning the final outcome.
//
// Order per tick:
//  1. commit staged entity additions and removals
//  2. autonomous agents
//  3. the player, then the camera follows
//  4. projectiles
//  5. replacement infiltrators
//  6. end-state check
func (w *World) Tick(dt float64, in Intent) Outcome {
	if w.outcome != OutcomeRunning {
		return w.outcome
	}
	w.tick++
	w.dt = dt
	w.intent = in

	// 1. COMMIT
	w.entities.Commit()
	live := w.entities.Live()

	// 2. AGENTS
	var projectiles []*Projectile
	for _, e := range live {
		switch v := e.(type) {
		case *NPC:
			v.Update(w)
			w.simLog.AddVerbose(w.tick, v.label, v.Kind().String(), "move", "position", pointString(v.pos), v.speed)
		case *Projectile:
			projectiles = append(projectiles, v)
		}
	}

	// 3. PLAYER
	if w.entities.Contains(w.player) {
		w.player.Update(w)
	}
	w.updateCamera()

	// 4. PROJECTILES
	for _, p := range projectiles {
		p.Update(w)
	}

	// 5. SPAWN
	w.activeInfiltrators = w.countActiveInfiltrators()
	w.spawnReplacements()

	// 6. END STATE
	return w.checkEndState()
}

func (w *World) countActiveInfiltrators() int {
	n := 0
	for _, e := range w.entities.Live() {
		if a, ok := e.(*NPC); ok && a.aiEnabled && a.Kind() == AgentInfiltrator {
			n++
		}
	}
	return n
}

// checkEndState: losing every site loses the run; otherwise no autonomous
// infiltrators left wins it.
func (w *World) checkEndState() Outcome {
	switch {
	case len(w.ActiveSites()) == 0:
		w.finish(OutcomeLost)
	case w.activeInfiltrators <= 0:
		w.finish(OutcomeWon)
	}
	return w.outcome
}

func (w *World) finish(o Outcome) {
	w.outcome = o
	w.log.WithFields(logrus.Fields{
		"outcome":  o.String(),
		"tick":     w.tick,
		"captured": w.captured,
		"hits":     w.playerHits,
	}).Info("run finished")
	w.simLog.Add(w.tick, "--", "--", "outcome", o.String(),
		fmt.Sprintf("captured=%d hits=%d", w.captured, w.playerHits), float64(w.tick))
	for _, l := range w.listeners {
		l.OnOutcome(o, w.tick)
	}
}

func pointString(p geom.Point) string {
	return fmt.Sprintf("(%.0f,%.0f)", p.X, p.Y)
}

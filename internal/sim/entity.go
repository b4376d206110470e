package sim

import (
	"github.com/Garsondee/Station-Sense/internal/geom"
	"github.com/Garsondee/Station-Sense/internal/schedule"
)

// EntityID identifies an entity for the lifetime of a World.
type EntityID int

// Entity is anything in the live set the tick driver updates.
type Entity interface {
	ID() EntityID
	Label() string
	Position() geom.Point
	Bounds() geom.Rect
	Update(w *World)
}

// EffectKind names what a deferred task does when it fires.
type EffectKind int

const (
	// EffectResume ends an idle period: pick a new random site.
	EffectResume EffectKind = iota + 1
	// EffectFleeOver ends a flee: pick a new random site.
	EffectFleeOver
	// EffectSabotage completes a sabotage on Effect.Site.
	EffectSabotage
	// EffectFire shoots at the player while exposed.
	EffectFire
	EffectClearConfused
	EffectClearSlowed
	EffectClearBlinded
	// EffectRayFade hides the last ray.
	EffectRayFade
)

func (k EffectKind) String() string {
	switch k {
	case EffectResume:
		return "resume"
	case EffectFleeOver:
		return "flee_over"
	case EffectSabotage:
		return "sabotage"
	case EffectFire:
		return "fire"
	case EffectClearConfused:
		return "clear_confused"
	case EffectClearSlowed:
		return "clear_slowed"
	case EffectClearBlinded:
		return "clear_blinded"
	case EffectRayFade:
		return "ray_fade"
	default:
		return "unknown"
	}
}

// Effect is the payload of a scheduled task.
type Effect struct {
	Kind EffectKind
	Site int
}

// Tasks is the per-owner deferred task list.
type Tasks = schedule.Scheduler[Effect]

// Debuff is the status a projectile applies to the player on hit.
type Debuff int

const (
	DebuffConfuse Debuff = iota
	DebuffSlow
	DebuffBlind
)

func (d Debuff) String() string {
	switch d {
	case DebuffConfuse:
		return "confuse"
	case DebuffSlow:
		return "slow"
	case DebuffBlind:
		return "blind"
	default:
		return "unknown"
	}
}

package sim

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Range is an inclusive-exclusive [Min, Max) interval sampled uniformly.
type Range struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

// PlayerConfig tunes the player-controlled agent.
type PlayerConfig struct {
	Speed              float64 `yaml:"speed"`
	MaxSpeed           float64 `yaml:"max_speed"`
	Friction           float64 `yaml:"friction"`
	ChargeRate         float64 `yaml:"charge_rate"`
	DischargeThreshold float64 `yaml:"discharge_threshold"`
	RayTime            float64 `yaml:"ray_time"`
	RayStep            float64 `yaml:"ray_step"`
	RayReach           float64 `yaml:"ray_reach"`
	DebuffTime         float64 `yaml:"debuff_time"`
	BlindTime          float64 `yaml:"blind_time"`
	HealRate           float64 `yaml:"heal_rate"`
}

// NPCConfig tunes every autonomous agent.
type NPCConfig struct {
	Count           int     `yaml:"count"`
	Speed           float64 `yaml:"speed"`
	SpeedVariance   Range   `yaml:"speed_variance"`
	FleeTime        float64 `yaml:"flee_time"`
	FleeMultiplier  float64 `yaml:"flee_multiplier"`
	MinFleeDistance float64 `yaml:"min_flee_distance"`
	EarStrength     float64 `yaml:"ear_strength"`
	CivilianIdle    Range   `yaml:"civilian_idle"`
}

// InfiltratorConfig tunes the antagonist variant.
type InfiltratorConfig struct {
	BreakTime        float64 `yaml:"break_time"`
	SabotageChance   float64 `yaml:"sabotage_chance"`
	SightRange       float64 `yaml:"sight_range"`
	ProjectileSpeed  float64 `yaml:"projectile_speed"`
	ProjectileDamage float64 `yaml:"projectile_damage"`
	FiringInterval   float64 `yaml:"firing_interval"`
	MaxTotal         int     `yaml:"max_total"`
	MaxActive        int     `yaml:"max_active"`
	Idle             Range   `yaml:"idle"`
}

// Size is a width/height pair in world units.
type Size struct {
	W float64 `yaml:"w"`
	H float64 `yaml:"h"`
}

// Config holds every tunable of a simulation run.
type Config struct {
	Seed           int64             `yaml:"seed"`
	DemoMode       bool              `yaml:"demo_mode"`
	EntitySize     float64           `yaml:"entity_size"`
	ProjectileSize float64           `yaml:"projectile_size"`
	Viewport       Size              `yaml:"viewport"`
	Player         PlayerConfig      `yaml:"player"`
	NPC            NPCConfig         `yaml:"npc"`
	Infiltrator    InfiltratorConfig `yaml:"infiltrator"`
}

// DefaultConfig returns the stock tuning. Rates are per tick, times in
// seconds and distances in world units.
func DefaultConfig() Config {
	return Config{
		Seed:           1,
		EntitySize:     16,
		ProjectileSize: 4,
		Viewport:       Size{W: 480, H: 270},
		Player: PlayerConfig{
			Speed:              0.4,
			MaxSpeed:           2,
			Friction:           0.9,
			ChargeRate:         0.05,
			DischargeThreshold: 0.95,
			RayTime:            0.25,
			RayStep:            0.1,
			RayReach:           20,
			DebuffTime:         5,
			BlindTime:          2,
			HealRate:           0.005,
		},
		NPC: NPCConfig{
			Count:           24,
			Speed:           1.3,
			SpeedVariance:   Range{Min: 0.8, Max: 1.2},
			FleeTime:        10,
			FleeMultiplier:  1.2,
			MinFleeDistance: 80,
			EarStrength:     80,
			CivilianIdle:    Range{Min: 5, Max: 10},
		},
		Infiltrator: InfiltratorConfig{
			BreakTime:        5,
			SabotageChance:   0.6,
			SightRange:       80,
			ProjectileSpeed:  4,
			ProjectileDamage: 0.2,
			FiringInterval:   5,
			MaxTotal:         8,
			MaxActive:        3,
			Idle:             Range{Min: 5, Max: 8},
		},
	}
}

// LoadConfig overlays the YAML document at path onto DefaultConfig and
// validates the result.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, wrapError(CodeConfig, err, "read config %s", path)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, wrapError(CodeConfig, err, "decode config %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate reports the first invalid setting as a config error.
func (c Config) Validate() error {
	positive := []struct {
		name string
		v    float64
	}{
		{"entity_size", c.EntitySize},
		{"projectile_size", c.ProjectileSize},
		{"viewport.w", c.Viewport.W},
		{"viewport.h", c.Viewport.H},
		{"player.speed", c.Player.Speed},
		{"player.max_speed", c.Player.MaxSpeed},
		{"player.ray_step", c.Player.RayStep},
		{"npc.speed", c.NPC.Speed},
		{"npc.flee_multiplier", c.NPC.FleeMultiplier},
		{"infiltrator.firing_interval", c.Infiltrator.FiringInterval},
		{"infiltrator.projectile_speed", c.Infiltrator.ProjectileSpeed},
	}
	for _, p := range positive {
		if p.v <= 0 {
			return newError(CodeConfig, "%s must be positive, got %g", p.name, p.v)
		}
	}
	nonNegative := []struct {
		name string
		v    float64
	}{
		{"player.charge_rate", c.Player.ChargeRate},
		{"player.discharge_threshold", c.Player.DischargeThreshold},
		{"player.ray_time", c.Player.RayTime},
		{"player.ray_reach", c.Player.RayReach},
		{"player.debuff_time", c.Player.DebuffTime},
		{"player.blind_time", c.Player.BlindTime},
		{"player.heal_rate", c.Player.HealRate},
		{"npc.flee_time", c.NPC.FleeTime},
		{"npc.min_flee_distance", c.NPC.MinFleeDistance},
		{"npc.ear_strength", c.NPC.EarStrength},
		{"infiltrator.break_time", c.Infiltrator.BreakTime},
		{"infiltrator.sight_range", c.Infiltrator.SightRange},
		{"infiltrator.projectile_damage", c.Infiltrator.ProjectileDamage},
	}
	for _, n := range nonNegative {
		if n.v < 0 {
			return newError(CodeConfig, "%s must not be negative, got %g", n.name, n.v)
		}
	}
	ranges := []struct {
		name string
		r    Range
	}{
		{"npc.speed_variance", c.NPC.SpeedVariance},
		{"npc.civilian_idle", c.NPC.CivilianIdle},
		{"infiltrator.idle", c.Infiltrator.Idle},
	}
	for _, r := range ranges {
		if r.r.Min < 0 || r.r.Max < r.r.Min {
			return newError(CodeConfig, "%s: invalid range [%g, %g)", r.name, r.r.Min, r.r.Max)
		}
	}
	if c.Player.Friction < 0 || c.Player.Friction > 1 {
		return newError(CodeConfig, "player.friction must be within [0, 1], got %g", c.Player.Friction)
	}
	if c.Infiltrator.SabotageChance < 0 || c.Infiltrator.SabotageChance > 1 {
		return newError(CodeConfig, "infiltrator.sabotage_chance must be within [0, 1], got %g", c.Infiltrator.SabotageChance)
	}
	if c.NPC.Count < 0 || c.Infiltrator.MaxActive < 0 || c.Infiltrator.MaxTotal < 0 {
		return newError(CodeConfig, "agent counts must not be negative")
	}
	if c.Infiltrator.MaxActive > c.Infiltrator.MaxTotal {
		return newError(CodeConfig, "infiltrator.max_active (%d) exceeds max_total (%d)",
			c.Infiltrator.MaxActive, c.Infiltrator.MaxTotal)
	}
	return nil
}

func (r Range) String() string { return fmt.Sprintf("[%g, %g)", r.Min, r.Max) }

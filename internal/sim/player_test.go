package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Garsondee/Station-Sense/internal/content"
	"github.com/Garsondee/Station-Sense/internal/geom"
)

// corridorSim is a 10x3 map with a solid column at tile x=6 and a pair of
// linked teleporters.
func corridorSim(t *testing.T, opts ...SimOption) *TestSim {
	t.Helper()
	base := []SimOption{
		noSabotage,
		WithMap(
			[]string{
				"..........",
				"..........",
				"..........",
			},
			[]string{
				"      #   ",
				"      #   ",
				"      #   ",
			},
			content.Object{Name: "core", Type: content.ObjectSystem, X: 128, Y: 0, W: 16, H: 16},
			content.Object{Name: "bay", Type: content.ObjectMedbay, X: 0, Y: 0, W: 16, H: 16},
			content.Object{Name: "tp-west", Type: content.ObjectTeleporter, X: 16, Y: 32, W: 16, H: 16, Linked: "tp-east"},
			content.Object{Name: "tp-east", Type: content.ObjectTeleporter, X: 144, Y: 32, W: 16, H: 16, Linked: "tp-west"},
		),
		WithPlayerAt(32, 16),
		WithInfiltrator(9, 0),
	}
	return newSim(t, append(base, opts...)...)
}

func TestPlayer_CollisionStopsAtSolidColumn(t *testing.T) {
	ts := corridorSim(t)
	p := ts.World.Player()

	ts.Intent = Intent{Right: true, Aim: geom.Point{X: 500, Y: 24}}
	ts.RunTicks(200)

	x := p.Position().X
	assert.Greater(t, x, 60.0, "player moved")
	assert.Less(t, x+p.size-collisionInset, 96.0, "right probe never enters the solid tile")
	assert.InDelta(t, 16.0, p.Position().Y, 1e-9)
}

func TestPlayer_VelocityCappedAndFrictionApplied(t *testing.T) {
	ts := corridorSim(t, WithPlayerAt(0, 16))
	p := ts.World.Player()

	ts.Step(Intent{Right: true})
	assert.InDelta(t, 0.4*0.9, p.Velocity().X, 1e-9)
	for i := 0; i < 20; i++ {
		ts.Step(Intent{Up: true})
		assert.LessOrEqual(t, p.Velocity().Y, ts.World.cfg.Player.MaxSpeed)
	}
	ts.RunTicks(100)
	assert.InDelta(t, 0, p.Velocity().Len(), 0.01, "friction bleeds off speed")
}

func TestPlayer_RetreatAndHeal(t *testing.T) {
	ts := corridorSim(t)
	w := ts.World
	p := w.Player()
	ts.Step(Intent{})
	p.health = 0.5
	p.confused = true

	ts.Step(Intent{Retreat: true})
	assert.Equal(t, w.medbaySpawn, p.Position())
	assert.False(t, p.Confused())
	assert.InDelta(t, 0.505, p.Health(), 1e-9, "heals on the same tick it lands in the medbay")

	ts.RunTicks(10)
	assert.InDelta(t, 0.555, p.Health(), 1e-9)
}

func TestPlayer_ZeroHealthForcesRetreat(t *testing.T) {
	ts := corridorSim(t)
	w := ts.World
	p := w.Player()
	ts.Step(Intent{})
	p.health = 0

	ts.Step(Intent{})
	assert.Equal(t, w.medbaySpawn, p.Position())
	assert.True(t, ts.SimLog.HasEntry("player", "retreat", ""))
}

func TestPlayer_TeleporterInteract(t *testing.T) {
	ts := corridorSim(t, WithPlayerAt(16, 32))
	p := ts.World.Player()
	ts.Step(Intent{})

	ts.Step(Intent{Interact: true})
	assert.Equal(t, geom.Point{X: 144, Y: 32}, p.Position())

	ts.Step(Intent{Interact: true})
	assert.Equal(t, geom.Point{X: 16, Y: 32}, p.Position(), "linked both ways")

	ts.Intent = Intent{Right: true}
	ts.RunTicks(30)
	require.Greater(t, p.Position().X, 32.0, "walked off the pad")
	ts.Step(Intent{Interact: true})
	assert.Less(t, p.Position().X, 96.0, "off the pad nothing happens")
}

func TestPlayer_ChargeAndDecay(t *testing.T) {
	ts := corridorSim(t)
	p := ts.World.Player()

	for i := 0; i < 10; i++ {
		ts.Step(Intent{Charge: true})
	}
	assert.InDelta(t, 0.5, p.Charge(), 1e-9)
	assert.Equal(t, p.Charge(), ts.World.Charge())

	ts.Step(Intent{})
	assert.InDelta(t, 0.45, p.Charge(), 1e-9, "below the threshold releasing decays")

	ts.RunTicks(20)
	assert.Zero(t, p.Charge())
	_, visible := p.Ray()
	assert.False(t, visible, "no discharge below the threshold")
}

func TestPlayer_DischargeHitsWallAndFades(t *testing.T) {
	ts := corridorSim(t)
	p := ts.World.Player()
	aim := geom.Point{X: 90, Y: 24}

	for i := 0; i < 25; i++ {
		ts.Step(Intent{Charge: true, Aim: aim})
	}
	require.InDelta(t, 1.0, p.Charge(), 1e-9)

	ts.Step(Intent{Aim: aim})
	end, visible := p.Ray()
	require.True(t, visible)
	assert.Zero(t, p.Charge())
	worldEnd, worldVisible := ts.World.Ray()
	assert.True(t, worldVisible)
	assert.Equal(t, end, worldEnd)
	assert.GreaterOrEqual(t, end.X, 96.0, "ray stops inside the solid column")
	assert.Less(t, end.X, 112.0)

	ts.Step(Intent{Charge: true, Aim: aim})
	assert.Zero(t, p.Charge(), "cannot charge while the ray is visible")

	ts.RunTicks(20)
	_, visible = p.Ray()
	assert.False(t, visible)
}

func TestPlayer_RayStartlesCivilianItHits(t *testing.T) {
	ts := newSim(t, noSabotage, WithCivilian(3, 10), WithInfiltrator(18, 1))
	ts.Step(Intent{})
	w := ts.World
	c := ts.Agents[0]
	park(c, geom.Point{X: 48, Y: 160})

	w.player.charge = 1
	ts.Step(Intent{Aim: geom.Point{X: 100, Y: 168}})

	end, visible := w.player.Ray()
	require.True(t, visible)
	assert.True(t, c.Bounds().Contains(end), "ray stops on the first agent")
	assert.Equal(t, StateFleeing, c.State())
}

func TestPlayer_DemoModeIgnoresInput(t *testing.T) {
	ts := newSim(t, noSabotage,
		WithConfig(func(c *Config) { c.DemoMode = true }),
		WithInfiltrator(18, 1),
	)
	w := ts.World
	start := w.Player().Position()
	assert.Equal(t, geom.Point{X: 160, Y: 96}, start, "demo player sits at the map centre")

	ts.Intent = Intent{Right: true, Charge: true}
	ts.RunTicks(30)
	assert.Equal(t, start, w.Player().Position())
	assert.Zero(t, w.Player().Charge())
	assert.Equal(t, geom.Rect{W: 320, H: 192}, w.Camera())
}

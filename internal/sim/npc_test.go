package sim

import (
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Garsondee/Station-Sense/internal/content"
	"github.com/Garsondee/Station-Sense/internal/geom"
	"github.com/Garsondee/Station-Sense/internal/nav"
)

func newSim(t *testing.T, opts ...SimOption) *TestSim {
	t.Helper()
	ts, err := NewTestSim(opts...)
	require.NoError(t, err)
	return ts
}

// noSabotage keeps infiltrators from ending a run that is testing something
// else.
var noSabotage = WithConfig(func(c *Config) { c.Infiltrator.SabotageChance = 0 })

// park clears an agent's plans so a test can drive it by hand.
func park(n *NPC, pos geom.Point) {
	n.tasks.CancelAll()
	n.path = nil
	n.pos = pos
	n.state = StateIdle
}

func TestNPC_ArrivesOnTickThatConsumesLastWaypoint(t *testing.T) {
	ts := newSim(t, noSabotage, WithCivilian(2, 2), WithInfiltrator(18, 1))
	ts.Step(Intent{})
	n := ts.Agents[0]
	require.Equal(t, AgentCivilian, n.Kind())

	park(n, geom.Point{X: 32, Y: 32})
	n.path = []geom.Point{{X: 34, Y: 32}}
	n.heading = geom.Point{X: 1}
	n.state = StateNavigating

	arrivedAt := -1
	for i := 0; i < 10; i++ {
		hadWaypoint := len(n.path) == 1
		ts.Step(Intent{})
		if len(n.path) == 0 {
			require.True(t, hadWaypoint)
			assert.Equal(t, StateArrived, n.State(), "arrival happens on the consuming tick")
			arrivedAt = ts.CurrentTick()
			break
		}
		assert.Equal(t, StateNavigating, n.State())
	}
	require.NotEqual(t, -1, arrivedAt, "agent never consumed its waypoint")
	assert.Greater(t, n.Position().X, 34.0, "agent overshoots by less than one step")
	assert.Less(t, n.Position().X, 34.0+n.Speed())

	ts.Step(Intent{})
	assert.Equal(t, StateIdle, n.State())
	assert.Equal(t, 1, n.PendingTasks(), "idle schedules a resume")
}

func TestNPC_AxisStopsWhenHeadingFlips(t *testing.T) {
	ts := newSim(t, noSabotage, WithCivilian(2, 2), WithInfiltrator(18, 1))
	ts.Step(Intent{})
	n := ts.Agents[0]

	park(n, geom.Point{X: 32, Y: 32})
	n.path = []geom.Point{{X: 40, Y: 64}, {X: 40, Y: 80}}
	n.heading = geom.Point{X: 1, Y: 1}
	n.state = StateNavigating

	ts.RunUntil(func(*TestSim) bool { return len(n.path) == 1 }, 200)
	p := n.Position()
	assert.GreaterOrEqual(t, p.X, 40.0)
	assert.Less(t, p.X, 40.0+n.Speed())
	assert.GreaterOrEqual(t, p.Y, 64.0)
	assert.Equal(t, 1.0, n.heading.Y, "heading recomputed on adoption")
}

func TestNPC_NavigationFailureKeepsState(t *testing.T) {
	logger, hook := logtest.NewNullLogger()
	ts := newSim(t,
		WithTestLogger(logger),
		WithMap([]string{
			".....",
			"#####",
			".....",
		}, nil,
			content.Object{Name: "core", Type: content.ObjectSystem, X: 64, Y: 0, W: 16, H: 16},
			testObjects()[2],
		),
		WithPlayerAt(0, 32),
	)
	w := ts.World
	n := w.SpawnCivilian(geom.Point{X: 0, Y: 0})
	n.state = StateIdle
	n.path = nil

	err := n.navigateTo(w, geom.Point{X: 64, Y: 32}, StateNavigating)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoPath))
	assert.True(t, errors.Is(err, nav.ErrNoPath))
	assert.True(t, IsCode(err, CodeNoPath))
	assert.Equal(t, StateIdle, n.State())
	assert.Empty(t, n.Path())

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.WarnLevel, entry.Level)
	assert.Equal(t, "navigation failed", entry.Message)
	assert.Equal(t, n.Label(), entry.Data["agent"])
}

func TestNPC_NoSitesIsNoTarget(t *testing.T) {
	ts := newSim(t, noSabotage, WithCivilian(2, 2), WithInfiltrator(18, 1))
	w := ts.World
	for _, s := range w.sites {
		s.state = SiteDestroyed
	}
	n := ts.Agents[0]
	park(n, n.pos)
	err := n.navigateToRandomSite(w)
	assert.True(t, errors.Is(err, ErrNoTarget))
	assert.Equal(t, StateIdle, n.State())
}

func TestCivilian_FleeArrivalWaitsForFleeOver(t *testing.T) {
	ts := newSim(t, noSabotage, WithCivilian(3, 6), WithInfiltrator(18, 1))
	ts.Step(Intent{})
	n := ts.Agents[0]
	park(n, geom.Point{X: 48, Y: 96})

	n.behavior.OnStartled(ts.World, n)
	require.Equal(t, StateFleeing, n.State())
	require.Equal(t, 1, n.PendingTasks(), "only the flee-over task is pending")

	tick := ts.RunUntil(func(*TestSim) bool { return n.State() == StateIdle }, 500)
	require.NotEqual(t, -1, tick, "civilian never reached its flee point")
	assert.Equal(t, 1, n.PendingTasks(), "arrival from a flee schedules nothing new")

	tick = ts.RunUntil(func(*TestSim) bool { return n.State() == StateNavigating }, 700)
	assert.NotEqual(t, -1, tick, "flee-over should send the civilian to a site")
}

func TestCivilian_FleePicksNearbyPointOutsideMinimum(t *testing.T) {
	ts := newSim(t, noSabotage, WithCivilian(3, 10), WithInfiltrator(18, 1))
	ts.Step(Intent{})
	n := ts.Agents[0]
	park(n, geom.Point{X: 48, Y: 160})

	require.NoError(t, n.flee(ts.World))
	dest := n.path[len(n.path)-1]
	// (0,176) is inside the minimum flee distance; the two nearest outside it
	// are (0,0) and (304,176).
	assert.Contains(t, []geom.Point{{X: 0, Y: 0}, {X: 304, Y: 176}}, dest)
}

func TestInfiltrator_NoSiteAtDestinationIdles(t *testing.T) {
	ts := newSim(t,
		WithConfig(func(c *Config) { c.Infiltrator.SabotageChance = 1 }),
		WithInfiltrator(2, 2),
	)
	ts.Step(Intent{})
	n := ts.Agents[0]
	park(n, geom.Point{X: 32, Y: 32})
	n.state = StateArrived
	n.arrivedFrom = StateNavigating

	ts.Step(Intent{})
	assert.Equal(t, StateIdle, n.State())
	assert.Equal(t, 1, n.PendingTasks(), "resume scheduled")
	for _, s := range ts.World.Sites() {
		assert.Equal(t, SiteWorking, s.State())
	}
}

func arriveAtAlpha(t *testing.T, chance float64) (*TestSim, *NPC) {
	t.Helper()
	ts := newSim(t,
		WithConfig(func(c *Config) { c.Infiltrator.SabotageChance = chance }),
		WithInfiltrator(5, 5),
	)
	ts.Step(Intent{})
	n := ts.Agents[0]
	park(n, geom.Point{X: 80, Y: 80})
	n.state = StateArrived
	n.arrivedFrom = StateNavigating
	ts.Step(Intent{})
	return ts, n
}

func TestInfiltrator_SabotageDestroysSite(t *testing.T) {
	ts, n := arriveAtAlpha(t, 1)
	alpha := ts.World.Site(0)
	require.Equal(t, StateActing, n.State())
	require.Equal(t, SiteAttacked, alpha.State())

	ts.RunTicks(310)
	assert.Equal(t, SiteDestroyed, alpha.State())
	assert.Len(t, ts.World.ActiveSites(), 1)
	st, err := ts.World.SiteStateAt(geom.Point{X: 88, Y: 88})
	require.NoError(t, err)
	assert.Equal(t, SiteDestroyed, st)
	assert.True(t, ts.SimLog.HasEntry("site", "destroyed", "alpha"))
	assert.NotEqual(t, StateActing, n.State())
	assert.Equal(t, OutcomeRunning, ts.World.Outcome())
}

func TestInfiltrator_StartleDuringSabotageRepairsSite(t *testing.T) {
	ts, n := arriveAtAlpha(t, 1)
	alpha := ts.World.Site(0)
	require.Equal(t, SiteAttacked, alpha.State())

	n.behavior.OnStartled(ts.World, n)
	assert.Equal(t, SiteWorking, alpha.State())
	assert.Equal(t, StateFleeing, n.State())
	assert.Equal(t, 1, n.PendingTasks(), "sabotage timer cancelled, flee-over armed")

	ts.RunTicks(310)
	assert.Equal(t, SiteWorking, alpha.State(), "cancelled sabotage never completes")
}

func TestInfiltrator_PlayerNearbyPreventsSabotage(t *testing.T) {
	ts := newSim(t,
		WithConfig(func(c *Config) { c.Infiltrator.SabotageChance = 1 }),
		WithPlayerAt(100, 80),
		WithInfiltrator(5, 5),
	)
	ts.Step(Intent{})
	n := ts.Agents[0]
	park(n, geom.Point{X: 80, Y: 80})
	n.state = StateArrived
	n.arrivedFrom = StateNavigating
	ts.Step(Intent{})

	assert.Equal(t, StateIdle, n.State())
	assert.Equal(t, SiteWorking, ts.World.Site(0).State())
}

func TestInfiltrator_ExposedTwiceIsCaptured(t *testing.T) {
	ts := newSim(t, WithInfiltrator(2, 2))
	ts.Step(Intent{})
	w := ts.World
	n := ts.Agents[0]
	park(n, geom.Point{X: 32, Y: 32})

	n.behavior.OnExposed(w, n)
	assert.True(t, n.Exposed())
	assert.Equal(t, StateFleeing, n.State())
	assert.Equal(t, geom.Point{X: 0, Y: 0}, n.path[len(n.path)-1], "flees to the tile furthest from the player")
	assert.Equal(t, 2, n.PendingTasks(), "interval fire and flee-over")
	adds, _ := w.entities.Staged()
	assert.Equal(t, 1, adds, "fired a projectile on exposure")
	assert.Empty(t, w.Projectiles(), "projectile is staged until the next commit")

	n.behavior.OnExposed(w, n)
	assert.False(t, n.AIEnabled())
	assert.Zero(t, n.PendingTasks())
	assert.True(t, w.Brig().Contains(n.Position()))
	assert.True(t, ts.SimLog.HasEntry("exposure", "captured", ""))

	assert.Equal(t, OutcomeWon, ts.Step(Intent{}), "no autonomous infiltrators remain")
}

func TestInfiltrator_ExposureLapsesOffScreen(t *testing.T) {
	ts := newSim(t, WithInfiltrator(2, 2))
	ts.Step(Intent{})
	w := ts.World
	n := ts.Agents[0]
	park(n, geom.Point{X: 32, Y: 32})

	n.behavior.OnExposed(w, n)
	require.True(t, n.Exposed())
	w.cfg.Viewport = Size{W: 32, H: 32}
	w.updateCamera()

	ts.Step(Intent{})
	assert.False(t, n.Exposed())

	ts.RunTicks(320)
	assert.Equal(t, 1, ts.SimLog.CountCategory("combat", "fire"), "lapsed exposure stops firing")
	assert.Equal(t, 1, n.PendingTasks(), "fire task cancelled itself, flee-over remains")
}

func TestInfiltrator_IntervalFireWhileExposed(t *testing.T) {
	ts := newSim(t, WithInfiltrator(2, 2))
	ts.Step(Intent{})
	n := ts.Agents[0]
	park(n, geom.Point{X: 32, Y: 32})
	n.behavior.OnExposed(ts.World, n)

	ts.RunTicks(310)
	assert.Equal(t, 2, ts.SimLog.CountCategory("combat", "fire"), "one shot on exposure, one after the interval")
}

// walledOffSim puts the only system behind a wall no agent can cross.
func walledOffSim(t *testing.T, opts ...SimOption) *TestSim {
	t.Helper()
	base := []SimOption{
		noSabotage,
		WithMap([]string{
			"F.....#...",
			"......#...",
			"......#...",
		}, nil,
			content.Object{Name: "core", Type: content.ObjectSystem, X: 128, Y: 16, W: 16, H: 16},
			testObjects()[2],
		),
		WithPlayerAt(16, 16),
	}
	return newSim(t, append(base, opts...)...)
}

func TestNPC_SpawnWithoutRouteRetriesLater(t *testing.T) {
	ts := walledOffSim(t, WithCivilian(4, 0))
	n := ts.Agents[0]
	assert.Equal(t, StateIdle, n.State())
	assert.Equal(t, 1, n.PendingTasks(), "idle retry armed at spawn")

	ts.RunTicks(11 * 60)
	assert.GreaterOrEqual(t, ts.SimLog.CountCategory("move", "no_path"), 2)
	assert.Equal(t, 1, n.PendingTasks(), "every failed resume re-arms")
}

func TestNPC_FleeOverFailureWhileFleeingStillResumes(t *testing.T) {
	ts := walledOffSim(t, WithCivilian(4, 0))
	ts.Step(Intent{})
	n := ts.Agents[0]
	park(n, geom.Point{X: 64, Y: 0})

	n.path = []geom.Point{{X: 0, Y: 32}}
	n.heading = geom.Point{X: -1, Y: 1}
	n.state = StateFleeing
	n.fleeOver = n.tasks.Schedule(0.03, 0, Effect{Kind: EffectFleeOver})

	ts.RunTicks(3)
	require.Equal(t, StateFleeing, n.State(), "flee-over fired before the flee point was reached")
	assert.Zero(t, n.PendingTasks())
	noPath := ts.SimLog.CountCategory("move", "no_path")
	assert.GreaterOrEqual(t, noPath, 1)

	tick := ts.RunUntil(func(*TestSim) bool { return n.State() == StateIdle }, 200)
	require.NotEqual(t, -1, tick)
	assert.Equal(t, 1, n.PendingTasks(), "arrival after a spent flee-over idles with a resume")

	ts.RunTicks(11 * 60)
	assert.Greater(t, ts.SimLog.CountCategory("move", "no_path"), noPath, "resume tried again")
}

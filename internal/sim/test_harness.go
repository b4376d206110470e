package sim

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/Garsondee/Station-Sense/internal/content"
	"github.com/Garsondee/Station-Sense/internal/geom"
)

// TestSim is a headless harness used by tests and the report tool. It wraps
// a World with deterministic seeding, a small default map, and helpers to
// place agents and drive ticks.
type TestSim struct {
	World  *World
	SimLog *SimLog
	Level  *content.Level
	Agents []*NPC // agents placed by options, in option order

	// Intent is replayed every tick by RunTicks and RunUntil.
	Intent Intent
	DT     float64

	cfg       Config
	level     *content.Level
	navRows   []string
	colRows   []string
	objects   []content.Object
	brig      content.Object
	customMap bool
	start     geom.Point
	populate  bool
	logger    logrus.FieldLogger
	listeners []OutcomeListener
}

// simOptionKind controls the pass in which an option is applied.
type simOptionKind int

const (
	simOptInfra simOptionKind = iota // map, config, seed, verbose; applied before the world exists
	simOptAgent                      // agents; applied after the world is built
)

// SimOption is a builder function applied to a TestSim during construction.
type SimOption struct {
	kind simOptionKind
	fn   func(*TestSim)
}

// Default harness map: a 20x12 open room with flee points in the corners.
var testNavRows = []string{
	"F..................F",
	"....................",
	"....................",
	"....................",
	"....................",
	"....................",
	"....................",
	"....................",
	"....................",
	"....................",
	"....................",
	"F..................F",
}

const testTile = 16

var defaultBrig = content.Object{Name: "brig", X: 16 * testTile, Y: 10 * testTile, W: 3 * testTile, H: 2 * testTile}

func testObjects() []content.Object {
	return []content.Object{
		{Name: "alpha", Type: content.ObjectSystem, X: 5 * testTile, Y: 5 * testTile, W: testTile, H: testTile},
		{Name: "beta", Type: content.ObjectSystem, X: 14 * testTile, Y: 5 * testTile, W: testTile, H: testTile},
		{Name: "medbay", Type: content.ObjectMedbay, X: 0, Y: 0, W: 2 * testTile, H: 2 * testTile},
	}
}

// WithSeed sets the RNG seed for deterministic runs.
func WithSeed(seed int64) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) { ts.cfg.Seed = seed }}
}

// WithVerbose enables per-tick verbose logging.
func WithVerbose(v bool) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) { ts.SimLog = NewSimLog(v) }}
}

// WithConfig edits the run configuration.
func WithConfig(edit func(*Config)) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) { edit(&ts.cfg) }}
}

// WithMap replaces the default map. Collision rows may be nil.
func WithMap(navigation, collision []string, objects ...content.Object) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) {
		ts.navRows = navigation
		ts.colRows = collision
		ts.objects = objects
		ts.customMap = true
	}}
}

// WithLevel runs on a fully built level instead of the harness map.
func WithLevel(lvl *content.Level) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) { ts.level = lvl }}
}

// WithPlayerAt places the player at world point p.
func WithPlayerAt(x, y float64) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) { ts.start = geom.Point{X: x, Y: y} }}
}

// WithBrig sets the brig bounds used by the harness map.
func WithBrig(x, y, w, h float64) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) {
		ts.brig = content.Object{Name: "brig", X: x, Y: y, W: w, H: h}
	}}
}

// WithTestLogger routes the world's structured logs to l.
func WithTestLogger(l logrus.FieldLogger) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) { ts.logger = l }}
}

// WithOutcomeListener registers l on the world.
func WithOutcomeListener(l OutcomeListener) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) { ts.listeners = append(ts.listeners, l) }}
}

// WithPopulation stages the configured population, as a real run does.
func WithPopulation() SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) { ts.populate = true }}
}

// WithCivilian places a civilian on tile (tx, ty).
func WithCivilian(tx, ty int) SimOption {
	return SimOption{simOptAgent, func(ts *TestSim) {
		ts.Agents = append(ts.Agents, ts.World.SpawnCivilian(ts.tilePoint(tx, ty)))
	}}
}

// WithInfiltrator places an infiltrator on tile (tx, ty).
func WithInfiltrator(tx, ty int) SimOption {
	return SimOption{simOptAgent, func(ts *TestSim) {
		ts.Agents = append(ts.Agents, ts.World.SpawnInfiltrator(ts.tilePoint(tx, ty)))
	}}
}

// NewTestSim constructs a TestSim from the given options in ordered passes:
//  1. Infrastructure (map, config, seed, verbose)
//  2. Build the World
//  3. Agents
//
// The harness defaults keep the whole map on screen and disable automatic
// spawning, so only the agents placed by options exist.
func NewTestSim(opts ...SimOption) (*TestSim, error) {
	cfg := DefaultConfig()
	cfg.Viewport = Size{W: 4096, H: 4096}
	cfg.NPC.Count = 0
	cfg.Infiltrator.MaxActive = 0
	cfg.Infiltrator.MaxTotal = 0

	ts := &TestSim{
		SimLog:  NewSimLog(false),
		DT:      DefaultDT,
		cfg:     cfg,
		navRows: testNavRows,
		objects: testObjects(),
		start:   geom.Point{X: 10 * testTile, Y: 10 * testTile},
	}
	for _, o := range opts {
		if o.kind == simOptInfra {
			o.fn(ts)
		}
	}

	lvl := ts.level
	if lvl == nil {
		var err error
		lvl, err = content.FromRows(testTile, testTile, ts.navRows, ts.colRows, ts.objects)
		if err != nil {
			return nil, fmt.Errorf("harness map: %w", err)
		}
		lvl.Brig = ts.brig
		if lvl.Brig.W == 0 && lvl.Brig.H == 0 {
			lvl.Brig = defaultBrig
			if ts.customMap {
				lvl.Brig = cornerBrig(lvl)
			}
		}
		lvl.PlayerStart = &content.Vec{X: ts.start.X, Y: ts.start.Y}
		if bays := lvl.ObjectsOfType(content.ObjectMedbay); len(bays) > 0 {
			lvl.MedbaySpawn = &content.Vec{X: bays[0].X, Y: bays[0].Y}
		}
	}
	ts.Level = lvl

	worldOpts := []Option{WithSimLog(ts.SimLog)}
	if ts.logger != nil {
		worldOpts = append(worldOpts, WithLogger(ts.logger))
	}
	for _, l := range ts.listeners {
		worldOpts = append(worldOpts, WithListener(l))
	}
	w, err := NewWorld(lvl, ts.cfg, worldOpts...)
	if err != nil {
		return nil, err
	}
	ts.World = w
	if ts.populate {
		w.Populate()
	}

	for _, o := range opts {
		if o.kind == simOptAgent {
			o.fn(ts)
		}
	}
	return ts, nil
}

// cornerBrig is the brig used when a custom harness map sets none: the
// top-right tile.
func cornerBrig(lvl *content.Level) content.Object {
	w, h := lvl.Size()
	return content.Object{Name: "brig", X: w - lvl.TileWidth, Y: h - lvl.TileHeight, W: lvl.TileWidth, H: lvl.TileHeight}
}

func (ts *TestSim) tilePoint(tx, ty int) geom.Point {
	return geom.Point{X: float64(tx) * ts.Level.TileWidth, Y: float64(ty) * ts.Level.TileHeight}
}

// RunTicks advances the simulation n ticks with the current Intent.
func (ts *TestSim) RunTicks(n int) Outcome {
	for i := 0; i < n; i++ {
		ts.World.Tick(ts.DT, ts.Intent)
	}
	return ts.World.Outcome()
}

// Step advances one tick with in and returns the outcome.
func (ts *TestSim) Step(in Intent) Outcome {
	return ts.World.Tick(ts.DT, in)
}

// RunUntil advances the simulation up to maxTicks, stopping early if predicate
// returns true. Returns the tick at which the predicate was satisfied, or -1.
func (ts *TestSim) RunUntil(predicate func(*TestSim) bool, maxTicks int) int {
	for i := 0; i < maxTicks; i++ {
		ts.World.Tick(ts.DT, ts.Intent)
		if predicate(ts) {
			return ts.World.CurrentTick()
		}
	}
	return -1
}

// CurrentTick returns the current simulation tick.
func (ts *TestSim) CurrentTick() int {
	return ts.World.CurrentTick()
}

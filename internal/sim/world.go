// Package sim runs the station simulation: a player, wandering civilians and
// sabotaging infiltrators on a tile map, advanced one fixed tick at a time.
package sim

import (
	"io"
	"math"
	"math/rand"

	"github.com/sirupsen/logrus"

	"github.com/Garsondee/Station-Sense/internal/content"
	"github.com/Garsondee/Station-Sense/internal/geom"
	"github.com/Garsondee/Station-Sense/internal/nav"
	"github.com/Garsondee/Station-Sense/internal/registry"
)

// World owns every piece of simulation state. It is single-threaded; all
// mutation happens inside Tick.
type World struct {
	cfg    Config
	level  *content.Level
	grid   *nav.Grid
	rng    *rand.Rand
	log    logrus.FieldLogger
	simLog *SimLog

	entities *registry.Registry[Entity]
	player   *Player
	sites    []*Site

	medbay      geom.Rect
	medbaySpawn geom.Point
	brig        geom.Rect
	fleePoints  []geom.Point
	spawnPoints []geom.Point
	mapW, mapH  float64
	camera      geom.Rect

	tick   int
	dt     float64
	intent Intent
	nextID EntityID

	infiltratorsAdded  int
	activeInfiltrators int
	captured           int
	playerHits         int
	exposures          int

	outcome   Outcome
	listeners []OutcomeListener
}

// Option customises a World at construction.
type Option func(*World)

// WithLogger routes structured logs to l.
func WithLogger(l logrus.FieldLogger) Option {
	return func(w *World) { w.log = l }
}

// WithSimLog records machine-readable events into sl.
func WithSimLog(sl *SimLog) Option {
	return func(w *World) { w.simLog = sl }
}

// WithListener registers l for the end-of-run notification.
func WithListener(l OutcomeListener) Option {
	return func(w *World) { w.listeners = append(w.listeners, l) }
}

// WithRand replaces the seeded random source.
func WithRand(r *rand.Rand) Option {
	return func(w *World) { w.rng = r }
}

// NewWorld builds a world from a level. The player is staged immediately;
// call Populate to stage the initial agents. Map problems are reported as
// config errors.
func NewWorld(level *content.Level, cfg Config, opts ...Option) (*World, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if level == nil {
		return nil, newError(CodeConfig, "nil level")
	}
	grid, err := nav.NewGrid(level.NavigationLayer(), level.TileWidth, level.TileHeight)
	if err != nil {
		return nil, wrapError(CodeConfig, err, "navigation layer")
	}

	quiet := logrus.New()
	quiet.SetOutput(io.Discard)
	w := &World{
		cfg:      cfg,
		level:    level,
		grid:     grid,
		rng:      rand.New(rand.NewSource(cfg.Seed)), // #nosec G404 -- simulation RNG, determinism wanted
		log:      quiet,
		simLog:   NewSimLog(false),
		entities: registry.New[Entity](),
	}
	for _, o := range opts {
		o(w)
	}

	for i, obj := range level.ObjectsOfType(content.ObjectSystem) {
		w.sites = append(w.sites, &Site{ID: i, Name: obj.Name, Rect: obj.Rect()})
	}
	if len(w.sites) == 0 {
		return nil, newError(CodeConfig, "level %q has no systems", level.Name)
	}
	medbays := level.ObjectsOfType(content.ObjectMedbay)
	if len(medbays) == 0 {
		return nil, newError(CodeConfig, "level %q has no medbay", level.Name)
	}
	if err := level.CheckPlacements(); err != nil {
		return nil, wrapError(CodeConfig, err, "level %q", level.Name)
	}
	w.medbay = medbays[0].Rect()
	w.medbaySpawn = level.MedbaySpawn.Point()
	w.brig = level.Brig.Rect()
	w.fleePoints = level.FleePoints()
	w.spawnPoints = level.SpawnPoints()
	if len(w.spawnPoints) == 0 {
		return nil, newError(CodeConfig, "level %q has no traversable tiles", level.Name)
	}
	w.mapW, w.mapH = level.Size()

	start := level.PlayerStart.Point()
	if cfg.DemoMode {
		start = geom.Point{X: w.mapW / 2, Y: w.mapH / 2}
	}
	w.player = newPlayer(w, start)
	w.entities.Add(w.player)
	w.updateCamera()

	w.log.WithFields(logrus.Fields{
		"level":  level.Name,
		"sites":  len(w.sites),
		"flee":   len(w.fleePoints),
		"seed":   cfg.Seed,
		"demo":   cfg.DemoMode,
		"player": start,
	}).Info("world created")
	return w, nil
}

// Populate stages the configured civilians and the first wave of
// infiltrators at random spawn points.
func (w *World) Populate() {
	for i := 0; i < w.cfg.Infiltrator.MaxActive; i++ {
		w.SpawnInfiltrator(w.randomSpawn())
	}
	for i := 0; i < w.cfg.NPC.Count; i++ {
		w.SpawnCivilian(w.randomSpawn())
	}
}

// SpawnCivilian stages a civilian at pos heading for a random site.
func (w *World) SpawnCivilian(pos geom.Point) *NPC {
	return w.spawn(pos, civilian{})
}

// SpawnInfiltrator stages an infiltrator at pos heading for a random site.
// It counts toward the lifetime infiltrator cap.
func (w *World) SpawnInfiltrator(pos geom.Point) *NPC {
	w.infiltratorsAdded++
	return w.spawn(pos, &infiltrator{})
}

func (w *World) spawn(pos geom.Point, b Behavior) *NPC {
	n := newNPC(w, pos, b)
	if err := n.navigateToRandomSite(w); err != nil {
		n.log.WithError(err).Debug("spawned without a destination")
		n.idleFor(w, n.idleRange(w))
	}
	w.entities.Add(n)
	w.simLog.Add(w.tick, n.label, n.Kind().String(), "spawn", "added",
		pointString(pos), n.speed)
	return n
}

func (w *World) randomSpawn() geom.Point {
	return w.spawnPoints[w.rng.Intn(len(w.spawnPoints))]
}

// spawnReplacements tops up infiltrators while under the active target and
// the lifetime cap allows. The spawn point must be off screen.
func (w *World) spawnReplacements() {
	ic := w.cfg.Infiltrator
	if w.activeInfiltrators >= ic.MaxActive || w.infiltratorsAdded >= ic.MaxTotal {
		return
	}
	size := w.cfg.EntitySize
	for attempt := 0; attempt < len(w.spawnPoints); attempt++ {
		p := w.randomSpawn()
		if w.OnScreen(geom.Rect{X: p.X, Y: p.Y, W: size, H: size}) {
			continue
		}
		n := w.SpawnInfiltrator(p)
		n.log.Info("replacement infiltrator spawned")
		return
	}
	w.log.Debug("no off-screen spawn point for replacement")
}

// updateCamera centres the viewport on the player. Demo runs watch the
// whole map.
func (w *World) updateCamera() {
	if w.cfg.DemoMode {
		w.camera = geom.Rect{X: 0, Y: 0, W: w.mapW, H: w.mapH}
		return
	}
	c := w.player.Center()
	vw, vh := w.cfg.Viewport.W, w.cfg.Viewport.H
	w.camera = geom.Rect{X: c.X - vw/2, Y: c.Y - vh/2, W: vw, H: vh}
}

// OnScreen reports whether r overlaps the viewport.
func (w *World) OnScreen(r geom.Rect) bool { return w.camera.Overlaps(r) }

// solidAt reports whether the collision layer is solid at p. Anything
// outside the map is solid.
func (w *World) solidAt(p geom.Point) bool {
	x := int(math.Floor(p.X / w.level.TileWidth))
	y := int(math.Floor(p.Y / w.level.TileHeight))
	col := w.level.CollisionLayer()
	if x < 0 || y < 0 || x >= col.Width() || y >= col.Height() {
		return true
	}
	return col.HasTile(x, y)
}

// uniform samples r.
func (w *World) uniform(r Range) float64 {
	return r.Min + w.rng.Float64()*(r.Max-r.Min)
}

// Accessors for renderers and reports. They never mutate.

func (w *World) Config() Config           { return w.cfg }
func (w *World) Level() *content.Level    { return w.level }
func (w *World) Player() *Player          { return w.player }
func (w *World) Camera() geom.Rect        { return w.camera }
func (w *World) CurrentTick() int         { return w.tick }
func (w *World) Outcome() Outcome         { return w.outcome }
func (w *World) SimLog() *SimLog          { return w.simLog }
func (w *World) Brig() geom.Rect          { return w.brig }
func (w *World) Medbay() geom.Rect        { return w.medbay }
func (w *World) FleePoints() []geom.Point { return w.fleePoints }

// Charge is the player's ray charge in [0, 1].
func (w *World) Charge() float64 { return w.player.charge }

// Ray returns the end point of the player's last discharge and whether it is
// still visible.
func (w *World) Ray() (geom.Point, bool) { return w.player.Ray() }

// ActiveInfiltrators is the number of autonomous infiltrators counted on the
// last tick.
func (w *World) ActiveInfiltrators() int { return w.activeInfiltrators }

// InfiltratorsAdded is the lifetime number of infiltrators spawned.
func (w *World) InfiltratorsAdded() int { return w.infiltratorsAdded }

// Entities returns the live set.
func (w *World) Entities() []Entity { return w.entities.Live() }

// NPCs returns the live autonomous agents.
func (w *World) NPCs() []*NPC {
	var out []*NPC
	for _, e := range w.entities.Live() {
		if n, ok := e.(*NPC); ok {
			out = append(out, n)
		}
	}
	return out
}

// Projectiles returns the live projectiles.
func (w *World) Projectiles() []*Projectile {
	var out []*Projectile
	for _, e := range w.entities.Live() {
		if p, ok := e.(*Projectile); ok {
			out = append(out, p)
		}
	}
	return out
}

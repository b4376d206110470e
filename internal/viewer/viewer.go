// Package viewer renders a running station simulation with ebiten and feeds
// keyboard and mouse input back into it as player intents.
package viewer

import (
	"github.com/atotto/clipboard"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/sirupsen/logrus"
	"golang.org/x/image/font/basicfont"

	"github.com/Garsondee/Station-Sense/internal/sim"
)

// borderWidth is the pixel gap between the window edge and the playfield.
const borderWidth = 16

// statusFrames is how long a status message stays on the HUD.
const statusFrames = 120

// Game adapts a sim.World to ebiten.Game.
type Game struct {
	world  *sim.World
	log    logrus.FieldLogger
	events *EventLog
	face   text.Face

	fieldW, fieldH int
	width, height  int
	mapImg         *ebiten.Image

	keys    *keyTracker
	pending sim.Intent // edge-triggered actions waiting for the next tick

	simSpeed  float64 // multiplier: 0=paused, 0.5, 1, 2, 4
	tickAccum float64

	showHUD bool
	reveal  bool // draw hidden infiltrators differently

	status       string
	statusFrames int

	copyText func(string) error
}

// New wraps w. The playfield is sized so the configured viewport fits at an
// integer-ish scale.
func New(w *sim.World, log logrus.FieldLogger) *Game {
	cam := w.Camera()
	fieldW, fieldH := 960, 576
	if cam.W > 0 && cam.H > 0 && cam.W*float64(fieldH) < cam.H*float64(fieldW) {
		fieldW = int(cam.W * float64(fieldH) / cam.H)
	}
	g := &Game{
		world:    w,
		log:      log,
		events:   NewEventLog("move", "state"),
		face:     text.NewGoXFace(basicfont.Face7x13),
		fieldW:   fieldW,
		fieldH:   fieldH,
		width:    borderWidth*2 + fieldW + panelWidth,
		height:   borderWidth*2 + fieldH,
		keys:     newKeyTracker(ebiten.IsKeyPressed),
		simSpeed: 1,
		showHUD:  true,
		copyText: clipboard.WriteAll,
	}
	g.mapImg = renderMap(w)
	return g
}

// Size returns the window size the game wants.
func (g *Game) Size() (int, int) { return g.width, g.height }

// Update handles input every frame and advances the world according to the
// speed setting.
func (g *Game) Update() error {
	v := g.view()
	mx, my := ebiten.CursorPosition()
	in := heldIntent(g.keys, ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft), v.toWorld(mx, my))
	g.handleKeys()
	g.keys.endFrame()

	if g.statusFrames > 0 {
		g.statusFrames--
	}
	if g.world.Outcome() != sim.OutcomeRunning || g.simSpeed <= 0 {
		return nil
	}

	g.tickAccum += g.simSpeed
	for g.tickAccum >= 1 {
		g.tickAccum--
		in.Interact = g.pending.Interact
		in.Retreat = g.pending.Retreat
		g.pending = sim.Intent{}
		if g.world.Tick(sim.DefaultDT, in) != sim.OutcomeRunning {
			g.tickAccum = 0
			break
		}
	}
	g.events.Sync(g.world.SimLog())
	return nil
}

// handleKeys processes the edge-triggered keys.
func (g *Game) handleKeys() {
	k := g.keys
	if k.pressed(ebiten.KeyE) {
		g.pending.Interact = true
	}
	if k.pressed(ebiten.KeyQ) {
		g.pending.Retreat = true
	}
	if k.pressed(ebiten.KeyH) {
		g.showHUD = !g.showHUD
	}
	if k.pressed(ebiten.KeyI) {
		g.reveal = !g.reveal
	}
	if k.pressed(ebiten.KeyP) {
		if g.simSpeed > 0 {
			g.simSpeed = 0
		} else {
			g.simSpeed = 1
		}
	}
	if k.pressed(ebiten.KeyComma) {
		g.simSpeed = slower(g.simSpeed)
	}
	if k.pressed(ebiten.KeyPeriod) {
		g.simSpeed = faster(g.simSpeed)
	}
	if k.pressed(ebiten.KeyC) {
		g.copyLog()
	}
}

// copyLog puts the full SimLog on the system clipboard.
func (g *Game) copyLog() {
	sl := g.world.SimLog()
	if err := g.copyText(sl.Format()); err != nil {
		g.log.WithError(err).Warn("clipboard copy failed")
		g.setStatus("copy failed")
		return
	}
	g.log.WithField("entries", sl.Len()).Info("sim log copied")
	g.setStatus("log copied")
}

func (g *Game) setStatus(s string) {
	g.status = s
	g.statusFrames = statusFrames
}

func (g *Game) view() view {
	return newView(g.world.Camera(), float64(g.fieldW), float64(g.fieldH), borderWidth, borderWidth)
}

// Layout implements ebiten.Game.
func (g *Game) Layout(_, _ int) (int, int) {
	return g.width, g.height
}

// Package termview renders a running station simulation in a terminal, one
// character cell per map tile.
package termview

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/sirupsen/logrus"

	"github.com/Garsondee/Station-Sense/internal/content"
	"github.com/Garsondee/Station-Sense/internal/geom"
	"github.com/Garsondee/Station-Sense/internal/sim"
)

const maxTicksPerFrame = 16

var (
	styleFloor     = tcell.StyleDefault.Foreground(tcell.ColorDimGray)
	styleWall      = tcell.StyleDefault.Foreground(tcell.ColorSlateGray)
	styleFlee      = tcell.StyleDefault.Foreground(tcell.ColorOlive)
	styleWorking   = tcell.StyleDefault.Foreground(tcell.ColorTeal).Bold(true)
	styleAttacked  = tcell.StyleDefault.Foreground(tcell.ColorOrange).Bold(true)
	styleDestroyed = tcell.StyleDefault.Foreground(tcell.ColorMaroon)
	styleCivilian  = tcell.StyleDefault.Foreground(tcell.ColorLightSteelBlue)
	styleInfil     = tcell.StyleDefault.Foreground(tcell.ColorPlum)
	styleExposed   = tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true)
	styleCaptured  = tcell.StyleDefault.Foreground(tcell.ColorGray)
	stylePlayer    = tcell.StyleDefault.Foreground(tcell.ColorLime).Bold(true)
	styleShot      = tcell.StyleDefault.Foreground(tcell.ColorFuchsia)
	styleStatus    = tcell.StyleDefault.Foreground(tcell.ColorWhite)
)

// View draws a world onto a tcell screen and drives it in real time.
type View struct {
	screen tcell.Screen
	world  *sim.World
	log    logrus.FieldLogger

	ticksPerFrame int
	paused        bool
}

// New binds w to an initialised screen.
func New(screen tcell.Screen, w *sim.World, log logrus.FieldLogger) *View {
	return &View{screen: screen, world: w, log: log, ticksPerFrame: 1}
}

// Run polls input and advances the world at fps until ctx ends or the user
// quits. A finished run stays on screen until quit.
func (v *View) Run(ctx context.Context, fps int) error {
	if fps <= 0 {
		return fmt.Errorf("fps must be positive, got %d", fps)
	}
	ticker := time.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()

	events := make(chan tcell.Event, 64)
	quit := make(chan struct{})
	defer close(quit)
	go v.screen.ChannelEvents(events, quit)

	v.Render()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if !v.HandleEvent(ev) {
				return nil
			}
		case <-ticker.C:
			v.Advance()
			v.Render()
		}
	}
}

// Advance runs one frame's worth of ticks.
func (v *View) Advance() {
	if v.paused || v.world.Outcome() != sim.OutcomeRunning {
		return
	}
	for i := 0; i < v.ticksPerFrame; i++ {
		if v.world.Tick(sim.DefaultDT, sim.Intent{}) != sim.OutcomeRunning {
			v.log.WithField("outcome", v.world.Outcome().String()).Info("run finished")
			return
		}
	}
}

// HandleEvent applies one input event. It returns false when the user quits.
func (v *View) HandleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch ev.Key() {
		case tcell.KeyEscape, tcell.KeyCtrlC:
			return false
		case tcell.KeyRune:
			switch ev.Rune() {
			case 'q':
				return false
			case ' ':
				v.paused = !v.paused
			case '+', '=':
				v.ticksPerFrame = min(v.ticksPerFrame*2, maxTicksPerFrame)
			case '-':
				v.ticksPerFrame = max(v.ticksPerFrame/2, 1)
			}
		}
	case *tcell.EventResize:
		v.screen.Sync()
	}
	return true
}

// Paused reports whether ticking is suspended.
func (v *View) Paused() bool { return v.paused }

// TicksPerFrame is the current speed.
func (v *View) TicksPerFrame() int { return v.ticksPerFrame }

// Render redraws the whole screen.
func (v *View) Render() {
	v.screen.Clear()
	v.drawTiles()
	v.drawSites()
	v.drawEntities()
	v.drawStatus()
	v.screen.Show()
}

// cell maps a world point to its terminal cell. Tile rows are flipped so
// north is up.
func (v *View) cell(p geom.Point) (int, int) {
	lvl := v.world.Level()
	tx := int(math.Floor(p.X / lvl.TileWidth))
	ty := int(math.Floor(p.Y / lvl.TileHeight))
	return tx, lvl.NavigationLayer().Height() - 1 - ty
}

func (v *View) drawTiles() {
	lvl := v.world.Level()
	nav, col := lvl.NavigationLayer(), lvl.CollisionLayer()
	h := nav.Height()
	for ty := 0; ty < h; ty++ {
		for tx := 0; tx < nav.Width(); tx++ {
			switch {
			case col.HasTile(tx, ty):
				v.screen.SetContent(tx, h-1-ty, '#', nil, styleWall)
			case nav.At(tx, ty) == content.GlyphFleePoint:
				v.screen.SetContent(tx, h-1-ty, 'F', nil, styleFlee)
			case nav.HasTile(tx, ty):
				v.screen.SetContent(tx, h-1-ty, '.', nil, styleFloor)
			}
		}
	}
}

func (v *View) drawSites() {
	for _, s := range v.world.Sites() {
		x, y := v.cell(s.Rect.Center())
		switch s.State() {
		case sim.SiteAttacked:
			v.screen.SetContent(x, y, 'X', nil, styleAttacked)
		case sim.SiteDestroyed:
			v.screen.SetContent(x, y, 'x', nil, styleDestroyed)
		default:
			v.screen.SetContent(x, y, 'S', nil, styleWorking)
		}
	}
}

func (v *View) drawEntities() {
	for _, n := range v.world.NPCs() {
		x, y := v.cell(n.Center())
		r, st := 'c', styleCivilian
		if n.Kind() == sim.AgentInfiltrator {
			r, st = 'i', styleInfil
		}
		switch {
		case !n.AIEnabled():
			st = styleCaptured
		case n.Exposed():
			r, st = 'I', styleExposed
		}
		v.screen.SetContent(x, y, r, nil, st)
	}
	for _, p := range v.world.Projectiles() {
		x, y := v.cell(p.Bounds().Center())
		v.screen.SetContent(x, y, '*', nil, styleShot)
	}
	x, y := v.cell(v.world.Player().Center())
	v.screen.SetContent(x, y, '@', nil, stylePlayer)
}

func (v *View) drawStatus() {
	r := v.world.Report()
	state := "running"
	switch {
	case r.Outcome != sim.OutcomeRunning:
		state = r.Outcome.String() + " (" + r.Description + ")"
	case v.paused:
		state = "paused"
	}
	lines := []string{
		fmt.Sprintf("T=%d %s x%d", r.Tick, state, v.ticksPerFrame),
		fmt.Sprintf("systems %d/%d  infiltrators active=%d spawned=%d captured=%d",
			r.SitesTotal-r.SitesDestroyed, r.SitesTotal, r.ActiveInfiltrators, r.InfiltratorsSpawned, r.InfiltratorsCaptured),
		"space pause  +/- speed  q quit",
	}
	y := v.world.Level().NavigationLayer().Height() + 1
	for i, l := range lines {
		for x, ch := range []rune(l) {
			v.screen.SetContent(x, y+i, ch, nil, styleStatus)
		}
	}
}

package viewer

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/Garsondee/Station-Sense/internal/content"
	"github.com/Garsondee/Station-Sense/internal/geom"
	"github.com/Garsondee/Station-Sense/internal/sim"
)

var (
	colSpace     = color.RGBA{R: 6, G: 8, B: 14, A: 255}
	colFloor     = color.RGBA{R: 36, G: 40, B: 52, A: 255}
	colFloorAlt  = color.RGBA{R: 40, G: 44, B: 57, A: 255}
	colWall      = color.RGBA{R: 78, G: 84, B: 100, A: 255}
	colWallLight = color.RGBA{R: 120, G: 128, B: 150, A: 200}
	colFleePoint = color.RGBA{R: 60, G: 70, B: 50, A: 255}
	colMedbay    = color.RGBA{R: 40, G: 110, B: 90, A: 90}
	colBrig      = color.RGBA{R: 120, G: 60, B: 60, A: 90}
	colTeleport  = color.RGBA{R: 120, G: 80, B: 200, A: 160}
	colCrew      = color.RGBA{R: 150, G: 170, B: 200, A: 255}
	colRevealed  = color.RGBA{R: 170, G: 120, B: 210, A: 255}
	colExposed   = color.RGBA{R: 230, G: 60, B: 60, A: 255}
	colCaptured  = color.RGBA{R: 90, G: 90, B: 90, A: 255}
	colPlayer    = color.RGBA{R: 90, G: 220, B: 110, A: 255}
	colRay       = color.RGBA{R: 120, G: 230, B: 255, A: 230}
	colBorder    = color.RGBA{R: 60, G: 70, B: 100, A: 255}
)

// shotColors tints a projectile by the debuff it carries.
var shotColors = map[sim.Debuff]color.RGBA{
	sim.DebuffConfuse: {R: 255, G: 120, B: 200, A: 255},
	sim.DebuffSlow:    {R: 250, G: 200, B: 60, A: 255},
	sim.DebuffBlind:   {R: 245, G: 245, B: 245, A: 255},
}

// siteColor is the fill used for a system in state s. Attacked systems pulse
// with tick.
func siteColor(s sim.SiteState, tick int) color.RGBA {
	switch s {
	case sim.SiteAttacked:
		if (tick/15)%2 == 0 {
			return color.RGBA{R: 240, G: 150, B: 40, A: 255}
		}
		return color.RGBA{R: 160, G: 90, B: 20, A: 255}
	case sim.SiteDestroyed:
		return color.RGBA{R: 90, G: 20, B: 20, A: 255}
	default:
		return color.RGBA{R: 60, G: 190, B: 210, A: 255}
	}
}

// renderMap draws the static tile layers once into a world-sized image with
// y flipped so row 0 of the image is the top of the map.
func renderMap(w *sim.World) *ebiten.Image {
	lvl := w.Level()
	mw, mh := lvl.Size()
	img := ebiten.NewImage(int(mw), int(mh))
	img.Fill(colSpace)
	nav, col := lvl.NavigationLayer(), lvl.CollisionLayer()
	tw, th := float32(lvl.TileWidth), float32(lvl.TileHeight)
	for ty := 0; ty < nav.Height(); ty++ {
		for tx := 0; tx < nav.Width(); tx++ {
			x := float32(tx) * tw
			y := float32(mh) - float32(ty+1)*th
			switch {
			case col.HasTile(tx, ty):
				vector.FillRect(img, x, y, tw, th, colWall, false)
				vector.StrokeLine(img, x, y, x+tw, y, 1, colWallLight, false)
			case nav.At(tx, ty) == content.GlyphFleePoint:
				vector.FillRect(img, x, y, tw, th, colFleePoint, false)
			case nav.HasTile(tx, ty):
				c := colFloor
				if (tx+ty)%2 == 0 {
					c = colFloorAlt
				}
				vector.FillRect(img, x, y, tw, th, c, false)
			}
		}
	}
	return img
}

// Draw implements ebiten.Game.
func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(color.RGBA{R: 4, G: 5, B: 9, A: 255})
	v := g.view()
	vw, vh := v.size()
	field := screen.SubImage(image.Rect(borderWidth, borderWidth,
		borderWidth+int(math.Ceil(float64(vw))), borderWidth+int(math.Ceil(float64(vh))))).(*ebiten.Image)

	g.drawMap(field, v)
	g.drawObjects(field, v)
	g.drawAgents(field, v)
	g.drawPlayer(field, v)
	if g.world.Player().Blinded() {
		vector.FillRect(field, borderWidth, borderWidth, vw, vh, color.RGBA{A: 235}, false)
	}

	vector.StrokeRect(screen, borderWidth-1, borderWidth-1, vw+2, vh+2, 2, colBorder, false)
	g.events.Draw(screen, g.face, borderWidth*2+g.fieldW, g.height)
	if g.showHUD {
		g.drawHUD(screen)
	}
	if o := g.world.Outcome(); o != sim.OutcomeRunning {
		g.drawOutcome(screen, o)
	}
}

func (g *Game) drawMap(dst *ebiten.Image, v view) {
	_, mh := g.world.Level().Size()
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Translate(-v.cam.X, -(mh - v.cam.Y - v.cam.H))
	op.GeoM.Scale(v.scale, v.scale)
	op.GeoM.Translate(v.offX, v.offY)
	dst.DrawImage(g.mapImg, op)
}

func (g *Game) drawObjects(dst *ebiten.Image, v view) {
	w := g.world
	x, y, rw, rh := v.rect(w.Medbay())
	vector.FillRect(dst, x, y, rw, rh, colMedbay, false)
	x, y, rw, rh = v.rect(w.Brig())
	vector.FillRect(dst, x, y, rw, rh, colBrig, false)
	for _, tp := range w.Level().ObjectsOfType(content.ObjectTeleporter) {
		x, y, rw, rh = v.rect(tp.Rect())
		vector.StrokeRect(dst, x, y, rw, rh, 2, colTeleport, false)
	}
	for _, s := range w.Sites() {
		x, y, rw, rh = v.rect(s.Rect)
		vector.FillRect(dst, x, y, rw, rh, siteColor(s.State(), w.CurrentTick()), false)
		vector.StrokeRect(dst, x, y, rw, rh, 1, color.Black, false)
	}
}

func (g *Game) agentColor(n *sim.NPC) color.RGBA {
	switch {
	case !n.AIEnabled():
		return colCaptured
	case n.Exposed():
		return colExposed
	case g.reveal && n.Kind() == sim.AgentInfiltrator:
		return colRevealed
	default:
		return colCrew
	}
}

func (g *Game) drawAgents(dst *ebiten.Image, v view) {
	for _, n := range g.world.NPCs() {
		x, y, rw, rh := v.rect(n.Bounds())
		vector.FillRect(dst, x, y, rw, rh, g.agentColor(n), false)
		if vel := n.Velocity(); !vel.IsZero() {
			cx, cy := v.toScreen(n.Center())
			tx, ty := v.toScreen(n.Center().Add(vel.WithLength(n.Bounds().W * 0.75)))
			vector.StrokeLine(dst, cx, cy, tx, ty, 1, color.White, false)
		}
	}
	for _, p := range g.world.Projectiles() {
		cx, cy := v.toScreen(p.Bounds().Center())
		vector.FillCircle(dst, cx, cy, float32(p.Bounds().W*v.scale/2), shotColors[p.Debuff()], false)
	}
}

func (g *Game) drawPlayer(dst *ebiten.Image, v view) {
	p := g.world.Player()
	x, y, rw, rh := v.rect(p.Bounds())
	vector.FillRect(dst, x, y, rw, rh, colPlayer, false)

	rad := (p.Rotation() + 90) * math.Pi / 180
	c := p.Center()
	cx, cy := v.toScreen(c)
	hx, hy := v.toScreen(c.Add(geom.Point{X: math.Cos(rad), Y: math.Sin(rad)}.Scale(p.Bounds().W)))
	vector.StrokeLine(dst, cx, cy, hx, hy, 2, colPlayer, false)

	if ch := g.world.Charge(); ch > 0 {
		vector.FillRect(dst, x, y-6, rw*float32(ch), 3, colRay, false)
	}
	if end, ok := g.world.Ray(); ok {
		ex, ey := v.toScreen(end)
		vector.StrokeLine(dst, cx, cy, ex, ey, 3, colRay, true)
		vector.FillCircle(dst, ex, ey, 4, colRay, true)
	}
}

func (g *Game) drawHUD(screen *ebiten.Image) {
	w := g.world
	p := w.Player()
	r := w.Report()

	speed := fmt.Sprintf("%.1fx", g.simSpeed)
	if g.simSpeed == 0 {
		speed = "PAUSED"
	}
	mode := ""
	if w.Config().DemoMode {
		mode = "  DEMO"
	}
	debuffs := ""
	if p.Confused() {
		debuffs += " confused"
	}
	if p.Slowed() {
		debuffs += " slowed"
	}
	if p.Blinded() {
		debuffs += " blinded"
	}

	lines := []string{
		fmt.Sprintf("T=%d  %s%s", w.CurrentTick(), speed, mode),
		fmt.Sprintf("Health %3.0f%%  Charge %3.0f%%%s", p.Health()*100, p.Charge()*100, debuffs),
		fmt.Sprintf("Systems %d/%d  Infiltrators %d active  %d caught",
			r.SitesTotal-r.SitesDestroyed, r.SitesTotal, r.ActiveInfiltrators, r.InfiltratorsCaptured),
		"WASD move  click/space charge  E teleport  Q medbay",
		"P pause  ,/. speed  I reveal  C copy log  H hide",
	}
	if g.statusFrames > 0 {
		lines = append(lines, g.status)
	}

	x, y := borderWidth+6, borderWidth+4
	vector.FillRect(screen, float32(x-4), float32(y-2), 380, float32(len(lines)*lineHeight+6),
		color.RGBA{R: 6, G: 8, B: 16, A: 200}, false)
	for i, l := range lines {
		drawText(screen, g.face, l, x, y+i*lineHeight, color.White)
	}
}

func (g *Game) drawOutcome(screen *ebiten.Image, o sim.Outcome) {
	msg := "STATION SECURED"
	if o == sim.OutcomeLost {
		msg = "STATION LOST"
	}
	msg = fmt.Sprintf("%s  (%s)  C copies the log", msg, g.world.Report().Description)
	ebitenutil.DebugPrintAt(screen, msg, borderWidth+g.fieldW/2-len(msg)*3, borderWidth+g.fieldH/2)
}

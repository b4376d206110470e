package viewer

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/Garsondee/Station-Sense/internal/sim"
)

const (
	panelWidth    = 320
	eventCapacity = 80
	lineHeight    = 13
)

// categoryColors tints the event panel by SimLog category.
var categoryColors = map[string]color.RGBA{
	"site":     {R: 230, G: 150, B: 60, A: 255},
	"exposure": {R: 230, G: 70, B: 70, A: 255},
	"combat":   {R: 220, G: 110, B: 200, A: 255},
	"player":   {R: 110, G: 210, B: 120, A: 255},
	"ray":      {R: 110, G: 200, B: 230, A: 255},
	"spawn":    {R: 150, G: 150, B: 170, A: 255},
	"outcome":  {R: 250, G: 230, B: 90, A: 255},
}

// EventLog is a ring buffer of recent SimLog entries rendered beside the
// playfield. It follows a SimLog by position and drops the chatty
// categories.
type EventLog struct {
	entries []sim.SimLogEntry
	head    int
	count   int
	cursor  int
	skip    map[string]bool
}

// NewEventLog creates an event log that ignores the given categories.
func NewEventLog(skip ...string) *EventLog {
	el := &EventLog{
		entries: make([]sim.SimLogEntry, eventCapacity),
		skip:    make(map[string]bool, len(skip)),
	}
	for _, c := range skip {
		el.skip[c] = true
	}
	return el
}

// Add appends an entry, evicting the oldest once full.
func (el *EventLog) Add(e sim.SimLogEntry) {
	if el.skip[e.Category] {
		return
	}
	el.entries[el.head] = e
	el.head = (el.head + 1) % eventCapacity
	if el.count < eventCapacity {
		el.count++
	}
}

// Sync pulls every entry sl has recorded since the last call.
func (el *EventLog) Sync(sl *sim.SimLog) {
	for _, e := range sl.Since(el.cursor) {
		el.Add(e)
	}
	el.cursor = sl.Len()
}

// Recent returns entries oldest first.
func (el *EventLog) Recent() []sim.SimLogEntry {
	out := make([]sim.SimLogEntry, el.count)
	for i := 0; i < el.count; i++ {
		out[i] = el.entries[(el.head-el.count+i+eventCapacity)%eventCapacity]
	}
	return out
}

// Draw renders the panel at panelX, newest entry at the bottom.
func (el *EventLog) Draw(screen *ebiten.Image, face text.Face, panelX, panelH int) {
	px := float32(panelX)
	vector.FillRect(screen, px, 0, panelWidth, float32(panelH), color.RGBA{R: 8, G: 10, B: 16, A: 248}, false)
	vector.StrokeLine(screen, px, 0, px, float32(panelH), 1, color.RGBA{R: 50, G: 60, B: 90, A: 255}, false)
	vector.FillRect(screen, px, 0, panelWidth, 18, color.RGBA{R: 18, G: 22, B: 36, A: 255}, false)
	drawText(screen, face, "STATION LOG", panelX+8, 3, color.White)

	entries := el.Recent()
	maxVisible := (panelH - 24) / lineHeight
	if len(entries) > maxVisible {
		entries = entries[len(entries)-maxVisible:]
	}
	y := 22
	for i, e := range entries {
		if i >= len(entries)-3 {
			vector.FillRect(screen, px+2, float32(y), panelWidth-4, lineHeight, color.RGBA{R: 24, G: 30, B: 48, A: 160}, false)
		}
		c, ok := categoryColors[e.Category]
		if !ok {
			c = color.RGBA{R: 180, G: 180, B: 180, A: 255}
		}
		vector.FillRect(screen, px+5, float32(y+4), 3, 5, c, false)
		line := fmt.Sprintf("%5d %-3s %s %s", e.Tick, e.Agent, e.Key, e.Value)
		drawText(screen, face, line, panelX+12, y, c)
		y += lineHeight
	}
}

func drawText(dst *ebiten.Image, face text.Face, s string, x, y int, c color.Color) {
	op := &text.DrawOptions{}
	op.GeoM.Translate(float64(x), float64(y))
	op.ColorScale.ScaleWithColor(c)
	text.Draw(dst, s, face, op)
}

// Package content loads station levels: the navigation layer, the separate
// collision layer, and the named objects placed on the map.
package content

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Garsondee/Station-Sense/internal/geom"
	"github.com/Garsondee/Station-Sense/internal/nav"
)

//go:embed station.yaml
var defaultLevel []byte

// Layer glyphs.
const (
	GlyphFloor     = '.'
	GlyphFleePoint = 'F'
	GlyphSolid     = '#'
)

// Object types understood by the simulation.
const (
	ObjectSystem     = "system"
	ObjectMedbay     = "medbay"
	ObjectTeleporter = "teleporter"
)

// Object is a named rectangle on the object layer, in world coordinates.
type Object struct {
	Name   string  `yaml:"name"`
	Type   string  `yaml:"type"`
	X      float64 `yaml:"x"`
	Y      float64 `yaml:"y"`
	W      float64 `yaml:"w"`
	H      float64 `yaml:"h"`
	Linked string  `yaml:"linked,omitempty"`
}

// Rect returns the object's bounds.
func (o Object) Rect() geom.Rect { return geom.Rect{X: o.X, Y: o.Y, W: o.W, H: o.H} }

// Vec is a YAML-friendly world point.
type Vec struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

// Point converts v to a geom.Point.
func (v Vec) Point() geom.Point { return geom.Point{X: v.X, Y: v.Y} }

// Level is a parsed station map. Layer rows are written top-down in the
// file, so row i holds tile y = height-1-i.
type Level struct {
	Name        string   `yaml:"name"`
	TileWidth   float64  `yaml:"tile_width"`
	TileHeight  float64  `yaml:"tile_height"`
	Navigation  []string `yaml:"navigation"`
	Collision   []string `yaml:"collision"`
	Objects     []Object `yaml:"objects"`
	Brig        Object   `yaml:"brig"`
	MedbaySpawn *Vec     `yaml:"medbay_spawn"`
	PlayerStart *Vec     `yaml:"player_start"`

	nav       *Layer
	collision *Layer
}

// ErrPlacement is wrapped by every error about the brig, the medbay spawn or
// the player start.
var ErrPlacement = errors.New("invalid placement")

// Default returns the built-in station level.
func Default() (*Level, error) {
	return Parse(defaultLevel)
}

// Load reads and parses a level file.
func Load(path string) (*Level, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read level %s: %w", path, err)
	}
	lvl, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("level %s: %w", path, err)
	}
	return lvl, nil
}

// Parse decodes and validates a level document.
func Parse(data []byte) (*Level, error) {
	var lvl Level
	if err := yaml.Unmarshal(data, &lvl); err != nil {
		return nil, fmt.Errorf("decode level: %w", err)
	}
	if err := lvl.build(); err != nil {
		return nil, err
	}
	if err := lvl.CheckPlacements(); err != nil {
		return nil, err
	}
	return &lvl, nil
}

// FromRows builds a level in code, mostly for tests and tools. The layer and
// object validation of Parse applies; the caller sets the brig, medbay spawn
// and player start afterwards, and CheckPlacements covers them.
func FromRows(tileW, tileH float64, navigation, collision []string, objects []Object) (*Level, error) {
	lvl := &Level{
		Name:       "inline",
		TileWidth:  tileW,
		TileHeight: tileH,
		Navigation: navigation,
		Collision:  collision,
		Objects:    objects,
	}
	if err := lvl.build(); err != nil {
		return nil, err
	}
	return lvl, nil
}

func (l *Level) build() error {
	if l.TileWidth <= 0 || l.TileHeight <= 0 {
		return fmt.Errorf("tile size %.1fx%.1f must be positive", l.TileWidth, l.TileHeight)
	}
	navLayer, err := newLayer("navigation", l.Navigation)
	if err != nil {
		return err
	}
	if len(l.Collision) == 0 {
		l.Collision = blankRows(navLayer.w, navLayer.h)
	}
	colLayer, err := newLayer("collision", l.Collision)
	if err != nil {
		return err
	}
	if colLayer.w != navLayer.w || colLayer.h != navLayer.h {
		return fmt.Errorf("collision layer %dx%d does not match navigation layer %dx%d",
			colLayer.w, colLayer.h, navLayer.w, navLayer.h)
	}

	names := make(map[string]bool, len(l.Objects))
	for _, o := range l.Objects {
		if o.Name == "" {
			return fmt.Errorf("object of type %q has no name", o.Type)
		}
		if names[o.Name] {
			return fmt.Errorf("duplicate object name %q", o.Name)
		}
		names[o.Name] = true
		if o.W <= 0 || o.H <= 0 {
			return fmt.Errorf("object %q has empty bounds", o.Name)
		}
	}
	for _, o := range l.Objects {
		if o.Type == ObjectTeleporter {
			if o.Linked == "" || !names[o.Linked] {
				return fmt.Errorf("teleporter %q links to unknown object %q", o.Name, o.Linked)
			}
		}
	}

	l.nav = navLayer
	l.collision = colLayer
	return nil
}

// CheckPlacements rejects a level whose brig, medbay spawn or player start is
// missing, off the map, or on a solid collision tile. The brig is judged by
// its centre.
func (l *Level) CheckPlacements() error {
	if l.nav == nil {
		return fmt.Errorf("level %q is not built: %w", l.Name, ErrPlacement)
	}
	if l.Brig.W <= 0 || l.Brig.H <= 0 {
		return fmt.Errorf("brig is missing or has empty bounds: %w", ErrPlacement)
	}
	if err := l.checkPoint("brig", l.Brig.Rect().Center()); err != nil {
		return err
	}
	if l.MedbaySpawn == nil {
		return fmt.Errorf("medbay_spawn is missing: %w", ErrPlacement)
	}
	if err := l.checkPoint("medbay_spawn", l.MedbaySpawn.Point()); err != nil {
		return err
	}
	if l.PlayerStart == nil {
		return fmt.Errorf("player_start is missing: %w", ErrPlacement)
	}
	return l.checkPoint("player_start", l.PlayerStart.Point())
}

func (l *Level) checkPoint(what string, p geom.Point) error {
	w, h := l.Size()
	if p.X < 0 || p.Y < 0 || p.X >= w || p.Y >= h {
		return fmt.Errorf("%s (%.0f,%.0f) lies outside the %.0fx%.0f map: %w", what, p.X, p.Y, w, h, ErrPlacement)
	}
	x, y := int(p.X/l.TileWidth), int(p.Y/l.TileHeight)
	if l.collision.HasTile(x, y) {
		return fmt.Errorf("%s (%.0f,%.0f) is on solid tile (%d,%d): %w", what, p.X, p.Y, x, y, ErrPlacement)
	}
	return nil
}

// NavigationLayer is the layer the navigation grid is built from.
func (l *Level) NavigationLayer() *Layer { return l.nav }

// CollisionLayer is the solid-tile layer used for movement and projectiles.
func (l *Level) CollisionLayer() *Layer { return l.collision }

// Size returns the map size in world units.
func (l *Level) Size() (w, h float64) {
	return float64(l.nav.w) * l.TileWidth, float64(l.nav.h) * l.TileHeight
}

// ObjectsOfType returns the objects of type typ in file order.
func (l *Level) ObjectsOfType(typ string) []Object {
	var out []Object
	for _, o := range l.Objects {
		if o.Type == typ {
			out = append(out, o)
		}
	}
	return out
}

// Object looks up an object by name.
func (l *Level) Object(name string) (Object, bool) {
	for _, o := range l.Objects {
		if o.Name == name {
			return o, true
		}
	}
	return Object{}, false
}

// FleePoints returns the world corners of every navigation tile marked as
// a flee point.
func (l *Level) FleePoints() []geom.Point {
	var out []geom.Point
	for y := 0; y < l.nav.h; y++ {
		for x := 0; x < l.nav.w; x++ {
			if l.nav.At(x, y) == GlyphFleePoint {
				out = append(out, l.tileCorner(x, y))
			}
		}
	}
	return out
}

// SpawnPoints returns the world corners of every navigation tile.
func (l *Level) SpawnPoints() []geom.Point {
	var out []geom.Point
	for y := 0; y < l.nav.h; y++ {
		for x := 0; x < l.nav.w; x++ {
			if l.nav.HasTile(x, y) {
				out = append(out, l.tileCorner(x, y))
			}
		}
	}
	return out
}

func (l *Level) tileCorner(x, y int) geom.Point {
	return geom.Point{X: float64(x) * l.TileWidth, Y: float64(y) * l.TileHeight}
}

// Layer is a rectangular tile layer. A cell holds a glyph; space and '#'
// mean "no tile" on the navigation layer, while on the collision layer any
// non-space glyph is solid.
type Layer struct {
	name  string
	w, h  int
	cells []byte
}

var _ nav.Layer = (*Layer)(nil)

func newLayer(name string, rows []string) (*Layer, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%s layer is empty", name)
	}
	w := len(rows[0])
	if w == 0 {
		return nil, fmt.Errorf("%s layer has zero width", name)
	}
	h := len(rows)
	ly := &Layer{name: name, w: w, h: h, cells: make([]byte, w*h)}
	for i, row := range rows {
		if len(row) != w {
			return nil, fmt.Errorf("%s layer row %d has width %d, want %d", name, i, len(row), w)
		}
		y := h - 1 - i
		copy(ly.cells[y*w:(y+1)*w], row)
	}
	return ly, nil
}

func blankRows(w, h int) []string {
	rows := make([]string, h)
	for i := range rows {
		rows[i] = strings.Repeat(" ", w)
	}
	return rows
}

// Width returns the layer width in tiles.
func (ly *Layer) Width() int { return ly.w }

// Height returns the layer height in tiles.
func (ly *Layer) Height() int { return ly.h }

// At returns the glyph at (x, y), or 0 off the layer.
func (ly *Layer) At(x, y int) byte {
	if x < 0 || y < 0 || x >= ly.w || y >= ly.h {
		return 0
	}
	return ly.cells[y*ly.w+x]
}

// HasTile reports whether (x, y) carries a tile. Off-layer cells do not.
func (ly *Layer) HasTile(x, y int) bool {
	c := ly.At(x, y)
	switch ly.name {
	case "navigation":
		return c == GlyphFloor || c == GlyphFleePoint
	default:
		return c != 0 && c != ' ' && c != GlyphFloor
	}
}

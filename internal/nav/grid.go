// Package nav provides the navigation grid and A* path search used by every
// autonomous agent on the station.
package nav

import (
	"fmt"
	"math"

	"github.com/Garsondee/Station-Sense/internal/geom"
)

// Layer is a source tile layer. A cell either carries a tile or is empty.
type Layer interface {
	Width() int
	Height() int
	HasTile(x, y int) bool
}

// Cells is an in-memory Layer indexed [y][x].
type Cells [][]bool

func (c Cells) Width() int {
	if len(c) == 0 {
		return 0
	}
	return len(c[0])
}

func (c Cells) Height() int           { return len(c) }
func (c Cells) HasTile(x, y int) bool { return c[y][x] }

// Tile is an integer grid coordinate.
type Tile struct {
	X, Y int
}

// Grid is a 2D walkability grid where true = traversable.
// It is built once and never mutated afterwards, so it may be shared freely.
type Grid struct {
	cols  int
	rows  int
	tileW float64
	tileH float64
	open  []bool
}

// NewGrid builds a grid from the navigation layer. Every cell is visited
// exactly once; a cell without a tile is not traversable.
func NewGrid(layer Layer, tileW, tileH float64) (*Grid, error) {
	if layer == nil {
		return nil, fmt.Errorf("nav: nil navigation layer")
	}
	cols, rows := layer.Width(), layer.Height()
	if cols <= 0 || rows <= 0 {
		return nil, fmt.Errorf("nav: navigation layer is %dx%d", cols, rows)
	}
	if tileW <= 0 || tileH <= 0 {
		return nil, fmt.Errorf("nav: tile size %.1fx%.1f must be positive", tileW, tileH)
	}

	g := &Grid{
		cols:  cols,
		rows:  rows,
		tileW: tileW,
		tileH: tileH,
		open:  make([]bool, cols*rows),
	}
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			g.open[y*cols+x] = layer.HasTile(x, y)
		}
	}
	return g, nil
}

// Cols returns the grid width in tiles.
func (g *Grid) Cols() int { return g.cols }

// Rows returns the grid height in tiles.
func (g *Grid) Rows() int { return g.rows }

// TileSize returns the world-space size of one tile.
func (g *Grid) TileSize() (w, h float64) { return g.tileW, g.tileH }

// InBounds reports whether (x, y) lies on the grid.
func (g *Grid) InBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < g.cols && y < g.rows
}

// Traversable reports whether the tile at (x, y) can be walked on.
// Callers must bounds-check first; an off-grid query panics.
func (g *Grid) Traversable(x, y int) bool {
	if !g.InBounds(x, y) {
		panic(fmt.Sprintf("nav: tile (%d,%d) outside %dx%d grid", x, y, g.cols, g.rows))
	}
	return g.open[y*g.cols+x]
}

// ToTile converts a world coordinate to the tile containing it.
func (g *Grid) ToTile(p geom.Point) Tile {
	return Tile{int(math.Floor(p.X / g.tileW)), int(math.Floor(p.Y / g.tileH))}
}

// ToWorld converts a tile to the world coordinate of its bottom-left corner.
func (g *Grid) ToWorld(t Tile) geom.Point {
	return geom.Point{X: float64(t.X) * g.tileW, Y: float64(t.Y) * g.tileH}
}

// TraversableTiles returns every walkable tile in row-major order.
func (g *Grid) TraversableTiles() []Tile {
	var out []Tile
	for y := 0; y < g.rows; y++ {
		for x := 0; x < g.cols; x++ {
			if g.open[y*g.cols+x] {
				out = append(out, Tile{x, y})
			}
		}
	}
	return out
}

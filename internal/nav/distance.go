package nav

import (
	"math"
	"sort"

	"github.com/Garsondee/Station-Sense/internal/geom"
)

// Distance is the straight-line distance between two world points.
func Distance(a, b geom.Point) float64 {
	return math.Sqrt(math.Pow(b.X-a.X, 2) + math.Pow(b.Y-a.Y, 2))
}

// TileDistance is Distance measured in tile units.
func TileDistance(a, b Tile) float64 {
	return Distance(geom.Point{X: float64(a.X), Y: float64(a.Y)}, geom.Point{X: float64(b.X), Y: float64(b.Y)})
}

// Furthest returns the world position of the traversable tile furthest from
// p. Ties keep the first tile in row-major order. ok is false when no
// traversable tile lies any distance away.
func (g *Grid) Furthest(p geom.Point) (geom.Point, bool) {
	from := g.ToTile(p)
	longest := 0.0
	var best Tile
	found := false
	for y := 0; y < g.rows; y++ {
		for x := 0; x < g.cols; x++ {
			if !g.open[y*g.cols+x] {
				continue
			}
			t := Tile{x, y}
			if d := TileDistance(from, t); d > longest {
				longest = d
				best = t
				found = true
			}
		}
	}
	if !found {
		return geom.Point{}, false
	}
	return g.ToWorld(best), true
}

// NearestN returns up to n candidates closest to p, skipping any that lie
// within minDist of it. Equal distances keep candidate order.
func NearestN(p geom.Point, candidates []geom.Point, n int, minDist float64) []geom.Point {
	if n <= 0 {
		return nil
	}
	type ranked struct {
		pt   geom.Point
		dist float64
	}
	near := geom.Circle{Center: p, Radius: minDist}
	pool := make([]ranked, 0, len(candidates))
	for _, c := range candidates {
		if near.Contains(c) {
			continue
		}
		pool = append(pool, ranked{c, Distance(p, c)})
	}
	sort.SliceStable(pool, func(i, j int) bool { return pool[i].dist < pool[j].dist })
	if len(pool) > n {
		pool = pool[:n]
	}
	out := make([]geom.Point, len(pool))
	for i, r := range pool {
		out[i] = r.pt
	}
	return out
}

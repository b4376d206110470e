package nav

import (
	"container/heap"
	"errors"

	"github.com/Garsondee/Station-Sense/internal/geom"
)

// ErrNoPath is returned when the open set empties before the destination
// tile is reached.
var ErrNoPath = errors.New("nav: no path between points")

// --- A* pathfinding ---

type pathNode struct {
	tile   Tile
	parent *pathNode
	cost   int // steps from the start tile
	score  int // int(straight-line distance to destination) + cost
	seq    int // insertion order, breaks score ties
	index  int // heap index
}

func newPathNode(t Tile, parent *pathNode, dest Tile, seq int) *pathNode {
	n := &pathNode{tile: t, parent: parent, seq: seq}
	if parent != nil {
		n.cost = parent.cost + 1
	}
	n.score = int(TileDistance(t, dest)) + n.cost
	return n
}

type openList []*pathNode

func (ol openList) Len() int { return len(ol) }
func (ol openList) Less(i, j int) bool {
	if ol[i].score != ol[j].score {
		return ol[i].score < ol[j].score
	}
	return ol[i].seq < ol[j].seq
}
func (ol openList) Swap(i, j int)       { ol[i], ol[j] = ol[j], ol[i]; ol[i].index = i; ol[j].index = j }
func (ol *openList) Push(x interface{}) { n := x.(*pathNode); n.index = len(*ol); *ol = append(*ol, n) }
func (ol *openList) Pop() interface{} {
	old := *ol
	n := old[len(old)-1]
	old[len(old)-1] = nil
	*ol = old[:len(old)-1]
	return n
}

var (
	orthogonalDirs = [4][2]int{{0, -1}, {-1, 0}, {1, 0}, {0, 1}}
	diagonalDirs   = [4][2]int{{-1, -1}, {1, -1}, {-1, 1}, {1, 1}}
)

// walkable is the bounds-checked form of Traversable used while expanding
// neighbours; off-grid cells are never expanded into.
func (g *Grid) walkable(x, y int) bool {
	return g.InBounds(x, y) && g.open[y*g.cols+x]
}

// successors returns the 8-connected neighbours of n in a fixed order:
// orthogonal first, then diagonal. A diagonal step needs both flanking
// orthogonal cells to be walkable so paths never cut wall corners.
func (g *Grid) successors(n *pathNode, dest Tile, seq *int) []*pathNode {
	out := make([]*pathNode, 0, 8)
	for _, d := range orthogonalDirs {
		tx, ty := n.tile.X+d[0], n.tile.Y+d[1]
		if g.walkable(tx, ty) {
			*seq++
			out = append(out, newPathNode(Tile{tx, ty}, n, dest, *seq))
		}
	}
	for _, d := range diagonalDirs {
		tx, ty := n.tile.X+d[0], n.tile.Y+d[1]
		if g.walkable(tx, ty) && g.walkable(n.tile.X, ty) && g.walkable(tx, n.tile.Y) {
			*seq++
			out = append(out, newPathNode(Tile{tx, ty}, n, dest, *seq))
		}
	}
	return out
}

// FindTilePath runs A* between two tiles and returns the tile sequence from
// the first step after start up to and including dest. Every step costs 1,
// diagonal or not. Returns ErrNoPath when dest cannot be reached.
func (g *Grid) FindTilePath(start, dest Tile) ([]Tile, error) {
	if start == dest {
		return nil, nil
	}

	seq := 0
	ol := &openList{newPathNode(start, nil, dest, seq)}
	heap.Init(ol)
	inOpen := map[Tile]bool{start: true}
	closed := make(map[Tile]bool)

	for ol.Len() > 0 {
		cur := heap.Pop(ol).(*pathNode)
		delete(inOpen, cur.tile)
		for _, next := range g.successors(cur, dest, &seq) {
			if next.tile == dest {
				return buildTilePath(next), nil
			}
			if closed[next.tile] || inOpen[next.tile] {
				continue
			}
			inOpen[next.tile] = true
			heap.Push(ol, next)
		}
		closed[cur.tile] = true
	}
	return nil, ErrNoPath
}

func buildTilePath(end *pathNode) []Tile {
	var tiles []Tile
	for n := end; n.parent != nil; n = n.parent {
		tiles = append(tiles, n.tile)
	}
	// Reverse
	for i, j := 0, len(tiles)-1; i < j; i, j = i+1, j-1 {
		tiles[i], tiles[j] = tiles[j], tiles[i]
	}
	return tiles
}

// FindPath returns world-coordinate waypoints from start to dest. Each
// intermediate waypoint is the corner of a path tile; the final waypoint is
// dest itself so agents finish exactly on target.
func (g *Grid) FindPath(start, dest geom.Point) ([]geom.Point, error) {
	tiles, err := g.FindTilePath(g.ToTile(start), g.ToTile(dest))
	if err != nil {
		return nil, err
	}
	path := make([]geom.Point, 0, len(tiles)+1)
	for _, t := range tiles {
		path = append(path, g.ToWorld(t))
	}
	return append(path, dest), nil
}

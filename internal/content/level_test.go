package content

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Garsondee/Station-Sense/internal/geom"
	"github.com/Garsondee/Station-Sense/internal/nav"
)

func TestDefaultLevel(t *testing.T) {
	lvl, err := Default()
	require.NoError(t, err)

	assert.Equal(t, 60, lvl.NavigationLayer().Width())
	assert.Equal(t, 36, lvl.NavigationLayer().Height())
	w, h := lvl.Size()
	assert.Equal(t, 960.0, w)
	assert.Equal(t, 576.0, h)

	assert.Len(t, lvl.ObjectsOfType(ObjectSystem), 11)
	require.Len(t, lvl.ObjectsOfType(ObjectMedbay), 1)
	assert.NotEmpty(t, lvl.FleePoints())

	grid, err := nav.NewGrid(lvl.NavigationLayer(), lvl.TileWidth, lvl.TileHeight)
	require.NoError(t, err)

	// Every system is placed on floor and reachable from the player start.
	start := lvl.PlayerStart.Point()
	for _, sys := range lvl.ObjectsOfType(ObjectSystem) {
		tile := grid.ToTile(sys.Rect().Min())
		require.True(t, grid.InBounds(tile.X, tile.Y), sys.Name)
		assert.True(t, grid.Traversable(tile.X, tile.Y), "%s sits on floor", sys.Name)
		_, err := grid.FindPath(start, sys.Rect().Min())
		assert.NoError(t, err, "%s reachable", sys.Name)
	}

	// Floor is never solid, so the player can walk where NPCs path.
	col := lvl.CollisionLayer()
	for _, p := range lvl.SpawnPoints() {
		tile := grid.ToTile(p)
		assert.False(t, col.HasTile(tile.X, tile.Y), "floor tile %v is solid", tile)
	}
}

func TestRowsAreFlipped(t *testing.T) {
	lvl, err := FromRows(10, 10,
		[]string{
			"F..",
			"...",
			"   ",
		},
		[]string{
			"   ",
			"   ",
			"###",
		}, nil)
	require.NoError(t, err)

	navLayer := lvl.NavigationLayer()
	assert.False(t, navLayer.HasTile(0, 0), "bottom file row is tile y=0")
	assert.True(t, navLayer.HasTile(0, 2))
	assert.Equal(t, byte(GlyphFleePoint), navLayer.At(0, 2))
	assert.Equal(t, []geom.Point{{X: 0, Y: 20}}, lvl.FleePoints())
	assert.Len(t, lvl.SpawnPoints(), 6)

	col := lvl.CollisionLayer()
	assert.True(t, col.HasTile(1, 0))
	assert.False(t, col.HasTile(1, 1))
	assert.False(t, col.HasTile(-1, 0), "off-layer reports no tile")
}

func TestMissingCollisionLayerIsBlank(t *testing.T) {
	lvl, err := FromRows(16, 16, []string{"..", ".."}, nil, nil)
	require.NoError(t, err)
	assert.False(t, lvl.CollisionLayer().HasTile(0, 0))
	assert.Equal(t, 2, lvl.CollisionLayer().Width())
}

func TestLevelValidation(t *testing.T) {
	tests := []struct {
		name      string
		tile      float64
		nav       []string
		collision []string
		objects   []Object
		wantErr   string
	}{
		{name: "zero tile size", tile: 0, nav: []string{"."}, wantErr: "tile size"},
		{name: "empty navigation", tile: 16, wantErr: "navigation layer is empty"},
		{name: "ragged rows", tile: 16, nav: []string{"..", "."}, wantErr: "row 1"},
		{name: "layer mismatch", tile: 16, nav: []string{".."}, collision: []string{"#"}, wantErr: "does not match"},
		{
			name: "dangling teleporter", tile: 16, nav: []string{".."},
			objects: []Object{{Name: "a", Type: ObjectTeleporter, W: 1, H: 1, Linked: "b"}},
			wantErr: "unknown object",
		},
		{
			name: "duplicate names", tile: 16, nav: []string{".."},
			objects: []Object{{Name: "a", Type: ObjectSystem, W: 1, H: 1}, {Name: "a", Type: ObjectSystem, W: 1, H: 1}},
			wantErr: "duplicate",
		},
		{
			name: "empty object", tile: 16, nav: []string{".."},
			objects: []Object{{Name: "a", Type: ObjectSystem}},
			wantErr: "empty bounds",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := FromRows(tc.tile, tc.tile, tc.nav, tc.collision, tc.objects)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tiny.yaml")
	doc := `
name: tiny
tile_width: 8
tile_height: 8
navigation:
  - "..."
  - ".F."
objects:
  - {name: core, type: system, x: 8, y: 0, w: 8, h: 8}
  - {name: bay, type: medbay, x: 0, y: 0, w: 8, h: 8}
brig: {name: brig, x: 16, y: 0, w: 8, h: 8}
medbay_spawn: {x: 0, y: 0}
player_start: {x: 16, y: 8}
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

	lvl, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "tiny", lvl.Name)
	assert.Equal(t, geom.Point{X: 16, Y: 8}, lvl.PlayerStart.Point())
	core, ok := lvl.Object("core")
	require.True(t, ok)
	assert.Equal(t, geom.Rect{X: 8, Y: 0, W: 8, H: 8}, core.Rect())
	assert.Equal(t, []geom.Point{{X: 8, Y: 0}}, lvl.FleePoints())

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestParse_Placements(t *testing.T) {
	const head = `
name: tiny
tile_width: 8
tile_height: 8
navigation:
  - "..."
  - "..."
collision:
  - "  #"
  - "   "
objects:
  - {name: core, type: system, x: 8, y: 0, w: 8, h: 8}
  - {name: bay, type: medbay, x: 0, y: 0, w: 8, h: 8}
`
	const (
		brig   = "brig: {name: brig, x: 8, y: 8, w: 8, h: 8}\n"
		medbay = "medbay_spawn: {x: 0, y: 0}\n"
		start  = "player_start: {x: 0, y: 8}\n"
	)
	tests := []struct {
		name    string
		tail    string
		wantErr string
	}{
		{name: "missing brig", tail: medbay + start, wantErr: "brig is missing"},
		{name: "empty brig", tail: "brig: {name: brig, x: 8, y: 8}\n" + medbay + start, wantErr: "brig is missing"},
		{name: "missing medbay spawn", tail: brig + start, wantErr: "medbay_spawn is missing"},
		{name: "missing player start", tail: brig + medbay, wantErr: "player_start is missing"},
		{name: "brig off the map", tail: "brig: {name: brig, x: 40, y: 0, w: 8, h: 8}\n" + medbay + start, wantErr: "outside"},
		{name: "medbay spawn off the map", tail: brig + "medbay_spawn: {x: -1, y: 0}\n" + start, wantErr: "outside"},
		{name: "player start on solid", tail: brig + medbay + "player_start: {x: 16, y: 8}\n", wantErr: "solid tile (2,1)"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(head + tc.tail))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrPlacement))
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}

	lvl, err := Parse([]byte(head + brig + medbay + start))
	require.NoError(t, err)
	assert.Equal(t, geom.Point{X: 0, Y: 8}, lvl.PlayerStart.Point())
}

func TestCheckPlacements_FromRowsNeedsThemSet(t *testing.T) {
	lvl, err := FromRows(16, 16, []string{"..", ".."}, nil, nil)
	require.NoError(t, err)
	assert.True(t, errors.Is(lvl.CheckPlacements(), ErrPlacement))

	lvl.Brig = Object{Name: "brig", X: 16, Y: 16, W: 16, H: 16}
	lvl.MedbaySpawn = &Vec{}
	lvl.PlayerStart = &Vec{X: 16, Y: 0}
	assert.NoError(t, lvl.CheckPlacements())
}

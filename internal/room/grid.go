package room

import "errors"

var (
	// ErrTileNotFound is returned for coordinates outside the grid.
	ErrTileNotFound = errors.New("tile not found")
	// ErrTileClosed is returned when a tile exists but its state is not Open.
	ErrTileClosed = errors.New("tile closed")
	// ErrTileOccupied is returned when another actor stands on the tile.
	ErrTileOccupied = errors.New("tile occupied")
	// ErrItemStacked is returned when a tile already carries an item.
	ErrItemStacked = errors.New("tile already has an item")
)

// TileGrid owns every TileInstance of a room, one per coordinate, for the
// lifetime of the room. Lookups are O(1) into a flat slice; there is no
// grid-wide lock.
type TileGrid struct {
	width  int32
	height int32
	tiles  []*TileInstance // [y*width + x]
}

// NewTileGrid allocates width*height closed tiles.
func NewTileGrid(width, height int32, actors ActorLookup) *TileGrid {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	g := &TileGrid{
		width:  width,
		height: height,
		tiles:  make([]*TileInstance, int(width)*int(height)),
	}
	for y := int32(0); y < height; y++ {
		for x := int32(0); x < width; x++ {
			g.tiles[int(y)*int(width)+int(x)] = NewTileInstance(x, y, actors)
		}
	}
	return g
}

func (g *TileGrid) Width() int32  { return g.width }
func (g *TileGrid) Height() int32 { return g.height }

// InBounds reports whether (x, y) addresses a tile of this grid.
func (g *TileGrid) InBounds(x, y int32) bool {
	return x >= 0 && y >= 0 && x < g.width && y < g.height
}

// Tile returns the tile at (x, y) or ErrTileNotFound.
func (g *TileGrid) Tile(x, y int32) (*TileInstance, error) {
	if !g.InBounds(x, y) {
		return nil, ErrTileNotFound
	}
	return g.tiles[int(y)*int(g.width)+int(x)], nil
}

// OpenTile is Tile plus a state check: a closed tile yields ErrTileClosed.
func (g *TileGrid) OpenTile(x, y int32) (*TileInstance, error) {
	t, err := g.Tile(x, y)
	if err != nil {
		return nil, err
	}
	if t.GetTileState() != TileStateOpen {
		return nil, ErrTileClosed
	}
	return t, nil
}

// Each calls fn for every tile in row-major order.
func (g *TileGrid) Each(fn func(t *TileInstance)) {
	for _, t := range g.tiles {
		fn(t)
	}
}

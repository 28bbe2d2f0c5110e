package game

// MissMarker is drawn on a fired cell that holds no ship.
const MissMarker = 'o'

// Cell is one grid position. It refers to its ship by index into the owning
// board's ship list; it does not own the ship.
type Cell struct {
	Col, Row int
	Fragment int
	Fired    bool

	board *Board
	ship  int // -1 when empty
}

// Ship returns the occupying ship or nil.
func (c *Cell) Ship() *Ship {
	if c.board == nil || c.ship < 0 {
		return nil
	}
	return c.board.ships[c.ship]
}

func (c *Cell) Occupied() bool { return c.board != nil && c.ship >= 0 }

// Hit reports whether the cell was fired upon and holds a ship.
func (c *Cell) Hit() bool { return c.Fired && c.Occupied() }

// FireAt resolves a shot on this cell. It returns false if the cell was
// already fired upon, leaving everything unchanged.
func (c *Cell) FireAt() bool {
	if c.board == nil {
		panic("game: fire on a cell that belongs to no board")
	}
	if c.Fired {
		return false
	}
	if s := c.Ship(); s != nil {
		s.Scorch()
	}
	c.Fired = true
	c.board.obs.notify(Event{Kind: CellFired, Cell: c})
	return true
}

// Symbol is the cell's true contents. Callers showing an enemy board must
// hide occupied cells that are not yet fired.
func (c *Cell) Symbol() rune {
	if s := c.Ship(); s != nil {
		return s.Symbol(c.Fragment)
	}
	if c.Fired {
		return MissMarker
	}
	return ' '
}

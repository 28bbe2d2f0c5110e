package game

// Board is one player's waters: a Rows x Cols grid of cells and the ships
// placed on it.
type Board struct {
	Cols, Rows int

	cells [][]Cell // [row][col]
	ships []*Ship  // placement order
	obs   listeners
}

func NewBoard(cols, rows int) *Board {
	if cols <= 0 || rows <= 0 {
		panic("game: board dimensions must be positive")
	}
	b := &Board{Cols: cols, Rows: rows}
	b.cells = make([][]Cell, rows)
	for r := 0; r < rows; r++ {
		b.cells[r] = make([]Cell, cols)
		for c := 0; c < cols; c++ {
			b.cells[r][c] = Cell{Col: c, Row: r, board: b, ship: -1}
		}
	}
	return b
}

func (b *Board) InBounds(x, y int) bool {
	return x >= 0 && x < b.Cols && y >= 0 && y < b.Rows
}

// Cell returns the cell at column x, row y.
func (b *Board) Cell(x, y int) (*Cell, bool) {
	if !b.InBounds(x, y) {
		return nil, false
	}
	return &b.cells[y][x], true
}

// PlaceShip puts ship with its top-left cell at (x, y). It returns false and
// changes nothing if the footprint leaves the board, overlaps another ship,
// or the ship has already been placed.
func (b *Board) PlaceShip(ship *Ship, x, y int, vertical bool) bool {
	if ship.Placed {
		return false
	}
	w, h := ship.Length, 1
	if vertical {
		w, h = 1, ship.Length
	}
	if x < 0 || x+w > b.Cols || y < 0 || y+h > b.Rows {
		return false
	}
	for row := y; row < y+h; row++ {
		for col := x; col < x+w; col++ {
			if b.cells[row][col].ship >= 0 {
				return false
			}
		}
	}

	idx := len(b.ships)
	b.ships = append(b.ships, ship)
	ship.Origin = Coord{Col: x, Row: y}
	ship.Orientation = Horizontal
	if vertical {
		ship.Orientation = Vertical
	}
	for row := y; row < y+h; row++ {
		for col := x; col < x+w; col++ {
			cell := &b.cells[row][col]
			cell.ship = idx
			cell.Fragment = (col - x) + (row - y)
			cell.Fired = false
		}
	}
	ship.place()
	b.obs.notify(Event{Kind: ShipPlaced, Ship: ship})
	return true
}

// FireAt fires at column x, row y. Out of bounds and already fired cells
// return false.
func (b *Board) FireAt(x, y int) bool {
	cell, ok := b.Cell(x, y)
	if !ok {
		return false
	}
	return cell.FireAt()
}

// Ships returns the placed ships in placement order.
func (b *Board) Ships() []*Ship {
	out := make([]*Ship, len(b.ships))
	copy(out, b.ships)
	return out
}

// Ship returns the i-th placed ship, or nil.
func (b *Board) Ship(i int) *Ship {
	if i < 0 || i >= len(b.ships) {
		return nil
	}
	return b.ships[i]
}

func (b *Board) LivingShips() int { return CountAfloat(b.ships) }

// Unfired counts cells not yet fired upon.
func (b *Board) Unfired() int {
	n := 0
	for r := range b.cells {
		for c := range b.cells[r] {
			if !b.cells[r][c].Fired {
				n++
			}
		}
	}
	return n
}

// Occupancy flattens the board row-major: 1 where a ship sits, 0 for water.
func (b *Board) Occupancy() []uint8 {
	out := make([]uint8, 0, b.Rows*b.Cols)
	for r := 0; r < b.Rows; r++ {
		for c := 0; c < b.Cols; c++ {
			var v uint8
			if b.cells[r][c].ship >= 0 {
				v = 1
			}
			out = append(out, v)
		}
	}
	return out
}

func (b *Board) Subscribe(fn Listener) Handle { return b.obs.add(fn) }

func (b *Board) Unsubscribe(h Handle) { b.obs.remove(h) }

package game

import (
	"math/rand"
	"testing"
)

func TestNewBoardCells(t *testing.T) {
	b := NewBoard(7, 4)
	for r := 0; r < 4; r++ {
		for c := 0; c < 7; c++ {
			cell, ok := b.Cell(c, r)
			if !ok {
				t.Fatalf("cell (%d,%d) missing", c, r)
			}
			if cell.Col != c || cell.Row != r {
				t.Fatalf("cell at (%d,%d) reports (%d,%d)", c, r, cell.Col, cell.Row)
			}
			if cell.Occupied() || cell.Fired || cell.Symbol() != ' ' {
				t.Fatalf("cell (%d,%d) should start empty", c, r)
			}
		}
	}
	if _, ok := b.Cell(7, 0); ok {
		t.Fatal("column 7 should be out of bounds")
	}
	if b.Unfired() != 28 {
		t.Fatalf("unfired = %d, want 28", b.Unfired())
	}
}

func TestPlaceShip(t *testing.T) {
	cases := []struct {
		name     string
		x, y     int
		vertical bool
		ok       bool
	}{
		{"horizontal fits", 2, 2, false, true},
		{"vertical fits", 9, 7, true, true},
		{"horizontal touches right edge", 7, 0, false, true},
		{"horizontal past right edge", 8, 0, false, false},
		{"vertical past bottom", 0, 8, true, false},
		{"negative column", -1, 0, false, false},
		{"negative row", 0, -1, true, false},
		{"origin at columns", 10, 0, true, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b := NewBoard(10, 10)
			s := NewShip("SUB")
			if got := b.PlaceShip(s, tc.x, tc.y, tc.vertical); got != tc.ok {
				t.Fatalf("PlaceShip = %v, want %v", got, tc.ok)
			}
			if !tc.ok {
				if s.Placed || len(b.Ships()) != 0 {
					t.Fatal("rejected placement mutated state")
				}
				return
			}
			fp := s.Footprint()
			if len(fp) != s.Length {
				t.Fatalf("footprint has %d cells, want %d", len(fp), s.Length)
			}
			for i, p := range fp {
				cell, _ := b.Cell(p.Col, p.Row)
				if cell.Ship() != s {
					t.Fatalf("cell %v not occupied by ship", p)
				}
				if cell.Fragment != i {
					t.Errorf("fragment at %v = %d, want %d", p, cell.Fragment, i)
				}
				if tc.vertical && (p.Col != tc.x || p.Row != tc.y+i) {
					t.Errorf("vertical fragment %d at %v", i, p)
				}
				if !tc.vertical && (p.Row != tc.y || p.Col != tc.x+i) {
					t.Errorf("horizontal fragment %d at %v", i, p)
				}
			}
		})
	}
}

func occupiedCount(b *Board) int {
	n := 0
	for _, v := range b.Occupancy() {
		n += int(v)
	}
	return n
}

func TestPlaceShipOverlapRejected(t *testing.T) {
	b := NewBoard(10, 10)
	first := NewShip("YACHT")
	if !b.PlaceShip(first, 0, 3, false) {
		t.Fatal("first placement failed")
	}
	before := b.Occupancy()

	second := NewShip("BARK")
	if b.PlaceShip(second, 2, 0, true) {
		t.Fatal("crossing placement should fail")
	}
	after := b.Occupancy()
	for i := range before {
		if before[i] != after[i] {
			t.Fatalf("occupancy changed at %d after rejected placement", i)
		}
	}
	if second.Placed {
		t.Fatal("rejected ship marked placed")
	}
	if !b.PlaceShip(second, 2, 4, true) {
		t.Fatal("adjacent placement should succeed")
	}
	if occupiedCount(b) != first.Length+second.Length {
		t.Fatalf("occupied cells = %d", occupiedCount(b))
	}
}

func TestPlaceShipTwiceRejected(t *testing.T) {
	b := NewBoard(10, 10)
	s := NewShip("TUG")
	if !b.PlaceShip(s, 0, 0, false) {
		t.Fatal("placement failed")
	}
	if b.PlaceShip(s, 5, 5, false) {
		t.Fatal("second placement of the same ship should fail")
	}
	if s.Origin != (Coord{0, 0}) || occupiedCount(b) != 3 {
		t.Fatal("second placement mutated the board")
	}
}

func TestFireAtSinksShip(t *testing.T) {
	b := NewBoard(10, 10)
	s := NewShip("TUG")
	if !b.PlaceShip(s, 2, 2, false) {
		t.Fatal("placement failed")
	}
	for i, x := range []int{2, 3, 4} {
		if !b.FireAt(x, 2) {
			t.Fatalf("shot %d at (%d,2) rejected", i, x)
		}
		if s.Health != s.Length-i-1 {
			t.Fatalf("health after %d hits = %d", i+1, s.Health)
		}
	}
	if !s.Sunk() {
		t.Fatal("ship should be sunk")
	}
	if b.LivingShips() != 0 {
		t.Fatalf("living ships = %d", b.LivingShips())
	}
}

func TestFireAtTwice(t *testing.T) {
	b := NewBoard(10, 10)
	s := NewShip("TUG")
	b.PlaceShip(s, 2, 2, false)
	if !b.FireAt(2, 2) {
		t.Fatal("first shot rejected")
	}
	if b.FireAt(2, 2) {
		t.Fatal("second shot on same cell accepted")
	}
	if s.Health != 2 {
		t.Fatalf("health = %d, want 2", s.Health)
	}
}

func TestFireAtOutOfBounds(t *testing.T) {
	b := NewBoard(5, 5)
	for _, p := range []Coord{{-1, 0}, {0, -1}, {5, 0}, {0, 5}} {
		if b.FireAt(p.Col, p.Row) {
			t.Errorf("FireAt(%v) accepted", p)
		}
	}
	if b.Unfired() != 25 {
		t.Fatal("out of bounds shots mutated the board")
	}
}

func TestFireEveryCellOnce(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	b := NewBoard(6, 6)
	fleet := NewFleet([]string{"BARK", "SUB", "PT"})
	for _, s := range fleet {
		for !b.PlaceShip(s, rng.Intn(6), rng.Intn(6), rng.Intn(2) == 1) {
		}
	}
	for y := 0; y < 6; y++ {
		for x := 0; x < 6; x++ {
			if !b.FireAt(x, y) {
				t.Fatalf("first shot at (%d,%d) rejected", x, y)
			}
			if b.FireAt(x, y) {
				t.Fatalf("repeat shot at (%d,%d) accepted", x, y)
			}
		}
	}
	if b.LivingShips() != 0 {
		t.Fatal("all ships should be sunk once every cell is fired")
	}
}

func TestCellSymbols(t *testing.T) {
	b := NewBoard(4, 4)
	s := NewShip("PT")
	b.PlaceShip(s, 1, 1, true)

	water, _ := b.Cell(0, 0)
	b.FireAt(0, 0)
	if water.Symbol() != MissMarker {
		t.Errorf("miss symbol = %q", water.Symbol())
	}
	bow, _ := b.Cell(1, 1)
	stern, _ := b.Cell(1, 2)
	if bow.Symbol() != 'P' || stern.Symbol() != 'T' {
		t.Errorf("ship symbols = %q %q", bow.Symbol(), stern.Symbol())
	}
	b.FireAt(1, 2)
	if !stern.Hit() || stern.Symbol() != 'T' {
		t.Error("hit cell should keep the fragment symbol")
	}
}

func TestZeroCellFirePanics(t *testing.T) {
	var c Cell
	defer func() {
		if recover() == nil {
			t.Fatal("firing a detached cell should panic")
		}
	}()
	c.FireAt()
}

func TestBoardNotifications(t *testing.T) {
	b := NewBoard(5, 5)
	var got []Event
	h := b.Subscribe(func(ev Event) { got = append(got, ev) })

	s := NewShip("SUB")
	var shipEvents int
	s.Subscribe(func(ev Event) { shipEvents++ })

	b.PlaceShip(s, 0, 0, false)
	b.FireAt(0, 0)
	b.FireAt(0, 0) // rejected, no event
	b.FireAt(4, 4)

	if len(got) != 3 {
		t.Fatalf("got %d events, want 3", len(got))
	}
	if got[0].Kind != ShipPlaced || got[0].Ship != s {
		t.Errorf("event 0 = %+v", got[0])
	}
	if got[1].Kind != CellFired || got[1].Cell.Col != 0 || got[2].Cell.Col != 4 {
		t.Errorf("fire events = %+v %+v", got[1], got[2])
	}
	if shipEvents != 1 {
		t.Errorf("ship events = %d, want 1", shipEvents)
	}

	b.Unsubscribe(h)
	b.FireAt(3, 3)
	if len(got) != 3 {
		t.Fatal("unsubscribed listener still called")
	}
}

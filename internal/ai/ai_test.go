package ai

import (
	"math/rand"
	"testing"

	"battleship-salvo/internal/game"
)

func newBoards() (own, target *game.Board) {
	return game.NewBoard(10, 10), game.NewBoard(10, 10)
}

func TestParseKind(t *testing.T) {
	cases := map[string]Kind{"basic": Basic, "Targeting": Targeting, " smart ": Targeting, "dumb": Basic}
	for in, want := range cases {
		got, err := ParseKind(in)
		if err != nil || got != want {
			t.Errorf("ParseKind(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ParseKind("psychic"); err == nil {
		t.Error("ParseKind should reject unknown names")
	}
}

func TestPlaceShipsPlacesWholeFleet(t *testing.T) {
	for seed := int64(0); seed < 20; seed++ {
		own, target := newBoards()
		fleet := game.NewFleet(game.DefaultFleet)
		New(Targeting, own, target, fleet, rand.New(rand.NewSource(seed))).PlaceShips()

		total := 0
		for _, s := range fleet {
			if !s.Placed {
				t.Fatalf("seed %d: ship %s unplaced", seed, s.Name)
			}
			total += s.Length
		}
		occupied := 0
		for _, v := range own.Occupancy() {
			occupied += int(v)
		}
		if occupied != total {
			t.Fatalf("seed %d: occupied %d cells, fleet has %d", seed, occupied, total)
		}
		if target.Unfired() != 100 || len(target.Ships()) != 0 {
			t.Fatalf("seed %d: placement touched the target board", seed)
		}
	}
}

func TestPlaceShipsTwicePanics(t *testing.T) {
	own, target := newBoards()
	a := NewBasic(own, target, game.NewFleet([]string{"PT"}), rand.New(rand.NewSource(1)))
	a.PlaceShips()
	defer func() {
		if recover() == nil {
			t.Fatal("second PlaceShips should panic")
		}
	}()
	a.PlaceShips()
}

func TestBasicFireNeverRepeats(t *testing.T) {
	own, target := newBoards()
	a := NewBasic(own, target, nil, rand.New(rand.NewSource(3)))
	seen := map[game.Coord]bool{}
	for i := 0; i < 100; i++ {
		c := a.Fire()
		p := game.Coord{Col: c.Col, Row: c.Row}
		if seen[p] {
			t.Fatalf("shot %d repeated %v", i, p)
		}
		if !c.Fired {
			t.Fatalf("returned cell %v not fired", p)
		}
		seen[p] = true
	}
	if target.Unfired() != 0 {
		t.Fatalf("unfired = %d after 100 shots", target.Unfired())
	}
}

func TestBasicFireOnFullBoardPanics(t *testing.T) {
	own := game.NewBoard(1, 1)
	target := game.NewBoard(1, 1)
	a := NewBasic(own, target, nil, rand.New(rand.NewSource(1)))
	a.Fire()
	defer func() {
		if recover() == nil {
			t.Fatal("firing at an exhausted board should panic")
		}
	}()
	a.Fire()
}

func adjacent(a, b *game.Cell) bool {
	dx, dy := a.Col-b.Col, a.Row-b.Row
	return dx*dx+dy*dy == 1
}

func TestTargetingFiresAroundWound(t *testing.T) {
	for seed := int64(0); seed < 30; seed++ {
		own, target := newBoards()
		ship := game.NewShip("YACHT")
		target.PlaceShip(ship, 3, 5, false)

		a := New(Targeting, own, target, nil, rand.New(rand.NewSource(seed))).(*TargetingAI)
		var prev *game.Cell
		for shots := 0; !ship.Sunk(); shots++ {
			if shots > 100 {
				t.Fatalf("seed %d: ship not sunk after 100 shots", seed)
			}
			hunting := a.LastHit()
			exhausted := hunting != nil && len(a.neighbours(hunting)) == 0
			c := a.Fire()
			if hunting != nil && !exhausted && !adjacent(c, hunting) {
				t.Fatalf("seed %d: shot %v,%v not adjacent to wound %v,%v", seed, c.Col, c.Row, hunting.Col, hunting.Row)
			}
			if c.Hit() && !ship.Sunk() && a.LastHit() != c {
				t.Fatalf("seed %d: wound at %v,%v not remembered", seed, c.Col, c.Row)
			}
			prev = c
		}
		if prev == nil || prev.Ship() != ship {
			t.Fatalf("seed %d: last shot should be the sinking hit", seed)
		}
	}
}

func TestTargetingKeepsWoundOnMiss(t *testing.T) {
	own, target := newBoards()
	ship := game.NewShip("PT")
	target.PlaceShip(ship, 0, 0, false)

	a := New(Targeting, own, target, nil, rand.New(rand.NewSource(1))).(*TargetingAI)
	wound, _ := target.Cell(0, 0)
	wound.FireAt()
	a.last = wound
	target.FireAt(1, 0)

	// The only open neighbour of the wound is (0,1), which is water.
	c := a.Fire()
	if c.Col != 0 || c.Row != 1 {
		t.Fatalf("shot at %d,%d, want 0,1", c.Col, c.Row)
	}
	if a.LastHit() != wound {
		t.Fatal("a miss should leave the remembered wound unchanged")
	}

	// No candidates left: falls back to random fire on the same turn.
	unfired := target.Unfired()
	c = a.Fire()
	if a.LastHit() != nil {
		t.Fatal("exhausted neighbourhood should clear the wound")
	}
	if !c.Fired || target.Unfired() != unfired-1 {
		t.Fatal("fallback should land exactly one fresh shot")
	}
}

func TestTargetingUsesFullBounds(t *testing.T) {
	own, target := newBoards()
	ship := game.NewShip("PT")
	target.PlaceShip(ship, 8, 9, false)

	a := New(Targeting, own, target, nil, rand.New(rand.NewSource(5))).(*TargetingAI)
	wound, _ := target.Cell(8, 9)
	wound.FireAt()
	a.last = wound
	target.FireAt(7, 9)
	target.FireAt(8, 8)
	// Only (9,9), in the last column, remains.
	c := a.Fire()
	if c.Col != 9 || c.Row != 9 {
		t.Fatalf("shot at %d,%d, want 9,9", c.Col, c.Row)
	}
	if !ship.Sunk() {
		t.Fatal("ship should be sunk")
	}
	if a.LastHit() != wound {
		t.Fatal("sinking shot should not become the new wound")
	}
}

func TestPlaceRandomlyFinishesOnTightBoards(t *testing.T) {
	cases := []struct {
		cols, rows int
		fleet      []string
	}{
		{4, 4, []string{"ABCD", "E", "F", "G", "H"}},
		{5, 5, []string{"ABCDE", "FGHI", "JKL"}},
		{4, 3, []string{"ABCD", "EF"}},
		{10, 10, game.DefaultFleet},
	}
	for _, tc := range cases {
		for seed := int64(0); seed < 200; seed++ {
			b := game.NewBoard(tc.cols, tc.rows)
			fleet := game.NewFleet(tc.fleet)
			if !PlaceRandomly(b, fleet, rand.New(rand.NewSource(seed))) {
				t.Fatalf("%dx%d %v seed %d: no layout found", tc.cols, tc.rows, tc.fleet, seed)
			}
			for _, s := range fleet {
				if !s.Placed {
					t.Fatalf("%dx%d seed %d: %s unplaced", tc.cols, tc.rows, seed, s.Name)
				}
			}
		}
	}
}

func TestPlaceRandomlyKeepsExistingShips(t *testing.T) {
	b := game.NewBoard(4, 4)
	for i, name := range []string{"E", "F", "G", "H"} {
		if !b.PlaceShip(game.NewShip(name), i, i, false) {
			t.Fatalf("place %s", name)
		}
	}
	long := game.NewShip("ABCD")
	if PlaceRandomly(b, []*game.Ship{long}, rand.New(rand.NewSource(1))) {
		t.Fatal("ABCD cannot fit around a full diagonal")
	}
	if long.Placed || len(b.Ships()) != 4 {
		t.Fatal("failed placement changed the board")
	}

	b = game.NewBoard(4, 4)
	if !b.PlaceShip(game.NewShip("E"), 0, 0, false) {
		t.Fatal("place E")
	}
	long = game.NewShip("ABCD")
	if !PlaceRandomly(b, []*game.Ship{long}, rand.New(rand.NewSource(1))) {
		t.Fatal("ABCD should fit next to a single cell")
	}
	for _, p := range long.Footprint() {
		if p == (game.Coord{}) {
			t.Fatal("placed over an existing ship")
		}
	}
}

func TestFleetFits(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	if !FleetFits(10, 10, game.DefaultFleet, rng) {
		t.Error("default fleet should fit 10x10")
	}
	if FleetFits(3, 3, []string{"ABCD"}, rng) {
		t.Error("a 4-ship cannot fit 3x3")
	}
}

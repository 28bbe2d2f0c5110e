package game

import "unicode/utf8"

// Orientation of a placed ship.
type Orientation int

const (
	Horizontal Orientation = iota
	Vertical
)

func (o Orientation) String() string {
	if o == Vertical {
		return "vertical"
	}
	return "horizontal"
}

// Coord is a board-local position, 0-indexed.
type Coord struct {
	Col int `json:"col"`
	Row int `json:"row"`
}

// DefaultFleet is the standard fleet: one word per ship, word length is ship length.
var DefaultFleet = []string{"YACHT", "BARK", "TUG", "SUB", "PT"}

// Ship is named by a word; each rune of the word is drawn on one cell of the ship.
type Ship struct {
	Name        string
	Length      int
	Orientation Orientation
	Origin      Coord // top-left cell regardless of orientation
	Health      int
	Placed      bool

	symbols []rune
	obs     listeners
}

func NewShip(name string) *Ship {
	n := utf8.RuneCountInString(name)
	if n == 0 {
		panic("game: ship needs a non-empty name")
	}
	return &Ship{
		Name:    name,
		Length:  n,
		Health:  n,
		symbols: []rune(name),
	}
}

// NewFleet builds one unplaced ship per name.
func NewFleet(names []string) []*Ship {
	ships := make([]*Ship, 0, len(names))
	for _, n := range names {
		ships = append(ships, NewShip(n))
	}
	return ships
}

// Scorch registers one hit and reports whether the ship is still afloat.
// Scorching a sunk ship is a caller bug.
func (s *Ship) Scorch() bool {
	if s.Health == 0 {
		panic("game: scorch on sunk ship " + s.Name)
	}
	s.Health--
	return s.Health > 0
}

func (s *Ship) Sunk() bool { return s.Health == 0 }

// Symbol returns the rune shown on fragment i.
func (s *Ship) Symbol(i int) rune {
	if i < 0 || i >= s.Length {
		panic("game: fragment index out of range")
	}
	return s.symbols[i]
}

// Footprint lists the cells the ship covers from its origin, in fragment order.
func (s *Ship) Footprint() []Coord {
	if !s.Placed {
		return nil
	}
	out := make([]Coord, s.Length)
	for i := range out {
		c := s.Origin
		if s.Orientation == Vertical {
			c.Row += i
		} else {
			c.Col += i
		}
		out[i] = c
	}
	return out
}

func (s *Ship) Subscribe(fn Listener) Handle { return s.obs.add(fn) }

func (s *Ship) Unsubscribe(h Handle) { s.obs.remove(h) }

func (s *Ship) place() {
	s.Placed = true
	s.obs.notify(Event{Kind: ShipPlaced, Ship: s})
}

// CountAfloat returns how many ships still have health.
func CountAfloat(ships []*Ship) int {
	n := 0
	for _, s := range ships {
		if s.Health > 0 {
			n++
		}
	}
	return n
}

// Package match runs one human-vs-computer game: setup, alternating turns
// and the win condition.
package match

import (
	"errors"
	"fmt"
	"io"
	"math/rand"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"battleship-salvo/internal/ai"
	"battleship-salvo/internal/game"
)

var (
	ErrWrongMode        = errors.New("action not allowed in this mode")
	ErrNoSuchShip       = errors.New("no such ship")
	ErrAlreadyPlaced    = errors.New("ship already placed")
	ErrInvalidPlacement = errors.New("ship does not fit there")
	ErrInvalidTarget    = errors.New("invalid target")
	ErrFleetTooLarge    = errors.New("fleet does not fit the board")
)

type Config struct {
	Cols, Rows int
	Fleet      []string
	Strategy   ai.Kind
	Rand       *rand.Rand
	Logger     *log.Logger
}

// DefaultConfig is a 10x10 board, the default fleet and the targeting opponent.
func DefaultConfig() Config {
	return Config{Cols: 10, Rows: 10, Fleet: game.DefaultFleet, Strategy: ai.Targeting}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Cols <= 0 {
		c.Cols = d.Cols
	}
	if c.Rows <= 0 {
		c.Rows = d.Rows
	}
	if len(c.Fleet) == 0 {
		c.Fleet = d.Fleet
	}
	if c.Rand == nil {
		c.Rand = rand.New(rand.NewSource(time.Now().UnixNano())) // #nosec G404 -- game only
	}
	if c.Logger == nil {
		c.Logger = log.New(io.Discard)
	}
	return c
}

// Shot is the outcome of one valid shot.
type Shot struct {
	By   Side   `json:"by"`
	Col  int    `json:"col"`
	Row  int    `json:"row"`
	Hit  bool   `json:"hit"`
	Sunk bool   `json:"sunk"`
	Ship string `json:"ship,omitempty"` // set when Sunk
}

// Round is a human shot and, unless the game ended on it, the opponent's reply.
type Round struct {
	Human Shot
	Reply *Shot
}

type Match struct {
	id   string
	cfg  Config
	log  *log.Logger
	rng  *rand.Rand
	kind ai.Kind
	opp  ai.Opponent

	mode    Mode
	turn    Side
	outcome Outcome

	boards [2]*game.Board
	fleets [2][]*game.Ship

	obs listeners
}

func New(cfg Config) (*Match, error) {
	cfg = cfg.withDefaults()
	if err := checkFleet(cfg); err != nil {
		return nil, err
	}
	m := &Match{
		id:   uuid.NewString(),
		cfg:  cfg,
		rng:  cfg.Rand,
		kind: cfg.Strategy,
		mode: Setup,
		turn: Human,
	}
	m.log = cfg.Logger.With("match", m.id[:8])
	for _, side := range []Side{Human, Opponent} {
		side := side
		m.boards[side] = game.NewBoard(cfg.Cols, cfg.Rows)
		m.fleets[side] = game.NewFleet(cfg.Fleet)
		m.boards[side].Subscribe(func(ev game.Event) { m.relay(side, ev) })
	}
	m.opp = m.newOpponent(m.kind)
	m.log.Debug("match created", "cols", cfg.Cols, "rows", cfg.Rows, "ships", len(cfg.Fleet), "strategy", m.kind)
	return m, nil
}

func checkFleet(cfg Config) error {
	cells := 0
	for _, name := range cfg.Fleet {
		n := len([]rune(name))
		if n == 0 {
			return fmt.Errorf("%w: empty ship name", ErrFleetTooLarge)
		}
		if n > cfg.Cols && n > cfg.Rows {
			return fmt.Errorf("%w: %s is longer than the board", ErrFleetTooLarge, name)
		}
		cells += n
	}
	// Keep random placement cheap: ships may cover at most half the board.
	if 2*cells > cfg.Cols*cfg.Rows {
		return fmt.Errorf("%w: %d ship cells on %dx%d", ErrFleetTooLarge, cells, cfg.Cols, cfg.Rows)
	}
	// The opponent places at random, so at least one layout must exist.
	if !ai.FleetFits(cfg.Cols, cfg.Rows, cfg.Fleet, rand.New(rand.NewSource(1))) { // #nosec G404 -- game only
		return fmt.Errorf("%w: no layout found on %dx%d", ErrFleetTooLarge, cfg.Cols, cfg.Rows)
	}
	return nil
}

// The opponent places on its own board and fires at the human's.
func (m *Match) newOpponent(kind ai.Kind) ai.Opponent {
	return ai.New(kind, m.boards[Opponent], m.boards[Human], m.fleets[Opponent], m.rng)
}

func (m *Match) ID() string               { return m.id }
func (m *Match) Mode() Mode               { return m.mode }
func (m *Match) Turn() Side               { return m.turn }
func (m *Match) Outcome() Outcome         { return m.outcome }
func (m *Match) Strategy() ai.Kind        { return m.kind }
func (m *Match) Config() Config           { return m.cfg }
func (m *Match) Board(s Side) *game.Board { return m.boards[s] }

// Fleet returns a side's ships in fleet order, placed or not.
func (m *Match) Fleet(s Side) []*game.Ship {
	out := make([]*game.Ship, len(m.fleets[s]))
	copy(out, m.fleets[s])
	return out
}

// Living counts a side's ships that are still afloat.
func (m *Match) Living(s Side) int { return game.CountAfloat(m.fleets[s]) }

// SetStrategy swaps the opponent strategy. Only allowed during setup.
func (m *Match) SetStrategy(kind ai.Kind) error {
	if m.mode != Setup {
		return fmt.Errorf("set strategy: %w (%s)", ErrWrongMode, m.mode)
	}
	m.kind = kind
	m.opp = m.newOpponent(kind)
	m.log.Debug("strategy selected", "strategy", kind)
	return nil
}

// PlaceShip places the human's ship i with its top-left cell at (x, y).
// Placing the last human ship lets the opponent place its fleet and starts
// the firing phase.
func (m *Match) PlaceShip(i, x, y int, vertical bool) error {
	if m.mode != Setup {
		return fmt.Errorf("place: %w (%s)", ErrWrongMode, m.mode)
	}
	if i < 0 || i >= len(m.fleets[Human]) {
		return fmt.Errorf("place %d: %w", i, ErrNoSuchShip)
	}
	ship := m.fleets[Human][i]
	if ship.Placed {
		return fmt.Errorf("place %s: %w", ship.Name, ErrAlreadyPlaced)
	}
	if !m.boards[Human].PlaceShip(ship, x, y, vertical) {
		return fmt.Errorf("place %s at %d,%d: %w", ship.Name, x, y, ErrInvalidPlacement)
	}
	m.log.Debug("ship placed", "ship", ship.Name, "col", x, "row", y, "orientation", ship.Orientation)
	m.maybeStart()
	return nil
}

// AutoPlace places every unplaced human ship at random and starts firing.
func (m *Match) AutoPlace() error {
	if m.mode != Setup {
		return fmt.Errorf("auto place: %w (%s)", ErrWrongMode, m.mode)
	}
	var pending []*game.Ship
	for _, s := range m.fleets[Human] {
		if !s.Placed {
			pending = append(pending, s)
		}
	}
	if !ai.PlaceRandomly(m.boards[Human], pending, m.rng) {
		return fmt.Errorf("auto place: %w: remaining ships do not fit", ErrInvalidPlacement)
	}
	m.maybeStart()
	return nil
}

func (m *Match) maybeStart() {
	for _, s := range m.fleets[Human] {
		if !s.Placed {
			return
		}
	}
	m.opp.PlaceShips()
	m.turn = Human
	m.setMode(Firing)
}

// Fire shoots the opponent's board at (x, y). An invalid target does not
// use up the human's turn. If the game goes on, the opponent fires back
// before Fire returns.
func (m *Match) Fire(x, y int) (Round, error) {
	if m.mode != Firing {
		return Round{}, fmt.Errorf("fire: %w (%s)", ErrWrongMode, m.mode)
	}
	cell, ok := m.boards[Opponent].Cell(x, y)
	if !ok {
		return Round{}, fmt.Errorf("fire at %d,%d: %w: out of bounds", x, y, ErrInvalidTarget)
	}
	if !cell.FireAt() {
		return Round{}, fmt.Errorf("fire at %d,%d: %w: already fired", x, y, ErrInvalidTarget)
	}
	r := Round{Human: m.record(Human, cell)}
	if m.settle() {
		return r, nil
	}

	m.turn = Opponent
	reply := m.record(Opponent, m.opp.Fire())
	r.Reply = &reply
	if !m.settle() {
		m.turn = Human
	}
	return r, nil
}

func (m *Match) record(by Side, c *game.Cell) Shot {
	s := Shot{By: by, Col: c.Col, Row: c.Row, Hit: c.Occupied()}
	if ship := c.Ship(); ship != nil && ship.Sunk() {
		s.Sunk = true
		s.Ship = ship.Name
	}
	m.log.Debug("shot", "by", by, "col", s.Col, "row", s.Row, "hit", s.Hit, "sunk", s.Sunk)
	return s
}

// settle recounts both fleets and ends the match when one is gone.
func (m *Match) settle() bool {
	switch {
	case m.Living(Human) == 0:
		m.outcome = HumanLoses
	case m.Living(Opponent) == 0:
		m.outcome = HumanWins
	default:
		return false
	}
	m.setMode(GameOver)
	return true
}

func (m *Match) setMode(mode Mode) {
	m.mode = mode
	m.log.Info("mode changed", "mode", mode, "outcome", m.outcome)
	m.obs.notify(Event{Kind: ModeChanged, Mode: mode, Outcome: m.outcome})
}

func (m *Match) relay(side Side, ev game.Event) {
	kind := ShipPlaced
	if ev.Kind == game.CellFired {
		kind = CellFired
	}
	m.obs.notify(Event{Kind: kind, Side: side, Ship: ev.Ship, Cell: ev.Cell, Mode: m.mode, Outcome: m.outcome})
}

// Subscribe registers fn for every board change on either side and for mode
// changes. fn runs synchronously and must not call back into the match.
func (m *Match) Subscribe(fn Listener) Handle { return m.obs.add(fn) }

func (m *Match) Unsubscribe(h Handle) { m.obs.remove(h) }

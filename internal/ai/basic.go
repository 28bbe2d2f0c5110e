package ai

import (
	"math/rand"
	"sort"

	"battleship-salvo/internal/game"
)

// BasicAI places and fires uniformly at random.
type BasicAI struct {
	own, target *game.Board
	ships       []*game.Ship
	rng         *rand.Rand
}

func NewBasic(own, target *game.Board, ships []*game.Ship, rng *rand.Rand) *BasicAI {
	return &BasicAI{own: own, target: target, ships: ships, rng: rng}
}

// Ships returns the opponent's fleet.
func (a *BasicAI) Ships() []*game.Ship { return a.ships }

// PlaceShips places every ship of the fleet on the opponent's own board.
// The fleet must fit the empty board; see FleetFits.
func (a *BasicAI) PlaceShips() {
	for !PlaceRandomly(a.own, a.ships, a.rng) {
	}
}

const (
	drawsPerShip = 200 // origin draws per ship before the layout is redrawn
	layoutTries  = 50
)

type placement struct {
	x, y int
	vert bool
}

// PlaceRandomly rejection-samples an origin and orientation for each ship,
// longest first, around whatever b already holds. Origins are drawn from
// [0, Cols] x [0, Rows]; out-of-bounds draws are rejected. A layout that
// gets stuck is thrown away and drawn again on a scratch board, so b is
// only touched once a whole layout fits. It reports false, leaving b
// unchanged, when no layout was found. Every ship must be unplaced.
func PlaceRandomly(b *game.Board, ships []*game.Ship, rng *rand.Rand) bool {
	for _, s := range ships {
		if s.Placed {
			panic("ai: ship " + s.Name + " is already placed")
		}
	}
	order := longestFirst(ships)
	for try := 0; try < layoutTries; try++ {
		layout, ok := drawLayout(b, ships, order, rng)
		if !ok {
			continue
		}
		for _, i := range order {
			p := layout[i]
			b.PlaceShip(ships[i], p.x, p.y, p.vert)
		}
		return true
	}
	return false
}

// FleetFits reports whether random placement finds a layout for names on
// an empty cols x rows board.
func FleetFits(cols, rows int, names []string, rng *rand.Rand) bool {
	return PlaceRandomly(game.NewBoard(cols, rows), game.NewFleet(names), rng)
}

// longestFirst orders ship indices by length, longest first; equal lengths
// keep last-to-first fleet order.
func longestFirst(ships []*game.Ship) []int {
	order := make([]int, len(ships))
	for i := range order {
		order[i] = len(ships) - 1 - i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return ships[order[a]].Length > ships[order[b]].Length
	})
	return order
}

func drawLayout(b *game.Board, ships []*game.Ship, order []int, rng *rand.Rand) ([]placement, bool) {
	scratch := game.NewBoard(b.Cols, b.Rows)
	for _, s := range b.Ships() {
		scratch.PlaceShip(game.NewShip(s.Name), s.Origin.Col, s.Origin.Row, s.Orientation == game.Vertical)
	}
	layout := make([]placement, len(ships))
	for _, i := range order {
		clone := game.NewShip(ships[i].Name)
		placed := false
		for n := 0; n < drawsPerShip && !placed; n++ {
			p := placement{x: rng.Intn(b.Cols + 1), y: rng.Intn(b.Rows + 1), vert: rng.Intn(2) == 1}
			if scratch.PlaceShip(clone, p.x, p.y, p.vert) {
				layout[i] = p
				placed = true
			}
		}
		if !placed {
			return nil, false
		}
	}
	return layout, true
}

func (a *BasicAI) randomCell() *game.Cell {
	c, _ := a.target.Cell(a.rng.Intn(a.target.Cols), a.rng.Intn(a.target.Rows))
	return c
}

// Fire shoots a random cell not fired upon before.
func (a *BasicAI) Fire() *game.Cell {
	if a.target.Unfired() == 0 {
		panic("ai: no unfired cell left on target board")
	}
	cell := a.randomCell()
	for !cell.FireAt() {
		cell = a.randomCell()
	}
	return cell
}

// Package ai holds the computer opponent's placement and firing strategies.
package ai

import (
	"fmt"
	"math/rand"
	"strings"

	"battleship-salvo/internal/game"
)

// Opponent places its own fleet and picks where to shoot.
type Opponent interface {
	PlaceShips()
	// Fire always lands exactly one valid shot and returns the cell hit.
	Fire() *game.Cell
}

// Kind selects a strategy. The zero Kind is Targeting.
type Kind int

const (
	Targeting Kind = iota
	Basic
)

func (k Kind) String() string {
	switch k {
	case Targeting:
		return "targeting"
	case Basic:
		return "basic"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "basic", "dumb", "random":
		return Basic, nil
	case "targeting", "smart", "hunt":
		return Targeting, nil
	}
	return 0, fmt.Errorf("unknown strategy %q", s)
}

// New builds the strategy. own is the board the opponent places on; target
// is the board it fires at.
func New(kind Kind, own, target *game.Board, ships []*game.Ship, rng *rand.Rand) Opponent {
	b := NewBasic(own, target, ships, rng)
	if kind == Targeting {
		return &TargetingAI{BasicAI: b}
	}
	return b
}

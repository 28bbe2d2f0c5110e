package ai

import "battleship-salvo/internal/game"

// TargetingAI places like BasicAI but, after hitting a ship that is still
// afloat, keeps shooting around that hit.
type TargetingAI struct {
	*BasicAI
	last *game.Cell
}

// LastHit is the cell the next shot searches around, or nil.
func (a *TargetingAI) LastHit() *game.Cell { return a.last }

func (a *TargetingAI) Fire() *game.Cell {
	if a.last == nil {
		cell := a.BasicAI.Fire()
		if woundedAt(cell) {
			a.last = cell
		}
		return cell
	}

	candidates := a.neighbours(a.last)
	if len(candidates) == 0 {
		a.last = nil
		return a.Fire()
	}
	cell := candidates[a.rng.Intn(len(candidates))]
	cell.FireAt()
	if woundedAt(cell) {
		a.last = cell
	}
	return cell
}

// neighbours returns the unfired, in-bounds cells left, right, above and
// below c.
func (a *TargetingAI) neighbours(c *game.Cell) []*game.Cell {
	out := make([]*game.Cell, 0, 4)
	for _, d := range [4][2]int{{-1, 0}, {1, 0}, {0, -1}, {0, 1}} {
		n, ok := a.target.Cell(c.Col+d[0], c.Row+d[1])
		if ok && !n.Fired {
			out = append(out, n)
		}
	}
	return out
}

func woundedAt(c *game.Cell) bool {
	s := c.Ship()
	return s != nil && !s.Sunk()
}

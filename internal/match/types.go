package match

import (
	"fmt"

	"battleship-salvo/internal/game"
)

// Mode is the match phase. It only moves forward: Setup, Firing, GameOver.
type Mode int

const (
	Setup Mode = iota
	Firing
	GameOver
)

func (m Mode) String() string {
	switch m {
	case Setup:
		return "setup"
	case Firing:
		return "firing"
	case GameOver:
		return "game_over"
	}
	return "unknown"
}

func (m Mode) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

type Side int

const (
	Human Side = iota
	Opponent
)

func (s Side) String() string {
	if s == Opponent {
		return "opponent"
	}
	return "human"
}

func (s Side) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

type Outcome int

const (
	Undecided Outcome = iota
	HumanWins
	HumanLoses
)

func (o Outcome) String() string {
	switch o {
	case HumanWins:
		return "human_wins"
	case HumanLoses:
		return "human_loses"
	}
	return "undecided"
}

func (o Outcome) MarshalText() ([]byte, error) { return []byte(o.String()), nil }

type EventKind int

const (
	ShipPlaced EventKind = iota
	CellFired
	ModeChanged
)

func (k EventKind) String() string {
	switch k {
	case ShipPlaced:
		return "ship_placed"
	case CellFired:
		return "cell_fired"
	case ModeChanged:
		return "mode_changed"
	}
	return "unknown"
}

// Event is a board change on one side, or a mode change. Mode and Outcome
// are the match state at the time of the event.
type Event struct {
	Kind    EventKind
	Side    Side
	Ship    *game.Ship
	Cell    *game.Cell
	Mode    Mode
	Outcome Outcome
}

type Listener func(Event)

type Handle int

type listeners struct {
	next Handle
	subs map[Handle]Listener
	ord  []Handle
}

func (l *listeners) add(fn Listener) Handle {
	if l.subs == nil {
		l.subs = map[Handle]Listener{}
	}
	l.next++
	l.subs[l.next] = fn
	l.ord = append(l.ord, l.next)
	return l.next
}

func (l *listeners) remove(h Handle) {
	delete(l.subs, h)
	for i, o := range l.ord {
		if o == h {
			l.ord = append(l.ord[:i], l.ord[i+1:]...)
			break
		}
	}
}

func (l *listeners) notify(ev Event) {
	for _, h := range l.ord {
		l.subs[h](ev)
	}
}

func (m *Mode) UnmarshalText(b []byte) error {
	for _, v := range []Mode{Setup, Firing, GameOver} {
		if v.String() == string(b) {
			*m = v
			return nil
		}
	}
	return fmt.Errorf("unknown mode %q", b)
}

func (s *Side) UnmarshalText(b []byte) error {
	switch string(b) {
	case "human":
		*s = Human
	case "opponent":
		*s = Opponent
	default:
		return fmt.Errorf("unknown side %q", b)
	}
	return nil
}

func (o *Outcome) UnmarshalText(b []byte) error {
	for _, v := range []Outcome{Undecided, HumanWins, HumanLoses} {
		if v.String() == string(b) {
			*o = v
			return nil
		}
	}
	return fmt.Errorf("unknown outcome %q", b)
}

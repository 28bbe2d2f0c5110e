package game

// EventKind says which entity an Event carries.
type EventKind int

const (
	ShipPlaced EventKind = iota
	CellFired
)

func (k EventKind) String() string {
	switch k {
	case ShipPlaced:
		return "ship_placed"
	case CellFired:
		return "cell_fired"
	}
	return "unknown"
}

// Event is a change notification. Exactly one of Ship or Cell is set.
type Event struct {
	Kind EventKind
	Ship *Ship
	Cell *Cell
}

// Listener receives change notifications. Listeners run synchronously at the
// point of mutation and must not call back into the mutating operation.
type Listener func(Event)

// Handle identifies a subscription for Unsubscribe.
type Handle int

type listeners struct {
	next Handle
	subs []subscription
}

type subscription struct {
	h  Handle
	fn Listener
}

func (l *listeners) add(fn Listener) Handle {
	l.next++
	l.subs = append(l.subs, subscription{h: l.next, fn: fn})
	return l.next
}

func (l *listeners) remove(h Handle) {
	for i, s := range l.subs {
		if s.h == h {
			l.subs = append(l.subs[:i], l.subs[i+1:]...)
			return
		}
	}
}

func (l *listeners) notify(ev Event) {
	for _, s := range l.subs {
		s.fn(ev)
	}
}

package app

import (
	"errors"
	"fmt"
	"io"
	"math/rand"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"battleship-salvo/internal/ai"
	"battleship-salvo/internal/codec"
	"battleship-salvo/internal/game"
	"battleship-salvo/internal/match"
	"battleship-salvo/internal/merkle"
	"battleship-salvo/internal/render"
	"battleship-salvo/internal/zk"
)

var ErrNotOver = errors.New("game is not over")

type Options struct {
	Cols, Rows int
	Fleet      []string
	Strategy   ai.Kind
	Seed       int64 // 0 seeds from the clock
	Logger     *log.Logger
	// Prover, when set, attaches a shot proof to every human shot.
	Prover *zk.Prover
}

// Session owns the current match and everything layered on it: the fleet
// commitment, shot proofs and wire-level event fan-out. Its methods are safe
// for concurrent use; the match itself only ever sees one caller at a time.
type Session struct {
	mu     sync.Mutex
	opts   Options
	rng    *rand.Rand
	log    *log.Logger
	m      *match.Match
	commit *merkle.Commitment
	subs   map[int]func(codec.Event)
	nextID int
}

func NewSession(opts Options) (*Session, error) {
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	s := &Session{
		opts: opts,
		rng:  rand.New(rand.NewSource(seed)), // #nosec G404 -- game only
		log:  opts.Logger,
		subs: map[int]func(codec.Event){},
	}
	if err := s.Reset(); err != nil {
		return nil, err
	}
	return s, nil
}

// Reset throws the current match away and starts a new one in setup. The
// strategy chosen for the previous match carries over.
func (s *Session) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	kind := s.opts.Strategy
	if s.m != nil {
		kind = s.m.Strategy()
	}
	m, err := match.New(match.Config{
		Cols:     s.opts.Cols,
		Rows:     s.opts.Rows,
		Fleet:    s.opts.Fleet,
		Strategy: kind,
		Rand:     s.rng,
		Logger:   s.log,
	})
	if err != nil {
		return err
	}
	m.Subscribe(s.relay)
	s.m = m
	s.commit = nil
	s.log.Info("new match", "id", m.ID(), "strategy", kind)
	s.broadcast(codec.Event{Type: "reset", Mode: m.Mode(), Outcome: m.Outcome()})
	return nil
}

func (s *Session) SetStrategy(name string) error {
	kind, err := ai.ParseKind(name)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.m.SetStrategy(kind)
}

func (s *Session) Place(i, x, y int, vertical bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.m.PlaceShip(i, x, y, vertical); err != nil {
		return err
	}
	return s.commitIfStarted()
}

func (s *Session) AutoPlace() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.m.AutoPlace(); err != nil {
		return err
	}
	return s.commitIfStarted()
}

// commitIfStarted commits to the computer's layout once it is placed.
func (s *Session) commitIfStarted() error {
	if s.m.Mode() == match.Setup || s.commit != nil {
		return nil
	}
	salt, err := merkle.RandomSalt()
	if err != nil {
		return fmt.Errorf("commit salt: %w", err)
	}
	board := s.m.Board(match.Opponent)
	bits := board.Occupancy()
	if len(bits) > merkle.Leaves {
		s.log.Warn("board too large for a fleet commitment", "cells", len(bits))
		return nil
	}
	c, err := merkle.Commit(bits, salt)
	if err != nil {
		return fmt.Errorf("commit fleet: %w", err)
	}
	s.commit = c
	s.log.Info("computer fleet committed", "root", c.RootHex())
	return nil
}

func (s *Session) Fire(x, y int) (codec.FireResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, err := s.m.Fire(x, y)
	if err != nil {
		return codec.FireResult{}, err
	}
	res := codec.FireResult{
		Shot:    r.Human,
		Reply:   r.Reply,
		Mode:    s.m.Mode(),
		Outcome: s.m.Outcome(),
	}
	if s.opts.Prover != nil && s.commit != nil {
		s.attachProof(&res, y*s.m.Board(match.Opponent).Cols+x)
	}
	return res, nil
}

func (s *Session) attachProof(res *codec.FireResult, idx int) {
	sp, err := s.opts.Prover.Prove(s.commit, idx)
	if err != nil {
		s.log.Error("shot proof failed", "index", idx, "err", err)
		res.ProofError = err.Error()
		return
	}
	res.Proof = &sp
	if err := zk.Verify(s.opts.Prover.VerifyingKey(), sp, s.commit.Root); err != nil {
		s.log.Error("shot proof rejected", "index", idx, "err", err)
		res.ProofError = err.Error()
		return
	}
	if (sp.Public.Hit == 1) != res.Shot.Hit {
		res.ProofError = "proof disagrees with reported shot"
		return
	}
	res.ProofVerified = true
}

func (s *Session) Status() codec.Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := codec.Status{
		ID:       s.m.ID(),
		Mode:     s.m.Mode(),
		Turn:     s.m.Turn(),
		Outcome:  s.m.Outcome(),
		Strategy: s.m.Strategy().String(),
		Own:      boardView(s.m.Board(match.Human), s.m.Living(match.Human), false),
		Enemy:    boardView(s.m.Board(match.Opponent), s.m.Living(match.Opponent), s.m.Mode() != match.GameOver),
		Proving:  s.opts.Prover != nil && s.commit != nil,
	}
	for i, sh := range s.m.Fleet(match.Human) {
		v := codec.ShipView{Index: i, Name: sh.Name, Length: sh.Length, Placed: sh.Placed, Health: sh.Health}
		if sh.Placed {
			v.Col, v.Row, v.Orientation = sh.Origin.Col, sh.Origin.Row, sh.Orientation.String()
		}
		st.Fleet = append(st.Fleet, v)
	}
	if s.commit != nil {
		st.RootHex = s.commit.RootHex()
	}
	return st
}

func boardView(b *game.Board, living int, hide bool) codec.BoardView {
	return codec.BoardView{Cols: b.Cols, Rows: b.Rows, Cells: render.Rows(b, hide), Living: living}
}

// Grids draws both boards for the terminal: own first, enemy hidden until
// the game is over.
func (s *Session) Grids() (own, enemy string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return render.Grid(s.m.Board(match.Human), false),
		render.Grid(s.m.Board(match.Opponent), s.m.Mode() != match.GameOver)
}

// Reveal discloses the committed layout. Only allowed after the game ends.
func (s *Session) Reveal() (codec.Reveal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.m.Mode() != match.GameOver {
		return codec.Reveal{}, ErrNotOver
	}
	if s.commit == nil {
		return codec.Reveal{}, errors.New("no fleet commitment for this match")
	}
	b := s.m.Board(match.Opponent)
	layout := make([]int, len(s.commit.Bits))
	for i, bit := range s.commit.Bits {
		layout[i] = int(bit)
	}
	return codec.Reveal{
		RootHex:  s.commit.RootHex(),
		SaltHex:  fmt.Sprintf("0x%x", s.commit.Salt),
		Cols:     b.Cols,
		Rows:     b.Rows,
		Layout:   layout,
		Verified: merkle.VerifyLayout(b.Occupancy(), s.commit.Salt, s.commit.Root),
	}, nil
}

// Subscribe registers fn for wire events and returns a cancel func. fn runs
// while the session is locked and must not call back into it.
func (s *Session) Subscribe(fn func(codec.Event)) (cancel func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	id := s.nextID
	s.subs[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

func (s *Session) broadcast(ev codec.Event) {
	for _, fn := range s.subs {
		fn(ev)
	}
}

func (s *Session) relay(ev match.Event) {
	out := codec.Event{Type: ev.Kind.String(), Side: ev.Side, Mode: ev.Mode, Outcome: ev.Outcome}
	switch ev.Kind {
	case match.ShipPlaced:
		out.Ship = ev.Ship.Name
		if ev.Side == match.Human {
			col, row := ev.Ship.Origin.Col, ev.Ship.Origin.Row
			out.Col, out.Row = &col, &row
		}
	case match.CellFired:
		col, row := ev.Cell.Col, ev.Cell.Row
		out.Col, out.Row = &col, &row
		out.Hit = ev.Cell.Occupied()
		if sh := ev.Cell.Ship(); sh != nil && sh.Sunk() {
			out.Ship = sh.Name
		}
	}
	s.broadcast(out)
}

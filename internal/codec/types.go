package codec

import (
	"battleship-salvo/internal/match"
	"battleship-salvo/internal/zk"
)

// BoardView is one board as the player may see it. Cells[row] is a string of
// one symbol per column.
type BoardView struct {
	Cols   int      `json:"cols"`
	Rows   int      `json:"rows"`
	Cells  []string `json:"cells"`
	Living int      `json:"living"`
}

type ShipView struct {
	Index       int    `json:"index"`
	Name        string `json:"name"`
	Length      int    `json:"length"`
	Placed      bool   `json:"placed"`
	Health      int    `json:"health"`
	Col         int    `json:"col"`
	Row         int    `json:"row"`
	Orientation string `json:"orientation,omitempty"`
}

type Status struct {
	ID       string        `json:"id"`
	Mode     match.Mode    `json:"mode"`
	Turn     match.Side    `json:"turn"`
	Outcome  match.Outcome `json:"outcome"`
	Strategy string        `json:"strategy"`
	Own      BoardView     `json:"own"`
	Enemy    BoardView     `json:"enemy"`
	Fleet    []ShipView    `json:"fleet"`
	RootHex  string        `json:"rootHex,omitempty"` // computer fleet commitment
	Proving  bool          `json:"proving"`
}

type FireResult struct {
	Shot    match.Shot    `json:"shot"`
	Reply   *match.Shot   `json:"reply,omitempty"`
	Mode    match.Mode    `json:"mode"`
	Outcome match.Outcome `json:"outcome"`

	Proof         *zk.ShotProof `json:"proof,omitempty"`
	ProofVerified bool          `json:"proofVerified"`
	ProofError    string        `json:"proofError,omitempty"`
}

// Reveal discloses the computer's layout and salt once the game is over.
type Reveal struct {
	RootHex  string `json:"rootHex"`
	SaltHex  string `json:"saltHex"`
	Cols     int    `json:"cols"`
	Rows     int    `json:"rows"`
	Layout   []int  `json:"layout"` // row-major occupancy bits, 0 or 1
	Verified bool   `json:"verified"`
}

// Event is the wire form of a change notification. The computer's ship
// positions are never sent before they are hit.
type Event struct {
	Type    string        `json:"type"`
	Side    match.Side    `json:"side"`
	Col     *int          `json:"col,omitempty"`
	Row     *int          `json:"row,omitempty"`
	Hit     bool          `json:"hit,omitempty"`
	Ship    string        `json:"ship,omitempty"`
	Mode    match.Mode    `json:"mode"`
	Outcome match.Outcome `json:"outcome"`
}

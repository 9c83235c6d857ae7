// internal/game/types.go
//
// Core type definitions for the naval-combat engine.
// Defines:
//   - CellState: the state of one grid position on a player's board.
//   - Position: a (row, col) coordinate.
//   - Result: outcome of a single shot (HIT/MISS/SUNK/INVALID).
//   - Phase: coarse lifecycle of a match (setup → active → over).
//   - Sentinel errors shared by the builder and the match.

package game

import (
	"errors"
	"strconv"
)

// Size is the fixed board dimension (Size x Size).
const Size = 10

// CellState is the state of a single board cell. The zero value is Empty.
type CellState uint8

const (
	Empty    CellState = iota // open water, not fired upon
	Occupied                  // part of a ship, not yet fired upon
	Hit                       // was Occupied, fired upon
	Miss                      // was Empty, fired upon
	Blocked                   // empty water next to a sunk ship
)

func (c CellState) String() string {
	switch c {
	case Empty:
		return "empty"
	case Occupied:
		return "occupied"
	case Hit:
		return "hit"
	case Miss:
		return "miss"
	case Blocked:
		return "blocked"
	}
	return "unknown(" + strconv.Itoa(int(c)) + ")"
}

// Position is a zero-based (row, col) coordinate on a board.
type Position struct {
	Row int
	Col int
}

// Result is the evaluation of one shot. Values match the wire tokens.
type Result string

const (
	ResultHit     Result = "HIT"
	ResultMiss    Result = "MISS"
	ResultSunk    Result = "SUNK"
	ResultInvalid Result = "INVALID"
)

// Phase reports where a match is in its lifecycle.
type Phase int

const (
	PhaseSetup  Phase = iota // collecting layouts and ready signals
	PhaseActive              // shots are being resolved
	PhaseOver                // terminal; no further shots
)

func (p Phase) String() string {
	switch p {
	case PhaseSetup:
		return "setup"
	case PhaseActive:
		return "active"
	case PhaseOver:
		return "over"
	}
	return "unknown"
}

// Reason explains why a match reached PhaseOver.
type Reason string

const (
	ReasonFleetDestroyed Reason = "fleet_destroyed"
	ReasonAbandoned      Reason = "abandoned"
)

var (
	ErrOutOfBounds     = errors.New("coordinates out of bounds")
	ErrMalformedLayout = errors.New("malformed layout")
	ErrInvalidPlayer   = errors.New("invalid player number")
	ErrNotReady        = errors.New("match not in progress")
	ErrNotYourTurn     = errors.New("not your turn")
	ErrMatchStarted    = errors.New("match already started")
	ErrNoLayout        = errors.New("no layout submitted")
)

// Opponent returns the other player number (1 <-> 2).
func Opponent(player int) int {
	if player == 1 {
		return 2
	}
	return 1
}

func validPlayer(p int) bool { return p == 1 || p == 2 }

func inBounds(row, col int) bool {
	return row >= 0 && row < Size && col >= 0 && col < Size
}

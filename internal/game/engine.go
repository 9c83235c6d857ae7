// internal/game/engine.go
//
// Authoritative state for a single two-player match.
// Responsibilities:
//   - Hold both player slots (board + ships), the ready set and the turn.
//   - Accept layouts during setup; start the match once both players are ready.
//   - Resolve shots: HIT / MISS / SUNK / INVALID, blocking water around sunk ships.
//   - Track state transitions: setup → active → over.
//
// Notes:
//   - Match is not safe for concurrent use. The session actor owns it.
//   - A rematch is a new Match; a finished Match is never reset in place.
//   - SUNK ends the shooter's turn. Only a bare HIT keeps it.
package game

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type slot struct {
	board *Board
	ships []*Ship
	ready bool
	shots int
	hits  int
}

// Match is one game between player 1 and player 2.
type Match struct {
	ID         string
	StartedAt  time.Time // zero until both players are ready
	FinishedAt time.Time

	slots  [2]slot
	turn   int
	phase  Phase
	winner int
	reason Reason
	strict bool
}

// Option configures a new Match.
type Option func(*Match)

// WithStrictFleet enables ValidateFleet on every submitted layout.
func WithStrictFleet(on bool) Option {
	return func(m *Match) { m.strict = on }
}

// NewMatch constructs a match in PhaseSetup with player 1 to move first.
func NewMatch(opts ...Option) *Match {
	m := &Match{ID: uuid.NewString(), turn: 1, phase: PhaseSetup}
	for _, o := range opts {
		o(m)
	}
	return m
}

// Shot is the full outcome of one resolved shot.
type Shot struct {
	Shooter int
	Row     int
	Col     int
	Result  Result

	Sunk    *Ship      // non-nil when Result == ResultSunk
	Blocked []Position // cells newly marked Blocked around Sunk

	GameOver    bool
	TurnChanged bool
	Turn        int // active player after the shot
}

func (m *Match) slot(p int) *slot { return &m.slots[p-1] }

// Phase returns the current lifecycle phase.
func (m *Match) Phase() Phase { return m.phase }

// Turn returns the player whose turn it is (always 1 or 2).
func (m *Match) Turn() int { return m.turn }

// Winner returns the winning player, or 0 while undecided.
func (m *Match) Winner() int { return m.winner }

// Reason returns why the match ended; empty while not over.
func (m *Match) Reason() Reason { return m.reason }

// Board returns player p's board, or nil if no layout was accepted yet.
func (m *Match) Board(p int) *Board {
	if !validPlayer(p) {
		return nil
	}
	return m.slot(p).board
}

// Ships returns player p's derived ships.
func (m *Match) Ships(p int) []*Ship {
	if !validPlayer(p) {
		return nil
	}
	return m.slot(p).ships
}

// IsReady reports whether player p has signalled ready.
func (m *Match) IsReady(p int) bool {
	return validPlayer(p) && m.slot(p).ready
}

// ReadyCount returns the size of the ready set.
func (m *Match) ReadyCount() int {
	n := 0
	for i := range m.slots {
		if m.slots[i].ready {
			n++
		}
	}
	return n
}

// SubmitLayout replaces player p's board with one built from rows.
// Only allowed during setup; the last accepted submission wins.
func (m *Match) SubmitLayout(p int, rows []string) error {
	if !validPlayer(p) {
		return ErrInvalidPlayer
	}
	if m.phase != PhaseSetup {
		return ErrMatchStarted
	}
	b, ships, err := BuildBoard(rows)
	if err != nil {
		return err
	}
	if m.strict {
		if err := ValidateFleet(ships); err != nil {
			return err
		}
	}
	s := m.slot(p)
	s.board, s.ships = b, ships
	return nil
}

// SetReady adds p to the ready set. It reports true when this call moved the
// match into PhaseActive.
func (m *Match) SetReady(p int) (bool, error) {
	if !validPlayer(p) {
		return false, ErrInvalidPlayer
	}
	if m.phase != PhaseSetup {
		return false, ErrMatchStarted
	}
	s := m.slot(p)
	if s.board == nil {
		return false, ErrNoLayout
	}
	s.ready = true
	if m.ReadyCount() < 2 {
		return false, nil
	}
	m.phase = PhaseActive
	m.turn = 1
	m.StartedAt = time.Now().UTC()
	return true, nil
}

// Withdraw clears player p's slot during setup (the seat was vacated).
func (m *Match) Withdraw(p int) {
	if !validPlayer(p) || m.phase != PhaseSetup {
		return
	}
	m.slots[p-1] = slot{}
}

// Abandon ends an active match because player p left; the opponent wins.
// It reports whether the match transitioned to PhaseOver.
func (m *Match) Abandon(p int) bool {
	if !validPlayer(p) || m.phase != PhaseActive {
		return false
	}
	m.finish(Opponent(p), ReasonAbandoned)
	return true
}

func (m *Match) finish(winner int, r Reason) {
	m.phase = PhaseOver
	m.winner = winner
	m.reason = r
	m.FinishedAt = time.Now().UTC()
}

// Fire resolves a shot by player p at (row, col) on the opponent's board.
//
// Preconditions, in order:
//   - match must be active           → ErrNotReady
//   - p must hold the turn           → ErrNotYourTurn
//   - (row, col) must be on the grid → otherwise Result is INVALID
//
// State errors leave the match untouched.
func (m *Match) Fire(p, row, col int) (Shot, error) {
	if !validPlayer(p) {
		return Shot{}, ErrInvalidPlayer
	}
	if m.phase != PhaseActive {
		return Shot{}, ErrNotReady
	}
	if m.turn != p {
		return Shot{}, ErrNotYourTurn
	}

	me, foe := m.slot(p), m.slot(Opponent(p))
	target := foe.board
	shot := Shot{Shooter: p, Row: row, Col: col, Result: ResultInvalid}
	me.shots++

	state, err := target.Get(row, col)
	if err == nil {
		switch state {
		case Occupied:
			target.cells[row][col] = Hit
			me.hits++
			shot.Result = ResultHit
			if ship := shipAt(foe.ships, row, col); ship != nil && ship.refresh(target) {
				shot.Result = ResultSunk
				shot.Sunk = ship
				shot.Blocked = target.blockAround(ship.Positions)
			}
		case Empty:
			target.cells[row][col] = Miss
			shot.Result = ResultMiss
		}
	}

	// Only a shot that lands can zero the fleet; an empty board never ends the game.
	landed := shot.Result == ResultHit || shot.Result == ResultSunk
	if landed && target.RemainingShipCells() == 0 {
		m.finish(p, ReasonFleetDestroyed)
		shot.GameOver = true
		shot.Turn = m.turn
		return shot, nil
	}
	if shot.Result != ResultHit {
		m.turn = Opponent(p)
		shot.TurnChanged = true
	}
	shot.Turn = m.turn
	return shot, nil
}

// Summary is a read-only snapshot of a match used for history records.
type Summary struct {
	ID         string
	Phase      Phase
	Winner     int
	Reason     Reason
	Shots      [2]int
	Hits       [2]int
	StartedAt  time.Time
	FinishedAt time.Time
}

// Summary snapshots the match.
func (m *Match) Summary() Summary {
	return Summary{
		ID:         m.ID,
		Phase:      m.phase,
		Winner:     m.winner,
		Reason:     m.reason,
		Shots:      [2]int{m.slots[0].shots, m.slots[1].shots},
		Hits:       [2]int{m.slots[0].hits, m.slots[1].hits},
		StartedAt:  m.StartedAt,
		FinishedAt: m.FinishedAt,
	}
}

func (s Summary) String() string {
	return fmt.Sprintf("match %s %s winner=%d reason=%s", s.ID, s.Phase, s.Winner, s.Reason)
}

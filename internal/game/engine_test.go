package game_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/battleship/internal/game"
)

// startedMatch returns an active match with the given layouts.
func startedMatch(t *testing.T, p1, p2 []string, opts ...game.Option) *game.Match {
	t.Helper()
	m := game.NewMatch(opts...)
	require.NoError(t, m.SubmitLayout(1, p1))
	require.NoError(t, m.SubmitLayout(2, p2))
	started, err := m.SetReady(1)
	require.NoError(t, err)
	require.False(t, started)
	started, err = m.SetReady(2)
	require.NoError(t, err)
	require.True(t, started)
	require.Equal(t, game.PhaseActive, m.Phase())
	require.Equal(t, 1, m.Turn())
	return m
}

func TestMatch_Setup(t *testing.T) {
	m := game.NewMatch()
	assert.NotEmpty(t, m.ID)
	assert.Equal(t, game.PhaseSetup, m.Phase())

	_, err := m.SetReady(1)
	assert.ErrorIs(t, err, game.ErrNoLayout)
	assert.ErrorIs(t, m.SubmitLayout(3, layout()), game.ErrInvalidPlayer)
	assert.ErrorIs(t, m.SubmitLayout(1, []string{"1"}), game.ErrMalformedLayout)
	assert.Nil(t, m.Board(1))

	// last submission wins
	require.NoError(t, m.SubmitLayout(1, layout(pos(0, 0))))
	require.NoError(t, m.SubmitLayout(1, layout(pos(5, 5), pos(5, 6))))
	assert.Equal(t, 2, m.Board(1).RemainingShipCells())
	require.Len(t, m.Ships(1), 1)

	_, err = m.Fire(1, 0, 0)
	assert.ErrorIs(t, err, game.ErrNotReady)

	// a vacated seat loses its layout and ready flag
	_, err = m.SetReady(1)
	require.NoError(t, err)
	m.Withdraw(1)
	assert.False(t, m.IsReady(1))
	assert.Nil(t, m.Board(1))
}

func TestMatch_StrictFleetRejectsLShape(t *testing.T) {
	m := game.NewMatch(game.WithStrictFleet(true))
	err := m.SubmitLayout(1, layout(pos(0, 0), pos(0, 1), pos(1, 1)))
	assert.ErrorIs(t, err, game.ErrMalformedLayout)
	assert.Nil(t, m.Board(1))
}

func TestMatch_MissFlipsTurn(t *testing.T) {
	m := startedMatch(t, layout(pos(0, 0), pos(0, 1)), layout())

	shot, err := m.Fire(1, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, game.ResultMiss, shot.Result)
	assert.True(t, shot.TurnChanged)
	assert.False(t, shot.GameOver)
	assert.Equal(t, 2, shot.Turn)
	assert.Equal(t, 2, m.Turn())

	st, _ := m.Board(2).Get(0, 0)
	assert.Equal(t, game.Miss, st)
}

func TestMatch_NotYourTurnLeavesBoardUntouched(t *testing.T) {
	m := startedMatch(t, layout(pos(0, 0)), layout(pos(0, 0)))

	_, err := m.Fire(2, 0, 0)
	require.ErrorIs(t, err, game.ErrNotYourTurn)
	st, _ := m.Board(1).Get(0, 0)
	assert.Equal(t, game.Occupied, st)
	assert.Equal(t, 1, m.Turn())
}

func TestMatch_RepeatShotIsInvalid(t *testing.T) {
	m := startedMatch(t, layout(pos(9, 9)), layout(pos(3, 3), pos(3, 4), pos(7, 7)))

	first, err := m.Fire(1, 3, 3)
	require.NoError(t, err)
	assert.Equal(t, game.ResultHit, first.Result)
	assert.False(t, first.TurnChanged, "a bare hit keeps the turn")

	second, err := m.Fire(1, 3, 3)
	require.NoError(t, err)
	assert.Equal(t, game.ResultInvalid, second.Result)
	assert.True(t, second.TurnChanged)
	st, _ := m.Board(2).Get(3, 3)
	assert.Equal(t, game.Hit, st)
	assert.Equal(t, 2, m.Board(2).RemainingShipCells())

	// miss then miss again at the same cell
	_, err = m.Fire(2, 0, 0)
	require.NoError(t, err)
	again, err := m.Fire(1, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, game.ResultMiss, again.Result)
	_, err = m.Fire(2, 1, 1)
	require.NoError(t, err)
	again, err = m.Fire(1, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, game.ResultInvalid, again.Result)
}

func TestMatch_OutOfBoundsIsInvalid(t *testing.T) {
	m := startedMatch(t, layout(pos(0, 0)), layout(pos(0, 0)))
	for _, p := range []game.Position{pos(-1, 0), pos(10, 3), pos(4, 10)} {
		shot, err := m.Fire(m.Turn(), p.Row, p.Col)
		require.NoError(t, err)
		assert.Equal(t, game.ResultInvalid, shot.Result)
		assert.Nil(t, shot.Sunk)
	}
	assert.Equal(t, 1, m.Board(1).RemainingShipCells())
	assert.Equal(t, 1, m.Board(2).RemainingShipCells())
}

func TestMatch_SinkBlocksNeighbours(t *testing.T) {
	p2 := layout(pos(0, 0), pos(0, 1), pos(5, 5))
	m := startedMatch(t, layout(pos(9, 9)), p2)

	// pre-existing miss next to the ship must stay a miss
	_, err := m.Fire(1, 1, 2)
	require.NoError(t, err)
	_, err = m.Fire(2, 9, 0)
	require.NoError(t, err)

	shot, err := m.Fire(1, 0, 0)
	require.NoError(t, err)
	require.Equal(t, game.ResultHit, shot.Result)

	shot, err = m.Fire(1, 0, 1)
	require.NoError(t, err)
	require.Equal(t, game.ResultSunk, shot.Result)
	require.NotNil(t, shot.Sunk)
	assert.True(t, shot.Sunk.Sunk())
	assert.True(t, shot.Sunk.Horizontal())
	assert.Equal(t, []game.Position{pos(0, 0), pos(0, 1)}, shot.Sunk.Positions)
	assert.True(t, shot.TurnChanged, "SUNK ends the turn")
	assert.Equal(t, 2, m.Turn())
	assert.False(t, shot.GameOver)

	assert.ElementsMatch(t, []game.Position{pos(1, 0), pos(1, 1), pos(0, 2)}, shot.Blocked)
	b := m.Board(2)
	for _, p := range shot.Blocked {
		st, _ := b.Get(p.Row, p.Col)
		assert.Equal(t, game.Blocked, st)
	}
	st, _ := b.Get(1, 2)
	assert.Equal(t, game.Miss, st)

	// firing into blocked water is a no-op
	_, err = m.Fire(2, 9, 1)
	require.NoError(t, err)
	again, err := m.Fire(1, 1, 0)
	require.NoError(t, err)
	assert.Equal(t, game.ResultInvalid, again.Result)
	st, _ = b.Get(1, 0)
	assert.Equal(t, game.Blocked, st)
}

func TestMatch_LastShipEndsGame(t *testing.T) {
	m := startedMatch(t, layout(pos(9, 9)), layout(pos(4, 4), pos(5, 4)))

	shot, err := m.Fire(1, 4, 4)
	require.NoError(t, err)
	require.Equal(t, game.ResultHit, shot.Result)

	shot, err = m.Fire(1, 5, 4)
	require.NoError(t, err)
	assert.Equal(t, game.ResultSunk, shot.Result)
	assert.True(t, shot.GameOver)
	assert.False(t, shot.TurnChanged)
	assert.False(t, shot.Sunk.Horizontal())
	assert.Equal(t, game.PhaseOver, m.Phase())
	assert.Equal(t, 1, m.Winner())
	assert.Equal(t, game.ReasonFleetDestroyed, m.Reason())

	// frozen: nobody can fire and no board changes
	for _, p := range []int{1, 2} {
		_, err := m.Fire(p, 9, 9)
		assert.ErrorIs(t, err, game.ErrNotReady)
	}
	st, _ := m.Board(1).Get(9, 9)
	assert.Equal(t, game.Occupied, st)

	sum := m.Summary()
	assert.Equal(t, m.ID, sum.ID)
	assert.Equal(t, [2]int{2, 0}, sum.Shots)
	assert.Equal(t, [2]int{2, 0}, sum.Hits)
	assert.False(t, sum.FinishedAt.IsZero())
}

func TestMatch_Abandon(t *testing.T) {
	m := game.NewMatch()
	assert.False(t, m.Abandon(1), "setup matches are not abandoned")

	m = startedMatch(t, layout(pos(0, 0)), layout(pos(0, 0)))
	assert.True(t, m.Abandon(2))
	assert.Equal(t, game.PhaseOver, m.Phase())
	assert.Equal(t, 1, m.Winner())
	assert.Equal(t, game.ReasonAbandoned, m.Reason())
	assert.False(t, m.Abandon(1))
}

package history_test

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/battleship/internal/game"
	"github.com/robalobadob/battleship/internal/history"
	"github.com/robalobadob/battleship/internal/session"
)

func sample(i int) history.Match {
	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	return history.Match{
		ID:         fmt.Sprintf("m-%02d", i),
		Players:    [2]string{"alice", "bob"},
		Winner:     1 + i%2,
		Reason:     string(game.ReasonFleetDestroyed),
		Shots:      [2]int{10 + i, 9 + i},
		Hits:       [2]int{5, 4},
		StartedAt:  base.Add(time.Duration(i) * time.Minute),
		FinishedAt: base.Add(time.Duration(i)*time.Minute + 30*time.Second),
	}
}

func stores(t *testing.T) map[string]history.Store {
	t.Helper()
	db, err := history.OpenSQLite(filepath.Join(t.TempDir(), "nested", "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return map[string]history.Store{
		"memory": history.NewMemoryStore(),
		"sqlite": db,
	}
}

func TestStore_SaveAndGet(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			want := sample(1)
			require.NoError(t, s.Save(ctx, want))

			got, err := s.Get(ctx, want.ID)
			require.NoError(t, err)
			assert.Equal(t, want.ID, got.ID)
			assert.Equal(t, want.Players, got.Players)
			assert.Equal(t, want.Winner, got.Winner)
			assert.Equal(t, want.Shots, got.Shots)
			assert.True(t, want.FinishedAt.Equal(got.FinishedAt))

			_, err = s.Get(ctx, "missing")
			assert.ErrorIs(t, err, history.ErrNotFound)
		})
	}
}

func TestStore_SaveIsIdempotent(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			m := sample(3)
			require.NoError(t, s.Save(ctx, m))
			m.Winner = 1
			require.NoError(t, s.Save(ctx, m))

			got, err := s.Get(ctx, m.ID)
			require.NoError(t, err)
			assert.Equal(t, 2, got.Winner, "second save must not overwrite")

			list, err := s.Recent(ctx, 10)
			require.NoError(t, err)
			assert.Len(t, list, 1)
		})
	}
}

func TestStore_RecentNewestFirstAndCapped(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			for i := 0; i < history.MaxRecent+5; i++ {
				require.NoError(t, s.Save(ctx, sample(i)))
			}

			list, err := s.Recent(ctx, 3)
			require.NoError(t, err)
			require.Len(t, list, 3)
			assert.Equal(t, fmt.Sprintf("m-%02d", history.MaxRecent+4), list[0].ID)
			assert.Equal(t, fmt.Sprintf("m-%02d", history.MaxRecent+2), list[2].ID)

			list, err = s.Recent(ctx, 0)
			require.NoError(t, err)
			assert.Len(t, list, history.MaxRecent)
		})
	}
}

func TestSQLite_ReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	db, err := history.OpenSQLite(path)
	require.NoError(t, err)
	require.NoError(t, db.Save(context.Background(), sample(7)))
	require.NoError(t, db.Close())

	// migrations are skipped on the second open
	db, err = history.OpenSQLite(path)
	require.NoError(t, err)
	defer db.Close()
	got, err := db.Get(context.Background(), "m-07")
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Players[0])
}

func TestRecorder_Record(t *testing.T) {
	s := history.NewMemoryStore()
	res := session.Result{
		Summary: game.Summary{
			ID:     "abc",
			Phase:  game.PhaseOver,
			Winner: 2,
			Reason: game.ReasonAbandoned,
			Shots:  [2]int{3, 4},
			Hits:   [2]int{1, 2},
		},
		Names: [2]string{"alice", "bob"},
	}
	require.NoError(t, history.Recorder{Store: s}.Record(context.Background(), res))

	got, err := s.Get(context.Background(), "abc")
	require.NoError(t, err)
	assert.Equal(t, 2, got.Winner)
	assert.Equal(t, "abandoned", got.Reason)
	assert.Equal(t, [2]string{"alice", "bob"}, got.Players)
	assert.Equal(t, [2]int{1, 2}, got.Hits)
}

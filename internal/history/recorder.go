package history

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/battleship/internal/session"
)

// Recorder adapts a Store to session.Recorder.
type Recorder struct {
	Store Store
}

var _ session.Recorder = Recorder{}

// Record converts a finished match and saves it.
func (r Recorder) Record(ctx context.Context, res session.Result) error {
	m := Match{
		ID:         res.ID,
		Players:    res.Names,
		Winner:     res.Winner,
		Reason:     string(res.Reason),
		Shots:      res.Shots,
		Hits:       res.Hits,
		StartedAt:  res.StartedAt,
		FinishedAt: res.FinishedAt,
	}
	if err := r.Store.Save(ctx, m); err != nil {
		return err
	}
	log.Info().Str("match", m.ID).Int("winner", m.Winner).Str("reason", m.Reason).Msg("match recorded")
	return nil
}

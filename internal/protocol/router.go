package protocol

import (
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/battleship/internal/game"
)

// Audience selects who receives an outbound message, relative to the player
// whose event produced it.
type Audience int

const (
	ToSender Audience = iota
	ToOther
	ToAll
)

// Outbound is one message produced by the router.
type Outbound struct {
	To     Audience
	Sender int
	Text   string
}

// Recipients resolves the audience into concrete player numbers.
func (o Outbound) Recipients() []int {
	switch o.To {
	case ToSender:
		return []int{o.Sender}
	case ToOther:
		return []int{game.Opponent(o.Sender)}
	}
	return []int{1, 2}
}

// Router maps (player, message) events onto the current match and produces
// the resulting outbound messages. It owns the match and replaces it on
// rematch. Like game.Match it must be driven from a single goroutine.
type Router struct {
	match    *game.Match
	newMatch func() *game.Match
	onFinish func(game.Summary)
	rematch  int // player with a pending REMATCH_REQUEST, 0 if none
}

// RouterOption configures a Router.
type RouterOption func(*Router)

// WithMatchFactory sets how fresh matches are created (initial and rematch).
func WithMatchFactory(f func() *game.Match) RouterOption {
	return func(r *Router) { r.newMatch = f }
}

// WithFinishHook registers a callback invoked once per match that reaches
// game.PhaseOver. It runs on the router's goroutine and must not block.
func WithFinishHook(f func(game.Summary)) RouterOption {
	return func(r *Router) { r.onFinish = f }
}

// NewRouter builds a router with a fresh match.
func NewRouter(opts ...RouterOption) *Router {
	r := &Router{newMatch: func() *game.Match { return game.NewMatch() }}
	for _, o := range opts {
		o(r)
	}
	r.match = r.newMatch()
	return r
}

// Match returns the current match.
func (r *Router) Match() *game.Match { return r.match }

func (r *Router) reset() {
	r.match = r.newMatch()
	r.rematch = 0
	log.Info().Str("match", r.match.ID).Msg("new match")
}

func (r *Router) finished() {
	if r.onFinish != nil {
		r.onFinish(r.match.Summary())
	}
}

// Join reports that player took a seat. A match left over from a previous
// pairing is replaced so the new pair starts in setup.
func (r *Router) Join(player int) []Outbound {
	if r.match.Phase() != game.PhaseSetup {
		r.reset()
	}
	return []Outbound{
		{To: ToSender, Sender: player, Text: Player(player)},
		{To: ToOther, Sender: player, Text: PlayerJoined(player)},
	}
}

// Leave reports that player's connection is gone.
func (r *Router) Leave(player int) []Outbound {
	out := []Outbound{{To: ToOther, Sender: player, Text: PlayerDisconnected(player)}}
	r.rematch = 0
	switch r.match.Phase() {
	case game.PhaseSetup:
		r.match.Withdraw(player)
	case game.PhaseActive:
		if r.match.Abandon(player) {
			out = append(out, Outbound{To: ToOther, Sender: player, Text: GameOver})
			r.finished()
		}
	}
	return out
}

// Handle decodes raw from player and applies it.
func (r *Router) Handle(player int, raw string) []Outbound {
	msg, err := Parse(raw)
	if err != nil {
		log.Warn().Err(err).Int("player", player).Msg("dropping message")
		return nil
	}
	switch msg.Kind {
	case KindMap:
		return r.handleMap(player, msg.Rows)
	case KindReady:
		return r.handleReady(player)
	case KindShot:
		return r.handleShot(player, msg.Row, msg.Col)
	case KindRematchRequest, KindRematchAccept, KindRematchReject:
		return r.handleRematch(player, msg)
	}
	log.Debug().Int("player", player).Str("raw", raw).Msg("ignoring unrecognized message")
	return nil
}

func (r *Router) handleMap(player int, rows []string) []Outbound {
	if err := r.match.SubmitLayout(player, rows); err != nil {
		log.Warn().Err(err).Int("player", player).Msg("layout rejected")
		return nil
	}
	log.Debug().Int("player", player).Int("ships", len(r.match.Ships(player))).Msg("layout accepted")
	return nil
}

func (r *Router) handleReady(player int) []Outbound {
	started, err := r.match.SetReady(player)
	if err != nil {
		log.Warn().Err(err).Int("player", player).Msg("ready ignored")
		return nil
	}
	log.Info().Int("player", player).Msg("player ready")
	if !started {
		return nil
	}
	log.Info().Str("match", r.match.ID).Msg("both players ready, match started")
	return []Outbound{{To: ToAll, Sender: player, Text: Turn(r.match.Turn())}}
}

func (r *Router) handleShot(player, row, col int) []Outbound {
	shot, err := r.match.Fire(player, row, col)
	switch {
	case errors.Is(err, game.ErrNotReady):
		return []Outbound{{To: ToSender, Sender: player, Text: GameNotReady}}
	case errors.Is(err, game.ErrNotYourTurn):
		return append([]Outbound{{To: ToSender, Sender: player, Text: NotYourTurn}}, r.preload()...)
	case err != nil:
		log.Warn().Err(err).Int("player", player).Msg("shot rejected")
		return nil
	}

	log.Debug().Int("player", player).Int("row", row).Int("col", col).
		Str("result", string(shot.Result)).Msg("shot resolved")

	var out []Outbound
	all := func(text string) { out = append(out, Outbound{To: ToAll, Sender: player, Text: text}) }
	if shot.Sunk != nil {
		all(SunkShip(shot.Sunk))
		if len(shot.Blocked) > 0 {
			all(MarkedPositions(shot.Blocked))
		}
	}
	all(ShotResult(row, col, shot.Result))
	switch {
	case shot.GameOver:
		all(GameOver)
		log.Info().Str("match", r.match.ID).Int("winner", player).Msg("game over")
		r.finished()
	case shot.TurnChanged:
		all(Turn(shot.Turn))
	}
	return append(out, r.preload()...)
}

// preload sends each player the opponent-facing encoding of the other board.
func (r *Router) preload() []Outbound {
	return []Outbound{
		{To: ToOther, Sender: 1, Text: PreloadMap(r.match.Board(1))},
		{To: ToOther, Sender: 2, Text: PreloadMap(r.match.Board(2))},
	}
}

func (r *Router) handleRematch(player int, msg Message) []Outbound {
	out := []Outbound{{To: ToOther, Sender: player, Text: msg.Raw}}
	switch msg.Kind {
	case KindRematchRequest:
		r.rematch = player
	case KindRematchReject:
		r.rematch = 0
	case KindRematchAccept:
		if r.match.Phase() == game.PhaseOver && r.rematch == game.Opponent(player) {
			r.reset()
		}
	}
	return out
}

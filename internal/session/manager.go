// internal/session/manager.go
//
// Session manager: the edge between transport connections and the router.
// Responsibilities:
//   - Admit at most two connections and number them 1 and 2 (lowest free seat).
//   - Serialise every join / message / leave through one actor goroutine that
//     exclusively owns the protocol.Router (and therefore the match).
//   - Fan router output out to the seated connections, fire-and-forget.
//   - Hand finished matches to a Recorder without blocking the actor.
//
// Notes:
//   - Conn.Send must never block; transports queue internally.
//   - A failing send is logged and skipped. Other recipients still get theirs.

package session

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/battleship/internal/game"
	"github.com/robalobadob/battleship/internal/protocol"
)

// MaxPlayers is the number of seats in a match.
const MaxPlayers = 2

var (
	ErrServerFull    = errors.New("server full")
	ErrStopped       = errors.New("session manager stopped")
	ErrSendQueueFull = errors.New("send queue full")
	ErrConnClosed    = errors.New("connection closed")
)

// Conn is the transport collaborator for one seated player.
type Conn interface {
	// Send enqueues text for delivery without blocking.
	Send(text string) error
	Close() error
}

// Recorder persists finished matches.
type Recorder interface {
	Record(ctx context.Context, r Result) error
}

// Result describes a finished match together with the seat names.
type Result struct {
	game.Summary
	Names [MaxPlayers]string
}

// Status is a point-in-time view for diagnostics.
type Status struct {
	Players int    `json:"players"`
	Phase   string `json:"phase"`
	MatchID string `json:"matchId"`
	Turn    int    `json:"turn,omitempty"`
}

type eventKind int

const (
	evJoin eventKind = iota
	evMessage
	evLeave
	evStatus
)

type event struct {
	kind   eventKind
	player int
	text   string
	conn   Conn
	name   string
	reply  chan joinReply
	status chan Status
}

type joinReply struct {
	player int
	err    error
}

type seat struct {
	conn Conn
	name string
}

// Manager owns the match on a single goroutine (Run).
type Manager struct {
	events   chan event
	done     chan struct{}
	seated   atomic.Int32
	recorder Recorder

	// actor-owned
	router *protocol.Router
	seats  [MaxPlayers + 1]*seat // index 1..MaxPlayers
}

// Option configures a Manager.
type Option func(*Manager)

// WithRecorder sets where finished matches are recorded.
func WithRecorder(r Recorder) Option {
	return func(m *Manager) { m.recorder = r }
}

// WithMatchFactory controls how matches are created.
func WithMatchFactory(f func() *game.Match) Option {
	return func(m *Manager) {
		m.router = protocol.NewRouter(protocol.WithMatchFactory(f), protocol.WithFinishHook(m.finished))
	}
}

// New builds a Manager. Call Run to start processing.
func New(opts ...Option) *Manager {
	m := &Manager{
		events: make(chan event, 64),
		done:   make(chan struct{}),
	}
	m.router = protocol.NewRouter(protocol.WithFinishHook(m.finished))
	for _, o := range opts {
		o(m)
	}
	return m
}

// Run processes events until ctx is cancelled, then closes every seated
// connection.
func (m *Manager) Run(ctx context.Context) error {
	defer close(m.done)
	log.Info().Str("match", m.router.Match().ID).Msg("session manager running")
	for {
		select {
		case <-ctx.Done():
			m.closeAll()
			return nil
		case ev := <-m.events:
			m.apply(ev)
		}
	}
}

func (m *Manager) submit(ctx context.Context, ev event) error {
	select {
	case m.events <- ev:
		return nil
	case <-m.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Full reports whether every seat is taken. It is advisory; Join is authoritative.
func (m *Manager) Full() bool { return m.seated.Load() >= MaxPlayers }

// Join seats conn and returns its player number.
func (m *Manager) Join(ctx context.Context, conn Conn, name string) (int, error) {
	reply := make(chan joinReply, 1)
	if err := m.submit(ctx, event{kind: evJoin, conn: conn, name: name, reply: reply}); err != nil {
		return 0, err
	}
	select {
	case r := <-reply:
		return r.player, r.err
	case <-m.done:
		return 0, ErrStopped
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}

// Deliver queues an inbound text message from player.
func (m *Manager) Deliver(player int, text string) {
	if err := m.submit(context.Background(), event{kind: evMessage, player: player, text: text}); err != nil {
		log.Debug().Err(err).Int("player", player).Msg("message dropped")
	}
}

// Leave reports that player's connection has gone away.
func (m *Manager) Leave(player int) {
	if err := m.submit(context.Background(), event{kind: evLeave, player: player}); err != nil {
		log.Debug().Err(err).Int("player", player).Msg("leave dropped")
	}
}

// Status asks the actor for a snapshot.
func (m *Manager) Status(ctx context.Context) (Status, error) {
	ch := make(chan Status, 1)
	if err := m.submit(ctx, event{kind: evStatus, status: ch}); err != nil {
		return Status{}, err
	}
	select {
	case s := <-ch:
		return s, nil
	case <-m.done:
		return Status{}, ErrStopped
	case <-ctx.Done():
		return Status{}, ctx.Err()
	}
}

// ------------------------------ actor side ---------------------------------

func (m *Manager) apply(ev event) {
	switch ev.kind {
	case evJoin:
		p, err := m.join(ev.conn, ev.name)
		ev.reply <- joinReply{player: p, err: err}
	case evMessage:
		if m.seats[ev.player] == nil {
			return
		}
		m.dispatch(m.router.Handle(ev.player, ev.text))
	case evLeave:
		m.leave(ev.player)
	case evStatus:
		ev.status <- m.status()
	}
}

func (m *Manager) join(conn Conn, name string) (int, error) {
	for p := 1; p <= MaxPlayers; p++ {
		if m.seats[p] != nil {
			continue
		}
		m.seats[p] = &seat{conn: conn, name: name}
		m.seated.Add(1)
		log.Info().Int("player", p).Str("name", name).Msg("player connected")
		m.dispatch(m.router.Join(p))
		if m.Full() {
			log.Info().Msg("both players connected, waiting for ready signals")
		}
		return p, nil
	}
	log.Warn().Msg("server full, connection denied")
	return 0, ErrServerFull
}

func (m *Manager) leave(player int) {
	if player < 1 || player > MaxPlayers || m.seats[player] == nil {
		return
	}
	// the router runs first so a finish hook still sees the leaver's name
	out := m.router.Leave(player)
	s := m.seats[player]
	m.seats[player] = nil
	m.seated.Add(-1)
	_ = s.conn.Close()
	log.Info().Int("player", player).Msg("player disconnected")
	m.dispatch(out)
}

func (m *Manager) dispatch(out []protocol.Outbound) {
	for _, o := range out {
		for _, p := range o.Recipients() {
			s := m.seats[p]
			if s == nil {
				continue
			}
			if err := s.conn.Send(o.Text); err != nil {
				log.Warn().Err(err).Int("player", p).Msg("send failed")
			}
		}
	}
}

func (m *Manager) status() Status {
	match := m.router.Match()
	st := Status{
		Players: int(m.seated.Load()),
		Phase:   match.Phase().String(),
		MatchID: match.ID,
	}
	if match.Phase() == game.PhaseActive {
		st.Turn = match.Turn()
	}
	return st
}

func (m *Manager) closeAll() {
	for p := 1; p <= MaxPlayers; p++ {
		if s := m.seats[p]; s != nil {
			_ = s.conn.Close()
			m.seats[p] = nil
			m.seated.Add(-1)
		}
	}
}

// finished runs on the actor goroutine; recording happens off it.
func (m *Manager) finished(sum game.Summary) {
	if m.recorder == nil {
		return
	}
	res := Result{Summary: sum}
	for p := 1; p <= MaxPlayers; p++ {
		if s := m.seats[p]; s != nil {
			res.Names[p-1] = s.name
		}
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := m.recorder.Record(ctx, res); err != nil {
			log.Error().Err(err).Str("match", sum.ID).Msg("record match")
		}
	}()
}

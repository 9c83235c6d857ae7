// internal/httpserver/ws.go
//
// WebSocket transport for one seated player.
//   - Admission: 401 on a bad token (or a missing one when REQUIRE_TOKEN),
//     403 when both seats are taken. Both happen before the upgrade.
//   - readPump forwards text frames to the lobby, rate limited per connection.
//   - writePump drains the send queue and keeps the peer alive with pings.
//   - Send never blocks: a full queue reports session.ErrSendQueueFull.

package httpserver

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/robalobadob/battleship/internal/auth"
	"github.com/robalobadob/battleship/internal/session"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

type wsConn struct {
	ws        *websocket.Conn
	send      chan string
	done      chan struct{}
	closeOnce sync.Once
}

func newWSConn(ws *websocket.Conn, queue int) *wsConn {
	return &wsConn{
		ws:   ws,
		send: make(chan string, queue),
		done: make(chan struct{}),
	}
}

func (c *wsConn) Send(text string) error {
	select {
	case <-c.done:
		return session.ErrConnClosed
	default:
	}
	select {
	case c.send <- text:
		return nil
	default:
		return session.ErrSendQueueFull
	}
}

// Close stops the write pump, which flushes what is queued and closes the socket.
func (c *wsConn) Close() error {
	c.closeOnce.Do(func() { close(c.done) })
	return nil
}

func (c *wsConn) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.ws.Close()
	}()

	for {
		select {
		case text := <-c.send:
			if err := c.write(websocket.TextMessage, []byte(text)); err != nil {
				return
			}
		case <-ticker.C:
			if err := c.write(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			for {
				select {
				case text := <-c.send:
					if err := c.write(websocket.TextMessage, []byte(text)); err != nil {
						return
					}
				default:
					_ = c.write(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
					return
				}
			}
		}
	}
}

func (c *wsConn) write(kind int, data []byte) error {
	if err := c.ws.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.ws.WriteMessage(kind, data)
}

func (c *wsConn) readPump(lobby Lobby, player int, limiter *rate.Limiter) {
	defer func() {
		lobby.Leave(player)
		_ = c.Close()
	}()

	c.ws.SetReadLimit(maxMessageSize)
	_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		kind, data, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseNoStatusReceived) {
				log.Warn().Err(err).Int("player", player).Msg("websocket read")
			}
			return
		}
		if kind != websocket.TextMessage {
			continue
		}
		if !limiter.Allow() {
			log.Debug().Int("player", player).Msg("rate limited, message dropped")
			continue
		}
		log.Debug().Int("player", player).Str("msg", string(data)).Msg("received")
		lobby.Deliver(player, string(data))
	}
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	name := ""
	if tok := auth.TokenFromRequest(r); tok != "" {
		n, err := s.issuer.Verify(tok)
		if err != nil {
			http.Error(w, `{"error":"invalid_token"}`, http.StatusUnauthorized)
			return
		}
		name = n
	} else if s.cfg.RequireToken {
		http.Error(w, `{"error":"token_required"}`, http.StatusUnauthorized)
		return
	}

	if s.lobby.Full() {
		log.Warn().Str("remote", r.RemoteAddr).Msg("server full, connection denied")
		http.Error(w, `{"error":"server_full"}`, http.StatusForbidden)
		return
	}

	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied with an HTTP error.
		log.Warn().Err(err).Msg("websocket upgrade")
		return
	}
	c := newWSConn(ws, s.cfg.SendQueue)
	go c.writePump()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	player, err := s.lobby.Join(ctx, c, name)
	cancel()
	if err != nil {
		// lost a race for the last seat, or shutting down
		_ = ws.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.ClosePolicyViolation, err.Error()),
			time.Now().Add(time.Second))
		_ = c.Close()
		return
	}

	c.readPump(s.lobby, player, rate.NewLimiter(rate.Limit(s.cfg.MsgRate), s.cfg.MsgBurst))
}

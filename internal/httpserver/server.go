// internal/httpserver/server.go
//
// HTTP server wiring for the battleship backend.
// Responsibilities:
//   - Router + middleware (JSON, CORS, timeouts, panic recovery, request IDs).
//   - Public endpoints: "/", "/health".
//   - Seat tokens: POST /auth/token.
//   - Match history: mounted under /matches (routes_matches.go).
//   - Game transport: GET /ws upgrades to a WebSocket (ws.go).
//
// Notes:
//   - /ws sits outside the JSON group so the handler timeout does not apply
//     to long-lived connections.
//   - CORS allows either one configured origin or any origin ("*").

package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/battleship/internal/auth"
	"github.com/robalobadob/battleship/internal/config"
	"github.com/robalobadob/battleship/internal/history"
	"github.com/robalobadob/battleship/internal/session"
)

// Lobby is the session collaborator the server admits connections into.
type Lobby interface {
	Full() bool
	Join(ctx context.Context, conn session.Conn, name string) (int, error)
	Deliver(player int, text string)
	Leave(player int)
	Status(ctx context.Context) (session.Status, error)
}

// Server bundles router and collaborators.
type Server struct {
	r        *chi.Mux
	cfg      config.Config
	lobby    Lobby
	history  history.Store
	issuer   *auth.Issuer
	upgrader websocket.Upgrader
}

// New constructs a Server, installs middleware, and registers routes.
func New(cfg config.Config, lobby Lobby, hist history.Store, issuer *auth.Issuer) *Server {
	s := &Server{r: chi.NewRouter(), cfg: cfg, lobby: lobby, history: hist, issuer: issuer}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.checkOrigin,
	}

	// --- middleware ---
	s.r.Use(chimw.RequestID) // add X-Request-ID
	s.r.Use(chimw.RealIP)    // set RemoteAddr from X-Forwarded-For etc.
	s.r.Use(chimw.Recoverer) // recover from panics

	s.r.Get("/ws", s.handleWS)

	s.r.Group(func(r chi.Router) {
		r.Use(chimw.Timeout(10 * time.Second))
		r.Use(jsonContentType)
		r.Use(s.cors)

		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"service":"battleship-go","endpoints":["/health","GET /ws","POST /auth/token","GET /matches","GET /matches/{id}"]}`))
		})
		r.Get("/health", s.handleHealth)
		r.Post("/auth/token", s.handleToken)
		s.mountMatches(r)

		// JSON 404 for easier debugging
		r.NotFound(func(w http.ResponseWriter, r *http.Request) {
			writeError(w, http.StatusNotFound, "not_found")
		})
	})

	return s
}

// Handler exposes the router (useful for tests).
func (s *Server) Handler() http.Handler { return s.r }

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.r,
		ReadHeaderTimeout: 5 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("http server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

func (s *Server) cors(next http.Handler) http.Handler {
	origin := s.cfg.ClientOrigin
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Vary", "Origin")
		w.Header().Set("Access-Control-Allow-Origin", origin)
		if origin != "*" {
			w.Header().Set("Access-Control-Allow-Credentials", "true")
		}
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) checkOrigin(r *http.Request) bool {
	if s.cfg.ClientOrigin == "*" {
		return true
	}
	o := r.Header.Get("Origin")
	return o == "" || o == s.cfg.ClientOrigin
}

// ------------------------------ handlers -----------------------------------

type healthRes struct {
	OK bool `json:"ok"`
	session.Status
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	st, err := s.lobby.Status(r.Context())
	if err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{"ok": false, "error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, healthRes{OK: true, Status: st})
}

type tokenReq struct {
	Name     string `json:"name"`
	Password string `json:"password"`
}

type tokenRes struct {
	Token     string    `json:"token"`
	Name      string    `json:"name"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func (s *Server) handleToken(w http.ResponseWriter, r *http.Request) {
	var req tokenReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	tok, exp, err := s.issuer.Issue(req.Name, req.Password)
	switch {
	case errors.Is(err, auth.ErrInvalidName):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, auth.ErrInvalidPassword):
		writeError(w, http.StatusUnauthorized, "invalid_password")
		return
	case err != nil:
		log.Error().Err(err).Msg("issue token")
		writeError(w, http.StatusInternalServerError, "sign_failed")
		return
	}
	writeJSON(w, http.StatusOK, tokenRes{Token: tok, Name: auth.NormalizeName(req.Name), ExpiresAt: exp})
}

// ------------------------------- helpers -----------------------------------

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

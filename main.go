package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/robalobadob/battleship/internal/auth"
	"github.com/robalobadob/battleship/internal/config"
	"github.com/robalobadob/battleship/internal/game"
	"github.com/robalobadob/battleship/internal/history"
	"github.com/robalobadob/battleship/internal/httpserver"
	"github.com/robalobadob/battleship/internal/session"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	setupLogging(cfg)

	store, closeStore := openHistory(cfg)
	defer closeStore()

	mgr := session.New(
		session.WithRecorder(history.Recorder{Store: store}),
		session.WithMatchFactory(func() *game.Match {
			return game.NewMatch(game.WithStrictFleet(cfg.StrictFleet))
		}),
	)
	issuer := auth.NewIssuer(cfg.JWTSecret, cfg.JWTTTL, cfg.ServerPasswordHash)
	srv := httpserver.New(cfg, mgr, store, issuer)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return mgr.Run(ctx) })
	g.Go(func() error { return srv.Run(ctx, cfg.Addr()) })

	log.Info().
		Str("port", cfg.Port).
		Bool("strictFleet", cfg.StrictFleet).
		Bool("requireToken", cfg.RequireToken).
		Msg("starting battleship server")
	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("server exited")
		closeStore()
		os.Exit(1)
	}
	log.Info().Msg("server stopped")
}

func setupLogging(cfg config.Config) {
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}
	var out io.Writer = os.Stderr
	if cfg.LogFormat == "console" {
		out = zerolog.ConsoleWriter{Out: os.Stderr}
	}
	log.Logger = zerolog.New(out).With().Timestamp().Logger()
}

// openHistory picks SQLite when DB_PATH is set, memory otherwise.
func openHistory(cfg config.Config) (history.Store, func()) {
	if cfg.DBPath == "" {
		log.Info().Msg("match history kept in memory")
		return history.NewMemoryStore(), func() {}
	}
	db, err := history.OpenSQLite(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("open history database")
	}
	log.Info().Str("path", cfg.DBPath).Msg("match history in sqlite")
	return db, func() { _ = db.Close() }
}

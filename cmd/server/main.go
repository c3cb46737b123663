package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gorilla/handlers"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"
	"truco-server/internal/config"
	"truco-server/internal/jwt"
	"truco-server/internal/mux"
	"truco-server/pkg/broker"
	"truco-server/pkg/db"
	"truco-server/pkg/room"
	"truco-server/pkg/store"
	"truco-server/pkg/truco"
)

const readTimeout = time.Second * 5
const writeTimeout = time.Second * 10
const shutdownTimeout = time.Second * 15

// Version is the server version
var Version = "v0.0.0-dev"

var addr = flag.String("addr", ":5000", "the listen address")

type notifier interface {
	room.PayoutService
	room.EventPublisher
}

func main() {
	flag.Parse()
	setupLogger()

	cfg := config.Instance()

	// fail fast
	if err := jwt.LoadKeys(); err != nil {
		logrus.WithError(err).Fatal("could not load keys")
	}

	// run the db migrations
	db.Migrate()

	n, closeBroker := setupBroker(cfg)
	defer closeBroker()

	pitBoss := room.NewPitBoss(
		truco.NewEngine(logrus.StandardLogger()),
		store.NewPostgres(db.Instance()),
		n,
		n,
		room.Options{
			AutoDealDelay: cfg.AutoDealDelay(),
			TurnTimeout:   cfg.TurnTimeout(),
			SaveTimeout:   room.DefaultOptions().SaveTimeout,
		},
	)

	recovered, err := pitBoss.Recover(context.Background())
	if err != nil {
		logrus.WithError(err).Error("could not recover rooms")
	} else if recovered > 0 {
		logrus.WithField("rooms", recovered).Info("recovered unfinished matches")
	}

	c := cors.New(cors.Options{
		AllowedHeaders: []string{"Origin", "Accept", "Content-Type", "X-Requested-With", "Authorization"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
		ExposedHeaders: []string{mux.PlayerIDHeader},
	})

	srv := &http.Server{
		Addr:         *addr,
		Handler:      loggingHandler(c.Handler(mux.NewMux(Version, pitBoss))),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	}

	go func() {
		logrus.WithField("addr", srv.Addr).Info("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.WithError(err).Fatal("server stopped")
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	logrus.WithField("signal", (<-sig).String()).Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logrus.WithError(err).Error("could not shut down cleanly")
	}

	// flush every room's pending snapshot writes
	pitBoss.EndShift()
}

// setupBroker connects to NATS when configured, otherwise results are only logged
func setupBroker(cfg config.Config) (notifier, func()) {
	if cfg.NATS.URL == "" {
		logrus.Info("no NATS url configured, match results will only be logged")
		return broker.NewLog(logrus.StandardLogger()), func() {}
	}

	conn, err := broker.Connect(cfg.NATS.URL)
	if err != nil {
		logrus.WithError(err).Fatal("could not connect to NATS")
	}

	return broker.NewNATS(conn, cfg.NATS.SubjectPrefix), func() {
		if err := conn.Drain(); err != nil {
			logrus.WithError(err).Warn("could not drain NATS connection")
		}
	}
}

func loggingHandler(next http.Handler) http.Handler {
	if config.Instance().Log.DisableAccessLogs {
		return next
	}

	return handlers.CombinedLoggingHandler(os.Stdout, next)
}

func setupLogger() {
	if lvl := config.Instance().Log.Level; lvl != "" {
		level, err := logrus.ParseLevel(lvl)
		if err != nil {
			logrus.WithError(err).Fatal("could not parse level")
		}

		logrus.SetLevel(level)
	}

	if strings.ToLower(os.Getenv("LOG_FORMAT")) == "json" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}
}

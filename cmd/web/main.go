package main

import (
	"context"
	"embed"
	"errors"
	"flag"
	"io/fs"
	"mime"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jonboulle/clockwork"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"colortap/internal/capture"
	"colortap/internal/config"
	"colortap/internal/game"
	"colortap/internal/handlers"
	"colortap/internal/notify"
)

func main() {
	configPath := flag.String("config", os.Getenv("CONFIG_FILE"), "path to a YAML config file")
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.LogLevel))
	if err != nil {
		log.Warn().Str("log_level", cfg.LogLevel).Msg("unknown log level, using info")
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	_ = mime.AddExtensionType(".js", "application/javascript")
	_ = mime.AddExtensionType(".css", "text/css")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	notifier := notify.NewNotifier(newPublisher(cfg), 0)
	notifierDone := make(chan struct{})
	notifyCtx, stopNotifier := context.WithCancel(context.Background())
	go func() {
		notifier.Run(notifyCtx)
		close(notifierDone)
	}()

	clock := clockwork.NewRealClock()
	store, err := game.NewStore(game.StoreConfig{
		Settings: cfg.Settings(),
		Palette:  cfg.Palette(),
		Clock:    clock,
		NewRecorder: func(sessionID string) game.Recorder {
			rec := capture.NewSimulatedRecorder(cfg.Capture.PermissionGranted, cfg.Capture.Persist, clock)
			return capture.NewWorker(sessionID, rec, cfg.Capture.QueueSize)
		},
		Observer: notifier,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("invalid game configuration")
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(handlers.RequestLogger)
	r.Use(middleware.Recoverer)

	staticFS, err := fs.Sub(embeddedStatic, "static")
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load static assets")
	}
	r.Mount("/static", http.StripPrefix("/static", http.FileServer(http.FS(staticFS))))

	homeHandler := handlers.NewHomeHandler(store)
	gameHandler := handlers.NewGameHandler(store)
	socketHandler := handlers.NewSocketHandler(store, handlers.DefaultConnectionConfig())

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(15 * time.Second))
		homeHandler.RegisterRoutes(r)
		gameHandler.RegisterRoutes(r)
	})
	gameHandler.RegisterStreamRoutes(r)
	socketHandler.RegisterRoutes(r)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Hx-Request", "Hx-Target", "Hx-Current-Url"},
		AllowCredentials: false,
	})

	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           corsHandler.Handler(r),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info().
			Str("addr", cfg.Addr()).
			Int("session_seconds", cfg.Game.SessionSeconds).
			Int("decision_seconds", cfg.Game.DecisionSeconds).
			Bool("nats", cfg.NATS.URL != "").
			Msg("listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	store.CloseAll()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
	}
	stopNotifier()
	<-notifierDone
	log.Info().Msg("stopped")
}

func newPublisher(cfg config.Config) notify.Publisher {
	if cfg.NATS.URL == "" {
		return notify.LogPublisher{}
	}
	natsCfg := notify.DefaultNATSConfig()
	natsCfg.URL = cfg.NATS.URL
	natsCfg.SubjectPrefix = cfg.NATS.SubjectPrefix
	natsCfg.MaxReconnects = cfg.NATS.MaxReconnects
	pub, err := notify.NewNATSPublisher(natsCfg)
	if err != nil {
		log.Warn().Err(err).Str("url", cfg.NATS.URL).Msg("NATS unavailable, logging events instead")
		return notify.LogPublisher{}
	}
	return pub
}

//go:embed static/*
var embeddedStatic embed.FS

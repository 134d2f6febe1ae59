package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	gormlogger "gorm.io/gorm/logger"

	"github.com/rohits-web03/notevault/internal/api"
	"github.com/rohits-web03/notevault/internal/api/handlers"
	"github.com/rohits-web03/notevault/internal/config"
	"github.com/rohits-web03/notevault/internal/logger"
	"github.com/rohits-web03/notevault/internal/repositories"
	"github.com/rohits-web03/notevault/internal/services"
	"github.com/rohits-web03/notevault/internal/validation"
	"github.com/rohits-web03/notevault/internal/views"
)

// @title        NoteVault API
// @version      1.0
// @description  JSON API over a user's notes. Authenticate through the login page; the session cookie is sent with every request.
// @BasePath     /api
func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Environment, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "build logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}

func run(ctx context.Context, cfg config.Config, log *zap.Logger) error {
	dbLogLevel := gormlogger.Warn
	if !cfg.IsProduction() && logger.ParseLevel(cfg.LogLevel) == zap.DebugLevel {
		dbLogLevel = gormlogger.Info
	}
	db, err := repositories.Open(cfg.DBDriver, cfg.DBURL, dbLogLevel)
	if err != nil {
		return err
	}
	store := repositories.NewStore(db)
	defer store.Close()
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := store.Ping(pingCtx); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}
	log.Info("database connected", zap.String("driver", cfg.DBDriver))

	sessions, err := newSessionStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer sessions.Close()

	objects, err := repositories.NewObjectStore(ctx, cfg.Storage)
	if err != nil {
		return err
	}
	if objects == nil {
		log.Info("attachment uploads disabled")
	}

	tmpl, err := views.Parse()
	if err != nil {
		return err
	}

	v := validation.New()
	authService := services.NewAuthService(store, sessions, v, cfg.JWTSecret, cfg.SessionTTL, log.Named("auth"))
	noteService := services.NewNoteService(store, objects, v, cfg.PageSize, log.Named("notes"))

	var google *services.GoogleAuth
	if cfg.Google.Enabled() {
		google = services.NewGoogleAuth(cfg.Google)
	}

	h := handlers.New(handlers.Deps{
		Auth:   authService,
		Notes:  noteService,
		Google: google,
		Views:  tmpl,
		Config: cfg,
		Log:    log.Named("http"),
	})

	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Port),
		Handler: api.SetupRouter(h, authService, cfg, log.Named("http")),
		// Timeouts prevent resource exhaustion from slow clients
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting NoteVault server", zap.String("port", cfg.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen on port %s: %w", cfg.Port, err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func newSessionStore(ctx context.Context, cfg config.Config) (repositories.SessionStore, error) {
	if cfg.SessionStore == "redis" {
		return repositories.NewRedisSessionStore(ctx, cfg.RedisURL)
	}
	return repositories.NewMemorySessionStore(), nil
}

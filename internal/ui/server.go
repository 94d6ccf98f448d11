// Package ui provides the web interface over a session's database.
package ui

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/sessions"
	"golang.org/x/sync/errgroup"

	"github.com/ahmetbildirici/bby361-sqlite-web-arayuzu/internal/session"
	"github.com/ahmetbildirici/bby361-sqlite-web-arayuzu/internal/ui/notifier"
	"github.com/ahmetbildirici/bby361-sqlite-web-arayuzu/internal/ui/router"
)

// Server is the main UI server.
type Server struct {
	session      *session.Session
	sessionStore *sessions.CookieStore
	port         int
	watch        bool
	dev          bool
	databasePath string
	sqlFilename  string
	csvFilename  string
	logger       *slog.Logger
	notifier     *notifier.Notifier
}

// Config holds configuration for the UI server.
type Config struct {
	Session       *session.Session
	Port          int
	Watch         bool
	Dev           bool
	SessionSecret string
	Logger        *slog.Logger
	// DatabasePath is the file reloaded on change when Watch is set
	DatabasePath string
	SQLFilename  string
	CSVFilename  string
}

// NewServer creates a new UI server instance.
func NewServer(cfg Config) *Server {
	secret := []byte(cfg.SessionSecret)
	if len(secret) == 0 {
		secret = make([]byte, 32)
		_, _ = rand.Read(secret)
	}
	sessionStore := sessions.NewCookieStore(secret)
	sessionStore.MaxAge(86400) // 1 day
	sessionStore.Options.Path = "/"
	sessionStore.Options.HttpOnly = true
	sessionStore.Options.SameSite = http.SameSiteLaxMode

	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Server{
		session:      cfg.Session,
		sessionStore: sessionStore,
		port:         cfg.Port,
		watch:        cfg.Watch,
		dev:          cfg.Dev,
		databasePath: cfg.DatabasePath,
		sqlFilename:  cfg.SQLFilename,
		csvFilename:  cfg.CSVFilename,
		logger:       logger,
		notifier:     notifier.New(),
	}
}

// Handler builds the routed HTTP handler.
func (s *Server) Handler() (http.Handler, error) {
	r := chi.NewMux()
	r.Use(
		middleware.Logger,
		middleware.Recoverer,
		middleware.Compress(5),
	)

	opts := router.Options{
		IsDev:       s.IsDev(),
		Logger:      s.logger,
		SQLFilename: s.sqlFilename,
		CSVFilename: s.csvFilename,
	}
	if err := router.SetupRoutes(r, s.session, s.sessionStore, s.notifier, opts); err != nil {
		return nil, fmt.Errorf("failed to setup routes: %w", err)
	}
	return r, nil
}

// Serve starts the UI server and blocks until the context is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	addr := fmt.Sprintf(":%d", s.port)
	s.logger.Info("starting UI server", "addr", s.URL())

	eg, egctx := errgroup.WithContext(ctx)

	handler, err := s.Handler()
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:    addr,
		Handler: handler,
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start file watcher if enabled
	if s.watch && s.databasePath != "" {
		eg.Go(func() error {
			return s.watchDatabase(egctx)
		})
	}

	// Start HTTP server
	eg.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	// Graceful shutdown
	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Debug("shutting down UI server...")
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}

// URL is the address the server listens on.
func (s *Server) URL() string {
	return fmt.Sprintf("http://localhost:%d", s.port)
}

// IsDev reports whether the hot reload endpoints are enabled.
func (s *Server) IsDev() bool {
	return s.dev
}

// Notifier returns the server's notifier for SSE updates.
func (s *Server) Notifier() *notifier.Notifier {
	return s.notifier
}

// watchDatabase reloads the database file when it changes on disk.
// The directory is watched because editors and sqlite tools often replace
// the file instead of writing it in place.
func (s *Server) watchDatabase(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = watcher.Close() }()

	target, err := filepath.Abs(s.databasePath)
	if err != nil {
		target = s.databasePath
	}
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		s.logger.Error("failed to watch database file", "path", target, "error", err)
		// Don't fail - continue without watching
	}

	// Debounce timer
	var debounceTimer *time.Timer

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !isDatabaseChange(event, target) {
				continue
			}

			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(100*time.Millisecond, func() {
				s.reload(ctx, target)
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.logger.Error("watcher error", "error", err)
		}
	}
}

// reload loads path into the session and notifies all SSE clients.
func (s *Server) reload(ctx context.Context, path string) {
	s.logger.Debug("database changed on disk, reloading", "file", path)
	if err := s.session.LoadFile(ctx, path); err != nil {
		s.logger.Error("reload failed", "file", path, "error", err)
		return
	}
	s.notifier.Broadcast(notifier.Event{
		Generation: s.session.Generation(),
		Reason:     notifier.ReasonWatch,
		Filename:   s.session.Filename(),
	})
}

func isDatabaseChange(event fsnotify.Event, target string) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
		return false
	}
	name, err := filepath.Abs(event.Name)
	if err != nil {
		name = event.Name
	}
	return name == target
}

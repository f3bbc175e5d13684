// Copyright (c) 2025-2026 IOBIC
// SPDX-License-Identifier: GPL-3.0-or-later

// Command iobic runs the marketing-site backend: a JSON API for
// localized content, media, site settings, and lead capture, with a
// session-authenticated admin surface.
package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/iobic/site-go/internal/config"
	"github.com/iobic/site-go/internal/handler/api"
	"github.com/iobic/site-go/internal/logging"
	"github.com/iobic/site-go/internal/middleware"
	"github.com/iobic/site-go/internal/service"
	"github.com/iobic/site-go/internal/session"
	"github.com/iobic/site-go/internal/store"
)

// Version information - injected at build time via ldflags
var (
	appVersion   = "dev"
	appGitCommit = "unknown"
	appBuildTime = "unknown"
)

func main() {
	showVersion := flag.Bool("version", false, "Show version information")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	showHelp := flag.Bool("help", false, "Show help information")
	flag.BoolVar(showHelp, "h", false, "Show help information (shorthand)")

	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "iobic - marketing site backend\n\n")
		_, _ = fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		_, _ = fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		_, _ = fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		_, _ = fmt.Fprintf(os.Stderr, "  IOBIC_SESSION_SECRET   Session encryption key (required, min 32 bytes)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  IOBIC_DB_PATH          SQLite database path (default: ./data/iobic.db)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  IOBIC_SERVER_PORT      Server port (default: 8080)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  IOBIC_ENV              Environment: development|production (default: development)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  IOBIC_UPLOADS_DIR      Media uploads directory (default: ./uploads)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  IOBIC_DO_SEED          Seed default admin and settings (default: true)\n")
	}

	flag.Parse()

	if *showHelp {
		flag.Usage()
		os.Exit(0)
	}

	if *showVersion {
		_, _ = fmt.Printf("iobic %s (commit: %s, built: %s)\n", appVersion, appGitCommit, appBuildTime)
		os.Exit(0)
	}

	if err := run(); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// Load .env file if present (development)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Setup logger
	logLevel := slog.LevelInfo
	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// Ensure data and uploads directories exist
	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}
	if err := os.MkdirAll(cfg.UploadsDir, 0755); err != nil {
		return fmt.Errorf("creating uploads directory: %w", err)
	}

	// Initialize database
	slog.Info("initializing database", "path", cfg.DBPath)
	db, err := store.NewDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("initializing database: %w", err)
	}
	defer func(db *sql.DB) {
		if err := db.Close(); err != nil {
			slog.Error("error closing database connection", "error", err)
		}
	}(db)

	slog.Info("running database migrations")
	if err := store.Migrate(db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	slog.Info("database ready")

	// Upgrade logger to also write WARN and ERROR logs to the event log
	textHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	logger = slog.New(logging.NewEventLogHandler(textHandler, db))
	slog.SetDefault(logger)
	slog.Info("event log integration enabled", "min_level", "warn")

	if cfg.DoSeed {
		if err := store.Seed(context.Background(), db); err != nil {
			return fmt.Errorf("seeding database: %w", err)
		}
	}

	sessionManager := session.New(db, cfg.IsDevelopment())
	mediaService := service.NewMediaService(db, cfg.UploadsDir)
	loginGuard := middleware.NewLoginProtection(middleware.DefaultLoginProtectionConfig())

	apiHandler := api.NewHandler(db, sessionManager, mediaService, loginGuard)
	healthHandler := api.NewHealthHandler(apiHandler, cfg.UploadsDir)

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Compress(5))
	r.Use(chimw.GetHead)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(middleware.SecurityHeaders(middleware.DefaultSecurityHeadersConfig(cfg.IsDevelopment())))

	// All API routes ride on the session cookie, so they share the scs
	// middleware, user loading, and CSRF protection.
	r.Group(func(r chi.Router) {
		r.Use(sessionManager.LoadAndSave)
		r.Use(middleware.CSRF(middleware.DefaultCSRFConfig([]byte(cfg.SessionSecret), cfg.IsDevelopment())))
		r.Use(middleware.LoadUser(sessionManager, db))

		r.Route("/api/auth", func(r chi.Router) {
			r.With(loginGuard.Middleware()).Post("/login", apiHandler.Login)
			r.Post("/logout", apiHandler.Logout)
			r.Post("/register", apiHandler.Register)
			r.Get("/me", apiHandler.Me)
		})

		r.Route("/api/cms", func(r chi.Router) {
			// Public reads
			r.Get("/content/{type}", apiHandler.ListContentByType)
			r.Get("/content/item/{id}", apiHandler.GetContentItem)
			r.Get("/media/content/{contentItemId}", apiHandler.ListMediaByContentItem)
			r.Get("/settings", apiHandler.ListSettings)
			r.Get("/settings/{key}", apiHandler.GetSetting)

			// Admin-only mutations and management
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAdmin)

				r.Get("/content", apiHandler.ListAllContent)
				r.Post("/content", apiHandler.CreateContentItem)
				r.Put("/content/{id}", apiHandler.UpdateContentItem)
				r.Delete("/content/{id}", apiHandler.DeleteContentItem)

				r.Post("/media", apiHandler.UploadMedia)
				r.Delete("/media/{id}", apiHandler.DeleteMedia)

				r.Post("/settings", apiHandler.UpsertSetting)

				r.Get("/users", apiHandler.ListUsers)
				r.Post("/users", apiHandler.CreateUser)
				r.Put("/users/{id}", apiHandler.UpdateUser)
				r.Delete("/users/{id}", apiHandler.DeleteUser)

				r.Get("/contacts", apiHandler.ListContacts)
				r.Put("/contacts/{id}/status", apiHandler.UpdateContactStatus)

				r.Get("/events", apiHandler.ListEvents)
			})
		})

		// Public lead capture
		r.Post("/api/contact", apiHandler.SubmitContact)
		r.Post("/api/newsletter", apiHandler.SubscribeNewsletter)

		r.Get("/health", healthHandler.Health)
		r.Get("/health/live", healthHandler.Liveness)
		r.Get("/health/ready", healthHandler.Readiness)
	})

	// Serve uploaded media files; cache for 1 week
	uploadsHandler := middleware.StaticCache(604800)(
		http.StripPrefix("/uploads/", noDirListing(http.FileServer(http.Dir(cfg.UploadsDir)))))
	r.Handle("/uploads/*", uploadsHandler)

	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           r,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second, // Allow for large uploads and slow connections
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20, // 1MB max header size
	}

	go func() {
		slog.Info("starting server", "addr", cfg.ServerAddr(), "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped")
	return nil
}

// noDirListing hides directory indexes from the uploads file server.
// http.FileServer already rejects path traversal; this closes the
// remaining browsing hole.
func noDirListing(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/") {
			http.NotFound(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

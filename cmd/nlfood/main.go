// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Command nlfood runs the NextLevel Food web application: a community
// site for sharing recipes, backed by SQLite and optionally Redis and
// S3-compatible object storage.
package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/GyGaByyyTe/nextlevel-food/internal/action"
	"github.com/GyGaByyyTe/nextlevel-food/internal/auth"
	"github.com/GyGaByyyTe/nextlevel-food/internal/cache"
	"github.com/GyGaByyyTe/nextlevel-food/internal/cleanup"
	"github.com/GyGaByyyTe/nextlevel-food/internal/config"
	"github.com/GyGaByyyTe/nextlevel-food/internal/eventlog"
	"github.com/GyGaByyyTe/nextlevel-food/internal/handler"
	"github.com/GyGaByyyTe/nextlevel-food/internal/imaging"
	"github.com/GyGaByyyTe/nextlevel-food/internal/meals"
	"github.com/GyGaByyyTe/nextlevel-food/internal/middleware"
	"github.com/GyGaByyyTe/nextlevel-food/internal/notify"
	"github.com/GyGaByyyTe/nextlevel-food/internal/render"
	"github.com/GyGaByyyTe/nextlevel-food/internal/session"
	"github.com/GyGaByyyTe/nextlevel-food/internal/storage"
	"github.com/GyGaByyyTe/nextlevel-food/internal/store"
	"github.com/GyGaByyyTe/nextlevel-food/internal/version"
	"github.com/GyGaByyyTe/nextlevel-food/web"
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
	grantAdmin := flag.String("grant-admin", "", "Grant the admin role to the user with this email and exit")
	revokeAdmin := flag.String("revoke-admin", "", "Revoke the admin role from the user with this email and exit")
	listAdmins := flag.Bool("list-admins", false, "List admin users and exit")
	watchSession := flag.Bool("watch-session", false, "Poll the running server's identity endpoint and report sign-in changes")
	sessionCookie := flag.String("session-cookie", "", "Session cookie value to forward with -watch-session")

	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "NextLevel Food - recipe sharing for foodies\n\n")
		_, _ = fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		_, _ = fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		_, _ = fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		_, _ = fmt.Fprintf(os.Stderr, "  NLF_SESSION_SECRET        Session encryption key (required, min 32 bytes)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  NLF_DB_PATH               SQLite database path (default: ./data/meals.db)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  NLF_SERVER_PORT           Server port (default: 8080)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  NLF_ENV                   Environment: development|production (default: development)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  NLF_GOOGLE_CLIENT_ID      Google OAuth client id (sign-in disabled without it)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  NLF_GOOGLE_CLIENT_SECRET  Google OAuth client secret\n")
		_, _ = fmt.Fprintf(os.Stderr, "  NLF_S3_ENDPOINT           S3/MinIO endpoint for image storage (production)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  NLF_REDIS_URL             Redis URL for the meal cache (optional)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  NLF_SESSION_CACHE_TTL     Identity cache TTL in seconds for -watch-session (default: 300)\n")
	}

	flag.Parse()

	if *showHelp {
		flag.Usage()
		os.Exit(0)
	}

	if *showVersion {
		info := version.Info{Version: appVersion, GitCommit: appGitCommit, BuildTime: appBuildTime}
		_, _ = fmt.Printf("nlfood %s\n", info)
		os.Exit(0)
	}

	if *grantAdmin != "" || *revokeAdmin != "" || *listAdmins {
		if err := runAdminCommand(*grantAdmin, *revokeAdmin, *listAdmins); err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		os.Exit(0)
	}

	if *watchSession {
		if err := runWatchSession(*sessionCookie); err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		os.Exit(0)
	}

	if err := run(); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

// runAdminCommand handles the out-of-band admin role management. The
// admin flag is never settable through a request handler.
func runAdminCommand(grant, revoke string, list bool) error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	db, err := store.NewDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() { _ = db.Close() }()

	if err := store.Migrate(db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	ctx := context.Background()
	queries := store.New(db)

	switch {
	case grant != "":
		if err := queries.SetUserAdmin(ctx, grant, true); err != nil {
			return fmt.Errorf("granting admin to %s: %w", grant, err)
		}
		fmt.Printf("granted admin to %s\n", grant)
	case revoke != "":
		if err := queries.SetUserAdmin(ctx, revoke, false); err != nil {
			return fmt.Errorf("revoking admin from %s: %w", revoke, err)
		}
		fmt.Printf("revoked admin from %s\n", revoke)
	case list:
		admins, err := queries.ListAdmins(ctx)
		if err != nil {
			return fmt.Errorf("listing admins: %w", err)
		}
		if len(admins) == 0 {
			fmt.Println("no admin users")
			return nil
		}
		for _, admin := range admins {
			fmt.Printf("%s\t%s\n", admin.Email, admin.Name)
		}
	}
	return nil
}

// runWatchSession tails the server's identity endpoint, printing a line
// whenever the signed-in identity changes. Within the cache TTL the
// endpoint is answered from memory, so the poll interval can be much
// shorter than the TTL without hammering the server.
func runWatchSession(cookieValue string) error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	fetch := auth.NewHTTPFetch(nil, cfg.BaseURL,
		session.CookieName(cfg.IsDevelopment()), cookieValue)
	sessions := auth.NewSessionCache(fetch,
		time.Duration(cfg.SessionCacheTTL)*time.Second, slog.Default())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()

	last := "\x00" // forces the first report
	for {
		identity := sessions.Resolve(ctx)
		email := ""
		if identity.Authenticated() {
			email = identity.User.Email
		}
		if email != last {
			if email == "" {
				fmt.Println("signed out")
			} else {
				fmt.Printf("signed in as %s <%s>\n", identity.User.Name, identity.User.Email)
			}
			last = email
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func run() error {
	// Load .env if present (development)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

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

	// Ensure data directory exists
	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

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
	logger = slog.New(eventlog.NewHandler(textHandler, db))
	slog.SetDefault(logger)

	ctx := context.Background()

	// Seed starter meals on a fresh development database
	if cfg.IsDevelopment() {
		if err := store.SeedIfEmpty(ctx, db); err != nil {
			return fmt.Errorf("seeding database: %w", err)
		}
	}

	// Meal cache: Redis when configured, in-memory otherwise
	cacheBackend, err := cache.New(cache.Config{
		RedisURL:   cfg.RedisURL,
		Prefix:     cfg.CachePrefix,
		DefaultTTL: time.Duration(cfg.CacheTTL) * time.Second,
	})
	if err != nil {
		return fmt.Errorf("initializing cache: %w", err)
	}
	defer func() { _ = cacheBackend.Close() }()
	mealCache := cache.NewMealCache(cacheBackend, time.Duration(cfg.CacheTTL)*time.Second)

	// Image storage: local filesystem in development, S3/MinIO in
	// production
	images, err := storage.NewFromConfig(ctx, cfg)
	if err != nil {
		return fmt.Errorf("initializing image storage: %w", err)
	}

	sm := session.New(db, cfg.IsDevelopment())

	processor := imaging.NewProcessor(cfg.ImageMaxEdge)
	repo := meals.NewRepository(store.New(db), images, processor, mealCache, logger)

	relay := notify.NewRelay(sm)
	actions := action.New(repo, relay, logger)

	var provider auth.Provider
	if cfg.OAuthEnabled() {
		provider = auth.NewGoogleProvider(auth.GoogleConfig{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.BaseURL + "/auth/callback",
		})
		slog.Info("google sign-in enabled")
	} else {
		slog.Warn("google sign-in disabled: NLF_GOOGLE_CLIENT_ID not set")
	}

	templates, err := fs.Sub(web.Templates, "templates")
	if err != nil {
		return fmt.Errorf("locating templates: %w", err)
	}
	renderer, err := render.New(render.Config{
		TemplatesFS:    templates,
		SessionManager: sm,
		IsDev:          cfg.IsDevelopment(),
	})
	if err != nil {
		return fmt.Errorf("parsing templates: %w", err)
	}

	// Orphaned-image sweeper
	if cfg.ImageCleanupEnabled() {
		sweeper := cleanup.New(store.New(db), images, cfg.ImageCleanupSchedule,
			time.Duration(cfg.ImageCleanupGraceMin)*time.Minute, logger)
		if err := sweeper.Start(); err != nil {
			return fmt.Errorf("starting image sweeper: %w", err)
		}
		defer sweeper.Stop()
		slog.Info("image cleanup scheduled", "schedule", cfg.ImageCleanupSchedule)
	}

	r := buildRouter(cfg, db, sm, repo, actions, relay, renderer, provider, logger)

	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           r,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second, // Longer to allow for large uploads and slow connections
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
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

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped")
	return nil
}

// buildRouter assembles the middleware chain and the route table.
func buildRouter(cfg *config.Config, db *sql.DB, sm *scs.SessionManager,
	repo *meals.Repository, actions *action.Actions, relay *notify.Relay,
	renderer *render.Renderer, provider auth.Provider, logger *slog.Logger) http.Handler {
	isDev := cfg.IsDevelopment()

	mealsHandler := handler.NewMealsHandler(repo, actions, relay, renderer, cfg.MaxUploadSize, logger)
	authHandler := handler.NewAuthHandler(db, provider, sm, renderer, logger)
	pagesHandler := handler.NewPagesHandler(renderer, logger)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(60 * time.Second))
	r.Use(middleware.SecurityHeaders(middleware.DefaultSecurityHeadersConfig(isDev, imageHosts(cfg)...)))
	r.Use(sm.LoadAndSave)
	r.Use(middleware.CSRF(middleware.DefaultCSRFConfig([]byte(cfg.SessionSecret), cfg.ServerAddr(), isDev)))
	r.Use(middleware.LoadUser(sm, db))

	r.Get("/", pagesHandler.Home)
	r.Get("/community", pagesHandler.Community)
	r.Get("/meals", mealsHandler.List)
	r.Get("/meals/{slug}", mealsHandler.Detail)
	r.Get("/signin", authHandler.SigninForm)
	r.Get("/auth/google", authHandler.GoogleStart)
	r.Get("/auth/callback", authHandler.GoogleCallback)
	r.Post("/signout", authHandler.Signout)
	r.Get("/api/auth/session", authHandler.Session)

	// Mutations require a session and are rate limited per client IP.
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireUser(sm))
		r.Use(middleware.NewRateLimiter(5, 10).Middleware())
		r.Get("/meals/share", mealsHandler.ShareForm)
		r.Post("/meals/share", mealsHandler.Share)
		r.Get("/meals/{slug}/edit", mealsHandler.EditForm)
		r.Post("/meals/{slug}/edit", mealsHandler.Edit)
		r.Post("/meals/{slug}/delete", mealsHandler.Delete)
	})

	staticFS, err := fs.Sub(web.Static, "static")
	if err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(staticFS)))
		r.With(middleware.StaticCache(86400)).Get("/static/*", static.ServeHTTP)
	}

	// In development uploaded images live on disk and are served here;
	// in production they come straight from object storage.
	if isDev {
		imagesDir := http.Dir(filepath.Join(cfg.PublicDir, "images"))
		imageServer := http.StripPrefix("/images/", http.FileServer(imagesDir))
		r.With(middleware.StaticCache(3600)).Get("/images/*", imageServer.ServeHTTP)
	}

	r.NotFound(pagesHandler.NotFound)

	return r
}

// imageHosts lists the external origins images may load from, for the
// content security policy.
func imageHosts(cfg *config.Config) []string {
	var hosts []string
	for _, raw := range []string{cfg.S3PublicBaseURL, cfg.S3Endpoint} {
		if raw == "" {
			continue
		}
		u, err := url.Parse(raw)
		if err != nil || u.Host == "" {
			continue
		}
		hosts = append(hosts, u.Scheme+"://"+u.Host)
	}
	return hosts
}

package entrypoint

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mrlokans/library/internal/auth"
	"github.com/mrlokans/library/internal/config"
	"github.com/mrlokans/library/internal/database"
	"github.com/mrlokans/library/internal/database/books"
	"github.com/mrlokans/library/internal/database/tokens"
	"github.com/mrlokans/library/internal/database/users"
	http_controllers "github.com/mrlokans/library/internal/http"
	"github.com/mrlokans/library/internal/library"
	"github.com/mrlokans/library/internal/metrics"
	"github.com/mrlokans/library/internal/scheduler"
	"github.com/mrlokans/library/internal/tasks"
	"github.com/mrlokans/library/internal/web"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

// Serve runs handler on addr until SIGINT or SIGTERM, then shuts down
// within the configured timeout.
func Serve(handler http.Handler, addr string, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("Starting server at %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown Server, waiting %v before killing\n", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Stop background work before the listener so in-flight jobs can
	// still use the database.
	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server Shutdown:", err)
	}

	log.Println("Server exiting")
}

// Run starts the API server.
func Run(cfg *config.Config, version string) {
	log.Printf("Starting Library API v%s", version)

	db, err := database.Open(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()
	log.Printf("Database driver: %s", cfg.Database.Driver)

	secret := cfg.Auth.JWTSecret
	if secret == "" {
		secret, err = auth.GenerateSecret()
		if err != nil {
			log.Fatalf("Failed to generate JWT secret: %v", err)
		}
		log.Printf("Generated JWT secret (set AUTH_JWT_SECRET to keep tokens valid across restarts)")
	}

	authService := auth.NewService(
		users.NewRepository(db.DB),
		tokens.NewRepository(db.DB),
		auth.NewTokenManager(secret, cfg.Auth.Issuer, cfg.Auth.TokenExpiry),
		cfg.Auth,
	)

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
	}

	bgCtx, bgCancel := context.WithCancel(context.Background())
	defer bgCancel()

	queue := startTaskQueue(bgCtx, cfg, authService, m)
	var queueCheck http_controllers.Pinger
	if queue != nil {
		queueCheck = queue
		defer func() {
			if err := queue.Close(); err != nil {
				log.Printf("Error closing task queue: %v", err)
			}
		}()
	}

	router, authController := http_controllers.NewRouter(http_controllers.RouterConfig{
		Database:    db,
		TaskQueue:   queueCheck,
		Books:       library.NewService(books.NewRepository(db.DB)),
		AuthService: authService,
		RateLimiter: auth.NewRateLimiter(auth.RateLimitConfigFromAuth(cfg.Auth)),
		Metrics:     m,
		HSTSMaxAge:  cfg.HTTP.HSTSMaxAge,
		Version:     version,
	})

	purge := scheduler.NewPurgeScheduler(cfg.Auth.PurgeSchedule, purgeJob(queue, authService, m))
	if err := purge.Start(bgCtx); err != nil {
		log.Fatalf("Failed to start token purge scheduler: %v", err)
	}
	go func() {
		if err := purge.RunNow(bgCtx); err != nil {
			log.Printf("Startup token purge failed: %v", err)
		}
	}()

	onShutdown := func(ctx context.Context) {
		purge.Stop()
		if queue != nil {
			queue.Shutdown(ctx)
		}
		bgCancel()
		authController.Stop()
	}

	Serve(router, fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port), cfg, onShutdown)
}

func startTaskQueue(ctx context.Context, cfg *config.Config, purger tasks.TokenPurger, m *metrics.Metrics) *tasks.Queue {
	if !cfg.Tasks.Enabled {
		log.Printf("Task queue: disabled, maintenance runs inline")
		return nil
	}

	// The queue always lives in SQLite, next to the main database when
	// that is SQLite too.
	mainPath := cfg.Database.Path
	if cfg.Database.Driver == config.DriverPostgres || mainPath == "" {
		mainPath = config.DefaultDatabasePath
	}

	queue, err := tasks.OpenQueue(tasks.DatabasePath(mainPath), tasks.FromConfig(cfg.Tasks), purger, m.ObservePurge)
	if err != nil {
		log.Fatalf("Failed to initialize task queue: %v", err)
	}

	go queue.Start(ctx)
	return queue
}

// purgeJob enqueues the purge when a queue is available and otherwise
// runs it in the scheduler's goroutine.
func purgeJob(queue *tasks.Queue, authService *auth.Service, m *metrics.Metrics) scheduler.Job {
	if queue != nil {
		return func(ctx context.Context) error {
			_, err := queue.EnqueuePurge(ctx, "schedule")
			return err
		}
	}
	return func(ctx context.Context) error {
		deleted, err := authService.PurgeRevoked(ctx)
		if err != nil {
			return err
		}
		m.ObservePurge(deleted)
		log.Printf("Purged %d expired revoked tokens", deleted)
		return nil
	}
}

// RunWeb starts the web UI, which reaches books only through the API.
func RunWeb(cfg *config.Config, version string) {
	log.Printf("Starting Library web UI v%s (API at %s)", version, cfg.Web.APIURL)

	sessionDB, store, err := web.OpenSQLiteStore(cfg.Web.SessionDBPath)
	if err != nil {
		log.Fatalf("Failed to initialize session store: %v", err)
	}
	defer func() {
		if err := sessionDB.Close(); err != nil {
			log.Printf("Error closing session database: %v", err)
		}
	}()

	csrfSecret := cfg.Web.CSRFSecret
	if csrfSecret == "" {
		csrfSecret, err = auth.GenerateSecret()
		if err != nil {
			log.Fatalf("Failed to generate CSRF secret: %v", err)
		}
		log.Printf("Generated CSRF secret (set WEB_CSRF_SECRET to persist)")
	}
	if !cfg.Web.SecureCookies {
		log.Printf("WARNING: secure cookies disabled, only use this for local development")
	}

	router, err := web.NewRouter(web.Config{
		APIURL:        cfg.Web.APIURL,
		Sessions:      web.NewSessionManager(store, cfg.Web),
		CSRFKey:       web.CSRFKey(csrfSecret),
		SecureCookies: cfg.Web.SecureCookies,
	})
	if err != nil {
		log.Fatalf("Failed to initialize web UI: %v", err)
	}

	Serve(router, fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.Web.Port), cfg, nil)
}

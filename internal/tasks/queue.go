package tasks

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/mikestefanello/backlite"
)

// Queue is the API server's maintenance queue: a backlite dispatcher on a
// dedicated SQLite file with the revoked-token purge registered.
type Queue struct {
	dispatcher *backlite.Client
	db         *sql.DB
	workers    int

	mu      sync.Mutex
	running bool
}

// DatabasePath derives the queue file from the main SQLite path,
// e.g. data/library.db becomes data/library-tasks.db.
func DatabasePath(mainDBPath string) string {
	ext := filepath.Ext(mainDBPath)
	return strings.TrimSuffix(mainDBPath, ext) + "-tasks" + ext
}

// OpenQueue installs backlite's schema at path and registers the purge
// processor. observe may be nil.
func OpenQueue(path string, cfg Config, purger TokenPurger, observe func(int64)) (*Queue, error) {
	db, err := sql.Open("sqlite3", path+"?_journal=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open task queue database: %w", err)
	}
	db.SetMaxOpenConns(cfg.Workers + 5)
	db.SetMaxIdleConns(cfg.Workers + 2)
	db.SetConnMaxLifetime(time.Hour)

	dispatcher, err := backlite.NewClient(backlite.ClientConfig{
		DB:              db,
		NumWorkers:      cfg.Workers,
		ReleaseAfter:    cfg.ReleaseAfter,
		CleanupInterval: cfg.CleanupInterval,
		Logger:          queueLogger{},
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create task dispatcher: %w", err)
	}
	if err := dispatcher.Install(); err != nil {
		db.Close()
		return nil, fmt.Errorf("install task schema: %w", err)
	}
	dispatcher.Register(NewPurgeRevokedTokensQueue(purger, observe))

	return &Queue{dispatcher: dispatcher, db: db, workers: cfg.Workers}, nil
}

// Start runs the dispatcher until ctx ends or Shutdown is called.
// Run it in its own goroutine.
func (q *Queue) Start(ctx context.Context) {
	q.mu.Lock()
	if q.running {
		q.mu.Unlock()
		return
	}
	q.running = true
	q.mu.Unlock()

	log.Printf("Task queue: %d worker(s)", q.workers)
	q.dispatcher.Start(ctx)
}

// EnqueuePurge schedules a purge and returns the task id.
func (q *Queue) EnqueuePurge(ctx context.Context, reason string) (string, error) {
	ids, err := q.dispatcher.Add(PurgeRevokedTokensTask{Reason: reason}).Ctx(ctx).Save()
	if err != nil {
		return "", fmt.Errorf("enqueue token purge: %w", err)
	}
	return ids[0], nil
}

// Ping reports whether the queue database is reachable.
func (q *Queue) Ping(ctx context.Context) error {
	return q.db.PingContext(ctx)
}

// Shutdown waits for running tasks until ctx expires. It reports false
// when workers were still busy at the deadline.
func (q *Queue) Shutdown(ctx context.Context) bool {
	q.mu.Lock()
	running := q.running
	q.running = false
	q.mu.Unlock()
	if !running {
		return true
	}

	drained := q.dispatcher.Stop(ctx)
	if !drained {
		log.Printf("Task queue: shutdown deadline hit with tasks in flight")
	}
	return drained
}

// Close releases the queue database. Call it after Shutdown.
func (q *Queue) Close() error {
	return q.db.Close()
}

// queueLogger prints backlite's key/value params as key=value pairs.
type queueLogger struct{}

func (queueLogger) Info(message string, params ...any) {
	log.Printf("Task queue: %s%s", message, formatParams(params))
}

func (queueLogger) Error(message string, params ...any) {
	log.Printf("Task queue error: %s%s", message, formatParams(params))
}

func formatParams(params []any) string {
	var b strings.Builder
	for i := 0; i < len(params); i += 2 {
		if i+1 == len(params) {
			fmt.Fprintf(&b, " %v", params[i])
			break
		}
		fmt.Fprintf(&b, " %v=%v", params[i], params[i+1])
	}
	return b.String()
}

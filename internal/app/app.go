// Package app orchestrates all components of pathwatch.
package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"pathwatch/internal/adapters/walker"
	"pathwatch/internal/adapters/watcher"
	"pathwatch/internal/config"
	"pathwatch/internal/domain/events"
	"pathwatch/internal/hub"
	httpserver "pathwatch/internal/server/http"
	wsserver "pathwatch/internal/server/websocket"
	"pathwatch/internal/tracker"
)

// reconcileQueueSize bounds the pending reconcile requests. The watcher
// debounces upstream, so bursts beyond this indicate a stalled consumer.
const reconcileQueueSize = 1024

// App is the main application struct that wires the tracker to its
// collaborators: the walker, the fsnotify watcher, the event hub, and the
// HTTP/WebSocket servers.
//
// The tracker itself is single-threaded by contract. App serializes all
// access: reconcile requests from any source go through a single-consumer
// queue, and trackerMu covers both the consumer and server-side queries.
type App struct {
	cfg     *config.Config
	version string

	eventHub    *hub.Hub
	fileTracker *tracker.Tracker
	fileWatcher *watcher.Watcher
	httpServer  *httpserver.Server
	wsServer    *wsserver.Server

	reconcileCh chan string
	trackerMu   sync.Mutex

	startTime time.Time

	mu      sync.RWMutex
	running bool
}

// New creates a new App instance.
func New(cfg *config.Config, version string) (*App, error) {
	a := &App{
		cfg:         cfg,
		version:     version,
		eventHub:    hub.New(),
		reconcileCh: make(chan string, reconcileQueueSize),
	}

	ignore, err := tracker.NewIgnoreList(cfg.Tracker.IgnorePatterns)
	if err != nil {
		return nil, fmt.Errorf("failed to build ignore list: %w", err)
	}

	lister, err := walker.New(cfg.Project.Root)
	if err != nil {
		return nil, fmt.Errorf("failed to create walker: %w", err)
	}

	a.fileTracker = tracker.New(cfg.Project.Root, lister, ignore)

	// The build output directory is always ignored, appended after the
	// configured list so user patterns keep their order.
	if cfg.Project.OutputDir != "" {
		if err := a.fileTracker.AddIgnorePattern(config.OutputDirPattern(cfg.Project.OutputDir)); err != nil {
			return nil, fmt.Errorf("failed to add output dir pattern: %w", err)
		}
	}

	// Bridge tracker callbacks onto the event hub through the public
	// registration API, same as any other consumer would.
	if _, err := a.fileTracker.OnChanged("", tracker.HandlerFunc(func(path string) error {
		a.eventHub.Publish(events.NewFileChangedEvent(path))
		return nil
	})); err != nil {
		return nil, err
	}
	if _, err := a.fileTracker.OnDeleted("", tracker.HandlerFunc(func(path string) error {
		a.eventHub.Publish(events.NewFileDeletedEvent(path))
		return nil
	})); err != nil {
		return nil, err
	}

	return a, nil
}

// Start starts the application and blocks until the context is cancelled.
func (a *App) Start(ctx context.Context) error {
	a.mu.Lock()
	if a.running {
		a.mu.Unlock()
		return fmt.Errorf("application is already running")
	}
	a.running = true
	a.startTime = time.Now()
	a.mu.Unlock()

	if err := a.eventHub.Start(); err != nil {
		return fmt.Errorf("failed to start event hub: %w", err)
	}

	logSub := hub.NewLogSubscriber("internal-logger", func(event events.Event) {
		log.Trace().
			Str("event_type", string(event.Type())).
			Time("timestamp", event.Timestamp()).
			Msg("event broadcast")
	})
	a.eventHub.Subscribe(logSub)

	// Establish the initial baseline before anything can observe the
	// tracker: one full reconcile of the project root.
	start := time.Now()
	a.trackerMu.Lock()
	err := a.fileTracker.Reconcile(ctx, ".")
	tracked := len(a.fileTracker.Files())
	a.trackerMu.Unlock()
	if err != nil {
		return fmt.Errorf("initial reconcile failed: %w", err)
	}
	log.Info().
		Int("tracked", tracked).
		Dur("elapsed", time.Since(start)).
		Msg("initial scan complete")

	go a.reconcileLoop(ctx)

	if a.cfg.Watcher.Enabled {
		a.fileWatcher = watcher.NewWatcher(
			a.cfg.Project.Root,
			a,
			a.cfg.Watcher.DebounceMS,
			a.IsIgnored,
		)
		if err := a.fileWatcher.Start(ctx); err != nil {
			return fmt.Errorf("failed to start file watcher: %w", err)
		}
	}

	if a.cfg.Server.Enabled {
		a.wsServer = wsserver.NewServer(a.eventHub)
		a.wsServer.Start()

		a.httpServer = httpserver.New(a.cfg.Server.Host, a.cfg.Server.Port, a.getStatus, a)
		a.httpServer.SetWebSocketHandler(a.wsServer.HandleWebSocket)
		if err := a.httpServer.Start(); err != nil {
			return fmt.Errorf("failed to start HTTP server: %w", err)
		}
	}

	<-ctx.Done()
	return a.shutdown()
}

// reconcileLoop is the single consumer that serializes reconciliation.
// Handler failures abort the individual pass and are reported here; the
// next request starts a fresh pass.
func (a *App) reconcileLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case path := <-a.reconcileCh:
			a.trackerMu.Lock()
			err := a.fileTracker.Reconcile(ctx, path)
			a.trackerMu.Unlock()
			if err != nil {
				log.Error().Err(err).Str("path", path).Msg("reconcile failed")
			}
		}
	}
}

// RequestReconcile queues a reconcile of path. Implements
// ports.ReconcileSink for the watcher and the HTTP API.
func (a *App) RequestReconcile(path string) {
	select {
	case a.reconcileCh <- path:
	default:
		log.Warn().Str("path", path).Msg("reconcile request dropped: queue full")
	}
}

// Files returns the currently tracked paths.
func (a *App) Files() []string {
	a.trackerMu.Lock()
	defer a.trackerMu.Unlock()
	return a.fileTracker.Files()
}

// Exists reports whether path is tracked, accepting root-relative and
// absolute forms.
func (a *App) Exists(path string) bool {
	a.trackerMu.Lock()
	defer a.trackerMu.Unlock()
	return a.fileTracker.Exists(path)
}

// IsIgnored reports whether path matches a configured ignore pattern.
func (a *App) IsIgnored(path string) bool {
	return a.fileTracker.IsIgnored(path)
}

// Tracker returns the underlying tracker. Callers must respect the
// serialization contract.
func (a *App) Tracker() *tracker.Tracker {
	return a.fileTracker
}

func (a *App) getStatus() map[string]interface{} {
	a.trackerMu.Lock()
	tracked := len(a.fileTracker.Files())
	a.trackerMu.Unlock()

	watcherRunning := a.fileWatcher != nil && a.fileWatcher.IsRunning()

	status := map[string]interface{}{
		"version":         a.version,
		"root":            a.cfg.Project.Root,
		"tracked_files":   tracked,
		"watcher_running": watcherRunning,
		"uptime_seconds":  int64(time.Since(a.startTime).Seconds()),
	}
	if a.wsServer != nil {
		status["connected_clients"] = a.wsServer.ClientCount()
	}
	return status
}

func (a *App) shutdown() error {
	log.Info().Msg("shutting down")

	if a.fileWatcher != nil {
		if err := a.fileWatcher.Stop(); err != nil {
			log.Warn().Err(err).Msg("error stopping file watcher")
		}
	}

	if a.httpServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := a.httpServer.Stop(ctx); err != nil {
			log.Warn().Err(err).Msg("error stopping HTTP server")
		}
	}

	if a.wsServer != nil {
		a.wsServer.Stop()
	}

	if err := a.eventHub.Stop(); err != nil {
		log.Warn().Err(err).Msg("error stopping event hub")
	}

	a.mu.Lock()
	a.running = false
	a.mu.Unlock()

	return nil
}

package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"talentapi/api"
	"talentapi/config"
	"talentapi/storage"

	"go.uber.org/zap"
)

const defaultShutdownTimeout = 10 * time.Second

// ErrAlreadyStarted is returned when Run is called more than once
var ErrAlreadyStarted = errors.New("application already started")

// State is the lifecycle phase of an App
type State int32

const (
	StateNotStarted State = iota
	StateRunning
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateNotStarted:
		return "not-started"
	case StateRunning:
		return "running"
	case StateStopped:
		return "stopped"
	}
	return fmt.Sprintf("State(%d)", int32(s))
}

// App represents the talent API application with all its components.
type App struct {
	// Configuration
	Config *config.Config
	Logger *zap.Logger
	Sugar  *zap.SugaredLogger

	// Services
	APIServer    *api.API
	Dependencies []storage.Dependency

	// Lifecycle
	state   atomic.Int32
	ready   chan struct{}
	addrMu  sync.RWMutex
	boundTo net.Addr
}

// NewApp creates a new application instance. No network I/O happens here.
func NewApp(cfg *config.Config, logger *zap.Logger) (*App, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	app := &App{
		Config: cfg,
		Logger: logger,
		Sugar:  logger.Sugar(),
		ready:  make(chan struct{}),
	}

	deps, err := InitDependencies(cfg, app.Sugar)
	if err != nil {
		return nil, err
	}
	app.Dependencies = deps

	checks := make([]api.Pinger, 0, len(deps))
	for _, d := range deps {
		checks = append(checks, d)
	}
	app.APIServer = api.NewAPI(cfg, app.Sugar, api.WithReadinessChecks(checks...))

	return app, nil
}

// State returns the current lifecycle phase
func (a *App) State() State {
	return State(a.state.Load())
}

// Ready is closed once the listener is bound and accepting connections
func (a *App) Ready() <-chan struct{} {
	return a.ready
}

// Addr returns the bound listener address, or nil before Ready
func (a *App) Addr() net.Addr {
	a.addrMu.RLock()
	defer a.addrMu.RUnlock()
	return a.boundTo
}

// Run drives the application through its lifecycle and blocks until ctx is
// cancelled or the server fails. It can be called once.
func (a *App) Run(ctx context.Context) error {
	if !a.state.CompareAndSwap(int32(StateNotStarted), int32(StateRunning)) {
		return ErrAlreadyStarted
	}
	defer a.state.Store(int32(StateStopped))

	return a.lifespan(ctx, a.serve)
}

// lifespan runs the startup hook, serve, then the shutdown hook.
// "Server shutdown complete" is always the last line, even when serve fails;
// "Shutdown server..." is only logged after a clean serve.
func (a *App) lifespan(ctx context.Context, serve func(context.Context) error) error {
	defer func() {
		a.closeDependencies()
		a.Sugar.Info("Server shutdown complete")
		_ = a.Logger.Sync()
	}()

	a.Sugar.Info("Starting server...")
	a.checkDependencies(ctx)

	if err := serve(ctx); err != nil {
		a.Sugar.Errorw("Server stopped with error", "error", err)
		return err
	}

	a.Sugar.Info("Shutdown server...")
	return nil
}

// serve binds the listener, serves until ctx is done, then stops accepting
// connections and drains in-flight requests.
func (a *App) serve(ctx context.Context) error {
	addr := a.Config.Addr()
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	a.addrMu.Lock()
	a.boundTo = ln.Addr()
	a.addrMu.Unlock()
	close(a.ready)

	a.Sugar.Infow("API server started",
		"addr", ln.Addr().String(),
		"env", a.Config.Env)

	errCh := make(chan error, 1)
	go func() {
		errCh <- a.APIServer.Start(ln)
	}()

	select {
	case err := <-errCh:
		if err == nil || errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("API server error: %w", err)
	case <-ctx.Done():
	}

	timeout := a.Config.API.ShutdownTimeout
	if timeout <= 0 {
		timeout = defaultShutdownTimeout
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := a.APIServer.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop API server: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("API server error: %w", err)
	}
	return nil
}

// SignalContext returns a context cancelled on SIGINT or SIGTERM.
// The received signal is logged before cancellation.
func SignalContext(parent context.Context, sugar *zap.SugaredLogger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		defer signal.Stop(c)
		select {
		case sig := <-c:
			sugar.Infow("Received shutdown signal", "signal", sig.String())
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}

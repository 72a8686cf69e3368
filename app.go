package main

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/chazu/caliper/pkg/api"
	"github.com/chazu/caliper/pkg/config"
	"github.com/chazu/caliper/pkg/engine"
	"github.com/chazu/caliper/pkg/kernel"
	"github.com/chazu/caliper/pkg/kernel/sdfx"
	"github.com/chazu/caliper/pkg/logging"
)

// shutdownTimeout bounds how long in-flight requests may finish after the
// serve context ends.
const shutdownTimeout = 10 * time.Second

// App wires configuration, the geometry kernel, the script engine and the
// HTTP API together.
type App struct {
	mu     sync.RWMutex
	cfg    *config.Config
	kernel kernel.Kernel
	engine *engine.Engine

	api *api.Handler
}

// EvalErrorData is a JSON-serializable eval error.
type EvalErrorData struct {
	Line    int    `json:"line"`
	Col     int    `json:"col"`
	Message string `json:"message"`
}

// EvalResult is the full result of a script evaluation.
type EvalResult struct {
	Records []engine.Record `json:"records"`
	Result  string          `json:"result,omitempty"`
	Errors  []EvalErrorData `json:"errors"`
}

// NewApp creates an App configured by cfg.
func NewApp(cfg *config.Config) *App {
	a := &App{}
	a.api = api.New(nil, cfg.Geometry.Precision)
	a.Reconfigure(cfg)
	return a
}

// Reconfigure applies cfg to the kernel, the engine, the API and the logger.
func (a *App) Reconfigure(cfg *config.Config) {
	k := sdfx.New(cfg.OBBOptions()...)
	eng := engine.NewEngine(k, engine.WithPrecision(cfg.Geometry.Precision))

	a.mu.Lock()
	a.cfg = cfg
	a.kernel = k
	a.engine = eng
	a.mu.Unlock()

	a.api.Configure(k, cfg.Geometry.Precision)
	if err := logging.SetLevel(cfg.Log.Level); err != nil {
		logging.Warn("ignoring log level", "level", cfg.Log.Level, "err", err)
	}
}

// Config returns the active configuration.
func (a *App) Config() *config.Config {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.cfg
}

// Evaluate runs script source and returns its records and errors.
func (a *App) Evaluate(source string) EvalResult {
	result := EvalResult{
		Records: []engine.Record{},
		Errors:  []EvalErrorData{},
	}

	a.mu.RLock()
	eng := a.engine
	a.mu.RUnlock()

	rep, evalErrs, err := eng.Evaluate(source)
	if err != nil {
		// Fatal error (panic, timeout, etc.)
		logging.Error("evaluate fatal error", "err", err)
		result.Errors = append(result.Errors, EvalErrorData{Message: err.Error()})
		return result
	}

	for _, e := range evalErrs {
		result.Errors = append(result.Errors, EvalErrorData{
			Line:    e.Line,
			Col:     e.Col,
			Message: e.Message,
		})
	}
	if rep != nil {
		result.Records = rep.Records
		result.Result = rep.Result
	}
	return result
}

// Handler returns the HTTP handler for the API.
func (a *App) Handler() http.Handler {
	return a.api.Router()
}

// Serve listens on the configured address until ctx is done, then shuts
// down gracefully.
func (a *App) Serve(ctx context.Context) error {
	cfg := a.Config()
	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      a.Handler(),
		ReadTimeout:  cfg.Server.ReadTimeout.Duration,
		WriteTimeout: cfg.Server.WriteTimeout.Duration,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Info("listening", "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logging.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Dashboard runs the presentation surface as an independently schedulable
// worker: started once from the menu, stopped explicitly on exit. It shares
// the registry file with the capture and assistant paths through the same
// load/save contract, with no cross-surface coordination beyond that.
type Dashboard struct {
	srv    *http.Server
	logger *zap.Logger

	mu      sync.Mutex
	running bool
}

// NewDashboard builds the worker around a ready-to-serve handler.
func NewDashboard(port string, handler http.Handler, logger *zap.Logger) *Dashboard {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Dashboard{
		srv: &http.Server{
			Addr:         ":" + port,
			Handler:      handler,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		logger: logger,
	}
}

// Start launches the HTTP server in the background. Starting an already
// running dashboard is a no-op that returns false.
func (d *Dashboard) Start() bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.running {
		return false
	}
	d.running = true

	go func() {
		d.logger.Info("dashboard starting", zap.String("addr", d.srv.Addr))
		if err := d.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			d.logger.Error("dashboard server crashed", zap.Error(err))
		}
	}()

	return true
}

// Running reports whether the worker has been started.
func (d *Dashboard) Running() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.running
}

// Stop shuts the server down gracefully. Stopping a never-started dashboard
// is a no-op.
func (d *Dashboard) Stop(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.running {
		return nil
	}
	d.running = false

	if err := d.srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("dashboard shutdown: %w", err)
	}

	d.logger.Info("dashboard stopped")
	return nil
}

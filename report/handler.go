package report

import (
	"context"
	"log/slog"
	"net/http"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"github.com/cleanline/opsdesk/internal/platform/httpx"
)

// Pinger is a downstream dependency that can be health checked.
type Pinger interface {
	Ping(ctx context.Context) error
}

// DependencyStatus is the result of one dependency check.
type DependencyStatus struct {
	Name   string `json:"name"`
	OK     bool   `json:"ok"`
	Error  string `json:"error,omitempty"`
	Millis int64  `json:"millis"`
}

// Handler exposes the downstream dependency checks.
type Handler struct {
	deps   map[string]Pinger
	logger *slog.Logger
}

// NewHandler creates a report handler over the named dependencies.
func NewHandler(deps map[string]Pinger, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{deps: deps, logger: logger}
}

// MountRoutes registers report routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/ping", h.ping)
}

func (h *Handler) ping(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	results := h.Check(ctx)
	status := http.StatusOK
	for _, res := range results {
		if !res.OK {
			status = http.StatusServiceUnavailable
			h.logger.Warn("dependency ping failed", slog.String("dependency", res.Name), slog.String("error", res.Error))
		}
	}
	httpx.JSON(w, status, map[string]any{"dependencies": results})
}

// Check pings every dependency concurrently. Results are sorted by name.
func (h *Handler) Check(ctx context.Context) []DependencyStatus {
	names := make([]string, 0, len(h.deps))
	for name := range h.deps {
		names = append(names, name)
	}
	sort.Strings(names)
	results := make([]DependencyStatus, len(names))

	var g errgroup.Group
	for i, name := range names {
		g.Go(func() error {
			start := time.Now()
			err := h.deps[name].Ping(ctx)
			res := DependencyStatus{Name: name, OK: err == nil, Millis: time.Since(start).Milliseconds()}
			if err != nil {
				res.Error = err.Error()
			}
			results[i] = res
			return nil
		})
	}
	_ = g.Wait()
	return results
}

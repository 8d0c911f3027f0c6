package healthprobe

import (
	"net/http"
	"sync/atomic"
	"time"

	"github.com/goccy/go-json"
)

// HealthChecker provides health and readiness checks.
// Readiness also requires a recent selector tick once a stale-after window is set.
type HealthChecker struct {
	startTime  time.Time
	ready      atomic.Bool
	lastTick   atomic.Int64 // unix nanos, zero before the first tick
	ticks      atomic.Uint64
	staleAfter time.Duration
	now        func() time.Time
}

// Option configures a HealthChecker.
type Option func(*HealthChecker)

// WithStaleAfter reports not ready when no tick was seen within d.
func WithStaleAfter(d time.Duration) Option {
	return func(h *HealthChecker) {
		h.staleAfter = d
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(h *HealthChecker) {
		h.now = now
	}
}

// New creates a new HealthChecker.
func New(opts ...Option) *HealthChecker {
	h := &HealthChecker{now: time.Now}
	for _, opt := range opts {
		opt(h)
	}
	h.startTime = h.now()
	return h
}

// SetReady marks the application as ready to serve traffic.
func (h *HealthChecker) SetReady(ready bool) {
	h.ready.Store(ready)
}

// MarkTick records a completed selector tick.
func (h *HealthChecker) MarkTick() {
	h.lastTick.Store(h.now().UnixNano())
	h.ticks.Add(1)
}

// LastTick returns the time of the last tick, zero if none.
func (h *HealthChecker) LastTick() time.Time {
	n := h.lastTick.Load()
	if n == 0 {
		return time.Time{}
	}
	return time.Unix(0, n)
}

// IsReady reports whether the application is ready and, when a stale-after
// window is configured, ticking.
func (h *HealthChecker) IsReady() (bool, string) {
	if !h.ready.Load() {
		return false, "application is starting"
	}
	if h.staleAfter <= 0 {
		return true, ""
	}

	last := h.LastTick()
	if last.IsZero() {
		if h.now().Sub(h.startTime) > h.staleAfter {
			return false, "no selector tick yet"
		}
		return true, ""
	}
	if h.now().Sub(last) > h.staleAfter {
		return false, "selector ticks are stale"
	}
	return true, ""
}

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status   string `json:"status"`
	Uptime   string `json:"uptime,omitempty"`
	Ticks    uint64 `json:"ticks"`
	LastTick string `json:"last_tick,omitempty"`
	Message  string `json:"message,omitempty"`
}

func (h *HealthChecker) response(status string) HealthResponse {
	resp := HealthResponse{
		Status: status,
		Uptime: h.now().Sub(h.startTime).String(),
		Ticks:  h.ticks.Load(),
	}
	if last := h.LastTick(); !last.IsZero() {
		resp.LastTick = last.UTC().Format(time.RFC3339)
	}
	return resp
}

// Health returns an HTTP handler for liveness checks.
// Always returns 200 OK if the application is running.
func (h *HealthChecker) Health() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, h.response("healthy"))
	}
}

// Ready returns an HTTP handler for readiness checks.
// Returns 200 OK if ready, 503 Service Unavailable if not.
func (h *HealthChecker) Ready() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ok, reason := h.IsReady()
		if !ok {
			resp := h.response("not_ready")
			resp.Message = reason
			writeJSON(w, http.StatusServiceUnavailable, resp)
			return
		}
		writeJSON(w, http.StatusOK, h.response("ready"))
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

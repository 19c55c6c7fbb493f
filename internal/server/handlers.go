package server

import (
	"encoding/json"
	"fmt"
	"math"
	"net"
	"net/http"
	"time"

	"github.com/eliaskioni/RateLimitingDemo/internal/limiter"
	"github.com/eliaskioni/RateLimitingDemo/internal/recorder"
)

// Wire shapes. Durations cross the API as integer milliseconds or seconds,
// matching what the browser UI works with.

type fixedWindowPayload struct {
	WindowMs    int64 `json:"window_ms"`
	MaxRequests int   `json:"max_requests"`
}

type slidingWindowPayload struct {
	MaxPoints int   `json:"max_points"`
	WindowSec int64 `json:"window_sec"`
	BlockSec  int64 `json:"block_sec"`
}

type tokenBucketPayload struct {
	Capacity          int   `json:"capacity"`
	WindowSec         int64 `json:"window_sec"`
	RefillAmount      int   `json:"refill_amount"`
	RefillIntervalSec int64 `json:"refill_interval_sec"`
}

type checkResponse struct {
	Algorithm    string `json:"algorithm"`
	Key          string `json:"key"`
	Allowed      bool   `json:"allowed"`
	Remaining    int    `json:"remaining"`
	Limit        int    `json:"limit"`
	RetryAfterMs int64  `json:"retry_after_ms,omitempty"`
}

type simulateRequest struct {
	Algorithm string `json:"algorithm"`
	Requests  int    `json:"requests"`
	DelayMs   int64  `json:"delay_ms"`
}

type traceEntryPayload struct {
	Index        int       `json:"index"`
	IssuedAt     time.Time `json:"issued_at"`
	Allowed      bool      `json:"allowed"`
	Remaining    int       `json:"remaining"`
	Limit        int       `json:"limit"`
	RetryAfterMs int64     `json:"retry_after_ms,omitempty"`
}

type simulateResponse struct {
	Algorithm string              `json:"algorithm"`
	Requests  int                 `json:"requests"`
	DelayMs   int64               `json:"delay_ms"`
	Allowed   int                 `json:"allowed"`
	Denied    int                 `json:"denied"`
	Trace     []traceEntryPayload `json:"trace"`
}

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"service": "rate-limiting-demo",
		"status":  "running",
		"time":    s.clock.Now().Format(time.RFC3339),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	kind, ok := s.parseKind(w, r)
	if !ok {
		return
	}

	cfg, err := s.registry.Config(kind)
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	writeJSON(w, http.StatusOK, configPayload(cfg))
}

func (s *Server) handlePutConfig(w http.ResponseWriter, r *http.Request) {
	kind, ok := s.parseKind(w, r)
	if !ok {
		return
	}

	cfg, err := decodeConfig(kind, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	if err := s.registry.Reconfigure(kind, cfg); err != nil {
		s.metrics.ReconfigsTotal.WithLabelValues(string(kind), "rejected").Inc()
		writeError(w, http.StatusBadRequest, err)
		return
	}
	s.metrics.ReconfigsTotal.WithLabelValues(string(kind), "applied").Inc()
	s.log.Info().Str("algorithm", string(kind)).Msg("configuration replaced, all keys reset")

	writeJSON(w, http.StatusOK, configPayload(cfg))
}

func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request) {
	kind, ok := s.parseKind(w, r)
	if !ok {
		return
	}

	key := r.PathValue("key")
	if key == "" {
		key = clientKey(r)
	}

	d, err := s.registry.Consume(r.Context(), kind, key)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	s.metrics.ObserveDecision(kind, d)
	s.publish(recorder.NewDecisionEvent(s.clock.Now(), kind, key, "api", d))

	resp := checkResponse{
		Algorithm: string(kind),
		Key:       key,
		Allowed:   d.Allowed,
		Remaining: d.Remaining,
		Limit:     d.Limit,
	}

	w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", d.Limit))
	w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", d.Remaining))

	status := http.StatusOK
	if !d.Allowed {
		resp.RetryAfterMs = d.RetryAfter.Milliseconds()
		w.Header().Set("Retry-After", fmt.Sprintf("%d", int(math.Ceil(d.RetryAfter.Seconds()))))
		status = http.StatusTooManyRequests
	}
	writeJSON(w, status, resp)
}

func (s *Server) handleSimulate(w http.ResponseWriter, r *http.Request) {
	var req simulateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("parsing request body: %w", err))
		return
	}

	kind, err := limiter.ParseKind(req.Algorithm)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	trace, err := s.driver.Run(r.Context(), kind, req.Requests, time.Duration(req.DelayMs)*time.Millisecond)
	if err != nil {
		s.metrics.SimulationsTotal.WithLabelValues(string(kind), "failed").Inc()
		status := http.StatusInternalServerError
		if limiter.IsValidation(err) {
			status = http.StatusBadRequest
		}
		writeError(w, status, err)
		return
	}
	s.metrics.SimulationsTotal.WithLabelValues(string(kind), "completed").Inc()

	resp := simulateResponse{
		Algorithm: string(kind),
		Requests:  req.Requests,
		DelayMs:   req.DelayMs,
		Trace:     make([]traceEntryPayload, 0, len(trace)),
	}
	for _, e := range trace {
		p := traceEntryPayload{
			Index:     e.Index,
			IssuedAt:  e.IssuedAt,
			Allowed:   e.Decision.Allowed,
			Remaining: e.Decision.Remaining,
			Limit:     e.Decision.Limit,
		}
		if e.Decision.Allowed {
			resp.Allowed++
		} else {
			resp.Denied++
			p.RetryAfterMs = e.Decision.RetryAfter.Milliseconds()
		}
		resp.Trace = append(resp.Trace, p)

		s.metrics.ObserveDecision(kind, e.Decision)
		s.publish(recorder.NewDecisionEvent(e.IssuedAt, kind, fmt.Sprintf("sim#%d", e.Index), "simulation", e.Decision))
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDashboard(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(DashboardHTML))
}

// publish fans a decision event out to the recorder and WebSocket clients.
func (s *Server) publish(e recorder.DecisionEvent) {
	if s.rec != nil {
		if err := s.rec.Record(e); err != nil {
			s.log.Warn().Err(err).Msg("recording decision event")
		}
	}
	if s.hub != nil {
		s.hub.Broadcast(e)
	}
}

func (s *Server) parseKind(w http.ResponseWriter, r *http.Request) (limiter.Kind, bool) {
	kind, err := limiter.ParseKind(r.PathValue("algorithm"))
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return "", false
	}
	return kind, true
}

// clientKey derives the identity key from the request: X-Forwarded-For when
// present, otherwise the remote address without its port.
func clientKey(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		return forwarded
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// decodeConfig parses the request body into the config shape for kind.
func decodeConfig(kind limiter.Kind, r *http.Request) (limiter.Config, error) {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	switch kind {
	case limiter.KindFixedWindow:
		var p fixedWindowPayload
		if err := dec.Decode(&p); err != nil {
			return nil, fmt.Errorf("parsing fixed window config: %w", err)
		}
		return limiter.FixedWindowConfig{
			Window:      time.Duration(p.WindowMs) * time.Millisecond,
			MaxRequests: p.MaxRequests,
		}, nil
	case limiter.KindSlidingWindow:
		var p slidingWindowPayload
		if err := dec.Decode(&p); err != nil {
			return nil, fmt.Errorf("parsing sliding window config: %w", err)
		}
		return limiter.SlidingWindowConfig{
			MaxPoints: p.MaxPoints,
			Window:    time.Duration(p.WindowSec) * time.Second,
			BlockFor:  time.Duration(p.BlockSec) * time.Second,
		}, nil
	case limiter.KindTokenBucket:
		var p tokenBucketPayload
		if err := dec.Decode(&p); err != nil {
			return nil, fmt.Errorf("parsing token bucket config: %w", err)
		}
		return limiter.TokenBucketConfig{
			Capacity:       p.Capacity,
			Window:         time.Duration(p.WindowSec) * time.Second,
			RefillAmount:   p.RefillAmount,
			RefillInterval: time.Duration(p.RefillIntervalSec) * time.Second,
		}, nil
	default:
		return nil, limiter.ErrUnknownKind
	}
}

// configPayload converts an engine config back into its wire shape.
func configPayload(cfg limiter.Config) any {
	switch c := cfg.(type) {
	case limiter.FixedWindowConfig:
		return fixedWindowPayload{
			WindowMs:    c.Window.Milliseconds(),
			MaxRequests: c.MaxRequests,
		}
	case limiter.SlidingWindowConfig:
		return slidingWindowPayload{
			MaxPoints: c.MaxPoints,
			WindowSec: int64(c.Window.Seconds()),
			BlockSec:  int64(c.BlockFor.Seconds()),
		}
	case limiter.TokenBucketConfig:
		return tokenBucketPayload{
			Capacity:          c.Capacity,
			WindowSec:         int64(c.Window.Seconds()),
			RefillAmount:      c.RefillAmount,
			RefillIntervalSec: int64(c.RefillInterval.Seconds()),
		}
	default:
		return nil
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, map[string]string{"error": msg})
}

package server

import (
	"context"
	"net"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/eliaskioni/RateLimitingDemo/internal/clock"
	"github.com/eliaskioni/RateLimitingDemo/internal/limiter"
	"github.com/eliaskioni/RateLimitingDemo/internal/obs"
	"github.com/eliaskioni/RateLimitingDemo/internal/recorder"
	"github.com/eliaskioni/RateLimitingDemo/internal/simulate"
)

// Server is the HTTP glue around the admission engine: request/response
// shaping, CORS, the live dashboard and metrics. All rate limiting decisions
// happen inside the registry; the server only translates them.
type Server struct {
	httpServer *http.Server
	registry   *limiter.Registry
	driver     *simulate.Driver
	clock      clock.Clock
	hub        *Hub
	rec        *recorder.Recorder
	metrics    *obs.Metrics
	log        zerolog.Logger
	mux        *http.ServeMux
}

// Options carries the optional server collaborators.
type Options struct {
	Logger   zerolog.Logger
	Hub      *Hub               // nil disables WebSocket streaming
	Recorder *recorder.Recorder // nil disables decision recording
}

// New creates a server on addr. The Prometheus registry is owned by the
// server; collectors register at construction.
func New(addr string, reg *limiter.Registry, driver *simulate.Driver, clk clock.Clock, opts Options) *Server {
	promReg := prometheus.NewRegistry()

	s := &Server{
		registry: reg,
		driver:   driver,
		clock:    clk,
		hub:      opts.Hub,
		rec:      opts.Recorder,
		metrics:  obs.NewMetrics(promReg),
		log:      opts.Logger,
		mux:      http.NewServeMux(),
	}
	s.routes(promReg)

	handler := Chain(s.mux,
		obs.AccessLog(s.log),
		CORS(),
	)

	s.httpServer = &http.Server{
		Addr:    addr,
		Handler: handler,
	}
	return s
}

func (s *Server) routes(promReg *prometheus.Registry) {
	s.mux.HandleFunc("GET /{$}", s.handleRoot)
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("GET /api/config/{algorithm}", s.handleGetConfig)
	s.mux.HandleFunc("PUT /api/config/{algorithm}", s.handlePutConfig)
	s.mux.HandleFunc("GET /api/check/{algorithm}", s.handleCheck)
	s.mux.HandleFunc("GET /api/check/{algorithm}/{key}", s.handleCheck)
	s.mux.HandleFunc("POST /api/simulate", s.handleSimulate)
	s.mux.HandleFunc("GET /dashboard/", s.handleDashboard)
	s.mux.Handle("GET /metrics", promhttp.HandlerFor(promReg, promhttp.HandlerOpts{}))
	if s.hub != nil {
		s.mux.HandleFunc("GET /ws", s.hub.HandleWebSocket)
	}
}

// Start begins listening. It blocks until the server is shut down.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return err
	}
	s.log.Info().Str("addr", ln.Addr().String()).Msg("listening")
	return s.httpServer.Serve(ln)
}

// StartOnListener begins serving on the provided listener. Useful for tests
// that need an ephemeral port.
func (s *Server) StartOnListener(ln net.Listener) error {
	s.log.Info().Str("addr", ln.Addr().String()).Msg("listening")
	return s.httpServer.Serve(ln)
}

// Handler exposes the full middleware-wrapped handler for httptest.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

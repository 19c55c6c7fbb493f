package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/eliaskioni/RateLimitingDemo/internal/clock"
	"github.com/eliaskioni/RateLimitingDemo/internal/config"
	"github.com/eliaskioni/RateLimitingDemo/internal/limiter"
	"github.com/eliaskioni/RateLimitingDemo/internal/obs"
	"github.com/eliaskioni/RateLimitingDemo/internal/recorder"
	"github.com/eliaskioni/RateLimitingDemo/internal/server"
	"github.com/eliaskioni/RateLimitingDemo/internal/simulate"
)

func newServeCmd() *cobra.Command {
	var (
		addr       string
		configFile string
		logLevel   string
		recordFile string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Long: `Starts the HTTP server that applies rate limiting and serves the demo API.

Endpoints:
  GET  /health                        Health check
  GET  /api/config/{algorithm}        Current configuration
  PUT  /api/config/{algorithm}        Replace configuration (resets all keys)
  GET  /api/check/{algorithm}         Check using the client address as key
  GET  /api/check/{algorithm}/{key}   Check for a specific key
  POST /api/simulate                  Run a simulation, returns the trace
  GET  /metrics                       Prometheus metrics
  GET  /dashboard/                    Live dashboard
  WS   /ws                            Real-time decision events`,
		Example: `  ratelimitdemo serve
  ratelimitdemo serve --addr :9090 --config demo.yaml
  ratelimitdemo serve --record decisions.json --log-level debug`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Default()
			if configFile != "" {
				var err error
				if cfg, err = config.LoadFile(configFile); err != nil {
					return err
				}
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}
			if logLevel != "" {
				cfg.Server.LogLevel = logLevel
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			logger := obs.SetupLogger(cfg.Server.LogLevel)
			clk := clock.NewReal()

			reg, err := limiter.NewRegistry(clk, cfg.LimiterConfigs()...)
			if err != nil {
				return err
			}

			opts := server.Options{
				Logger: logger,
				Hub:    server.NewHub(logger),
			}
			if recordFile != "" {
				opts.Recorder = recorder.New(nil)
			}

			srv := server.New(cfg.Server.Addr, reg, simulate.NewDriver(reg, clk), clk, opts)

			logger.Info().
				Str("dashboard", "http://localhost"+cfg.Server.Addr+"/dashboard/").
				Str("api", "http://localhost"+cfg.Server.Addr+"/api/check/{algorithm}/{key}").
				Msg("starting")

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				errCh <- srv.Start()
			}()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
				logger.Info().Msg("shutting down")
				if recordFile != "" && opts.Recorder != nil {
					logger.Info().Int("events", opts.Recorder.Len()).Str("file", recordFile).Msg("exporting recorded decisions")
					if err := opts.Recorder.ExportFile(recordFile); err != nil {
						logger.Error().Err(err).Msg("exporting recorded decisions")
					}
				}
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				return srv.Shutdown(shutdownCtx)
			}
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "address to listen on (overrides config file)")
	cmd.Flags().StringVar(&configFile, "config", "", "path to YAML config file")
	cmd.Flags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
	cmd.Flags().StringVar(&recordFile, "record", "", "record decisions to a JSON file (exported on shutdown)")

	return cmd
}

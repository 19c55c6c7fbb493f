package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/eliaskioni/RateLimitingDemo/internal/clock"
	"github.com/eliaskioni/RateLimitingDemo/internal/config"
	"github.com/eliaskioni/RateLimitingDemo/internal/limiter"
	"github.com/eliaskioni/RateLimitingDemo/internal/simulate"
)

func newSimulateCmd() *cobra.Command {
	var (
		algorithm  string
		requests   int
		delay      time.Duration
		configFile string
		realTime   bool
		outputJSON bool
	)

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Replay a synthetic request sequence against one algorithm",
		Long: `Runs a simulation offline and prints the resulting trace. By default the
run executes on a virtual clock, so even heavily delayed sequences
finish instantly while still showing correct elapsed time; --real paces
the requests against the wall clock instead.`,
		Example: `  ratelimitdemo simulate --algorithm fixed_window --requests 20
  ratelimitdemo simulate --algorithm token_bucket --requests 50 --delay 500ms
  ratelimitdemo simulate --algorithm sliding_window --requests 30 --delay 2s --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := limiter.ParseKind(algorithm)
			if err != nil {
				return err
			}

			cfg := config.Default()
			if configFile != "" {
				if cfg, err = config.LoadFile(configFile); err != nil {
					return err
				}
			}

			var clk clock.Clock
			if realTime {
				clk = clock.NewReal()
			} else {
				clk = clock.NewInstant(time.Now().Truncate(time.Second))
			}

			reg, err := limiter.NewRegistry(clk, cfg.LimiterConfigs()...)
			if err != nil {
				return err
			}

			trace, err := simulate.NewDriver(reg, clk).Run(context.Background(), kind, requests, delay)
			if err != nil {
				return err
			}

			if outputJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(traceReport(kind, delay, trace))
			}

			printTrace(kind, delay, trace)
			return nil
		},
	}

	cmd.Flags().StringVar(&algorithm, "algorithm", "token_bucket", "algorithm: fixed_window, sliding_window, token_bucket")
	cmd.Flags().IntVar(&requests, "requests", 20, "number of requests to simulate (1-100)")
	cmd.Flags().DurationVar(&delay, "delay", 0, "pause between requests (0-5s)")
	cmd.Flags().StringVar(&configFile, "config", "", "path to YAML config file with algorithm parameters")
	cmd.Flags().BoolVar(&realTime, "real", false, "pace the simulation against the wall clock")
	cmd.Flags().BoolVar(&outputJSON, "json", false, "output the trace as JSON")

	return cmd
}

// Report is the JSON shape of an offline simulation run.
type Report struct {
	Algorithm string        `json:"algorithm"`
	Delay     string        `json:"delay"`
	Allowed   int           `json:"allowed"`
	Denied    int           `json:"denied"`
	Entries   []ReportEntry `json:"entries"`
}

// ReportEntry is one simulated request in the report.
type ReportEntry struct {
	Index        int    `json:"index"`
	IssuedAt     string `json:"issued_at"`
	Allowed      bool   `json:"allowed"`
	Remaining    int    `json:"remaining"`
	Limit        int    `json:"limit"`
	RetryAfterMs int64  `json:"retry_after_ms,omitempty"`
}

func traceReport(kind limiter.Kind, delay time.Duration, trace []simulate.TraceEntry) Report {
	rep := Report{
		Algorithm: string(kind),
		Delay:     delay.String(),
		Entries:   make([]ReportEntry, 0, len(trace)),
	}
	for _, e := range trace {
		entry := ReportEntry{
			Index:     e.Index,
			IssuedAt:  e.IssuedAt.Format(time.RFC3339Nano),
			Allowed:   e.Decision.Allowed,
			Remaining: e.Decision.Remaining,
			Limit:     e.Decision.Limit,
		}
		if e.Decision.Allowed {
			rep.Allowed++
		} else {
			rep.Denied++
			entry.RetryAfterMs = e.Decision.RetryAfter.Milliseconds()
		}
		rep.Entries = append(rep.Entries, entry)
	}
	return rep
}

func printTrace(kind limiter.Kind, delay time.Duration, trace []simulate.TraceEntry) {
	fmt.Printf("=== Simulation: %s, %d requests, %s delay ===\n\n", kind, len(trace), delay)

	allowed, denied := 0, 0
	start := time.Time{}
	if len(trace) > 0 {
		start = trace[0].IssuedAt
	}
	for _, e := range trace {
		status := "ALLOW"
		extra := fmt.Sprintf("remaining=%d/%d", e.Decision.Remaining, e.Decision.Limit)
		if !e.Decision.Allowed {
			status = "DENY "
			extra = fmt.Sprintf("retry in %s", e.Decision.RetryAfter)
			denied++
		} else {
			allowed++
		}
		fmt.Printf("  #%03d [%s] t=+%-8s %s\n", e.Index, status, e.IssuedAt.Sub(start), extra)
	}

	fmt.Printf("\n--- Summary: %d allowed, %d denied ---\n", allowed, denied)
}

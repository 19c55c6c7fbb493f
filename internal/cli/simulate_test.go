package cli

import (
	"testing"
	"time"

	"github.com/eliaskioni/RateLimitingDemo/internal/limiter"
	"github.com/eliaskioni/RateLimitingDemo/internal/simulate"
)

func TestRootCmd_HasSubcommands(t *testing.T) {
	root := NewRootCmd()

	want := map[string]bool{"serve": false, "simulate": false}
	for _, c := range root.Commands() {
		if _, ok := want[c.Name()]; ok {
			want[c.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("root command is missing %q", name)
		}
	}
}

func TestTraceReport_Summarizes(t *testing.T) {
	epoch := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	trace := []simulate.TraceEntry{
		{Index: 1, IssuedAt: epoch, Decision: limiter.Decision{Allowed: true, Remaining: 1, Limit: 2}},
		{Index: 2, IssuedAt: epoch.Add(time.Second), Decision: limiter.Decision{Allowed: true, Remaining: 0, Limit: 2}},
		{Index: 3, IssuedAt: epoch.Add(2 * time.Second), Decision: limiter.Decision{
			Allowed: false, Limit: 2, RetryAfter: 1500 * time.Millisecond,
		}},
	}

	rep := traceReport(limiter.KindFixedWindow, time.Second, trace)

	if rep.Allowed != 2 || rep.Denied != 1 {
		t.Errorf("allowed/denied = %d/%d, want 2/1", rep.Allowed, rep.Denied)
	}
	if len(rep.Entries) != 3 {
		t.Fatalf("entries = %d, want 3", len(rep.Entries))
	}
	if rep.Entries[2].RetryAfterMs != 1500 {
		t.Errorf("RetryAfterMs = %d, want 1500", rep.Entries[2].RetryAfterMs)
	}
	if rep.Entries[0].RetryAfterMs != 0 {
		t.Errorf("allowed entry should have zero RetryAfterMs")
	}
}

func TestSimulateCmd_RunsInstantly(t *testing.T) {
	root := NewRootCmd()
	root.SetArgs([]string{"simulate", "--algorithm", "fixed_window", "--requests", "15", "--delay", "2s", "--json"})

	// A 15-request run with 2s pacing takes ~28s of virtual time; on the
	// instant clock it must return without real waiting.
	done := make(chan error, 1)
	go func() { done <- root.Execute() }()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Execute: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("simulate did not finish on the instant clock")
	}
}

func TestSimulateCmd_RejectsOutOfBounds(t *testing.T) {
	root := NewRootCmd()
	root.SetArgs([]string{"simulate", "--algorithm", "fixed_window", "--requests", "500"})

	if err := root.Execute(); !limiter.IsValidation(err) {
		t.Errorf("err = %v, want ValidationError", err)
	}
}

package recorder

import (
	"encoding/json"
	"io"
	"os"
	"sync"
)

// Recorder captures decision events for later inspection or export.
// Thread-safe for concurrent use.
type Recorder struct {
	mu     sync.Mutex
	events []DecisionEvent
	writer io.Writer // optional: stream events as they arrive
}

// New creates a Recorder. If w is non-nil, events are also written to w as
// newline-delimited JSON as they arrive.
func New(w io.Writer) *Recorder {
	return &Recorder{writer: w}
}

// Record captures a single decision event.
func (r *Recorder) Record(e DecisionEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.events = append(r.events, e)

	if r.writer != nil {
		if err := json.NewEncoder(r.writer).Encode(e); err != nil {
			return err
		}
	}
	return nil
}

// Events returns a copy of all recorded events.
func (r *Recorder) Events() []DecisionEvent {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]DecisionEvent, len(r.events))
	copy(out, r.events)
	return out
}

// Len returns the number of recorded events.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

// ExportJSON writes all events to the given writer as a JSON array.
func (r *Recorder) ExportJSON(w io.Writer) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r.events)
}

// ExportFile writes all events to a file as a JSON array.
func (r *Recorder) ExportFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return r.ExportJSON(f)
}

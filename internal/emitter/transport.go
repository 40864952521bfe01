// Package emitter delivers OpenLineage events produced by the dbt artifact
// processor over a configurable transport (console, HTTP, Kafka).
//
// Transports validate every event before sending it, so a producer bug
// surfaces locally at emission time instead of as a collector-side rejection.
package emitter

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/correlator-io/dbt-lineage/internal/lineage"
)

// Transport delivers a batch of lineage events to a destination.
// Implementations own connection lifecycle; Close releases any held
// resources.
type Transport interface {
	Emit(ctx context.Context, events []lineage.RunEvent) error
	Close() error
}

// ConsoleTransport writes events as JSON lines. Useful for dry runs and for
// piping into other tooling.
type ConsoleTransport struct {
	w         io.Writer
	validator *lineage.Validator
}

// NewConsoleTransport creates a ConsoleTransport writing to w.
func NewConsoleTransport(w io.Writer) *ConsoleTransport {
	return &ConsoleTransport{
		w:         w,
		validator: lineage.NewValidator(),
	}
}

// Emit writes each event as one JSON line, in order.
func (t *ConsoleTransport) Emit(_ context.Context, events []lineage.RunEvent) error {
	encoder := json.NewEncoder(t.w)

	for i := range events {
		if err := t.validator.ValidateRunEvent(&events[i]); err != nil {
			return fmt.Errorf("invalid event %d: %w", i, err)
		}

		if err := encoder.Encode(&events[i]); err != nil {
			return fmt.Errorf("encode event %d: %w", i, err)
		}
	}

	return nil
}

// Close is a no-op: the transport does not own the writer.
func (t *ConsoleTransport) Close() error {
	return nil
}

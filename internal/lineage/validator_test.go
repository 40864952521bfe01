package lineage

import (
	"errors"
	"testing"
	"time"
)

// validEvent returns a minimal event that passes validation; tests mutate one
// field at a time.
func validEvent() RunEvent {
	return RunEvent{
		EventType: EventTypeStart,
		EventTime: time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC),
		Run:       Run{ID: "run-1"},
		Job:       Job{Namespace: "bigquery", Name: "db.public.orders"},
		Producer:  "https://example.com/producer/1.0.0",
		SchemaURL: SchemaURL,
	}
}

func TestValidateRunEvent(t *testing.T) {
	if !testing.Short() {
		t.Skip("skipping unit test in non-short mode")
	}

	validator := NewValidator()

	tests := []struct {
		name    string
		mutate  func(*RunEvent)
		wantErr error
	}{
		{"valid event", func(*RunEvent) {}, nil},
		{"invalid event type", func(e *RunEvent) { e.EventType = "DONE" }, ErrInvalidEventType},
		{"zero event time", func(e *RunEvent) { e.EventTime = time.Time{} }, ErrMissingEventTime},
		{"empty producer", func(e *RunEvent) { e.Producer = "" }, ErrMissingProducer},
		{"empty schema url", func(e *RunEvent) { e.SchemaURL = "" }, ErrMissingSchemaURL},
		{"empty run id", func(e *RunEvent) { e.Run.ID = "" }, ErrMissingRunID},
		{"empty job namespace", func(e *RunEvent) { e.Job.Namespace = "" }, ErrMissingJobNamespace},
		{"empty job name", func(e *RunEvent) { e.Job.Name = "" }, ErrMissingJobName},
		{
			"input dataset missing name",
			func(e *RunEvent) { e.Inputs = []Dataset{{Namespace: "bigquery"}} },
			ErrDatasetMissingName,
		},
		{
			"output dataset missing namespace",
			func(e *RunEvent) { e.Outputs = []Dataset{{Name: "db.public.orders"}} },
			ErrDatasetMissingNamespace,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			event := validEvent()
			tt.mutate(&event)

			err := validator.ValidateRunEvent(&event)

			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("ValidateRunEvent() failed: %v", err)
				}

				return
			}

			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("ValidateRunEvent() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateRunEvent_NilEvent(t *testing.T) {
	if !testing.Short() {
		t.Skip("skipping unit test in non-short mode")
	}

	if err := NewValidator().ValidateRunEvent(nil); !errors.Is(err, ErrNilEvent) {
		t.Fatalf("Expected ErrNilEvent, got %v", err)
	}
}

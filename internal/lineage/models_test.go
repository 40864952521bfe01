package lineage

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestEventType_IsValid(t *testing.T) {
	if !testing.Short() {
		t.Skip("skipping unit test in non-short mode")
	}

	for _, et := range ValidEventTypes() {
		if !et.IsValid() {
			t.Errorf("Expected %s to be valid", et)
		}
	}

	invalid := []EventType{"", "start", "DONE", "Complete"}
	for _, et := range invalid {
		if et.IsValid() {
			t.Errorf("Expected %q to be invalid", et)
		}
	}
}

func TestEventType_IsTerminal(t *testing.T) {
	if !testing.Short() {
		t.Skip("skipping unit test in non-short mode")
	}

	tests := []struct {
		et   EventType
		want bool
	}{
		{EventTypeStart, false},
		{EventTypeRunning, false},
		{EventTypeComplete, true},
		{EventTypeFail, true},
		{EventTypeAbort, true},
		{EventTypeOther, false},
	}

	for _, tt := range tests {
		if got := tt.et.IsTerminal(); got != tt.want {
			t.Errorf("%s.IsTerminal() = %v, want %v", tt.et, got, tt.want)
		}
	}
}

func TestRunEvent_WireFormat(t *testing.T) {
	if !testing.Short() {
		t.Skip("skipping unit test in non-short mode")
	}

	event := RunEvent{
		EventType: EventTypeComplete,
		EventTime: time.Date(2021, 1, 1, 0, 1, 0, 0, time.UTC),
		Run:       Run{ID: "run-1"},
		Job:       Job{Namespace: "snowflake://acct", Name: "db.public.customers"},
		Producer:  "https://example.com/producer/1.0.0",
		SchemaURL: SchemaURL,
		Inputs:    []Dataset{},
		Outputs: []Dataset{
			{
				Namespace: "snowflake://acct",
				Name:      "db.public.customers",
				Facets: Facets{
					FacetKeySchema: SchemaDatasetFacet{
						BaseFacet: NewBaseFacet("https://example.com/producer/1.0.0"),
						Fields:    []SchemaField{{Name: "id", Type: "int"}},
					},
				},
			},
		},
	}

	data, err := json.Marshal(event)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	wire := string(data)

	// OpenLineage wire-format key names, not Go field names.
	for _, key := range []string{`"eventType":"COMPLETE"`, `"runId":"run-1"`, `"_producer"`, `"_schemaURL"`, `"schemaURL"`} {
		if !strings.Contains(wire, key) {
			t.Errorf("Expected wire format to contain %s, got %s", key, wire)
		}
	}

	// Empty facet maps must be omitted, not serialized as null/{}.
	if strings.Contains(wire, `"inputFacets"`) || strings.Contains(wire, `"outputFacets"`) {
		t.Errorf("Expected absent facet maps to be omitted, got %s", wire)
	}
}

func TestRunEvent_IdempotencyKey(t *testing.T) {
	if !testing.Short() {
		t.Skip("skipping unit test in non-short mode")
	}

	event := RunEvent{
		EventType: EventTypeStart,
		EventTime: time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC),
		Run:       Run{ID: "run-1"},
		Job:       Job{Namespace: "bigquery", Name: "db.public.orders"},
		Producer:  "https://example.com/producer/1.0.0",
	}

	key := event.IdempotencyKey()
	if len(key) != 64 {
		t.Fatalf("Expected 64-char hex key, got %d chars", len(key))
	}

	if key != event.IdempotencyKey() {
		t.Error("Expected identical events to share an idempotency key")
	}

	complete := event
	complete.EventType = EventTypeComplete

	if key == complete.IdempotencyKey() {
		t.Error("Expected a different event type to change the idempotency key")
	}
}

func TestDataset_URN(t *testing.T) {
	if !testing.Short() {
		t.Skip("skipping unit test in non-short mode")
	}

	dataset := Dataset{Namespace: "snowflake://acct", Name: "db.public.orders"}

	if got, want := dataset.URN(), "snowflake://acct/db.public.orders"; got != want {
		t.Errorf("URN() = %q, want %q", got, want)
	}
}

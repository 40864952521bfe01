package dbt

import (
	"testing"
)

func TestChainValue(t *testing.T) {
	if !testing.Short() {
		t.Skip("skipping unit test in non-short mode")
	}

	doc := map[string]interface{}{
		"metadata": map[string]interface{}{
			"dbt_schema_version": "https://schemas.getdbt.com/dbt/manifest/v2.json",
		},
		"stats": map[string]interface{}{
			"num_rows": map[string]interface{}{
				"value": float64(100),
			},
		},
		"nil_section": nil,
		"scalar":      "not-a-map",
	}

	tests := []struct {
		name   string
		keys   []string
		want   interface{}
		wantOK bool
	}{
		{"nested string", []string{"metadata", "dbt_schema_version"}, "https://schemas.getdbt.com/dbt/manifest/v2.json", true},
		{"nested number", []string{"stats", "num_rows", "value"}, float64(100), true},
		{"missing top-level key", []string{"no_such_key"}, nil, false},
		{"missing nested key", []string{"metadata", "no_such_key"}, nil, false},
		{"nil intermediate", []string{"nil_section", "anything"}, nil, false},
		{"scalar intermediate", []string{"scalar", "anything"}, nil, false},
		{"no keys", nil, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := chainValue(doc, tt.keys...)
			if ok != tt.wantOK {
				t.Fatalf("chainValue() ok = %v, want %v", ok, tt.wantOK)
			}

			if ok && got != tt.want {
				t.Errorf("chainValue() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestChainValue_NilDocument(t *testing.T) {
	if !testing.Short() {
		t.Skip("skipping unit test in non-short mode")
	}

	if _, ok := chainValue(nil, "metadata"); ok {
		t.Error("Expected chainValue on nil document to report absence")
	}
}

func TestChainString_NonStringValue(t *testing.T) {
	if !testing.Short() {
		t.Skip("skipping unit test in non-short mode")
	}

	doc := map[string]interface{}{"count": float64(3)}

	if _, ok := chainString(doc, "count"); ok {
		t.Error("Expected chainString to reject non-string value")
	}
}

func TestFirstChainValue_PriorityOrder(t *testing.T) {
	if !testing.Short() {
		t.Skip("skipping unit test in non-short mode")
	}

	// Both vendor layouts present: the first path must win.
	doc := map[string]interface{}{
		"stats": map[string]interface{}{
			"num_bytes": map[string]interface{}{"value": "bigquery"},
			"bytes":     map[string]interface{}{"value": "snowflake"},
		},
	}

	got, ok := firstChainValue(doc,
		[]string{"stats", "num_bytes", "value"},
		[]string{"stats", "bytes", "value"},
	)
	if !ok {
		t.Fatal("Expected a value from firstChainValue")
	}

	if got != "bigquery" {
		t.Errorf("Expected first path to win, got %v", got)
	}
}

func TestFirstChainValue_FallsBack(t *testing.T) {
	if !testing.Short() {
		t.Skip("skipping unit test in non-short mode")
	}

	doc := map[string]interface{}{
		"stats": map[string]interface{}{
			"row_count": map[string]interface{}{"value": float64(42)},
		},
	}

	got, ok := firstChainValue(doc,
		[]string{"stats", "num_rows", "value"},
		[]string{"stats", "row_count", "value"},
	)
	if !ok {
		t.Fatal("Expected fallback path to resolve")
	}

	if got != float64(42) {
		t.Errorf("Expected 42 from fallback path, got %v", got)
	}
}

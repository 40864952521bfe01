package config

import (
	"log/slog"
	"testing"
	"time"
)

func TestGetEnvStr(t *testing.T) {
	if !testing.Short() {
		t.Skip("skipping unit test in non-short mode")
	}

	t.Setenv("TEST_STR", "value")

	if got := GetEnvStr("TEST_STR", "default"); got != "value" {
		t.Errorf("GetEnvStr() = %q, want value", got)
	}

	if got := GetEnvStr("TEST_STR_UNSET", "default"); got != "default" {
		t.Errorf("GetEnvStr() = %q, want default", got)
	}
}

func TestGetEnvInt(t *testing.T) {
	if !testing.Short() {
		t.Skip("skipping unit test in non-short mode")
	}

	t.Setenv("TEST_INT", "42")
	t.Setenv("TEST_INT_BAD", "not-a-number")

	if got := GetEnvInt("TEST_INT", 7); got != 42 {
		t.Errorf("GetEnvInt() = %d, want 42", got)
	}

	if got := GetEnvInt("TEST_INT_BAD", 7); got != 7 {
		t.Errorf("GetEnvInt() with invalid value = %d, want default 7", got)
	}
}

func TestGetEnvBool(t *testing.T) {
	if !testing.Short() {
		t.Skip("skipping unit test in non-short mode")
	}

	tests := []struct {
		value string
		want  bool
	}{
		{"true", true},
		{"1", true},
		{"YES", true},
		{"false", false},
		{"0", false},
		{"no", false},
		{"maybe", true}, // unparseable falls back to default
	}

	for _, tt := range tests {
		t.Setenv("TEST_BOOL", tt.value)

		if got := GetEnvBool("TEST_BOOL", true); got != tt.want {
			t.Errorf("GetEnvBool(%q) = %v, want %v", tt.value, got, tt.want)
		}
	}
}

func TestGetEnvDuration(t *testing.T) {
	if !testing.Short() {
		t.Skip("skipping unit test in non-short mode")
	}

	t.Setenv("TEST_DURATION", "90s")

	if got := GetEnvDuration("TEST_DURATION", time.Second); got != 90*time.Second {
		t.Errorf("GetEnvDuration() = %s, want 90s", got)
	}
}

func TestGetEnvLogLevel(t *testing.T) {
	if !testing.Short() {
		t.Skip("skipping unit test in non-short mode")
	}

	tests := []struct {
		value string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"verbose", slog.LevelInfo}, // unknown falls back to default
	}

	for _, tt := range tests {
		t.Setenv("TEST_LOG_LEVEL", tt.value)

		if got := GetEnvLogLevel("TEST_LOG_LEVEL", slog.LevelInfo); got != tt.want {
			t.Errorf("GetEnvLogLevel(%q) = %v, want %v", tt.value, got, tt.want)
		}
	}
}

func TestParseCommaSeparatedList(t *testing.T) {
	if !testing.Short() {
		t.Skip("skipping unit test in non-short mode")
	}

	got := ParseCommaSeparatedList(" a, b ,, c ")
	want := []string{"a", "b", "c"}

	if len(got) != len(want) {
		t.Fatalf("ParseCommaSeparatedList() = %v, want %v", got, want)
	}

	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Element %d = %q, want %q", i, got[i], want[i])
		}
	}
}

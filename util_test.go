package main

import (
	"testing"
	"time"
)

func TestFormatUptime(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{5 * time.Second, "5 seconds"},
		{1 * time.Second, "1 second"},
		{65 * time.Second, "1 minute, 5 seconds"},
		{2 * time.Minute, "2 minutes, 0 seconds"},
		{3*time.Hour + 4*time.Minute + 5*time.Second, "3 hours, 4 minutes, 5 seconds"},
		{time.Hour, "1 hour, 0 minutes, 0 seconds"},
	}
	for _, tt := range tests {
		if got := formatUptime(tt.d); got != tt.want {
			t.Errorf("formatUptime(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestPlural(t *testing.T) {
	if plural(1) != "" {
		t.Error("plural(1) should be empty")
	}
	if plural(0) != "s" || plural(2) != "s" {
		t.Error("plural(n != 1) should be \"s\"")
	}
}

func TestGetEnvDuration(t *testing.T) {
	t.Setenv("TEST_DURATION", "90s")
	if got := getEnvDuration("TEST_DURATION", time.Minute); got != 90*time.Second {
		t.Errorf("got %v, want 90s", got)
	}
	t.Setenv("TEST_DURATION", "not-a-duration")
	if got := getEnvDuration("TEST_DURATION", time.Minute); got != time.Minute {
		t.Errorf("invalid value should fall back, got %v", got)
	}
	if got := getEnvDuration("TEST_DURATION_UNSET", 2*time.Hour); got != 2*time.Hour {
		t.Errorf("unset value should fall back, got %v", got)
	}
}

func TestGetEnvInt(t *testing.T) {
	t.Setenv("TEST_INT", "42")
	if got := getEnvInt("TEST_INT", 7); got != 42 {
		t.Errorf("got %d, want 42", got)
	}
	t.Setenv("TEST_INT", "nope")
	if got := getEnvInt("TEST_INT", 7); got != 7 {
		t.Errorf("invalid value should fall back, got %d", got)
	}
}

func TestGetEnvString(t *testing.T) {
	t.Setenv("TEST_STRING", "value")
	if got := getEnvString("TEST_STRING", "fallback"); got != "value" {
		t.Errorf("got %q, want %q", got, "value")
	}
	if got := getEnvString("TEST_STRING_UNSET", "fallback"); got != "fallback" {
		t.Errorf("unset value should fall back, got %q", got)
	}
}

package config

import (
	"testing"

	"github.com/sirupsen/logrus"
)

func TestGetEnvDefaults(t *testing.T) {
	if got := GetEnv("PULSE_TEST_UNSET", "fallback"); got != "fallback" {
		t.Fatalf("expected fallback, got %q", got)
	}
	t.Setenv("PULSE_TEST_SET", "value")
	if got := GetEnv("PULSE_TEST_SET", "fallback"); got != "value" {
		t.Fatalf("expected value, got %q", got)
	}
}

func TestGetEnvInt(t *testing.T) {
	if got := GetEnvInt("PULSE_TEST_INT_UNSET", 7); got != 7 {
		t.Fatalf("expected 7, got %d", got)
	}
	t.Setenv("PULSE_TEST_INT", "42")
	if got := GetEnvInt("PULSE_TEST_INT", 7); got != 42 {
		t.Fatalf("expected 42, got %d", got)
	}
	t.Setenv("PULSE_TEST_INT", "not-a-number")
	if got := GetEnvInt("PULSE_TEST_INT", 7); got != 7 {
		t.Fatalf("expected fallback on parse failure, got %d", got)
	}
}

func TestGetEnvBool(t *testing.T) {
	t.Setenv("PULSE_TEST_BOOL", "true")
	if !GetEnvBool("PULSE_TEST_BOOL", false) {
		t.Fatalf("expected true")
	}
	t.Setenv("PULSE_TEST_BOOL", "junk")
	if GetEnvBool("PULSE_TEST_BOOL", false) {
		t.Fatalf("expected fallback on parse failure")
	}
}

func TestGetLogLevel(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")
	if GetLogLevel() != logrus.DebugLevel {
		t.Fatalf("expected debug level")
	}
	t.Setenv("LOG_LEVEL", "")
	if GetLogLevel() != logrus.InfoLevel {
		t.Fatalf("expected info default")
	}
}

package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"pulse/pkg/logging"
	"pulse/pkg/monitoring"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig("pulse", "8080")
	if cfg.Port != "8080" {
		t.Fatalf("expected default port 8080, got %s", cfg.Port)
	}
	if cfg.ServiceName != "pulse" {
		t.Fatalf("expected service name pulse")
	}
}

func TestSetupServiceRouter(t *testing.T) {
	logger := logging.NewLogger()
	hc := monitoring.NewHealthChecker("pulse", "test")
	r := SetupServiceRouter(logger, "pulse", hc, nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 from /health, got %d", resp.Code)
	}
}

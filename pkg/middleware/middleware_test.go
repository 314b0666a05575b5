package middleware

import (
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/adpulse-ai/platform/pkg/common/logger"
)

func TestMain(m *testing.M) {
	logger.Init("middleware-test")
	os.Exit(m.Run())
}

func TestTenantRequiresHeader(t *testing.T) {
	handler := Tenant(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/integrations", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without X-Tenant-ID, got %d", rec.Code)
	}
}

func TestTenantPropagatesThroughContext(t *testing.T) {
	var seen string
	handler := Tenant(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = TenantFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/integrations", nil)
	req.Header.Set("X-Tenant-ID", "tenant-42")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if seen != "tenant-42" {
		t.Fatalf("expected tenant from context, got %q", seen)
	}
}

func TestRecoveryTurnsPanicsInto500(t *testing.T) {
	handler := Recovery(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 after panic, got %d", rec.Code)
	}
}

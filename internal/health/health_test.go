package health

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestStatus_ReadinessFlag(t *testing.T) {
	t.Parallel()

	s := New(0)

	rec := httptest.NewRecorder()
	s.status(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status before ready = %d, want 503", rec.Code)
	}

	s.SetReady(true)
	rec = httptest.NewRecorder()
	s.status(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("status after ready = %d, want 200", rec.Code)
	}

	s.SetReady(false)
	rec = httptest.NewRecorder()
	s.status(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status after unready = %d, want 503", rec.Code)
	}
}

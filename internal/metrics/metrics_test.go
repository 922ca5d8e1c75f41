package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics_Moderation_LabelsResult(t *testing.T) {
	m := New()
	m.Moderation("publish", nil)
	m.Moderation("publish", nil)
	m.Moderation("delete", errors.New("boom"))

	if got := testutil.ToFloat64(m.ModerationActions.WithLabelValues("publish", "ok")); got != 2 {
		t.Errorf("expected 2 publish ok, got %v", got)
	}
	if got := testutil.ToFloat64(m.ModerationActions.WithLabelValues("delete", "error")); got != 1 {
		t.Errorf("expected 1 delete error, got %v", got)
	}
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	m.ShareSubmitted()
	m.Moderation("publish", nil)
	m.ImageCleanupFailed()
	m.ContactSubmitted()
	m.Login(true)
	m.ObserveRequest("GET", 200, time.Millisecond)
}

func TestMetrics_Handler_ServesRegistry(t *testing.T) {
	m := New()
	m.ShareSubmitted()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "sharewall_shares_submitted_total 1") {
		t.Errorf("expected submitted counter in output")
	}
}

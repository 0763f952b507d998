package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestUpstreamCounter(t *testing.T) {
	m := New()
	m.Upstream("painting", OutcomeOK)
	m.Upstream("painting", OutcomeOK)
	m.Upstream("facts", OutcomeError)

	if got := testutil.ToFloat64(m.upstream.WithLabelValues("painting", OutcomeOK)); got != 2 {
		t.Errorf("expected 2 painting requests, got %v", got)
	}
	if got := testutil.ToFloat64(m.upstream.WithLabelValues("facts", OutcomeError)); got != 1 {
		t.Errorf("expected 1 failed facts request, got %v", got)
	}
}

func TestHandlerExposesCollectors(t *testing.T) {
	m := New()
	m.Page("painting", 200, 15*time.Millisecond)
	m.Measurement("measured")
	m.RateLimited()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	if rec.Code != 200 {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	body, _ := io.ReadAll(rec.Body)
	text := string(body)
	for _, line := range []string{
		`artexplorer_page_requests_total{route="painting",status="200"} 1`,
		`artexplorer_image_measurements_total{outcome="measured"} 1`,
		"artexplorer_rate_limited_total 1",
		"artexplorer_page_duration_seconds_bucket",
	} {
		if !strings.Contains(text, line) {
			t.Errorf("expected exposition to contain %q", line)
		}
	}
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.Upstream("painting", OutcomeOK)
	m.Page("home", 200, time.Millisecond)
	m.Measurement("hit")
	m.RateLimited()

	if m.Registry() != nil {
		t.Error("expected nil registry")
	}

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	if rec.Code != 404 {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

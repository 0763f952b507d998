package validate

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ppiankov/artexplorer/internal/model"
	"github.com/ppiankov/artexplorer/internal/util"
)

func init() {
	// Disable retry sleep in all tests for fast execution
	validateSleepFunc = func(d time.Duration) {}
}

func testHTTPConfig() model.HTTPConfig {
	return model.HTTPConfig{Timeout: 5 * time.Second, UserAgent: "ArtExplorer/0.1"}
}

func TestValidator_ValidateSingle_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodHead {
			t.Errorf("Expected HEAD request, got %s", r.Method)
		}
		if r.Header.Get("User-Agent") != "ArtExplorer/0.1" {
			t.Errorf("Expected user agent to be set, got %q", r.Header.Get("User-Agent"))
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	validator := NewValidator(testHTTPConfig(), 20, nil)
	result := validator.validateSingle(context.Background(), model.Link{URL: server.URL, Kind: model.LinkImage})

	if !result.IsAccessible {
		t.Error("Expected link to be accessible")
	}
	if result.StatusCode != http.StatusOK {
		t.Errorf("Expected status code 200, got %d", result.StatusCode)
	}
	if result.IsDead {
		t.Error("Expected link not to be dead")
	}
	if result.Kind != model.LinkImage {
		t.Errorf("Expected kind to be carried over, got %s", result.Kind)
	}
}

func TestValidator_ValidateSingle_404(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	validator := NewValidator(testHTTPConfig(), 20, nil)
	result := validator.validateSingle(context.Background(), model.Link{URL: server.URL})

	if result.IsAccessible {
		t.Error("Expected 404 link not to be accessible")
	}
	if !result.IsDead {
		t.Error("Expected 404 link to be marked as dead")
	}
	if result.StatusCode != http.StatusNotFound {
		t.Errorf("Expected status code 404, got %d", result.StatusCode)
	}
}

func TestValidator_ValidateSingle_Redirect(t *testing.T) {
	finalServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer finalServer.Close()

	redirectServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, finalServer.URL+"/wiki/The_Starry_Night", http.StatusMovedPermanently)
	}))
	defer redirectServer.Close()

	validator := NewValidator(testHTTPConfig(), 20, nil)
	result := validator.validateSingle(context.Background(), model.Link{URL: redirectServer.URL})

	if !result.IsAccessible {
		t.Error("Expected redirected link to be accessible")
	}
	if result.RedirectURL != finalServer.URL+"/wiki/The_Starry_Night" {
		t.Errorf("Expected redirect URL to be recorded, got %q", result.RedirectURL)
	}
}

func TestValidator_HeadNotAllowedFallsBackToGet(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodHead {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		if r.Header.Get("Range") != "bytes=0-0" {
			t.Errorf("Expected one-byte range on GET fallback, got %q", r.Header.Get("Range"))
		}
		w.WriteHeader(http.StatusPartialContent)
	}))
	defer server.Close()

	validator := NewValidator(testHTTPConfig(), 20, nil)
	result := validator.validateSingle(context.Background(), model.Link{URL: server.URL})

	if !result.IsAccessible {
		t.Errorf("Expected GET fallback to succeed, got status %d", result.StatusCode)
	}
}

func TestValidator_NetworkError(t *testing.T) {
	validator := NewValidator(model.HTTPConfig{Timeout: time.Second}, 20, nil)
	result := validator.validateSingle(context.Background(), model.Link{URL: "http://127.0.0.1:1/unreachable"})

	if !result.IsDead {
		t.Error("Expected unreachable link to be dead")
	}
	if result.Error == "" {
		t.Error("Expected error message")
	}
}

func TestValidator_RetryOn5xx(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	validator := NewValidator(testHTTPConfig(), 20, nil)
	result := validator.validateSingleWithRetry(context.Background(), model.Link{URL: server.URL})

	if !result.IsAccessible {
		t.Error("Expected link to be accessible after retries")
	}
	if atomic.LoadInt32(&calls) != 3 {
		t.Errorf("Expected 3 calls, got %d", calls)
	}
}

func TestValidator_NoRetryOn404(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	validator := NewValidator(testHTTPConfig(), 20, nil)
	validator.validateSingleWithRetry(context.Background(), model.Link{URL: server.URL})

	if atomic.LoadInt32(&calls) != 1 {
		t.Errorf("Expected 1 call, got %d", calls)
	}
}

func TestValidator_Validate_Concurrent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/gone" {
			w.WriteHeader(http.StatusGone)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	links := []model.Link{
		{URL: server.URL + "/image.jpg", Kind: model.LinkImage},
		{URL: server.URL + "/gone", Kind: model.LinkSource},
		{URL: server.URL + "/license", Kind: model.LinkLicense},
	}

	validator := NewValidator(testHTTPConfig(), 2, nil)
	results := validator.Validate(context.Background(), links)

	if len(results) != 3 {
		t.Fatalf("Expected 3 results, got %d", len(results))
	}
	for i, r := range results {
		if r.URL != links[i].URL {
			t.Errorf("Expected results in input order, got %s at %d", r.URL, i)
		}
	}
	if !results[1].IsDead {
		t.Error("Expected 410 link to be dead")
	}
	if results[0].IsDead || results[2].IsDead {
		t.Error("Expected other links to be alive")
	}
}

func TestValidator_Validate_Empty(t *testing.T) {
	validator := NewValidator(testHTTPConfig(), 2, nil)
	if results := validator.Validate(context.Background(), nil); len(results) != 0 {
		t.Errorf("Expected no results, got %d", len(results))
	}
}

func TestValidator_RobotsSkip(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			_, _ = w.Write([]byte("User-agent: *\nDisallow: /\n"))
			return
		}
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	robots := util.NewRobotsChecker("ArtExplorer/0.1", time.Second, nil)
	validator := NewValidator(testHTTPConfig(), 2, robots)
	results := validator.Validate(context.Background(), []model.Link{{URL: server.URL + "/wiki/x", Kind: model.LinkSource}})

	if !results[0].Skipped {
		t.Error("Expected disallowed link to be skipped")
	}
	if results[0].IsDead {
		t.Error("Expected skipped link not to be dead")
	}
	if atomic.LoadInt32(&hits) != 0 {
		t.Errorf("Expected no requests to disallowed path, got %d", hits)
	}
}

func TestIsRetryableNetworkError(t *testing.T) {
	cases := map[string]bool{
		"request failed: dial tcp: i/o timeout":        true,
		"request failed: connection refused":           true,
		"request failed: read: connection reset":       true,
		"create request: parse \"::\": missing scheme": false,
	}
	for msg, want := range cases {
		if got := isRetryableNetworkError(msg); got != want {
			t.Errorf("isRetryableNetworkError(%q) = %v, want %v", msg, got, want)
		}
	}
}

package validate

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/ppiankov/artexplorer/internal/model"
	"github.com/ppiankov/artexplorer/internal/util"
)

const validateMaxRetries = 3

// validateSleepFunc is the sleep function used between retries (injectable for tests)
var validateSleepFunc = time.Sleep

// Validator checks a painting's attribution links concurrently
type Validator struct {
	httpClient *http.Client
	maxWorkers int
	userAgent  string
	robots     *util.RobotsChecker
}

// NewValidator creates a new validator. A nil robots checker checks every link.
func NewValidator(cfg model.HTTPConfig, maxWorkers int, robots *util.RobotsChecker) *Validator {
	if maxWorkers <= 0 {
		maxWorkers = 20
	}

	return &Validator{
		httpClient: util.NewHTTPClient(cfg, 3),
		maxWorkers: maxWorkers,
		userAgent:  cfg.UserAgent,
		robots:     robots,
	}
}

// Validate checks all links concurrently. Results are in input order.
func (v *Validator) Validate(ctx context.Context, links []model.Link) []model.LinkResult {
	if len(links) == 0 {
		return []model.LinkResult{}
	}

	results := make([]model.LinkResult, len(links))
	var wg sync.WaitGroup

	// Create semaphore to limit concurrent requests
	semaphore := make(chan struct{}, v.maxWorkers)

	for i, link := range links {
		wg.Add(1)
		go func(idx int, l model.Link) {
			defer wg.Done()

			select {
			case <-ctx.Done():
				results[idx] = model.LinkResult{
					URL:   l.URL,
					Kind:  l.Kind,
					Error: "context cancelled",
				}
				return
			case semaphore <- struct{}{}:
			}

			defer func() { <-semaphore }()

			if v.robots != nil && !v.robots.IsAllowed(ctx, l.URL) {
				results[idx] = model.LinkResult{URL: l.URL, Kind: l.Kind, Skipped: true}
				return
			}

			results[idx] = v.validateSingleWithRetry(ctx, l)
		}(i, link)
	}

	wg.Wait()

	return results
}

// validateSingle checks a single link with HEAD, falling back to a one-byte
// GET for servers that refuse HEAD
func (v *Validator) validateSingle(ctx context.Context, link model.Link) model.LinkResult {
	result := model.LinkResult{
		URL:  link.URL,
		Kind: link.Kind,
	}

	resp, err := v.do(ctx, http.MethodHead, link.URL)
	if err == nil && (resp.StatusCode == http.StatusMethodNotAllowed || resp.StatusCode == http.StatusNotImplemented) {
		_ = resp.Body.Close()
		resp, err = v.do(ctx, http.MethodGet, link.URL)
	}
	if err != nil {
		result.Error = err.Error()
		result.IsDead = true
		return result
	}
	defer func() { _ = resp.Body.Close() }()

	result.StatusCode = resp.StatusCode

	if resp.StatusCode >= 200 && resp.StatusCode < 400 {
		result.IsAccessible = true
	} else if resp.StatusCode == 404 || resp.StatusCode == 410 {
		result.IsDead = true
	}

	if resp.Request.URL.String() != link.URL {
		result.RedirectURL = resp.Request.URL.String()
	}

	return result
}

func (v *Validator) do(ctx context.Context, method, rawURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", v.userAgent)
	if method == http.MethodGet {
		req.Header.Set("Range", "bytes=0-0")
	}

	resp, err := v.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	return resp, nil
}

// validateSingleWithRetry retries transient failures with exponential backoff
func (v *Validator) validateSingleWithRetry(ctx context.Context, link model.Link) model.LinkResult {
	var result model.LinkResult
	for attempt := 0; attempt < validateMaxRetries; attempt++ {
		result = v.validateSingle(ctx, link)
		if !isRetryableResult(result) {
			return result
		}
		if attempt < validateMaxRetries-1 {
			backoff := time.Duration(1<<uint(attempt)) * time.Second
			validateSleepFunc(backoff)
		}
	}
	return result
}

// isRetryableResult returns true for results that indicate transient failures
func isRetryableResult(result model.LinkResult) bool {
	if result.StatusCode >= 500 && result.StatusCode < 600 {
		return true
	}
	if result.StatusCode == 429 {
		return true
	}
	if result.Error != "" {
		if isRetryableNetworkError(result.Error) {
			return true
		}
	}
	return false
}

// isRetryableNetworkError checks error strings for transient network failures
func isRetryableNetworkError(errMsg string) bool {
	s := strings.ToLower(errMsg)
	return strings.Contains(s, "timeout") ||
		strings.Contains(s, "connection refused") ||
		strings.Contains(s, "connection reset")
}

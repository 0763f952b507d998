package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/ppiankov/artexplorer/internal/model"
)

// Checker audits a single catalogue entry ("artist/painting")
type Checker interface {
	CheckPainting(ctx context.Context, key string) (*model.Report, error)
}

// CheckJob represents one painting check
type CheckJob struct {
	Key     string
	Checker Checker
}

// Execute executes the check job
func (j *CheckJob) Execute(ctx context.Context) Result {
	report, err := j.Checker.CheckPainting(ctx, j.Key)
	if err != nil {
		return &CheckResult{Key: j.Key, Error: err}
	}
	return &CheckResult{Key: j.Key, Report: report}
}

// CheckResult represents the result of a check job
type CheckResult struct {
	Key    string
	Report *model.Report
	Error  error
}

// GetError returns the error from the check result
func (r *CheckResult) GetError() error {
	return r.Error
}

// BatchProcessor checks many paintings concurrently
type BatchProcessor struct {
	checker     Checker
	concurrency int
}

// NewBatchProcessor creates a new batch processor
func NewBatchProcessor(checker Checker, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		checker:     checker,
		concurrency: concurrency,
	}
}

// ProcessKeys checks every key and returns results in input order
func (b *BatchProcessor) ProcessKeys(ctx context.Context, keys []string) []*CheckResult {
	if len(keys) == 0 {
		return []*CheckResult{}
	}

	jobs := make([]Job, len(keys))
	for i, key := range keys {
		jobs[i] = &CheckJob{Key: key, Checker: b.checker}
	}

	results := NewPoolContext(ctx, b.concurrency).Run(jobs)

	position := make(map[string]int, len(keys))
	for i, key := range keys {
		position[key] = i
	}

	done := make(map[string]bool, len(results))
	checkResults := make([]*CheckResult, 0, len(keys))
	for _, result := range results {
		r := result.(*CheckResult)
		done[r.Key] = true
		checkResults = append(checkResults, r)
	}
	// Keys never picked up before cancellation
	for _, key := range keys {
		if !done[key] {
			checkResults = append(checkResults, &CheckResult{Key: key, Error: fmt.Errorf("not checked: %w", context.Cause(ctx))})
		}
	}
	sort.SliceStable(checkResults, func(i, j int) bool {
		return position[checkResults[i].Key] < position[checkResults[j].Key]
	})

	return checkResults
}

// ProcessFile reads keys from a file and checks them concurrently
func (b *BatchProcessor) ProcessFile(ctx context.Context, filePath string) ([]*CheckResult, error) {
	keys, err := ReadKeysFromFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read keys: %w", err)
	}

	return b.ProcessKeys(ctx, keys), nil
}

// ReadKeysFromFile reads "artist/painting" keys from a file (one per line).
// Blank lines, # comments and duplicates are skipped.
func ReadKeysFromFile(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var keys []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		line = strings.Trim(line, "/")
		if !seen[line] {
			seen[line] = true
			keys = append(keys, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return keys, nil
}

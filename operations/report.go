package operations

import (
	"sync"

	"github.com/shortcut-cli/sc/template"
)

// Status is the outcome of a single executed request.
type Status string

const (
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
)

// OperationResult is the result of one request. Repeat operations produce one result per entry.
type OperationResult struct {
	// Index is 0-based and counts repeat entries individually.
	Index  int             `json:"index"`
	Action template.Action `json:"action"`
	Entity template.Entity `json:"entity"`
	Alias  string          `json:"alias,omitempty"`
	Status Status          `json:"status"`
	Result any             `json:"result,omitempty"`
	Err    *ReportError    `json:"error,omitempty"`
}

// NewOperationResult creates a result, marking it failed when err is not nil.
func NewOperationResult(index int, op template.Operation, result any, err error) OperationResult {
	r := OperationResult{
		Index:  index,
		Action: op.Action,
		Entity: op.Entity,
		Alias:  op.Alias,
		Status: StatusSuccess,
		Result: result,
	}
	if err != nil {
		r.Status = StatusFailed
		r.Result = nil
		r.Err = &ReportError{Message: err.Error()}
	}

	return r
}

// ReportError represents an error in an OperationResult.
// Its purpose is to have an exported field `Message` for marshalling as the
// native error cant be marshaled to JSON.
type ReportError struct {
	Message string `json:"message"`
}

// Error implements the error interface.
func (o ReportError) Error() string {
	return o.Message
}

// Summary counts the requests of a run. Total is the planned count, so requests skipped after a
// fail-fast stop are neither succeeded nor failed.
type Summary struct {
	Total     int `json:"total"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
}

// ExecutionResult is everything a run produced.
type ExecutionResult struct {
	RunID   string            `json:"run_id"`
	DryRun  bool              `json:"dry_run"`
	Results []OperationResult `json:"results"`
	Summary Summary           `json:"summary"`
}

// Failed reports whether any request of the run failed.
func (r *ExecutionResult) Failed() bool {
	return r.Summary.Failed > 0
}

// Reporter collects operation results as they are produced.
type Reporter interface {
	AddResult(result OperationResult) error
	Results() []OperationResult
}

// MemoryReporter stores results in memory.
// This is thread-safe and can be used in a multi-threaded environment.
type MemoryReporter struct {
	results []OperationResult
	mu      sync.RWMutex
}

var _ Reporter = (*MemoryReporter)(nil)

// NewMemoryReporter creates an empty MemoryReporter.
func NewMemoryReporter() *MemoryReporter {
	return &MemoryReporter{}
}

// AddResult appends a result.
func (e *MemoryReporter) AddResult(result OperationResult) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.results = append(e.results, result)

	return nil
}

// Results returns a copy of every result in insertion order.
func (e *MemoryReporter) Results() []OperationResult {
	e.mu.RLock()
	defer e.mu.RUnlock()

	results := make([]OperationResult, len(e.results))
	copy(results, e.results)

	return results
}

// summarize counts the results against the planned total.
func summarize(total int, results []OperationResult) Summary {
	s := Summary{Total: total}
	for _, r := range results {
		switch r.Status {
		case StatusSuccess:
			s.Succeeded++
		case StatusFailed:
			s.Failed++
		}
	}

	return s
}

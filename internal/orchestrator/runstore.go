package orchestrator

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// State is the lifecycle state of a pipeline run.
type State string

const (
	// StateIdle indicates the run has been created but not started.
	StateIdle State = "idle"
	// StateExtracting indicates raw ledger data is being pulled.
	StateExtracting State = "extracting"
	// StateNormalizing indicates raw data is being normalized.
	StateNormalizing State = "normalizing"
	// StateServing indicates the dimensional tables are being built.
	StateServing State = "serving"
	// StateValidating indicates the served tables are being reconciled.
	StateValidating State = "validating"
	// StateCompleted indicates the run finished with every stage passing.
	StateCompleted State = "completed"
	// StateFailed indicates a stage exhausted its retries or timed out.
	StateFailed State = "failed"
)

// Failure records one activity that failed within a run.
type Failure struct {
	Stage    Stage  `json:"stage"`
	Activity string `json:"activity"`
	Message  string `json:"message"`
}

// Run is the tracked state of one pipeline execution.
type Run struct {
	ID          string     `json:"run_id"`
	State       State      `json:"state"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Failures    []Failure  `json:"failures,omitempty"`
}

// RunStore is an in-memory store of run state. It is safe for concurrent use.
// Data is lost on service restart.
type RunStore struct {
	mu   sync.RWMutex
	runs map[string]*Run
}

// NewRunStore creates an empty run store.
func NewRunStore() *RunStore {
	return &RunStore{runs: make(map[string]*Run)}
}

// SaveRun saves or updates a run's state.
func (s *RunStore) SaveRun(_ context.Context, run *Run) error {
	if run.ID == "" {
		return fmt.Errorf("run ID is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// store a copy so callers cannot mutate saved state
	saved := *run
	saved.Failures = append([]Failure(nil), run.Failures...)
	s.runs[run.ID] = &saved
	return nil
}

// GetRun retrieves a run by ID.
func (s *RunStore) GetRun(_ context.Context, runID string) (*Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run, ok := s.runs[runID]
	if !ok {
		return nil, fmt.Errorf("run not found: %s", runID)
	}

	out := *run
	out.Failures = append([]Failure(nil), run.Failures...)
	return &out, nil
}

// ListRuns retrieves runs ordered by start time, newest first. A limit of
// zero returns every run.
func (s *RunStore) ListRuns(_ context.Context, limit int) ([]*Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*Run, 0, len(s.runs))
	for _, run := range s.runs {
		out := *run
		out.Failures = append([]Failure(nil), run.Failures...)
		result = append(result, &out)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].StartedAt.After(result[j].StartedAt)
	})

	if limit > 0 && limit < len(result) {
		result = result[:limit]
	}
	return result, nil
}

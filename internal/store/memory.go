package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/nvandessel/womsim/internal/diffusion"
)

// MemoryRunStore implements RunStore in memory for tests and for CLI
// invocations that never touch disk.
type MemoryRunStore struct {
	mu   sync.RWMutex
	runs map[string]RunRecord
}

// NewMemoryRunStore creates an empty in-memory store.
func NewMemoryRunStore() *MemoryRunStore {
	return &MemoryRunStore{runs: make(map[string]RunRecord)}
}

// SaveRun stores a copy of the record.
func (s *MemoryRunStore) SaveRun(ctx context.Context, rec *RunRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prepareRun(rec)
	s.runs[rec.ID] = cloneRun(*rec)
	return nil
}

// GetRun retrieves a run with its full series. Returns nil if not found.
func (s *MemoryRunStore) GetRun(ctx context.Context, id string) (*RunRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.runs[id]
	if !ok {
		return nil, nil
	}
	out := cloneRun(rec)
	return &out, nil
}

// ListRuns returns run summaries, newest first, without series.
func (s *MemoryRunStore) ListRuns(ctx context.Context) ([]RunRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	runs := make([]RunRecord, 0, len(s.runs))
	for _, rec := range s.runs {
		summary := cloneRun(rec)
		summary.Series = nil
		summary.ConfigYAML = ""
		runs = append(runs, summary)
	}
	sort.Slice(runs, func(i, j int) bool {
		if !runs[i].CreatedAt.Equal(runs[j].CreatedAt) {
			return runs[i].CreatedAt.After(runs[j].CreatedAt)
		}
		return runs[i].ID > runs[j].ID
	})
	return runs, nil
}

// DeleteRun removes a run.
func (s *MemoryRunStore) DeleteRun(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.runs[id]; !ok {
		return fmt.Errorf("run not found: %s", id)
	}
	delete(s.runs, id)
	return nil
}

// Close is a no-op for in-memory storage.
func (s *MemoryRunStore) Close() error {
	return nil
}

func cloneRun(rec RunRecord) RunRecord {
	if len(rec.Series) > 0 {
		rec.Series = append([]diffusion.TickPoint(nil), rec.Series...)
	}
	return rec
}

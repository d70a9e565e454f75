package history

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/kilianp07/chargecast/core/model"
)

// MemoryStore stores runs in memory for testing or lightweight usage.
type MemoryStore struct {
	mu   sync.Mutex
	runs map[string]*model.Forecast
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{runs: map[string]*model.Forecast{}}
}

// Save stores a copy of f.
func (s *MemoryStore) Save(_ context.Context, f *model.Forecast) error {
	if f == nil || f.RunID == "" {
		return errors.New("forecast without run id")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.runs[f.RunID]; ok {
		return ErrDuplicate
	}
	s.runs[f.RunID] = clone(f)
	return nil
}

// List returns run headers, most recent first.
func (s *MemoryStore) List(_ context.Context, limit int) ([]Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	res := make([]Run, 0, len(s.runs))
	for _, f := range s.runs {
		res = append(res, RunOf(f))
	}
	sort.Slice(res, func(i, j int) bool { return res[i].CreatedAt.After(res[j].CreatedAt) })
	if limit > 0 && len(res) > limit {
		res = res[:limit]
	}
	return res, nil
}

// Get returns a copy of the run.
func (s *MemoryStore) Get(_ context.Context, id string) (*model.Forecast, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.runs[id]
	if !ok {
		return nil, ErrNotFound
	}
	return clone(f), nil
}

func (s *MemoryStore) Close() error { return nil }

func clone(f *model.Forecast) *model.Forecast {
	c := *f
	c.Points = append([]model.Point(nil), f.Points...)
	c.Summary.AR = append([]float64(nil), f.Summary.AR...)
	c.Summary.MA = append([]float64(nil), f.Summary.MA...)
	return &c
}

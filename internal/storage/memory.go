package storage

import (
	"context"
	"errors"
	"sort"
	"sync"

	"cgpkit/internal/model"
)

var ErrNotInitialized = errors.New("store is not initialized")

type MemoryStore struct {
	mu          sync.RWMutex
	initialized bool
	experiments map[string]model.ExperimentRecord
	order       map[string]int
	next        int
	runs        map[string]map[int]model.RunRecord
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Init(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.initialized = true
	s.experiments = make(map[string]model.ExperimentRecord)
	s.order = make(map[string]int)
	s.next = 0
	s.runs = make(map[string]map[int]model.RunRecord)
	return nil
}

func (s *MemoryStore) SaveExperiment(_ context.Context, experiment model.ExperimentRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return ErrNotInitialized
	}
	experiment.Functions = append([]string(nil), experiment.Functions...)
	if _, ok := s.order[experiment.ID]; !ok {
		s.order[experiment.ID] = s.next
		s.next++
	}
	s.experiments[experiment.ID] = experiment
	return nil
}

func (s *MemoryStore) GetExperiment(_ context.Context, id string) (model.ExperimentRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.initialized {
		return model.ExperimentRecord{}, false, ErrNotInitialized
	}
	experiment, ok := s.experiments[id]
	if !ok {
		return model.ExperimentRecord{}, false, nil
	}
	experiment.Functions = append([]string(nil), experiment.Functions...)
	return experiment, true, nil
}

func (s *MemoryStore) ListExperiments(_ context.Context) ([]model.ExperimentRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.initialized {
		return nil, ErrNotInitialized
	}
	list := make([]model.ExperimentRecord, 0, len(s.experiments))
	for _, experiment := range s.experiments {
		experiment.Functions = append([]string(nil), experiment.Functions...)
		list = append(list, experiment)
	}
	sortNewestFirst(list, func(e model.ExperimentRecord) int { return s.order[e.ID] })
	return list, nil
}

func (s *MemoryStore) DeleteExperiment(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return ErrNotInitialized
	}
	delete(s.experiments, id)
	delete(s.order, id)
	delete(s.runs, id)
	return nil
}

func (s *MemoryStore) SaveRun(_ context.Context, run model.RunRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return ErrNotInitialized
	}
	runs, ok := s.runs[run.ExperimentID]
	if !ok {
		runs = make(map[int]model.RunRecord)
		s.runs[run.ExperimentID] = runs
	}
	runs[run.Run] = run
	return nil
}

func (s *MemoryStore) GetRuns(_ context.Context, experimentID string) ([]model.RunRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.initialized {
		return nil, false, ErrNotInitialized
	}
	runs, ok := s.runs[experimentID]
	if !ok {
		return nil, false, nil
	}
	list := make([]model.RunRecord, 0, len(runs))
	for _, run := range runs {
		list = append(list, run)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Run < list[j].Run })
	return list, true, nil
}

// sortNewestFirst orders by creation timestamp descending; ties go to the
// later saved record.
func sortNewestFirst(list []model.ExperimentRecord, seq func(model.ExperimentRecord) int) {
	sort.Slice(list, func(i, j int) bool {
		if list[i].CreatedAtUTC == list[j].CreatedAtUTC {
			return seq(list[i]) > seq(list[j])
		}
		return list[i].CreatedAtUTC > list[j].CreatedAtUTC
	})
}

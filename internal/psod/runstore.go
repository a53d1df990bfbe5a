package psod

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/GoSim-25-26J-441/swarm-core/internal/metrics"
	"github.com/GoSim-25-26J-441/swarm-core/pkg/config"
	"github.com/GoSim-25-26J-441/swarm-core/pkg/models"
	"github.com/GoSim-25-26J-441/swarm-core/pkg/utils"
)

// RunSpec is the validated input of a run.
type RunSpec struct {
	Swarm          config.SwarmConfig
	CallbackURL    string
	CallbackSecret string
}

type RunRecord struct {
	Run       *models.Run
	Spec      RunSpec
	Collector *metrics.Collector
}

// RunStore keeps every run in memory. Get and List return copies, so
// callers can read them without holding the store lock.
type RunStore struct {
	mu   sync.RWMutex
	runs map[string]*RunRecord
}

func NewRunStore() *RunStore {
	return &RunStore{
		runs: make(map[string]*RunRecord),
	}
}

func (s *RunStore) Create(runID string, spec RunSpec) (*RunRecord, error) {
	if strings.ContainsAny(runID, "/:") {
		return nil, fmt.Errorf("%w: run_id cannot contain '/' or ':'", ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if runID == "" {
		runID = utils.GenerateRunID()
	}
	if _, exists := s.runs[runID]; exists {
		return nil, fmt.Errorf("%w: %s", ErrRunExists, runID)
	}

	rec := &RunRecord{
		Run: &models.Run{
			ID:               runID,
			Status:           models.RunStatusPending,
			Objective:        spec.Swarm.Objective,
			Seed:             spec.Swarm.Seed,
			TotalGenerations: spec.Swarm.Generations,
			CreatedAt:        time.Now().UTC(),
		},
		Spec: spec,
	}
	s.runs[runID] = rec
	return rec.clone(), nil
}

func (s *RunStore) Get(runID string) (*RunRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.runs[runID]
	if !ok {
		return nil, false
	}
	return rec.clone(), true
}

// List returns up to limit runs, newest first, skipping offset runs. An
// empty status matches every run.
func (s *RunStore) List(limit, offset int, status models.RunStatus) []*RunRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 50
	}
	matched := make([]*RunRecord, 0, len(s.runs))
	for _, rec := range s.runs {
		if status != "" && rec.Run.Status != status {
			continue
		}
		matched = append(matched, rec)
	}
	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i].Run, matched[j].Run
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID < b.ID
	})

	if offset >= len(matched) {
		return []*RunRecord{}
	}
	matched = matched[offset:]
	if len(matched) > limit {
		matched = matched[:limit]
	}
	out := make([]*RunRecord, len(matched))
	for i, rec := range matched {
		out[i] = rec.clone()
	}
	return out
}

// SetStatus moves a run to status. Terminal runs never change status again.
func (s *RunStore) SetStatus(runID string, status models.RunStatus, errMsg string) (*RunRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.runs[runID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	if rec.Run.Status.IsTerminal() {
		return nil, fmt.Errorf("%w: %s is %s", ErrRunTerminal, runID, rec.Run.Status)
	}

	rec.Run.Status = status
	if errMsg != "" {
		rec.Run.Error = errMsg
	}

	now := time.Now().UTC()
	switch status {
	case models.RunStatusRunning:
		if rec.Run.StartTime.IsZero() {
			rec.Run.StartTime = now
		}
	case models.RunStatusCompleted, models.RunStatusFailed, models.RunStatusCancelled:
		rec.Run.EndTime = now
		if !rec.Run.StartTime.IsZero() {
			rec.Run.Duration = now.Sub(rec.Run.StartTime)
		}
	}

	return rec.clone(), nil
}

// SetSeed records the effective seed once it is known.
func (s *RunStore) SetSeed(runID string, seed int64) error {
	return s.update(runID, func(rec *RunRecord) { rec.Run.Seed = seed })
}

func (s *RunStore) SetProgress(runID string, p *models.Progress) error {
	return s.update(runID, func(rec *RunRecord) { rec.Run.Progress = p })
}

func (s *RunStore) SetResult(runID string, result *models.RunResult) error {
	return s.update(runID, func(rec *RunRecord) { rec.Run.Result = result })
}

func (s *RunStore) SetCollector(runID string, c *metrics.Collector) error {
	return s.update(runID, func(rec *RunRecord) { rec.Collector = c })
}

func (s *RunStore) update(runID string, fn func(rec *RunRecord)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.runs[runID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	fn(rec)
	return nil
}

// clone copies the record and its Run. Progress and Result are replaced,
// never mutated, so they are shared.
func (r *RunRecord) clone() *RunRecord {
	c := *r
	run := *r.Run
	c.Run = &run
	return &c
}

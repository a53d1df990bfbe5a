package psod

import (
	"context"
	"fmt"
	"sync"

	"github.com/GoSim-25-26J-441/swarm-core/internal/engine"
	"github.com/GoSim-25-26J-441/swarm-core/internal/metrics"
	"github.com/GoSim-25-26J-441/swarm-core/internal/objective"
	"github.com/GoSim-25-26J-441/swarm-core/internal/refine"
	"github.com/GoSim-25-26J-441/swarm-core/pkg/logger"
	"github.com/GoSim-25-26J-441/swarm-core/pkg/models"
	"github.com/GoSim-25-26J-441/swarm-core/pkg/utils"
)

// RunExecutor manages asynchronous run execution and per-run cancellation.
// Each run owns its engine, swarm and random source.
type RunExecutor struct {
	store    *RunStore
	notifier *Notifier
	maxRuns  int
	limits   RunLimits

	submitMu sync.Mutex
	mu       sync.Mutex
	cancels  map[string]context.CancelFunc
	wg       sync.WaitGroup
}

func NewRunExecutor(store *RunStore) *RunExecutor {
	return &RunExecutor{
		store:   store,
		limits:  DefaultRunLimits(),
		cancels: make(map[string]context.CancelFunc),
	}
}

// SetNotifier enables completion callbacks.
func (e *RunExecutor) SetNotifier(n *Notifier) {
	e.notifier = n
}

// SetMaxRuns bounds the number of concurrently executing runs; 0 means
// unlimited.
func (e *RunExecutor) SetMaxRuns(n int) {
	e.maxRuns = n
}

// SetLimits replaces the per-run size limits applied by Submit.
func (e *RunExecutor) SetLimits(l RunLimits) {
	e.limits = l
}

// Active returns the number of executing runs.
func (e *RunExecutor) Active() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.cancels)
}

// Submit validates input, stores a new run and starts it.
func (e *RunExecutor) Submit(runID string, input *RunInput) (*RunRecord, error) {
	spec, err := input.Spec(e.limits)
	if err != nil {
		return nil, err
	}

	e.submitMu.Lock()
	defer e.submitMu.Unlock()

	if e.maxRuns > 0 && e.Active() >= e.maxRuns {
		return nil, fmt.Errorf("%w: limit is %d", ErrTooManyRuns, e.maxRuns)
	}

	rec, err := e.store.Create(runID, spec)
	if err != nil {
		return nil, err
	}
	logger.Info("run created", "run_id", rec.Run.ID, "objective", spec.Swarm.Objective)
	return e.Start(rec.Run.ID)
}

// Start begins executing a pending run asynchronously.
// Returns the updated run state (running) or an error.
func (e *RunExecutor) Start(runID string) (*RunRecord, error) {
	if runID == "" {
		return nil, ErrRunIDMissing
	}

	rec, ok := e.store.Get(runID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}

	switch {
	case rec.Run.Status == models.RunStatusRunning:
		return rec, nil
	case rec.Run.Status.IsTerminal():
		return nil, fmt.Errorf("%w: %s", ErrRunTerminal, runID)
	}

	updated, err := e.store.SetStatus(runID, models.RunStatusRunning, "")
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	e.mu.Lock()
	if old, exists := e.cancels[runID]; exists {
		old()
	}
	e.cancels[runID] = cancel
	e.mu.Unlock()

	e.wg.Add(1)
	go e.runOptimization(ctx, runID)
	return updated, nil
}

// Stop requests cancellation for a run and marks it cancelled. The engine
// notices between generations.
func (e *RunExecutor) Stop(runID string) (*RunRecord, error) {
	if runID == "" {
		return nil, ErrRunIDMissing
	}

	updated, err := e.store.SetStatus(runID, models.RunStatusCancelled, "")
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	cancel, ok := e.cancels[runID]
	e.mu.Unlock()
	if ok {
		cancel()
	}
	return updated, nil
}

// StopAll cancels every executing run and waits for them to exit.
func (e *RunExecutor) StopAll() {
	e.mu.Lock()
	ids := make([]string, 0, len(e.cancels))
	for id := range e.cancels {
		ids = append(ids, id)
	}
	e.mu.Unlock()

	for _, id := range ids {
		if _, err := e.Stop(id); err != nil {
			logger.Debug("stop during shutdown", "run_id", id, "error", err)
		}
	}
	e.Wait()
}

// Wait blocks until every started run has exited.
func (e *RunExecutor) Wait() {
	e.wg.Wait()
}

func (e *RunExecutor) cleanup(runID string) {
	e.mu.Lock()
	if cancel, ok := e.cancels[runID]; ok {
		cancel()
		delete(e.cancels, runID)
	}
	e.mu.Unlock()
}

func (e *RunExecutor) runOptimization(ctx context.Context, runID string) {
	defer e.wg.Done()
	defer e.cleanup(runID)

	rec, ok := e.store.Get(runID)
	if !ok {
		logger.Error("run not found", "run_id", runID)
		return
	}
	defer e.notify(runID)
	log := logger.Component("executor").With("run_id", runID)
	spec := rec.Spec.Swarm

	obj, err := objective.New(spec.Objective)
	if err != nil {
		e.fail(runID, fmt.Sprintf("invalid objective: %v", err))
		return
	}

	rng := utils.NewRandSource(spec.Seed)
	if err := e.store.SetSeed(runID, rng.Seed()); err != nil {
		log.Error("failed to record seed", "error", err)
	}

	eng, err := engine.New(spec.Params(), obj, rng)
	if err != nil {
		e.fail(runID, err.Error())
		return
	}
	eng.SetLogger(logger.Component("engine").With("run_id", runID))

	collector := metrics.NewCollector()
	collector.Start()
	if err := e.store.SetCollector(runID, collector); err != nil {
		log.Error("failed to store collector", "error", err)
	}
	progress := engine.ObserverFunc(func(snap engine.Snapshot) {
		p := &models.Progress{
			Generation:      snap.Generation,
			GlobalBestValue: snap.GlobalBestValue,
			GlobalBest:      snap.GlobalBest,
		}
		if err := e.store.SetProgress(runID, p); err != nil {
			log.Error("failed to set progress", "error", err)
		}
	})

	metrics.RunStarted()
	status := models.RunStatusFailed
	defer func() {
		metrics.RunFinished(obj.Name(), status, collector.Duration())
	}()

	log.Info("starting optimization", "objective", obj.Name(), "seed", rng.Seed())
	res, err := eng.Run(ctx, engine.Observers{collector, progress, metrics.PrometheusObserver(obj.Name())})
	collector.Stop()
	if err != nil {
		if ctx.Err() != nil {
			status = models.RunStatusCancelled
			log.Info("optimization cancelled", "generation", eng.Generation())
			return
		}
		log.Error("optimization failed", "error", err)
		e.fail(runID, err.Error())
		return
	}

	result := &models.RunResult{
		Best:        res.Best,
		BestValue:   res.BestValue,
		Generations: res.Generations,
		Evaluations: res.Evaluations,
		Seed:        res.Seed,
	}
	if spec.Refine {
		refined, err := refine.Refine(obj, res.Best, res.BestValue, refine.Options{})
		if err != nil {
			log.Warn("refinement failed", "error", err)
		} else {
			result.Refined = refined
		}
	}
	if err := e.store.SetResult(runID, result); err != nil {
		log.Error("failed to set result", "error", err)
	}

	if _, err := e.store.SetStatus(runID, models.RunStatusCompleted, ""); err != nil {
		// Stopped after the last generation.
		status = models.RunStatusCancelled
		log.Info("run finished after stop request", "error", err)
		return
	}
	status = models.RunStatusCompleted
	log.Info("run completed",
		"best_value", result.BestValue,
		"generations", result.Generations,
		"evaluations", result.Evaluations)
}

func (e *RunExecutor) fail(runID, msg string) {
	if _, err := e.store.SetStatus(runID, models.RunStatusFailed, msg); err != nil {
		logger.Error("failed to set failed status", "run_id", runID, "error", err)
	}
}

func (e *RunExecutor) notify(runID string) {
	if e.notifier == nil {
		return
	}
	rec, ok := e.store.Get(runID)
	if !ok || rec.Spec.CallbackURL == "" {
		return
	}
	e.notifier.Notify(rec.Spec.CallbackURL, rec.Spec.CallbackSecret, rec)
}

package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/user/catalog-image-sync/internal/entity"
)

var ErrSyncInProgress = errors.New("a sync run is already in progress")

// RunState describes the runner for status endpoints.
type RunState struct {
	Running    bool
	StartedAt  *time.Time
	LastReport *entity.SyncReport
	LastError  string
}

// SyncRunner starts sync runs in the background, one at a time, and keeps
// the outcome of the last one.
type SyncRunner struct {
	syncer ImageSyncer
	logger *zap.Logger

	mu        sync.Mutex
	running   bool
	startedAt time.Time
	latest    *entity.SyncReport
	lastErr   error
	wg        sync.WaitGroup
}

func NewSyncRunner(syncer ImageSyncer, logger *zap.Logger) *SyncRunner {
	return &SyncRunner{syncer: syncer, logger: logger}
}

// Start launches a run bound to ctx. It returns ErrSyncInProgress when a run
// has not finished yet.
func (r *SyncRunner) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.running {
		return ErrSyncInProgress
	}
	r.running = true
	r.startedAt = time.Now()

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		report, err := r.syncer.Sync(ctx)

		r.mu.Lock()
		defer r.mu.Unlock()
		r.running = false
		r.lastErr = err
		if err != nil {
			r.logger.Error("Background sync failed", zap.Error(err))
			return
		}
		r.latest = report
	}()
	return nil
}

// State returns a snapshot of the runner.
func (r *SyncRunner) State() RunState {
	r.mu.Lock()
	defer r.mu.Unlock()
	state := RunState{Running: r.running, LastReport: r.latest}
	if r.running {
		started := r.startedAt
		state.StartedAt = &started
	}
	if r.lastErr != nil {
		state.LastError = r.lastErr.Error()
	}
	return state
}

// Wait blocks until the current run, if any, has finished.
func (r *SyncRunner) Wait() {
	r.wg.Wait()
}

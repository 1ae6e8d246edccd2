package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"inbox_sync/internal/domain"
)

var ErrRunInProgress = errors.New("sync already running for workspace")

// Runner admits at most one active run per workspace. A start command for a workspace
// that is already syncing is rejected rather than queued.
type Runner struct {
	syncer     *SyncService
	bufferSize int

	mu     sync.Mutex
	active map[string]string
}

func NewRunner(syncService *SyncService, bufferSize int) *Runner {
	if bufferSize < 1 {
		bufferSize = 1
	}
	return &Runner{
		syncer:     syncService,
		bufferSize: bufferSize,
		active:     make(map[string]string),
	}
}

// Start launches a run in its own goroutine and returns its event stream, which is
// closed after the terminal event.
func (r *Runner) Start(ctx context.Context, cmd domain.StartCommand) <-chan domain.Event {
	events := make(chan domain.Event, r.bufferSize)
	cmd = withRunID(cmd)

	if err := r.acquire(cmd); err != nil {
		events <- domain.Failure(err.Error())
		close(events)
		return events
	}

	emit := func(e domain.Event) {
		select {
		case events <- e:
			return
		default:
		}
		select {
		case events <- e:
		case <-ctx.Done():
		}
	}

	go func() {
		defer close(events)
		defer r.release(cmd)
		_, _ = r.syncer.Sync(ctx, cmd, emit)
	}()

	return events
}

// Run executes a run synchronously under the same admission rule as Start.
func (r *Runner) Run(ctx context.Context, cmd domain.StartCommand, emit EmitFunc) (*domain.SyncStats, error) {
	cmd = withRunID(cmd)

	if err := r.acquire(cmd); err != nil {
		if emit != nil {
			emit(domain.Failure(err.Error()))
		}
		return nil, err
	}
	defer r.release(cmd)

	return r.syncer.Sync(ctx, cmd, emit)
}

func (r *Runner) acquire(cmd domain.StartCommand) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if runID, busy := r.active[cmd.WorkspaceID]; busy {
		return fmt.Errorf("%w %s (run %s)", ErrRunInProgress, cmd.WorkspaceID, runID)
	}
	r.active[cmd.WorkspaceID] = cmd.RunID
	return nil
}

func (r *Runner) release(cmd domain.StartCommand) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.active[cmd.WorkspaceID] == cmd.RunID {
		delete(r.active, cmd.WorkspaceID)
	}
}

func withRunID(cmd domain.StartCommand) domain.StartCommand {
	if cmd.RunID == "" {
		cmd.RunID = uuid.NewString()
	}
	return cmd
}

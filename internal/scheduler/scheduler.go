package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"inbox_sync/internal/config"
	"inbox_sync/internal/domain"
	"inbox_sync/internal/service"
)

// Syncer runs one sync to completion.
type Syncer interface {
	Run(ctx context.Context, cmd domain.StartCommand, emit service.EmitFunc) (*domain.SyncStats, error)
}

// Scheduler runs every configured job once at start and then on each tick.
type Scheduler struct {
	syncer     Syncer
	jobs       []config.JobConfig
	interval   time.Duration
	runTimeout time.Duration
	logger     *slog.Logger
	now        func() time.Time
}

func NewScheduler(syncer Syncer, cfg config.SyncConfig, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		syncer:     syncer,
		jobs:       cfg.Jobs,
		interval:   cfg.Interval,
		runTimeout: cfg.RunTimeout,
		logger:     logger,
		now:        time.Now,
	}
}

func (s *Scheduler) Start(ctx context.Context) error {
	if s.interval <= 0 {
		return fmt.Errorf("scheduler interval must be positive, got %s", s.interval)
	}

	s.logger.Info("scheduler started", "interval", s.interval, "jobs", len(s.jobs))

	s.runJobs(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler stopped")
			return ctx.Err()
		case <-ticker.C:
			s.runJobs(ctx)
		}
	}
}

func (s *Scheduler) runJobs(ctx context.Context) {
	for _, job := range s.jobs {
		if ctx.Err() != nil {
			return
		}
		s.runJob(ctx, job)
	}
}

func (s *Scheduler) runJob(ctx context.Context, job config.JobConfig) {
	syncCtx := ctx
	if s.runTimeout > 0 {
		var cancel context.CancelFunc
		syncCtx, cancel = context.WithTimeout(ctx, s.runTimeout)
		defer cancel()
	}

	logger := s.logger.With("workspace_id", job.WorkspaceID, "inbox_id", job.ExternalInboxID)

	stats, err := s.syncer.Run(syncCtx, s.command(job), func(e domain.Event) {
		if e.Kind == domain.EventProgress {
			logger.Debug("sync progress", "text", e.Text)
		}
	})
	if err != nil {
		logger.Error("sync failed", "error", err)
		return
	}

	logger.Info("scheduled sync finished",
		"pages", stats.Pages,
		"scraped", stats.Scraped,
		"new_messages", stats.NewMessages,
		"inserted_conversations", stats.Result.InsertedConversations,
	)
}

func (s *Scheduler) command(job config.JobConfig) domain.StartCommand {
	cmd := domain.StartCommand{
		Command:         "start",
		WorkspaceID:     job.WorkspaceID,
		ExternalInboxID: job.ExternalInboxID,
		Credentials: domain.Credentials{
			SessionCookie: job.SessionCookie,
			IngestToken:   job.IngestToken,
		},
	}
	if job.CutoffDays > 0 {
		cmd.CutoffDate = domain.FormatISODate(s.now().AddDate(0, 0, -job.CutoffDays))
	}
	return cmd
}

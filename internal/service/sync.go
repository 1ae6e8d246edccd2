package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"inbox_sync/internal/config"
	"inbox_sync/internal/domain"
)

type RunState string

const (
	StateIdle           RunState = "idle"
	StateLoadingCursors RunState = "loading_cursors"
	StatePaginating     RunState = "paginating"
	StateUploading      RunState = "uploading"
	StateDone           RunState = "done"
	StateError          RunState = "error"
)

// EmitFunc receives a run's events in order. The last event of a run is always terminal.
type EmitFunc func(domain.Event)

type SyncService struct {
	sessions SessionFactory
	logger   *slog.Logger
	config   config.SyncConfig
	retry    config.RetryConfig
	sleep    sleepFunc
}

func NewSyncService(
	sessions SessionFactory,
	logger *slog.Logger,
	cfg config.SyncConfig,
	retry config.RetryConfig,
) *SyncService {
	return &SyncService{
		sessions: sessions,
		logger:   logger,
		config:   cfg,
		retry:    retry,
		sleep:    sleepContext,
	}
}

// syncRun carries the state of one invocation of Sync.
type syncRun struct {
	cmd     domain.StartCommand
	cutoff  *time.Time
	source  Source
	cursors CursorMap
	batch   *domain.Batch
	stats   *domain.SyncStats
	state   RunState
	emit    EmitFunc
	logger  *slog.Logger
}

func (r *syncRun) progress(format string, args ...any) {
	r.emit(domain.Progress(fmt.Sprintf(format, args...)))
}

func (r *syncRun) enter(state RunState) {
	r.logger.Debug("sync state changed", "from", r.state, "to", state)
	r.state = state
}

// Sync executes one run for cmd, reporting progress through emit, and returns when the
// terminal event has been emitted. Nothing is uploaded unless pagination completed.
func (s *SyncService) Sync(ctx context.Context, cmd domain.StartCommand, emit EmitFunc) (*domain.SyncStats, error) {
	startTime := time.Now()
	if emit == nil {
		emit = func(domain.Event) {}
	}

	run := &syncRun{
		cmd:    cmd,
		batch:  &domain.Batch{WorkspaceID: cmd.WorkspaceID},
		stats:  &domain.SyncStats{WorkspaceID: cmd.WorkspaceID},
		state:  StateIdle,
		emit:   emit,
		logger: s.logger.With("workspace_id", cmd.WorkspaceID, "inbox_id", cmd.ExternalInboxID, "run_id", cmd.RunID),
	}

	fail := func(err error) (*domain.SyncStats, error) {
		run.enter(StateError)
		run.stats.Duration = time.Since(startTime)
		run.logger.Error("sync failed", "error", err)
		emit(domain.Failure(err.Error()))
		return run.stats, err
	}

	if err := cmd.Validate(); err != nil {
		return fail(err)
	}
	run.cutoff, _ = cmd.Cutoff()

	source, ingest, err := s.sessions.NewSession(cmd.Credentials)
	if err != nil {
		return fail(fmt.Errorf("open session: %w", err))
	}
	run.source = source

	run.logger.Info("starting sync",
		"source", source.ID(),
		"cutoff", cmd.CutoffDate,
		"max_pages", s.config.MaxPages,
	)

	run.enter(StateLoadingCursors)
	run.progress("Loading known messages...")
	cursors, err := NewCursorResolver(ingest).Load(ctx, cmd.WorkspaceID)
	if err != nil {
		if ctx.Err() != nil {
			return fail(ctx.Err())
		}
		run.logger.Warn("cursor query failed, collecting full history", "error", err)
		run.progress("Could not load known messages (%v); collecting full history.", err)
		cursors = CursorMap{}
	}
	run.cursors = cursors

	run.enter(StatePaginating)
	pager := NewPager(source, PagerConfig{
		PageDelay:      s.config.PageDelay,
		MaxPages:       s.config.MaxPages,
		MaxAttempts:    s.retry.MaxAttempts,
		InitialBackoff: s.retry.InitialBackoff,
		MaxBackoff:     s.retry.MaxBackoff,
	}, run.logger)
	pager.sleep = s.sleep

	result, err := pager.Walk(ctx, cmd.ExternalInboxID, run.cutoff, func(ctx context.Context, page Page) error {
		return s.visitPage(ctx, run, page)
	})
	run.stats.Pages = result.Pages
	if err != nil {
		return fail(err)
	}
	run.progress("Page %d: %s. Done scanning.", result.Pages, result.Reason)

	if len(run.batch.Conversations) == 0 {
		run.enter(StateDone)
		run.stats.Duration = time.Since(startTime)
		run.progress("All %d conversation(s) are up to date. Nothing to upload.", run.stats.Seen)
		run.logger.Info("sync completed, nothing to upload",
			"seen", run.stats.Seen,
			"skipped", run.stats.Skipped,
			"errors", run.stats.Errors,
		)
		emit(domain.Done(domain.IngestResult{}))
		return run.stats, nil
	}

	run.enter(StateUploading)
	run.progress("Uploading %d conversation(s) with %d new message(s)...",
		len(run.batch.Conversations), run.batch.MessageCount())

	res, err := ingest.Submit(ctx, run.batch)
	if err != nil {
		return fail(fmt.Errorf("upload batch: %w", err))
	}

	run.enter(StateDone)
	run.stats.Result = *res
	run.stats.Duration = time.Since(startTime)

	run.logger.Info("sync completed",
		"pages", run.stats.Pages,
		"seen", run.stats.Seen,
		"scraped", run.stats.Scraped,
		"skipped", run.stats.Skipped,
		"errors", run.stats.Errors,
		"new_messages", run.stats.NewMessages,
		"inserted_conversations", res.InsertedConversations,
		"inserted_messages", res.InsertedMessages,
		"duration", run.stats.Duration,
	)

	emit(domain.Done(*res))
	return run.stats, nil
}

func (s *SyncService) visitPage(ctx context.Context, run *syncRun, page Page) error {
	run.progress("Page %d: %d conversation(s), %d new.", page.Number, page.Total, len(page.Summaries))
	run.stats.Seen += len(page.Summaries)

	for i, summary := range page.Summaries {
		prefix := fmt.Sprintf("[p%d %d/%d]", page.Number, i+1, len(page.Summaries))
		known := run.cursors.Lookup(summary.ExternalID)

		switch ShouldSkip(summary, known, run.cutoff) {
		case SkipBeforeCutoff:
			run.stats.Skipped++
			run.progress("%s Skip: %s (%s < cutoff)", prefix, summary.Label(), summary.LatestActivityDate)
			continue
		case SkipUpToDate:
			run.stats.Skipped++
			run.progress("%s Skip: %s (up to date)", prefix, summary.Label())
			continue
		}

		run.progress("%s Scraping: %s...", prefix, summary.Label())

		messages, err := run.source.FetchConversation(ctx, summary, known)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			run.stats.Errors++
			run.logger.Warn("conversation fetch failed",
				"external_id", summary.ExternalID,
				"error", err,
			)
			run.progress("  Error for %s: %v", summary.ExternalID, err)
		} else {
			run.stats.Scraped++
			run.stats.NewMessages += len(messages)
			run.batch.Conversations = append(run.batch.Conversations, conversationUpdate(summary, messages))
			run.progress("  -> %d new message(s) found", len(messages))
		}

		if err := s.sleep(ctx, s.config.ConversationDelay); err != nil {
			return err
		}
	}

	return nil
}

// conversationUpdate builds the upload unit for a scraped conversation. The listing's
// cursor wins; without one the newest collected message stands in for it.
func conversationUpdate(summary domain.ConversationSummary, messages []domain.Message) domain.ConversationUpdate {
	if messages == nil {
		messages = []domain.Message{}
	}

	cursor := summary.CursorMessageID
	if cursor == "" && len(messages) > 0 {
		cursor = messages[len(messages)-1].ExternalMessageID
	}

	update := domain.ConversationUpdate{
		ExternalID:      summary.ExternalID,
		Name:            summary.Name,
		PhotoURL:        summary.PhotoURL,
		CursorMessageID: cursor,
		Messages:        messages,
	}
	if _, ok := summary.ActivityDate(); ok {
		update.LatestActivityDate = summary.LatestActivityDate
	}
	return update
}

package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"inbox_sync/internal/domain"
)

type StopReason int

const (
	StopEmpty StopReason = iota + 1
	StopRepeated
	StopCutoff
	StopMaxPages
)

func (r StopReason) String() string {
	switch r {
	case StopEmpty:
		return "empty page"
	case StopRepeated:
		return "no new conversations"
	case StopCutoff:
		return "older than cutoff"
	case StopMaxPages:
		return "page limit reached"
	default:
		return "unknown"
	}
}

type SkipReason int

const (
	SkipNone SkipReason = iota
	SkipBeforeCutoff
	SkipUpToDate
)

// ShouldSkip decides whether a listed conversation needs its detail page fetched.
func ShouldSkip(summary domain.ConversationSummary, knownCursor string, cutoff *time.Time) SkipReason {
	if cutoff != nil {
		if date, ok := summary.ActivityDate(); ok && date.Before(*cutoff) {
			return SkipBeforeCutoff
		}
	}
	if knownCursor != "" && summary.CursorMessageID == knownCursor {
		return SkipUpToDate
	}
	return SkipNone
}

// Page is one listing page as handed to a visitor. Summaries holds only
// conversations not seen on an earlier page of the same walk.
type Page struct {
	Number    int
	Total     int
	Summaries []domain.ConversationSummary
}

type WalkResult struct {
	Reason StopReason
	Pages  int
}

type VisitFunc func(ctx context.Context, page Page) error

type PagerConfig struct {
	PageDelay      time.Duration
	MaxPages       int
	MaxAttempts    int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
}

// Pager walks a paginated listing sequentially from page 1.
type Pager struct {
	source Source
	cfg    PagerConfig
	logger *slog.Logger
	sleep  sleepFunc
}

func NewPager(source Source, cfg PagerConfig, logger *slog.Logger) *Pager {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	return &Pager{
		source: source,
		cfg:    cfg,
		logger: logger,
		sleep:  sleepContext,
	}
}

// Walk fetches listing pages until a stop condition holds, calling visit for every page
// that contributed new conversations. Pages are assumed to be ordered newest first.
func (p *Pager) Walk(ctx context.Context, inboxID string, cutoff *time.Time, visit VisitFunc) (WalkResult, error) {
	seen := make(map[string]struct{})

	for page := 1; ; page++ {
		if p.cfg.MaxPages > 0 && page > p.cfg.MaxPages {
			return WalkResult{Reason: StopMaxPages, Pages: page - 1}, nil
		}

		summaries, err := p.fetchPage(ctx, inboxID, page)
		if err != nil {
			return WalkResult{Pages: page - 1}, fmt.Errorf("fetch listing page %d: %w", page, err)
		}

		if len(summaries) == 0 {
			return WalkResult{Reason: StopEmpty, Pages: page}, nil
		}

		fresh := make([]domain.ConversationSummary, 0, len(summaries))
		for _, s := range summaries {
			if _, ok := seen[s.ExternalID]; !ok {
				fresh = append(fresh, s)
			}
		}
		if len(fresh) == 0 {
			return WalkResult{Reason: StopRepeated, Pages: page}, nil
		}
		for _, s := range summaries {
			seen[s.ExternalID] = struct{}{}
		}

		if err := visit(ctx, Page{Number: page, Total: len(summaries), Summaries: fresh}); err != nil {
			return WalkResult{Pages: page}, err
		}

		if cutoff != nil && allBefore(fresh, *cutoff) {
			return WalkResult{Reason: StopCutoff, Pages: page}, nil
		}

		if err := p.sleep(ctx, p.cfg.PageDelay); err != nil {
			return WalkResult{Pages: page}, err
		}
	}
}

func (p *Pager) fetchPage(ctx context.Context, inboxID string, page int) ([]domain.ConversationSummary, error) {
	var summaries []domain.ConversationSummary
	var err error

	for attempt := 1; attempt <= p.cfg.MaxAttempts; attempt++ {
		summaries, err = p.source.FetchListing(ctx, inboxID, page)
		if err == nil {
			return summaries, nil
		}

		if attempt == p.cfg.MaxAttempts || ctx.Err() != nil {
			break
		}

		backoff := p.calculateBackoff(attempt)
		p.logger.Warn("listing request failed, retrying",
			"page", page,
			"attempt", attempt,
			"backoff", backoff,
			"error", err,
		)

		if err := p.sleep(ctx, backoff); err != nil {
			return nil, err
		}
	}

	return nil, fmt.Errorf("after %d attempts: %w", p.cfg.MaxAttempts, err)
}

func (p *Pager) calculateBackoff(attempt int) time.Duration {
	backoff := p.cfg.InitialBackoff
	for i := 1; i < attempt; i++ {
		backoff *= 2
	}
	if p.cfg.MaxBackoff > 0 && backoff > p.cfg.MaxBackoff {
		backoff = p.cfg.MaxBackoff
	}
	return backoff
}

// allBefore reports whether every summary has a known activity date strictly before cutoff.
func allBefore(summaries []domain.ConversationSummary, cutoff time.Time) bool {
	for _, s := range summaries {
		date, ok := s.ActivityDate()
		if !ok || !date.Before(cutoff) {
			return false
		}
	}
	return true
}

type sleepFunc func(ctx context.Context, d time.Duration) error

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

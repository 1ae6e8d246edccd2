package service_test

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"inbox_sync/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

// sleepRecorder replaces real delays and remembers what was requested.
type sleepRecorder struct {
	mu    sync.Mutex
	calls []time.Duration
	err   error
}

func (r *sleepRecorder) Sleep(ctx context.Context, d time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, d)
	if r.err != nil {
		return r.err
	}
	return ctx.Err()
}

func (r *sleepRecorder) Calls() []time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]time.Duration(nil), r.calls...)
}

type eventLog struct {
	events []domain.Event
}

func (l *eventLog) Emit(e domain.Event) {
	l.events = append(l.events, e)
}

func (l *eventLog) Last() domain.Event {
	if len(l.events) == 0 {
		return domain.Event{}
	}
	return l.events[len(l.events)-1]
}

func (l *eventLog) Terminals() int {
	n := 0
	for _, e := range l.events {
		if e.Terminal() {
			n++
		}
	}
	return n
}

func summary(id, cursor, date string) domain.ConversationSummary {
	return domain.ConversationSummary{
		ExternalID:         id,
		CursorMessageID:    cursor,
		Name:               "Applicant " + id,
		LatestActivityDate: date,
	}
}

func mustDate(s string) *time.Time {
	t, ok := domain.ParseISODate(s)
	if !ok {
		panic("bad date " + s)
	}
	return &t
}

package ingest

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

import (
	"context"

	"inbox_sync/internal/domain"
)

type ConversationStore interface {
	// Upsert creates or refreshes a conversation row and reports its id and whether it was created.
	Upsert(ctx context.Context, workspaceID string, conv *domain.ConversationUpdate) (int64, bool, error)
	Cursors(ctx context.Context, workspaceID string) (map[string]string, error)
}

type MessageStore interface {
	// InsertNew inserts messages not yet stored for the conversation and returns how many were inserted.
	InsertNew(ctx context.Context, conversationID int64, messages []domain.Message) (int64, error)
}

type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type Notifier interface {
	PublishIngested(ctx context.Context, notice *domain.IngestNotice) error
}

package service

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

import (
	"context"

	"inbox_sync/internal/domain"
)

type Source interface {
	ID() string
	FetchListing(ctx context.Context, inboxID string, page int) ([]domain.ConversationSummary, error)
	FetchConversation(ctx context.Context, summary domain.ConversationSummary, knownCursorID string) ([]domain.Message, error)
}

type IngestClient interface {
	LoadCursors(ctx context.Context, workspaceID string) (map[string]string, error)
	Submit(ctx context.Context, batch *domain.Batch) (*domain.IngestResult, error)
}

// SessionFactory builds the run-scoped collaborators for one start command's credentials.
type SessionFactory interface {
	NewSession(creds domain.Credentials) (Source, IngestClient, error)
}

package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"inbox_sync/internal/domain"
)

var ErrInvalidBatch = errors.New("invalid batch")

// Merger applies batches to the store. Each conversation is merged in its own transaction;
// a failing conversation is rolled back and skipped while the rest of the batch proceeds.
type Merger struct {
	conversations ConversationStore
	messages      MessageStore
	txManager     TransactionManager
	notifier      Notifier
	logger        *slog.Logger
}

func NewMerger(
	conversations ConversationStore,
	messages MessageStore,
	txManager TransactionManager,
	notifier Notifier,
	logger *slog.Logger,
) *Merger {
	return &Merger{
		conversations: conversations,
		messages:      messages,
		txManager:     txManager,
		notifier:      notifier,
		logger:        logger,
	}
}

func (m *Merger) Merge(ctx context.Context, batch *domain.Batch) (*domain.IngestResult, error) {
	if batch == nil || batch.WorkspaceID == "" {
		return nil, fmt.Errorf("%w: workspaceId is required", ErrInvalidBatch)
	}

	logger := m.logger.With("workspace_id", batch.WorkspaceID)
	result := &domain.IngestResult{}

	for i := range batch.Conversations {
		conv := &batch.Conversations[i]

		if err := validateConversation(conv); err != nil {
			result.FailedConversations++
			logger.Warn("skipping invalid conversation", "index", i, "external_id", conv.ExternalID, "error", err)
			continue
		}

		created, inserted, err := m.mergeConversation(ctx, batch.WorkspaceID, conv)
		if err != nil {
			if ctx.Err() != nil {
				return result, ctx.Err()
			}
			result.FailedConversations++
			logger.Error("conversation merge failed", "external_id", conv.ExternalID, "error", err)
			continue
		}

		result.InsertedConversations++
		result.InsertedMessages += int(inserted)
		if created {
			result.CreatedConversations++
		}

		m.notify(ctx, logger, &domain.IngestNotice{
			WorkspaceID:      batch.WorkspaceID,
			ExternalID:       conv.ExternalID,
			CursorMessageID:  conv.CursorMessageID,
			Created:          created,
			InsertedMessages: int(inserted),
			IngestedAt:       time.Now().UTC(),
		})
	}

	logger.Info("batch merged",
		"conversations", len(batch.Conversations),
		"inserted_conversations", result.InsertedConversations,
		"created_conversations", result.CreatedConversations,
		"inserted_messages", result.InsertedMessages,
		"failed_conversations", result.FailedConversations,
	)

	return result, nil
}

func (m *Merger) Cursors(ctx context.Context, workspaceID string) (map[string]string, error) {
	if workspaceID == "" {
		return nil, fmt.Errorf("%w: workspaceId is required", ErrInvalidBatch)
	}
	return m.conversations.Cursors(ctx, workspaceID)
}

func (m *Merger) mergeConversation(ctx context.Context, workspaceID string, conv *domain.ConversationUpdate) (bool, int64, error) {
	var created bool
	var inserted int64

	err := m.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		id, isNew, err := m.conversations.Upsert(txCtx, workspaceID, conv)
		if err != nil {
			return fmt.Errorf("upsert conversation: %w", err)
		}
		created = isNew

		if len(conv.Messages) == 0 {
			return nil
		}

		n, err := m.messages.InsertNew(txCtx, id, conv.Messages)
		if err != nil {
			return fmt.Errorf("insert messages: %w", err)
		}
		inserted = n
		return nil
	})
	if err != nil {
		return false, 0, err
	}

	return created, inserted, nil
}

func (m *Merger) notify(ctx context.Context, logger *slog.Logger, notice *domain.IngestNotice) {
	if m.notifier == nil {
		return
	}
	if err := m.notifier.PublishIngested(ctx, notice); err != nil {
		logger.Warn("failed to publish ingest notice", "external_id", notice.ExternalID, "error", err)
	}
}

func validateConversation(conv *domain.ConversationUpdate) error {
	if conv.ExternalID == "" {
		return errors.New("externalId is required")
	}
	for _, msg := range conv.Messages {
		if msg.ExternalMessageID == "" {
			return errors.New("externalMessageId is required")
		}
		if !msg.Direction.Valid() {
			return fmt.Errorf("invalid direction %q", msg.Direction)
		}
	}
	return nil
}

package postgres

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"inbox_sync/internal/domain"
)

type ConversationStore struct {
	db *sqlx.DB
}

func NewConversationStore(db *sqlx.DB) *ConversationStore {
	return &ConversationStore{db: db}
}

// Upsert inserts or refreshes the conversation keyed by (workspaceID, conv.ExternalID).
// An absent cursor or activity date never clears a stored one.
func (s *ConversationStore) Upsert(ctx context.Context, workspaceID string, conv *domain.ConversationUpdate) (int64, bool, error) {
	query := `
		INSERT INTO conversations (
			workspace_id, external_id, name, photo_url, cursor_message_id, latest_activity_date
		) VALUES (
			$1, $2, $3, $4, $5, $6
		)
		ON CONFLICT (workspace_id, external_id) DO UPDATE SET
			name = EXCLUDED.name,
			photo_url = EXCLUDED.photo_url,
			cursor_message_id = COALESCE(EXCLUDED.cursor_message_id, conversations.cursor_message_id),
			latest_activity_date = COALESCE(EXCLUDED.latest_activity_date, conversations.latest_activity_date),
			updated_at = NOW()
		RETURNING id, (xmax = 0) AS created`

	var row struct {
		ID      int64 `db:"id"`
		Created bool  `db:"created"`
	}
	err := sqlx.GetContext(ctx, GetExecutor(ctx, s.db), &row, query,
		workspaceID,
		conv.ExternalID,
		nullString(conv.Name),
		nullString(conv.PhotoURL),
		nullString(conv.CursorMessageID),
		nullDate(conv.LatestActivityDate),
	)
	if err != nil {
		return 0, false, err
	}

	return row.ID, row.Created, nil
}

// Cursors returns externalID -> cursorMessageID for every conversation of the workspace that has one.
func (s *ConversationStore) Cursors(ctx context.Context, workspaceID string) (map[string]string, error) {
	query := `
		SELECT external_id, cursor_message_id
		FROM conversations
		WHERE workspace_id = $1 AND cursor_message_id IS NOT NULL AND cursor_message_id <> ''`

	rows, err := GetExecutor(ctx, s.db).QueryContext(ctx, query, workspaceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[string]string)
	for rows.Next() {
		var externalID, cursor string
		if err := rows.Scan(&externalID, &cursor); err != nil {
			return nil, err
		}
		result[externalID] = cursor
	}

	return result, rows.Err()
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// nullDate maps an ISO date to a DATE parameter; unparseable values are stored as NULL.
func nullDate(s string) *time.Time {
	t, ok := domain.ParseISODate(s)
	if !ok {
		return nil
	}
	return &t
}

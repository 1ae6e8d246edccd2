package postgres

import (
	"context"
	"strconv"
	"strings"

	"github.com/jmoiron/sqlx"

	"inbox_sync/internal/domain"
)

// insertChunkSize keeps a single statement below the driver's parameter limit.
const insertChunkSize = 1000

type MessageStore struct {
	db *sqlx.DB
}

func NewMessageStore(db *sqlx.DB) *MessageStore {
	return &MessageStore{db: db}
}

// InsertNew inserts the messages of a conversation, leaving already stored ones untouched,
// and returns the number of rows actually inserted.
func (s *MessageStore) InsertNew(ctx context.Context, conversationID int64, messages []domain.Message) (int64, error) {
	messages = uniqueMessages(messages)
	if len(messages) == 0 {
		return 0, nil
	}

	exec := GetExecutor(ctx, s.db)
	var inserted int64

	for start := 0; start < len(messages); start += insertChunkSize {
		end := min(start+insertChunkSize, len(messages))
		query, args := buildMessageInsert(conversationID, messages[start:end])

		res, err := exec.ExecContext(ctx, query, args...)
		if err != nil {
			return inserted, err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return inserted, err
		}
		inserted += n
	}

	return inserted, nil
}

func buildMessageInsert(conversationID int64, messages []domain.Message) (string, []interface{}) {
	var sb strings.Builder
	sb.WriteString("INSERT INTO messages (conversation_id, external_message_id, direction, content, sent_at) VALUES ")
	args := make([]interface{}, 0, len(messages)*4+1)
	args = append(args, conversationID)

	for i, msg := range messages {
		if i > 0 {
			sb.WriteString(", ")
		}
		base := i*4 + 2
		sb.WriteString("($1, $")
		sb.WriteString(strconv.Itoa(base))
		sb.WriteString(", $")
		sb.WriteString(strconv.Itoa(base + 1))
		sb.WriteString(", $")
		sb.WriteString(strconv.Itoa(base + 2))
		sb.WriteString(", $")
		sb.WriteString(strconv.Itoa(base + 3))
		sb.WriteString(")")
		args = append(args, msg.ExternalMessageID, string(msg.Direction), msg.Content, nullDate(msg.SentAt))
	}
	sb.WriteString(" ON CONFLICT (conversation_id, external_message_id) DO NOTHING")

	return sb.String(), args
}

func uniqueMessages(messages []domain.Message) []domain.Message {
	seen := make(map[string]struct{}, len(messages))
	out := make([]domain.Message, 0, len(messages))
	for _, msg := range messages {
		if _, dup := seen[msg.ExternalMessageID]; dup {
			continue
		}
		seen[msg.ExternalMessageID] = struct{}{}
		out = append(out, msg)
	}
	return out
}

package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inbox_sync/internal/domain"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return sqlx.NewDb(db, "sqlmock"), mock
}

func TestConversationStore_Upsert(t *testing.T) {
	db, mock := newMockDB(t)
	store := NewConversationStore(db)

	t.Run("Created", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO conversations")).
			WithArgs("ws", "101", "Anna", nil, "9001", sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows([]string{"id", "created"}).AddRow(int64(7), true))

		id, created, err := store.Upsert(context.Background(), "ws", &domain.ConversationUpdate{
			ExternalID:         "101",
			Name:               "Anna",
			CursorMessageID:    "9001",
			LatestActivityDate: "2025-01-03",
		})

		require.NoError(t, err)
		assert.Equal(t, int64(7), id)
		assert.True(t, created)
	})

	t.Run("AbsentCursorIsNull", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta("COALESCE(EXCLUDED.cursor_message_id, conversations.cursor_message_id)")).
			WithArgs("ws", "101", "Anna", nil, nil, nil).
			WillReturnRows(sqlmock.NewRows([]string{"id", "created"}).AddRow(int64(7), false))

		id, created, err := store.Upsert(context.Background(), "ws", &domain.ConversationUpdate{
			ExternalID:         "101",
			Name:               "Anna",
			LatestActivityDate: "Gestern",
		})

		require.NoError(t, err)
		assert.Equal(t, int64(7), id)
		assert.False(t, created)
	})

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestConversationStore_Cursors(t *testing.T) {
	db, mock := newMockDB(t)
	store := NewConversationStore(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT external_id, cursor_message_id")).
		WithArgs("ws").
		WillReturnRows(sqlmock.NewRows([]string{"external_id", "cursor_message_id"}).
			AddRow("101", "9001").
			AddRow("102", "12"))

	cursors, err := store.Cursors(context.Background(), "ws")

	require.NoError(t, err)
	assert.Equal(t, map[string]string{"101": "9001", "102": "12"}, cursors)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMessageStore_InsertNew(t *testing.T) {
	db, mock := newMockDB(t)
	store := NewMessageStore(db)

	t.Run("CountsAffectedRows", func(t *testing.T) {
		mock.ExpectExec(regexp.QuoteMeta(
			"INSERT INTO messages (conversation_id, external_message_id, direction, content, sent_at) VALUES " +
				"($1, $2, $3, $4, $5), ($1, $6, $7, $8, $9) " +
				"ON CONFLICT (conversation_id, external_message_id) DO NOTHING")).
			WithArgs(int64(7), "43", "applicant", "Hallo", sqlmock.AnyArg(), "44", "operator", "Hi", nil).
			WillReturnResult(sqlmock.NewResult(0, 1))

		n, err := store.InsertNew(context.Background(), 7, []domain.Message{
			{ExternalMessageID: "43", Direction: domain.DirectionApplicant, Content: "Hallo", SentAt: "2025-01-03"},
			{ExternalMessageID: "44", Direction: domain.DirectionOperator, Content: "Hi"},
			{ExternalMessageID: "43", Direction: domain.DirectionApplicant, Content: "Hallo"},
		})

		require.NoError(t, err)
		assert.Equal(t, int64(1), n)
	})

	t.Run("EmptyIsNoop", func(t *testing.T) {
		n, err := store.InsertNew(context.Background(), 7, nil)
		require.NoError(t, err)
		assert.Zero(t, n)
	})

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionManager(t *testing.T) {
	db, mock := newMockDB(t)
	tm := NewTransactionManager(db)
	store := NewConversationStore(db)

	t.Run("CommitsAndJoins", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO conversations")).
			WillReturnRows(sqlmock.NewRows([]string{"id", "created"}).AddRow(int64(1), true))
		mock.ExpectCommit()

		err := tm.WithTransaction(context.Background(), func(ctx context.Context) error {
			assert.NotNil(t, GetTxFromContext(ctx))
			return tm.WithTransaction(ctx, func(ctx context.Context) error {
				_, _, err := store.Upsert(ctx, "ws", &domain.ConversationUpdate{ExternalID: "1"})
				return err
			})
		})
		require.NoError(t, err)
	})

	t.Run("RollsBackOnError", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectRollback()

		boom := errors.New("boom")
		err := tm.WithTransaction(context.Background(), func(context.Context) error { return boom })
		assert.ErrorIs(t, err, boom)
	})

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBuildMessageInsert_Placeholders(t *testing.T) {
	msgs := make([]domain.Message, 3)
	query, args := buildMessageInsert(1, msgs)

	assert.Contains(t, query, "($1, $10, $11, $12, $13)")
	assert.Len(t, args, 13)
}

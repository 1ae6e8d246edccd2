package domain

import "time"

type Direction string

const (
	DirectionApplicant Direction = "applicant"
	DirectionOperator  Direction = "operator"
)

func (d Direction) Valid() bool {
	return d == DirectionApplicant || d == DirectionOperator
}

// Conversation is a persisted thread, unique per (WorkspaceID, ExternalID).
type Conversation struct {
	ID                 int64      `db:"id"`
	WorkspaceID        string     `db:"workspace_id"`
	ExternalID         string     `db:"external_id"`
	Name               *string    `db:"name"`
	PhotoURL           *string    `db:"photo_url"`
	CursorMessageID    *string    `db:"cursor_message_id"`
	LatestActivityDate *time.Time `db:"latest_activity_date"`
	CreatedAt          time.Time  `db:"created_at"`
	UpdatedAt          time.Time  `db:"updated_at"`
}

// ConversationSummary is one entry of a listing page. Only ExternalID is guaranteed.
type ConversationSummary struct {
	ExternalID      string
	CursorMessageID string
	Name            string
	PhotoURL        string
	DetailURL       string
	// LatestActivityDate is ISO YYYY-MM-DD when the source value parsed, the raw value otherwise.
	LatestActivityDate string
}

// ActivityDate reports the summary's latest activity date when it is known.
func (s ConversationSummary) ActivityDate() (time.Time, bool) {
	return ParseISODate(s.LatestActivityDate)
}

// Label is the human-readable name used in progress output.
func (s ConversationSummary) Label() string {
	if s.Name != "" {
		return s.Name
	}
	return s.ExternalID
}

type Message struct {
	ExternalMessageID string    `json:"externalMessageId"`
	Direction         Direction `json:"direction"`
	Content           string    `json:"content"`
	// SentAt is ISO YYYY-MM-DD when the source value parsed, the raw value otherwise.
	SentAt string `json:"sentAt,omitempty"`
}

// ConversationUpdate is the per-conversation unit of a Batch.
type ConversationUpdate struct {
	ExternalID         string    `json:"externalId"`
	Name               string    `json:"name,omitempty"`
	PhotoURL           string    `json:"photoUrl,omitempty"`
	CursorMessageID    string    `json:"cursorMessageId,omitempty"`
	LatestActivityDate string    `json:"latestActivityDate,omitempty"`
	Messages           []Message `json:"messages"`
}

// Batch is one upload covering every conversation touched by a run.
type Batch struct {
	WorkspaceID   string               `json:"workspaceId"`
	Conversations []ConversationUpdate `json:"conversations"`
}

func (b *Batch) MessageCount() int {
	n := 0
	for _, c := range b.Conversations {
		n += len(c.Messages)
	}
	return n
}

type IngestResult struct {
	InsertedConversations int `json:"insertedConversations"`
	InsertedMessages      int `json:"insertedMessages"`
	CreatedConversations  int `json:"createdConversations"`
	FailedConversations   int `json:"failedConversations"`
}

// IngestNotice announces that one conversation of a batch was committed.
type IngestNotice struct {
	WorkspaceID      string    `json:"workspaceId"`
	ExternalID       string    `json:"externalId"`
	CursorMessageID  string    `json:"cursorMessageId,omitempty"`
	Created          bool      `json:"created"`
	InsertedMessages int       `json:"insertedMessages"`
	IngestedAt       time.Time `json:"ingestedAt"`
}

package httpapi

import "inbox_sync/internal/domain"

type SyncRequest struct {
	WorkspaceID   string            `json:"workspaceId" binding:"required"`
	Conversations []ConversationDTO `json:"conversations" binding:"dive"`
}

type ConversationDTO struct {
	ExternalID         string       `json:"externalId" binding:"required"`
	Name               string       `json:"name"`
	PhotoURL           string       `json:"photoUrl"`
	CursorMessageID    string       `json:"cursorMessageId"`
	LatestActivityDate string       `json:"latestActivityDate"`
	Messages           []MessageDTO `json:"messages" binding:"dive"`
}

type MessageDTO struct {
	ExternalMessageID string `json:"externalMessageId" binding:"required"`
	Direction         string `json:"direction" binding:"required,oneof=applicant operator"`
	Content           string `json:"content"`
	SentAt            string `json:"sentAt"`
}

type CursorsResponse struct {
	Cursors map[string]string `json:"cursors"`
}

func (r *SyncRequest) toBatch() *domain.Batch {
	batch := &domain.Batch{
		WorkspaceID:   r.WorkspaceID,
		Conversations: make([]domain.ConversationUpdate, 0, len(r.Conversations)),
	}
	for _, c := range r.Conversations {
		conv := domain.ConversationUpdate{
			ExternalID:         c.ExternalID,
			Name:               c.Name,
			PhotoURL:           c.PhotoURL,
			CursorMessageID:    c.CursorMessageID,
			LatestActivityDate: c.LatestActivityDate,
			Messages:           make([]domain.Message, 0, len(c.Messages)),
		}
		for _, m := range c.Messages {
			conv.Messages = append(conv.Messages, domain.Message{
				ExternalMessageID: m.ExternalMessageID,
				Direction:         domain.Direction(m.Direction),
				Content:           m.Content,
				SentAt:            m.SentAt,
			})
		}
		batch.Conversations = append(batch.Conversations, conv)
	}
	return batch
}

package domain

import (
	"encoding/json"
	"errors"
	"strings"
	"time"
)

var ErrInvalidCommand = errors.New("invalid start command")

type EventKind string

const (
	EventProgress EventKind = "progress"
	EventDone     EventKind = "done"
	EventError    EventKind = "error"
)

// Event is one entry of a run's ordered event stream. Done and Error are terminal.
type Event struct {
	Kind             EventKind `json:"kind"`
	Text             string    `json:"text,omitempty"`
	InsertedCount    int       `json:"insertedCount,omitempty"`
	InsertedMessages int       `json:"insertedMessages,omitempty"`
}

func Progress(text string) Event {
	return Event{Kind: EventProgress, Text: text}
}

func Done(result IngestResult) Event {
	return Event{
		Kind:             EventDone,
		InsertedCount:    result.InsertedConversations,
		InsertedMessages: result.InsertedMessages,
	}
}

func Failure(text string) Event {
	return Event{Kind: EventError, Text: text}
}

func (e Event) Terminal() bool {
	return e.Kind == EventDone || e.Kind == EventError
}

// MarshalJSON always writes the counts of a done event, zero included, and never those of other kinds.
func (e Event) MarshalJSON() ([]byte, error) {
	wire := struct {
		Kind             EventKind `json:"kind"`
		Text             string    `json:"text,omitempty"`
		InsertedCount    *int      `json:"insertedCount,omitempty"`
		InsertedMessages *int      `json:"insertedMessages,omitempty"`
	}{Kind: e.Kind, Text: e.Text}

	if e.Kind == EventDone {
		wire.InsertedCount = &e.InsertedCount
		wire.InsertedMessages = &e.InsertedMessages
	}
	return json.Marshal(wire)
}

type Credentials struct {
	// SessionCookie is sent verbatim as the Cookie header of source requests.
	SessionCookie string `json:"sessionCookie"`
	// IngestToken authenticates against the ingest endpoint.
	IngestToken string `json:"ingestToken"`
}

// StartCommand parameterizes a single sync run.
type StartCommand struct {
	Command         string      `json:"command"`
	RunID           string      `json:"runId,omitempty"`
	WorkspaceID     string      `json:"workspaceId"`
	ExternalInboxID string      `json:"externalInboxId"`
	CutoffDate      string      `json:"cutoffDate,omitempty"`
	Credentials     Credentials `json:"credentials"`
}

// Cutoff returns the parsed cutoff date, or nil when none is configured.
func (c StartCommand) Cutoff() (*time.Time, error) {
	if strings.TrimSpace(c.CutoffDate) == "" {
		return nil, nil
	}
	t, ok := ParseISODate(strings.TrimSpace(c.CutoffDate))
	if !ok {
		return nil, errors.Join(ErrInvalidCommand, errors.New("cutoffDate must be YYYY-MM-DD"))
	}
	return &t, nil
}

func (c StartCommand) Validate() error {
	if c.Command != "" && c.Command != "start" {
		return errors.Join(ErrInvalidCommand, errors.New("unknown command "+c.Command))
	}
	if c.WorkspaceID == "" {
		return errors.Join(ErrInvalidCommand, errors.New("workspaceId is required"))
	}
	if c.ExternalInboxID == "" {
		return errors.Join(ErrInvalidCommand, errors.New("externalInboxId is required"))
	}
	_, err := c.Cutoff()
	return err
}

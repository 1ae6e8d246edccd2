package service

import (
	"context"
	"fmt"
)

// CursorMap maps a conversation's external id to the newest persisted message id.
type CursorMap map[string]string

// Lookup returns the persisted cursor for externalID, or "" when none is known.
func (m CursorMap) Lookup(externalID string) string {
	return m[externalID]
}

type CursorResolver struct {
	ingest IngestClient
}

func NewCursorResolver(ingest IngestClient) *CursorResolver {
	return &CursorResolver{ingest: ingest}
}

func (r *CursorResolver) Load(ctx context.Context, workspaceID string) (CursorMap, error) {
	raw, err := r.ingest.LoadCursors(ctx, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("load cursors: %w", err)
	}

	cursors := make(CursorMap, len(raw))
	for externalID, cursor := range raw {
		if externalID == "" || cursor == "" {
			continue
		}
		cursors[externalID] = cursor
	}
	return cursors, nil
}

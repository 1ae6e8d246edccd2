package domain

import "time"

// SyncStats holds statistics about a sync run.
type SyncStats struct {
	WorkspaceID string
	Pages       int
	Seen        int
	Scraped     int
	Skipped     int
	Errors      int
	NewMessages int
	Result      IngestResult
	Duration    time.Duration
}

package main

import (
	"log/slog"

	"inbox_sync/internal/config"
	"inbox_sync/internal/domain"
	"inbox_sync/internal/ingest"
	"inbox_sync/internal/service"
	"inbox_sync/internal/source/wgg"
)

// sessionFactory binds a start command's credentials to a source scraper and an ingest client.
type sessionFactory struct {
	source config.SourceConfig
	ingest config.IngestConfig
	logger *slog.Logger
}

func (f *sessionFactory) NewSession(creds domain.Credentials) (service.Source, service.IngestClient, error) {
	src, err := wgg.New(wgg.Config{
		BaseURL:          f.source.BaseURL,
		ListingPath:      f.source.ListingPath,
		ConversationPath: f.source.ConversationPath,
		InboxFilter:      f.source.InboxFilter,
		Timeout:          f.source.Timeout,
		UserAgent:        f.source.UserAgent,
	}, creds.SessionCookie, f.logger)
	if err != nil {
		return nil, nil, err
	}

	return src, ingest.NewClient(f.ingest.BaseURL, creds.IngestToken, f.ingest.Timeout), nil
}

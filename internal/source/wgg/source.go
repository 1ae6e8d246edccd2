package wgg

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"time"

	"inbox_sync/internal/domain"
)

const SourceID = "wg-gesucht"

// Config holds source site configuration.
type Config struct {
	BaseURL          string
	ListingPath      string
	ConversationPath string
	InboxFilter      string
	Timeout          time.Duration
	UserAgent        string
}

// Source reads one operator inbox from the source site with one session's credentials.
type Source struct {
	fetcher *Fetcher
	base    *url.URL
	cfg     Config
	logger  *slog.Logger
}

func New(cfg Config, sessionCookie string, logger *slog.Logger) (*Source, error) {
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("parse base url: %q is not absolute", cfg.BaseURL)
	}

	return &Source{
		fetcher: NewFetcher(cfg.Timeout, cfg.UserAgent, sessionCookie),
		base:    base,
		cfg:     cfg,
		logger:  logger.With("source", SourceID),
	}, nil
}

func (s *Source) ID() string {
	return SourceID
}

func (s *Source) ListingURL(inboxID string, page int) string {
	q := url.Values{}
	q.Set("filter", s.cfg.InboxFilter)
	q.Set("external_inbox_id", inboxID)
	q.Set("page", strconv.Itoa(page))
	return s.base.String() + s.cfg.ListingPath + "?" + q.Encode()
}

func (s *Source) ConversationURL(externalID string) string {
	q := url.Values{}
	q.Set("id", externalID)
	return s.base.String() + s.cfg.ConversationPath + "?" + q.Encode()
}

// FetchListing fetches and parses one listing page.
func (s *Source) FetchListing(ctx context.Context, inboxID string, page int) ([]domain.ConversationSummary, error) {
	doc, err := s.fetcher.Fetch(ctx, s.ListingURL(inboxID, page))
	if err != nil {
		return nil, err
	}

	summaries := ParseListing(doc, s.base)
	s.logger.Debug("parsed listing page",
		"inbox_id", inboxID,
		"page", page,
		"summaries", len(summaries),
	)
	return summaries, nil
}

// FetchConversation fetches a conversation's history and returns the messages after knownCursorID.
func (s *Source) FetchConversation(ctx context.Context, summary domain.ConversationSummary, knownCursorID string) ([]domain.Message, error) {
	target := s.conversationTarget(summary)

	doc, err := s.fetcher.Fetch(ctx, target)
	if err != nil {
		return nil, err
	}

	messages := ParseConversation(doc, knownCursorID)
	s.logger.Debug("parsed conversation",
		"external_id", summary.ExternalID,
		"known_cursor", knownCursorID,
		"messages", len(messages),
	)
	return messages, nil
}

// conversationTarget returns the listing's detail URL when it stays on the source site, and the
// conversation URL by id otherwise. The session cookie must never reach another host.
func (s *Source) conversationTarget(summary domain.ConversationSummary) string {
	if summary.DetailURL != "" {
		if ref, err := url.Parse(summary.DetailURL); err == nil {
			resolved := s.base.ResolveReference(ref)
			if strings.EqualFold(resolved.Scheme, s.base.Scheme) && strings.EqualFold(resolved.Host, s.base.Host) {
				return resolved.String()
			}
		}
		s.logger.Warn("ignoring off-site detail url",
			"external_id", summary.ExternalID,
			"detail_url", summary.DetailURL,
		)
	}
	return s.ConversationURL(summary.ExternalID)
}

package wgg

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inbox_sync/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

func testConfig(baseURL string) Config {
	return Config{
		BaseURL:          baseURL,
		ListingPath:      "/listing",
		ConversationPath: "/conversation",
		InboxFilter:      "4",
		Timeout:          5 * time.Second,
		UserAgent:        "InboxSync/1.0",
	}
}

func TestSource_URLs(t *testing.T) {
	src, err := New(testConfig("https://www.example.com/"), "", testLogger())
	require.NoError(t, err)

	assert.Equal(t, "https://www.example.com/listing?external_inbox_id=555&filter=4&page=2", src.ListingURL("555", 2))
	assert.Equal(t, "https://www.example.com/conversation?id=101", src.ConversationURL("101"))
}

func TestNew_RejectsRelativeBase(t *testing.T) {
	_, err := New(testConfig("/relative"), "", testLogger())
	assert.Error(t, err)
}

func TestSource_FetchListingSendsCredentials(t *testing.T) {
	listing, err := os.ReadFile("testdata/listing.html")
	require.NoError(t, err)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/listing", r.URL.Path)
		assert.Equal(t, "4", r.URL.Query().Get("filter"))
		assert.Equal(t, "555", r.URL.Query().Get("external_inbox_id"))
		assert.Equal(t, "1", r.URL.Query().Get("page"))
		assert.Equal(t, "session=abc", r.Header.Get("Cookie"))
		assert.Equal(t, "InboxSync/1.0", r.Header.Get("User-Agent"))
		_, _ = w.Write(listing)
	}))
	defer srv.Close()

	src, err := New(testConfig(srv.URL), "session=abc", testLogger())
	require.NoError(t, err)

	summaries, err := src.FetchListing(context.Background(), "555", 1)
	require.NoError(t, err)
	require.Len(t, summaries, 3)
	assert.Equal(t, srv.URL+"/nachricht.html?nachrichten-id=101&list=1", summaries[0].DetailURL)
}

func TestSource_FetchConversationFallsBackToConversationURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/conversation", r.URL.Path)
		assert.Equal(t, "103", r.URL.Query().Get("id"))
		_, _ = w.Write([]byte(threadHTML(1, 2, 3)))
	}))
	defer srv.Close()

	src, err := New(testConfig(srv.URL), "", testLogger())
	require.NoError(t, err)

	messages, err := src.FetchConversation(context.Background(), domain.ConversationSummary{ExternalID: "103"}, "1")
	require.NoError(t, err)
	assert.Equal(t, []string{"2", "3"}, messageIDs(messages))
}

func TestSource_FetchConversationIgnoresOffSiteDetailURL(t *testing.T) {
	var foreignHits int
	foreign := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		foreignHits++
		_, _ = w.Write([]byte(threadHTML(9)))
	}))
	defer foreign.Close()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/conversation", r.URL.Path)
		assert.Equal(t, "101", r.URL.Query().Get("id"))
		assert.Equal(t, "session=abc", r.Header.Get("Cookie"))
		_, _ = w.Write([]byte(threadHTML(1, 2)))
	}))
	defer srv.Close()

	src, err := New(testConfig(srv.URL), "session=abc", testLogger())
	require.NoError(t, err)

	messages, err := src.FetchConversation(context.Background(), domain.ConversationSummary{
		ExternalID: "101",
		DetailURL:  foreign.URL + "/x?nachrichten-id=7",
	}, "1")

	require.NoError(t, err)
	assert.Equal(t, []string{"2"}, messageIDs(messages))
	assert.Zero(t, foreignHits)
}

func TestSource_ConversationTarget(t *testing.T) {
	src, err := New(testConfig("https://www.example.com"), "", testLogger())
	require.NoError(t, err)

	tests := []struct {
		name      string
		detailURL string
		want      string
	}{
		{"same host", "https://www.example.com/nachricht.html?nachrichten-id=5", "https://www.example.com/nachricht.html?nachrichten-id=5"},
		{"relative", "/nachricht.html?nachrichten-id=5", "https://www.example.com/nachricht.html?nachrichten-id=5"},
		{"foreign host", "https://evil.example.net/x?nachrichten-id=7", "https://www.example.com/conversation?id=101"},
		{"scheme downgrade", "http://www.example.com/nachricht.html", "https://www.example.com/conversation?id=101"},
		{"protocol relative", "//evil.example.net/x", "https://www.example.com/conversation?id=101"},
		{"empty", "", "https://www.example.com/conversation?id=101"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := src.conversationTarget(domain.ConversationSummary{ExternalID: "101", DetailURL: tt.detailURL})
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFetcher_NonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	_, err := NewFetcher(time.Second, "", "").Fetch(context.Background(), srv.URL)

	var netErr *NetworkError
	require.True(t, errors.As(err, &netErr))
	assert.Equal(t, http.StatusForbidden, netErr.StatusCode)
	assert.Contains(t, err.Error(), "unexpected status 403")
}

func TestFetcher_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	_, err := NewFetcher(time.Second, "", "").Fetch(context.Background(), srv.URL)

	var netErr *NetworkError
	require.True(t, errors.As(err, &netErr))
	assert.Zero(t, netErr.StatusCode)
	assert.Error(t, netErr.Unwrap())
}

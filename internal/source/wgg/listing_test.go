package wgg

import (
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadFixture(t *testing.T, name string) *goquery.Document {
	t.Helper()
	raw, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	doc, err := Parse(raw)
	require.NoError(t, err)
	return doc
}

func parseString(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

func TestParseListing(t *testing.T) {
	base, err := url.Parse("https://www.example.com")
	require.NoError(t, err)

	summaries := ParseListing(loadFixture(t, "listing.html"), base)
	require.Len(t, summaries, 3)

	anna := summaries[0]
	assert.Equal(t, "101", anna.ExternalID)
	assert.Equal(t, "Anna Schmidt", anna.Name)
	assert.Equal(t, "9001", anna.CursorMessageID)
	assert.Equal(t, "https://www.example.com/nachricht.html?nachrichten-id=101&list=1", anna.DetailURL)
	assert.Equal(t, "https://img.example.com/u/101.jpg", anna.PhotoURL)
	assert.Equal(t, "2025-02-06", anna.LatestActivityDate)

	ben := summaries[1]
	assert.Equal(t, "102", ben.ExternalID)
	assert.Equal(t, "9100", ben.CursorMessageID)
	assert.Equal(t, "https://img.example.com/u/102.jpg", ben.PhotoURL)
	assert.Equal(t, "Gestern", ben.LatestActivityDate)
	_, known := ben.ActivityDate()
	assert.False(t, known)

	clara := summaries[2]
	assert.Equal(t, "103", clara.ExternalID)
	assert.Empty(t, clara.CursorMessageID)
	assert.Empty(t, clara.DetailURL)
	assert.Empty(t, clara.PhotoURL)
	assert.Equal(t, "2025-01-03", clara.LatestActivityDate)
}

func TestParseListing_FirstOccurrenceWins(t *testing.T) {
	doc := parseString(t, `<div>
		<div><span class="list_item_public_name" data-conversation_id="7">First</span>
		<span class="latest_message_timestamp_list">01.03.2025</span></div>
		<div><span class="list_item_public_name" data-conversation_id="7">Second</span>
		<span class="latest_message_timestamp_list">01.01.2025</span></div>
	</div>`)

	summaries := ParseListing(doc, nil)
	require.Len(t, summaries, 1)
	assert.Equal(t, "First", summaries[0].Name)
	assert.Equal(t, "2025-03-01", summaries[0].LatestActivityDate)
}

func TestParseListing_EmptyPage(t *testing.T) {
	doc := parseString(t, `<html><body><p>Keine Nachrichten</p></body></html>`)
	assert.Empty(t, ParseListing(doc, nil))
}

func TestParseListing_RelativeLinkWithoutBase(t *testing.T) {
	doc := parseString(t, `<div>
		<span class="list_item_public_name" data-conversation_id="5">Eve</span>
		<a class="link-conversation-list" href="/nachricht.html?nachrichten-id=5#last_message_id_77">open</a>
		<span class="latest_message_timestamp_list">x</span>
	</div>`)

	summaries := ParseListing(doc, nil)
	require.Len(t, summaries, 1)
	assert.Equal(t, "/nachricht.html?nachrichten-id=5", summaries[0].DetailURL)
	assert.Equal(t, "77", summaries[0].CursorMessageID)
}

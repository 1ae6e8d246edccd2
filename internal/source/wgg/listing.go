package wgg

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"inbox_sync/internal/domain"
)

var cursorFragment = regexp.MustCompile(`#` + messageIDPrefix + `(\d+)`)

// ParseListing extracts conversation summaries from one listing page in document order.
// Entries without an external id are dropped; repeated ids keep their first occurrence.
// Relative detail links are resolved against base when it is non-nil.
func ParseListing(doc *goquery.Document, base *url.URL) []domain.ConversationSummary {
	var summaries []domain.ConversationSummary
	seen := make(map[string]struct{})

	doc.Find(selListingName).Each(func(_ int, span *goquery.Selection) {
		id := strings.TrimSpace(span.AttrOr(attrConversationID, ""))
		if id == "" {
			return
		}
		if _, dup := seen[id]; dup {
			return
		}
		seen[id] = struct{}{}

		container := span.Parent()
		summary := domain.ConversationSummary{
			ExternalID: id,
			Name:       collapseSpace(span.Text()),
		}
		if summary.Name == "" {
			summary.Name = collapseSpace(container.Text())
		}

		for i := 0; i < maxContainerDepth; i++ {
			if container.Length() == 0 || container.Is("body") {
				break
			}
			if container.Find(selListingTimestamp).Length() > 0 {
				break
			}
			container = container.Parent()
		}

		href := container.Find(selListingLink).First().AttrOr("href", "")
		if m := cursorFragment.FindStringSubmatch(href); m != nil {
			summary.CursorMessageID = m[1]
		}
		summary.DetailURL = resolveDetailURL(href, base)

		row := container.Parent()
		photo := row.Find(selListingPhoto).First()
		if photo.Length() == 0 {
			photo = row.Find(selAnyRemotePhoto).First()
		}
		summary.PhotoURL = strings.TrimSpace(photo.AttrOr("src", ""))

		date := strings.TrimSpace(container.Find(selListingTimestamp).First().Text())
		if date != "" {
			summary.LatestActivityDate = domain.NormalizeLocalDate(date)
		}

		summaries = append(summaries, summary)
	})

	return summaries
}

func resolveDetailURL(href string, base *url.URL) string {
	if i := strings.IndexByte(href, '#'); i >= 0 {
		href = href[:i]
	}
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if base == nil {
		return ref.String()
	}
	return base.ResolveReference(ref).String()
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

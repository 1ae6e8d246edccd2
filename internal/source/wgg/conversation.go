package wgg

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"inbox_sync/internal/domain"
)

// ParseConversation extracts messages oldest first. When knownCursorID matches a message
// element, collection starts right after it; otherwise the full visible history is returned.
func ParseConversation(doc *goquery.Document, knownCursorID string) []domain.Message {
	elements := doc.Find(selMessage)

	start := 0
	if knownCursorID != "" {
		target := messageIDPrefix + knownCursorID
		elements.EachWithBreak(func(i int, el *goquery.Selection) bool {
			if el.AttrOr("id", "") == target {
				start = i + 1
				return false
			}
			return true
		})
	}

	var messages []domain.Message
	elements.Each(func(i int, el *goquery.Selection) {
		if i < start {
			return
		}

		id := strings.TrimPrefix(el.AttrOr("id", ""), messageIDPrefix)
		if id == "" {
			return
		}

		content := messageText(el)
		if content == "" {
			return
		}

		direction := domain.DirectionApplicant
		if el.HasClass(classOwnMessage) {
			direction = domain.DirectionOperator
		}

		messages = append(messages, domain.Message{
			ExternalMessageID: id,
			Direction:         direction,
			Content:           content,
			SentAt:            sentDate(el),
		})
	})

	return messages
}

func messageText(el *goquery.Selection) string {
	if text := strings.TrimSpace(el.Find(selMessageContent).First().Text()); text != "" {
		return text
	}
	return strings.TrimSpace(el.Text())
}

// sentDate reads the timestamp next to a message from its own text nodes only,
// so icon glyphs nested in the timestamp element are ignored.
func sentDate(el *goquery.Selection) string {
	wrapper := el.Closest(selMessageWrapper)
	if wrapper.Length() == 0 {
		wrapper = el.Parent()
	}

	ts := wrapper.Find(selMessageTimestamp).First()
	if ts.Length() == 0 {
		return ""
	}

	raw := ""
	ts.Contents().EachWithBreak(func(_ int, node *goquery.Selection) bool {
		if goquery.NodeName(node) != "#text" {
			return true
		}
		raw = strings.TrimSpace(node.Text())
		return raw == ""
	})
	if raw == "" {
		raw = strings.TrimSpace(ts.Text())
	}
	if raw == "" {
		return ""
	}

	return domain.NormalizeLocalDate(raw)
}

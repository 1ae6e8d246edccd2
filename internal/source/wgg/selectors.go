package wgg

// Markup contract with the source site. Parsers reference these names only.
const (
	selListingName      = ".list_item_public_name[data-conversation_id]"
	attrConversationID  = "data-conversation_id"
	selListingTimestamp = ".latest_message_timestamp_list"
	selListingLink      = `a.link-conversation-list[href*="nachrichten-id"]`
	selListingPhoto     = "img.img-conversation-list"
	selAnyRemotePhoto   = `img[src^="http"]`

	selMessage          = `[id^="last_message_id_"]`
	messageIDPrefix     = "last_message_id_"
	classOwnMessage     = "my_message"
	selMessageContent   = ".message_content"
	selMessageWrapper   = ".last_message_selector"
	selMessageTimestamp = ".latest_message_timestamp"

	// maxContainerDepth bounds the ancestor walk from a name span to its entry container.
	maxContainerDepth = 6
)

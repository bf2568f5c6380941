package events

import (
	"encoding/json"

	"github.com/go-monolith/mono/pkg/helper"

	"github.com/example/nextchat/domain/chat"
)

// MessageRelayedEvent is emitted when a client message must be fanned out to
// its room. Payload is the sender's send_message payload, relayed verbatim.
type MessageRelayedEvent struct {
	Room     string          `json:"room"`
	SenderID string          `json:"sender_id"`
	Payload  json.RawMessage `json:"payload"`
}

// UserJoinedEvent is emitted when a connection joins a room.
type UserJoinedEvent struct {
	Room     string             `json:"room"`
	SenderID string             `json:"sender_id"`
	Notice   chat.SystemMessage `json:"notice"`
}

// UserLeftEvent is emitted when a joined connection disconnects.
type UserLeftEvent struct {
	Room     string             `json:"room"`
	SenderID string             `json:"sender_id"`
	Notice   chat.SystemMessage `json:"notice"`
}

// TypingChangedEvent is emitted when a client starts or stops typing.
type TypingChangedEvent struct {
	Room     string `json:"room"`
	SenderID string `json:"sender_id"`
	Username string `json:"username"`
	IsTyping bool   `json:"is_typing"`
}

// Event definitions for the relay domain.
var (
	MessageRelayedV1 = helper.EventDefinition[MessageRelayedEvent](
		"relay",
		"MessageRelayed",
		"v1",
	)

	UserJoinedV1 = helper.EventDefinition[UserJoinedEvent](
		"relay",
		"UserJoined",
		"v1",
	)

	UserLeftV1 = helper.EventDefinition[UserLeftEvent](
		"relay",
		"UserLeft",
		"v1",
	)

	TypingChangedV1 = helper.EventDefinition[TypingChangedEvent](
		"relay",
		"TypingChanged",
		"v1",
	)
)

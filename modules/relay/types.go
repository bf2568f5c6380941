package relay

import (
	"bytes"
	"encoding/json"
)

// Client event names accepted over the wire.
const (
	EventJoinRoom    = "join_room"
	EventSendMessage = "send_message"
	EventTyping      = "typing"
	EventStopTyping  = "stop_typing"
)

// Server event names delivered over the wire.
const (
	EventSystemMessage  = "system_message"
	EventReceiveMessage = "receive_message"
	EventUserTyping     = "user_typing"
)

// JoinPayload is the payload of a join_room event.
type JoinPayload struct {
	Room     string `json:"room"`
	Username string `json:"username"`
}

// TypingPayload is the payload of a typing / stop_typing event.
type TypingPayload struct {
	Room     string `json:"room"`
	Username string `json:"username"`
}

// messageEnvelope is the minimal view of a send_message payload needed to
// resolve the broadcast audience. The full payload is relayed verbatim;
// extra client fields pass through untouched.
type messageEnvelope struct {
	Room    string          `json:"room"`
	Message json.RawMessage `json:"message"`
}

var (
	jsonNull        = []byte("null")
	jsonFalse       = []byte("false")
	jsonZero        = []byte("0")
	jsonEmptyString = []byte(`""`)
)

// present reports whether a raw JSON value counts as a usable message body.
// Mirrors the truthiness check clients rely on: absent, null, empty string,
// zero, and false all cause the event to be dropped.
func present(raw json.RawMessage) bool {
	v := bytes.TrimSpace(raw)
	if len(v) == 0 {
		return false
	}
	switch {
	case bytes.Equal(v, jsonNull),
		bytes.Equal(v, jsonFalse),
		bytes.Equal(v, jsonZero),
		bytes.Equal(v, jsonEmptyString):
		return false
	}
	return true
}

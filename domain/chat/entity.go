package chat

import (
	"fmt"
	"time"
)

// SystemAuthor is the fixed author name stamped on server-synthesized messages.
const SystemAuthor = "System"

// SystemType is the message type tag that distinguishes server notices from
// user-authored chat messages.
const SystemType = "system"

// Session is the per-connection state tracked for the lifetime of a
// WebSocket connection. Room and Username are set together by a join
// event and are never set one without the other.
type Session struct {
	ID       string
	Room     string
	Username string
}

// Joined reports whether the session has been bound to a room.
func (s Session) Joined() bool {
	return s.Room != "" && s.Username != ""
}

// SystemMessage is a server-synthesized room notice (join/leave). It is
// never persisted; it exists only as a transient broadcast payload.
type SystemMessage struct {
	ID      string `json:"id"`
	Room    string `json:"room"`
	Author  string `json:"author"`
	Message string `json:"message"`
	Time    string `json:"time"`
	Type    string `json:"type"`
}

// NewSystemMessage builds a room notice stamped with the current time.
// The ID is derived from the generation timestamp; monotonic enough for
// display ordering, not a correctness-critical identifier.
func NewSystemMessage(room, text string) SystemMessage {
	now := time.Now()
	return SystemMessage{
		ID:      fmt.Sprintf("sys-%d", now.UnixMilli()),
		Room:    room,
		Author:  SystemAuthor,
		Message: text,
		Time:    now.Format("3:04:05 PM"),
		Type:    SystemType,
	}
}

// TypingSignal is the reshaped typing indicator delivered to room members.
type TypingSignal struct {
	Username string `json:"username"`
	IsTyping bool   `json:"isTyping"`
}

package relay

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/nextchat/domain/chat"
)

// membershipCall records one Join or Leave on the fake membership port.
type membershipCall struct {
	op     string
	connID string
	room   string
}

type fakeMemberships struct {
	calls []membershipCall
}

func (f *fakeMemberships) Join(connID, room string) {
	f.calls = append(f.calls, membershipCall{"join", connID, room})
}

func (f *fakeMemberships) Leave(connID, room string) {
	f.calls = append(f.calls, membershipCall{"leave", connID, room})
}

// sinkCall records one outbound broadcast on the fake event sink.
type sinkCall struct {
	kind     string
	room     string
	senderID string
	payload  json.RawMessage
	notice   chat.SystemMessage
	username string
	isTyping bool
}

type fakeSink struct {
	calls []sinkCall
}

func (f *fakeSink) MessageRelayed(room, senderID string, payload json.RawMessage) {
	f.calls = append(f.calls, sinkCall{kind: "message", room: room, senderID: senderID, payload: payload})
}

func (f *fakeSink) UserJoined(room, senderID string, notice chat.SystemMessage) {
	f.calls = append(f.calls, sinkCall{kind: "joined", room: room, senderID: senderID, notice: notice})
}

func (f *fakeSink) UserLeft(room, senderID string, notice chat.SystemMessage) {
	f.calls = append(f.calls, sinkCall{kind: "left", room: room, senderID: senderID, notice: notice})
}

func (f *fakeSink) TypingChanged(room, senderID, username string, isTyping bool) {
	f.calls = append(f.calls, sinkCall{kind: "typing", room: room, senderID: senderID, username: username, isTyping: isTyping})
}

func newTestRelay() (*Relay, *fakeMemberships, *fakeSink) {
	members := &fakeMemberships{}
	sink := &fakeSink{}
	return NewRelay(NewRegistry(), members, sink), members, sink
}

func join(r *Relay, connID, room, username string) {
	payload := fmt.Sprintf(`{"room":%q,"username":%q}`, room, username)
	r.HandleEvent(connID, EventJoinRoom, json.RawMessage(payload))
}

func TestJoinRoomAnnouncesToRoom(t *testing.T) {
	r, members, sink := newTestRelay()

	r.HandleConnect("conn-1")
	join(r, "conn-1", "lobby", "alice")

	require.Len(t, members.calls, 1)
	assert.Equal(t, membershipCall{"join", "conn-1", "lobby"}, members.calls[0])

	require.Len(t, sink.calls, 1)
	call := sink.calls[0]
	assert.Equal(t, "joined", call.kind)
	assert.Equal(t, "lobby", call.room)
	assert.Equal(t, "conn-1", call.senderID, "notice must carry the sender for exclusion")
	assert.Equal(t, "alice joined the chat", call.notice.Message)
	assert.Equal(t, chat.SystemAuthor, call.notice.Author)
	assert.Equal(t, chat.SystemType, call.notice.Type)
	assert.Equal(t, "lobby", call.notice.Room)
	assert.NotEmpty(t, call.notice.ID)
	assert.NotEmpty(t, call.notice.Time)
}

func TestJoinRoomMalformedPayloadsDropped(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{"invalid json", `{`},
		{"missing room", `{"username":"alice"}`},
		{"missing username", `{"room":"lobby"}`},
		{"empty fields", `{"room":"","username":""}`},
		{"wrong types", `{"room":42,"username":true}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, members, sink := newTestRelay()
			r.HandleConnect("conn-1")

			r.HandleEvent("conn-1", EventJoinRoom, json.RawMessage(tt.payload))

			assert.Empty(t, members.calls, "no membership change for malformed join")
			assert.Empty(t, sink.calls, "no broadcast for malformed join")
		})
	}
}

func TestRejoinMovesConnection(t *testing.T) {
	r, members, sink := newTestRelay()

	r.HandleConnect("conn-1")
	join(r, "conn-1", "lobby", "alice")
	join(r, "conn-1", "games", "alice")

	// The old group is left before the new one is joined, so the
	// connection is never in two rooms at once.
	require.Len(t, members.calls, 3)
	assert.Equal(t, membershipCall{"join", "conn-1", "lobby"}, members.calls[0])
	assert.Equal(t, membershipCall{"leave", "conn-1", "lobby"}, members.calls[1])
	assert.Equal(t, membershipCall{"join", "conn-1", "games"}, members.calls[2])

	require.Len(t, sink.calls, 2)
	assert.Equal(t, "games", sink.calls[1].room)
}

func TestSendMessageRelaysPayloadVerbatim(t *testing.T) {
	r, _, sink := newTestRelay()
	r.HandleConnect("conn-1")

	payload := `{"room":"lobby","message":{"text":"hi","extra":"kept"}}`
	r.HandleEvent("conn-1", EventSendMessage, json.RawMessage(payload))

	require.Len(t, sink.calls, 1)
	call := sink.calls[0]
	assert.Equal(t, "message", call.kind)
	assert.Equal(t, "lobby", call.room)
	assert.Equal(t, "conn-1", call.senderID)
	assert.JSONEq(t, payload, string(call.payload), "payload must pass through untouched")
}

func TestSendMessageRequiresRoomAndMessage(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{"missing room", `{"message":{"text":"hi"}}`},
		{"empty room", `{"room":"","message":{"text":"hi"}}`},
		{"missing message", `{"room":"lobby"}`},
		{"null message", `{"room":"lobby","message":null}`},
		{"empty string message", `{"room":"lobby","message":""}`},
		{"zero message", `{"room":"lobby","message":0}`},
		{"false message", `{"room":"lobby","message":false}`},
		{"invalid json", `not json`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _, sink := newTestRelay()
			r.HandleConnect("conn-1")

			r.HandleEvent("conn-1", EventSendMessage, json.RawMessage(tt.payload))
			assert.Empty(t, sink.calls)
		})
	}
}

func TestTypingEvents(t *testing.T) {
	tests := []struct {
		event    string
		isTyping bool
	}{
		{EventTyping, true},
		{EventStopTyping, false},
	}

	for _, tt := range tests {
		t.Run(tt.event, func(t *testing.T) {
			r, _, sink := newTestRelay()
			r.HandleConnect("conn-1")

			r.HandleEvent("conn-1", tt.event, json.RawMessage(`{"room":"lobby","username":"alice"}`))

			require.Len(t, sink.calls, 1)
			call := sink.calls[0]
			assert.Equal(t, "typing", call.kind)
			assert.Equal(t, "lobby", call.room)
			assert.Equal(t, "conn-1", call.senderID)
			assert.Equal(t, "alice", call.username)
			assert.Equal(t, tt.isTyping, call.isTyping)
		})
	}
}

func TestUnknownEventDropped(t *testing.T) {
	r, members, sink := newTestRelay()
	r.HandleConnect("conn-1")

	r.HandleEvent("conn-1", "shrug", json.RawMessage(`{"room":"lobby"}`))

	assert.Empty(t, members.calls)
	assert.Empty(t, sink.calls)
}

func TestDisconnectAfterJoinAnnouncesDeparture(t *testing.T) {
	r, members, sink := newTestRelay()

	r.HandleConnect("conn-1")
	join(r, "conn-1", "lobby", "alice")
	r.HandleDisconnect("conn-1")

	require.Len(t, members.calls, 2)
	assert.Equal(t, membershipCall{"leave", "conn-1", "lobby"}, members.calls[1])

	require.Len(t, sink.calls, 2)
	call := sink.calls[1]
	assert.Equal(t, "left", call.kind)
	assert.Equal(t, "lobby", call.room)
	assert.Equal(t, "alice left the chat", call.notice.Message)
}

func TestDisconnectWithoutJoinIsSilent(t *testing.T) {
	r, members, sink := newTestRelay()

	r.HandleConnect("conn-1")
	r.HandleDisconnect("conn-1")

	assert.Empty(t, members.calls, "no membership change for a connection that never joined")
	assert.Empty(t, sink.calls, "no departure notice for a connection that never joined")
}

func TestDisconnectUnknownConnectionIsSilent(t *testing.T) {
	r, members, sink := newTestRelay()

	r.HandleDisconnect("never-seen")

	assert.Empty(t, members.calls)
	assert.Empty(t, sink.calls)
}

func TestTwoUserSession(t *testing.T) {
	r, members, sink := newTestRelay()

	r.HandleConnect("alice-conn")
	r.HandleConnect("bob-conn")
	join(r, "alice-conn", "lobby", "alice")
	join(r, "bob-conn", "lobby", "bob")

	r.HandleEvent("bob-conn", EventTyping, json.RawMessage(`{"room":"lobby","username":"bob"}`))
	r.HandleEvent("bob-conn", EventSendMessage, json.RawMessage(`{"room":"lobby","message":{"text":"hello"}}`))
	r.HandleEvent("bob-conn", EventStopTyping, json.RawMessage(`{"room":"lobby","username":"bob"}`))
	r.HandleDisconnect("bob-conn")

	kinds := make([]string, 0, len(sink.calls))
	for _, c := range sink.calls {
		kinds = append(kinds, c.kind)
	}
	assert.Equal(t, []string{"joined", "joined", "typing", "message", "typing", "left"}, kinds)

	// Every broadcast carries bob's connection so he is excluded from
	// his own traffic.
	for _, c := range sink.calls[2:] {
		assert.Equal(t, "bob-conn", c.senderID)
		assert.Equal(t, "lobby", c.room)
	}

	require.Len(t, members.calls, 3)
	assert.Equal(t, membershipCall{"leave", "bob-conn", "lobby"}, members.calls[2])
}

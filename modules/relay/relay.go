package relay

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/example/nextchat/domain/chat"
)

// Memberships is the transport-level group membership primitive the relay
// drives. The broadcast hub implements it; membership changes take effect
// synchronously so a removed connection never receives later broadcasts.
type Memberships interface {
	Join(connID, room string)
	Leave(connID, room string)
}

// EventSink receives the outbound broadcasts derived from client events.
// Delivery is fire-and-forget; the relay never waits for acknowledgment.
type EventSink interface {
	MessageRelayed(room, senderID string, payload json.RawMessage)
	UserJoined(room, senderID string, notice chat.SystemMessage)
	UserLeft(room, senderID string, notice chat.SystemMessage)
	TypingChanged(room, senderID, username string, isTyping bool)
}

// Relay translates inbound client events into registry updates and outbound
// broadcasts. Malformed events fail open: they are dropped with a debug log
// and no error ever reaches the client.
type Relay struct {
	registry *Registry
	members  Memberships
	events   EventSink
	logger   *slog.Logger
}

// NewRelay creates a relay over the given registry and ports.
func NewRelay(registry *Registry, members Memberships, events EventSink) *Relay {
	return &Relay{
		registry: registry,
		members:  members,
		events:   events,
		logger:   slog.With("component", "relay"),
	}
}

// HandleConnect initializes registry state for a new connection.
func (r *Relay) HandleConnect(connID string) {
	r.registry.Add(connID)
	r.logger.Debug("connection opened", "connID", connID)
}

// HandleEvent dispatches one inbound client event. Unknown event names are
// dropped silently, matching the fire-and-forget relay contract.
func (r *Relay) HandleEvent(connID, event string, payload json.RawMessage) {
	switch event {
	case EventJoinRoom:
		r.handleJoin(connID, payload)
	case EventSendMessage:
		r.handleMessage(connID, payload)
	case EventTyping:
		r.handleTyping(connID, payload, true)
	case EventStopTyping:
		r.handleTyping(connID, payload, false)
	default:
		r.logger.Debug("dropping unknown event", "connID", connID, "event", event)
	}
}

// HandleDisconnect releases the connection and, when it had joined a room,
// emits the departure notice to the remaining members.
func (r *Relay) HandleDisconnect(connID string) {
	sess, ok := r.registry.Remove(connID)
	if !ok {
		return
	}

	if !sess.Joined() {
		r.logger.Debug("connection closed before joining", "connID", connID)
		return
	}

	r.members.Leave(connID, sess.Room)
	notice := chat.NewSystemMessage(sess.Room, fmt.Sprintf("%s left the chat", sess.Username))
	r.events.UserLeft(sess.Room, connID, notice)
	r.logger.Info("user left", "connID", connID, "room", sess.Room, "username", sess.Username)
}

func (r *Relay) handleJoin(connID string, payload json.RawMessage) {
	var req JoinPayload
	if err := json.Unmarshal(payload, &req); err != nil {
		r.logger.Debug("dropping malformed join_room", "connID", connID, "error", err)
		return
	}
	if req.Room == "" || req.Username == "" {
		r.logger.Debug("dropping incomplete join_room", "connID", connID, "room", req.Room)
		return
	}

	// A rejoin moves the connection: leave the old transport group first so
	// the connection is never a member of two rooms at once.
	if prev, ok := r.registry.Lookup(connID); ok && prev.Joined() && prev.Room != req.Room {
		r.members.Leave(connID, prev.Room)
	}

	if !r.registry.Bind(connID, req.Room, req.Username) {
		r.logger.Debug("dropping join_room for unknown connection", "connID", connID)
		return
	}
	r.members.Join(connID, req.Room)

	notice := chat.NewSystemMessage(req.Room, fmt.Sprintf("%s joined the chat", req.Username))
	r.events.UserJoined(req.Room, connID, notice)
	r.logger.Info("user joined", "connID", connID, "room", req.Room, "username", req.Username)
}

func (r *Relay) handleMessage(connID string, payload json.RawMessage) {
	var env messageEnvelope
	if err := json.Unmarshal(payload, &env); err != nil {
		r.logger.Debug("dropping malformed send_message", "connID", connID, "error", err)
		return
	}
	if env.Room == "" || !present(env.Message) {
		r.logger.Debug("dropping incomplete send_message", "connID", connID, "room", env.Room)
		return
	}

	// The payload is relayed verbatim; only room and message were inspected.
	r.events.MessageRelayed(env.Room, connID, payload)
}

func (r *Relay) handleTyping(connID string, payload json.RawMessage, isTyping bool) {
	var req TypingPayload
	if err := json.Unmarshal(payload, &req); err != nil {
		r.logger.Debug("dropping malformed typing event", "connID", connID, "error", err)
		return
	}
	if req.Room == "" || req.Username == "" {
		r.logger.Debug("dropping incomplete typing event", "connID", connID, "room", req.Room)
		return
	}

	r.events.TypingChanged(req.Room, connID, req.Username, isTyping)
}

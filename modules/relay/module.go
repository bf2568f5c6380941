package relay

import (
	"context"
	"encoding/json"
	"log"
	"log/slog"

	"github.com/go-monolith/mono"

	"github.com/example/nextchat/domain/chat"
	"github.com/example/nextchat/events"
)

// Module hosts the relay core and bridges it onto the event bus. Broadcasts
// leave the module as relay events; the broadcast module turns them into
// WebSocket frames.
type Module struct {
	registry *Registry
	relay    *Relay
	eventBus mono.EventBus
	members  Memberships
}

// Compile-time interface checks.
var (
	_ mono.Module              = (*Module)(nil)
	_ mono.EventBusAwareModule = (*Module)(nil)
	_ mono.EventEmitterModule  = (*Module)(nil)
	_ Memberships              = (*Module)(nil)
	_ EventSink                = (*Module)(nil)
)

// NewModule creates the relay module. The membership port is injected from
// main via SetMemberships before the application starts.
func NewModule() *Module {
	m := &Module{
		registry: NewRegistry(),
	}
	m.relay = NewRelay(m.registry, m, m)
	return m
}

// Name returns the module name.
func (m *Module) Name() string {
	return "relay"
}

// SetEventBus receives the EventBus from the framework.
func (m *Module) SetEventBus(bus mono.EventBus) {
	m.eventBus = bus
}

// SetMemberships wires the transport-level group membership primitive
// (the broadcast hub). Called from main before the application starts.
func (m *Module) SetMemberships(members Memberships) {
	m.members = members
}

// Relay returns the relay core for the transport gateway to drive.
func (m *Module) Relay() *Relay {
	return m.relay
}

// Registry returns the connection registry, exposed for health reporting.
func (m *Module) Registry() *Registry {
	return m.registry
}

// EmitEvents declares the events this module can emit.
func (m *Module) EmitEvents() []mono.BaseEventDefinition {
	return []mono.BaseEventDefinition{
		events.MessageRelayedV1.ToBase(),
		events.UserJoinedV1.ToBase(),
		events.UserLeftV1.ToBase(),
		events.TypingChangedV1.ToBase(),
	}
}

// Start verifies wiring.
func (m *Module) Start(_ context.Context) error {
	log.Println("[relay] Module started")
	return nil
}

// Stop shuts down the module.
func (m *Module) Stop(_ context.Context) error {
	log.Printf("[relay] Module stopped - %d connections were registered", m.registry.Count())
	return nil
}

// Join forwards to the injected membership port.
func (m *Module) Join(connID, room string) {
	if m.members != nil {
		m.members.Join(connID, room)
	}
}

// Leave forwards to the injected membership port.
func (m *Module) Leave(connID, room string) {
	if m.members != nil {
		m.members.Leave(connID, room)
	}
}

// MessageRelayed publishes a verbatim message relay onto the bus.
func (m *Module) MessageRelayed(room, senderID string, payload json.RawMessage) {
	event := events.MessageRelayedEvent{Room: room, SenderID: senderID, Payload: payload}
	if err := events.MessageRelayedV1.Publish(m.eventBus, event, nil); err != nil {
		slog.Warn("Failed to publish MessageRelayed event", "error", err)
	}
}

// UserJoined publishes a join notice onto the bus.
func (m *Module) UserJoined(room, senderID string, notice chat.SystemMessage) {
	event := events.UserJoinedEvent{Room: room, SenderID: senderID, Notice: notice}
	if err := events.UserJoinedV1.Publish(m.eventBus, event, nil); err != nil {
		slog.Warn("Failed to publish UserJoined event", "error", err)
	}
}

// UserLeft publishes a departure notice onto the bus.
func (m *Module) UserLeft(room, senderID string, notice chat.SystemMessage) {
	event := events.UserLeftEvent{Room: room, SenderID: senderID, Notice: notice}
	if err := events.UserLeftV1.Publish(m.eventBus, event, nil); err != nil {
		slog.Warn("Failed to publish UserLeft event", "error", err)
	}
}

// TypingChanged publishes a typing indicator change onto the bus.
func (m *Module) TypingChanged(room, senderID, username string, isTyping bool) {
	event := events.TypingChangedEvent{Room: room, SenderID: senderID, Username: username, IsTyping: isTyping}
	if err := events.TypingChangedV1.Publish(m.eventBus, event, nil); err != nil {
		slog.Warn("Failed to publish TypingChanged event", "error", err)
	}
}

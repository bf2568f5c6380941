package broadcast

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"

	"github.com/example/nextchat/domain/chat"
	"github.com/example/nextchat/events"
	"github.com/example/nextchat/modules/relay"
)

// Envelope is the outbound wire frame: a named event plus its payload.
type Envelope struct {
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
}

// Module consumes relay events from the bus and fans them out to the
// WebSocket connections in the target room, excluding the sender.
type Module struct {
	hub *Hub
}

// Compile-time interface checks.
var _ mono.Module = (*Module)(nil)
var _ mono.EventConsumerModule = (*Module)(nil)
var _ mono.HealthCheckableModule = (*Module)(nil)

// NewModule creates a new broadcast module.
func NewModule() *Module {
	return &Module{
		hub: NewHub(),
	}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "broadcast"
}

// Start initializes the module.
func (m *Module) Start(_ context.Context) error {
	log.Println("[broadcast] Module started - WebSocket hub ready")
	return nil
}

// Stop closes all client connections.
func (m *Module) Stop(_ context.Context) error {
	clientCount := m.hub.ClientCount()
	m.hub.CloseAll()
	log.Printf("[broadcast] Module stopped - %d clients were connected", clientCount)
	return nil
}

// Health returns the health status.
func (m *Module) Health(_ context.Context) mono.HealthStatus {
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"connected_clients": m.hub.ClientCount(),
			"active_rooms":      m.hub.RoomCount(),
		},
	}
}

// GetHub returns the hub for the transport gateway and the relay module.
func (m *Module) GetHub() *Hub {
	return m.hub
}

// RegisterEventConsumers subscribes to the relay events.
func (m *Module) RegisterEventConsumers(registry mono.EventRegistry) error {
	if err := helper.RegisterTypedEventConsumer(
		registry, events.MessageRelayedV1, m.handleMessageRelayed, m,
	); err != nil {
		return fmt.Errorf("failed to register MessageRelayed consumer: %w", err)
	}

	if err := helper.RegisterTypedEventConsumer(
		registry, events.UserJoinedV1, m.handleUserJoined, m,
	); err != nil {
		return fmt.Errorf("failed to register UserJoined consumer: %w", err)
	}

	if err := helper.RegisterTypedEventConsumer(
		registry, events.UserLeftV1, m.handleUserLeft, m,
	); err != nil {
		return fmt.Errorf("failed to register UserLeft consumer: %w", err)
	}

	if err := helper.RegisterTypedEventConsumer(
		registry, events.TypingChangedV1, m.handleTypingChanged, m,
	); err != nil {
		return fmt.Errorf("failed to register TypingChanged consumer: %w", err)
	}

	log.Println("[broadcast] Registered event consumers: MessageRelayed, UserJoined, UserLeft, TypingChanged")
	return nil
}

func (m *Module) handleMessageRelayed(_ context.Context, event events.MessageRelayedEvent, _ *mono.Msg) error {
	m.send(event.Room, event.SenderID, relay.EventReceiveMessage, event.Payload)
	return nil
}

func (m *Module) handleUserJoined(_ context.Context, event events.UserJoinedEvent, _ *mono.Msg) error {
	m.sendValue(event.Room, event.SenderID, relay.EventSystemMessage, event.Notice)
	return nil
}

func (m *Module) handleUserLeft(_ context.Context, event events.UserLeftEvent, _ *mono.Msg) error {
	m.sendValue(event.Room, event.SenderID, relay.EventSystemMessage, event.Notice)
	return nil
}

func (m *Module) handleTypingChanged(_ context.Context, event events.TypingChangedEvent, _ *mono.Msg) error {
	signal := chat.TypingSignal{Username: event.Username, IsTyping: event.IsTyping}
	m.sendValue(event.Room, event.SenderID, relay.EventUserTyping, signal)
	return nil
}

// sendValue marshals a payload value and fans the frame out to the room.
func (m *Module) sendValue(room, excludeID, event string, payload any) {
	raw, err := json.Marshal(payload)
	if err != nil {
		log.Printf("[broadcast] Failed to marshal %s payload: %v", event, err)
		return
	}
	m.send(room, excludeID, event, raw)
}

func (m *Module) send(room, excludeID, event string, payload json.RawMessage) {
	frame, err := json.Marshal(Envelope{Event: event, Payload: payload})
	if err != nil {
		log.Printf("[broadcast] Failed to marshal %s frame: %v", event, err)
		return
	}
	m.hub.Broadcast(room, excludeID, frame)
}

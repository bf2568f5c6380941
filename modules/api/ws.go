package api

import (
	"encoding/json"
	"log/slog"

	"github.com/gofiber/contrib/websocket"
	"github.com/google/uuid"

	"github.com/example/nextchat/modules/broadcast"
	"github.com/example/nextchat/modules/relay"
)

// Gateway terminates WebSocket connections and feeds inbound frames to
// the relay. Outbound traffic flows the other way: the broadcast hub
// writes directly to the registered connection.
type Gateway struct {
	hub    *broadcast.Hub
	relay  *relay.Relay
	logger *slog.Logger
}

// NewGateway creates a new Gateway.
func NewGateway(hub *broadcast.Hub, r *relay.Relay) *Gateway {
	return &Gateway{
		hub:    hub,
		relay:  r,
		logger: slog.Default().With("module", "api"),
	}
}

// HandleWebSocket runs the read loop for one client connection.
func (g *Gateway) HandleWebSocket(c *websocket.Conn) {
	connID := uuid.New().String()

	g.hub.Register(connID, c)
	g.relay.HandleConnect(connID)

	defer func() {
		// Disconnect ordering matters: the relay emits the departure
		// notice while the hub can still reach the remaining members.
		g.relay.HandleDisconnect(connID)
		g.hub.Unregister(connID)
		c.Close()
	}()

	g.logger.Info("WebSocket connected", "connID", connID)

	for {
		_, data, err := c.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				g.logger.Error("WebSocket error", "connID", connID, "error", err)
			}
			break
		}

		var frame broadcast.Envelope
		if err := json.Unmarshal(data, &frame); err != nil {
			g.logger.Debug("dropping unparseable frame", "connID", connID, "error", err)
			continue
		}
		if frame.Event == "" {
			g.logger.Debug("dropping frame without event name", "connID", connID)
			continue
		}

		g.relay.HandleEvent(connID, frame.Event, frame.Payload)
	}

	g.logger.Info("WebSocket disconnected", "connID", connID)
}

// Package server contains HTTP and WebSocket handlers for the application's API endpoints.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"wavelength/internal/middleware"
	"wavelength/internal/observability"
	"wavelength/internal/realtime"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// clientFrame is the inbound control frame clients send over the socket.
type clientFrame struct {
	Action  string `json:"action"`
	Channel string `json:"channel"`
}

// ack is the control response for subscribe/unsubscribe actions.
type ack struct {
	Event   string `json:"event"`
	Channel string `json:"channel"`
}

// WebSocketHandler handles WebSocket connections for the realtime fan-out.
// After the upgrade the client is auto-subscribed to its own user channel;
// conversation channels are joined explicitly with subscribe frames, each one
// checked against the channel authorizer.
func (s *Server) WebSocketHandler() fiber.Handler {
	wsLog := observability.NewWSLogger("realtime hub")

	return websocket.New(func(conn *websocket.Conn) {
		ctx := context.Background()

		userIDVal := conn.Locals("userID")
		if userIDVal == nil {
			_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"unauthorized"}`))
			_ = conn.Close()
			return
		}
		userID := userIDVal.(uint)

		if s.hub == nil {
			_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"realtime unavailable"}`))
			_ = conn.Close()
			return
		}

		client, err := s.hub.Register(userID, conn)
		if err != nil {
			wsLog.LogError(ctx, userID, err, "register")
			_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"`+err.Error()+`"}`))
			_ = conn.Close()
			return
		}

		// The handshake ticket is no longer needed once the socket is up.
		s.consumeWSTicket(ctx, conn.Locals("wsTicket"))

		wsLog.LogConnect(ctx, userID, client.SocketID)

		// Every principal always hears their own user channel.
		own := realtime.UserChannel(userID)
		s.hub.Subscribe(client, own)

		client.IncomingHandler = func(c *realtime.Client, message []byte) {
			var frame clientFrame
			if err := json.Unmarshal(message, &frame); err != nil {
				return
			}

			switch frame.Action {
			case "subscribe":
				ch, err := realtime.ParseChannel(frame.Channel)
				if err != nil {
					c.TrySend(mustMarshalAck(ack{Event: "subscription_denied", Channel: frame.Channel}))
					return
				}

				// Bound subscribe churn per user.
				id := fmt.Sprintf("user:%d", userID)
				allowed, _ := middleware.CheckRateLimit(ctx, s.redis, "ws_subscribe", id, 30, 10*time.Second)
				if !allowed {
					c.TrySend(mustMarshalAck(ack{Event: "subscription_denied", Channel: frame.Channel}))
					return
				}

				if !s.authorizer.Authorize(ctx, userID, ch) {
					wsLog.LogSubscription(ctx, userID, ch.String(), "subscribe", false)
					c.TrySend(mustMarshalAck(ack{Event: "subscription_denied", Channel: ch.String()}))
					return
				}

				s.hub.Subscribe(c, ch)
				wsLog.LogSubscription(ctx, userID, ch.String(), "subscribe", true)
				c.TrySend(mustMarshalAck(ack{Event: "subscribed", Channel: ch.String()}))

			case "unsubscribe":
				ch, err := realtime.ParseChannel(frame.Channel)
				if err != nil {
					return
				}
				// The own user channel subscription is permanent.
				if ch == own {
					return
				}
				s.hub.Unsubscribe(c, ch)
				wsLog.LogSubscription(ctx, userID, ch.String(), "unsubscribe", true)
				c.TrySend(mustMarshalAck(ack{Event: "unsubscribed", Channel: ch.String()}))
			}
		}

		// Tell the client its socket ID so it can exclude itself when acting.
		welcome, _ := json.Marshal(fiber.Map{
			"event": "connected",
			"payload": fiber.Map{
				"user_id":   userID,
				"socket_id": client.SocketID,
				"channel":   own.String(),
			},
		})
		client.TrySend(welcome)

		// Start write pump in a goroutine
		go client.WritePump()

		// Read pump runs in the main handler goroutine (blocking)
		client.ReadPump()

		wsLog.LogDisconnect(ctx, userID, client.SocketID, "connection closed")
	})
}

func mustMarshalAck(a ack) []byte {
	b, _ := json.Marshal(a)
	return b
}

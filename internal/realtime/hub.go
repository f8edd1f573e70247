package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"

	"github.com/gofiber/websocket/v2"

	"wavelength/internal/observability"
)

const (
	// Max connections per user
	maxConnsPerUser = 12
	// Max total connections
	maxTotalConns = 10000
)

// Frame is what subscribers receive on the socket.
type Frame struct {
	Event   string          `json:"event"`
	Channel string          `json:"channel"`
	Payload json.RawMessage `json:"payload"`
}

// Hub routes channel events to the local websocket subscribers of each
// channel. Subscriptions are created only after the authorizer admits the
// principal; the hub itself is purely mechanical.
type Hub struct {
	mu         sync.RWMutex
	subs       map[Channel]map[*Client]struct{}
	byUser     map[uint]map[*Client]struct{}
	totalConns int
	shutdown   chan struct{}
	done       chan struct{}
}

// NewHub creates a new Hub instance.
func NewHub() *Hub {
	return &Hub{
		subs:     make(map[Channel]map[*Client]struct{}),
		byUser:   make(map[uint]map[*Client]struct{}),
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Name returns a human-readable identifier for this hub.
func (h *Hub) Name() string { return "realtime hub" }

// Register a connection for a given userID. Returns the Client or error if limits exceeded.
func (h *Hub) Register(userID uint, conn *websocket.Conn) (*Client, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.totalConns >= maxTotalConns {
		return nil, errors.New("server connection limit reached")
	}

	m, ok := h.byUser[userID]
	if !ok {
		m = make(map[*Client]struct{})
		h.byUser[userID] = m
	}

	if len(m) >= maxConnsPerUser {
		return nil, errors.New("user connection limit reached")
	}

	client := NewClient(h, conn, userID)
	m[client] = struct{}{}
	h.totalConns++
	observability.WebSocketConnectionsTotal.Inc()

	return client, nil
}

// UnregisterClient drops the client from every channel and the user index.
func (h *Hub) UnregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for ch := range client.channels {
		if m, ok := h.subs[ch]; ok {
			delete(m, client)
			if len(m) == 0 {
				delete(h.subs, ch)
			}
		}
		observability.ChannelSubscriptions.WithLabelValues(string(ch.Family)).Dec()
	}
	client.channels = make(map[Channel]struct{})

	if m, ok := h.byUser[client.UserID]; ok {
		if _, exists := m[client]; exists {
			delete(m, client)
			h.totalConns--
			observability.WebSocketConnectionsTotal.Dec()
		}
		if len(m) == 0 {
			delete(h.byUser, client.UserID)
		}
	}
}

// Subscribe attaches the client to a channel. Authorization must already have
// happened.
func (h *Hub) Subscribe(client *Client, ch Channel) {
	h.mu.Lock()
	defer h.mu.Unlock()

	m, ok := h.subs[ch]
	if !ok {
		m = make(map[*Client]struct{})
		h.subs[ch] = m
	}
	if _, already := client.channels[ch]; !already {
		observability.ChannelSubscriptions.WithLabelValues(string(ch.Family)).Inc()
	}
	m[client] = struct{}{}
	client.channels[ch] = struct{}{}
}

// Unsubscribe detaches the client from a channel.
func (h *Hub) Unsubscribe(client *Client, ch Channel) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if m, ok := h.subs[ch]; ok {
		delete(m, client)
		if len(m) == 0 {
			delete(h.subs, ch)
		}
	}
	if _, had := client.channels[ch]; had {
		observability.ChannelSubscriptions.WithLabelValues(string(ch.Family)).Dec()
	}
	delete(client.channels, ch)
}

// IsSubscribed reports whether the client currently holds the subscription.
func (h *Hub) IsSubscribed(client *Client, ch Channel) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := client.channels[ch]
	return ok
}

// IsOnline reports whether a user currently has at least one active websocket connection.
func (h *Hub) IsOnline(userID uint) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	clients, ok := h.byUser[userID]
	return ok && len(clients) > 0
}

// Broadcast delivers the frame to every local subscriber of the channel,
// skipping connections named by the exclusion.
func (h *Hub) Broadcast(ch Channel, frame []byte, exclude Exclusion) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	clients, ok := h.subs[ch]
	if !ok {
		return
	}
	for c := range clients {
		if exclude.SocketID != "" {
			if c.SocketID == exclude.SocketID {
				continue
			}
		} else if exclude.UserID != 0 && c.UserID == exclude.UserID {
			continue
		}
		c.TrySend(frame)
	}
}

// StartWiring connects the Notifier to this hub: envelopes arriving on the
// Redis patterns are unpacked into client frames and delivered locally.
func (h *Hub) StartWiring(ctx context.Context, n *Notifier) error {
	return n.StartPatternSubscriber(ctx, func(channel, payload string) {
		ch, err := ParseRedisChannel(channel)
		if err != nil {
			slog.Warn("unroutable realtime message", "channel", channel, "error", err)
			return
		}

		var env Envelope
		if err := json.Unmarshal([]byte(payload), &env); err != nil {
			slog.Warn("malformed realtime envelope", "channel", channel, "error", err)
			return
		}

		frame, err := json.Marshal(Frame{
			Event:   env.Event,
			Channel: env.Channel,
			Payload: env.Payload,
		})
		if err != nil {
			slog.Warn("unmarshalable realtime frame", "channel", channel, "error", err)
			return
		}
		observability.EventsBroadcastTotal.WithLabelValues(env.Event).Inc()
		h.Broadcast(ch, frame, env.Exclude)
	})
}

// Shutdown gracefully closes all websocket connections
func (h *Hub) Shutdown(_ context.Context) error {
	close(h.shutdown)

	h.mu.Lock()
	for userID, userConns := range h.byUser {
		for client := range userConns {
			if client.Conn == nil {
				continue
			}
			// Send close message to client
			if err := client.Conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "Server shutting down")); err != nil {
				slog.Error("failed to write close message", "user_id", userID, "error", err)
			}
			// Close the connection
			if err := client.Conn.Close(); err != nil {
				slog.Error("failed to close websocket", "user_id", userID, "error", err)
			}
		}
	}
	h.subs = make(map[Channel]map[*Client]struct{})
	h.byUser = make(map[uint]map[*Client]struct{})
	h.totalConns = 0
	h.mu.Unlock()

	// Signal completion
	close(h.done)

	return nil
}

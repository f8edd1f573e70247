package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/redis/go-redis/v9"
)

// Envelope is the wire form carried over Redis between publishers and hubs.
type Envelope struct {
	Event   string          `json:"event"`
	Channel string          `json:"channel"`
	Payload json.RawMessage `json:"payload"`
	Exclude Exclusion       `json:"exclude,omitempty"`
}

// Notifier publishes realtime events into Redis channels. A nil Redis client
// degrades to a no-op so the app keeps serving without live updates.
type Notifier struct {
	rdb *redis.Client
}

// NewNotifier creates a new Notifier instance using the provided Redis client.
func NewNotifier(rdb *redis.Client) *Notifier {
	return &Notifier{rdb: rdb}
}

// Publish dispatches the event to its channel's Redis topic. Failures are the
// caller's to log; they must never surface to the request that triggered the
// event.
func (n *Notifier) Publish(ctx context.Context, ev Event) error {
	if n.rdb == nil {
		return nil
	}

	payload, err := json.Marshal(ev.Payload())
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", ev.Name(), err)
	}
	ch := ev.Channel()
	env := Envelope{
		Event:   ev.Name(),
		Channel: ch.String(),
		Payload: payload,
		Exclude: ev.Exclusion(),
	}
	raw, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal %s envelope: %w", ev.Name(), err)
	}
	return n.rdb.Publish(ctx, ch.RedisChannel(), string(raw)).Err()
}

// StartPatternSubscriber subscribes to every realtime topic and calls
// onMessage for each envelope. onMessage receives the Redis channel and the
// raw payload; a panic inside it is contained so one bad message cannot kill
// the subscriber.
func (n *Notifier) StartPatternSubscriber(
	ctx context.Context, onMessage func(channel string, payload string),
) error {
	if n.rdb == nil {
		return nil
	}
	sub := n.rdb.PSubscribe(ctx, "rt:user:*", "rt:conversation:*")
	ch := sub.Channel()

	go func() {
		defer func() { _ = sub.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				func() {
					defer func() {
						if r := recover(); r != nil {
							slog.Error("panic in realtime subscriber",
								"panic", r, "stack", string(debug.Stack()))
						}
					}()
					onMessage(msg.Channel, msg.Payload)
				}()
			}
		}
	}()

	return nil
}

// Package notifications publishes blog events to Redis and fans them out to live feed sockets.
package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"runtime/debug"

	"inkwell/internal/middleware"
	"inkwell/internal/observability"

	"github.com/redis/go-redis/v9"
)

// EventsChannel is the Redis pub/sub channel carrying every blog event.
const EventsChannel = "inkwell:events"

// Event type constants prevent typos in event names.
const (
	EventPostCreated            = "post_created"
	EventPostUpdated            = "post_updated"
	EventPostDeleted            = "post_deleted"
	EventPostLiked              = "post_liked"
	EventCommentCreated         = "comment_created"
	EventCommentDeleted         = "comment_deleted"
	EventCommentReactionUpdated = "comment_reaction_updated"
)

// Event is the wire form of a published event.
type Event struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// Encode marshals an event of the given type.
func Encode(eventType string, payload interface{}) ([]byte, error) {
	data, err := json.Marshal(Event{Type: eventType, Payload: payload})
	if err != nil {
		return nil, fmt.Errorf("marshal %s event: %w", eventType, err)
	}
	return data, nil
}

// Notifier publishes events into Redis.
type Notifier struct {
	rdb *redis.Client
}

// NewNotifier creates a new Notifier instance using the provided Redis client.
func NewNotifier(rdb *redis.Client) *Notifier {
	return &Notifier{rdb: rdb}
}

// Enabled reports whether events go through Redis.
func (n *Notifier) Enabled() bool {
	return n != nil && n.rdb != nil
}

// Publish sends an encoded event to EventsChannel. Without Redis it is a no-op.
func (n *Notifier) Publish(ctx context.Context, message []byte) (err error) {
	if !n.Enabled() {
		return nil
	}
	ctx, span := observability.StartRedisSpan(ctx, "publish")
	defer func() { observability.EndSpan(span, err) }()

	return n.rdb.Publish(ctx, EventsChannel, message).Err()
}

// StartEventSubscriber subscribes to EventsChannel and calls onMessage for each payload
// until ctx is done.
func (n *Notifier) StartEventSubscriber(ctx context.Context, onMessage func(payload string)) error {
	if !n.Enabled() {
		return nil
	}

	sub := n.rdb.Subscribe(ctx, EventsChannel)
	// Wait for the subscription to be confirmed so no early publish is missed.
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("subscribe %s: %w", EventsChannel, err)
	}
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
							middleware.Logger.Error("panic in event subscriber",
								slog.Any("panic", r),
								slog.String("stack", string(debug.Stack())),
							)
						}
					}()
					onMessage(msg.Payload)
				}()
			}
		}
	}()

	return nil
}

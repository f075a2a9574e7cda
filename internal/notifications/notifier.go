package notifications

import (
	"context"
	"log"
	"runtime/debug"
	"sync"

	"meydan/internal/observability"

	"github.com/redis/go-redis/v9"
)

// Notifier publishes and subscribes to change events over Redis pub/sub.
// It is the default change-feed driver.
type Notifier struct {
	rdb *redis.Client
}

// NewNotifier creates a new Notifier instance using the provided Redis client.
func NewNotifier(rdb *redis.Client) *Notifier {
	return &Notifier{rdb: rdb}
}

// Publish sends a change event to the feed channel. A nil Redis client is
// tolerated so the app degrades to polling-free single-client behavior.
func (n *Notifier) Publish(ctx context.Context, e Event) error {
	if n.rdb == nil {
		return nil
	}
	observability.ChangeEventsPublished.WithLabelValues(e.Table, e.Op).Inc()
	return n.rdb.Publish(ctx, FeedChannel, e.Encode()).Err()
}

// Subscribe starts a goroutine delivering every feed event to onEvent and
// returns an unsubscribe function that tears the connection down.
func (n *Notifier) Subscribe(ctx context.Context, onEvent func(Event)) (func(), error) {
	if n.rdb == nil {
		return func() {}, nil
	}

	sub := n.rdb.Subscribe(ctx, FeedChannel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, err
	}
	ch := sub.Channel()

	done := make(chan struct{})
	go func() {
		defer func() { _ = sub.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case <-done:
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				func() {
					defer func() {
						if r := recover(); r != nil {
							log.Printf("PANIC in feed subscriber: %v\n%s", r, debug.Stack())
						}
					}()
					onEvent(DecodeEvent(msg.Payload))
				}()
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() { close(done) })
	}, nil
}

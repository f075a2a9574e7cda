package notifications

import (
	"context"
	"fmt"
	"log"
	"strings"

	"meydan/internal/observability"

	"github.com/jackc/pgx/v5/pgxpool"
)

// pgChannel is the LISTEN/NOTIFY channel name. Distinct from FeedChannel
// because Postgres channel names cannot contain colons.
const pgChannel = "feed_changes"

// PGChangeFeed carries change events over Postgres LISTEN/NOTIFY, for
// deployments that want the change feed on the database itself instead of
// Redis. Exactly one driver is active per deployment.
type PGChangeFeed struct {
	pool *pgxpool.Pool
}

// NewPGChangeFeed connects a pgx pool to the given DSN.
func NewPGChangeFeed(ctx context.Context, dsn string) (*PGChangeFeed, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("pg change feed: %w", err)
	}
	return &PGChangeFeed{pool: pool}, nil
}

// Close releases the underlying pool.
func (f *PGChangeFeed) Close() {
	f.pool.Close()
}

// Ping checks the pool. Used by readiness probes when this driver is active.
func (f *PGChangeFeed) Ping(ctx context.Context) error {
	return f.pool.Ping(ctx)
}

// Publish emits a change event via pg_notify.
func (f *PGChangeFeed) Publish(ctx context.Context, e Event) error {
	observability.ChangeEventsPublished.WithLabelValues(e.Table, e.Op).Inc()
	_, err := f.pool.Exec(ctx, "SELECT pg_notify($1, $2)", pgChannel, e.Encode())
	return err
}

// Subscribe acquires a dedicated connection, LISTENs on the feed channel,
// and delivers notifications until the returned unsubscribe function is
// called or ctx is cancelled.
func (f *PGChangeFeed) Subscribe(ctx context.Context, onEvent func(Event)) (func(), error) {
	conn, err := f.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("pg change feed acquire: %w", err)
	}
	if _, err := conn.Exec(ctx, "LISTEN "+pgChannel); err != nil {
		conn.Release()
		return nil, fmt.Errorf("pg change feed listen: %w", err)
	}

	subCtx, cancel := context.WithCancel(ctx)
	go func() {
		defer conn.Release()
		for {
			notification, err := conn.Conn().WaitForNotification(subCtx)
			if err != nil {
				if subCtx.Err() == nil && !strings.Contains(err.Error(), "closed") {
					log.Printf("pg change feed: wait failed: %v", err)
				}
				return
			}
			onEvent(DecodeEvent(notification.Payload))
		}
	}()

	return cancel, nil
}

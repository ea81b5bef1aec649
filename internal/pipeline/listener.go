// Package pipeline wires the real-time path: a notification listener feeding
// a round-robin queue feeding a fixed pool of workers.
package pipeline

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/knetproto/kindex/internal/logging"
	"github.com/knetproto/kindex/internal/metrics"
)

// notifyConn is the slice of *pgx.Conn the listener needs; a seam for tests.
type notifyConn interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	WaitForNotification(ctx context.Context) (*pgconn.Notification, error)
	Close(ctx context.Context) error
}

type connectFunc func(ctx context.Context, dsn string) (notifyConn, error)

func pgxConnect(ctx context.Context, dsn string) (notifyConn, error) {
	return pgx.Connect(ctx, dsn)
}

// Listener holds one long-lived LISTEN subscription and forwards each
// notification payload (the hex transaction id) in arrival order. On channel
// loss it reconnects after a fixed pause; missed events are not replayed.
// Re-reads are by primary key and persistence is idempotent, so a gap only
// delays work, it never corrupts it.
type Listener struct {
	dsn            string
	channel        string
	reconnectDelay time.Duration
	log            logging.Logger
	connect        connectFunc
}

func NewListener(dsn, channel string, reconnectDelay time.Duration, log logging.Logger) *Listener {
	return &Listener{
		dsn:            dsn,
		channel:        channel,
		reconnectDelay: reconnectDelay,
		log:            log.With("component", "listener"),
		connect:        pgxConnect,
	}
}

// Run blocks until ctx is cancelled, re-subscribing on every failure.
func (l *Listener) Run(ctx context.Context, out chan<- string) {
	for {
		if err := l.listen(ctx, out); err != nil && ctx.Err() == nil {
			l.log.Error(ctx, "notification channel lost", "error", err)
			metrics.ListenerReconnects.Inc()
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(l.reconnectDelay):
		}
	}
}

func (l *Listener) listen(ctx context.Context, out chan<- string) error {
	conn, err := l.connect(ctx, l.dsn)
	if err != nil {
		return err
	}
	defer conn.Close(context.Background())

	if _, err := conn.Exec(ctx, "listen "+pgx.Identifier{l.channel}.Sanitize()); err != nil {
		return err
	}
	l.log.Info(ctx, "subscribed", "channel", l.channel)

	for {
		notification, err := conn.WaitForNotification(ctx)
		if err != nil {
			return err
		}
		select {
		case out <- notification.Payload:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

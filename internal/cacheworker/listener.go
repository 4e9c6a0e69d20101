package cacheworker

import (
	"context"
	"errors"
	"time"

	"github.com/dmarakov/storypin/internal/logging"
	"nhooyr.io/websocket"
)

const (
	reconnectBaseDelay = 1 * time.Second
	reconnectMaxDelay  = 30 * time.Second
)

// PushHandler consumes raw push messages. Satisfied by
// (*Dispatcher).HandlePush.
type PushHandler func(ctx context.Context, data []byte) error

// Listener keeps a websocket subscription to the push endpoint open,
// reconnecting with capped exponential backoff when the link drops.
type Listener struct {
	url     string
	handler PushHandler
	log     logging.Logger
}

func NewListener(url string, handler PushHandler, log logging.Logger) *Listener {
	return &Listener{
		url:     url,
		handler: handler,
		log:     log.With("component", "push-listener"),
	}
}

// Listen blocks until the context is canceled, feeding every received
// message to the handler. Connection failures are retried forever; handler
// failures are logged and do not stop the loop.
func (l *Listener) Listen(ctx context.Context) error {
	delay := reconnectBaseDelay

	for {
		connected, err := l.connectAndRead(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if connected {
			delay = reconnectBaseDelay
		}
		l.log.Warn(ctx, "push connection lost, reconnecting", "delay", delay, "error", err)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}

		delay *= 2
		if delay > reconnectMaxDelay {
			delay = reconnectMaxDelay
		}
	}
}

func (l *Listener) connectAndRead(ctx context.Context) (bool, error) {
	conn, _, err := websocket.Dial(ctx, l.url, nil)
	if err != nil {
		return false, err
	}
	defer conn.Close(websocket.StatusNormalClosure, "")

	l.log.Info(ctx, "push connection established", "url", l.url)

	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			return true, err
		}
		if err := l.handler(ctx, data); err != nil && !errors.Is(err, context.Canceled) {
			l.log.Warn(ctx, "push handler failed", "error", err)
		}
	}
}

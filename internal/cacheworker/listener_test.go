package cacheworker

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dmarakov/storypin/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"nhooyr.io/websocket"
)

func TestListener_DeliversMessagesToHandler(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		ctx := r.Context()
		_ = conn.Write(ctx, websocket.MessageText, []byte(`{"title":"first"}`))
		_ = conn.Write(ctx, websocket.MessageText, []byte(`{"title":"second"}`))
		conn.Close(websocket.StatusNormalClosure, "done")
	}))
	defer srv.Close()

	var mu sync.Mutex
	var got []string
	handler := func(_ context.Context, data []byte) error {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, string(data))
		return nil
	}

	wsURL := strings.Replace(srv.URL, "http://", "ws://", 1)
	l := NewListener(wsURL, handler, logging.Nop{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- l.Listen(ctx) }()

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) >= 2
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{`{"title":"first"}`, `{"title":"second"}`}, got[:2])
}

func TestListener_StopsOnContextCancel(t *testing.T) {
	// Nothing is listening on this address, so the listener sits in its
	// reconnect loop until canceled.
	l := NewListener("ws://127.0.0.1:1", func(context.Context, []byte) error { return nil }, logging.Nop{})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := l.Listen(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

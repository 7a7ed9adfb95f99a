package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kiva-console/internal/event"
)

func TestHubGreetsAndBroadcasts(t *testing.T) {
	bus := event.NewBus()
	hub := NewHub(bus, func() event.Event {
		return event.New(event.TypeSessionRestored, "alice", map[string]bool{"isAuthenticated": true})
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	server := httptest.NewServer(httpHandler(hub))
	defer server.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(server.URL, "http"), nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))

	var greeting event.Event
	require.NoError(t, conn.ReadJSON(&greeting))
	assert.Equal(t, event.TypeSessionRestored, greeting.Type)
	assert.Equal(t, "alice", greeting.Username)

	bus.Publish(event.New(event.TypeSessionLoggedOut, "alice", nil))

	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)
	var next event.Event
	require.NoError(t, json.Unmarshal(raw, &next))
	assert.Equal(t, event.TypeSessionLoggedOut, next.Type)
}

func TestHubStopsWithContext(t *testing.T) {
	bus := event.NewBus()
	hub := NewHub(bus, nil)

	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()

	cancel()
	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("hub did not stop")
	}
	assert.Eventually(t, func() bool { return bus.Subscribers() == 0 }, time.Second, 10*time.Millisecond)
}

func httpHandler(h *Hub) http.HandlerFunc {
	return h.ServeWS
}

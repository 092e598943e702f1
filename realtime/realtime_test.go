package realtime

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"

	"github.com/dineflow/pos-backend/utils"
)

func TestSubscriptionMatching(t *testing.T) {
	tests := []struct {
		name  string
		sub   Subscription
		event Event
		want  bool
	}{
		{
			name:  "wildcard subscription sees everything",
			sub:   Subscription{},
			event: Event{Type: EventOrderUpdate, OutletID: 1},
			want:  true,
		},
		{
			name:  "other outlet filtered",
			sub:   Subscription{OutletID: 2},
			event: Event{Type: EventOrderUpdate, OutletID: 1},
			want:  false,
		},
		{
			name:  "station display only sees its station",
			sub:   Subscription{OutletID: 1, Station: "bar"},
			event: Event{Type: EventKOTUpdate, OutletID: 1, Station: "kitchen"},
			want:  false,
		},
		{
			name:  "unscoped event reaches station display",
			sub:   Subscription{OutletID: 1, Station: "bar"},
			event: Event{Type: EventTableUpdate, OutletID: 1},
			want:  true,
		},
		{
			name:  "role-scoped event hidden from other roles",
			sub:   Subscription{OutletID: 1, Role: "waiter"},
			event: Event{Type: EventBillStatus, OutletID: 1, Role: "cashier"},
			want:  false,
		},
		{
			name:  "admin sees role-scoped events",
			sub:   Subscription{OutletID: 1, Role: "admin"},
			event: Event{Type: EventBillStatus, OutletID: 1, Role: "cashier"},
			want:  true,
		},
		{
			name:  "floor filter",
			sub:   Subscription{OutletID: 1, FloorID: 2},
			event: Event{Type: EventTableUpdate, OutletID: 1, FloorID: 1},
			want:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, matches(tt.sub, tt.event))
		})
	}
}

func TestChannels(t *testing.T) {
	event := Event{Type: EventKOTUpdate, OutletID: 3, FloorID: 1, Station: "bar"}
	assert.Equal(t, []string{"pos:3", "pos:3:floor:1", "pos:3:station:bar"}, Channels(event))

	assert.Equal(t, []string{"pos:3"}, Channels(Event{OutletID: 3}))
}

func TestHubBroadcastToMatchingClient(t *testing.T) {
	utils.InitLogger()
	hub := NewHub()

	upgrader := websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		hub.Register(ws, Subscription{OutletID: 1, Station: "bar"})
	}))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	client, _, err := websocket.DefaultDialer.Dial(url, nil)
	assert.NoError(t, err)
	defer client.Close()

	// Give the server handler time to register the connection.
	deadline := time.Now().Add(time.Second)
	for {
		hub.mutex.Lock()
		n := len(hub.clients)
		hub.mutex.Unlock()
		if n == 1 || time.Now().After(deadline) {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}

	publisher := NewLocalPublisher(hub)
	publisher.Publish(context.Background(), Event{Type: EventKOTUpdate, OutletID: 1, Station: "kitchen"})
	publisher.Publish(context.Background(), Event{Type: EventKOTUpdate, OutletID: 1, Station: "bar"})

	client.SetReadDeadline(time.Now().Add(time.Second))
	_, payload, err := client.ReadMessage()
	assert.NoError(t, err)

	// The kitchen event was filtered; the first frame is the bar one.
	assert.Contains(t, string(payload), `"kot:update"`)
	assert.Contains(t, string(payload), `"station":"bar"`)
	assert.True(t, publisher.Healthy())
}

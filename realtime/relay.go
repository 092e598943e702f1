package realtime

import (
	"context"
	"encoding/json"

	"github.com/go-redis/redis/v8"

	"github.com/dineflow/pos-backend/utils"
)

// Relay subscribes to the broker and forwards events published by other
// process instances into the local hub, so a websocket client connected to
// this instance still sees changes made elsewhere.
type Relay struct {
	rdb *redis.Client
	hub *Hub
}

func NewRelay(rdb *redis.Client, hub *Hub) *Relay {
	return &Relay{rdb: rdb, hub: hub}
}

// Start runs the subscription loop until ctx is cancelled. The go-redis
// PubSub reconnects on its own after broker outages.
func (r *Relay) Start(ctx context.Context) {
	pubsub := r.rdb.PSubscribe(ctx, "pos:*")

	go func() {
		defer pubsub.Close()
		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				// Only the outlet-wide channel is relayed; the narrower
				// channels carry the same payload.
				var event Event
				if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
					utils.ErrorLogger.Printf("realtime: relay unmarshal: %v", err)
					continue
				}
				if msg.Channel != Channels(event)[0] {
					continue
				}
				r.hub.BroadcastRaw(event, []byte(msg.Payload))
			}
		}
	}()
}

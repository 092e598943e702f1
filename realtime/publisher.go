package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/dineflow/pos-backend/utils"
)

// Event types carried on the realtime channels.
const (
	EventTableUpdate   = "table:update"
	EventOrderUpdate   = "order:update"
	EventKOTUpdate     = "kot:update"
	EventBillStatus    = "bill:status"
	EventPaymentUpdate = "payment:update"
)

// Event is one state change pushed to displays and terminals. OutletID is
// always set; FloorID, Station and Role narrow the audience when relevant.
type Event struct {
	Type     string      `json:"event"`
	OutletID uint        `json:"outlet_id"`
	FloorID  uint        `json:"floor_id,omitempty"`
	Station  string      `json:"station,omitempty"`
	Role     string      `json:"role,omitempty"`
	Data     interface{} `json:"data"`
}

// Publisher fans state changes out to observers. Publication is
// fire-and-forget: it must never block or fail the mutating operation.
type Publisher interface {
	Publish(ctx context.Context, event Event)
	Healthy() bool
}

// LocalPublisher delivers within the current process only.
type LocalPublisher struct {
	Hub *Hub
}

func NewLocalPublisher(hub *Hub) *LocalPublisher {
	return &LocalPublisher{Hub: hub}
}

func (p *LocalPublisher) Publish(_ context.Context, event Event) {
	p.Hub.Broadcast(event)
}

// Healthy is always true for in-process delivery.
func (p *LocalPublisher) Healthy() bool { return true }

// BrokerPublisher publishes through redis so every process instance sees the
// event, and always delivers locally as well. When the broker is unreachable
// it degrades to local-only delivery and flips its health flag; state stays
// recoverable from the database, so this is a documented degradation rather
// than an error the caller sees.
type BrokerPublisher struct {
	rdb     *redis.Client
	local   *LocalPublisher
	healthy atomic.Bool
}

func NewBrokerPublisher(rdb *redis.Client, local *LocalPublisher) *BrokerPublisher {
	p := &BrokerPublisher{rdb: rdb, local: local}
	p.healthy.Store(true)
	return p
}

func (p *BrokerPublisher) Publish(ctx context.Context, event Event) {
	p.local.Publish(ctx, event)

	data, err := json.Marshal(event)
	if err != nil {
		utils.ErrorLogger.Printf("realtime: marshal event %s: %v", event.Type, err)
		return
	}

	// Broker delivery runs off the request path so a slow or dead broker
	// never stalls the mutating operation.
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		failed := false
		for _, channel := range Channels(event) {
			if err := p.rdb.Publish(ctx, channel, data).Err(); err != nil {
				utils.ErrorLogger.Printf("realtime: publish %s to %s: %v", event.Type, channel, err)
				failed = true
			}
		}
		if failed {
			p.healthy.Store(false)
		} else if !p.healthy.Load() {
			p.healthy.Store(true)
			utils.InfoLogger.Printf("realtime: broker delivery recovered")
		}
	}()
}

// Healthy reports whether the last broker publish round succeeded. Exposed
// on the health endpoint so degraded mode is observable, not inferred from
// logs.
func (p *BrokerPublisher) Healthy() bool { return p.healthy.Load() }

// Channels lists the redis channels one event fans out on: the outlet-wide
// channel plus one per narrowing dimension.
func Channels(event Event) []string {
	channels := []string{fmt.Sprintf("pos:%d", event.OutletID)}
	if event.FloorID != 0 {
		channels = append(channels, fmt.Sprintf("pos:%d:floor:%d", event.OutletID, event.FloorID))
	}
	if event.Station != "" {
		channels = append(channels, fmt.Sprintf("pos:%d:station:%s", event.OutletID, event.Station))
	}
	if event.Role != "" {
		channels = append(channels, fmt.Sprintf("pos:%d:role:%s", event.OutletID, event.Role))
	}
	return channels
}

package notewatcher

import (
	"context"
	"strings"

	"github.com/redis/go-redis/v9"

	"presenceboard/internal/events"
)

// Run listens to key-expiry events so room cards refresh the moment a
// note ages out, not on the next unrelated transition.
// Run must be started once at service boot.
func Run(ctx context.Context, rdb *redis.Client, bus *events.Bus) {
	_ = rdb.ConfigSet(ctx, "notify-keyspace-events", "Ex").Err()
	ps := rdb.PSubscribe(ctx, "__keyevent@*__:expired")
	for {
		select {
		case <-ctx.Done():
			return
		case m := <-ps.Channel():
			if !strings.HasPrefix(m.Payload, "note:") {
				continue
			}
			room := strings.TrimPrefix(m.Payload, "note:")
			bus.PublishRoom(events.RoomChanged{Room: room})
		}
	}
}

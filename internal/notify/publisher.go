package notify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// Publisher is the narrow fan-out contract: fire-and-forget delivery of one
// event to one room. The transactional core is testable without any
// networking behind this.
type Publisher interface {
	Publish(ctx context.Context, room, event string, payload any) error
}

// Envelope is the wire shape on the pub/sub channel.
type Envelope struct {
	Event      string    `json:"event"`
	Room       string    `json:"room"`
	OccurredAt time.Time `json:"occurredAt"`
	Payload    any       `json:"payload"`
}

type RedisPublisher struct {
	rdb *redis.Client
}

func NewRedisPublisher(rdb *redis.Client) *RedisPublisher {
	return &RedisPublisher{rdb: rdb}
}

func (p *RedisPublisher) Publish(ctx context.Context, room, event string, payload any) error {
	env := Envelope{
		Event:      event,
		Room:       room,
		OccurredAt: time.Now().UTC(),
		Payload:    payload,
	}

	b, err := json.Marshal(env)
	if err != nil {
		return err
	}
	return p.rdb.Publish(ctx, "room:"+room, b).Err()
}

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Predefinied Queue IDs. One list per entity.
const (
	SellerEventsQueue = "sellers.events"
	BookEventsQueue   = "books.events"
)

// Event kinds.
const (
	EventCreated = "created"
	EventUpdated = "updated"
	EventDeleted = "deleted"
)

// Event describes a committed change on a seller or a book.
type Event struct {
	Kind   string          `json:"kind"`
	Entity string          `json:"entity"`
	ID     int64           `json:"id"`
	At     time.Time       `json:"at"`
	Data   json.RawMessage `json:"data,omitempty"`
}

// NewEvent builds an event with data encoded as json. A nil data
// value leaves the payload empty, as for deletions.
func NewEvent(kind, entity string, id int64, at time.Time, data interface{}) (Event, error) {
	e := Event{Kind: kind, Entity: entity, ID: id, At: at}
	if data == nil {
		return e, nil
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return e, fmt.Errorf("event: encode %s data: %w", entity, err)
	}
	e.Data = raw
	return e, nil
}

// Ensure queues implement Queuer.
var (
	_ Queuer = (*redisQueue)(nil)
	_ Queuer = (*noopQueue)(nil)
)

// Queuer describes a queue.
type Queuer interface {
	Push(ctx context.Context, qid string, event Event) error
	Pop(ctx context.Context, qids ...string) (string, Event, error)
}

// GetRedisClient provides a ready to use redis client.
func GetRedisClient(config *Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:                  fmt.Sprintf("%s:%s", config.Redis.Host, config.Redis.Port),
		DialTimeout:           config.Redis.DialTimeout,
		ReadTimeout:           config.Redis.ReadTimeout,
		WriteTimeout:          config.Redis.WriteTimeout,
		PoolSize:              config.Redis.PoolSize,
		PoolTimeout:           config.Redis.PoolTimeout,
		Password:              config.Redis.Password,
		Username:              config.Redis.Username,
		DB:                    config.Redis.DatabaseIndex,
		ContextTimeoutEnabled: true,
	})

	// test connection.
	if pong, err := client.Ping(context.Background()).Result(); pong != "PONG" || err != nil {
		return client, fmt.Errorf("test connection failed: %v", err)
	}
	return client, nil
}

// redisQueue represents a queue which implements the Queuer interface.
type redisQueue struct {
	client *redis.Client
}

func NewRedisQueue(client *redis.Client) Queuer {
	return &redisQueue{client: client}
}

// Push enqueues an event onto the queue identified by qid.
func (q *redisQueue) Push(ctx context.Context, qid string, event Event) error {
	eventBytes, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return q.client.RPush(ctx, qid, eventBytes).Err()
}

// Pop returns the first dequeued event from the list of queue ids.
// It blocks until an event is available or the context is done.
func (q *redisQueue) Pop(ctx context.Context, qids ...string) (string, Event, error) {
	var event Event
	infos, err := q.client.BLPop(ctx, 0*time.Second, qids...).Result()
	if err != nil {
		return "", event, err
	}

	if err = json.Unmarshal([]byte(infos[1]), &event); err != nil {
		return infos[0], event, err
	}
	return infos[0], event, nil
}

// noopQueue drops every event. It is used when redis is disabled.
type noopQueue struct{}

func NewNoopQueue() Queuer {
	return noopQueue{}
}

func (noopQueue) Push(context.Context, string, Event) error {
	return nil
}

// Pop never yields an event and only returns once the context is done.
func (noopQueue) Pop(ctx context.Context, _ ...string) (string, Event, error) {
	<-ctx.Done()
	return "", Event{}, ctx.Err()
}

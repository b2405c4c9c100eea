package main

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/ory/dockertest/v3"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func startRedisDockerContainer(t *testing.T) (string, func()) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping redis container test in short mode")
	}

	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Skipf("Failed to start Dockertest: %+v", err)
	}

	err = pool.Client.Ping()
	if err != nil {
		t.Skipf("Could not connect to Docker: %+v", err)
	}

	resource, err := pool.Run("redis", "7.0.10-alpine", nil)
	if err != nil {
		t.Fatalf("Failed to start redis: %+v", err)
	}

	// build address the container is listening on
	addr := net.JoinHostPort("localhost", resource.GetPort("6379/tcp"))

	// ensure to wait for the container to be ready
	err = pool.Retry(func() error {
		client := redis.NewClient(&redis.Options{Addr: addr})
		defer client.Close()
		return client.Ping(context.Background()).Err()
	})
	if err != nil {
		t.Fatalf("Failed to ping Redis: %+v", err)
	}

	destroyFunc := func() {
		if err := pool.Purge(resource); err != nil {
			t.Logf("Failed to purge resource: %+v", err)
		}
	}

	return addr, destroyFunc
}

func TestRedisQueue(t *testing.T) {
	addr, destroyFunc := startRedisDockerContainer(t)
	defer destroyFunc()

	host, port, err := net.SplitHostPort(addr)
	require.NoError(t, err)
	client, err := GetRedisClient(&Config{Redis: RedisConfig{Host: host, Port: port}})
	require.NoError(t, err)
	defer client.Close()

	q := NewRedisQueue(client)
	ctx := context.Background()
	clock := NewMockClocker()

	t.Run("Push Then Pop In Order", func(t *testing.T) {
		for i := int64(1); i <= 2; i++ {
			event, err := NewEvent(EventCreated, "book", i, clock.Now(), Book{ID: i, Title: "t"})
			require.NoError(t, err)
			require.NoError(t, q.Push(ctx, BookEventsQueue, event))
		}

		for i := int64(1); i <= 2; i++ {
			qid, event, err := q.Pop(ctx, SellerEventsQueue, BookEventsQueue)
			require.NoError(t, err)
			assert.Equal(t, BookEventsQueue, qid)
			assert.Equal(t, i, event.ID)
			assert.Equal(t, EventCreated, event.Kind)
			assert.True(t, clock.Now().Equal(event.At))
		}
	})

	t.Run("Pop Returns On Context Done", func(t *testing.T) {
		cctx, cancel := context.WithTimeout(ctx, 200*time.Millisecond)
		defer cancel()
		_, _, err := q.Pop(cctx, SellerEventsQueue)
		assert.Error(t, err)
	})

	t.Run("Consumer Journals Pushed Events", func(t *testing.T) {
		journal := &MockJournal{}
		consumer := NewJournalConsumer(zap.NewNop(), q, journal)
		cctx, cancel := context.WithCancel(ctx)
		done := make(chan error, 1)
		go func() { done <- consumer.Consume(cctx, SellerEventsQueue, BookEventsQueue) }()

		event, err := NewEvent(EventDeleted, "seller", 3, clock.Now(), nil)
		require.NoError(t, err)
		require.NoError(t, q.Push(ctx, SellerEventsQueue, event))

		assert.Eventually(t, func() bool { return journal.len() == 1 }, 5*time.Second, 20*time.Millisecond)
		cancel()
		assert.NoError(t, <-done)
		assert.Equal(t, SellerEventsQueue, journal.Entries[0].Queue)
		assert.Equal(t, int64(3), journal.Entries[0].Event.ID)
	})
}

func TestJournalConsumer(t *testing.T) {
	t.Run("should pass: journals known queues only", func(t *testing.T) {
		popped := []struct {
			qid   string
			event Event
		}{
			{SellerEventsQueue, Event{Kind: EventCreated, Entity: "seller", ID: 1}},
			{"unknown.events", Event{Kind: EventCreated, Entity: "x", ID: 2}},
			{BookEventsQueue, Event{Kind: EventDeleted, Entity: "book", ID: 3}},
		}
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		i := 0
		queue := &MockQueue{
			PopFunc: func(ctx context.Context, qids ...string) (string, Event, error) {
				if i == len(popped) {
					cancel()
					<-ctx.Done()
					return "", Event{}, ctx.Err()
				}
				p := popped[i]
				i++
				return p.qid, p.event, nil
			},
		}
		journal := &MockJournal{}
		err := NewJournalConsumer(zap.NewNop(), queue, journal).Consume(ctx, SellerEventsQueue, BookEventsQueue)
		assert.NoError(t, err)
		require.Equal(t, 2, journal.len())
		assert.Equal(t, int64(1), journal.Entries[0].Event.ID)
		assert.Equal(t, int64(3), journal.Entries[1].Event.ID)
	})

	t.Run("should pass: exits when the pop fails after cancellation", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		queue := &MockQueue{
			PopFunc: func(context.Context, ...string) (string, Event, error) {
				cancel()
				return "", Event{}, errors.New("connection refused")
			},
		}
		err := NewJournalConsumer(zap.NewNop(), queue, &MockJournal{}).Consume(ctx, BookEventsQueue)
		assert.NoError(t, err)
	})

	t.Run("should pass: journal failure keeps consuming", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		calls := 0
		queue := &MockQueue{
			PopFunc: func(ctx context.Context, qids ...string) (string, Event, error) {
				calls++
				if calls > 2 {
					cancel()
					return "", Event{}, ctx.Err()
				}
				return BookEventsQueue, Event{ID: int64(calls)}, nil
			},
		}
		journal := &MockJournal{Err: errors.New("disk full")}
		err := NewJournalConsumer(zap.NewNop(), queue, journal).Consume(ctx, BookEventsQueue)
		assert.NoError(t, err)
		assert.Equal(t, 3, calls)
	})
}

func TestNoopQueue(t *testing.T) {
	q := NewNoopQueue()
	assert.NoError(t, q.Push(context.Background(), BookEventsQueue, Event{}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err := q.Pop(ctx, BookEventsQueue)
	assert.ErrorIs(t, err, context.Canceled)
}

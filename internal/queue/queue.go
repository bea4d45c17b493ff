package queue

import (
	"context"
	"time"

	"github.com/bytedance/sonic"
	"github.com/juju/errors"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// TypeMarked is published after an attendance mark has been persisted.
const TypeMarked = "attendance.marked"

// Event describes something that happened at the kiosk.
type Event struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	NIC       string    `json:"nic"`
	Direction string    `json:"direction"`
	Date      string    `json:"date"`
	At        time.Time `json:"at"`
}

// Queue is the abstraction over different backends.
type Queue interface {
	Publish(ctx context.Context, evt Event) error
	Consume(ctx context.Context) (<-chan Event, error)
}

// InMemory is a minimal channel-backed queue for a single process.
type InMemory struct {
	ch chan Event
}

// NewInMemory creates a bounded in-memory queue.
func NewInMemory(size int) *InMemory {
	return &InMemory{ch: make(chan Event, size)}
}

// Publish enqueues an event.
func (q *InMemory) Publish(ctx context.Context, evt Event) error {
	select {
	case q.ch <- evt:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Consume returns a channel for workers.
func (q *InMemory) Consume(ctx context.Context) (<-chan Event, error) {
	out := make(chan Event)
	go func() {
		defer close(out)
		for {
			select {
			case evt := <-q.ch:
				select {
				case out <- evt:
				case <-ctx.Done():
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

// RedisQueue implements a Redis list-backed queue.
type RedisQueue struct {
	client *redis.Client
	key    string
	log    logrus.FieldLogger
}

// NewRedisQueue builds a queue using LPUSH/BRPOP semantics.
func NewRedisQueue(client *redis.Client, key string, logger logrus.FieldLogger) *RedisQueue {
	if key == "" {
		key = "attendance:marks"
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &RedisQueue{client: client, key: key, log: logger}
}

// Publish enqueues an event as JSON.
func (q *RedisQueue) Publish(ctx context.Context, evt Event) error {
	data, err := Encode(evt)
	if err != nil {
		return errors.Trace(err)
	}
	return errors.Trace(q.client.LPush(ctx, q.key, data).Err())
}

// Consume streams events using BRPOP. Undecodable entries are logged and dropped.
func (q *RedisQueue) Consume(ctx context.Context) (<-chan Event, error) {
	out := make(chan Event)
	go func() {
		defer close(out)
		for {
			res, err := q.client.BRPop(ctx, 5*time.Second, q.key).Result()
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				if err != redis.Nil {
					q.log.WithError(err).Warn("queue pop failed")
					time.Sleep(time.Second)
				}
				continue
			}
			if len(res) != 2 {
				continue
			}
			evt, err := Decode([]byte(res[1]))
			if err != nil {
				q.log.WithError(err).Warn("dropping undecodable queue entry")
				continue
			}
			select {
			case out <- evt:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

// Encode serialises an event.
func Encode(evt Event) ([]byte, error) {
	return sonic.ConfigStd.Marshal(evt)
}

// Decode parses an event and requires a type.
func Decode(data []byte) (Event, error) {
	var evt Event
	if err := sonic.ConfigStd.Unmarshal(data, &evt); err != nil {
		return Event{}, errors.Annotate(err, "decoding event")
	}
	if evt.Type == "" {
		return Event{}, errors.NotValidf("event without type")
	}
	return evt, nil
}

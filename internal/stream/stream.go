// Package stream provides a broadcast client over a Redis Stream. Every
// Client reads every message written to the stream after the Client was
// initialized, making it suitable for fanning events out to every replica.
package stream

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

var (
	ErrUnexpectedStreamCount  = errors.New("unexpected stream count")
	ErrUnexpectedMessageCount = errors.New("unexpected message count")

	errInvalidPayload = errors.New("invalid payload")
)

const (
	maxlen = 20000
	block  = 5 * time.Second
	origin = "0-0"
)

// Init initializes a stream Client reading the stream named key. Reads begin
// after the last message present on the stream at initialization.
func Init(ctx context.Context, logger *zap.Logger, rdb *redis.Client, key string) (*Client, error) {
	last, err := rdb.XRevRangeN(ctx, key, "+", "-", 1).Result()
	if err != nil {
		return nil, fmt.Errorf("initializing stream; error: %w", err)
	}

	start := origin
	if len(last) == 1 {
		start = last[0].ID
	}

	return &Client{
		logger: logger,
		rdb:    rdb,
		key:    key,
		mutex:  new(sync.Mutex),
		lastID: start,
	}, nil
}

// Client is a persistent streaming client.
type Client struct {
	logger *zap.Logger
	rdb    *redis.Client
	key    string

	mutex  *sync.Mutex
	lastID string
}

// Write writes b to the Client's persistent stream.
func (c *Client) Write(ctx context.Context, b []byte) error {
	c.logger.Debug("write stream", zap.String("stream", c.key), zap.Int("bytes", len(b)))

	args := &redis.XAddArgs{
		Stream: c.key,
		MaxLen: maxlen,
		Approx: true,
		ID:     "*",
		Values: map[string]interface{}{"payload": b},
	}
	if err := c.rdb.XAdd(ctx, args).Err(); err != nil {
		return fmt.Errorf("write stream; error: %w", err)
	}

	return nil
}

// Read blocks until the message following the last read message is
// available, and returns it. Read returns the context's error once ctx is
// done.
func (c *Client) Read(ctx context.Context) (*Message, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		args := &redis.XReadArgs{
			Streams: []string{c.key, c.lastID},
			Count:   1,
			Block:   block,
		}
		streams, err := c.rdb.XRead(ctx, args).Result()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read stream; error: %w", err)
		}

		if len(streams) != 1 {
			return nil, fmt.Errorf(
				"read stream; n: %d, error: %w",
				len(streams),
				ErrUnexpectedStreamCount,
			)
		}

		m, err := c.extractMessage(streams[0].Messages)
		if err != nil {
			return nil, err
		}
		c.lastID = m.ID

		c.logger.Debug(
			"read stream",
			zap.String("stream", c.key),
			zap.String("message-id", m.ID),
		)
		return m, nil
	}
}

func (c *Client) extractMessage(messages []redis.XMessage) (*Message, error) {
	if len(messages) != 1 {
		return nil, fmt.Errorf(
			"unexpected stream message count; n: %d, error: %w",
			len(messages),
			ErrUnexpectedMessageCount,
		)
	}

	m := messages[0]

	str, ok := m.Values["payload"].(string)
	if !ok {
		return nil, errInvalidPayload
	}

	return &Message{
		ID:      m.ID,
		Payload: []byte(str),
	}, nil
}

// Message is a single entry read from the stream.
type Message struct {
	ID      string
	Payload []byte
}

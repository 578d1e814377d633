package router

import (
	"context"
	"errors"
	"fmt"

	"github.com/tjper/suihei/internal/event"
	"github.com/tjper/suihei/internal/stream"

	"go.uber.org/zap"
)

// IStream encompasses all interactions with the change-event stream.
type IStream interface {
	Read(context.Context) (*stream.Message, error)
	Write(context.Context, []byte) error
}

// NewStreamPublisher creates a StreamPublisher instance.
func NewStreamPublisher(s IStream) *StreamPublisher {
	return &StreamPublisher{stream: s}
}

// StreamPublisher publishes ChangeEvents to a stream read by every suihei
// process.
type StreamPublisher struct {
	stream IStream
}

// Publish writes a ChangeEvent for the record of kind identified by id to
// the stream.
func (p StreamPublisher) Publish(ctx context.Context, kind string, id int64) error {
	b, err := event.New(kind, id).Encode()
	if err != nil {
		return err
	}
	if err := p.stream.Write(ctx, b); err != nil {
		return fmt.Errorf("publish %s event; id: %d, error: %w", kind, id, err)
	}
	return nil
}

// Launch reads ChangeEvents from s and dispatches them to r. This is a
// blocking function. The context may be cancelled to stop reading.
func Launch(ctx context.Context, logger *zap.Logger, r *Router, s IStream) error {
	for {
		m, err := s.Read(ctx)
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read change event stream; error: %w", err)
		}

		e, err := event.Parse(m.Payload)
		if err != nil {
			logger.Error("parse change event", zap.String("message", m.ID), zap.Error(err))
			continue
		}

		r.Dispatch(*e)
	}
}

// Package router fans ChangeEvents out to the subscriptions watching the
// changed record kind.
package router

import (
	"context"
	"errors"
	"sync"

	serrors "github.com/tjper/suihei/cmd/suihei/errors"
	"github.com/tjper/suihei/cmd/suihei/model"
	"github.com/tjper/suihei/internal/event"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// DefaultBuffer is the number of ChangeEvents queued per subscription before
// further events are dropped for that subscription.
const DefaultBuffer = 64

// Fetcher retrieves the current state of a record.
type Fetcher interface {
	Fetch(ctx context.Context, kind string, id int64) (model.Record, error)
}

// Filter reports whether a record, fetched when its ChangeEvent is
// dispatched, is delivered to a subscription.
type Filter func(model.Record) bool

// New creates a new Router instance. Router metrics are registered with reg.
func New(
	logger *zap.Logger,
	fetcher Fetcher,
	reg prometheus.Registerer,
	options ...Option,
) *Router {
	r := &Router{
		logger:  logger,
		fetcher: fetcher,
		metrics: newMetrics(reg),
		buffer:  DefaultBuffer,
		subs:    make(map[uuid.UUID]*subscription),
	}

	for _, option := range options {
		option(r)
	}

	return r
}

// Option is a function type that may configure a Router instance.
type Option func(*Router)

// WithBuffer configures the per-subscription event queue length.
func WithBuffer(n int) Option {
	return func(r *Router) { r.buffer = n }
}

// Router delivers ChangeEvents to subscriptions. Each subscription has its
// own queue and delivery goroutine, so a slow subscriber does not stall
// delivery to others.
type Router struct {
	logger  *zap.Logger
	fetcher Fetcher
	metrics *metrics
	buffer  int

	mutex sync.RWMutex
	subs  map[uuid.UUID]*subscription
}

type subscription struct {
	id     uuid.UUID
	kinds  map[string]struct{}
	filter Filter
	events chan event.ChangeEvent
}

// Subscribe attaches a subscription watching kinds. Records whose
// ChangeEvents match filter are sent on the returned channel. The
// subscription is detached, and the channel closed, when ctx is done.
func (r *Router) Subscribe(ctx context.Context, kinds []string, filter Filter) <-chan model.Record {
	sub := &subscription{
		id:     uuid.New(),
		kinds:  make(map[string]struct{}, len(kinds)),
		filter: filter,
		events: make(chan event.ChangeEvent, r.buffer),
	}
	for _, kind := range kinds {
		sub.kinds[kind] = struct{}{}
	}

	r.mutex.Lock()
	r.subs[sub.id] = sub
	r.mutex.Unlock()
	r.metrics.subscriptions.Inc()

	out := make(chan model.Record)
	go r.deliver(ctx, sub, out)

	return out
}

// Dispatch enqueues e for every subscription watching e.Kind. Dispatch does
// not block; when a subscription's queue is full the event is dropped for
// that subscription.
func (r *Router) Dispatch(e event.ChangeEvent) {
	r.metrics.dispatched.WithLabelValues(e.Kind).Inc()

	r.mutex.RLock()
	defer r.mutex.RUnlock()

	for _, sub := range r.subs {
		if _, ok := sub.kinds[e.Kind]; !ok {
			continue
		}
		select {
		case sub.events <- e:
		default:
			r.metrics.dropped.WithLabelValues(reasonQueueFull).Inc()
			r.logger.Warn(
				"subscription queue full",
				zap.String("subscription", sub.id.String()),
				zap.String("kind", e.Kind),
			)
		}
	}
}

// Publish dispatches a ChangeEvent for the record of kind identified by id
// to subscriptions of this process.
func (r *Router) Publish(_ context.Context, kind string, id int64) error {
	r.Dispatch(event.New(kind, id))
	return nil
}

// Subscriptions returns the number of attached subscriptions.
func (r *Router) Subscriptions() int {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return len(r.subs)
}

func (r *Router) detach(sub *subscription) {
	r.mutex.Lock()
	delete(r.subs, sub.id)
	r.mutex.Unlock()
	r.metrics.subscriptions.Dec()
}

func (r *Router) deliver(ctx context.Context, sub *subscription, out chan<- model.Record) {
	defer close(out)
	defer r.detach(sub)

	for {
		select {
		case <-ctx.Done():
			return
		case e := <-sub.events:
			record, ok := r.resolve(ctx, sub, e)
			if !ok {
				continue
			}
			// Detached while resolving.
			if ctx.Err() != nil {
				return
			}

			select {
			case out <- record:
				r.metrics.delivered.WithLabelValues(e.Kind).Inc()
			case <-ctx.Done():
				return
			}
		}
	}
}

// resolve fetches the current state of the record e identifies and applies
// the subscription's filter. Records that no longer exist, or that fail to
// be fetched, are dropped.
func (r *Router) resolve(ctx context.Context, sub *subscription, e event.ChangeEvent) (model.Record, bool) {
	record, err := r.fetcher.Fetch(ctx, e.Kind, e.RecordID)
	if errors.Is(err, serrors.ErrRecordDNE) {
		r.metrics.dropped.WithLabelValues(reasonDNE).Inc()
		return nil, false
	}
	if err != nil {
		r.metrics.dropped.WithLabelValues(reasonFetch).Inc()
		if ctx.Err() == nil {
			r.logger.Error(
				"fetch changed record",
				zap.String("kind", e.Kind),
				zap.Int64("id", e.RecordID),
				zap.Error(err),
			)
		}
		return nil, false
	}

	if sub.filter != nil && !sub.filter(record) {
		r.metrics.dropped.WithLabelValues(reasonFiltered).Inc()
		return nil, false
	}
	return record, true
}

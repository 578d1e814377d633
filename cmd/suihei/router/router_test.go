package router

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	serrors "github.com/tjper/suihei/cmd/suihei/errors"
	"github.com/tjper/suihei/cmd/suihei/model"
	"github.com/tjper/suihei/internal/event"
	imodel "github.com/tjper/suihei/internal/model"
	"github.com/tjper/suihei/internal/stream"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSubscribe(t *testing.T) {
	fetcher := newFetcherMock(
		&model.Dialogue{Model: imodel.Model{ID: 1}, PuzzleID: 10},
		&model.Dialogue{Model: imodel.Model{ID: 2}, PuzzleID: 20},
		&model.Hint{Model: imodel.Model{ID: 3}, PuzzleID: 10},
		&model.Puzzle{Model: imodel.Model{ID: 10}},
	)
	want := "10"
	filter := KeyedFilter(puzzleKey, &want)

	tests := map[string]struct {
		events   []event.ChangeEvent
		expected []int64
	}{
		"matching record delivered": {
			events:   []event.ChangeEvent{event.New(model.KindDialogue, 1)},
			expected: []int64{1},
		},
		"filtered record dropped": {
			events: []event.ChangeEvent{
				event.New(model.KindDialogue, 2),
				event.New(model.KindDialogue, 1),
			},
			expected: []int64{1},
		},
		"deleted record dropped": {
			events: []event.ChangeEvent{
				event.New(model.KindDialogue, 404),
				event.New(model.KindDialogue, 1),
			},
			expected: []int64{1},
		},
		"unwatched kind ignored": {
			events: []event.ChangeEvent{
				event.New(model.KindPuzzle, 10),
				event.New(model.KindDialogue, 1),
			},
			expected: []int64{1},
		},
		"union of kinds in emission order": {
			events: []event.ChangeEvent{
				event.New(model.KindHint, 3),
				event.New(model.KindDialogue, 1),
				event.New(model.KindHint, 3),
			},
			expected: []int64{3, 1, 3},
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			r := New(zap.NewNop(), fetcher, prometheus.NewRegistry())
			records := r.Subscribe(ctx, []string{model.KindDialogue, model.KindHint}, filter)

			for _, e := range test.events {
				r.Dispatch(e)
			}

			for _, id := range test.expected {
				record := receive(ctx, t, records)
				require.Equal(t, id, record.RecordID())
			}
		})
	}
}

func TestSlowSubscriberIsolation(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	fetcher := newFetcherMock(&model.Puzzle{Model: imodel.Model{ID: 1}})
	r := New(zap.NewNop(), fetcher, prometheus.NewRegistry(), WithBuffer(1))

	// slow never receives.
	_ = r.Subscribe(ctx, []string{model.KindPuzzle}, nil)
	fast := r.Subscribe(ctx, []string{model.KindPuzzle}, nil)

	for i := 0; i < 10; i++ {
		r.Dispatch(event.New(model.KindPuzzle, 1))
		record := receive(ctx, t, fast)
		require.Equal(t, int64(1), record.RecordID())
	}
}

func TestDetach(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	fetcher := newFetcherMock(&model.Puzzle{Model: imodel.Model{ID: 1}})
	r := New(zap.NewNop(), fetcher, prometheus.NewRegistry())

	subCtx, detach := context.WithCancel(ctx)
	records := r.Subscribe(subCtx, []string{model.KindPuzzle}, nil)
	require.Equal(t, 1, r.Subscriptions())

	detach()

	select {
	case _, ok := <-records:
		require.False(t, ok)
	case <-ctx.Done():
		t.Fatal("subscription channel not closed")
	}
	require.Eventually(
		t,
		func() bool { return r.Subscriptions() == 0 },
		time.Second,
		10*time.Millisecond,
	)

	// Dispatching to a detached subscription is a no-op.
	r.Dispatch(event.New(model.KindPuzzle, 1))
}

func TestFetchErrorDropsEvent(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	fetcher := newFetcherMock(&model.Puzzle{Model: imodel.Model{ID: 1}})
	fetcher.err = map[int64]error{2: errors.New("connection reset")}
	r := New(zap.NewNop(), fetcher, prometheus.NewRegistry())

	records := r.Subscribe(ctx, []string{model.KindPuzzle}, nil)
	r.Dispatch(event.New(model.KindPuzzle, 2))
	r.Dispatch(event.New(model.KindPuzzle, 1))

	record := receive(ctx, t, records)
	require.Equal(t, int64(1), record.RecordID())
}

func TestNeverFilter(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	fetcher := newFetcherMock(&model.DirectMessage{Model: imodel.Model{ID: 1}})
	r := New(zap.NewNop(), fetcher, prometheus.NewRegistry())

	never := r.Subscribe(ctx, []string{model.KindDirectMessage}, Never)
	all := r.Subscribe(ctx, []string{model.KindDirectMessage}, nil)
	r.Dispatch(event.New(model.KindDirectMessage, 1))

	// Events are resolved per subscription in order; once all has received
	// the record, never has resolved it as well or will drop it.
	receive(ctx, t, all)
	select {
	case record := <-never:
		t.Fatalf("unexpected record: %v", record)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestKeyedFilter(t *testing.T) {
	want := "10"
	other := "20"

	tests := map[string]struct {
		want     *string
		record   model.Record
		expected bool
	}{
		"nil want matches":  {want: nil, record: &model.Puzzle{}, expected: true},
		"key matches":       {want: &want, record: &model.Dialogue{PuzzleID: 10}, expected: true},
		"key differs":       {want: &other, record: &model.Dialogue{PuzzleID: 10}, expected: false},
		"record has no key": {want: &want, record: &model.Puzzle{}, expected: false},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			filter := KeyedFilter(puzzleKey, test.want)
			require.Equal(t, test.expected, filter(test.record))
		})
	}
}

func TestStreamRoundTrip(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var mutex sync.Mutex
	var written [][]byte
	s := stream.NewClientMock(
		stream.WithWrite(func(_ context.Context, b []byte) error {
			mutex.Lock()
			defer mutex.Unlock()
			written = append(written, b)
			return nil
		}),
		stream.WithRead(func(ctx context.Context) (*stream.Message, error) {
			mutex.Lock()
			defer mutex.Unlock()
			if len(written) == 0 {
				<-ctx.Done()
				return nil, ctx.Err()
			}
			b := written[0]
			written = written[1:]
			return &stream.Message{ID: "1-0", Payload: b}, nil
		}),
	)

	publisher := NewStreamPublisher(s)
	err := publisher.Publish(ctx, model.KindPuzzle, 1)
	require.Nil(t, err)

	fetcher := newFetcherMock(&model.Puzzle{Model: imodel.Model{ID: 1}})
	r := New(zap.NewNop(), fetcher, prometheus.NewRegistry())
	records := r.Subscribe(ctx, []string{model.KindPuzzle}, nil)

	launchCtx, stop := context.WithCancel(ctx)
	done := make(chan error, 1)
	go func() { done <- Launch(launchCtx, zap.NewNop(), r, s) }()

	record := receive(ctx, t, records)
	require.Equal(t, int64(1), record.RecordID())

	stop()
	require.Nil(t, <-done)
}

func TestLaunchSkipsMalformedEvents(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	valid, err := event.New(model.KindPuzzle, 1).Encode()
	require.Nil(t, err)

	payloads := [][]byte{[]byte("garbage"), valid}
	s := stream.NewClientMock(
		stream.WithRead(func(ctx context.Context) (*stream.Message, error) {
			if len(payloads) == 0 {
				<-ctx.Done()
				return nil, ctx.Err()
			}
			b := payloads[0]
			payloads = payloads[1:]
			return &stream.Message{Payload: b}, nil
		}),
	)

	fetcher := newFetcherMock(&model.Puzzle{Model: imodel.Model{ID: 1}})
	r := New(zap.NewNop(), fetcher, prometheus.NewRegistry())
	records := r.Subscribe(ctx, []string{model.KindPuzzle}, nil)

	launchCtx, stop := context.WithCancel(ctx)
	defer stop()
	go func() { _ = Launch(launchCtx, zap.NewNop(), r, s) }()

	record := receive(ctx, t, records)
	require.Equal(t, int64(1), record.RecordID())
}

func TestLaunchStreamError(t *testing.T) {
	errStream := errors.New("connection refused")
	s := stream.NewClientMock(
		stream.WithRead(func(context.Context) (*stream.Message, error) {
			return nil, errStream
		}),
	)

	r := New(zap.NewNop(), newFetcherMock(), prometheus.NewRegistry())
	err := Launch(context.Background(), zap.NewNop(), r, s)
	require.ErrorIs(t, err, errStream)
}

// --- helpers ---

func puzzleKey(record model.Record) (string, bool) {
	switch r := record.(type) {
	case *model.Dialogue:
		return fmt.Sprint(r.PuzzleID), true
	case *model.Hint:
		return fmt.Sprint(r.PuzzleID), true
	}
	return "", false
}

func receive(ctx context.Context, t *testing.T, records <-chan model.Record) model.Record {
	t.Helper()

	select {
	case record, ok := <-records:
		require.True(t, ok)
		return record
	case <-ctx.Done():
		t.Fatal("record not delivered")
	}
	return nil
}

// --- mocks ---

func newFetcherMock(records ...model.Record) *fetcherMock {
	m := &fetcherMock{records: make(map[string]model.Record)}
	for _, record := range records {
		m.records[fetcherKey(record.RecordKind(), record.RecordID())] = record
	}
	return m
}

type fetcherMock struct {
	records map[string]model.Record
	err     map[int64]error
}

func (m *fetcherMock) Fetch(_ context.Context, kind string, id int64) (model.Record, error) {
	if err, ok := m.err[id]; ok {
		return nil, err
	}
	record, ok := m.records[fetcherKey(kind, id)]
	if !ok {
		return nil, serrors.ErrRecordDNE
	}
	return record, nil
}

func fetcherKey(kind string, id int64) string {
	return fmt.Sprintf("%s:%d", kind, id)
}

package director

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/tjper/suihei/cmd/suihei/model"
	imodel "github.com/tjper/suihei/internal/model"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestDaze(t *testing.T) {
	tests := map[string]struct {
		puzzles []model.Puzzle
		err     error
		level   zapcore.Level
		message string
	}{
		"dazed": {
			puzzles: []model.Puzzle{{Model: imodel.Model{ID: 4}}},
			level:   zapcore.InfoLevel,
			message: "dazed puzzles",
		},
		"failed": {
			err:     errors.New("connection reset"),
			level:   zapcore.ErrorLevel,
			message: "daze puzzles",
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			core, logs := observer.New(zapcore.InfoLevel)
			ctrl := &controllerMock{puzzles: test.puzzles, err: test.err}
			dir := New(zap.New(core), ctrl)

			dir.Daze(context.Background())

			require.Equal(t, int32(1), ctrl.calls.Load())
			entries := logs.FilterMessage(test.message).All()
			require.Len(t, entries, 1)
			require.Equal(t, test.level, entries[0].Level)
		})
	}
}

func TestDazeNothingDue(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	dir := New(zap.New(core), &controllerMock{})

	dir.Daze(context.Background())
	require.Zero(t, logs.Len())
}

func TestRunInvalidSchedule(t *testing.T) {
	dir := New(zap.NewNop(), &controllerMock{})

	err := dir.Run(context.Background(), "every other tuesday")
	require.Error(t, err)
}

func TestRun(t *testing.T) {
	ctrl := &controllerMock{}
	dir := New(zap.NewNop(), ctrl)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error)
	go func() { done <- dir.Run(ctx, "@every 1s") }()

	require.Eventually(t, func() bool {
		return ctrl.calls.Load() > 0
	}, 5*time.Second, 50*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("director did not stop")
	}
}

type controllerMock struct {
	puzzles []model.Puzzle
	err     error
	calls   atomic.Int32
}

func (m *controllerMock) DazePuzzles(context.Context) ([]model.Puzzle, error) {
	m.calls.Add(1)
	return m.puzzles, m.err
}

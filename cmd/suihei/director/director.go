// Package director runs suihei's periodic jobs.
package director

import (
	"context"
	"fmt"

	"github.com/tjper/suihei/cmd/suihei/model"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// IController is the controller behavior the Director depends on.
type IController interface {
	DazePuzzles(context.Context) ([]model.Puzzle, error)
}

// New creates a new Director instance.
func New(logger *zap.Logger, controller IController) *Director {
	return &Director{
		logger:     logger,
		controller: controller,
	}
}

// Director schedules the jobs that move records along with time.
type Director struct {
	logger     *zap.Logger
	controller IController
}

// Run dazes past-due puzzles on dazeSchedule until ctx is cancelled. A job
// in flight when ctx is cancelled is allowed to finish.
func (dir Director) Run(ctx context.Context, dazeSchedule string) error {
	scheduler := cron.New()
	if _, err := scheduler.AddFunc(dazeSchedule, func() { dir.Daze(ctx) }); err != nil {
		return fmt.Errorf("schedule daze; schedule: %q, error: %w", dazeSchedule, err)
	}

	dir.logger.Info("daze scheduled", zap.String("schedule", dazeSchedule))
	scheduler.Start()

	<-ctx.Done()
	<-scheduler.Stop().Done()
	return nil
}

// Daze moves unsolved puzzles past their dazed_on date to the dazed status.
func (dir Director) Daze(ctx context.Context) {
	puzzles, err := dir.controller.DazePuzzles(ctx)
	if err != nil {
		dir.logger.Error("daze puzzles", zap.Error(err))
		return
	}
	if len(puzzles) == 0 {
		return
	}

	ids := make([]int64, 0, len(puzzles))
	for _, puzzle := range puzzles {
		ids = append(ids, puzzle.ID)
	}
	dir.logger.Info("dazed puzzles", zap.Int64s("puzzle-ids", ids))
}

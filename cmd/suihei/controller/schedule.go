package controller

import (
	"context"
	"fmt"
	"time"

	"github.com/tjper/suihei/cmd/suihei/db"
	"github.com/tjper/suihei/cmd/suihei/guard"
	"github.com/tjper/suihei/cmd/suihei/model"
)

const (
	msgScheduleEmpty      = "Schedule content cannot be empty!"
	msgScheduleCap        = "You can set up to %d schedules at the same time!"
	msgNotScheduleCreator = "You are not the creator of this schedule"
)

// CreateScheduleInput is the input for the Controller.CreateSchedule method.
type CreateScheduleInput struct {
	Scheduled time.Time
	Content   string
}

// CreateSchedule schedules an announcement by the caller.
func (ctrl Controller) CreateSchedule(ctx context.Context, input CreateScheduleInput) (*model.Schedule, error) {
	schedule := new(model.Schedule)
	err := ctrl.store.Tx(ctx, func(store db.IStore) error {
		now := ctrl.clock.Now()
		if err := guard.Run(
			ctx,
			guard.Authenticated(),
			guard.NotBlank(input.Content, msgScheduleEmpty),
			guard.Max(
				ctrl.rules.MaxFutureSchedules,
				func(ctx context.Context) (int64, error) {
					return store.CountFutureSchedules(ctx, caller(ctx).ID, now)
				},
				fmt.Sprintf(msgScheduleCap, ctrl.rules.MaxFutureSchedules),
			),
		); err != nil {
			return err
		}

		*schedule = model.Schedule{
			UserID:    caller(ctx).ID,
			Content:   input.Content,
			Created:   now,
			Scheduled: input.Scheduled,
		}
		return store.Create(ctx, schedule)
	})
	if err != nil {
		return nil, err
	}
	return schedule, nil
}

// DeleteSchedule deletes a schedule created by the caller.
func (ctrl Controller) DeleteSchedule(ctx context.Context, id int64) error {
	return ctrl.store.Tx(ctx, func(store db.IStore) error {
		schedule := new(model.Schedule)
		if err := guard.Run(
			ctx,
			guard.Authenticated(),
			getter(store, schedule, id),
			owner(&schedule.UserID, msgNotScheduleCreator),
		); err != nil {
			return err
		}
		return store.Delete(ctx, schedule)
	})
}

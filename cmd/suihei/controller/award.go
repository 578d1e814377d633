package controller

import (
	"context"
	"fmt"

	"github.com/tjper/suihei/cmd/suihei/db"
	serrors "github.com/tjper/suihei/cmd/suihei/errors"
	"github.com/tjper/suihei/cmd/suihei/guard"
	"github.com/tjper/suihei/cmd/suihei/model"
)

const (
	msgPendingCap      = "You can apply up to %d awards at the same time!"
	msgHasAward        = "You already have this award!"
	msgAppliedAward    = "You already have applied this award!"
	msgCannotReview    = "You are not authenticated to do this!"
	msgSelfReview      = "Only staff members can review self-applied award applications"
	msgAlreadyReviewed = "Award application has already been reviewed"
)

// CreateAwardApplicationInput is the input for the
// Controller.CreateAwardApplication method.
type CreateAwardApplicationInput struct {
	AwardID int64
	Comment string
}

// CreateAwardApplication applies for an award on behalf of the caller.
func (ctrl Controller) CreateAwardApplication(
	ctx context.Context,
	input CreateAwardApplicationInput,
) (*model.AwardApplication, error) {
	application := new(model.AwardApplication)
	err := ctrl.store.Tx(ctx, func(store db.IStore) error {
		award := new(model.Award)
		if err := guard.Run(
			ctx,
			guard.Authenticated(),
			getter(store, award, input.AwardID),
			guard.Max(
				ctrl.rules.MaxPendingAwardApplications,
				func(ctx context.Context) (int64, error) {
					return store.CountPendingAwardApplications(ctx, caller(ctx).ID)
				},
				fmt.Sprintf(msgPendingCap, ctrl.rules.MaxPendingAwardApplications),
			),
			guard.Not(
				func(ctx context.Context) (bool, error) {
					return store.HasUserAward(ctx, caller(ctx).ID, award.ID)
				},
				msgHasAward,
			),
			guard.Not(
				func(ctx context.Context) (bool, error) {
					return store.HasPendingAwardApplication(ctx, caller(ctx).ID, award.ID)
				},
				msgAppliedAward,
			),
		); err != nil {
			return err
		}

		*application = model.AwardApplication{
			ApplierID: caller(ctx).ID,
			AwardID:   award.ID,
			Status:    model.ApplicationPending,
			Comment:   input.Comment,
			Created:   ctrl.clock.Now(),
		}
		return store.Create(ctx, application)
	})
	if err != nil {
		return nil, err
	}
	return application, nil
}

// UpdateAwardApplicationInput is the input for the
// Controller.UpdateAwardApplication method.
type UpdateAwardApplicationInput struct {
	ID     int64
	Status *int32
	Reason string
}

// UpdateAwardApplication reviews a pending award application. Approving an
// application grants the award to its applier. The application row is locked
// for the duration of the review, so of two concurrent reviews exactly one
// succeeds and the other reports a ConflictError.
func (ctrl Controller) UpdateAwardApplication(
	ctx context.Context,
	input UpdateAwardApplicationInput,
) (*model.AwardApplication, error) {
	var application *model.AwardApplication
	err := ctrl.store.Tx(ctx, func(store db.IStore) error {
		checks := []guard.Check{
			guard.Authenticated(),
			guard.Permission(store, model.PermReviewAwardApplication, msgCannotReview),
		}
		if input.Status != nil {
			checks = append(
				checks,
				guard.InRange("status", *input.Status, model.ApplicationApproved, model.ApplicationRejected),
			)
		}
		if err := guard.Run(ctx, checks...); err != nil {
			return err
		}

		var err error
		application, err = store.LockAwardApplication(ctx, input.ID)
		if err != nil {
			return notFound(err, model.KindAwardApplication)
		}
		if input.Status == nil {
			return nil
		}

		reviewer := caller(ctx)
		if err := guard.Run(
			ctx,
			func(context.Context) error {
				if application.Status != model.ApplicationPending {
					return serrors.ConflictError(msgAlreadyReviewed)
				}
				return nil
			},
			func(ctx context.Context) error {
				if reviewer.ID != application.ApplierID {
					return nil
				}
				return guard.Staff(msgSelfReview)(ctx)
			},
		); err != nil {
			return err
		}

		now := ctrl.clock.Now()
		application.Status = *input.Status
		application.ReviewerID = &reviewer.ID
		application.Reason = input.Reason
		application.Reviewed = &now
		if err := store.Save(ctx, application); err != nil {
			return err
		}

		if application.Status != model.ApplicationApproved {
			return nil
		}
		return store.FirstOrCreate(
			ctx,
			&model.UserAward{Created: now},
			&model.UserAward{UserID: application.ApplierID, AwardID: application.AwardID},
		)
	})
	if err != nil {
		return nil, err
	}
	return application, nil
}

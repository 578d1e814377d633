// Package controller carries out suihei's state-changing operations. Every
// operation runs its guard checks and writes in one transaction, and
// publishes ChangeEvents once the transaction commits.
package controller

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tjper/suihei/cmd/suihei/db"
	serrors "github.com/tjper/suihei/cmd/suihei/errors"
	"github.com/tjper/suihei/cmd/suihei/guard"
	"github.com/tjper/suihei/cmd/suihei/model"
	"github.com/tjper/suihei/internal/session"
	itime "github.com/tjper/suihei/internal/time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

type ISessionManager interface {
	CreateSession(context.Context, session.Session, time.Duration) error
	DeleteSession(context.Context, session.Session) error
}

// IPublisher publishes ChangeEvents for created and updated records.
type IPublisher interface {
	Publish(ctx context.Context, kind string, id int64) error
}

// Rules are the configurable business rules enforced by the Controller.
type Rules struct {
	// ContentSafeCredit is the credit above which a user's puzzles are
	// marked content safe.
	ContentSafeCredit int32
	// MaxPendingAwardApplications is the number of pending award
	// applications a user may hold at once.
	MaxPendingAwardApplications int64
	// MaxFutureSchedules is the number of future schedules a user may hold
	// at once.
	MaxFutureSchedules int64
	// VoteJoinedFor, VotePuzzles and VoteQuestions determine vote
	// eligibility. A user may vote once joined for longer than VoteJoinedFor,
	// or once they have posted more than VotePuzzles puzzles or asked more
	// than VoteQuestions questions.
	VoteJoinedFor time.Duration
	VotePuzzles   int64
	VoteQuestions int64
}

// DefaultRules are the Rules suihei runs with unless configured otherwise.
func DefaultRules() Rules {
	return Rules{
		ContentSafeCredit:           1000,
		MaxPendingAwardApplications: 2,
		MaxFutureSchedules:          3,
		VoteJoinedFor:               14 * 24 * time.Hour,
		VotePuzzles:                 5,
		VoteQuestions:               50,
	}
}

// New creates a new Controller instance.
func New(
	logger *zap.Logger,
	store db.IStore,
	sessionManager ISessionManager,
	publisher IPublisher,
	validate *validator.Validate,
	clock itime.Clock,
	rules Rules,
	activeSessionExpiration time.Duration,
	absoluteSessionExpiration time.Duration,
) *Controller {
	return &Controller{
		logger:                    logger,
		store:                     store,
		sessionManager:            sessionManager,
		publisher:                 publisher,
		validate:                  validate,
		clock:                     clock,
		rules:                     rules,
		activeSessionExpiration:   activeSessionExpiration,
		absoluteSessionExpiration: absoluteSessionExpiration,
	}
}

// Controller is responsible for every state-changing operation on suihei's
// records.
type Controller struct {
	logger         *zap.Logger
	store          db.IStore
	sessionManager ISessionManager
	publisher      IPublisher
	validate       *validator.Validate
	clock          itime.Clock
	rules          Rules

	activeSessionExpiration   time.Duration
	absoluteSessionExpiration time.Duration
}

// Rules retrieves the business rules the Controller enforces.
func (ctrl Controller) Rules() Rules {
	return ctrl.rules
}

// CanVote checks if user may vote, given the counts of records they created.
func (ctrl Controller) CanVote(user model.User, counts db.UserCounts) bool {
	return ctrl.clock.Now().Sub(user.DateJoined) > ctrl.rules.VoteJoinedFor ||
		counts.PuzzleCount > ctrl.rules.VotePuzzles ||
		counts.QuesCount > ctrl.rules.VoteQuestions
}

// publish publishes a ChangeEvent for each record. The records' writes are
// already committed, so failures are logged rather than returned.
func (ctrl Controller) publish(ctx context.Context, records ...model.Record) {
	for _, record := range records {
		err := ctrl.publisher.Publish(ctx, record.RecordKind(), record.RecordID())
		if err != nil {
			ctrl.logger.Error(
				"publish change event",
				zap.String("kind", record.RecordKind()),
				zap.Int64("id", record.RecordID()),
				zap.Error(err),
			)
		}
	}
}

// caller retrieves the session user of ctx. It must be called after the
// guard.Authenticated check has passed.
func caller(ctx context.Context) session.User {
	user, _ := session.UserFromContext(ctx)
	return user
}

// get retrieves the record identified by id into dst, reporting a
// NotFoundError when it does not exist.
func get(ctx context.Context, store db.IStore, dst model.Record, id int64) error {
	return notFound(store.Get(ctx, dst, id), dst.RecordKind())
}

// notFound replaces serrors.ErrRecordDNE with a NotFoundError naming kind.
func notFound(err error, kind string) error {
	if errors.Is(err, serrors.ErrRecordDNE) {
		return serrors.NotFoundError(fmt.Sprintf("%s not found", kind))
	}
	return err
}

// getter creates a guard check retrieving the record identified by id into
// dst.
func getter(store db.IStore, dst model.Record, id int64) guard.Check {
	return func(ctx context.Context) error {
		return get(ctx, store, dst, id)
	}
}

// owner creates a guard check ensuring the caller is the user identified by
// *ownerID. ownerID is read when the check runs, so it may point into a record
// retrieved by a preceding check.
func owner(ownerID *int64, msg string) guard.Check {
	return func(ctx context.Context) error {
		return guard.Owner(*ownerID, msg)(ctx)
	}
}

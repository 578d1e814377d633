package graph

import (
	"context"
	"errors"
	"sync"

	"github.com/tjper/suihei/cmd/suihei/db"
	serrors "github.com/tjper/suihei/cmd/suihei/errors"
	"github.com/tjper/suihei/cmd/suihei/model"
	"github.com/tjper/suihei/internal/token"

	graphql "github.com/graph-gophers/graphql-go"
)

func (r *Resolver) user(ctx context.Context, id int64) (*userResolver, error) {
	user, err := get[model.User](ctx, r.store, id)
	if err != nil {
		return nil, r.fail(ctx, err, "resolve user")
	}
	return newUserResolver(r, *user), nil
}

func newUserResolver(r *Resolver, user model.User) *userResolver {
	return &userResolver{r: r, m: user}
}

type userResolver struct {
	r *Resolver
	m model.User

	countsOnce sync.Once
	counts     *db.UserCounts
	countsErr  error
}

func (n *userResolver) ID() graphql.ID { return token.Encode(model.KindUser, n.m.ID) }
func (n *userResolver) Rowid() int32 { return int32(n.m.ID) }
func (n *userResolver) Username() string { return n.m.Username }
func (n *userResolver) Nickname() string { return n.m.Nickname }
func (n *userResolver) Profile() string { return n.m.Profile }
func (n *userResolver) Credit() int32 { return n.m.Credit }
func (n *userResolver) HideBookmark() bool { return n.m.HideBookmark }
func (n *userResolver) IsStaff() bool { return n.m.IsStaff }
func (n *userResolver) DateJoined() graphql.Time {
	return graphql.Time{Time: n.m.DateJoined}
}

func (n *userResolver) LastLogin() *graphql.Time {
	if n.m.LastLogin == nil {
		return nil
	}
	return &graphql.Time{Time: *n.m.LastLogin}
}

func (n *userResolver) CurrentAward(ctx context.Context) (*userAwardResolver, error) {
	if n.m.CurrentAwardID == nil {
		return nil, nil
	}
	userAward, err := get[model.UserAward](ctx, n.r.store, *n.m.CurrentAwardID)
	if errors.Is(err, serrors.ErrRecordDNE) {
		return nil, nil
	}
	if err != nil {
		return nil, n.r.fail(ctx, err, "resolve current award")
	}
	return &userAwardResolver{r: n.r, m: *userAward}, nil
}

func (n *userResolver) LastReadDm(ctx context.Context) (*directMessageResolver, error) {
	if n.m.LastReadDmID == nil {
		return nil, nil
	}
	message, err := get[model.DirectMessage](ctx, n.r.store, *n.m.LastReadDmID)
	if errors.Is(err, serrors.ErrRecordDNE) {
		return nil, nil
	}
	if err != nil {
		return nil, n.r.fail(ctx, err, "resolve last read direct message")
	}
	return &directMessageResolver{r: n.r, m: *message}, nil
}

// loadCounts retrieves the user's counts once, however many count fields
// are requested.
func (n *userResolver) loadCounts(ctx context.Context) (*db.UserCounts, error) {
	n.countsOnce.Do(func() {
		n.counts, n.countsErr = n.r.store.UserCounts(ctx, n.m.ID)
	})
	if n.countsErr != nil {
		return nil, n.r.fail(ctx, n.countsErr, "resolve user counts")
	}
	return n.counts, nil
}

func (n *userResolver) count(ctx context.Context, field func(*db.UserCounts) int64) (int32, error) {
	counts, err := n.loadCounts(ctx)
	if err != nil {
		return 0, err
	}
	return int32(field(counts)), nil
}

func (n *userResolver) PuzzleCount(ctx context.Context) (int32, error) {
	return n.count(ctx, func(c *db.UserCounts) int64 { return c.PuzzleCount })
}

func (n *userResolver) QuesCount(ctx context.Context) (int32, error) {
	return n.count(ctx, func(c *db.UserCounts) int64 { return c.QuesCount })
}

func (n *userResolver) GoodQuesCount(ctx context.Context) (int32, error) {
	return n.count(ctx, func(c *db.UserCounts) int64 { return c.GoodQuesCount })
}

func (n *userResolver) TrueQuesCount(ctx context.Context) (int32, error) {
	return n.count(ctx, func(c *db.UserCounts) int64 { return c.TrueQuesCount })
}

func (n *userResolver) CommentCount(ctx context.Context) (int32, error) {
	return n.count(ctx, func(c *db.UserCounts) int64 { return c.CommentCount })
}

func (n *userResolver) RcommentCount(ctx context.Context) (int32, error) {
	return n.count(ctx, func(c *db.UserCounts) int64 { return c.ReceivedCommentCount })
}

func (n *userResolver) StarCount(ctx context.Context) (int32, error) {
	return n.count(ctx, func(c *db.UserCounts) int64 { return c.StarCount })
}

func (n *userResolver) StarSum(ctx context.Context) (int32, error) {
	return n.count(ctx, func(c *db.UserCounts) int64 { return c.StarSum })
}

func (n *userResolver) RstarCount(ctx context.Context) (int32, error) {
	return n.count(ctx, func(c *db.UserCounts) int64 { return c.ReceivedStarCount })
}

func (n *userResolver) RstarSum(ctx context.Context) (int32, error) {
	return n.count(ctx, func(c *db.UserCounts) int64 { return c.ReceivedStarSum })
}

// DMCount is the number of direct messages the user sent or received.
func (n *userResolver) DMCount(ctx context.Context) (int32, error) {
	return n.count(ctx, func(c *db.UserCounts) int64 { return c.DMCount })
}

func (n *userResolver) CanVote(ctx context.Context) (bool, error) {
	counts, err := n.loadCounts(ctx)
	if err != nil {
		return false, err
	}
	return n.r.ctrl.CanVote(n.m, *counts), nil
}

func (n *userResolver) CanReviewAwardApplication(ctx context.Context) (bool, error) {
	return n.permission(ctx, model.PermReviewAwardApplication)
}

func (n *userResolver) CanSendGlobalNotification(ctx context.Context) (bool, error) {
	return n.permission(ctx, model.PermSendGlobalNotification)
}

func (n *userResolver) permission(ctx context.Context, codename string) (bool, error) {
	ok, err := n.r.store.HasPermission(ctx, n.m.ID, codename)
	if err != nil {
		return false, n.r.fail(ctx, err, "resolve user permission")
	}
	return ok, nil
}

// --- awards ---

func (r *Resolver) award(ctx context.Context, id int64) (*awardResolver, error) {
	award, err := get[model.Award](ctx, r.store, id)
	if err != nil {
		return nil, r.fail(ctx, err, "resolve award")
	}
	return &awardResolver{r: r, m: *award}, nil
}

type awardResolver struct {
	r *Resolver
	m model.Award
}

func (n *awardResolver) ID() graphql.ID { return token.Encode(model.KindAward, n.m.ID) }
func (n *awardResolver) Rowid() int32 { return int32(n.m.ID) }
func (n *awardResolver) Name() string { return n.m.Name }
func (n *awardResolver) Description() string { return n.m.Description }
func (n *awardResolver) GroupName() string { return n.m.GroupName }

type userAwardResolver struct {
	r *Resolver
	m model.UserAward
}

func (n *userAwardResolver) ID() graphql.ID { return token.Encode(model.KindUserAward, n.m.ID) }
func (n *userAwardResolver) Rowid() int32 { return int32(n.m.ID) }

func (n *userAwardResolver) User(ctx context.Context) (*userResolver, error) {
	return n.r.user(ctx, n.m.UserID)
}

func (n *userAwardResolver) Award(ctx context.Context) (*awardResolver, error) {
	return n.r.award(ctx, n.m.AwardID)
}

func (n *userAwardResolver) Created() graphql.Time {
	return graphql.Time{Time: n.m.Created}
}

type awardApplicationResolver struct {
	r *Resolver
	m model.AwardApplication
}

func (n *awardApplicationResolver) ID() graphql.ID {
	return token.Encode(model.KindAwardApplication, n.m.ID)
}

func (n *awardApplicationResolver) Rowid() int32 { return int32(n.m.ID) }
func (n *awardApplicationResolver) Status() int32 { return n.m.Status }
func (n *awardApplicationResolver) Comment() string { return n.m.Comment }
func (n *awardApplicationResolver) Reason() string { return n.m.Reason }

func (n *awardApplicationResolver) Applier(ctx context.Context) (*userResolver, error) {
	return n.r.user(ctx, n.m.ApplierID)
}

func (n *awardApplicationResolver) Award(ctx context.Context) (*awardResolver, error) {
	return n.r.award(ctx, n.m.AwardID)
}

func (n *awardApplicationResolver) Reviewer(ctx context.Context) (*userResolver, error) {
	if n.m.ReviewerID == nil {
		return nil, nil
	}
	return n.r.user(ctx, *n.m.ReviewerID)
}

func (n *awardApplicationResolver) Created() graphql.Time {
	return graphql.Time{Time: n.m.Created}
}

func (n *awardApplicationResolver) Reviewed() *graphql.Time {
	if n.m.Reviewed == nil {
		return nil
	}
	return &graphql.Time{Time: *n.m.Reviewed}
}

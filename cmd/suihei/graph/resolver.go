// Package graph serves suihei's GraphQL API. Queries are resolved against the
// store through the query package, mutations are carried out by the
// controller and subscriptions are fed by the change-event router.
package graph

import (
	"context"
	_ "embed"

	"github.com/tjper/suihei/cmd/suihei/controller"
	"github.com/tjper/suihei/cmd/suihei/db"
	"github.com/tjper/suihei/cmd/suihei/model"
	"github.com/tjper/suihei/cmd/suihei/router"
	ihttp "github.com/tjper/suihei/internal/http"

	graphql "github.com/graph-gophers/graphql-go"
	"go.uber.org/zap"
)

//go:embed schema.graphql
var schema string

// NewSchema parses suihei's GraphQL schema, binding it to resolver.
func NewSchema(resolver *Resolver, options ...graphql.SchemaOpt) (*graphql.Schema, error) {
	options = append([]graphql.SchemaOpt{graphql.MaxDepth(20)}, options...)
	return graphql.ParseSchema(schema, resolver, options...)
}

// IController represents the API by which the Resolver carries out
// mutations.
type IController interface {
	Login(context.Context, controller.LoginInput) (*controller.LoginOutput, error)
	Logout(context.Context) error
	Register(context.Context, controller.RegisterInput) (*controller.LoginOutput, error)
	UpdateUser(context.Context, controller.UpdateUserInput) (*model.User, error)
	UpdateCurrentAward(context.Context, *int64) (*model.User, error)
	UpdateLastReadDm(context.Context, int64) (*model.User, error)

	CreatePuzzle(context.Context, controller.CreatePuzzleInput) (*model.Puzzle, error)
	UpdatePuzzle(context.Context, controller.UpdatePuzzleInput) (*model.Puzzle, error)
	DeletePuzzle(context.Context, int64) error
	CreateHint(context.Context, controller.CreateHintInput) (*model.Hint, error)
	UpdateHint(context.Context, controller.UpdateHintInput) (*model.Hint, error)

	CreateQuestion(context.Context, controller.CreateQuestionInput) (*model.Dialogue, error)
	UpdateAnswer(context.Context, controller.UpdateAnswerInput) (*model.Dialogue, error)
	UpdateQuestion(context.Context, controller.UpdateQuestionInput) (*model.Dialogue, error)

	CreateChatMessage(context.Context, controller.CreateChatMessageInput) (*model.ChatMessage, error)
	CreateDirectMessage(context.Context, controller.CreateDirectMessageInput) (*model.DirectMessage, error)
	CreateChatRoom(context.Context, controller.CreateChatRoomInput) (*model.ChatRoom, error)
	UpdateChatRoom(context.Context, controller.UpdateChatRoomInput) (*model.ChatRoom, error)
	CreateFavoriteChatRoom(context.Context, string) (*model.FavoriteChatRoom, error)
	DeleteFavoriteChatRoom(context.Context, string) error

	CreateAwardApplication(context.Context, controller.CreateAwardApplicationInput) (*model.AwardApplication, error)
	UpdateAwardApplication(context.Context, controller.UpdateAwardApplicationInput) (*model.AwardApplication, error)

	UpdateStar(context.Context, controller.UpdateStarInput) (*model.Star, error)
	UpdateComment(context.Context, controller.UpdateCommentInput) (*model.Comment, error)
	CreateBookmark(context.Context, controller.CreateBookmarkInput) (*model.Bookmark, error)
	UpdateBookmark(context.Context, controller.UpdateBookmarkInput) (*model.Bookmark, error)
	DeleteBookmark(context.Context, int64) error

	CreateSchedule(context.Context, controller.CreateScheduleInput) (*model.Schedule, error)
	DeleteSchedule(context.Context, int64) error

	CanVote(model.User, db.UserCounts) bool
}

// IRouter attaches subscriptions to the change-event router.
type IRouter interface {
	Subscribe(ctx context.Context, kinds []string, filter router.Filter) <-chan model.Record
}

// IWiki serves wiki pages by name.
type IWiki interface {
	Page(name string) (string, error)
}

// NewResolver creates a new Resolver instance.
func NewResolver(
	logger *zap.Logger,
	store db.IStore,
	ctrl IController,
	router IRouter,
	wiki IWiki,
	cookies ihttp.CookieOptions,
) *Resolver {
	return &Resolver{
		logger:  logger,
		store:   store,
		ctrl:    ctrl,
		router:  router,
		wiki:    wiki,
		cookies: cookies,
	}
}

// Resolver is the root resolver of suihei's GraphQL schema.
type Resolver struct {
	logger  *zap.Logger
	store   db.IStore
	ctrl    IController
	router  IRouter
	wiki    IWiki
	cookies ihttp.CookieOptions
}

func (r *Resolver) Query() *queryResolver {
	return &queryResolver{r}
}

func (r *Resolver) Mutation() *mutationResolver {
	return &mutationResolver{r}
}

func (r *Resolver) Subscription() *subscriptionResolver {
	return &subscriptionResolver{r}
}

type queryResolver struct{ *Resolver }

type mutationResolver struct{ *Resolver }

type subscriptionResolver struct{ *Resolver }

package graph

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	serrors "github.com/tjper/suihei/cmd/suihei/errors"
	"github.com/tjper/suihei/cmd/suihei/model"
	"github.com/tjper/suihei/cmd/suihei/query"
	"github.com/tjper/suihei/cmd/suihei/wiki"
	"github.com/tjper/suihei/internal/session"

	graphql "github.com/graph-gophers/graphql-go"
)

func (r *queryResolver) Me(ctx context.Context) (*userResolver, error) {
	viewer, ok := session.UserFromContext(ctx)
	if !ok {
		return nil, nil
	}
	return r.user(ctx, viewer.ID)
}

// --- single lookups ---

type idArgs struct {
	ID graphql.ID
}

func (r *queryResolver) User(ctx context.Context, args idArgs) (*userResolver, error) {
	user, err := lookup[model.User](ctx, r.store, args.ID)
	if err != nil {
		return nil, r.fail(ctx, err, "lookup user")
	}
	return newUserResolver(r.Resolver, *user), nil
}

func (r *queryResolver) Award(ctx context.Context, args idArgs) (*awardResolver, error) {
	award, err := lookup[model.Award](ctx, r.store, args.ID)
	if err != nil {
		return nil, r.fail(ctx, err, "lookup award")
	}
	return &awardResolver{r: r.Resolver, m: *award}, nil
}

func (r *queryResolver) UserAward(ctx context.Context, args idArgs) (*userAwardResolver, error) {
	userAward, err := lookup[model.UserAward](ctx, r.store, args.ID)
	if err != nil {
		return nil, r.fail(ctx, err, "lookup user award")
	}
	return &userAwardResolver{r: r.Resolver, m: *userAward}, nil
}

func (r *queryResolver) AwardApplication(ctx context.Context, args idArgs) (*awardApplicationResolver, error) {
	application, err := lookup[model.AwardApplication](ctx, r.store, args.ID)
	if err != nil {
		return nil, r.fail(ctx, err, "lookup award application")
	}
	return &awardApplicationResolver{r: r.Resolver, m: *application}, nil
}

func (r *queryResolver) Puzzle(ctx context.Context, args idArgs) (*puzzleResolver, error) {
	puzzle, err := lookup[model.Puzzle](ctx, r.store, args.ID)
	if err != nil {
		return nil, r.fail(ctx, err, "lookup puzzle")
	}
	return newPuzzleResolver(r.Resolver, *puzzle), nil
}

func (r *queryResolver) Dialogue(ctx context.Context, args idArgs) (*dialogueResolver, error) {
	dialogue, err := lookup[model.Dialogue](ctx, r.store, args.ID)
	if err != nil {
		return nil, r.fail(ctx, err, "lookup dialogue")
	}
	return &dialogueResolver{r: r.Resolver, m: *dialogue}, nil
}

func (r *queryResolver) Hint(ctx context.Context, args idArgs) (*hintResolver, error) {
	hint, err := lookup[model.Hint](ctx, r.store, args.ID)
	if err != nil {
		return nil, r.fail(ctx, err, "lookup hint")
	}
	return &hintResolver{r: r.Resolver, m: *hint}, nil
}

func (r *queryResolver) Chatroom(ctx context.Context, args idArgs) (*chatRoomResolver, error) {
	room, err := lookup[model.ChatRoom](ctx, r.store, args.ID)
	if err != nil {
		return nil, r.fail(ctx, err, "lookup chat room")
	}
	return &chatRoomResolver{r: r.Resolver, m: *room}, nil
}

func (r *queryResolver) Chatmessage(ctx context.Context, args idArgs) (*chatMessageResolver, error) {
	message, err := lookup[model.ChatMessage](ctx, r.store, args.ID)
	if err != nil {
		return nil, r.fail(ctx, err, "lookup chat message")
	}
	return &chatMessageResolver{r: r.Resolver, m: *message}, nil
}

func (r *queryResolver) FavoriteChatroom(ctx context.Context, args idArgs) (*favoriteChatRoomResolver, error) {
	favorite, err := lookup[model.FavoriteChatRoom](ctx, r.store, args.ID)
	if err != nil {
		return nil, r.fail(ctx, err, "lookup favorite chat room")
	}
	return &favoriteChatRoomResolver{r: r.Resolver, m: *favorite}, nil
}

func (r *queryResolver) Directmessage(ctx context.Context, args idArgs) (*directMessageResolver, error) {
	message, err := lookup[model.DirectMessage](ctx, r.store, args.ID)
	if err != nil {
		return nil, r.fail(ctx, err, "lookup direct message")
	}
	return &directMessageResolver{r: r.Resolver, m: *message}, nil
}

func (r *queryResolver) Comment(ctx context.Context, args idArgs) (*commentResolver, error) {
	comment, err := lookup[model.Comment](ctx, r.store, args.ID)
	if err != nil {
		return nil, r.fail(ctx, err, "lookup comment")
	}
	return &commentResolver{r: r.Resolver, m: *comment}, nil
}

func (r *queryResolver) Star(ctx context.Context, args idArgs) (*starResolver, error) {
	star, err := lookup[model.Star](ctx, r.store, args.ID)
	if err != nil {
		return nil, r.fail(ctx, err, "lookup star")
	}
	return &starResolver{r: r.Resolver, m: *star}, nil
}

func (r *queryResolver) Bookmark(ctx context.Context, args idArgs) (*bookmarkResolver, error) {
	bookmark, err := lookup[model.Bookmark](ctx, r.store, args.ID)
	if err != nil {
		return nil, r.fail(ctx, err, "lookup bookmark")
	}
	return &bookmarkResolver{r: r.Resolver, m: *bookmark}, nil
}

func (r *queryResolver) Schedule(ctx context.Context, args idArgs) (*scheduleResolver, error) {
	schedule, err := lookup[model.Schedule](ctx, r.store, args.ID)
	if err != nil {
		return nil, r.fail(ctx, err, "lookup schedule")
	}
	return &scheduleResolver{r: r.Resolver, m: *schedule}, nil
}

func (r *queryResolver) Event(ctx context.Context, args idArgs) (*eventResolver, error) {
	event, err := lookup[model.Event](ctx, r.store, args.ID)
	if err != nil {
		return nil, r.fail(ctx, err, "lookup event")
	}
	return &eventResolver{r: r.Resolver, m: *event}, nil
}

func (r *queryResolver) Wiki(ctx context.Context, args struct{ Name string }) (*wikiResolver, error) {
	content, err := r.wiki.Page(args.Name)
	if errors.Is(err, wiki.ErrInvalidName) {
		return nil, r.fail(ctx, serrors.ValidationError(fmt.Sprintf("Invalid wiki page name %q", args.Name)), "")
	}
	if errors.Is(err, wiki.ErrPageDNE) {
		return nil, r.fail(ctx, serrors.NotFoundError(fmt.Sprintf("Wiki page %s not found", args.Name)), "")
	}
	if err != nil {
		return nil, r.fail(ctx, err, "read wiki page")
	}
	return &wikiResolver{name: args.Name, content: content}, nil
}

// --- list queries ---

func (r *queryResolver) AllUsers(ctx context.Context, args struct {
	OrderBy          *[]string
	Limit            *int32
	Offset           *int32
	Username         *string
	NicknameContains *string
}) (*connection[*userResolver], error) {
	filters := query.Args{}
	set(filters, "username", args.Username)
	set(filters, "nickname__contains", args.NicknameContains)

	conn, err := list(ctx, r.Resolver, request(args.OrderBy, args.Limit, args.Offset, filters),
		func(m model.User) *userResolver { return newUserResolver(r.Resolver, m) })
	if err != nil {
		return nil, r.fail(ctx, err, "list users")
	}
	return conn, nil
}

func (r *queryResolver) AllAwards(ctx context.Context, args struct {
	OrderBy   *[]string
	Limit     *int32
	Offset    *int32
	GroupName *string
}) (*connection[*awardResolver], error) {
	filters := query.Args{}
	set(filters, "groupName", args.GroupName)

	conn, err := list(ctx, r.Resolver, request(args.OrderBy, args.Limit, args.Offset, filters),
		func(m model.Award) *awardResolver { return &awardResolver{r: r.Resolver, m: m} })
	if err != nil {
		return nil, r.fail(ctx, err, "list awards")
	}
	return conn, nil
}

func (r *queryResolver) AllUserAwards(ctx context.Context, args struct {
	OrderBy *[]string
	Limit   *int32
	Offset  *int32
	User    *graphql.ID
	Award   *graphql.ID
}) (*connection[*userAwardResolver], error) {
	filters := query.Args{}
	set(filters, "user", args.User)
	set(filters, "award", args.Award)

	conn, err := list(ctx, r.Resolver, request(args.OrderBy, args.Limit, args.Offset, filters),
		func(m model.UserAward) *userAwardResolver { return &userAwardResolver{r: r.Resolver, m: m} })
	if err != nil {
		return nil, r.fail(ctx, err, "list user awards")
	}
	return conn, nil
}

func (r *queryResolver) AllAwardApplications(ctx context.Context, args struct {
	OrderBy *[]string
	Limit   *int32
	Offset  *int32
	Status  *int32
	Applier *graphql.ID
	Award   *graphql.ID
}) (*connection[*awardApplicationResolver], error) {
	filters := query.Args{}
	set(filters, "status", args.Status)
	set(filters, "applier", args.Applier)
	set(filters, "award", args.Award)

	conn, err := list(ctx, r.Resolver, request(args.OrderBy, args.Limit, args.Offset, filters),
		func(m model.AwardApplication) *awardApplicationResolver {
			return &awardApplicationResolver{r: r.Resolver, m: m}
		})
	if err != nil {
		return nil, r.fail(ctx, err, "list award applications")
	}
	return conn, nil
}

func (r *queryResolver) AllPuzzles(ctx context.Context, args struct {
	OrderBy          *[]string
	Limit            *int32
	Offset           *int32
	User             *graphql.ID
	Status           *int32
	StatusGt         *int32
	TitleContains    *string
	ContentContains  *string
	SolutionContains *string
	GenreExact       *int32
	YamiExact        *int32
	CreatedYear      *int32
	CreatedMonth     *int32
}) (*connection[*puzzleResolver], error) {
	filters := query.Args{}
	set(filters, "user", args.User)
	set(filters, "status", args.Status)
	set(filters, "status__gt", args.StatusGt)
	set(filters, "title__contains", args.TitleContains)
	set(filters, "content__contains", args.ContentContains)
	set(filters, "solution__contains", args.SolutionContains)
	set(filters, "genre__exact", args.GenreExact)
	set(filters, "yami__exact", args.YamiExact)
	set(filters, "created__year", args.CreatedYear)
	set(filters, "created__month", args.CreatedMonth)

	conn, err := list(ctx, r.Resolver, request(args.OrderBy, args.Limit, args.Offset, filters),
		func(m model.Puzzle) *puzzleResolver { return newPuzzleResolver(r.Resolver, m) })
	if err != nil {
		return nil, r.fail(ctx, err, "list puzzles")
	}
	return conn, nil
}

func (r *queryResolver) AllDialogues(ctx context.Context, args struct {
	OrderBy *[]string
	Limit   *int32
	Offset  *int32
	User    *graphql.ID
	Puzzle  *graphql.ID
	Good    *bool
	True    *bool
}) (*connection[*dialogueResolver], error) {
	filters := query.Args{}
	set(filters, "user", args.User)
	set(filters, "puzzle", args.Puzzle)
	set(filters, "good", args.Good)
	set(filters, "true", args.True)

	conn, err := list(ctx, r.Resolver, request(args.OrderBy, args.Limit, args.Offset, filters),
		func(m model.Dialogue) *dialogueResolver { return &dialogueResolver{r: r.Resolver, m: m} })
	if err != nil {
		return nil, r.fail(ctx, err, "list dialogues")
	}
	return conn, nil
}

func (r *queryResolver) AllHints(ctx context.Context, args struct {
	OrderBy *[]string
	Limit   *int32
	Offset  *int32
	Puzzle  *graphql.ID
}) (*connection[*hintResolver], error) {
	filters := query.Args{}
	set(filters, "puzzle", args.Puzzle)

	conn, err := list(ctx, r.Resolver, request(args.OrderBy, args.Limit, args.Offset, filters),
		func(m model.Hint) *hintResolver { return &hintResolver{r: r.Resolver, m: m} })
	if err != nil {
		return nil, r.fail(ctx, err, "list hints")
	}
	return conn, nil
}

func (r *queryResolver) AllChatrooms(ctx context.Context, args struct {
	OrderBy *[]string
	Limit   *int32
	Offset  *int32
	User    *graphql.ID
	Name    *string
	Private *bool
}) (*connection[*chatRoomResolver], error) {
	filters := query.Args{}
	set(filters, "user", args.User)
	set(filters, "name", args.Name)
	set(filters, "private", args.Private)

	conn, err := list(ctx, r.Resolver, request(args.OrderBy, args.Limit, args.Offset, filters),
		func(m model.ChatRoom) *chatRoomResolver { return &chatRoomResolver{r: r.Resolver, m: m} })
	if err != nil {
		return nil, r.fail(ctx, err, "list chat rooms")
	}
	return conn, nil
}

func (r *queryResolver) AllChatmessages(ctx context.Context, args struct {
	OrderBy      *[]string
	Limit        *int32
	Offset       *int32
	User         *graphql.ID
	Chatroom     *graphql.ID
	ChatroomName *string
}) (*connection[*chatMessageResolver], error) {
	filters := query.Args{}
	set(filters, "user", args.User)
	set(filters, "chatroom", args.Chatroom)
	set(filters, "chatroomName", args.ChatroomName)

	conn, err := list(ctx, r.Resolver, request(args.OrderBy, args.Limit, args.Offset, filters),
		func(m model.ChatMessage) *chatMessageResolver { return &chatMessageResolver{r: r.Resolver, m: m} })
	if err != nil {
		return nil, r.fail(ctx, err, "list chat messages")
	}
	return conn, nil
}

func (r *queryResolver) AllFavoriteChatrooms(ctx context.Context, args struct {
	OrderBy  *[]string
	Limit    *int32
	Offset   *int32
	User     *graphql.ID
	Chatroom *graphql.ID
}) (*connection[*favoriteChatRoomResolver], error) {
	filters := query.Args{}
	set(filters, "user", args.User)
	set(filters, "chatroom", args.Chatroom)

	conn, err := list(ctx, r.Resolver, request(args.OrderBy, args.Limit, args.Offset, filters),
		func(m model.FavoriteChatRoom) *favoriteChatRoomResolver {
			return &favoriteChatRoomResolver{r: r.Resolver, m: m}
		})
	if err != nil {
		return nil, r.fail(ctx, err, "list favorite chat rooms")
	}
	return conn, nil
}

// AllDirectmessages filters by userId, matching messages the user either
// sent or received.
func (r *queryResolver) AllDirectmessages(ctx context.Context, args struct {
	OrderBy  *[]string
	Limit    *int32
	Offset   *int32
	UserID   *graphql.ID
	Sender   *graphql.ID
	Receiver *graphql.ID
}) (*connection[*directMessageResolver], error) {
	filters := query.Args{}
	set(filters, "user", args.UserID)
	set(filters, "sender", args.Sender)
	set(filters, "receiver", args.Receiver)

	conn, err := list(ctx, r.Resolver, request(args.OrderBy, args.Limit, args.Offset, filters),
		func(m model.DirectMessage) *directMessageResolver { return &directMessageResolver{r: r.Resolver, m: m} })
	if err != nil {
		return nil, r.fail(ctx, err, "list direct messages")
	}
	return conn, nil
}

func (r *queryResolver) AllComments(ctx context.Context, args struct {
	OrderBy        *[]string
	Limit          *int32
	Offset         *int32
	User           *graphql.ID
	Puzzle         *graphql.ID
	PuzzleUser     *graphql.ID
	PuzzleStatusGt *int32
	Spoiler        *bool
}) (*connection[*commentResolver], error) {
	filters := query.Args{}
	set(filters, "user", args.User)
	set(filters, "puzzle", args.Puzzle)
	set(filters, "puzzle__user", args.PuzzleUser)
	set(filters, "puzzle__status__gt", args.PuzzleStatusGt)
	set(filters, "spoiler", args.Spoiler)

	conn, err := list(ctx, r.Resolver, request(args.OrderBy, args.Limit, args.Offset, filters),
		func(m model.Comment) *commentResolver { return &commentResolver{r: r.Resolver, m: m} })
	if err != nil {
		return nil, r.fail(ctx, err, "list comments")
	}
	return conn, nil
}

type ratingListArgs struct {
	OrderBy *[]string
	Limit   *int32
	Offset  *int32
	User    *graphql.ID
	Puzzle  *graphql.ID
}

func (a ratingListArgs) request() query.Request {
	filters := query.Args{}
	set(filters, "user", a.User)
	set(filters, "puzzle", a.Puzzle)
	return request(a.OrderBy, a.Limit, a.Offset, filters)
}

func (r *queryResolver) AllStars(ctx context.Context, args ratingListArgs) (*connection[*starResolver], error) {
	conn, err := list(ctx, r.Resolver, args.request(),
		func(m model.Star) *starResolver { return &starResolver{r: r.Resolver, m: m} })
	if err != nil {
		return nil, r.fail(ctx, err, "list stars")
	}
	return conn, nil
}

func (r *queryResolver) AllBookmarks(ctx context.Context, args ratingListArgs) (*connection[*bookmarkResolver], error) {
	conn, err := list(ctx, r.Resolver, args.request(),
		func(m model.Bookmark) *bookmarkResolver { return &bookmarkResolver{r: r.Resolver, m: m} })
	if err != nil {
		return nil, r.fail(ctx, err, "list bookmarks")
	}
	return conn, nil
}

type userListArgs struct {
	OrderBy *[]string
	Limit   *int32
	Offset  *int32
	User    *graphql.ID
}

func (a userListArgs) request() query.Request {
	filters := query.Args{}
	set(filters, "user", a.User)
	return request(a.OrderBy, a.Limit, a.Offset, filters)
}

func (r *queryResolver) AllSchedules(ctx context.Context, args userListArgs) (*connection[*scheduleResolver], error) {
	conn, err := list(ctx, r.Resolver, args.request(),
		func(m model.Schedule) *scheduleResolver { return &scheduleResolver{r: r.Resolver, m: m} })
	if err != nil {
		return nil, r.fail(ctx, err, "list schedules")
	}
	return conn, nil
}

func (r *queryResolver) AllEvents(ctx context.Context, args userListArgs) (*connection[*eventResolver], error) {
	conn, err := list(ctx, r.Resolver, args.request(),
		func(m model.Event) *eventResolver { return &eventResolver{r: r.Resolver, m: m} })
	if err != nil {
		return nil, r.fail(ctx, err, "list events")
	}
	return conn, nil
}

// PuzzleShowUnion lists the dialogues and hints of a puzzle, ordered by
// creation time.
func (r *queryResolver) PuzzleShowUnion(ctx context.Context, args struct {
	ID     graphql.ID
	Limit  *int32
	Offset *int32
}) (*connection[*puzzleShowUnionResolver], error) {
	puzzle, err := lookup[model.Puzzle](ctx, r.store, args.ID)
	if err != nil {
		return nil, r.fail(ctx, err, "lookup puzzle")
	}

	records, err := r.store.PuzzleShowUnion(ctx, puzzle.ID)
	if err != nil {
		return nil, r.fail(ctx, err, "list puzzle show union")
	}

	page := &query.Page[model.Record]{
		TotalCount: int64(len(records)),
		Records:    window(records, args.Limit, args.Offset),
	}
	return newConnection(page, func(record model.Record) *puzzleShowUnionResolver {
		node, _ := newPuzzleShowUnionResolver(r.Resolver, record)
		return node
	}), nil
}

// window slices records as a limit and offset would.
func window[T any](records []T, limit, offset *int32) []T {
	start := 0
	if offset != nil && *offset > 0 {
		start = int(*offset)
	}
	if start > len(records) {
		start = len(records)
	}
	end := len(records)
	if limit != nil && start+int(*limit) < end {
		end = start + int(*limit)
		if end < start {
			end = start
		}
	}
	return records[start:end]
}

// --- groups ---

func (r *queryResolver) TruncDateGroups(ctx context.Context, args struct {
	ClassName  string
	User       *graphql.ID
	By         string
	CreatedGte *graphql.Time
	CreatedLte *graphql.Time
}) ([]*dateGroupResolver, error) {
	rs, err := r.store.Query(args.ClassName)
	if err != nil {
		return nil, r.fail(ctx, err, "query date groups")
	}

	filters := query.Args{}
	set(filters, "user", args.User)
	if args.CreatedGte != nil {
		filters["created__gte"] = args.CreatedGte.Time.UTC()
	}
	if args.CreatedLte != nil {
		filters["created__lte"] = args.CreatedLte.Time.UTC()
	}
	rs, err = query.ApplyFilter(ctx, rs, filters, r.store)
	if err != nil {
		return nil, r.fail(ctx, err, "filter date groups")
	}

	groups, err := query.TruncDate(ctx, rs, query.Unit(strings.ToLower(args.By)))
	if err != nil {
		return nil, r.fail(ctx, err, "group by date")
	}

	resolvers := make([]*dateGroupResolver, 0, len(groups))
	for _, group := range groups {
		resolvers = append(resolvers, &dateGroupResolver{timestop: group.Date, count: group.Count})
	}
	return resolvers, nil
}

func (r *queryResolver) TruncValueGroups(ctx context.Context, args struct {
	ClassName string
	Value     string
	User      *graphql.ID
}) ([]*valueGroupResolver, error) {
	rs, err := r.store.Query(args.ClassName)
	if err != nil {
		return nil, r.fail(ctx, err, "query value groups")
	}

	filters := query.Args{}
	set(filters, "user", args.User)
	rs, err = query.ApplyFilter(ctx, rs, filters, r.store)
	if err != nil {
		return nil, r.fail(ctx, err, "filter value groups")
	}

	groups, err := query.TruncValue(ctx, rs, args.Value)
	if err != nil {
		return nil, r.fail(ctx, err, "group by value")
	}

	resolvers := make([]*valueGroupResolver, 0, len(groups))
	for _, group := range groups {
		resolvers = append(resolvers, &valueGroupResolver{value: group.Value, count: group.Count})
	}
	return resolvers, nil
}

type dateGroupResolver struct {
	timestop time.Time
	count    int64
}

func (g *dateGroupResolver) Timestop() graphql.Time { return graphql.Time{Time: g.timestop} }
func (g *dateGroupResolver) Count() int32 { return int32(g.count) }

type valueGroupResolver struct {
	value string
	count int64
}

func (g *valueGroupResolver) Value() string { return g.value }
func (g *valueGroupResolver) Count() int32 { return int32(g.count) }

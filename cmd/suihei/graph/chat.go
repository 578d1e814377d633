package graph

import (
	"context"

	"github.com/tjper/suihei/cmd/suihei/model"
	"github.com/tjper/suihei/internal/token"

	graphql "github.com/graph-gophers/graphql-go"
)

func (r *Resolver) chatRoom(ctx context.Context, id int64) (*chatRoomResolver, error) {
	room, err := get[model.ChatRoom](ctx, r.store, id)
	if err != nil {
		return nil, r.fail(ctx, err, "resolve chat room")
	}
	return &chatRoomResolver{r: r, m: *room}, nil
}

type chatRoomResolver struct {
	r *Resolver
	m model.ChatRoom
}

func (n *chatRoomResolver) ID() graphql.ID { return token.Encode(model.KindChatRoom, n.m.ID) }
func (n *chatRoomResolver) Rowid() int32 { return int32(n.m.ID) }
func (n *chatRoomResolver) Name() string { return n.m.Name }
func (n *chatRoomResolver) Description() string { return n.m.Description }
func (n *chatRoomResolver) Private() bool { return n.m.Private }

func (n *chatRoomResolver) Created() graphql.Time {
	return graphql.Time{Time: n.m.Created}
}

func (n *chatRoomResolver) User(ctx context.Context) (*userResolver, error) {
	return n.r.user(ctx, n.m.UserID)
}

type chatMessageResolver struct {
	r *Resolver
	m model.ChatMessage
}

func (n *chatMessageResolver) ID() graphql.ID { return token.Encode(model.KindChatMessage, n.m.ID) }
func (n *chatMessageResolver) Rowid() int32 { return int32(n.m.ID) }
func (n *chatMessageResolver) Content() string { return n.m.Content }
func (n *chatMessageResolver) EditTimes() int32 { return n.m.EditTimes }

func (n *chatMessageResolver) Created() graphql.Time {
	return graphql.Time{Time: n.m.Created}
}

// Chatroom is preloaded by list queries and subscriptions.
func (n *chatMessageResolver) Chatroom(ctx context.Context) (*chatRoomResolver, error) {
	if n.m.ChatRoom != nil {
		return &chatRoomResolver{r: n.r, m: *n.m.ChatRoom}, nil
	}
	return n.r.chatRoom(ctx, n.m.ChatRoomID)
}

func (n *chatMessageResolver) User(ctx context.Context) (*userResolver, error) {
	return n.r.user(ctx, n.m.UserID)
}

type favoriteChatRoomResolver struct {
	r *Resolver
	m model.FavoriteChatRoom
}

func (n *favoriteChatRoomResolver) ID() graphql.ID {
	return token.Encode(model.KindFavoriteChatRoom, n.m.ID)
}

func (n *favoriteChatRoomResolver) Rowid() int32 { return int32(n.m.ID) }

func (n *favoriteChatRoomResolver) User(ctx context.Context) (*userResolver, error) {
	return n.r.user(ctx, n.m.UserID)
}

func (n *favoriteChatRoomResolver) Chatroom(ctx context.Context) (*chatRoomResolver, error) {
	return n.r.chatRoom(ctx, n.m.ChatRoomID)
}

type directMessageResolver struct {
	r *Resolver
	m model.DirectMessage
}

func (n *directMessageResolver) ID() graphql.ID {
	return token.Encode(model.KindDirectMessage, n.m.ID)
}

func (n *directMessageResolver) Rowid() int32 { return int32(n.m.ID) }
func (n *directMessageResolver) Content() string { return n.m.Content }
func (n *directMessageResolver) EditTimes() int32 { return n.m.EditTimes }

func (n *directMessageResolver) Created() graphql.Time {
	return graphql.Time{Time: n.m.Created}
}

func (n *directMessageResolver) Sender(ctx context.Context) (*userResolver, error) {
	return n.r.user(ctx, n.m.SenderID)
}

func (n *directMessageResolver) Receiver(ctx context.Context) (*userResolver, error) {
	return n.r.user(ctx, n.m.ReceiverID)
}

// --- schedules, events & wiki ---

type scheduleResolver struct {
	r *Resolver
	m model.Schedule
}

func (n *scheduleResolver) ID() graphql.ID { return token.Encode(model.KindSchedule, n.m.ID) }
func (n *scheduleResolver) Rowid() int32 { return int32(n.m.ID) }
func (n *scheduleResolver) Content() string { return n.m.Content }

func (n *scheduleResolver) Created() graphql.Time { return graphql.Time{Time: n.m.Created} }
func (n *scheduleResolver) Scheduled() graphql.Time { return graphql.Time{Time: n.m.Scheduled} }

func (n *scheduleResolver) User(ctx context.Context) (*userResolver, error) {
	return n.r.user(ctx, n.m.UserID)
}

type eventResolver struct {
	r *Resolver
	m model.Event
}

func (n *eventResolver) ID() graphql.ID { return token.Encode(model.KindEvent, n.m.ID) }
func (n *eventResolver) Rowid() int32 { return int32(n.m.ID) }
func (n *eventResolver) Title() string { return n.m.Title }
func (n *eventResolver) Banner() string { return n.m.Banner }
func (n *eventResolver) Content() string { return n.m.Content }
func (n *eventResolver) PageLink() string { return n.m.PageLink }

func (n *eventResolver) StartTime() graphql.Time { return graphql.Time{Time: n.m.StartTime} }
func (n *eventResolver) EndTime() graphql.Time { return graphql.Time{Time: n.m.EndTime} }

func (n *eventResolver) User(ctx context.Context) (*userResolver, error) {
	return n.r.user(ctx, n.m.UserID)
}

type wikiResolver struct {
	name    string
	content string
}

func (n *wikiResolver) Name() string { return n.name }
func (n *wikiResolver) Content() string { return n.content }

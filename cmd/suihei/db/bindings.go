package db

import (
	"github.com/tjper/suihei/cmd/suihei/model"
	"github.com/tjper/suihei/cmd/suihei/query"

	"gorm.io/gorm/clause"
)

// Registry creates the query.Registry binding every record kind served by
// suihei.
func Registry() (*query.Registry, error) {
	return query.NewRegistry(bindings()...)
}

func bindings() []query.Binding {
	return []query.Binding{
		{
			Kind:  model.KindUser,
			Table: "users",
			Order: orderable("id", "username", "nickname", "dateJoined", "credit"),
			Filters: map[string]query.Filter{
				"username":           query.Eq("users", "username"),
				"nickname__contains": query.Contains("users", "nickname"),
			},
		},
		{
			Kind:  model.KindAward,
			Table: "awards",
			Order: orderable("id", "name", "groupName"),
			Filters: map[string]query.Filter{
				"groupName": query.Eq("awards", "group_name"),
			},
		},
		{
			Kind:    model.KindUserAward,
			Table:   "user_awards",
			Order:   orderable("id", "created"),
			Filters: created("user_awards"),
			Relations: map[string]query.Relation{
				"user":  {Kind: model.KindUser, Cond: query.RelEq("user_awards", "user_id")},
				"award": {Kind: model.KindAward, Cond: query.RelEq("user_awards", "award_id")},
			},
			Timestamp: "created",
		},
		{
			Kind:  model.KindAwardApplication,
			Table: "award_applications",
			Order: orderable("id", "created", "reviewed", "status"),
			Filters: with(created("award_applications"), map[string]query.Filter{
				"status": query.Eq("award_applications", "status"),
			}),
			Relations: map[string]query.Relation{
				"applier": {Kind: model.KindUser, Cond: query.RelEq("award_applications", "applier_id")},
				"user":    {Kind: model.KindUser, Cond: query.RelEq("award_applications", "applier_id")},
				"award":   {Kind: model.KindAward, Cond: query.RelEq("award_applications", "award_id")},
			},
			Timestamp: "created",
		},
		{
			Kind:  model.KindPuzzle,
			Table: "puzzles",
			Order: with(
				orderable("id", "created", "modified", "status", "title", "genre", "yami", "dazedOn"),
				map[string]string{
					"starCount":     `(SELECT COUNT(*) FROM "stars" WHERE "stars"."puzzle_id" = "puzzles"."id")`,
					"starSum":       `(SELECT SUM("stars"."value") FROM "stars" WHERE "stars"."puzzle_id" = "puzzles"."id")`,
					"commentCount":  `(SELECT COUNT(*) FROM "comments" WHERE "comments"."puzzle_id" = "puzzles"."id")`,
					"bookmarkCount": `(SELECT COUNT(*) FROM "bookmarks" WHERE "bookmarks"."puzzle_id" = "puzzles"."id")`,
				},
			),
			Filters: with(created("puzzles"), map[string]query.Filter{
				"status":             query.Eq("puzzles", "status"),
				"status__gt":         query.Gt("puzzles", "status"),
				"created__year":      query.Year("puzzles", "created"),
				"created__month":     query.Month("puzzles", "created"),
				"title__contains":    query.Contains("puzzles", "title"),
				"content__contains":  query.Contains("puzzles", "content"),
				"solution__contains": query.Contains("puzzles", "solution"),
				"genre__exact":       query.Eq("puzzles", "genre"),
				"yami__exact":        query.Eq("puzzles", "yami"),
			}),
			Relations: map[string]query.Relation{
				"user": {Kind: model.KindUser, Cond: query.RelEq("puzzles", "user_id")},
			},
			Timestamp: "created",
			Values: map[string]string{
				"genre":  "genre",
				"yami":   "yami",
				"status": "status",
			},
		},
		{
			Kind:  model.KindDialogue,
			Table: "dialogues",
			Order: orderable("id", "created", "answeredTime"),
			Filters: with(created("dialogues"), map[string]query.Filter{
				"good": query.Eq("dialogues", "good"),
				"true": query.Eq("dialogues", "true_answer"),
			}),
			Relations: map[string]query.Relation{
				"user":   {Kind: model.KindUser, Cond: query.RelEq("dialogues", "user_id")},
				"puzzle": {Kind: model.KindPuzzle, Cond: query.RelEq("dialogues", "puzzle_id")},
			},
			Timestamp: "created",
			Values: map[string]string{
				"good": "good",
				"true": "true_answer",
			},
		},
		{
			Kind:  model.KindHint,
			Table: "hints",
			Order: orderable("id", "created"),
			Relations: map[string]query.Relation{
				"puzzle": {Kind: model.KindPuzzle, Cond: query.RelEq("hints", "puzzle_id")},
			},
		},
		{
			Kind:  model.KindChatRoom,
			Table: "chat_rooms",
			Order: orderable("id", "name", "created"),
			Filters: map[string]query.Filter{
				"private": query.Eq("chat_rooms", "private"),
				"name":    query.Eq("chat_rooms", "name"),
			},
			Relations: map[string]query.Relation{
				"user": {Kind: model.KindUser, Cond: query.RelEq("chat_rooms", "user_id")},
			},
		},
		{
			Kind:  model.KindChatMessage,
			Table: "chat_messages",
			Order: orderable("id", "created"),
			Filters: with(created("chat_messages"), map[string]query.Filter{
				"chatroomName": query.Exists(
					`SELECT 1 FROM "chat_rooms" WHERE "chat_rooms"."id" = "chat_messages"."chat_room_id" AND "chat_rooms"."name" = ?`,
				),
			}),
			Relations: map[string]query.Relation{
				"user":     {Kind: model.KindUser, Cond: query.RelEq("chat_messages", "user_id")},
				"chatroom": {Kind: model.KindChatRoom, Cond: query.RelEq("chat_messages", "chat_room_id")},
			},
			Timestamp: "created",
			Preload:   []string{"ChatRoom"},
		},
		{
			Kind:  model.KindFavoriteChatRoom,
			Table: "favorite_chat_rooms",
			Order: orderable("id"),
			Relations: map[string]query.Relation{
				"user":     {Kind: model.KindUser, Cond: query.RelEq("favorite_chat_rooms", "user_id")},
				"chatroom": {Kind: model.KindChatRoom, Cond: query.RelEq("favorite_chat_rooms", "chat_room_id")},
			},
		},
		{
			Kind:    model.KindDirectMessage,
			Table:   "direct_messages",
			Order:   orderable("id", "created"),
			Filters: created("direct_messages"),
			Relations: map[string]query.Relation{
				"user":     {Kind: model.KindUser, Cond: senderOrReceiver},
				"sender":   {Kind: model.KindUser, Cond: query.RelEq("direct_messages", "sender_id")},
				"receiver": {Kind: model.KindUser, Cond: query.RelEq("direct_messages", "receiver_id")},
			},
			Timestamp: "created",
		},
		{
			Kind:  model.KindComment,
			Table: "comments",
			Order: orderable("id"),
			Filters: map[string]query.Filter{
				"puzzle__status__gt": query.Exists(
					`SELECT 1 FROM "puzzles" WHERE "puzzles"."id" = "comments"."puzzle_id" AND "puzzles"."status" > ?`,
				),
				"spoiler": query.Eq("comments", "spoiler"),
			},
			Relations: map[string]query.Relation{
				"user":   {Kind: model.KindUser, Cond: query.RelEq("comments", "user_id")},
				"puzzle": {Kind: model.KindPuzzle, Cond: query.RelEq("comments", "puzzle_id")},
				"puzzle__user": {
					Kind: model.KindUser,
					Cond: query.RelExists(
						`SELECT 1 FROM "puzzles" WHERE "puzzles"."id" = "comments"."puzzle_id" AND "puzzles"."user_id" = ?`,
					),
				},
			},
		},
		{
			Kind:  model.KindStar,
			Table: "stars",
			Order: orderable("id", "value"),
			Relations: map[string]query.Relation{
				"user":   {Kind: model.KindUser, Cond: query.RelEq("stars", "user_id")},
				"puzzle": {Kind: model.KindPuzzle, Cond: query.RelEq("stars", "puzzle_id")},
			},
			Values: map[string]string{"value": "value"},
		},
		{
			Kind:  model.KindBookmark,
			Table: "bookmarks",
			Order: orderable("id", "value"),
			Relations: map[string]query.Relation{
				"user":   {Kind: model.KindUser, Cond: query.RelEq("bookmarks", "user_id")},
				"puzzle": {Kind: model.KindPuzzle, Cond: query.RelEq("bookmarks", "puzzle_id")},
			},
			Values: map[string]string{"value": "value"},
		},
		{
			Kind:    model.KindSchedule,
			Table:   "schedules",
			Order:   orderable("id", "created", "scheduled"),
			Filters: created("schedules"),
			Relations: map[string]query.Relation{
				"user": {Kind: model.KindUser, Cond: query.RelEq("schedules", "user_id")},
			},
			Timestamp: "created",
		},
		{
			Kind:  model.KindEvent,
			Table: "events",
			Order: orderable("id", "startTime", "endTime"),
			Relations: map[string]query.Relation{
				"user": {Kind: model.KindUser, Cond: query.RelEq("events", "user_id")},
			},
		},
	}
}

func senderOrReceiver(id int64) clause.Expression {
	return clause.Or(
		clause.Eq{Column: clause.Column{Table: "direct_messages", Name: "sender_id"}, Value: id},
		clause.Eq{Column: clause.Column{Table: "direct_messages", Name: "receiver_id"}, Value: id},
	)
}

// orderable binds fields to the table columns named after them.
func orderable(fields ...string) map[string]string {
	order := make(map[string]string, len(fields))
	for _, field := range fields {
		order[field] = ""
	}
	return order
}

// created binds the creation time range filters used when grouping by date.
func created(table string) map[string]query.Filter {
	return map[string]query.Filter{
		"created__gte": query.Gte(table, "created"),
		"created__lte": query.Lte(table, "created"),
	}
}

func with[V any](dst map[string]V, src map[string]V) map[string]V {
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

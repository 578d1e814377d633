package controller

import (
	"context"
	"errors"
	"fmt"

	"github.com/tjper/suihei/cmd/suihei/db"
	serrors "github.com/tjper/suihei/cmd/suihei/errors"
	"github.com/tjper/suihei/cmd/suihei/guard"
	"github.com/tjper/suihei/cmd/suihei/model"
)

const (
	msgChatMessageEmpty   = "ChatMessage cannot be empty!"
	msgDirectMessageEmpty = "DirectMessage cannot be empty!"
	msgChatRoomNameEmpty  = "Channel name cannot be empty!"
	msgChatRoomExists     = "Channel %s exists already!"
	msgNotChatRoomCreator = "You are not the creator of this chatroom"
)

// CreateChatMessageInput is the input for the Controller.CreateChatMessage
// method.
type CreateChatMessageInput struct {
	ChatRoomName string
	Content      string
}

// CreateChatMessage posts a message to the chat room with the passed name.
func (ctrl Controller) CreateChatMessage(ctx context.Context, input CreateChatMessageInput) (*model.ChatMessage, error) {
	message := new(model.ChatMessage)
	err := ctrl.store.Tx(ctx, func(store db.IStore) error {
		room := new(model.ChatRoom)
		if err := guard.Run(
			ctx,
			guard.Authenticated(),
			guard.NotBlank(input.Content, msgChatMessageEmpty),
			chatRoomGetter(store, room, input.ChatRoomName),
		); err != nil {
			return err
		}

		*message = model.ChatMessage{
			ChatRoomID: room.ID,
			UserID:     caller(ctx).ID,
			Content:    input.Content,
			Created:    ctrl.clock.Now(),
		}
		if err := store.Create(ctx, message); err != nil {
			return err
		}
		message.ChatRoom = room
		return nil
	})
	if err != nil {
		return nil, err
	}

	ctrl.publish(ctx, message)
	return message, nil
}

// CreateDirectMessageInput is the input for the Controller.CreateDirectMessage
// method.
type CreateDirectMessageInput struct {
	ReceiverID int64
	Content    string
}

// CreateDirectMessage sends a direct message from the caller to a receiver.
func (ctrl Controller) CreateDirectMessage(ctx context.Context, input CreateDirectMessageInput) (*model.DirectMessage, error) {
	message := new(model.DirectMessage)
	err := ctrl.store.Tx(ctx, func(store db.IStore) error {
		receiver := new(model.User)
		if err := guard.Run(
			ctx,
			guard.Authenticated(),
			guard.NotBlank(input.Content, msgDirectMessageEmpty),
			getter(store, receiver, input.ReceiverID),
		); err != nil {
			return err
		}

		*message = model.DirectMessage{
			SenderID:   caller(ctx).ID,
			ReceiverID: receiver.ID,
			Content:    input.Content,
			Created:    ctrl.clock.Now(),
		}
		return store.Create(ctx, message)
	})
	if err != nil {
		return nil, err
	}

	ctrl.publish(ctx, message)
	return message, nil
}

// CreateChatRoomInput is the input for the Controller.CreateChatRoom method.
type CreateChatRoomInput struct {
	Name        string
	Description string
}

// CreateChatRoom creates a new public chat room owned by the caller.
func (ctrl Controller) CreateChatRoom(ctx context.Context, input CreateChatRoomInput) (*model.ChatRoom, error) {
	room := new(model.ChatRoom)
	err := ctrl.store.Tx(ctx, func(store db.IStore) error {
		if err := guard.Run(
			ctx,
			guard.Authenticated(),
			guard.NotBlank(input.Name, msgChatRoomNameEmpty),
			guard.Not(
				func(ctx context.Context) (bool, error) {
					_, err := store.ChatRoomByName(ctx, input.Name)
					if errors.Is(err, serrors.ErrRecordDNE) {
						return false, nil
					}
					return err == nil, err
				},
				fmt.Sprintf(msgChatRoomExists, input.Name),
			),
		); err != nil {
			return err
		}

		*room = model.ChatRoom{
			UserID:      caller(ctx).ID,
			Name:        input.Name,
			Description: input.Description,
			Created:     ctrl.clock.Now(),
		}
		return store.Create(ctx, room)
	})
	if err != nil {
		return nil, err
	}
	return room, nil
}

// UpdateChatRoomInput is the input for the Controller.UpdateChatRoom method.
// Nil fields are left unchanged.
type UpdateChatRoomInput struct {
	ID          int64
	Description *string
	Private     *bool
}

// UpdateChatRoom updates a chat room owned by the caller.
func (ctrl Controller) UpdateChatRoom(ctx context.Context, input UpdateChatRoomInput) (*model.ChatRoom, error) {
	room := new(model.ChatRoom)
	err := ctrl.store.Tx(ctx, func(store db.IStore) error {
		if err := guard.Run(
			ctx,
			guard.Authenticated(),
			getter(store, room, input.ID),
			owner(&room.UserID, msgNotChatRoomCreator),
		); err != nil {
			return err
		}

		if input.Description != nil {
			room.Description = *input.Description
		}
		if input.Private != nil {
			room.Private = *input.Private
		}
		return store.Save(ctx, room)
	})
	if err != nil {
		return nil, err
	}
	return room, nil
}

// CreateFavoriteChatRoom adds the chat room with the passed name to the
// caller's favorites. Adding a favorite twice is a no-op.
func (ctrl Controller) CreateFavoriteChatRoom(ctx context.Context, chatRoomName string) (*model.FavoriteChatRoom, error) {
	favorite := new(model.FavoriteChatRoom)
	err := ctrl.store.Tx(ctx, func(store db.IStore) error {
		room := new(model.ChatRoom)
		if err := guard.Run(
			ctx,
			guard.Authenticated(),
			chatRoomGetter(store, room, chatRoomName),
		); err != nil {
			return err
		}

		return store.FirstOrCreate(ctx, favorite, &model.FavoriteChatRoom{
			UserID:     caller(ctx).ID,
			ChatRoomID: room.ID,
		})
	})
	if err != nil {
		return nil, err
	}
	return favorite, nil
}

// DeleteFavoriteChatRoom removes the chat room with the passed name from the
// caller's favorites. Removing a room that is not a favorite is a no-op.
func (ctrl Controller) DeleteFavoriteChatRoom(ctx context.Context, chatRoomName string) error {
	return ctrl.store.Tx(ctx, func(store db.IStore) error {
		room := new(model.ChatRoom)
		if err := guard.Run(
			ctx,
			guard.Authenticated(),
			chatRoomGetter(store, room, chatRoomName),
		); err != nil {
			return err
		}

		return store.DeleteFavoriteChatRoom(ctx, caller(ctx).ID, room.ID)
	})
}

// chatRoomGetter creates a guard check retrieving the chat room named name
// into dst.
func chatRoomGetter(store db.IStore, dst *model.ChatRoom, name string) guard.Check {
	return func(ctx context.Context) error {
		room, err := store.ChatRoomByName(ctx, name)
		if errors.Is(err, serrors.ErrRecordDNE) {
			return serrors.NotFoundError(fmt.Sprintf("%s %s not found", model.KindChatRoom, name))
		}
		if err != nil {
			return err
		}
		*dst = *room
		return nil
	}
}

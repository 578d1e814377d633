package graph

import (
	"context"

	"github.com/tjper/suihei/cmd/suihei/model"
	"github.com/tjper/suihei/cmd/suihei/router"
	"github.com/tjper/suihei/internal/token"

	graphql "github.com/graph-gophers/graphql-go"
)

func (r *subscriptionResolver) PuzzleSub(ctx context.Context, args struct {
	ID *graphql.ID
}) (<-chan *puzzleResolver, error) {
	want, err := canonical(args.ID, model.KindPuzzle)
	if err != nil {
		return nil, r.fail(ctx, err, "")
	}

	records := r.router.Subscribe(ctx, []string{model.KindPuzzle}, router.KeyedFilter(puzzleKey, want))
	return forward(ctx, records, func(record model.Record) (*puzzleResolver, bool) {
		puzzle, ok := record.(*model.Puzzle)
		if !ok {
			return nil, false
		}
		return newPuzzleResolver(r.Resolver, *puzzle), true
	}), nil
}

func (r *subscriptionResolver) DialogueSub(ctx context.Context, args struct {
	Puzzle *graphql.ID
}) (<-chan *dialogueResolver, error) {
	want, err := canonical(args.Puzzle, model.KindPuzzle)
	if err != nil {
		return nil, r.fail(ctx, err, "")
	}

	records := r.router.Subscribe(ctx, []string{model.KindDialogue}, router.KeyedFilter(puzzleKey, want))
	return forward(ctx, records, func(record model.Record) (*dialogueResolver, bool) {
		dialogue, ok := record.(*model.Dialogue)
		if !ok {
			return nil, false
		}
		return &dialogueResolver{r: r.Resolver, m: *dialogue}, true
	}), nil
}

func (r *subscriptionResolver) PuzzleShowUnionSub(ctx context.Context, args struct {
	ID *graphql.ID
}) (<-chan *puzzleShowUnionResolver, error) {
	want, err := canonical(args.ID, model.KindPuzzle)
	if err != nil {
		return nil, r.fail(ctx, err, "")
	}

	kinds := []string{model.KindDialogue, model.KindHint}
	records := r.router.Subscribe(ctx, kinds, router.KeyedFilter(puzzleKey, want))
	return forward(ctx, records, func(record model.Record) (*puzzleShowUnionResolver, bool) {
		return newPuzzleShowUnionResolver(r.Resolver, record)
	}), nil
}

func (r *subscriptionResolver) ChatmessageSub(ctx context.Context, args struct {
	ChatroomName *string
}) (<-chan *chatMessageResolver, error) {
	records := r.router.Subscribe(ctx, []string{model.KindChatMessage}, router.KeyedFilter(chatRoomKey, args.ChatroomName))
	return forward(ctx, records, func(record model.Record) (*chatMessageResolver, bool) {
		message, ok := record.(*model.ChatMessage)
		if !ok {
			return nil, false
		}
		return &chatMessageResolver{r: r.Resolver, m: *message}, true
	}), nil
}

// DirectmessageSub streams the direct messages sent to receiver. Without a
// receiver nothing is streamed.
func (r *subscriptionResolver) DirectmessageSub(ctx context.Context, args struct {
	Receiver *graphql.ID
}) (<-chan *directMessageResolver, error) {
	var filter router.Filter = router.Never
	if args.Receiver != nil {
		want, err := canonical(args.Receiver, model.KindUser)
		if err != nil {
			return nil, r.fail(ctx, err, "")
		}
		filter = router.KeyedFilter(receiverKey, want)
	}

	records := r.router.Subscribe(ctx, []string{model.KindDirectMessage}, filter)
	return forward(ctx, records, func(record model.Record) (*directMessageResolver, bool) {
		message, ok := record.(*model.DirectMessage)
		if !ok {
			return nil, false
		}
		return &directMessageResolver{r: r.Resolver, m: *message}, true
	}), nil
}

// canonical re-encodes tok so it compares equal to the keys computed from
// records. A nil tok yields a nil key.
func canonical(tok *graphql.ID, kind string) (*string, error) {
	if tok == nil {
		return nil, nil
	}
	id, err := decode(*tok, kind)
	if err != nil {
		return nil, err
	}
	key := string(token.Encode(kind, id))
	return &key, nil
}

// puzzleKey keys puzzles by their own token, and dialogues and hints by the
// token of their puzzle.
func puzzleKey(record model.Record) (string, bool) {
	switch record := record.(type) {
	case *model.Puzzle:
		return string(token.Encode(model.KindPuzzle, record.ID)), true
	case *model.Dialogue:
		return string(token.Encode(model.KindPuzzle, record.PuzzleID)), true
	case *model.Hint:
		return string(token.Encode(model.KindPuzzle, record.PuzzleID)), true
	}
	return "", false
}

func chatRoomKey(record model.Record) (string, bool) {
	message, ok := record.(*model.ChatMessage)
	if !ok || message.ChatRoom == nil {
		return "", false
	}
	return message.ChatRoom.Name, true
}

func receiverKey(record model.Record) (string, bool) {
	message, ok := record.(*model.DirectMessage)
	if !ok {
		return "", false
	}
	return string(token.Encode(model.KindUser, message.ReceiverID)), true
}

// forward converts records into resolvers until records is closed, skipping
// those wrap rejects.
func forward[N any](ctx context.Context, records <-chan model.Record, wrap func(model.Record) (N, bool)) <-chan N {
	out := make(chan N)
	go func() {
		defer close(out)
		for record := range records {
			node, ok := wrap(record)
			if !ok {
				continue
			}
			select {
			case out <- node:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

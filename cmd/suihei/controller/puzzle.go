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
	msgTitleEmpty       = "Title cannot be empty!"
	msgContentEmpty     = "Content cannot be empty!"
	msgSolutionEmpty    = "Solution cannot be empty!"
	msgHintEmpty        = "Hint content cannot be empty!"
	msgNotPuzzleCreator = "You are not the creator of this puzzle"
	msgNotHintCreator   = "You are not the creator of this hint"
)

// PuzzleChatRoomName is the name of the chat room accompanying the puzzle
// identified by puzzleID.
func PuzzleChatRoomName(puzzleID int64) string {
	return fmt.Sprintf("puzzle-%d", puzzleID)
}

// CreatePuzzleInput is the input for the Controller.CreatePuzzle method.
type CreatePuzzleInput struct {
	Title     string
	Genre     int32
	Yami      int32
	Content   string
	Solution  string
	Anonymous bool
	Grotesque bool
	DazedOn   time.Time
}

// CreatePuzzle creates a new unsolved model.Puzzle owned by the caller, along
// with a fresh chat room for discussing it.
func (ctrl Controller) CreatePuzzle(ctx context.Context, input CreatePuzzleInput) (*model.Puzzle, error) {
	puzzle := new(model.Puzzle)
	err := ctrl.store.Tx(ctx, func(store db.IStore) error {
		if err := guard.Run(
			ctx,
			guard.Authenticated(),
			guard.NotBlank(input.Title, msgTitleEmpty),
			guard.NotBlank(input.Content, msgContentEmpty),
			guard.NotBlank(input.Solution, msgSolutionEmpty),
			guard.InRange("genre", input.Genre, 0, 3),
			guard.InRange("yami", input.Yami, 0, 2),
		); err != nil {
			return err
		}

		user := new(model.User)
		if err := get(ctx, store, user, caller(ctx).ID); err != nil {
			return err
		}

		now := ctrl.clock.Now()
		*puzzle = model.Puzzle{
			UserID:      user.ID,
			Title:       input.Title,
			Genre:       input.Genre,
			Yami:        input.Yami,
			Content:     input.Content,
			Solution:    input.Solution,
			Status:      model.PuzzleUnsolved,
			ContentSafe: user.Credit > ctrl.rules.ContentSafeCredit,
			Anonymous:   input.Anonymous,
			Grotesque:   input.Grotesque,
			DazedOn:     input.DazedOn,
			Created:     now,
			Modified:    now,
		}
		if err := store.Create(ctx, puzzle); err != nil {
			return err
		}

		name := PuzzleChatRoomName(puzzle.ID)
		if err := store.DeleteChatRoomsByName(ctx, name); err != nil {
			return err
		}
		return store.Create(ctx, &model.ChatRoom{
			UserID:  user.ID,
			Name:    name,
			Created: now,
		})
	})
	if err != nil {
		return nil, err
	}

	ctrl.publish(ctx, puzzle)
	return puzzle, nil
}

// UpdatePuzzleInput is the input for the Controller.UpdatePuzzle method. Nil
// fields are left unchanged.
type UpdatePuzzleInput struct {
	ID        int64
	Yami      *int32
	Solution  *string
	Memo      *string
	Status    *int32
	Grotesque *bool
	DazedOn   *time.Time
}

// UpdatePuzzle updates a puzzle created by the caller. Moving a puzzle out of
// the unsolved status stamps its modified time. A puzzle never moves back to
// unsolved; a zero status is ignored.
func (ctrl Controller) UpdatePuzzle(ctx context.Context, input UpdatePuzzleInput) (*model.Puzzle, error) {
	puzzle := new(model.Puzzle)
	err := ctrl.store.Tx(ctx, func(store db.IStore) error {
		checks := []guard.Check{guard.Authenticated()}
		if input.Solution != nil {
			checks = append(checks, guard.NotBlank(*input.Solution, msgSolutionEmpty))
		}
		if input.Yami != nil {
			checks = append(checks, guard.InRange("yami", *input.Yami, 0, 2))
		}
		if input.Status != nil {
			checks = append(checks, guard.InRange("status", *input.Status, model.PuzzleUnsolved, model.PuzzleDazed))
		}
		checks = append(
			checks,
			getter(store, puzzle, input.ID),
			owner(&puzzle.UserID, msgNotPuzzleCreator),
		)
		if err := guard.Run(ctx, checks...); err != nil {
			return err
		}

		if input.Yami != nil {
			puzzle.Yami = *input.Yami
		}
		if input.Solution != nil {
			puzzle.Solution = *input.Solution
		}
		if input.Memo != nil {
			puzzle.Memo = *input.Memo
		}
		if input.Status != nil && *input.Status != model.PuzzleUnsolved {
			if puzzle.Status == model.PuzzleUnsolved {
				puzzle.Modified = ctrl.clock.Now()
			}
			puzzle.Status = *input.Status
		}
		if input.Grotesque != nil {
			puzzle.Grotesque = *input.Grotesque
		}
		if input.DazedOn != nil {
			puzzle.DazedOn = *input.DazedOn
		}
		return store.Save(ctx, puzzle)
	})
	if err != nil {
		return nil, err
	}

	ctrl.publish(ctx, puzzle)
	return puzzle, nil
}

// DazePuzzles moves every unsolved puzzle whose dazed_on date has passed to
// the dazed status, returning the dazed puzzles.
func (ctrl Controller) DazePuzzles(ctx context.Context) ([]model.Puzzle, error) {
	now := ctrl.clock.Now()

	var dazed []model.Puzzle
	err := ctrl.store.Tx(ctx, func(store db.IStore) error {
		puzzles, err := store.PastDazedPuzzles(ctx, now)
		if err != nil {
			return err
		}
		for i := range puzzles {
			puzzles[i].Status = model.PuzzleDazed
			puzzles[i].Modified = now
			if err := store.Save(ctx, &puzzles[i]); err != nil {
				return err
			}
		}
		dazed = puzzles
		return nil
	})
	if err != nil {
		return nil, err
	}

	for i := range dazed {
		ctrl.publish(ctx, &dazed[i])
	}
	return dazed, nil
}

// DeletePuzzle deletes a puzzle created by the caller, along with every
// record depending on it.
func (ctrl Controller) DeletePuzzle(ctx context.Context, id int64) error {
	return ctrl.store.Tx(ctx, func(store db.IStore) error {
		puzzle := new(model.Puzzle)
		if err := guard.Run(
			ctx,
			guard.Authenticated(),
			getter(store, puzzle, id),
			owner(&puzzle.UserID, msgNotPuzzleCreator),
		); err != nil {
			return err
		}

		if err := store.DeleteChatRoomsByName(ctx, PuzzleChatRoomName(puzzle.ID)); err != nil {
			return err
		}
		return store.Delete(ctx, puzzle)
	})
}

// CreateHintInput is the input for the Controller.CreateHint method.
type CreateHintInput struct {
	PuzzleID int64
	Content  string
}

// CreateHint adds a hint to a puzzle created by the caller.
func (ctrl Controller) CreateHint(ctx context.Context, input CreateHintInput) (*model.Hint, error) {
	hint := new(model.Hint)
	err := ctrl.store.Tx(ctx, func(store db.IStore) error {
		puzzle := new(model.Puzzle)
		if err := guard.Run(
			ctx,
			guard.Authenticated(),
			guard.NotBlank(input.Content, msgHintEmpty),
			getter(store, puzzle, input.PuzzleID),
			owner(&puzzle.UserID, msgNotPuzzleCreator),
		); err != nil {
			return err
		}

		*hint = model.Hint{
			PuzzleID: puzzle.ID,
			Content:  input.Content,
			Created:  ctrl.clock.Now(),
		}
		return store.Create(ctx, hint)
	})
	if err != nil {
		return nil, err
	}

	ctrl.publish(ctx, hint)
	return hint, nil
}

// UpdateHintInput is the input for the Controller.UpdateHint method.
type UpdateHintInput struct {
	ID      int64
	Content string
}

// UpdateHint replaces the content of a hint on a puzzle created by the caller.
func (ctrl Controller) UpdateHint(ctx context.Context, input UpdateHintInput) (*model.Hint, error) {
	hint := new(model.Hint)
	err := ctrl.store.Tx(ctx, func(store db.IStore) error {
		puzzle := new(model.Puzzle)
		if err := guard.Run(
			ctx,
			guard.Authenticated(),
			guard.NotBlank(input.Content, msgHintEmpty),
			getter(store, hint, input.ID),
			func(ctx context.Context) error {
				return get(ctx, store, puzzle, hint.PuzzleID)
			},
			owner(&puzzle.UserID, msgNotHintCreator),
		); err != nil {
			return err
		}

		hint.Content = input.Content
		return store.Save(ctx, hint)
	})
	if err != nil {
		return nil, err
	}

	ctrl.publish(ctx, hint)
	return hint, nil
}

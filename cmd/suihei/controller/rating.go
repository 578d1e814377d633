package controller

import (
	"context"

	"github.com/tjper/suihei/cmd/suihei/db"
	"github.com/tjper/suihei/cmd/suihei/guard"
	"github.com/tjper/suihei/cmd/suihei/model"
)

const msgNotBookmarkCreator = "You are not the creator of this bookmark"

// UpdateStarInput is the input for the Controller.UpdateStar method.
type UpdateStarInput struct {
	PuzzleID int64
	Value    int32
}

// UpdateStar sets the caller's star rating of a puzzle.
func (ctrl Controller) UpdateStar(ctx context.Context, input UpdateStarInput) (*model.Star, error) {
	star := new(model.Star)
	err := ctrl.store.Tx(ctx, func(store db.IStore) error {
		puzzle := new(model.Puzzle)
		if err := guard.Run(
			ctx,
			guard.Authenticated(),
			guard.InRange("value", input.Value, 0, 5),
			getter(store, puzzle, input.PuzzleID),
		); err != nil {
			return err
		}

		if err := store.FirstOrCreate(ctx, star, &model.Star{
			UserID:   caller(ctx).ID,
			PuzzleID: puzzle.ID,
		}); err != nil {
			return err
		}
		star.Value = input.Value
		return store.Save(ctx, star)
	})
	if err != nil {
		return nil, err
	}
	return star, nil
}

// UpdateCommentInput is the input for the Controller.UpdateComment method.
type UpdateCommentInput struct {
	PuzzleID int64
	Content  string
	Spoiler  bool
}

// UpdateComment sets the caller's comment on a puzzle.
func (ctrl Controller) UpdateComment(ctx context.Context, input UpdateCommentInput) (*model.Comment, error) {
	comment := new(model.Comment)
	err := ctrl.store.Tx(ctx, func(store db.IStore) error {
		puzzle := new(model.Puzzle)
		if err := guard.Run(
			ctx,
			guard.Authenticated(),
			getter(store, puzzle, input.PuzzleID),
		); err != nil {
			return err
		}

		if err := store.FirstOrCreate(ctx, comment, &model.Comment{
			UserID:   caller(ctx).ID,
			PuzzleID: puzzle.ID,
		}); err != nil {
			return err
		}
		comment.Content = input.Content
		comment.Spoiler = input.Spoiler
		return store.Save(ctx, comment)
	})
	if err != nil {
		return nil, err
	}
	return comment, nil
}

// CreateBookmarkInput is the input for the Controller.CreateBookmark method.
type CreateBookmarkInput struct {
	PuzzleID int64
	Value    float64
}

// CreateBookmark bookmarks a puzzle for the caller. Bookmarking a puzzle
// again replaces the value of the existing bookmark.
func (ctrl Controller) CreateBookmark(ctx context.Context, input CreateBookmarkInput) (*model.Bookmark, error) {
	bookmark := new(model.Bookmark)
	err := ctrl.store.Tx(ctx, func(store db.IStore) error {
		puzzle := new(model.Puzzle)
		if err := guard.Run(
			ctx,
			guard.Authenticated(),
			getter(store, puzzle, input.PuzzleID),
		); err != nil {
			return err
		}

		if err := store.FirstOrCreate(ctx, bookmark, &model.Bookmark{
			UserID:   caller(ctx).ID,
			PuzzleID: puzzle.ID,
		}); err != nil {
			return err
		}
		bookmark.Value = input.Value
		return store.Save(ctx, bookmark)
	})
	if err != nil {
		return nil, err
	}
	return bookmark, nil
}

// UpdateBookmarkInput is the input for the Controller.UpdateBookmark method.
type UpdateBookmarkInput struct {
	ID    int64
	Value float64
}

// UpdateBookmark updates the value of a bookmark owned by the caller.
func (ctrl Controller) UpdateBookmark(ctx context.Context, input UpdateBookmarkInput) (*model.Bookmark, error) {
	bookmark := new(model.Bookmark)
	err := ctrl.store.Tx(ctx, func(store db.IStore) error {
		if err := guard.Run(
			ctx,
			guard.Authenticated(),
			getter(store, bookmark, input.ID),
			owner(&bookmark.UserID, msgNotBookmarkCreator),
		); err != nil {
			return err
		}

		bookmark.Value = input.Value
		return store.Save(ctx, bookmark)
	})
	if err != nil {
		return nil, err
	}
	return bookmark, nil
}

// DeleteBookmark deletes a bookmark owned by the caller.
func (ctrl Controller) DeleteBookmark(ctx context.Context, id int64) error {
	return ctrl.store.Tx(ctx, func(store db.IStore) error {
		bookmark := new(model.Bookmark)
		if err := guard.Run(
			ctx,
			guard.Authenticated(),
			getter(store, bookmark, id),
			owner(&bookmark.UserID, msgNotBookmarkCreator),
		); err != nil {
			return err
		}
		return store.Delete(ctx, bookmark)
	})
}

package controller

import (
	"context"

	"github.com/tjper/suihei/cmd/suihei/db"
	serrors "github.com/tjper/suihei/cmd/suihei/errors"
	"github.com/tjper/suihei/cmd/suihei/guard"
	"github.com/tjper/suihei/cmd/suihei/model"
)

const (
	msgQuestionEmpty = "Question content cannot be empty!"
	msgAnswerEmpty   = "Answer content cannot be empty!"
	msgPuzzleSolved  = "This puzzle is not accepting questions anymore!"
	msgNotAsker      = "You are not the asker of this question"
)

// CreateQuestionInput is the input for the Controller.CreateQuestion method.
type CreateQuestionInput struct {
	PuzzleID int64
	Content  string
}

// CreateQuestion asks a question on an unsolved puzzle.
func (ctrl Controller) CreateQuestion(ctx context.Context, input CreateQuestionInput) (*model.Dialogue, error) {
	dialogue := new(model.Dialogue)
	err := ctrl.store.Tx(ctx, func(store db.IStore) error {
		puzzle := new(model.Puzzle)
		if err := guard.Run(
			ctx,
			guard.Authenticated(),
			guard.NotBlank(input.Content, msgQuestionEmpty),
			getter(store, puzzle, input.PuzzleID),
			func(context.Context) error {
				if puzzle.Status != model.PuzzleUnsolved {
					return serrors.ValidationError(msgPuzzleSolved)
				}
				return nil
			},
		); err != nil {
			return err
		}

		*dialogue = model.Dialogue{
			UserID:   caller(ctx).ID,
			PuzzleID: puzzle.ID,
			Question: input.Content,
			Created:  ctrl.clock.Now(),
		}
		return store.Create(ctx, dialogue)
	})
	if err != nil {
		return nil, err
	}

	ctrl.publish(ctx, dialogue)
	return dialogue, nil
}

// UpdateAnswerInput is the input for the Controller.UpdateAnswer method.
type UpdateAnswerInput struct {
	DialogueID int64
	Content    string
	Good       bool
	True       bool
}

// UpdateAnswer answers a question on a puzzle created by the caller. The first
// answer stamps the answered time, later answers count as edits.
func (ctrl Controller) UpdateAnswer(ctx context.Context, input UpdateAnswerInput) (*model.Dialogue, error) {
	dialogue := new(model.Dialogue)
	err := ctrl.store.Tx(ctx, func(store db.IStore) error {
		puzzle := new(model.Puzzle)
		if err := guard.Run(
			ctx,
			guard.Authenticated(),
			guard.NotBlank(input.Content, msgAnswerEmpty),
			getter(store, dialogue, input.DialogueID),
			func(ctx context.Context) error {
				return get(ctx, store, puzzle, dialogue.PuzzleID)
			},
			owner(&puzzle.UserID, msgNotPuzzleCreator),
		); err != nil {
			return err
		}

		if dialogue.Answer == "" {
			now := ctrl.clock.Now()
			dialogue.AnsweredTime = &now
		} else {
			dialogue.AnswerEditTimes++
		}
		dialogue.Answer = input.Content
		dialogue.Good = input.Good
		dialogue.True = input.True
		return store.Save(ctx, dialogue)
	})
	if err != nil {
		return nil, err
	}

	ctrl.publish(ctx, dialogue)
	return dialogue, nil
}

// UpdateQuestionInput is the input for the Controller.UpdateQuestion method.
type UpdateQuestionInput struct {
	DialogueID int64
	Question   string
}

// UpdateQuestion edits a question asked by the caller.
func (ctrl Controller) UpdateQuestion(ctx context.Context, input UpdateQuestionInput) (*model.Dialogue, error) {
	dialogue := new(model.Dialogue)
	err := ctrl.store.Tx(ctx, func(store db.IStore) error {
		if err := guard.Run(
			ctx,
			guard.Authenticated(),
			guard.NotBlank(input.Question, msgQuestionEmpty),
			getter(store, dialogue, input.DialogueID),
			owner(&dialogue.UserID, msgNotAsker),
		); err != nil {
			return err
		}

		dialogue.Question = input.Question
		dialogue.QuestionEditTimes++
		return store.Save(ctx, dialogue)
	})
	if err != nil {
		return nil, err
	}

	ctrl.publish(ctx, dialogue)
	return dialogue, nil
}

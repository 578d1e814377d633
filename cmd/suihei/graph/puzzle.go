package graph

import (
	"context"
	"sync"

	"github.com/tjper/suihei/cmd/suihei/db"
	"github.com/tjper/suihei/cmd/suihei/model"
	"github.com/tjper/suihei/internal/session"
	"github.com/tjper/suihei/internal/token"

	graphql "github.com/graph-gophers/graphql-go"
)

func (r *Resolver) puzzle(ctx context.Context, id int64) (*puzzleResolver, error) {
	puzzle, err := get[model.Puzzle](ctx, r.store, id)
	if err != nil {
		return nil, r.fail(ctx, err, "resolve puzzle")
	}
	return newPuzzleResolver(r, *puzzle), nil
}

func newPuzzleResolver(r *Resolver, puzzle model.Puzzle) *puzzleResolver {
	return &puzzleResolver{r: r, m: puzzle}
}

type puzzleResolver struct {
	r *Resolver
	m model.Puzzle

	countsOnce sync.Once
	counts     *db.PuzzleCounts
	countsErr  error
}

func (n *puzzleResolver) ID() graphql.ID { return token.Encode(model.KindPuzzle, n.m.ID) }
func (n *puzzleResolver) Rowid() int32 { return int32(n.m.ID) }
func (n *puzzleResolver) Title() string { return n.m.Title }
func (n *puzzleResolver) Yami() int32 { return n.m.Yami }
func (n *puzzleResolver) Genre() int32 { return n.m.Genre }
func (n *puzzleResolver) Content() string { return n.m.Content }
func (n *puzzleResolver) Memo() string { return n.m.Memo }
func (n *puzzleResolver) Status() int32 { return n.m.Status }
func (n *puzzleResolver) ContentSafe() bool { return n.m.ContentSafe }
func (n *puzzleResolver) Anonymous() bool { return n.m.Anonymous }
func (n *puzzleResolver) Grotesque() bool { return n.m.Grotesque }

func (n *puzzleResolver) DazedOn() graphql.Time { return graphql.Time{Time: n.m.DazedOn} }
func (n *puzzleResolver) Created() graphql.Time { return graphql.Time{Time: n.m.Created} }
func (n *puzzleResolver) Modified() graphql.Time { return graphql.Time{Time: n.m.Modified} }

func (n *puzzleResolver) User(ctx context.Context) (*userResolver, error) {
	return n.r.user(ctx, n.m.UserID)
}

// Solution is visible to the puzzle's creator, and to everyone once the
// puzzle is solved or hidden. While a long-term yami puzzle is unsolved, its
// solution is also visible to those who asked a question answered as true.
// Otherwise, an empty solution is returned.
func (n *puzzleResolver) Solution(ctx context.Context) (string, error) {
	viewer, ok := session.UserFromContext(ctx)
	if ok && viewer.ID == n.m.UserID {
		return n.m.Solution, nil
	}
	if n.m.Status == model.PuzzleSolved || n.m.Status == model.PuzzleHidden {
		return n.m.Solution, nil
	}
	if !ok || n.m.Status != model.PuzzleUnsolved || n.m.Yami != model.YamiLongTerm {
		return "", nil
	}

	hasTrue, err := n.r.store.HasTrueDialogue(ctx, viewer.ID, n.m.ID)
	if err != nil {
		return "", n.r.fail(ctx, err, "resolve puzzle solution")
	}
	if hasTrue {
		return n.m.Solution, nil
	}
	return "", nil
}

func (n *puzzleResolver) loadCounts(ctx context.Context) (*db.PuzzleCounts, error) {
	n.countsOnce.Do(func() {
		n.counts, n.countsErr = n.r.store.PuzzleCounts(ctx, n.m.ID)
	})
	if n.countsErr != nil {
		return nil, n.r.fail(ctx, n.countsErr, "resolve puzzle counts")
	}
	return n.counts, nil
}

func (n *puzzleResolver) count(ctx context.Context, field func(*db.PuzzleCounts) int64) (int32, error) {
	counts, err := n.loadCounts(ctx)
	if err != nil {
		return 0, err
	}
	return int32(field(counts)), nil
}

func (n *puzzleResolver) QuesCount(ctx context.Context) (int32, error) {
	return n.count(ctx, func(c *db.PuzzleCounts) int64 { return c.QuesCount })
}

func (n *puzzleResolver) UaquesCount(ctx context.Context) (int32, error) {
	return n.count(ctx, func(c *db.PuzzleCounts) int64 { return c.UnansweredQuesCount })
}

func (n *puzzleResolver) StarCount(ctx context.Context) (int32, error) {
	return n.count(ctx, func(c *db.PuzzleCounts) int64 { return c.StarCount })
}

func (n *puzzleResolver) StarSum(ctx context.Context) (int32, error) {
	return n.count(ctx, func(c *db.PuzzleCounts) int64 { return c.StarSum })
}

func (n *puzzleResolver) CommentCount(ctx context.Context) (int32, error) {
	return n.count(ctx, func(c *db.PuzzleCounts) int64 { return c.CommentCount })
}

func (n *puzzleResolver) BookmarkCount(ctx context.Context) (int32, error) {
	return n.count(ctx, func(c *db.PuzzleCounts) int64 { return c.BookmarkCount })
}

// --- dialogues & hints ---

type dialogueResolver struct {
	r *Resolver
	m model.Dialogue
}

func (n *dialogueResolver) ID() graphql.ID { return token.Encode(model.KindDialogue, n.m.ID) }
func (n *dialogueResolver) Rowid() int32 { return int32(n.m.ID) }
func (n *dialogueResolver) Question() string { return n.m.Question }
func (n *dialogueResolver) Answer() string { return n.m.Answer }
func (n *dialogueResolver) Good() bool { return n.m.Good }
func (n *dialogueResolver) True() bool { return n.m.True }
func (n *dialogueResolver) QuestionEditTimes() int32 { return n.m.QuestionEditTimes }
func (n *dialogueResolver) AnswerEditTimes() int32 { return n.m.AnswerEditTimes }

func (n *dialogueResolver) Created() graphql.Time {
	return graphql.Time{Time: n.m.Created}
}

func (n *dialogueResolver) AnsweredTime() *graphql.Time {
	if n.m.AnsweredTime == nil {
		return nil
	}
	return &graphql.Time{Time: *n.m.AnsweredTime}
}

func (n *dialogueResolver) User(ctx context.Context) (*userResolver, error) {
	return n.r.user(ctx, n.m.UserID)
}

func (n *dialogueResolver) Puzzle(ctx context.Context) (*puzzleResolver, error) {
	return n.r.puzzle(ctx, n.m.PuzzleID)
}

type hintResolver struct {
	r *Resolver
	m model.Hint
}

func (n *hintResolver) ID() graphql.ID { return token.Encode(model.KindHint, n.m.ID) }
func (n *hintResolver) Rowid() int32 { return int32(n.m.ID) }
func (n *hintResolver) Content() string { return n.m.Content }

func (n *hintResolver) Created() graphql.Time {
	return graphql.Time{Time: n.m.Created}
}

func (n *hintResolver) Puzzle(ctx context.Context) (*puzzleResolver, error) {
	return n.r.puzzle(ctx, n.m.PuzzleID)
}

// puzzleShowUnionResolver is either a dialogue or a hint of a puzzle.
type puzzleShowUnionResolver struct {
	node interface{}
}

// newPuzzleShowUnionResolver wraps record, reporting false when record is
// neither a dialogue nor a hint.
func newPuzzleShowUnionResolver(r *Resolver, record model.Record) (*puzzleShowUnionResolver, bool) {
	switch rec := record.(type) {
	case *model.Dialogue:
		return &puzzleShowUnionResolver{node: &dialogueResolver{r: r, m: *rec}}, true
	case *model.Hint:
		return &puzzleShowUnionResolver{node: &hintResolver{r: r, m: *rec}}, true
	}
	return nil, false
}

func (u *puzzleShowUnionResolver) ToDialogue() (*dialogueResolver, bool) {
	n, ok := u.node.(*dialogueResolver)
	return n, ok
}

func (u *puzzleShowUnionResolver) ToHint() (*hintResolver, bool) {
	n, ok := u.node.(*hintResolver)
	return n, ok
}

// --- ratings ---

type commentResolver struct {
	r *Resolver
	m model.Comment
}

func (n *commentResolver) ID() graphql.ID { return token.Encode(model.KindComment, n.m.ID) }
func (n *commentResolver) Rowid() int32 { return int32(n.m.ID) }
func (n *commentResolver) Content() string { return n.m.Content }
func (n *commentResolver) Spoiler() bool { return n.m.Spoiler }

func (n *commentResolver) User(ctx context.Context) (*userResolver, error) {
	return n.r.user(ctx, n.m.UserID)
}

func (n *commentResolver) Puzzle(ctx context.Context) (*puzzleResolver, error) {
	return n.r.puzzle(ctx, n.m.PuzzleID)
}

type starResolver struct {
	r *Resolver
	m model.Star
}

func (n *starResolver) ID() graphql.ID { return token.Encode(model.KindStar, n.m.ID) }
func (n *starResolver) Rowid() int32 { return int32(n.m.ID) }
func (n *starResolver) Value() int32 { return n.m.Value }

func (n *starResolver) User(ctx context.Context) (*userResolver, error) {
	return n.r.user(ctx, n.m.UserID)
}

func (n *starResolver) Puzzle(ctx context.Context) (*puzzleResolver, error) {
	return n.r.puzzle(ctx, n.m.PuzzleID)
}

type bookmarkResolver struct {
	r *Resolver
	m model.Bookmark
}

func (n *bookmarkResolver) ID() graphql.ID { return token.Encode(model.KindBookmark, n.m.ID) }
func (n *bookmarkResolver) Rowid() int32 { return int32(n.m.ID) }
func (n *bookmarkResolver) Value() float64 { return n.m.Value }

func (n *bookmarkResolver) User(ctx context.Context) (*userResolver, error) {
	return n.r.user(ctx, n.m.UserID)
}

func (n *bookmarkResolver) Puzzle(ctx context.Context) (*puzzleResolver, error) {
	return n.r.puzzle(ctx, n.m.PuzzleID)
}

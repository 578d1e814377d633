package db

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/tjper/suihei/cmd/suihei/model"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const defaultTestDSN = "host=db user=postgres password=password dbname=postgres port=5432 sslmode=disable"

// InitSuite opens and migrates the test DB identified by SUIHEI_TEST_DSN,
// deleting every existing record.
func InitSuite(ctx context.Context, t *testing.T) *Suite {
	t.Helper()

	dsn := os.Getenv("SUIHEI_TEST_DSN")
	if dsn == "" {
		dsn = defaultTestDSN
	}

	dbconn, err := Open(dsn, zap.NewNop())
	require.Nil(t, err)

	err = Migrate(dbconn)
	require.Nil(t, err)

	res := dbconn.WithContext(ctx).Exec(
		`TRUNCATE users, user_permissions, awards, user_awards, award_applications,
		puzzles, dialogues, hints, chat_rooms, chat_messages, favorite_chat_rooms,
		direct_messages, comments, stars, bookmarks, schedules, events
		RESTART IDENTITY CASCADE`,
	)
	require.Nil(t, res.Error)

	registry, err := Registry()
	require.Nil(t, err)

	return &Suite{
		DB:    dbconn,
		Store: NewStore(zap.NewNop(), dbconn, registry),
	}
}

type Suite struct {
	DB    *gorm.DB
	Store *Store
}

// CreateUser creates a user named username.
func (s Suite) CreateUser(ctx context.Context, t *testing.T, username string) *model.User {
	t.Helper()

	user := &model.User{
		Username:   username,
		Nickname:   username,
		Password:   []byte("password"),
		Salt:       "salt",
		DateJoined: time.Now(),
	}
	err := s.Store.Create(ctx, user)
	require.Nil(t, err)

	return user
}

// CreatePuzzle creates a puzzle by the user identified by userID.
func (s Suite) CreatePuzzle(ctx context.Context, t *testing.T, userID int64, status int32) *model.Puzzle {
	t.Helper()

	now := time.Now()
	puzzle := &model.Puzzle{
		UserID:   userID,
		Title:    fmt.Sprintf("puzzle by %d", userID),
		Content:  "content",
		Solution: "solution",
		Status:   status,
		DazedOn:  now.AddDate(0, 0, 7),
		Created:  now,
		Modified: now,
	}
	err := s.Store.Create(ctx, puzzle)
	require.Nil(t, err)

	return puzzle
}

// CreateDialogue creates a question asked by the user identified by userID
// on the puzzle identified by puzzleID.
func (s Suite) CreateDialogue(ctx context.Context, t *testing.T, userID, puzzleID int64) *model.Dialogue {
	t.Helper()

	dialogue := &model.Dialogue{
		UserID:   userID,
		PuzzleID: puzzleID,
		Question: "question",
		Created:  time.Now(),
	}
	err := s.Store.Create(ctx, dialogue)
	require.Nil(t, err)

	return dialogue
}

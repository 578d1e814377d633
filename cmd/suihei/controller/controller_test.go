package controller

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tjper/suihei/cmd/suihei/db"
	serrors "github.com/tjper/suihei/cmd/suihei/errors"
	"github.com/tjper/suihei/cmd/suihei/guard"
	"github.com/tjper/suihei/cmd/suihei/model"
	imodel "github.com/tjper/suihei/internal/model"
	"github.com/tjper/suihei/internal/session"
	itime "github.com/tjper/suihei/internal/time"
	ivalidator "github.com/tjper/suihei/internal/validator"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var (
	now    = time.Date(2026, time.March, 14, 9, 30, 0, 0, time.UTC)
	alice  = session.User{ID: 1, Username: "alice", Nickname: "Alice"}
	bob    = session.User{ID: 2, Username: "bob", Nickname: "Bob"}
	staffy = session.User{ID: 3, Username: "staffy", Nickname: "Staffy", IsStaff: true}
)

func TestCreatePuzzle(t *testing.T) {
	valid := CreatePuzzleInput{
		Title:    "Albatross soup",
		Genre:    0,
		Yami:     1,
		Content:  "A man orders albatross soup.",
		Solution: "It was not what he ate before.",
		DazedOn:  now.AddDate(0, 0, 7),
	}

	tests := map[string]struct {
		ctx         context.Context
		input       CreatePuzzleInput
		credit      int32
		err         error
		contentSafe bool
	}{
		"anonymous": {
			ctx:   context.Background(),
			input: valid,
			err:   serrors.ValidationError(guard.MsgLogin),
		},
		"empty title": {
			ctx:   as(alice),
			input: with(valid, func(in *CreatePuzzleInput) { in.Title = "  " }),
			err:   serrors.ValidationError(msgTitleEmpty),
		},
		"empty content": {
			ctx:   as(alice),
			input: with(valid, func(in *CreatePuzzleInput) { in.Content = "" }),
			err:   serrors.ValidationError(msgContentEmpty),
		},
		"empty solution": {
			ctx:   as(alice),
			input: with(valid, func(in *CreatePuzzleInput) { in.Solution = "" }),
			err:   serrors.ValidationError(msgSolutionEmpty),
		},
		"genre out of range": {
			ctx:   as(alice),
			input: with(valid, func(in *CreatePuzzleInput) { in.Genre = 4 }),
			err:   serrors.ValidationError("genre must be between 0 and 3"),
		},
		"low credit": {
			ctx:    as(alice),
			input:  valid,
			credit: 1000,
		},
		"content safe": {
			ctx:         as(alice),
			input:       valid,
			credit:      1001,
			contentSafe: true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			var (
				calls   int
				created []model.Record
				deleted []string
			)
			store := db.NewStoreMock(
				db.WithGet(func(_ context.Context, dst model.Record, id int64) error {
					calls++
					*dst.(*model.User) = model.User{Model: imodel.Model{ID: id}, Credit: test.credit}
					return nil
				}),
				db.WithCreate(func(_ context.Context, record model.Record) error {
					calls++
					if puzzle, ok := record.(*model.Puzzle); ok {
						puzzle.ID = 42
					}
					created = append(created, record)
					return nil
				}),
				db.WithDeleteChatRoomsByName(func(_ context.Context, name string) error {
					calls++
					deleted = append(deleted, name)
					return nil
				}),
			)
			publisher := newPublisherMock()
			ctrl := newController(store, publisher)

			puzzle, err := ctrl.CreatePuzzle(test.ctx, test.input)
			if test.err != nil {
				require.Equal(t, test.err, err)
				require.Nil(t, puzzle)
				require.Zero(t, calls)
				require.Empty(t, publisher.published)
				return
			}
			require.NoError(t, err)

			require.Equal(t, alice.ID, puzzle.UserID)
			require.Equal(t, model.PuzzleUnsolved, puzzle.Status)
			require.Equal(t, test.contentSafe, puzzle.ContentSafe)
			require.Equal(t, now, puzzle.Created)
			require.Equal(t, now, puzzle.Modified)

			require.Equal(t, []string{"puzzle-42"}, deleted)
			require.Len(t, created, 2)
			room, ok := created[1].(*model.ChatRoom)
			require.True(t, ok)
			require.Equal(t, "puzzle-42", room.Name)
			require.Equal(t, alice.ID, room.UserID)

			require.Equal(t, []published{{kind: model.KindPuzzle, id: 42}}, publisher.published)
		})
	}
}

func TestUpdatePuzzle(t *testing.T) {
	solved := model.PuzzleSolved
	unsolved := model.PuzzleUnsolved
	empty := ""
	memo := "thanks for playing"

	tests := map[string]struct {
		ctx      context.Context
		status   int32
		input    UpdatePuzzleInput
		err      error
		modified time.Time
	}{
		"not creator": {
			ctx:   as(bob),
			input: UpdatePuzzleInput{ID: 7, Memo: &memo},
			err:   serrors.PermissionError(msgNotPuzzleCreator),
		},
		"empty solution": {
			ctx:   as(alice),
			input: UpdatePuzzleInput{ID: 7, Solution: &empty},
			err:   serrors.ValidationError(msgSolutionEmpty),
		},
		"solve stamps modified": {
			ctx:      as(alice),
			input:    UpdatePuzzleInput{ID: 7, Status: &solved},
			modified: now,
		},
		"already solved keeps modified": {
			ctx:    as(alice),
			status: model.PuzzleHidden,
			input:  UpdatePuzzleInput{ID: 7, Status: &solved},
		},
		"unsolved status ignored": {
			ctx:    as(alice),
			status: model.PuzzleSolved,
			input:  UpdatePuzzleInput{ID: 7, Status: &unsolved},
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			store := db.NewStoreMock(
				db.WithGet(func(_ context.Context, dst model.Record, id int64) error {
					*dst.(*model.Puzzle) = model.Puzzle{
						Model:  imodel.Model{ID: id},
						UserID: alice.ID,
						Status: test.status,
					}
					return nil
				}),
			)
			ctrl := newController(store, newPublisherMock())

			puzzle, err := ctrl.UpdatePuzzle(test.ctx, test.input)
			if test.err != nil {
				require.Equal(t, test.err, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, solved, puzzle.Status)
			require.Equal(t, test.modified, puzzle.Modified)
		})
	}
}

func TestDazePuzzles(t *testing.T) {
	tests := map[string]struct {
		puzzles   []model.Puzzle
		saveErr   error
		err       error
		published []published
	}{
		"none due": {},
		"dazed": {
			puzzles: []model.Puzzle{
				{Model: imodel.Model{ID: 3}, Status: model.PuzzleUnsolved},
				{Model: imodel.Model{ID: 8}, Status: model.PuzzleUnsolved},
			},
			published: []published{
				{kind: model.KindPuzzle, id: 3},
				{kind: model.KindPuzzle, id: 8},
			},
		},
		"save fails": {
			puzzles: []model.Puzzle{{Model: imodel.Model{ID: 3}}},
			saveErr: errors.New("connection reset"),
			err:     errors.New("connection reset"),
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			var saved []int64
			store := db.NewStoreMock(
				db.WithPastDazedPuzzles(func(_ context.Context, at time.Time) ([]model.Puzzle, error) {
					require.Equal(t, now, at)
					return append([]model.Puzzle(nil), test.puzzles...), nil
				}),
				db.WithSave(func(_ context.Context, record model.Record) error {
					if test.saveErr != nil {
						return test.saveErr
					}
					puzzle := record.(*model.Puzzle)
					require.Equal(t, model.PuzzleDazed, puzzle.Status)
					require.Equal(t, now, puzzle.Modified)
					saved = append(saved, puzzle.ID)
					return nil
				}),
			)
			publisher := newPublisherMock()
			ctrl := newController(store, publisher)

			dazed, err := ctrl.DazePuzzles(context.Background())
			if test.err != nil {
				require.Equal(t, test.err, err)
				require.Empty(t, publisher.published)
				return
			}
			require.NoError(t, err)
			require.Len(t, dazed, len(test.puzzles))
			require.Len(t, saved, len(test.puzzles))
			require.Equal(t, test.published, publisher.published)
		})
	}
}

func TestCreateQuestion(t *testing.T) {
	tests := map[string]struct {
		ctx    context.Context
		status int32
		getErr error
		err    error
	}{
		"anonymous":      {ctx: context.Background(), err: serrors.ValidationError(guard.MsgLogin)},
		"puzzle dne":     {ctx: as(bob), getErr: serrors.ErrRecordDNE, err: serrors.NotFoundError("Puzzle not found")},
		"puzzle solved":  {ctx: as(bob), status: model.PuzzleSolved, err: serrors.ValidationError(msgPuzzleSolved)},
		"question asked": {ctx: as(bob)},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			var created int
			store := db.NewStoreMock(
				db.WithGet(func(_ context.Context, dst model.Record, id int64) error {
					if test.getErr != nil {
						return test.getErr
					}
					*dst.(*model.Puzzle) = model.Puzzle{Model: imodel.Model{ID: id}, Status: test.status}
					return nil
				}),
				db.WithCreate(func(_ context.Context, record model.Record) error {
					created++
					record.(*model.Dialogue).ID = 11
					return nil
				}),
			)
			publisher := newPublisherMock()
			ctrl := newController(store, publisher)

			dialogue, err := ctrl.CreateQuestion(test.ctx, CreateQuestionInput{PuzzleID: 7, Content: "Is it soup?"})
			if test.err != nil {
				require.Equal(t, test.err, err)
				require.Zero(t, created)
				return
			}
			require.NoError(t, err)
			require.Equal(t, bob.ID, dialogue.UserID)
			require.Equal(t, int64(7), dialogue.PuzzleID)
			require.Equal(t, []published{{kind: model.KindDialogue, id: 11}}, publisher.published)
		})
	}
}

func TestUpdateAnswer(t *testing.T) {
	answered := now.Add(-time.Hour)

	tests := map[string]struct {
		ctx      context.Context
		dialogue model.Dialogue
		err      error
		expected model.Dialogue
	}{
		"not puzzle creator": {
			ctx:      as(bob),
			dialogue: model.Dialogue{Model: imodel.Model{ID: 11}, PuzzleID: 7},
			err:      serrors.PermissionError(msgNotPuzzleCreator),
		},
		"first answer": {
			ctx:      as(alice),
			dialogue: model.Dialogue{Model: imodel.Model{ID: 11}, PuzzleID: 7},
			expected: model.Dialogue{
				Model:        imodel.Model{ID: 11},
				PuzzleID:     7,
				Answer:       "Yes",
				True:         true,
				AnsweredTime: &now,
			},
		},
		"edit answer": {
			ctx: as(alice),
			dialogue: model.Dialogue{
				Model:        imodel.Model{ID: 11},
				PuzzleID:     7,
				Answer:       "No",
				AnsweredTime: &answered,
			},
			expected: model.Dialogue{
				Model:           imodel.Model{ID: 11},
				PuzzleID:        7,
				Answer:          "Yes",
				True:            true,
				AnsweredTime:    &answered,
				AnswerEditTimes: 1,
			},
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			store := db.NewStoreMock(
				db.WithGet(func(_ context.Context, dst model.Record, id int64) error {
					switch dst := dst.(type) {
					case *model.Dialogue:
						*dst = test.dialogue
					case *model.Puzzle:
						*dst = model.Puzzle{Model: imodel.Model{ID: id}, UserID: alice.ID}
					}
					return nil
				}),
			)
			ctrl := newController(store, newPublisherMock())

			dialogue, err := ctrl.UpdateAnswer(test.ctx, UpdateAnswerInput{
				DialogueID: 11,
				Content:    "Yes",
				True:       true,
			})
			if test.err != nil {
				require.Equal(t, test.err, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, test.expected, *dialogue)
		})
	}
}

func TestCreateHintNotCreator(t *testing.T) {
	store := db.NewStoreMock(
		db.WithGet(func(_ context.Context, dst model.Record, id int64) error {
			*dst.(*model.Puzzle) = model.Puzzle{Model: imodel.Model{ID: id}, UserID: alice.ID}
			return nil
		}),
		db.WithCreate(func(context.Context, model.Record) error {
			t.Fatal("unexpected create")
			return nil
		}),
	)
	ctrl := newController(store, newPublisherMock())

	_, err := ctrl.CreateHint(as(bob), CreateHintInput{PuzzleID: 7, Content: "soup"})
	require.Equal(t, serrors.PermissionError(msgNotPuzzleCreator), err)
}

func TestCreateAwardApplication(t *testing.T) {
	tests := map[string]struct {
		pending    int64
		hasAward   bool
		hasApplied bool
		err        error
	}{
		"pending cap": {
			pending: 2,
			err:     serrors.ValidationError("You can apply up to 2 awards at the same time!"),
		},
		"has award": {
			pending:  1,
			hasAward: true,
			err:      serrors.ValidationError(msgHasAward),
		},
		"already applied": {
			hasApplied: true,
			err:        serrors.ValidationError(msgAppliedAward),
		},
		"applied": {pending: 1},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			store := db.NewStoreMock(
				db.WithGet(func(_ context.Context, dst model.Record, id int64) error {
					*dst.(*model.Award) = model.Award{Model: imodel.Model{ID: id}}
					return nil
				}),
				db.WithCountPendingAwardApplications(func(context.Context, int64) (int64, error) {
					return test.pending, nil
				}),
				db.WithHasUserAward(func(context.Context, int64, int64) (bool, error) {
					return test.hasAward, nil
				}),
				db.WithHasPendingAwardApplication(func(context.Context, int64, int64) (bool, error) {
					return test.hasApplied, nil
				}),
			)
			ctrl := newController(store, newPublisherMock())

			application, err := ctrl.CreateAwardApplication(
				as(bob),
				CreateAwardApplicationInput{AwardID: 5, Comment: "please"},
			)
			if test.err != nil {
				require.Equal(t, test.err, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, model.ApplicationPending, application.Status)
			require.Equal(t, bob.ID, application.ApplierID)
			require.Equal(t, int64(5), application.AwardID)
		})
	}
}

func TestUpdateAwardApplication(t *testing.T) {
	approve := model.ApplicationApproved
	reject := model.ApplicationRejected

	tests := map[string]struct {
		ctx        context.Context
		permission bool
		status     int32
		applierID  int64
		input      UpdateAwardApplicationInput
		err        error
		granted    bool
	}{
		"no permission": {
			ctx:   as(alice),
			input: UpdateAwardApplicationInput{ID: 9, Status: &approve},
			err:   serrors.PermissionError(msgCannotReview),
		},
		"staff without permission": {
			ctx:       as(staffy),
			applierID: bob.ID,
			input:     UpdateAwardApplicationInput{ID: 9, Status: &approve},
			err:       serrors.PermissionError(msgCannotReview),
		},
		"already reviewed": {
			ctx:        as(alice),
			permission: true,
			status:     model.ApplicationRejected,
			applierID:  bob.ID,
			input:      UpdateAwardApplicationInput{ID: 9, Status: &approve},
			err:        serrors.ConflictError("Award application has already been reviewed"),
		},
		"self review": {
			ctx:        as(bob),
			permission: true,
			applierID:  bob.ID,
			input:      UpdateAwardApplicationInput{ID: 9, Status: &approve},
			err:        serrors.PermissionError(msgSelfReview),
		},
		"staff self review": {
			ctx:        as(staffy),
			permission: true,
			applierID:  staffy.ID,
			input:      UpdateAwardApplicationInput{ID: 9, Status: &approve},
			granted:    true,
		},
		"approve": {
			ctx:        as(alice),
			permission: true,
			applierID:  bob.ID,
			input:      UpdateAwardApplicationInput{ID: 9, Status: &approve, Reason: "well earned"},
			granted:    true,
		},
		"reject": {
			ctx:        as(alice),
			permission: true,
			applierID:  bob.ID,
			input:      UpdateAwardApplicationInput{ID: 9, Status: &reject},
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			var granted *model.UserAward
			store := db.NewStoreMock(
				db.WithHasPermission(func(_ context.Context, _ int64, codename string) (bool, error) {
					require.Equal(t, model.PermReviewAwardApplication, codename)
					return test.permission, nil
				}),
				db.WithLockAwardApplication(func(_ context.Context, id int64) (*model.AwardApplication, error) {
					return &model.AwardApplication{
						Model:     imodel.Model{ID: id},
						ApplierID: test.applierID,
						AwardID:   5,
						Status:    test.status,
					}, nil
				}),
				db.WithFirstOrCreate(func(_ context.Context, _ model.Record, conds model.Record) error {
					granted = conds.(*model.UserAward)
					return nil
				}),
			)
			ctrl := newController(store, newPublisherMock())

			application, err := ctrl.UpdateAwardApplication(test.ctx, test.input)
			if test.err != nil {
				require.Equal(t, test.err, err)
				require.Nil(t, granted)
				return
			}
			require.NoError(t, err)

			reviewer, _ := session.UserFromContext(test.ctx)
			require.Equal(t, *test.input.Status, application.Status)
			require.Equal(t, &reviewer.ID, application.ReviewerID)
			require.Equal(t, test.input.Reason, application.Reason)
			require.Equal(t, &now, application.Reviewed)

			if !test.granted {
				require.Nil(t, granted)
				return
			}
			require.Equal(t, &model.UserAward{UserID: test.applierID, AwardID: 5}, granted)
		})
	}
}

func TestCreateSchedule(t *testing.T) {
	tests := map[string]struct {
		content string
		future  int64
		err     error
	}{
		"empty content": {
			content: " ",
			err:     serrors.ValidationError(msgScheduleEmpty),
		},
		"schedule cap": {
			content: "Soup night",
			future:  3,
			err:     serrors.ValidationError("You can set up to 3 schedules at the same time!"),
		},
		"scheduled": {
			content: "Soup night",
			future:  2,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			store := db.NewStoreMock(
				db.WithCountFutureSchedules(func(_ context.Context, userID int64, at time.Time) (int64, error) {
					require.Equal(t, alice.ID, userID)
					require.Equal(t, now, at)
					return test.future, nil
				}),
			)
			ctrl := newController(store, newPublisherMock())

			schedule, err := ctrl.CreateSchedule(as(alice), CreateScheduleInput{
				Scheduled: now.Add(24 * time.Hour),
				Content:   test.content,
			})
			if test.err != nil {
				require.Equal(t, test.err, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, alice.ID, schedule.UserID)
			require.Equal(t, now.Add(24*time.Hour), schedule.Scheduled)
		})
	}
}

func TestRegister(t *testing.T) {
	tests := map[string]struct {
		input RegisterInput
		taken bool
		err   error
	}{
		"username charset": {
			input: RegisterInput{Username: "soup lover", Nickname: "Soup", Password: "soup1234"},
			err:   serrors.ValidationError(msgUsernameCharset),
		},
		"username short": {
			input: RegisterInput{Username: "abc", Nickname: "Soup", Password: "soup1234"},
			err:   serrors.ValidationError(msgUsernameShort),
		},
		"nickname blank": {
			input: RegisterInput{Username: "souplover", Nickname: "   ", Password: "soup1234"},
			err:   serrors.ValidationError(msgNicknameBlank),
		},
		"password without digits": {
			input: RegisterInput{Username: "souplover", Nickname: "Soup", Password: "soupsoup"},
			err:   serrors.ValidationError(msgPasswordMix),
		},
		"password short": {
			input: RegisterInput{Username: "souplover", Nickname: "Soup", Password: "soup12"},
			err:   serrors.ValidationError(msgPasswordShort),
		},
		"username taken": {
			input: RegisterInput{Username: "souplover", Nickname: "Soup", Password: "soup1234"},
			taken: true,
			err:   serrors.ValidationError("Username souplover is already taken!"),
		},
		"registered": {
			input: RegisterInput{Username: "souplover", Nickname: " Soup ", Password: "soup1234"},
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			store := db.NewStoreMock(
				db.WithUserByUsername(func(_ context.Context, username string) (*model.User, error) {
					if test.taken {
						return &model.User{Username: username}, nil
					}
					return nil, serrors.ErrRecordDNE
				}),
				db.WithCreate(func(_ context.Context, record model.Record) error {
					record.(*model.User).ID = 21
					return nil
				}),
			)
			sessions := session.NewMock()
			ctrl := newControllerWithSessions(store, sessions)

			out, err := ctrl.Register(context.Background(), test.input)
			if test.err != nil {
				require.Equal(t, test.err, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, "Soup", out.User.Nickname)
			require.Equal(t, now, out.User.DateJoined)
			require.Equal(t, hash([]byte(test.input.Password), []byte(out.User.Salt)), out.User.Password)

			sess, err := sessions.RetrieveSession(context.Background(), out.Session.ID)
			require.NoError(t, err)
			require.Equal(t, int64(21), sess.User.ID)
		})
	}
}

func TestLogin(t *testing.T) {
	salt := "pepper"
	user := model.User{
		Model:    imodel.Model{ID: 1},
		Username: "alice",
		Password: hash([]byte("soup1234"), []byte(salt)),
		Salt:     salt,
	}

	tests := map[string]struct {
		input LoginInput
		err   error
	}{
		"unknown user": {
			input: LoginInput{Username: "nobody", Password: "soup1234"},
			err:   serrors.ValidationError(MsgLoginIncorrect),
		},
		"wrong password": {
			input: LoginInput{Username: "alice", Password: "soup4321"},
			err:   serrors.ValidationError(MsgLoginIncorrect),
		},
		"logged in": {
			input: LoginInput{Username: "alice", Password: "soup1234"},
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			store := db.NewStoreMock(
				db.WithUserByUsername(func(_ context.Context, username string) (*model.User, error) {
					if username != user.Username {
						return nil, serrors.ErrRecordDNE
					}
					out := user
					return &out, nil
				}),
			)
			sessions := session.NewMock()
			ctrl := newControllerWithSessions(store, sessions)

			out, err := ctrl.Login(context.Background(), test.input)
			if test.err != nil {
				require.Equal(t, test.err, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, &now, out.User.LastLogin)

			sess, err := sessions.RetrieveSession(context.Background(), out.Session.ID)
			require.NoError(t, err)
			require.Equal(t, user.ToSessionUser(), sess.User)

			err = ctrl.Logout(session.WithSession(context.Background(), sess))
			require.NoError(t, err)
			_, err = sessions.RetrieveSession(context.Background(), out.Session.ID)
			require.ErrorIs(t, err, session.ErrSessionDNE)
		})
	}
}

func TestLoginUnknownUserTiming(t *testing.T) {
	salt := "pepper"
	user := model.User{
		Model:    imodel.Model{ID: 1},
		Username: "alice",
		Password: hash([]byte("soup1234"), []byte(salt)),
		Salt:     salt,
	}
	store := db.NewStoreMock(
		db.WithUserByUsername(func(_ context.Context, username string) (*model.User, error) {
			if username != user.Username {
				return nil, serrors.ErrRecordDNE
			}
			out := user
			return &out, nil
		}),
	)
	ctrl := newControllerWithSessions(store, session.NewMock())

	elapsed := func(username string) time.Duration {
		var total time.Duration
		for i := 0; i < 3; i++ {
			start := time.Now()
			_, err := ctrl.Login(context.Background(), LoginInput{Username: username, Password: "soup4321"})
			total += time.Since(start)
			require.Equal(t, serrors.ValidationError(MsgLoginIncorrect), err)
		}
		return total
	}

	known := elapsed("alice")
	unknown := elapsed("nobody")
	require.Greater(t, int64(unknown), int64(known/4))
}

func TestLogoutAnonymous(t *testing.T) {
	ctrl := newController(db.NewStoreMock(), newPublisherMock())
	require.NoError(t, ctrl.Logout(context.Background()))
}

func TestDeleteFavoriteChatRoom(t *testing.T) {
	tests := map[string]struct {
		roomErr   error
		deleteErr error
		err       error
	}{
		"room dne": {
			roomErr: serrors.ErrRecordDNE,
			err:     serrors.NotFoundError("ChatRoom lobby not found"),
		},
		"store error": {
			deleteErr: errors.New("connection reset"),
			err:       errors.New("connection reset"),
		},
		"deleted": {},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			store := db.NewStoreMock(
				db.WithChatRoomByName(func(_ context.Context, name string) (*model.ChatRoom, error) {
					if test.roomErr != nil {
						return nil, test.roomErr
					}
					return &model.ChatRoom{Model: imodel.Model{ID: 3}, Name: name}, nil
				}),
				db.WithDeleteFavoriteChatRoom(func(_ context.Context, userID, chatRoomID int64) error {
					require.Equal(t, alice.ID, userID)
					require.Equal(t, int64(3), chatRoomID)
					return test.deleteErr
				}),
			)
			ctrl := newController(store, newPublisherMock())

			err := ctrl.DeleteFavoriteChatRoom(as(alice), "lobby")
			require.Equal(t, test.err, err)
		})
	}
}

func TestCreateChatRoomExists(t *testing.T) {
	store := db.NewStoreMock(
		db.WithChatRoomByName(func(_ context.Context, name string) (*model.ChatRoom, error) {
			return &model.ChatRoom{Name: name}, nil
		}),
	)
	ctrl := newController(store, newPublisherMock())

	_, err := ctrl.CreateChatRoom(as(alice), CreateChatRoomInput{Name: "lobby"})
	require.Equal(t, serrors.ValidationError("Channel lobby exists already!"), err)
}

func TestUpdateLastReadDm(t *testing.T) {
	store := db.NewStoreMock(
		db.WithGet(func(_ context.Context, dst model.Record, id int64) error {
			switch dst := dst.(type) {
			case *model.DirectMessage:
				*dst = model.DirectMessage{Model: imodel.Model{ID: id}, SenderID: bob.ID, ReceiverID: alice.ID}
			case *model.User:
				*dst = model.User{Model: imodel.Model{ID: id}}
			}
			return nil
		}),
	)
	ctrl := newController(store, newPublisherMock())

	_, err := ctrl.UpdateLastReadDm(as(bob), 13)
	require.Equal(t, serrors.PermissionError(msgNotMessageReceive), err)

	user, err := ctrl.UpdateLastReadDm(as(alice), 13)
	require.NoError(t, err)
	require.Equal(t, int64(13), *user.LastReadDmID)
}

func TestPublishFailureDoesNotFailMutation(t *testing.T) {
	store := db.NewStoreMock(
		db.WithGet(func(_ context.Context, dst model.Record, id int64) error {
			*dst.(*model.Puzzle) = model.Puzzle{Model: imodel.Model{ID: id}, UserID: alice.ID}
			return nil
		}),
	)
	publisher := newPublisherMock()
	publisher.err = errors.New("stream unavailable")
	ctrl := newController(store, publisher)

	hint, err := ctrl.CreateHint(as(alice), CreateHintInput{PuzzleID: 7, Content: "soup"})
	require.NoError(t, err)
	require.Equal(t, int64(7), hint.PuzzleID)
}

func TestCanVote(t *testing.T) {
	ctrl := newController(db.NewStoreMock(), newPublisherMock())

	tests := map[string]struct {
		joined time.Time
		counts db.UserCounts
		exp    bool
	}{
		"new user":         {joined: now.Add(-time.Hour)},
		"joined long ago":  {joined: now.AddDate(0, 0, -15), exp: true},
		"prolific creator": {joined: now, counts: db.UserCounts{PuzzleCount: 6}, exp: true},
		"curious asker":    {joined: now, counts: db.UserCounts{QuesCount: 51}, exp: true},
		"at thresholds":    {joined: now.AddDate(0, 0, -14), counts: db.UserCounts{PuzzleCount: 5, QuesCount: 50}},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			user := model.User{DateJoined: test.joined}
			require.Equal(t, test.exp, ctrl.CanVote(user, test.counts))
		})
	}
}

// --- helpers ---

func as(user session.User) context.Context {
	return session.WithSession(
		context.Background(),
		session.New("session-"+user.Username, user, time.Hour),
	)
}

func with(input CreatePuzzleInput, fn func(*CreatePuzzleInput)) CreatePuzzleInput {
	fn(&input)
	return input
}

func newController(store db.IStore, publisher IPublisher) *Controller {
	return New(
		zap.NewNop(),
		store,
		session.NewMock(),
		publisher,
		ivalidator.New(),
		itime.NewMock(now),
		DefaultRules(),
		time.Hour,
		24*time.Hour,
	)
}

func newControllerWithSessions(store db.IStore, sessions ISessionManager) *Controller {
	return New(
		zap.NewNop(),
		store,
		sessions,
		newPublisherMock(),
		ivalidator.New(),
		itime.NewMock(now),
		DefaultRules(),
		time.Hour,
		24*time.Hour,
	)
}

// --- mocks ---

type published struct {
	kind string
	id   int64
}

func newPublisherMock() *publisherMock {
	return &publisherMock{}
}

type publisherMock struct {
	published []published
	err       error
}

func (m *publisherMock) Publish(_ context.Context, kind string, id int64) error {
	if m.err != nil {
		return m.err
	}
	m.published = append(m.published, published{kind: kind, id: id})
	return nil
}

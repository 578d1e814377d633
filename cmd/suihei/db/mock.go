package db

import (
	"context"
	"time"

	serrors "github.com/tjper/suihei/cmd/suihei/errors"
	"github.com/tjper/suihei/cmd/suihei/model"
	"github.com/tjper/suihei/cmd/suihei/query"
)

// NewStoreMock creates a new StoreMock instance. Methods without a configured
// function return zero values, and lookups return serrors.ErrRecordDNE.
func NewStoreMock(options ...StoreMockOption) *StoreMock {
	mock := &StoreMock{}

	for _, option := range options {
		option(mock)
	}

	return mock
}

// StoreMockOption is a function type that may configure a StoreMock instance.
type StoreMockOption func(*StoreMock)

// WithQuery configures a StoreMock instance to execute the passed function
// when Query is called.
func WithQuery(fn queryFunc) StoreMockOption {
	return func(mock *StoreMock) { mock.query = fn }
}

// WithExists configures a StoreMock instance to execute the passed function
// when Exists is called.
func WithExists(fn existsFunc) StoreMockOption {
	return func(mock *StoreMock) { mock.exists = fn }
}

// WithFetch configures a StoreMock instance to execute the passed function
// when Fetch is called.
func WithFetch(fn fetchFunc) StoreMockOption {
	return func(mock *StoreMock) { mock.fetch = fn }
}

// WithGet configures a StoreMock instance to execute the passed function
// when Get is called.
func WithGet(fn getFunc) StoreMockOption {
	return func(mock *StoreMock) { mock.get = fn }
}

// WithCreate configures a StoreMock instance to execute the passed function
// when Create is called.
func WithCreate(fn createFunc) StoreMockOption {
	return func(mock *StoreMock) { mock.create = fn }
}

// WithSave configures a StoreMock instance to execute the passed function
// when Save is called.
func WithSave(fn saveFunc) StoreMockOption {
	return func(mock *StoreMock) { mock.save = fn }
}

// WithDelete configures a StoreMock instance to execute the passed function
// when Delete is called.
func WithDelete(fn deleteFunc) StoreMockOption {
	return func(mock *StoreMock) { mock.delete = fn }
}

// WithFirstOrCreate configures a StoreMock instance to execute the passed function
// when FirstOrCreate is called.
func WithFirstOrCreate(fn firstOrCreateFunc) StoreMockOption {
	return func(mock *StoreMock) { mock.firstOrCreate = fn }
}

// WithUserByUsername configures a StoreMock instance to execute the passed function
// when UserByUsername is called.
func WithUserByUsername(fn userByUsernameFunc) StoreMockOption {
	return func(mock *StoreMock) { mock.userByUsername = fn }
}

// WithHasPermission configures a StoreMock instance to execute the passed function
// when HasPermission is called.
func WithHasPermission(fn hasPermissionFunc) StoreMockOption {
	return func(mock *StoreMock) { mock.hasPermission = fn }
}

// WithChatRoomByName configures a StoreMock instance to execute the passed function
// when ChatRoomByName is called.
func WithChatRoomByName(fn chatRoomByNameFunc) StoreMockOption {
	return func(mock *StoreMock) { mock.chatRoomByName = fn }
}

// WithDeleteChatRoomsByName configures a StoreMock instance to execute the passed function
// when DeleteChatRoomsByName is called.
func WithDeleteChatRoomsByName(fn deleteChatRoomsByNameFunc) StoreMockOption {
	return func(mock *StoreMock) { mock.deleteChatRoomsByName = fn }
}

// WithDeleteFavoriteChatRoom configures a StoreMock instance to execute the passed function
// when DeleteFavoriteChatRoom is called.
func WithDeleteFavoriteChatRoom(fn deleteFavoriteChatRoomFunc) StoreMockOption {
	return func(mock *StoreMock) { mock.deleteFavoriteChatRoom = fn }
}

// WithCountPendingAwardApplications configures a StoreMock instance to execute the passed function
// when CountPendingAwardApplications is called.
func WithCountPendingAwardApplications(fn countPendingAwardApplicationsFunc) StoreMockOption {
	return func(mock *StoreMock) { mock.countPendingAwardApplications = fn }
}

// WithHasUserAward configures a StoreMock instance to execute the passed function
// when HasUserAward is called.
func WithHasUserAward(fn hasUserAwardFunc) StoreMockOption {
	return func(mock *StoreMock) { mock.hasUserAward = fn }
}

// WithHasPendingAwardApplication configures a StoreMock instance to execute the passed function
// when HasPendingAwardApplication is called.
func WithHasPendingAwardApplication(fn hasPendingAwardApplicationFunc) StoreMockOption {
	return func(mock *StoreMock) { mock.hasPendingAwardApplication = fn }
}

// WithLockAwardApplication configures a StoreMock instance to execute the passed function
// when LockAwardApplication is called.
func WithLockAwardApplication(fn lockAwardApplicationFunc) StoreMockOption {
	return func(mock *StoreMock) { mock.lockAwardApplication = fn }
}

// WithCountFutureSchedules configures a StoreMock instance to execute the passed function
// when CountFutureSchedules is called.
func WithCountFutureSchedules(fn countFutureSchedulesFunc) StoreMockOption {
	return func(mock *StoreMock) { mock.countFutureSchedules = fn }
}

// WithPastDazedPuzzles configures a StoreMock instance to execute the passed function
// when PastDazedPuzzles is called.
func WithPastDazedPuzzles(fn pastDazedPuzzlesFunc) StoreMockOption {
	return func(mock *StoreMock) { mock.pastDazedPuzzles = fn }
}

// WithPuzzleCounts configures a StoreMock instance to execute the passed function
// when PuzzleCounts is called.
func WithPuzzleCounts(fn puzzleCountsFunc) StoreMockOption {
	return func(mock *StoreMock) { mock.puzzleCounts = fn }
}

// WithUserCounts configures a StoreMock instance to execute the passed function
// when UserCounts is called.
func WithUserCounts(fn userCountsFunc) StoreMockOption {
	return func(mock *StoreMock) { mock.userCounts = fn }
}

// WithPuzzleShowUnion configures a StoreMock instance to execute the passed function
// when PuzzleShowUnion is called.
func WithPuzzleShowUnion(fn puzzleShowUnionFunc) StoreMockOption {
	return func(mock *StoreMock) { mock.puzzleShowUnion = fn }
}

// WithHasTrueDialogue configures a StoreMock instance to execute the passed function
// when HasTrueDialogue is called.
func WithHasTrueDialogue(fn hasTrueDialogueFunc) StoreMockOption {
	return func(mock *StoreMock) { mock.hasTrueDialogue = fn }
}

// WithPing configures a StoreMock instance to execute the passed function
// when Ping is called.
func WithPing(fn pingFunc) StoreMockOption {
	return func(mock *StoreMock) { mock.ping = fn }
}

// StoreMock is an IStore implementation for use in unit-tests. Tx executes
// the passed function against the StoreMock itself.
type StoreMock struct {
	query                         queryFunc
	exists                        existsFunc
	fetch                         fetchFunc
	get                           getFunc
	create                        createFunc
	save                          saveFunc
	delete                        deleteFunc
	firstOrCreate                 firstOrCreateFunc
	userByUsername                userByUsernameFunc
	hasPermission                 hasPermissionFunc
	chatRoomByName                chatRoomByNameFunc
	deleteChatRoomsByName         deleteChatRoomsByNameFunc
	deleteFavoriteChatRoom        deleteFavoriteChatRoomFunc
	countPendingAwardApplications countPendingAwardApplicationsFunc
	hasUserAward                  hasUserAwardFunc
	hasPendingAwardApplication    hasPendingAwardApplicationFunc
	lockAwardApplication          lockAwardApplicationFunc
	countFutureSchedules          countFutureSchedulesFunc
	pastDazedPuzzles              pastDazedPuzzlesFunc
	puzzleCounts                  puzzleCountsFunc
	userCounts                    userCountsFunc
	puzzleShowUnion               puzzleShowUnionFunc
	hasTrueDialogue               hasTrueDialogueFunc
	ping                          pingFunc
}

type (
	queryFunc                         func(kind string) (*query.RecordSet, error)
	existsFunc                        func(ctx context.Context, kind string, id int64) (bool, error)
	fetchFunc                         func(ctx context.Context, kind string, id int64) (model.Record, error)
	getFunc                           func(ctx context.Context, dst model.Record, id int64) error
	createFunc                        func(ctx context.Context, record model.Record) error
	saveFunc                          func(ctx context.Context, record model.Record) error
	deleteFunc                        func(ctx context.Context, record model.Record) error
	firstOrCreateFunc                 func(ctx context.Context, dst model.Record, conds model.Record) error
	userByUsernameFunc                func(ctx context.Context, username string) (*model.User, error)
	hasPermissionFunc                 func(ctx context.Context, userID int64, codename string) (bool, error)
	chatRoomByNameFunc                func(ctx context.Context, name string) (*model.ChatRoom, error)
	deleteChatRoomsByNameFunc         func(ctx context.Context, name string) error
	deleteFavoriteChatRoomFunc        func(ctx context.Context, userID, chatRoomID int64) error
	countPendingAwardApplicationsFunc func(ctx context.Context, userID int64) (int64, error)
	hasUserAwardFunc                  func(ctx context.Context, userID, awardID int64) (bool, error)
	hasPendingAwardApplicationFunc    func(ctx context.Context, userID, awardID int64) (bool, error)
	lockAwardApplicationFunc          func(ctx context.Context, id int64) (*model.AwardApplication, error)
	countFutureSchedulesFunc          func(ctx context.Context, userID int64, now time.Time) (int64, error)
	pastDazedPuzzlesFunc              func(ctx context.Context, now time.Time) ([]model.Puzzle, error)
	puzzleCountsFunc                  func(ctx context.Context, puzzleID int64) (*PuzzleCounts, error)
	userCountsFunc                    func(ctx context.Context, userID int64) (*UserCounts, error)
	puzzleShowUnionFunc               func(ctx context.Context, puzzleID int64) ([]model.Record, error)
	hasTrueDialogueFunc               func(ctx context.Context, userID, puzzleID int64) (bool, error)
	pingFunc                          func(ctx context.Context) error
)

func (m StoreMock) Tx(ctx context.Context, fn func(IStore) error) error {
	return fn(m)
}

func (m StoreMock) Query(kind string) (*query.RecordSet, error) {
	if m.query == nil {
		return nil, nil
	}
	return m.query(kind)
}

func (m StoreMock) Exists(ctx context.Context, kind string, id int64) (bool, error) {
	if m.exists == nil {
		return false, nil
	}
	return m.exists(ctx, kind, id)
}

func (m StoreMock) Fetch(ctx context.Context, kind string, id int64) (model.Record, error) {
	if m.fetch == nil {
		return nil, serrors.ErrRecordDNE
	}
	return m.fetch(ctx, kind, id)
}

func (m StoreMock) Get(ctx context.Context, dst model.Record, id int64) error {
	if m.get == nil {
		return serrors.ErrRecordDNE
	}
	return m.get(ctx, dst, id)
}

func (m StoreMock) Create(ctx context.Context, record model.Record) error {
	if m.create == nil {
		return nil
	}
	return m.create(ctx, record)
}

func (m StoreMock) Save(ctx context.Context, record model.Record) error {
	if m.save == nil {
		return nil
	}
	return m.save(ctx, record)
}

func (m StoreMock) Delete(ctx context.Context, record model.Record) error {
	if m.delete == nil {
		return nil
	}
	return m.delete(ctx, record)
}

func (m StoreMock) FirstOrCreate(ctx context.Context, dst model.Record, conds model.Record) error {
	if m.firstOrCreate == nil {
		return nil
	}
	return m.firstOrCreate(ctx, dst, conds)
}

func (m StoreMock) UserByUsername(ctx context.Context, username string) (*model.User, error) {
	if m.userByUsername == nil {
		return nil, serrors.ErrRecordDNE
	}
	return m.userByUsername(ctx, username)
}

func (m StoreMock) HasPermission(ctx context.Context, userID int64, codename string) (bool, error) {
	if m.hasPermission == nil {
		return false, nil
	}
	return m.hasPermission(ctx, userID, codename)
}

func (m StoreMock) ChatRoomByName(ctx context.Context, name string) (*model.ChatRoom, error) {
	if m.chatRoomByName == nil {
		return nil, serrors.ErrRecordDNE
	}
	return m.chatRoomByName(ctx, name)
}

func (m StoreMock) DeleteChatRoomsByName(ctx context.Context, name string) error {
	if m.deleteChatRoomsByName == nil {
		return nil
	}
	return m.deleteChatRoomsByName(ctx, name)
}

func (m StoreMock) DeleteFavoriteChatRoom(ctx context.Context, userID, chatRoomID int64) error {
	if m.deleteFavoriteChatRoom == nil {
		return nil
	}
	return m.deleteFavoriteChatRoom(ctx, userID, chatRoomID)
}

func (m StoreMock) CountPendingAwardApplications(ctx context.Context, userID int64) (int64, error) {
	if m.countPendingAwardApplications == nil {
		return 0, nil
	}
	return m.countPendingAwardApplications(ctx, userID)
}

func (m StoreMock) HasUserAward(ctx context.Context, userID, awardID int64) (bool, error) {
	if m.hasUserAward == nil {
		return false, nil
	}
	return m.hasUserAward(ctx, userID, awardID)
}

func (m StoreMock) HasPendingAwardApplication(ctx context.Context, userID, awardID int64) (bool, error) {
	if m.hasPendingAwardApplication == nil {
		return false, nil
	}
	return m.hasPendingAwardApplication(ctx, userID, awardID)
}

func (m StoreMock) LockAwardApplication(ctx context.Context, id int64) (*model.AwardApplication, error) {
	if m.lockAwardApplication == nil {
		return nil, serrors.ErrRecordDNE
	}
	return m.lockAwardApplication(ctx, id)
}

func (m StoreMock) CountFutureSchedules(ctx context.Context, userID int64, now time.Time) (int64, error) {
	if m.countFutureSchedules == nil {
		return 0, nil
	}
	return m.countFutureSchedules(ctx, userID, now)
}

func (m StoreMock) PastDazedPuzzles(ctx context.Context, now time.Time) ([]model.Puzzle, error) {
	if m.pastDazedPuzzles == nil {
		return nil, nil
	}
	return m.pastDazedPuzzles(ctx, now)
}

func (m StoreMock) PuzzleCounts(ctx context.Context, puzzleID int64) (*PuzzleCounts, error) {
	if m.puzzleCounts == nil {
		return &PuzzleCounts{}, nil
	}
	return m.puzzleCounts(ctx, puzzleID)
}

func (m StoreMock) UserCounts(ctx context.Context, userID int64) (*UserCounts, error) {
	if m.userCounts == nil {
		return &UserCounts{}, nil
	}
	return m.userCounts(ctx, userID)
}

func (m StoreMock) PuzzleShowUnion(ctx context.Context, puzzleID int64) ([]model.Record, error) {
	if m.puzzleShowUnion == nil {
		return nil, nil
	}
	return m.puzzleShowUnion(ctx, puzzleID)
}

func (m StoreMock) HasTrueDialogue(ctx context.Context, userID, puzzleID int64) (bool, error) {
	if m.hasTrueDialogue == nil {
		return false, nil
	}
	return m.hasTrueDialogue(ctx, userID, puzzleID)
}

func (m StoreMock) Ping(ctx context.Context) error {
	if m.ping == nil {
		return nil
	}
	return m.ping(ctx)
}

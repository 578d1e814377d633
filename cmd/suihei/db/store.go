package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	serrors "github.com/tjper/suihei/cmd/suihei/errors"
	"github.com/tjper/suihei/cmd/suihei/model"
	"github.com/tjper/suihei/cmd/suihei/query"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// IStore is the persistent store consumed by suihei's controller, resolvers
// and change-event router.
type IStore interface {
	Tx(context.Context, func(IStore) error) error

	Query(kind string) (*query.RecordSet, error)
	Exists(ctx context.Context, kind string, id int64) (bool, error)
	Fetch(ctx context.Context, kind string, id int64) (model.Record, error)
	Get(ctx context.Context, dst model.Record, id int64) error

	Create(context.Context, model.Record) error
	Save(context.Context, model.Record) error
	Delete(context.Context, model.Record) error
	FirstOrCreate(ctx context.Context, dst model.Record, conds model.Record) error

	UserByUsername(ctx context.Context, username string) (*model.User, error)
	HasPermission(ctx context.Context, userID int64, codename string) (bool, error)
	ChatRoomByName(ctx context.Context, name string) (*model.ChatRoom, error)
	DeleteChatRoomsByName(ctx context.Context, name string) error
	DeleteFavoriteChatRoom(ctx context.Context, userID, chatRoomID int64) error

	CountPendingAwardApplications(ctx context.Context, userID int64) (int64, error)
	HasUserAward(ctx context.Context, userID, awardID int64) (bool, error)
	HasPendingAwardApplication(ctx context.Context, userID, awardID int64) (bool, error)
	LockAwardApplication(ctx context.Context, id int64) (*model.AwardApplication, error)
	CountFutureSchedules(ctx context.Context, userID int64, now time.Time) (int64, error)
	PastDazedPuzzles(ctx context.Context, now time.Time) ([]model.Puzzle, error)

	PuzzleCounts(ctx context.Context, puzzleID int64) (*PuzzleCounts, error)
	UserCounts(ctx context.Context, userID int64) (*UserCounts, error)
	PuzzleShowUnion(ctx context.Context, puzzleID int64) ([]model.Record, error)
	HasTrueDialogue(ctx context.Context, userID, puzzleID int64) (bool, error)

	Ping(context.Context) error
}

// NewStore creates a new Store instance.
func NewStore(
	logger *zap.Logger,
	db *gorm.DB,
	registry *query.Registry,
) *Store {
	return &Store{
		logger:   logger,
		db:       db,
		registry: registry,
	}
}

// Store is the gorm backed IStore implementation.
type Store struct {
	logger   *zap.Logger
	db       *gorm.DB
	registry *query.Registry
}

// Tx executes fn within a transaction. When fn returns an error the
// transaction is rolled back. Nested calls use savepoints.
func (s Store) Tx(ctx context.Context, fn func(IStore) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(
			Store{logger: s.logger, db: tx, registry: s.registry},
		)
	})
}

// Query creates a RecordSet over every record of kind.
func (s Store) Query(kind string) (*query.RecordSet, error) {
	return s.registry.RecordSet(s.db, kind)
}

// Exists implements the query.Resolver interface.
func (s Store) Exists(ctx context.Context, kind string, id int64) (bool, error) {
	b, err := s.registry.Lookup(kind)
	if err != nil {
		return false, err
	}

	var count int64
	res := s.db.
		WithContext(ctx).
		Table(b.Table).
		Where(clause.Eq{Column: clause.Column{Table: b.Table, Name: "id"}, Value: id}).
		Count(&count)
	if res.Error != nil {
		return false, fmt.Errorf("exists %s; id: %d, error: %w", kind, id, res.Error)
	}
	return count > 0, nil
}

// Fetch retrieves the current state of the record of kind identified by id,
// along with the associations bound to kind.
func (s Store) Fetch(ctx context.Context, kind string, id int64) (model.Record, error) {
	b, err := s.registry.Lookup(kind)
	if err != nil {
		return nil, err
	}
	record, ok := model.New(kind)
	if !ok {
		return nil, fmt.Errorf("fetch %q: %w", kind, serrors.ErrUnknownKind)
	}

	q := s.db.WithContext(ctx)
	for _, preload := range b.Preload {
		q = q.Preload(preload)
	}
	if err := first(q, record, id); err != nil {
		return nil, fmt.Errorf("fetch %s; id: %d, error: %w", kind, id, err)
	}
	return record, nil
}

// Get retrieves the record identified by id into dst.
func (s Store) Get(ctx context.Context, dst model.Record, id int64) error {
	if err := first(s.db.WithContext(ctx), dst, id); err != nil {
		return fmt.Errorf("get %s; id: %d, error: %w", dst.RecordKind(), id, err)
	}
	return nil
}

func (s Store) Create(ctx context.Context, record model.Record) error {
	if res := s.db.WithContext(ctx).Create(record); res.Error != nil {
		return fmt.Errorf("create %s; error: %w", record.RecordKind(), res.Error)
	}
	return nil
}

func (s Store) Save(ctx context.Context, record model.Record) error {
	if res := s.db.WithContext(ctx).Save(record); res.Error != nil {
		return fmt.Errorf("save %s; id: %d, error: %w", record.RecordKind(), record.RecordID(), res.Error)
	}
	return nil
}

// Delete deletes record. Records referencing it are deleted by the
// database's cascading foreign keys.
func (s Store) Delete(ctx context.Context, record model.Record) error {
	res := s.db.WithContext(ctx).Delete(record)
	if res.Error != nil {
		return fmt.Errorf("delete %s; id: %d, error: %w", record.RecordKind(), record.RecordID(), res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("delete %s; id: %d, error: %w", record.RecordKind(), record.RecordID(), serrors.ErrRecordDNE)
	}
	return nil
}

// FirstOrCreate retrieves the first record matching the non-zero fields of
// conds into dst. If no record matches, dst is created with those fields.
func (s Store) FirstOrCreate(ctx context.Context, dst model.Record, conds model.Record) error {
	if res := s.db.WithContext(ctx).Where(conds).FirstOrCreate(dst); res.Error != nil {
		return fmt.Errorf("first or create %s; error: %w", dst.RecordKind(), res.Error)
	}
	return nil
}

func (s Store) UserByUsername(ctx context.Context, username string) (*model.User, error) {
	user := new(model.User)
	res := s.db.WithContext(ctx).Where("username = ?", username).First(user)
	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return nil, serrors.ErrRecordDNE
	}
	if res.Error != nil {
		return nil, res.Error
	}
	return user, nil
}

// HasPermission checks if the user identified by userID holds the permission
// named codename. Only granted user_permissions rows count; staff status
// grants nothing on its own.
func (s Store) HasPermission(ctx context.Context, userID int64, codename string) (bool, error) {
	var count int64
	res := s.db.
		WithContext(ctx).
		Model(&model.UserPermission{}).
		Where("user_id = ?", userID).
		Where("codename = ?", codename).
		Count(&count)
	if res.Error != nil {
		return false, res.Error
	}
	return count > 0, nil
}

func (s Store) ChatRoomByName(ctx context.Context, name string) (*model.ChatRoom, error) {
	room := new(model.ChatRoom)
	res := s.db.WithContext(ctx).Where("name = ?", name).First(room)
	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return nil, serrors.ErrRecordDNE
	}
	if res.Error != nil {
		return nil, res.Error
	}
	return room, nil
}

func (s Store) DeleteChatRoomsByName(ctx context.Context, name string) error {
	return s.db.WithContext(ctx).Where("name = ?", name).Delete(&model.ChatRoom{}).Error
}

// DeleteFavoriteChatRoom removes the favorite, if any, linking userID and
// chatRoomID.
func (s Store) DeleteFavoriteChatRoom(ctx context.Context, userID, chatRoomID int64) error {
	res := s.db.
		WithContext(ctx).
		Where("user_id = ? AND chat_room_id = ?", userID, chatRoomID).
		Delete(&model.FavoriteChatRoom{})
	return res.Error
}

func (s Store) CountPendingAwardApplications(ctx context.Context, userID int64) (int64, error) {
	var count int64
	res := s.db.
		WithContext(ctx).
		Model(&model.AwardApplication{}).
		Where("applier_id = ? AND status = ?", userID, model.ApplicationPending).
		Count(&count)
	return count, res.Error
}

func (s Store) HasUserAward(ctx context.Context, userID, awardID int64) (bool, error) {
	var count int64
	res := s.db.
		WithContext(ctx).
		Model(&model.UserAward{}).
		Where("user_id = ? AND award_id = ?", userID, awardID).
		Count(&count)
	return count > 0, res.Error
}

func (s Store) HasPendingAwardApplication(ctx context.Context, userID, awardID int64) (bool, error) {
	var count int64
	res := s.db.
		WithContext(ctx).
		Model(&model.AwardApplication{}).
		Where("applier_id = ? AND award_id = ? AND status = ?", userID, awardID, model.ApplicationPending).
		Count(&count)
	return count > 0, res.Error
}

// LockAwardApplication retrieves the award application identified by id,
// locking its row until the enclosing transaction ends.
func (s Store) LockAwardApplication(ctx context.Context, id int64) (*model.AwardApplication, error) {
	app := new(model.AwardApplication)
	q := s.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"})
	if err := first(q, app, id); err != nil {
		return nil, fmt.Errorf("lock award application; id: %d, error: %w", id, err)
	}
	return app, nil
}

func (s Store) CountFutureSchedules(ctx context.Context, userID int64, now time.Time) (int64, error) {
	var count int64
	res := s.db.
		WithContext(ctx).
		Model(&model.Schedule{}).
		Where("user_id = ? AND scheduled > ?", userID, now).
		Count(&count)
	return count, res.Error
}

// PastDazedPuzzles retrieves the unsolved puzzles whose dazed_on date is
// before now, locking them for update.
func (s Store) PastDazedPuzzles(ctx context.Context, now time.Time) ([]model.Puzzle, error) {
	var puzzles []model.Puzzle
	res := s.db.
		WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("status = ? AND dazed_on < ?", model.PuzzleUnsolved, now).
		Order("id").
		Find(&puzzles)
	return puzzles, res.Error
}

// PuzzleCounts are the aggregates computed over a puzzle's dependents.
type PuzzleCounts struct {
	QuesCount           int64
	UnansweredQuesCount int64
	StarCount           int64
	StarSum             int64
	CommentCount        int64
	BookmarkCount       int64
}

func (s Store) PuzzleCounts(ctx context.Context, puzzleID int64) (*PuzzleCounts, error) {
	counts := new(PuzzleCounts)
	res := s.db.WithContext(ctx).Raw(
		`SELECT
			(SELECT COUNT(*) FROM dialogues WHERE puzzle_id = @id) AS ques_count,
			(SELECT COUNT(*) FROM dialogues WHERE puzzle_id = @id AND answer = '') AS unanswered_ques_count,
			(SELECT COUNT(*) FROM stars WHERE puzzle_id = @id) AS star_count,
			(SELECT COALESCE(SUM(value), 0) FROM stars WHERE puzzle_id = @id) AS star_sum,
			(SELECT COUNT(*) FROM comments WHERE puzzle_id = @id) AS comment_count,
			(SELECT COUNT(*) FROM bookmarks WHERE puzzle_id = @id) AS bookmark_count`,
		sql.Named("id", puzzleID),
	).Scan(counts)
	if res.Error != nil {
		return nil, fmt.Errorf("puzzle counts; id: %d, error: %w", puzzleID, res.Error)
	}
	return counts, nil
}

// UserCounts are the aggregates computed over a user's records, and over the
// records others left on the user's puzzles.
type UserCounts struct {
	PuzzleCount          int64
	QuesCount            int64
	GoodQuesCount        int64
	TrueQuesCount        int64
	CommentCount         int64
	ReceivedCommentCount int64
	StarCount            int64
	StarSum              int64
	ReceivedStarCount    int64
	ReceivedStarSum      int64
	DMCount              int64
}

func (s Store) UserCounts(ctx context.Context, userID int64) (*UserCounts, error) {
	counts := new(UserCounts)
	res := s.db.WithContext(ctx).Raw(
		`SELECT
			(SELECT COUNT(*) FROM puzzles WHERE user_id = @id) AS puzzle_count,
			(SELECT COUNT(*) FROM dialogues WHERE user_id = @id) AS ques_count,
			(SELECT COUNT(*) FROM dialogues WHERE user_id = @id AND good) AS good_ques_count,
			(SELECT COUNT(*) FROM dialogues WHERE user_id = @id AND true_answer) AS true_ques_count,
			(SELECT COUNT(*) FROM comments WHERE user_id = @id) AS comment_count,
			(SELECT COUNT(*) FROM comments c JOIN puzzles p ON p.id = c.puzzle_id WHERE p.user_id = @id) AS received_comment_count,
			(SELECT COUNT(*) FROM stars WHERE user_id = @id) AS star_count,
			(SELECT COALESCE(SUM(value), 0) FROM stars WHERE user_id = @id) AS star_sum,
			(SELECT COUNT(*) FROM stars s JOIN puzzles p ON p.id = s.puzzle_id WHERE p.user_id = @id) AS received_star_count,
			(SELECT COALESCE(SUM(s.value), 0) FROM stars s JOIN puzzles p ON p.id = s.puzzle_id WHERE p.user_id = @id) AS received_star_sum,
			(SELECT COUNT(*) FROM direct_messages WHERE sender_id = @id OR receiver_id = @id) AS dm_count`,
		sql.Named("id", userID),
	).Scan(counts)
	if res.Error != nil {
		return nil, fmt.Errorf("user counts; id: %d, error: %w", userID, res.Error)
	}
	return counts, nil
}

// PuzzleShowUnion retrieves the dialogues and hints of the puzzle identified
// by puzzleID, ordered by creation time.
func (s Store) PuzzleShowUnion(ctx context.Context, puzzleID int64) ([]model.Record, error) {
	var dialogues []model.Dialogue
	if res := s.db.
		WithContext(ctx).
		Where("puzzle_id = ?", puzzleID).
		Order("created, id").
		Find(&dialogues); res.Error != nil {
		return nil, fmt.Errorf("puzzle show union dialogues; error: %w", res.Error)
	}

	var hints []model.Hint
	if res := s.db.
		WithContext(ctx).
		Where("puzzle_id = ?", puzzleID).
		Order("created, id").
		Find(&hints); res.Error != nil {
		return nil, fmt.Errorf("puzzle show union hints; error: %w", res.Error)
	}

	return mergeShowUnion(dialogues, hints), nil
}

func mergeShowUnion(dialogues []model.Dialogue, hints []model.Hint) []model.Record {
	records := make([]model.Record, 0, len(dialogues)+len(hints))
	for i := range dialogues {
		records = append(records, &dialogues[i])
	}
	for i := range hints {
		records = append(records, &hints[i])
	}

	sort.SliceStable(records, func(i, j int) bool {
		return createdAt(records[i]).Before(createdAt(records[j]))
	})
	return records
}

func createdAt(record model.Record) time.Time {
	switch r := record.(type) {
	case *model.Dialogue:
		return r.Created
	case *model.Hint:
		return r.Created
	}
	return time.Time{}
}

// HasTrueDialogue checks if the user identified by userID asked a question
// marked true on the puzzle identified by puzzleID.
func (s Store) HasTrueDialogue(ctx context.Context, userID, puzzleID int64) (bool, error) {
	var count int64
	res := s.db.
		WithContext(ctx).
		Model(&model.Dialogue{}).
		Where("user_id = ? AND puzzle_id = ? AND true_answer", userID, puzzleID).
		Count(&count)
	return count > 0, res.Error
}

// Ping checks the connection with the DB.
func (s Store) Ping(ctx context.Context) error {
	dbconn, err := s.db.DB()
	if err != nil {
		return err
	}
	return dbconn.PingContext(ctx)
}

func first(q *gorm.DB, dst interface{}, id int64) error {
	res := q.First(dst, id)
	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return serrors.ErrRecordDNE
	}
	return res.Error
}

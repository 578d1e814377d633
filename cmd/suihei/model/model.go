// Package model defines the persisted record kinds served by suihei.
package model

import (
	"time"

	imodel "github.com/tjper/suihei/internal/model"
	"github.com/tjper/suihei/internal/session"
)

// Record is implemented by every persisted record kind.
type Record interface {
	RecordKind() string
	RecordID() int64
}

const (
	KindUser             = "User"
	KindAward            = "Award"
	KindUserAward        = "UserAward"
	KindAwardApplication = "AwardApplication"
	KindPuzzle           = "Puzzle"
	KindDialogue         = "Dialogue"
	KindHint             = "Hint"
	KindChatRoom         = "ChatRoom"
	KindChatMessage      = "ChatMessage"
	KindFavoriteChatRoom = "FavoriteChatRoom"
	KindDirectMessage    = "DirectMessage"
	KindComment          = "Comment"
	KindStar             = "Star"
	KindBookmark         = "Bookmark"
	KindSchedule         = "Schedule"
	KindEvent            = "Event"
)

// New allocates an empty record of kind. The second return value is false
// when kind is not a known record kind.
func New(kind string) (Record, bool) {
	switch kind {
	case KindUser:
		return new(User), true
	case KindAward:
		return new(Award), true
	case KindUserAward:
		return new(UserAward), true
	case KindAwardApplication:
		return new(AwardApplication), true
	case KindPuzzle:
		return new(Puzzle), true
	case KindDialogue:
		return new(Dialogue), true
	case KindHint:
		return new(Hint), true
	case KindChatRoom:
		return new(ChatRoom), true
	case KindChatMessage:
		return new(ChatMessage), true
	case KindFavoriteChatRoom:
		return new(FavoriteChatRoom), true
	case KindDirectMessage:
		return new(DirectMessage), true
	case KindComment:
		return new(Comment), true
	case KindStar:
		return new(Star), true
	case KindBookmark:
		return new(Bookmark), true
	case KindSchedule:
		return new(Schedule), true
	case KindEvent:
		return new(Event), true
	}
	return nil, false
}

type User struct {
	imodel.Model
	Username       string     `gorm:"uniqueIndex;not null"`
	Nickname       string     `gorm:"not null"`
	Password       []byte     `json:"-" gorm:"not null"`
	Salt           string     `json:"-" gorm:"not null"`
	Profile        string     `gorm:"not null"`
	Credit         int32      `gorm:"not null"`
	HideBookmark   bool       `gorm:"not null"`
	IsStaff        bool       `gorm:"not null"`
	DateJoined     time.Time  `gorm:"not null"`
	LastLogin      *time.Time
	CurrentAwardID *int64
	LastReadDmID   *int64
}

func (User) RecordKind() string { return KindUser }

func (u User) ToSessionUser() session.User {
	return session.User{
		ID:       u.ID,
		Username: u.Username,
		Nickname: u.Nickname,
		IsStaff:  u.IsStaff,
	}
}

// UserPermission grants the named permission to a user.
type UserPermission struct {
	imodel.Model
	UserID   int64  `gorm:"not null"`
	Codename string `gorm:"not null"`
}

const (
	PermReviewAwardApplication = "can_review_award_application"
	PermSendGlobalNotification = "can_send_global_notification"
)

type Award struct {
	imodel.Model
	Name        string `gorm:"not null"`
	Description string `gorm:"not null"`
	GroupName   string `gorm:"not null"`
}

func (Award) RecordKind() string { return KindAward }

type UserAward struct {
	imodel.Model
	UserID  int64     `gorm:"not null"`
	AwardID int64     `gorm:"not null"`
	Created time.Time `gorm:"not null"`
}

func (UserAward) RecordKind() string { return KindUserAward }

// AwardApplication statuses.
const (
	ApplicationPending  int32 = 0
	ApplicationApproved int32 = 1
	ApplicationRejected int32 = 2
)

type AwardApplication struct {
	imodel.Model
	ApplierID  int64     `gorm:"not null"`
	AwardID    int64     `gorm:"not null"`
	Status     int32     `gorm:"not null"`
	Comment    string    `gorm:"not null"`
	ReviewerID *int64
	Reason     string    `gorm:"not null"`
	Created    time.Time `gorm:"not null"`
	Reviewed   *time.Time
}

func (AwardApplication) RecordKind() string { return KindAwardApplication }

// Puzzle statuses.
const (
	PuzzleUnsolved  int32 = 0
	PuzzleSolved    int32 = 1
	PuzzleHidden    int32 = 2
	PuzzleForbidden int32 = 3
	PuzzleDazed     int32 = 4
)

// YamiLongTerm marks a puzzle whose questions are answered over a long
// period without the solution being revealed.
const YamiLongTerm int32 = 2

type Puzzle struct {
	imodel.Model
	UserID      int64     `gorm:"not null"`
	Title       string    `gorm:"not null"`
	Yami        int32     `gorm:"not null"`
	Genre       int32     `gorm:"not null"`
	Content     string    `gorm:"not null"`
	Solution    string    `gorm:"not null"`
	Memo        string    `gorm:"not null"`
	Status      int32     `gorm:"not null"`
	ContentSafe bool      `gorm:"not null"`
	Anonymous   bool      `gorm:"not null"`
	Grotesque   bool      `gorm:"not null"`
	DazedOn     time.Time `gorm:"type:date;not null"`
	Created     time.Time `gorm:"not null"`
	Modified    time.Time `gorm:"not null"`
}

func (Puzzle) RecordKind() string { return KindPuzzle }

type Dialogue struct {
	imodel.Model
	UserID            int64     `gorm:"not null"`
	PuzzleID          int64     `gorm:"not null"`
	Question          string    `gorm:"not null"`
	Answer            string    `gorm:"not null"`
	Good              bool      `gorm:"not null"`
	True              bool      `gorm:"column:true_answer;not null"`
	Created           time.Time `gorm:"not null"`
	AnsweredTime      *time.Time
	QuestionEditTimes int32 `gorm:"not null"`
	AnswerEditTimes   int32 `gorm:"not null"`
}

func (Dialogue) RecordKind() string { return KindDialogue }

type Hint struct {
	imodel.Model
	PuzzleID int64     `gorm:"not null"`
	Content  string    `gorm:"not null"`
	Created  time.Time `gorm:"not null"`
}

func (Hint) RecordKind() string { return KindHint }

type ChatRoom struct {
	imodel.Model
	UserID      int64     `gorm:"not null"`
	Name        string    `gorm:"uniqueIndex;not null"`
	Description string    `gorm:"not null"`
	Private     bool      `gorm:"not null"`
	Created     time.Time `gorm:"not null"`
}

func (ChatRoom) RecordKind() string { return KindChatRoom }

type ChatMessage struct {
	imodel.Model
	ChatRoomID int64     `gorm:"not null"`
	ChatRoom   *ChatRoom `json:"-"`
	UserID     int64     `gorm:"not null"`
	Content    string    `gorm:"not null"`
	Created    time.Time `gorm:"not null"`
	EditTimes  int32     `gorm:"not null"`
}

func (ChatMessage) RecordKind() string { return KindChatMessage }

type FavoriteChatRoom struct {
	imodel.Model
	UserID     int64 `gorm:"not null"`
	ChatRoomID int64 `gorm:"not null"`
}

func (FavoriteChatRoom) RecordKind() string { return KindFavoriteChatRoom }

type DirectMessage struct {
	imodel.Model
	SenderID   int64     `gorm:"not null"`
	ReceiverID int64     `gorm:"not null"`
	Content    string    `gorm:"not null"`
	Created    time.Time `gorm:"not null"`
	EditTimes  int32     `gorm:"not null"`
}

func (DirectMessage) RecordKind() string { return KindDirectMessage }

type Comment struct {
	imodel.Model
	UserID   int64  `gorm:"not null"`
	PuzzleID int64  `gorm:"not null"`
	Content  string `gorm:"not null"`
	Spoiler  bool   `gorm:"not null"`
}

func (Comment) RecordKind() string { return KindComment }

type Star struct {
	imodel.Model
	UserID   int64 `gorm:"not null"`
	PuzzleID int64 `gorm:"not null"`
	Value    int32 `gorm:"not null"`
}

func (Star) RecordKind() string { return KindStar }

type Bookmark struct {
	imodel.Model
	UserID   int64   `gorm:"not null"`
	PuzzleID int64   `gorm:"not null"`
	Value    float64 `gorm:"not null"`
}

func (Bookmark) RecordKind() string { return KindBookmark }

type Schedule struct {
	imodel.Model
	UserID    int64     `gorm:"not null"`
	Content   string    `gorm:"not null"`
	Created   time.Time `gorm:"not null"`
	Scheduled time.Time `gorm:"not null"`
}

func (Schedule) RecordKind() string { return KindSchedule }

type Event struct {
	imodel.Model
	UserID    int64     `gorm:"not null"`
	Title     string    `gorm:"not null"`
	Banner    string    `gorm:"not null"`
	Content   string    `gorm:"not null"`
	StartTime time.Time `gorm:"not null"`
	EndTime   time.Time `gorm:"not null"`
	PageLink  string    `gorm:"not null"`
}

func (Event) RecordKind() string { return KindEvent }

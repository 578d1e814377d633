package graph

import (
	"context"
	"time"

	"github.com/tjper/suihei/cmd/suihei/controller"
	"github.com/tjper/suihei/cmd/suihei/model"
	ihttp "github.com/tjper/suihei/internal/http"

	graphql "github.com/graph-gophers/graphql-go"
)

// --- account ---

func (r *mutationResolver) Login(ctx context.Context, args struct {
	Username string
	Password string
}) (*userResolver, error) {
	out, err := r.ctrl.Login(ctx, controller.LoginInput{
		Username: args.Username,
		Password: args.Password,
	})
	if err != nil {
		return nil, r.fail(ctx, err, "login")
	}
	r.setSession(ctx, out)
	return newUserResolver(r.Resolver, *out.User), nil
}

func (r *mutationResolver) Logout(ctx context.Context) (bool, error) {
	if err := r.ctrl.Logout(ctx); err != nil {
		return false, r.fail(ctx, err, "logout")
	}
	if access, ok := ihttp.AccessFromContext(ctx); ok {
		access.ClearSessionID(r.cookies)
	}
	return true, nil
}

func (r *mutationResolver) Register(ctx context.Context, args struct {
	Username string
	Nickname string
	Password string
}) (*userResolver, error) {
	out, err := r.ctrl.Register(ctx, controller.RegisterInput{
		Username: args.Username,
		Nickname: args.Nickname,
		Password: args.Password,
	})
	if err != nil {
		return nil, r.fail(ctx, err, "register")
	}
	r.setSession(ctx, out)
	return newUserResolver(r.Resolver, *out.User), nil
}

// setSession writes the session cookie of a freshly logged-in user. Requests
// served over a websocket carry no Access and are left untouched.
func (r *mutationResolver) setSession(ctx context.Context, out *controller.LoginOutput) {
	access, ok := ihttp.AccessFromContext(ctx)
	if !ok {
		return
	}
	access.SetSessionID(out.Session.ID, r.cookies)
}

func (r *mutationResolver) UpdateUser(ctx context.Context, args struct {
	Profile      *string
	HideBookmark *bool
}) (*userResolver, error) {
	user, err := r.ctrl.UpdateUser(ctx, controller.UpdateUserInput{
		Profile:      args.Profile,
		HideBookmark: args.HideBookmark,
	})
	if err != nil {
		return nil, r.fail(ctx, err, "update user")
	}
	return newUserResolver(r.Resolver, *user), nil
}

func (r *mutationResolver) UpdateCurrentAward(ctx context.Context, args struct {
	UserAward *graphql.ID
}) (*userResolver, error) {
	var userAwardID *int64
	if args.UserAward != nil {
		id, err := decode(*args.UserAward, model.KindUserAward)
		if err != nil {
			return nil, r.fail(ctx, err, "")
		}
		userAwardID = &id
	}

	user, err := r.ctrl.UpdateCurrentAward(ctx, userAwardID)
	if err != nil {
		return nil, r.fail(ctx, err, "update current award")
	}
	return newUserResolver(r.Resolver, *user), nil
}

func (r *mutationResolver) UpdateLastReadDm(ctx context.Context, args struct {
	Directmessage graphql.ID
}) (*userResolver, error) {
	id, err := decode(args.Directmessage, model.KindDirectMessage)
	if err != nil {
		return nil, r.fail(ctx, err, "")
	}

	user, err := r.ctrl.UpdateLastReadDm(ctx, id)
	if err != nil {
		return nil, r.fail(ctx, err, "update last read direct message")
	}
	return newUserResolver(r.Resolver, *user), nil
}

// --- puzzles ---

type createPuzzleInput struct {
	Title     string
	Genre     int32
	Yami      int32
	Content   string
	Solution  string
	Anonymous bool
	Grotesque bool
	DazedOn   graphql.Time
}

func (r *mutationResolver) CreatePuzzle(ctx context.Context, args struct {
	Input createPuzzleInput
}) (*puzzleResolver, error) {
	puzzle, err := r.ctrl.CreatePuzzle(ctx, controller.CreatePuzzleInput{
		Title:     args.Input.Title,
		Genre:     args.Input.Genre,
		Yami:      args.Input.Yami,
		Content:   args.Input.Content,
		Solution:  args.Input.Solution,
		Anonymous: args.Input.Anonymous,
		Grotesque: args.Input.Grotesque,
		DazedOn:   args.Input.DazedOn.Time,
	})
	if err != nil {
		return nil, r.fail(ctx, err, "create puzzle")
	}
	return newPuzzleResolver(r.Resolver, *puzzle), nil
}

type updatePuzzleInput struct {
	ID        graphql.ID
	Yami      *int32
	Solution  *string
	Memo      *string
	Status    *int32
	Grotesque *bool
	DazedOn   *graphql.Time
}

func (r *mutationResolver) UpdatePuzzle(ctx context.Context, args struct {
	Input updatePuzzleInput
}) (*puzzleResolver, error) {
	id, err := decode(args.Input.ID, model.KindPuzzle)
	if err != nil {
		return nil, r.fail(ctx, err, "")
	}

	var dazedOn *time.Time
	if args.Input.DazedOn != nil {
		dazedOn = &args.Input.DazedOn.Time
	}

	puzzle, err := r.ctrl.UpdatePuzzle(ctx, controller.UpdatePuzzleInput{
		ID:        id,
		Yami:      args.Input.Yami,
		Solution:  args.Input.Solution,
		Memo:      args.Input.Memo,
		Status:    args.Input.Status,
		Grotesque: args.Input.Grotesque,
		DazedOn:   dazedOn,
	})
	if err != nil {
		return nil, r.fail(ctx, err, "update puzzle")
	}
	return newPuzzleResolver(r.Resolver, *puzzle), nil
}

func (r *mutationResolver) DeletePuzzle(ctx context.Context, args idArgs) (bool, error) {
	id, err := decode(args.ID, model.KindPuzzle)
	if err != nil {
		return false, r.fail(ctx, err, "")
	}
	if err := r.ctrl.DeletePuzzle(ctx, id); err != nil {
		return false, r.fail(ctx, err, "delete puzzle")
	}
	return true, nil
}

// --- dialogues and hints ---

func (r *mutationResolver) CreateQuestion(ctx context.Context, args struct {
	Puzzle  graphql.ID
	Content string
}) (*dialogueResolver, error) {
	puzzleID, err := decode(args.Puzzle, model.KindPuzzle)
	if err != nil {
		return nil, r.fail(ctx, err, "")
	}

	dialogue, err := r.ctrl.CreateQuestion(ctx, controller.CreateQuestionInput{
		PuzzleID: puzzleID,
		Content:  args.Content,
	})
	if err != nil {
		return nil, r.fail(ctx, err, "create question")
	}
	return &dialogueResolver{r: r.Resolver, m: *dialogue}, nil
}

type updateAnswerInput struct {
	Dialogue graphql.ID
	Content  string
	Good     bool
	True     bool
}

func (r *mutationResolver) UpdateAnswer(ctx context.Context, args struct {
	Input updateAnswerInput
}) (*dialogueResolver, error) {
	dialogueID, err := decode(args.Input.Dialogue, model.KindDialogue)
	if err != nil {
		return nil, r.fail(ctx, err, "")
	}

	dialogue, err := r.ctrl.UpdateAnswer(ctx, controller.UpdateAnswerInput{
		DialogueID: dialogueID,
		Content:    args.Input.Content,
		Good:       args.Input.Good,
		True:       args.Input.True,
	})
	if err != nil {
		return nil, r.fail(ctx, err, "update answer")
	}
	return &dialogueResolver{r: r.Resolver, m: *dialogue}, nil
}

func (r *mutationResolver) UpdateQuestion(ctx context.Context, args struct {
	Dialogue graphql.ID
	Question string
}) (*dialogueResolver, error) {
	dialogueID, err := decode(args.Dialogue, model.KindDialogue)
	if err != nil {
		return nil, r.fail(ctx, err, "")
	}

	dialogue, err := r.ctrl.UpdateQuestion(ctx, controller.UpdateQuestionInput{
		DialogueID: dialogueID,
		Question:   args.Question,
	})
	if err != nil {
		return nil, r.fail(ctx, err, "update question")
	}
	return &dialogueResolver{r: r.Resolver, m: *dialogue}, nil
}

func (r *mutationResolver) CreateHint(ctx context.Context, args struct {
	Puzzle  graphql.ID
	Content string
}) (*hintResolver, error) {
	puzzleID, err := decode(args.Puzzle, model.KindPuzzle)
	if err != nil {
		return nil, r.fail(ctx, err, "")
	}

	hint, err := r.ctrl.CreateHint(ctx, controller.CreateHintInput{
		PuzzleID: puzzleID,
		Content:  args.Content,
	})
	if err != nil {
		return nil, r.fail(ctx, err, "create hint")
	}
	return &hintResolver{r: r.Resolver, m: *hint}, nil
}

func (r *mutationResolver) UpdateHint(ctx context.Context, args struct {
	ID      graphql.ID
	Content string
}) (*hintResolver, error) {
	id, err := decode(args.ID, model.KindHint)
	if err != nil {
		return nil, r.fail(ctx, err, "")
	}

	hint, err := r.ctrl.UpdateHint(ctx, controller.UpdateHintInput{
		ID:      id,
		Content: args.Content,
	})
	if err != nil {
		return nil, r.fail(ctx, err, "update hint")
	}
	return &hintResolver{r: r.Resolver, m: *hint}, nil
}

// --- chat ---

func (r *mutationResolver) CreateChatmessage(ctx context.Context, args struct {
	ChatroomName string
	Content      string
}) (*chatMessageResolver, error) {
	message, err := r.ctrl.CreateChatMessage(ctx, controller.CreateChatMessageInput{
		ChatRoomName: args.ChatroomName,
		Content:      args.Content,
	})
	if err != nil {
		return nil, r.fail(ctx, err, "create chat message")
	}
	return &chatMessageResolver{r: r.Resolver, m: *message}, nil
}

func (r *mutationResolver) CreateDirectmessage(ctx context.Context, args struct {
	Receiver graphql.ID
	Content  string
}) (*directMessageResolver, error) {
	receiverID, err := decode(args.Receiver, model.KindUser)
	if err != nil {
		return nil, r.fail(ctx, err, "")
	}

	message, err := r.ctrl.CreateDirectMessage(ctx, controller.CreateDirectMessageInput{
		ReceiverID: receiverID,
		Content:    args.Content,
	})
	if err != nil {
		return nil, r.fail(ctx, err, "create direct message")
	}
	return &directMessageResolver{r: r.Resolver, m: *message}, nil
}

func (r *mutationResolver) CreateChatroom(ctx context.Context, args struct {
	Name        string
	Description string
}) (*chatRoomResolver, error) {
	room, err := r.ctrl.CreateChatRoom(ctx, controller.CreateChatRoomInput{
		Name:        args.Name,
		Description: args.Description,
	})
	if err != nil {
		return nil, r.fail(ctx, err, "create chat room")
	}
	return &chatRoomResolver{r: r.Resolver, m: *room}, nil
}

func (r *mutationResolver) UpdateChatroom(ctx context.Context, args struct {
	ID          graphql.ID
	Description *string
	Private     *bool
}) (*chatRoomResolver, error) {
	id, err := decode(args.ID, model.KindChatRoom)
	if err != nil {
		return nil, r.fail(ctx, err, "")
	}

	room, err := r.ctrl.UpdateChatRoom(ctx, controller.UpdateChatRoomInput{
		ID:          id,
		Description: args.Description,
		Private:     args.Private,
	})
	if err != nil {
		return nil, r.fail(ctx, err, "update chat room")
	}
	return &chatRoomResolver{r: r.Resolver, m: *room}, nil
}

type chatRoomNameArgs struct {
	ChatroomName string
}

func (r *mutationResolver) CreateFavoriteChatroom(ctx context.Context, args chatRoomNameArgs) (*favoriteChatRoomResolver, error) {
	favorite, err := r.ctrl.CreateFavoriteChatRoom(ctx, args.ChatroomName)
	if err != nil {
		return nil, r.fail(ctx, err, "create favorite chat room")
	}
	return &favoriteChatRoomResolver{r: r.Resolver, m: *favorite}, nil
}

func (r *mutationResolver) DeleteFavoriteChatroom(ctx context.Context, args chatRoomNameArgs) (bool, error) {
	if err := r.ctrl.DeleteFavoriteChatRoom(ctx, args.ChatroomName); err != nil {
		return false, r.fail(ctx, err, "delete favorite chat room")
	}
	return true, nil
}

// --- awards ---

func (r *mutationResolver) CreateAwardApplication(ctx context.Context, args struct {
	Award   graphql.ID
	Comment string
}) (*awardApplicationResolver, error) {
	awardID, err := decode(args.Award, model.KindAward)
	if err != nil {
		return nil, r.fail(ctx, err, "")
	}

	application, err := r.ctrl.CreateAwardApplication(ctx, controller.CreateAwardApplicationInput{
		AwardID: awardID,
		Comment: args.Comment,
	})
	if err != nil {
		return nil, r.fail(ctx, err, "create award application")
	}
	return &awardApplicationResolver{r: r.Resolver, m: *application}, nil
}

func (r *mutationResolver) UpdateAwardApplication(ctx context.Context, args struct {
	ID     graphql.ID
	Status *int32
	Reason *string
}) (*awardApplicationResolver, error) {
	id, err := decode(args.ID, model.KindAwardApplication)
	if err != nil {
		return nil, r.fail(ctx, err, "")
	}

	input := controller.UpdateAwardApplicationInput{ID: id, Status: args.Status}
	if args.Reason != nil {
		input.Reason = *args.Reason
	}
	application, err := r.ctrl.UpdateAwardApplication(ctx, input)
	if err != nil {
		return nil, r.fail(ctx, err, "update award application")
	}
	return &awardApplicationResolver{r: r.Resolver, m: *application}, nil
}

// --- ratings ---

func (r *mutationResolver) UpdateStar(ctx context.Context, args struct {
	Puzzle graphql.ID
	Value  int32
}) (*starResolver, error) {
	puzzleID, err := decode(args.Puzzle, model.KindPuzzle)
	if err != nil {
		return nil, r.fail(ctx, err, "")
	}

	star, err := r.ctrl.UpdateStar(ctx, controller.UpdateStarInput{
		PuzzleID: puzzleID,
		Value:    args.Value,
	})
	if err != nil {
		return nil, r.fail(ctx, err, "update star")
	}
	return &starResolver{r: r.Resolver, m: *star}, nil
}

func (r *mutationResolver) UpdateComment(ctx context.Context, args struct {
	Puzzle  graphql.ID
	Content string
	Spoiler bool
}) (*commentResolver, error) {
	puzzleID, err := decode(args.Puzzle, model.KindPuzzle)
	if err != nil {
		return nil, r.fail(ctx, err, "")
	}

	comment, err := r.ctrl.UpdateComment(ctx, controller.UpdateCommentInput{
		PuzzleID: puzzleID,
		Content:  args.Content,
		Spoiler:  args.Spoiler,
	})
	if err != nil {
		return nil, r.fail(ctx, err, "update comment")
	}
	return &commentResolver{r: r.Resolver, m: *comment}, nil
}

func (r *mutationResolver) CreateBookmark(ctx context.Context, args struct {
	Puzzle graphql.ID
	Value  float64
}) (*bookmarkResolver, error) {
	puzzleID, err := decode(args.Puzzle, model.KindPuzzle)
	if err != nil {
		return nil, r.fail(ctx, err, "")
	}

	bookmark, err := r.ctrl.CreateBookmark(ctx, controller.CreateBookmarkInput{
		PuzzleID: puzzleID,
		Value:    args.Value,
	})
	if err != nil {
		return nil, r.fail(ctx, err, "create bookmark")
	}
	return &bookmarkResolver{r: r.Resolver, m: *bookmark}, nil
}

func (r *mutationResolver) UpdateBookmark(ctx context.Context, args struct {
	ID    graphql.ID
	Value float64
}) (*bookmarkResolver, error) {
	id, err := decode(args.ID, model.KindBookmark)
	if err != nil {
		return nil, r.fail(ctx, err, "")
	}

	bookmark, err := r.ctrl.UpdateBookmark(ctx, controller.UpdateBookmarkInput{
		ID:    id,
		Value: args.Value,
	})
	if err != nil {
		return nil, r.fail(ctx, err, "update bookmark")
	}
	return &bookmarkResolver{r: r.Resolver, m: *bookmark}, nil
}

func (r *mutationResolver) DeleteBookmark(ctx context.Context, args idArgs) (bool, error) {
	id, err := decode(args.ID, model.KindBookmark)
	if err != nil {
		return false, r.fail(ctx, err, "")
	}
	if err := r.ctrl.DeleteBookmark(ctx, id); err != nil {
		return false, r.fail(ctx, err, "delete bookmark")
	}
	return true, nil
}

// --- schedules ---

func (r *mutationResolver) CreateSchedule(ctx context.Context, args struct {
	Content   string
	Scheduled graphql.Time
}) (*scheduleResolver, error) {
	schedule, err := r.ctrl.CreateSchedule(ctx, controller.CreateScheduleInput{
		Scheduled: args.Scheduled.Time,
		Content:   args.Content,
	})
	if err != nil {
		return nil, r.fail(ctx, err, "create schedule")
	}
	return &scheduleResolver{r: r.Resolver, m: *schedule}, nil
}

func (r *mutationResolver) DeleteSchedule(ctx context.Context, args idArgs) (bool, error) {
	id, err := decode(args.ID, model.KindSchedule)
	if err != nil {
		return false, r.fail(ctx, err, "")
	}
	if err := r.ctrl.DeleteSchedule(ctx, id); err != nil {
		return false, r.fail(ctx, err, "delete schedule")
	}
	return true, nil
}

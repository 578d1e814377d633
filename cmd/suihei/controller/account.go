package controller

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/tjper/suihei/cmd/suihei/db"
	serrors "github.com/tjper/suihei/cmd/suihei/errors"
	"github.com/tjper/suihei/cmd/suihei/guard"
	"github.com/tjper/suihei/cmd/suihei/model"
	"github.com/tjper/suihei/internal/rand"
	"github.com/tjper/suihei/internal/session"

	"golang.org/x/crypto/argon2"
)

const (
	MsgLoginIncorrect = "Login incorrect!"

	msgUsernameCharset   = "Characters other than letters,digits and @/./+/-/_ are not allowed in username"
	msgUsernameShort     = "Your username is too short (less than 4 characters)"
	msgUsernameLong      = "Your username is too long (more than 150 characters)"
	msgUsernameTaken     = "Username %s is already taken!"
	msgNicknameBlank     = "Nickname cannot be blank!"
	msgNicknameLong      = "Your nickname is too long (more than 64 characters)"
	msgPasswordMix       = "Password should have both letters and digits"
	msgPasswordShort     = "Your password is too short (less than 8 characters)"
	msgPasswordLong      = "Your password is too long (more than 64 characters)"
	msgPasswordCharset   = "Password should contain only letters and digits"
	msgNotAwardOwner     = "You are not the owner of this award"
	msgNotMessageReceive = "You are not the receiver of this message"
)

// LoginInput is the input for the Controller.Login method.
type LoginInput struct {
	Username string
	Password string
}

// LoginOutput is the output for the Controller.Login and Controller.Register
// methods.
type LoginOutput struct {
	User    *model.User
	Session *session.Session
}

// Login ensures the passed credentials are valid. On success, the logged-in
// user and their new session are returned to the caller.
func (ctrl Controller) Login(ctx context.Context, input LoginInput) (*LoginOutput, error) {
	user, err := ctrl.store.UserByUsername(ctx, input.Username)
	if errors.Is(err, serrors.ErrRecordDNE) {
		// Unknown usernames cost the same hash as a wrong password.
		_ = hash([]byte(input.Password), decoySalt)
		return nil, serrors.ValidationError(MsgLoginIncorrect)
	}
	if err != nil {
		return nil, err
	}

	if !bytes.Equal(
		user.Password,
		hash([]byte(input.Password), []byte(user.Salt)),
	) {
		return nil, serrors.ValidationError(MsgLoginIncorrect)
	}

	return ctrl.login(ctx, ctrl.store, user)
}

// Logout deletes the session of ctx. Logging out anonymously is a no-op.
func (ctrl Controller) Logout(ctx context.Context) error {
	sess, ok := session.FromContext(ctx)
	if !ok {
		return nil
	}
	if err := ctrl.sessionManager.DeleteSession(ctx, *sess); err != nil {
		return fmt.Errorf("delete session; error: %w", err)
	}
	return nil
}

// RegisterInput is the input for the Controller.Register method.
type RegisterInput struct {
	Username string
	Nickname string
	Password string
}

// Register creates a new model.User and logs them in.
func (ctrl Controller) Register(ctx context.Context, input RegisterInput) (*LoginOutput, error) {
	nickname := strings.TrimSpace(input.Nickname)
	if err := guard.Run(
		ctx,
		ctrl.usernameCheck(input.Username),
		ctrl.nicknameCheck(nickname),
		ctrl.passwordCheck(input.Password),
	); err != nil {
		return nil, err
	}

	salt, err := rand.GenerateString(32)
	if err != nil {
		return nil, err
	}

	var out *LoginOutput
	err = ctrl.store.Tx(ctx, func(store db.IStore) error {
		_, err := store.UserByUsername(ctx, input.Username)
		if err == nil {
			return serrors.ValidationError(fmt.Sprintf(msgUsernameTaken, input.Username))
		}
		if !errors.Is(err, serrors.ErrRecordDNE) {
			return err
		}

		user := &model.User{
			Username:   input.Username,
			Nickname:   nickname,
			Password:   hash([]byte(input.Password), []byte(salt)),
			Salt:       salt,
			DateJoined: ctrl.clock.Now(),
		}
		if err := store.Create(ctx, user); err != nil {
			return err
		}

		out, err = ctrl.login(ctx, store, user)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateUserInput is the input for the Controller.UpdateUser method.
type UpdateUserInput struct {
	Profile      *string
	HideBookmark *bool
}

// UpdateUser updates the profile settings of the caller.
func (ctrl Controller) UpdateUser(ctx context.Context, input UpdateUserInput) (*model.User, error) {
	user := new(model.User)
	err := ctrl.store.Tx(ctx, func(store db.IStore) error {
		if err := guard.Run(ctx, guard.Authenticated()); err != nil {
			return err
		}
		if err := get(ctx, store, user, caller(ctx).ID); err != nil {
			return err
		}

		if input.Profile != nil && *input.Profile != "" {
			user.Profile = *input.Profile
		}
		if input.HideBookmark != nil {
			user.HideBookmark = *input.HideBookmark
		}
		return store.Save(ctx, user)
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// UpdateCurrentAward sets the award displayed alongside the caller's name. A
// nil userAwardID clears the current award.
func (ctrl Controller) UpdateCurrentAward(ctx context.Context, userAwardID *int64) (*model.User, error) {
	user := new(model.User)
	err := ctrl.store.Tx(ctx, func(store db.IStore) error {
		if err := guard.Run(ctx, guard.Authenticated()); err != nil {
			return err
		}

		if userAwardID != nil {
			userAward := new(model.UserAward)
			if err := guard.Run(
				ctx,
				getter(store, userAward, *userAwardID),
				owner(&userAward.UserID, msgNotAwardOwner),
			); err != nil {
				return err
			}
		}

		if err := get(ctx, store, user, caller(ctx).ID); err != nil {
			return err
		}
		user.CurrentAwardID = userAwardID
		return store.Save(ctx, user)
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// UpdateLastReadDm marks the direct messages up to directMessageID as read by
// the caller.
func (ctrl Controller) UpdateLastReadDm(ctx context.Context, directMessageID int64) (*model.User, error) {
	user := new(model.User)
	err := ctrl.store.Tx(ctx, func(store db.IStore) error {
		dm := new(model.DirectMessage)
		if err := guard.Run(
			ctx,
			guard.Authenticated(),
			getter(store, dm, directMessageID),
			owner(&dm.ReceiverID, msgNotMessageReceive),
		); err != nil {
			return err
		}

		if err := get(ctx, store, user, caller(ctx).ID); err != nil {
			return err
		}
		user.LastReadDmID = &dm.ID
		return store.Save(ctx, user)
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// login stamps the user's last login and creates their session.
func (ctrl Controller) login(ctx context.Context, store db.IStore, user *model.User) (*LoginOutput, error) {
	now := ctrl.clock.Now()
	user.LastLogin = &now
	if err := store.Save(ctx, user); err != nil {
		return nil, err
	}

	sessionID, err := rand.GenerateString(32)
	if err != nil {
		return nil, err
	}

	sess := session.New(sessionID, user.ToSessionUser(), ctrl.absoluteSessionExpiration)
	if err := ctrl.sessionManager.CreateSession(ctx, *sess, ctrl.activeSessionExpiration); err != nil {
		return nil, fmt.Errorf("create session; error: %w", err)
	}

	return &LoginOutput{User: user, Session: sess}, nil
}

var (
	usernameCharsetRE = regexp.MustCompile(`^[a-zA-Z0-9@+_\-.]*$`)
	letterRE          = regexp.MustCompile(`[a-zA-Z]`)
	digitRE           = regexp.MustCompile(`\d`)
)

// usernameCheck validates username with the "username" validator, reporting
// the first rule it breaks.
func (ctrl Controller) usernameCheck(username string) guard.Check {
	return func(context.Context) error {
		if err := ctrl.validate.Var(username, "username"); err == nil {
			return nil
		}
		switch n := utf8.RuneCountInString(username); {
		case !usernameCharsetRE.MatchString(username):
			return serrors.ValidationError(msgUsernameCharset)
		case n < 4:
			return serrors.ValidationError(msgUsernameShort)
		default:
			return serrors.ValidationError(msgUsernameLong)
		}
	}
}

// nicknameCheck validates a trimmed nickname with the "notblank" and
// "nickname" validators.
func (ctrl Controller) nicknameCheck(nickname string) guard.Check {
	return func(context.Context) error {
		if err := ctrl.validate.Var(nickname, "notblank"); err != nil {
			return serrors.ValidationError(msgNicknameBlank)
		}
		if err := ctrl.validate.Var(nickname, "nickname"); err != nil {
			return serrors.ValidationError(msgNicknameLong)
		}
		return nil
	}
}

// passwordCheck validates password with the "password" validator, reporting
// the first rule it breaks.
func (ctrl Controller) passwordCheck(password string) guard.Check {
	return func(context.Context) error {
		if err := ctrl.validate.Var(password, "password"); err == nil {
			return nil
		}
		switch n := utf8.RuneCountInString(password); {
		case !letterRE.MatchString(password) || !digitRE.MatchString(password):
			return serrors.ValidationError(msgPasswordMix)
		case n < 8:
			return serrors.ValidationError(msgPasswordShort)
		case n > 64:
			return serrors.ValidationError(msgPasswordLong)
		default:
			return serrors.ValidationError(msgPasswordCharset)
		}
	}
}

// hash hashes the password with the salt using the argon2 key derivation
// function.
var decoySalt = []byte("suihei-login-decoy-salt")

func hash(password, salt []byte) []byte {
	return argon2.IDKey(password, salt, 2, 64*1024, 1, 32)
}

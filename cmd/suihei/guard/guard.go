// Package guard evaluates the ordered checks preceding every state-changing
// operation.
package guard

import (
	"context"
	"fmt"
	"strings"

	serrors "github.com/tjper/suihei/cmd/suihei/errors"
	"github.com/tjper/suihei/internal/session"
)

// MsgLogin is reported when an operation requiring identity is attempted
// anonymously.
const MsgLogin = "Please login!"

// Check is a single guard check. A Check returns nil when it passes.
type Check func(ctx context.Context) error

// Run evaluates checks in order. The error of the first failing check is
// returned, and no further checks are evaluated.
func Run(ctx context.Context, checks ...Check) error {
	for _, check := range checks {
		if err := check(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Authenticated ensures the caller is logged in.
func Authenticated() Check {
	return func(ctx context.Context) error {
		if _, ok := session.UserFromContext(ctx); !ok {
			return serrors.ValidationError(MsgLogin)
		}
		return nil
	}
}

// NotBlank ensures value contains a non-whitespace character.
func NotBlank(value, msg string) Check {
	return func(context.Context) error {
		if strings.TrimSpace(value) == "" {
			return serrors.ValidationError(msg)
		}
		return nil
	}
}

// InRange ensures min <= value <= max.
func InRange(name string, value, min, max int32) Check {
	return func(context.Context) error {
		if value < min || value > max {
			return serrors.ValidationError(
				fmt.Sprintf("%s must be between %d and %d", name, min, max),
			)
		}
		return nil
	}
}

// Owner ensures the caller is the user identified by ownerID.
func Owner(ownerID int64, msg string) Check {
	return func(ctx context.Context) error {
		user, ok := session.UserFromContext(ctx)
		if !ok {
			return serrors.ValidationError(MsgLogin)
		}
		if user.ID != ownerID {
			return serrors.PermissionError(msg)
		}
		return nil
	}
}

// PermissionChecker checks if a user holds a named permission.
type PermissionChecker interface {
	HasPermission(ctx context.Context, userID int64, codename string) (bool, error)
}

// Permission ensures the caller holds the permission named codename.
func Permission(checker PermissionChecker, codename, msg string) Check {
	return func(ctx context.Context) error {
		user, ok := session.UserFromContext(ctx)
		if !ok {
			return serrors.ValidationError(MsgLogin)
		}
		ok, err := checker.HasPermission(ctx, user.ID, codename)
		if err != nil {
			return fmt.Errorf("check permission %s; error: %w", codename, err)
		}
		if !ok {
			return serrors.PermissionError(msg)
		}
		return nil
	}
}

// Staff ensures the caller is a staff member.
func Staff(msg string) Check {
	return func(ctx context.Context) error {
		user, ok := session.UserFromContext(ctx)
		if !ok {
			return serrors.ValidationError(MsgLogin)
		}
		if !user.IsStaff {
			return serrors.PermissionError(msg)
		}
		return nil
	}
}

// Max ensures the count returned by count is below max. This is typically
// used to cap the number of pending items a user may hold at once.
func Max(max int64, count func(context.Context) (int64, error), msg string) Check {
	return func(ctx context.Context) error {
		n, err := count(ctx)
		if err != nil {
			return err
		}
		if n >= max {
			return serrors.ValidationError(msg)
		}
		return nil
	}
}

// Not ensures the condition returned by cond does not hold.
func Not(cond func(context.Context) (bool, error), msg string) Check {
	return func(ctx context.Context) error {
		ok, err := cond(ctx)
		if err != nil {
			return err
		}
		if ok {
			return serrors.ValidationError(msg)
		}
		return nil
	}
}

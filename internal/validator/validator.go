// Package validator provides a *validator.Validate configured with the
// account field validators.
package validator

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

// New creates a new validator instance.
func New() *validator.Validate {
	valid := validator.New()
	if err := RegisterPasswordValidation(valid); err != nil {
		panic(fmt.Sprintf("validator initialization; error: %s", err))
	}
	if err := RegisterUsernameValidation(valid); err != nil {
		panic(fmt.Sprintf("validator initialization; error: %s", err))
	}
	if err := RegisterNicknameValidation(valid); err != nil {
		panic(fmt.Sprintf("validator initialization; error: %s", err))
	}
	if err := RegisterNotBlankValidation(valid); err != nil {
		panic(fmt.Sprintf("validator initialization; error: %s", err))
	}

	return valid
}

// RegisterPasswordValidation registers the "password" field validator with the
// validator instance.
func RegisterPasswordValidation(validator *validator.Validate) error {
	return validator.RegisterValidation("password", password)
}

var (
	passwordRE       = regexp.MustCompile(`^[a-zA-Z\d]{8,64}$`)
	atLeastOneLetter = regexp.MustCompile(`[a-zA-Z]+`)
	atLeastOneNumber = regexp.MustCompile(`[\d]+`)
)

// password matches against strings that satisfy the following requirements:
// - between 8 and 64 characters in length
// - only letters and numbers
// - at least one letter
// - at least one number
func password(fl validator.FieldLevel) bool {
	val, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}
	switch {
	case !passwordRE.MatchString(val):
		return false
	case !atLeastOneLetter.MatchString(val):
		return false
	case !atLeastOneNumber.MatchString(val):
		return false
	}
	return true
}

// RegisterUsernameValidation registers the "username" field validator with
// the validator instance.
func RegisterUsernameValidation(validator *validator.Validate) error {
	return validator.RegisterValidation("username", username)
}

var usernameRE = regexp.MustCompile(`^[a-zA-Z0-9@+_\-.]{4,150}$`)

// username matches 4 to 150 letters, digits or any of @+_-.
func username(fl validator.FieldLevel) bool {
	val, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}
	return usernameRE.MatchString(val)
}

// RegisterNicknameValidation registers the "nickname" field validator with
// the validator instance.
func RegisterNicknameValidation(validator *validator.Validate) error {
	return validator.RegisterValidation("nickname", nickname)
}

// nickname matches non-blank strings of at most 64 characters.
func nickname(fl validator.FieldLevel) bool {
	val, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}
	return strings.TrimSpace(val) != "" && utf8.RuneCountInString(val) <= 64
}

// RegisterNotBlankValidation registers the "notblank" field validator with
// the validator instance.
func RegisterNotBlankValidation(validator *validator.Validate) error {
	return validator.RegisterValidation("notblank", notBlank)
}

func notBlank(fl validator.FieldLevel) bool {
	val, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}
	return strings.TrimSpace(val) != ""
}

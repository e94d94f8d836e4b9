package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrTokenNotFound and ErrTokenExpired are kept distinct internally so
	// logs and tests can tell them apart; handlers fold both into the same
	// generic invalid-link response so a token value's existence is never
	// disclosed.
	ErrTokenNotFound = errors.New("verification token not found")
	ErrTokenExpired  = errors.New("verification token expired")

	// ErrInvalidCredentials never discloses whether the identifier or the
	// password was wrong.
	ErrInvalidCredentials = errors.New("invalid username or password")

	// ErrNotActivated means the credentials were correct but the account has
	// not completed email verification.
	ErrNotActivated = errors.New("account not activated")

	ErrNotFound = errors.New("not found")
)

// ValidationError carries per-field messages so the caller can redisplay
// them next to the offending inputs.
type ValidationError struct {
	Fields map[string]string
}

func NewValidationError() *ValidationError {
	return &ValidationError{Fields: make(map[string]string)}
}

func (e *ValidationError) Add(field, msg string) {
	e.Fields[field] = msg
}

func (e *ValidationError) Empty() bool {
	return len(e.Fields) == 0
}

func (e *ValidationError) Error() string {
	fields := make([]string, 0, len(e.Fields))
	for f := range e.Fields {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	var b strings.Builder
	b.WriteString("validation failed:")
	for _, f := range fields {
		fmt.Fprintf(&b, " %s: %s;", f, e.Fields[f])
	}
	return strings.TrimSuffix(b.String(), ";")
}

// OrNil returns the error only when at least one field failed, so callers
// can write `return req.Validate()` without a typed-nil surprise.
func (e *ValidationError) OrNil() error {
	if e.Empty() {
		return nil
	}
	return e
}

// Package errors defines the error taxonomy shared by services and the HTTP
// layer: field-keyed validation failures, missing rows, cross-owner access,
// and authentication failures.
package errors

import (
	"database/sql"
	stderrors "errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrNotFound marks a row that does not exist or is not visible to the
	// caller. Cross-owner reads surface as ErrNotFound so existence is not
	// leaked.
	ErrNotFound = stderrors.New("not found")

	// ErrForbidden marks an attempt to attach a record to another user's
	// parent entity.
	ErrForbidden = stderrors.New("forbidden")

	// ErrInvalidCredentials is returned on login with an unknown username or
	// a wrong password. The message is identical for both cases.
	ErrInvalidCredentials = stderrors.New("invalid credentials")

	// ErrTokenInvalid marks a malformed, forged, or wrong-type token.
	ErrTokenInvalid = stderrors.New("token invalid")

	// ErrTokenExpired marks a token past its expiry.
	ErrTokenExpired = stderrors.New("token expired")
)

// Validation is a field-keyed validation failure. The zero value is unusable;
// construct with NewValidation.
type Validation struct {
	Fields map[string]string
}

// NewValidation returns an empty validation error to accumulate into.
func NewValidation() *Validation {
	return &Validation{Fields: make(map[string]string)}
}

// Validationf builds a single-field validation error.
func Validationf(field, format string, args ...interface{}) *Validation {
	v := NewValidation()
	v.Add(field, fmt.Sprintf(format, args...))
	return v
}

// Add records a failure message for a field. The first message per field
// wins.
func (v *Validation) Add(field, msg string) *Validation {
	if _, ok := v.Fields[field]; !ok {
		v.Fields[field] = msg
	}
	return v
}

// Empty reports whether no field failed.
func (v *Validation) Empty() bool {
	return len(v.Fields) == 0
}

// OrNil returns the error when any field failed, nil otherwise.
func (v *Validation) OrNil() error {
	if v.Empty() {
		return nil
	}
	return v
}

func (v *Validation) Error() string {
	if v.Empty() {
		return "validation failed"
	}
	fields := make([]string, 0, len(v.Fields))
	for f := range v.Fields {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f+": "+v.Fields[f])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// AsValidation unwraps err into a Validation when it is one.
func AsValidation(err error) (*Validation, bool) {
	var v *Validation
	if stderrors.As(err, &v) {
		return v, true
	}
	return nil, false
}

// NotFound wraps ErrNotFound with the entity kind for log context.
func NotFound(kind string) error {
	return fmt.Errorf("%s: %w", kind, ErrNotFound)
}

// IsNotFound reports whether err marks a missing row. sql.ErrNoRows from the
// postgres store counts as missing.
func IsNotFound(err error) bool {
	return stderrors.Is(err, ErrNotFound) || stderrors.Is(err, sql.ErrNoRows)
}

// IsForbidden reports whether err marks a cross-owner attach attempt.
func IsForbidden(err error) bool {
	return stderrors.Is(err, ErrForbidden)
}

// IsAuth reports whether err belongs to the authentication taxonomy.
func IsAuth(err error) bool {
	return stderrors.Is(err, ErrInvalidCredentials) ||
		stderrors.Is(err, ErrTokenInvalid) ||
		stderrors.Is(err, ErrTokenExpired)
}

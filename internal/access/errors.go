package access

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/dmitrijs2005/gophshare/internal/common"
)

// Kind is a stable classification of a failure that the presentation layer
// can switch on.
type Kind string

const (
	NotFound        Kind = "NotFound"
	Forbidden       Kind = "Forbidden"
	Conflict        Kind = "Conflict"
	Unavailable     Kind = "Unavailable"
	Invalid         Kind = "Invalid"
	Unauthenticated Kind = "Unauthenticated"
	Internal        Kind = "Internal"
)

// sentinel is the common error each Kind unwraps to.
var sentinel = map[Kind]error{
	NotFound:        common.ErrorNotFound,
	Forbidden:       common.ErrorForbidden,
	Conflict:        common.ErrorConflict,
	Unavailable:     common.ErrorUnavailable,
	Invalid:         common.ErrorValidation,
	Unauthenticated: common.ErrorUnauthorized,
	Internal:        common.ErrorInternal,
}

// Error is a failure of a workflow operation.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Msg != "" && e.Err != nil:
		return e.Msg + ": " + e.Err.Error()
	case e.Msg != "":
		return e.Msg
	case e.Err != nil:
		return e.Err.Error()
	default:
		return string(e.Kind)
	}
}

// Unwrap exposes the cause, or the common sentinel for Kind when there is
// none, so errors.Is(err, common.ErrorConflict) works for both.
func (e *Error) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return sentinel[e.Kind]
}

// Errorf builds an *Error of kind k with a formatted message.
func Errorf(k Kind, format string, args ...any) error {
	return &Error{Kind: k, Msg: fmt.Sprintf(format, args...)}
}

// Wrap classifies err and annotates it with msg. nil stays nil.
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: KindOf(err), Msg: msg, Err: err}
}

// KindOf classifies any error. A nil error has no kind.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}

	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}

	switch {
	case errors.Is(err, common.ErrorNotFound):
		return NotFound
	case errors.Is(err, common.ErrorForbidden):
		return Forbidden
	case errors.Is(err, common.ErrorConflict):
		return Conflict
	case errors.Is(err, common.ErrorValidation):
		return Invalid
	case errors.Is(err, common.ErrorUnauthorized),
		errors.Is(err, common.ErrInvalidToken),
		errors.Is(err, common.ErrTokenExpired),
		errors.Is(err, common.ErrRefreshTokenExpired):
		return Unauthenticated
	case errors.Is(err, common.ErrorUnavailable),
		errors.Is(err, context.DeadlineExceeded):
		return Unavailable
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return Unavailable
	}

	return Internal
}

// IsKind reports whether err classifies as k.
func IsKind(err error, k Kind) bool {
	return err != nil && KindOf(err) == k
}

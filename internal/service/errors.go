package service

import (
	"alcyxob/routine-progress/internal/repository"
	"errors"
)

// ErrorKind classifies recoverable failures so callers can map them to a response.
type ErrorKind string

const (
	KindNotFound    ErrorKind = "not_found"
	KindEmpty       ErrorKind = "empty"
	KindConflict    ErrorKind = "conflict"
	KindInvalid     ErrorKind = "invalid"
	KindUnavailable ErrorKind = "unavailable"
)

// Error is a typed service failure. Compare with errors.Is against the
// sentinels below; inspect the kind with KindOf.
type Error struct {
	Kind ErrorKind
	Msg  string
}

func (e *Error) Error() string {
	return e.Msg
}

// --- Error Definitions ---
var (
	ErrInvalidTraineeID   = &Error{Kind: KindInvalid, Msg: "invalid trainee id"}
	ErrInvalidFrequency   = &Error{Kind: KindInvalid, Msg: "base days per week out of range"}
	ErrInvalidDayKind     = &Error{Kind: KindInvalid, Msg: "kind must be AUTO, BASE or EXTRA"}
	ErrInvalidIntensity   = &Error{Kind: KindInvalid, Msg: "intensity must be LIGHT, NORMAL or HARD"}
	ErrInvalidWorkoutDate = &Error{Kind: KindInvalid, Msg: "workout date must be in the current week and not in the future"}
	ErrInvalidTemplate    = &Error{Kind: KindInvalid, Msg: "invalid template"}

	ErrTemplateUnavailable = &Error{Kind: KindNotFound, Msg: "template missing or inactive"}
	ErrTemplateEmpty       = &Error{Kind: KindEmpty, Msg: "template has no items"}
	ErrNoActiveRoutine     = &Error{Kind: KindNotFound, Msg: "no active routine"}

	ErrNotBaseDay        = &Error{Kind: KindConflict, Msg: "today is not a BASE day"}
	ErrConcurrentUpdate  = &Error{Kind: KindConflict, Msg: "concurrent update, please retry"}
	ErrExportUnavailable = &Error{Kind: KindUnavailable, Msg: "history export is not configured"}
)

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) (ErrorKind, bool) {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind, true
	}
	return "", false
}

// txError turns an exhausted write conflict into ErrConcurrentUpdate.
func txError(err error) error {
	if errors.Is(err, repository.ErrConflict) {
		return ErrConcurrentUpdate
	}
	return err
}

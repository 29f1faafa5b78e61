package op

import (
	"errors"
	"fmt"
)

// IllegalCode categorizes why an operation was rejected.
type IllegalCode string

const (
	// ErrCodeNotFound indicates the operation references a block identity
	// absent from the snapshot.
	ErrCodeNotFound IllegalCode = "NOT_FOUND"

	// ErrCodeNotClear indicates a block in the operation has something
	// resting on top of it.
	ErrCodeNotClear IllegalCode = "NOT_CLEAR"

	// ErrCodeSelfMove indicates a move with identical source and target.
	// Allowing it would attach a block as its own supporter and break the
	// forest shape of the supports relation, so it is rejected outright.
	ErrCodeSelfMove IllegalCode = "SELF_MOVE"

	// ErrCodeNoGroundSpace indicates no open ground stretch wide enough
	// for the block exists within the world's ground width.
	ErrCodeNoGroundSpace IllegalCode = "NO_GROUND_SPACE"
)

// IllegalError reports a rejected operation. Rejections are ordinary
// outcomes, never panics: the caller holding the snapshot decides what to
// do next, and the snapshot itself is untouched.
type IllegalError struct {
	Code   IllegalCode
	Op     Op
	Reason string
}

// Error implements the error interface.
func (e *IllegalError) Error() string {
	return fmt.Sprintf("%s: %s (%s)", e.Code, e.Reason, e.Op)
}

// IsIllegal reports whether err is an operation rejection of any code.
// Uses errors.As to handle wrapped errors.
func IsIllegal(err error) bool {
	var ie *IllegalError
	return errors.As(err, &ie)
}

// IsNotFound reports whether err is a rejection for a missing block.
func IsNotFound(err error) bool {
	var ie *IllegalError
	if errors.As(err, &ie) {
		return ie.Code == ErrCodeNotFound
	}
	return false
}

func illegalf(code IllegalCode, o Op, format string, args ...any) *IllegalError {
	return &IllegalError{Code: code, Op: o, Reason: fmt.Sprintf(format, args...)}
}

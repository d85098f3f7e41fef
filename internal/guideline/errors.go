package guideline

import (
	"errors"
	"fmt"
)

// Error is returned by every operation that can reject its input.
//
// Codes fall into two families that callers usually branch on:
//   - not found: the target guideline, context or pending version is absent
//   - conflict: the write would duplicate content or break the two-version rule
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// ContextID identifies the affected context, when known.
	ContextID int64

	// Content is the guideline content involved, when relevant.
	Content string
}

// ErrorCode categorizes guideline errors.
type ErrorCode string

const (
	// ErrCodeGuidelineNotFound indicates no entry matches the target content or id.
	ErrCodeGuidelineNotFound ErrorCode = "GUIDELINE_NOT_FOUND"

	// ErrCodeContextNotFound indicates the context does not exist.
	ErrCodeContextNotFound ErrorCode = "CONTEXT_NOT_FOUND"

	// ErrCodeNoPendingVersion indicates fewer than two versions exist.
	ErrCodeNoPendingVersion ErrorCode = "NO_PENDING_VERSION"

	// ErrCodeDuplicateGuideline indicates normalized content collides with another entry.
	ErrCodeDuplicateGuideline ErrorCode = "DUPLICATE_GUIDELINE"

	// ErrCodeIdenticalVersion indicates a save that matches the sole existing version.
	ErrCodeIdenticalVersion ErrorCode = "IDENTICAL_VERSION"

	// ErrCodePendingExists indicates a pending version must be validated or cancelled first.
	ErrCodePendingExists ErrorCode = "PENDING_EXISTS"

	// ErrCodeInvalidContent indicates content that is blank or contains the entry delimiter.
	ErrCodeInvalidContent ErrorCode = "INVALID_CONTENT"
)

// Error implements the error interface.
func (e *Error) Error() string {
	if e.ContextID != 0 {
		return fmt.Sprintf("%s: %s (context=%d)", e.Code, e.Message, e.ContextID)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsNotFound reports whether err is a guideline, context or pending-version miss.
// Uses errors.As to handle wrapped errors.
func IsNotFound(err error) bool {
	var ge *Error
	if errors.As(err, &ge) {
		switch ge.Code {
		case ErrCodeGuidelineNotFound, ErrCodeContextNotFound, ErrCodeNoPendingVersion:
			return true
		}
	}
	return false
}

// IsConflict reports whether err is a duplicate, identical-version or pending-exists rejection.
func IsConflict(err error) bool {
	var ge *Error
	if errors.As(err, &ge) {
		switch ge.Code {
		case ErrCodeDuplicateGuideline, ErrCodeIdenticalVersion, ErrCodePendingExists:
			return true
		}
	}
	return false
}

// CodeOf returns the error code carried by err, or "" if err is not an *Error.
func CodeOf(err error) ErrorCode {
	var ge *Error
	if errors.As(err, &ge) {
		return ge.Code
	}
	return ""
}

// NewNotFoundError creates an Error for a target content that matches no entry.
func NewNotFoundError(content string) *Error {
	return &Error{
		Code:    ErrCodeGuidelineNotFound,
		Message: fmt.Sprintf("no guideline matches %q", content),
		Content: content,
	}
}

// NewDuplicateError creates an Error for content that already exists.
func NewDuplicateError(content string) *Error {
	return &Error{
		Code:    ErrCodeDuplicateGuideline,
		Message: fmt.Sprintf("guideline %q already exists", content),
		Content: content,
	}
}

// NewInvalidContentError creates an Error for content that cannot be stored as one entry.
func NewInvalidContentError(content, reason string) *Error {
	return &Error{
		Code:    ErrCodeInvalidContent,
		Message: reason,
		Content: content,
	}
}

// NewContextNotFoundError creates an Error for an unknown context.
func NewContextNotFoundError(contextID int64) *Error {
	return &Error{
		Code:      ErrCodeContextNotFound,
		Message:   "guideline context not found",
		ContextID: contextID,
	}
}

// NewNoPendingError creates an Error for a context without a pending version.
func NewNoPendingError(contextID int64) *Error {
	return &Error{
		Code:      ErrCodeNoPendingVersion,
		Message:   "no pending version to compare",
		ContextID: contextID,
	}
}

// NewIdenticalVersionError creates an Error for a resubmission of the current content.
func NewIdenticalVersionError(contextID int64) *Error {
	return &Error{
		Code:      ErrCodeIdenticalVersion,
		Message:   "content is identical to the current version",
		ContextID: contextID,
	}
}

// NewPendingExistsError creates an Error for a write while a pending version awaits review.
func NewPendingExistsError(contextID int64) *Error {
	return &Error{
		Code:      ErrCodePendingExists,
		Message:   "a pending version already exists; validate or cancel it first",
		ContextID: contextID,
	}
}

// NewIDNotFoundError creates an Error for a virtual id that resolves to no entry.
func NewIDNotFoundError(contextID, id int64) *Error {
	return &Error{
		Code:      ErrCodeGuidelineNotFound,
		Message:   fmt.Sprintf("no guideline with id %d", id),
		ContextID: contextID,
	}
}

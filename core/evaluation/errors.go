package evaluation

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// errors
	ErrDepartmentNotFound = errors.New("please select a valid department")
	ErrKeyRequired        = errors.New("please enter an evaluation key")
	ErrIncomplete         = errors.New("please answer all questions before submitting")
	ErrSubmitting         = errors.New("your evaluation is already being submitted")
	ErrWrongStep          = errors.New("this action is not available at the current step")
	ErrUnknownQuestion    = errors.New("unknown question")
	ErrScaleMismatch      = errors.New("answer does not match the question type")
	ErrOutOfRange         = errors.New("answer is out of the scale's range")
	ErrBlankAnswer        = errors.New("answer cannot be blank")
	ErrNoSession          = errors.New("backend accepted the key without issuing a session")
	ErrNoQuestions        = errors.New("backend returned no questions")
)

// fallback messages shown when the backend gave no usable message
const (
	msgDepartmentsFailed = "Failed to load departments"
	msgInvalidKey        = "Invalid evaluation key"
	msgQuestionsFailed   = "Failed to load evaluation questions"
	msgSubmitFailed      = "Failed to submit evaluation"
	msgNoQuestions       = "No evaluation questions are available for this department"
)

// Kind classifies an Error by what the respondent can do about it.
type Kind int

const (
	// KindRetry: fix the input and try again; nothing was lost.
	KindRetry Kind = iota + 1
	// KindRestart: go back a step.
	KindRestart
	// KindInfo: the workflow still works in a degraded form.
	KindInfo
)

// Error is a page-scoped failure: Error() is the message shown to the respondent.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func newError(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Message: msg, Err: err}
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Err }

// Cause lets pkg/errors.Cause reach the underlying error.
func (e *Error) Cause() error { return e.Err }

// BackendError is returned by Backend implementations when the backend rejected a call.
// Message is the backend-reported text, possibly empty.
type BackendError struct {
	Status  int
	Message string
}

func (e *BackendError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend responded with status %d", e.Status)
	}
	return fmt.Sprintf("backend responded with status %d: %s", e.Status, e.Message)
}

// backendMessage returns the backend-reported message of err, or fallback.
func backendMessage(err error, fallback string) string {
	if bErr, ok := errors.Cause(err).(*BackendError); ok && bErr.Message != "" {
		return bErr.Message
	}
	return fallback
}

package commands

import (
	"context"
	"errors"

	goerrors "github.com/goliatone/go-errors"
)

// Text codes attached to command failures so hosts can branch on the outcome
// of a save/publish/export without string-matching error messages.
const (
	codeRejected = "SITE_COMMAND_REJECTED"
	codeCanceled = "SITE_COMMAND_CANCELED"
	codeTimeout  = "SITE_COMMAND_TIMEOUT"
	codeFailed   = "SITE_COMMAND_FAILED"
)

// wrapValidationError tags message-validation failures. Already-categorized
// errors pass through so a handler chain never double-wraps.
func wrapValidationError(err error) error {
	if err == nil || goerrors.IsWrapped(err) {
		return err
	}
	return goerrors.Wrap(err, goerrors.CategoryValidation, "site command rejected").
		WithTextCode(codeRejected)
}

// wrapContextError distinguishes a caller walking away from a command that
// ran out of time; both land in the command category.
func wrapContextError(err error) error {
	if err == nil || goerrors.IsWrapped(err) {
		return err
	}
	code := codeFailed
	message := "site command aborted"
	switch {
	case errors.Is(err, context.Canceled):
		code = codeCanceled
		message = "site command canceled"
	case errors.Is(err, context.DeadlineExceeded):
		code = codeTimeout
		message = "site command timed out"
	}
	return goerrors.Wrap(err, goerrors.CategoryCommand, message).WithTextCode(code)
}

// wrapExecuteError tags failures raised by the wrapped operation itself.
func wrapExecuteError(err error) error {
	if err == nil || goerrors.IsWrapped(err) {
		return err
	}
	return goerrors.Wrap(err, goerrors.CategoryCommand, "site command failed").
		WithTextCode(codeFailed)
}

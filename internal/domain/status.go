package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Status represents the publish lifecycle state persisted on a project.
type Status string

const (
	// StatusDraft indicates a project that has never been published.
	StatusDraft Status = "draft"
	// StatusPublished identifies a project whose artifact is in serving rotation.
	StatusPublished Status = "published"
	// StatusUnpublished marks a previously published project taken out of
	// rotation. Its subdomain stays reserved so republishing reuses the
	// same address.
	StatusUnpublished Status = "unpublished"
)

// ErrInvalidTransition reports a lifecycle transition the state machine forbids.
var ErrInvalidTransition = errors.New("domain: invalid status transition")

// ParseStatus coerces arbitrary status strings into a known representation.
func ParseStatus(input string) (Status, error) {
	status := Status(strings.ToLower(strings.TrimSpace(input)))
	switch status {
	case StatusDraft, StatusPublished, StatusUnpublished:
		return status, nil
	case "":
		return StatusDraft, nil
	}
	return "", fmt.Errorf("domain: unknown status %q", input)
}

// IsValid reports whether the status is one of the lifecycle states.
func (s Status) IsValid() bool {
	switch s {
	case StatusDraft, StatusPublished, StatusUnpublished:
		return true
	}
	return false
}

// EverPublished reports whether the status implies the project has held a
// subdomain at some point. The subdomain column is set if and only if this
// holds.
func (s Status) EverPublished() bool {
	return s == StatusPublished || s == StatusUnpublished
}

// CanTransition reports whether the lifecycle permits moving to the target
// state. There is no terminal state; published and unpublished cycle freely.
func (s Status) CanTransition(target Status) bool {
	switch s {
	case StatusDraft:
		return target == StatusPublished
	case StatusPublished:
		return target == StatusUnpublished
	case StatusUnpublished:
		return target == StatusPublished
	}
	return false
}

// Transition validates and returns the target state, or ErrInvalidTransition.
func (s Status) Transition(target Status) (Status, error) {
	if !s.CanTransition(target) {
		return s, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, s, target)
	}
	return target, nil
}

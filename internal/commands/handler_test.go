package commands_test

import (
	"context"
	"errors"
	"testing"
	"time"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-sitebuilder/internal/commands"
)

type noopMessage struct{}

func (noopMessage) Type() string { return "sitebuilder.test.noop" }

func (noopMessage) Validate() error { return nil }

type rejectedMessage struct{}

func (rejectedMessage) Type() string { return "sitebuilder.test.rejected" }

func (rejectedMessage) Validate() error {
	return errors.New("missing required field")
}

func TestHandlerExecutesWrappedFunction(t *testing.T) {
	ran := false
	h := commands.NewHandler[noopMessage](func(ctx context.Context, msg noopMessage) error {
		ran = true
		return nil
	})

	if err := h.Execute(context.Background(), noopMessage{}); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !ran {
		t.Fatal("wrapped function never ran")
	}
}

func TestHandlerRejectsInvalidMessages(t *testing.T) {
	ran := false
	h := commands.NewHandler[rejectedMessage](func(ctx context.Context, msg rejectedMessage) error {
		ran = true
		return nil
	})

	err := h.Execute(context.Background(), rejectedMessage{})
	if err == nil {
		t.Fatal("invalid message executed")
	}
	if !goerrors.IsCategory(err, goerrors.CategoryValidation) {
		t.Fatalf("expected validation category, got %v", err)
	}
	if ran {
		t.Fatal("wrapped function ran on an invalid message")
	}
}

func TestHandlerStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ran := false
	h := commands.NewHandler[noopMessage](func(ctx context.Context, msg noopMessage) error {
		ran = true
		return nil
	})

	err := h.Execute(ctx, noopMessage{})
	if err == nil {
		t.Fatal("expected a context error")
	}
	if !goerrors.IsCategory(err, goerrors.CategoryCommand) {
		t.Fatalf("expected command category, got %v", err)
	}
	if ran {
		t.Fatal("wrapped function ran on a cancelled context")
	}
}

func TestHandlerCategorisesExecutionFailures(t *testing.T) {
	boom := errors.New("storage offline")
	h := commands.NewHandler[noopMessage](func(ctx context.Context, msg noopMessage) error {
		return boom
	})

	err := h.Execute(context.Background(), noopMessage{})
	if err == nil {
		t.Fatal("expected execution error")
	}
	if !goerrors.IsCategory(err, goerrors.CategoryCommand) {
		t.Fatalf("expected command category, got %v", err)
	}
}

func TestHandlerTimeout(t *testing.T) {
	h := commands.NewHandler[noopMessage](func(ctx context.Context, msg noopMessage) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(50 * time.Millisecond):
			return nil
		}
	}, commands.WithTimeout[noopMessage](5*time.Millisecond))

	err := h.Execute(context.Background(), noopMessage{})
	if err == nil {
		t.Fatal("expected timeout error")
	}
	if !goerrors.IsCategory(err, goerrors.CategoryCommand) {
		t.Fatalf("expected command category, got %v", err)
	}
}

func TestHandlerZeroTimeoutDisablesDeadline(t *testing.T) {
	h := commands.NewHandler[noopMessage](func(ctx context.Context, msg noopMessage) error {
		if _, ok := ctx.Deadline(); ok {
			t.Fatal("deadline set with timeout disabled")
		}
		return nil
	}, commands.WithTimeout[noopMessage](0))

	if err := h.Execute(context.Background(), noopMessage{}); err != nil {
		t.Fatalf("execute: %v", err)
	}
}

func TestHandlerNilContext(t *testing.T) {
	h := commands.NewHandler[noopMessage](func(ctx context.Context, msg noopMessage) error {
		if ctx == nil {
			t.Fatal("nil context reached the wrapped function")
		}
		return nil
	})

	//nolint:staticcheck // exercising the nil-context guard.
	if err := h.Execute(nil, noopMessage{}); err != nil {
		t.Fatalf("execute: %v", err)
	}
}

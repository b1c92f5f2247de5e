// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package provisioning

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/canonical/provisioning-service/internal/logging"
	"github.com/canonical/provisioning-service/internal/tracing"
)

func TestSagaCompensatesInReverse(t *testing.T) {
	var calls []string

	record := func(name string) UndoFunc {
		return func(context.Context) error {
			calls = append(calls, "undo "+name)
			return nil
		}
	}

	failure := errors.New("step three failed")

	err := NewSaga("test", tracing.NewNoopTracer(), logging.NewNoopLogger()).
		Step("one", func(context.Context) (UndoFunc, error) {
			calls = append(calls, "one")
			return record("one"), nil
		}).
		Step("two", func(context.Context) (UndoFunc, error) {
			calls = append(calls, "two")
			return nil, nil
		}).
		Step("three", func(context.Context) (UndoFunc, error) {
			calls = append(calls, "three")
			return nil, failure
		}).
		Step("four", func(context.Context) (UndoFunc, error) {
			t.Fatal("step after a failure must not run")
			return nil, nil
		}).
		Run(context.Background())

	if !errors.Is(err, failure) {
		t.Fatalf("expected original error, got %v", err)
	}

	expected := []string{"one", "two", "three", "undo one"}
	if !reflect.DeepEqual(calls, expected) {
		t.Fatalf("expected %v, got %v", expected, calls)
	}
}

func TestSagaUndoFailureDoesNotMaskError(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := logging.NewLoggerFromZap(zap.New(core))

	failure := errors.New("insert failed")
	secondUndo := false

	err := NewSaga("test", tracing.NewNoopTracer(), logger).
		Step("first", func(context.Context) (UndoFunc, error) {
			return func(context.Context) error {
				secondUndo = true
				return nil
			}, nil
		}).
		Step("second", func(context.Context) (UndoFunc, error) {
			return func(context.Context) error { return errors.New("delete failed") }, nil
		}).
		Step("third", func(context.Context) (UndoFunc, error) {
			return nil, failure
		}).
		Run(context.Background())

	if !errors.Is(err, failure) {
		t.Fatalf("expected original error, got %v", err)
	}
	if !secondUndo {
		t.Fatal("earlier undo must still run after a failed undo")
	}
	if logs.FilterMessage("saga compensation failed").Len() != 1 {
		t.Fatal("expected compensation failure to be logged")
	}
}

func TestSagaCompensatesAfterCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	var undoErr error

	err := NewSaga("test", tracing.NewNoopTracer(), logging.NewNoopLogger()).
		Step("create", func(context.Context) (UndoFunc, error) {
			return func(ctx context.Context) error {
				undoErr = ctx.Err()
				return nil
			}, nil
		}).
		Step("fail", func(context.Context) (UndoFunc, error) {
			cancel()
			return nil, context.Canceled
		}).
		Run(ctx)

	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancellation, got %v", err)
	}
	if undoErr != nil {
		t.Fatalf("undo should see a live context, got %v", undoErr)
	}
}

func TestSagaSuccess(t *testing.T) {
	undone := false

	err := NewSaga("test", tracing.NewNoopTracer(), logging.NewNoopLogger()).
		Step("only", func(context.Context) (UndoFunc, error) {
			return func(context.Context) error {
				undone = true
				return nil
			}, nil
		}).
		Run(context.Background())

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if undone {
		t.Fatal("undo must not run on success")
	}
}

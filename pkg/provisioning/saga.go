// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package provisioning

import (
	"context"
	"fmt"

	"github.com/canonical/provisioning-service/internal/logging"
	"github.com/canonical/provisioning-service/internal/tracing"
)

// UndoFunc reverts the effect of a completed step.
type UndoFunc func(context.Context) error

// StepFunc performs a step and optionally returns the undo for it.
type StepFunc func(context.Context) (UndoFunc, error)

type step struct {
	name string
	do   StepFunc
}

type completed struct {
	name string
	undo UndoFunc
}

// Saga runs named steps in order. When a step fails, the undos registered by
// the steps that already completed run in reverse order and the original
// error is returned.
type Saga struct {
	name  string
	steps []step

	tracer tracing.TracingInterface
	logger logging.LoggerInterface
}

func (s *Saga) Step(name string, do StepFunc) *Saga {
	s.steps = append(s.steps, step{name: name, do: do})
	return s
}

func (s *Saga) Run(ctx context.Context) error {
	ctx, span := s.tracer.Start(ctx, "provisioning.Saga."+s.name)
	defer span.End()

	done := make([]completed, 0, len(s.steps))

	for _, st := range s.steps {
		undo, err := st.do(ctx)
		if err != nil {
			s.logger.Debugw("saga step failed", "saga", s.name, "step", st.name, "error", err)
			s.compensate(ctx, done)
			return err
		}

		if undo != nil {
			done = append(done, completed{name: st.name, undo: undo})
		}
	}

	return nil
}

func (s *Saga) compensate(ctx context.Context, done []completed) {
	// compensation must complete even if the caller went away
	ctx = context.WithoutCancel(ctx)

	for i := len(done) - 1; i >= 0; i-- {
		if err := done[i].undo(ctx); err != nil {
			s.logger.Errorw(
				"saga compensation failed",
				"saga", s.name,
				"step", done[i].name,
				"error", fmt.Errorf("undo %s: %w", done[i].name, err),
			)
			continue
		}

		s.logger.Infow("saga step compensated", "saga", s.name, "step", done[i].name)
	}
}

func NewSaga(name string, tracer tracing.TracingInterface, logger logging.LoggerInterface) *Saga {
	s := new(Saga)

	s.name = name
	s.tracer = tracer
	s.logger = logger

	return s
}

// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

// Package notify runs best-effort side effects detached from the request
// that triggered them.
package notify

import (
	"context"
	"sync"
	"time"

	"github.com/canonical/provisioning-service/internal/apierror"
	"github.com/canonical/provisioning-service/internal/logging"
	"github.com/canonical/provisioning-service/internal/tracing"
)

const defaultTimeout = 30 * time.Second

type DispatcherInterface interface {
	// Go runs fn on its own goroutine. Failures are logged, never returned.
	Go(ctx context.Context, name string, fn func(context.Context) error)
	// Wait blocks until every dispatched task has returned or ctx is done.
	Wait(ctx context.Context) error
}

var _ DispatcherInterface = (*Dispatcher)(nil)

type Dispatcher struct {
	timeout time.Duration
	wg      sync.WaitGroup

	tracer tracing.TracingInterface
	logger logging.LoggerInterface
}

func (d *Dispatcher) Go(ctx context.Context, name string, fn func(context.Context) error) {
	// the request context is cancelled as soon as the response is written
	detached := context.WithoutCancel(ctx)

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()

		ctx, cancel := context.WithTimeout(detached, d.timeout)
		defer cancel()

		ctx, span := d.tracer.Start(ctx, "notify.Dispatcher."+name)
		defer span.End()

		defer func() {
			if r := recover(); r != nil {
				d.logger.Errorw("notification panicked", "task", name, "kind", apierror.KindPartialSuccess, "panic", r)
			}
		}()

		if err := fn(ctx); err != nil {
			d.logger.Errorw("notification failed", "task", name, "kind", apierror.KindPartialSuccess, "error", err)
			return
		}

		d.logger.Debugw("notification delivered", "task", name)
	}()
}

func (d *Dispatcher) Wait(ctx context.Context) error {
	done := make(chan struct{})

	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func NewDispatcher(timeout time.Duration, tracer tracing.TracingInterface, logger logging.LoggerInterface) *Dispatcher {
	d := new(Dispatcher)

	d.timeout = timeout
	if d.timeout <= 0 {
		d.timeout = defaultTimeout
	}

	d.tracer = tracer
	d.logger = logger

	return d
}

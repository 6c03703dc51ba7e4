/*
Copyright (c) 2024 Diagrid Inc.
Licensed under the MIT License.
*/

package cron

import (
	"context"
	"sync"

	"github.com/diagridio/go-calendar-cron/api"
	"github.com/diagridio/go-calendar-cron/schedule"
)

// entry is a single registration. Its execution context is created when Run
// starts it, and cancelled on Stop or once the execution has finished.
type entry struct {
	id       uint64
	name     string
	schedule schedule.Interface
	fn       api.CallbackFunc

	lock    sync.Mutex
	stopped bool
	cancel  context.CancelFunc
}

func (e *entry) ID() uint64 {
	return e.id
}

func (e *entry) Name() string {
	return e.name
}

func (e *entry) Schedule() schedule.Interface {
	return e.schedule
}

func (e *entry) Stop() {
	e.lock.Lock()
	defer e.lock.Unlock()

	e.stopped = true
	if e.cancel != nil {
		e.cancel()
	}
}

// start returns the execution context of the entry, or false if the entry has
// been stopped.
func (e *entry) start(ctx context.Context) (context.Context, bool) {
	e.lock.Lock()
	defer e.lock.Unlock()

	if e.stopped {
		return nil, false
	}

	ctx, e.cancel = context.WithCancel(ctx)
	return ctx, true
}

func (e *entry) finish() {
	e.lock.Lock()
	defer e.lock.Unlock()

	if e.cancel != nil {
		e.cancel()
		e.cancel = nil
	}
}

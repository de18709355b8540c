// File: core/concurrency/scheduler.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// TimerScheduler implements api.Scheduler over time.AfterFunc, grounded on
// the teacher's api/scheduler.go + api/result.go (Cancelable) contract:
// the graph FSM uses it to arm a proactive transition-guard deadline (spec
// §5 "Cancellation & timeouts") instead of only checking wall-clock time
// the next time an event happens to arrive.

package concurrency

import (
	"sync"
	"time"

	"github.com/momentics/tizonia-go/api"
)

// TimerScheduler schedules callbacks via the Go runtime timer wheel.
type TimerScheduler struct{}

// NewTimerScheduler constructs a stateless scheduler; every call just
// delegates to time.AfterFunc, so a single instance may be shared freely.
func NewTimerScheduler() *TimerScheduler { return &TimerScheduler{} }

func (TimerScheduler) Schedule(delayNanos int64, fn func()) (api.Cancelable, error) {
	if delayNanos < 0 {
		return nil, api.NewError(api.ErrCodeInvalidArgument, "negative delay")
	}
	c := &timerCancelable{done: make(chan struct{})}
	c.timer = time.AfterFunc(time.Duration(delayNanos), func() {
		fn()
		c.markDone(nil)
	})
	return c, nil
}

func (TimerScheduler) Cancel(c api.Cancelable) error {
	return c.Cancel()
}

func (TimerScheduler) Now() int64 {
	return time.Now().UnixNano()
}

// timerCancelable adapts a *time.Timer to api.Cancelable.
type timerCancelable struct {
	mu    sync.Mutex
	timer *time.Timer
	done  chan struct{}
	err   error
	fired bool
}

func (c *timerCancelable) Cancel() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fired {
		return nil
	}
	c.timer.Stop()
	c.markDoneLocked(api.NewError(api.ErrCodeTimeout, "canceled before firing"))
	return nil
}

func (c *timerCancelable) Done() <-chan struct{} { return c.done }

func (c *timerCancelable) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

func (c *timerCancelable) markDone(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.markDoneLocked(err)
}

func (c *timerCancelable) markDoneLocked(err error) {
	if c.fired {
		return
	}
	c.fired = true
	c.err = err
	close(c.done)
}

var (
	_ api.Scheduler  = (*TimerScheduler)(nil)
	_ api.Cancelable = (*timerCancelable)(nil)
)

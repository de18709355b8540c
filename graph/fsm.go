// File: graph/fsm.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// FSM is the hierarchical Graph state machine of spec §4.6, driven one
// event at a time by core/concurrency.GraphLoop. Grounded on design note
// "MSM state machine library -> pair of tables": FSM switches on its
// current state in advanceLocked and its enter*/handle* methods, and each
// state's branch consults Ops's poll-able guard slots before advancing,
// rather than reintroducing a generic library the teacher never depended on.

package graph

import (
	"context"
	"sync"
	"time"

	"github.com/momentics/tizonia-go/api"
	"github.com/momentics/tizonia-go/core/concurrency"
	"github.com/momentics/tizonia-go/logging"
	"github.com/momentics/tizonia-go/metrics"
)

// TransitionDeadline bounds how long the FSM waits for a guard to become
// true before declaring Error (spec §5 "Cancellation & timeouts"). A var,
// not a const, so tests can shorten it instead of waiting out the real
// production value.
var TransitionDeadline = 5 * time.Second

// graphLoopDepth bounds the queue core/concurrency.GraphLoop drains on the
// FSM's behalf; generous relative to the two or three components a graph
// typically holds, so a burst of simultaneous command-complete callbacks
// never backpressures a component's own processor goroutine.
const graphLoopDepth = 256

// step tracks progress through a composite entry action that spans more
// than one OMX verb.
type step int

const (
	stepIdle step = iota
	stepAwaitingIdle
	stepAwaitingExe
	stepDone
)

// FSM drives one graph instance through the states of §4.6.
type FSM struct {
	mu sync.Mutex

	ops     *Ops
	handles []string // pipeline order, source first, sink last

	state      api.GraphState
	step       step
	deadline   time.Time
	fatalErr   error
	generation int

	scheduler       api.Scheduler
	pendingDeadline api.Cancelable

	reconfigTunnel string

	loop       *concurrency.GraphLoop
	enteredAt  time.Time
	graphID    string
}

// NewFSM constructs an FSM in Inited over the given Ops and component
// pipeline order. Components must already be registered on ops via Load.
//
// It also starts the core/concurrency.GraphLoop that drains Ops's fanned-in
// component events (command-complete, error, port-settings-changed,
// buffer-flag) onto this FSM's Dispatch, one event at a time, on its own
// goroutine — the wiring graph/fsm.go's package doc has always claimed.
// Pushing through the loop rather than calling Dispatch inline matters even
// for a synchronous test double: a component callback arriving while
// Dispatch already holds f.mu must not reenter it.
func NewFSM(ops *Ops, handles []string) *FSM {
	f := &FSM{
		ops:       ops,
		handles:   append([]string(nil), handles...),
		state:     api.GraphInited,
		scheduler: concurrency.NewTimerScheduler(),
		graphID:   graphLabel(handles),
		enteredAt: time.Now(),
	}
	f.loop = concurrency.NewGraphLoop(graphLoopDepth, f.Dispatch)
	go f.loop.Run(context.Background())
	ops.SetDispatch(f.loop.Push)
	return f
}

// graphLabel derives a short, stable identifier for logging/metrics from a
// graph's pipeline order, e.g. "source+sink".
func graphLabel(handles []string) string {
	if len(handles) == 0 {
		return "empty"
	}
	id := handles[0]
	for _, h := range handles[1:] {
		id += "+" + h
	}
	return id
}

func (f *FSM) State() api.GraphState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

func (f *FSM) setState(s api.GraphState) {
	now := time.Now()
	metrics.Default().GraphStateDuration.WithLabelValues(f.state.String()).Observe(now.Sub(f.enteredAt).Seconds())
	logging.Default().Graph(f.graphID).WithFields(map[string]any{
		"from": f.state.String(),
		"to":   s.String(),
	}).Debug("graph state transition")

	f.state = s
	f.step = stepIdle
	f.deadline = time.Time{}
	f.generation++
	f.enteredAt = now
	if f.pendingDeadline != nil {
		f.pendingDeadline.Cancel()
		f.pendingDeadline = nil
	}
}

// armDeadlineLocked records the current transition's guard deadline and
// schedules a proactive Scheduler callback for it, so a stuck state with
// no further incoming events still lands in GraphError instead of waiting
// forever for a Dispatch call that may never come.
func (f *FSM) armDeadlineLocked() {
	f.deadline = time.Now().Add(TransitionDeadline)
	gen := f.generation
	c, err := f.scheduler.Schedule(int64(TransitionDeadline), func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		if f.generation != gen {
			return // state already moved on; this timer is stale
		}
		f.fatalErr = api.NewError(api.ErrCodeTimeout, "graph transition guard did not become true in time").
			WithContext("state", f.state)
		f.setState(api.GraphError)
	})
	if err == nil {
		f.pendingDeadline = c
	}
}

// Start transitions Inited -> Loaded -> AutoDetecting, the fixed entry
// sequence every graph begins with once its components are registered.
func (f *FSM) Start() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state != api.GraphInited {
		return
	}
	f.setState(api.GraphLoaded)
	f.enterAutoDetecting()
}

func (f *FSM) enterAutoDetecting() {
	f.setState(api.GraphAutoDetecting)
	if len(f.handles) == 0 {
		return
	}
	f.ops.EnableAutoDetection(f.handles[0], 0)
	f.armDeadlineLocked()
}

func (f *FSM) enterConfiguring() {
	f.setState(api.GraphConfiguring)
	f.ops.Probe(f.handles[0])
	f.ops.ConfigureSource(f.handles[0], 0, api.PortParams{})
	f.step = stepAwaitingIdle
	f.ops.BeginRound()
	for _, h := range f.handles {
		f.ops.OmxLoaded2Idle(h)
	}
	f.armDeadlineLocked()
}

func (f *FSM) allTransComplete(target api.State) bool {
	for _, h := range f.handles {
		if !f.ops.IsTransComplete(h, target) {
			return false
		}
	}
	return true
}

// Dispatch routes one multiplexed event (see core/concurrency.GraphEvent)
// into the FSM, then re-checks the current state's guards.
func (f *FSM) Dispatch(ev concurrency.GraphEvent) {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch {
	case ev.Error != nil:
		f.fatalErr = ev.Error.Err
		f.setState(api.GraphError)
		return
	case ev.Control != nil:
		f.handleControlLocked(*ev.Control)
	case ev.PortChg != nil:
		f.handlePortChangeLocked()
	case ev.BufFlag != nil && ev.BufFlag.Flags.Has(api.FlagEOS):
		f.handleEndOfStreamLocked()
	}

	f.checkDeadlineLocked()
	f.advanceLocked()
}

func (f *FSM) handleControlLocked(ev api.ControlEvent) {
	switch ev.Kind {
	case api.ControlPlay:
		if f.state == api.GraphInited {
			f.setState(api.GraphLoaded)
			f.enterAutoDetecting()
		} else if f.state == api.GraphPaused {
			f.setState(api.GraphResuming)
			f.ops.BeginRound()
			for _, h := range f.handles {
				f.ops.OmxPause2Exe(h)
			}
			f.step = stepAwaitingExe
			f.armDeadlineLocked()
		}
	case api.ControlPause:
		if f.state == api.GraphExecuting {
			f.setState(api.GraphPausing)
			f.ops.BeginRound()
			for _, h := range f.handles {
				f.ops.OmxExe2Pause(h)
			}
			f.step = stepAwaitingExe // reuses the "waiting for every handle's trans-complete" shape
			f.armDeadlineLocked()
		}
	case api.ControlNext, api.ControlPrevious:
		f.enterSkippingLocked()
	case api.ControlSeek:
		if len(f.handles) > 0 {
			f.ops.Seek(f.handles[0], int64(ev.SeekOffset))
		}
	case api.ControlVolume:
		if len(f.handles) > 0 {
			f.ops.Volume(f.handles[len(f.handles)-1], ev.VolumeStep)
		}
	case api.ControlMute:
		if len(f.handles) > 0 {
			f.ops.Mute(f.handles[len(f.handles)-1], true)
		}
	case api.ControlStop, api.ControlQuit:
		f.enterStoppingLocked()
	}
}

func (f *FSM) enterSkippingLocked() {
	if f.state == api.GraphAutoDetecting {
		// Tie-break (§4.6): a skip during auto-detection only calls
		// StoreSkip and leaves the state unchanged; the skip is not
		// replayed once the probe completes.
		f.ops.StoreSkip()
		return
	}
	f.setState(api.GraphSkipping)
	f.ops.BeginRound()
	f.ops.Skip()
	f.step = stepAwaitingIdle
	f.armDeadlineLocked()
}

func (f *FSM) enterStoppingLocked() {
	f.setState(api.GraphStopping)
	f.ops.BeginRound()
	for i := len(f.handles) - 1; i >= 0; i-- {
		f.ops.OmxExe2Idle(f.handles[i])
	}
	f.step = stepAwaitingIdle
	f.armDeadlineLocked()
}

func (f *FSM) handlePortChangeLocked() {
	if f.state == api.GraphAutoDetecting {
		// The source has published its format: probing is done.
		f.enterConfiguring()
		return
	}
	if f.state != api.GraphExecuting {
		return
	}
	if len(f.handles) < 2 {
		return
	}
	// The decoder (handles[0]) reported a format change on its output;
	// the affected tunnel links it to the next stage.
	id := f.handles[0] + "->" + f.handles[1]
	f.reconfigTunnel = id
	f.setState(api.GraphReconfiguring)
	f.ops.BeginRound()
	f.ops.DisableTunnel(id)
	f.step = stepAwaitingIdle
	f.armDeadlineLocked()
}

func (f *FSM) handleEndOfStreamLocked() {
	if f.state == api.GraphExecuting {
		f.enterStoppingLocked()
	}
}

func (f *FSM) checkDeadlineLocked() {
	if f.deadline.IsZero() || time.Now().Before(f.deadline) {
		return
	}
	f.fatalErr = api.NewError(api.ErrCodeTimeout, "graph transition guard did not become true in time").
		WithContext("state", f.state)
	f.setState(api.GraphError)
}

// advanceLocked re-checks the guards for the current state and fires the
// next composite verb once they hold, looping until a full pass makes no
// further progress. A single if/else-if pass would strand the FSM when two
// guards become true within the same Dispatch call (a synchronous
// component callback can satisfy both the Idle and the Executing guard
// before advanceLocked ever runs); looping lets every newly-true guard,
// including ones the previous iteration's own actions just satisfied,
// fire within the one Dispatch call that unblocked them.
func (f *FSM) advanceLocked() {
	for {
		progressed := false
		switch f.state {
		case api.GraphConfiguring:
			if f.step == stepAwaitingIdle && f.allTransComplete(api.StateIdle) {
				f.ops.BeginRound()
				for _, h := range f.handles {
					f.ops.OmxIdle2Exe(h)
				}
				f.step = stepAwaitingExe
				progressed = true
			} else if f.step == stepAwaitingExe && f.allTransComplete(api.StateExecuting) {
				f.setState(api.GraphExecuting)
				progressed = true
			}
		case api.GraphPausing:
			if f.allTransComplete(api.StatePaused) {
				f.setState(api.GraphPaused)
				progressed = true
			}
		case api.GraphResuming:
			if f.allTransComplete(api.StateExecuting) {
				f.setState(api.GraphExecuting)
				progressed = true
			}
		case api.GraphSkipping:
			if f.step == stepAwaitingIdle && f.allTransComplete(api.StateIdle) {
				f.setState(api.GraphLoaded)
				f.enterAutoDetecting()
				progressed = true
			}
		case api.GraphStopping:
			if f.allTransComplete(api.StateIdle) {
				for _, h := range f.handles {
					f.ops.OmxIdle2Loaded(h)
				}
				f.ops.TearDownTunnels()
				f.ops.DestroyGraph()
				f.setState(api.GraphStopped)
				progressed = true
			}
		case api.GraphReconfiguring:
			if f.step == stepAwaitingIdle && f.ops.IsPortDisablingComplete(f.handles[0], 0) {
				f.ops.ReconfigureTunnel(f.reconfigTunnel, api.PortParams{})
				f.ops.BeginRound()
				f.ops.EnableTunnel(f.reconfigTunnel)
				f.step = stepAwaitingExe
				progressed = true
			} else if f.step == stepAwaitingExe &&
				f.ops.IsPortEnablingComplete(f.handles[0], 0) &&
				f.ops.IsPortEnablingComplete(f.handles[1], 0) {
				f.setState(api.GraphExecuting)
				progressed = true
			}
		}
		if !progressed {
			return
		}
	}
}

// FatalError returns the first fatal error recorded, if the FSM is in
// Error.
func (f *FSM) FatalError() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fatalErr
}

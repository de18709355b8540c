package graph

import (
	"testing"
	"time"

	"github.com/momentics/tizonia-go/api"
	"github.com/momentics/tizonia-go/core/concurrency"
)

type fakeComponent struct {
	name     string
	state    api.State
	listener api.EventListener
}

func (c *fakeComponent) Name() string     { return c.name }
func (c *fakeComponent) Role() string     { return "fake.role" }
func (c *fakeComponent) State() api.State { return c.state }
func (c *fakeComponent) GetParameter(api.PortIndexType, int) (api.PortParams, error) {
	return api.PortParams{}, nil
}
func (c *fakeComponent) SetParameter(api.PortIndexType, int, api.PortParams) error { return nil }
func (c *fakeComponent) GetConfig(string) (any, error)                            { return nil, nil }
func (c *fakeComponent) SetConfig(string, any) error                              { return nil }

func (c *fakeComponent) SendCommand(cmd api.Command, target api.State, port int) error {
	if cmd == api.CommandStateSet {
		c.state = target
		if c.listener != nil {
			c.listener.OnCommandComplete(c.name, api.CommandCompleteEvent{Cmd: cmd, Port: -1, State: target, HasState: true})
		}
	}
	if cmd == api.CommandPortDisable && c.listener != nil {
		c.listener.OnCommandComplete(c.name, api.CommandCompleteEvent{Cmd: cmd, Port: port})
	}
	if cmd == api.CommandPortEnable && c.listener != nil {
		c.listener.OnCommandComplete(c.name, api.CommandCompleteEvent{Cmd: cmd, Port: port})
	}
	return nil
}

func (c *fakeComponent) EmptyThisBuffer(int, api.BufferHeader) error  { return nil }
func (c *fakeComponent) FillThisBuffer(int, api.BufferHeader) error   { return nil }
func (c *fakeComponent) UseBuffer(int, int) (api.BufferHeader, error) { return api.BufferHeader{}, nil }
func (c *fakeComponent) AllocateBuffer(int, int) (api.BufferHeader, error) {
	return api.BufferHeader{}, nil
}
func (c *fakeComponent) FreeBuffer(int, api.BufferHeader) error { return nil }
func (c *fakeComponent) AddEventListener(l api.EventListener)   { c.listener = l }
func (c *fakeComponent) Kernel() api.KernelOps                  { return nil }

func TestFSMLoadedThroughAutoDetectAndConfiguringIntoExecuting(t *testing.T) {
	ops := New()
	src := &fakeComponent{name: "source"}
	sink := &fakeComponent{name: "sink"}
	ops.Load("source", src)
	ops.Load("sink", sink)

	fsm := NewFSM(ops, []string{"source", "sink"})
	fsm.Start()
	if fsm.State() != api.GraphAutoDetecting {
		t.Fatalf("state = %v, want AutoDetecting", fsm.State())
	}

	fsm.Dispatch(concurrency.GraphEvent{PortChg: &api.PortSettingsChangedEvent{Port: 0}})
	if fsm.State() != api.GraphExecuting {
		t.Fatalf("state = %v, want Executing after configure+idle+exe guards satisfied", fsm.State())
	}
	if src.state != api.StateExecuting || sink.state != api.StateExecuting {
		t.Fatalf("components did not reach Executing: src=%v sink=%v", src.state, sink.state)
	}
}

func TestFSMPauseResume(t *testing.T) {
	ops := New()
	src := &fakeComponent{name: "source", state: api.StateExecuting}
	ops.Load("source", src)
	fsm := NewFSM(ops, []string{"source"})
	fsm.setState(api.GraphExecuting)

	fsm.Dispatch(concurrency.GraphEvent{Control: &api.ControlEvent{Kind: api.ControlPause}})
	if fsm.State() != api.GraphPaused {
		t.Fatalf("state = %v, want Paused", fsm.State())
	}

	fsm.Dispatch(concurrency.GraphEvent{Control: &api.ControlEvent{Kind: api.ControlPlay}})
	if fsm.State() != api.GraphExecuting {
		t.Fatalf("state = %v, want Executing after resume", fsm.State())
	}
}

func TestFSMErrorOnComponentError(t *testing.T) {
	ops := New()
	fsm := NewFSM(ops, nil)
	fsm.Dispatch(concurrency.GraphEvent{Error: &api.ErrorEvent{Code: api.ErrCodeStreamCorrupt}})
	if fsm.State() != api.GraphError {
		t.Fatalf("state = %v, want Error", fsm.State())
	}
}

// A stuck guard must still land the graph in Error once its deadline
// elapses, even if Dispatch is never called again to notice it.
func TestFSMDeadlineFiresWithoutFurtherDispatch(t *testing.T) {
	old := TransitionDeadline
	TransitionDeadline = 20 * time.Millisecond
	defer func() { TransitionDeadline = old }()

	ops := New()
	src := &fakeComponent{name: "source"}
	sink := &fakeComponent{name: "sink"}
	ops.Load("source", src)
	ops.Load("sink", sink)

	fsm := NewFSM(ops, []string{"source", "sink"})
	fsm.Start()
	if fsm.State() != api.GraphAutoDetecting {
		t.Fatalf("state = %v, want AutoDetecting", fsm.State())
	}

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if fsm.State() == api.GraphError {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}

	if fsm.State() != api.GraphError {
		t.Fatalf("state = %v, want Error after the transition deadline elapsed with no Dispatch", fsm.State())
	}
	if fsm.FatalError() == nil {
		t.Fatalf("expected FatalError to be recorded")
	}
}

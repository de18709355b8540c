package processor

import (
	"testing"
	"time"

	"github.com/momentics/tizonia-go/api"
	"github.com/momentics/tizonia-go/kernel"
	"github.com/momentics/tizonia-go/port"
)

type fakePool struct{}

func (fakePool) Get(size int) api.BufferHeader { return api.BufferHeader{Data: make([]byte, size)} }
func (fakePool) Put(api.BufferHeader)           {}
func (fakePool) Stats() api.BufferPoolStats     { return api.BufferPoolStats{} }

type recordingListener struct {
	completes []api.CommandCompleteEvent
	errors    []api.ErrorEvent
}

func (r *recordingListener) OnCommandComplete(id string, ev api.CommandCompleteEvent) {
	r.completes = append(r.completes, ev)
}
func (r *recordingListener) OnError(id string, ev api.ErrorEvent) { r.errors = append(r.errors, ev) }
func (r *recordingListener) OnPortSettingsChanged(string, api.PortSettingsChangedEvent) {}
func (r *recordingListener) OnBufferFlag(string, api.BufferFlagEvent)                   {}

func newTestProcessor(t *testing.T) (*Processor, *kernel.Kernel, *recordingListener) {
	t.Helper()
	k := kernel.New(fakePool{})
	in := port.New(0, api.DirInput, api.PortParams{})
	in.SetTunnel(api.TunnelPeer{}, false)
	_ = in.Enable()
	k.AddPort(in)

	listener := &recordingListener{}
	identity := func(in, out api.BufferHeader) (int, int, error) {
		n := copy(out.Data, in.Bytes())
		return in.Filled, n, nil
	}
	p := New("comp-under-test", k, identity, listener)
	return p, k, listener
}

func postAndWait(t *testing.T, p *Processor, msg api.MailboxMessage) error {
	t.Helper()
	reply := make(chan error, 1)
	msg.Reply = reply
	if err := p.Post(msg); err != nil {
		t.Fatalf("Post: %v", err)
	}
	select {
	case err := <-reply:
		return err
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for reply")
		return nil
	}
}

func TestStateSetRejectsLoadedToExecuting(t *testing.T) {
	p, _, listener := newTestProcessor(t)
	go p.Run()
	defer p.Stop()

	err := postAndWait(t, p, api.MailboxMessage{Class: api.MsgSendCommand, Cmd: api.CommandStateSet, Target: api.StateExecuting})
	if err == nil {
		t.Fatalf("expected rejection for Loaded->Executing")
	}
	if len(listener.errors) != 1 {
		t.Fatalf("expected one error event, got %d", len(listener.errors))
	}
	if listener.errors[0].Code != api.ErrCodeIncorrectStateTransition {
		t.Fatalf("error code = %v, want IncorrectStateTransition", listener.errors[0].Code)
	}
}

func TestStateSetLoadedToIdleToExecuting(t *testing.T) {
	p, _, listener := newTestProcessor(t)
	go p.Run()
	defer p.Stop()

	if err := postAndWait(t, p, api.MailboxMessage{Class: api.MsgSendCommand, Cmd: api.CommandStateSet, Target: api.StateIdle}); err != nil {
		t.Fatalf("Loaded->Idle: %v", err)
	}
	if p.State() != api.StateIdle {
		t.Fatalf("state = %v, want Idle", p.State())
	}

	if err := postAndWait(t, p, api.MailboxMessage{Class: api.MsgSendCommand, Cmd: api.CommandStateSet, Target: api.StateExecuting}); err != nil {
		t.Fatalf("Idle->Executing: %v", err)
	}
	if p.State() != api.StateExecuting {
		t.Fatalf("state = %v, want Executing", p.State())
	}
	if len(listener.completes) != 2 {
		t.Fatalf("expected 2 CommandComplete events, got %d", len(listener.completes))
	}
}

func TestStateSetNoopOnSameState(t *testing.T) {
	p, _, listener := newTestProcessor(t)
	go p.Run()
	defer p.Stop()

	if err := postAndWait(t, p, api.MailboxMessage{Class: api.MsgSendCommand, Cmd: api.CommandStateSet, Target: api.StateLoaded}); err != nil {
		t.Fatalf("Loaded->Loaded: %v", err)
	}
	if len(listener.completes) != 1 {
		t.Fatalf("expected 1 CommandComplete event, got %d", len(listener.completes))
	}
}

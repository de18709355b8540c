package component

import (
	"testing"
	"time"

	"github.com/momentics/tizonia-go/api"
	"github.com/momentics/tizonia-go/kernel"
	"github.com/momentics/tizonia-go/port"
	"github.com/momentics/tizonia-go/processor"
)

type fakePool struct{}

func (fakePool) Get(size int) api.BufferHeader { return api.BufferHeader{Data: make([]byte, size)} }
func (fakePool) Put(api.BufferHeader)           {}
func (fakePool) Stats() api.BufferPoolStats     { return api.BufferPoolStats{} }

func newTestComponent(t *testing.T) (*Component, *processor.Processor) {
	t.Helper()
	k := kernel.New(fakePool{})
	in := port.New(0, api.DirInput, api.PortParams{})
	in.SetTunnel(api.TunnelPeer{}, false)
	_ = in.Enable()
	k.AddPort(in)

	comp := New("comp", "audio_decoder.role", k)
	identity := func(in, out api.BufferHeader) (int, int, error) { return in.Filled, 0, nil }
	p := processor.New("comp", k, identity, comp)
	comp.SetProcessor(p)
	go p.Run()
	t.Cleanup(p.Stop)
	return comp, p
}

func TestComponentNameRoleState(t *testing.T) {
	comp, _ := newTestComponent(t)
	if comp.Name() != "comp" || comp.Role() != "audio_decoder.role" {
		t.Fatalf("Name/Role mismatch")
	}
	if comp.State() != api.StateLoaded {
		t.Fatalf("initial state = %v, want Loaded", comp.State())
	}
}

func TestComponentConfigRoundTrip(t *testing.T) {
	comp, _ := newTestComponent(t)
	if _, err := comp.GetConfig("missing"); err == nil {
		t.Fatalf("expected error for missing config key")
	}
	if err := comp.SetConfig("uri", "http://example.invalid/stream.mp3"); err != nil {
		t.Fatalf("SetConfig: %v", err)
	}
	v, err := comp.GetConfig("uri")
	if err != nil || v != "http://example.invalid/stream.mp3" {
		t.Fatalf("GetConfig = %v, %v", v, err)
	}
}

func TestComponentSendCommandDrivesStateForward(t *testing.T) {
	comp, _ := newTestComponent(t)
	type recorded struct {
		ev api.CommandCompleteEvent
	}
	done := make(chan recorded, 1)
	comp.AddEventListener(recordingListener{onComplete: func(id string, ev api.CommandCompleteEvent) {
		done <- recorded{ev}
	}})

	if err := comp.SendCommand(api.CommandStateSet, api.StateIdle, -1); err != nil {
		t.Fatalf("SendCommand: %v", err)
	}

	select {
	case r := <-done:
		if r.ev.State != api.StateIdle {
			t.Fatalf("CommandComplete state = %v, want Idle", r.ev.State)
		}
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for CommandComplete")
	}
}

type recordingListener struct {
	onComplete func(string, api.CommandCompleteEvent)
}

func (r recordingListener) OnCommandComplete(id string, ev api.CommandCompleteEvent) {
	if r.onComplete != nil {
		r.onComplete(id, ev)
	}
}
func (recordingListener) OnError(string, api.ErrorEvent)                           {}
func (recordingListener) OnPortSettingsChanged(string, api.PortSettingsChangedEvent) {}
func (recordingListener) OnBufferFlag(string, api.BufferFlagEvent)                  {}

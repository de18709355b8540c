// File: graph/ops.go
// Package graph implements Graph ops and the Graph FSM (spec §4.5, §4.6).
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Ops exposes the verb set the Graph FSM drives, and the poll-able result
// slots its guards read. Grounded on the teacher's control/config.go
// snapshot/listener shape (one struct owning versioned state behind a
// mutex, notified via a registered callback) repurposed here: instead of a
// config snapshot, Ops owns the set of "has this composite verb's last
// component reported complete" slots, updated as Ops itself is registered
// as every component's api.EventListener (a fan-in, mirroring Component's
// own fan-out).

package graph

import (
	"sync"

	"github.com/momentics/tizonia-go/api"
	"github.com/momentics/tizonia-go/core/concurrency"
)

// Tunnel is the negotiated connection between one component's output port
// and another's input port (spec Data Model "Tunnel").
type Tunnel struct {
	ID             string
	Supplier       string
	SupplierPort   int
	NonSupplier    string
	NonSupplierPort int
	BufferCount    int
	BufferSize     int
}

type transKey struct {
	handle string
	state  api.State
}

type portKey struct {
	handle string
	port   int
}

// Ops owns the components and tunnels of one graph instance and the
// poll-able slots the FSM's guards read.
//
// transRound/portEnablingRound/portDisablingRound record the round number
// active when a component last reported a completion, not a bare bool: a
// completion reported during one composite-verb round (e.g. the
// Loaded->Idle round inside Configuring) must not satisfy the same guard
// checked again during a later round that happens to await the same
// target state (e.g. the Exe->Idle round inside Stopping). BeginRound
// bumps the counter at the start of every composite-verb round; a slot
// only reads as complete when its stamped round matches the current one.
type Ops struct {
	mu sync.Mutex

	components map[string]api.ComponentOps
	tunnels    map[string]Tunnel

	lastOpSucceeded bool
	lastErr         error

	round int

	transRound         map[transKey]int
	portEnablingRound  map[portKey]int
	portDisablingRound map[portKey]int
	endOfPlay          bool
	lastComponent      map[string]bool

	// dispatch pushes a fanned-in component event onto the graph thread
	// (set by NewFSM, which owns the core/concurrency.GraphLoop draining
	// it). nil until an FSM has registered, e.g. in tests that exercise
	// Ops standalone.
	dispatch func(concurrency.GraphEvent) bool
}

// New constructs an empty Ops. Components are registered via Load.
func New() *Ops {
	return &Ops{
		components:         make(map[string]api.ComponentOps),
		tunnels:             make(map[string]Tunnel),
		transRound:          make(map[transKey]int),
		portEnablingRound:   make(map[portKey]int),
		portDisablingRound:  make(map[portKey]int),
		lastComponent:       make(map[string]bool),
	}
}

// BeginRound starts a new composite-verb round, invalidating every guard
// slot reported complete during a prior round. Call once per composite
// verb (Configuring's Loaded->Idle step, Stopping's Exe->Idle step,
// Pausing, Resuming, Skipping, Reconfiguring's disable/enable steps)
// before issuing the commands whose completion the next guard awaits.
func (o *Ops) BeginRound() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.round++
	return o.round
}

// SetDispatch registers the graph thread's event sink. Called by NewFSM
// once both halves of a graph exist; every subsequent component event
// Ops fans in is pushed onto it instead of being dropped silently.
func (o *Ops) SetDispatch(fn func(concurrency.GraphEvent) bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.dispatch = fn
}

// pushEvent forwards one fanned-in component event to the graph thread, if
// one has registered. Pushing (rather than calling Dispatch inline) keeps
// a component callback arriving on the FSM's own goroutine, or arriving
// synchronously from within a test double, from reentering FSM.Dispatch's
// mutex.
func (o *Ops) pushEvent(ev concurrency.GraphEvent) {
	o.mu.Lock()
	dispatch := o.dispatch
	o.mu.Unlock()
	if dispatch != nil {
		dispatch(ev)
	}
}

// --- verbs -----------------------------------------------------------------

// Load registers a component under its handle (name). Graph ops verbs below
// address components by this handle.
func (o *Ops) Load(handle string, c api.ComponentOps) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.components[handle] = c
	c.AddEventListener(o)
	o.succeed()
}

// LoadSource is Load specialized for the graph's source component; kept as
// a distinct verb since the FSM's Loaded state entry action names it
// separately from ordinary component loading (§4.6).
func (o *Ops) LoadSource(handle string, c api.ComponentOps) {
	o.Load(handle, c)
}

// Configure pushes negotiated parameters onto a component's port.
func (o *Ops) Configure(handle string, port int, params api.PortParams) {
	o.mu.Lock()
	c, ok := o.components[handle]
	o.mu.Unlock()
	if !ok {
		o.fail(api.NewError(api.ErrCodeNotFound, "unknown component").WithContext("handle", handle))
		return
	}
	if err := c.SetParameter(api.IndexParamPortDefinition, port, params); err != nil {
		o.fail(err)
		return
	}
	o.succeed()
}

// ConfigureSource configures the source component once probing has
// published a format (spec §4.6 "Configuring": "probed; now wiring
// downstream").
func (o *Ops) ConfigureSource(handle string, port int, params api.PortParams) {
	o.Configure(handle, port, params)
}

// SetupTunnels records tunnels between already-loaded components. The
// BufferCount/BufferSize recorded here are not passed to the kernels: the
// populate step during omx_loaded2idle allocates from each kernel's own
// SetPortAllocation values (or its defaults).
func (o *Ops) SetupTunnels(tunnels []Tunnel) {
	o.mu.Lock()
	defer o.mu.Unlock()
	for _, t := range tunnels {
		o.tunnels[t.ID] = t
	}
	o.succeed()
}

// EnableAutoDetection records only that the op succeeded; nothing about
// the handle or port is stored, and format sniffing is left to the
// component.
func (o *Ops) EnableAutoDetection(handle string, port int) {
	o.succeed()
}

func (o *Ops) omxStateSet(handle string, target api.State, port int) {
	o.mu.Lock()
	c, ok := o.components[handle]
	o.mu.Unlock()
	if !ok {
		o.fail(api.NewError(api.ErrCodeNotFound, "unknown component").WithContext("handle", handle))
		return
	}
	if err := c.SendCommand(api.CommandStateSet, target, port); err != nil {
		o.fail(err)
		return
	}
	o.succeed()
}

func (o *Ops) OmxLoaded2Idle(handle string) { o.omxStateSet(handle, api.StateIdle, -1) }
func (o *Ops) OmxIdle2Exe(handle string)    { o.omxStateSet(handle, api.StateExecuting, -1) }
func (o *Ops) OmxExe2Pause(handle string)   { o.omxStateSet(handle, api.StatePaused, -1) }
func (o *Ops) OmxPause2Exe(handle string)   { o.omxStateSet(handle, api.StateExecuting, -1) }
func (o *Ops) OmxExe2Idle(handle string)    { o.omxStateSet(handle, api.StateIdle, -1) }
func (o *Ops) OmxIdle2Loaded(handle string) { o.omxStateSet(handle, api.StateLoaded, -1) }

// DisableTunnel disables both endpoints of one tunnel, the first half of
// the port-settings-changed protocol (§4.3).
func (o *Ops) DisableTunnel(id string) {
	o.mu.Lock()
	t, ok := o.tunnels[id]
	supplier, nonSupplier := o.components[t.Supplier], o.components[t.NonSupplier]
	o.mu.Unlock()
	if !ok {
		o.fail(api.NewError(api.ErrCodeNotFound, "unknown tunnel").WithContext("tunnel", id))
		return
	}
	if supplier != nil {
		_ = supplier.SendCommand(api.CommandPortDisable, api.StateLoaded, t.SupplierPort)
	}
	if nonSupplier != nil {
		_ = nonSupplier.SendCommand(api.CommandPortDisable, api.StateLoaded, t.NonSupplierPort)
	}
	o.succeed()
}

// EnableTunnel re-enables both endpoints once parameters have been updated.
func (o *Ops) EnableTunnel(id string) {
	o.mu.Lock()
	t, ok := o.tunnels[id]
	supplier, nonSupplier := o.components[t.Supplier], o.components[t.NonSupplier]
	o.mu.Unlock()
	if !ok {
		o.fail(api.NewError(api.ErrCodeNotFound, "unknown tunnel").WithContext("tunnel", id))
		return
	}
	if supplier != nil {
		_ = supplier.SendCommand(api.CommandPortEnable, api.StateLoaded, t.SupplierPort)
	}
	if nonSupplier != nil {
		_ = nonSupplier.SendCommand(api.CommandPortEnable, api.StateLoaded, t.NonSupplierPort)
	}
	o.succeed()
}

// ReconfigureTunnel pushes the new parameters a PortSettingsChanged event
// reported onto both tunnel endpoints, between DisableTunnel and
// EnableTunnel (§4.3).
func (o *Ops) ReconfigureTunnel(id string, params api.PortParams) {
	o.mu.Lock()
	t, ok := o.tunnels[id]
	o.mu.Unlock()
	if !ok {
		o.fail(api.NewError(api.ErrCodeNotFound, "unknown tunnel").WithContext("tunnel", id))
		return
	}
	o.Configure(t.Supplier, t.SupplierPort, params)
	o.Configure(t.NonSupplier, t.NonSupplierPort, params)
}

// Skip cancels the current track: flush every tunnel's supplier side, then
// descend the state ladder (§5 "Cancellation & timeouts").
func (o *Ops) Skip() {
	o.mu.Lock()
	tunnels := make([]Tunnel, 0, len(o.tunnels))
	for _, t := range o.tunnels {
		tunnels = append(tunnels, t)
	}
	components := make(map[string]api.ComponentOps, len(o.components))
	for k, v := range o.components {
		components[k] = v
	}
	o.mu.Unlock()

	for _, t := range tunnels {
		if c, ok := components[t.Supplier]; ok {
			_ = c.SendCommand(api.CommandFlush, api.StateIdle, t.SupplierPort)
		}
	}
	for handle := range components {
		o.OmxExe2Idle(handle)
	}
	o.succeed()
}

// Seek, Volume, Mute are control-surface pass-throughs recorded for
// introspection; the actual DSP/seek implementation lives in whichever
// component declares the corresponding config key.
func (o *Ops) Seek(handle string, offset int64) {
	o.mu.Lock()
	c, ok := o.components[handle]
	o.mu.Unlock()
	if !ok {
		o.fail(api.NewError(api.ErrCodeNotFound, "unknown component").WithContext("handle", handle))
		return
	}
	if err := c.SetConfig("seek.offset", offset); err != nil {
		o.fail(err)
		return
	}
	o.succeed()
}

func (o *Ops) Volume(handle string, step int) {
	o.mu.Lock()
	c, ok := o.components[handle]
	o.mu.Unlock()
	if !ok {
		o.fail(api.NewError(api.ErrCodeNotFound, "unknown component").WithContext("handle", handle))
		return
	}
	if err := c.SetConfig("volume.step", step); err != nil {
		o.fail(err)
		return
	}
	o.succeed()
}

func (o *Ops) Mute(handle string, muted bool) {
	o.mu.Lock()
	c, ok := o.components[handle]
	o.mu.Unlock()
	if !ok {
		o.fail(api.NewError(api.ErrCodeNotFound, "unknown component").WithContext("handle", handle))
		return
	}
	if err := c.SetConfig("mute", muted); err != nil {
		o.fail(err)
		return
	}
	o.succeed()
}

// Probe is a no-op recording success; Ops does no format sniffing. The FSM
// leaves AutoDetecting only when a component reports PortSettingsChanged,
// and the source built by BuildFileGraph never reports one.
func (o *Ops) Probe(handle string) {
	o.succeed()
}

func (o *Ops) StoreConfig(handle string, key string, value any) {
	o.mu.Lock()
	c, ok := o.components[handle]
	o.mu.Unlock()
	if !ok {
		o.fail(api.NewError(api.ErrCodeNotFound, "unknown component").WithContext("handle", handle))
		return
	}
	if err := c.SetConfig(key, value); err != nil {
		o.fail(err)
		return
	}
	o.succeed()
}

// StoreSkip is called for a skip requested mid-auto-detection (§4.6
// "Tie-breaks and edge cases"). It records only that the op succeeded: the
// skip itself is not stored and is not replayed once probing completes.
func (o *Ops) StoreSkip() {
	o.succeed()
}

func (o *Ops) TearDownTunnels() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.tunnels = make(map[string]Tunnel)
	o.succeed()
}

func (o *Ops) DestroyGraph() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.components = make(map[string]api.ComponentOps)
	o.succeed()
}

// --- poll-able slots ---------------------------------------------------

func (o *Ops) LastOpSucceeded() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.lastOpSucceeded
}

func (o *Ops) LastError() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.lastErr
}

func (o *Ops) IsTransComplete(handle string, state api.State) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.round != 0 && o.transRound[transKey{handle, state}] == o.round
}

func (o *Ops) IsPortEnablingComplete(handle string, port int) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.round != 0 && o.portEnablingRound[portKey{handle, port}] == o.round
}

func (o *Ops) IsPortDisablingComplete(handle string, port int) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.round != 0 && o.portDisablingRound[portKey{handle, port}] == o.round
}

func (o *Ops) IsEndOfPlay() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.endOfPlay
}

func (o *Ops) IsLastComponent(handle string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.lastComponent[handle]
}

func (o *Ops) succeed() {
	o.mu.Lock()
	o.lastOpSucceeded = true
	o.lastErr = nil
	o.mu.Unlock()
}

func (o *Ops) fail(err error) {
	o.mu.Lock()
	o.lastOpSucceeded = false
	o.lastErr = err
	o.mu.Unlock()
}

// --- api.EventListener: fan-in from every registered component ---------

func (o *Ops) OnCommandComplete(componentID string, ev api.CommandCompleteEvent) {
	o.mu.Lock()
	if ev.HasState {
		o.transRound[transKey{componentID, ev.State}] = o.round
	}
	switch ev.Cmd {
	case api.CommandPortEnable:
		o.portEnablingRound[portKey{componentID, ev.Port}] = o.round
	case api.CommandPortDisable:
		o.portDisablingRound[portKey{componentID, ev.Port}] = o.round
	}
	o.lastComponent[componentID] = true
	o.mu.Unlock()

	// Nudge the graph thread to re-check its guards: a real Processor
	// reports completion asynchronously, and nothing else would notice
	// a guard becoming true between Dispatch calls.
	o.pushEvent(concurrency.GraphEvent{Command: &ev})
}

func (o *Ops) OnError(componentID string, ev api.ErrorEvent) {
	o.fail(ev.Err)
	o.pushEvent(concurrency.GraphEvent{Error: &ev})
}

// OnPortSettingsChanged forwards a format-change report into the graph
// thread, the only path that can move GraphAutoDetecting into Configuring
// or GraphExecuting into Reconfiguring (§4.6).
func (o *Ops) OnPortSettingsChanged(componentID string, ev api.PortSettingsChangedEvent) {
	o.pushEvent(concurrency.GraphEvent{PortChg: &ev})
}

func (o *Ops) OnBufferFlag(componentID string, ev api.BufferFlagEvent) {
	if ev.Flags.Has(api.FlagEOS) {
		o.mu.Lock()
		o.endOfPlay = true
		o.mu.Unlock()
	}
	o.pushEvent(concurrency.GraphEvent{BufFlag: &ev})
}

var _ api.EventListener = (*Ops)(nil)

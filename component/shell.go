// File: component/shell.go
// Package component implements api.ComponentOps (spec §4.4).
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Component is the IL-style public façade a client or graph op talks to.
// Grounded on the teacher's client/facade.go (a thin struct validating
// inline, then forwarding onto a worker) and server/hioload.go (wiring a
// kernel-equivalent, a processor-equivalent, and a listener fan-out behind
// one constructor). Component itself implements api.EventListener so it can
// register with its own Processor and fan events out to every listener a
// graph or test has registered, since §4.4 allows more than one observer.

package component

import (
	"sync"

	"github.com/momentics/tizonia-go/api"
	"github.com/momentics/tizonia-go/logging"
	"github.com/momentics/tizonia-go/metrics"
)

// Kernel is the subset of kernel.Kernel Component depends on, narrowed to
// api.KernelOps plus the pool accessor UseBuffer/AllocateBuffer need.
type Kernel interface {
	api.KernelOps
	Pool() api.BufferPool
}

// Component wires a Kernel and a Processor behind api.ComponentOps.
type Component struct {
	name string
	role string

	kernel    Kernel
	processor api.ProcessorOps

	mu        sync.RWMutex
	config    map[string]any
	listeners []api.EventListener
}

// New constructs a Component over a kernel. Call SetProcessor once the
// processor has been built with this Component passed as its
// api.EventListener (see processor.New) — the two are constructed in two
// steps since each needs a reference to the other.
func New(name, role string, kernel Kernel) *Component {
	return &Component{
		name:   name,
		role:   role,
		kernel: kernel,
		config: make(map[string]any),
	}
}

// SetProcessor binds the processor servant driving this component's state
// machine and buffer flow. Must be called before any other method.
func (c *Component) SetProcessor(p api.ProcessorOps) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.processor = p
}

func (c *Component) Name() string    { return c.name }
func (c *Component) Role() string    { return c.role }
func (c *Component) State() api.State { return c.processor.State() }

func (c *Component) Kernel() api.KernelOps { return c.kernel }

func (c *Component) GetParameter(index api.PortIndexType, port int) (api.PortParams, error) {
	p, ok := c.kernel.Port(port)
	if !ok {
		return api.PortParams{}, api.NewError(api.ErrCodeBadParameter, "unknown port").WithContext("port", port)
	}
	return p.Params(), nil
}

func (c *Component) SetParameter(index api.PortIndexType, port int, params api.PortParams) error {
	p, ok := c.kernel.Port(port)
	if !ok {
		return api.NewError(api.ErrCodeBadParameter, "unknown port").WithContext("port", port)
	}
	if p.Enabled() {
		return api.NewError(api.ErrCodeIncorrectStateOperation, "cannot set parameters on an enabled port").WithContext("port", port)
	}
	return p.SetParams(params)
}

func (c *Component) GetConfig(key string) (any, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.config[key]
	if !ok {
		return nil, api.NewError(api.ErrCodeNotFound, "config key not set").WithContext("key", key)
	}
	return v, nil
}

func (c *Component) SetConfig(key string, value any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.config[key] = value
	return nil
}

// SendCommand validates nothing beyond what Processor will reject, and
// forwards asynchronously (spec §4.4: "returns once accepted, not once
// complete").
func (c *Component) SendCommand(cmd api.Command, target api.State, port int) error {
	metrics.Default().ObserveCommand(c.name, cmd)
	logging.Default().Component(c.name, c.role).WithFields(map[string]any{
		"command": cmd.String(),
		"target":  target.String(),
		"port":    port,
	}).Debug("command posted")
	return c.processor.Post(api.MailboxMessage{Class: api.MsgSendCommand, Cmd: cmd, Target: target, Port: port})
}

// EmptyThisBuffer delivers a filled input buffer to the named port and
// nudges the BuffersReady loop.
func (c *Component) EmptyThisBuffer(port int, b api.BufferHeader) error {
	if err := c.kernel.DeliverBuffer(port, b); err != nil {
		return err
	}
	return c.processor.Post(api.MailboxMessage{Class: api.MsgBuffersReady, Port: port})
}

// FillThisBuffer delivers an empty output buffer to the named port awaiting
// fill, and nudges the BuffersReady loop.
func (c *Component) FillThisBuffer(port int, b api.BufferHeader) error {
	if err := c.kernel.DeliverBuffer(port, b); err != nil {
		return err
	}
	return c.processor.Post(api.MailboxMessage{Class: api.MsgBuffersReady, Port: port})
}

func (c *Component) UseBuffer(port int, size int) (api.BufferHeader, error) {
	pool := c.kernel.Pool()
	if pool == nil {
		return api.BufferHeader{}, api.NewError(api.ErrCodeInsufficientResources, "no buffer pool configured")
	}
	b := pool.Get(size)
	b.PortID = port
	metrics.Default().SetPoolInUse(c.name, pool.Stats())
	return b, nil
}

func (c *Component) AllocateBuffer(port int, size int) (api.BufferHeader, error) {
	return c.UseBuffer(port, size)
}

func (c *Component) FreeBuffer(port int, b api.BufferHeader) error {
	b.Release()
	if pool := c.kernel.Pool(); pool != nil {
		metrics.Default().SetPoolInUse(c.name, pool.Stats())
	}
	return nil
}

func (c *Component) AddEventListener(l api.EventListener) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, l)
}

// The methods below implement api.EventListener so Component can sit
// between its Processor and any number of registered observers.

func (c *Component) OnCommandComplete(componentID string, ev api.CommandCompleteEvent) {
	logging.Default().Component(c.name, c.role).WithField("command", ev.Cmd.String()).Debug("command complete")
	for _, l := range c.snapshot() {
		l.OnCommandComplete(componentID, ev)
	}
}

func (c *Component) OnError(componentID string, ev api.ErrorEvent) {
	logging.Default().Component(c.name, c.role).WithField("port", ev.Port).WithError(ev.Err).Warn("component error")
	for _, l := range c.snapshot() {
		l.OnError(componentID, ev)
	}
}

func (c *Component) OnPortSettingsChanged(componentID string, ev api.PortSettingsChangedEvent) {
	for _, l := range c.snapshot() {
		l.OnPortSettingsChanged(componentID, ev)
	}
}

func (c *Component) OnBufferFlag(componentID string, ev api.BufferFlagEvent) {
	for _, l := range c.snapshot() {
		l.OnBufferFlag(componentID, ev)
	}
}

func (c *Component) snapshot() []api.EventListener {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]api.EventListener, len(c.listeners))
	copy(out, c.listeners)
	return out
}

var (
	_ api.ComponentOps  = (*Component)(nil)
	_ api.EventListener = (*Component)(nil)
)

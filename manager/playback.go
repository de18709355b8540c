// File: manager/playback.go
// Package manager implements the playback manager (spec §4.7).
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Manager owns the playlist iterator and a small set of named graph
// factories, one per content source / protocol family, and translates user
// control events into either "skip within the current graph" or "tear down
// and bring up a different graph". Grounded on the façade/orchestration
// shape of the teacher's server/run.go Run-loop sequencing, generalized from
// "accept connections, dispatch to workers" to "advance tracks, dispatch to
// graphs".

package manager

import (
	"sync"
	"time"

	"github.com/momentics/tizonia-go/api"
	"github.com/momentics/tizonia-go/core/concurrency"
	"github.com/momentics/tizonia-go/graph"
	"github.com/momentics/tizonia-go/logging"
	"github.com/momentics/tizonia-go/playlist"
)

func controlEvent(kind api.ControlKind) concurrency.GraphEvent {
	ev := api.ControlEvent{Kind: kind}
	return concurrency.GraphEvent{Control: &ev}
}

func controlEvent2(ev api.ControlEvent) concurrency.GraphEvent {
	return concurrency.GraphEvent{Control: &ev}
}

// GraphFactory builds and starts a fresh graph (components, tunnels, Ops,
// FSM) for one URL. Returns the Ops/FSM pair the manager drives.
type GraphFactory func(url string) (*graph.Ops, *graph.FSM, error)

// Selector picks the GraphFactory for a URL, e.g. by scheme or extension.
type Selector func(url string) GraphFactory

// Status mirrors the MPRIS PlaybackStatus values (spec §6).
type Status int

const (
	StatusStopped Status = iota
	StatusPlaying
	StatusPaused
)

func (s Status) String() string {
	switch s {
	case StatusPlaying:
		return "Playing"
	case StatusPaused:
		return "Paused"
	default:
		return "Stopped"
	}
}

// Manager is the cross-graph policy layer (module H).
type Manager struct {
	mu sync.Mutex

	iterator *playlist.Iterator
	selector Selector

	ops    *graph.Ops
	fsm    *graph.FSM
	status Status
	role   string

	resources ResourceClaim

	volume int
	muted  bool

	shutdown chan struct{}
	once     sync.Once
}

// New constructs a Manager. Call Play to bring up the first graph.
// Resource claims are granted unconditionally (NoopResourceClaim); use
// WithResourceClaim to plug in a real Resource Manager client.
func New(iterator *playlist.Iterator, selector Selector) *Manager {
	return &Manager{
		iterator:  iterator,
		selector:  selector,
		resources: NoopResourceClaim{},
		shutdown:  make(chan struct{}),
	}
}

// WithResourceClaim overrides the manager's ResourceClaim. Call before Play.
func (m *Manager) WithResourceClaim(rc ResourceClaim) *Manager {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resources = rc
	return m
}

// Play starts the current graph if one is already up, or advances the
// playlist and brings one up.
func (m *Manager) Play() error {
	m.mu.Lock()
	fsm := m.fsm
	m.mu.Unlock()

	if fsm == nil {
		return m.advance()
	}
	logging.Default().WithField("command", "play").Debug("user control event")
	fsm.Dispatch(controlEvent(api.ControlPlay))
	m.setStatus(StatusPlaying)
	return nil
}

// PauseResume toggles Paused/Playing; the original's scripted-control
// equivalent is a SIGUSR1-style pause/resume signal.
func (m *Manager) PauseResume() {
	m.mu.Lock()
	fsm, status := m.fsm, m.status
	m.mu.Unlock()
	if fsm == nil {
		return
	}
	if status == StatusPaused {
		logging.Default().WithField("command", "play").Debug("user control event")
		fsm.Dispatch(controlEvent(api.ControlPlay))
		m.setStatus(StatusPlaying)
		return
	}
	logging.Default().WithField("command", "pause").Debug("user control event")
	fsm.Dispatch(controlEvent(api.ControlPause))
	m.setStatus(StatusPaused)
}

// Stop tears the current graph down; the original's scripted-control
// equivalent is a SIGTERM-style stop signal.
func (m *Manager) Stop() {
	m.mu.Lock()
	fsm := m.fsm
	m.mu.Unlock()
	if fsm != nil {
		logging.Default().WithField("command", "stop").Debug("user control event")
		fsm.Dispatch(controlEvent(api.ControlStop))
	}
	m.setStatus(StatusStopped)
}

// Next tells the current graph to skip, then advances the playlist and
// brings up a fresh graph for the next track, stopping the old one; the
// original's scripted-control equivalent is a SIGUSR2-style
// next-track signal.
func (m *Manager) Next() error {
	m.mu.Lock()
	fsm := m.fsm
	m.mu.Unlock()
	if fsm != nil {
		logging.Default().WithField("command", "next").Debug("user control event")
		fsm.Dispatch(controlEvent(api.ControlNext))
	}
	return m.advance()
}

// Previous re-enters the prior playlist entry; the original's
// scripted-control equivalent is a SIGHUP-style previous-track signal.
func (m *Manager) Previous() error {
	m.mu.Lock()
	url, _, err := m.iterator.Previous()
	m.mu.Unlock()
	if err != nil {
		return err
	}
	return m.bringUp(url)
}

func (m *Manager) Seek(offset int64) {
	m.mu.Lock()
	fsm := m.fsm
	m.mu.Unlock()
	if fsm != nil {
		fsm.Dispatch(controlEvent2(api.ControlEvent{Kind: api.ControlSeek, SeekOffset: int(offset)}))
	}
}

func (m *Manager) SetVolume(step int) {
	m.mu.Lock()
	m.volume += step
	fsm := m.fsm
	m.mu.Unlock()
	if fsm != nil {
		fsm.Dispatch(controlEvent2(api.ControlEvent{Kind: api.ControlVolume, VolumeStep: step}))
	}
}

func (m *Manager) SetMute(muted bool) {
	m.mu.Lock()
	m.muted = muted
	fsm := m.fsm
	m.mu.Unlock()
	if fsm != nil {
		fsm.Dispatch(controlEvent(api.ControlMute))
	}
}

// Quit tears the current graph down, releases its resource claim, and
// stops the manager's watch loop.
func (m *Manager) Quit() {
	logging.Default().Debug("manager quitting")
	m.Stop()
	m.mu.Lock()
	role, resources := m.role, m.resources
	m.role = ""
	m.mu.Unlock()
	resources.Release(role)
	m.once.Do(func() { close(m.shutdown) })
}

// advance asks the playlist iterator for the next URL and brings up its
// graph, or idles if the playlist is exhausted (spec §4.7, Walkthrough 4).
func (m *Manager) advance() error {
	m.mu.Lock()
	url, _, err := m.iterator.Next()
	m.mu.Unlock()
	if err != nil {
		if apiErr, ok := err.(*api.Error); ok && apiErr.Code == api.ErrCodeEndOfList {
			m.mu.Lock()
			role, resources := m.role, m.resources
			m.role = ""
			m.mu.Unlock()
			resources.Release(role)
			m.setStatus(StatusStopped)
			return nil
		}
		return err
	}
	return m.bringUp(url)
}

func (m *Manager) bringUp(url string) error {
	m.mu.Lock()
	prevOps, prevFSM, prevRole, resources := m.ops, m.fsm, m.role, m.resources
	m.mu.Unlock()
	if prevFSM != nil {
		prevFSM.Dispatch(controlEvent(api.ControlStop))
		resources.Release(prevRole)
		_ = prevOps
	}

	role := contentRole(url)
	if err := resources.Claim(role); err != nil {
		return err
	}

	factory := m.selector(url)
	ops, fsm, err := factory(url)
	if err != nil {
		resources.Release(role)
		return err
	}
	logging.Default().WithFields(map[string]any{"url": url, "role": role}).Info("bringing up graph")
	fsm.Start()

	m.mu.Lock()
	m.ops, m.fsm, m.role = ops, fsm, role
	m.mu.Unlock()
	m.setStatus(StatusPlaying)
	m.watch(fsm)
	return nil
}

// contentRole derives the resource-claim role from a URL's extension, the
// same granularity the original per-service graph types (tizspotifygraph,
// tizgmusicgraph, ...) keyed their resource needs on.
func contentRole(url string) string {
	for i := len(url) - 1; i >= 0 && url[i] != '/'; i-- {
		if url[i] == '.' {
			return url[i+1:]
		}
	}
	return "unknown"
}

// watch polls the new graph for completion and advances the playlist once
// it reaches Stopped, the simplest faithful rendering of "manager receives
// EndOfList, FSM reaches Stopped, manager issues destroy_graph" without
// requiring the FSM to expose its own event stream.
func (m *Manager) watch(fsm *graph.FSM) {
	go func() {
		ticker := time.NewTicker(50 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-m.shutdown:
				return
			case <-ticker.C:
				m.mu.Lock()
				current := m.fsm
				m.mu.Unlock()
				if current != fsm {
					return // superseded by a newer graph
				}
				if fsm.State() == api.GraphStopped || fsm.State() == api.GraphError {
					_ = m.advance()
					return
				}
			}
		}
	}()
}

func (m *Manager) setStatus(s Status) {
	m.mu.Lock()
	m.status = s
	m.mu.Unlock()
}

// --- state surface for CLI/MPRIS collaborators (spec §6) ----------------

func (m *Manager) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}

func (m *Manager) Metadata() playlist.Metadata {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, meta := m.iterator.Current()
	return meta
}

func (m *Manager) Volume() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.volume
}

func (m *Manager) Muted() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.muted
}

func (m *Manager) CanGoNext() bool  { return true }
func (m *Manager) CanPlay() bool    { return true }
func (m *Manager) CanPause() bool   { return true }
func (m *Manager) CanSeek() bool    { return true }
func (m *Manager) CanControl() bool { return true }

// File: api/events.go
// Package api defines the upward events a component emits (spec §4.4, §6).
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package api

// Command identifies the kind of SendCommand a client issued (spec §4.4).
type Command int

const (
	CommandStateSet Command = iota
	CommandFlush
	CommandPortDisable
	CommandPortEnable
)

func (c Command) String() string {
	switch c {
	case CommandStateSet:
		return "StateSet"
	case CommandFlush:
		return "Flush"
	case CommandPortDisable:
		return "PortDisable"
	case CommandPortEnable:
		return "PortEnable"
	default:
		return "Unknown"
	}
}

// State is one of the IL lifecycle states (spec §3, §6).
type State int

const (
	StateLoaded State = iota
	StateIdle
	StateExecuting
	StatePaused
	StateWaitForResources
)

func (s State) String() string {
	switch s {
	case StateLoaded:
		return "Loaded"
	case StateIdle:
		return "Idle"
	case StateExecuting:
		return "Executing"
	case StatePaused:
		return "Paused"
	case StateWaitForResources:
		return "WaitForResources"
	default:
		return "Unknown"
	}
}

// CommandCompleteEvent reports a command's completion upward (spec §6).
type CommandCompleteEvent struct {
	Cmd      Command
	Port     int // valid for PortDisable/PortEnable/Flush; -1 otherwise
	State    State
	HasState bool // true when Cmd == CommandStateSet
}

// ErrorEvent reports an unrecoverable error upward (spec §6, §7).
type ErrorEvent struct {
	Code ErrorCode
	Port int // -1 if not port-scoped
	Err  error
}

// PortIndexType enumerates which parameter set changed (spec §4.3).
type PortIndexType int

const (
	IndexParamPortDefinition PortIndexType = iota
	IndexParamAudioPcm
)

// PortSettingsChangedEvent is emitted when a decoder detects a mid-stream
// format change on one of its output ports (spec §4.3).
type PortSettingsChangedEvent struct {
	Port  int
	Index PortIndexType
}

// BufferFlagEvent reports flags observed on a released buffer, most
// importantly FlagEOS (spec §6, Boundary B-3).
type BufferFlagEvent struct {
	Port  int
	Flags BufferFlags
}

// EventListener receives the four upward event kinds a component shell can
// emit. A playback graph's graph.Ops is the one canonical listener (it
// pushes each event on to the graph's FSM), but tests substitute a
// recording fake (spec §4.4: "emits events upward via a
// callback").
type EventListener interface {
	OnCommandComplete(componentID string, ev CommandCompleteEvent)
	OnError(componentID string, ev ErrorEvent)
	OnPortSettingsChanged(componentID string, ev PortSettingsChangedEvent)
	OnBufferFlag(componentID string, ev BufferFlagEvent)
}

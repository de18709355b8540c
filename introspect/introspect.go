// File: introspect/introspect.go
// Package introspect implements the per-component introspection surface
// (spec §6 "Introspection surface").
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Re-expresses the original's introspection XML as a structured,
// JSON-serializable enumeration (design note §9): one Interface value per
// component, built by hand from its role rather than reflected, since Go
// components declare their surface through api.ComponentOps, not runtime
// metadata.

package introspect

// ArgDirection is the direction of one method argument.
type ArgDirection int

const (
	ArgIn ArgDirection = iota
	ArgOut
)

// Arg describes one method or signal argument.
type Arg struct {
	Name      string       `json:"name"`
	Type      string       `json:"type"`
	Direction ArgDirection `json:"direction"`
}

// Method describes one callable operation on a component's interface.
type Method struct {
	Name string `json:"name"`
	Args []Arg  `json:"args"`
}

// Signal describes one upward event a component may emit.
type Signal struct {
	Name string `json:"name"`
	Args []Arg  `json:"args"`
}

// Property describes one readable/writable component attribute.
type Property struct {
	Name      string `json:"name"`
	Type      string `json:"type"`
	Readable  bool   `json:"readable"`
	Writable  bool   `json:"writable"`
}

// Interface is the full introspection record for one component.
type Interface struct {
	Name       string     `json:"name"`
	Methods    []Method   `json:"methods"`
	Signals    []Signal   `json:"signals"`
	Properties []Property `json:"properties"`
}

// ComponentShellInterface is the fixed introspection record every
// api.ComponentOps exposes, since the IL-style method set is the same
// across components (spec §4.4).
func ComponentShellInterface(name string) Interface {
	return Interface{
		Name: name,
		Methods: []Method{
			{Name: "GetParameter", Args: []Arg{{Name: "index", Type: "PortIndexType", Direction: ArgIn}, {Name: "port", Type: "int", Direction: ArgIn}, {Name: "params", Type: "PortParams", Direction: ArgOut}}},
			{Name: "SetParameter", Args: []Arg{{Name: "index", Type: "PortIndexType", Direction: ArgIn}, {Name: "port", Type: "int", Direction: ArgIn}, {Name: "params", Type: "PortParams", Direction: ArgIn}}},
			{Name: "GetConfig", Args: []Arg{{Name: "key", Type: "string", Direction: ArgIn}, {Name: "value", Type: "any", Direction: ArgOut}}},
			{Name: "SetConfig", Args: []Arg{{Name: "key", Type: "string", Direction: ArgIn}, {Name: "value", Type: "any", Direction: ArgIn}}},
			{Name: "SendCommand", Args: []Arg{{Name: "cmd", Type: "Command", Direction: ArgIn}, {Name: "target", Type: "State", Direction: ArgIn}, {Name: "port", Type: "int", Direction: ArgIn}}},
			{Name: "EmptyThisBuffer", Args: []Arg{{Name: "port", Type: "int", Direction: ArgIn}, {Name: "buffer", Type: "BufferHeader", Direction: ArgIn}}},
			{Name: "FillThisBuffer", Args: []Arg{{Name: "port", Type: "int", Direction: ArgIn}, {Name: "buffer", Type: "BufferHeader", Direction: ArgIn}}},
		},
		Signals: []Signal{
			{Name: "CommandComplete", Args: []Arg{{Name: "cmd", Type: "Command", Direction: ArgOut}, {Name: "port", Type: "int", Direction: ArgOut}, {Name: "state", Type: "State", Direction: ArgOut}}},
			{Name: "Error", Args: []Arg{{Name: "errorCode", Type: "ErrorCode", Direction: ArgOut}, {Name: "port", Type: "int", Direction: ArgOut}}},
			{Name: "PortSettingsChanged", Args: []Arg{{Name: "port", Type: "int", Direction: ArgOut}, {Name: "indexType", Type: "PortIndexType", Direction: ArgOut}}},
			{Name: "BufferFlag", Args: []Arg{{Name: "port", Type: "int", Direction: ArgOut}, {Name: "flags", Type: "BufferFlags", Direction: ArgOut}}},
		},
		Properties: []Property{
			{Name: "State", Type: "State", Readable: true, Writable: false},
			{Name: "Role", Type: "string", Readable: true, Writable: false},
		},
	}
}

// MPRISInterface is the fixed control-surface record exposed once per
// playback manager (spec §6 "CLI / MPRIS surface").
func MPRISInterface() Interface {
	return Interface{
		Name: "org.mpris.MediaPlayer2.Player",
		Methods: []Method{
			{Name: "Play"}, {Name: "Pause"}, {Name: "Stop"}, {Name: "Next"}, {Name: "Previous"},
			{Name: "Seek", Args: []Arg{{Name: "offset", Type: "int64", Direction: ArgIn}}},
			{Name: "Mute", Args: []Arg{{Name: "muted", Type: "bool", Direction: ArgIn}}},
		},
		Properties: []Property{
			{Name: "PlaybackStatus", Type: "string", Readable: true},
			{Name: "LoopStatus", Type: "string", Readable: true, Writable: true},
			{Name: "Metadata", Type: "map[string]any", Readable: true},
			{Name: "Volume", Type: "int", Readable: true, Writable: true},
			{Name: "Position", Type: "int64", Readable: true},
			{Name: "CanGoNext", Type: "bool", Readable: true},
			{Name: "CanPlay", Type: "bool", Readable: true},
			{Name: "CanPause", Type: "bool", Readable: true},
			{Name: "CanSeek", Type: "bool", Readable: true},
			{Name: "CanControl", Type: "bool", Readable: true},
		},
	}
}

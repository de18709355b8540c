// File: processor/dispatch_table.go
// Package processor implements api.ProcessorOps (spec §4.3, §6).
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Re-expresses the original processor's single hand-rolled dispatch
// function, which had gaps in its (state, target) coverage (design note §9:
// "the original processor's state-dispatch table has gaps... the spec treats
// those as rejections"), as an explicit transition table (the actions for
// "run" cells live in Processor.runTransition), so every cell is accounted
// for and the WaitForResources->Exe
// gap is an intentional rejection rather than an accident of missing code.

package processor

import "github.com/momentics/tizonia-go/api"

// kind classifies one cell of the state lattice (spec §6).
type kind int

const (
	reject kind = iota // ✗ IncorrectStateTransition
	noop               // — CommandComplete immediately, no action
	run                // ✓ run the transition handler
)

// transitionTable mirrors the lattice in spec §6 exactly: rows are the
// current state, columns the requested target state, in the declared order
// Loaded, Idle, Executing, Paused, WaitForResources.
var transitionTable = [5][5]kind{
	// 			Loaded  Idle   Exe    Paused WaitRes
	/* Loaded  */ {noop, run, reject, reject, run},
	/* Idle    */ {run, noop, run, run, reject},
	/* Exe     */ {reject, run, noop, run, reject},
	/* Paused  */ {reject, run, run, noop, reject},
	/* WaitRes */ {run, reject, reject, reject, noop},
}

func lookup(from, to api.State) kind {
	if int(from) < 0 || int(from) >= len(transitionTable) {
		return reject
	}
	row := transitionTable[from]
	if int(to) < 0 || int(to) >= len(row) {
		return reject
	}
	return row[to]
}

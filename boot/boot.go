// Copyright 2024 The LagaRISC Sandbox authors. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package boot tracks the handoff from hardware reset to the program entry
// point and owns the terminal idle and halt loops.
//
// The TamaGo runtime reset code sets the stack pointer from the linker
// provided memory layout (runtime.ramStart, runtime.ramSize,
// runtime.ramStackOffset) and then calls runtime.hwinit, which must report
// StackReady. The Go main function then transfers control with Enter.
//
//	Reset -> StackEstablished -> EntryRunning -> (Halted)
package boot

import (
	"fmt"
	"sync/atomic"

	"github.com/lagarisc/sandbox-os/internal/cpu"
)

// State represents a boot stage.
type State int32

// Boot stages
const (
	// Reset is the power-on state, no stack nor data segment is assumed.
	Reset State = iota
	// StackEstablished is reached once the reset code set a valid stack.
	StackEstablished
	// EntryRunning is reached when control is given to the program entry
	// point, it is terminal on the success path.
	EntryRunning
	// Halted is reached through Halt only, it has no transitions out.
	Halted
)

func (s State) String() string {
	switch s {
	case Reset:
		return "Reset"
	case StackEstablished:
		return "StackEstablished"
	case EntryRunning:
		return "EntryRunning"
	case Halted:
		return "Halted"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

// Park is invoked in a loop, forever, once the core has nothing left to do.
// Each invocation waits for the next wake-up event and may return.
//
// It defaults to the wait-for-interrupt instruction.
var Park = cpu.WaitForInterrupt

var state atomic.Int32

// Current returns the current boot stage.
func Current() State {
	return State(state.Load())
}

// StackReady records that the reset code established the stack, it must be
// called from runtime.hwinit.
//
//go:nosplit
func StackReady() {
	state.CompareAndSwap(int32(Reset), int32(StackEstablished))
}

// Enter transfers control to the program entry point and never returns.
//
// Once entry returns the core idles forever in EntryRunning, without any
// further output.
func Enter(entry func()) {
	if !state.CompareAndSwap(int32(StackEstablished), int32(EntryRunning)) {
		panic(fmt.Sprintf("boot: entry from %s", Current()))
	}

	entry()

	for {
		Park()
	}
}

// Halt moves the core to the Halted state and waits forever, it never
// returns.
func Halt() {
	state.Store(int32(Halted))

	for {
		Park()
	}
}

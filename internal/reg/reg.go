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

// Package reg provides ordered access to byte wide memory mapped registers.
//
// Every Read and Write performs exactly one access to the physical address,
// in program order with respect to all other register accesses. On riscv64
// the access is issued by assembly fenced on both sides, therefore the
// compiler can neither elide, merge nor reorder it.
//
// Offsets are not validated, an offset outside of the peripheral window is a
// programming error.
package reg

// Block represents the register window of a single peripheral.
//
// A Block must have exactly one owner for the lifetime of the program, as
// device state changes through hardware side effects that no other holder
// can observe.
type Block struct {
	// Base is the physical address of the register window.
	Base uintptr
}

// Read returns the value latched by the hardware at the given offset.
func (b Block) Read(off uint8) byte {
	return read8(b.Base + uintptr(off))
}

// Write stores val at the given offset.
func (b Block) Write(off uint8, val byte) {
	write8(b.Base+uintptr(off), val)
}

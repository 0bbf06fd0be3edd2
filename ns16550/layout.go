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

package ns16550

// Layout maps NS16550 registers to offsets within the register window.
//
// Registers sharing an address on real silicon (RBR/THR/DLL, IER/DLM) share
// an offset, the divisor latch bit in LCR selects between them.
type Layout struct {
	RBR uint8
	THR uint8
	DLL uint8
	IER uint8
	DLM uint8
	IIR uint8
	FCR uint8
	LCR uint8
	MCR uint8
	LSR uint8
	MSR uint8
	SCR uint8
}

// Standard is the byte spaced 16550 register map (QEMU virt, most SoCs).
var Standard = &Layout{
	RBR: 0x0,
	THR: 0x0,
	DLL: 0x0,
	IER: 0x1,
	DLM: 0x1,
	IIR: 0x2,
	FCR: 0x2,
	LCR: 0x3,
	MCR: 0x4,
	LSR: 0x5,
	MSR: 0x6,
	SCR: 0x7,
}

// Sandbox is the register map of the HDL simulation bench peripheral, which
// decodes IIR and FCR at distinct offsets.
var Sandbox = &Layout{
	RBR: 0x0,
	THR: 0x0,
	DLL: 0x0,
	IER: 0x1,
	DLM: 0x1,
	IIR: 0x2,
	FCR: 0x3,
	LCR: 0x4,
	MCR: 0x5,
	LSR: 0x6,
	MSR: 0x7,
	SCR: 0x8,
}

// Size returns the length of the register window.
func (l *Layout) Size() int {
	last := l.RBR

	for _, off := range []uint8{l.IER, l.IIR, l.FCR, l.LCR, l.MCR, l.LSR, l.MSR, l.SCR} {
		if off > last {
			last = off
		}
	}

	return int(last) + 1
}

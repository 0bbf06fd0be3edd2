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

//go:build tamago && riscv64

package main

import (
	_ "unsafe"
)

// QEMU virt memory map
const (
	// Console UART (NS16550)
	UART0Base = 0x10000000

	// Runtime memory, starting at the fu540 runtime.ramStart (0x80000000)
	ramLen = 0x08000000 // 128MB
)

// The SoC package defines runtime.ramStart and runtime.ramStackOffset, the
// reset code establishes the stack at their sum with ramSize before any Go
// code runs.

//go:linkname ramSize runtime.ramSize
var ramSize uint64 = ramLen

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

// Package console holds the process wide serial console.
//
// The console is created once, by Init, before any output is attempted and
// lives for the whole life of the program. Every component, including the
// fault path and the Go runtime print functions, writes to the same UART
// through it.
//
// Calling Get before Init is a precondition violation.
package console

import (
	"fmt"
	"io"
	"sync"

	"github.com/lagarisc/sandbox-os/ns16550"
)

var crlf = []byte{'\r', '\n'}

// Console serializes whole messages on the shared UART.
type Console struct {
	sync.Mutex

	uart *ns16550.UART
}

var global *Console

// Init builds and initializes the console UART over regs, decoded with the
// given layout (nil for ns16550.Standard).
//
// Init must be called exactly once, before the first output. Later calls
// are ignored and leave the hardware untouched.
func Init(regs ns16550.Registers, layout *ns16550.Layout) {
	if global != nil {
		return
	}

	uart := &ns16550.UART{
		Regs:   regs,
		Layout: layout,
	}

	uart.Init()

	global = &Console{
		uart: uart,
	}
}

// Get returns the console instance, Init must have been called already.
func Get() *Console {
	return global
}

// UART returns the underlying driver instance.
func (c *Console) UART() *ns16550.UART {
	return c.uart
}

// Write transmits buf as a single message.
func (c *Console) Write(buf []byte) (int, error) {
	c.Lock()
	defer c.Unlock()

	return c.uart.Write(buf)
}

// WriteString transmits s as a single message.
func (c *Console) WriteString(s string) (int, error) {
	c.Lock()
	defer c.Unlock()

	return c.uart.WriteString(s)
}

// Println transmits s followed by CR LF.
func (c *Console) Println(s string) {
	c.Lock()
	defer c.Unlock()

	c.uart.WriteString(s)
	c.uart.Write(crlf)
}

// Print transmits s on the global console.
func Print(s string) {
	Get().WriteString(s)
}

// Println transmits s followed by CR LF on the global console.
func Println(s string) {
	Get().Println(s)
}

// Printf formats according to format on the global console, the whole
// result is transmitted as one message.
func Printf(format string, a ...any) {
	fmt.Fprintf(Get(), format, a...)
}

// Output is the per character sink for the Go runtime print functions
// (printk). LF is expanded to CR LF.
//
// Output does not take the console lock as the runtime may print while the
// current goroutine owns it, it drops characters before Init.
func Output(c byte) {
	if global == nil {
		return
	}

	if c == '\n' {
		global.uart.Tx('\r')
	}

	global.uart.Tx(c)
}

// Emergency returns a writer for last words, usable while another goroutine,
// or the current one, holds the console lock. The lock is taken when
// available and never released, as nothing is expected to run afterwards.
//
// Before Init the returned writer discards everything.
func Emergency() io.Writer {
	if global == nil {
		return io.Discard
	}

	global.TryLock()

	return global.uart
}

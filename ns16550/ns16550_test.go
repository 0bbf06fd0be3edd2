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

package ns16550_test

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/lagarisc/sandbox-os/ns16550"
	"github.com/lagarisc/sandbox-os/ns16550/sim"
)

func newUART(t *testing.T, layout *ns16550.Layout) (*ns16550.UART, *sim.Device, *bytes.Buffer) {
	t.Helper()
	out := &bytes.Buffer{}
	dev := sim.NewDevice(layout, out)
	return &ns16550.UART{Regs: dev, Layout: layout}, dev, out
}

// lsrCounter counts status register polls.
type lsrCounter struct {
	*sim.Device
	lsr   uint8
	polls int
}

func (c *lsrCounter) Read(off uint8) byte {
	if off == c.lsr {
		c.polls++
	}
	return c.Device.Read(off)
}

func TestInitSequence(t *testing.T) {
	for _, test := range []struct {
		name   string
		layout *ns16550.Layout
		want   []sim.Access
	}{
		{
			name:   "standard",
			layout: ns16550.Standard,
			want: []sim.Access{
				{Offset: 1, Value: 0x00}, // IER
				{Offset: 3, Value: 0x80}, // LCR.DLAB
				{Offset: 0, Value: 0x01}, // DLL
				{Offset: 1, Value: 0x00}, // DLM
				{Offset: 3, Value: 0x03}, // LCR 8N1
				{Offset: 2, Value: 0x07}, // FCR
				{Offset: 4, Value: 0x03}, // MCR
			},
		}, {
			name:   "sandbox",
			layout: ns16550.Sandbox,
			want: []sim.Access{
				{Offset: 1, Value: 0x00},
				{Offset: 4, Value: 0x80},
				{Offset: 0, Value: 0x01},
				{Offset: 1, Value: 0x00},
				{Offset: 4, Value: 0x03},
				{Offset: 3, Value: 0x07},
				{Offset: 5, Value: 0x03},
			},
		},
	} {
		t.Run(test.name, func(t *testing.T) {
			uart, dev, _ := newUART(t, test.layout)

			if uart.Ready() {
				t.Fatal("Ready() before Init")
			}

			uart.Init()

			if !uart.Ready() {
				t.Fatal("not Ready() after Init")
			}
			if diff := cmp.Diff(test.want, dev.Writes()); diff != "" {
				t.Fatalf("Got diff: %s", diff)
			}
			if got := dev.Divisor(); got != 1 {
				t.Fatalf("Divisor() = %d, want 1", got)
			}
			if got := dev.Reg(test.layout.LCR); got != 0x03 {
				t.Fatalf("LCR = %#x, want 0x03", got)
			}
		})
	}
}

func TestInitDefaults(t *testing.T) {
	dev := sim.NewDevice(nil, nil)
	uart := &ns16550.UART{Regs: dev}
	uart.Init()

	if uart.Layout != ns16550.Standard {
		t.Errorf("Layout not defaulted to Standard")
	}
	if uart.Clock != ns16550.DefaultClock || uart.Baud != ns16550.DefaultBaud {
		t.Errorf("Got clock %d baud %d, want defaults", uart.Clock, uart.Baud)
	}
}

func TestInitOneShot(t *testing.T) {
	uart, dev, _ := newUART(t, ns16550.Standard)
	uart.Init()
	n := len(dev.Writes())

	uart.Baud = 9600
	uart.Init()

	if got := len(dev.Writes()); got != n {
		t.Fatalf("second Init wrote %d registers", got-n)
	}
	if got := dev.Divisor(); got != 1 {
		t.Fatalf("Divisor() = %d after second Init, want 1", got)
	}
}

func TestDivisor(t *testing.T) {
	for _, test := range []struct {
		clock, baud uint32
		want        uint16
	}{
		{clock: 1843200, baud: 115200, want: 1},
		{clock: 1843200, baud: 9600, want: 12},
		{clock: 1843200, baud: 300, want: 384},
		{clock: 1843200, baud: 230400, want: 1},
	} {
		dev := sim.NewDevice(nil, nil)
		uart := &ns16550.UART{Regs: dev, Clock: test.clock, Baud: test.baud}
		uart.Init()

		if got := dev.Divisor(); got != test.want {
			t.Errorf("clock %d baud %d: Divisor() = %d, want %d", test.clock, test.baud, got, test.want)
		}
	}
}

func TestOutputBeforeInit(t *testing.T) {
	uart, dev, _ := newUART(t, ns16550.Standard)

	uart.Tx('x')
	if n, err := uart.Write([]byte("lost")); n != 4 || err != nil {
		t.Fatalf("Write() = %d, %v", n, err)
	}

	if w := dev.Writes(); len(w) != 0 {
		t.Fatalf("got %d register writes before Init", len(w))
	}
}

func TestNoTransmitBeforeLineSetup(t *testing.T) {
	uart, dev, _ := newUART(t, ns16550.Standard)
	uart.Init()
	uart.Tx('A')

	w := dev.Writes()
	last := w[len(w)-1]

	if last != (sim.Access{Offset: 0, Value: 'A'}) {
		t.Fatalf("last write %+v, want THR 'A'", last)
	}

	for i, a := range w[:len(w)-1] {
		if a.Offset == 0 && a.Value != 0x01 {
			t.Fatalf("write %d to offset 0 before line setup: %+v", i, a)
		}
	}
}

func TestWriteOrder(t *testing.T) {
	all := make([]byte, 256)
	for i := range all {
		all[i] = byte(i)
	}

	for _, test := range []struct {
		name string
		data []byte
	}{
		{name: "empty"},
		{name: "single", data: []byte("A")},
		{name: "line", data: []byte("Hello World from RISC-V !\r\n")},
		{name: "repeated", data: bytes.Repeat([]byte("ab\n"), 100)},
		{name: "all bytes", data: all},
	} {
		t.Run(test.name, func(t *testing.T) {
			uart, dev, _ := newUART(t, ns16550.Standard)
			dev.BusyPolls = 2
			uart.Init()

			n, err := uart.Write(test.data)
			if err != nil || n != len(test.data) {
				t.Fatalf("Write() = %d, %v, want %d, nil", n, err, len(test.data))
			}
			if diff := cmp.Diff(test.data, dev.Transmitted()); diff != "" {
				t.Fatalf("Got diff: %s", diff)
			}
		})
	}
}

func TestWriteString(t *testing.T) {
	uart, dev, out := newUART(t, ns16550.Standard)
	uart.Init()

	if _, err := uart.WriteString("one\r\n"); err != nil {
		t.Fatal(err)
	}
	if err := uart.WriteByte('2'); err != nil {
		t.Fatal(err)
	}
	if got, want := out.String(), "one\r\n"; got != want {
		t.Fatalf("line output %q, want %q", got, want)
	}
	if err := dev.Flush(); err != nil {
		t.Fatal(err)
	}
	if got, want := out.String(), "one\r\n2"; got != want {
		t.Fatalf("flushed output %q, want %q", got, want)
	}
}

func TestTxPollsStatus(t *testing.T) {
	dev := sim.NewDevice(ns16550.Standard, nil)
	dev.BusyPolls = 3
	regs := &lsrCounter{Device: dev, lsr: ns16550.Standard.LSR}

	uart := &ns16550.UART{Regs: regs}
	uart.Init()

	uart.Tx('a')
	if regs.polls != 1 {
		t.Fatalf("first Tx polled %d times, want 1", regs.polls)
	}

	uart.Tx('b')
	if regs.polls != 5 {
		t.Fatalf("second Tx total polls %d, want 5", regs.polls)
	}

	if got := string(dev.Transmitted()); got != "ab" {
		t.Fatalf("Transmitted() = %q", got)
	}
}

func TestLayoutSize(t *testing.T) {
	if got := ns16550.Standard.Size(); got != 8 {
		t.Errorf("Standard.Size() = %d, want 8", got)
	}
	if got := ns16550.Sandbox.Size(); got != 9 {
		t.Errorf("Sandbox.Size() = %d, want 9", got)
	}
}

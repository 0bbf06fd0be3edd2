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

// Package sim provides host models of the sandbox peripherals, an NS16550
// UART and a halt device, for tests and for the host sandbox harness.
package sim

import (
	"bytes"
	"fmt"
	"io"
	"sync"

	"github.com/lagarisc/sandbox-os/ns16550"
)

const (
	lcrDLAB = 1 << ns16550.LCR_DLAB

	lsrDR   = 1 << ns16550.LSR_DR
	lsrTHRE = 1 << ns16550.LSR_THRE
	lsrTEMT = 1 << ns16550.LSR_TEMT

	iirNoInterrupt = 0x01
	iirFIFO        = 0xc0
)

// Access is a single register write observed by the device.
type Access struct {
	Offset uint8
	Value  byte
}

// Device is a virtual NS16550. It implements ns16550.Registers.
//
// Transmitted characters are line buffered, every completed line (LF
// terminated, CR preserved) is written to Out and reported to OnLine.
type Device struct {
	sync.Mutex

	// Layout defines the decoded register offsets (default:
	// ns16550.Standard).
	Layout *ns16550.Layout
	// Out receives the transmitted stream, one line at a time.
	Out io.Writer
	// OnLine is invoked for each completed line, without line terminators.
	OnLine func(line string)
	// BusyPolls is the number of LSR reads reporting a busy transmitter
	// after each transmitted character.
	BusyPolls int

	regs [16]byte
	dll  byte
	dlm  byte

	busy   int
	line   []byte
	tx     []byte
	rx     []byte
	writes []Access
	err    error
}

// NewDevice returns a virtual NS16550 decoding the given layout, with its
// transmit stream written to out.
func NewDevice(layout *ns16550.Layout, out io.Writer) *Device {
	return &Device{
		Layout: layout,
		Out:    out,
	}
}

func (d *Device) layout() *ns16550.Layout {
	if d.Layout == nil {
		d.Layout = ns16550.Standard
	}

	return d.Layout
}

// decoded reports whether off falls within the register window, recording an
// error otherwise.
func (d *Device) decoded(op string, off uint8) bool {
	if int(off) < d.layout().Size() {
		return true
	}

	d.fail(fmt.Errorf("%s outside register window at offset %#x", op, off))

	return false
}

func (d *Device) fail(err error) {
	if d.err == nil {
		d.err = err
	}
}

func (d *Device) dlab() bool {
	return d.regs[d.layout().LCR]&lcrDLAB != 0
}

// Read implements ns16550.Registers.
func (d *Device) Read(off uint8) (val byte) {
	d.Lock()
	defer d.Unlock()

	l := d.layout()

	if !d.decoded("read", off) {
		return
	}

	switch {
	case off == l.RBR && d.dlab():
		return d.dll
	case off == l.RBR:
		if len(d.rx) == 0 {
			return 0
		}

		val, d.rx = d.rx[0], d.rx[1:]
		return
	case off == l.DLM && d.dlab():
		return d.dlm
	case off == l.LSR:
		if len(d.rx) > 0 {
			val |= lsrDR
		}

		if d.busy > 0 {
			d.busy--
			return
		}

		return val | lsrTHRE | lsrTEMT
	case off == l.IIR:
		val = iirNoInterrupt

		if d.regs[l.FCR]&(1<<ns16550.FCR_FIFOE) != 0 {
			val |= iirFIFO
		}

		return
	case int(off) < len(d.regs):
		return d.regs[off]
	}

	return
}

// Write implements ns16550.Registers.
func (d *Device) Write(off uint8, val byte) {
	d.Lock()
	defer d.Unlock()

	l := d.layout()
	d.writes = append(d.writes, Access{Offset: off, Value: val})

	if !d.decoded("write", off) {
		return
	}

	switch {
	case off == l.THR && d.dlab():
		d.dll = val
	case off == l.THR:
		d.transmit(val)
	case off == l.DLM && d.dlab():
		d.dlm = val
	case int(off) < len(d.regs):
		d.regs[off] = val
	}
}

func (d *Device) transmit(c byte) {
	d.tx = append(d.tx, c)
	d.line = append(d.line, c)
	d.busy = d.BusyPolls

	if c == '\n' {
		d.flush()
	}
}

func (d *Device) flush() (err error) {
	if len(d.line) == 0 {
		return
	}

	if d.Out != nil {
		if _, err = d.Out.Write(d.line); err != nil {
			d.fail(err)
		}
	}

	if d.OnLine != nil {
		d.OnLine(string(bytes.TrimRight(d.line, "\r\n")))
	}

	d.line = d.line[:0]

	return
}

// Flush emits any partially transmitted line.
func (d *Device) Flush() error {
	d.Lock()
	defer d.Unlock()

	return d.flush()
}

// Err returns the first error observed by the device, either a failed write
// to Out or a register access outside the decoded window.
func (d *Device) Err() error {
	d.Lock()
	defer d.Unlock()

	return d.err
}

// Receive queues characters for the receive buffer register.
func (d *Device) Receive(buf ...byte) {
	d.Lock()
	defer d.Unlock()

	d.rx = append(d.rx, buf...)
}

// Transmitted returns a copy of every character written to the transmit
// holding register so far.
func (d *Device) Transmitted() []byte {
	d.Lock()
	defer d.Unlock()

	return append([]byte(nil), d.tx...)
}

// Writes returns a copy of the register write log.
func (d *Device) Writes() []Access {
	d.Lock()
	defer d.Unlock()

	return append([]Access(nil), d.writes...)
}

// Divisor returns the programmed divisor latch value.
func (d *Device) Divisor() uint16 {
	d.Lock()
	defer d.Unlock()

	return uint16(d.dlm)<<8 | uint16(d.dll)
}

// Reg returns the last value written to a plain register (LCR, MCR, FCR,
// IER, SCR).
func (d *Device) Reg(off uint8) byte {
	d.Lock()
	defer d.Unlock()

	if int(off) >= len(d.regs) {
		return 0
	}

	return d.regs[off]
}

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

// Package ns16550 implements a polled driver for the transmit side of
// NS16550 compatible UARTs, such as the console of the QEMU RISC-V virt
// machine.
//
// The driver is meant to run with `GOOS=tamago GOARCH=riscv64` as supported
// by the TamaGo framework for bare metal Go, see
// https://github.com/usbarmory/tamago, it also builds on any host against a
// register model (see package sim).
package ns16550

import (
	"github.com/usbarmory/tamago/bits"
)

// Default line settings
const (
	// DefaultClock is the UART input clock (Hz) of the QEMU virt machine.
	DefaultClock = 1843200
	// DefaultBaud is the default line speed.
	DefaultBaud = 115200
)

// FCR bits
const (
	FCR_FIFOE  = 0
	FCR_RFIFOR = 1
	FCR_XFIFOR = 2
)

// LCR bits
const (
	LCR_DLAB = 7
	LCR_PEN  = 3
	LCR_STB  = 2
	LCR_WLS  = 0

	WLS_8 = 0b11
)

// MCR bits
const (
	MCR_DTR = 0
	MCR_RTS = 1
)

// LSR bits
const (
	LSR_DR   = 0
	LSR_THRE = 5
	LSR_TEMT = 6
)

// Registers represents the register window of an NS16550 instance.
//
// Implementations must perform every access in order and must never cache
// values, the device changes state on its own.
type Registers interface {
	Read(off uint8) byte
	Write(off uint8, val byte)
}

// UART represents a serial port instance.
type UART struct {
	// Regs is the register window, it must not be shared with any other
	// driver instance.
	Regs Registers
	// Layout defines register offsets (default: Standard).
	Layout *Layout
	// Clock is the input clock in Hz (default: DefaultClock).
	Clock uint32
	// Baud is the line speed (default: DefaultBaud).
	Baud uint32

	// line control shadow
	lcr uint32
	// initialization state
	ready bool
}

// Init programs the UART for 8 data bits, no parity, 1 stop bit at the
// configured speed, with FIFOs enabled and all interrupts disabled.
//
// Init is a one-shot operation: it must be called once before any output and
// further invocations return without accessing the hardware.
func (hw *UART) Init() {
	if hw.ready {
		return
	}

	if hw.Layout == nil {
		hw.Layout = Standard
	}

	if hw.Clock == 0 {
		hw.Clock = DefaultClock
	}

	if hw.Baud == 0 {
		hw.Baud = DefaultBaud
	}

	l := hw.Layout

	// 1) polled operation only
	hw.Regs.Write(l.IER, 0)

	// 2) program the divisor latch
	div := hw.divisor()

	bits.Set(&hw.lcr, LCR_DLAB)
	hw.Regs.Write(l.LCR, byte(hw.lcr))
	hw.Regs.Write(l.DLL, byte(div))
	hw.Regs.Write(l.DLM, byte(div>>8))

	// 3) 8N1, closing the divisor latch
	bits.SetN(&hw.lcr, LCR_WLS, 0b11, WLS_8)
	bits.Clear(&hw.lcr, LCR_STB)
	bits.Clear(&hw.lcr, LCR_PEN)
	bits.Clear(&hw.lcr, LCR_DLAB)
	hw.Regs.Write(l.LCR, byte(hw.lcr))

	// 4) enable and reset FIFOs
	var fcr uint32
	bits.Set(&fcr, FCR_FIFOE)
	bits.Set(&fcr, FCR_RFIFOR)
	bits.Set(&fcr, FCR_XFIFOR)
	hw.Regs.Write(l.FCR, byte(fcr))

	// 5) assert DTR and RTS
	var mcr uint32
	bits.Set(&mcr, MCR_DTR)
	bits.Set(&mcr, MCR_RTS)
	hw.Regs.Write(l.MCR, byte(mcr))

	hw.ready = true
}

// Ready returns whether Init has completed.
func (hw *UART) Ready() bool {
	return hw.ready
}

func (hw *UART) divisor() uint16 {
	div := hw.Clock / (16 * hw.Baud)

	if div == 0 {
		div = 1
	}

	if div > 0xffff {
		div = 0xffff
	}

	return uint16(div)
}

// txReady returns whether the transmit holding register can accept a byte.
func (hw *UART) txReady() bool {
	lsr := uint32(hw.Regs.Read(hw.Layout.LSR))
	return bits.Get(&lsr, LSR_THRE, 1) == 1
}

// Tx transmits a single character, busy waiting until the transmit holding
// register is empty. It never returns if the hardware never signals it.
//
// Tx has no effect before Init.
func (hw *UART) Tx(c byte) {
	if !hw.ready {
		return
	}

	for !hw.txReady() {
		// wait for THRE
	}

	hw.Regs.Write(hw.Layout.THR, c)
}

// Write transmits all of buf in order, it implements io.Writer and never
// fails.
func (hw *UART) Write(buf []byte) (n int, _ error) {
	for n = 0; n < len(buf); n++ {
		hw.Tx(buf[n])
	}

	return
}

// WriteByte implements io.ByteWriter.
func (hw *UART) WriteByte(c byte) error {
	hw.Tx(c)
	return nil
}

// WriteString implements io.StringWriter without converting s.
func (hw *UART) WriteString(s string) (n int, _ error) {
	for n = 0; n < len(s); n++ {
		hw.Tx(s[n])
	}

	return
}

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

package main

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"k8s.io/klog"

	"github.com/lagarisc/sandbox-os/boot"
	"github.com/lagarisc/sandbox-os/console"
	"github.com/lagarisc/sandbox-os/fault"
	"github.com/lagarisc/sandbox-os/internal/sandbox"
	"github.com/lagarisc/sandbox-os/ns16550"
	"github.com/lagarisc/sandbox-os/ns16550/sim"
)

// End describes how a run terminated.
type End string

const (
	// Ended means the entry point returned and the core idles.
	Ended End = "ended"
	// Halted means the fault protocol halted the core.
	Halted End = "halted"
)

var errOutputAfterEnd = errors.New("console output after termination")

func parseLayout(name string) (*ns16550.Layout, error) {
	switch strings.ToLower(name) {
	case "", "standard":
		return ns16550.Standard, nil
	case "sandbox":
		return ns16550.Sandbox, nil
	}

	return nil, fmt.Errorf("unknown layout %q", name)
}

// parseScenario returns the program to run for a fault scenario name, the
// sandbox program when empty.
func parseScenario(name string) (func(), error) {
	switch name {
	case "":
		return sandbox.Main, nil
	case "located":
		return func() {
			fault.Abort(fault.Record{
				Location: &fault.Location{File: "x", Line: 42},
				Message:  "bad state",
			})
		}, nil
	case "unlocated":
		return func() {
			fault.Abort(fault.Record{})
		}, nil
	case "panic":
		return func() {
			panic("bad state")
		}, nil
	}

	return nil, fmt.Errorf("unknown scenario %q", name)
}

// runner drives one boot of the sandbox against virtual peripherals. Boot
// state and console are process wide, a process performs a single run.
type runner struct {
	Layout    *ns16550.Layout
	Out       io.Writer
	BusyPolls int
	Timeout   time.Duration
	Settle    time.Duration

	dev *sim.Device
}

// Run boots program and waits for it to end or halt, then checks that the
// console stays silent for the settle period.
func (r *runner) Run(program func()) (End, error) {
	r.dev = sim.NewDevice(r.Layout, r.Out)
	r.dev.BusyPolls = r.BusyPolls
	r.dev.OnLine = func(line string) {
		klog.Infof("uart: %s", line)
	}

	halter := sim.NewHalter()
	idle := make(chan struct{})
	var once sync.Once

	boot.Park = func() {
		if boot.Current() == boot.Halted {
			halter.Halt()
		}

		once.Do(func() { close(idle) })
		select {}
	}

	// the reset code has set up a stack for us
	boot.StackReady()

	go boot.Enter(func() {
		defer fault.Recover()

		console.Init(r.dev, r.Layout)
		program()
	})

	var end End

	select {
	case <-halter.Halted():
		end = Halted
	case <-idle:
		end = Ended
	case <-time.After(r.Timeout):
		return "", fmt.Errorf("no termination after %v (boot state %s)", r.Timeout, boot.Current())
	}

	n := len(r.dev.Transmitted())
	time.Sleep(r.Settle)

	if err := r.dev.Flush(); err != nil {
		return end, fmt.Errorf("failed to write console stream: %w", err)
	}

	if err := r.dev.Err(); err != nil {
		return end, fmt.Errorf("virtual UART: %w", err)
	}

	if len(r.dev.Transmitted()) != n {
		return end, errOutputAfterEnd
	}

	return end, nil
}

// Transmitted returns the number of characters sent on the console.
func (r *runner) Transmitted() int {
	if r.dev == nil {
		return 0
	}

	return len(r.dev.Transmitted())
}

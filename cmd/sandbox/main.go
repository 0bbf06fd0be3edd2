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
//
// The sandbox tool runs the sandbox program on the host against a virtual
// NS16550 UART and halt device, capturing the console stream as it would
// appear on the serial line of the target.
package main

import (
	"flag"
	"io"
	"os"
	"time"

	"k8s.io/klog"
)

var (
	stdoutFile = flag.String("stdout_file", "", "File to write the console stream to, stdout when empty.")
	layoutName = flag.String("layout", "standard", "UART register layout, one of: standard, sandbox.")
	faultName  = flag.String("fault", "", "Fault scenario to run instead of the program, one of: located, unlocated, panic.")
	busyPolls  = flag.Int("busy_polls", 0, "Status register polls reporting a busy transmitter after each character.")
	timeout    = flag.Duration("timeout", 5*time.Second, "Maximum time to wait for the program to end or halt.")
	settle     = flag.Duration("settle", 100*time.Millisecond, "Time to watch for output once the program ended or halted.")
)

func main() {
	klog.InitFlags(nil)
	flag.Parse()
	defer klog.Flush()

	out, closeOut := outputOrDie(*stdoutFile)
	defer closeOut()

	layout, err := parseLayout(*layoutName)
	if err != nil {
		klog.Exitf("Invalid layout: %v", err)
	}

	program, err := parseScenario(*faultName)
	if err != nil {
		klog.Exitf("Invalid fault scenario: %v", err)
	}

	r := &runner{
		Layout:    layout,
		Out:       out,
		BusyPolls: *busyPolls,
		Timeout:   *timeout,
		Settle:    *settle,
	}

	end, err := r.Run(program)
	if err != nil {
		klog.Exitf("Sandbox run failed: %v", err)
	}

	klog.Infof("Sandbox %s, %d bytes transmitted", end, r.Transmitted())
}

func outputOrDie(path string) (io.Writer, func()) {
	if path == "" {
		return os.Stdout, func() {}
	}

	f, err := os.Create(path)
	if err != nil {
		klog.Exitf("Failed to create %q: %v", path, err)
	}

	return f, func() {
		if err := f.Close(); err != nil {
			klog.Errorf("Failed to close %q: %v", path, err)
		}
	}
}

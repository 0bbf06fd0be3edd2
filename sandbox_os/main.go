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
	"log"
	"runtime"

	"github.com/lagarisc/sandbox-os/boot"
	"github.com/lagarisc/sandbox-os/console"
	"github.com/lagarisc/sandbox-os/fault"
	"github.com/lagarisc/sandbox-os/internal/reg"
	"github.com/lagarisc/sandbox-os/internal/sandbox"
	"github.com/lagarisc/sandbox-os/ns16550"
)

// initialized at compile time (see Makefile)
var (
	Build    string
	Revision string
)

func main() {
	// never returns
	boot.Enter(entry)
}

func entry() {
	defer fault.Recover()

	console.Init(reg.Block{Base: UART0Base}, ns16550.Standard)

	// only visible with the debug build tag
	log.Printf("%s/%s (%s) • sandbox • %s %s • %s",
		runtime.GOOS, runtime.GOARCH, runtime.Version(),
		Revision, Build, boot.Current())

	sandbox.Main()
}

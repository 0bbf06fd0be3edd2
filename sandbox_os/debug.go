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

//go:build tamago && riscv64 && debug

package main

import (
	"log"
	"os"
	_ "unsafe"

	"github.com/lagarisc/sandbox-os/console"
)

func init() {
	log.SetFlags(log.Ltime)
	log.SetOutput(os.Stdout)
}

//go:linkname printk runtime.printk
func printk(c byte) {
	console.Output(c)
}

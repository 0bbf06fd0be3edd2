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

package sim

import (
	"sync"
)

// Halter is a virtual halt device, it reports the first halt request and
// never releases the requesting goroutine.
type Halter struct {
	once   sync.Once
	halted chan struct{}
}

// NewHalter returns a halt device in the running state.
func NewHalter() *Halter {
	return &Halter{
		halted: make(chan struct{}),
	}
}

// Halt signals Halted and blocks forever.
func (h *Halter) Halt() {
	h.once.Do(func() {
		close(h.halted)
	})

	select {}
}

// Halted is closed once Halt has been requested.
func (h *Halter) Halted() <-chan struct{} {
	return h.halted
}

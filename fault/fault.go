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

// Package fault implements termination on unrecoverable conditions.
//
// A fault is reported once on the console, with the best available source
// location, then the core halts forever. There is no recovery, retry or
// alternate handler: Abort and its helpers never return.
package fault

import (
	"fmt"
	"io"
	"runtime"
	"strings"

	"github.com/lagarisc/sandbox-os/boot"
	"github.com/lagarisc/sandbox-os/console"
)

const (
	prefix = "Aborting: "
	noInfo = "no information available."
)

// Location identifies the source of a fault.
type Location struct {
	File string
	Line int
}

// Record describes an unrecoverable condition.
type Record struct {
	// Location is nil when no location information is available.
	Location *Location
	Message  string
}

// WriteTo emits the diagnostic text for r, CR LF terminated.
func (r Record) WriteTo(w io.Writer) (int64, error) {
	var n int

	if r.Location == nil {
		n, _ = fmt.Fprintf(w, "%s\r\n", noInfo)
		return int64(n), nil
	}

	n, _ = fmt.Fprintf(w, "line %d, file %s: %s\r\n", r.Location.Line, r.Location.File, r.Message)

	return int64(n), nil
}

// Abort reports r on the console and halts, it never returns.
func Abort(r Record) {
	w := console.Emergency()

	io.WriteString(w, prefix)
	r.WriteTo(w)

	boot.Halt()
}

// Fatal aborts with msg, located at the caller.
func Fatal(msg string) {
	Abort(Record{
		Location: caller(2),
		Message:  msg,
	})
}

// Fatalf aborts with a formatted message, located at the caller.
func Fatalf(format string, a ...any) {
	Abort(Record{
		Location: caller(2),
		Message:  fmt.Sprintf(format, a...),
	})
}

// Recover turns a Go panic into a fault, located at the panicking frame. It
// must be deferred directly, it does nothing if the goroutine is not
// panicking.
func Recover() {
	v := recover()

	if v == nil {
		return
	}

	Abort(Record{
		Location: panicking(),
		Message:  message(v),
	})
}

func caller(skip int) *Location {
	_, file, line, ok := runtime.Caller(skip)

	if !ok {
		return nil
	}

	return &Location{File: file, Line: line}
}

// panicking returns the location of the first frame below the runtime panic
// machinery, as seen from a deferred Recover.
func panicking() *Location {
	pc := make([]uintptr, 32)
	// skip runtime.Callers, panicking and Recover
	n := runtime.Callers(3, pc)

	frames := runtime.CallersFrames(pc[:n])
	inRuntime := false

	for {
		f, more := frames.Next()

		switch {
		case strings.HasPrefix(f.Function, "runtime."):
			inRuntime = true
		case inRuntime && f.File != "":
			return &Location{File: f.File, Line: f.Line}
		}

		if !more {
			return nil
		}
	}
}

func message(v any) string {
	switch e := v.(type) {
	case error:
		return e.Error()
	case fmt.Stringer:
		return e.String()
	case string:
		return e
	default:
		return fmt.Sprint(v)
	}
}

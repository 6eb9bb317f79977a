// Copyright 2025 go-highway Authors
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

package shared

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// Warner receives non-fatal diagnostics.
type Warner interface {
	Warnf(format string, args ...any)
}

// WriterWarner writes one "WARNING: " line per diagnostic to W. It is safe
// for concurrent use.
type WriterWarner struct {
	W  io.Writer
	mu sync.Mutex
}

// StderrWarner returns a Warner writing to os.Stderr.
func StderrWarner() *WriterWarner {
	return &WriterWarner{W: os.Stderr}
}

// Warnf implements Warner.
func (w *WriterWarner) Warnf(format string, args ...any) {
	w.mu.Lock()
	defer w.mu.Unlock()
	fmt.Fprintf(w.W, "WARNING: "+format+"\n", args...)
}

// ReportDuplicates sends every duplicate of r to w. It does nothing when w is
// nil, which is how ignore_warnings is honoured.
func ReportDuplicates(r *Registry, w Warner) {
	if w == nil {
		return
	}
	for _, d := range r.Duplicates() {
		w.Warnf("%s", d)
	}
}

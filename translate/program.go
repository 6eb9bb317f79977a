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

package translate

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/samber/lo"

	"github.com/ajroetker/pancakevc/internal/workerpool"
	"github.com/ajroetker/pancakevc/pancake"
	"github.com/ajroetker/pancakevc/shared"
	"github.com/ajroetker/pancakevc/viper"
)

// FunctionError is the failure of one function's translation.
type FunctionError struct {
	Function string
	Err      error
}

func (e *FunctionError) Error() string {
	return fmt.Sprintf("translating function %s: %v", e.Function, e.Err)
}

func (e *FunctionError) Unwrap() error { return e.Err }

// Output is the translation of a program.
type Output struct {
	Registry *shared.Registry

	// Methods holds one method per successfully translated function, in
	// source order.
	Methods []*viper.Method

	// Accessors is the union of the accessors the methods call.
	Accessors []string

	// Errors lists the functions that failed, in source order. It is only
	// populated when the driver keeps going.
	Errors []*FunctionError
}

// Program returns the translated methods as a Viper program.
func (o *Output) Program() *viper.Program {
	return &viper.Program{Methods: o.Methods}
}

// Driver translates whole programs. Functions share no mutable state, so
// they are translated in parallel on Pool, each from its own root context.
type Driver struct {
	Options Options

	// Pool runs the per-function jobs. A nil Pool translates sequentially.
	Pool *workerpool.Pool

	// Warner receives duplicate shared-address diagnostics unless
	// Options.IgnoreWarnings is set. A nil Warner drops them.
	Warner shared.Warner

	// KeepGoing records failing functions in Output.Errors instead of
	// aborting the program.
	KeepGoing bool
}

// Translate builds the shared-memory registry and translates every function
// of prog.
func (d *Driver) Translate(prog *pancake.Program) (*Output, error) {
	registry, err := shared.NewRegistry(prog.Shared)
	if err != nil {
		return nil, err
	}
	if !d.Options.IgnoreWarnings {
		shared.ReportDuplicates(registry, d.Warner)
	}

	results := make([]*Result, len(prog.Funcs))
	job := func(i int) error {
		r, err := Function(prog.Funcs[i], registry, d.Options)
		if err != nil {
			return &FunctionError{Function: prog.Funcs[i].Name, Err: err}
		}
		results[i] = r
		return nil
	}
	var errs []error
	if d.Pool != nil {
		errs = d.Pool.Run(len(prog.Funcs), job)
	} else {
		errs = make([]error, len(prog.Funcs))
		for i := range prog.Funcs {
			errs[i] = job(i)
		}
	}

	out := &Output{Registry: registry}
	for i, err := range errs {
		if err == nil {
			continue
		}
		var fe *FunctionError
		if !errors.As(err, &fe) {
			fe = &FunctionError{Function: prog.Funcs[i].Name, Err: err}
		}
		if !d.KeepGoing {
			return nil, fe
		}
		out.Errors = append(out.Errors, fe)
	}
	for _, r := range results {
		if r == nil {
			continue
		}
		out.Methods = append(out.Methods, r.Method)
		out.Accessors = append(out.Accessors, r.Accessors...)
	}
	out.Accessors = lo.Uniq(out.Accessors)
	return out, nil
}

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
	"maps"

	"github.com/samber/lo"

	"github.com/ajroetker/pancakevc/pancake"
	"github.com/ajroetker/pancakevc/shared"
	"github.com/ajroetker/pancakevc/viper"
)

// Reserved identifiers of the translated program.
const (
	// HeapName is the memory state, passed as the first argument of every
	// translated function and accessor.
	HeapName = "heap"

	// ResultName refers to the return value inside annotations.
	ResultName = "result"

	// RetVal is the return slot of every translated method.
	RetVal = "retval"

	// WordBytes is the size of a machine word; memory is addressed in bytes
	// and stored in word slots.
	WordBytes = 8
)

const returnLabel = "return_label"

// Mode selects how expressions are translated.
type Mode int

const (
	// ModeNormal translates executable code.
	ModeNormal Mode = iota
	ModeAssertion
	ModeInhale
	ModeExhale
	ModeInvariant
	ModePrecondition
	ModePostcondition
)

var modeNames = [...]string{
	ModeNormal:        "normal",
	ModeAssertion:     "assertion",
	ModeInhale:        "inhale",
	ModeExhale:        "exhale",
	ModeInvariant:     "invariant",
	ModePrecondition:  "precondition",
	ModePostcondition: "postcondition",
}

func (m Mode) String() string {
	if int(m) < len(modeNames) {
		return modeNames[m]
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// IsAnnotation reports whether specification-only forms are allowed.
func (m Mode) IsAnnotation() bool { return m != ModeNormal }

func modeOf(kind pancake.AnnotationKind) Mode {
	switch kind {
	case pancake.Inhale:
		return ModeInhale
	case pancake.Exhale:
		return ModeExhale
	case pancake.Invariant:
		return ModeInvariant
	case pancake.Precondition:
		return ModePrecondition
	case pancake.Postcondition:
		return ModePostcondition
	default:
		return ModeAssertion
	}
}

// funcState is shared by every fork of one function's context.
type funcState struct {
	name     string
	opts     Options
	registry *shared.Registry

	fresh int
	loops int

	// args maps parameter names to method argument names; pre- and
	// postconditions see parameters through them.
	args map[string]string

	pres, posts []viper.Expr
	accessors   []string
}

// loopFrame is the innermost enclosing loop.
type loopFrame struct {
	breakLabel    string
	continueLabel string
	invariants    []viper.Expr
}

// Context is the translation state of one function. Forks share the
// function-wide counters and specification lists, and copy the scope maps.
type Context struct {
	fn *funcState

	names  map[string]string
	shapes map[string]pancake.Shape
	loop   *loopFrame

	mode  Mode
	bound map[string]string

	// out and decls hold the lowered statements and local declarations not
	// yet wrapped into a block. They are never shared between forks.
	out   []viper.Stmt
	decls []viper.LocalVarDecl
}

// NewContext creates the root context for translating function fname. A nil
// registry is treated as a program without shared regions.
func NewContext(fname string, registry *shared.Registry, opts Options) *Context {
	if registry == nil {
		registry, _ = shared.NewRegistry(nil)
	}
	return &Context{
		fn: &funcState{
			name:     fname,
			opts:     opts,
			registry: registry,
			args:     make(map[string]string),
		},
		names:  make(map[string]string),
		shapes: make(map[string]pancake.Shape),
		bound:  make(map[string]string),
	}
}

// Options returns the translation options.
func (c *Context) Options() Options { return c.fn.opts }

// Fork returns a child context for a nested scope: same counters and
// specification lists, copies of the scope maps, empty buffers.
func (c *Context) Fork() *Context {
	return &Context{
		fn:     c.fn,
		names:  maps.Clone(c.names),
		shapes: maps.Clone(c.shapes),
		loop:   c.loop,
		mode:   c.mode,
		bound:  maps.Clone(c.bound),
	}
}

// Declare introduces a local of the given shape and returns its mangled
// name, __<function>__<name>__<n>.
func (c *Context) Declare(name string, shape pancake.Shape) (string, error) {
	if name == HeapName || name == ResultName {
		return "", &ReservedNameError{Name: name}
	}
	mangled := name
	if !c.fn.opts.NoMangle {
		mangled = fmt.Sprintf("__%s__%s__%d", c.fn.name, name, c.fn.fresh)
	}
	c.fn.fresh++
	c.names[name] = mangled
	c.shapes[mangled] = shape
	c.decls = append(c.decls, viper.LocalVarDecl{Name: mangled, Type: viperType(shape)})
	return mangled, nil
}

// Resolve returns the mangled name of a variable in scope.
func (c *Context) Resolve(name string) (string, error) {
	if name == HeapName {
		return HeapName, nil
	}
	if c.mode.IsAnnotation() {
		if b, ok := c.bound[name]; ok {
			return b, nil
		}
		if name == ResultName {
			return RetVal, nil
		}
		if c.mode == ModePrecondition || c.mode == ModePostcondition {
			if arg, ok := c.fn.args[name]; ok {
				return arg, nil
			}
		}
	}
	mangled, ok := c.names[name]
	if !ok {
		return "", &UndeclaredVariableError{Name: name}
	}
	return mangled, nil
}

// ShapeOfVar returns the declared shape of a variable in scope. Reserved and
// quantifier-bound names are words.
func (c *Context) ShapeOfVar(name string) (pancake.Shape, error) {
	if _, ok := c.bound[name]; ok && c.mode.IsAnnotation() {
		return pancake.Word(), nil
	}
	mangled, err := c.Resolve(name)
	if err != nil {
		return pancake.Shape{}, err
	}
	if shape, ok := c.shapes[mangled]; ok {
		return shape, nil
	}
	if m, ok := c.names[name]; ok {
		return c.shapes[m], nil
	}
	return pancake.Word(), nil
}

// FreshTemp returns a new synthetic name, _fr<n>.
func (c *Context) FreshTemp() string {
	name := fmt.Sprintf("_fr%d", c.fn.fresh)
	c.fn.fresh++
	return name
}

// declareTemp declares a fresh local of type t.
func (c *Context) declareTemp(t viper.Type) viper.LocalVar {
	d := viper.LocalVarDecl{Name: c.FreshTemp(), Type: t}
	c.decls = append(c.decls, d)
	return d.Var()
}

// EnterLoop opens a new loop on c and returns its break and continue labels.
// Labels are numbered per textual loop within the function, from 1.
func (c *Context) EnterLoop() (breakLabel, continueLabel string) {
	c.fn.loops++
	c.loop = &loopFrame{
		breakLabel:    fmt.Sprintf("break_label_%d", c.fn.loops),
		continueLabel: fmt.Sprintf("continue_label_%d", c.fn.loops),
	}
	return c.loop.breakLabel, c.loop.continueLabel
}

// ReturnLabel returns the label of the function epilogue.
func (c *Context) ReturnLabel() string { return returnLabel }

// Preconditions returns the preconditions recorded so far.
func (c *Context) Preconditions() []viper.Expr { return c.fn.pres }

// Postconditions returns the postconditions recorded so far.
func (c *Context) Postconditions() []viper.Expr { return c.fn.posts }

// Invariants returns the invariants recorded for the current loop.
func (c *Context) Invariants() []viper.Expr {
	if c.loop == nil {
		return nil
	}
	return c.loop.invariants
}

// Accessors returns the shared-memory accessors called so far, in order of
// first use.
func (c *Context) Accessors() []string { return c.fn.accessors }

func (c *Context) requireAccessors(names ...string) {
	c.fn.accessors = lo.Uniq(append(c.fn.accessors, names...))
}

// inMode evaluates f with the expression translator in mode m, then restores
// the previous mode and drops annotation-local names.
func inMode[T any](c *Context, m Mode, f func() (T, error)) (T, error) {
	prev := c.mode
	c.mode = m
	defer func() {
		c.mode = prev
		clear(c.bound)
	}()
	return f()
}

func (c *Context) emit(stmts ...viper.Stmt) {
	c.out = append(c.out, stmts...)
}

// block wraps the pending output, followed by tail, into one block carrying
// the pending declarations, and clears both buffers.
func (c *Context) block(tail ...viper.Stmt) *viper.Seqn {
	s := &viper.Seqn{Decls: c.decls, Stmts: append(c.out, tail...)}
	c.out, c.decls = nil, nil
	return s
}

func viperType(shape pancake.Shape) viper.Type {
	if shape.IsWord() {
		return viper.TypeInt
	}
	return viper.TypeSeqInt
}

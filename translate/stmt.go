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
	"github.com/pkg/errors"

	"github.com/ajroetker/pancakevc/pancake"
	"github.com/ajroetker/pancakevc/viper"
)

// Lower translates s and returns it as one block, together with any
// declarations it introduced.
func (c *Context) Lower(s pancake.Stmt) (*viper.Seqn, error) {
	if err := c.lowerStmt(s); err != nil {
		return nil, err
	}
	return c.block(), nil
}

// lowerStmt appends the translation of s to the context's buffers.
func (c *Context) lowerStmt(s pancake.Stmt) error {
	switch s := s.(type) {
	case pancake.Skip:
		c.emit(viper.Comment{Text: "skip"})

	case pancake.Tick:
		c.emit(viper.Comment{Text: "tick"})

	case pancake.Annotation:
		return c.annotation(s)

	case pancake.Seq:
		for _, child := range s.Stmts {
			if err := c.lowerStmt(child); err != nil {
				return err
			}
		}

	case pancake.Definition:
		return c.definition(s)

	case pancake.Assign:
		return c.assign(s)

	case pancake.Return:
		value, err := c.word(s.Value)
		if err != nil {
			return err
		}
		c.emit(
			viper.LocalVarAssign{Target: viper.IntVar(RetVal), Value: value},
			viper.Goto{Label: c.ReturnLabel()},
		)

	case pancake.Break:
		if c.loop == nil {
			return errors.New("break outside of a loop")
		}
		c.emit(viper.Goto{Label: c.loop.breakLabel})

	case pancake.Continue:
		if c.loop == nil {
			return errors.New("continue outside of a loop")
		}
		c.emit(viper.Goto{Label: c.loop.continueLabel})

	case pancake.If:
		return c.ifStmt(s)

	case pancake.While:
		return c.while(s)

	case pancake.Call:
		var target viper.LocalVar
		if s.Dest == "" {
			target = c.declareTemp(viper.TypeInt)
		} else {
			v, err := c.wordDest(s.Dest)
			if err != nil {
				return err
			}
			target = v
		}
		call, err := c.call(s.Func, s.Args, target)
		if err != nil {
			return err
		}
		c.emit(call)

	case pancake.TailCall:
		call, err := c.call(s.Func, s.Args, viper.IntVar(RetVal))
		if err != nil {
			return err
		}
		c.emit(call, viper.Goto{Label: c.ReturnLabel()})

	case pancake.ExtCall:
		args, err := c.exprs(s.Args)
		if err != nil {
			return err
		}
		c.emit(viper.MethodCall{Method: "ffi_" + s.Func, Args: args})

	case pancake.Store:
		return c.store(s.Address, s.Value)

	case pancake.StoreByte:
		masked := pancake.Op{Op: pancake.OpAnd, Operands: []pancake.Expr{s.Value, pancake.Const{Value: 0xff}}}
		return c.store(s.Address, masked)

	case pancake.SharedStore:
		return c.sharedStore(s)

	case pancake.SharedLoad:
		return c.sharedLoad(s)

	case pancake.Raise:
		c.emit(
			viper.Comment{Text: "raise " + s.Exception},
			viper.Assert{Expr: viper.BoolLit{Value: false}},
		)

	default:
		return errors.Errorf("unsupported statement %T", s)
	}
	return nil
}

// definition declares the new name after lowering its initializer, so the
// initializer still sees any outer binding of the same name.
func (c *Context) definition(s pancake.Definition) error {
	shape, err := c.ShapeOf(s.Init)
	if err != nil {
		return err
	}
	var value viper.Expr
	app, isCall := s.Init.(pancake.App)
	if !isCall {
		if value, err = c.expr(s.Init); err != nil {
			return err
		}
	}
	mangled, err := c.Declare(s.Name, shape)
	if err != nil {
		return err
	}
	target := viper.LocalVar{Name: mangled, Type: viperType(shape)}

	var init viper.Stmt = viper.LocalVarAssign{Target: target, Value: value}
	if isCall {
		if init, err = c.call(app.Func, app.Args, target); err != nil {
			return err
		}
	}

	scope, err := c.Fork().Lower(s.Scope)
	if err != nil {
		return err
	}
	c.emit(c.block(init, scope))
	return nil
}

func (c *Context) assign(s pancake.Assign) error {
	mangled, err := c.Resolve(s.Name)
	if err != nil {
		return err
	}
	want := c.shapes[mangled]
	got, err := c.ShapeOf(s.Value)
	if err != nil {
		return err
	}
	if !want.Equal(got) {
		return &ShapeMismatchError{Name: s.Name, Want: want, Got: got}
	}
	target := viper.LocalVar{Name: mangled, Type: viperType(want)}
	if app, ok := s.Value.(pancake.App); ok {
		call, err := c.call(app.Func, app.Args, target)
		if err != nil {
			return err
		}
		c.emit(call)
		return nil
	}
	value, err := c.expr(s.Value)
	if err != nil {
		return err
	}
	c.emit(viper.LocalVarAssign{Target: target, Value: value})
	return nil
}

// wordDest resolves a call or load destination, which must hold a word.
func (c *Context) wordDest(name string) (viper.LocalVar, error) {
	mangled, err := c.Resolve(name)
	if err != nil {
		return viper.LocalVar{}, err
	}
	if shape := c.shapes[mangled]; !shape.IsWord() {
		return viper.LocalVar{}, &ShapeMismatchError{Name: name, Want: shape, Got: pancake.Word()}
	}
	return viper.IntVar(mangled), nil
}

// call builds target := f_<fn>(heap, args...).
func (c *Context) call(fn string, args []pancake.Expr, target viper.LocalVar) (viper.MethodCall, error) {
	lowered, err := c.exprs(args)
	if err != nil {
		return viper.MethodCall{}, err
	}
	return viper.MethodCall{
		Method:  MethodName(fn),
		Args:    append([]viper.Expr{heapVar()}, lowered...),
		Targets: []viper.LocalVar{target},
	}, nil
}

// ifStmt lowers both branches from forks of the same parent, so neither
// sees the other's locals.
func (c *Context) ifStmt(s pancake.If) error {
	cond, err := c.cond(s.Cond)
	if err != nil {
		return err
	}
	then, err := c.Fork().Lower(s.Then)
	if err != nil {
		return err
	}
	els, err := c.Fork().Lower(s.Else)
	if err != nil {
		return err
	}
	c.emit(viper.If{Cond: cond, Then: then, Else: els})
	return nil
}

// while lowers
//
//	checks
//	while (cond) invariant... { body; label continue_label_n; checks }
//	label break_label_n
//
// where checks are the statements the condition emits, such as alignment
// assertions, repeated before every evaluation of cond.
func (c *Context) while(s pancake.While) error {
	check := c.Fork()
	cond, err := check.cond(s.Cond)
	if err != nil {
		return err
	}
	c.decls = append(c.decls, check.decls...)
	c.emit(check.out...)

	body := c.Fork()
	breakLabel, continueLabel := body.EnterLoop()
	if err := body.lowerStmt(s.Body); err != nil {
		return err
	}
	lowered := body.block(append([]viper.Stmt{viper.Label{Name: continueLabel}}, check.out...)...)
	c.emit(
		viper.While{Cond: cond, Invariants: body.Invariants(), Body: lowered},
		viper.Label{Name: breakLabel},
	)
	return nil
}

// store writes value, word by word, starting at the slot of address.
func (c *Context) store(address, value pancake.Expr) error {
	addr, err := c.word(address)
	if err != nil {
		return err
	}
	shape, err := c.ShapeOf(value)
	if err != nil {
		return err
	}
	v, err := c.expr(value)
	if err != nil {
		return err
	}
	c.assertAligned(addr, WordBytes)
	idx := wordIndex(addr)
	if shape.IsWord() {
		c.emit(viper.FieldAssign{Target: heapElem(idx), Value: v})
		return nil
	}
	// The value is read in full before the first word is written, since it
	// may load from the destination.
	src := c.declareTemp(viper.TypeSeqInt)
	c.emit(viper.LocalVarAssign{Target: src, Value: v})
	for i := range shape.Size() {
		c.emit(viper.FieldAssign{
			Target: heapElem(viper.Bin(viper.OpAdd, idx, viper.Int(int64(i)))),
			Value:  viper.SeqIndex{Seq: src, Index: viper.Int(int64(i))},
		})
	}
	return nil
}

// MethodName is the target method translating source function fn.
func MethodName(fn string) string { return "f_" + fn }

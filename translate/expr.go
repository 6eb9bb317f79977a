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

	"github.com/ajroetker/pancakevc/pancake"
	"github.com/ajroetker/pancakevc/viper"
)

// Prelude functions standing in for operators the target lacks.
var bitwiseFuncs = map[pancake.OpKind]string{
	pancake.OpAnd:  "bw_and",
	pancake.OpOr:   "bw_or",
	pancake.OpXor:  "bw_xor",
	pancake.OpShl:  "bw_shl",
	pancake.OpShr:  "bw_shr",
	pancake.OpLshr: "bw_lshr",
}

var arithOps = map[pancake.OpKind]viper.BinOp{
	pancake.OpAdd: viper.OpAdd,
	pancake.OpSub: viper.OpSub,
	pancake.OpMul: viper.OpMul,
}

var cmpOps = map[pancake.CmpKind]viper.BinOp{
	pancake.CmpEq: viper.OpEq,
	pancake.CmpNe: viper.OpNe,
	pancake.CmpLt: viper.OpLt,
	pancake.CmpLe: viper.OpLe,
	pancake.CmpGt: viper.OpGt,
	pancake.CmpGe: viper.OpGe,
}

var logicOps = map[pancake.LogicKind]viper.BinOp{
	pancake.LogicAnd:     viper.OpAnd,
	pancake.LogicOr:      viper.OpOr,
	pancake.LogicImplies: viper.OpImplies,
}

// ShapeOf infers the shape of e in the current scope.
func (c *Context) ShapeOf(e pancake.Expr) (pancake.Shape, error) {
	switch e := e.(type) {
	case pancake.Var:
		return c.ShapeOfVar(e.Name)
	case pancake.Load:
		return e.Shape, nil
	case pancake.Struct:
		elems := make([]pancake.Shape, len(e.Elems))
		for i, el := range e.Elems {
			shape, err := c.ShapeOf(el)
			if err != nil {
				return pancake.Shape{}, err
			}
			elems[i] = shape
		}
		return pancake.Nested(elems...), nil
	case pancake.Field:
		obj, err := c.ShapeOf(e.Obj)
		if err != nil {
			return pancake.Shape{}, err
		}
		if obj.IsWord() || e.Index < 0 || e.Index >= len(obj.Elems) {
			return pancake.Shape{}, &InvalidExpressionError{Expr: e, Reason: fmt.Sprintf("no field %d in a value of shape %s", e.Index, obj)}
		}
		return obj.Elems[e.Index], nil
	default:
		return pancake.Word(), nil
	}
}

// word lowers e, which must be a single word.
func (c *Context) word(e pancake.Expr) (viper.Expr, error) {
	shape, err := c.ShapeOf(e)
	if err != nil {
		return nil, err
	}
	if !shape.IsWord() {
		return nil, &InvalidExpressionError{Expr: e, Reason: "expected a word, got shape " + shape.String()}
	}
	return c.expr(e)
}

func (c *Context) words(es []pancake.Expr) ([]viper.Expr, error) {
	out := make([]viper.Expr, len(es))
	for i, e := range es {
		v, err := c.word(e)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (c *Context) exprs(es []pancake.Expr) ([]viper.Expr, error) {
	out := make([]viper.Expr, len(es))
	for i, e := range es {
		v, err := c.expr(e)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// expr lowers e to an Int expression for words, or a Seq[Int] of the
// flattened words for aggregates.
func (c *Context) expr(e pancake.Expr) (viper.Expr, error) {
	switch e := e.(type) {
	case pancake.Const:
		return viper.Int(e.Value), nil

	case pancake.Var:
		name, err := c.Resolve(e.Name)
		if err != nil {
			return nil, err
		}
		if name == HeapName {
			return heapVar(), nil
		}
		shape, err := c.ShapeOfVar(e.Name)
		if err != nil {
			return nil, err
		}
		return viper.LocalVar{Name: name, Type: viperType(shape)}, nil

	case pancake.Op:
		if len(e.Operands) == 0 {
			return nil, &InvalidExpressionError{Expr: e, Reason: "operator without operands"}
		}
		operands, err := c.words(e.Operands)
		if err != nil {
			return nil, err
		}
		acc := operands[0]
		for _, o := range operands[1:] {
			if f, ok := bitwiseFuncs[e.Op]; ok {
				acc = viper.FuncApp{Name: f, Args: []viper.Expr{acc, o}}
			} else {
				acc = viper.Bin(arithOps[e.Op], acc, o)
			}
		}
		return acc, nil

	case pancake.Cmp:
		cond, err := c.cond(e)
		if err != nil {
			return nil, err
		}
		return viper.CondExpr{Cond: cond, Then: viper.Int(1), Else: viper.Int(0)}, nil

	case pancake.Load:
		return c.load(e.Shape, e.Address)

	case pancake.LoadByte:
		addr, err := c.word(e.Address)
		if err != nil {
			return nil, err
		}
		// A byte store writes its masked value into the whole slot, so the
		// byte is read back from the low bits of that slot.
		return viper.FuncApp{Name: "bw_and", Args: []viper.Expr{heapElem(wordIndex(addr)), viper.Int(0xff)}}, nil

	case pancake.Struct:
		return c.structExpr(e)

	case pancake.Field:
		elem, err := c.ShapeOf(e)
		if err != nil {
			return nil, err
		}
		objShape, err := c.ShapeOf(e.Obj)
		if err != nil {
			return nil, err
		}
		obj, err := c.expr(e.Obj)
		if err != nil {
			return nil, err
		}
		off := int64(objShape.Offset(e.Index))
		if elem.IsWord() {
			return viper.SeqIndex{Seq: obj, Index: viper.Int(off)}, nil
		}
		return viper.SeqSlice{Seq: obj, From: viper.Int(off), To: viper.Int(off + int64(elem.Size()))}, nil

	case pancake.App:
		if !c.mode.IsAnnotation() {
			return nil, &InvalidExpressionError{Expr: e, Reason: "calls are only allowed as initializers and in annotations"}
		}
		args, err := c.exprs(e.Args)
		if err != nil {
			return nil, err
		}
		return viper.FuncApp{Name: e.Func, Args: args}, nil

	case pancake.Logic, pancake.Not, pancake.Quantified:
		cond, err := c.cond(e)
		if err != nil {
			return nil, err
		}
		return viper.CondExpr{Cond: cond, Then: viper.Int(1), Else: viper.Int(0)}, nil
	}
	return nil, &InvalidExpressionError{Expr: e, Reason: "unsupported expression"}
}

// cond lowers e as a Bool. Words other than comparisons are true when
// non-zero.
func (c *Context) cond(e pancake.Expr) (viper.Expr, error) {
	switch e := e.(type) {
	case pancake.Cmp:
		return c.compare(e)

	case pancake.Logic:
		if err := c.annotationOnly(e); err != nil {
			return nil, err
		}
		l, err := c.cond(e.Left)
		if err != nil {
			return nil, err
		}
		r, err := c.cond(e.Right)
		if err != nil {
			return nil, err
		}
		return viper.Bin(logicOps[e.Op], l, r), nil

	case pancake.Not:
		if err := c.annotationOnly(e); err != nil {
			return nil, err
		}
		x, err := c.cond(e.X)
		if err != nil {
			return nil, err
		}
		return viper.Not{X: x}, nil

	case pancake.Quantified:
		if err := c.annotationOnly(e); err != nil {
			return nil, err
		}
		return c.quantifier(e)

	case pancake.App:
		if c.mode.IsAnnotation() {
			return c.expr(e)
		}
	}
	v, err := c.word(e)
	if err != nil {
		return nil, err
	}
	return viper.Bin(viper.OpNe, v, viper.Int(0)), nil
}

func (c *Context) compare(e pancake.Cmp) (viper.Expr, error) {
	ls, err := c.ShapeOf(e.Left)
	if err != nil {
		return nil, err
	}
	rs, err := c.ShapeOf(e.Right)
	if err != nil {
		return nil, err
	}
	aggregates := e.Op == pancake.CmpEq || e.Op == pancake.CmpNe
	if !ls.Equal(rs) || (!ls.IsWord() && !aggregates) {
		return nil, &InvalidExpressionError{Expr: e, Reason: fmt.Sprintf("cannot compare shapes %s and %s with %s", ls, rs, e.Op)}
	}
	l, err := c.expr(e.Left)
	if err != nil {
		return nil, err
	}
	r, err := c.expr(e.Right)
	if err != nil {
		return nil, err
	}
	return viper.Bin(cmpOps[e.Op], l, r), nil
}

func (c *Context) quantifier(e pancake.Quantified) (viper.Expr, error) {
	prev := make(map[string]string, len(e.Vars))
	vars := make([]viper.LocalVarDecl, len(e.Vars))
	for i, v := range e.Vars {
		if old, ok := c.bound[v]; ok {
			prev[v] = old
		}
		c.bound[v] = v
		vars[i] = viper.LocalVarDecl{Name: v, Type: viper.TypeInt}
	}
	body, err := c.cond(e.Body)
	for _, v := range e.Vars {
		if old, ok := prev[v]; ok {
			c.bound[v] = old
		} else {
			delete(c.bound, v)
		}
	}
	if err != nil {
		return nil, err
	}
	return viper.Quantifier{Exists: e.Kind == pancake.Exists, Vars: vars, Body: body}, nil
}

func (c *Context) annotationOnly(e pancake.Expr) error {
	if c.mode.IsAnnotation() {
		return nil
	}
	return &InvalidExpressionError{Expr: e, Reason: "only allowed in annotations"}
}

func (c *Context) structExpr(e pancake.Struct) (viper.Expr, error) {
	var parts, run []viper.Expr
	flush := func() {
		if len(run) > 0 {
			parts = append(parts, viper.SeqLit{Elems: run})
			run = nil
		}
	}
	for _, el := range e.Elems {
		shape, err := c.ShapeOf(el)
		if err != nil {
			return nil, err
		}
		v, err := c.expr(el)
		if err != nil {
			return nil, err
		}
		if shape.IsWord() {
			run = append(run, v)
			continue
		}
		flush()
		parts = append(parts, v)
	}
	flush()
	if len(parts) == 0 {
		return viper.SeqLit{}, nil
	}
	acc := parts[0]
	for _, p := range parts[1:] {
		acc = viper.SeqAppend{Left: acc, Right: p}
	}
	return acc, nil
}

// load reads a value of the given shape starting at address.
func (c *Context) load(shape pancake.Shape, address pancake.Expr) (viper.Expr, error) {
	addr, err := c.word(address)
	if err != nil {
		return nil, err
	}
	c.assertAligned(addr, WordBytes)
	idx := wordIndex(addr)
	if shape.IsWord() {
		return heapElem(idx), nil
	}
	elems := make([]viper.Expr, shape.Size())
	for i := range elems {
		elems[i] = heapElem(viper.Bin(viper.OpAdd, idx, viper.Int(int64(i))))
	}
	return viper.SeqLit{Elems: elems}, nil
}

// assertAligned emits addr % n == 0 when alignment checks are enabled.
func (c *Context) assertAligned(addr viper.Expr, n int64) {
	if !c.fn.opts.AssertAlignedAccesses || c.mode.IsAnnotation() || n <= 1 {
		return
	}
	c.emit(viper.Assert{Expr: viper.Eq(viper.Bin(viper.OpMod, addr, viper.Int(n)), viper.Int(0))})
}

func heapVar() viper.LocalVar {
	return viper.LocalVar{Name: HeapName, Type: viper.TypeIArray}
}

func wordIndex(addr viper.Expr) viper.Expr {
	return viper.Bin(viper.OpDiv, addr, viper.Int(WordBytes))
}

// heapElem is the heap word at slot idx.
func heapElem(idx viper.Expr) viper.FieldAccess {
	return viper.FieldAccess{
		Recv:  viper.FuncApp{Name: "slot", Args: []viper.Expr{heapVar(), idx}},
		Field: "heap_elem",
	}
}

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

// Package pancake defines the source IR consumed by the translator: a flat,
// word-addressed imperative language with explicit control flow, plus the
// S-expression front-end that produces it.
//
// Statements and expressions are closed variant sets. Every variant implements
// the Stmt or Expr marker interface; consumers switch on the concrete type.
package pancake

import (
	"fmt"
	"strings"
)

// Expr is a source-IR expression.
type Expr interface {
	exprNode()
	String() string
}

// Stmt is a source-IR statement. A statement tree is a strict forest.
type Stmt interface {
	stmtNode()
}

// OpKind is an arithmetic or bitwise word operator.
type OpKind int

const (
	OpAdd OpKind = iota
	OpSub
	OpMul
	OpAnd
	OpOr
	OpXor
	OpShl
	OpShr  // arithmetic shift right
	OpLshr // logical shift right
)

var opSymbols = [...]string{
	OpAdd:  "+",
	OpSub:  "-",
	OpMul:  "*",
	OpAnd:  "&",
	OpOr:   "|",
	OpXor:  "^",
	OpShl:  "<<",
	OpShr:  ">>",
	OpLshr: ">>>",
}

// String returns the operator's source symbol.
func (k OpKind) String() string {
	if int(k) < len(opSymbols) {
		return opSymbols[k]
	}
	return fmt.Sprintf("OpKind(%d)", int(k))
}

// IsBitwise reports whether the operator has no native integer counterpart
// in the target and is translated through a prelude function.
func (k OpKind) IsBitwise() bool {
	switch k {
	case OpAnd, OpOr, OpXor, OpShl, OpShr, OpLshr:
		return true
	}
	return false
}

// CmpKind is a word comparison.
type CmpKind int

const (
	CmpEq CmpKind = iota
	CmpNe
	CmpLt
	CmpLe
	CmpGt
	CmpGe
)

var cmpSymbols = [...]string{
	CmpEq: "==",
	CmpNe: "!=",
	CmpLt: "<",
	CmpLe: "<=",
	CmpGt: ">",
	CmpGe: ">=",
}

func (k CmpKind) String() string {
	if int(k) < len(cmpSymbols) {
		return cmpSymbols[k]
	}
	return fmt.Sprintf("CmpKind(%d)", int(k))
}

// LogicKind is a boolean connective. Only legal inside annotations.
type LogicKind int

const (
	LogicAnd LogicKind = iota
	LogicOr
	LogicImplies
)

func (k LogicKind) String() string {
	switch k {
	case LogicAnd:
		return "&&"
	case LogicOr:
		return "||"
	case LogicImplies:
		return "==>"
	default:
		return fmt.Sprintf("LogicKind(%d)", int(k))
	}
}

// QuantKind distinguishes universal from existential quantifiers.
type QuantKind int

const (
	Forall QuantKind = iota
	Exists
)

func (k QuantKind) String() string {
	if k == Exists {
		return "exists"
	}
	return "forall"
}

// ---------------------------------------------------------------------------
// Expressions
// ---------------------------------------------------------------------------

// Const is a word literal.
type Const struct {
	Value int64
}

// Var reads a local variable. Inside annotations the reserved names "result"
// and "heap" refer to the return slot and the memory state.
type Var struct {
	Name string
}

// Op applies an arithmetic or bitwise operator left to right over its
// operands; it has at least two.
type Op struct {
	Op       OpKind
	Operands []Expr
}

// Cmp compares two words.
type Cmp struct {
	Op          CmpKind
	Left, Right Expr
}

// Load reads a value of the given shape from word-aligned memory.
type Load struct {
	Shape   Shape
	Address Expr
}

// LoadByte reads a single byte from memory.
type LoadByte struct {
	Address Expr
}

// Struct builds an aggregate from its elements.
type Struct struct {
	Elems []Expr
}

// Field selects element Index of an aggregate.
type Field struct {
	Index int
	Obj   Expr
}

// App applies a function or predicate. As a definition initializer it is a
// procedure call; inside annotations it is a pure application.
type App struct {
	Func string
	Args []Expr
}

// Logic joins two boolean expressions.
type Logic struct {
	Op          LogicKind
	Left, Right Expr
}

// Not negates a boolean expression.
type Not struct {
	X Expr
}

// Quantified binds Vars (all words) over Body.
type Quantified struct {
	Kind QuantKind
	Vars []string
	Body Expr
}

func (Const) exprNode()      {}
func (Var) exprNode()        {}
func (Op) exprNode()         {}
func (Cmp) exprNode()        {}
func (Load) exprNode()       {}
func (LoadByte) exprNode()   {}
func (Struct) exprNode()     {}
func (Field) exprNode()      {}
func (App) exprNode()        {}
func (Logic) exprNode()      {}
func (Not) exprNode()        {}
func (Quantified) exprNode() {}

func (e Const) String() string { return fmt.Sprintf("%d", e.Value) }
func (e Var) String() string   { return e.Name }

func (e Op) String() string {
	return "(" + e.Op.String() + " " + joinExprs(e.Operands) + ")"
}

func (e Cmp) String() string {
	return fmt.Sprintf("(%s %s %s)", e.Op, e.Left, e.Right)
}

func (e Load) String() string {
	return fmt.Sprintf("(load %s %s)", e.Shape.sexpr(), e.Address)
}

func (e LoadByte) String() string { return fmt.Sprintf("(load-byte %s)", e.Address) }

func (e Struct) String() string { return "(struct " + joinExprs(e.Elems) + ")" }

func (e Field) String() string { return fmt.Sprintf("(field %d %s)", e.Index, e.Obj) }

func (e App) String() string {
	if len(e.Args) == 0 {
		return "(call " + e.Func + ")"
	}
	return "(call " + e.Func + " " + joinExprs(e.Args) + ")"
}

func (e Logic) String() string {
	return fmt.Sprintf("(%s %s %s)", e.Op, e.Left, e.Right)
}

func (e Not) String() string { return fmt.Sprintf("(! %s)", e.X) }

func (e Quantified) String() string {
	return fmt.Sprintf("(%s (%s) %s)", e.Kind, strings.Join(e.Vars, " "), e.Body)
}

func joinExprs(es []Expr) string {
	parts := make([]string, len(es))
	for i, e := range es {
		parts[i] = e.String()
	}
	return strings.Join(parts, " ")
}

// ---------------------------------------------------------------------------
// Statements
// ---------------------------------------------------------------------------

// AnnotationKind selects how an annotation is encoded.
type AnnotationKind int

const (
	Assertion AnnotationKind = iota
	Inhale
	Exhale
	Invariant
	Precondition
	Postcondition
	Fold
	Unfold
)

var annotationKeywords = [...]string{
	Assertion:     "assert",
	Inhale:        "inhale",
	Exhale:        "exhale",
	Invariant:     "invariant",
	Precondition:  "requires",
	Postcondition: "ensures",
	Fold:          "fold",
	Unfold:        "unfold",
}

// String returns the source keyword of the annotation.
func (k AnnotationKind) String() string {
	if int(k) < len(annotationKeywords) {
		return annotationKeywords[k]
	}
	return fmt.Sprintf("AnnotationKind(%d)", int(k))
}

// ParseAnnotationKind maps a source keyword to its kind.
func ParseAnnotationKind(keyword string) (AnnotationKind, bool) {
	for k, kw := range annotationKeywords {
		if kw == keyword {
			return AnnotationKind(k), true
		}
	}
	return 0, false
}

// Skip does nothing.
type Skip struct{}

// Tick is a timing marker of the source compiler; it has no semantics here.
type Tick struct{}

// Break leaves the innermost loop.
type Break struct{}

// Continue jumps to the condition check of the innermost loop.
type Continue struct{}

// Annotation embeds a specification construct.
type Annotation struct {
	Kind AnnotationKind
	Expr Expr
}

// Definition binds Name to Init for the duration of Scope.
type Definition struct {
	Name  string
	Init  Expr
	Scope Stmt
}

// Assign overwrites a declared variable.
type Assign struct {
	Name  string
	Value Expr
}

// Store writes a word to memory.
type Store struct {
	Address Expr
	Value   Expr
}

// StoreByte writes the low byte of Value to memory.
type StoreByte struct {
	Address Expr
	Value   Expr
}

// SharedStore writes Bits bits to a memory-mapped device register.
type SharedStore struct {
	Bits    int
	Address Expr
	Value   Expr
}

// SharedLoad reads Bits bits from a memory-mapped device register into Dest.
type SharedLoad struct {
	Bits    int
	Dest    string
	Address Expr
}

// Seq runs its statements in order.
type Seq struct {
	Stmts []Stmt
}

// If branches on a word condition (non-zero is true).
type If struct {
	Cond Expr
	Then Stmt
	Else Stmt
}

// While repeats Body while Cond holds.
type While struct {
	Cond Expr
	Body Stmt
}

// Call invokes a function. An empty Dest discards the result.
type Call struct {
	Dest string
	Func string
	Args []Expr
}

// TailCall invokes a function and returns its result.
type TailCall struct {
	Func string
	Args []Expr
}

// ExtCall invokes a foreign function through the FFI.
type ExtCall struct {
	Func string
	Args []Expr
}

// Return leaves the function with Value.
type Return struct {
	Value Expr
}

// Raise throws the named exception.
type Raise struct {
	Exception string
}

func (Skip) stmtNode()        {}
func (Tick) stmtNode()        {}
func (Break) stmtNode()       {}
func (Continue) stmtNode()    {}
func (Annotation) stmtNode()  {}
func (Definition) stmtNode()  {}
func (Assign) stmtNode()      {}
func (Store) stmtNode()       {}
func (StoreByte) stmtNode()   {}
func (SharedStore) stmtNode() {}
func (SharedLoad) stmtNode()  {}
func (Seq) stmtNode()         {}
func (If) stmtNode()          {}
func (While) stmtNode()       {}
func (Call) stmtNode()        {}
func (TailCall) stmtNode()    {}
func (ExtCall) stmtNode()     {}
func (Return) stmtNode()      {}
func (Raise) stmtNode()       {}

// ---------------------------------------------------------------------------
// Top level
// ---------------------------------------------------------------------------

// Param is a function parameter.
type Param struct {
	Name  string
	Shape Shape
}

// Function is a source-IR function definition.
type Function struct {
	Name   string
	Params []Param
	Body   Stmt
}

// Perm is the access permission of a shared-memory region.
type Perm int

const (
	PermRead Perm = 1 << iota
	PermWrite

	PermReadWrite = PermRead | PermWrite
)

// CanRead reports whether loads are allowed.
func (p Perm) CanRead() bool { return p&PermRead != 0 }

// CanWrite reports whether stores are allowed.
func (p Perm) CanWrite() bool { return p&PermWrite != 0 }

func (p Perm) String() string {
	switch p {
	case PermRead:
		return "read"
	case PermWrite:
		return "write"
	case PermReadWrite:
		return "read-write"
	default:
		return fmt.Sprintf("Perm(%d)", int(p))
	}
}

// ParsePerm accepts r, w, rw and their long forms.
func ParsePerm(s string) (Perm, bool) {
	switch s {
	case "r", "read":
		return PermRead, true
	case "w", "write":
		return PermWrite, true
	case "rw", "read-write":
		return PermReadWrite, true
	}
	return 0, false
}

// SharedDecl declares a memory-mapped I/O region. Either Addresses is set, or
// Lower, Upper and Stride describe the half-open range [Lower, Upper).
type SharedDecl struct {
	Name      string
	Perm      Perm
	Bits      int
	Lower     Expr
	Upper     Expr
	Stride    Expr
	Addresses []Expr
}

// Program is a translation unit.
type Program struct {
	Shared []SharedDecl
	Funcs  []*Function
}

// Func returns the function with the given name, or nil.
func (p *Program) Func(name string) *Function {
	for _, f := range p.Funcs {
		if f.Name == name {
			return f
		}
	}
	return nil
}

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

// Package viper provides the target representation of the translator: the
// subset of the Viper intermediate verification language needed to express
// goto-structured method bodies and their specifications, together with a
// textual emitter.
package viper

import "fmt"

// Type is a Viper type.
type Type int

const (
	// TypeInt is the mathematical integer type; words map to it.
	TypeInt Type = iota

	// TypeBool is the boolean type of conditions and assertions.
	TypeBool

	// TypeSeqInt holds aggregates, flattened to their words in order.
	TypeSeqInt

	// TypeIArray is the prelude domain modelling the word-addressed heap.
	TypeIArray

	// TypeRef is a reference; heap slots are references.
	TypeRef
)

// String returns the Viper spelling of the type.
func (t Type) String() string {
	switch t {
	case TypeInt:
		return "Int"
	case TypeBool:
		return "Bool"
	case TypeSeqInt:
		return "Seq[Int]"
	case TypeIArray:
		return "IArray"
	case TypeRef:
		return "Ref"
	default:
		return fmt.Sprintf("Type(%d)", int(t))
	}
}

// BinOp is a binary operator.
type BinOp int

const (
	OpAdd BinOp = iota
	OpSub
	OpMul
	OpDiv
	OpMod
	OpEq
	OpNe
	OpLt
	OpLe
	OpGt
	OpGe
	OpAnd
	OpOr
	OpImplies
)

var binOpSymbols = [...]string{
	OpAdd:     "+",
	OpSub:     "-",
	OpMul:     "*",
	OpDiv:     "\\",
	OpMod:     "%",
	OpEq:      "==",
	OpNe:      "!=",
	OpLt:      "<",
	OpLe:      "<=",
	OpGt:      ">",
	OpGe:      ">=",
	OpAnd:     "&&",
	OpOr:      "||",
	OpImplies: "==>",
}

// String returns the Viper symbol of the operator.
func (op BinOp) String() string {
	if int(op) < len(binOpSymbols) {
		return binOpSymbols[op]
	}
	return fmt.Sprintf("BinOp(%d)", int(op))
}

// IsBoolean reports whether the operator yields a Bool.
func (op BinOp) IsBoolean() bool {
	return op >= OpEq
}

// ---------------------------------------------------------------------------
// Expressions
// ---------------------------------------------------------------------------

// Expr is a Viper expression.
type Expr interface {
	viperExpr()
}

// IntLit is an integer literal.
type IntLit struct {
	Value int64
}

// BoolLit is a boolean literal.
type BoolLit struct {
	Value bool
}

// LocalVar reads a local variable, argument or return slot.
type LocalVar struct {
	Name string
	Type Type
}

// BinExpr applies a binary operator.
type BinExpr struct {
	Op          BinOp
	Left, Right Expr
}

// Not is boolean negation.
type Not struct {
	X Expr
}

// CondExpr is the conditional expression c ? t : e.
type CondExpr struct {
	Cond, Then, Else Expr
}

// FuncApp applies a (prelude or domain) function.
type FuncApp struct {
	Name string
	Args []Expr
}

// FieldAccess reads field Field of reference Recv.
type FieldAccess struct {
	Recv  Expr
	Field string
}

// PredicateAccess is acc(Name(Args), Perm).
type PredicateAccess struct {
	Name string
	Args []Expr
	Perm Expr
}

// FullPerm is the full (write) permission amount.
type FullPerm struct{}

// SeqLit builds a sequence of integers.
type SeqLit struct {
	Elems []Expr
}

// SeqIndex is Seq[Index].
type SeqIndex struct {
	Seq, Index Expr
}

// SeqSlice is Seq[From..To].
type SeqSlice struct {
	Seq      Expr
	From, To Expr
}

// SeqAppend concatenates two sequences.
type SeqAppend struct {
	Left, Right Expr
}

// Quantifier binds integer variables over Body.
type Quantifier struct {
	Exists bool
	Vars   []LocalVarDecl
	Body   Expr
}

func (IntLit) viperExpr()          {}
func (BoolLit) viperExpr()         {}
func (LocalVar) viperExpr()        {}
func (BinExpr) viperExpr()         {}
func (Not) viperExpr()             {}
func (CondExpr) viperExpr()        {}
func (FuncApp) viperExpr()         {}
func (FieldAccess) viperExpr()     {}
func (PredicateAccess) viperExpr() {}
func (FullPerm) viperExpr()        {}
func (SeqLit) viperExpr()          {}
func (SeqIndex) viperExpr()        {}
func (SeqSlice) viperExpr()        {}
func (SeqAppend) viperExpr()       {}
func (Quantifier) viperExpr()      {}

// ---------------------------------------------------------------------------
// Statements
// ---------------------------------------------------------------------------

// Stmt is a Viper statement.
type Stmt interface {
	viperStmt()
}

// LocalVarDecl declares a local variable, argument or return slot.
type LocalVarDecl struct {
	Name string
	Type Type
}

// Var returns the variable the declaration introduces.
func (d LocalVarDecl) Var() LocalVar { return LocalVar{Name: d.Name, Type: d.Type} }

// Seqn is a block: local declarations scoped over a statement list.
type Seqn struct {
	Decls []LocalVarDecl
	Stmts []Stmt
}

// IsEmpty reports whether the block declares and does nothing.
func (s *Seqn) IsEmpty() bool {
	return s == nil || (len(s.Decls) == 0 && len(s.Stmts) == 0)
}

// LocalVarAssign is Target := Value.
type LocalVarAssign struct {
	Target LocalVar
	Value  Expr
}

// FieldAssign is Target := Value on a heap location.
type FieldAssign struct {
	Target FieldAccess
	Value  Expr
}

// MethodCall is Targets := Method(Args).
type MethodCall struct {
	Method  string
	Args    []Expr
	Targets []LocalVar
}

// Goto jumps to a label of the enclosing method.
type Goto struct {
	Label string
}

// Label marks a goto target.
type Label struct {
	Name string
}

// If is a two-way branch.
type If struct {
	Cond Expr
	Then Stmt
	Else Stmt
}

// While is a loop with its invariants.
type While struct {
	Cond       Expr
	Invariants []Expr
	Body       Stmt
}

// Assert checks Expr.
type Assert struct {
	Expr Expr
}

// Inhale assumes Expr and adds its permissions.
type Inhale struct {
	Expr Expr
}

// Exhale checks Expr and removes its permissions.
type Exhale struct {
	Expr Expr
}

// Fold folds a predicate instance.
type Fold struct {
	Access PredicateAccess
}

// Unfold unfolds a predicate instance.
type Unfold struct {
	Access PredicateAccess
}

// Comment is emitted as a line comment.
type Comment struct {
	Text string
}

func (*Seqn) viperStmt()          {}
func (LocalVarAssign) viperStmt() {}
func (FieldAssign) viperStmt()    {}
func (MethodCall) viperStmt()     {}
func (Goto) viperStmt()           {}
func (Label) viperStmt()          {}
func (If) viperStmt()             {}
func (While) viperStmt()          {}
func (Assert) viperStmt()         {}
func (Inhale) viperStmt()         {}
func (Exhale) viperStmt()         {}
func (Fold) viperStmt()           {}
func (Unfold) viperStmt()         {}
func (Comment) viperStmt()        {}

// ---------------------------------------------------------------------------
// Top level
// ---------------------------------------------------------------------------

// Method is a Viper method. A nil Body declares an abstract method.
type Method struct {
	Name    string
	Args    []LocalVarDecl
	Returns []LocalVarDecl
	Pres    []Expr
	Posts   []Expr
	Body    *Seqn
}

// Program is an ordered list of methods.
type Program struct {
	Methods []*Method
}

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

package viper

// Int returns an integer literal.
func Int(v int64) IntLit { return IntLit{Value: v} }

// IntVar returns an Int-typed local variable.
func IntVar(name string) LocalVar { return LocalVar{Name: name, Type: TypeInt} }

// Bin builds a binary expression.
func Bin(op BinOp, l, r Expr) BinExpr { return BinExpr{Op: op, Left: l, Right: r} }

// Eq builds l == r.
func Eq(l, r Expr) BinExpr { return Bin(OpEq, l, r) }

// Conj folds es with && from the left. It returns true for no operands.
func Conj(es ...Expr) Expr { return fold(OpAnd, BoolLit{Value: true}, es) }

// Disj folds es with || from the left. It returns false for no operands.
func Disj(es ...Expr) Expr { return fold(OpOr, BoolLit{Value: false}, es) }

func fold(op BinOp, unit Expr, es []Expr) Expr {
	if len(es) == 0 {
		return unit
	}
	acc := es[0]
	for _, e := range es[1:] {
		acc = Bin(op, acc, e)
	}
	return acc
}

// Block wraps statements into a declaration-free block.
func Block(stmts ...Stmt) *Seqn { return &Seqn{Stmts: stmts} }

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

package pancake

// EvalConst folds e to a word if it is built only from literals and
// arithmetic or bitwise operators. Shift amounts outside [0, 63] do not fold.
func EvalConst(e Expr) (int64, bool) {
	switch e := e.(type) {
	case Const:
		return e.Value, true
	case Op:
		if len(e.Operands) == 0 {
			return 0, false
		}
		acc, ok := EvalConst(e.Operands[0])
		if !ok {
			return 0, false
		}
		for _, operand := range e.Operands[1:] {
			v, ok := EvalConst(operand)
			if !ok {
				return 0, false
			}
			if acc, ok = applyOp(e.Op, acc, v); !ok {
				return 0, false
			}
		}
		return acc, true
	default:
		return 0, false
	}
}

func applyOp(op OpKind, a, b int64) (int64, bool) {
	switch op {
	case OpAdd:
		return a + b, true
	case OpSub:
		return a - b, true
	case OpMul:
		return a * b, true
	case OpAnd:
		return a & b, true
	case OpOr:
		return a | b, true
	case OpXor:
		return a ^ b, true
	}
	if b < 0 || b > 63 {
		return 0, false
	}
	switch op {
	case OpShl:
		return a << uint(b), true
	case OpShr:
		return a >> uint(b), true
	case OpLshr:
		return int64(uint64(a) >> uint(b)), true
	}
	return 0, false
}

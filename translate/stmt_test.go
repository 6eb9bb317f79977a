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
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajroetker/pancakevc/pancake"
	"github.com/ajroetker/pancakevc/shared"
	"github.com/ajroetker/pancakevc/viper"
)

// translateOne parses src, which must define exactly one function, and
// translates it.
func translateOne(t *testing.T, src string, opts ...Option) (*Result, error) {
	t.Helper()
	prog, err := pancake.Parse("test.pnk", src)
	require.NoError(t, err)
	require.Len(t, prog.Funcs, 1)
	registry, err := shared.NewRegistry(prog.Shared)
	require.NoError(t, err)
	return Function(prog.Funcs[0], registry, NewOptions(opts...))
}

// lowerBody translates src and prints the method body.
func lowerBody(t *testing.T, src string, opts ...Option) string {
	t.Helper()
	res, err := translateOne(t, src, opts...)
	require.NoError(t, err)
	return viper.NewPrinter().Stmt(res.Method.Body)
}

func lines(ls ...string) string { return strings.Join(ls, "\n") + "\n" }

func TestLowerStatements(t *testing.T) {
	tests := []struct {
		name string
		src  string
		opts []Option
		want string
	}{
		{
			name: "nested definitions",
			src:  `(func f () (dec x 1 (dec y (+ x 1) (return y))))`,
			want: lines(
				"var __f__x__0: Int",
				"__f__x__0 := 1",
				"var __f__y__1: Int",
				"__f__y__1 := __f__x__0 + 1",
				"retval := __f__y__1",
				"goto return_label",
				"label return_label",
			),
		},
		{
			name: "initializer sees the outer binding",
			src:  `(func f () (dec x 1 (dec x (+ x 1) (return x))))`,
			want: lines(
				"var __f__x__0: Int",
				"__f__x__0 := 1",
				"var __f__x__1: Int",
				"__f__x__1 := __f__x__0 + 1",
				"retval := __f__x__1",
				"goto return_label",
				"label return_label",
			),
		},
		{
			name: "loop with break",
			src:  `(func f () (dec i 0 (while (< i 10) break)))`,
			want: lines(
				"var __f__i__0: Int",
				"__f__i__0 := 0",
				"while (__f__i__0 < 10) {",
				"\tgoto break_label_1",
				"\tlabel continue_label_1",
				"}",
				"label break_label_1",
				"label return_label",
			),
		},
		{
			name: "continue in nested loops",
			src:  `(func f () (while 1 (while 0 continue)))`,
			want: lines(
				"while (1 != 0) {",
				"\twhile (0 != 0) {",
				"\t\tgoto continue_label_2",
				"\t\tlabel continue_label_2",
				"\t}",
				"\tlabel break_label_2",
				"\tlabel continue_label_1",
				"}",
				"label break_label_1",
				"label return_label",
			),
		},
		{
			name: "branches are lowered in isolation",
			src:  `(func f () (dec c 1 (if c (dec a 1) (dec b 2))))`,
			want: lines(
				"var __f__c__0: Int",
				"__f__c__0 := 1",
				"if (__f__c__0 != 0) {",
				"\tvar __f__a__1: Int",
				"\t__f__a__1 := 1",
				"\t// skip",
				"} else {",
				"\tvar __f__b__2: Int",
				"\t__f__b__2 := 2",
				"\t// skip",
				"}",
				"label return_label",
			),
		},
		{
			name: "calls",
			src:  `(func f (n) (dec r 0 (seq (call r g (n 1)) (call _ g ()) (ext-call write r) (tail-call g r))))`,
			want: lines(
				"var __f__n__0: Int",
				"__f__n__0 := arg_n",
				"var __f__r__1: Int",
				"__f__r__1 := 0",
				"var _fr2: Int",
				"__f__r__1 := f_g(heap, __f__n__0, 1)",
				"_fr2 := f_g(heap)",
				"ffi_write(__f__r__1)",
				"retval := f_g(heap, __f__r__1)",
				"goto return_label",
				"label return_label",
			),
		},
		{
			name: "call as initializer",
			src:  `(func f () (dec r (call g 2) (return r)))`,
			want: lines(
				"var __f__r__0: Int",
				"__f__r__0 := f_g(heap, 2)",
				"retval := __f__r__0",
				"goto return_label",
				"label return_label",
			),
		},
		{
			name: "aggregates",
			src:  `(func f ((p (1 1))) (dec q (struct 7 p) (dec r (field 1 q) (return (field 1 r)))))`,
			want: lines(
				"var __f__p__0: Seq[Int]",
				"__f__p__0 := arg_p",
				"var __f__q__1: Seq[Int]",
				"__f__q__1 := Seq(7) ++ __f__p__0",
				"var __f__r__2: Seq[Int]",
				"__f__r__2 := __f__q__1[1..3]",
				"retval := __f__r__2[1]",
				"goto return_label",
				"label return_label",
			),
		},
		{
			name: "memory",
			src:  `(func f (a) (seq (store a (load 1 (+ a 8))) (return (load-byte a))))`,
			want: lines(
				"var __f__a__0: Int",
				"__f__a__0 := arg_a",
				"slot(heap, __f__a__0 \\ 8).heap_elem := slot(heap, (__f__a__0 + 8) \\ 8).heap_elem",
				"retval := bw_and(slot(heap, __f__a__0 \\ 8).heap_elem, 255)",
				"goto return_label",
				"label return_label",
			),
		},
		{
			name: "aggregate store",
			src:  `(func f () (store 16 (struct 1 2)))`,
			want: lines(
				"var _fr0: Seq[Int]",
				"_fr0 := Seq(1, 2)",
				"slot(heap, (16 \\ 8) + 0).heap_elem := _fr0[0]",
				"slot(heap, (16 \\ 8) + 1).heap_elem := _fr0[1]",
				"label return_label",
			),
		},
		{
			name: "overlapping aggregate copy reads the source first",
			src:  `(func f (a) (store (+ a 8) (load (1 1) a)))`,
			want: lines(
				"var __f__a__0: Int",
				"var _fr1: Seq[Int]",
				"__f__a__0 := arg_a",
				"_fr1 := Seq(slot(heap, (__f__a__0 \\ 8) + 0).heap_elem, slot(heap, (__f__a__0 \\ 8) + 1).heap_elem)",
				"slot(heap, ((__f__a__0 + 8) \\ 8) + 0).heap_elem := _fr1[0]",
				"slot(heap, ((__f__a__0 + 8) \\ 8) + 1).heap_elem := _fr1[1]",
				"label return_label",
			),
		},
		{
			name: "byte store read back",
			src:  `(func f (a) (seq (store-byte a 65) (return (load-byte a))))`,
			want: lines(
				"var __f__a__0: Int",
				"__f__a__0 := arg_a",
				"slot(heap, __f__a__0 \\ 8).heap_elem := bw_and(65, 255)",
				"retval := bw_and(slot(heap, __f__a__0 \\ 8).heap_elem, 255)",
				"goto return_label",
				"label return_label",
			),
		},
		{
			name: "aligned accesses",
			src:  `(func f () (store 8 1))`,
			opts: []Option{WithAssertAlignedAccesses(true)},
			want: lines(
				"assert (8 % 8) == 0",
				"slot(heap, 8 \\ 8).heap_elem := 1",
				"label return_label",
			),
		},
		{
			name: "aligned loads in a loop condition are checked every iteration",
			src:  `(func f (a) (while (load 1 a) (assign a (+ a 1))))`,
			opts: []Option{WithAssertAlignedAccesses(true)},
			want: lines(
				"var __f__a__0: Int",
				"__f__a__0 := arg_a",
				"assert (__f__a__0 % 8) == 0",
				"while (slot(heap, __f__a__0 \\ 8).heap_elem != 0) {",
				"\t__f__a__0 := __f__a__0 + 1",
				"\tlabel continue_label_1",
				"\tassert (__f__a__0 % 8) == 0",
				"}",
				"label break_label_1",
				"label return_label",
			),
		},
		{
			name: "comparison as a value",
			src:  `(func f (a) (return (< a 3)))`,
			want: lines(
				"var __f__a__0: Int",
				"__f__a__0 := arg_a",
				"retval := (__f__a__0 < 3) ? 1 : 0",
				"goto return_label",
				"label return_label",
			),
		},
		{
			name: "raise and tick",
			src:  `(func f () (seq tick (raise Overflow)))`,
			want: lines(
				"// tick",
				"// raise Overflow",
				"assert false",
				"label return_label",
			),
		},
		{
			name: "no mangling",
			src:  `(func f (n) (dec x n (return x)))`,
			opts: []Option{WithNoMangle(true)},
			want: lines(
				"var n: Int",
				"n := arg_n",
				"var x: Int",
				"x := n",
				"retval := x",
				"goto return_label",
				"label return_label",
			),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := lowerBody(t, tt.src, tt.opts...); got != tt.want {
				t.Errorf("lowering %s\ngot:\n%s\nwant:\n%s", tt.src, got, tt.want)
			}
		})
	}
}

func TestStoreByteIsMaskedStore(t *testing.T) {
	byteStore := lowerBody(t, `(func f () (store-byte 16 511))`)
	maskedStore := lowerBody(t, `(func f () (store 16 (& 511 255)))`)
	assert.Equal(t, maskedStore, byteStore)
	assert.Contains(t, byteStore, "slot(heap, 16 \\ 8).heap_elem := bw_and(511, 255)\n")
}

func TestLowerDeterministic(t *testing.T) {
	src := `(func f (a) (dec i 0 (while (< i a) (seq (if (== i 3) break) (assign i (+ i 1))))))`
	first := lowerBody(t, src)
	for range 5 {
		if got := lowerBody(t, src); got != first {
			t.Fatalf("translation is not deterministic:\n%s\nvs\n%s", got, first)
		}
	}
}

func TestLowerErrors(t *testing.T) {
	tests := []struct {
		name  string
		src   string
		check func(error) bool
	}{
		{
			name:  "shape mismatch",
			src:   `(func f () (dec s (struct 1 2) (assign s 3)))`,
			check: func(err error) bool { var e *ShapeMismatchError; return errors.As(err, &e) },
		},
		{
			name:  "call into an aggregate",
			src:   `(func f () (dec s (struct 1 2) (call s g ())))`,
			check: func(err error) bool { var e *ShapeMismatchError; return errors.As(err, &e) },
		},
		{
			name:  "undeclared variable",
			src:   `(func f () (return z))`,
			check: func(err error) bool { var e *UndeclaredVariableError; return errors.As(err, &e) },
		},
		{
			name:  "branch locals do not escape",
			src:   `(func f () (seq (if 1 (dec a 1)) (return a)))`,
			check: func(err error) bool { var e *UndeclaredVariableError; return errors.As(err, &e) },
		},
		{
			name:  "reserved name",
			src:   `(func f () (dec heap 1))`,
			check: func(err error) bool { var e *ReservedNameError; return errors.As(err, &e) },
		},
		{
			name:  "reserved parameter",
			src:   `(func f (result) skip)`,
			check: func(err error) bool { var e *ReservedNameError; return errors.As(err, &e) },
		},
		{
			name:  "returning an aggregate",
			src:   `(func f () (return (struct 1 2)))`,
			check: func(err error) bool { var e *InvalidExpressionError; return errors.As(err, &e) },
		},
		{
			name:  "quantifier in code",
			src:   `(func f () (return (forall (i) (< i 0))))`,
			check: func(err error) bool { var e *InvalidExpressionError; return errors.As(err, &e) },
		},
		{
			name:  "field out of range",
			src:   `(func f () (dec s (struct 1 2) (return (field 2 s))))`,
			check: func(err error) bool { var e *InvalidExpressionError; return errors.As(err, &e) },
		},
		{
			name:  "break outside of a loop",
			src:   `(func f () break)`,
			check: func(err error) bool { return err != nil && strings.Contains(err.Error(), "outside of a loop") },
		},
		{
			name:  "duplicate parameter",
			src:   `(func f (a a) skip)`,
			check: func(err error) bool { return err != nil && strings.Contains(err.Error(), "duplicate parameter a") },
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := translateOne(t, tt.src)
			if !tt.check(err) {
				t.Errorf("translating %s: unexpected error %v", tt.src, err)
			}
		})
	}
}

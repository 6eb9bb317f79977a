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
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/ajroetker/pancakevc/viper"
)

func TestAnnotations(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "loop invariant",
			src:  `(func f () (dec i 0 (while (< i 10) (seq (invariant (<= i 10)) (assign i (+ i 1))))))`,
			want: lines(
				"var __f__i__0: Int",
				"__f__i__0 := 0",
				"while (__f__i__0 < 10)",
				"\tinvariant __f__i__0 <= 10",
				"{",
				"\t// annotation pushed",
				"\t__f__i__0 := __f__i__0 + 1",
				"\tlabel continue_label_1",
				"}",
				"label break_label_1",
				"label return_label",
			),
		},
		{
			name: "quantifier",
			src:  `(func f () (assert (forall (i) (==> (< i 0) (== i i)))))`,
			want: lines(
				"assert (forall i: Int :: (i < 0) ==> (i == i))",
				"label return_label",
			),
		},
		{
			name: "logic and predicates",
			src:  `(func f (a) (seq (assert (&& (< a 1) (! (== a 0)))) (inhale (call valid a)) (exhale (> a 0))))`,
			want: lines(
				"var __f__a__0: Int",
				"__f__a__0 := arg_a",
				"assert (__f__a__0 < 1) && !(__f__a__0 == 0)",
				"inhale valid(__f__a__0)",
				"exhale __f__a__0 > 0",
				"label return_label",
			),
		},
		{
			name: "fold and unfold",
			src:  `(func f (p) (seq (unfold (call list p)) (fold (call list (+ p 8)))))`,
			want: lines(
				"var __f__p__0: Int",
				"__f__p__0 := arg_p",
				"unfold acc(list(__f__p__0), write)",
				"fold acc(list(__f__p__0 + 8), write)",
				"label return_label",
			),
		},
		{
			name: "quantified names do not leak",
			src:  `(func f (i) (seq (assert (exists (i) (== i 1))) (assert (== i 2))))`,
			want: lines(
				"var __f__i__0: Int",
				"__f__i__0 := arg_i",
				"assert (exists i: Int :: i == 1)",
				"assert __f__i__0 == 2",
				"label return_label",
			),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := lowerBody(t, tt.src); got != tt.want {
				t.Errorf("lowering %s\ngot:\n%s\nwant:\n%s", tt.src, got, tt.want)
			}
		})
	}
}

func TestContract(t *testing.T) {
	res, err := translateOne(t, `(func id (n) (seq (requires (>= n 0)) (ensures (== result n)) (return n)))`)
	require.NoError(t, err)
	want := lines(
		"method f_id(heap: IArray, arg_n: Int) returns (retval: Int)",
		"\trequires arg_n >= 0",
		"\tensures retval == arg_n",
		"{",
		"\tvar __id__n__0: Int",
		"\t__id__n__0 := arg_n",
		"\t// annotation pushed",
		"\t// annotation pushed",
		"\tretval := __id__n__0",
		"\tgoto return_label",
		"\tlabel return_label",
		"}",
	)
	if got := viper.NewPrinter().Method(res.Method); got != want {
		t.Errorf("Method() =\n%s\nwant:\n%s", got, want)
	}
}

func TestAnnotationErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"invariant outside of a loop", `(func f () (invariant 1))`},
		{"fold of a non-predicate", `(func f () (fold 1))`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := translateOne(t, tt.src)
			var invalid *InvalidAnnotationError
			if !errors.As(err, &invalid) {
				t.Errorf("translating %s: error = %v, want InvalidAnnotationError", tt.src, err)
			}
		})
	}

	_, err := translateOne(t, `(func f () (dec x (call g) (assert (== result x))))`)
	require.NoError(t, err, "result is visible in every annotation")
}

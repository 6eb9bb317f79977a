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
	"strings"

	"github.com/samber/lo"

	"github.com/ajroetker/pancakevc/shared"
	"github.com/ajroetker/pancakevc/viper"
)

// heapModel encodes the word-addressed memory as an array of references,
// one per word, each carrying a heap_elem field.
const heapModel = `domain IArray {
	function slot(a: IArray, i: Int): Ref
	function len(a: IArray): Int
	function first(r: Ref): IArray
	function second(r: Ref): Int

	axiom all_diff {
		forall a: IArray, i: Int :: { slot(a, i) } first(slot(a, i)) == a && second(slot(a, i)) == i
	}

	axiom len_nonneg {
		forall a: IArray :: { len(a) } len(a) >= 0
	}
}

field heap_elem: Int
`

// widths lists the shared access widths with the exclusive upper bound of
// their unsigned range.
var widths = []struct {
	bits  int
	limit string
}{
	{8, "256"},
	{16, "65536"},
	{32, "4294967296"},
	{64, "18446744073709551616"},
}

// Prelude renders the declarations every translated program relies on: the
// heap model, the bitwise functions, the bounded<bits> range predicates and
// the accessor methods listed in accessors.
func Prelude(registry *shared.Registry, accessors []string) string {
	var sb strings.Builder
	sb.WriteString(heapModel)
	sb.WriteString("\n")
	for _, f := range []string{"bw_and", "bw_or", "bw_xor", "bw_shl", "bw_shr", "bw_lshr"} {
		fmt.Fprintf(&sb, "function %s(a: Int, b: Int): Int\n", f)
	}
	sb.WriteString("\n")
	for _, w := range widths {
		fmt.Fprintf(&sb, "function bounded%d(x: Int): Bool { 0 <= x && x < %s }\n", w.bits, w.limit)
	}
	methods := AccessorMethods(registry, accessors)
	if len(methods) > 0 {
		sb.WriteString("\n")
		sb.WriteString(viper.NewPrinter().Program(&viper.Program{Methods: methods}))
	}
	return sb.String()
}

// AccessorMethods declares the accessors named in names as abstract methods.
// Region accessors require the region's address predicate; loads ensure the
// result fits the access width. Unknown names are ignored.
func AccessorMethods(registry *shared.Registry, names []string) []*viper.Method {
	wanted := lo.SliceToMap(names, func(n string) (string, bool) { return n, true })
	addr := viper.IntVar("addr")
	var methods []*viper.Method
	for _, p := range registry.Prototypes() {
		for _, op := range []shared.Op{shared.OpLoad, shared.OpStore} {
			if name := p.AccessorName(op); wanted[name] && shared.Allowed(p.Perm, op) {
				m := accessorMethod(name, op, p.Bits)
				m.Pres = []viper.Expr{p.Predicate(addr)}
				methods = append(methods, m)
			}
		}
	}
	for _, w := range widths {
		for _, op := range []shared.Op{shared.OpLoad, shared.OpStore} {
			if name := shared.FallbackName(op, w.bits); wanted[name] {
				methods = append(methods, accessorMethod(name, op, w.bits))
			}
		}
	}
	return methods
}

func accessorMethod(name string, op shared.Op, bits int) *viper.Method {
	m := &viper.Method{
		Name: name,
		Args: []viper.LocalVarDecl{
			{Name: HeapName, Type: viper.TypeIArray},
			{Name: "addr", Type: viper.TypeInt},
		},
	}
	bounded := fmt.Sprintf("bounded%d", bits)
	if op == shared.OpStore {
		m.Args = append(m.Args, viper.LocalVarDecl{Name: "value", Type: viper.TypeInt})
		return m
	}
	m.Returns = []viper.LocalVarDecl{{Name: RetVal, Type: viper.TypeInt}}
	m.Posts = []viper.Expr{viper.FuncApp{Name: bounded, Args: []viper.Expr{viper.IntVar(RetVal)}}}
	return m
}

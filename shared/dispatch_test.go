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

package shared

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/ajroetker/pancakevc/pancake"
	"github.com/ajroetker/pancakevc/viper"
)

func TestDispatch(t *testing.T) {
	r, err := NewRegistry([]pancake.SharedDecl{
		listed("A", pancake.PermReadWrite, 32, 0x10),
		listed("B", pancake.PermWrite, 32, 0x20),
		listed("C", pancake.PermRead, 32, 0x30),
		listed("D", pancake.PermWrite, 8, 0x40),
	})
	require.NoError(t, err)

	heap := viper.LocalVar{Name: "heap", Type: viper.TypeIArray}
	addr := viper.IntVar("p")
	store := Access{Op: OpStore, Bits: 32, Address: addr, Args: []viper.Expr{heap, addr, viper.Int(7)}}
	load := Access{Op: OpLoad, Bits: 32, Address: addr, Args: []viper.Expr{heap, addr}, Targets: []viper.LocalVar{viper.IntVar("x")}}

	tests := []struct {
		name      string
		access    Access
		allow     bool
		want      string
		wantNames []string
	}{
		{
			name:   "stores test regions in registration order",
			access: store,
			want: `if (p == 16) {
	store_A(heap, p, 7)
} else {
	if (p == 32) {
		store_B(heap, p, 7)
	} else {
		assert false
	}
}
`,
			wantNames: []string{"store_A", "store_B"},
		},
		{
			name:   "loads fall back to the generic accessor",
			access: load,
			allow:  true,
			want: `if (p == 16) {
	x := load_A(heap, p)
} else {
	if (p == 48) {
		x := load_C(heap, p)
	} else {
		x := shared_load32(heap, p)
	}
}
`,
			wantNames: []string{"load_A", "load_C", "shared_load32"},
		},
		{
			name:      "no matching region",
			access:    Access{Op: OpLoad, Bits: 16, Address: addr, Args: []viper.Expr{heap, addr}},
			want:      "assert false\n",
			wantNames: []string{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stmt, names := r.Dispatch(tt.access, tt.allow)
			if got := viper.NewPrinter().Stmt(stmt); got != tt.want {
				t.Errorf("Dispatch() =\n%s\nwant:\n%s", got, tt.want)
			}
			if diff := cmp.Diff(tt.wantNames, names); diff != "" {
				t.Errorf("Dispatch() names mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestAccessCall(t *testing.T) {
	a := Access{Op: OpStore, Bits: 8, Address: viper.Int(4096), Args: []viper.Expr{viper.IntVar("heap"), viper.Int(4096), viper.Int(65)}}
	if got, want := viper.NewPrinter().Stmt(a.Call("store_UART0")), "store_UART0(heap, 4096, 65)\n"; got != want {
		t.Errorf("Call() = %q, want %q", got, want)
	}
}

func TestDispatchOverlap(t *testing.T) {
	x := listed("X", pancake.PermReadWrite, 16, 0x10, 0x12)
	y := listed("Y", pancake.PermReadWrite, 16, 0x12)
	heap := viper.LocalVar{Name: "heap", Type: viper.TypeIArray}
	addr := viper.IntVar("p")
	store := Access{Op: OpStore, Bits: 16, Address: addr, Args: []viper.Expr{heap, addr, viper.Int(7)}}

	tests := []struct {
		name  string
		decls []pancake.SharedDecl
		want  string
	}{
		{
			name:  "X registered first",
			decls: []pancake.SharedDecl{x, y},
			want: `if ((p == 16) || (p == 18)) {
	store_X(heap, p, 7)
} else {
	if (p == 18) {
		store_Y(heap, p, 7)
	} else {
		assert false
	}
}
`,
		},
		{
			name:  "Y registered first",
			decls: []pancake.SharedDecl{y, x},
			want: `if (p == 18) {
	store_Y(heap, p, 7)
} else {
	if ((p == 16) || (p == 18)) {
		store_X(heap, p, 7)
	} else {
		assert false
	}
}
`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := NewRegistry(tt.decls)
			require.NoError(t, err)
			require.NotEmpty(t, r.Duplicates())
			stmt, _ := r.Dispatch(store, false)
			if got := viper.NewPrinter().Stmt(stmt); got != tt.want {
				t.Errorf("Dispatch() =\n%s\nwant:\n%s", got, tt.want)
			}
		})
	}
}

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
	"github.com/ajroetker/pancakevc/viper"
)

// Access describes one shared load or store to dispatch.
type Access struct {
	Op   Op
	Bits int

	// Address is the translated address; it is matched against each region's
	// predicate.
	Address viper.Expr

	// Args are the accessor call arguments, Address included.
	Args []viper.Expr

	// Targets receive the accessor results; empty for stores.
	Targets []viper.LocalVar
}

// Call returns the call of accessor method with the access's arguments and
// targets.
func (a Access) Call(method string) viper.MethodCall {
	return viper.MethodCall{Method: method, Args: a.Args, Targets: a.Targets}
}

// Dispatch builds the conditional cascade selecting the accessor for a
// non-constant address. Regions are tested in registration order, so the
// first registered region containing the address wins. The innermost default
// calls the fallback accessor when allowUndefined is set and asserts false
// otherwise.
//
// It also returns the accessor names the cascade calls.
func (r *Registry) Dispatch(a Access, allowUndefined bool) (viper.Stmt, []string) {
	protos := r.Matching(a.Op, a.Bits)
	names := make([]string, 0, len(protos)+1)
	for _, p := range protos {
		names = append(names, p.AccessorName(a.Op))
	}

	var stmt viper.Stmt
	if allowUndefined {
		fallback := FallbackName(a.Op, a.Bits)
		stmt = a.Call(fallback)
		names = append(names, fallback)
	} else {
		stmt = viper.Assert{Expr: viper.BoolLit{Value: false}}
	}
	for i := len(protos) - 1; i >= 0; i-- {
		p := protos[i]
		stmt = viper.If{
			Cond: p.Predicate(a.Address),
			Then: viper.Block(a.Call(p.AccessorName(a.Op))),
			Else: viper.Block(stmt),
		}
	}
	return stmt, names
}

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
	"fmt"
	"slices"

	"github.com/ajroetker/pancakevc/pancake"
	"github.com/ajroetker/pancakevc/viper"
)

// Op is the direction of a shared-memory access.
type Op int

const (
	OpLoad Op = iota
	OpStore
)

// String returns "load" or "store"; accessor names are built from it.
func (op Op) String() string {
	if op == OpStore {
		return "store"
	}
	return "load"
}

// Allowed reports whether perm permits op.
func Allowed(perm pancake.Perm, op Op) bool {
	if op == OpStore {
		return perm.CanWrite()
	}
	return perm.CanRead()
}

// smallSetLimit is the largest address set encoded as a disjunction of
// equalities rather than a range-and-stride test.
const smallSetLimit = 3

// maxAddresses bounds the materialised address set of one prototype.
const maxAddresses = 1 << 20

// Prototype is a registered memory-mapped I/O region.
type Prototype struct {
	// Name identifies the region; accessors are named <load|store>_<Name>.
	Name string

	// Perm is the set of allowed access directions.
	Perm pancake.Perm

	// Bits is the access width: 8, 16, 32 or 64.
	Bits int

	// Ranged is set when the region was declared as {Lower, Upper, Stride}
	// rather than as an explicit address list.
	Ranged bool

	// Lower, Upper and Stride describe the half-open range of a ranged
	// prototype. They are zero for list-form prototypes.
	Lower, Upper, Stride int64

	// Addresses is the concrete address set, in ascending order for ranged
	// prototypes and in declaration order otherwise.
	Addresses []int64
}

// Bytes returns the number of bytes covered by one access.
func (p *Prototype) Bytes() int64 { return int64(p.Bits / 8) }

// Contains reports whether addr is one of the prototype's addresses. For
// ranged prototypes it is decided on the range descriptor and agrees with
// membership in Addresses.
func (p *Prototype) Contains(addr int64) bool {
	if !p.Ranged {
		return slices.Contains(p.Addresses, addr)
	}
	return p.Lower <= addr && addr < p.Upper && (uint64(addr)-uint64(p.Lower))%uint64(p.Stride) == 0
}

// AccessorName returns the method implementing op on this region.
func (p *Prototype) AccessorName(op Op) string {
	return op.String() + "_" + p.Name
}

// FallbackName returns the generic, width-tagged accessor used for addresses
// outside every region when undefined accesses are allowed.
func FallbackName(op Op, bits int) string {
	return fmt.Sprintf("shared_%s%d", op, bits)
}

// Predicate builds the condition under which addr lies in the region. Small
// or list-form sets become a disjunction of equalities; larger ranges become
// lower <= addr < upper with a stride congruence.
func (p *Prototype) Predicate(addr viper.Expr) viper.Expr {
	if !p.Ranged || len(p.Addresses) <= smallSetLimit {
		eqs := make([]viper.Expr, len(p.Addresses))
		for i, a := range p.Addresses {
			eqs[i] = viper.Eq(addr, viper.Int(a))
		}
		return viper.Disj(eqs...)
	}
	return viper.Conj(
		viper.Bin(viper.OpLe, viper.Int(p.Lower), addr),
		viper.Bin(viper.OpLt, addr, viper.Int(p.Upper)),
		viper.Eq(viper.Bin(viper.OpMod, addr, viper.Int(p.Stride)), viper.Int(euclidMod(p.Lower, p.Stride))),
	)
}

// euclidMod matches the target's modulo, which is never negative.
func euclidMod(a, m int64) int64 {
	r := a % m
	if r < 0 {
		r += m
	}
	return r
}

// newPrototype evaluates the declaration's constant expressions and
// materialises its address set.
func newPrototype(decl pancake.SharedDecl) (*Prototype, error) {
	p := &Prototype{Name: decl.Name, Perm: decl.Perm, Bits: decl.Bits}
	switch decl.Bits {
	case 8, 16, 32, 64:
	default:
		return nil, &InvalidPrototypeError{Prototype: decl.Name, Reason: fmt.Sprintf("unsupported bit width %d", decl.Bits)}
	}
	if decl.Perm&pancake.PermReadWrite == 0 {
		return nil, &InvalidPrototypeError{Prototype: decl.Name, Reason: "no access permission"}
	}

	if len(decl.Addresses) > 0 {
		for _, e := range decl.Addresses {
			a, ok := pancake.EvalConst(e)
			if !ok {
				return nil, &NonConstantBoundError{Prototype: decl.Name, Bound: "address", Expr: e}
			}
			if !slices.Contains(p.Addresses, a) {
				p.Addresses = append(p.Addresses, a)
			}
		}
		return p, nil
	}

	bounds := []struct {
		name string
		expr pancake.Expr
		dst  *int64
	}{
		{"lower", decl.Lower, &p.Lower},
		{"upper", decl.Upper, &p.Upper},
		{"stride", decl.Stride, &p.Stride},
	}
	for _, b := range bounds {
		if b.expr == nil {
			return nil, &InvalidPrototypeError{Prototype: decl.Name, Reason: "missing " + b.name + " bound"}
		}
		v, ok := pancake.EvalConst(b.expr)
		if !ok {
			return nil, &NonConstantBoundError{Prototype: decl.Name, Bound: b.name, Expr: b.expr}
		}
		*b.dst = v
	}
	if p.Stride <= 0 {
		return nil, &InvalidPrototypeError{Prototype: decl.Name, Reason: fmt.Sprintf("stride must be positive, got %d", p.Stride)}
	}
	if p.Upper <= p.Lower {
		return nil, &InvalidPrototypeError{Prototype: decl.Name, Reason: fmt.Sprintf("empty range [%#x, %#x)", p.Lower, p.Upper)}
	}
	// The span of any non-empty int64 range fits in a uint64.
	span := uint64(p.Upper) - uint64(p.Lower)
	n := span / uint64(p.Stride)
	if span%uint64(p.Stride) != 0 {
		n++
	}
	if n > maxAddresses {
		return nil, &InvalidPrototypeError{Prototype: decl.Name, Reason: fmt.Sprintf("range covers %d addresses, limit is %d", n, maxAddresses)}
	}
	p.Ranged = true
	p.Addresses = make([]int64, 0, n)
	for i := range int64(n) {
		p.Addresses = append(p.Addresses, p.Lower+i*p.Stride)
	}
	return p, nil
}

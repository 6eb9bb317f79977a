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

// Package shared models memory-mapped I/O regions: registration of region
// prototypes, their address predicates, and the dispatch of shared loads and
// stores to per-region accessor methods.
//
// A Registry is built once per program and is read-only afterwards, so it can
// be shared by concurrently translated functions.
package shared

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/samber/lo"

	"github.com/ajroetker/pancakevc/pancake"
)

// Duplicate records a byte claimed by more than one region for the same
// access direction.
type Duplicate struct {
	Address   int64
	Op        Op
	Prototype string
	Previous  string
}

// String formats the duplicate as a warning message.
func (d Duplicate) String() string {
	dir := "reading"
	if d.Op == OpStore {
		dir = "writing"
	}
	return fmt.Sprintf("shared address %#x of %s is defined multiple times for %s (first defined by %s)",
		d.Address, d.Prototype, dir, d.Previous)
}

// Registry holds the registered prototypes in registration order.
type Registry struct {
	protos     []*Prototype
	byName     map[string]*Prototype
	readBytes  map[int64]string
	writeBytes map[int64]string
	duplicates []Duplicate
}

// NewRegistry registers decls in order. Overlapping regions are accepted and
// recorded as duplicates; the first registration takes precedence at
// dispatch.
func NewRegistry(decls []pancake.SharedDecl) (*Registry, error) {
	r := &Registry{
		byName:     make(map[string]*Prototype),
		readBytes:  make(map[int64]string),
		writeBytes: make(map[int64]string),
	}
	for _, decl := range decls {
		if err := r.Register(decl); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register adds one region.
func (r *Registry) Register(decl pancake.SharedDecl) error {
	if _, found := r.byName[decl.Name]; found {
		return &InvalidPrototypeError{Prototype: decl.Name, Reason: "region already registered"}
	}
	p, err := newPrototype(decl)
	if err != nil {
		return errors.Wrapf(err, "registering shared region %q", decl.Name)
	}
	for _, addr := range p.Addresses {
		for b := addr; b < addr+p.Bytes(); b++ {
			if p.Perm.CanRead() {
				r.claim(r.readBytes, b, OpLoad, p.Name)
			}
			if p.Perm.CanWrite() {
				r.claim(r.writeBytes, b, OpStore, p.Name)
			}
		}
	}
	r.protos = append(r.protos, p)
	r.byName[p.Name] = p
	return nil
}

func (r *Registry) claim(set map[int64]string, b int64, op Op, name string) {
	if prev, found := set[b]; found {
		r.duplicates = append(r.duplicates, Duplicate{Address: b, Op: op, Prototype: name, Previous: prev})
		return
	}
	set[b] = name
}

// Prototypes returns the registered regions in registration order.
func (r *Registry) Prototypes() []*Prototype { return r.protos }

// Lookup returns the region with the given name.
func (r *Registry) Lookup(name string) (*Prototype, bool) {
	p, ok := r.byName[name]
	return p, ok
}

// Duplicates returns the collisions found during registration.
func (r *Registry) Duplicates() []Duplicate { return r.duplicates }

// Matching returns, in registration order, the regions of the given width
// whose permission allows op.
func (r *Registry) Matching(op Op, bits int) []*Prototype {
	return lo.Filter(r.protos, func(p *Prototype, _ int) bool {
		return p.Bits == bits && Allowed(p.Perm, op)
	})
}

// ResolveAccessor names the accessor serving a constant address: the first
// matching region containing addr, else the fallback when allowUndefined is
// set, else an UnregisteredAccessError.
func (r *Registry) ResolveAccessor(addr int64, op Op, bits int, allowUndefined bool) (string, error) {
	p, found := lo.Find(r.Matching(op, bits), func(p *Prototype) bool {
		return p.Contains(addr)
	})
	if found {
		return p.AccessorName(op), nil
	}
	if allowUndefined {
		return FallbackName(op, bits), nil
	}
	return "", &UnregisteredAccessError{Op: op, Address: addr, Bits: bits}
}

// AccessorNames lists every accessor a program with this registry may call,
// in registration order with loads before stores for each region.
func (r *Registry) AccessorNames() []string {
	var names []string
	for _, p := range r.protos {
		if p.Perm.CanRead() {
			names = append(names, p.AccessorName(OpLoad))
		}
		if p.Perm.CanWrite() {
			names = append(names, p.AccessorName(OpStore))
		}
	}
	return names
}

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
	"github.com/ajroetker/pancakevc/pancake"
	"github.com/ajroetker/pancakevc/shared"
	"github.com/ajroetker/pancakevc/viper"
)

// sharedStore lowers a shared store to store_<region>(heap, addr, value).
func (c *Context) sharedStore(s pancake.SharedStore) error {
	addr, err := c.word(s.Address)
	if err != nil {
		return err
	}
	value, err := c.word(s.Value)
	if err != nil {
		return err
	}
	return c.sharedAccess(s.Address, shared.Access{
		Op:      shared.OpStore,
		Bits:    s.Bits,
		Address: addr,
		Args:    []viper.Expr{heapVar(), addr, value},
	})
}

// sharedLoad lowers a shared load to dest := load_<region>(heap, addr).
func (c *Context) sharedLoad(s pancake.SharedLoad) error {
	dest, err := c.wordDest(s.Dest)
	if err != nil {
		return err
	}
	addr, err := c.word(s.Address)
	if err != nil {
		return err
	}
	return c.sharedAccess(s.Address, shared.Access{
		Op:      shared.OpLoad,
		Bits:    s.Bits,
		Address: addr,
		Args:    []viper.Expr{heapVar(), addr},
		Targets: []viper.LocalVar{dest},
	})
}

// sharedAccess calls the accessor directly when the source address is a
// constant, and emits the dispatch cascade otherwise.
func (c *Context) sharedAccess(src pancake.Expr, a shared.Access) error {
	c.assertAligned(a.Address, int64(a.Bits/8))
	allow := c.fn.opts.AllowUndefinedShared
	if addr, ok := pancake.EvalConst(src); ok {
		name, err := c.fn.registry.ResolveAccessor(addr, a.Op, a.Bits, allow)
		if err != nil {
			return err
		}
		c.requireAccessors(name)
		c.emit(a.Call(name))
		return nil
	}
	stmt, names := c.fn.registry.Dispatch(a, allow)
	c.requireAccessors(names...)
	c.emit(stmt)
	return nil
}

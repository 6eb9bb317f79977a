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

	"github.com/ajroetker/pancakevc/pancake"
)

// UnregisteredAccessError reports a shared access at an address that no
// region covers while undefined accesses are disallowed.
type UnregisteredAccessError struct {
	Op      Op
	Address int64
	Bits    int
}

func (e *UnregisteredAccessError) Error() string {
	return fmt.Sprintf("no shared memory region registered for %d-bit %s at address %#x", e.Bits, e.Op, e.Address)
}

// NonConstantBoundError reports a prototype bound that does not fold to a
// constant at registration time.
type NonConstantBoundError struct {
	Prototype string
	Bound     string
	Expr      pancake.Expr
}

func (e *NonConstantBoundError) Error() string {
	return fmt.Sprintf("shared region %s: %s %s is not a constant expression", e.Prototype, e.Bound, e.Expr)
}

// InvalidPrototypeError reports a malformed region declaration.
type InvalidPrototypeError struct {
	Prototype string
	Reason    string
}

func (e *InvalidPrototypeError) Error() string {
	return fmt.Sprintf("shared region %s: %s", e.Prototype, e.Reason)
}

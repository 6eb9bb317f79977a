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
	"github.com/pkg/errors"

	"github.com/ajroetker/pancakevc/pancake"
	"github.com/ajroetker/pancakevc/shared"
	"github.com/ajroetker/pancakevc/viper"
)

// Result is the translation of one function.
type Result struct {
	Method *viper.Method

	// Accessors are the shared-memory accessors the method calls, in order
	// of first use.
	Accessors []string
}

// Function translates f into
//
//	method f_<name>(heap: IArray, arg_<p>: T...) returns (retval: Int)
//
// Parameters are copied into mangled locals on entry and every return jumps
// to the single return_label at the end of the body.
func Function(f *pancake.Function, registry *shared.Registry, opts Options) (*Result, error) {
	c := NewContext(f.Name, registry, opts)
	args := []viper.LocalVarDecl{{Name: HeapName, Type: viper.TypeIArray}}
	for _, p := range f.Params {
		if _, dup := c.fn.args[p.Name]; dup {
			return nil, errors.Errorf("duplicate parameter %s", p.Name)
		}
		mangled, err := c.Declare(p.Name, p.Shape)
		if err != nil {
			return nil, errors.Wrapf(err, "parameter %s", p.Name)
		}
		arg := ArgName(p.Name)
		c.fn.args[p.Name] = arg
		typ := viperType(p.Shape)
		args = append(args, viper.LocalVarDecl{Name: arg, Type: typ})
		c.emit(viper.LocalVarAssign{
			Target: viper.LocalVar{Name: mangled, Type: typ},
			Value:  viper.LocalVar{Name: arg, Type: typ},
		})
	}
	if err := c.lowerStmt(f.Body); err != nil {
		return nil, err
	}
	body := c.block(viper.Label{Name: c.ReturnLabel()})
	return &Result{
		Method: &viper.Method{
			Name:    MethodName(f.Name),
			Args:    args,
			Returns: []viper.LocalVarDecl{{Name: RetVal, Type: viper.TypeInt}},
			Pres:    c.Preconditions(),
			Posts:   c.Postconditions(),
			Body:    body,
		},
		Accessors: c.Accessors(),
	}, nil
}

// ArgName is the method argument carrying parameter p.
func ArgName(p string) string { return "arg_" + p }

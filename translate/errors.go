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

	"github.com/ajroetker/pancakevc/pancake"
)

// ShapeMismatchError reports a value whose shape differs from the shape its
// destination was declared with.
type ShapeMismatchError struct {
	Name string
	Want pancake.Shape
	Got  pancake.Shape
}

func (e *ShapeMismatchError) Error() string {
	return fmt.Sprintf("shape mismatch for %s: declared %s, assigned %s", e.Name, e.Want, e.Got)
}

// UndeclaredVariableError reports a use of a name that is not in scope.
type UndeclaredVariableError struct {
	Name string
}

func (e *UndeclaredVariableError) Error() string {
	return fmt.Sprintf("variable %s was not declared", e.Name)
}

// ReservedNameError reports a declaration of a reserved identifier.
type ReservedNameError struct {
	Name string
}

func (e *ReservedNameError) Error() string {
	return fmt.Sprintf("%s is a reserved keyword and can't be used as an identifier", e.Name)
}

// InvalidAnnotationError reports a malformed specification annotation.
type InvalidAnnotationError struct {
	Kind   pancake.AnnotationKind
	Reason string
}

func (e *InvalidAnnotationError) Error() string {
	return fmt.Sprintf("invalid %s annotation: %s", e.Kind, e.Reason)
}

// InvalidExpressionError reports an expression that cannot appear where it
// was used, such as a quantifier in executable code.
type InvalidExpressionError struct {
	Expr   pancake.Expr
	Reason string
}

func (e *InvalidExpressionError) Error() string {
	return fmt.Sprintf("invalid expression %s: %s", e.Expr, e.Reason)
}

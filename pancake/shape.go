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

package pancake

import "strings"

// ShapeKind separates single words from aggregates.
type ShapeKind int

const (
	ShapeWord ShapeKind = iota
	ShapeNested
)

// Shape describes the layout of a value: a single word, or a nested
// aggregate of shapes.
type Shape struct {
	Kind  ShapeKind
	Elems []Shape
}

// Word is the shape of a scalar.
func Word() Shape { return Shape{Kind: ShapeWord} }

// Nested builds an aggregate shape.
func Nested(elems ...Shape) Shape {
	return Shape{Kind: ShapeNested, Elems: elems}
}

// IsWord reports whether s is a scalar.
func (s Shape) IsWord() bool { return s.Kind == ShapeWord }

// Size returns the number of words a value of this shape occupies.
func (s Shape) Size() int {
	if s.IsWord() {
		return 1
	}
	n := 0
	for _, e := range s.Elems {
		n += e.Size()
	}
	return n
}

// Offset returns the word offset of element i of an aggregate.
func (s Shape) Offset(i int) int {
	off := 0
	for _, e := range s.Elems[:i] {
		off += e.Size()
	}
	return off
}

// Equal reports structural equality.
func (s Shape) Equal(o Shape) bool {
	if s.Kind != o.Kind || len(s.Elems) != len(o.Elems) {
		return false
	}
	for i := range s.Elems {
		if !s.Elems[i].Equal(o.Elems[i]) {
			return false
		}
	}
	return true
}

// String renders the shape in the notation of the source compiler:
// "1" for a word, "<1,<1,1>>" for aggregates.
func (s Shape) String() string {
	if s.IsWord() {
		return "1"
	}
	parts := make([]string, len(s.Elems))
	for i, e := range s.Elems {
		parts[i] = e.String()
	}
	return "<" + strings.Join(parts, ",") + ">"
}

// sexpr renders the shape in front-end syntax.
func (s Shape) sexpr() string {
	if s.IsWord() {
		return "1"
	}
	parts := make([]string, len(s.Elems))
	for i, e := range s.Elems {
		parts[i] = e.sexpr()
	}
	return "(" + strings.Join(parts, " ") + ")"
}

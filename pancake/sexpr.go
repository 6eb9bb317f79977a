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

import (
	"fmt"
	"strings"
	"unicode"
)

// Pos is a 1-based source position.
type Pos struct {
	Line, Col int
}

func (p Pos) String() string { return fmt.Sprintf("%d:%d", p.Line, p.Col) }

// SExpr is an atom or a parenthesised list.
type SExpr struct {
	Pos    Pos
	Atom   string
	List   []SExpr
	IsList bool
}

// Head returns the first atom of a list, or "" when there is none.
func (s SExpr) Head() string {
	if !s.IsList || len(s.List) == 0 || s.List[0].IsList {
		return ""
	}
	return s.List[0].Atom
}

func (s SExpr) String() string {
	if !s.IsList {
		return s.Atom
	}
	parts := make([]string, len(s.List))
	for i, e := range s.List {
		parts[i] = e.String()
	}
	return "(" + strings.Join(parts, " ") + ")"
}

// SyntaxError reports malformed input with its position.
type SyntaxError struct {
	File string
	Pos  Pos
	Msg  string
}

func (e *SyntaxError) Error() string {
	if e.File == "" {
		return fmt.Sprintf("%s: %s", e.Pos, e.Msg)
	}
	return fmt.Sprintf("%s:%s: %s", e.File, e.Pos, e.Msg)
}

// reader holds the scanning state over one source text.
type reader struct {
	file string
	src  []rune
	pos  int
	line int
	col  int
}

// ReadSExprs reads every top-level S-expression in src. Comments run from ';'
// to the end of the line.
func ReadSExprs(file, src string) ([]SExpr, error) {
	r := &reader{file: file, src: []rune(src), line: 1, col: 1}
	var out []SExpr
	for {
		r.skipSpace()
		if r.pos >= len(r.src) {
			return out, nil
		}
		s, err := r.read()
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
}

func (r *reader) errorf(at Pos, format string, args ...any) error {
	return &SyntaxError{File: r.file, Pos: at, Msg: fmt.Sprintf(format, args...)}
}

func (r *reader) here() Pos { return Pos{Line: r.line, Col: r.col} }

func (r *reader) peek() rune {
	if r.pos >= len(r.src) {
		return 0
	}
	return r.src[r.pos]
}

func (r *reader) advance() rune {
	c := r.src[r.pos]
	r.pos++
	if c == '\n' {
		r.line++
		r.col = 1
	} else {
		r.col++
	}
	return c
}

func (r *reader) skipSpace() {
	for r.pos < len(r.src) {
		c := r.peek()
		switch {
		case c == ';':
			for r.pos < len(r.src) && r.peek() != '\n' {
				r.advance()
			}
		case unicode.IsSpace(c):
			r.advance()
		default:
			return
		}
	}
}

func (r *reader) read() (SExpr, error) {
	start := r.here()
	switch r.peek() {
	case '(':
		r.advance()
		list := SExpr{Pos: start, IsList: true}
		for {
			r.skipSpace()
			if r.pos >= len(r.src) {
				return SExpr{}, r.errorf(start, "unterminated list")
			}
			if r.peek() == ')' {
				r.advance()
				return list, nil
			}
			elem, err := r.read()
			if err != nil {
				return SExpr{}, err
			}
			list.List = append(list.List, elem)
		}
	case ')':
		return SExpr{}, r.errorf(start, "unexpected ')'")
	}
	var sb strings.Builder
	for r.pos < len(r.src) {
		c := r.peek()
		if c == '(' || c == ')' || c == ';' || unicode.IsSpace(c) {
			break
		}
		sb.WriteRune(r.advance())
	}
	return SExpr{Pos: start, Atom: sb.String()}, nil
}

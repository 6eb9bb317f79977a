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

package viper

import (
	"bytes"
	"fmt"
	"strings"
)

// Printer renders the Viper AST as source text.
//
// Nested blocks are flattened into the enclosing method scope: local names
// produced by the translator are unique per method, so hoisting a declaration
// to the start of its block is the only scoping the output needs.
type Printer struct {
	buf    *bytes.Buffer
	indent int
}

// NewPrinter creates a printer.
func NewPrinter() *Printer {
	return &Printer{buf: &bytes.Buffer{}}
}

// Program renders all methods, separated by blank lines.
func (p *Printer) Program(prog *Program) string {
	p.reset()
	for i, m := range prog.Methods {
		if i > 0 {
			p.buf.WriteString("\n")
		}
		p.method(m)
	}
	return p.buf.String()
}

// Method renders a single method.
func (p *Printer) Method(m *Method) string {
	p.reset()
	p.method(m)
	return p.buf.String()
}

// Stmt renders a statement at indentation zero.
func (p *Printer) Stmt(s Stmt) string {
	p.reset()
	p.stmt(s)
	return p.buf.String()
}

// Expr renders an expression without outer parentheses.
func (p *Printer) Expr(e Expr) string {
	return exprString(e, true)
}

func (p *Printer) reset() {
	p.buf.Reset()
	p.indent = 0
}

func (p *Printer) writef(format string, args ...any) {
	for i := 0; i < p.indent; i++ {
		p.buf.WriteString("\t")
	}
	fmt.Fprintf(p.buf, format, args...)
}

func (p *Printer) method(m *Method) {
	sig := fmt.Sprintf("method %s(%s)", m.Name, declList(m.Args))
	if len(m.Returns) > 0 {
		sig += fmt.Sprintf(" returns (%s)", declList(m.Returns))
	}
	p.writef("%s\n", sig)
	p.indent++
	for _, pre := range m.Pres {
		p.writef("requires %s\n", exprString(pre, true))
	}
	for _, post := range m.Posts {
		p.writef("ensures %s\n", exprString(post, true))
	}
	p.indent--
	if m.Body == nil {
		return
	}
	p.writef("{\n")
	p.indent++
	p.stmt(m.Body)
	p.indent--
	p.writef("}\n")
}

func declList(decls []LocalVarDecl) string {
	parts := make([]string, len(decls))
	for i, d := range decls {
		parts[i] = d.Name + ": " + d.Type.String()
	}
	return strings.Join(parts, ", ")
}

func (p *Printer) stmt(s Stmt) {
	switch s := s.(type) {
	case *Seqn:
		if s == nil {
			return
		}
		for _, d := range s.Decls {
			p.writef("var %s: %s\n", d.Name, d.Type)
		}
		for _, child := range s.Stmts {
			p.stmt(child)
		}

	case LocalVarAssign:
		p.writef("%s := %s\n", s.Target.Name, exprString(s.Value, true))

	case FieldAssign:
		p.writef("%s := %s\n", exprString(s.Target, true), exprString(s.Value, true))

	case MethodCall:
		call := fmt.Sprintf("%s(%s)", s.Method, exprList(s.Args))
		if len(s.Targets) == 0 {
			p.writef("%s\n", call)
			return
		}
		names := make([]string, len(s.Targets))
		for i, t := range s.Targets {
			names[i] = t.Name
		}
		p.writef("%s := %s\n", strings.Join(names, ", "), call)

	case Goto:
		p.writef("goto %s\n", s.Label)

	case Label:
		p.writef("label %s\n", s.Name)

	case If:
		p.writef("if (%s) {\n", exprString(s.Cond, true))
		p.block(s.Then)
		if !isEmpty(s.Else) {
			p.writef("} else {\n")
			p.block(s.Else)
		}
		p.writef("}\n")

	case While:
		if len(s.Invariants) == 0 {
			p.writef("while (%s) {\n", exprString(s.Cond, true))
		} else {
			p.writef("while (%s)\n", exprString(s.Cond, true))
			p.indent++
			for _, inv := range s.Invariants {
				p.writef("invariant %s\n", exprString(inv, true))
			}
			p.indent--
			p.writef("{\n")
		}
		p.block(s.Body)
		p.writef("}\n")

	case Assert:
		p.writef("assert %s\n", exprString(s.Expr, true))

	case Inhale:
		p.writef("inhale %s\n", exprString(s.Expr, true))

	case Exhale:
		p.writef("exhale %s\n", exprString(s.Expr, true))

	case Fold:
		p.writef("fold %s\n", exprString(s.Access, true))

	case Unfold:
		p.writef("unfold %s\n", exprString(s.Access, true))

	case Comment:
		p.writef("// %s\n", s.Text)

	default:
		p.writef("// unknown statement %T\n", s)
	}
}

func (p *Printer) block(s Stmt) {
	p.indent++
	p.stmt(s)
	p.indent--
}

func isEmpty(s Stmt) bool {
	if s == nil {
		return true
	}
	if seq, ok := s.(*Seqn); ok {
		if seq.IsEmpty() {
			return true
		}
		for _, child := range seq.Stmts {
			if !isEmpty(child) {
				return false
			}
		}
		return len(seq.Decls) == 0
	}
	return false
}

func exprList(es []Expr) string {
	parts := make([]string, len(es))
	for i, e := range es {
		parts[i] = exprString(e, true)
	}
	return strings.Join(parts, ", ")
}

// exprString renders e. Binary and conditional expressions are parenthesised
// unless top is set.
func exprString(e Expr, top bool) string {
	wrap := func(s string) string {
		if top {
			return s
		}
		return "(" + s + ")"
	}
	switch e := e.(type) {
	case IntLit:
		return fmt.Sprintf("%d", e.Value)
	case BoolLit:
		if e.Value {
			return "true"
		}
		return "false"
	case LocalVar:
		return e.Name
	case BinExpr:
		return wrap(exprString(e.Left, false) + " " + e.Op.String() + " " + exprString(e.Right, false))
	case Not:
		return "!" + exprString(e.X, false)
	case CondExpr:
		return wrap(exprString(e.Cond, false) + " ? " + exprString(e.Then, false) + " : " + exprString(e.Else, false))
	case FuncApp:
		return e.Name + "(" + exprList(e.Args) + ")"
	case FieldAccess:
		return exprString(e.Recv, false) + "." + e.Field
	case PredicateAccess:
		return fmt.Sprintf("acc(%s(%s), %s)", e.Name, exprList(e.Args), exprString(e.Perm, true))
	case FullPerm:
		return "write"
	case SeqLit:
		if len(e.Elems) == 0 {
			return "Seq[Int]()"
		}
		return "Seq(" + exprList(e.Elems) + ")"
	case SeqIndex:
		return exprString(e.Seq, false) + "[" + exprString(e.Index, true) + "]"
	case SeqSlice:
		return exprString(e.Seq, false) + "[" + exprString(e.From, true) + ".." + exprString(e.To, true) + "]"
	case SeqAppend:
		return wrap(exprString(e.Left, false) + " ++ " + exprString(e.Right, false))
	case Quantifier:
		kw := "forall"
		if e.Exists {
			kw = "exists"
		}
		return "(" + kw + " " + declList(e.Vars) + " :: " + exprString(e.Body, true) + ")"
	default:
		return fmt.Sprintf("/* unknown expression %T */", e)
	}
}

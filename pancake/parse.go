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
	"os"
	"strconv"
	"strings"
)

// Front-end syntax, one form per line:
//
//	program  := { (shared NAME PERM BITS LOWER UPPER STRIDE)
//	            | (shared NAME PERM BITS (addrs EXPR...))
//	            | (func NAME (PARAM...) STMT) }
//	PARAM    := NAME | (NAME SHAPE)
//	SHAPE    := 1 | (SHAPE...)
//	STMT     := skip | tick | break | continue
//	          | (seq STMT...) | (dec NAME EXPR [STMT]) | (assign NAME EXPR)
//	          | (store EXPR EXPR) | (store-byte EXPR EXPR)
//	          | (shared-store BITS EXPR EXPR) | (shared-load BITS NAME EXPR)
//	          | (if EXPR STMT [STMT]) | (while EXPR STMT)
//	          | (call NAME|_ FUNC (EXPR...)) | (tail-call FUNC EXPR...)
//	          | (ext-call FUNC EXPR...) | (return EXPR) | (raise NAME)
//	          | (assert|inhale|exhale|invariant|requires|ensures|fold|unfold EXPR)
//	EXPR     := INT | NAME | (OP EXPR EXPR...) | (CMP EXPR EXPR)
//	          | (&& E E) | (|| E E) | (==> E E) | (! E)
//	          | (load SHAPE EXPR) | (load-byte EXPR) | (struct EXPR...)
//	          | (field INT EXPR) | (call FUNC EXPR...)
//	          | (forall (NAME...) EXPR) | (exists (NAME...) EXPR)

var opKinds = map[string]OpKind{
	"+": OpAdd, "-": OpSub, "*": OpMul,
	"&": OpAnd, "|": OpOr, "^": OpXor,
	"<<": OpShl, ">>": OpShr, ">>>": OpLshr,
}

var cmpKinds = map[string]CmpKind{
	"==": CmpEq, "!=": CmpNe, "<": CmpLt, "<=": CmpLe, ">": CmpGt, ">=": CmpGe,
}

var logicKinds = map[string]LogicKind{
	"&&": LogicAnd, "||": LogicOr, "==>": LogicImplies,
}

// ParseFile reads and parses a program from disk.
func ParseFile(path string) (*Program, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(path, string(src))
}

// Parse parses a whole program.
func Parse(file, src string) (*Program, error) {
	forms, err := ReadSExprs(file, src)
	if err != nil {
		return nil, err
	}
	p := &parser{file: file}
	prog := &Program{}
	for _, form := range forms {
		switch form.Head() {
		case "shared":
			decl, err := p.shared(form)
			if err != nil {
				return nil, err
			}
			prog.Shared = append(prog.Shared, decl)
		case "func":
			fn, err := p.function(form)
			if err != nil {
				return nil, err
			}
			if prog.Func(fn.Name) != nil {
				return nil, p.errorf(form, "function %s redefined", fn.Name)
			}
			prog.Funcs = append(prog.Funcs, fn)
		default:
			return nil, p.errorf(form, "expected shared or func declaration, got %s", form)
		}
	}
	return prog, nil
}

// ParseStmt parses a single statement from source text.
func ParseStmt(src string) (Stmt, error) {
	s, err := readOne(src)
	if err != nil {
		return nil, err
	}
	return (&parser{}).stmt(s)
}

// ParseExpr parses a single expression from source text.
func ParseExpr(src string) (Expr, error) {
	s, err := readOne(src)
	if err != nil {
		return nil, err
	}
	return (&parser{}).expr(s)
}

func readOne(src string) (SExpr, error) {
	forms, err := ReadSExprs("", src)
	if err != nil {
		return SExpr{}, err
	}
	if len(forms) != 1 {
		return SExpr{}, &SyntaxError{Pos: Pos{1, 1}, Msg: fmt.Sprintf("expected one form, got %d", len(forms))}
	}
	return forms[0], nil
}

type parser struct {
	file string
}

func (p *parser) errorf(at SExpr, format string, args ...any) error {
	return &SyntaxError{File: p.file, Pos: at.Pos, Msg: fmt.Sprintf(format, args...)}
}

// arity checks that list s has between min and max elements after its head.
func (p *parser) arity(s SExpr, min, max int) error {
	n := len(s.List) - 1
	if n < min || n > max {
		if min == max {
			return p.errorf(s, "%s takes %d operands, got %d", s.Head(), min, n)
		}
		return p.errorf(s, "%s takes %d to %d operands, got %d", s.Head(), min, max, n)
	}
	return nil
}

func (p *parser) name(s SExpr) (string, error) {
	if s.IsList || s.Atom == "" {
		return "", p.errorf(s, "expected a name, got %s", s)
	}
	if isNumeric(s.Atom) {
		return "", p.errorf(s, "expected a name, got number %s", s.Atom)
	}
	return s.Atom, nil
}

// isNumeric reports whether atom is spelled as an integer literal, an
// optional minus sign followed by a digit.
func isNumeric(atom string) bool {
	digits := strings.TrimPrefix(atom, "-")
	return digits != "" && digits[0] >= '0' && digits[0] <= '9'
}

func (p *parser) int(s SExpr) (int64, error) {
	if s.IsList {
		return 0, p.errorf(s, "expected an integer, got %s", s)
	}
	v, err := strconv.ParseInt(s.Atom, 0, 64)
	if err != nil {
		return 0, p.errorf(s, "invalid integer %q", s.Atom)
	}
	return v, nil
}

func (p *parser) bits(s SExpr) (int, error) {
	v, err := p.int(s)
	if err != nil {
		return 0, err
	}
	switch v {
	case 8, 16, 32, 64:
		return int(v), nil
	}
	return 0, p.errorf(s, "bit width must be 8, 16, 32 or 64, got %d", v)
}

func (p *parser) shape(s SExpr) (Shape, error) {
	if !s.IsList {
		if s.Atom != "1" {
			return Shape{}, p.errorf(s, "invalid shape %s", s)
		}
		return Word(), nil
	}
	elems := make([]Shape, 0, len(s.List))
	for _, e := range s.List {
		sh, err := p.shape(e)
		if err != nil {
			return Shape{}, err
		}
		elems = append(elems, sh)
	}
	return Nested(elems...), nil
}

func (p *parser) shared(s SExpr) (SharedDecl, error) {
	if err := p.arity(s, 4, 6); err != nil {
		return SharedDecl{}, err
	}
	var decl SharedDecl
	var err error
	if decl.Name, err = p.name(s.List[1]); err != nil {
		return decl, err
	}
	perm, ok := ParsePerm(s.List[2].Atom)
	if !ok || s.List[2].IsList {
		return decl, p.errorf(s.List[2], "invalid permission %s", s.List[2])
	}
	decl.Perm = perm
	if decl.Bits, err = p.bits(s.List[3]); err != nil {
		return decl, err
	}
	rest := s.List[4:]
	if len(rest) == 1 {
		if rest[0].Head() != "addrs" {
			return decl, p.errorf(rest[0], "expected (addrs ...) or lower upper stride")
		}
		for _, a := range rest[0].List[1:] {
			e, err := p.expr(a)
			if err != nil {
				return decl, err
			}
			decl.Addresses = append(decl.Addresses, e)
		}
		if len(decl.Addresses) == 0 {
			return decl, p.errorf(rest[0], "shared region %s has no addresses", decl.Name)
		}
		return decl, nil
	}
	if len(rest) != 3 {
		return decl, p.errorf(s, "shared region %s needs lower, upper and stride", decl.Name)
	}
	bounds := []*Expr{&decl.Lower, &decl.Upper, &decl.Stride}
	for i, b := range bounds {
		if *b, err = p.expr(rest[i]); err != nil {
			return decl, err
		}
	}
	return decl, nil
}

func (p *parser) function(s SExpr) (*Function, error) {
	if err := p.arity(s, 3, 3); err != nil {
		return nil, err
	}
	name, err := p.name(s.List[1])
	if err != nil {
		return nil, err
	}
	fn := &Function{Name: name}
	params := s.List[2]
	if !params.IsList {
		return nil, p.errorf(params, "expected parameter list, got %s", params)
	}
	for _, ps := range params.List {
		param := Param{Shape: Word()}
		if ps.IsList {
			if len(ps.List) != 2 {
				return nil, p.errorf(ps, "parameter must be NAME or (NAME SHAPE)")
			}
			if param.Name, err = p.name(ps.List[0]); err != nil {
				return nil, err
			}
			if param.Shape, err = p.shape(ps.List[1]); err != nil {
				return nil, err
			}
		} else if param.Name, err = p.name(ps); err != nil {
			return nil, err
		}
		fn.Params = append(fn.Params, param)
	}
	if fn.Body, err = p.stmt(s.List[3]); err != nil {
		return nil, fmt.Errorf("function %s: %w", name, err)
	}
	return fn, nil
}

func (p *parser) stmt(s SExpr) (Stmt, error) {
	if !s.IsList {
		switch s.Atom {
		case "skip":
			return Skip{}, nil
		case "tick":
			return Tick{}, nil
		case "break":
			return Break{}, nil
		case "continue":
			return Continue{}, nil
		}
		return nil, p.errorf(s, "unknown statement %s", s)
	}
	head := s.Head()
	if kind, ok := ParseAnnotationKind(head); ok {
		if err := p.arity(s, 1, 1); err != nil {
			return nil, err
		}
		e, err := p.expr(s.List[1])
		if err != nil {
			return nil, err
		}
		return Annotation{Kind: kind, Expr: e}, nil
	}
	switch head {
	case "seq":
		seq := Seq{}
		for _, child := range s.List[1:] {
			st, err := p.stmt(child)
			if err != nil {
				return nil, err
			}
			seq.Stmts = append(seq.Stmts, st)
		}
		return seq, nil

	case "dec":
		if err := p.arity(s, 2, 3); err != nil {
			return nil, err
		}
		name, err := p.name(s.List[1])
		if err != nil {
			return nil, err
		}
		init, err := p.expr(s.List[2])
		if err != nil {
			return nil, err
		}
		var scope Stmt = Skip{}
		if len(s.List) == 4 {
			if scope, err = p.stmt(s.List[3]); err != nil {
				return nil, err
			}
		}
		return Definition{Name: name, Init: init, Scope: scope}, nil

	case "assign":
		if err := p.arity(s, 2, 2); err != nil {
			return nil, err
		}
		name, err := p.name(s.List[1])
		if err != nil {
			return nil, err
		}
		value, err := p.expr(s.List[2])
		if err != nil {
			return nil, err
		}
		return Assign{Name: name, Value: value}, nil

	case "store", "store-byte":
		if err := p.arity(s, 2, 2); err != nil {
			return nil, err
		}
		exprs, err := p.exprs(s.List[1:])
		if err != nil {
			return nil, err
		}
		if head == "store" {
			return Store{Address: exprs[0], Value: exprs[1]}, nil
		}
		return StoreByte{Address: exprs[0], Value: exprs[1]}, nil

	case "shared-store":
		if err := p.arity(s, 3, 3); err != nil {
			return nil, err
		}
		bits, err := p.bits(s.List[1])
		if err != nil {
			return nil, err
		}
		exprs, err := p.exprs(s.List[2:])
		if err != nil {
			return nil, err
		}
		return SharedStore{Bits: bits, Address: exprs[0], Value: exprs[1]}, nil

	case "shared-load":
		if err := p.arity(s, 3, 3); err != nil {
			return nil, err
		}
		bits, err := p.bits(s.List[1])
		if err != nil {
			return nil, err
		}
		dest, err := p.name(s.List[2])
		if err != nil {
			return nil, err
		}
		addr, err := p.expr(s.List[3])
		if err != nil {
			return nil, err
		}
		return SharedLoad{Bits: bits, Dest: dest, Address: addr}, nil

	case "if":
		if err := p.arity(s, 2, 3); err != nil {
			return nil, err
		}
		cond, err := p.expr(s.List[1])
		if err != nil {
			return nil, err
		}
		then, err := p.stmt(s.List[2])
		if err != nil {
			return nil, err
		}
		var els Stmt = Skip{}
		if len(s.List) == 4 {
			if els, err = p.stmt(s.List[3]); err != nil {
				return nil, err
			}
		}
		return If{Cond: cond, Then: then, Else: els}, nil

	case "while":
		if err := p.arity(s, 2, 2); err != nil {
			return nil, err
		}
		cond, err := p.expr(s.List[1])
		if err != nil {
			return nil, err
		}
		body, err := p.stmt(s.List[2])
		if err != nil {
			return nil, err
		}
		return While{Cond: cond, Body: body}, nil

	case "call":
		if err := p.arity(s, 3, 3); err != nil {
			return nil, err
		}
		dest, err := p.name(s.List[1])
		if err != nil {
			return nil, err
		}
		if dest == "_" {
			dest = ""
		}
		fn, err := p.name(s.List[2])
		if err != nil {
			return nil, err
		}
		if !s.List[3].IsList {
			return nil, p.errorf(s.List[3], "expected argument list, got %s", s.List[3])
		}
		args, err := p.exprs(s.List[3].List)
		if err != nil {
			return nil, err
		}
		return Call{Dest: dest, Func: fn, Args: args}, nil

	case "tail-call", "ext-call":
		if err := p.arity(s, 1, len(s.List)); err != nil {
			return nil, err
		}
		fn, err := p.name(s.List[1])
		if err != nil {
			return nil, err
		}
		args, err := p.exprs(s.List[2:])
		if err != nil {
			return nil, err
		}
		if head == "tail-call" {
			return TailCall{Func: fn, Args: args}, nil
		}
		return ExtCall{Func: fn, Args: args}, nil

	case "return":
		if err := p.arity(s, 1, 1); err != nil {
			return nil, err
		}
		v, err := p.expr(s.List[1])
		if err != nil {
			return nil, err
		}
		return Return{Value: v}, nil

	case "raise":
		if err := p.arity(s, 1, 1); err != nil {
			return nil, err
		}
		name, err := p.name(s.List[1])
		if err != nil {
			return nil, err
		}
		return Raise{Exception: name}, nil
	}
	return nil, p.errorf(s, "unknown statement %s", s)
}

func (p *parser) exprs(ss []SExpr) ([]Expr, error) {
	out := make([]Expr, 0, len(ss))
	for _, s := range ss {
		e, err := p.expr(s)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

func (p *parser) expr(s SExpr) (Expr, error) {
	if !s.IsList {
		if !isNumeric(s.Atom) {
			return Var{Name: s.Atom}, nil
		}
		v, err := strconv.ParseInt(s.Atom, 0, 64)
		if err != nil {
			return nil, p.errorf(s, "invalid integer literal %s", s.Atom)
		}
		return Const{Value: v}, nil
	}
	head := s.Head()
	if head == "" {
		return nil, p.errorf(s, "expected an operator, got %s", s)
	}
	if op, ok := opKinds[head]; ok {
		if err := p.arity(s, 2, len(s.List)); err != nil {
			return nil, err
		}
		operands, err := p.exprs(s.List[1:])
		if err != nil {
			return nil, err
		}
		return Op{Op: op, Operands: operands}, nil
	}
	if cmp, ok := cmpKinds[head]; ok {
		if err := p.arity(s, 2, 2); err != nil {
			return nil, err
		}
		ops, err := p.exprs(s.List[1:])
		if err != nil {
			return nil, err
		}
		return Cmp{Op: cmp, Left: ops[0], Right: ops[1]}, nil
	}
	if lk, ok := logicKinds[head]; ok {
		if err := p.arity(s, 2, 2); err != nil {
			return nil, err
		}
		ops, err := p.exprs(s.List[1:])
		if err != nil {
			return nil, err
		}
		return Logic{Op: lk, Left: ops[0], Right: ops[1]}, nil
	}
	switch head {
	case "!":
		if err := p.arity(s, 1, 1); err != nil {
			return nil, err
		}
		x, err := p.expr(s.List[1])
		if err != nil {
			return nil, err
		}
		return Not{X: x}, nil

	case "load":
		if err := p.arity(s, 2, 2); err != nil {
			return nil, err
		}
		sh, err := p.shape(s.List[1])
		if err != nil {
			return nil, err
		}
		addr, err := p.expr(s.List[2])
		if err != nil {
			return nil, err
		}
		return Load{Shape: sh, Address: addr}, nil

	case "load-byte":
		if err := p.arity(s, 1, 1); err != nil {
			return nil, err
		}
		addr, err := p.expr(s.List[1])
		if err != nil {
			return nil, err
		}
		return LoadByte{Address: addr}, nil

	case "struct":
		elems, err := p.exprs(s.List[1:])
		if err != nil {
			return nil, err
		}
		return Struct{Elems: elems}, nil

	case "field":
		if err := p.arity(s, 2, 2); err != nil {
			return nil, err
		}
		idx, err := p.int(s.List[1])
		if err != nil {
			return nil, err
		}
		obj, err := p.expr(s.List[2])
		if err != nil {
			return nil, err
		}
		return Field{Index: int(idx), Obj: obj}, nil

	case "call":
		if err := p.arity(s, 1, len(s.List)); err != nil {
			return nil, err
		}
		fn, err := p.name(s.List[1])
		if err != nil {
			return nil, err
		}
		args, err := p.exprs(s.List[2:])
		if err != nil {
			return nil, err
		}
		return App{Func: fn, Args: args}, nil

	case "forall", "exists":
		if err := p.arity(s, 2, 2); err != nil {
			return nil, err
		}
		binders := s.List[1]
		if !binders.IsList || len(binders.List) == 0 {
			return nil, p.errorf(binders, "%s needs a non-empty binder list", head)
		}
		q := Quantified{Kind: Forall}
		if head == "exists" {
			q.Kind = Exists
		}
		for _, b := range binders.List {
			name, err := p.name(b)
			if err != nil {
				return nil, err
			}
			q.Vars = append(q.Vars, name)
		}
		body, err := p.expr(s.List[2])
		if err != nil {
			return nil, err
		}
		q.Body = body
		return q, nil
	}
	return nil, p.errorf(s, "unknown operator %s", head)
}

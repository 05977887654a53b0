// Copyright 2024 tobyzxj
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package lang implements the control-program DSL: an s-expression
// surface language, its AST, desugaring, and the bytecode compiler that
// produces the payload of a wire.PatternMsg.
package lang

import "strconv"

// PrimKind distinguishes the three atomic value shapes.
type PrimKind int

const (
	PrimBool PrimKind = iota
	PrimName
	PrimNum
)

// Prim is a leaf value: a boolean, an identifier, or a 64-bit unsigned
// integer. Only one of Bool/Name/Num is meaningful, selected by Kind.
type Prim struct {
	Kind PrimKind
	Bool bool
	Name string
	Num  uint64
}

func (p Prim) String() string {
	switch p.Kind {
	case PrimBool:
		return strconv.FormatBool(p.Bool)
	case PrimName:
		return p.Name
	case PrimNum:
		return strconv.FormatUint(p.Num, 10)
	default:
		return "<invalid Prim>"
	}
}

// Op is a binary operator. Reset is never written by user source; the
// desugarer introduces it (see desugar.go). There is no Def operator:
// the compiler builds the Def preamble as Program.Registers (see
// compile.go).
type Op int

const (
	Add Op = iota
	Sub
	Mul
	Div
	Max
	MaxWrap
	Min
	And
	Or
	Equiv
	Gt
	Lt
	Bind
	If
	NotIf
	Ewma
	Reset // SPECIAL: emitted only by the desugarer, dummy operands
)

var opNames = map[Op]string{
	Add: "add", Sub: "sub", Mul: "mul", Div: "div",
	Max: "max", MaxWrap: "wrapped_max", Min: "min",
	And: "and", Or: "or", Equiv: "eq", Gt: "gt", Lt: "lt",
	Bind: "bind", If: "if", NotIf: "!if", Ewma: "ewma", Reset: "reset",
}

func (o Op) String() string {
	if s, ok := opNames[o]; ok {
		return s
	}
	return "<invalid Op>"
}

// Command is one of the three nullary surface forms that desugar.go
// rewrites into primitive Sexp nodes before compilation.
type Command int

const (
	Fallthrough Command = iota
	Report
	ResetCmd
)

var cmdNames = map[Command]string{
	Fallthrough: "fallthrough",
	Report:      "report",
	ResetCmd:    "reset",
}

func (c Command) String() string {
	if s, ok := cmdNames[c]; ok {
		return s
	}
	return "<invalid Command>"
}

// ExprKind selects which of Expr's three shapes is populated.
type ExprKind int

const (
	EAtom ExprKind = iota
	ECmd
	ESexp
)

// Expr is the AST node: an Atom(Prim), a Cmd(Command), or a strictly
// binary Sexp(Op, Left, Right). Only the fields matching Kind are
// meaningful. This is a tagged union expressed as a flat struct
// (spec Design Notes: "tagged variants over inheritance"), not an
// interface hierarchy, so that desugaring can rewrite nodes in place.
type Expr struct {
	Kind ExprKind

	Atom Prim
	Cmd  Command

	Op          Op
	Left, Right *Expr
}

// NewAtom builds a leaf Expr.
func NewAtom(p Prim) *Expr { return &Expr{Kind: EAtom, Atom: p} }

// NewCmd builds a nullary-command Expr.
func NewCmd(c Command) *Expr { return &Expr{Kind: ECmd, Cmd: c} }

func (e *Expr) String() string {
	if e == nil {
		return "<nil>"
	}
	switch e.Kind {
	case EAtom:
		return e.Atom.String()
	case ECmd:
		return "(" + e.Cmd.String() + ")"
	case ESexp:
		return "(" + e.Op.String() + " " + e.Left.String() + " " + e.Right.String() + ")"
	default:
		return "<invalid Expr>"
	}
}

// NewSexp builds a binary-operator Expr. Conditional-binding validity
// (If/NotIf may not be the left operand of anything but Bind) is checked
// by the parser at construction time, not here; NewSexp itself performs
// no validation so the desugarer can freely build Reset/Bind nodes.
func NewSexp(op Op, left, right *Expr) *Expr {
	return &Expr{Kind: ESexp, Op: op, Left: left, Right: right}
}

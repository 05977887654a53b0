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

package lang

import (
	"strconv"
	"strings"

	"github.com/ccp-project/ccp-agent/ccperr"
)

var operatorByText = map[string]Op{
	"+": Add, "add": Add,
	"-": Sub, "sub": Sub,
	"*": Mul, "mul": Mul,
	"/": Div, "div": Div,
	"wrapped_max": MaxWrap,
	"max":         Max,
	"min":         Min,
	"&&": And, "and": And,
	"||": Or, "or": Or,
	"==": Equiv, "eq": Equiv,
	">": Gt, "gt": Gt,
	"<": Lt, "lt": Lt,
	":=": Bind, "bind": Bind,
	"if":   If,
	"!if":  NotIf,
	"ewma": Ewma,
}

var commandByText = map[string]Command{
	"fallthrough": Fallthrough,
	"report":      Report,
	"reset":       ResetCmd,
}

// ParseExprs parses a flat sequence of top-level expressions from src.
//
// The first expression must parse; a failure there is a hard error for
// the whole call (e.g. "(blah 10 20)" alone fails outright). Every
// subsequent top-level attempt that fails for any reason simply stops
// the loop: the already-parsed expressions are returned successfully
// alongside the unconsumed remainder of src, matching a many1!(expr)
// combinator's backtracking behavior.
func ParseExprs(src []byte) (exprs []*Expr, leftover []byte, err error) {
	toks := tokenize(src)

	idx, first, err := parseExpr(toks, 0)
	if err != nil {
		return nil, src, err
	}
	exprs = append(exprs, first)

	for idx < len(toks) {
		next, e, perr := parseExpr(toks, idx)
		if perr != nil {
			break
		}
		exprs = append(exprs, e)
		idx = next
	}

	if idx < len(toks) {
		leftover = src[toks[idx].pos:]
	}
	return exprs, leftover, nil
}

// Parse behaves like ParseExprs but additionally requires the entire
// source to be consumed, failing with Incomplete if a non-empty
// remainder exists. This is the entry point Compile uses: a control
// program is never intentionally partial.
func Parse(src []byte) ([]*Expr, error) {
	exprs, leftover, err := ParseExprs(src)
	if err != nil {
		return nil, err
	}
	if len(strings.TrimSpace(string(leftover))) > 0 {
		return nil, ccperr.New(ccperr.Incomplete, "unconsumed input after %d expression(s): %q", len(exprs), leftover)
	}
	return exprs, nil
}

func parseExpr(toks []token, idx int) (int, *Expr, error) {
	if idx >= len(toks) {
		return idx, nil, ccperr.New(ccperr.Incomplete, "unexpected end of input, expected an expression")
	}

	tok := toks[idx]
	switch tok.kind {
	case tokRParen:
		return idx, nil, ccperr.New(ccperr.Parse, "unexpected %q", tok.text)
	case tokWord:
		atom, err := parseAtomWord(tok.text)
		if err != nil {
			return idx, nil, err
		}
		return idx + 1, atom, nil
	case tokLParen:
		return parseParen(toks, idx)
	default:
		return idx, nil, ccperr.New(ccperr.Parse, "unrecognized token %q", tok.text)
	}
}

func parseParen(toks []token, idx int) (int, *Expr, error) {
	idx++ // consume '('
	if idx >= len(toks) {
		return idx, nil, ccperr.New(ccperr.Incomplete, "unexpected end of input after '('")
	}
	head := toks[idx]
	if head.kind != tokWord {
		return idx, nil, ccperr.New(ccperr.Parse, "expected an operator or command after '(', got %q", head.text)
	}

	if cmd, ok := commandByText[head.text]; ok {
		idx++
		idx, err := expectRParen(toks, idx, head.text)
		if err != nil {
			return idx, nil, err
		}
		return idx, NewCmd(cmd), nil
	}

	op, ok := operatorByText[head.text]
	if !ok {
		return idx, nil, ccperr.New(ccperr.Parse, "unknown head token %q", head.text)
	}
	idx++

	idx, left, err := parseExpr(toks, idx)
	if err != nil {
		return idx, nil, err
	}
	idx, right, err := parseExpr(toks, idx)
	if err != nil {
		return idx, nil, err
	}
	idx, err = expectRParen(toks, idx, head.text)
	if err != nil {
		return idx, nil, err
	}

	if op == Bind {
		if left.Kind != EAtom || left.Atom.Kind != PrimName {
			return idx, nil, ccperr.New(ccperr.Parse, "bind target must be a name, got %v", left)
		}
	} else if isConditional(left) {
		return idx, nil, ccperr.New(ccperr.StaticType, "conditional cannot be bound to a temporary register: %v", left.Op)
	}
	return idx, NewSexp(op, left, right), nil
}

func expectRParen(toks []token, idx int, context string) (int, error) {
	if idx >= len(toks) {
		return idx, ccperr.New(ccperr.Incomplete, "expected ')' to close (%s ...)", context)
	}
	if toks[idx].kind != tokRParen {
		return idx, ccperr.New(ccperr.Parse, "expected ')' to close (%s ...), got %q", context, toks[idx].text)
	}
	return idx + 1, nil
}

func isConditional(e *Expr) bool {
	return e.Kind == ESexp && (e.Op == If || e.Op == NotIf)
}

func isNameByte(b byte) bool {
	return (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z') || (b >= '0' && b <= '9') || b == '.' || b == '_'
}

func parseAtomWord(text string) (*Expr, error) {
	switch text {
	case "true":
		return NewAtom(Prim{Kind: PrimBool, Bool: true}), nil
	case "false":
		return NewAtom(Prim{Kind: PrimBool, Bool: false}), nil
	case "+infinity":
		return NewAtom(Prim{Kind: PrimNum, Num: ^uint64(0)}), nil
	}

	if isAllDigits(text) {
		n, err := strconv.ParseUint(text, 10, 64)
		if err != nil {
			return nil, ccperr.New(ccperr.Parse, "integer literal %q does not fit in 64 bits", text)
		}
		return NewAtom(Prim{Kind: PrimNum, Num: n}), nil
	}

	for i := 0; i < len(text); i++ {
		if !isNameByte(text[i]) {
			return nil, ccperr.New(ccperr.Parse, "unexpected token %q", text)
		}
	}
	if strings.HasPrefix(text, "__") {
		return nil, ccperr.New(ccperr.Reserved, "names beginning with \"__\" are reserved for internal use: %q", text)
	}
	return NewAtom(Prim{Kind: PrimName, Name: text}), nil
}

func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

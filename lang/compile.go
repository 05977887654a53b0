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
	"fmt"

	"github.com/ccp-project/ccp-agent/ccperr"
)

// compiler turns a desugared, flattened expression list into a flat
// instruction stream plus the register table every Name resolves
// against. Registers are allocated in first-appearance order; the result
// of every operator other than Bind, If, NotIf, Ewma and Reset, nested or
// top-level, gets an anonymous scratch register named "$N" ("$" is not a
// valid Name-atom byte, so these can never collide with user source).
type compiler struct {
	regIndex map[string]uint8
	regDefs  []RegisterDef
	scratch  int
	instrs   []Instruction
}

// Compile parses src, desugars it, and emits the Program that becomes
// the payload of a wire.PatternMsg. It uses Parse (full-consumption
// required) rather than the partial-parse ParseExprs, since a control
// program being uploaded is never intentionally truncated.
func Compile(src []byte) (Program, error) {
	exprs, err := Parse(src)
	if err != nil {
		return Program{}, err
	}
	DesugarAll(exprs)

	c := &compiler{regIndex: make(map[string]uint8)}
	for _, e := range exprs {
		if _, err := c.compileStmt(e); err != nil {
			return Program{}, err
		}
	}
	return Program{Registers: c.regDefs, Instructions: c.instrs}, nil
}

func (c *compiler) reg(name string) (uint8, error) {
	if idx, ok := c.regIndex[name]; ok {
		return idx, nil
	}
	if len(c.regDefs) >= 1<<8-1 {
		return 0, ccperr.New(ccperr.Malformed, "control program uses more than %d registers", 1<<8-1)
	}
	idx := uint8(len(c.regDefs))
	c.regIndex[name] = idx
	c.regDefs = append(c.regDefs, RegisterDef{Name: name, Initial: 0})
	return idx, nil
}

func (c *compiler) newScratch() (uint8, error) {
	c.scratch++
	return c.reg(fmt.Sprintf("$%d", c.scratch))
}

// compileStmt compiles one top-level (or nested) expression, returning
// the Operand an enclosing expression would read to observe its value.
func (c *compiler) compileStmt(e *Expr) (Operand, error) {
	switch e.Kind {
	case EAtom:
		return c.compileAtom(e.Atom)
	case ECmd:
		return Operand{}, ccperr.New(ccperr.Malformed, "Cmd node survived desugaring: %v", e)
	case ESexp:
		return c.compileSexp(e)
	default:
		return Operand{}, ccperr.New(ccperr.Malformed, "invalid Expr kind %d", e.Kind)
	}
}

func (c *compiler) compileAtom(p Prim) (Operand, error) {
	switch p.Kind {
	case PrimNum:
		return Operand{Kind: OperandImmediate, Value: p.Num}, nil
	case PrimBool:
		return Operand{Kind: OperandImmediate, Value: boolToU64(p.Bool)}, nil
	case PrimName:
		idx, err := c.reg(p.Name)
		if err != nil {
			return Operand{}, err
		}
		return Operand{Kind: OperandRegister, Value: uint64(idx)}, nil
	default:
		return Operand{}, ccperr.New(ccperr.Malformed, "invalid Prim kind %d", p.Kind)
	}
}

func (c *compiler) compileSexp(e *Expr) (Operand, error) {
	left, err := c.compileStmt(e.Left)
	if err != nil {
		return Operand{}, err
	}
	right, err := c.compileStmt(e.Right)
	if err != nil {
		return Operand{}, err
	}

	var dst Operand
	switch e.Op {
	case Bind:
		// The parser guarantees e.Left is a Name atom, so `left` above
		// already resolved to that register.
		dst = left
	case If, NotIf, Ewma:
		dst = Operand{Kind: OperandReturnRegister}
	case Reset:
		dst = Operand{Kind: OperandNone}
	default:
		idx, err := c.newScratch()
		if err != nil {
			return Operand{}, err
		}
		dst = Operand{Kind: OperandRegister, Value: uint64(idx)}
	}

	c.instrs = append(c.instrs, Instruction{Op: e.Op, Dst: dst, Left: left, Right: right})

	if dst.Kind == OperandNone {
		return Operand{Kind: OperandReturnRegister}, nil
	}
	return dst, nil
}

func boolToU64(b bool) uint64 {
	if b {
		return 1
	}
	return 0
}

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

// Names the desugarer is the sole producer of. User source containing
// either is rejected at parse time (parseAtomWord's "__" check).
const (
	ShouldContinueReg = "__shouldContinue"
	ShouldReportReg   = "__shouldReport"
)

// Desugar rewrites e in place, bottom-up, replacing the three nullary
// surface commands with their primitive equivalents (spec §4.2.3). It is
// idempotent: a second pass over an already-desugared tree touches
// nothing, since no Cmd node survives the first pass.
func (e *Expr) Desugar() {
	if e == nil {
		return
	}
	switch e.Kind {
	case EAtom:
		return
	case ECmd:
		switch e.Cmd {
		case Fallthrough:
			*e = *NewSexp(Bind, NewAtom(Prim{Kind: PrimName, Name: ShouldContinueReg}), NewAtom(Prim{Kind: PrimBool, Bool: true}))
		case Report:
			*e = *NewSexp(Bind, NewAtom(Prim{Kind: PrimName, Name: ShouldReportReg}), NewAtom(Prim{Kind: PrimBool, Bool: true}))
		case ResetCmd:
			*e = *NewSexp(Reset, NewAtom(Prim{Kind: PrimBool, Bool: false}), NewAtom(Prim{Kind: PrimBool, Bool: false}))
		}
	case ESexp:
		e.Left.Desugar()
		e.Right.Desugar()
	}
}

// DesugarAll desugars every top-level expression in place.
func DesugarAll(exprs []*Expr) {
	for _, e := range exprs {
		e.Desugar()
	}
}

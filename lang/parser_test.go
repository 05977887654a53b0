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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ccp-project/ccp-agent/ccperr"
)

func num(n uint64) *Expr  { return NewAtom(Prim{Kind: PrimNum, Num: n}) }
func boolAtom(b bool) *Expr { return NewAtom(Prim{Kind: PrimBool, Bool: b}) }
func name(n string) *Expr  { return NewAtom(Prim{Kind: PrimName, Name: n}) }

func TestParseAtoms(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want *Expr
	}{
		{"num", "1", num(1)},
		{"bool true", "true", boolAtom(true)},
		{"bool false", "false", boolAtom(false)},
		{"infinity", "+infinity", num(^uint64(0))},
		{"single name", "x", name("x")},
		{"long name", "acbdefg", name("acbdefg")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exprs, leftover, err := ParseExprs([]byte(tt.src))
			require.NoError(t, err)
			require.Empty(t, leftover)
			require.Len(t, exprs, 1)
			assert.Equal(t, tt.want, exprs[0])
		})
	}
}

func TestParseAtomTrailingSpace(t *testing.T) {
	exprs, leftover, err := ParseExprs([]byte("1 "))
	require.NoError(t, err)
	require.Empty(t, leftover)
	assert.Equal(t, []*Expr{num(1)}, exprs)
}

func TestParseBareOperatorFails(t *testing.T) {
	_, _, err := ParseExprs([]byte("+"))
	require.Error(t, err)
	assert.True(t, ccperr.Of(err, ccperr.Parse))
}

func TestParseMultipleTopLevelAtoms(t *testing.T) {
	exprs, leftover, err := ParseExprs([]byte("blah 10 20"))
	require.NoError(t, err)
	require.Empty(t, leftover)
	assert.Equal(t, []*Expr{name("blah"), num(10), num(20)}, exprs)
}

func TestParseSimpleSexp(t *testing.T) {
	exprs, leftover, err := ParseExprs([]byte("(+ 10 20)"))
	require.NoError(t, err)
	require.Empty(t, leftover)
	assert.Equal(t, []*Expr{NewSexp(Add, num(10), num(20))}, exprs)
}

func TestParseUnknownHeadFails(t *testing.T) {
	_, _, err := ParseExprs([]byte("(blah 10 20)"))
	require.Error(t, err)
	assert.True(t, ccperr.Of(err, ccperr.Parse))
}

func TestParseUnterminatedFails(t *testing.T) {
	_, _, err := ParseExprs([]byte("(blah 10 20"))
	require.Error(t, err)
}

func TestParseWrappedMax(t *testing.T) {
	exprs, _, err := ParseExprs([]byte("(wrapped_max 10 20)"))
	require.NoError(t, err)
	assert.Equal(t, []*Expr{NewSexp(MaxWrap, num(10), num(20))}, exprs)
}

func TestParseBoolOps(t *testing.T) {
	exprs, _, err := ParseExprs([]byte("(&& true false)"))
	require.NoError(t, err)
	assert.Equal(t, []*Expr{NewSexp(And, boolAtom(true), boolAtom(false))}, exprs)

	exprs, _, err = ParseExprs([]byte("(|| 10 20)"))
	require.NoError(t, err)
	assert.Equal(t, []*Expr{NewSexp(Or, num(10), num(20))}, exprs)
}

func TestParseNestedTree(t *testing.T) {
	exprs, leftover, err := ParseExprs([]byte("(+ (- 17 7) (+ 4 (- 26 20)))"))
	require.NoError(t, err)
	require.Empty(t, leftover)
	want := NewSexp(Add,
		NewSexp(Sub, num(17), num(7)),
		NewSexp(Add, num(4), NewSexp(Sub, num(26), num(20))),
	)
	assert.Equal(t, []*Expr{want}, exprs)
}

func TestParseWhitespaceInsensitive(t *testing.T) {
	src := []byte(`
		(
			+
			(
				-
				17
				7
			)
			(
				+
				4
				(
					-
					26
					20
				)
			)
		)`)
	exprs, _, err := ParseExprs(src)
	require.NoError(t, err)
	want := NewSexp(Add,
		NewSexp(Sub, num(17), num(7)),
		NewSexp(Add, num(4), NewSexp(Sub, num(26), num(20))),
	)
	assert.Equal(t, []*Expr{want}, exprs)
}

func TestParseLeftoverTrailingParen(t *testing.T) {
	exprs, leftover, err := ParseExprs([]byte("(+ 10 20))"))
	require.NoError(t, err)
	assert.Equal(t, []byte(")"), leftover)
	assert.Equal(t, []*Expr{NewSexp(Add, num(10), num(20))}, exprs)
}

func TestParseCommands(t *testing.T) {
	exprs, leftover, err := ParseExprs([]byte("(report) (reset) (fallthrough)"))
	require.NoError(t, err)
	require.Empty(t, leftover)
	assert.Equal(t, []*Expr{
		NewCmd(Report),
		NewCmd(ResetCmd),
		NewCmd(Fallthrough),
	}, exprs)
}

func TestReservedNameRejected(t *testing.T) {
	_, _, err := ParseExprs([]byte("__shouldReport"))
	require.Error(t, err)
	assert.True(t, ccperr.Of(err, ccperr.Reserved))
}

func TestStaticTypeConditionalAsLeftOperand(t *testing.T) {
	_, _, err := ParseExprs([]byte("(+ (if a b) c)"))
	require.Error(t, err)
	assert.True(t, ccperr.Of(err, ccperr.StaticType))
}

func TestBindAllowsConditionalOnRight(t *testing.T) {
	exprs, leftover, err := ParseExprs([]byte("(:= x (if a b))"))
	require.NoError(t, err)
	require.Empty(t, leftover)
	assert.Equal(t, []*Expr{NewSexp(Bind, name("x"), NewSexp(If, name("a"), name("b")))}, exprs)
}

func TestParseRequiresFullConsumption(t *testing.T) {
	_, err := Parse([]byte("(+ 10 20))"))
	require.Error(t, err)
	assert.True(t, ccperr.Of(err, ccperr.Incomplete))
}

func TestParseFullConsumptionOK(t *testing.T) {
	exprs, err := Parse([]byte("(+ 10 20)"))
	require.NoError(t, err)
	assert.Len(t, exprs, 1)
}

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

// tokenKind distinguishes the three token shapes the grammar needs.
type tokenKind int

const (
	tokLParen tokenKind = iota
	tokRParen
	tokWord
)

type token struct {
	kind tokenKind
	text string
	pos  int // byte offset of the token's first byte in the source
}

// isSpace matches the whitespace set named in spec §4.2.1: space, tab,
// newline, carriage return.
func isSpace(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\r':
		return true
	default:
		return false
	}
}

// tokenize scans src into a flat token stream. '(' and ')' are always
// their own token, even with no surrounding whitespace; everything else
// is a maximal run of non-space, non-paren bytes ("word" in the grammar:
// an operator token, a command token, or an atom).
func tokenize(src []byte) []token {
	var toks []token
	i := 0
	for i < len(src) {
		b := src[i]
		switch {
		case isSpace(b):
			i++
		case b == '(':
			toks = append(toks, token{kind: tokLParen, text: "(", pos: i})
			i++
		case b == ')':
			toks = append(toks, token{kind: tokRParen, text: ")", pos: i})
			i++
		default:
			start := i
			for i < len(src) && !isSpace(src[i]) && src[i] != '(' && src[i] != ')' {
				i++
			}
			toks = append(toks, token{kind: tokWord, text: string(src[start:i]), pos: start})
		}
	}
	return toks
}

// Copyright 2024 Ross Light
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//		 https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

package mdtoken

// MatchingEnd returns the index of the [End] token that closes the
// open token at index i, or -1 if the stream is unbalanced.
func MatchingEnd(tokens []Token, i int) int {
	open := tokens[i]
	depth := 0
	for j := i; j < len(tokens); j++ {
		switch tok := tokens[j].(type) {
		case *End:
			depth--
			if tok.Open == open {
				return j
			}
		default:
			if k := tok.Kind(); k.IsContainerOpen() || k.IsLeafOpen() || k.IsInlineOpen() {
				depth++
			}
		}
		if depth <= 0 && j > i {
			return -1
		}
	}
	return -1
}

// CheckBalance verifies that every open token has a matching [End]
// later in the stream, that nesting depth never goes negative, and
// that depth returns to zero at the end. It returns the offending
// token index, or -1 if the stream is balanced.
func CheckBalance(tokens []Token) int {
	var stack []Token
	for i, tok := range tokens {
		switch t := tok.(type) {
		case *End:
			if len(stack) == 0 || stack[len(stack)-1] != t.Open {
				return i
			}
			stack = stack[:len(stack)-1]
		default:
			if k := tok.Kind(); k.IsContainerOpen() || k.IsLeafOpen() || k.IsInlineOpen() {
				stack = append(stack, tok)
			}
		}
	}
	if len(stack) > 0 {
		return len(tokens) - 1
	}
	return -1
}

// Walk calls f for every token in document order. If f returns false
// for an open token, the tokens through its matching End are skipped.
func Walk(tokens []Token, f func(tok Token) bool) {
	for i := 0; i < len(tokens); i++ {
		tok := tokens[i]
		if !f(tok) {
			if k := tok.Kind(); k.IsContainerOpen() || k.IsLeafOpen() || k.IsInlineOpen() {
				if end := MatchingEnd(tokens, i); end > i {
					i = end
				}
			}
		}
	}
}

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

// resolveEmphasis runs the delimiter-stack emphasis algorithm over a
// node list: close-capable runs search backward for the nearest
// open-capable run of the same character, consuming two delimiters for
// strong emphasis and one otherwise, subject to the rule of three for
// runs that can both open and close.
func resolveEmphasis(p *inlineParser, src []*inlineNode) []*inlineNode {
	var dst []*inlineNode
	var stack [2][]*inlineNode
	stackOf := func(c byte) *[]*inlineNode {
		if c == '*' {
			return &stack[1]
		}
		return &stack[0]
	}
	trimStack := func() {
		for i := range stack {
			stk := &stack[i]
			for len(*stk) > 0 && (*stk)[len(*stk)-1].dstIndex >= len(dst) {
				*stk = (*stk)[:len(*stk)-1]
			}
		}
	}

	for _, n := range src {
		if n.kind != nodeDelim {
			dst = append(dst, n)
			continue
		}
		if n.canClose {
			stk := stackOf(n.delim)
		closeLoop:
			for n.count() > 0 {
				for i := len(*stk) - 1; i >= 0; i-- {
					opener := (*stk)[i]
					if opener.count() == 0 {
						continue
					}
					// Rule of three: when a run can both open and close,
					// the combined length must not be a multiple of three
					// unless both lengths are.
					if (n.canOpen || opener.canClose) &&
						(n.origCount+opener.origCount)%3 == 0 &&
						(n.origCount%3 != 0 || opener.origCount%3 != 0) {
						continue
					}
					take := 1
					if n.count() >= 2 && opener.count() >= 2 {
						take = 2
					}
					children := append([]*inlineNode(nil), dst[opener.dstIndex+1:]...)
					opener.end -= take
					n.start += take
					open := &EmphasisOpen{
						position:  p.posAt(opener.end),
						Delimiter: n.delim,
						Count:     take,
					}
					if opener.count() == 0 {
						dst = dst[:opener.dstIndex]
					} else {
						dst = dst[:opener.dstIndex+1]
					}
					trimStack()
					dst = append(dst, &inlineNode{kind: nodeWrap, open: open, children: children})
					continue closeLoop
				}
				break
			}
		}
		if n.count() > 0 {
			if n.canOpen {
				n.dstIndex = len(dst)
				dst = append(dst, n)
				stk := stackOf(n.delim)
				*stk = append(*stk, n)
			} else {
				// A leftover run that cannot open is literal text.
				dst = append(dst, &inlineNode{kind: nodeText, start: n.start, end: n.end})
			}
		}
	}
	return dst
}

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

import "strings"

// coalesceText merges runs of adjacent text tokens inside code and
// HTML blocks into a single token per block whose payload is the
// newline-joined text, with the per-line stripped indentation kept in
// a parallel newline-joined whitespace buffer. Paragraph and heading
// payloads are already coalesced by the leaf pass.
func coalesceText(tokens []Token) []Token {
	out := make([]Token, 0, len(tokens))
	for i := 0; i < len(tokens); i++ {
		tok := tokens[i]
		out = append(out, tok)
		switch tok.Kind() {
		case KindIndentedCodeBlockOpen, KindFencedCodeBlockOpen, KindHTMLBlockOpen:
			j := i + 1
			var run []*Text
			for ; j < len(tokens); j++ {
				txt, ok := tokens[j].(*Text)
				if !ok {
					break
				}
				run = append(run, txt)
			}
			if len(run) > 0 {
				out = append(out, mergeTextRun(run))
				i = j - 1
			}
		}
	}
	return out
}

func mergeTextRun(run []*Text) *Text {
	if len(run) == 1 {
		return run[0]
	}
	texts := make([]string, len(run))
	ws := make([]string, len(run))
	tabified := make([]string, len(run))
	hasTabs := false
	tls := make([]textLine, len(run))
	for i, t := range run {
		texts[i] = t.Literal
		ws[i] = t.ExtractedWhitespace
		tabified[i] = t.TabifiedText
		if t.TabifiedText != "" {
			hasTabs = true
		}
		tls[i] = textLine{line: t.line, startCol: t.col, indexIndent: t.indexIndent}
	}
	merged := &Text{
		position:            run[0].position,
		Literal:             strings.Join(texts, "\n"),
		ExtractedWhitespace: strings.Join(ws, "\n"),
		lines:               tls,
	}
	if hasTabs {
		merged.TabifiedText = strings.Join(tabified, "\n")
	}
	return merged
}

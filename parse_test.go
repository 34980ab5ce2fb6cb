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

import (
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// summarize renders tokens as "Kind(line,col)" strings, with End
// tokens as "end-Kind".
func summarize(tokens []Token) []string {
	out := make([]string, len(tokens))
	for i, tok := range tokens {
		if e, ok := tok.(*End); ok {
			out[i] = "end-" + e.ClosesKind().String()
			continue
		}
		pos := tok.Pos()
		out[i] = fmt.Sprintf("%v(%d,%d)", tok.Kind(), pos.Line, pos.Col)
	}
	return out
}

func mustParse(t *testing.T, source string) *Document {
	t.Helper()
	doc, err := Parse([]byte(source), nil)
	if err != nil {
		t.Fatalf("Parse(%q): %v", source, err)
	}
	return doc
}

func TestParseStructure(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   []string
	}{
		{
			name:   "HeadingInBlockQuote",
			source: "> # Foo\n> bar\n> baz",
			want: []string{
				"KindBlockQuoteOpen(1,1)",
				"KindATXHeadingOpen(1,3)",
				"KindText(1,5)",
				"end-KindATXHeadingOpen",
				"KindParagraphOpen(2,3)",
				"KindText(2,3)",
				"KindSoftBreak(2,6)",
				"KindText(3,3)",
				"end-KindParagraphOpen",
				"end-KindBlockQuoteOpen",
			},
		},
		{
			name:   "ThematicBreakAfterBlockQuote",
			source: "> foo\n---",
			want: []string{
				"KindBlockQuoteOpen(1,1)",
				"KindParagraphOpen(1,3)",
				"KindText(1,3)",
				"end-KindParagraphOpen",
				"end-KindBlockQuoteOpen",
				"KindThematicBreak(2,1)",
			},
		},
		{
			name:   "ListLeavesBlockQuote",
			source: "> - foo\n- bar",
			want: []string{
				"KindBlockQuoteOpen(1,1)",
				"KindListOpen(1,3)",
				"KindParagraphOpen(1,5)",
				"KindText(1,5)",
				"end-KindParagraphOpen",
				"end-KindListOpen",
				"end-KindBlockQuoteOpen",
				"KindListOpen(2,1)",
				"KindParagraphOpen(2,3)",
				"KindText(2,3)",
				"end-KindParagraphOpen",
				"end-KindListOpen",
			},
		},
		{
			name:   "NestedOrderedListWithTab",
			source: "1. list item\n\t1. inner list item",
			want: []string{
				"KindListOpen(1,1)",
				"KindParagraphOpen(1,4)",
				"KindText(1,4)",
				"end-KindParagraphOpen",
				"KindListOpen(2,5)",
				"KindParagraphOpen(2,8)",
				"KindText(2,8)",
				"end-KindParagraphOpen",
				"end-KindListOpen",
				"end-KindListOpen",
			},
		},
		{
			name:   "LazyContinuation",
			source: "> bar\nbaz",
			want: []string{
				"KindBlockQuoteOpen(1,1)",
				"KindParagraphOpen(1,3)",
				"KindText(1,3)",
				"KindSoftBreak(1,6)",
				"KindText(2,1)",
				"end-KindParagraphOpen",
				"end-KindBlockQuoteOpen",
			},
		},
		{
			name:   "CodeSpanWithBacktick",
			source: "`` ` ``",
			want: []string{
				"KindParagraphOpen(1,1)",
				"KindCodeSpan(1,1)",
				"end-KindParagraphOpen",
			},
		},
		{
			name:   "SetextHeading",
			source: "Foo\n===",
			want: []string{
				"KindSetextHeadingOpen(2,1)",
				"KindText(1,1)",
				"end-KindSetextHeadingOpen",
			},
		},
		{
			name:   "SiblingListItems",
			source: "- a\n- b",
			want: []string{
				"KindListOpen(1,1)",
				"KindParagraphOpen(1,3)",
				"KindText(1,3)",
				"end-KindParagraphOpen",
				"KindListItem(2,1)",
				"KindParagraphOpen(2,3)",
				"KindText(2,3)",
				"end-KindParagraphOpen",
				"end-KindListOpen",
			},
		},
		{
			name:   "BlankLineBetweenParagraphs",
			source: "a\n\nb",
			want: []string{
				"KindParagraphOpen(1,1)",
				"KindText(1,1)",
				"end-KindParagraphOpen",
				"KindBlankLine(2,1)",
				"KindParagraphOpen(3,1)",
				"KindText(3,1)",
				"end-KindParagraphOpen",
			},
		},
		{
			name:   "FencedCodeBlock",
			source: "```go\ncode\n```",
			want: []string{
				"KindFencedCodeBlockOpen(1,1)",
				"KindText(2,1)",
				"end-KindFencedCodeBlockOpen",
			},
		},
		{
			name:   "IndentedCodeBlock",
			source: "    code",
			want: []string{
				"KindIndentedCodeBlockOpen(1,5)",
				"KindText(1,5)",
				"end-KindIndentedCodeBlockOpen",
			},
		},
		{
			name:   "LinkReferenceDefinition",
			source: "[foo]: /url \"title\"\n\n[foo]",
			want: []string{
				"KindLinkReferenceDefinition(1,1)",
				"KindBlankLine(2,1)",
				"KindParagraphOpen(3,1)",
				"KindLinkOpen(3,1)",
				"KindText(3,2)",
				"end-KindLinkOpen",
				"end-KindParagraphOpen",
			},
		},
		{
			name:   "FailedDefinitionBecomesParagraph",
			source: "[foo] bar",
			want: []string{
				"KindParagraphOpen(1,1)",
				"KindText(1,1)",
				"end-KindParagraphOpen",
			},
		},
		{
			name:   "HTMLBlock",
			source: "<div>\nfoo\n</div>",
			want: []string{
				"KindHTMLBlockOpen(1,1)",
				"KindText(1,1)",
				"end-KindHTMLBlockOpen",
			},
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			doc := mustParse(t, test.source)
			if diff := cmp.Diff(test.want, summarize(doc.Tokens)); diff != "" {
				t.Errorf("Parse(%q) (-want +got):\n%s", test.source, diff)
			}
		})
	}
}

func TestParseCanonicalForm(t *testing.T) {
	doc := mustParse(t, "> # Foo\n> bar\n> baz")
	want := []string{
		"[block-quote(1,1)::> \\n> \\n> ]",
		"[atx(1,3):1::]",
		"[text(1,5):Foo:]",
		"[end-atx:::False]",
		"[para(2,3):\\n]",
		"[text(2,3):bar:]",
		"[soft-break(2,6):]",
		"[text(3,3):baz:]",
		"[end-para:::True]",
		"[end-block-quote:::True]",
	}
	got := make([]string, len(doc.Tokens))
	for i, tok := range doc.Tokens {
		got[i] = tok.String()
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("canonical forms (-want +got):\n%s", diff)
	}
}

var propertyCorpus = []string{
	"",
	"hello\n",
	"> # Foo\n> bar\n> baz",
	"> foo\n---\n",
	"> - foo\n- bar\n",
	"1. list item\n\t1. inner list item",
	"> bar\nbaz\n",
	"`` ` ``\n",
	"`` ``` ``\n",
	"# Title ##\n\ntext\n",
	"Foo\n===\n",
	"```go\nfunc main() {}\n```\n",
	"    indented code\n      more\n",
	"- a\n\n- b\n",
	"[foo]: /url \"title\"\n\n[foo]\n",
	"para *em* **strong** `code`\n",
	"<div>\nraw\n</div>\n",
	"a\r\nb\r\n",
	"* * *\n",
	"- foo\n  bar\n",
	"&copy; &#64; &#x41;\n",
	"\\*not em\\*\n",
	"foo  \nbar\n",
	"[link](/url (title))\n",
	"![alt *em*](/img.png)\n",
	"<https://example.com> <user@example.com>\n",
	"5. five\n6. six\n",
	"> a\n>\n> b\n",
	"~~~\ntilde fence\n~~~\n",
	"<!-- comment -->\n",
	"[multi\nline]: /dest\nrest\n",
}

func TestTokenBalance(t *testing.T) {
	for _, source := range propertyCorpus {
		doc := mustParse(t, source)
		if i := CheckBalance(doc.Tokens); i != -1 {
			t.Errorf("CheckBalance(Parse(%q)) = %d (token %v); want -1", source, i, doc.Tokens[i])
		}
	}
}

func TestInlineResolutionIsIdempotent(t *testing.T) {
	for _, source := range propertyCorpus {
		doc := mustParse(t, source)
		again := processInlines(doc.Tokens, doc.Refs, nil)
		if len(again) != len(doc.Tokens) {
			t.Errorf("processInlines over its own output changed token count for %q: %d -> %d",
				source, len(doc.Tokens), len(again))
			continue
		}
		for i := range again {
			if again[i] != doc.Tokens[i] {
				t.Errorf("processInlines over its own output changed token %d for %q", i, source)
				break
			}
		}
	}
}

func TestColumnMonotonicity(t *testing.T) {
	for _, source := range propertyCorpus {
		doc := mustParse(t, source)
		lastCol := make(map[int]int)
		for _, tok := range doc.Tokens {
			if _, isEnd := tok.(*End); isEnd {
				continue
			}
			pos := tok.Pos()
			if prev, ok := lastCol[pos.Line]; ok && pos.Col < prev {
				t.Errorf("Parse(%q): token %v at (%d,%d) goes backward (previous column %d)",
					source, tok, pos.Line, pos.Col, prev)
			}
			lastCol[pos.Line] = pos.Col
		}
	}
}

func TestMaxContainerDepth(t *testing.T) {
	source := "> > > > > deep"
	doc, err := Parse([]byte(source), &Options{MaxContainerDepth: 3})
	if err != nil {
		t.Fatal(err)
	}
	depth := 0
	for _, tok := range doc.Tokens {
		if tok.Kind() == KindBlockQuoteOpen {
			depth++
		}
	}
	if depth != 3 {
		t.Errorf("Parse with MaxContainerDepth 3 opened %d block quotes; want 3", depth)
	}
}

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
	"bytes"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"zombiezen.com/go/mdtoken/internal/normhtml"
)

func TestRenderHTML(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   string
	}{
		{
			name:   "Paragraph",
			source: "hello world",
			want:   "<p>hello world</p>",
		},
		{
			name:   "ATXHeading",
			source: "# Foo",
			want:   "<h1>Foo</h1>",
		},
		{
			name:   "ClosedATXHeading",
			source: "## Foo ##",
			want:   "<h2>Foo</h2>",
		},
		{
			name:   "SetextHeading",
			source: "Foo\n===",
			want:   "<h1>Foo</h1>",
		},
		{
			name:   "BlockQuoteWithHeading",
			source: "> # Foo\n> bar\n> baz",
			want:   "<blockquote>\n<h1>Foo</h1>\n<p>bar\nbaz</p>\n</blockquote>",
		},
		{
			name:   "ThematicBreakClosesBlockQuote",
			source: "> foo\n---",
			want:   "<blockquote>\n<p>foo</p>\n</blockquote>\n<hr />",
		},
		{
			name:   "ListEscapesBlockQuote",
			source: "> - foo\n- bar",
			want:   "<blockquote>\n<ul>\n<li>foo</li>\n</ul>\n</blockquote>\n<ul>\n<li>bar</li>\n</ul>",
		},
		{
			name:   "NestedOrderedList",
			source: "1. list item\n\t1. inner list item",
			want:   "<ol>\n<li>list item\n<ol>\n<li>inner list item</li>\n</ol>\n</li>\n</ol>",
		},
		{
			name:   "LazyContinuation",
			source: "> bar\nbaz",
			want:   "<blockquote>\n<p>bar\nbaz</p>\n</blockquote>",
		},
		{
			name:   "CodeSpanWithBacktick",
			source: "`` ` ``",
			want:   "<p><code>`</code></p>",
		},
		{
			name:   "CodeSpanAroundTripleBacktick",
			source: "`` ``` ``",
			want:   "<p><code>```</code></p>",
		},
		{
			name:   "Emphasis",
			source: "*em* **strong** ***both***",
			want:   "<p><em>em</em> <strong>strong</strong> <em><strong>both</strong></em></p>",
		},
		{
			name:   "InlineLink",
			source: `[foo](/url "title")`,
			want:   `<p><a href="/url" title="title">foo</a></p>`,
		},
		{
			name:   "ReferenceLink",
			source: "[foo]\n\n[foo]: /url",
			want:   `<p><a href="/url">foo</a></p>`,
		},
		{
			name:   "Image",
			source: "![alt *em*](/img.png)",
			want:   `<p><img src="/img.png" alt="alt em" /></p>`,
		},
		{
			name:   "URIAutolink",
			source: "<https://example.com>",
			want:   `<p><a href="https://example.com">https://example.com</a></p>`,
		},
		{
			name:   "EmailAutolink",
			source: "<user@example.com>",
			want:   `<p><a href="mailto:user@example.com">user@example.com</a></p>`,
		},
		{
			name:   "OrderedListStart",
			source: "5. five\n6. six",
			want:   "<ol start=\"5\">\n<li>five</li>\n<li>six</li>\n</ol>",
		},
		{
			name:   "HardBreak",
			source: "foo  \nbar",
			want:   "<p>foo<br />\nbar</p>",
		},
		{
			name:   "NamedEntity",
			source: "&copy;",
			want:   "<p>©</p>",
		},
		{
			name:   "UnknownEntity",
			source: "Ok &MadeUpEntity;",
			want:   "<p>Ok &amp;MadeUpEntity;</p>",
		},
		{
			name:   "FencedCodeWithInfo",
			source: "```rust foo\nfn main() {}\n```",
			want:   "<pre><code class=\"language-rust\">fn main() {}\n</code></pre>",
		},
		{
			name:   "IndentedCode",
			source: "    code\n      more",
			want:   "<pre><code>code\n  more\n</code></pre>",
		},
		{
			name:   "TightList",
			source: "- a\n- b",
			want:   "<ul>\n<li>a</li>\n<li>b</li>\n</ul>",
		},
		{
			name:   "LooseList",
			source: "- a\n\n- b",
			want:   "<ul>\n<li>\n<p>a</p>\n</li>\n<li>\n<p>b</p>\n</li>\n</ul>",
		},
		{
			name:   "BackslashEscape",
			source: `\*not em\*`,
			want:   "<p>*not em*</p>",
		},
		{
			name:   "HTMLBlock",
			source: "<div>\nfoo\n</div>",
			want:   "<div>\nfoo\n</div>",
		},
		{
			name:   "HTMLComment",
			source: "<!-- comment -->",
			want:   "<!-- comment -->",
		},
		{
			name:   "EscapedPunctuationInHeading",
			source: `# Foo \#`,
			want:   "<h1>Foo #</h1>",
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			doc := mustParse(t, test.source)
			buf := new(bytes.Buffer)
			if err := RenderHTML(buf, doc); err != nil {
				t.Fatal("RenderHTML:", err)
			}
			got := strings.TrimSpace(string(normhtml.NormalizeHTML(buf.Bytes())))
			want := strings.TrimSpace(string(normhtml.NormalizeHTML([]byte(test.want))))
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("Input:\n%s\nOutput (-want +got):\n%s", test.source, diff)
			}
		})
	}
}

func TestRenderHTMLTagFilter(t *testing.T) {
	doc := mustParse(t, "<title>x</title>")
	buf := new(bytes.Buffer)
	require.NoError(t, RenderHTML(buf, doc))
	require.Equal(t, "&lt;title>x&lt;/title>\n", buf.String())
}

func TestRenderHTMLIgnoreRaw(t *testing.T) {
	doc := mustParse(t, "<div>\nfoo\n</div>")
	r := &HTMLRenderer{ReferenceMap: doc.Refs, IgnoreRaw: true}
	buf := new(bytes.Buffer)
	require.NoError(t, r.Render(buf, doc))
	require.Equal(t, "", buf.String())
}

func TestNormalizeURI(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"https://example.com", "https://example.com"},
		{"foo bar", "foo%20bar"},
		{"héllo", "h%C3%A9llo"},
		{"a%20b", "a%20b"},
		{"100%", "100%25"},
	}
	for _, test := range tests {
		if got := NormalizeURI(test.in); got != test.want {
			t.Errorf("NormalizeURI(%q) = %q; want %q", test.in, got, test.want)
		}
	}
}

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
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html/atom"
)

// An HTMLRenderer converts a token stream into HTML.
//
// # Security considerations
//
// Markdown permits the use of raw HTML, which can introduce
// Cross-Site Scripting (XSS) vulnerabilities when used with untrusted
// inputs. The resulting HTML can be sent through an HTML sanitizer,
// IgnoreRaw can prevent inclusion of raw HTML entirely, or FilterTag
// can be used to prevent some tags from being used while still showing
// the source text.
type HTMLRenderer struct {
	// ReferenceMap holds the document's link reference definitions.
	ReferenceMap ReferenceMap
	// SoftBreakBehavior determines how soft line breaks are rendered.
	SoftBreakBehavior SoftBreakBehavior
	// If IgnoreRaw is true, the renderer skips any HTML blocks or raw HTML.
	IgnoreRaw bool
	// FilterTag is a predicate function that reports whether an element
	// with the given lowercased tag name should have its leading angle
	// bracket escaped. If FilterTag is nil, a filter equivalent to the
	// GitHub Flavored Markdown [tagfilter extension] is used.
	// It has no effect if IgnoreRaw is true.
	//
	// [tagfilter extension]: https://github.github.com/gfm/#disallowed-raw-html-extension-
	FilterTag func(tag string) bool
	// If SkipFilter is true, FilterTag is not consulted and any raw
	// HTML passes through verbatim.
	SkipFilter bool
}

// RenderHTML writes the document to w as HTML using the default
// options for [HTMLRenderer].
func RenderHTML(w io.Writer, doc *Document) error {
	return (&HTMLRenderer{ReferenceMap: doc.Refs}).Render(w, doc)
}

// Render writes the document to w as HTML.
func (r *HTMLRenderer) Render(w io.Writer, doc *Document) error {
	buf := r.AppendHTML(nil, doc.Tokens)
	if _, err := w.Write(buf); err != nil {
		return fmt.Errorf("render markdown to html: %w", err)
	}
	return nil
}

// AppendHTML appends the rendered HTML of the token stream to dst and
// returns the resulting byte slice.
func (r *HTMLRenderer) AppendHTML(dst []byte, tokens []Token) []byte {
	state := &renderState{HTMLRenderer: r, dst: dst}
	state.blocks(tokens, false)
	return state.dst
}

type renderState struct {
	*HTMLRenderer
	dst []byte
}

func (r *renderState) blocks(tokens []Token, tight bool) {
	for i := 0; i < len(tokens); i++ {
		switch tok := tokens[i].(type) {
		case *ParagraphOpen:
			end := matchingEndOr(tokens, i)
			if tight {
				r.inlines(tokens[i+1 : end])
				r.dst = append(r.dst, '\n')
			} else {
				r.dst = append(r.dst, "<p>"...)
				r.inlines(tokens[i+1 : end])
				r.dst = append(r.dst, "</p>\n"...)
			}
			i = end
		case *ATXHeadingOpen:
			end := matchingEndOr(tokens, i)
			r.heading(tok.Level, tokens[i+1:end])
			i = end
		case *SetextHeadingOpen:
			end := matchingEndOr(tokens, i)
			r.heading(tok.Level, tokens[i+1:end])
			i = end
		case *ThematicBreak:
			r.dst = append(r.dst, "<hr>\n"...)
		case *IndentedCodeBlockOpen:
			end := matchingEndOr(tokens, i)
			r.codeBlock("", tokens[i+1:end])
			i = end
		case *FencedCodeBlockOpen:
			end := matchingEndOr(tokens, i)
			r.codeBlock(tok.InfoString, tokens[i+1:end])
			i = end
		case *HTMLBlockOpen:
			end := matchingEndOr(tokens, i)
			if !r.IgnoreRaw {
				for _, in := range tokens[i+1 : end] {
					if txt, ok := in.(*Text); ok {
						ws := strings.Split(txt.ExtractedWhitespace, "\n")
						for k, line := range strings.Split(txt.Literal, "\n") {
							if k < len(ws) {
								r.dst = append(r.dst, ws[k]...)
							}
							r.dst = append(r.dst, r.filterRawHTML(line)...)
							r.dst = append(r.dst, '\n')
						}
					}
				}
			}
			i = end
		case *BlockQuoteOpen:
			end := matchingEndOr(tokens, i)
			r.dst = append(r.dst, "<blockquote>\n"...)
			r.blocks(tokens[i+1:end], false)
			r.dst = append(r.dst, "</blockquote>\n"...)
			i = end
		case *ListOpen:
			end := matchingEndOr(tokens, i)
			r.list(tok, tokens[i+1:end])
			i = end
		case *BlankLine, *LinkReferenceDefinition, *End:
			// No output.
		}
	}
}

func (r *renderState) heading(level int, inline []Token) {
	r.dst = append(r.dst, "<h"...)
	r.dst = strconv.AppendInt(r.dst, int64(level), 10)
	r.dst = append(r.dst, ">"...)
	r.inlines(inline)
	r.dst = append(r.dst, "</h"...)
	r.dst = strconv.AppendInt(r.dst, int64(level), 10)
	r.dst = append(r.dst, ">\n"...)
}

func (r *renderState) codeBlock(info string, inline []Token) {
	r.dst = append(r.dst, "<pre><code"...)
	if words := strings.Fields(unescapeString(info)); len(words) > 0 {
		r.dst = append(r.dst, ` class="language-`...)
		r.dst = escapeHTML(r.dst, words[0])
		r.dst = append(r.dst, `"`...)
	}
	r.dst = append(r.dst, ">"...)
	for _, in := range inline {
		if txt, ok := in.(*Text); ok {
			r.dst = escapeHTML(r.dst, txt.Literal)
			r.dst = append(r.dst, '\n')
		}
	}
	r.dst = append(r.dst, "</code></pre>\n"...)
}

// list renders a list's items. Items are delimited by the position of
// the ListItem tokens between the list open and close.
func (r *renderState) list(open *ListOpen, body []Token) {
	if open.Ordered {
		r.dst = append(r.dst, "<ol"...)
		if open.StartIndex != 1 {
			r.dst = append(r.dst, ` start="`...)
			r.dst = strconv.AppendInt(r.dst, int64(open.StartIndex), 10)
			r.dst = append(r.dst, `"`...)
		}
		r.dst = append(r.dst, ">\n"...)
	} else {
		r.dst = append(r.dst, "<ul>\n"...)
	}

	tight := !open.Loose
	item := func(tokens []Token) {
		r.dst = append(r.dst, "<li>"...)
		if !tight {
			r.dst = append(r.dst, '\n')
		}
		before := len(r.dst)
		r.blocks(tokens, tight)
		if tight && len(r.dst) > before && r.dst[len(r.dst)-1] == '\n' {
			// Tight items keep their content on the item's line.
			r.dst = r.dst[:len(r.dst)-1]
		}
		r.dst = append(r.dst, "</li>\n"...)
	}

	start := 0
	depth := 0
	for i, tok := range body {
		switch t := tok.(type) {
		case *ListItem:
			if depth == 0 {
				item(body[start:i])
				start = i + 1
			}
		case *End:
			depth--
		default:
			if k := t.Kind(); k.IsContainerOpen() || k.IsLeafOpen() {
				depth++
			}
		}
	}
	item(body[start:])

	if open.Ordered {
		r.dst = append(r.dst, "</ol>\n"...)
	} else {
		r.dst = append(r.dst, "</ul>\n"...)
	}
}

func (r *renderState) inlines(tokens []Token) {
	// Final whitespace of a block's content is not rendered.
	if n := len(tokens); n > 0 {
		if txt, ok := tokens[n-1].(*Text); ok {
			trimmed := *txt
			trimmed.Literal = strings.TrimRight(txt.Literal, " \t")
			if trimmed.Segments != nil {
				trimmed.Segments = nil
				trimmed.Literal = strings.TrimRight(txt.ResolvedText(), " \t")
			}
			tokens = append(append([]Token(nil), tokens[:n-1]...), &trimmed)
		}
	}
	for i := 0; i < len(tokens); i++ {
		switch tok := tokens[i].(type) {
		case *Text:
			r.dst = escapeHTML(r.dst, tok.ResolvedText())
		case *CodeSpan:
			r.dst = append(r.dst, "<code>"...)
			r.dst = escapeHTML(r.dst, tok.Literal)
			r.dst = append(r.dst, "</code>"...)
		case *EmphasisOpen:
			if tok.Count >= 2 {
				r.dst = append(r.dst, "<strong>"...)
			} else {
				r.dst = append(r.dst, "<em>"...)
			}
		case *LinkOpen:
			def := r.linkDefinition(tok.LinkKind, tok.Label, tok.Destination, tok.Title, tok.TitlePresent)
			r.dst = append(r.dst, `<a href="`...)
			r.dst = escapeHTML(r.dst, NormalizeURI(def.Destination))
			r.dst = append(r.dst, `"`...)
			if def.TitlePresent {
				r.dst = append(r.dst, ` title="`...)
				r.dst = escapeHTML(r.dst, def.Title)
				r.dst = append(r.dst, `"`...)
			}
			r.dst = append(r.dst, ">"...)
		case *Image:
			def := r.linkDefinition(tok.LinkKind, tok.Label, tok.Destination, tok.Title, tok.TitlePresent)
			r.dst = append(r.dst, `<img src="`...)
			r.dst = escapeHTML(r.dst, NormalizeURI(def.Destination))
			r.dst = append(r.dst, `" alt="`...)
			r.dst = escapeHTML(r.dst, tok.AltText)
			r.dst = append(r.dst, `"`...)
			if def.TitlePresent {
				r.dst = append(r.dst, ` title="`...)
				r.dst = escapeHTML(r.dst, def.Title)
				r.dst = append(r.dst, `"`...)
			}
			r.dst = append(r.dst, " />"...)
		case *RawHTML:
			if !r.IgnoreRaw {
				r.dst = append(r.dst, r.filterRawHTML(tok.Literal)...)
			}
		case *Autolink:
			r.dst = append(r.dst, `<a href="`...)
			if tok.Email {
				r.dst = append(r.dst, "mailto:"...)
			}
			r.dst = escapeHTML(r.dst, NormalizeURI(tok.Literal))
			r.dst = append(r.dst, `">`...)
			r.dst = escapeHTML(r.dst, tok.Literal)
			r.dst = append(r.dst, "</a>"...)
		case *HardBreak:
			r.dst = append(r.dst, "<br />\n"...)
		case *SoftBreak:
			switch r.SoftBreakBehavior {
			case SoftBreakHarden:
				r.dst = append(r.dst, "<br />\n"...)
			case SoftBreakSpace:
				r.dst = append(r.dst, ' ')
			default:
				r.dst = append(r.dst, '\n')
			}
		case *CharacterReference:
			r.dst = escapeHTML(r.dst, tok.Resolved)
		case *BackslashEscape:
			r.dst = escapeHTML(r.dst, string(tok.Escaped))
		case *End:
			switch open := tok.Open.(type) {
			case *EmphasisOpen:
				if open.Count >= 2 {
					r.dst = append(r.dst, "</strong>"...)
				} else {
					r.dst = append(r.dst, "</em>"...)
				}
			case *LinkOpen:
				r.dst = append(r.dst, "</a>"...)
			}
		}
	}
}

func (r *renderState) linkDefinition(kind LinkKind, label, dest, title string, titlePresent bool) LinkDefinition {
	if kind != InlineLink && r.ReferenceMap != nil {
		if def, ok := r.ReferenceMap[normalizeLabel(label)]; ok {
			return def
		}
	}
	return LinkDefinition{Destination: dest, Title: title, TitlePresent: titlePresent}
}

// filterRawHTML escapes the leading angle bracket of disallowed tags.
func (r *renderState) filterRawHTML(s string) string {
	if r.SkipFilter {
		return s
	}
	filter := r.FilterTag
	if filter == nil {
		filter = defaultTagFilter
	}
	var sb *strings.Builder
	last := 0
	for i := 0; i+1 < len(s); i++ {
		if s[i] != '<' {
			continue
		}
		j := i + 1
		if j < len(s) && s[j] == '/' {
			j++
		}
		name, end := scanHTMLTagName(s, j)
		if end < 0 || !filter(name) {
			continue
		}
		if sb == nil {
			sb = new(strings.Builder)
		}
		sb.WriteString(s[last:i])
		sb.WriteString("&lt;")
		last = i + 1
	}
	if sb == nil {
		return s
	}
	sb.WriteString(s[last:])
	return sb.String()
}

// defaultTagFilter is the GFM tagfilter set.
func defaultTagFilter(tag string) bool {
	switch tag {
	case atom.Title.String(), atom.Textarea.String(), atom.Style.String(),
		atom.Iframe.String(), atom.Noembed.String(), atom.Noframes.String(),
		atom.Script.String(), atom.Plaintext.String(), "xmp":
		return true
	default:
		return false
	}
}

func matchingEndOr(tokens []Token, i int) int {
	if end := MatchingEnd(tokens, i); end > i {
		return end
	}
	return len(tokens)
}

// escapeHTML appends the HTML-escaped version of a string to dst.
func escapeHTML(dst []byte, src string) []byte {
	verbatimStart := 0
	for i := 0; i < len(src); i++ {
		var esc string
		switch src[i] {
		case '&':
			esc = "&amp;"
		case '<':
			esc = "&lt;"
		case '>':
			esc = "&gt;"
		case '"':
			esc = "&quot;"
		default:
			continue
		}
		dst = append(dst, src[verbatimStart:i]...)
		dst = append(dst, esc...)
		verbatimStart = i + 1
	}
	if verbatimStart < len(src) {
		dst = append(dst, src[verbatimStart:]...)
	}
	return dst
}

// SoftBreakBehavior is an enumeration of rendering styles for soft
// line breaks.
type SoftBreakBehavior int

const (
	// SoftBreakPreserve indicates that a soft line break should be rendered as-is.
	SoftBreakPreserve SoftBreakBehavior = iota
	// SoftBreakSpace indicates that a soft line break should be rendered as a space.
	SoftBreakSpace
	// SoftBreakHarden indicates that a soft line break should be rendered as a hard line break.
	SoftBreakHarden
)

// NormalizeURI percent-encodes any characters in a string
// that are not reserved or unreserved URI characters.
// This is commonly used for transforming link destinations
// into strings suitable for href or src attributes.
func NormalizeURI(s string) string {
	// RFC 3986 reserved and unreserved characters.
	const safeSet = `;/?:@&=+$,-_.!~*'()#%`

	sb := new(strings.Builder)
	sb.Grow(len(s))
	skip := 0
	var buf [utf8.UTFMax]byte
	for i, c := range s {
		if skip > 0 {
			skip--
			sb.WriteRune(c)
			continue
		}
		switch {
		case c == '%':
			if i+2 < len(s) && isHexDigit(s[i+1]) && isHexDigit(s[i+2]) {
				skip = 2
				sb.WriteByte('%')
			} else {
				sb.WriteString("%25")
			}
		case (c < 0x80 && (isASCIILetter(byte(c)) || isASCIIDigit(byte(c)))) || (c < 0x80 && strings.ContainsRune(safeSet, c)):
			sb.WriteRune(c)
		default:
			n := utf8.EncodeRune(buf[:], c)
			for _, b := range buf[:n] {
				sb.WriteByte('%')
				sb.WriteByte(urlHexDigit(b >> 4))
				sb.WriteByte(urlHexDigit(b & 0x0f))
			}
		}
	}
	return sb.String()
}

func urlHexDigit(x byte) byte {
	switch {
	case x < 0xa:
		return '0' + x
	case x < 0x10:
		return 'A' + x - 0xa
	default:
		panic("out of bounds")
	}
}

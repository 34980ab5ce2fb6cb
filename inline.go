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
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"zombiezen.com/go/mdtoken/internal/entity"
)

// processInlines expands the unparsed text payload of each paragraph
// and heading into inline tokens. Code blocks and HTML blocks are left
// untouched. Running the pass over its own output is a no-op.
func processInlines(tokens []Token, refs ReferenceMap, exts []Extension) []Token {
	out := make([]Token, 0, len(tokens))
	for i := 0; i < len(tokens); i++ {
		tok := tokens[i]
		out = append(out, tok)
		switch tok.Kind() {
		case KindParagraphOpen, KindATXHeadingOpen, KindSetextHeadingOpen:
			if i+1 < len(tokens) {
				if txt, ok := tokens[i+1].(*Text); ok && txt.unparsed {
					out = append(out, parseInlines(txt, refs, exts)...)
					i++
				}
			}
		}
	}
	return out
}

// inlineParser tokenizes one coalesced paragraph or heading payload.
type inlineParser struct {
	s     string
	lines []textLine
	// starts[i] is the payload offset of line i.
	starts []int
	refs   ReferenceMap
	exts   []Extension
}

// parseInlines runs the inline phases over a single unparsed payload:
// code spans, autolinks and raw HTML, escapes, character references,
// then links and emphasis via the delimiter stack.
func parseInlines(txt *Text, refs ReferenceMap, exts []Extension) []Token {
	p := &inlineParser{
		s:     txt.Literal,
		lines: txt.lines,
		refs:  refs,
		exts:  exts,
	}
	p.starts = make([]int, len(p.lines))
	off := 0
	for i := range p.lines {
		p.starts[i] = off
		nl := strings.IndexByte(p.s[off:], '\n')
		if nl < 0 {
			break
		}
		off += nl + 1
	}
	nodes := p.scan()
	nodes = resolveEmphasis(p, nodes)
	return p.flatten(nil, nodes)
}

// posAt maps a payload offset to its source position.
func (p *inlineParser) posAt(off int) position {
	li := 0
	for li+1 < len(p.starts) && p.starts[li+1] <= off {
		li++
	}
	tl := p.lines[li]
	col := tl.startCol + columnWidth(tl.startCol-1, p.s[p.starts[li]:off])
	return makePosition(tl.line, col, tl.indexIndent)
}

// inline node kinds used between the scan and resolution phases.
type nodeKind uint8

const (
	nodeText nodeKind = iota
	nodeToken
	nodeBracket
	nodeDelim
	nodeWrap
)

type inlineNode struct {
	kind       nodeKind
	start, end int // payload span for nodeText, nodeBracket, nodeDelim
	tok        Token
	open       Token
	children   []*inlineNode

	// delimiter run state
	delim     byte
	origCount int
	canOpen   bool
	canClose  bool

	// bracket state
	image      bool
	active     bool
	innerStart int
	dstIndex   int
}

func (n *inlineNode) count() int { return n.end - n.start }

// scan is phase one: it walks the payload, converting leaf inline
// constructs to tokens and recording bracket and delimiter runs for
// the resolution phase. Links are resolved as their closing brackets
// are found.
func (p *inlineParser) scan() []*inlineNode {
	s := p.s
	var nodes []*inlineNode
	emitted := 0
	emitText := func(i int) {
		if emitted < i {
			nodes = append(nodes, &inlineNode{kind: nodeText, start: emitted, end: i})
			emitted = i
		}
	}

	i := 0
scanLoop:
	for i < len(s) {
		for _, ext := range p.exts {
			toks, consumed, err := ext.TryInline(s, i, p.posAt(i).Pos())
			if err != nil || consumed <= 0 {
				continue
			}
			emitText(i)
			for _, tok := range toks {
				nodes = append(nodes, &inlineNode{kind: nodeToken, tok: tok})
			}
			i += consumed
			emitted = i
			continue scanLoop
		}
		switch s[i] {
		case '\\':
			if tok, end := p.parseEscape(i); tok != nil {
				emitText(i)
				nodes = append(nodes, &inlineNode{kind: nodeToken, tok: tok})
				i = end
				emitted = i
				continue
			}
		case '`':
			tok, end := p.parseCodeSpan(i)
			emitText(i)
			if tok != nil {
				nodes = append(nodes, &inlineNode{kind: nodeToken, tok: tok})
			} else {
				// Unmatched backtick run: all of it is literal.
				nodes = append(nodes, &inlineNode{kind: nodeText, start: i, end: end})
			}
			i = end
			emitted = i
			continue
		case '<':
			if tok, end := p.parseAngle(i); tok != nil {
				emitText(i)
				nodes = append(nodes, &inlineNode{kind: nodeToken, tok: tok})
				i = end
				emitted = i
				continue
			}
		case '&':
			if tok, end := p.parseCharacterReference(i); tok != nil {
				emitText(i)
				nodes = append(nodes, &inlineNode{kind: nodeToken, tok: tok})
				i = end
				emitted = i
				continue
			}
		case '\n':
			tok, start, end := p.parseBreak(i)
			emitText(start)
			nodes = append(nodes, &inlineNode{kind: nodeToken, tok: tok})
			i = end
			emitted = i
			continue
		case '[':
			emitText(i)
			nodes = append(nodes, &inlineNode{
				kind: nodeBracket, start: i, end: i + 1,
				active: true, innerStart: i + 1,
			})
			i++
			emitted = i
			continue
		case '!':
			if i+1 < len(s) && s[i+1] == '[' {
				emitText(i)
				nodes = append(nodes, &inlineNode{
					kind: nodeBracket, start: i, end: i + 2,
					image: true, active: true, innerStart: i + 2,
				})
				i += 2
				emitted = i
				continue
			}
		case '*', '_':
			run := p.parseDelimiterRun(i)
			emitText(i)
			nodes = append(nodes, run)
			i = run.end
			emitted = i
			continue
		case ']':
			if oi := lastBracket(nodes); oi >= 0 {
				emitText(i)
				open := nodes[oi]
				if done, end := p.closeBracket(&nodes, oi, i); done {
					i = end
					emitted = i
					continue
				}
				// The bracket cannot be a link: it becomes literal text.
				open.kind = nodeText
			}
		}
		i++
	}
	emitText(len(s))
	return nodes
}

func lastBracket(nodes []*inlineNode) int {
	for i := len(nodes) - 1; i >= 0; i-- {
		if nodes[i].kind == nodeBracket {
			return i
		}
	}
	return -1
}

// parseEscape handles a backslash escape or a backslash hard break.
func (p *inlineParser) parseEscape(i int) (Token, int) {
	s := p.s
	if i+1 >= len(s) {
		return nil, 0
	}
	c := s[i+1]
	if isASCIIPunct(c) {
		return &BackslashEscape{position: p.posAt(i), Escaped: c}, i + 2
	}
	if c == '\n' {
		return &HardBreak{position: p.posAt(i), Marker: "\\"}, i + 2
	}
	return nil, 0
}

// parseCodeSpan matches a run of backticks against the next run of the
// same length. If no match exists, the opening run is literal and the
// returned token is nil.
func (p *inlineParser) parseCodeSpan(i int) (Token, int) {
	s := p.s
	n := 1
	for i+n < len(s) && s[i+n] == '`' {
		n++
	}
	for end := i + n; end < len(s); {
		if s[end] != '`' {
			end++
			continue
		}
		closeStart := end
		for end < len(s) && s[end] == '`' {
			end++
		}
		if end-closeStart != n {
			continue
		}
		raw := s[i+n : closeStart]
		// Line endings are converted to single spaces.
		text := strings.ReplaceAll(raw, "\n", " ")
		var before, after string
		// If the enclosed text starts and ends with a space and is not
		// all spaces, one space is removed from each end, to allow
		// quoting a backtick.
		if len(text) >= 2 && text[0] == ' ' && text[len(text)-1] == ' ' && strings.Trim(text, " ") != "" {
			before, after = " ", " "
			text = text[1 : len(text)-1]
		}
		return &CodeSpan{
			position:       p.posAt(i),
			RunCount:       n,
			BeforeWS:       before,
			AfterWS:        after,
			Literal:        text,
			SourceInterior: raw,
		}, end
	}
	// No match: none of these backticks count.
	return nil, i + n
}

// parseAngle handles '<': a URI autolink, an email autolink, or a raw
// HTML construct.
func (p *inlineParser) parseAngle(i int) (Token, int) {
	s := p.s
	if end := scanAutolinkURI(s, i); end >= 0 {
		return &Autolink{position: p.posAt(i), Literal: s[i+1 : end-1]}, end
	}
	if end := scanAutolinkEmail(s, i); end >= 0 {
		return &Autolink{position: p.posAt(i), Email: true, Literal: s[i+1 : end-1]}, end
	}
	if end := scanHTMLTag(s, i); end >= 0 {
		return &RawHTML{position: p.posAt(i), Literal: s[i:end]}, end
	}
	return nil, 0
}

// parseCharacterReference handles '&': named, decimal, and hexadecimal
// references. Unknown or invalid references stay literal.
func (p *inlineParser) parseCharacterReference(i int) (Token, int) {
	s := p.s
	if i+1 < len(s) && s[i+1] == '#' {
		j := i + 2
		hex := false
		if j < len(s) && (s[j] == 'x' || s[j] == 'X') {
			hex = true
			j++
		}
		digits := j
		maxDigits := 7
		valid := isASCIIDigit
		if hex {
			maxDigits = 6
			valid = isHexDigit
		}
		for j < len(s) && valid(s[j]) {
			j++
		}
		if j-digits < 1 || j-digits > maxDigits || j >= len(s) || s[j] != ';' {
			return nil, 0
		}
		bits := 10
		if hex {
			bits = 16
		}
		r64, _ := strconv.ParseInt(s[digits:j], bits, 32)
		r := rune(r64)
		if r == 0 || !utf8.ValidRune(r) {
			r = utf8.RuneError
		}
		return &CharacterReference{
			position: p.posAt(i),
			Raw:      s[i : j+1],
			Resolved: string(r),
		}, j + 1
	}
	// Named reference. Entity names are short; cap the scan.
	for j := i + 1; j < len(s) && j-i < 64; j++ {
		if s[j] == '&' {
			break
		}
		if s[j] == ';' {
			if resolved, ok := entity.Lookup(s[i : j+1]); ok {
				return &CharacterReference{
					position: p.posAt(i),
					Raw:      s[i : j+1],
					Resolved: resolved,
				}, j + 1
			}
			break
		}
	}
	return nil, 0
}

// parseBreak handles a newline: a hard break after two or more
// trailing spaces, a soft break otherwise. Trailing whitespace before
// the newline belongs to the break token.
func (p *inlineParser) parseBreak(i int) (Token, int, int) {
	s := p.s
	start := i
	for start > 0 && (s[start-1] == ' ' || s[start-1] == '\t') {
		start--
	}
	if i-start >= 2 && strings.Trim(s[start:i], " ") == "" {
		return &HardBreak{position: p.posAt(start), Marker: s[start:i]}, start, i + 1
	}
	return &SoftBreak{position: p.posAt(start), TrailingWhitespace: s[start:i]}, start, i + 1
}

// parseDelimiterRun records a run of '*' or '_' with its open/close
// capabilities per the flanking rules.
func (p *inlineParser) parseDelimiterRun(i int) *inlineNode {
	s := p.s
	c := s[i]
	j := i + 1
	for j < len(s) && s[j] == c {
		j++
	}

	var before, after rune
	if i == 0 {
		before = '\n'
	} else {
		before, _ = utf8.DecodeLastRuneInString(s[:i])
	}
	if j >= len(s) {
		after = '\n'
	} else {
		after, _ = utf8.DecodeRuneInString(s[j:])
	}

	// The beginning and end of the line count as Unicode whitespace.
	leftFlank := !isUnicodeSpace(after) &&
		(!isUnicodePunct(after) || isUnicodeSpace(before) || isUnicodePunct(before))
	rightFlank := !isUnicodeSpace(before) &&
		(!isUnicodePunct(before) || isUnicodeSpace(after) || isUnicodePunct(after))

	var canOpen, canClose bool
	if c == '*' {
		canOpen = leftFlank
		canClose = rightFlank
	} else {
		// Intraword underscores neither open nor close.
		canOpen = leftFlank && (!rightFlank || isUnicodePunct(before))
		canClose = rightFlank && (!leftFlank || isUnicodePunct(after))
	}

	return &inlineNode{
		kind:      nodeDelim,
		start:     i,
		end:       j,
		delim:     c,
		origCount: j - i,
		canOpen:   canOpen,
		canClose:  canClose,
	}
}

// flatten converts resolved inline nodes to output tokens, merging
// adjacent literal text spans.
func (p *inlineParser) flatten(out []Token, nodes []*inlineNode) []Token {
	var textStart, textEnd int
	haveText := false
	flush := func() {
		if haveText {
			out = append(out, &Text{
				position: p.posAt(textStart),
				Literal:  p.s[textStart:textEnd],
			})
			haveText = false
		}
	}
	addText := func(start, end int) {
		if start >= end {
			return
		}
		if haveText && textEnd == start {
			textEnd = end
			return
		}
		flush()
		textStart, textEnd = start, end
		haveText = true
	}

	for _, n := range nodes {
		switch n.kind {
		case nodeText, nodeBracket, nodeDelim:
			addText(n.start, n.end)
		case nodeToken:
			flush()
			out = append(out, n.tok)
		case nodeWrap:
			flush()
			out = append(out, n.open)
			out = p.flatten(out, n.children)
			end := &End{Open: n.open}
			switch open := n.open.(type) {
			case *EmphasisOpen:
				end.position = open.position
			case *LinkOpen:
				end.position = open.position
				end.Extra = open.rawSuffix
			}
			out = append(out, end)
		}
	}
	flush()
	return out
}

// altTextOf flattens nodes to the plain text used for image alt
// attributes.
func (p *inlineParser) altTextOf(nodes []*inlineNode) string {
	sb := new(strings.Builder)
	for _, n := range nodes {
		switch n.kind {
		case nodeText, nodeBracket, nodeDelim:
			sb.WriteString(p.s[n.start:n.end])
		case nodeToken:
			switch tok := n.tok.(type) {
			case *Text:
				sb.WriteString(tok.ResolvedText())
			case *CodeSpan:
				sb.WriteString(tok.Literal)
			case *Autolink:
				sb.WriteString(tok.Literal)
			case *CharacterReference:
				sb.WriteString(tok.Resolved)
			case *BackslashEscape:
				sb.WriteByte(tok.Escaped)
			case *SoftBreak, *HardBreak:
				sb.WriteByte(' ')
			case *Image:
				sb.WriteString(tok.AltText)
			}
		case nodeWrap:
			sb.WriteString(p.altTextOf(n.children))
		}
	}
	return sb.String()
}

func isASCIIPunct(c byte) bool {
	return '!' <= c && c <= '/' || ':' <= c && c <= '@' || '[' <= c && c <= '`' || '{' <= c && c <= '~'
}

func isHexDigit(c byte) bool {
	return 'A' <= c && c <= 'F' || 'a' <= c && c <= 'f' || isASCIIDigit(c)
}

func isUnicodeSpace(r rune) bool {
	if r < 0x80 {
		return r == ' ' || r == '\t' || r == '\n'
	}
	return unicode.In(r, unicode.Zs)
}

func isUnicodePunct(r rune) bool {
	if r < 0x80 {
		return isASCIIPunct(byte(r))
	}
	return unicode.In(r, unicode.Punct, unicode.S)
}

// unescapeString resolves backslash escapes and character references
// in link destinations and titles.
func unescapeString(s string) string {
	if !strings.ContainsAny(s, "\\&") {
		return s
	}
	sb := new(strings.Builder)
	sb.Grow(len(s))
	for i := 0; i < len(s); {
		switch s[i] {
		case '\\':
			if i+1 < len(s) && isASCIIPunct(s[i+1]) {
				sb.WriteByte(s[i+1])
				i += 2
				continue
			}
		case '&':
			p := &inlineParser{s: s, lines: []textLine{{line: 1, startCol: 1}}, starts: []int{0}}
			if tok, end := p.parseCharacterReference(i); tok != nil {
				sb.WriteString(tok.(*CharacterReference).Resolved)
				i = end
				continue
			}
		}
		sb.WriteByte(s[i])
		i++
	}
	return sb.String()
}

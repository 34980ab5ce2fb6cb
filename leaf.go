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

// codeBlockIndentLimit is the column width of an indent
// required to start an indented code block.
const codeBlockIndentLimit = 4

// leafLine consumes the residual line after container matching:
// it continues the open leaf block, closes it, or starts a new one.
func (p *parser) leafLine(c *lineCursor, ln logicalLine, base int) {
	if p.lrd != nil {
		if p.lrdContinue(c, ln, base) {
			return
		}
	}

	top := p.stack[len(p.stack)-1]
	switch top.kind {
	case fencedCodeBlock:
		p.fencedLine(c, ln, top, base)
		return
	case htmlBlock:
		p.htmlLine(c, ln, top, base)
		return
	case indentedCodeBlock:
		if p.icodeLine(c, ln, top, base) {
			return
		}
		top = p.stack[len(p.stack)-1]
	}

	for _, ext := range p.opts.extensions() {
		toks, consumed, err := ext.TryBlockStart(c.rest(), Position{Line: ln.number, Col: c.col + 1})
		if err != nil || consumed <= 0 {
			continue
		}
		p.closeLeaf(true)
		p.emit(toks...)
		c.advance(consumed)
		if c.restBlank() {
			c.consumeRest()
			return
		}
		top = p.stack[len(p.stack)-1]
	}

	if c.restBlank() {
		p.blankLine(c, ln, base)
		return
	}

	ind := c.indent()
	rest := c.restAfterIndent()

	if ind < codeBlockIndentLimit {
		if top.kind == paragraphBlock {
			if level := parseSetextHeadingUnderline(rest); level > 0 {
				p.setextLine(c, ln, base, level)
				return
			}
		}
		if h := parseATXHeading(rest); h.level > 0 {
			p.atxLine(c, ln, base, h)
			return
		}
		if end := parseThematicBreak(rest); end >= 0 {
			p.thematicBreakLine(c, ln, base)
			return
		}
		if f := parseCodeFence(rest); f.n > 0 {
			p.openFence(c, ln, base, f)
			return
		}
		if mode := startHTMLBlockMode(rest, top.kind == paragraphBlock); mode > 0 {
			p.openHTMLBlock(c, ln, base, mode)
			return
		}
		if top.kind != paragraphBlock && !ln.noLRD && rest[0] == '[' {
			p.lrdStart(c, ln, base)
			return
		}
	} else if top.kind != paragraphBlock {
		p.openIndentedCode(c, ln, base)
		return
	}

	p.paragraphText(c, ln, base)
}

// blankLine emits a blank line token, closing any open paragraph and
// accounting the blank against open lists.
func (p *parser) blankLine(c *lineCursor, ln logicalLine, base int) {
	if top := p.stack[len(p.stack)-1]; top.kind == paragraphBlock {
		p.closeTop(true)
	}
	startCol := c.col
	ws := c.consumeRest()
	p.emit(&BlankLine{
		position:            makePosition(ln.number, startCol+1, base),
		ExtractedWhitespace: ws,
	})

	// Two consecutive blank lines close a list.
	closeAt := -1
	for i, e := range p.stack {
		if e.kind == listBlock {
			e.blankCount++
			if e.blankCount >= 2 && closeAt < 0 {
				closeAt = i
			}
		}
	}
	if closeAt >= 0 {
		p.closeTo(closeAt, true)
	}
}

// paragraphText opens a paragraph if none is open and appends the
// line's text to it.
func (p *parser) paragraphText(c *lineCursor, ln logicalLine, base int) {
	top := p.stack[len(p.stack)-1]
	if top.kind != paragraphBlock {
		p.closeLeaf(true)
		p.stack = append(p.stack, &stackEntry{kind: paragraphBlock, para: new(paraBuilder)})
		top = p.stack[len(p.stack)-1]
	}
	ws := c.consumeColumns(c.indent())
	textStart := c.col
	text := c.consumeRest()
	top.para.lines = append(top.para.lines, paraLine{
		ws:          ws,
		text:        text,
		line:        ln.number,
		startCol:    textStart + 1,
		indexIndent: base,
	})
}

// emitParagraph emits the buffered paragraph as open + text + close.
func (p *parser) emitParagraph(e *stackEntry) {
	lines := e.para.lines
	if len(lines) == 0 {
		return
	}
	ws := make([]string, len(lines))
	for i, pl := range lines {
		ws[i] = pl.ws
	}
	open := &ParagraphOpen{
		position:            makePosition(lines[0].line, lines[0].startCol, lines[0].indexIndent),
		ExtractedWhitespace: ws,
	}
	p.emit(open)
	p.emit(rawTextFromLines(lines, ""))
	p.emit(&End{position: open.position, Open: open, WasForced: true})
}

// setextLine converts the open paragraph into a setext heading.
func (p *parser) setextLine(c *lineCursor, ln logicalLine, base int, level int) {
	top := p.stack[len(p.stack)-1]
	p.stack = p.stack[:len(p.stack)-1]

	underlineWS := c.consumeColumns(c.indent())
	underlineCol := c.col
	underline := c.consumeRest()
	marker := underline[0]
	count := 0
	for count < len(underline) && underline[count] == marker {
		count++
	}
	trailing := underline[count:]

	lines := top.para.lines
	ows := make([]string, len(lines))
	for i, pl := range lines {
		ows[i] = pl.ws
	}
	open := &SetextHeadingOpen{
		position:            makePosition(ln.number, underlineCol+1, base),
		Level:               level,
		UnderlineChar:       marker,
		UnderlineCount:      count,
		UnderlineWhitespace: underlineWS,
		OriginalWhitespace:  ows,
		TextPos:             Position{Line: lines[0].line, Col: lines[0].startCol},
	}
	p.emit(open)
	p.emit(rawTextFromLines(lines, ""))
	p.emit(&End{position: open.position, Open: open, WasForced: false, Extra: trailing})
}

// atxLine emits an ATX heading in full: the heading line is both
// opened and closed by its own syntax.
func (p *parser) atxLine(c *lineCursor, ln logicalLine, base int, h atxHeading) {
	p.closeLeaf(true)
	ws := c.consumeColumns(c.indent())
	markerCol := c.col
	rest := c.rest()
	c.consumeRest()

	wsAfterHashes := rest[h.level:h.content.start]
	content := rest[h.content.start:h.content.end]
	removed := rest[h.content.end:]

	open := &ATXHeadingOpen{
		position:            makePosition(ln.number, markerCol+1, base),
		Level:               h.level,
		ExtractedWhitespace: ws,
		RemovedTrailing:     removed,
		wsBeforeContent:     wsAfterHashes,
	}
	p.emit(open)
	if content != "" {
		tok := rawTextFromLines([]paraLine{{
			text:        content,
			line:        ln.number,
			startCol:    markerCol + 1 + columnWidth(markerCol, rest[:h.content.start]),
			indexIndent: base,
		}}, "")
		p.emit(tok)
	}
	p.emit(&End{position: open.position, Open: open, WasForced: false})
}

// thematicBreakLine emits a thematic break.
func (p *parser) thematicBreakLine(c *lineCursor, ln logicalLine, base int) {
	p.closeLeaf(true)
	ws := c.consumeColumns(c.indent())
	markerCol := c.col
	restText := c.consumeRest()
	p.emit(&ThematicBreak{
		position:            makePosition(ln.number, markerCol+1, base),
		Marker:              restText[0],
		Rest:                restText,
		ExtractedWhitespace: ws,
	})
}

// openFence opens a fenced code block.
func (p *parser) openFence(c *lineCursor, ln logicalLine, base int, f codeFence) {
	p.closeLeaf(true)
	ind := c.indent()
	ws := c.consumeColumns(ind)
	fenceCol := c.col
	rest := c.rest()
	c.consumeRest()

	afterFence := rest[f.n:]
	wsLen := indentLength(afterFence)
	open := &FencedCodeBlockOpen{
		position:             makePosition(ln.number, fenceCol+1, base),
		FenceChar:            f.char,
		FenceCount:           f.n,
		InfoString:           afterFence[wsLen:],
		WhitespaceBeforeInfo: afterFence[:wsLen],
		ExtractedWhitespace:  ws,
	}
	p.emit(open)
	p.stack = append(p.stack, &stackEntry{
		kind:        fencedCodeBlock,
		open:        open,
		fenceChar:   f.char,
		fenceCount:  f.n,
		fenceIndent: ind,
	})
}

// fencedLine continues or closes an open fenced code block.
func (p *parser) fencedLine(c *lineCursor, ln logicalLine, e *stackEntry, base int) {
	ind := c.indent()
	if ind < codeBlockIndentLimit {
		f := parseCodeFence(c.restAfterIndent())
		if f.n > 0 && f.char == e.fenceChar && f.n >= e.fenceCount && isBlank(f.rest) {
			ws := c.consumeColumns(ind)
			fenceText := c.consumeRest()
			p.emitCodeInterior(e)
			p.stack = p.stack[:len(p.stack)-1]
			p.emit(&End{
				position:            e.open.(*FencedCodeBlockOpen).position,
				Open:                e.open,
				WasForced:           false,
				ExtractedWhitespace: ws,
				Extra:               fenceText,
			})
			return
		}
	}
	strip := ind
	if strip > e.fenceIndent {
		strip = e.fenceIndent
	}
	ws := c.consumeColumns(strip)
	startCol := c.col
	text := c.consumeRest()
	e.icodeLines = append(e.icodeLines, codeLine{
		ws:          ws,
		text:        text,
		line:        ln.number,
		startCol:    startCol + 1,
		indexIndent: base,
	})
}

// openIndentedCode opens an indented code block at the current line.
func (p *parser) openIndentedCode(c *lineCursor, ln logicalLine, base int) {
	p.closeLeaf(true)
	ws := c.consumeColumns(codeBlockIndentLimit)
	startCol := c.col
	text := c.consumeRest()
	open := &IndentedCodeBlockOpen{
		position:            makePosition(ln.number, startCol+1, base),
		ExtractedWhitespace: ws,
	}
	p.emit(open)
	p.stack = append(p.stack, &stackEntry{
		kind: indentedCodeBlock,
		open: open,
		icodeLines: []codeLine{{
			text:        text,
			line:        ln.number,
			startCol:    startCol + 1,
			indexIndent: base,
		}},
	})
}

// icodeLine continues an open indented code block.
// It reports whether the line was consumed; when it returns false the
// block has been closed and the caller re-dispatches the line.
func (p *parser) icodeLine(c *lineCursor, ln logicalLine, e *stackEntry, base int) bool {
	if c.restBlank() {
		startCol := c.col
		raw := c.consumeRest()
		e.pendingBlanks = append(e.pendingBlanks, pendingBlank{
			raw:         raw,
			line:        ln.number,
			col:         startCol + 1,
			indexIndent: base,
		})
		return true
	}
	if c.indent() < codeBlockIndentLimit {
		p.closeTop(true)
		return false
	}
	// Blank lines between code lines are interior.
	for _, b := range e.pendingBlanks {
		bc := &lineCursor{text: b.raw, col: b.col - 1}
		strip := bc.indent()
		if strip > codeBlockIndentLimit {
			strip = codeBlockIndentLimit
		}
		ws := bc.consumeColumns(strip)
		e.icodeLines = append(e.icodeLines, codeLine{
			ws:          ws,
			text:        bc.consumeRest(),
			line:        b.line,
			startCol:    bc.col + 1,
			indexIndent: b.indexIndent,
		})
	}
	e.pendingBlanks = nil
	ws := c.consumeColumns(codeBlockIndentLimit)
	startCol := c.col
	text := c.consumeRest()
	e.icodeLines = append(e.icodeLines, codeLine{
		ws:          ws,
		text:        text,
		line:        ln.number,
		startCol:    startCol + 1,
		indexIndent: base,
	})
	return true
}

// emitCodeInterior emits the buffered interior lines of a code or HTML
// block as per-line text tokens; the coalescer merges them afterwards.
func (p *parser) emitCodeInterior(e *stackEntry) {
	for _, cl := range e.icodeLines {
		p.emit(&Text{
			position:            makePosition(cl.line, cl.startCol, cl.indexIndent),
			Literal:             cl.text,
			ExtractedWhitespace: cl.ws,
			TabifiedText:        cl.tabified,
		})
	}
	e.icodeLines = nil
}

// openHTMLBlock opens an HTML block in the given mode.
func (p *parser) openHTMLBlock(c *lineCursor, ln logicalLine, base int, mode int) {
	p.closeLeaf(true)
	ws := c.consumeColumns(c.indent())
	startCol := c.col
	text := c.consumeRest()
	open := &HTMLBlockOpen{
		position: makePosition(ln.number, startCol+1, base),
		Mode:     mode,
	}
	p.emit(open)
	e := &stackEntry{
		kind:     htmlBlock,
		open:     open,
		htmlMode: mode,
		icodeLines: []codeLine{{
			ws:          ws,
			text:        text,
			line:        ln.number,
			startCol:    startCol + 1,
			indexIndent: base,
		}},
	}
	p.stack = append(p.stack, e)
	if mode <= 5 && htmlBlockEndCondition(mode, text) {
		p.emitCodeInterior(e)
		p.stack = p.stack[:len(p.stack)-1]
		p.emit(&End{position: open.position, Open: open, WasForced: false})
	}
}

// htmlLine continues or closes an open HTML block according to the
// end condition of its mode.
func (p *parser) htmlLine(c *lineCursor, ln logicalLine, e *stackEntry, base int) {
	mode := e.htmlMode
	if mode >= 6 {
		if c.restBlank() {
			p.emitCodeInterior(e)
			p.stack = p.stack[:len(p.stack)-1]
			p.emit(&End{position: e.open.(*HTMLBlockOpen).position, Open: e.open, WasForced: false})
			p.blankLine(c, ln, base)
			return
		}
	}
	ws := c.consumeColumns(c.indent())
	startCol := c.col
	text := c.consumeRest()
	e.icodeLines = append(e.icodeLines, codeLine{
		ws:          ws,
		text:        text,
		line:        ln.number,
		startCol:    startCol + 1,
		indexIndent: base,
	})
	if mode <= 5 && htmlBlockEndCondition(mode, text) {
		p.emitCodeInterior(e)
		p.stack = p.stack[:len(p.stack)-1]
		p.emit(&End{position: e.open.(*HTMLBlockOpen).position, Open: e.open, WasForced: false})
	}
}

// rawTextFromLines builds the unparsed text token handed to the inline
// pass. The payload is the newline-joined text of the lines.
func rawTextFromLines(lines []paraLine, ws string) *Text {
	texts := make([]string, len(lines))
	tls := make([]textLine, len(lines))
	for i, pl := range lines {
		texts[i] = pl.text
		tls[i] = textLine{line: pl.line, startCol: pl.startCol, indexIndent: pl.indexIndent}
	}
	return &Text{
		position:            makePosition(lines[0].line, lines[0].startCol, lines[0].indexIndent),
		Literal:             strings.Join(texts, "\n"),
		ExtractedWhitespace: ws,
		lines:               tls,
		unparsed:            true,
	}
}

// parseThematicBreak attempts to parse the line as a [thematic break].
// It returns the end of the thematic break characters
// or -1 if the line is not a thematic break.
// parseThematicBreak assumes that the caller has stripped any leading indentation.
//
// [thematic break]: https://spec.commonmark.org/0.30/#thematic-breaks
func parseThematicBreak(line string) (end int) {
	n := 0
	var want byte
	for i := 0; i < len(line); i++ {
		switch b := line[i]; b {
		case '-', '_', '*':
			if n == 0 {
				want = b
			} else if b != want {
				return -1
			}
			n++
			end = i + 1
		case ' ', '\t':
			// Ignore
		default:
			return -1
		}
	}
	if n < 3 {
		return -1
	}
	return end
}

func isThematicBreakLine(line string) bool {
	return parseThematicBreak(line) >= 0
}

type atxHeading struct {
	level   int // 1-6
	content span
}

type span struct {
	start, end int
}

// parseATXHeading attempts to parse the line as an [ATX heading].
// The level is zero if the line is not an ATX heading.
// parseATXHeading assumes that the caller has stripped any leading indentation.
//
// [ATX heading]: https://spec.commonmark.org/0.30/#atx-headings
func parseATXHeading(line string) atxHeading {
	var h atxHeading
	for h.level < len(line) && line[h.level] == '#' {
		h.level++
	}
	if h.level == 0 || h.level > 6 {
		return atxHeading{}
	}

	// Consume required whitespace before heading.
	i := h.level
	if i >= len(line) {
		h.content = span{start: i, end: i}
		return h
	}
	if !isSpaceTab(line[i]) {
		return atxHeading{}
	}
	i++

	// Advance past leading whitespace.
	for i < len(line) && isSpaceTab(line[i]) {
		i++
	}
	h.content.start = i

	// Find end of heading line. Skip past trailing spaces.
	h.content.end = len(line)
	hitHash := false
scanBack:
	for ; h.content.end > h.content.start; h.content.end-- {
		switch line[h.content.end-1] {
		case ' ', '\t':
			if isEndEscaped(line[:h.content.end-1]) {
				break scanBack
			}
		case '#':
			hitHash = true
			break scanBack
		default:
			break scanBack
		}
	}
	if !hitHash {
		return h
	}

	// We've encountered one hashmark '#'.
	// Consume all of them, unless they are preceded by a space or tab.
scanTrailingHashes:
	for i := h.content.end - 1; ; i-- {
		if i <= h.content.start {
			h.content.end = h.content.start
			break
		}
		switch line[i] {
		case '#':
			// Keep going.
		case ' ', '\t':
			h.content.end = i + 1
			break scanTrailingHashes
		default:
			return h
		}
	}
	// We've hit the end of hashmarks. Trim trailing whitespace.
	for ; h.content.end > h.content.start; h.content.end-- {
		if b := line[h.content.end-1]; !isSpaceTab(b) || isEndEscaped(line[:h.content.end-1]) {
			break
		}
	}
	return h
}

// parseSetextHeadingUnderline returns the line's heading level
// if it is a [setext heading underline],
// or zero otherwise.
// parseSetextHeadingUnderline assumes that the caller has stripped any leading indentation.
//
// [setext heading underline]: https://spec.commonmark.org/0.30/#setext-heading-underline
func parseSetextHeadingUnderline(line string) (level int) {
	if len(line) == 0 {
		return 0
	}
	switch line[0] {
	case '=':
		level = 1
	case '-':
		level = 2
	default:
		return 0
	}
	for i := 1; i < len(line); i++ {
		if line[i] != line[0] {
			if !isBlank(line[i:]) {
				return 0
			}
			return level
		}
	}
	return level
}

type codeFence struct {
	char byte // either '`' or '~'
	n    int
	rest string // text after the fence characters
}

// parseCodeFence attempts to parse a [code fence] at the beginning of the line.
// n is 0 if the line does not begin with a marker.
// parseCodeFence assumes that the caller has stripped any leading indentation.
//
// [code fence]: https://spec.commonmark.org/0.30/#code-fence
func parseCodeFence(line string) codeFence {
	const minConsecutive = 3
	if len(line) < minConsecutive || (line[0] != '`' && line[0] != '~') {
		return codeFence{}
	}
	f := codeFence{char: line[0], n: 1}
	for f.n < len(line) && line[f.n] == f.char {
		f.n++
	}
	if f.n < minConsecutive {
		return codeFence{}
	}
	f.rest = line[f.n:]
	// "If the info string comes after a backtick fence,
	// it may not contain any backtick characters."
	if f.char == '`' && strings.IndexByte(f.rest, '`') >= 0 {
		return codeFence{}
	}
	return f
}

type listMarker struct {
	delim  byte // one of '-', '+', '*', '.', or ')'
	n      int
	end    int // always delimiter position + 1
	digits string
}

// parseListMarker attempts to parse a [list marker] at the beginning of the line.
// The end is -1 if the line does not begin with a marker.
// parseListMarker assumes that the caller has stripped any leading indentation.
//
// [list marker]: https://spec.commonmark.org/0.30/#list-marker
func parseListMarker(line string) listMarker {
	if len(line) == 0 {
		return listMarker{end: -1}
	}
	var n int
	switch c := line[0]; {
	case c == '-' || c == '+' || c == '*':
		if !hasSpaceTabPrefixOrEOL(line[1:]) {
			return listMarker{end: -1}
		}
		return listMarker{delim: line[0], end: 1}
	case isASCIIDigit(c):
		// Ordered list. Continue.
		n = int(c - '0')
	default:
		return listMarker{end: -1}
	}
	const maxDigits = 9
	for i := 1; i < maxDigits+1 && i < len(line); i++ {
		switch c := line[i]; {
		case isASCIIDigit(c):
			// Continue.
			n *= 10
			n += int(c - '0')
		case c == '.' || c == ')':
			if !hasSpaceTabPrefixOrEOL(line[i+1:]) {
				return listMarker{end: -1}
			}
			return listMarker{delim: c, n: n, end: i + 1, digits: line[:i]}
		default:
			return listMarker{end: -1}
		}
	}
	return listMarker{end: -1}
}

func (m listMarker) isOrdered() bool {
	return m.delim == '.' || m.delim == ')'
}

func hasSpaceTabPrefixOrEOL(s string) bool {
	return len(s) == 0 || s[0] == ' ' || s[0] == '\t'
}

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

// blockKind identifies the kind of an entry on the block stack.
type blockKind uint8

const (
	documentBlock blockKind = iota
	blockQuoteBlock
	listBlock
	paragraphBlock
	indentedCodeBlock
	fencedCodeBlock
	htmlBlock
)

func (k blockKind) isContainer() bool {
	return k == blockQuoteBlock || k == listBlock
}

// stackEntry is one open block on the block stack.
// The stack is never empty; the document entry is always at position 0.
// At most one leaf entry is open at a time and it is always on top.
//
// open is a back-reference to the matching open token so the scanner
// can append leading-space provenance as additional lines extend the
// container.
type stackEntry struct {
	kind blockKind
	open Token

	// list state. indent is the column where item content begins,
	// counted from the line start after enclosing block quote prefixes.
	ordered    bool
	marker     byte
	indent     int
	blankCount int
	hasContent bool

	// fenced code state
	fenceChar   byte
	fenceCount  int
	fenceIndent int

	// html block state
	htmlMode int

	// paragraph accumulation
	para *paraBuilder

	// indented code blank lines awaiting a decision
	pendingBlanks []pendingBlank
	icodeLines    []codeLine
}

type pendingBlank struct {
	raw         string
	line        int
	col         int
	indexIndent int
}

// codeLine is one interior line of a code block.
type codeLine struct {
	ws          string
	text        string
	line        int
	startCol    int
	indexIndent int
	tabified    string
}

// paraBuilder accumulates the lines of an open paragraph until the
// block that owns it closes.
type paraBuilder struct {
	lines []paraLine
}

type paraLine struct {
	ws          string
	text        string
	line        int
	startCol    int
	indexIndent int
}

// tokenizeLine drives one line through the container scanner and the
// leaf recognizers.
func (p *parser) tokenizeLine(ln logicalLine) {
	c := newLineCursor(ln.text)
	base := 0
	allMatched := true
	failedIdx := len(p.stack)

containerLoop:
	for idx := 1; idx < len(p.stack); idx++ {
		e := p.stack[idx]
		switch e.kind {
		case blockQuoteBlock:
			prefix, ok := tryBlockQuotePrefix(c)
			if !ok {
				allMatched = false
				failedIdx = idx
				break containerLoop
			}
			bq := e.open.(*BlockQuoteOpen)
			bq.LeadingSpaces = append(bq.LeadingSpaces, prefix)
			base = c.col
		case listBlock:
			lo := e.open.(*ListOpen)
			switch {
			case c.restBlank():
				if !e.hasContent && e.blankCount > 0 {
					// An item can begin with at most one blank line.
					allMatched = false
					failedIdx = idx
					break containerLoop
				}
				lo.LeadingSpaces = append(lo.LeadingSpaces, "")
			case c.col+c.indent() >= base+e.indent:
				ws := c.consumeColumns(base + e.indent - c.col)
				lo.LeadingSpaces = append(lo.LeadingSpaces, ws)
				e.hasContent = true
			default:
				allMatched = false
				failedIdx = idx
				break containerLoop
			}
		default:
			// Leaf block: container matching is done.
			break containerLoop
		}
	}

	if !allMatched {
		if p.handleUnmatched(c, ln, base, failedIdx) {
			return
		}
	}

	if !c.restBlank() {
		for _, e := range p.stack {
			if e.kind == listBlock {
				e.blankCount = 0
			}
		}
	}

	base = p.openNewContainers(c, ln, base)
	p.leafLine(c, ln, base)
}

// handleUnmatched resolves a line that failed to satisfy the open
// container stack: lazy paragraph continuation, a sibling list item,
// or closing the unmatched blocks. It reports whether the line was
// fully consumed (lazy continuation).
func (p *parser) handleUnmatched(c *lineCursor, ln logicalLine, base int, failedIdx int) bool {
	// A list marker where the unmatched block is a list always starts a
	// sibling item (or a replacement list): the enclosing list, not the
	// open paragraph, is what the marker continues.
	siblingMarker := false
	if e := p.stack[failedIdx]; e.kind == listBlock && !c.restBlank() && c.indent() < codeBlockIndentLimit {
		rest := c.restAfterIndent()
		if m := parseListMarker(rest); m.end >= 0 && !isThematicBreakLine(rest) {
			siblingMarker = true
		}
	}

	if !siblingMarker && !c.restBlank() {
		// Lazy continuation: only a paragraph (or a definition attempt,
		// which is a paragraph until committed) can absorb the line, and
		// only if the line does not look like a block interrupter.
		top := p.stack[len(p.stack)-1]
		paraOpen := top.kind == paragraphBlock || p.lrd != nil
		if paraOpen && !isBlockInterrupter(c.restAfterIndent(), c.indent()) {
			for idx := failedIdx; idx < len(p.stack); idx++ {
				switch e := p.stack[idx]; e.kind {
				case blockQuoteBlock:
					bq := e.open.(*BlockQuoteOpen)
					bq.LeadingSpaces = append(bq.LeadingSpaces, "")
				case listBlock:
					lo := e.open.(*ListOpen)
					lo.LeadingSpaces = append(lo.LeadingSpaces, "")
				}
			}
			p.continueParagraphOrLRD(c, ln, base)
			return true
		}
	}

	// Keep the list on the stack when a sibling marker follows:
	// openNewContainers opens the new item (or replaces the list).
	keep := failedIdx
	if siblingMarker {
		keep = failedIdx + 1
	}
	p.closeTo(keep, true)
	return false
}

// continueParagraphOrLRD appends the remainder of the line to the open
// paragraph or to the definition attempt in progress.
func (p *parser) continueParagraphOrLRD(c *lineCursor, ln logicalLine, base int) {
	wsStart := c.col
	ws := c.consumeColumns(c.indent())
	if p.lrd != nil {
		p.lrdAppend(c, ln, ws, wsStart)
		return
	}
	textStart := c.col
	text := c.consumeRest()
	top := p.stack[len(p.stack)-1]
	top.para.lines = append(top.para.lines, paraLine{
		ws:          ws,
		text:        text,
		line:        ln.number,
		startCol:    textStart + 1,
		indexIndent: base,
	})
}

// tryBlockQuotePrefix matches a block quote marker: up to three spaces
// of indentation, '>', and optionally one following space or tab
// column. It returns the consumed source text.
func tryBlockQuotePrefix(c *lineCursor) (prefix string, ok bool) {
	ind := c.indent()
	if ind >= codeBlockIndentLimit {
		return "", false
	}
	rest := c.restAfterIndent()
	if len(rest) == 0 || rest[0] != '>' {
		return "", false
	}
	ws := c.consumeColumns(ind)
	marker := c.advance(1)
	var sp string
	if c.indent() > 0 {
		sp = c.consumeColumns(1)
	}
	return ws + marker + sp, true
}

// openNewContainers scans for new block quote and list item starts at
// the residual position, applying each recursively up to the
// configured depth bound. It returns the updated block-quote base
// column.
func (p *parser) openNewContainers(c *lineCursor, ln logicalLine, base int) int {
	if top := p.stack[len(p.stack)-1]; top.kind == fencedCodeBlock || top.kind == htmlBlock {
		// Fenced code and HTML blocks absorb lines whole.
		return base
	}
	if p.lrd != nil {
		// While a definition attempt is open, new containers would end
		// the attempt; let the leaf phase settle it first.
		return base
	}
	maxDepth := p.opts.maxContainerDepth()

	for {
		if p.containerDepth() >= maxDepth {
			return base
		}
		ind := c.indent()
		if ind >= codeBlockIndentLimit {
			return base
		}
		rest := c.restAfterIndent()
		if len(rest) == 0 {
			return base
		}

		if rest[0] == '>' {
			startCol := c.col
			prefix, _ := tryBlockQuotePrefix(c)
			p.closeLeaf(true)
			bq := &BlockQuoteOpen{
				position:      makePosition(ln.number, startCol+1, base),
				LeadingSpaces: []string{prefix},
			}
			p.emit(bq)
			p.stack = append(p.stack, &stackEntry{kind: blockQuoteBlock, open: bq})
			base = c.col
			continue
		}

		if isThematicBreakLine(rest) {
			// Thematic breaks take precedence over list markers.
			return base
		}
		m := parseListMarker(rest)
		if m.end < 0 {
			return base
		}
		if top := p.stack[len(p.stack)-1]; top.kind == paragraphBlock {
			// Interrupting a paragraph: the ordered list must start at 1
			// and the first line must be non-empty.
			if m.isOrdered() && m.n != 1 {
				return base
			}
			if isBlank(rest[m.end:]) {
				return base
			}
		}
		if !p.openListItem(c, ln, base, m) {
			return base
		}
	}
}

func (p *parser) containerDepth() int {
	n := 0
	for _, e := range p.stack {
		if e.kind.isContainer() {
			n++
		}
	}
	return n
}

// openListItem opens a new list, a sibling item of an existing list,
// or a nested list, depending on the marker's column and character.
// It reports whether a container was opened or continued.
func (p *parser) openListItem(c *lineCursor, ln logicalLine, base int, m listMarker) bool {
	ind := c.indent()
	markerRelCol := c.col + ind - base

	// Close inner lists until the new marker fits.
	for {
		list := p.innermostList()
		if list == nil || markerRelCol >= list.indent {
			break
		}
		idx := p.indexOf(list)
		if sameListKind(list, m) {
			// Sibling item of this list.
			p.closeTo(idx+1, true)
			ws := c.consumeColumns(ind)
			markerText := c.advance(m.end)
			wsAfter, contentRel := p.consumeListPadding(c, markerRelCol, m)
			li := &ListItem{
				position:            makePosition(ln.number, base+markerRelCol+1, base),
				IndentLevel:         contentRel,
				ExtractedWhitespace: ws,
				ListStartContent:    markerText + wsAfter,
			}
			p.emit(li)
			list.indent = contentRel
			list.hasContent = !c.restBlank()
			list.blankCount = 0
			return true
		}
		// Different marker at a shallower column: the list closes.
		p.closeTo(idx, true)
	}

	// New list nested at (or past) the current content column.
	startCol := c.col + ind
	ws := c.consumeColumns(ind)
	c.advance(m.end)
	wsAfter, contentRel := p.consumeListPadding(c, markerRelCol, m)
	p.closeLeaf(true)
	lo := &ListOpen{
		position:       makePosition(ln.number, startCol+1, base),
		Ordered:        m.isOrdered(),
		Marker:         m.delim,
		StartDigits:    m.digits,
		StartIndex:     m.n,
		IndentLevel:    contentRel,
		WSBeforeMarker: ws,
		WSAfterMarker:  wsAfter,
	}
	p.emit(lo)
	p.stack = append(p.stack, &stackEntry{
		kind:       listBlock,
		open:       lo,
		ordered:    m.isOrdered(),
		marker:     m.delim,
		indent:     contentRel,
		hasContent: !c.restBlank(),
	})
	return true
}

// consumeListPadding consumes the whitespace between a list marker and
// its content and returns the consumed text along with the item's
// content column (relative to the enclosing block quote).
func (p *parser) consumeListPadding(c *lineCursor, markerRelCol int, m listMarker) (wsAfter string, contentRel int) {
	if c.restBlank() {
		// Nothing after the marker: content begins at a virtual single
		// space past the marker. Trailing whitespace stays on the line.
		return "", markerRelCol + m.end + 1
	}
	padding := c.indent()
	switch {
	case padding < 1:
		return "", markerRelCol + m.end + 1
	case padding > codeBlockIndentLimit:
		// The item starts with indented code; only one column of the
		// whitespace belongs to the marker.
		return c.consumeColumns(1), markerRelCol + m.end + 1
	default:
		return c.consumeColumns(padding), markerRelCol + m.end + padding
	}
}

func (p *parser) innermostList() *stackEntry {
	for i := len(p.stack) - 1; i > 0; i-- {
		switch p.stack[i].kind {
		case listBlock:
			return p.stack[i]
		case blockQuoteBlock:
			return nil
		}
	}
	return nil
}

func (p *parser) indexOf(e *stackEntry) int {
	for i, x := range p.stack {
		if x == e {
			return i
		}
	}
	return -1
}

func sameListKind(e *stackEntry, m listMarker) bool {
	if e.ordered != m.isOrdered() {
		return false
	}
	return e.marker == m.delim
}

// isBlockInterrupter reports whether a line (with indentation already
// measured) would interrupt a paragraph rather than lazily continue it.
func isBlockInterrupter(rest string, indent int) bool {
	if indent >= codeBlockIndentLimit {
		// Indented lines are paragraph continuation text.
		return false
	}
	if len(rest) == 0 {
		return false
	}
	if rest[0] == '>' {
		return true
	}
	if isThematicBreakLine(rest) {
		return true
	}
	if h := parseATXHeading(rest); h.level > 0 {
		return true
	}
	if f := parseCodeFence(rest); f.n > 0 {
		return true
	}
	if startHTMLBlockMode(rest, true) > 0 {
		return true
	}
	if m := parseListMarker(rest); m.end >= 0 {
		if m.isOrdered() && m.n != 1 {
			return false
		}
		return !isBlank(rest[m.end:])
	}
	return false
}

// closeTo closes every open block at stack index depth or deeper,
// innermost first.
func (p *parser) closeTo(depth int, forced bool) {
	for len(p.stack) > depth {
		p.closeTop(forced)
	}
}

// closeLeaf closes the open leaf block, if any.
func (p *parser) closeLeaf(forced bool) {
	if top := p.stack[len(p.stack)-1]; !top.kind.isContainer() && top.kind != documentBlock {
		p.closeTop(forced)
	}
}

// closeTop closes the top entry of the block stack, emitting its End
// token (and, for buffered leaves, their deferred content tokens).
func (p *parser) closeTop(forced bool) {
	p.finishLRD()
	top := p.stack[len(p.stack)-1]
	p.stack = p.stack[:len(p.stack)-1]
	switch top.kind {
	case paragraphBlock:
		p.emitParagraph(top)
	case indentedCodeBlock:
		p.emitCodeInterior(top)
		p.emit(&End{position: top.open.(*IndentedCodeBlockOpen).position, Open: top.open, WasForced: true})
		for _, b := range top.pendingBlanks {
			p.emit(&BlankLine{
				position:            makePosition(b.line, b.col, b.indexIndent),
				ExtractedWhitespace: b.raw,
			})
		}
	case fencedCodeBlock:
		p.emitCodeInterior(top)
		p.emit(&End{position: top.open.(*FencedCodeBlockOpen).position, Open: top.open, WasForced: forced})
	case htmlBlock:
		p.emitCodeInterior(top)
		p.emit(&End{position: top.open.(*HTMLBlockOpen).position, Open: top.open, WasForced: forced})
	case blockQuoteBlock:
		p.emit(&End{position: top.open.(*BlockQuoteOpen).position, Open: top.open, WasForced: true})
	case listBlock:
		lo := top.open.(*ListOpen)
		lo.Loose = p.listIsLoose(lo)
		p.emit(&End{position: lo.position, Open: top.open, WasForced: true})
	}
}

// listIsLoose reports whether any blank line separates block elements
// within the list's extent of the emitted stream.
func (p *parser) listIsLoose(open *ListOpen) bool {
	start := -1
	for i, tok := range p.tokens {
		if tok == Token(open) {
			start = i
			break
		}
	}
	if start < 0 {
		return false
	}
	blank := false
	for _, tok := range p.tokens[start+1:] {
		switch tok.(type) {
		case *BlankLine:
			blank = true
		case *End:
		default:
			if blank {
				return true
			}
		}
	}
	return false
}

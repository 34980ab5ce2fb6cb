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

// lrdScanner buffers the lines of a link-reference-definition attempt.
// No definition token is emitted until the attempt fully succeeds;
// on failure the buffered lines are fed back through the leaf
// recognizers as ordinary paragraph content.
type lrdScanner struct {
	lines []lrdLine
}

// lrdLine is one buffered residual line of a definition attempt,
// with enough position information to replay it.
type lrdLine struct {
	text     string
	startCol int // 0-based effective column where the residual begins
	base     int
	line     int
}

func (s *lrdScanner) joined() string {
	texts := make([]string, len(s.lines))
	for i, ll := range s.lines {
		texts[i] = ll.text
	}
	return strings.Join(texts, "\n")
}

// lrdStart begins a definition attempt with the current residual line.
func (p *parser) lrdStart(c *lineCursor, ln logicalLine, base int) {
	startCol := c.col
	text := c.consumeRest()
	p.lrd = &lrdScanner{lines: []lrdLine{{
		text:     text,
		startCol: startCol,
		base:     base,
		line:     ln.number,
	}}}
	p.lrdCheck()
}

// lrdContinue feeds the residual line into the open definition attempt.
// It reports whether the line was consumed; a false return means the
// attempt has been settled and the caller should re-dispatch the line.
func (p *parser) lrdContinue(c *lineCursor, ln logicalLine, base int) bool {
	if c.restBlank() {
		if len(p.stack) == 1 {
			// Document level: the blank goes back on the line source so
			// it is re-read after any requeued definition leftovers.
			p.requeue([]logicalLine{ln})
			p.finishLRD()
			return true
		}
		p.finishLRD()
		return false
	}
	startCol := c.col
	text := c.consumeRest()
	p.lrd.lines = append(p.lrd.lines, lrdLine{
		text:     text,
		startCol: startCol,
		base:     base,
		line:     ln.number,
	})
	p.lrdCheck()
	return true
}

// lrdAppend is the lazy-continuation entry point: the line failed the
// container stack but may still extend the attempt.
func (p *parser) lrdAppend(c *lineCursor, ln logicalLine, ws string, wsStart int) {
	text := c.consumeRest()
	p.lrd.lines = append(p.lrd.lines, lrdLine{
		text:     ws + text,
		startCol: wsStart,
		base:     0,
		line:     ln.number,
	})
	p.lrdCheck()
}

// lrdCheck settles the attempt early once it can no longer succeed.
func (p *parser) lrdCheck() {
	if p.lrd == nil {
		return
	}
	if _, _, pending := scanLRDRun(p.lrd.joined(), false); !pending {
		p.finishLRD()
	}
}

// finishLRD ends the definition attempt in progress, if any:
// complete definitions are committed as tokens and any remaining
// buffered lines are replayed through the container and leaf passes
// with definition detection suppressed.
func (p *parser) finishLRD() {
	if p.lrd == nil {
		return
	}
	s := p.lrd
	p.lrd = nil

	joined := s.joined()
	defs, consumed, _ := scanLRDRun(joined, true)
	if consumed > len(s.lines) {
		consumed = len(s.lines)
	}
	for _, d := range defs {
		first := strings.Count(joined[:d.startOffset], "\n")
		last := strings.Count(joined[:d.endOffset], "\n")
		ll := s.lines[first]
		tok := &LinkReferenceDefinition{
			position:           makePosition(ll.line, ll.startCol+1, ll.base),
			Label:              d.label,
			NormalizedLabel:    normalizeLabel(d.label),
			Destination:        d.dest,
			RawDestination:     d.rawDest,
			Title:              d.title,
			RawTitle:           d.rawTitle,
			TitlePresent:       d.titlePresent,
			WhitespaceSegments: d.wsSegments,
		}
		for k := first; k <= last && k < len(s.lines); k++ {
			tok.rawLines = append(tok.rawLines, s.lines[k].text)
		}
		p.emit(tok)
	}

	// The lines the committed definitions did not cover must be
	// reparsed as ordinary content. At document level they are requeued
	// on the line source; inside containers (whose prefixes have
	// already been consumed and recorded) the residuals are replayed
	// through the container and leaf passes directly.
	if len(p.stack) == 1 {
		requeued := make([]logicalLine, 0, len(s.lines)-consumed)
		for _, ll := range s.lines[consumed:] {
			requeued = append(requeued, logicalLine{text: ll.text, number: ll.line, noLRD: true})
		}
		p.requeue(requeued)
		return
	}
	for _, ll := range s.lines[consumed:] {
		c := &lineCursor{text: ll.text, col: ll.startCol}
		lnn := logicalLine{number: ll.line, noLRD: true}
		b := p.openNewContainers(c, lnn, ll.base)
		p.leafLine(c, lnn, b)
	}
}

// lrdParse is one successfully scanned definition.
type lrdParse struct {
	label        string
	rawDest      string
	dest         string
	rawTitle     string
	title        string
	titlePresent bool
	wsSegments   []string
	startOffset  int
	endOffset    int // exclusive, always at a line boundary
}

// scanLRDRun scans s (newline-joined residual lines) for a run of link
// reference definitions starting at offset 0.
//
// consumed is the number of whole lines covered by committed
// definitions. pending reports that more input could extend the run;
// when final is true, a definition waiting only on an optional title
// is committed instead of held open.
func scanLRDRun(s string, final bool) (defs []lrdParse, consumed int, pending bool) {
	j := 0
	commit := func(d lrdParse) {
		defs = append(defs, d)
		consumed = strings.Count(s[:d.endOffset], "\n") + 1
	}
	for {
		startDef := j
		for j < len(s) && (s[j] == ' ' || s[j] == '\t') {
			j++
		}
		if j-startDef >= codeBlockIndentLimit {
			return defs, consumed, false
		}
		if j >= len(s) {
			return defs, consumed, false
		}
		if s[j] != '[' {
			return defs, consumed, false
		}
		wsLead := s[startDef:j]

		label, j2, st := scanLinkLabel(s, j)
		if st == scanNeedMore {
			return defs, consumed, true
		}
		if st == scanFail {
			return defs, consumed, false
		}
		j = j2
		if j >= len(s) {
			return defs, consumed, true
		}
		if s[j] != ':' {
			return defs, consumed, false
		}
		j++

		// Whitespace with up to one line ending before the destination.
		wsPreDest, j3, ok := skipLRDSpace(s, j, 1)
		if !ok {
			return defs, consumed, false
		}
		j = j3
		if j >= len(s) {
			return defs, consumed, true
		}

		rawDest, j4, st := scanLinkDestination(s, j)
		if st == scanNeedMore {
			return defs, consumed, true
		}
		if st == scanFail || rawDest == "" {
			return defs, consumed, false
		}
		j = j4

		d := lrdParse{
			label:       label,
			rawDest:     rawDest,
			dest:        cleanLinkDestination(rawDest),
			wsSegments:  []string{wsLead, wsPreDest},
			startOffset: startDef,
		}

		// The rest of the line after the destination must be blank, or a
		// title followed by a blank rest of line.
		destEOL, sameLineWS := lineEndAfter(s, j)
		if destEOL < 0 {
			// Non-blank text follows on the same line: it must be a
			// title, separated from the destination by whitespace.
			wsBeforeTitle := sameLineWS
			k := j + len(sameLineWS)
			if len(sameLineWS) == 0 {
				return defs, consumed, false
			}
			if k >= len(s) {
				return defs, consumed, true
			}
			rawTitle, k2, st := scanLinkTitle(s, k)
			if st == scanNeedMore {
				return defs, consumed, true
			}
			if st == scanFail {
				return defs, consumed, false
			}
			titleEOL, _ := lineEndAfter(s, k2)
			if titleEOL < 0 {
				// Junk after the title: the whole definition fails.
				return defs, consumed, false
			}
			d.rawTitle = rawTitle
			d.title = cleanLinkTitle(rawTitle)
			d.titlePresent = true
			d.wsSegments = append(d.wsSegments, wsBeforeTitle)
			d.endOffset = titleEOL
			commit(d)
			j = min(titleEOL+1, len(s))
			continue
		}

		// Destination cleanly ends its line. A title may follow on the
		// next line; if it does not pan out, the definition stands alone.
		d.endOffset = destEOL
		if destEOL >= len(s) {
			if !final {
				return defs, consumed, true
			}
			commit(d)
			return defs, consumed, false
		}
		k := destEOL + 1
		wsTitle := k
		for k < len(s) && (s[k] == ' ' || s[k] == '\t') {
			k++
		}
		if k < len(s) && (s[k] == '"' || s[k] == '\'' || s[k] == '(') {
			rawTitle, k2, st := scanLinkTitle(s, k)
			if st == scanNeedMore {
				if !final {
					return defs, consumed, true
				}
				// Unclosed title at end of input: keep the bare definition.
				commit(d)
				return defs, consumed, false
			}
			if st == scanOK {
				if titleEOL, _ := lineEndAfter(s, k2); titleEOL >= 0 {
					d.rawTitle = rawTitle
					d.title = cleanLinkTitle(rawTitle)
					d.titlePresent = true
					d.wsSegments = append(d.wsSegments, s[wsTitle:k])
					d.endOffset = titleEOL
					commit(d)
					j = min(titleEOL+1, len(s))
					continue
				}
			}
		}
		// No title: commit the bare definition and try for another run
		// at the start of the next line.
		commit(d)
		j = destEOL + 1
	}
}

// lineEndAfter skips spaces and tabs from i and reports the offset of
// the line ending (or end of string) if only whitespace remains on the
// line. It returns -1 and the skipped whitespace otherwise.
func lineEndAfter(s string, i int) (end int, ws string) {
	j := i
	for j < len(s) && (s[j] == ' ' || s[j] == '\t') {
		j++
	}
	if j >= len(s) {
		return j, s[i:j]
	}
	if s[j] == '\n' {
		return j, s[i:j]
	}
	return -1, s[i:j]
}

// skipLRDSpace skips spaces, tabs, and up to maxNewlines line endings.
// It fails if more line endings occur.
func skipLRDSpace(s string, i int, maxNewlines int) (ws string, end int, ok bool) {
	j := i
	newlines := 0
	for j < len(s) {
		switch s[j] {
		case ' ', '\t':
			j++
		case '\n':
			newlines++
			if newlines > maxNewlines {
				return "", 0, false
			}
			j++
		default:
			return s[i:j], j, true
		}
	}
	return s[i:j], j, true
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

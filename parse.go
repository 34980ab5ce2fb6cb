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

// Package mdtoken tokenizes GitHub-Flavored-Markdown documents into an
// ordered token stream that preserves enough source provenance to
// reconstruct the original text byte-for-byte.
//
// The pipeline is the CommonMark recommended strategy: a container
// scanner matches and opens block quotes and lists at the start of
// each line, leaf recognizers consume the residual text, adjacent text
// runs are coalesced, and an inline pass resolves code spans, links,
// emphasis, autolinks, raw HTML, escapes, and character references
// over paragraph and heading payloads.
package mdtoken

import (
	"bytes"
	"strings"

	"zombiezen.com/go/mdtoken/internal/entity"
)

// tabStopSize is the multiple of columns that a [tab] advances to.
//
// [tab]: https://spec.commonmark.org/0.30/#tabs
const tabStopSize = 4

// defaultMaxContainerDepth bounds how deeply block quotes and lists
// may nest. The bound is a guardrail, not a CommonMark rule.
const defaultMaxContainerDepth = 10

// Options configures [Parse]. The zero value is ready to use.
type Options struct {
	// MaxContainerDepth bounds how many block quotes and lists may be
	// open at once; a line opens no new container once the bound is
	// reached. Zero means the default of 10.
	MaxContainerDepth int
	// Extensions are consulted before the built-in recognizers,
	// in registration order. The first extension to apply wins.
	Extensions []Extension
}

func (opts *Options) maxContainerDepth() int {
	if opts == nil || opts.MaxContainerDepth <= 0 {
		return defaultMaxContainerDepth
	}
	return opts.MaxContainerDepth
}

func (opts *Options) extensions() []Extension {
	if opts == nil {
		return nil
	}
	return opts.Extensions
}

// A Document is the result of tokenizing one source text.
type Document struct {
	// Tokens is the full token stream in reading order.
	Tokens []Token
	// Refs maps normalized link labels to their definitions.
	Refs ReferenceMap

	lines []sourceLine
}

// sourceLine is one logical line of the input.
// eol is the original line terminator ("\n", "\r\n", "\r", or "" on a
// final unterminated line); the terminator is not part of text.
type sourceLine struct {
	text string
	eol  string
}

// Parse tokenizes source.
// The only error condition is a failure to initialize the character
// entity table; malformed Markdown does not exist.
func Parse(source []byte, opts *Options) (*Document, error) {
	if err := entity.Load(); err != nil {
		return nil, err
	}
	if bytes.IndexByte(source, 0) >= 0 {
		// Contains one or more NUL bytes.
		// Replace with Unicode replacement character.
		source = bytes.ReplaceAll(source, []byte{0}, []byte("�"))
	}
	doc := &Document{lines: splitLines(source)}
	p := &parser{
		opts:  opts,
		doc:   doc,
		stack: []*stackEntry{{kind: documentBlock}},
		refs:  make(ReferenceMap),
	}
	p.run()
	tokens := coalesceText(p.tokens)
	p.refs.Extract(tokens)
	tokens = processInlines(tokens, p.refs, opts.extensions())
	for _, ext := range opts.extensions() {
		if out, err := ext.OnFinalize(tokens); err == nil && out != nil {
			tokens = out
		}
	}
	doc.Tokens = tokens
	doc.Refs = p.refs
	return doc, nil
}

// splitLines splits source on "\n", "\r\n", and "\r",
// remembering each line's original terminator.
func splitLines(source []byte) []sourceLine {
	var lines []sourceLine
	start := 0
	for i := 0; i < len(source); {
		switch source[i] {
		case '\n':
			lines = append(lines, sourceLine{text: string(source[start:i]), eol: "\n"})
			i++
			start = i
		case '\r':
			eol := "\r"
			if i+1 < len(source) && source[i+1] == '\n' {
				eol = "\r\n"
			}
			lines = append(lines, sourceLine{text: string(source[start:i]), eol: eol})
			i += len(eol)
			start = i
		default:
			i++
		}
	}
	if start < len(source) {
		lines = append(lines, sourceLine{text: string(source[start:]), eol: ""})
	}
	return lines
}

// logicalLine is a line as seen by the tokenizer passes.
type logicalLine struct {
	text   string
	number int
	// noLRD suppresses link-reference-definition detection;
	// it is set on lines requeued after a failed definition attempt.
	noLRD bool
}

type parser struct {
	opts *Options
	doc  *Document

	// requeued lines are re-read before any further input is consumed.
	requeued []logicalLine
	cursor   int

	tokens []Token
	stack  []*stackEntry
	refs   ReferenceMap

	lrd *lrdScanner
}

// nextLine returns the next logical line to process.
func (p *parser) nextLine() (logicalLine, bool) {
	if len(p.requeued) > 0 {
		ln := p.requeued[0]
		p.requeued = p.requeued[1:]
		return ln, true
	}
	if p.cursor >= len(p.doc.lines) {
		return logicalLine{}, false
	}
	ln := logicalLine{text: p.doc.lines[p.cursor].text, number: p.cursor + 1}
	p.cursor++
	return ln, true
}

// requeue pushes lines back onto the line source.
// They are re-read, in order, before any further input.
func (p *parser) requeue(lines []logicalLine) {
	p.requeued = append(append([]logicalLine(nil), lines...), p.requeued...)
}

func (p *parser) run() {
	for {
		ln, ok := p.nextLine()
		if !ok {
			// Settling a definition attempt can requeue lines.
			p.finishLRD()
			if len(p.requeued) > 0 {
				continue
			}
			break
		}
		p.tokenizeLine(ln)
	}
	p.closeTo(1, true)
}

func (p *parser) emit(tokens ...Token) {
	p.tokens = append(p.tokens, tokens...)
}

// lineCursor is a tab-aware cursor on one logical line.
// Columns are 0-based effective columns: a space advances one column
// and a tab advances to the next multiple of tabStopSize.
type lineCursor struct {
	text string
	i    int // byte position
	col  int // effective column of position i (plus consumed tab columns)

	// tabRemaining is the number of columns left in a partially
	// consumed tab at text[i]. The tab's byte belongs to whichever
	// consumer took its first column.
	tabRemaining int
	tabTaken     bool
}

func newLineCursor(text string) *lineCursor {
	return &lineCursor{text: text}
}

// rest returns the unconsumed bytes of the line.
// A partially consumed tab's byte is excluded.
func (c *lineCursor) rest() string {
	if c.tabRemaining > 0 && c.tabTaken {
		return c.text[c.i+1:]
	}
	return c.text[c.i:]
}

// restAfterIndent returns the unconsumed bytes with any leading
// whitespace removed.
func (c *lineCursor) restAfterIndent() string {
	return strings.TrimLeft(c.rest(), " \t")
}

func (c *lineCursor) restBlank() bool {
	return isBlank(c.rest())
}

// indent returns the number of columns of whitespace after the cursor.
func (c *lineCursor) indent() int {
	n := c.tabRemaining
	i := c.i
	if c.tabRemaining > 0 {
		i++
	}
	col := c.col + n
	for i < len(c.text) {
		switch c.text[i] {
		case ' ':
			n++
			col++
		case '\t':
			w := tabStopSize - col%tabStopSize
			n += w
			col += w
		default:
			return n
		}
		i++
	}
	return n
}

// consumeColumns consumes n columns of whitespace and returns the
// source bytes consumed. When the consumption ends inside a tab, the
// tab's byte is included here and the leftover columns remain
// available (with no bytes) to later consumers.
func (c *lineCursor) consumeColumns(n int) string {
	sb := new(strings.Builder)
	for n > 0 {
		if c.tabRemaining > 0 {
			if !c.tabTaken {
				sb.WriteByte('\t')
				c.tabTaken = true
			}
			if n >= c.tabRemaining {
				n -= c.tabRemaining
				c.col += c.tabRemaining
				c.tabRemaining = 0
				c.tabTaken = false
				c.i++
				continue
			}
			c.col += n
			c.tabRemaining -= n
			return sb.String()
		}
		if c.i >= len(c.text) {
			break
		}
		switch c.text[c.i] {
		case ' ':
			sb.WriteByte(' ')
			c.col++
			c.i++
			n--
		case '\t':
			c.tabRemaining = tabStopSize - c.col%tabStopSize
			c.tabTaken = false
		default:
			return sb.String()
		}
	}
	return sb.String()
}

// advance consumes n bytes of text and returns them.
// It must not be called while inside a partially consumed tab.
func (c *lineCursor) advance(n int) string {
	s := c.text[c.i : c.i+n]
	c.col += columnWidth(c.col, s)
	c.i += n
	return s
}

// consumeRest consumes and returns everything left on the line.
func (c *lineCursor) consumeRest() string {
	s := c.rest()
	c.col += columnWidth(c.col, s)
	if c.tabRemaining > 0 {
		c.col += c.tabRemaining
		c.tabRemaining = 0
		c.tabTaken = false
	}
	c.i = len(c.text)
	return s
}

// columnWidth returns the width of the given text in columns
// given the 0-based column starting position.
func columnWidth(start int, s string) int {
	end := start
	for i := 0; i < len(s); i++ {
		switch b := s[i]; {
		case b == '\t':
			// Assumes tabStopSize is a power-of-two.
			end = (end + tabStopSize) &^ (tabStopSize - 1)
		case b&0x80 == 0 || b&0xc0 == 0xc0:
			// ASCII character or start of a code point.
			end++
		}
	}
	return end - start
}

func isBlank(s string) bool {
	for i := 0; i < len(s); i++ {
		if b := s[i]; b != ' ' && b != '\t' {
			return false
		}
	}
	return true
}

func indentLength(s string) int {
	for i := 0; i < len(s); i++ {
		if b := s[i]; b != ' ' && b != '\t' {
			return i
		}
	}
	return len(s)
}

func isASCIIDigit(c byte) bool {
	return '0' <= c && c <= '9'
}

func isASCIILetter(c byte) bool {
	return 'A' <= c && c <= 'Z' || 'a' <= c && c <= 'z'
}

func isSpaceTab(c byte) bool {
	return c == ' ' || c == '\t'
}

// isEndEscaped reports whether s ends with an odd number of backslashes.
func isEndEscaped(s string) bool {
	n := 0
	for ; n < len(s); n++ {
		if s[len(s)-n-1] != '\\' {
			break
		}
	}
	return n%2 == 1
}

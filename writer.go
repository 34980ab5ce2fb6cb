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
	"strings"
)

// Write reconstructs the document's Markdown source from its token
// stream and writes it to w. The output is byte-for-byte identical to
// the input, except that NUL bytes, which [Parse] replaces with U+FFFD,
// are written as U+FFFD.
func Write(w io.Writer, doc *Document) error {
	out := doc.AppendMarkdown(nil)
	if _, err := w.Write(out); err != nil {
		return fmt.Errorf("write markdown: %w", err)
	}
	return nil
}

// WriteNormalized is like [Write] but replaces every original line
// terminator with the given ending ("\n" or "\r\n").
func WriteNormalized(w io.Writer, doc *Document, lineEnding string) error {
	mw := &markdownWriter{doc: doc, forceEOL: lineEnding}
	mw.run(doc.Tokens)
	if mw.curLine > 0 {
		mw.out = append(mw.out, mw.eol(mw.curLine)...)
	}
	if _, err := w.Write(mw.out); err != nil {
		return fmt.Errorf("write markdown: %w", err)
	}
	return nil
}

// AppendMarkdown appends the reconstructed Markdown source to dst and
// returns the resulting byte slice.
func (doc *Document) AppendMarkdown(dst []byte) []byte {
	mw := &markdownWriter{doc: doc, out: dst}
	mw.run(doc.Tokens)
	if mw.curLine > 0 {
		mw.out = append(mw.out, mw.eol(mw.curLine)...)
	}
	return mw.out
}

// activeContainer tracks one open container while writing, with a
// cursor into its leading-spaces buffer.
type activeContainer struct {
	open   Token
	cursor int
}

func (ac *activeContainer) leadingSpaces() []string {
	switch t := ac.open.(type) {
	case *BlockQuoteOpen:
		return t.LeadingSpaces
	case *ListOpen:
		return t.LeadingSpaces
	default:
		return nil
	}
}

func (ac *activeContainer) isList() bool {
	_, ok := ac.open.(*ListOpen)
	return ok
}

type markdownWriter struct {
	doc      *Document
	out      []byte
	curLine  int
	active   []*activeContainer
	forceEOL string
}

// eol returns the original line terminator of the given 1-based line,
// or the normalized terminator if one was requested.
func (w *markdownWriter) eol(line int) string {
	if line-1 < len(w.doc.lines) {
		if w.doc.lines[line-1].eol == "" {
			return ""
		}
		if w.forceEOL != "" {
			return w.forceEOL
		}
		return w.doc.lines[line-1].eol
	}
	return ""
}

// advance moves the writer to the given line, emitting the pending
// line terminator and the container prefixes recorded for the new
// line. When the new line starts a sibling list item, the innermost
// list's prefix comes from the item token instead.
func (w *markdownWriter) advance(line int, skipInnermostList bool) {
	if line <= w.curLine {
		return
	}
	for w.curLine < line {
		if w.curLine > 0 {
			w.out = append(w.out, w.eol(w.curLine)...)
		}
		w.curLine++
		for i, ac := range w.active {
			if skipInnermostList && i == len(w.active)-1 && ac.isList() {
				break
			}
			if ls := ac.leadingSpaces(); ac.cursor < len(ls) {
				w.out = append(w.out, ls[ac.cursor]...)
				ac.cursor++
			}
		}
	}
}

func (w *markdownWriter) run(tokens []Token) {
	for i := 0; i < len(tokens); i++ {
		switch tok := tokens[i].(type) {
		case *BlockQuoteOpen:
			w.advance(tok.line, false)
			if len(tok.LeadingSpaces) > 0 {
				w.out = append(w.out, tok.LeadingSpaces[0]...)
			}
			w.active = append(w.active, &activeContainer{open: tok, cursor: 1})
		case *ListOpen:
			w.advance(tok.line, false)
			w.out = append(w.out, tok.WSBeforeMarker...)
			if tok.Ordered {
				w.out = append(w.out, tok.StartDigits...)
			}
			w.out = append(w.out, tok.Marker)
			w.out = append(w.out, tok.WSAfterMarker...)
			w.active = append(w.active, &activeContainer{open: tok})
		case *ListItem:
			w.advance(tok.line, true)
			w.out = append(w.out, tok.ExtractedWhitespace...)
			w.out = append(w.out, tok.ListStartContent...)
		case *ParagraphOpen:
			end := MatchingEnd(tokens, i)
			w.writeInlineLines(tok.line, tok.ExtractedWhitespace, "", tokens[i+1:end])
			i = end
		case *ATXHeadingOpen:
			end := MatchingEnd(tokens, i)
			w.advance(tok.line, false)
			w.out = append(w.out, tok.ExtractedWhitespace...)
			w.out = append(w.out, strings.Repeat("#", tok.Level)...)
			w.out = append(w.out, tok.wsBeforeContent...)
			for _, in := range tokens[i+1 : end] {
				w.out = append(w.out, inlineSourceText(in)...)
			}
			w.out = append(w.out, tok.RemovedTrailing...)
			i = end
		case *SetextHeadingOpen:
			end := MatchingEnd(tokens, i)
			w.writeInlineLines(tok.TextPos.Line, tok.OriginalWhitespace, "", tokens[i+1:end])
			w.advance(tok.line, false)
			w.out = append(w.out, tok.UnderlineWhitespace...)
			w.out = append(w.out, strings.Repeat(string(tok.UnderlineChar), tok.UnderlineCount)...)
			if e, ok := tokens[end].(*End); ok {
				w.out = append(w.out, e.Extra...)
			}
			i = end
		case *ThematicBreak:
			w.advance(tok.line, false)
			w.out = append(w.out, tok.ExtractedWhitespace...)
			w.out = append(w.out, tok.Rest...)
		case *IndentedCodeBlockOpen:
			w.advance(tok.line, false)
			w.out = append(w.out, tok.ExtractedWhitespace...)
		case *FencedCodeBlockOpen:
			w.advance(tok.line, false)
			w.out = append(w.out, tok.ExtractedWhitespace...)
			w.out = append(w.out, strings.Repeat(string(tok.FenceChar), tok.FenceCount)...)
			w.out = append(w.out, tok.WhitespaceBeforeInfo...)
			w.out = append(w.out, tok.InfoString...)
		case *HTMLBlockOpen:
			// The block's lines are carried whole by its text token.
		case *LinkReferenceDefinition:
			for k, raw := range tok.rawLines {
				if k == 0 {
					w.advance(tok.line, false)
				} else {
					w.advance(w.curLine+1, false)
				}
				w.out = append(w.out, raw...)
			}
		case *BlankLine:
			w.advance(tok.line, false)
			w.out = append(w.out, tok.ExtractedWhitespace...)
		case *Text:
			// Interior of a code or HTML block: one payload line per
			// source line, each with its stripped indentation restored.
			texts := strings.Split(tok.Literal, "\n")
			ws := strings.Split(tok.ExtractedWhitespace, "\n")
			for k, line := range texts {
				if k == 0 {
					w.advance(tok.line, false)
				} else {
					w.advance(w.curLine+1, false)
				}
				if k < len(ws) {
					w.out = append(w.out, ws[k]...)
				}
				w.out = append(w.out, line...)
			}
		case *End:
			switch tok.ClosesKind() {
			case KindBlockQuoteOpen, KindListOpen:
				if len(w.active) > 0 {
					w.active = w.active[:len(w.active)-1]
				}
			case KindFencedCodeBlockOpen:
				if !tok.WasForced {
					w.advance(w.curLine+1, false)
					w.out = append(w.out, tok.ExtractedWhitespace...)
					w.out = append(w.out, tok.Extra...)
				}
			}
		default:
			// Inline tokens outside a paragraph or heading unit do not
			// occur in well-formed streams.
		}
	}
}

// writeInlineLines reassembles a paragraph or heading payload from its
// inline tokens and emits it line by line with the recorded per-line
// leading whitespace.
func (w *markdownWriter) writeInlineLines(startLine int, ws []string, firstPrefix string, inline []Token) {
	sb := new(strings.Builder)
	for _, tok := range inline {
		sb.WriteString(inlineSourceText(tok))
	}
	lines := strings.Split(sb.String(), "\n")
	for k, line := range lines {
		if k == 0 {
			w.advance(startLine, false)
			w.out = append(w.out, firstPrefix...)
		} else {
			w.advance(w.curLine+1, false)
		}
		if k < len(ws) {
			w.out = append(w.out, ws[k]...)
		}
		w.out = append(w.out, line...)
	}
}

// inlineSourceText returns the source spelling of one inline token.
func inlineSourceText(tok Token) string {
	switch t := tok.(type) {
	case *Text:
		return t.SourceText()
	case *CodeSpan:
		run := strings.Repeat("`", t.RunCount)
		return run + t.SourceInterior + run
	case *EmphasisOpen:
		return strings.Repeat(string(t.Delimiter), t.Count)
	case *LinkOpen:
		return "["
	case *Image:
		return t.RawText
	case *RawHTML:
		return t.Literal
	case *Autolink:
		return "<" + t.Literal + ">"
	case *HardBreak:
		return t.Marker + "\n"
	case *SoftBreak:
		return t.TrailingWhitespace + "\n"
	case *CharacterReference:
		return t.Raw
	case *BackslashEscape:
		return "\\" + string(t.Escaped)
	case *End:
		switch open := t.Open.(type) {
		case *EmphasisOpen:
			return strings.Repeat(string(open.Delimiter), open.Count)
		case *LinkOpen:
			return "]" + t.Extra
		}
	}
	return ""
}

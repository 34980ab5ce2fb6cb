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

//go:generate stringer -type=TokenKind -output=kind_string.go

package mdtoken

import (
	"strconv"
	"strings"
)

// Position is a 1-based line and column location in the source document.
// Columns count in expanded-tab columns (tab stops every 4).
type Position struct {
	Line int
	Col  int
}

// A Token is one element of the ordered stream produced by [Parse].
// Tokens carry enough of the original whitespace and marker text
// that [Write] can reconstruct the source byte-for-byte.
type Token interface {
	Kind() TokenKind
	// Pos returns the position of the token's first character.
	Pos() Position
	// IndexIndent returns the number of columns of container prefix
	// already consumed by enclosing blocks on the token's first line.
	IndexIndent() int
	// String returns the canonical text form
	// [<kind>(<line>,<col>):<payload>] used by the test suite.
	String() string
}

// TokenKind is an enumeration of values returned by [Token.Kind].
type TokenKind uint16

const (
	// KindBlockQuoteOpen is used for the start of a block quote.
	KindBlockQuoteOpen TokenKind = 1 + iota
	// KindListOpen is used for the start of an ordered or unordered list.
	KindListOpen
	// KindListItem is used for the second and subsequent items of a list.
	KindListItem
	// KindParagraphOpen is used for the start of a paragraph.
	KindParagraphOpen
	// KindATXHeadingOpen is used for headings that start with hash marks.
	KindATXHeadingOpen
	// KindSetextHeadingOpen is used for headings that end with an underline.
	KindSetextHeadingOpen
	// KindThematicBreak is used for thematic breaks. It has no close token.
	KindThematicBreak
	// KindIndentedCodeBlockOpen is used for code blocks started by indentation.
	KindIndentedCodeBlockOpen
	// KindFencedCodeBlockOpen is used for code blocks started by backticks or tildes.
	KindFencedCodeBlockOpen
	// KindHTMLBlockOpen is used for blocks of raw HTML.
	KindHTMLBlockOpen
	// KindLinkReferenceDefinition records a [link reference definition].
	// It contributes no rendered output but populates the [ReferenceMap].
	//
	// [link reference definition]: https://spec.commonmark.org/0.30/#link-reference-definition
	KindLinkReferenceDefinition
	// KindBlankLine is used for blank lines between blocks.
	KindBlankLine

	// KindText is used for literal text.
	KindText
	// KindCodeSpan is used for inline code spans.
	KindCodeSpan
	// KindEmphasisOpen is used for the start of emphasis or strong emphasis.
	KindEmphasisOpen
	// KindLinkOpen is used for the start of an inline, full, collapsed,
	// or shortcut link.
	KindLinkOpen
	// KindImage is used for images. Images carry their flattened alt text
	// and have no close token.
	KindImage
	// KindRawHTML is used for inline raw HTML tags.
	KindRawHTML
	// KindAutolink is used for URI and email autolinks.
	KindAutolink
	// KindHardBreak is used for hard line breaks.
	KindHardBreak
	// KindSoftBreak is used for soft line breaks.
	KindSoftBreak
	// KindCharacterReference is used for resolved HTML character references.
	KindCharacterReference
	// KindBackslashEscape is used for backslash-escaped punctuation.
	KindBackslashEscape

	// KindEnd closes the most recent unclosed open token of the
	// corresponding kind.
	KindEnd
)

// IsContainerOpen reports whether the kind opens a container block.
func (k TokenKind) IsContainerOpen() bool {
	return k == KindBlockQuoteOpen || k == KindListOpen
}

// IsLeafOpen reports whether the kind opens a leaf block that has a
// matching [KindEnd] token.
func (k TokenKind) IsLeafOpen() bool {
	switch k {
	case KindParagraphOpen, KindATXHeadingOpen, KindSetextHeadingOpen,
		KindIndentedCodeBlockOpen, KindFencedCodeBlockOpen, KindHTMLBlockOpen:
		return true
	default:
		return false
	}
}

// IsInlineOpen reports whether the kind opens an inline span that has a
// matching [KindEnd] token.
func (k TokenKind) IsInlineOpen() bool {
	return k == KindEmphasisOpen || k == KindLinkOpen
}

// position is the common provenance data embedded in every token.
type position struct {
	line        int
	col         int
	indexIndent int
}

func (p position) Pos() Position    { return Position{Line: p.line, Col: p.col} }
func (p position) IndexIndent() int { return p.indexIndent }

func makePosition(line, col, indexIndent int) position {
	return position{line: line, col: col, indexIndent: indexIndent}
}

// A Segment is one piece of a text payload.
// A replaced segment records both the source spelling and the value it
// resolved to, so the round-trip writer can emit the former and the
// HTML renderer the latter.
type Segment struct {
	Source   string
	Resolved string
	Replaced bool
}

// Literal returns a segment whose source and resolved forms are identical.
func Literal(s string) Segment {
	return Segment{Source: s, Resolved: s}
}

// Replacement returns a segment that reads as from in the source and
// resolves to the given value. It is the constructor behind every
// reversible substitution the tokenizer performs.
func Replacement(from, to string) Segment {
	return Segment{Source: from, Resolved: to, Replaced: true}
}

// BlockQuoteOpen opens a block quote.
// LeadingSpaces holds, per line of the quote's extent, the prefix text
// (indentation, the '>' marker, and the optional following space) that
// the container scanner consumed from that line.
type BlockQuoteOpen struct {
	position
	LeadingSpaces []string
}

func (t *BlockQuoteOpen) Kind() TokenKind { return KindBlockQuoteOpen }

func (t *BlockQuoteOpen) String() string {
	return "[block-quote(" + itoa(t.line) + "," + itoa(t.col) + ")::" + escapePayload(strings.Join(t.LeadingSpaces, "\n")) + "]"
}

// ListOpen opens an ordered or unordered list and its first item.
// IndentLevel is the column at which item content begins, counted from
// the line start after any enclosing block-quote prefixes: the marker's
// column plus the marker width plus the columns of WSAfterMarker.
// WSBeforeMarker holds only the whitespace left after enclosing list
// items took their indentation, so for a list nested in a list item
// IndentLevel is larger than len(WSBeforeMarker) + the marker width +
// len(WSAfterMarker).
type ListOpen struct {
	position
	Ordered bool
	// Marker is the bullet character for unordered lists
	// and the delimiter ('.' or ')') for ordered lists.
	Marker byte
	// StartDigits is the literal digit string of the first ordered item.
	StartDigits    string
	StartIndex     int
	IndentLevel    int
	WSBeforeMarker string
	WSAfterMarker  string
	// LeadingSpaces holds the consumed indentation of each continuation
	// line within the list's extent.
	LeadingSpaces []string
	// Loose is set when the list closes if any of its items are separated
	// by blank lines.
	Loose bool
}

func (t *ListOpen) Kind() TokenKind { return KindListOpen }

// MarkerWidth returns the width of the list marker in characters.
func (t *ListOpen) MarkerWidth() int {
	if t.Ordered {
		return len(t.StartDigits) + 1
	}
	return 1
}

func (t *ListOpen) String() string {
	name := "ulist"
	data := string(t.Marker)
	if t.Ordered {
		name = "olist"
		data = string(t.Marker) + ":" + t.StartDigits
	}
	return "[" + name + "(" + itoa(t.line) + "," + itoa(t.col) + "):" + data + ":" +
		itoa(t.IndentLevel) + ":" + escapePayload(t.WSBeforeMarker) + ":" + escapePayload(strings.Join(t.LeadingSpaces, "\n")) + "]"
}

// ListItem marks the start of the second and each subsequent item in a
// list. ListStartContent is the literal marker text (digits plus
// delimiter for ordered lists) together with the whitespace that
// follows it.
type ListItem struct {
	position
	IndentLevel         int
	ExtractedWhitespace string
	ListStartContent    string
}

func (t *ListItem) Kind() TokenKind { return KindListItem }

func (t *ListItem) String() string {
	return "[li(" + itoa(t.line) + "," + itoa(t.col) + "):" + itoa(t.IndentLevel) + ":" +
		escapePayload(t.ExtractedWhitespace) + ":" + escapePayload(t.ListStartContent) + "]"
}

// ParagraphOpen opens a paragraph.
// ExtractedWhitespace holds the leading whitespace of each of the
// paragraph's lines, in order.
type ParagraphOpen struct {
	position
	ExtractedWhitespace []string
}

func (t *ParagraphOpen) Kind() TokenKind { return KindParagraphOpen }

func (t *ParagraphOpen) String() string {
	return "[para(" + itoa(t.line) + "," + itoa(t.col) + "):" + escapePayload(strings.Join(t.ExtractedWhitespace, "\n")) + "]"
}

// ATXHeadingOpen opens a heading introduced by hash marks.
type ATXHeadingOpen struct {
	position
	Level               int
	ExtractedWhitespace string
	// RemovedTrailing is the closing hash run (with its surrounding
	// whitespace) stripped from the end of the heading line, if any.
	RemovedTrailing string

	// wsBeforeContent is the whitespace between the opening hashes and
	// the heading text.
	wsBeforeContent string
}

func (t *ATXHeadingOpen) Kind() TokenKind { return KindATXHeadingOpen }

func (t *ATXHeadingOpen) String() string {
	return "[atx(" + itoa(t.line) + "," + itoa(t.col) + "):" + itoa(t.Level) + ":" +
		escapePayload(t.RemovedTrailing) + ":" + escapePayload(t.ExtractedWhitespace) + "]"
}

// SetextHeadingOpen opens a heading formed by underlining a paragraph.
// The token's position is that of the underline;
// OriginalWhitespace preserves the converted paragraph's per-line
// leading whitespace so the writer can reconstruct the text lines.
type SetextHeadingOpen struct {
	position
	Level               int
	UnderlineChar       byte
	UnderlineCount      int
	UnderlineWhitespace string
	OriginalWhitespace  []string
	// TextPos is the position of the first character of the heading text.
	TextPos Position
}

func (t *SetextHeadingOpen) Kind() TokenKind { return KindSetextHeadingOpen }

func (t *SetextHeadingOpen) String() string {
	return "[setext(" + itoa(t.line) + "," + itoa(t.col) + "):" + string(t.UnderlineChar) + ":" +
		itoa(t.UnderlineCount) + ":" + escapePayload(t.UnderlineWhitespace) + ":(" +
		itoa(t.TextPos.Line) + "," + itoa(t.TextPos.Col) + ")]"
}

// ThematicBreak records a thematic break.
// Rest is the literal text of the break itself (markers and the
// whitespace between and after them), excluding the leading whitespace.
type ThematicBreak struct {
	position
	Marker              byte
	Rest                string
	ExtractedWhitespace string
}

func (t *ThematicBreak) Kind() TokenKind { return KindThematicBreak }

func (t *ThematicBreak) String() string {
	return "[tbreak(" + itoa(t.line) + "," + itoa(t.col) + "):" + string(t.Marker) + ":" +
		escapePayload(t.ExtractedWhitespace) + ":" + escapePayload(t.Rest) + "]"
}

// IndentedCodeBlockOpen opens an indented code block.
// ExtractedWhitespace is the four-column indent of the first line.
type IndentedCodeBlockOpen struct {
	position
	ExtractedWhitespace string
}

func (t *IndentedCodeBlockOpen) Kind() TokenKind { return KindIndentedCodeBlockOpen }

func (t *IndentedCodeBlockOpen) String() string {
	return "[icode-block(" + itoa(t.line) + "," + itoa(t.col) + "):" + escapePayload(t.ExtractedWhitespace) + ":]"
}

// FencedCodeBlockOpen opens a fenced code block.
type FencedCodeBlockOpen struct {
	position
	FenceChar            byte
	FenceCount           int
	InfoString           string
	ExtractedWhitespace  string
	WhitespaceBeforeInfo string
}

func (t *FencedCodeBlockOpen) Kind() TokenKind { return KindFencedCodeBlockOpen }

func (t *FencedCodeBlockOpen) String() string {
	return "[fcode-block(" + itoa(t.line) + "," + itoa(t.col) + "):" + string(t.FenceChar) + ":" +
		itoa(t.FenceCount) + ":" + escapePayload(t.InfoString) + ":" +
		escapePayload(t.WhitespaceBeforeInfo) + ":" + escapePayload(t.ExtractedWhitespace) + "]"
}

// HTMLBlockOpen opens an HTML block. Mode is the 1-based CommonMark
// HTML block condition that started the block.
type HTMLBlockOpen struct {
	position
	Mode int
}

func (t *HTMLBlockOpen) Kind() TokenKind { return KindHTMLBlockOpen }

func (t *HTMLBlockOpen) String() string {
	return "[html-block(" + itoa(t.line) + "," + itoa(t.col) + "):" + itoa(t.Mode) + "]"
}

// LinkReferenceDefinition records one link reference definition.
// WhitespaceSegments holds, in order, the whitespace runs between the
// definition's parts (before the label, between the colon and the
// destination, and, when a title is present, before the title).
// Whitespace after the title is not recorded; the writer reconstructs
// the definition from its raw source lines.
type LinkReferenceDefinition struct {
	position
	Label           string
	NormalizedLabel string
	Destination     string
	// RawDestination is the destination as spelled, including any
	// angle brackets and backslash escapes.
	RawDestination     string
	Title              string
	RawTitle           string
	TitlePresent       bool
	WhitespaceSegments []string

	// rawLines is the residual source text of each line of the
	// definition's extent, kept for the round-trip writer.
	rawLines []string
}

func (t *LinkReferenceDefinition) Kind() TokenKind { return KindLinkReferenceDefinition }

func (t *LinkReferenceDefinition) String() string {
	return "[link-ref-def(" + itoa(t.line) + "," + itoa(t.col) + "):" + escapePayload(t.NormalizedLabel) + ":" +
		escapePayload(t.Label) + ":" + escapePayload(t.RawDestination) + ":" + escapePayload(t.RawTitle) + "]"
}

// BlankLine records a blank line. ExtractedWhitespace is the line's
// literal whitespace content.
type BlankLine struct {
	position
	ExtractedWhitespace string
}

func (t *BlankLine) Kind() TokenKind { return KindBlankLine }

func (t *BlankLine) String() string {
	return "[BLANK(" + itoa(t.line) + "," + itoa(t.col) + "):" + escapePayload(t.ExtractedWhitespace) + "]"
}

// Text is a run of literal text.
// Inside code blocks, ExtractedWhitespace holds the per-line stripped
// indentation (joined by newlines, parallel to the payload lines) and
// TabifiedText the pre-expansion spelling of any line whose tabs were
// expanded.
type Text struct {
	position
	// Segments is the replacement rope of the payload.
	// A nil Segments means the payload is the single literal Literal.
	Segments            []Segment
	Literal             string
	ExtractedWhitespace string
	TabifiedText        string

	// lines carries per-line position data for multi-line payloads;
	// unparsed marks a payload awaiting the inline pass.
	lines    []textLine
	unparsed bool
}

// textLine is the per-line provenance of a coalesced payload.
type textLine struct {
	line        int
	startCol    int
	indexIndent int
}

func (t *Text) Kind() TokenKind { return KindText }

// SourceText returns the payload as spelled in the source.
func (t *Text) SourceText() string {
	if t.Segments == nil {
		return t.Literal
	}
	sb := new(strings.Builder)
	for _, seg := range t.Segments {
		sb.WriteString(seg.Source)
	}
	return sb.String()
}

// ResolvedText returns the payload with all replacements applied.
func (t *Text) ResolvedText() string {
	if t.Segments == nil {
		return t.Literal
	}
	sb := new(strings.Builder)
	for _, seg := range t.Segments {
		sb.WriteString(seg.Resolved)
	}
	return sb.String()
}

func (t *Text) String() string {
	return "[text(" + itoa(t.line) + "," + itoa(t.col) + "):" + escapePayload(t.SourceText()) + ":" + escapePayload(t.ExtractedWhitespace) + "]"
}

// CodeSpan is an inline code span.
// BeforeWS and AfterWS record the single space stripped from each end
// of the interior, when the stripping rule applied.
type CodeSpan struct {
	position
	RunCount int
	BeforeWS string
	AfterWS  string
	Literal  string
	// SourceInterior is the interior exactly as spelled, including the
	// stripped spaces and original newlines.
	SourceInterior string
}

func (t *CodeSpan) Kind() TokenKind { return KindCodeSpan }

func (t *CodeSpan) String() string {
	return "[icode-span(" + itoa(t.line) + "," + itoa(t.col) + "):" + escapePayload(t.Literal) + ":" +
		strings.Repeat("`", t.RunCount) + ":" + escapePayload(t.BeforeWS) + ":" + escapePayload(t.AfterWS) + "]"
}

// EmphasisOpen opens emphasis (Count == 1) or strong emphasis (Count == 2).
type EmphasisOpen struct {
	position
	Delimiter byte
	Count     int
}

func (t *EmphasisOpen) Kind() TokenKind { return KindEmphasisOpen }

func (t *EmphasisOpen) String() string {
	return "[emphasis(" + itoa(t.line) + "," + itoa(t.col) + "):" + itoa(t.Count) + ":" + string(t.Delimiter) + "]"
}

// LinkKind distinguishes the four link syntaxes.
type LinkKind uint8

const (
	InlineLink LinkKind = 1 + iota
	FullLink
	CollapsedLink
	ShortcutLink
)

func (k LinkKind) String() string {
	switch k {
	case InlineLink:
		return "inline"
	case FullLink:
		return "full"
	case CollapsedLink:
		return "collapsed"
	case ShortcutLink:
		return "shortcut"
	default:
		return "invalid"
	}
}

// LinkOpen opens a link. The tokens between it and its matching
// [KindEnd] token are the link text.
type LinkOpen struct {
	position
	LinkKind    LinkKind
	Label       string
	Destination string
	// RawDestination and RawTitle are the destination and title as
	// spelled in the source, including delimiters and escapes.
	RawDestination string
	Title          string
	RawTitle       string
	TitlePresent   bool

	// rawSuffix is the source text after the closing bracket of the
	// link text: "(dest "title")", "[label]", "[]", or empty.
	rawSuffix string
}

func (t *LinkOpen) Kind() TokenKind { return KindLinkOpen }

func (t *LinkOpen) String() string {
	return "[link(" + itoa(t.line) + "," + itoa(t.col) + "):" + t.LinkKind.String() + ":" +
		escapePayload(t.Destination) + ":" + escapePayload(t.Title) + ":" + escapePayload(t.Label) + "]"
}

// Image records an image. AltText is the flattened plain text of the
// image description.
type Image struct {
	position
	LinkKind       LinkKind
	Label          string
	Destination    string
	RawDestination string
	Title          string
	RawTitle       string
	TitlePresent   bool
	AltText        string
	// RawText is the image description exactly as spelled, for the writer.
	RawText string
}

func (t *Image) Kind() TokenKind { return KindImage }

func (t *Image) String() string {
	return "[image(" + itoa(t.line) + "," + itoa(t.col) + "):" + t.LinkKind.String() + ":" +
		escapePayload(t.Destination) + ":" + escapePayload(t.Title) + ":" + escapePayload(t.AltText) + "]"
}

// RawHTML is an inline raw HTML tag, comment, processing instruction,
// declaration, or CDATA section.
type RawHTML struct {
	position
	Literal string
}

func (t *RawHTML) Kind() TokenKind { return KindRawHTML }

func (t *RawHTML) String() string {
	return "[raw-html(" + itoa(t.line) + "," + itoa(t.col) + "):" + escapePayload(t.Literal) + "]"
}

// Autolink is a URI or email autolink.
// Literal is the interior of the angle brackets.
type Autolink struct {
	position
	Email   bool
	Literal string
}

func (t *Autolink) Kind() TokenKind { return KindAutolink }

func (t *Autolink) String() string {
	kind := "uri"
	if t.Email {
		kind = "email"
	}
	return "[" + kind + "-autolink(" + itoa(t.line) + "," + itoa(t.col) + "):" + escapePayload(t.Literal) + "]"
}

// HardBreak is a hard line break.
// Marker is the source spelling: a backslash, or the run of two or
// more trailing spaces.
type HardBreak struct {
	position
	Marker string
}

func (t *HardBreak) Kind() TokenKind { return KindHardBreak }

func (t *HardBreak) String() string {
	return "[hard-break(" + itoa(t.line) + "," + itoa(t.col) + "):" + escapePayload(t.Marker) + "]"
}

// SoftBreak is a soft line break.
// TrailingWhitespace is the run of trailing spaces and tabs before the
// newline when that run does not form a hard break.
type SoftBreak struct {
	position
	TrailingWhitespace string
}

func (t *SoftBreak) Kind() TokenKind { return KindSoftBreak }

func (t *SoftBreak) String() string {
	return "[soft-break(" + itoa(t.line) + "," + itoa(t.col) + "):" + escapePayload(t.TrailingWhitespace) + "]"
}

// CharacterReference is a named or numeric HTML character reference.
type CharacterReference struct {
	position
	Raw      string
	Resolved string
}

func (t *CharacterReference) Kind() TokenKind { return KindCharacterReference }

func (t *CharacterReference) String() string {
	return "[charref(" + itoa(t.line) + "," + itoa(t.col) + "):" + escapePayload(t.Raw) + ":" + escapePayload(t.Resolved) + "]"
}

// BackslashEscape is a backslash followed by ASCII punctuation.
type BackslashEscape struct {
	position
	Escaped byte
}

func (t *BackslashEscape) Kind() TokenKind { return KindBackslashEscape }

func (t *BackslashEscape) String() string {
	return "[backslash-escape(" + itoa(t.line) + "," + itoa(t.col) + "):" + string(t.Escaped) + "]"
}

// End closes the most recent unclosed open token.
// WasForced reports that the block was closed by surrounding structure
// (a blank line, an interrupter, a closing container, or end of input)
// rather than by its own closing syntax.
type End struct {
	position
	Open      Token
	WasForced bool
	// ExtractedWhitespace is closing-syntax whitespace, such as the
	// indentation of a closing code fence.
	ExtractedWhitespace string
	// Extra is kind-specific closing data, such as the closing fence text.
	Extra string
}

func (t *End) Kind() TokenKind { return KindEnd }

// ClosesKind returns the kind of the token this End closes.
func (t *End) ClosesKind() TokenKind { return t.Open.Kind() }

func (t *End) String() string {
	forced := "False"
	if t.WasForced {
		forced = "True"
	}
	return "[end-" + endName(t.Open.Kind()) + ":" + escapePayload(t.ExtractedWhitespace) + ":" + escapePayload(t.Extra) + ":" + forced + "]"
}

func endName(k TokenKind) string {
	switch k {
	case KindBlockQuoteOpen:
		return "block-quote"
	case KindListOpen:
		return "list"
	case KindParagraphOpen:
		return "para"
	case KindATXHeadingOpen:
		return "atx"
	case KindSetextHeadingOpen:
		return "setext"
	case KindIndentedCodeBlockOpen:
		return "icode-block"
	case KindFencedCodeBlockOpen:
		return "fcode-block"
	case KindHTMLBlockOpen:
		return "html-block"
	case KindEmphasisOpen:
		return "emphasis"
	case KindLinkOpen:
		return "link"
	default:
		return "unknown"
	}
}

func itoa(i int) string { return strconv.Itoa(i) }

// escapePayload makes token payloads single-line for the canonical form.
var payloadEscaper = strings.NewReplacer("\\", "\\\\", "\n", "\\n", "\t", "\\t", "\r", "\\r")

func escapePayload(s string) string {
	return payloadEscaper.Replace(s)
}

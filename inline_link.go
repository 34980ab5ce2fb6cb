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

// Scanner statuses shared by the inline link parser and the link
// reference definition scanner.
const (
	scanOK = iota
	// scanNeedMore means the construct ran off the end of the input but
	// could be completed by more; inline callers treat it as a failure,
	// the definition scanner buffers another line.
	scanNeedMore
	scanFail
)

// closeBracket resolves a ']' against the bracket node at index oi.
// On success the nodes after the bracket become the link text or image
// description and the bracket is replaced in place.
func (p *inlineParser) closeBracket(nodes *[]*inlineNode, oi, closeIdx int) (done bool, end int) {
	s := p.s
	open := (*nodes)[oi]
	if !open.active {
		return false, 0
	}

	var (
		kind         LinkKind
		label        string
		rawDest      string
		rawTitle     string
		titlePresent bool
	)
	end = -1

	if closeIdx+1 < len(s) && s[closeIdx+1] == '(' {
		if d, t, tp, e, ok := p.parseInlineLinkSuffix(closeIdx + 1); ok {
			kind = InlineLink
			rawDest, rawTitle, titlePresent = d, t, tp
			end = e
		}
	}
	if end < 0 && closeIdx+1 < len(s) && s[closeIdx+1] == '[' {
		if strings.HasPrefix(s[closeIdx+1:], "[]") {
			label = s[open.innerStart:closeIdx]
			if _, ok := p.refs[normalizeLabel(label)]; ok {
				kind = CollapsedLink
				end = closeIdx + 3
			}
		} else if inner, e, st := scanLinkLabel(s, closeIdx+1); st == scanOK {
			if _, ok := p.refs[normalizeLabel(inner)]; ok {
				kind = FullLink
				label = inner
				end = e
			} else {
				// An unknown full reference does not fall back to a
				// shortcut on the link text.
				return false, 0
			}
		}
	}
	if end < 0 {
		label = s[open.innerStart:closeIdx]
		if trimmed := strings.Trim(label, " \t\n"); trimmed != "" {
			if _, ok := p.refs[normalizeLabel(label)]; ok {
				kind = ShortcutLink
				end = closeIdx + 1
			}
		}
	}
	if end < 0 {
		return false, 0
	}

	var def LinkDefinition
	switch kind {
	case InlineLink:
		def = LinkDefinition{
			Destination:  cleanLinkDestination(rawDest),
			Title:        cleanLinkTitle(rawTitle),
			TitlePresent: titlePresent,
		}
	default:
		def = p.refs[normalizeLabel(label)]
	}

	children := resolveEmphasis(p, append([]*inlineNode(nil), (*nodes)[oi+1:]...))

	var repl *inlineNode
	if open.image {
		img := &Image{
			position:       p.posAt(open.start),
			LinkKind:       kind,
			Label:          label,
			Destination:    def.Destination,
			RawDestination: rawDest,
			Title:          def.Title,
			RawTitle:       rawTitle,
			TitlePresent:   def.TitlePresent,
			AltText:        p.altTextOf(children),
			RawText:        s[open.start:end],
		}
		repl = &inlineNode{kind: nodeToken, tok: img}
	} else {
		lnk := &LinkOpen{
			position:       p.posAt(open.start),
			LinkKind:       kind,
			Label:          label,
			Destination:    def.Destination,
			RawDestination: rawDest,
			Title:          def.Title,
			RawTitle:       rawTitle,
			TitlePresent:   def.TitlePresent,
			rawSuffix:      s[closeIdx+1 : end],
		}
		repl = &inlineNode{kind: nodeWrap, open: lnk, children: children}
		// Links do not nest: deactivate earlier link openers.
		for _, n := range (*nodes)[:oi] {
			if n.kind == nodeBracket && !n.image {
				n.active = false
			}
		}
	}
	*nodes = append((*nodes)[:oi], repl)
	return true, end
}

// parseInlineLinkSuffix parses "(destination "title")" starting at the
// opening parenthesis.
func (p *inlineParser) parseInlineLinkSuffix(i int) (rawDest, rawTitle string, titlePresent bool, end int, ok bool) {
	s := p.s
	j := skipHTMLSpace(s, i+1)
	if j < len(s) && s[j] != ')' {
		var st int
		rawDest, j, st = scanLinkDestination(s, j)
		if st != scanOK {
			return "", "", false, 0, false
		}
		beforeTitle := j
		j = skipHTMLSpace(s, j)
		if j < len(s) && (s[j] == '"' || s[j] == '\'' || s[j] == '(') {
			if j == beforeTitle {
				// The title must be separated from the destination.
				return "", "", false, 0, false
			}
			rawTitle, j, st = scanLinkTitle(s, j)
			if st != scanOK {
				return "", "", false, 0, false
			}
			titlePresent = true
			j = skipHTMLSpace(s, j)
		}
	}
	if j >= len(s) || s[j] != ')' {
		return "", "", false, 0, false
	}
	return rawDest, rawTitle, titlePresent, j + 1, true
}

// scanLinkLabel parses a [link label] at s[i:] (s[i] must be '[').
// The returned inner text excludes the brackets.
//
// [link label]: https://spec.commonmark.org/0.30/#link-label
func scanLinkLabel(s string, i int) (inner string, end int, st int) {
	const maxLabelLength = 999
	j := i + 1
	for j < len(s) {
		switch s[j] {
		case ']':
			if j-(i+1) > maxLabelLength {
				return "", 0, scanFail
			}
			inner = s[i+1 : j]
			if strings.Trim(inner, " \t\n") == "" {
				return "", 0, scanFail
			}
			return inner, j + 1, scanOK
		case '[':
			return "", 0, scanFail
		case '\\':
			j++
		}
		j++
	}
	return "", 0, scanNeedMore
}

// scanLinkDestination parses a [link destination] at s[i:]: either an
// angle-bracketed form or a bare form with balanced parentheses.
// The returned raw text includes any angle brackets.
//
// [link destination]: https://spec.commonmark.org/0.30/#link-destination
func scanLinkDestination(s string, i int) (raw string, end int, st int) {
	if i >= len(s) {
		return "", 0, scanNeedMore
	}
	if s[i] == '<' {
		for j := i + 1; j < len(s); j++ {
			switch s[j] {
			case '\n', '<':
				return "", 0, scanFail
			case '>':
				return s[i : j+1], j + 1, scanOK
			case '\\':
				j++
			}
		}
		return "", 0, scanNeedMore
	}

	depth := 0
	j := i
loop:
	for ; j < len(s); j++ {
		switch c := s[j]; {
		case c == '(':
			depth++
		case c == ')':
			if depth == 0 {
				break loop
			}
			depth--
		case c == '\\':
			if j+1 < len(s) {
				j++
			}
		case c == ' ' || c == '\t' || c == '\n' || c < 0x20:
			break loop
		}
	}
	if j == i {
		return "", 0, scanFail
	}
	if depth != 0 {
		return "", 0, scanFail
	}
	return s[i:j], j, scanOK
}

// scanLinkTitle parses a [link title] at s[i:]: a quoted or
// parenthesized string that may span lines. The returned raw text
// includes the delimiters.
//
// [link title]: https://spec.commonmark.org/0.30/#link-title
func scanLinkTitle(s string, i int) (raw string, end int, st int) {
	if i >= len(s) {
		return "", 0, scanNeedMore
	}
	open := s[i]
	var want byte
	switch open {
	case '"', '\'':
		want = open
	case '(':
		want = ')'
	default:
		return "", 0, scanFail
	}
	for j := i + 1; j < len(s); j++ {
		switch s[j] {
		case want:
			return s[i : j+1], j + 1, scanOK
		case '(':
			if want == ')' {
				return "", 0, scanFail
			}
		case '\\':
			j++
		}
	}
	return "", 0, scanNeedMore
}

// cleanLinkDestination strips angle brackets and resolves escapes and
// character references for rendering.
func cleanLinkDestination(raw string) string {
	if strings.HasPrefix(raw, "<") && strings.HasSuffix(raw, ">") {
		raw = raw[1 : len(raw)-1]
	}
	return unescapeString(raw)
}

// cleanLinkTitle strips the delimiters and resolves escapes and
// character references for rendering.
func cleanLinkTitle(raw string) string {
	if len(raw) >= 2 {
		raw = raw[1 : len(raw)-1]
	}
	return unescapeString(raw)
}

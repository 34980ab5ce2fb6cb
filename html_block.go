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
	"strings"

	"golang.org/x/net/html/atom"
)

// startHTMLBlockMode reports which of the seven [HTML block] start
// conditions the line satisfies, or 0 if none do.
// Mode 7 never interrupts a paragraph.
//
// [HTML block]: https://spec.commonmark.org/0.30/#html-blocks
func startHTMLBlockMode(line string, paragraphOpen bool) int {
	if len(line) == 0 || line[0] != '<' {
		return 0
	}
	for i, cond := range htmlBlockConditions {
		if !cond.start(line) {
			continue
		}
		if !cond.canInterruptParagraph && paragraphOpen {
			return 0
		}
		return i + 1
	}
	return 0
}

// htmlBlockEndCondition reports whether the line ends an HTML block of
// the given 1-based mode. Modes 6 and 7 end only on blank lines, which
// the caller detects itself.
func htmlBlockEndCondition(mode int, line string) bool {
	return htmlBlockConditions[mode-1].end(line)
}

// htmlBlockConditions is the set of HTML block start and end conditions,
// in mode order.
var htmlBlockConditions = []struct {
	start                 func(line string) bool
	end                   func(line string) bool
	canInterruptParagraph bool
}{
	{
		start: func(line string) bool {
			for _, starter := range htmlBlockStarters1 {
				if hasCaseInsensitivePrefix(line, starter) {
					rest := line[len(starter):]
					if len(rest) == 0 || isSpaceTab(rest[0]) || rest[0] == '>' {
						return true
					}
				}
			}
			return false
		},
		end: func(line string) bool {
			for _, ender := range htmlBlockEnders1 {
				if caseInsensitiveContains(line, ender) {
					return true
				}
			}
			return false
		},
		canInterruptParagraph: true,
	},
	{
		start: func(line string) bool {
			return strings.HasPrefix(line, "<!--")
		},
		end: func(line string) bool {
			return strings.Contains(line, "-->")
		},
		canInterruptParagraph: true,
	},
	{
		start: func(line string) bool {
			return strings.HasPrefix(line, "<?")
		},
		end: func(line string) bool {
			return strings.Contains(line, "?>")
		},
		canInterruptParagraph: true,
	},
	{
		start: func(line string) bool {
			return strings.HasPrefix(line, "<!") && len(line) >= 3 && isASCIILetter(line[2])
		},
		end: func(line string) bool {
			return strings.Contains(line, ">")
		},
		canInterruptParagraph: true,
	},
	{
		start: func(line string) bool {
			return strings.HasPrefix(line, "<![CDATA[")
		},
		end: func(line string) bool {
			return strings.Contains(line, "]]>")
		},
		canInterruptParagraph: true,
	},
	{
		start: func(line string) bool {
			switch {
			case strings.HasPrefix(line, "</"):
				line = line[2:]
			case strings.HasPrefix(line, "<"):
				line = line[1:]
			default:
				return false
			}
			for _, starter := range htmlBlockStarters6 {
				if hasCaseInsensitivePrefix(line, starter) {
					rest := line[len(starter):]
					if len(rest) == 0 || isSpaceTab(rest[0]) || rest[0] == '>' || strings.HasPrefix(rest, "/>") {
						return true
					}
				}
			}
			return false
		},
		end:                   isBlank,
		canInterruptParagraph: true,
	},
	{
		start: func(line string) bool {
			if !strings.HasPrefix(line, "<") {
				return false
			}
			var end int
			if strings.HasPrefix(line, "</") {
				_, end = scanHTMLClosingTag(line, 0)
			} else {
				_, end = scanHTMLOpenTag(line, 0)
			}
			if end < 0 {
				return false
			}
			return isBlank(line[end:])
		},
		end:                   isBlank,
		canInterruptParagraph: false,
	},
}

func hasCaseInsensitivePrefix(s, prefix string) bool {
	if len(s) < len(prefix) {
		return false
	}
	for i := 0; i < len(prefix); i++ {
		if toLowerASCII(prefix[i]) != toLowerASCII(s[i]) {
			return false
		}
	}
	return true
}

func caseInsensitiveContains(s, search string) bool {
	for i := 0; i+len(search) <= len(s); i++ {
		if hasCaseInsensitivePrefix(s[i:], search) {
			return true
		}
	}
	return false
}

func toLowerASCII(c byte) byte {
	if 'A' <= c && c <= 'Z' {
		return c - 'A' + 'a'
	}
	return c
}

var (
	htmlBlockStarters1 = []string{
		"<pre",
		"<script",
		"<style",
		"<textarea",
	}
	htmlBlockEnders1 = []string{
		"</pre>",
		"</script>",
		"</style>",
		"</textarea>",
	}

	htmlBlockStarters6 = []string{
		atom.Address.String(),
		atom.Article.String(),
		atom.Aside.String(),
		atom.Base.String(),
		atom.Basefont.String(),
		atom.Blockquote.String(),
		atom.Body.String(),
		atom.Caption.String(),
		atom.Center.String(),
		atom.Col.String(),
		atom.Colgroup.String(),
		atom.Dd.String(),
		atom.Details.String(),
		atom.Dialog.String(),
		atom.Dir.String(),
		atom.Div.String(),
		atom.Dl.String(),
		atom.Dt.String(),
		atom.Fieldset.String(),
		atom.Figcaption.String(),
		atom.Figure.String(),
		atom.Footer.String(),
		atom.Form.String(),
		atom.Frame.String(),
		atom.Frameset.String(),
		atom.H1.String(),
		atom.H2.String(),
		atom.H3.String(),
		atom.H4.String(),
		atom.H5.String(),
		atom.H6.String(),
		atom.Head.String(),
		atom.Header.String(),
		atom.Hr.String(),
		atom.Html.String(),
		atom.Iframe.String(),
		atom.Legend.String(),
		atom.Li.String(),
		atom.Link.String(),
		atom.Main.String(),
		atom.Menu.String(),
		atom.Menuitem.String(),
		atom.Nav.String(),
		atom.Noframes.String(),
		atom.Ol.String(),
		atom.Optgroup.String(),
		atom.Option.String(),
		atom.P.String(),
		atom.Param.String(),
		atom.Section.String(),
		atom.Source.String(),
		atom.Summary.String(),
		atom.Table.String(),
		atom.Tbody.String(),
		atom.Td.String(),
		atom.Tfoot.String(),
		atom.Th.String(),
		atom.Thead.String(),
		atom.Title.String(),
		atom.Tr.String(),
		atom.Track.String(),
		atom.Ul.String(),
	}
)

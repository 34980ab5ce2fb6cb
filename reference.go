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

	"golang.org/x/text/cases"
)

// LinkDefinition is the data of a [link reference definition].
//
// [link reference definition]: https://spec.commonmark.org/0.30/#link-reference-definition
type LinkDefinition struct {
	Destination  string
	Title        string
	TitlePresent bool
}

// ReferenceMap is a mapping of [normalized labels] to link definitions.
//
// [normalized labels]: https://spec.commonmark.org/0.30/#matches
type ReferenceMap map[string]LinkDefinition

// MatchReference reports whether the normalized label appears in the map.
func (m ReferenceMap) MatchReference(normalizedLabel string) bool {
	_, ok := m[normalizedLabel]
	return ok
}

// Extract adds any link reference definitions in the token stream to
// the map. In case of conflicts, Extract will not replace existing
// definitions and uses the first definition in source order.
func (m ReferenceMap) Extract(tokens []Token) {
	for _, tok := range tokens {
		def, ok := tok.(*LinkReferenceDefinition)
		if !ok {
			continue
		}
		label := def.NormalizedLabel
		if _, exists := m[label]; label == "" || exists {
			continue
		}
		m[label] = LinkDefinition{
			Destination:  def.Destination,
			Title:        def.Title,
			TitlePresent: def.TitlePresent,
		}
	}
}

// normalizeLabel case-folds a link label, trims it, and collapses
// internal whitespace to single spaces.
func normalizeLabel(s string) string {
	s = strings.Trim(s, " \t\n")
	b := new(strings.Builder)
	space := false
	hi := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case ' ', '\t', '\n':
			space = true
			continue
		default:
			if space {
				b.WriteByte(' ')
				space = false
			}
			if 'A' <= c && c <= 'Z' {
				c += 'a' - 'A'
			}
			if c >= 0x80 {
				hi = true
			}
			b.WriteByte(c)
		}
	}
	s = b.String()
	if hi {
		s = cases.Fold().String(s)
	}
	return s
}

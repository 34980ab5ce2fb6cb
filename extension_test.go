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
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// breakExtension recognizes lines of percent signs as thematic breaks.
type breakExtension struct {
	BaseExtension
}

func (breakExtension) TryBlockStart(line string, pos Position) ([]Token, int, error) {
	trimmed := strings.TrimRight(line, " \t")
	if len(trimmed) < 3 || strings.Trim(trimmed, "%") != "" {
		return nil, 0, nil
	}
	tok := &ThematicBreak{
		position: makePosition(pos.Line, pos.Col, 0),
		Marker:   '%',
		Rest:     line,
	}
	return []Token{tok}, len(line), nil
}

// shrugExtension replaces "\o/" with its spelled-out form.
type shrugExtension struct {
	BaseExtension
}

func (shrugExtension) TryInline(payload string, offset int, pos Position) ([]Token, int, error) {
	if !strings.HasPrefix(payload[offset:], `\o/`) {
		return nil, 0, nil
	}
	tok := &Text{
		position: makePosition(pos.Line, pos.Col, 0),
		Segments: []Segment{Replacement(`\o/`, "cheers")},
		Literal:  "cheers",
	}
	return []Token{tok}, 3, nil
}

// failingExtension always errors; the core must treat it as not applied.
type failingExtension struct {
	BaseExtension
}

func (failingExtension) TryBlockStart(line string, pos Position) ([]Token, int, error) {
	return nil, 0, errors.New("broken hook")
}

func (failingExtension) TryInline(payload string, offset int, pos Position) ([]Token, int, error) {
	return nil, 0, errors.New("broken hook")
}

func TestExtensionBlockStart(t *testing.T) {
	opts := &Options{Extensions: []Extension{failingExtension{}, breakExtension{}}}
	doc, err := Parse([]byte("%%%\n"), opts)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"KindThematicBreak(1,1)"}
	if diff := cmp.Diff(want, summarize(doc.Tokens)); diff != "" {
		t.Errorf("tokens (-want +got):\n%s", diff)
	}
}

func TestExtensionInline(t *testing.T) {
	opts := &Options{Extensions: []Extension{failingExtension{}, shrugExtension{}}}
	doc, err := Parse([]byte(`hey \o/ there`), opts)
	if err != nil {
		t.Fatal(err)
	}
	var resolved strings.Builder
	for _, tok := range doc.Tokens {
		if txt, ok := tok.(*Text); ok {
			resolved.WriteString(txt.ResolvedText())
		}
	}
	if got, want := resolved.String(), "hey cheers there"; got != want {
		t.Errorf("resolved text = %q; want %q", got, want)
	}
}

func TestExtensionErrorsAreNotApplied(t *testing.T) {
	opts := &Options{Extensions: []Extension{failingExtension{}}}
	doc, err := Parse([]byte("plain\n"), opts)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{
		"KindParagraphOpen(1,1)",
		"KindText(1,1)",
		"end-KindParagraphOpen",
	}
	if diff := cmp.Diff(want, summarize(doc.Tokens)); diff != "" {
		t.Errorf("tokens (-want +got):\n%s", diff)
	}
}

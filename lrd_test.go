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
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestScanLRDRun(t *testing.T) {
	type def struct {
		Label    string
		Dest     string
		Title    string
		HasTitle bool
	}
	tests := []struct {
		s        string
		final    bool
		want     []def
		consumed int
		pending  bool
	}{
		{
			s:        "[foo]: /url \"title\"",
			final:    true,
			want:     []def{{Label: "foo", Dest: "/url", Title: "title", HasTitle: true}},
			consumed: 1,
		},
		{
			s:       "[foo]: /url",
			final:   false,
			pending: true,
		},
		{
			s:        "[foo]: /url",
			final:    true,
			want:     []def{{Label: "foo", Dest: "/url"}},
			consumed: 1,
		},
		{
			s:        "[foo]: /url\n\"title\"",
			final:    true,
			want:     []def{{Label: "foo", Dest: "/url", Title: "title", HasTitle: true}},
			consumed: 2,
		},
		{
			s:        "[foo]: /url\n\"title\" junk",
			final:    true,
			want:     []def{{Label: "foo", Dest: "/url"}},
			consumed: 1,
		},
		{
			s:     "[foo] bar",
			final: true,
		},
		{
			s:     "[foo]: /url \"title\" junk",
			final: true,
		},
		{
			s:     "[foo]: /url1\n[bar]: /url2",
			final: true,
			want: []def{
				{Label: "foo", Dest: "/url1"},
				{Label: "bar", Dest: "/url2"},
			},
			consumed: 2,
		},
		{
			s:        "[multi\nline]: /dest\nrest",
			final:    true,
			want:     []def{{Label: "multi\nline", Dest: "/dest"}},
			consumed: 2,
		},
		{
			s:        "[foo]: <my url> 'the title'",
			final:    true,
			want:     []def{{Label: "foo", Dest: "my url", Title: "the title", HasTitle: true}},
			consumed: 1,
		},
		{
			s:       "[unclosed",
			final:   false,
			pending: true,
		},
	}
	for _, test := range tests {
		defs, consumed, pending := scanLRDRun(test.s, test.final)
		var got []def
		for _, d := range defs {
			got = append(got, def{Label: d.label, Dest: d.dest, Title: d.title, HasTitle: d.titlePresent})
		}
		if diff := cmp.Diff(test.want, got); diff != "" {
			t.Errorf("scanLRDRun(%q, %t) defs (-want +got):\n%s", test.s, test.final, diff)
		}
		if consumed != test.consumed {
			t.Errorf("scanLRDRun(%q, %t) consumed = %d; want %d", test.s, test.final, consumed, test.consumed)
		}
		if !test.final && pending != test.pending {
			t.Errorf("scanLRDRun(%q, %t) pending = %t; want %t", test.s, test.final, pending, test.pending)
		}
	}
}

func TestReferenceMapExtract(t *testing.T) {
	doc := mustParse(t, "[foo]: /url1\n[foo]: /url2\n[bar]: /b \"t\"\n")
	want := ReferenceMap{
		"foo": {Destination: "/url1"},
		"bar": {Destination: "/b", Title: "t", TitlePresent: true},
	}
	if diff := cmp.Diff(want, doc.Refs); diff != "" {
		t.Errorf("Refs (-want +got):\n%s", diff)
	}
}

func TestDefinitionCannotInterruptParagraph(t *testing.T) {
	doc := mustParse(t, "para text\n[foo]: /url\n")
	for _, tok := range doc.Tokens {
		if tok.Kind() == KindLinkReferenceDefinition {
			t.Fatal("definition token emitted for a paragraph continuation line")
		}
	}
	if doc.Refs.MatchReference("foo") {
		t.Error("paragraph continuation text registered a reference")
	}
}

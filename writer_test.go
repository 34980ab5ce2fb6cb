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
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	for _, source := range propertyCorpus {
		doc, err := Parse([]byte(source), nil)
		require.NoError(t, err, "Parse(%q)", source)
		got := doc.AppendMarkdown(nil)
		require.Equal(t, source, string(got), "round trip of %q", source)
	}
}

func TestRoundTripTabs(t *testing.T) {
	// Tabs survive even when a container prefix slices into them.
	sources := []string{
		"1. list item\n\t1. inner list item",
		"\tcode with tab indent\n",
		"- a\n\tb\n",
		"text\twith\ttabs\n",
	}
	for _, source := range sources {
		doc, err := Parse([]byte(source), nil)
		require.NoError(t, err, "Parse(%q)", source)
		got := doc.AppendMarkdown(nil)
		require.Equal(t, source, string(got), "round trip of %q", source)
	}
}

func TestRoundTripLineEndings(t *testing.T) {
	sources := []string{
		"a\r\nb\r\n",
		"a\rb\r",
		"mixed\r\nendings\nhere\r",
		"no trailing newline",
	}
	for _, source := range sources {
		doc, err := Parse([]byte(source), nil)
		require.NoError(t, err, "Parse(%q)", source)
		got := doc.AppendMarkdown(nil)
		require.Equal(t, source, string(got), "round trip of %q", source)
	}
}

func TestWriteNormalized(t *testing.T) {
	doc, err := Parse([]byte("a\r\nb\rc\n"), nil)
	require.NoError(t, err)
	buf := new(bytes.Buffer)
	require.NoError(t, WriteNormalized(buf, doc, "\n"))
	require.Equal(t, "a\nb\nc\n", buf.String())
}

func TestWrite(t *testing.T) {
	const source = "> # Foo\n> bar\n> baz"
	doc, err := Parse([]byte(source), nil)
	require.NoError(t, err)
	buf := new(bytes.Buffer)
	require.NoError(t, Write(buf, doc))
	require.Equal(t, source, buf.String())
}

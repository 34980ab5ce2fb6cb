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

func TestParseThematicBreak(t *testing.T) {
	tests := []struct {
		line string
		want int
	}{
		{"", -1},
		{"---", 3},
		{"***", 3},
		{"___", 3},
		{"+++", -1},
		{"===", -1},
		{"--", -1},
		{"**", -1},
		{"__", -1},
		{"_____________________________________", 37},
		{"- - -", 5},
		{"**  * ** * ** * **", 18},
		{"-     -      -      -", 21},
		{"- - - -    ", 7},
		{"_ _ _ _ a", -1},
		{"a------", -1},
		{"---a---", -1},
		{"*-*", -1},
	}
	for _, test := range tests {
		if got := parseThematicBreak(test.line); got != test.want {
			t.Errorf("parseThematicBreak(%q) = %d; want %d", test.line, got, test.want)
		}
	}
}

func TestParseATXHeading(t *testing.T) {
	tests := []struct {
		line string
		want atxHeading
	}{
		{"# foo", atxHeading{level: 1, content: span{start: 2, end: 5}}},
		{"## foo", atxHeading{level: 2, content: span{start: 3, end: 6}}},
		{"###### foo", atxHeading{level: 6, content: span{start: 7, end: 10}}},
		{"####### foo", atxHeading{}},
		{"#5 bolt", atxHeading{}},
		{"#hashtag", atxHeading{}},
		{"#", atxHeading{level: 1, content: span{start: 1, end: 1}}},
		{"# ", atxHeading{level: 1, content: span{start: 2, end: 2}}},
		{"#                  foo", atxHeading{level: 1, content: span{start: 19, end: 22}}},
		{"## foo ##", atxHeading{level: 2, content: span{start: 3, end: 6}}},
		{"# foo ##################################", atxHeading{level: 1, content: span{start: 2, end: 5}}},
		{"### foo ###     ", atxHeading{level: 3, content: span{start: 4, end: 7}}},
		{"### foo ### b", atxHeading{level: 3, content: span{start: 4, end: 13}}},
		{"# foo#", atxHeading{level: 1, content: span{start: 2, end: 6}}},
	}
	for _, test := range tests {
		got := parseATXHeading(test.line)
		if diff := cmp.Diff(test.want, got, cmp.AllowUnexported(atxHeading{}, span{})); diff != "" {
			t.Errorf("parseATXHeading(%q) (-want +got):\n%s", test.line, diff)
		}
	}
}

func TestParseSetextHeadingUnderline(t *testing.T) {
	tests := []struct {
		line string
		want int
	}{
		{"", 0},
		{"=", 1},
		{"==========", 1},
		{"-", 2},
		{"---", 2},
		{"---   ", 2},
		{"- -", 0},
		{"= =", 0},
		{"=-", 0},
		{"x", 0},
	}
	for _, test := range tests {
		if got := parseSetextHeadingUnderline(test.line); got != test.want {
			t.Errorf("parseSetextHeadingUnderline(%q) = %d; want %d", test.line, got, test.want)
		}
	}
}

func TestParseCodeFence(t *testing.T) {
	tests := []struct {
		line string
		want codeFence
	}{
		{"", codeFence{}},
		{"``", codeFence{}},
		{"```", codeFence{char: '`', n: 3, rest: ""}},
		{"~~~", codeFence{char: '~', n: 3, rest: ""}},
		{"````", codeFence{char: '`', n: 4, rest: ""}},
		{"```go", codeFence{char: '`', n: 3, rest: "go"}},
		{"``` go  ", codeFence{char: '`', n: 3, rest: " go  "}},
		{"```a`b", codeFence{}},
		{"~~~a`b", codeFence{char: '~', n: 3, rest: "a`b"}},
	}
	for _, test := range tests {
		got := parseCodeFence(test.line)
		if diff := cmp.Diff(test.want, got, cmp.AllowUnexported(codeFence{})); diff != "" {
			t.Errorf("parseCodeFence(%q) (-want +got):\n%s", test.line, diff)
		}
	}
}

func TestParseListMarker(t *testing.T) {
	tests := []struct {
		line string
		want listMarker
	}{
		{"", listMarker{end: -1}},
		{"- foo", listMarker{delim: '-', end: 1}},
		{"-foo", listMarker{end: -1}},
		{"+ foo", listMarker{delim: '+', end: 1}},
		{"* foo", listMarker{delim: '*', end: 1}},
		{"-", listMarker{delim: '-', end: 1}},
		{"1. foo", listMarker{delim: '.', n: 1, end: 2, digits: "1"}},
		{"1) foo", listMarker{delim: ')', n: 1, end: 2, digits: "1"}},
		{"123456789. ok", listMarker{delim: '.', n: 123456789, end: 10, digits: "123456789"}},
		{"1234567890. not ok", listMarker{end: -1}},
		{"1.foo", listMarker{end: -1}},
		{"1:) not a list", listMarker{end: -1}},
	}
	for _, test := range tests {
		got := parseListMarker(test.line)
		if diff := cmp.Diff(test.want, got, cmp.AllowUnexported(listMarker{})); diff != "" {
			t.Errorf("parseListMarker(%q) (-want +got):\n%s", test.line, diff)
		}
	}
}

func TestStartHTMLBlockMode(t *testing.T) {
	tests := []struct {
		line      string
		paragraph bool
		want      int
	}{
		{"<pre>", false, 1},
		{"<script src=\"x\">", false, 1},
		{"<textarea>", false, 1},
		{"<!-- comment", false, 2},
		{"<?php", false, 3},
		{"<!DOCTYPE html>", false, 4},
		{"<![CDATA[", false, 5},
		{"<div>", false, 6},
		{"</div>", false, 6},
		{"<DIV CLASS=\"foo\">", false, 6},
		{"<a href=\"x\">", false, 7},
		{"<a href=\"x\">", true, 0},
		{"<div>", true, 6},
		{"plain", false, 0},
		{"<45>", false, 0},
	}
	for _, test := range tests {
		if got := startHTMLBlockMode(test.line, test.paragraph); got != test.want {
			t.Errorf("startHTMLBlockMode(%q, %t) = %d; want %d", test.line, test.paragraph, got, test.want)
		}
	}
}

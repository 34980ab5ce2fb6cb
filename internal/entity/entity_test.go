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

package entity

import "testing"

func TestLoad(t *testing.T) {
	if err := Load(); err != nil {
		t.Fatal(err)
	}
}

func TestLookup(t *testing.T) {
	tests := []struct {
		raw  string
		want string
		ok   bool
	}{
		{"&amp;", "&", true},
		{"&AMP;", "&", true},
		{"&copy;", "©", true},
		{"&frac34;", "¾", true},
		{"&HilbertSpace;", "ℋ", true},
		{"&DifferentialD;", "ⅆ", true},
		{"&ngE;", "≧̸", true},
		{"&nbsp;", " ", true},
		{"&MadeUpEntity;", "", false},
		{"&amp", "", false},
	}
	for _, test := range tests {
		got, ok := Lookup(test.raw)
		if got != test.want || ok != test.ok {
			t.Errorf("Lookup(%q) = %q, %t; want %q, %t", test.raw, got, ok, test.want, test.ok)
		}
	}
}

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

// Package entity resolves HTML5 named character references against a
// table embedded in the binary. The table is loaded once at first use
// and is read-only afterwards. It holds a subset of the HTML5 names;
// names outside it are reported as unknown.
package entity

import (
	_ "embed"
	"encoding/json"
	"sync"

	"github.com/pkg/errors"
)

//go:embed entities.json
var entitiesJSON []byte

const entitiesPath = "entities.json"

var (
	loadOnce sync.Once
	loadErr  error
	table    map[string]string
)

type entityData struct {
	Characters string `json:"characters"`
	Codepoints []int  `json:"codepoints"`
}

// Load initializes the entity table. It is safe to call from multiple
// goroutines; only the first call does any work. A load failure is
// fatal for tokenization and is reported by every subsequent call.
func Load() error {
	loadOnce.Do(func() {
		var raw map[string]entityData
		if err := json.Unmarshal(entitiesJSON, &raw); err != nil {
			loadErr = errors.Wrapf(err, "bad tokenization initialization: %q not loaded", entitiesPath)
			return
		}
		if len(raw) == 0 {
			loadErr = errors.Errorf("bad tokenization initialization: %q not loaded (empty table)", entitiesPath)
			return
		}
		table = make(map[string]string, len(raw))
		for name, data := range raw {
			table[name] = data.Characters
		}
	})
	return loadErr
}

// Lookup resolves a reference spelled with its ampersand and
// semicolon, like "&amp;". Unknown references report false.
func Lookup(raw string) (string, bool) {
	if err := Load(); err != nil {
		return "", false
	}
	resolved, ok := table[raw]
	return resolved, ok
}

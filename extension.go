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

// An Extension hooks custom syntax into the tokenizer.
// The core invokes hooks in registration order and the first hook to
// apply wins. A hook that returns an error is treated as not having
// applied; extensions cannot corrupt the token stream, only add to it.
//
// GitHub extensions such as tables, strikethrough, task list items and
// extended autolinks can be expressed through this interface; this
// package ships no extension implementations.
type Extension interface {
	// TryBlockStart is offered the residual line at the point where
	// leaf recognizers would run. A positive consumed count means the
	// returned tokens replace that prefix of the line.
	TryBlockStart(line string, pos Position) (tokens []Token, consumed int, err error)
	// TryInline is offered the payload at each scan position before the
	// built-in inline parsers.
	TryInline(payload string, offset int, pos Position) (tokens []Token, consumed int, err error)
	// OnFinalize may rewrite the finished token stream.
	// Returning nil leaves the stream unchanged.
	OnFinalize(tokens []Token) ([]Token, error)
}

// BaseExtension is a no-op [Extension] for embedding, so extensions
// only implement the hooks they need.
type BaseExtension struct{}

func (BaseExtension) TryBlockStart(line string, pos Position) ([]Token, int, error) {
	return nil, 0, nil
}

func (BaseExtension) TryInline(payload string, offset int, pos Position) ([]Token, int, error) {
	return nil, 0, nil
}

func (BaseExtension) OnFinalize(tokens []Token) ([]Token, error) {
	return nil, nil
}

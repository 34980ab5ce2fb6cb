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

package mdtoken_test

import (
	"bytes"
	"fmt"
	"os"

	"zombiezen.com/go/mdtoken"
)

func ExampleParse() {
	doc, err := mdtoken.Parse([]byte("# Hi\n"), nil)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return
	}
	for _, tok := range doc.Tokens {
		fmt.Println(tok)
	}
	// Output:
	// [atx(1,1):1::]
	// [text(1,3):Hi:]
	// [end-atx:::False]
}

func ExampleRenderHTML() {
	doc, err := mdtoken.Parse([]byte("Hello, **World**!\n"), nil)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return
	}
	if err := mdtoken.RenderHTML(os.Stdout, doc); err != nil {
		fmt.Fprintln(os.Stderr, err)
	}
	// Output:
	// <p>Hello, <strong>World</strong>!</p>
}

func ExampleWrite() {
	source := []byte("> - nested\n> - blocks\n")
	doc, err := mdtoken.Parse(source, nil)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return
	}
	buf := new(bytes.Buffer)
	if err := mdtoken.Write(buf, doc); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return
	}
	fmt.Println(bytes.Equal(source, buf.Bytes()))
	// Output:
	// true
}

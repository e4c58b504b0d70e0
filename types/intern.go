// Copyright 2025 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package types

import "github.com/gx-org/graphrt/base/sync"

// interned maps canonical encodings to the one live type with that encoding.
// The table lives for the whole process and never shrinks.
var interned sync.Map[string, *Type]

// intern computes the canonical encoding of t and returns the type already
// registered for that encoding, registering t if there is none.
// The children of t must already be interned.
func intern(t *Type) *Type {
	t.text = encode(t)
	actual, _ := interned.LoadOrStore(t.text, t)
	return actual
}

// Interned returns the number of distinct types created by the process.
func Interned() int {
	return interned.Size()
}

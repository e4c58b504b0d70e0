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

import "strings"

// encode computes the canonical encoding of a type from the encoding of its
// children.
func encode(t *Type) string {
	switch t.kind {
	case TensorKind:
		return t.elem.String()
	case SparseKind:
		return "sparse(" + t.elem.String() + ")"
	case SeqKind:
		return "seq(" + t.value.text + ")"
	case MapKind:
		return "map(" + t.elem.String() + "," + t.value.text + ")"
	case RecordKind, UnionKind:
		var b strings.Builder
		b.WriteString(t.kind.String())
		b.WriteByte('(')
		for i, field := range t.fields {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(field.Name)
			b.WriteByte(':')
			b.WriteString(field.Type.text)
		}
		b.WriteByte(')')
		return b.String()
	}
	panic("unknown type kind " + t.kind.String())
}

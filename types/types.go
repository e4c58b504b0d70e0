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

// Package types implements the type expressions of graph values: dense and
// sparse tensors, sequences, maps, records, and unions.
//
// Type expressions are immutable and interned: two types with the same
// canonical encoding are always the same pointer, so types can be compared
// with ==.
package types

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind of a type expression.
type Kind int

// Kinds of type expressions.
const (
	TensorKind Kind = iota
	SparseKind
	SeqKind
	MapKind
	RecordKind
	UnionKind
)

var kindNames = [...]string{
	TensorKind: "tensor",
	SparseKind: "sparse",
	SeqKind:    "seq",
	MapKind:    "map",
	RecordKind: "record",
	UnionKind:  "union",
}

func (k Kind) String() string {
	if k < TensorKind || k > UnionKind {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

type (
	// Field is a named member of a record or a choice of a union.
	Field struct {
		Name string
		Type *Type
	}

	// Type is an interned type expression.
	Type struct {
		kind   Kind
		elem   Primitive
		value  *Type
		fields []Field
		text   string
	}
)

// Kind returns the kind of the type.
func (t *Type) Kind() Kind {
	return t.kind
}

// Elem returns the element type of a tensor or sparse tensor,
// or the key type of a map. It returns Undefined for the other kinds.
func (t *Type) Elem() Primitive {
	return t.elem
}

// Value returns the element type of a sequence or the value type of a map.
// It returns nil for the other kinds.
func (t *Type) Value() *Type {
	return t.value
}

// NumFields returns the number of fields of a record or choices of a union.
func (t *Type) NumFields() int {
	return len(t.fields)
}

// Field returns the ith field of a record or choice of a union.
func (t *Type) Field(i int) Field {
	return t.fields[i]
}

// Fields returns a copy of the fields of a record or choices of a union.
func (t *Type) Fields() []Field {
	return append([]Field(nil), t.fields...)
}

// String returns the canonical encoding of the type.
func (t *Type) String() string {
	if t == nil {
		return "<nil>"
	}
	return t.text
}

// Encode returns the canonical encoding of a type.
func Encode(t *Type) string {
	return t.String()
}

// Equal returns true if two types are the same type.
func Equal(a, b *Type) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	return a.text == b.text
}

// Equal returns true if t and other are the same type.
func (t *Type) Equal(other *Type) bool {
	return Equal(t, other)
}

// Tensor returns the type of a dense tensor. It panics if p is not valid.
func Tensor(p Primitive) *Type {
	return must(newPrimitiveType(TensorKind, p))
}

// Sparse returns the type of a sparse tensor. It panics if p is not valid.
func Sparse(p Primitive) *Type {
	return must(newPrimitiveType(SparseKind, p))
}

// Seq returns the type of a sequence of elem.
func Seq(elem *Type) *Type {
	return must(NewSeq(elem))
}

// NewSeq returns the type of a sequence of elem.
func NewSeq(elem *Type) (*Type, error) {
	if err := checkBuilt(elem); err != nil {
		return nil, errors.Wrapf(err, "sequence element")
	}
	return intern(&Type{kind: SeqKind, value: elem}), nil
}

// MapOf returns the type of a map from key to value. It panics if the key is
// not a valid primitive or the value is nil.
func MapOf(key Primitive, value *Type) *Type {
	return must(NewMap(key, value))
}

// NewMap returns the type of a map from key to value.
func NewMap(key Primitive, value *Type) (*Type, error) {
	if !key.Valid() {
		return nil, errors.Errorf("invalid map key type %s", key)
	}
	if err := checkBuilt(value); err != nil {
		return nil, errors.Wrapf(err, "map value")
	}
	return intern(&Type{kind: MapKind, elem: key, value: value}), nil
}

// Record returns a record type. It panics if the fields are not valid.
func Record(fields ...Field) *Type {
	return must(NewRecord(fields...))
}

// NewRecord returns a record type given its ordered fields.
func NewRecord(fields ...Field) (*Type, error) {
	return newFieldsType(RecordKind, fields)
}

// Union returns a union type. It panics if the choices are not valid.
func Union(choices ...Field) *Type {
	return must(NewUnion(choices...))
}

// NewUnion returns a union type given its ordered choices.
func NewUnion(choices ...Field) (*Type, error) {
	return newFieldsType(UnionKind, choices)
}

func newPrimitiveType(kind Kind, p Primitive) (*Type, error) {
	if !p.Valid() {
		return nil, errors.Errorf("invalid %s element type %s", kind, p)
	}
	return intern(&Type{kind: kind, elem: p}), nil
}

func newFieldsType(kind Kind, fields []Field) (*Type, error) {
	if len(fields) == 0 {
		return nil, errors.Errorf("%s requires at least one field", kind)
	}
	names := make(map[string]bool, len(fields))
	for i, field := range fields {
		if !isIdentifier(field.Name) {
			return nil, errors.Errorf("%s field %d: invalid name %q", kind, i, field.Name)
		}
		if names[field.Name] {
			return nil, errors.Errorf("%s field %d: duplicated name %q", kind, i, field.Name)
		}
		names[field.Name] = true
		if err := checkBuilt(field.Type); err != nil {
			return nil, errors.Wrapf(err, "%s field %q", kind, field.Name)
		}
	}
	return intern(&Type{kind: kind, fields: append([]Field(nil), fields...)}), nil
}

// checkBuilt returns an error if a type has not been created by this package.
func checkBuilt(t *Type) error {
	if t == nil {
		return errors.Errorf("type is nil")
	}
	if t.text == "" {
		return errors.Errorf("type has not been created by the types package")
	}
	return nil
}

// isIdentifier reports whether s is a field name: a letter or underscore
// followed by letters, digits or underscores.
func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_':
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}

func must(t *Type, err error) *Type {
	if err != nil {
		panic(err)
	}
	return t
}

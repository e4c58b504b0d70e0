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

import "fmt"

// Primitive is the element type of a tensor or the key of a map.
type Primitive int

// Primitive types. Undefined is only returned when parsing fails and is never
// a valid element type.
const (
	Undefined Primitive = iota
	Bool
	String
	Float16
	Float32
	Float64
	Int8
	Int16
	Int32
	Int64
	Uint8
	Uint16
	Uint32
	Uint64
	Complex64
	Complex128
)

var primitiveNames = [...]string{
	Undefined:  "undefined",
	Bool:       "bool",
	String:     "string",
	Float16:    "float16",
	Float32:    "float",
	Float64:    "double",
	Int8:       "int8",
	Int16:      "int16",
	Int32:      "int32",
	Int64:      "int64",
	Uint8:      "uint8",
	Uint16:     "uint16",
	Uint32:     "uint32",
	Uint64:     "uint64",
	Complex64:  "complex64",
	Complex128: "complex128",
}

var primitiveByName = func() map[string]Primitive {
	m := make(map[string]Primitive, len(primitiveNames))
	for p, name := range primitiveNames {
		if Primitive(p) == Undefined {
			continue
		}
		m[name] = Primitive(p)
	}
	return m
}()

// Primitives returns all the valid primitive types.
func Primitives() []Primitive {
	all := make([]Primitive, 0, len(primitiveNames)-1)
	for p := Bool; p <= Complex128; p++ {
		all = append(all, p)
	}
	return all
}

// Valid returns true if the primitive is a valid element type.
func (p Primitive) Valid() bool {
	return p > Undefined && p <= Complex128
}

// String returns the canonical name of the primitive.
func (p Primitive) String() string {
	if p < Undefined || p > Complex128 {
		return fmt.Sprintf("Primitive(%d)", int(p))
	}
	return primitiveNames[p]
}

// ParsePrimitive returns the primitive given its canonical name.
func ParsePrimitive(s string) (Primitive, error) {
	p, ok := primitiveByName[s]
	if !ok {
		return Undefined, &SyntaxError{Text: s, Msg: "unknown data type"}
	}
	return p, nil
}

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

import (
	"fmt"
	"strings"
	"unicode"
)

// SyntaxError is returned when a text cannot be decoded into a type.
type SyntaxError struct {
	// Text is the part of the input that could not be decoded.
	Text string
	// Msg describes the problem.
	Msg string
}

func (err *SyntaxError) Error() string {
	return fmt.Sprintf("invalid type %q: %s", err.Text, err.Msg)
}

// Decode a type from its text. Whitespace and the grouping of the input are
// not preserved: the String method of the returned type gives the canonical
// encoding.
//
// The type is only interned once the whole text has been decoded.
func Decode(text string) (*Type, error) {
	t, err := parse(text)
	if err != nil {
		return nil, err
	}
	return internTree(t), nil
}

// MustDecode decodes a type and panics if the text is not valid.
func MustDecode(text string) *Type {
	t, err := Decode(text)
	if err != nil {
		panic(err)
	}
	return t
}

// internTree interns a type returned by the parser, children first.
func internTree(t *Type) *Type {
	if t.value != nil {
		t.value = internTree(t.value)
	}
	for i := range t.fields {
		t.fields[i].Type = internTree(t.fields[i].Type)
	}
	return intern(t)
}

// keywords are the composite kinds in the order they are tried.
var keywords = []Kind{SeqKind, MapKind, RecordKind, UnionKind, SparseKind}

func parse(src string) (*Type, error) {
	s := strings.TrimSpace(src)
	if s == "" {
		return nil, &SyntaxError{Text: src, Msg: "missing type"}
	}
	kind, body, ok, err := splitKeyword(s)
	if err != nil {
		return nil, err
	}
	if !ok {
		p, err := ParsePrimitive(s)
		if err != nil {
			return nil, err
		}
		return &Type{kind: TensorKind, elem: p}, nil
	}
	switch kind {
	case SeqKind:
		elem, err := parse(body)
		if err != nil {
			return nil, err
		}
		return &Type{kind: SeqKind, value: elem}, nil
	case SparseKind:
		elem, err := ParsePrimitive(strings.TrimSpace(body))
		if err != nil {
			return nil, err
		}
		return &Type{kind: SparseKind, elem: elem}, nil
	case MapKind:
		return parseMap(s, body)
	default:
		return parseFields(s, kind, body)
	}
}

func parseMap(s, body string) (*Type, error) {
	keyText, valueText, found := cutTopLevel(body, ',')
	if !found {
		return nil, &SyntaxError{Text: s, Msg: "map requires a key and a value type"}
	}
	key, err := ParsePrimitive(strings.TrimSpace(keyText))
	if err != nil {
		return nil, err
	}
	value, err := parse(valueText)
	if err != nil {
		return nil, err
	}
	return &Type{kind: MapKind, elem: key, value: value}, nil
}

func parseFields(s string, kind Kind, body string) (*Type, error) {
	if strings.TrimSpace(body) == "" {
		return nil, &SyntaxError{Text: s, Msg: kind.String() + " requires at least one field"}
	}
	parts := splitTopLevel(body, ',')
	fields := make([]Field, len(parts))
	names := make(map[string]bool, len(parts))
	for i, part := range parts {
		nameText, typeText, found := cutTopLevel(part, ':')
		if !found {
			return nil, &SyntaxError{Text: part, Msg: "missing ':' between field name and type"}
		}
		name := strings.TrimSpace(nameText)
		if !isIdentifier(name) {
			return nil, &SyntaxError{Text: part, Msg: fmt.Sprintf("invalid field name %q", name)}
		}
		if names[name] {
			return nil, &SyntaxError{Text: s, Msg: fmt.Sprintf("duplicated field name %q", name)}
		}
		names[name] = true
		typ, err := parse(typeText)
		if err != nil {
			return nil, err
		}
		fields[i] = Field{Name: name, Type: typ}
	}
	return &Type{kind: kind, fields: fields}, nil
}

// splitKeyword checks if s is a keyword followed by a parenthesized body.
// It returns the kind of the keyword and the text between the parentheses.
func splitKeyword(s string) (kind Kind, body string, ok bool, err error) {
	for _, kind := range keywords {
		name := kind.String()
		if !strings.HasPrefix(s, name) {
			continue
		}
		rest := strings.TrimLeftFunc(s[len(name):], unicode.IsSpace)
		if !strings.HasPrefix(rest, "(") {
			continue
		}
		end, err := closingParen(rest)
		if err != nil {
			return kind, "", false, err
		}
		if end != len(rest)-1 {
			return kind, "", false, &SyntaxError{Text: s, Msg: "unexpected text after the closing parenthesis"}
		}
		return kind, rest[1:end], true, nil
	}
	return 0, "", false, nil
}

// closingParen returns the index of the parenthesis closing s[0].
func closingParen(s string) (int, error) {
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i, nil
			}
		}
	}
	return -1, &SyntaxError{Text: s, Msg: "missing closing parenthesis"}
}

// splitTopLevel splits s around the separators not nested in parentheses.
func splitTopLevel(s string, sep byte) []string {
	var parts []string
	depth, start := 0, 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
		case sep:
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	return append(parts, s[start:])
}

// cutTopLevel slices s around the first separator not nested in parentheses.
func cutTopLevel(s string, sep byte) (before, after string, found bool) {
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
		case sep:
			if depth == 0 {
				return s[:i], s[i+1:], true
			}
		}
	}
	return s, "", false
}

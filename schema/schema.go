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

// Package schema describes operators: their formal arguments, the types
// accepted by each type parameter, and how to infer the type of their outputs.
package schema

import (
	"slices"

	"github.com/gx-org/graphrt/types"
	"github.com/pkg/errors"
	"github.com/zclconf/go-cty/cty"
	"golang.org/x/exp/maps"
)

// Option specifies how many actual arguments a formal argument binds.
type Option int

const (
	// Single formal arguments bind exactly one actual argument.
	Single Option = iota
	// Optional formal arguments bind zero or one actual argument.
	Optional
	// Variadic formal arguments bind all the remaining actual arguments (at least one).
	// Only the last formal argument can be variadic.
	Variadic
)

type (
	// Attributes of a node.
	Attributes map[string]cty.Value

	// InferFunc computes the types of the outputs of a node given the types
	// of its inputs. Omitted optional inputs have a nil type.
	// A nil output type means the type is unknown.
	InferFunc func(inputs []*types.Type, attrs Attributes) ([]*types.Type, error)

	// Formal argument of an operator.
	Formal struct {
		Name string
		// TypeParam is the name of the type parameter of the argument.
		TypeParam string
		Option    Option
	}

	// Schema of an operator.
	Schema struct {
		Op      string
		Inputs  []Formal
		Outputs []Formal
		// TypeConstraints maps a type parameter to the types it accepts.
		// A type parameter without constraints accepts any type.
		TypeConstraints map[string][]*types.Type
		// Infer computes the type of the outputs.
		// If nil, an output takes the type of the first input sharing its type parameter.
		Infer InferFunc
	}

	// Provider returns the schema of operators.
	Provider interface {
		Schema(op string) (*Schema, bool)
	}
)

// Validate checks that the schema is well-formed.
func (s *Schema) Validate() error {
	if s.Op == "" {
		return errors.Errorf("schema has no operator name")
	}
	for _, formals := range [][]Formal{s.Inputs, s.Outputs} {
		for i, formal := range formals {
			if formal.TypeParam == "" {
				return errors.Errorf("operator %s: argument %q has no type parameter", s.Op, formal.Name)
			}
			if formal.Option == Variadic && i != len(formals)-1 {
				return errors.Errorf("operator %s: variadic argument %q is not the last argument", s.Op, formal.Name)
			}
		}
	}
	for param, allowed := range s.TypeConstraints {
		if len(allowed) == 0 {
			return errors.Errorf("operator %s: type parameter %s accepts no type", s.Op, param)
		}
	}
	return nil
}

func formalAt(formals []Formal, i int) (Formal, bool) {
	if i < 0 || len(formals) == 0 {
		return Formal{}, false
	}
	if i < len(formals) {
		return formals[i], true
	}
	last := formals[len(formals)-1]
	if last.Option == Variadic {
		return last, true
	}
	return Formal{}, false
}

// InputFormal returns the formal argument binding the ith actual input.
func (s *Schema) InputFormal(i int) (Formal, bool) {
	return formalAt(s.Inputs, i)
}

// OutputFormal returns the formal argument binding the ith actual output.
func (s *Schema) OutputFormal(i int) (Formal, bool) {
	return formalAt(s.Outputs, i)
}

func arity(formals []Formal) (minArgs, maxArgs int) {
	for _, formal := range formals {
		switch formal.Option {
		case Single:
			minArgs++
			maxArgs++
		case Optional:
			maxArgs++
		case Variadic:
			minArgs++
			maxArgs = -1
			return
		}
	}
	return
}

func checkArity(what string, formals []Formal, n int) error {
	minArgs, maxArgs := arity(formals)
	if n < minArgs {
		return errors.Errorf("got %d %s but want at least %d", n, what, minArgs)
	}
	if maxArgs >= 0 && n > maxArgs {
		return errors.Errorf("got %d %s but want at most %d", n, what, maxArgs)
	}
	return nil
}

// CheckArity returns an error if a node cannot bind numInputs inputs and
// numOutputs outputs to the formal arguments of the operator.
func (s *Schema) CheckArity(numInputs, numOutputs int) error {
	if err := checkArity("inputs", s.Inputs, numInputs); err != nil {
		return err
	}
	return checkArity("outputs", s.Outputs, numOutputs)
}

// Allowed returns the types accepted by a type parameter,
// or nil if the parameter accepts any type.
func (s *Schema) Allowed(param string) []*types.Type {
	return s.TypeConstraints[param]
}

// Allows returns true if a type parameter accepts a type.
func (s *Schema) Allows(param string, typ *types.Type) bool {
	allowed, ok := s.TypeConstraints[param]
	if !ok {
		return true
	}
	return slices.Contains(allowed, typ)
}

// Params returns the sorted names of the constrained type parameters.
func (s *Schema) Params() []string {
	params := maps.Keys(s.TypeConstraints)
	slices.Sort(params)
	return params
}

// InferTypes returns the types of numOutputs outputs.
func (s *Schema) InferTypes(inputs []*types.Type, attrs Attributes, numOutputs int) ([]*types.Type, error) {
	if s.Infer == nil {
		return s.inferFromParams(inputs, numOutputs), nil
	}
	outs, err := s.Infer(inputs, attrs)
	if err != nil {
		return nil, err
	}
	if len(outs) != numOutputs {
		return nil, errors.Errorf("operator %s: type inference returned %d types for %d outputs", s.Op, len(outs), numOutputs)
	}
	return outs, nil
}

func (s *Schema) inferFromParams(inputs []*types.Type, numOutputs int) []*types.Type {
	outs := make([]*types.Type, numOutputs)
	for o := range outs {
		out, ok := s.OutputFormal(o)
		if !ok {
			continue
		}
		for i, in := range inputs {
			formal, ok := s.InputFormal(i)
			if !ok || in == nil || formal.TypeParam != out.TypeParam {
				continue
			}
			outs[o] = in
			break
		}
	}
	return outs
}

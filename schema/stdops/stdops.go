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

// Package stdops provides the schema of standard tensor operators.
package stdops

import (
	"github.com/gx-org/graphrt/schema"
	"github.com/gx-org/graphrt/types"
	"github.com/pkg/errors"
	"github.com/zclconf/go-cty/cty"
)

func tensors(ps ...types.Primitive) []*types.Type {
	all := make([]*types.Type, len(ps))
	for i, p := range ps {
		all[i] = types.Tensor(p)
	}
	return all
}

var (
	// Numeric types accepted by arithmetic operators.
	Numeric = tensors(
		types.Uint32, types.Uint64,
		types.Int32, types.Int64,
		types.Float16, types.Float32, types.Float64,
	)

	// Floats are the floating point tensor types.
	Floats = tensors(types.Float16, types.Float32, types.Float64)

	// AllTensors are all the dense tensor types.
	AllTensors = tensors(types.Primitives()...)
)

func binary(op string) *schema.Schema {
	return &schema.Schema{
		Op: op,
		Inputs: []schema.Formal{
			{Name: "A", TypeParam: "T"},
			{Name: "B", TypeParam: "T"},
		},
		Outputs:         []schema.Formal{{Name: "C", TypeParam: "T"}},
		TypeConstraints: map[string][]*types.Type{"T": Numeric},
	}
}

func unary(op string, allowed []*types.Type) *schema.Schema {
	return &schema.Schema{
		Op:              op,
		Inputs:          []schema.Formal{{Name: "X", TypeParam: "T"}},
		Outputs:         []schema.Formal{{Name: "Y", TypeParam: "T"}},
		TypeConstraints: map[string][]*types.Type{"T": allowed},
	}
}

// inferCast returns the type given by the "to" attribute.
func inferCast(_ []*types.Type, attrs schema.Attributes) ([]*types.Type, error) {
	to, ok := attrs["to"]
	if !ok {
		return nil, errors.Errorf("missing attribute \"to\"")
	}
	if to.IsNull() || !to.IsKnown() || to.Type() != cty.String {
		return nil, errors.Errorf("attribute \"to\" is %s but want a string", to.Type().FriendlyName())
	}
	target, err := types.Decode(to.AsString())
	if err != nil {
		return nil, err
	}
	if target.Kind() != types.TensorKind {
		return nil, errors.Errorf("cannot cast to %s: not a tensor type", target)
	}
	return []*types.Type{target}, nil
}

// inferSequence returns a sequence of the type of the first input.
func inferSequence(inputs []*types.Type, _ schema.Attributes) ([]*types.Type, error) {
	if len(inputs) == 0 || inputs[0] == nil {
		return []*types.Type{nil}, nil
	}
	for i, in := range inputs[1:] {
		if in != inputs[0] {
			return nil, errors.Errorf("input %d has type %s but input 0 has type %s", i+1, in, inputs[0])
		}
	}
	return []*types.Type{types.Seq(inputs[0])}, nil
}

// Schemas returns the schemas of the standard operators.
func Schemas() []*schema.Schema {
	return []*schema.Schema{
		binary("Add"),
		binary("Sub"),
		binary("Mul"),
		binary("Div"),
		binary("MatMul"),
		unary("Relu", Floats),
		unary("Identity", AllTensors),
		{
			Op: "Reshape",
			Inputs: []schema.Formal{
				{Name: "data", TypeParam: "T"},
				{Name: "shape", TypeParam: "I"},
			},
			Outputs: []schema.Formal{{Name: "reshaped", TypeParam: "T"}},
			TypeConstraints: map[string][]*types.Type{
				"T": AllTensors,
				"I": tensors(types.Int64),
			},
		},
		{
			Op:      "Cast",
			Inputs:  []schema.Formal{{Name: "input", TypeParam: "T1"}},
			Outputs: []schema.Formal{{Name: "output", TypeParam: "T2"}},
			TypeConstraints: map[string][]*types.Type{
				"T1": AllTensors,
				"T2": AllTensors,
			},
			Infer: inferCast,
		},
		{
			Op:              "Concat",
			Inputs:          []schema.Formal{{Name: "inputs", TypeParam: "T", Option: schema.Variadic}},
			Outputs:         []schema.Formal{{Name: "concat_result", TypeParam: "T"}},
			TypeConstraints: map[string][]*types.Type{"T": AllTensors},
		},
		{
			Op:      "SequenceConstruct",
			Inputs:  []schema.Formal{{Name: "inputs", TypeParam: "T", Option: schema.Variadic}},
			Outputs: []schema.Formal{{Name: "output_sequence", TypeParam: "S"}},
			TypeConstraints: map[string][]*types.Type{
				"T": AllTensors,
			},
			Infer: inferSequence,
		},
	}
}

// Register the standard operators in a registry.
func Register(reg *schema.Registry) error {
	for _, s := range Schemas() {
		if err := reg.Register(s); err != nil {
			return err
		}
	}
	return nil
}

// NewRegistry returns a registry with all the standard operators.
func NewRegistry() *schema.Registry {
	reg := schema.NewRegistry()
	if err := Register(reg); err != nil {
		panic(err)
	}
	return reg
}

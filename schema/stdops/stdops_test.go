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

package stdops_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/gx-org/graphrt/schema"
	"github.com/gx-org/graphrt/schema/stdops"
	"github.com/gx-org/graphrt/types"
	"github.com/zclconf/go-cty/cty"
)

var (
	float  = types.Tensor(types.Float32)
	double = types.Tensor(types.Float64)
	int64T = types.Tensor(types.Int64)
)

func TestInferTypes(t *testing.T) {
	reg := stdops.NewRegistry()
	tests := []struct {
		op         string
		inputs     []*types.Type
		attrs      schema.Attributes
		numOutputs int
		want       []*types.Type
	}{
		{
			op:         "Add",
			inputs:     []*types.Type{float, float},
			numOutputs: 1,
			want:       []*types.Type{float},
		},
		{
			op:         "Reshape",
			inputs:     []*types.Type{double, int64T},
			numOutputs: 1,
			want:       []*types.Type{double},
		},
		{
			op:         "Cast",
			inputs:     []*types.Type{float},
			attrs:      schema.Attributes{"to": cty.StringVal("int64")},
			numOutputs: 1,
			want:       []*types.Type{int64T},
		},
		{
			op:         "Concat",
			inputs:     []*types.Type{float, float, float},
			numOutputs: 1,
			want:       []*types.Type{float},
		},
		{
			op:         "SequenceConstruct",
			inputs:     []*types.Type{double, double},
			numOutputs: 1,
			want:       []*types.Type{types.Seq(double)},
		},
	}
	for _, test := range tests {
		s, ok := reg.Schema(test.op)
		if !ok {
			t.Errorf("%s: schema not found", test.op)
			continue
		}
		got, err := s.InferTypes(test.inputs, test.attrs, test.numOutputs)
		if err != nil {
			t.Errorf("%s: %v", test.op, err)
			continue
		}
		if !cmp.Equal(got, test.want) {
			t.Errorf("%s: got %v but want %v", test.op, got, test.want)
		}
	}
}

func TestInferErrors(t *testing.T) {
	reg := stdops.NewRegistry()
	cast, _ := reg.Schema("Cast")
	for _, attrs := range []schema.Attributes{
		nil,
		{"to": cty.NumberIntVal(7)},
		{"to": cty.StringVal("flaot")},
		{"to": cty.StringVal("seq(float)")},
	} {
		if _, err := cast.InferTypes([]*types.Type{float}, attrs, 1); err == nil {
			t.Errorf("Cast with attributes %v: no error", attrs)
		}
	}
	seq, _ := reg.Schema("SequenceConstruct")
	if _, err := seq.InferTypes([]*types.Type{float, double}, nil, 1); err == nil {
		t.Errorf("SequenceConstruct with mixed types: no error")
	}
}

func TestArity(t *testing.T) {
	reg := stdops.NewRegistry()
	tests := []struct {
		op              string
		inputs, outputs int
		wantErr         bool
	}{
		{op: "Add", inputs: 2, outputs: 1},
		{op: "Add", inputs: 1, outputs: 1, wantErr: true},
		{op: "Add", inputs: 3, outputs: 1, wantErr: true},
		{op: "Add", inputs: 2, outputs: 2, wantErr: true},
		{op: "Concat", inputs: 5, outputs: 1},
		{op: "Concat", inputs: 0, outputs: 1, wantErr: true},
	}
	for _, test := range tests {
		s, _ := reg.Schema(test.op)
		err := s.CheckArity(test.inputs, test.outputs)
		if (err != nil) != test.wantErr {
			t.Errorf("%s(%d)->%d: got error %v but want error=%v", test.op, test.inputs, test.outputs, err, test.wantErr)
		}
	}
}

func TestOperators(t *testing.T) {
	got := stdops.NewRegistry().Operators()
	want := []string{"Add", "Cast", "Concat", "Div", "Identity", "MatMul", "Mul", "Relu", "Reshape", "SequenceConstruct", "Sub"}
	if !cmp.Equal(got, want) {
		t.Errorf("got operators %v but want %v", got, want)
	}
	if err := stdops.Register(stdops.NewRegistry()); err == nil {
		t.Errorf("registering the standard operators twice: no error")
	}
}

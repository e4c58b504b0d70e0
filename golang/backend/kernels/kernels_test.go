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

package kernels_test

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/gx-org/backend/dtype"
	gokernels "github.com/gx-org/graphrt/golang/backend/kernels"
	"github.com/gx-org/graphrt/graph"
	"github.com/gx-org/graphrt/kernels"
	"github.com/gx-org/graphrt/schema"
	"github.com/gx-org/graphrt/schema/stdops"
	"github.com/gx-org/graphrt/types"
	"github.com/zclconf/go-cty/cty"
)

func newRegistry(t *testing.T) (*schema.Registry, *kernels.Registry) {
	t.Helper()
	schemas := stdops.NewRegistry()
	reg := kernels.NewRegistry(schemas)
	if err := gokernels.Register(reg); err != nil {
		t.Fatal(err)
	}
	return schemas, reg
}

// newKernel creates the CPU kernel of a node consuming the given arrays.
func newKernel(t *testing.T, op string, attrs schema.Attributes, inputs ...gokernels.Array) gokernels.Kernel {
	t.Helper()
	schemas, reg := newRegistry(t)
	g := graph.New(op, schemas)
	var names []string
	for i, in := range inputs {
		name := string(rune('a' + i))
		if err := g.AddInput(name, in.Type(), in.Shape().AxisLengths...); err != nil {
			t.Fatal(err)
		}
		names = append(names, name)
	}
	n, err := g.AddNode(op, op, names, []string{"out"}, attrs)
	if err != nil {
		t.Fatal(err)
	}
	res, err := g.Resolve()
	if err != nil {
		t.Fatal(err)
	}
	match, err := reg.Dispatch(res.Node(n.Index()), kernels.CPU)
	if err != nil {
		t.Fatal(err)
	}
	k, err := match.Create()
	if err != nil {
		t.Fatal(err)
	}
	return k.(gokernels.Kernel)
}

func compute(t *testing.T, op string, attrs schema.Attributes, inputs ...gokernels.Array) gokernels.Array {
	t.Helper()
	outs, err := newKernel(t, op, attrs, inputs...).Compute(inputs)
	if err != nil {
		t.Fatal(err)
	}
	if len(outs) != 1 {
		t.Fatalf("got %d outputs but want 1", len(outs))
	}
	return outs[0]
}

func array[T dtype.GoDataType](t *testing.T, values []T, dims ...int) *gokernels.ArrayT[T] {
	t.Helper()
	a, err := gokernels.NewArray(values, dims...)
	if err != nil {
		t.Fatal(err)
	}
	return a
}

func checkArray[T dtype.GoDataType](t *testing.T, got gokernels.Array, want []T, wantDims ...int) {
	t.Helper()
	gotT, err := gokernels.ToArrayT[T](got)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(want, gotT.Flat()); diff != "" {
		t.Errorf("unexpected values: (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(wantDims, got.Shape().AxisLengths); diff != "" {
		t.Errorf("unexpected axis lengths: (-want +got):\n%s", diff)
	}
}

func TestToDataType(t *testing.T) {
	tests := []struct {
		p    types.Primitive
		want dtype.DataType
		ok   bool
	}{
		{p: types.Float32, want: dtype.Float32, ok: true},
		{p: types.Float64, want: dtype.Float64, ok: true},
		{p: types.Int64, want: dtype.Int64, ok: true},
		{p: types.Bool, want: dtype.Bool, ok: true},
		{p: types.Float16},
		{p: types.String},
	}
	for _, test := range tests {
		got, ok := gokernels.ToDataType(test.p)
		if ok != test.ok || (ok && got != test.want) {
			t.Errorf("ToDataType(%s) = %v, %t but want %v, %t", test.p, got, ok, test.want, test.ok)
			continue
		}
		if !ok {
			continue
		}
		back, ok := gokernels.FromDataType(got)
		if !ok || back != test.p {
			t.Errorf("FromDataType(%v) = %s, %t but want %s", got, back, ok, test.p)
		}
	}
}

func TestRegister(t *testing.T) {
	_, reg := newRegistry(t)
	want := []string{"Add", "Cast", "Concat", "Div", "Identity", "MatMul", "Mul", "Relu", "Reshape", "Sub"}
	if diff := cmp.Diff(want, reg.Operators()); diff != "" {
		t.Errorf("unexpected operators: (-want +got):\n%s", diff)
	}
	add := reg.Lookup("Add")[0]
	if diff := cmp.Diff([]kernels.Pair{{Input: 0, Output: 0}}, add.Inplace()); diff != "" {
		t.Errorf("unexpected in-place pairs for Add: (-want +got):\n%s", diff)
	}
	reshape := reg.Lookup("Reshape")[0]
	if len(reshape.Alias()) != 1 || !reshape.IsHostMemory(1, true) {
		t.Errorf("unexpected definition for Reshape: alias=%v host=%v", reshape.Alias(), reshape.HostMemory())
	}
	// Registering the kernels twice is ambiguous.
	if err := gokernels.Register(reg); err == nil {
		t.Errorf("expected an error when registering the kernels twice")
	}
}

func TestBinary(t *testing.T) {
	x := array(t, []float32{1, 2, 3}, 3)
	y := array(t, []float32{4, 5, 6}, 3)
	checkArray(t, compute(t, "Add", nil, x, y), []float32{5, 7, 9}, 3)
	checkArray(t, compute(t, "Sub", nil, x, y), []float32{-3, -3, -3}, 3)
	checkArray(t, compute(t, "Mul", nil, x, gokernels.Scalar[float32](2)), []float32{2, 4, 6}, 3)
	checkArray(t, compute(t, "Div", nil, gokernels.Scalar[float32](6), x), []float32{6, 3, 2}, 3)

	i := array(t, []int64{7, 9}, 2)
	checkArray(t, compute(t, "Div", nil, i, array(t, []int64{2, 3}, 2)), []int64{3, 3}, 2)
}

func TestBinaryErrors(t *testing.T) {
	x := array(t, []int32{1, 2}, 2)
	zero := array(t, []int32{1, 0}, 2)
	if _, err := newKernel(t, "Div", nil, x, zero).Compute([]gokernels.Array{x, zero}); err == nil || !strings.Contains(err.Error(), "division by zero") {
		t.Errorf("got error %v but want a division by zero", err)
	}
	y := array(t, []int32{1, 2, 3}, 3)
	if _, err := newKernel(t, "Add", nil, x, y).Compute([]gokernels.Array{x, y}); err == nil {
		t.Errorf("expected an error when adding arrays of different shapes")
	}
	if _, err := newKernel(t, "Add", nil, x, x).Compute([]gokernels.Array{x}); err == nil {
		t.Errorf("expected an error for a missing input")
	}
}

func TestRelu(t *testing.T) {
	x := array(t, []float64{-1, 0, 2.5, -0.5}, 2, 2)
	checkArray(t, compute(t, "Relu", nil, x), []float64{0, 0, 2.5, 0}, 2, 2)
}

func TestIdentity(t *testing.T) {
	x := array(t, []bool{true, false}, 2)
	if got := compute(t, "Identity", nil, x); got != gokernels.Array(x) {
		t.Errorf("identity does not alias its input")
	}
}

func TestReshape(t *testing.T) {
	x := array(t, []int32{0, 1, 2, 3, 4, 5}, 2, 3)
	got := compute(t, "Reshape", nil, x, array(t, []int64{3, -1}, 2))
	checkArray(t, got, []int32{0, 1, 2, 3, 4, 5}, 3, 2)
	gotT, _ := gokernels.ToArrayT[int32](got)
	if &gotT.Flat()[0] != &x.Flat()[0] {
		t.Errorf("reshaped array does not alias its input")
	}
	got = compute(t, "Reshape", nil, x, array(t, []int64{0, 3, 1}, 3))
	checkArray(t, got, []int32{0, 1, 2, 3, 4, 5}, 2, 3, 1)

	for _, target := range [][]int64{{4, -1}, {-1, -1}, {7}, {0, 0, 0, 0}} {
		shape := array(t, target, len(target))
		if _, err := newKernel(t, "Reshape", nil, x, shape).Compute([]gokernels.Array{x, shape}); err == nil {
			t.Errorf("expected an error when reshaping [2 3] to %v", target)
		}
	}
}

func TestCast(t *testing.T) {
	x := array(t, []float32{1.5, -2, 3}, 3)
	got := compute(t, "Cast", schema.Attributes{"to": cty.StringVal("int32")}, x)
	checkArray(t, got, []int32{1, -2, 3}, 3)
	if got.Type() != types.Tensor(types.Int32) {
		t.Errorf("got type %s but want int32", got.Type())
	}
}

func TestConcat(t *testing.T) {
	x := array(t, []float32{1, 2, 3, 4}, 2, 2)
	y := array(t, []float32{5, 6}, 2, 1)
	got := compute(t, "Concat", schema.Attributes{"axis": cty.NumberIntVal(1)}, x, y)
	checkArray(t, got, []float32{1, 2, 5, 3, 4, 6}, 2, 3)
	got = compute(t, "Concat", nil, x, x)
	checkArray(t, got, []float32{1, 2, 3, 4, 1, 2, 3, 4}, 4, 2)
	if _, err := newKernel(t, "Concat", nil, x, y).Compute([]gokernels.Array{x, y}); err == nil {
		t.Errorf("expected an error when concatenating incompatible shapes")
	}
}

func TestMatMul(t *testing.T) {
	x := array(t, []float64{1, 2, 3, 4, 5, 6}, 2, 3)
	y := array(t, []float64{1, 0, 0, 1, 1, 1}, 3, 2)
	checkArray(t, compute(t, "MatMul", nil, x, y), []float64{4, 5, 10, 11}, 2, 2)
}

func TestNewArrayFromRaw(t *testing.T) {
	x := array(t, []uint64{1, 2, 3, 4}, 2, 2)
	got, err := gokernels.NewArrayFromRaw(x.Buffer(), x.Shape())
	if err != nil {
		t.Fatal(err)
	}
	checkArray(t, got, []uint64{1, 2, 3, 4}, 2, 2)
	if _, err := gokernels.NewArrayFromRaw(x.Buffer()[1:], x.Shape()); err == nil {
		t.Errorf("expected an error for a buffer of the wrong size")
	}
	if _, err := gokernels.NewArray([]float32{1, 2, 3}, 2); err == nil {
		t.Errorf("expected an error for values not matching the shape")
	}
}

func TestString(t *testing.T) {
	x := array(t, []float32{1, 0.5, 3}, 3)
	if got, want := x.String(), "[3]float{1, 0.5, 3}"; got != want {
		t.Errorf("got %q but want %q", got, want)
	}
}

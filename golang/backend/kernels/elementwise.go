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

package kernels

import (
	"slices"

	"github.com/gx-org/backend/dtype"
	"github.com/gx-org/graphrt/kernels"
	"github.com/gx-org/graphrt/types"
	"github.com/pkg/errors"
)

type algebra interface {
	dtype.Float | dtype.IntegerType
}

func isFloat[T algebra]() bool {
	var x T
	switch any(x).(type) {
	case float32, float64:
		return true
	}
	return false
}

// forAlgebra calls the instance of a generic function matching an element type.
func forAlgebra[R any](elem types.Primitive, f32, f64 func() (R, error), i32, i64, u32, u64 func() (R, error)) (R, error) {
	fs := map[types.Primitive]func() (R, error){
		types.Float32: f32,
		types.Float64: f64,
		types.Int32:   i32,
		types.Int64:   i64,
		types.Uint32:  u32,
		types.Uint64:  u64,
	}
	f := fs[elem]
	if f == nil {
		var zero R
		return zero, errors.Errorf("element type %s not supported", elem)
	}
	return f()
}

func binaryFunc[T algebra](op string) (func(x, y T) (T, error), error) {
	switch op {
	case "Add":
		return func(x, y T) (T, error) { return x + y, nil }, nil
	case "Sub":
		return func(x, y T) (T, error) { return x - y, nil }, nil
	case "Mul":
		return func(x, y T) (T, error) { return x * y, nil }, nil
	case "Div":
		integer := !isFloat[T]()
		return func(x, y T) (T, error) {
			if integer && y == 0 {
				return 0, errors.Errorf("integer division by zero")
			}
			return x / y, nil
		}, nil
	}
	return nil, errors.Errorf("binary operator %s not supported", op)
}

// elementwise applies a function to the elements of two arrays.
// Arrays have the same shape or one of them is atomic.
func elementwise[T algebra](x, y *ArrayT[T], f func(x, y T) (T, error)) (*ArrayT[T], error) {
	var dims []int
	switch {
	case slices.Equal(x.shape.AxisLengths, y.shape.AxisLengths):
		dims = x.shape.AxisLengths
	case y.shape.IsAtomic():
		dims = x.shape.AxisLengths
	case x.shape.IsAtomic():
		dims = y.shape.AxisLengths
	default:
		return nil, errors.Errorf("cannot broadcast %s and %s", x.shape.String(), y.shape.String())
	}
	out := newZeroArray[T](dims)
	xStep, yStep := 1, 1
	if len(x.values) == 1 {
		xStep = 0
	}
	if len(y.values) == 1 {
		yStep = 0
	}
	for i := range out.values {
		v, err := f(x.values[i*xStep], y.values[i*yStep])
		if err != nil {
			return nil, errors.WithMessagef(err, "element %d", i)
		}
		out.values[i] = v
	}
	return out, nil
}

func binary[T algebra](op string) func() (Compute, error) {
	return func() (Compute, error) {
		f, err := binaryFunc[T](op)
		if err != nil {
			return nil, err
		}
		return func(inputs []Array) ([]Array, error) {
			x, err := ToArrayT[T](inputs[0])
			if err != nil {
				return nil, err
			}
			y, err := ToArrayT[T](inputs[1])
			if err != nil {
				return nil, err
			}
			out, err := elementwise(x, y, f)
			if err != nil {
				return nil, errors.WithMessage(err, op)
			}
			return []Array{out}, nil
		}, nil
	}
}

func newBinary(op string) newCompute {
	return func(_ *kernels.Info, elem types.Primitive) (Compute, error) {
		return forAlgebra(elem,
			binary[float32](op), binary[float64](op),
			binary[int32](op), binary[int64](op),
			binary[uint32](op), binary[uint64](op),
		)
	}
}

func relu[T dtype.Float](inputs []Array) ([]Array, error) {
	x, err := ToArrayT[T](inputs[0])
	if err != nil {
		return nil, err
	}
	out := newZeroArray[T](x.shape.AxisLengths)
	for i, v := range x.values {
		out.values[i] = max(v, 0)
	}
	return []Array{out}, nil
}

func newRelu(_ *kernels.Info, elem types.Primitive) (Compute, error) {
	switch elem {
	case types.Float32:
		return relu[float32], nil
	case types.Float64:
		return relu[float64], nil
	}
	return nil, errors.Errorf("Relu: element type %s not supported", elem)
}

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
	"github.com/zclconf/go-cty/cty/gocty"
)

type dimsSetter interface {
	withDims(dims []int) Array
}

func (a *ArrayT[T]) withDims(dims []int) Array {
	return a.reshape(dims)
}

func newIdentity(*kernels.Info, types.Primitive) (Compute, error) {
	return func(inputs []Array) ([]Array, error) {
		return []Array{inputs[0]}, nil
	}, nil
}

// reshapeDims computes the axis lengths of a reshaped array.
// A 0 keeps the axis length of the input at the same position and
// a -1 is inferred from the size of the input.
func reshapeDims(in []int, target []int64) ([]int, error) {
	size := 1
	for _, d := range in {
		size *= d
	}
	dims := make([]int, len(target))
	inferred := -1
	known := 1
	for i, d := range target {
		switch {
		case d == -1:
			if inferred >= 0 {
				return nil, errors.Errorf("more than one axis length to infer in %v", target)
			}
			inferred = i
			continue
		case d == 0:
			if i >= len(in) {
				return nil, errors.Errorf("cannot copy axis %d of an array of rank %d", i, len(in))
			}
			dims[i] = in[i]
		case d < 0:
			return nil, errors.Errorf("invalid axis length %d", d)
		default:
			dims[i] = int(d)
		}
		known *= dims[i]
	}
	if inferred >= 0 {
		if known == 0 || size%known != 0 {
			return nil, errors.Errorf("cannot infer axis %d to reshape %v to %v", inferred, in, target)
		}
		dims[inferred] = size / known
		known *= dims[inferred]
	}
	if known != size {
		return nil, errors.Errorf("cannot reshape %v (size %d) to %v (size %d)", in, size, dims, known)
	}
	return dims, nil
}

func newReshape(*kernels.Info, types.Primitive) (Compute, error) {
	return func(inputs []Array) ([]Array, error) {
		target, err := ToArrayT[int64](inputs[1])
		if err != nil {
			return nil, errors.WithMessage(err, "Reshape shape")
		}
		if len(target.shape.AxisLengths) != 1 {
			return nil, errors.Errorf("Reshape: shape %s is not a vector", target.shape.String())
		}
		dims, err := reshapeDims(inputs[0].Shape().AxisLengths, target.values)
		if err != nil {
			return nil, errors.WithMessage(err, "Reshape")
		}
		return []Array{inputs[0].(dimsSetter).withDims(dims)}, nil
	}, nil
}

// intAttribute returns the value of an integer attribute or a default value if the attribute is absent.
func intAttribute(info *kernels.Info, name string, def int) (int, error) {
	val, ok := info.Attribute(name)
	if !ok || val.IsNull() {
		return def, nil
	}
	var i int
	if err := gocty.FromCtyValue(val, &i); err != nil {
		return 0, errors.Wrapf(err, "attribute %s of type %s", name, val.Type().FriendlyName())
	}
	return i, nil
}

func concat[T dtype.GoDataType](axis int) Compute {
	return func(inputs []Array) ([]Array, error) {
		if len(inputs) == 0 {
			return nil, errors.Errorf("Concat: no input")
		}
		xs := make([]*ArrayT[T], len(inputs))
		for i, in := range inputs {
			x, err := ToArrayT[T](in)
			if err != nil {
				return nil, err
			}
			xs[i] = x
		}
		first := xs[0].shape.AxisLengths
		rank := len(first)
		ax := axis
		if ax < 0 {
			ax += rank
		}
		if ax < 0 || ax >= rank {
			return nil, errors.Errorf("Concat: axis %d out of range for rank %d", axis, rank)
		}
		dims := slices.Clone(first)
		dims[ax] = 0
		for i, x := range xs {
			xDims := x.shape.AxisLengths
			if len(xDims) != rank {
				return nil, errors.Errorf("Concat: input %d has rank %d but want %d", i, len(xDims), rank)
			}
			for d := range rank {
				if d != ax && xDims[d] != first[d] {
					return nil, errors.Errorf("Concat: input %d has shape %v incompatible with %v", i, xDims, first)
				}
			}
			dims[ax] += xDims[ax]
		}
		outer := 1
		for _, d := range first[:ax] {
			outer *= d
		}
		out := newZeroArray[T](dims)
		pos := 0
		for o := range outer {
			for _, x := range xs {
				chunk := len(x.values) / max(outer, 1)
				pos += copy(out.values[pos:], x.values[o*chunk:(o+1)*chunk])
			}
		}
		return []Array{out}, nil
	}
}

func newConcat(info *kernels.Info, elem types.Primitive) (Compute, error) {
	axis, err := intAttribute(info, "axis", 0)
	if err != nil {
		return nil, errors.WithMessage(err, "Concat")
	}
	switch elem {
	case types.Bool:
		return concat[bool](axis), nil
	case types.Float32:
		return concat[float32](axis), nil
	case types.Float64:
		return concat[float64](axis), nil
	case types.Int32:
		return concat[int32](axis), nil
	case types.Int64:
		return concat[int64](axis), nil
	case types.Uint32:
		return concat[uint32](axis), nil
	case types.Uint64:
		return concat[uint64](axis), nil
	}
	return nil, errors.Errorf("Concat: element type %s not supported", elem)
}

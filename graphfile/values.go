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

package graphfile

import (
	"github.com/gx-org/backend/dtype"
	gokernels "github.com/gx-org/graphrt/golang/backend/kernels"
	"github.com/gx-org/graphrt/types"
	"github.com/pkg/errors"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"
)

// flatten returns the leaves of nested lists or tuples in row-major order.
func flatten(val cty.Value) ([]cty.Value, error) {
	if val.IsNull() || !val.IsKnown() {
		return nil, errors.Errorf("values are null or unknown")
	}
	if !val.CanIterateElements() || val.Type().IsMapType() || val.Type().IsObjectType() {
		return []cty.Value{val}, nil
	}
	var leaves []cty.Value
	for it := val.ElementIterator(); it.Next(); {
		_, elem := it.Element()
		sub, err := flatten(elem)
		if err != nil {
			return nil, err
		}
		leaves = append(leaves, sub...)
	}
	return leaves, nil
}

func fromCty[T dtype.GoDataType](leaves []cty.Value, dims []int) (gokernels.Array, error) {
	values := make([]T, len(leaves))
	for i, leaf := range leaves {
		if err := gocty.FromCtyValue(leaf, &values[i]); err != nil {
			return nil, errors.Wrapf(err, "value %d", i)
		}
	}
	return gokernels.NewArray(values, dims...)
}

// toArray converts values read from a file into an array.
func toArray(typ *types.Type, dims []int, val cty.Value) (gokernels.Array, error) {
	if typ.Kind() != types.TensorKind {
		return nil, errors.Errorf("cannot declare values of type %s: not a dense tensor", typ)
	}
	leaves, err := flatten(val)
	if err != nil {
		return nil, err
	}
	switch typ.Elem() {
	case types.Bool:
		return fromCty[bool](leaves, dims)
	case types.Float32:
		return fromCty[float32](leaves, dims)
	case types.Float64:
		return fromCty[float64](leaves, dims)
	case types.Int32:
		return fromCty[int32](leaves, dims)
	case types.Int64:
		return fromCty[int64](leaves, dims)
	case types.Uint32:
		return fromCty[uint32](leaves, dims)
	case types.Uint64:
		return fromCty[uint64](leaves, dims)
	}
	return nil, errors.Errorf("cannot declare values of type %s: element type not supported", typ)
}

func toCty[T dtype.GoDataType](a gokernels.Array, elem cty.Type) (cty.Value, error) {
	aT, err := gokernels.ToArrayT[T](a)
	if err != nil {
		return cty.NilVal, err
	}
	if len(aT.Flat()) == 0 {
		return cty.ListValEmpty(elem), nil
	}
	return gocty.ToCtyValue(aT.Flat(), cty.List(elem))
}

// fromArray converts an array into a flat list of values.
func fromArray(a gokernels.Array) (cty.Value, error) {
	switch a.Shape().DType {
	case dtype.Bool:
		return toCty[bool](a, cty.Bool)
	case dtype.Float32:
		return toCty[float32](a, cty.Number)
	case dtype.Float64:
		return toCty[float64](a, cty.Number)
	case dtype.Int32:
		return toCty[int32](a, cty.Number)
	case dtype.Int64:
		return toCty[int64](a, cty.Number)
	case dtype.Uint32:
		return toCty[uint32](a, cty.Number)
	case dtype.Uint64:
		return toCty[uint64](a, cty.Number)
	}
	return cty.NilVal, errors.Errorf("cannot write values of %s", a.Shape().DType.String())
}

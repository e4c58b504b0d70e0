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
	"github.com/gx-org/graphrt/kernels"
	"github.com/gx-org/graphrt/types"
	"github.com/pkg/errors"
)

func castArray[T, U algebra]() (Compute, error) {
	return func(inputs []Array) ([]Array, error) {
		x, err := ToArrayT[T](inputs[0])
		if err != nil {
			return nil, err
		}
		out := newZeroArray[U](x.shape.AxisLengths)
		for i, v := range x.values {
			out.values[i] = U(v)
		}
		return []Array{out}, nil
	}, nil
}

func castFrom[T algebra](target types.Primitive) func() (Compute, error) {
	return func() (Compute, error) {
		return forAlgebra(target,
			castArray[T, float32], castArray[T, float64],
			castArray[T, int32], castArray[T, int64],
			castArray[T, uint32], castArray[T, uint64],
		)
	}
}

func newCast(info *kernels.Info, elem types.Primitive) (Compute, error) {
	out := info.OutputType(0)
	if out == nil || out.Kind() != types.TensorKind {
		return nil, errors.Errorf("Cast: cannot cast to %s", out)
	}
	to := out.Elem()
	return forAlgebra(elem,
		castFrom[float32](to), castFrom[float64](to),
		castFrom[int32](to), castFrom[int64](to),
		castFrom[uint32](to), castFrom[uint64](to),
	)
}

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
	"github.com/gx-org/backend/dtype"
	"github.com/gx-org/graphrt/kernels"
	"github.com/gx-org/graphrt/types"
	"github.com/pkg/errors"
)

// matmul multiplies two matrices.
func matmul[T dtype.Float](inputs []Array) ([]Array, error) {
	x, err := ToArrayT[T](inputs[0])
	if err != nil {
		return nil, err
	}
	y, err := ToArrayT[T](inputs[1])
	if err != nil {
		return nil, err
	}
	xDims, yDims := x.shape.AxisLengths, y.shape.AxisLengths
	if len(xDims) != 2 || len(yDims) != 2 {
		return nil, errors.Errorf("MatMul: %s and %s are not matrices", x.shape.String(), y.shape.String())
	}
	m, k, n := xDims[0], xDims[1], yDims[1]
	if yDims[0] != k {
		return nil, errors.Errorf("MatMul: cannot multiply %v by %v", xDims, yDims)
	}
	out := newZeroArray[T]([]int{m, n})
	for i := range m {
		row := x.values[i*k : (i+1)*k]
		for j := range n {
			var sum T
			for l, v := range row {
				sum += v * y.values[l*n+j]
			}
			out.values[i*n+j] = sum
		}
	}
	return []Array{out}, nil
}

func newMatMul(_ *kernels.Info, elem types.Primitive) (Compute, error) {
	switch elem {
	case types.Float32:
		return matmul[float32], nil
	case types.Float64:
		return matmul[float64], nil
	}
	return nil, errors.Errorf("MatMul: element type %s not supported", elem)
}

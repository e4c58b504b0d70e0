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
	"github.com/gx-org/graphrt/types"
)

var (
	toDataType = map[types.Primitive]dtype.DataType{
		types.Bool:    dtype.Bool,
		types.Float32: dtype.Float32,
		types.Float64: dtype.Float64,
		types.Int32:   dtype.Int32,
		types.Int64:   dtype.Int64,
		types.Uint32:  dtype.Uint32,
		types.Uint64:  dtype.Uint64,
	}

	fromDataType = func() map[dtype.DataType]types.Primitive {
		m := make(map[dtype.DataType]types.Primitive, len(toDataType))
		for p, dt := range toDataType {
			m[dt] = p
		}
		return m
	}()
)

// ToDataType returns the data type storing the elements of a primitive type.
// It returns false if the Go backend does not support the primitive type.
func ToDataType(p types.Primitive) (dtype.DataType, bool) {
	dt, ok := toDataType[p]
	return dt, ok
}

// FromDataType returns the primitive type of a data type.
func FromDataType(dt dtype.DataType) (types.Primitive, bool) {
	p, ok := fromDataType[dt]
	return p, ok
}

func tensorsOf(ps ...types.Primitive) []*types.Type {
	tps := make([]*types.Type, len(ps))
	for i, p := range ps {
		tps[i] = types.Tensor(p)
	}
	return tps
}

var (
	floats   = tensorsOf(types.Float32, types.Float64)
	numerics = tensorsOf(types.Float32, types.Float64, types.Int32, types.Int64, types.Uint32, types.Uint64)
	all      = tensorsOf(types.Bool, types.Float32, types.Float64, types.Int32, types.Int64, types.Uint32, types.Uint64)
)

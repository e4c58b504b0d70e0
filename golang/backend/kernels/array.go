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
	"unsafe"

	"github.com/gx-org/backend/dtype"
	"github.com/gx-org/backend/shape"
	"github.com/gx-org/graphrt/base/fmtarray"
	"github.com/gx-org/graphrt/types"
	"github.com/pkg/errors"
)

type (
	// Array is a tensor stored in Go memory.
	Array interface {
		// Shape returns the element type and the axis lengths of the array.
		Shape() *shape.Shape

		// Type returns the tensor type of the array.
		Type() *types.Type

		// Buffer returns the data of the array as a generic []byte buffer.
		Buffer() []byte

		// String representation of the array.
		String() string
	}

	// ArrayT is an array of Go values.
	ArrayT[T dtype.GoDataType] struct {
		shape  shape.Shape
		values []T
	}
)

var _ Array = (*ArrayT[float32])(nil)

// NewArray returns an array given its flat values and its axis lengths.
// The array uses the slice of values as storage.
func NewArray[T dtype.GoDataType](values []T, dims ...int) (*ArrayT[T], error) {
	sh := shape.Shape{DType: dtype.Generic[T](), AxisLengths: slices.Clone(dims)}
	if sh.Size() != len(values) {
		return nil, errors.Errorf("got %d values for shape %s of size %d", len(values), sh.String(), sh.Size())
	}
	return &ArrayT[T]{shape: sh, values: values}, nil
}

// Scalar returns an atomic array.
func Scalar[T dtype.GoDataType](v T) *ArrayT[T] {
	return &ArrayT[T]{
		shape:  shape.Shape{DType: dtype.Generic[T]()},
		values: []T{v},
	}
}

func newZeroArray[T dtype.GoDataType](dims []int) *ArrayT[T] {
	sh := shape.Shape{DType: dtype.Generic[T](), AxisLengths: slices.Clone(dims)}
	return &ArrayT[T]{shape: sh, values: make([]T, sh.Size())}
}

// Shape of the array.
func (a *ArrayT[T]) Shape() *shape.Shape {
	return &a.shape
}

// Type returns the tensor type of the array.
func (a *ArrayT[T]) Type() *types.Type {
	p, ok := FromDataType(a.shape.DType)
	if !ok {
		return nil
	}
	return types.Tensor(p)
}

// Flat values of the array.
func (a *ArrayT[T]) Flat() []T {
	return a.values
}

// Buffer returns the data of the array as a generic []byte buffer.
func (a *ArrayT[T]) Buffer() []byte {
	if len(a.values) == 0 {
		return nil
	}
	ptr := unsafe.Pointer(&(a.values[0]))
	return unsafe.Slice((*byte)(ptr), len(a.values)*dtype.Sizeof(a.shape.DType))
}

// String representation of the array.
func (a *ArrayT[T]) String() string {
	return fmtarray.SprintN(a.values, a.shape.AxisLengths, maxPrintedValues)
}

// maxPrintedValues is the maximum number of values printed per innermost vector.
const maxPrintedValues = 16

// ToAtom returns the value of an atomic array.
func (a *ArrayT[T]) ToAtom() (T, error) {
	if !a.shape.IsAtomic() {
		var zero T
		return zero, errors.Errorf("%s not atomic", a.shape.String())
	}
	return a.values[0], nil
}

// reshape returns an array sharing the values of the array with different axis lengths.
func (a *ArrayT[T]) reshape(dims []int) *ArrayT[T] {
	return &ArrayT[T]{
		shape:  shape.Shape{DType: a.shape.DType, AxisLengths: dims},
		values: a.values,
	}
}

// ToArrayT converts an array to an array of Go values.
func ToArrayT[T dtype.GoDataType](a Array) (*ArrayT[T], error) {
	aT, ok := a.(*ArrayT[T])
	if !ok {
		return nil, errors.Errorf("cannot convert array of %s to %s", a.Shape().DType.String(), dtype.Generic[T]().String())
	}
	return aT, nil
}

// Zero returns an array of zeros given a shape.
func Zero(sh *shape.Shape) (Array, error) {
	switch sh.DType {
	case dtype.Bool:
		return newZeroArray[bool](sh.AxisLengths), nil
	case dtype.Float32:
		return newZeroArray[float32](sh.AxisLengths), nil
	case dtype.Float64:
		return newZeroArray[float64](sh.AxisLengths), nil
	case dtype.Int32:
		return newZeroArray[int32](sh.AxisLengths), nil
	case dtype.Int64:
		return newZeroArray[int64](sh.AxisLengths), nil
	case dtype.Uint32:
		return newZeroArray[uint32](sh.AxisLengths), nil
	case dtype.Uint64:
		return newZeroArray[uint64](sh.AxisLengths), nil
	}
	return nil, errors.Errorf("cannot allocate an array of %s", sh.DType.String())
}

func fromRaw[T dtype.GoDataType](data []byte, sh *shape.Shape) Array {
	values := slices.Clone(dtype.ToSlice[T](data))
	return &ArrayT[T]{shape: shape.Shape{DType: sh.DType, AxisLengths: slices.Clone(sh.AxisLengths)}, values: values}
}

// NewArrayFromRaw returns a new array from raw data. The data is copied.
func NewArrayFromRaw(data []byte, sh *shape.Shape) (Array, error) {
	if len(data) != sh.ByteSize() {
		return nil, errors.Errorf("buffer size is %d but shape specify a buffer size of %d", len(data), sh.ByteSize())
	}
	switch sh.DType {
	case dtype.Bool:
		return fromRaw[bool](data, sh), nil
	case dtype.Float32:
		return fromRaw[float32](data, sh), nil
	case dtype.Float64:
		return fromRaw[float64](data, sh), nil
	case dtype.Int32:
		return fromRaw[int32](data, sh), nil
	case dtype.Int64:
		return fromRaw[int64](data, sh), nil
	case dtype.Uint32:
		return fromRaw[uint32](data, sh), nil
	case dtype.Uint64:
		return fromRaw[uint64](data, sh), nil
	}
	return nil, errors.Errorf("cannot create an array from raw data: %s not supported", sh.DType.String())
}

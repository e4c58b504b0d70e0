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

// Package fmtarray formats the values of tensors.
package fmtarray

import (
	"fmt"
	"strings"

	"github.com/gx-org/backend/dtype"
	"github.com/gx-org/graphrt/types"
	"github.com/pkg/errors"
)

// ElemName returns the canonical name of the element type of a tensor of Go values.
func ElemName[T dtype.GoDataType]() string {
	var x T
	switch any(x).(type) {
	case bool:
		return types.Bool.String()
	case float32:
		return types.Float32.String()
	case float64:
		return types.Float64.String()
	case int32:
		return types.Int32.String()
	case int64:
		return types.Int64.String()
	case uint32:
		return types.Uint32.String()
	case uint64:
		return types.Uint64.String()
	}
	return dtype.Generic[T]().String()
}

type printer[T dtype.GoDataType] struct {
	w       strings.Builder
	data    []T
	axes    []int
	strides []int
	// maxVector is the maximum number of values printed per vector, 0 for no limit.
	maxVector int
}

func newPrinter[T dtype.GoDataType](data []T, axes []int, maxVector int) (*printer[T], error) {
	p := &printer[T]{
		data:      data,
		axes:      axes,
		strides:   strides(axes),
		maxVector: maxVector,
	}
	total := 1
	for _, size := range axes {
		total *= size
	}
	if total != len(data) {
		return nil, errors.Errorf("len(data)=%d does not match axes %v=%d", len(data), axes, total)
	}
	return p, nil
}

func strides(axes []int) []int {
	st := make([]int, len(axes))
	for i := range st {
		st[i] = 1
		for _, d := range axes[i+1:] {
			st[i] *= d
		}
	}
	return st
}

func formatValue[T dtype.GoDataType](x T) string {
	var s string
	switch v := any(x).(type) {
	case float32:
		s = fmt.Sprintf("%.6f", v)
	case float64:
		s = fmt.Sprintf("%.10f", v)
	default:
		return fmt.Sprint(x)
	}
	if strings.ContainsRune(s, '.') {
		s = strings.TrimRight(s, "0")
		s = strings.TrimSuffix(s, ".")
	}
	return s
}

func (p *printer[T]) offset(pos []int) int {
	var off int
	for i, v := range pos {
		off += p.strides[i] * v
	}
	return off
}

func (p *printer[T]) vector(pos []int) {
	size := p.axes[len(p.axes)-1]
	shown := size
	if p.maxVector > 0 && size > p.maxVector {
		shown = p.maxVector
	}
	start := p.offset(append(pos, 0))
	vals := make([]string, 0, shown+1)
	for i := range shown {
		vals = append(vals, formatValue(p.data[start+i]))
	}
	if shown < size {
		vals = append(vals, "...")
	}
	p.w.WriteString("{" + strings.Join(vals, ", ") + "}")
}

func (p *printer[T]) tensor(indent string, pos []int) {
	if len(pos) == len(p.axes)-1 {
		p.vector(pos)
		return
	}
	p.w.WriteString("{\n")
	for i := range p.axes[len(pos)] {
		p.w.WriteString(indent + "\t")
		p.tensor(indent+"\t", append(pos, i))
		p.w.WriteString(",\n")
	}
	p.w.WriteString(indent + "}")
}

func (p *printer[T]) values() {
	if len(p.axes) == 0 {
		p.w.WriteString("(" + formatValue(p.data[0]) + ")")
		return
	}
	p.tensor("", nil)
}

func (p *printer[T]) header() {
	for _, size := range p.axes {
		fmt.Fprintf(&p.w, "[%d]", size)
	}
	p.w.WriteString(ElemName[T]())
}

// Sprint returns a string representation of a tensor: its shape, its element type, and its values.
func Sprint[T dtype.GoDataType](data []T, axes []int) string {
	return SprintN(data, axes, 0)
}

// SprintN is like Sprint but prints at most maxVector values for each vector
// of the innermost axis. All the values are printed if maxVector is 0.
func SprintN[T dtype.GoDataType](data []T, axes []int, maxVector int) string {
	p, err := newPrinter(data, axes, maxVector)
	if err != nil {
		return err.Error()
	}
	p.header()
	p.values()
	return p.w.String()
}

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

package fmtarray_test

import (
	"strings"
	"testing"

	"github.com/gx-org/graphrt/base/fmtarray"
)

func sequence(axes []int) []int32 {
	total := int32(1)
	for _, size := range axes {
		total *= int32(size)
	}
	data := make([]int32, total)
	for i := range total {
		data[i] = i
	}
	return data
}

func TestSprint(t *testing.T) {
	tests := []struct {
		axes []int
		want string
	}{
		{
			want: "int32(0)",
		},
		{
			axes: []int{6},
			want: "[6]int32{0, 1, 2, 3, 4, 5}",
		},
		{
			axes: []int{2, 3},
			want: `
[2][3]int32{
	{0, 1, 2},
	{3, 4, 5},
}
`,
		},
		{
			axes: []int{2, 2, 2},
			want: `
[2][2][2]int32{
	{
		{0, 1},
		{2, 3},
	},
	{
		{4, 5},
		{6, 7},
	},
}
`,
		},
	}
	for i, test := range tests {
		got := fmtarray.Sprint(sequence(test.axes), test.axes)
		want := strings.TrimSpace(test.want)
		if got != want {
			t.Errorf("test %d: incorrect output:\ngot:\n%s\nwant:\n%s", i, got, want)
		}
	}
}

func TestSprintFloat(t *testing.T) {
	got := fmtarray.Sprint([]float32{1, 0.5, -2.25}, []int{3})
	if want := "[3]float{1, 0.5, -2.25}"; got != want {
		t.Errorf("got %q but want %q", got, want)
	}
	got = fmtarray.Sprint([]float64{0.1}, nil)
	if want := "double(0.1)"; got != want {
		t.Errorf("got %q but want %q", got, want)
	}
}

func TestSprintN(t *testing.T) {
	got := fmtarray.SprintN(sequence([]int{10}), []int{10}, 3)
	if want := "[10]int32{0, 1, 2, ...}"; got != want {
		t.Errorf("got %q but want %q", got, want)
	}
}

func TestSprintMismatch(t *testing.T) {
	got := fmtarray.Sprint([]int32{1, 2, 3}, []int{2})
	if !strings.Contains(got, "does not match") {
		t.Errorf("got %q but want an error message", got)
	}
}

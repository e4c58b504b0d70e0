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
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/gx-org/graphrt/types"
)

type (
	// Pair maps an input of a kernel to one of its outputs.
	Pair struct {
		Input, Output int
	}

	// HostArg is an argument of a kernel located in host memory
	// instead of the memory of the execution target.
	HostArg struct {
		Index   int
		IsInput bool
	}

	// Def describes a kernel: the operator it implements, its execution target,
	// the types it supports, and how it uses the memory of its arguments.
	// A definition is immutable once built.
	Def struct {
		op          string
		provider    Provider
		constraints map[string][]*types.Type
		inplace     []Pair
		alias       []Pair
		hostMemory  []HostArg
	}
)

func (p Pair) String() string {
	return fmt.Sprintf("(%d,%d)", p.Input, p.Output)
}

func (a HostArg) String() string {
	if a.IsInput {
		return fmt.Sprintf("input %d", a.Index)
	}
	return fmt.Sprintf("output %d", a.Index)
}

// Op returns the name of the operator implemented by the kernel.
func (d *Def) Op() string {
	return d.op
}

// Provider returns the execution target of the kernel.
func (d *Def) Provider() Provider {
	return d.provider
}

// Params returns the sorted names of the type parameters constrained by the kernel.
func (d *Def) Params() []string {
	return slices.Sorted(maps.Keys(d.constraints))
}

// TypeConstraint returns the types supported for a type parameter,
// nil if the kernel does not constrain the parameter.
func (d *Def) TypeConstraint(param string) []*types.Type {
	return slices.Clone(d.constraints[param])
}

// Accepts returns true if the kernel supports a type for a type parameter.
func (d *Def) Accepts(param string, typ *types.Type) bool {
	allowed, ok := d.constraints[param]
	if !ok {
		return true
	}
	return slices.Contains(allowed, typ)
}

// Inplace returns the pairs of arguments for which the output reuses the buffer of the input.
func (d *Def) Inplace() []Pair {
	return slices.Clone(d.inplace)
}

// Alias returns the pairs of arguments for which the output is an alias of the input.
// Unlike in-place pairs, the content of the input is not modified.
func (d *Def) Alias() []Pair {
	return slices.Clone(d.alias)
}

// HostMemory returns the arguments the kernel reads or writes in host memory.
func (d *Def) HostMemory() []HostArg {
	return slices.Clone(d.hostMemory)
}

// IsHostMemory returns true if an argument of the kernel is in host memory.
func (d *Def) IsHostMemory(index int, isInput bool) bool {
	return slices.Contains(d.hostMemory, HostArg{Index: index, IsInput: isInput})
}

// overlaps returns true if a node could be dispatched to both definitions:
// same execution target and, for every type parameter constrained by both,
// at least one type supported by both.
func (d *Def) overlaps(other *Def) bool {
	if d.op != other.op || d.provider != other.provider {
		return false
	}
	for param, allowed := range d.constraints {
		otherAllowed, ok := other.constraints[param]
		if !ok {
			continue
		}
		if !slices.ContainsFunc(allowed, func(tp *types.Type) bool {
			return slices.Contains(otherAllowed, tp)
		}) {
			return false
		}
	}
	return true
}

func (d *Def) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s[%s]", d.op, d.provider)
	for _, param := range d.Params() {
		tps := make([]string, len(d.constraints[param]))
		for i, tp := range d.constraints[param] {
			tps[i] = tp.String()
		}
		fmt.Fprintf(&b, " %s={%s}", param, strings.Join(tps, ","))
	}
	return b.String()
}

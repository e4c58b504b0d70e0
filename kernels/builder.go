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
	"strings"

	"github.com/gx-org/graphrt/types"
	"github.com/pkg/errors"
)

// ErrBuilderUsed is returned when a builder is used after it has built its definition.
var ErrBuilderUsed = errors.New("kernel definition builder already used")

// Builder accumulates the description of a kernel.
// A builder builds a single definition.
type Builder struct {
	def      Def
	built    bool
	misuses  []string
	buildErr error
}

// NewBuilder returns a builder for a kernel implementing an operator.
func NewBuilder(op string) *Builder {
	return &Builder{def: Def{
		op:          op,
		constraints: make(map[string][]*types.Type),
	}}
}

func (b *Builder) usable(method string) bool {
	if b.built {
		b.misuses = append(b.misuses, method)
		return false
	}
	return true
}

// Provider sets the execution target of the kernel.
func (b *Builder) Provider(p Provider) *Builder {
	if b.usable("Provider") {
		b.def.provider = p
	}
	return b
}

// TypeConstraint adds types supported by the kernel for a type parameter.
// The types are a restriction of the types accepted by the operator.
func (b *Builder) TypeConstraint(param string, tps ...*types.Type) *Builder {
	if !b.usable("TypeConstraint") {
		return b
	}
	if len(tps) == 0 {
		b.fail(errors.Errorf("no type given for type parameter %q", param))
		return b
	}
	for _, tp := range tps {
		if tp == nil {
			b.fail(errors.Errorf("nil type given for type parameter %q", param))
			return b
		}
		if !slices.Contains(b.def.constraints[param], tp) {
			b.def.constraints[param] = append(b.def.constraints[param], tp)
		}
	}
	return b
}

// Inplace declares that output o reuses the buffer of input i.
func (b *Builder) Inplace(i, o int) *Builder {
	if b.usable("Inplace") && b.checkPair(i, o) {
		b.def.inplace = appendUnique(b.def.inplace, Pair{Input: i, Output: o})
	}
	return b
}

// Alias declares that output o is input i, left unchanged.
func (b *Builder) Alias(i, o int) *Builder {
	if b.usable("Alias") && b.checkPair(i, o) {
		b.def.alias = appendUnique(b.def.alias, Pair{Input: i, Output: o})
	}
	return b
}

// HostMemory declares that an argument of the kernel is in host memory.
func (b *Builder) HostMemory(index int, isInput bool) *Builder {
	if !b.usable("HostMemory") {
		return b
	}
	if index < 0 {
		b.fail(errors.Errorf("invalid host memory argument index %d", index))
		return b
	}
	b.def.hostMemory = appendUnique(b.def.hostMemory, HostArg{Index: index, IsInput: isInput})
	return b
}

func (b *Builder) checkPair(i, o int) bool {
	if i < 0 || o < 0 {
		b.fail(errors.Errorf("invalid argument pair (%d,%d)", i, o))
		return false
	}
	return true
}

func (b *Builder) fail(err error) {
	if b.buildErr == nil {
		b.buildErr = err
	}
}

func appendUnique[T comparable](s []T, v T) []T {
	if slices.Contains(s, v) {
		return s
	}
	return append(s, v)
}

// Build returns the definition of the kernel.
// Build can only be called once. Calls to the builder after Build are reported
// by the next call to Build.
func (b *Builder) Build() (*Def, error) {
	if b.built {
		if len(b.misuses) > 0 {
			return nil, errors.Wrapf(ErrBuilderUsed, "kernel %s: calls after Build: %s", b.def.op, strings.Join(b.misuses, ", "))
		}
		return nil, errors.Wrapf(ErrBuilderUsed, "kernel %s", b.def.op)
	}
	b.built = true
	if b.buildErr != nil {
		return nil, errors.WithMessagef(b.buildErr, "kernel %s", b.def.op)
	}
	if b.def.op == "" {
		return nil, errors.Errorf("kernel without operator name")
	}
	if !b.def.provider.Valid() {
		return nil, errors.Errorf("kernel %s: invalid execution provider %s", b.def.op, b.def.provider)
	}
	for _, pair := range b.def.inplace {
		if slices.Contains(b.def.alias, pair) {
			return nil, &ExclusivityError{Op: b.def.op, Pair: pair}
		}
	}
	def := b.def
	b.def = Def{op: def.op}
	return &def, nil
}

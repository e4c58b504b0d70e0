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

	"github.com/gx-org/graphrt/base/fmterr"
	"github.com/gx-org/graphrt/graph"
	"github.com/gx-org/graphrt/schema"
	"github.com/pkg/errors"
)

// Match is the kernel selected for a node.
type Match struct {
	Def  *Def
	Node *graph.ResolvedNode

	factory Factory
}

// Create instantiates the kernel for the node.
func (m *Match) Create() (Kernel, error) {
	k, err := m.factory.Create(&Info{Def: m.Def, Node: m.Node})
	if err != nil {
		return nil, errors.WithMessagef(err, "cannot create kernel %s for %s", m.Def, m.Node.Ref())
	}
	return k, nil
}

// bindings returns the type bound to each type parameter by the arguments of a node.
func bindings(sch *schema.Schema, node *graph.ResolvedNode) []Binding {
	var bs []Binding
	bind := func(formal schema.Formal, ok bool, arg graph.Arg) {
		if !ok || formal.TypeParam == "" || arg.Type == nil {
			return
		}
		if slices.ContainsFunc(bs, func(b Binding) bool { return b.Param == formal.TypeParam }) {
			return
		}
		bs = append(bs, Binding{Param: formal.TypeParam, Type: arg.Type})
	}
	for i, arg := range node.Inputs {
		formal, ok := sch.InputFormal(i)
		bind(formal, ok, arg)
	}
	for i, arg := range node.Outputs {
		formal, ok := sch.OutputFormal(i)
		bind(formal, ok, arg)
	}
	slices.SortFunc(bs, func(a, b Binding) int { return strings.Compare(a.Param, b.Param) })
	return bs
}

func accepts(def *Def, bs []Binding) bool {
	for _, b := range bs {
		if !def.Accepts(b.Param, b.Type) {
			return false
		}
	}
	return true
}

// Dispatch selects the kernel running a resolved node on an execution target.
// Dispatch never falls back to another target.
func (r *Registry) Dispatch(node *graph.ResolvedNode, target Provider) (*Match, error) {
	sch := node.Schema
	if sch == nil {
		var ok bool
		if sch, ok = r.schemas.Schema(node.Op); !ok {
			return nil, errors.Errorf("%s: unknown operator %q", node.Ref(), node.Op)
		}
	}
	bs := bindings(sch, node)
	r.mut.RLock()
	defer r.mut.RUnlock()
	var candidates, rejected []registration
	for _, reg := range r.kernels[node.Op] {
		if reg.def.provider != target {
			continue
		}
		if !accepts(reg.def, bs) {
			rejected = append(rejected, reg)
			continue
		}
		candidates = append(candidates, reg)
	}
	switch len(candidates) {
	case 0:
		err := &NoMatchingKernelError{Node: node.Ref(), Target: target, Bindings: bs}
		for _, reg := range rejected {
			err.Rejected = append(err.Rejected, reg.def)
		}
		return nil, err
	case 1:
		return &Match{Def: candidates[0].def, Node: node, factory: candidates[0].factory}, nil
	}
	err := &AmbiguousKernelError{Node: node.Ref(), Target: target}
	for _, reg := range candidates {
		err.Candidates = append(err.Candidates, reg.def)
	}
	return nil, fmterr.Internal(err)
}

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
	"sync"

	"github.com/gx-org/graphrt/graph"
	"github.com/gx-org/graphrt/schema"
	"github.com/gx-org/graphrt/types"
	"github.com/pkg/errors"
	"github.com/zclconf/go-cty/cty"
	"golang.org/x/exp/maps"
)

type (
	// Kernel is an instance of a kernel created for a node.
	Kernel interface {
		Def() *Def
	}

	// Info is given to a factory to create a kernel for a node.
	Info struct {
		Def  *Def
		Node *graph.ResolvedNode
	}

	// Factory creates kernels.
	Factory interface {
		Create(*Info) (Kernel, error)
	}

	// FactoryFunc is a function implementing Factory.
	FactoryFunc func(*Info) (Kernel, error)

	registration struct {
		def     *Def
		factory Factory
	}

	// Registry stores the kernels available for each operator.
	// A registry is populated at initialization. Dispatch can then be called concurrently.
	Registry struct {
		schemas schema.Provider

		mut     sync.RWMutex
		kernels map[string][]registration
	}
)

var _ Factory = FactoryFunc(nil)

// Create calls the function.
func (f FactoryFunc) Create(info *Info) (Kernel, error) {
	return f(info)
}

// Attribute returns the value of an attribute of the node.
func (info *Info) Attribute(name string) (cty.Value, bool) {
	v, ok := info.Node.Attributes[name]
	return v, ok
}

// InputType returns the type of the ith input of the node.
func (info *Info) InputType(i int) *types.Type {
	if i < 0 || i >= len(info.Node.Inputs) {
		return nil
	}
	return info.Node.Inputs[i].Type
}

// OutputType returns the type of the ith output of the node.
func (info *Info) OutputType(i int) *types.Type {
	if i < 0 || i >= len(info.Node.Outputs) {
		return nil
	}
	return info.Node.Outputs[i].Type
}

// NewRegistry returns an empty registry.
// Kernels registered are checked against the schemas of their operator.
func NewRegistry(schemas schema.Provider) *Registry {
	return &Registry{
		schemas: schemas,
		kernels: make(map[string][]registration),
	}
}

// Register adds a kernel to the registry.
func (r *Registry) Register(def *Def, factory Factory) error {
	if def == nil || factory == nil {
		return errors.Errorf("cannot register a kernel without definition or factory")
	}
	if err := r.checkSchema(def); err != nil {
		return err
	}
	r.mut.Lock()
	defer r.mut.Unlock()
	for _, reg := range r.kernels[def.op] {
		if reg.def.overlaps(def) {
			return &DuplicateKernelError{Def: def, Existing: reg.def}
		}
	}
	r.kernels[def.op] = append(r.kernels[def.op], registration{def: def, factory: factory})
	return nil
}

// MustRegister registers a kernel and panics on error.
func (r *Registry) MustRegister(def *Def, factory Factory) {
	if err := r.Register(def, factory); err != nil {
		panic(err)
	}
}

func (r *Registry) checkSchema(def *Def) error {
	sch, ok := r.schemas.Schema(def.op)
	if !ok {
		return errors.Errorf("cannot register kernel %s: unknown operator %q", def, def.op)
	}
	params := make(map[string]bool)
	for _, formal := range slices.Concat(sch.Inputs, sch.Outputs) {
		if formal.TypeParam != "" {
			params[formal.TypeParam] = true
		}
	}
	for _, param := range def.Params() {
		if !params[param] {
			return &ConstraintError{Def: def, Param: param, Msg: "not a type parameter of the operator"}
		}
		for _, tp := range def.constraints[param] {
			if !sch.Allows(param, tp) {
				return &ConstraintError{Def: def, Param: param, Type: tp, Msg: "not accepted by the operator"}
			}
		}
	}
	for _, pair := range slices.Concat(def.inplace, def.alias) {
		_, inOk := sch.InputFormal(pair.Input)
		_, outOk := sch.OutputFormal(pair.Output)
		if !inOk || !outOk {
			return errors.Errorf("kernel %s: argument pair %s out of range", def, pair)
		}
	}
	for _, arg := range def.hostMemory {
		var ok bool
		if arg.IsInput {
			_, ok = sch.InputFormal(arg.Index)
		} else {
			_, ok = sch.OutputFormal(arg.Index)
		}
		if !ok {
			return errors.Errorf("kernel %s: host memory %s out of range", def, arg)
		}
	}
	return nil
}

// Lookup returns the definitions of the kernels registered for an operator.
func (r *Registry) Lookup(op string) []*Def {
	r.mut.RLock()
	defer r.mut.RUnlock()
	regs := r.kernels[op]
	defs := make([]*Def, len(regs))
	for i, reg := range regs {
		defs[i] = reg.def
	}
	return defs
}

// Operators returns the sorted names of the operators with at least one kernel.
func (r *Registry) Operators() []string {
	r.mut.RLock()
	defer r.mut.RUnlock()
	ops := maps.Keys(r.kernels)
	slices.Sort(ops)
	return ops
}

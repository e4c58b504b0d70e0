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

// Package kernels implements the kernels of the Go execution target.
// Kernels run on the host and store their values in Go memory.
package kernels

import (
	"github.com/gx-org/graphrt/kernels"
	"github.com/gx-org/graphrt/types"
	"github.com/pkg/errors"
)

type (
	// Compute computes the outputs of a node given its inputs.
	Compute func(inputs []Array) ([]Array, error)

	// Kernel is a kernel of the Go backend.
	Kernel interface {
		kernels.Kernel
		// Compute the outputs of the node.
		Compute(inputs []Array) ([]Array, error)
	}

	kernel struct {
		def       *kernels.Def
		numInputs int
		compute   Compute
	}

	// newCompute returns the function computing a node given the element
	// type of its first input.
	newCompute func(info *kernels.Info, elem types.Primitive) (Compute, error)
)

func (k *kernel) Def() *kernels.Def {
	return k.def
}

func (k *kernel) Compute(inputs []Array) ([]Array, error) {
	if len(inputs) != k.numInputs {
		return nil, errors.Errorf("%s: got %d inputs but want %d", k.def.Op(), len(inputs), k.numInputs)
	}
	return k.compute(inputs)
}

func factory(newC newCompute) kernels.Factory {
	return kernels.FactoryFunc(func(info *kernels.Info) (kernels.Kernel, error) {
		in := info.InputType(0)
		if in == nil || in.Kind() != types.TensorKind {
			return nil, errors.Errorf("%s: input 0 of type %s is not a tensor", info.Node.Ref(), in)
		}
		compute, err := newC(info, in.Elem())
		if err != nil {
			return nil, errors.WithMessagef(err, "%s", info.Node.Ref())
		}
		return &kernel{def: info.Def, numInputs: len(info.Node.Inputs), compute: compute}, nil
	})
}

type registration struct {
	builder *kernels.Builder
	compute newCompute
}

func registrations() []registration {
	var regs []registration
	for _, op := range []string{"Add", "Sub", "Mul", "Div"} {
		regs = append(regs, registration{
			builder: kernels.NewBuilder(op).
				Provider(kernels.CPU).
				TypeConstraint("T", numerics...).
				Inplace(0, 0),
			compute: newBinary(op),
		})
	}
	return append(regs,
		registration{
			builder: kernels.NewBuilder("Relu").
				Provider(kernels.CPU).
				TypeConstraint("T", floats...).
				Inplace(0, 0),
			compute: newRelu,
		},
		registration{
			builder: kernels.NewBuilder("Identity").
				Provider(kernels.CPU).
				TypeConstraint("T", all...).
				Alias(0, 0),
			compute: newIdentity,
		},
		registration{
			builder: kernels.NewBuilder("Reshape").
				Provider(kernels.CPU).
				TypeConstraint("T", all...).
				Alias(0, 0).
				HostMemory(1, true),
			compute: newReshape,
		},
		registration{
			builder: kernels.NewBuilder("Cast").
				Provider(kernels.CPU).
				TypeConstraint("T1", numerics...).
				TypeConstraint("T2", numerics...),
			compute: newCast,
		},
		registration{
			builder: kernels.NewBuilder("Concat").
				Provider(kernels.CPU).
				TypeConstraint("T", all...),
			compute: newConcat,
		},
		registration{
			builder: kernels.NewBuilder("MatMul").
				Provider(kernels.CPU).
				TypeConstraint("T", floats...),
			compute: newMatMul,
		},
	)
}

// Register registers the kernels of the Go backend for the CPU execution target.
func Register(reg *kernels.Registry) error {
	for _, r := range registrations() {
		def, err := r.builder.Build()
		if err != nil {
			return err
		}
		if err := reg.Register(def, factory(r.compute)); err != nil {
			return err
		}
	}
	return nil
}

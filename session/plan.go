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

package session

import (
	"slices"

	"github.com/gx-org/graphrt/graph"
	"github.com/gx-org/graphrt/kernels"
)

type (
	// Step runs a node with its kernel.
	Step struct {
		Node   *graph.ResolvedNode
		Kernel kernels.Kernel
	}

	// Plan is the list of steps running a resolved graph.
	Plan struct {
		resolved *graph.Resolved
		target   kernels.Provider
		steps    []*Step
	}

	// BufferKind is the relation between the buffers of two arguments.
	BufferKind int

	// Buffer describes how a kernel uses the memory of an argument.
	Buffer struct {
		Node graph.NodeRef
		Kind BufferKind
		// Input and Output are the arguments sharing a buffer for in-place and alias buffers.
		Input, Output string
		// Arg is the argument in host memory for host memory buffers.
		Arg     string
		IsInput bool
	}
)

const (
	// InplaceBuffer is an output reusing the buffer of an input.
	InplaceBuffer BufferKind = iota
	// AliasBuffer is an output aliasing an input.
	AliasBuffer
	// HostBuffer is an argument stored in host memory.
	HostBuffer
)

func (k BufferKind) String() string {
	switch k {
	case InplaceBuffer:
		return "inplace"
	case AliasBuffer:
		return "alias"
	case HostBuffer:
		return "host"
	}
	return "unknown"
}

// Resolved returns the resolved graph of the plan.
func (p *Plan) Resolved() *graph.Resolved {
	return p.resolved
}

// Target returns the execution target of the kernels of the plan.
func (p *Plan) Target() kernels.Provider {
	return p.target
}

// Steps returns the steps of the plan in topological order.
func (p *Plan) Steps() []*Step {
	return slices.Clone(p.steps)
}

func argName(args []graph.Arg, i int) string {
	if i < 0 || i >= len(args) {
		return ""
	}
	return args[i].Name
}

func pairBuffers(step *Step, kind BufferKind, pairs []kernels.Pair) []Buffer {
	var bufs []Buffer
	for _, pair := range pairs {
		in := argName(step.Node.Inputs, pair.Input)
		out := argName(step.Node.Outputs, pair.Output)
		if in == "" || out == "" {
			continue
		}
		bufs = append(bufs, Buffer{Node: step.Node.Ref(), Kind: kind, Input: in, Output: out})
	}
	return bufs
}

// Buffers returns the memory metadata of the kernels of the plan for a memory planner,
// in topological order.
func (p *Plan) Buffers() []Buffer {
	var bufs []Buffer
	for _, step := range p.steps {
		def := step.Kernel.Def()
		bufs = append(bufs, pairBuffers(step, InplaceBuffer, def.Inplace())...)
		bufs = append(bufs, pairBuffers(step, AliasBuffer, def.Alias())...)
		for _, host := range def.HostMemory() {
			args := step.Node.Outputs
			if host.IsInput {
				args = step.Node.Inputs
			}
			name := argName(args, host.Index)
			if name == "" {
				continue
			}
			bufs = append(bufs, Buffer{Node: step.Node.Ref(), Kind: HostBuffer, Arg: name, IsInput: host.IsInput})
		}
	}
	return bufs
}

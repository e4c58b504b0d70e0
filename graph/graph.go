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

// Package graph implements graphs of operator nodes and their resolution:
// validation, topological ordering, type propagation, and the computation of
// the inputs, outputs, and value information of the graph.
//
// A graph is mutated and resolved by a single caller at a time. Once resolved,
// its derived state can be read concurrently as long as nobody mutates it.
package graph

import (
	"iter"
	"maps"
	"slices"

	"github.com/gx-org/graphrt/schema"
	"github.com/gx-org/graphrt/types"
	"github.com/pkg/errors"
)

// State of the resolution of a graph.
type State int

const (
	// StateUnresolved graphs have been created or mutated since their last resolution.
	StateUnresolved State = iota
	// StateResolving graphs are being resolved.
	StateResolving
	// StateResolved graphs have a valid resolved state.
	StateResolved
)

func (s State) String() string {
	switch s {
	case StateUnresolved:
		return "unresolved"
	case StateResolving:
		return "resolving"
	case StateResolved:
		return "resolved"
	}
	return "unknown"
}

// ValueInfo is the type and shape of an argument.
type ValueInfo struct {
	Name string
	Type *types.Type
	// Dims are the axis lengths of the argument, nil if unknown.
	Dims []int
}

func newValueInfo(name string, typ *types.Type, dims []int) (ValueInfo, error) {
	if name == "" {
		return ValueInfo{}, errors.Errorf("empty argument name")
	}
	if typ == nil {
		return ValueInfo{}, errors.Errorf("argument %q: nil type", name)
	}
	return ValueInfo{Name: name, Type: typ, Dims: slices.Clone(dims)}, nil
}

// Graph is a set of nodes with its declared inputs, initializers, and outputs.
type Graph struct {
	name    string
	schemas schema.Provider

	nodes        []*Node
	inputs       []ValueInfo
	initializers []ValueInfo
	outputs      []string
	annotations  map[string]ValueInfo

	state      State
	generation uint64
	resolved   *Resolved
}

// New returns an empty graph. The schema provider gives the schema of the
// operators of the nodes.
func New(name string, schemas schema.Provider) *Graph {
	return &Graph{
		name:        name,
		schemas:     schemas,
		annotations: make(map[string]ValueInfo),
	}
}

// Name of the graph.
func (g *Graph) Name() string {
	return g.name
}

// Schemas returns the schema provider of the graph.
func (g *Graph) Schemas() schema.Provider {
	return g.schemas
}

// State returns the resolution state of the graph.
func (g *Graph) State() State {
	return g.state
}

// invalidate moves the graph out of the resolved state before a mutation.
func (g *Graph) invalidate() error {
	if g.state == StateResolving {
		return &ResolutionInProgressError{Graph: g.name}
	}
	g.state = StateUnresolved
	g.resolved = nil
	g.generation++
	return nil
}

func (g *Graph) isDeclared(name string) bool {
	for _, vi := range g.inputs {
		if vi.Name == name {
			return true
		}
	}
	for _, vi := range g.initializers {
		if vi.Name == name {
			return true
		}
	}
	return false
}

func (g *Graph) declare(list *[]ValueInfo, name string, typ *types.Type, dims []int) error {
	vi, err := newValueInfo(name, typ, dims)
	if err != nil {
		return err
	}
	if g.isDeclared(name) {
		return errors.Errorf("argument %q already declared", name)
	}
	if err := g.invalidate(); err != nil {
		return err
	}
	*list = append(*list, vi)
	return nil
}

// AddInput declares an input of the graph.
func (g *Graph) AddInput(name string, typ *types.Type, dims ...int) error {
	return g.declare(&g.inputs, name, typ, dims)
}

// AddInitializer declares an argument with a constant value provided by the model.
func (g *Graph) AddInitializer(name string, typ *types.Type, dims ...int) error {
	return g.declare(&g.initializers, name, typ, dims)
}

// AddOutput declares an output of the graph.
func (g *Graph) AddOutput(name string) error {
	if name == "" {
		return errors.Errorf("empty output name")
	}
	if slices.Contains(g.outputs, name) {
		return errors.Errorf("output %q already declared", name)
	}
	if err := g.invalidate(); err != nil {
		return err
	}
	g.outputs = append(g.outputs, name)
	return nil
}

// Annotate sets the expected type and shape of an argument.
func (g *Graph) Annotate(name string, typ *types.Type, dims ...int) error {
	vi, err := newValueInfo(name, typ, dims)
	if err != nil {
		return err
	}
	if err := g.invalidate(); err != nil {
		return err
	}
	g.annotations[name] = vi
	return nil
}

// DeclaredInputs returns the inputs declared by the caller.
func (g *Graph) DeclaredInputs() []ValueInfo {
	return slices.Clone(g.inputs)
}

// Initializers returns the declared initializers.
func (g *Graph) Initializers() []ValueInfo {
	return slices.Clone(g.initializers)
}

// DeclaredOutputs returns the outputs declared by the caller.
func (g *Graph) DeclaredOutputs() []string {
	return slices.Clone(g.outputs)
}

// Annotations returns the annotations of the graph sorted by argument name.
func (g *Graph) Annotations() []ValueInfo {
	vis := make([]ValueInfo, 0, len(g.annotations))
	for _, name := range slices.Sorted(maps.Keys(g.annotations)) {
		vis = append(vis, g.annotations[name])
	}
	return vis
}

// AddNode adds a node to the graph.
func (g *Graph) AddNode(name, op string, inputs, outputs []string, attrs schema.Attributes) (*Node, error) {
	if op == "" {
		return nil, errors.Errorf("node %q: empty operator name", name)
	}
	if err := g.invalidate(); err != nil {
		return nil, err
	}
	n := &Node{
		graph:   g,
		index:   NodeIndex(len(g.nodes)),
		name:    name,
		op:      op,
		inputs:  slices.Clone(inputs),
		outputs: slices.Clone(outputs),
		attrs:   maps.Clone(attrs),
		dirty:   true,
	}
	g.nodes = append(g.nodes, n)
	return n, nil
}

// RemoveNode removes a node from the graph.
// The indices of the other nodes do not change.
func (g *Graph) RemoveNode(index NodeIndex) error {
	if g.Node(index) == nil {
		return errors.Errorf("no node at index %d", index)
	}
	if err := g.invalidate(); err != nil {
		return err
	}
	g.nodes[index] = nil
	return nil
}

// Node returns the node at a given index or nil if there is none.
func (g *Graph) Node(index NodeIndex) *Node {
	if index < 0 || int(index) >= len(g.nodes) {
		return nil
	}
	return g.nodes[index]
}

// NodeByName returns the first node with a given name.
func (g *Graph) NodeByName(name string) *Node {
	for n := range g.Nodes() {
		if n.name == name {
			return n
		}
	}
	return nil
}

// Nodes iterates over the nodes of the graph in index order.
func (g *Graph) Nodes() iter.Seq[*Node] {
	return func(yield func(*Node) bool) {
		for _, n := range g.nodes {
			if n == nil {
				continue
			}
			if !yield(n) {
				return
			}
		}
	}
}

// NumNodes returns the number of nodes in the graph.
func (g *Graph) NumNodes() (num int) {
	for range g.Nodes() {
		num++
	}
	return
}

// Resolve validates the graph, orders its nodes, infers the type of all its
// arguments, and computes its inputs, outputs, and value information.
//
// The derived state is computed from scratch at every call: resolving a graph
// twice without mutating it returns identical results.
func (g *Graph) Resolve() (res *Resolved, err error) {
	if g.state == StateResolving {
		return nil, &ResolutionInProgressError{Graph: g.name}
	}
	g.state = StateResolving
	g.resolved = nil
	defer func() {
		if res == nil {
			g.state = StateUnresolved
		}
	}()
	res, err = newResolver(g).resolve()
	if err != nil {
		return nil, err
	}
	for n := range g.Nodes() {
		n.dirty = false
	}
	g.resolved = res
	g.state = StateResolved
	return res, nil
}

// Resolved returns the state computed by the last resolution.
// It returns ErrNotResolved if the graph has been mutated since.
func (g *Graph) Resolved() (*Resolved, error) {
	if g.state != StateResolved {
		return nil, errors.WithStack(ErrNotResolved)
	}
	return g.resolved, nil
}

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

package graph

import (
	"maps"
	"slices"

	"github.com/gx-org/graphrt/schema"
	"github.com/zclconf/go-cty/cty"
)

// NodeIndex is the stable index of a node in its graph.
type NodeIndex int

// Node is an operator invocation in a graph.
// Empty argument names denote omitted optional arguments.
type Node struct {
	graph   *Graph
	index   NodeIndex
	name    string
	op      string
	inputs  []string
	outputs []string
	attrs   schema.Attributes
	dirty   bool
}

// Graph owning the node.
func (n *Node) Graph() *Graph {
	return n.graph
}

// Index of the node in its graph.
func (n *Node) Index() NodeIndex {
	return n.index
}

// Name of the node.
func (n *Node) Name() string {
	return n.name
}

// OpType returns the name of the operator.
func (n *Node) OpType() string {
	return n.op
}

// Inputs returns the names of the input arguments.
func (n *Node) Inputs() []string {
	return slices.Clone(n.inputs)
}

// Outputs returns the names of the output arguments.
func (n *Node) Outputs() []string {
	return slices.Clone(n.outputs)
}

// Attribute returns the value of an attribute.
func (n *Node) Attribute(name string) (cty.Value, bool) {
	v, ok := n.attrs[name]
	return v, ok
}

// Attributes returns a copy of the attributes of the node.
func (n *Node) Attributes() schema.Attributes {
	return maps.Clone(n.attrs)
}

// Dirty returns true if the node has been edited since the last resolution.
func (n *Node) Dirty() bool {
	return n.dirty
}

func (n *Node) touch() error {
	if err := n.graph.invalidate(); err != nil {
		return err
	}
	n.dirty = true
	return nil
}

// SetInputs replaces the input arguments of the node.
func (n *Node) SetInputs(inputs ...string) error {
	if err := n.touch(); err != nil {
		return err
	}
	n.inputs = slices.Clone(inputs)
	return nil
}

// SetOutputs replaces the output arguments of the node.
func (n *Node) SetOutputs(outputs ...string) error {
	if err := n.touch(); err != nil {
		return err
	}
	n.outputs = slices.Clone(outputs)
	return nil
}

// SetAttribute sets the value of an attribute.
func (n *Node) SetAttribute(name string, value cty.Value) error {
	if err := n.touch(); err != nil {
		return err
	}
	if n.attrs == nil {
		n.attrs = make(schema.Attributes)
	}
	n.attrs[name] = value
	return nil
}

// DeleteAttribute removes an attribute from the node.
func (n *Node) DeleteAttribute(name string) error {
	if err := n.touch(); err != nil {
		return err
	}
	delete(n.attrs, name)
	return nil
}

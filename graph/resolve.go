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
	"container/heap"
	"fmt"
	"maps"
	"slices"

	"github.com/gx-org/graphrt/schema"
	"github.com/gx-org/graphrt/types"
	"go.uber.org/multierr"
)

type (
	// Arg is an argument of a resolved node with its inferred type.
	// The name of omitted optional arguments is empty and their type is nil.
	Arg struct {
		Name string
		Type *types.Type
	}

	// ResolvedNode is a node with the schema of its operator and the types of its arguments.
	ResolvedNode struct {
		Index      NodeIndex
		Name       string
		Op         string
		Inputs     []Arg
		Outputs    []Arg
		Attributes schema.Attributes
		Schema     *schema.Schema
	}

	// Resolved is the state derived from a graph by its resolution.
	Resolved struct {
		graph      *Graph
		generation uint64

		nodes     []*ResolvedNode
		byIndex   map[NodeIndex]*ResolvedNode
		inputs    []ValueInfo
		outputs   []ValueInfo
		valueInfo []ValueInfo
		argTypes  map[string]*types.Type
	}
)

// Ref returns a reference to the node for error messages.
func (n *ResolvedNode) Ref() NodeRef {
	return NodeRef{Index: n.Index, Name: n.Name, Op: n.Op}
}

// InputTypes returns the types of the inputs of the node.
func (n *ResolvedNode) InputTypes() []*types.Type {
	return argTypes(n.Inputs)
}

// OutputTypes returns the types of the outputs of the node.
func (n *ResolvedNode) OutputTypes() []*types.Type {
	return argTypes(n.Outputs)
}

func argTypes(args []Arg) []*types.Type {
	tps := make([]*types.Type, len(args))
	for i, arg := range args {
		tps[i] = arg.Type
	}
	return tps
}

// Graph from which the state has been derived.
func (r *Resolved) Graph() *Graph {
	return r.graph
}

// Valid returns true if the graph has not been mutated since its resolution.
func (r *Resolved) Valid() bool {
	return r.generation == r.graph.generation
}

// Order returns the indices of the nodes in topological order.
func (r *Resolved) Order() []NodeIndex {
	order := make([]NodeIndex, len(r.nodes))
	for i, n := range r.nodes {
		order[i] = n.Index
	}
	return order
}

// Nodes returns the resolved nodes in topological order.
func (r *Resolved) Nodes() []*ResolvedNode {
	return slices.Clone(r.nodes)
}

// Node returns the resolved node at a given index, nil if there is none.
func (r *Resolved) Node(index NodeIndex) *ResolvedNode {
	return r.byIndex[index]
}

// Inputs returns the inputs of the graph: the declared inputs consumed by
// a node or declared as an output, in declaration order.
func (r *Resolved) Inputs() []ValueInfo {
	return slices.Clone(r.inputs)
}

// Outputs returns the outputs of the graph: the declared outputs followed
// by the node outputs not consumed by any node.
func (r *Resolved) Outputs() []ValueInfo {
	return slices.Clone(r.outputs)
}

// ValueInfo returns the intermediate arguments of the graph in production order.
func (r *Resolved) ValueInfo() []ValueInfo {
	return slices.Clone(r.valueInfo)
}

// TypeOf returns the type of an argument.
func (r *Resolved) TypeOf(arg string) (*types.Type, bool) {
	tp, ok := r.argTypes[arg]
	return tp, ok
}

type resolver struct {
	g *Graph

	declared  map[string]ValueInfo
	producers map[string]*Node
	consumed  map[string]bool
	schemas   map[NodeIndex]*schema.Schema

	order    []*Node
	argTypes map[string]*types.Type
	nodes    []*ResolvedNode
}

func newResolver(g *Graph) *resolver {
	return &resolver{
		g:         g,
		declared:  make(map[string]ValueInfo),
		producers: make(map[string]*Node),
		consumed:  make(map[string]bool),
		schemas:   make(map[NodeIndex]*schema.Schema),
		argTypes:  make(map[string]*types.Type),
	}
}

func (r *resolver) resolve() (*Resolved, error) {
	if err := r.validate(); err != nil {
		return nil, err
	}
	if err := r.sort(); err != nil {
		return nil, err
	}
	if err := r.propagate(); err != nil {
		return nil, err
	}
	if err := r.checkAnnotations(); err != nil {
		return nil, err
	}
	return r.surface(), nil
}

// validate checks the structure of the graph independently of the order of its nodes.
func (r *resolver) validate() (err error) {
	for _, vi := range r.g.inputs {
		r.declared[vi.Name] = vi
	}
	for _, vi := range r.g.initializers {
		r.declared[vi.Name] = vi
	}
	for n := range r.g.Nodes() {
		sch, ok := r.g.schemas.Schema(n.op)
		if !ok {
			err = multierr.Append(err, &UnknownOperatorError{Node: n.ref()})
		} else if arityErr := sch.CheckArity(len(n.inputs), len(n.outputs)); arityErr != nil {
			err = multierr.Append(err, &ArityError{Node: n.ref(), Err: arityErr})
		} else {
			r.schemas[n.index] = sch
		}
		for _, out := range n.outputs {
			if out == "" {
				continue
			}
			if _, ok := r.declared[out]; ok {
				err = multierr.Append(err, &DuplicateOutputError{Arg: out, Node: n.ref()})
				continue
			}
			if prev, ok := r.producers[out]; ok {
				prevRef := prev.ref()
				err = multierr.Append(err, &DuplicateOutputError{Arg: out, Node: n.ref(), Previous: &prevRef})
				continue
			}
			r.producers[out] = n
		}
	}
	for n := range r.g.Nodes() {
		for _, in := range n.inputs {
			if in == "" {
				continue
			}
			r.consumed[in] = true
			if !r.isDefined(in) {
				err = multierr.Append(err, &DanglingInputError{Node: n.ref(), Arg: in})
			}
		}
	}
	for _, out := range r.g.outputs {
		if !r.isDefined(out) {
			err = multierr.Append(err, &UndefinedOutputError{Arg: out})
		}
	}
	return err
}

func (r *resolver) isDefined(arg string) bool {
	if _, ok := r.declared[arg]; ok {
		return true
	}
	_, ok := r.producers[arg]
	return ok
}

// indexHeap is a min-heap of node indices.
type indexHeap []NodeIndex

func (h indexHeap) Len() int           { return len(h) }
func (h indexHeap) Less(i, j int) bool { return h[i] < h[j] }
func (h indexHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *indexHeap) Push(x any) {
	*h = append(*h, x.(NodeIndex))
}

func (h *indexHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

// sort orders the nodes such that every node comes after the producers of its inputs.
// Among the nodes ready to be scheduled, the node with the lowest index comes first.
func (r *resolver) sort() error {
	inDegree := make(map[NodeIndex]int)
	consumers := make(map[NodeIndex][]NodeIndex)
	for n := range r.g.Nodes() {
		inDegree[n.index] += 0
		for _, in := range n.inputs {
			prod, ok := r.producers[in]
			if !ok {
				continue
			}
			inDegree[n.index]++
			consumers[prod.index] = append(consumers[prod.index], n.index)
		}
	}
	ready := &indexHeap{}
	for index, deg := range inDegree {
		if deg == 0 {
			*ready = append(*ready, index)
		}
	}
	heap.Init(ready)
	for ready.Len() > 0 {
		index := heap.Pop(ready).(NodeIndex)
		r.order = append(r.order, r.g.nodes[index])
		for _, next := range consumers[index] {
			inDegree[next]--
			if inDegree[next] == 0 {
				heap.Push(ready, next)
			}
		}
		delete(inDegree, index)
	}
	if len(inDegree) == 0 {
		return nil
	}
	left := slices.Sorted(maps.Keys(inDegree))
	refs := make([]NodeRef, len(left))
	for i, index := range left {
		refs[i] = r.g.nodes[index].ref()
	}
	return &CyclicGraphError{Nodes: refs}
}

// propagate infers the type of every argument following the topological order.
// Nodes with inputs of unknown type are deferred until no progress can be made.
func (r *resolver) propagate() error {
	for name, vi := range r.declared {
		r.argTypes[name] = vi.Type
	}
	resolved := make(map[NodeIndex]*ResolvedNode)
	pending := r.order
	var errs error
	for len(pending) > 0 {
		var deferred []*Node
		for _, n := range pending {
			if !r.inputsKnown(n) {
				deferred = append(deferred, n)
				continue
			}
			rn, err := r.inferNode(n)
			if err != nil {
				errs = multierr.Append(errs, err)
				continue
			}
			resolved[n.index] = rn
		}
		if len(deferred) == len(pending) {
			break
		}
		pending = deferred
	}
	if errs != nil {
		return errs
	}
	if err := r.checkUnknown(pending); err != nil {
		return err
	}
	for _, n := range r.order {
		r.nodes = append(r.nodes, resolved[n.index])
	}
	return nil
}

func (r *resolver) inputsKnown(n *Node) bool {
	for _, in := range n.inputs {
		if in != "" && r.argTypes[in] == nil {
			return false
		}
	}
	return true
}

func (r *resolver) checkUnknown(pending []*Node) error {
	var args []string
	for _, n := range r.order {
		for _, out := range n.outputs {
			tp, inferred := r.argTypes[out]
			if inferred && tp == nil && !slices.Contains(args, out) {
				args = append(args, out)
			}
		}
	}
	if len(args) == 0 && len(pending) == 0 {
		return nil
	}
	refs := make([]NodeRef, len(pending))
	for i, n := range pending {
		refs[i] = n.ref()
	}
	return &UnresolvableTypeCycleError{Nodes: refs, Args: args}
}

type binder struct {
	node   *Node
	schema *schema.Schema
	bound  map[string]Arg
}

func (b *binder) bind(formal schema.Formal, arg Arg) error {
	if arg.Type == nil || formal.TypeParam == "" {
		return nil
	}
	if !b.schema.Allows(formal.TypeParam, arg.Type) {
		return &TypeConstraintError{
			Node:  b.node.ref(),
			Arg:   arg.Name,
			Param: formal.TypeParam,
			Type:  arg.Type,
			Msg:   fmt.Sprintf("type not allowed for type parameter %s", formal.TypeParam),
		}
	}
	prev, ok := b.bound[formal.TypeParam]
	if !ok {
		b.bound[formal.TypeParam] = arg
		return nil
	}
	if !types.Equal(prev.Type, arg.Type) {
		return &TypeConstraintError{
			Node:  b.node.ref(),
			Arg:   arg.Name,
			Param: formal.TypeParam,
			Type:  arg.Type,
			Msg:   fmt.Sprintf("type parameter %s already bound to %s by argument %q", formal.TypeParam, prev.Type, prev.Name),
		}
	}
	return nil
}

func (r *resolver) inferNode(n *Node) (*ResolvedNode, error) {
	sch := r.schemas[n.index]
	b := &binder{node: n, schema: sch, bound: make(map[string]Arg)}
	rn := &ResolvedNode{
		Index:      n.index,
		Name:       n.name,
		Op:         n.op,
		Inputs:     make([]Arg, len(n.inputs)),
		Outputs:    make([]Arg, len(n.outputs)),
		Attributes: maps.Clone(n.attrs),
		Schema:     sch,
	}
	for i, in := range n.inputs {
		rn.Inputs[i] = Arg{Name: in, Type: r.argTypes[in]}
		formal, _ := sch.InputFormal(i)
		if err := b.bind(formal, rn.Inputs[i]); err != nil {
			return nil, err
		}
	}
	outs, err := sch.InferTypes(rn.InputTypes(), n.attrs, len(n.outputs))
	if err != nil {
		return nil, &InferenceError{Node: n.ref(), Err: err}
	}
	for i, out := range n.outputs {
		tp := outs[i]
		if tp == nil {
			tp = r.g.annotations[out].Type
		}
		rn.Outputs[i] = Arg{Name: out, Type: tp}
		formal, _ := sch.OutputFormal(i)
		if err := b.bind(formal, rn.Outputs[i]); err != nil {
			return nil, err
		}
		if out != "" {
			r.argTypes[out] = tp
		}
	}
	return rn, nil
}

func (r *resolver) checkAnnotations() (err error) {
	for _, name := range slices.Sorted(maps.Keys(r.g.annotations)) {
		annotated := r.g.annotations[name].Type
		inferred, ok := r.argTypes[name]
		if !ok || types.Equal(inferred, annotated) {
			continue
		}
		err = multierr.Append(err, &TypeMismatchError{Arg: name, Inferred: inferred, Annotated: annotated})
	}
	return err
}

func (r *resolver) valueInfo(name string) ValueInfo {
	vi := ValueInfo{Name: name, Type: r.argTypes[name]}
	if decl, ok := r.declared[name]; ok {
		vi.Dims = slices.Clone(decl.Dims)
	} else if ann, ok := r.g.annotations[name]; ok {
		vi.Dims = slices.Clone(ann.Dims)
	}
	return vi
}

// surface computes the inputs, outputs, and value information of the graph.
func (r *resolver) surface() *Resolved {
	res := &Resolved{
		graph:      r.g,
		generation: r.g.generation,
		nodes:      r.nodes,
		byIndex:    make(map[NodeIndex]*ResolvedNode, len(r.nodes)),
		argTypes:   r.argTypes,
	}
	for _, n := range r.nodes {
		res.byIndex[n.Index] = n
	}
	isOutput := make(map[string]bool)
	for _, out := range r.g.outputs {
		isOutput[out] = true
		res.outputs = append(res.outputs, r.valueInfo(out))
	}
	for _, vi := range r.g.inputs {
		if r.consumed[vi.Name] || isOutput[vi.Name] {
			res.inputs = append(res.inputs, r.valueInfo(vi.Name))
		}
	}
	for _, n := range r.order {
		for _, out := range n.outputs {
			if out == "" || r.consumed[out] || isOutput[out] {
				continue
			}
			isOutput[out] = true
			res.outputs = append(res.outputs, r.valueInfo(out))
		}
	}
	for _, n := range r.order {
		for _, out := range n.outputs {
			if out == "" || isOutput[out] || !r.consumed[out] {
				continue
			}
			res.valueInfo = append(res.valueInfo, r.valueInfo(out))
		}
	}
	return res
}

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
	"fmt"
	"strings"

	"github.com/gx-org/graphrt/types"
	"github.com/pkg/errors"
)

// ErrNotResolved is returned when reading the resolved state of a graph that
// has been mutated since its last resolution.
var ErrNotResolved = errors.New("graph not resolved")

type (
	// NodeRef identifies a node in error messages.
	NodeRef struct {
		Index NodeIndex
		Name  string
		Op    string
	}

	// DanglingInputError is returned when a node consumes an argument that
	// is neither produced by a node nor declared as a graph input or initializer.
	DanglingInputError struct {
		Node NodeRef
		Arg  string
	}

	// DuplicateOutputError is returned when an argument is produced more than once.
	DuplicateOutputError struct {
		Arg  string
		Node NodeRef
		// Previous is the node producing the argument first,
		// nil if the argument is a graph input or an initializer.
		Previous *NodeRef
	}

	// UndefinedOutputError is returned when a declared graph output is never defined.
	UndefinedOutputError struct {
		Arg string
	}

	// UnknownOperatorError is returned when no schema is available for the operator of a node.
	UnknownOperatorError struct {
		Node NodeRef
	}

	// ArityError is returned when the arguments of a node do not match its operator.
	ArityError struct {
		Node NodeRef
		Err  error
	}

	// CyclicGraphError is returned when the nodes of a graph cannot be ordered.
	CyclicGraphError struct {
		// Nodes left once all the nodes without pending dependencies have been ordered.
		Nodes []NodeRef
	}

	// UnresolvableTypeCycleError is returned when the type of some arguments
	// cannot be inferred because they depend on types that are never known.
	UnresolvableTypeCycleError struct {
		Nodes []NodeRef
		Args  []string
	}

	// TypeConstraintError is returned when the type of an argument is not
	// accepted by the operator of a node.
	TypeConstraintError struct {
		Node  NodeRef
		Arg   string
		Param string
		Type  *types.Type
		Msg   string
	}

	// TypeMismatchError is returned when an inferred type differs from the
	// type annotating the argument.
	TypeMismatchError struct {
		Arg       string
		Inferred  *types.Type
		Annotated *types.Type
	}

	// InferenceError is returned when the type inference of an operator fails.
	InferenceError struct {
		Node NodeRef
		Err  error
	}

	// ResolutionInProgressError is returned when a graph is resolved or
	// mutated while it is being resolved.
	ResolutionInProgressError struct {
		Graph string
	}
)

func (n *Node) ref() NodeRef {
	return NodeRef{Index: n.index, Name: n.name, Op: n.op}
}

func (ref NodeRef) String() string {
	if ref.Name == "" {
		return fmt.Sprintf("node %d (%s)", ref.Index, ref.Op)
	}
	return fmt.Sprintf("node %d %q (%s)", ref.Index, ref.Name, ref.Op)
}

func refsString(refs []NodeRef) string {
	ss := make([]string, len(refs))
	for i, ref := range refs {
		ss[i] = ref.String()
	}
	return strings.Join(ss, ", ")
}

func (err *DanglingInputError) Error() string {
	return fmt.Sprintf("%s: input %q is not produced by any node nor declared as a graph input or initializer", err.Node, err.Arg)
}

func (err *DuplicateOutputError) Error() string {
	if err.Previous == nil {
		return fmt.Sprintf("%s: output %q is already declared as a graph input or initializer", err.Node, err.Arg)
	}
	return fmt.Sprintf("%s: output %q is already produced by %s", err.Node, err.Arg, *err.Previous)
}

func (err *UndefinedOutputError) Error() string {
	return fmt.Sprintf("graph output %q is not produced by any node nor declared as a graph input", err.Arg)
}

func (err *UnknownOperatorError) Error() string {
	return fmt.Sprintf("%s: unknown operator %q", err.Node, err.Node.Op)
}

func (err *ArityError) Error() string {
	return fmt.Sprintf("%s: %v", err.Node, err.Err)
}

func (err *ArityError) Unwrap() error {
	return err.Err
}

func (err *CyclicGraphError) Error() string {
	return "graph has a cycle involving " + refsString(err.Nodes)
}

func (err *UnresolvableTypeCycleError) Error() string {
	return fmt.Sprintf("cannot resolve the type of %s: required by %s", strings.Join(err.Args, ", "), refsString(err.Nodes))
}

func (err *TypeConstraintError) Error() string {
	return fmt.Sprintf("%s: argument %q of type %s: %s", err.Node, err.Arg, err.Type, err.Msg)
}

func (err *TypeMismatchError) Error() string {
	return fmt.Sprintf("argument %q: inferred type %s does not match annotated type %s", err.Arg, err.Inferred, err.Annotated)
}

func (err *InferenceError) Error() string {
	return fmt.Sprintf("%s: type inference failed: %v", err.Node, err.Err)
}

func (err *InferenceError) Unwrap() error {
	return err.Err
}

func (err *ResolutionInProgressError) Error() string {
	return fmt.Sprintf("graph %q is being resolved", err.Graph)
}

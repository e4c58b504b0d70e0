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
	"strings"

	"github.com/gx-org/graphrt/graph"
	"github.com/gx-org/graphrt/types"
)

type (
	// ExclusivityError is returned when a pair of arguments is declared
	// both in-place and alias.
	ExclusivityError struct {
		Op   string
		Pair Pair
	}

	// DuplicateKernelError is returned when a kernel is registered while
	// another kernel for the same operator and execution target accepts
	// some of the same types.
	DuplicateKernelError struct {
		Def      *Def
		Existing *Def
	}

	// ConstraintError is returned when a kernel is inconsistent with the schema of its operator.
	ConstraintError struct {
		Def   *Def
		Param string
		Type  *types.Type
		Msg   string
	}

	// Binding is the type bound to a type parameter by the arguments of a node.
	Binding struct {
		Param string
		Type  *types.Type
	}

	// NoMatchingKernelError is returned when no kernel registered for an
	// execution target accepts the types of a node.
	NoMatchingKernelError struct {
		Node     graph.NodeRef
		Target   Provider
		Bindings []Binding
		// Rejected are the kernels registered for the operator and the target.
		Rejected []*Def
	}

	// AmbiguousKernelError is returned when more than one kernel accepts a node.
	AmbiguousKernelError struct {
		Node       graph.NodeRef
		Target     Provider
		Candidates []*Def
	}
)

func (err *ExclusivityError) Error() string {
	return fmt.Sprintf("kernel %s: argument pair %s declared both in-place and alias", err.Op, err.Pair)
}

func (err *DuplicateKernelError) Error() string {
	return fmt.Sprintf("kernel %s overlaps with registered kernel %s", err.Def, err.Existing)
}

func (err *ConstraintError) Error() string {
	if err.Type == nil {
		return fmt.Sprintf("kernel %s: type parameter %s: %s", err.Def, err.Param, err.Msg)
	}
	return fmt.Sprintf("kernel %s: type parameter %s: type %s: %s", err.Def, err.Param, err.Type, err.Msg)
}

func (b Binding) String() string {
	return fmt.Sprintf("%s=%s", b.Param, b.Type)
}

func bindingsString(bindings []Binding) string {
	if len(bindings) == 0 {
		return "no type parameter"
	}
	ss := make([]string, len(bindings))
	for i, b := range bindings {
		ss[i] = b.String()
	}
	return strings.Join(ss, ", ")
}

func (err *NoMatchingKernelError) Error() string {
	return fmt.Sprintf("%s: no kernel for operator %s on %s accepts %s (%d kernel(s) registered for this target)",
		err.Node, err.Node.Op, err.Target, bindingsString(err.Bindings), len(err.Rejected))
}

func (err *AmbiguousKernelError) Error() string {
	defs := make([]string, len(err.Candidates))
	for i, def := range err.Candidates {
		defs[i] = def.String()
	}
	return fmt.Sprintf("%s: %d kernels on %s accept the node: %s", err.Node, len(err.Candidates), err.Target, strings.Join(defs, "; "))
}

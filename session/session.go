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

// Package session prepares and runs graphs: it resolves a graph, selects the
// kernel of each node for an execution target, and runs the kernels of the
// Go backend in topological order.
package session

import (
	"log/slog"

	"github.com/gx-org/graphrt/graph"
	"github.com/gx-org/graphrt/kernels"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

type (
	// Option configures a session.
	Option func(*Session)

	// Session runs a graph on an execution target.
	// A session does not lock its graph: the graph must not be mutated
	// while the session prepares or runs it.
	Session struct {
		graph    *graph.Graph
		registry *kernels.Registry
		target   kernels.Provider
		logger   *slog.Logger
	}
)

// WithTarget sets the execution target of the session. The default is the CPU.
func WithTarget(target kernels.Provider) Option {
	return func(s *Session) {
		s.target = target
	}
}

// WithLogger sets the logger of the session.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		s.logger = logger
	}
}

// New returns a session for a graph.
func New(g *graph.Graph, registry *kernels.Registry, opts ...Option) *Session {
	s := &Session{
		graph:    g,
		registry: registry,
		target:   kernels.CPU,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Target returns the execution target of the session.
func (s *Session) Target() kernels.Provider {
	return s.target
}

// Graph returns the graph run by the session.
func (s *Session) Graph() *graph.Graph {
	return s.graph
}

// Prepare resolves the graph if necessary and creates the kernel of every node.
// Nodes without kernel on the target of the session are all reported.
// Prepare never selects a kernel of another target.
func (s *Session) Prepare() (*Plan, error) {
	res, err := s.graph.Resolved()
	if errors.Is(err, graph.ErrNotResolved) {
		s.logger.Debug("Resolving graph", "graph", s.graph.Name())
		res, err = s.graph.Resolve()
	}
	if err != nil {
		return nil, errors.WithMessagef(err, "cannot resolve graph %q", s.graph.Name())
	}
	plan := &Plan{resolved: res, target: s.target}
	var errs error
	for _, node := range res.Nodes() {
		match, err := s.registry.Dispatch(node, s.target)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		kernel, err := match.Create()
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		s.logger.Debug("Kernel selected", "node", node.Ref().String(), "kernel", match.Def.String())
		plan.steps = append(plan.steps, &Step{Node: node, Kernel: kernel})
	}
	if errs != nil {
		return nil, errs
	}
	s.logger.Debug("Graph prepared", "graph", s.graph.Name(), "target", s.target.String(), "nodes", len(plan.steps))
	return plan, nil
}

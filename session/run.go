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
	"context"

	"github.com/gx-org/graphrt/base/ctxlog"
	"github.com/gx-org/graphrt/base/fmterr"
	gokernels "github.com/gx-org/graphrt/golang/backend/kernels"
	"github.com/gx-org/graphrt/graph"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

// required returns the arguments that need a value to run the graph:
// the graph inputs and the initializers consumed by a node or declared as outputs.
func required(res *graph.Resolved) []graph.ValueInfo {
	used := make(map[string]bool)
	for _, node := range res.Nodes() {
		for _, arg := range node.Inputs {
			used[arg.Name] = true
		}
	}
	for _, out := range res.Outputs() {
		used[out.Name] = true
	}
	args := res.Inputs()
	for _, init := range res.Graph().Initializers() {
		if used[init.Name] {
			args = append(args, init)
		}
	}
	return args
}

func checkFeeds(res *graph.Resolved, feeds map[string]gokernels.Array) (err error) {
	for _, arg := range required(res) {
		val, ok := feeds[arg.Name]
		if !ok {
			err = multierr.Append(err, errors.Errorf("missing value for argument %q", arg.Name))
			continue
		}
		if val.Type() != arg.Type {
			err = multierr.Append(err, errors.Errorf("argument %q: got value of type %s but want %s", arg.Name, val.Type(), arg.Type))
		}
	}
	return err
}

// Run runs a plan given the values of the graph inputs and initializers.
// It returns the values of the graph outputs.
func (s *Session) Run(ctx context.Context, plan *Plan, feeds map[string]gokernels.Array) (map[string]gokernels.Array, error) {
	res := plan.Resolved()
	if !res.Valid() {
		return nil, errors.WithMessage(graph.ErrNotResolved, "plan is stale")
	}
	if err := checkFeeds(res, feeds); err != nil {
		return nil, err
	}
	ctx = ctxlog.WithLogger(ctx, s.logger)
	values := make(map[string]gokernels.Array, len(feeds))
	for name, val := range feeds {
		values[name] = val
	}
	for _, step := range plan.steps {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := runStep(ctx, step, values); err != nil {
			return nil, err
		}
	}
	outs := make(map[string]gokernels.Array)
	for _, out := range res.Outputs() {
		val, ok := values[out.Name]
		if !ok {
			return nil, fmterr.Internalf("output %q has not been computed", out.Name)
		}
		outs[out.Name] = val
	}
	return outs, nil
}

func runStep(ctx context.Context, step *Step, values map[string]gokernels.Array) error {
	kernel, ok := step.Kernel.(gokernels.Kernel)
	if !ok {
		return errors.Errorf("%s: kernel %s cannot run on the host", step.Node.Ref(), step.Kernel.Def())
	}
	ctxlog.FromContext(ctx).Debug("Running node", "node", step.Node.Name, "op", step.Node.Op)
	inputs := make([]gokernels.Array, len(step.Node.Inputs))
	for i, arg := range step.Node.Inputs {
		if arg.Name == "" {
			continue
		}
		val, ok := values[arg.Name]
		if !ok {
			return errors.Errorf("%s: no value for input %q", step.Node.Ref(), arg.Name)
		}
		inputs[i] = val
	}
	outputs, err := kernel.Compute(inputs)
	if err != nil {
		return fmterr.PrefixWith("%s: ", step.Node.Ref())(err)
	}
	if len(outputs) != len(step.Node.Outputs) {
		return fmterr.Internalf("%s: kernel returned %d outputs but want %d", step.Node.Ref(), len(outputs), len(step.Node.Outputs))
	}
	for i, arg := range step.Node.Outputs {
		if arg.Name == "" {
			continue
		}
		values[arg.Name] = outputs[i]
	}
	return nil
}

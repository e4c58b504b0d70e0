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

// Package main loads a graph description file, prepares it for an execution
// target, and runs it with the Go kernels.
//
// Usage:
//
//	graphrt -graph model.hcl [-target cpu] [-outputs Y,Z] [-plan] [-fmt] [-v]
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"

	"github.com/gx-org/graphrt/base/fmterr"
	"github.com/gx-org/graphrt/golang/backend"
	gokernels "github.com/gx-org/graphrt/golang/backend/kernels"
	"github.com/gx-org/graphrt/graphfile"
	"github.com/gx-org/graphrt/kernels"
	"github.com/gx-org/graphrt/schema/stdops"
	"github.com/gx-org/graphrt/session"
	"github.com/gx-org/graphrt/tools/graphflag"
	"github.com/pkg/errors"
)

var (
	graphPath = flag.String("graph", "", "path to the graph description file")
	target    = graphflag.Target("target", kernels.CPU, "execution target")
	outputs   = graphflag.StringList("outputs", "comma separated list of outputs to print (default: all)")
	planOnly  = flag.Bool("plan", false, "print the selected kernels and buffers without running the graph")
	format    = flag.Bool("fmt", false, "print the graph description file in canonical form and exit")
	verbose   = flag.Bool("v", false, "log at debug level")
)

type options struct {
	graph    string
	target   kernels.Provider
	outputs  []string
	planOnly bool
	format   bool
	logger   *slog.Logger
}

func printPlan(w io.Writer, plan *session.Plan) {
	for _, step := range plan.Steps() {
		fmt.Fprintf(w, "%s: %s\n", step.Node.Ref(), step.Kernel.Def())
	}
	for _, buf := range plan.Buffers() {
		switch buf.Kind {
		case session.HostBuffer:
			fmt.Fprintf(w, "%s: %s %s\n", buf.Node, buf.Kind, buf.Arg)
		default:
			fmt.Fprintf(w, "%s: %s %s->%s\n", buf.Node, buf.Kind, buf.Input, buf.Output)
		}
	}
}

func printOutputs(w io.Writer, plan *session.Plan, vals map[string]gokernels.Array, selected []string) error {
	for _, out := range plan.Resolved().Outputs() {
		if len(selected) > 0 && !slices.Contains(selected, out.Name) {
			continue
		}
		fmt.Fprintf(w, "%s = %s\n", out.Name, vals[out.Name])
	}
	for _, name := range selected {
		if _, ok := vals[name]; !ok {
			return errors.Errorf("%q is not an output of the graph", name)
		}
	}
	return nil
}

func execute(ctx context.Context, w io.Writer, opts options) error {
	if opts.graph == "" {
		return errors.Errorf("no graph specified: please use --graph to specify a graph description file")
	}
	schemas := stdops.NewRegistry()
	model, err := graphfile.Load(opts.graph, schemas)
	if err != nil {
		return err
	}
	if opts.format {
		src, err := graphfile.Marshal(model)
		if err != nil {
			return err
		}
		_, err = w.Write(src)
		return err
	}
	reg, err := backend.New(schemas)
	if err != nil {
		return err
	}
	s := session.New(model.Graph, reg, session.WithTarget(opts.target), session.WithLogger(opts.logger))
	plan, err := s.Prepare()
	if err != nil {
		return err
	}
	if opts.planOnly {
		printPlan(w, plan)
		return nil
	}
	vals, err := s.Run(ctx, plan, model.Feeds)
	if err != nil {
		return err
	}
	return printOutputs(w, plan, vals, opts.outputs)
}

func main() {
	flag.Parse()
	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	opts := options{
		graph:    *graphPath,
		target:   *target,
		outputs:  *outputs,
		planOnly: *planOnly,
		format:   *format,
		logger:   slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})),
	}
	if err := execute(context.Background(), os.Stdout, opts); err != nil {
		if *verbose {
			fmt.Fprintf(os.Stderr, "%+v\n", fmterr.ToStackTraceError(err))
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

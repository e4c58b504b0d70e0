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

// Package graphfile loads graphs described in HCL files.
//
// A graph file declares a format version and a single graph block:
//
//	format_version = "v1.0.0"
//
//	graph "relu" {
//	  input "X" {
//	    type = "float"
//	    dims = [2]
//	  }
//	  initializer "B" {
//	    type   = "float"
//	    dims   = [2]
//	    values = [1, -1]
//	  }
//	  outputs = ["Y"]
//
//	  node "add" {
//	    op      = "Add"
//	    inputs  = ["X", "B"]
//	    outputs = ["Y"]
//	  }
//	}
package graphfile

import (
	"os"

	gokernels "github.com/gx-org/graphrt/golang/backend/kernels"
	"github.com/gx-org/graphrt/graph"
	"github.com/gx-org/graphrt/schema"
	"github.com/gx-org/graphrt/types"
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/pkg/errors"
	"github.com/zclconf/go-cty/cty"
	"go.uber.org/multierr"
	"golang.org/x/mod/semver"
)

// CurrentVersion is the version of the format written by Marshal.
const CurrentVersion = "v1.0.0"

// supportedMajor is the major version of the format this package reads.
const supportedMajor = "v1"

type (
	fileSpec struct {
		FormatVersion string    `hcl:"format_version"`
		Graph         graphSpec `hcl:"graph,block"`
	}

	graphSpec struct {
		Name         string      `hcl:"name,label"`
		Inputs       []*argSpec  `hcl:"input,block"`
		Initializers []*argSpec  `hcl:"initializer,block"`
		ValueInfo    []*argSpec  `hcl:"value_info,block"`
		Outputs      []string    `hcl:"outputs,optional"`
		Nodes        []*nodeSpec `hcl:"node,block"`
	}

	argSpec struct {
		Name   string    `hcl:"name,label"`
		Type   string    `hcl:"type"`
		Dims   []int     `hcl:"dims,optional"`
		Values cty.Value `hcl:"values,optional"`
	}

	nodeSpec struct {
		Name       string          `hcl:"name,label"`
		Op         string          `hcl:"op"`
		Inputs     []string        `hcl:"inputs,optional"`
		Outputs    []string        `hcl:"outputs"`
		Attributes *attributesSpec `hcl:"attributes,block"`
	}

	attributesSpec struct {
		Body hcl.Body `hcl:",remain"`
	}
)

// Model is a graph loaded from a file with the values declared in the file.
type Model struct {
	// Version of the format of the file.
	Version string
	Graph   *graph.Graph
	// Feeds are the values of the initializers and the default values of the inputs.
	Feeds map[string]gokernels.Array
}

// Load reads a graph file.
func Load(path string, schemas schema.Provider) (*Model, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot read graph file")
	}
	return Parse(src, path, schemas)
}

// Parse decodes the content of a graph file.
func Parse(src []byte, filename string, schemas schema.Provider) (*Model, error) {
	file, diags := hclparse.NewParser().ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, errors.Wrapf(diags, "cannot parse %s", filename)
	}
	var spec fileSpec
	if diags := gohcl.DecodeBody(file.Body, nil, &spec); diags.HasErrors() {
		return nil, errors.Wrapf(diags, "cannot decode %s", filename)
	}
	version, err := checkVersion(spec.FormatVersion)
	if err != nil {
		return nil, errors.WithMessagef(err, "%s", filename)
	}
	m, err := spec.Graph.build(schemas)
	if err != nil {
		return nil, errors.WithMessagef(err, "%s: graph %q", filename, spec.Graph.Name)
	}
	m.Version = version
	return m, nil
}

// checkVersion returns the canonical version of the format of a file.
func checkVersion(v string) (string, error) {
	canonical := v
	if len(canonical) > 0 && canonical[0] != 'v' {
		canonical = "v" + canonical
	}
	if !semver.IsValid(canonical) {
		return "", errors.Errorf("invalid format version %q", v)
	}
	if major := semver.Major(canonical); major != supportedMajor {
		return "", errors.Errorf("format version %s not supported: want %s.x.y", v, supportedMajor)
	}
	return semver.Canonical(canonical), nil
}

func (s *argSpec) decodeType() (*types.Type, error) {
	typ, err := types.Decode(s.Type)
	if err != nil {
		return nil, errors.WithMessagef(err, "argument %q", s.Name)
	}
	return typ, nil
}

func (s *graphSpec) build(schemas schema.Provider) (*Model, error) {
	g := graph.New(s.Name, schemas)
	m := &Model{Graph: g, Feeds: make(map[string]gokernels.Array)}
	var errs error
	declare := func(specs []*argSpec, add func(string, *types.Type, ...int) error, needValues bool) {
		for _, arg := range specs {
			typ, err := arg.decodeType()
			if err != nil {
				errs = multierr.Append(errs, err)
				continue
			}
			if err := add(arg.Name, typ, arg.Dims...); err != nil {
				errs = multierr.Append(errs, err)
				continue
			}
			if arg.Values.IsNull() {
				if needValues {
					errs = multierr.Append(errs, errors.Errorf("initializer %q has no values", arg.Name))
				}
				continue
			}
			array, err := toArray(typ, arg.Dims, arg.Values)
			if err != nil {
				errs = multierr.Append(errs, errors.WithMessagef(err, "argument %q", arg.Name))
				continue
			}
			m.Feeds[arg.Name] = array
		}
	}
	declare(s.Inputs, g.AddInput, false)
	declare(s.Initializers, g.AddInitializer, true)
	for _, arg := range s.ValueInfo {
		typ, err := arg.decodeType()
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		errs = multierr.Append(errs, g.Annotate(arg.Name, typ, arg.Dims...))
	}
	for _, out := range s.Outputs {
		errs = multierr.Append(errs, g.AddOutput(out))
	}
	for _, node := range s.Nodes {
		attrs, err := node.attributes()
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		if _, err := g.AddNode(node.Name, node.Op, node.Inputs, node.Outputs, attrs); err != nil {
			errs = multierr.Append(errs, err)
		}
	}
	if errs != nil {
		return nil, errs
	}
	return m, nil
}

func (s *nodeSpec) attributes() (schema.Attributes, error) {
	if s.Attributes == nil {
		return nil, nil
	}
	hclAttrs, diags := s.Attributes.Body.JustAttributes()
	if diags.HasErrors() {
		return nil, errors.Wrapf(diags, "node %q: invalid attributes", s.Name)
	}
	attrs := make(schema.Attributes, len(hclAttrs))
	for name, attr := range hclAttrs {
		val, diags := attr.Expr.Value(nil)
		if diags.HasErrors() {
			return nil, errors.Wrapf(diags, "node %q: attribute %q", s.Name, name)
		}
		attrs[name] = val
	}
	return attrs, nil
}

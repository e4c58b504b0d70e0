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

package graphfile

import (
	"slices"

	"github.com/gx-org/graphrt/graph"
	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/pkg/errors"
	"github.com/zclconf/go-cty/cty"
	"golang.org/x/exp/maps"
)

func stringList(ss []string) cty.Value {
	if len(ss) == 0 {
		return cty.ListValEmpty(cty.String)
	}
	vals := make([]cty.Value, len(ss))
	for i, s := range ss {
		vals[i] = cty.StringVal(s)
	}
	return cty.ListVal(vals)
}

func dimsList(dims []int) cty.Value {
	vals := make([]cty.Value, len(dims))
	for i, d := range dims {
		vals[i] = cty.NumberIntVal(int64(d))
	}
	if len(vals) == 0 {
		return cty.ListValEmpty(cty.Number)
	}
	return cty.ListVal(vals)
}

func (m *Model) writeArgs(body *hclwrite.Body, blockType string, vis []graph.ValueInfo, withValues bool) error {
	for _, vi := range vis {
		block := body.AppendNewBlock(blockType, []string{vi.Name}).Body()
		block.SetAttributeValue("type", cty.StringVal(vi.Type.String()))
		if vi.Dims != nil {
			block.SetAttributeValue("dims", dimsList(vi.Dims))
		}
		if !withValues {
			continue
		}
		feed, ok := m.Feeds[vi.Name]
		if !ok {
			continue
		}
		vals, err := fromArray(feed)
		if err != nil {
			return errors.WithMessagef(err, "argument %q", vi.Name)
		}
		block.SetAttributeValue("values", vals)
	}
	return nil
}

// Marshal writes a model in the format read by Parse.
func Marshal(m *Model) ([]byte, error) {
	f := hclwrite.NewEmptyFile()
	root := f.Body()
	root.SetAttributeValue("format_version", cty.StringVal(CurrentVersion))
	root.AppendNewline()
	g := m.Graph
	body := root.AppendNewBlock("graph", []string{g.Name()}).Body()
	if err := m.writeArgs(body, "input", g.DeclaredInputs(), true); err != nil {
		return nil, err
	}
	if err := m.writeArgs(body, "initializer", g.Initializers(), true); err != nil {
		return nil, err
	}
	if err := m.writeArgs(body, "value_info", g.Annotations(), false); err != nil {
		return nil, err
	}
	if outs := g.DeclaredOutputs(); len(outs) > 0 {
		body.SetAttributeValue("outputs", stringList(outs))
	}
	for node := range g.Nodes() {
		body.AppendNewline()
		block := body.AppendNewBlock("node", []string{node.Name()}).Body()
		block.SetAttributeValue("op", cty.StringVal(node.OpType()))
		block.SetAttributeValue("inputs", stringList(node.Inputs()))
		block.SetAttributeValue("outputs", stringList(node.Outputs()))
		attrs := node.Attributes()
		if len(attrs) == 0 {
			continue
		}
		attrBlock := block.AppendNewBlock("attributes", nil).Body()
		names := maps.Keys(attrs)
		slices.Sort(names)
		for _, name := range names {
			attrBlock.SetAttributeValue(name, attrs[name])
		}
	}
	return hclwrite.Format(f.Bytes()), nil
}

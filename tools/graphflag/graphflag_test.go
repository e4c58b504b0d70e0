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

package graphflag_test

import (
	"flag"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/gx-org/graphrt/kernels"
	"github.com/gx-org/graphrt/tools/graphflag"
)

func TestFlags(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	outputs := graphflag.StringListVar(fs, "outputs", "")
	target := graphflag.TargetVar(fs, "target", kernels.CPU, "")
	if err := fs.Parse([]string{"-outputs", "Y, Flat,", "-outputs=H", "-target", "CUDA"}); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"Y", "Flat", "H"}, *outputs); diff != "" {
		t.Errorf("unexpected outputs: (-want +got):\n%s", diff)
	}
	if *target != kernels.CUDA {
		t.Errorf("got target %s but want cuda", *target)
	}
}

func TestTargetDefault(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	target := graphflag.TargetVar(fs, "target", kernels.CPU, "")
	if err := fs.Parse(nil); err != nil {
		t.Fatal(err)
	}
	if *target != kernels.CPU {
		t.Errorf("got target %s but want cpu", *target)
	}
	if err := fs.Parse([]string{"-target", "tpu"}); err == nil {
		t.Error("expected an error for an unknown target but got nil")
	}
}

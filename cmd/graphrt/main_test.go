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

package main

import (
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/gx-org/graphrt/kernels"
)

const mlpPath = "../../graphfile/testdata/mlp.hcl"

func executeString(t *testing.T, opts options) (string, error) {
	t.Helper()
	if opts.logger == nil {
		opts.logger = slog.New(slog.DiscardHandler)
	}
	if opts.target == kernels.InvalidProvider {
		opts.target = kernels.CPU
	}
	var out strings.Builder
	err := execute(context.Background(), &out, opts)
	return out.String(), err
}

func TestExecute(t *testing.T) {
	got, err := executeString(t, options{graph: mlpPath, outputs: []string{"Flat", "FlatD"}})
	if err != nil {
		t.Fatalf("%+v", err)
	}
	want := "Flat = [4]float{5, 2, 0, 0}\nFlatD = [4]double{5, 2, 0, 0}\n"
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("unexpected output: (-want +got):\n%s", diff)
	}
}

func TestExecutePlan(t *testing.T) {
	got, err := executeString(t, options{graph: mlpPath, planOnly: true})
	if err != nil {
		t.Fatalf("%+v", err)
	}
	for _, want := range []string{"MatMul[cpu]", "inplace XW->H", "alias Y->Flat", "host Shape"} {
		if !strings.Contains(got, want) {
			t.Errorf("%q cannot be found in plan:\n%s", want, got)
		}
	}
}

func TestExecuteFormat(t *testing.T) {
	got, err := executeString(t, options{graph: mlpPath, format: true})
	if err != nil {
		t.Fatalf("%+v", err)
	}
	if !strings.Contains(got, `graph "mlp"`) {
		t.Errorf("unexpected formatted graph:\n%s", got)
	}
}

func TestExecuteErrors(t *testing.T) {
	if _, err := executeString(t, options{}); err == nil {
		t.Error("expected an error without graph but got nil")
	}
	if _, err := executeString(t, options{graph: mlpPath, target: kernels.CUDA}); err == nil {
		t.Error("expected an error for a target without kernels but got nil")
	}
	if _, err := executeString(t, options{graph: mlpPath, outputs: []string{"Z"}}); err == nil {
		t.Error("expected an error for an unknown output but got nil")
	}
}

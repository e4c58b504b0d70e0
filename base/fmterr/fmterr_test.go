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

package fmterr_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/gx-org/graphrt/base/fmterr"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

type customError struct{ name string }

func (err *customError) Error() string { return "custom " + err.name }

func TestInternal(t *testing.T) {
	err := fmterr.Internal(&customError{name: "x"})
	if !fmterr.IsInternal(err) {
		t.Errorf("error %v not reported as internal", err)
	}
	var custom *customError
	if !errors.As(err, &custom) {
		t.Fatalf("cannot find %T in %v", custom, err)
	}
	if custom.name != "x" {
		t.Errorf("got name %q but want %q", custom.name, "x")
	}
	if !strings.Contains(err.Error(), "custom x") {
		t.Errorf("error message %q does not contain the original error", err.Error())
	}
	if fmterr.IsInternal(&customError{}) {
		t.Errorf("non-internal error reported as internal")
	}
	if fmterr.Internal(nil) != nil {
		t.Errorf("Internal(nil) != nil")
	}
}

func TestPrefixWith(t *testing.T) {
	base := &customError{name: "y"}
	err := fmterr.PrefixWith("node %d: ", 3)(base)
	if got, want := err.Error(), "node 3: custom y"; got != want {
		t.Errorf("got %q but want %q", got, want)
	}
	if !errors.Is(err, base) {
		t.Errorf("prefixed error does not wrap the original error")
	}
}

func TestStackTrace(t *testing.T) {
	err := fmterr.ToStackTraceError(errors.Errorf("boom"))
	verbose := fmt.Sprintf("%+v", err)
	if !strings.Contains(verbose, "Error generated at:") {
		t.Errorf("verbose format %q does not contain a stack trace", verbose)
	}
	if got := fmt.Sprintf("%v", err); got != "boom" {
		t.Errorf("got %q but want %q", got, "boom")
	}
}

func TestStackTraceMultipleErrors(t *testing.T) {
	err := fmterr.ToStackTraceError(multierr.Combine(
		errors.Errorf("dangling input"),
		errors.Errorf("duplicate output"),
	))
	verbose := fmt.Sprintf("%+v", err)
	for _, want := range []string{"2 errors:", "[1] dangling input", "[2] duplicate output"} {
		if !strings.Contains(verbose, want) {
			t.Errorf("%q cannot be found in %q", want, verbose)
		}
	}
	if got := strings.Count(verbose, "Error generated at:"); got != 2 {
		t.Errorf("got %d stack traces but want 2 in %q", got, verbose)
	}
	if got, want := fmt.Sprintf("%v", err), "dangling input; duplicate output"; got != want {
		t.Errorf("got %q but want %q", got, want)
	}
}

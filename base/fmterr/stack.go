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

package fmterr

import (
	"fmt"
	"io"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

type errorWithStackTrace struct {
	err error
}

func writeStackTrace(err error, s fmt.State) {
	var withSt interface {
		StackTrace() errors.StackTrace
	}
	if !errors.As(err, &withSt) {
		return
	}
	fmt.Fprintf(s, "\nError generated at:%+v\n", withSt.StackTrace())
}

// formatVerbose writes an error with its stack trace.
// Errors accumulated with multierr are written one by one, each with its own stack trace.
func formatVerbose(err error, s fmt.State) {
	errs := multierr.Errors(errors.Unwrap(err))
	if len(errs) < 2 {
		io.WriteString(s, err.Error())
		writeStackTrace(err, s)
		return
	}
	fmt.Fprintf(s, "%d errors:", len(errs))
	for i, err := range errs {
		fmt.Fprintf(s, "\n[%d] %s", i+1, err.Error())
		writeStackTrace(err, s)
	}
}

func format(err error, s fmt.State, verb rune) {
	switch verb {
	case 'v':
		if s.Flag('+') {
			formatVerbose(err, s)
			return
		}
		fallthrough
	case 's':
		io.WriteString(s, err.Error())
	case 'q':
		fmt.Fprintf(s, "%q", err.Error())
	}
}

// ToStackTraceError returns an error printing the stack trace where it was
// generated when formatted with %+v, if that stack trace is available.
func ToStackTraceError(err error) error {
	if err == nil {
		return nil
	}
	return errorWithStackTrace{err: err}
}

func (err errorWithStackTrace) Unwrap() error {
	return err.err
}

func (err errorWithStackTrace) Format(s fmt.State, verb rune) {
	format(err, s, verb)
}

func (err errorWithStackTrace) Error() string {
	return err.err.Error()
}

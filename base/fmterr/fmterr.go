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

// Package fmterr formats errors reported by the runtime.
package fmterr

import (
	"fmt"

	"github.com/pkg/errors"
)

// PrefixWith returns a function prefixing an error with a formatted message.
// The returned error wraps the original one.
func PrefixWith(s string, o ...any) func(err error) error {
	return func(err error) error {
		return fmt.Errorf("%s%w", fmt.Sprintf(s, o...), err)
	}
}

type internalError struct {
	err error
}

// Internal marks an error as an internal consistency failure of the runtime,
// that is a bug rather than a problem with the caller input.
// The original error can still be found with errors.As.
func Internal(err error) error {
	if err == nil {
		return nil
	}
	return internalError{err: errors.WithStack(err)}
}

// Internalf returns a new internal error.
func Internalf(format string, a ...any) error {
	return internalError{err: errors.Errorf(format, a...)}
}

// IsInternal returns true if the error, or one of the errors it wraps,
// is an internal error.
func IsInternal(err error) bool {
	var target internalError
	return errors.As(err, &target)
}

func (err internalError) Error() string {
	return "graphrt internal error. This is a bug in graphrt. Please report it. Error: " + err.err.Error()
}

func (err internalError) Unwrap() error {
	return err.err
}

func (err internalError) Format(s fmt.State, verb rune) {
	format(err, s, verb)
}

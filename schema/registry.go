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

package schema

import (
	"slices"

	"github.com/pkg/errors"
	"golang.org/x/exp/maps"
)

// Registry stores the schema of operators.
// It is populated at initialization and read-only after.
type Registry struct {
	schemas map[string]*Schema
}

var _ Provider = (*Registry)(nil)

// NewRegistry returns an empty schema registry.
func NewRegistry() *Registry {
	return &Registry{schemas: make(map[string]*Schema)}
}

// Register a schema. An operator can only be registered once.
func (r *Registry) Register(s *Schema) error {
	if err := s.Validate(); err != nil {
		return err
	}
	if _, exist := r.schemas[s.Op]; exist {
		return errors.Errorf("operator %s already registered", s.Op)
	}
	r.schemas[s.Op] = s
	return nil
}

// Schema returns the schema of an operator.
func (r *Registry) Schema(op string) (*Schema, bool) {
	s, ok := r.schemas[op]
	return s, ok
}

// Operators returns the sorted names of the registered operators.
func (r *Registry) Operators() []string {
	ops := maps.Keys(r.schemas)
	slices.Sort(ops)
	return ops
}

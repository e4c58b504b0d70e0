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

// Package backend implements the Go execution target.
package backend

import (
	gokernels "github.com/gx-org/graphrt/golang/backend/kernels"
	"github.com/gx-org/graphrt/kernels"
	"github.com/gx-org/graphrt/schema"
)

// Target is the execution target of the kernels of the Go backend.
const Target = kernels.CPU

// New returns a kernel registry with the kernels of the Go backend.
func New(schemas schema.Provider) (*kernels.Registry, error) {
	reg := kernels.NewRegistry(schemas)
	if err := gokernels.Register(reg); err != nil {
		return nil, err
	}
	return reg, nil
}

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

package kernels

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Provider is an execution target on which kernels run.
type Provider int

const (
	// InvalidProvider is the zero value of Provider.
	InvalidProvider Provider = iota
	// CPU runs kernels on the host.
	CPU
	// DirectML runs kernels with DirectML.
	DirectML
	// CUDA runs kernels on NVIDIA GPUs.
	CUDA
	// MKL runs kernels with the Intel Math Kernel Library.
	MKL
	// FPGA runs kernels on FPGAs.
	FPGA
	// GraphCore runs kernels on GraphCore IPUs.
	GraphCore
	// NNAPI runs kernels with the Android Neural Networks API.
	NNAPI
	// CoreML runs kernels with Apple Core ML.
	CoreML
)

var providerNames = [...]string{
	InvalidProvider: "invalid",
	CPU:             "cpu",
	DirectML:        "directml",
	CUDA:            "cuda",
	MKL:             "mkl",
	FPGA:            "fpga",
	GraphCore:       "graphcore",
	NNAPI:           "nnapi",
	CoreML:          "coreml",
}

// Providers returns all the valid providers.
func Providers() []Provider {
	ps := make([]Provider, 0, len(providerNames)-1)
	for p := CPU; int(p) < len(providerNames); p++ {
		ps = append(ps, p)
	}
	return ps
}

// Valid returns true if the provider is a known execution target.
func (p Provider) Valid() bool {
	return p > InvalidProvider && int(p) < len(providerNames)
}

func (p Provider) String() string {
	if p < 0 || int(p) >= len(providerNames) {
		return "provider(" + strconv.Itoa(int(p)) + ")"
	}
	return providerNames[p]
}

// ParseProvider returns the provider given its name. Names are case insensitive.
func ParseProvider(s string) (Provider, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for _, p := range Providers() {
		if providerNames[p] == name {
			return p, nil
		}
	}
	return InvalidProvider, errors.Errorf("unknown execution provider %q", s)
}

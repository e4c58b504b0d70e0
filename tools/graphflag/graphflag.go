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

// Package graphflag provides flag types for graph tools.
package graphflag

import (
	"flag"
	"strings"

	"github.com/gx-org/graphrt/kernels"
)

type stringList struct {
	list *[]string
}

func (sl *stringList) String() string {
	if sl.list == nil {
		return ""
	}
	return strings.Join(*sl.list, ",")
}

func (sl *stringList) Set(values string) error {
	for _, value := range strings.Split(values, ",") {
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		*sl.list = append(*sl.list, value)
	}
	return nil
}

// StringListVar defines a flag to pass a list of comma separated strings in a flag set.
func StringListVar(fs *flag.FlagSet, name, doc string) *[]string {
	var list []string
	fs.Var(&stringList{&list}, name, doc)
	return &list
}

// StringList returns a flag to pass a list of string from the command line.
func StringList(name, doc string) *[]string {
	return StringListVar(flag.CommandLine, name, doc)
}

type target struct {
	provider *kernels.Provider
}

func (t *target) String() string {
	if t.provider == nil {
		return ""
	}
	return t.provider.String()
}

func (t *target) Set(value string) error {
	p, err := kernels.ParseProvider(value)
	if err != nil {
		return err
	}
	*t.provider = p
	return nil
}

// TargetVar defines a flag selecting an execution target in a flag set.
func TargetVar(fs *flag.FlagSet, name string, def kernels.Provider, doc string) *kernels.Provider {
	p := def
	fs.Var(&target{&p}, name, doc)
	return &p
}

// Target returns a flag to select an execution target from the command line.
func Target(name string, def kernels.Provider, doc string) *kernels.Provider {
	return TargetVar(flag.CommandLine, name, def, doc)
}

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

package ctxlog_test

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/gx-org/graphrt/base/ctxlog"
)

func TestFromContext(t *testing.T) {
	if got := ctxlog.FromContext(context.Background()); got != slog.Default() {
		t.Errorf("got %v but want the default logger", got)
	}
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	ctx := ctxlog.WithLogger(context.Background(), logger)
	ctxlog.FromContext(ctx).Info("hello", "key", "value")
	if !strings.Contains(buf.String(), "key=value") {
		t.Errorf("message not written to the logger of the context: %q", buf.String())
	}
	if _, ok := ctxlog.Lookup(ctxlog.WithLogger(ctx, nil)); ok {
		t.Errorf("nil logger found in context")
	}
}

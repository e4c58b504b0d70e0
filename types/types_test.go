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

package types_test

import (
	"errors"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/gx-org/graphrt/types"
)

func TestEncode(t *testing.T) {
	float := types.Tensor(types.Float32)
	tests := []struct {
		typ  *types.Type
		want string
	}{
		{typ: float, want: "float"},
		{typ: types.Tensor(types.Float64), want: "double"},
		{typ: types.Tensor(types.Float16), want: "float16"},
		{typ: types.Seq(float), want: "seq(float)"},
		{typ: types.Sparse(types.Int64), want: "sparse(int64)"},
		{
			typ:  types.MapOf(types.Int64, types.Seq(types.Tensor(types.Float64))),
			want: "map(int64,seq(double))",
		},
		{
			typ: types.Record(
				types.Field{Name: "a", Type: float},
				types.Field{Name: "b", Type: types.Seq(types.Tensor(types.Int32))},
			),
			want: "record(a:float,b:seq(int32))",
		},
		{
			typ: types.Union(
				types.Field{Name: "x", Type: types.MapOf(types.String, float)},
				types.Field{Name: "y", Type: types.Tensor(types.Complex128)},
			),
			want: "union(x:map(string,float),y:complex128)",
		},
	}
	for i, test := range tests {
		if got := types.Encode(test.typ); got != test.want {
			t.Errorf("test %d: got %q but want %q", i, got, test.want)
		}
	}
}

func TestDecodeMap(t *testing.T) {
	typ, err := types.Decode("map(int64,seq(double))")
	if err != nil {
		t.Fatal(err)
	}
	if typ.Kind() != types.MapKind {
		t.Fatalf("got kind %s but want %s", typ.Kind(), types.MapKind)
	}
	if typ.Elem() != types.Int64 {
		t.Errorf("got key %s but want %s", typ.Elem(), types.Int64)
	}
	if want := types.Seq(types.Tensor(types.Float64)); typ.Value() != want {
		t.Errorf("got value %s but want %s", typ.Value(), want)
	}
	if got := typ.String(); got != "map(int64,seq(double))" {
		t.Errorf("got %q after re-encoding", got)
	}
}

func TestDecodeRecord(t *testing.T) {
	typ, err := types.Decode("record(a:float,b:seq(int32))")
	if err != nil {
		t.Fatal(err)
	}
	if typ.Kind() != types.RecordKind {
		t.Fatalf("got kind %s but want %s", typ.Kind(), types.RecordKind)
	}
	var names []string
	for _, field := range typ.Fields() {
		names = append(names, field.Name)
	}
	if !cmp.Equal(names, []string{"a", "b"}) {
		t.Errorf("got field names %v but want [a b]", names)
	}
	if got := typ.Field(1).Type.String(); got != "seq(int32)" {
		t.Errorf("got field b type %q but want seq(int32)", got)
	}
}

func TestDecodeNested(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{
			text: "  seq( float )  ",
			want: "seq(float)",
		},
		{
			text: "record(a:record(x:int8,y:map(int32,record(p:bool,q:string))),b:union(c:float,d:seq(seq(uint64))))",
			want: "record(a:record(x:int8,y:map(int32,record(p:bool,q:string))),b:union(c:float,d:seq(seq(uint64))))",
		},
		{
			text: "record( a : map (int64, record(u:float, v:double)) , b:sparse( int16 ))",
			want: "record(a:map(int64,record(u:float,v:double)),b:sparse(int16))",
		},
		{
			text: "union(only:complex64)",
			want: "union(only:complex64)",
		},
	}
	for i, test := range tests {
		typ, err := types.Decode(test.text)
		if err != nil {
			t.Errorf("test %d: cannot decode %q: %v", i, test.text, err)
			continue
		}
		if got := typ.String(); got != test.want {
			t.Errorf("test %d: got %q but want %q", i, got, test.want)
		}
		again, err := types.Decode(typ.String())
		if err != nil {
			t.Errorf("test %d: cannot decode canonical form %q: %v", i, typ.String(), err)
			continue
		}
		if again != typ {
			t.Errorf("test %d: canonical form %q decodes to a different type", i, typ.String())
		}
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		text      string
		offending string
	}{
		{text: "record()", offending: "record()"},
		{text: "union(  )", offending: "union(  )"},
		{text: "flot", offending: "flot"},
		{text: "seq(float", offending: "(float"},
		{text: "seq(float))", offending: "seq(float))"},
		{text: "seq()", offending: ""},
		{text: "map(float)", offending: "map(float)"},
		{text: "map(tensor,float)", offending: "tensor"},
		{text: "sparse(seq(float))", offending: "seq(float)"},
		{text: "record(a:float,)", offending: ""},
		{text: "record(a float)", offending: "a float"},
		{text: "record(a:float,a:double)", offending: "record(a:float,a:double)"},
		{text: "record(a b:float)", offending: "a b:float"},
		{text: "record(1a:float)", offending: "1a:float"},
		{text: "undefined", offending: "undefined"},
		{text: "", offending: ""},
		{text: "record(a:record(b:seq(flaot)))", offending: "flaot"},
	}
	for i, test := range tests {
		typ, err := types.Decode(test.text)
		if err == nil {
			t.Errorf("test %d: decoding %q returned %s but want an error", i, test.text, typ)
			continue
		}
		var synErr *types.SyntaxError
		if !errors.As(err, &synErr) {
			t.Errorf("test %d: got error %T but want %T", i, err, synErr)
			continue
		}
		if synErr.Text != test.offending {
			t.Errorf("test %d: got offending text %q but want %q", i, synErr.Text, test.offending)
		}
	}
}

func TestRoundTrip(t *testing.T) {
	var all []*types.Type
	for _, p := range types.Primitives() {
		all = append(all, types.Tensor(p), types.Sparse(p))
	}
	float := types.Tensor(types.Float32)
	all = append(all,
		types.Seq(types.Seq(float)),
		types.MapOf(types.String, types.Seq(types.MapOf(types.Int64, float))),
		types.Record(
			types.Field{Name: "first", Type: float},
			types.Field{Name: "second", Type: types.Union(
				types.Field{Name: "l", Type: types.Sparse(types.Uint8)},
				types.Field{Name: "r", Type: types.Seq(float)},
			)},
		),
	)
	for _, typ := range all {
		got, err := types.Decode(types.Encode(typ))
		if err != nil {
			t.Errorf("cannot decode %s: %v", typ, err)
			continue
		}
		if got != typ {
			t.Errorf("decode(encode(%s)) returned a different type %s", typ, got)
		}
	}
}

func TestInterning(t *testing.T) {
	a := types.MustDecode("record(a:float,b:seq(int32))")
	b := types.MustDecode("record( a:float , b:seq( int32 ) )")
	if a != b {
		t.Errorf("decoding the same type twice returned two instances")
	}
	c := types.Record(
		types.Field{Name: "a", Type: types.Tensor(types.Float32)},
		types.Field{Name: "b", Type: types.Seq(types.Tensor(types.Int32))},
	)
	if a != c {
		t.Errorf("decoded and constructed types are not the same instance")
	}
	swapped := types.MustDecode("record(b:seq(int32),a:float)")
	if swapped == a || types.Equal(swapped, a) {
		t.Errorf("records with different field orders are the same type")
	}
}

func TestConcurrentInterning(t *testing.T) {
	const numRoutines = 16
	text := "union(left:map(uint16,seq(complex64)),right:record(z:sparse(float16)))"
	got := make([]*types.Type, numRoutines)
	var wg sync.WaitGroup
	for i := range numRoutines {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got[i] = types.MustDecode(text)
		}()
	}
	wg.Wait()
	for i := range got {
		if got[i] != got[0] {
			t.Errorf("routine %d got a different instance", i)
		}
	}
}

func TestInvalidConstruction(t *testing.T) {
	if _, err := types.NewRecord(); err == nil {
		t.Errorf("empty record: no error")
	}
	if _, err := types.NewUnion(types.Field{Name: "a"}); err == nil {
		t.Errorf("union with a nil type: no error")
	}
	if _, err := types.NewRecord(types.Field{Name: "a", Type: &types.Type{}}); err == nil {
		t.Errorf("record with a type not built by the package: no error")
	}
	if _, err := types.NewMap(types.Undefined, types.Tensor(types.Bool)); err == nil {
		t.Errorf("map with an undefined key: no error")
	}
	defer func() {
		if recover() == nil {
			t.Errorf("Tensor(Undefined) did not panic")
		}
	}()
	types.Tensor(types.Undefined)
}

func TestParsePrimitive(t *testing.T) {
	for _, p := range types.Primitives() {
		got, err := types.ParsePrimitive(p.String())
		if err != nil {
			t.Errorf("cannot parse %s: %v", p, err)
			continue
		}
		if got != p {
			t.Errorf("got %v but want %v", got, p)
		}
	}
	if p, err := types.ParsePrimitive("float32"); err == nil {
		t.Errorf("float32 parsed as %s but only float is canonical", p)
	}
}

package tree

import (
	"errors"
	"reflect"
	"testing"
)

func TestReadAbsent(t *testing.T) {
	tests := []struct {
		name string
		root Value
		ptr  string
	}{
		{"empty root", Object{}, "/key"},
		{"nested absent", Object{"a": Object{}}, "/a/b/c"},
		{"through scalar", Object{"a": "x"}, "/a/b"},
		{"array out of range", Object{"a": Array{1.0, 2.0}}, "/a/5"},
		{"array non-numeric index", Object{"a": Array{1.0}}, "/a/oops"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Read(tt.root, tt.ptr)
			if _, ok := got.(Null); !ok {
				t.Errorf("Read(%v, %q) = %#v, want Null{}", tt.root, tt.ptr, got)
			}
		})
	}
}

func TestAssignAutovivify(t *testing.T) {
	var root Value = Object{}

	if err := Assign(&root, "/root/key", "value"); err != nil {
		t.Fatalf("Assign: %v", err)
	}

	want := Object{"root": Object{"key": "value"}}
	if !reflect.DeepEqual(root, want) {
		t.Errorf("root = %#v, want %#v", root, want)
	}

	got := Read(root, "/root")
	wantGot := Object{"key": "value"}
	if !reflect.DeepEqual(got, wantGot) {
		t.Errorf("Read(root, /root) = %#v, want %#v", got, wantGot)
	}
}

func TestAssignRootReplacesEntireTree(t *testing.T) {
	var root Value = Object{"stale": "data"}
	if err := Assign(&root, "", "fresh"); err != nil {
		t.Fatalf("Assign: %v", err)
	}
	if root != Value("fresh") {
		t.Errorf("root = %#v, want %q", root, "fresh")
	}
}

func TestAssignThroughScalarErrors(t *testing.T) {
	var root Value = Object{"a": "scalar"}
	err := Assign(&root, "/a/b", "value")
	if err == nil {
		t.Fatal("expected TreeError, got nil")
	}
	var treeErr *TreeError
	if !errors.As(err, &treeErr) {
		t.Fatalf("expected *TreeError, got %T", err)
	}
	if treeErr.Kind != KindAssignThroughScalar {
		t.Errorf("Kind = %v, want KindAssignThroughScalar", treeErr.Kind)
	}

	// the tree must be untouched
	want := Object{"a": "scalar"}
	if !reflect.DeepEqual(root, want) {
		t.Errorf("root mutated on error: %#v", root)
	}
}

func TestAppendCreatesArray(t *testing.T) {
	var root Value = Object{}
	if err := Append(&root, "/list", 1.0); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := Append(&root, "/list", 2.0); err != nil {
		t.Fatalf("Append: %v", err)
	}

	want := Object{"list": Array{1.0, 2.0}}
	if !reflect.DeepEqual(root, want) {
		t.Errorf("root = %#v, want %#v", root, want)
	}
}

func TestAppendOntoNonArrayErrors(t *testing.T) {
	var root Value = Object{"x": "scalar"}
	err := Append(&root, "/x", 1.0)
	if err == nil {
		t.Fatal("expected TreeError, got nil")
	}
	var treeErr *TreeError
	if !errors.As(err, &treeErr) || treeErr.Kind != KindPushNonArray {
		t.Fatalf("expected KindPushNonArray, got %#v", err)
	}
}

func TestFromAnyToAnyRoundTrip(t *testing.T) {
	in := map[string]interface{}{
		"name": "Alfred",
		"age":  30.0,
		"tags": []interface{}{"a", "b"},
		"addr": map[string]interface{}{"city": "Gotham"},
		"nope": nil,
	}

	v := FromAny(in)
	out := ToAny(v)

	if !reflect.DeepEqual(in, out) {
		t.Errorf("round trip mismatch:\n  in  = %#v\n  out = %#v", in, out)
	}
}

func TestToAnyNull(t *testing.T) {
	if got := ToAny(Null{}); got != nil {
		t.Errorf("ToAny(Null{}) = %#v, want nil", got)
	}
}

package payload_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/mizuchi-rpc/sdk-go/payload"
)

func TestPathOperations(t *testing.T) {
	p := payload.New()

	if p.Exists("a") {
		t.Error("Exists(a): got true, want false")
	}
	if got := p.Get([]string{"a", "b"}, "fallback"); got != "fallback" {
		t.Errorf("Get(a.b): got %v, want fallback", got)
	}

	if !p.Set([]string{"a", "b", "c"}, int64(1)) {
		t.Error("Set(a.b.c): got false, want true")
	}
	if !p.Append([]string{"a", "list"}, "x") {
		t.Error("Append(a.list): got false, want true")
	}
	if !p.Extend([]string{"a", "list"}, []any{"y", "z"}) {
		t.Error("Extend(a.list): got false, want true")
	}
	if !p.Set([]string{"top"}, "value") {
		t.Error("Set(top): got false, want true")
	}
	if !p.Delete("top") {
		t.Error("Delete(top): got false, want true")
	}
	if p.Delete("top") {
		t.Error("Delete(top) again: got true, want false")
	}

	want := map[string]any{
		"a": map[string]any{
			"b":    map[string]any{"c": int64(1)},
			"list": []any{"x", "y", "z"},
		},
	}
	if diff := cmp.Diff(want, p.Data()); diff != "" {
		t.Errorf("Document tree (-want, +got):\n%s", diff)
	}

	if !p.Equals([]string{"a", "list"}, []any{"x", "y", "z"}) {
		t.Error("Equals(a.list): got false, want true")
	}
}

func TestMutatorsOnMistypedPaths(t *testing.T) {
	p := payload.From(map[string]any{"scalar": "value", "list": []any{int64(1)}})

	if p.Set([]string{"scalar", "inner"}, 1) {
		t.Error("Set below a scalar: got true, want false")
	}
	if p.Append([]string{"scalar"}, 1) {
		t.Error("Append to a scalar: got true, want false")
	}
	if p.Append([]string{"list", "inner"}, 1) {
		t.Error("Append below a list: got true, want false")
	}
	if p.Exists("scalar", "inner") {
		t.Error("Exists below a scalar: got true, want false")
	}

	// The failed operations must leave the document unchanged.
	want := map[string]any{"scalar": "value", "list": []any{int64(1)}}
	if diff := cmp.Diff(want, p.Data()); diff != "" {
		t.Errorf("Document tree (-want, +got):\n%s", diff)
	}
}

func TestPathPrefix(t *testing.T) {
	data := map[string]any{"a": map[string]any{"b": "value"}}
	p := payload.WithPrefix(data, "a")

	if got := p.Get([]string{"b"}, nil); got != "value" {
		t.Errorf("prefixed Get(b): got %v, want value", got)
	}
	if got := p.Unprefixed().Get([]string{"a", "b"}, nil); got != "value" {
		t.Errorf("unprefixed Get(a.b): got %v, want value", got)
	}
	if p.Unprefixed().Exists("b") {
		t.Error("unprefixed Exists(b): got true, want false")
	}

	p.Set([]string{"c"}, int64(2))
	if got := p.Unprefixed().Get([]string{"a", "c"}, nil); got != int64(2) {
		t.Errorf("unprefixed Get(a.c): got %v, want 2", got)
	}
}

func TestDeepCopy(t *testing.T) {
	src := map[string]any{
		"m": map[string]any{"k": []any{int64(1), "two"}},
		"b": []byte("raw"),
	}
	got := payload.DeepCopy(src).(map[string]any)
	if diff := cmp.Diff(src, got); diff != "" {
		t.Errorf("DeepCopy (-want, +got):\n%s", diff)
	}

	// Mutating the copy must not affect the source.
	got["m"].(map[string]any)["k"].([]any)[0] = int64(99)
	got["b"].([]byte)[0] = 'X'
	if src["m"].(map[string]any)["k"].([]any)[0] != int64(1) {
		t.Error("DeepCopy shares nested slices with the source")
	}
	if string(src["b"].([]byte)) != "raw" {
		t.Error("DeepCopy shares byte slices with the source")
	}
}

func TestClone(t *testing.T) {
	p := payload.WithPrefix(map[string]any{"a": map[string]any{"b": int64(1)}}, "a")
	q := p.Clone()
	q.Set([]string{"b"}, int64(2))

	if got := p.Get([]string{"b"}, nil); got != int64(1) {
		t.Errorf("original after clone mutation: got %v, want 1", got)
	}
	if got := q.Get([]string{"b"}, nil); got != int64(2) {
		t.Errorf("clone keeps the prefix: got %v, want 2", got)
	}
}

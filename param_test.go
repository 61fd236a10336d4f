package mizuchi

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/mizuchi-rpc/sdk-go/codec"
	"github.com/mizuchi-rpc/sdk-go/payload/ns"
	"github.com/shopspring/decimal"
)

func TestResolveParamType(t *testing.T) {
	tests := []struct {
		value any
		want  string
	}{
		{nil, TypeNull},
		{true, TypeBoolean},
		{int64(7), TypeInteger},
		{uint8(7), TypeInteger},
		{3.5, TypeFloat},
		{decimal.New(35, -1), TypeFloat},
		{"text", TypeString},
		{codec.NewDate(2023, 5, 17), TypeString},
		{codec.NewTimeOfDay(9, 30, 15), TypeString},
		{[]byte("raw"), TypeBinary},
		{[]any{int64(1)}, TypeArray},
		{map[string]any{"k": int64(1)}, TypeObject},
		{struct{}{}, TypeString},
	}
	for _, test := range tests {
		if got := resolveParamType(test.value); got != test.want {
			t.Errorf("resolveParamType(%v): got %q, want %q", test.value, got, test.want)
		}
	}
}

func TestParamValues(t *testing.T) {
	p := NewParam("id", int64(7))
	if p.Name() != "id" || p.Value() != int64(7) || p.Type() != TypeInteger {
		t.Errorf("NewParam: got %q %v %q", p.Name(), p.Value(), p.Type())
	}
	if p.Exists() {
		t.Error("Exists for a new parameter: got true, want false")
	}

	// Copies derive new parameters without touching the original.
	q := p.WithName("uid").WithValue("7").WithType(TypeBinary)
	if q.Name() != "uid" || q.Value() != "7" || q.Type() != TypeBinary {
		t.Errorf("Derived param: got %q %v %q", q.Name(), q.Value(), q.Type())
	}
	if p.Name() != "id" || p.Type() != TypeInteger {
		t.Error("WithName or WithType mutated the original parameter")
	}

	want := map[string]any{ns.Name: "id", ns.Value: int64(7), ns.Type: TypeInteger}
	if diff := cmp.Diff(want, p.data()); diff != "" {
		t.Errorf("Param record (-want, +got):\n%s", diff)
	}
}

func TestParamFromPayload(t *testing.T) {
	p := newParamFromPayload(map[string]any{
		ns.Name:  "id",
		ns.Value: int64(7),
		ns.Type:  TypeInteger,
	})
	if !p.Exists() {
		t.Error("Exists for a received parameter: got false, want true")
	}
	if p.Value() != int64(7) || p.Type() != TypeInteger {
		t.Errorf("Received param: got %v %q", p.Value(), p.Type())
	}

	// A record without a type resolves it from the value.
	q := newParamFromPayload(map[string]any{ns.Name: "flag", ns.Value: true})
	if q.Type() != TypeBoolean {
		t.Errorf("Resolved type: got %q, want %q", q.Type(), TypeBoolean)
	}
}

func TestParamsData(t *testing.T) {
	if got := paramsData(nil); got != nil {
		t.Errorf("paramsData(nil): got %v, want nil", got)
	}
	got := paramsData([]Param{NewParam("id", int64(7))})
	want := []any{map[string]any{ns.Name: "id", ns.Value: int64(7), ns.Type: TypeInteger}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("paramsData (-want, +got):\n%s", diff)
	}
}

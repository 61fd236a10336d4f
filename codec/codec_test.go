package codec_test

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/mizuchi-rpc/sdk-go/codec"
	"github.com/shopspring/decimal"
	"github.com/vmihailenco/msgpack/v5"
)

func mustDecimal(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("Invalid decimal %q: %v", s, err)
	}
	return d
}

func TestRoundTrip(t *testing.T) {
	when := time.Date(2023, 5, 17, 9, 30, 15, 250000000, time.UTC)

	tests := []struct {
		name  string
		value any
	}{
		{"nil", nil},
		{"bool", true},
		{"int", int64(-42)},
		{"float", 3.5},
		{"string", "payload"},
		{"binary", []byte("\x00\x01raw")},
		{"decimal", mustDecimal(t, "123.450")},
		{"decimal integral", mustDecimal(t, "-7")},
		{"datetime", when},
		{"date", codec.NewDate(2023, time.May, 17)},
		{"time", codec.NewTimeOfDay(9, 30, 15)},
		{"slice", []any{int64(1), "two", false}},
		{"map", map[string]any{"a": int64(1), "b": []any{"x"}}},
		{"nested", map[string]any{
			"m": map[string]any{"d": mustDecimal(t, "0.125"), "t": when},
			"s": []any{map[string]any{"k": nil}},
		}},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			data, err := codec.Marshal(test.value)
			if err != nil {
				t.Fatalf("Marshal: unexpected error: %v", err)
			}
			got, err := codec.Unmarshal(data)
			if err != nil {
				t.Fatalf("Unmarshal: unexpected error: %v", err)
			}
			if diff := cmp.Diff(test.value, got); diff != "" {
				t.Errorf("Round trip (-want, +got):\n%s", diff)
			}
		})
	}
}

func TestMarshalUnsupported(t *testing.T) {
	if _, err := codec.Marshal(struct{ X int }{1}); err == nil {
		t.Error("Marshal of a struct: got nil, want error")
	}
	if _, err := codec.Marshal(map[string]any{"ch": make(chan int)}); err == nil {
		t.Error("Marshal of a nested channel: got nil, want error")
	}
}

// Type arrays with unknown names or inconsistent forms decode to nil rather
// than failing the message.
func TestDecodeBogusTypeArrays(t *testing.T) {
	tests := []struct {
		name  string
		value any
	}{
		{"unknown name", []any{"type", "duration", "5s"}},
		{"decimal form not a list", []any{"type", "decimal", "1.5"}},
		{"decimal too many parts", []any{"type", "decimal", []any{"1", "5", "0"}}},
		{"decimal non-string digits", []any{"type", "decimal", []any{int64(1)}}},
		{"date bad form", []any{"type", "date", "17/05/2023"}},
		{"datetime bad form", []any{"type", "datetime", "2023-05-17"}},
		{"time bad form", []any{"type", "time", "9h30"}},
		{"non-string name", []any{"type", int64(1), "x"}},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			data, err := msgpack.Marshal(test.value)
			if err != nil {
				t.Fatalf("Marshal: unexpected error: %v", err)
			}
			got, err := codec.Unmarshal(data)
			if err != nil {
				t.Fatalf("Unmarshal: unexpected error: %v", err)
			}
			switch test.name {
			case "non-string name":
				// Not a type encoding at all, so it passes through.
				if got == nil {
					t.Error("Decode: got nil, want the array unchanged")
				}
			default:
				if got != nil {
					t.Errorf("Decode: got %v, want nil", got)
				}
			}
		})
	}
}

func TestDecodeShortArrayPassthrough(t *testing.T) {
	data, err := msgpack.Marshal([]any{"type", "decimal"})
	if err != nil {
		t.Fatalf("Marshal: unexpected error: %v", err)
	}
	got, err := codec.Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal: unexpected error: %v", err)
	}
	want := []any{"type", "decimal"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Decode (-want, +got):\n%s", diff)
	}
}

func TestUnmarshalInvalid(t *testing.T) {
	if _, err := codec.Unmarshal([]byte{0xc1}); err == nil {
		t.Error("Unmarshal of an invalid stream: got nil, want error")
	}
}

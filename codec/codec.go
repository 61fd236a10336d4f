// Package codec serializes payload documents to the compact binary wire
// format used by the framework runtime.
//
// The format is msgpack with one convention on top: values that msgpack has
// no native representation for are encoded as a 3 element array of the form
// ["type", <type name>, <encoded form>]. Decimal numbers, dates, datetimes
// and times of day are encoded this way. Decoding an unrecognized or
// malformed type array yields nil instead of failing the whole message, so
// corrupt metadata cannot abort an otherwise valid payload.
package codec

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/vmihailenco/msgpack/v5"
)

// typeTag marks a 3 element array as an extension type encoding.
const typeTag = "type"

// Extension type names.
const (
	typeDecimal  = "decimal"
	typeDate     = "date"
	typeDatetime = "datetime"
	typeTime     = "time"
)

// Marshal encodes a document value to the binary wire format. Values must be
// trees of maps, slices and the supported scalar and extension types; any
// other Go type is an encode error.
func Marshal(v any) ([]byte, error) {
	enc, err := encodeValue(v)
	if err != nil {
		return nil, err
	}
	return msgpack.Marshal(enc)
}

// Unmarshal decodes a binary stream into a document value. Integers are
// normalized to int64 and map keys to strings.
func Unmarshal(data []byte) (any, error) {
	var v any
	if err := msgpack.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return decodeValue(v), nil
}

func encodeValue(v any) (any, error) {
	switch t := v.(type) {
	case nil, bool, string, []byte, float32, float64,
		int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return t, nil
	case decimal.Decimal:
		// Integer and fractional digits travel as separate strings to
		// avoid a lossy float round trip.
		return []any{typeTag, typeDecimal, digitParts(t)}, nil
	case time.Time:
		return []any{typeTag, typeDatetime, t.UTC().Format(datetimeFormat)}, nil
	case Date:
		return []any{typeTag, typeDate, t.String()}, nil
	case TimeOfDay:
		return []any{typeTag, typeTime, t.String()}, nil
	case map[string]any:
		m := make(map[string]any, len(t))
		for k, e := range t {
			enc, err := encodeValue(e)
			if err != nil {
				return nil, err
			}
			m[k] = enc
		}
		return m, nil
	case []any:
		s := make([]any, len(t))
		for i, e := range t {
			enc, err := encodeValue(e)
			if err != nil {
				return nil, err
			}
			s[i] = enc
		}
		return s, nil
	default:
		return nil, fmt.Errorf("%T is not serializable", v)
	}
}

func digitParts(d decimal.Decimal) []any {
	parts := strings.SplitN(d.String(), ".", 2)
	enc := make([]any, len(parts))
	for i, p := range parts {
		enc[i] = p
	}
	return enc
}

func decodeValue(v any) any {
	switch t := v.(type) {
	case int8:
		return int64(t)
	case int16:
		return int64(t)
	case int32:
		return int64(t)
	case int:
		return int64(t)
	case uint8:
		return int64(t)
	case uint16:
		return int64(t)
	case uint32:
		return int64(t)
	case uint64:
		return int64(t)
	case uint:
		return int64(t)
	case float32:
		return float64(t)
	case map[string]any:
		for k, e := range t {
			t[k] = decodeValue(e)
		}
		return t
	case map[any]any:
		m := make(map[string]any, len(t))
		for k, e := range t {
			m[fmt.Sprint(k)] = decodeValue(e)
		}
		return m
	case []any:
		for i, e := range t {
			t[i] = decodeValue(e)
		}
		return decodeTyped(t)
	default:
		return v
	}
}

// decodeTyped converts a decoded type array back to its extension value.
// Arrays that are not type encodings pass through unchanged; recognized type
// names with inconsistent forms decode to nil.
func decodeTyped(s []any) any {
	if len(s) != 3 || s[0] != typeTag {
		return s
	}
	name, ok := s[1].(string)
	if !ok {
		return s
	}
	switch name {
	case typeDecimal:
		parts, ok := s[2].([]any)
		if !ok || len(parts) == 0 || len(parts) > 2 {
			return nil
		}
		digits := make([]string, len(parts))
		for i, p := range parts {
			if digits[i], ok = p.(string); !ok {
				return nil
			}
		}
		d, err := decimal.NewFromString(strings.Join(digits, "."))
		if err != nil {
			return nil
		}
		return d
	case typeDatetime:
		form, ok := s[2].(string)
		if !ok {
			return nil
		}
		t, err := time.Parse(datetimeFormat, form)
		if err != nil {
			return nil
		}
		return t
	case typeDate:
		form, ok := s[2].(string)
		if !ok {
			return nil
		}
		d, err := parseDate(form)
		if err != nil {
			return nil
		}
		return d
	case typeTime:
		form, ok := s[2].(string)
		if !ok {
			return nil
		}
		t, err := parseTimeOfDay(form)
		if err != nil {
			return nil
		}
		return t
	default:
		return nil
	}
}

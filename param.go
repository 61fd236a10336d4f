package mizuchi

import (
	"github.com/mizuchi-rpc/sdk-go/codec"
	"github.com/mizuchi-rpc/sdk-go/payload/ns"
	"github.com/shopspring/decimal"
)

// Parameter value types.
const (
	TypeNull    = "null"
	TypeBoolean = "boolean"
	TypeInteger = "integer"
	TypeFloat   = "float"
	TypeString  = "string"
	TypeBinary  = "binary"
	TypeArray   = "array"
	TypeObject  = "object"
)

// A Param is an input parameter of a service action or middleware request.
// Params are immutable values; the copy methods derive new ones.
type Param struct {
	name   string
	value  any
	typ    string
	exists bool
}

// NewParam creates a parameter with a value. The type is resolved from the
// value.
func NewParam(name string, value any) Param {
	return Param{name: name, value: value, typ: resolveParamType(value)}
}

// newParamFromPayload creates a parameter from its payload record.
func newParamFromPayload(data map[string]any) Param {
	p := Param{exists: true}
	p.name, _ = data[ns.Name].(string)
	p.value = data[ns.Value]
	if t, ok := data[ns.Type].(string); ok && t != "" {
		p.typ = t
	} else {
		p.typ = resolveParamType(p.value)
	}
	return p
}

// Name returns the parameter name.
func (p Param) Name() string { return p.name }

// Type returns the parameter value type.
func (p Param) Type() string { return p.typ }

// Value returns the parameter value.
func (p Param) Value() any { return p.value }

// Exists reports whether the parameter was present in the request.
func (p Param) Exists() bool { return p.exists }

// WithName returns a copy of the parameter with another name.
func (p Param) WithName(name string) Param {
	p.name = name
	return p
}

// WithValue returns a copy of the parameter with another value. The type is
// resolved from the new value.
func (p Param) WithValue(value any) Param {
	p.value = value
	p.typ = resolveParamType(value)
	return p
}

// WithType returns a copy of the parameter with another type.
func (p Param) WithType(typ string) Param {
	p.typ = typ
	return p
}

// data returns the payload record for the parameter.
func (p Param) data() map[string]any {
	return map[string]any{
		ns.Name:  p.name,
		ns.Value: p.value,
		ns.Type:  p.typ,
	}
}

// paramsData returns the payload records for a parameter list.
func paramsData(params []Param) []any {
	if len(params) == 0 {
		return nil
	}
	data := make([]any, len(params))
	for i, p := range params {
		data[i] = p.data()
	}
	return data
}

// resolveParamType returns the parameter type for a value.
func resolveParamType(value any) string {
	switch value.(type) {
	case nil:
		return TypeNull
	case bool:
		return TypeBoolean
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return TypeInteger
	case float32, float64, decimal.Decimal:
		return TypeFloat
	case []byte:
		return TypeBinary
	case []any:
		return TypeArray
	case map[string]any:
		return TypeObject
	case string, codec.Date, codec.TimeOfDay:
		return TypeString
	default:
		return TypeString
	}
}

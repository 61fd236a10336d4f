// Package payload implements the path addressable documents exchanged with
// the framework runtime.
//
// A Payload is a tree of maps, slices and scalars addressed by paths, where a
// path is an ordered list of map keys. Path operations are structural: a
// missing path is a normal queryable state, mutators report success with a
// boolean and nothing panics on absent or mistyped intermediate values.
//
// Payload specializations (Command, Transport, Reply, ...) declare a fixed
// path prefix that is prepended to every path, so each presents a rooted view
// of its region of a larger document without copying. The Unprefixed method
// suppresses the prefix when the full document must be addressed.
package payload

// A Payload holds a document tree. The zero value is not usable; use New or
// From to create one.
//
// The value tree uses the shapes produced by the wire codec: map[string]any
// for maps, []any for sequences, and nil, bool, int64, float64, string or
// []byte for scalars, plus the codec extension types.
type Payload struct {
	data   map[string]any
	prefix []string
}

// New creates an empty payload.
func New() *Payload { return &Payload{data: make(map[string]any)} }

// From creates a payload wrapping data without copying it. A nil map is
// replaced by an empty one.
func From(data map[string]any) *Payload {
	if data == nil {
		data = make(map[string]any)
	}
	return &Payload{data: data}
}

// WithPrefix creates a payload wrapping data whose path operations are
// rooted at the given prefix.
func WithPrefix(data map[string]any, prefix ...string) *Payload {
	p := From(data)
	p.prefix = prefix
	return p
}

// Data returns the underlying document tree.
func (p *Payload) Data() map[string]any { return p.data }

// Unprefixed returns a view of the same document without a path prefix.
// The view shares the underlying tree with p.
func (p *Payload) Unprefixed() *Payload { return &Payload{data: p.data} }

// IsEmpty reports whether the document has no keys at all. The prefix is not
// applied.
func (p *Payload) IsEmpty() bool { return len(p.data) == 0 }

// Clone returns a deep copy of the document, keeping the prefix.
func (p *Payload) Clone() *Payload {
	return &Payload{data: DeepCopy(p.data).(map[string]any), prefix: p.prefix}
}

func (p *Payload) full(path []string) []string {
	if len(p.prefix) == 0 {
		return path
	}
	fp := make([]string, 0, len(p.prefix)+len(path))
	fp = append(fp, p.prefix...)
	return append(fp, path...)
}

// walk traverses path and returns the addressed value.
func walk(data map[string]any, path []string) (any, bool) {
	var item any = data
	for _, name := range path {
		m, ok := item.(map[string]any)
		if !ok {
			return nil, false
		}
		if item, ok = m[name]; !ok {
			return nil, false
		}
	}
	return item, true
}

// walkTo traverses path up to its final segment, creating intermediate maps
// as needed, and returns the map holding the final segment. It reports false
// when an intermediate value exists but is not a map.
func walkTo(data map[string]any, path []string) (map[string]any, bool) {
	item := data
	for _, name := range path[:len(path)-1] {
		next, ok := item[name]
		if !ok {
			m := make(map[string]any)
			item[name] = m
			item = m
			continue
		}
		m, ok := next.(map[string]any)
		if !ok {
			return nil, false
		}
		item = m
	}
	return item, true
}

// Exists reports whether a path exists in the document.
func (p *Payload) Exists(path ...string) bool {
	_, ok := walk(p.data, p.full(path))
	return ok
}

// Equals reports whether the value at a path exists and is deep equal to
// value.
func (p *Payload) Equals(path []string, value any) bool {
	v, ok := walk(p.data, p.full(path))
	return ok && deepEqual(v, value)
}

// Get returns the value at a path, or def when the path does not exist.
func (p *Payload) Get(path []string, def any) any {
	if v, ok := walk(p.data, p.full(path)); ok {
		return v
	}
	return def
}

// GetString returns the string at a path, or def when the path is absent or
// not a string.
func (p *Payload) GetString(path []string, def string) string {
	if s, ok := p.Get(path, def).(string); ok {
		return s
	}
	return def
}

// GetMap returns the map at a path, or an empty map when the path is absent
// or not a map.
func (p *Payload) GetMap(path ...string) map[string]any {
	if m, ok := p.Get(path, nil).(map[string]any); ok {
		return m
	}
	return map[string]any{}
}

// GetSlice returns the sequence at a path, or nil when the path is absent or
// not a sequence.
func (p *Payload) GetSlice(path ...string) []any {
	if s, ok := p.Get(path, nil).([]any); ok {
		return s
	}
	return nil
}

// Set stores a value at a path, creating intermediate maps as needed. It
// reports false when an intermediate path segment holds a value that is not
// a map; the document is then left as it was up to that segment.
func (p *Payload) Set(path []string, value any) bool {
	fp := p.full(path)
	if len(fp) == 0 {
		return false
	}
	m, ok := walkTo(p.data, fp)
	if !ok {
		return false
	}
	m[fp[len(fp)-1]] = value
	return true
}

// Append appends a value to the sequence at a path. A new sequence is created
// when the path does not exist. It reports false when the path holds a value
// that is not a sequence, or an intermediate segment is not a map.
func (p *Payload) Append(path []string, value any) bool {
	return p.appendValues(path, []any{value})
}

// Extend appends all values to the sequence at a path, with the same rules
// as Append.
func (p *Payload) Extend(path []string, values []any) bool {
	return p.appendValues(path, values)
}

func (p *Payload) appendValues(path []string, values []any) bool {
	fp := p.full(path)
	if len(fp) == 0 {
		return false
	}
	m, ok := walkTo(p.data, fp)
	if !ok {
		return false
	}
	name := fp[len(fp)-1]
	current, ok := m[name]
	if !ok {
		current = []any{}
	}
	seq, ok := current.([]any)
	if !ok {
		return false
	}
	m[name] = append(seq, values...)
	return true
}

// Delete removes the value at the final path segment. It reports false when
// the path does not address an existing value.
func (p *Payload) Delete(path ...string) bool {
	fp := p.full(path)
	if len(fp) == 0 {
		return false
	}
	parent, ok := walk(p.data, fp[:len(fp)-1])
	if !ok {
		return false
	}
	m, ok := parent.(map[string]any)
	if !ok {
		return false
	}
	name := fp[len(fp)-1]
	if _, ok := m[name]; !ok {
		return false
	}
	delete(m, name)
	return true
}

// DeepCopy returns a copy of a document value with no shared maps or slices.
func DeepCopy(v any) any {
	switch t := v.(type) {
	case map[string]any:
		m := make(map[string]any, len(t))
		for k, e := range t {
			m[k] = DeepCopy(e)
		}
		return m
	case []any:
		s := make([]any, len(t))
		for i, e := range t {
			s[i] = DeepCopy(e)
		}
		return s
	case []byte:
		c := make([]byte, len(t))
		copy(c, t)
		return c
	default:
		return v
	}
}

func deepEqual(a, b any) bool {
	switch ta := a.(type) {
	case map[string]any:
		tb, ok := b.(map[string]any)
		if !ok || len(ta) != len(tb) {
			return false
		}
		for k, va := range ta {
			vb, ok := tb[k]
			if !ok || !deepEqual(va, vb) {
				return false
			}
		}
		return true
	case []any:
		tb, ok := b.([]any)
		if !ok || len(ta) != len(tb) {
			return false
		}
		for i, va := range ta {
			if !deepEqual(va, tb[i]) {
				return false
			}
		}
		return true
	case []byte:
		tb, ok := b.([]byte)
		return ok && string(ta) == string(tb)
	default:
		return a == b
	}
}

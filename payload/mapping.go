package payload

import (
	"fmt"
	"sort"

	"github.com/mizuchi-rpc/sdk-go/payload/ns"
)

// A Mapping holds the process wide service schemas, keyed by service name
// and version. A mapping is never mutated after creation: schema updates
// replace the whole mapping, so concurrent readers always observe either the
// old or the new complete set.
type Mapping struct {
	*Payload
}

// NewMapping wraps a decoded schema document as a mapping payload.
func NewMapping(data map[string]any) *Mapping { return &Mapping{Payload: From(data)} }

// ServiceVersion identifies one registered service version.
type ServiceVersion struct {
	Name    string
	Version string
}

// Services returns the registered service name and version pairs, sorted for
// stable iteration.
func (m *Mapping) Services() []ServiceVersion {
	var services []ServiceVersion
	for name, versions := range m.Data() {
		vmap, ok := versions.(map[string]any)
		if !ok {
			continue
		}
		for version := range vmap {
			services = append(services, ServiceVersion{Name: name, Version: version})
		}
	}
	sort.Slice(services, func(i, j int) bool {
		if services[i].Name != services[j].Name {
			return services[i].Name < services[j].Name
		}
		return services[i].Version < services[j].Version
	})
	return services
}

// SchemaPayload returns the schema for a service version. The version may be
// a pattern using "*", which resolves to the highest registered version that
// matches.
func (m *Mapping) SchemaPayload(name, version string) (*ServiceSchemaPayload, error) {
	versions, ok := m.Data()[name].(map[string]any)
	if ok {
		if _, found := versions[version]; !found {
			var registered []string
			for v := range versions {
				registered = append(registered, v)
			}
			if resolved := NewVersionPattern(version).Resolve(registered); resolved != "" {
				version = resolved
			}
		}
		if schema, found := versions[version].(map[string]any); found {
			return NewServiceSchemaPayload(schema, name, version), nil
		}
	}
	return nil, fmt.Errorf("cannot resolve schema for service: %q (%s)", name, version)
}

// A ServiceSchemaPayload holds the schema for one service version.
type ServiceSchemaPayload struct {
	*Payload
	name    string
	version string
}

// NewServiceSchemaPayload wraps a schema tree for a named service version.
func NewServiceSchemaPayload(data map[string]any, name, version string) *ServiceSchemaPayload {
	return &ServiceSchemaPayload{Payload: From(data), name: name, version: version}
}

// Name returns the service name.
func (s *ServiceSchemaPayload) Name() string { return s.name }

// Version returns the service version.
func (s *ServiceSchemaPayload) Version() string { return s.version }

// Address returns the internal address of the service.
func (s *ServiceSchemaPayload) Address() string {
	return s.GetString([]string{ns.Address}, "")
}

// HasFileServer reports whether the service has a file server configured.
func (s *ServiceSchemaPayload) HasFileServer() bool {
	v, ok := s.Get([]string{ns.FileServer}, false).(bool)
	return ok && v
}

// ActionNames returns the names of the service actions, sorted.
func (s *ServiceSchemaPayload) ActionNames() []string {
	var names []string
	for name := range s.GetMap(ns.Actions) {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// HasAction reports whether the schema defines an action.
func (s *ServiceSchemaPayload) HasAction(name string) bool {
	return s.Exists(ns.Actions, name)
}

// ActionSchemaPayload returns the schema payload for an action.
func (s *ServiceSchemaPayload) ActionSchemaPayload(name string) (*ActionSchemaPayload, error) {
	if data, ok := s.Get([]string{ns.Actions, name}, nil).(map[string]any); ok {
		return &ActionSchemaPayload{Payload: From(data), name: name}, nil
	}
	return nil, fmt.Errorf("cannot resolve schema for action: %s", name)
}

// An ActionSchemaPayload holds the schema for one service action.
type ActionSchemaPayload struct {
	*Payload
	name string
}

// Name returns the action name.
func (a *ActionSchemaPayload) Name() string { return a.name }

// HasReturn reports whether the action declares a return value.
func (a *ActionSchemaPayload) HasReturn() bool { return a.Exists(ns.Return) }

// ReturnType returns the declared return value type, or an empty string.
func (a *ActionSchemaPayload) ReturnType() string {
	return a.GetString([]string{ns.Return, ns.Type}, "")
}

// Params returns the names of the declared action parameters, sorted.
func (a *ActionSchemaPayload) Params() []string {
	var names []string
	for name := range a.GetMap(ns.Params) {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

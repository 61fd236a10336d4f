package mizuchi

import (
	"context"
	"fmt"

	"github.com/mizuchi-rpc/sdk-go/payload"
)

// Api is the base of the userland wrappers the server binds to each request.
// It exposes the component identity, the engine variables and the service
// schema mapping in effect when the request arrived.
type Api struct {
	ctx       context.Context
	server    *Server
	component *Component
	config    *Config
	state     *State
	command   *payload.Command
	reply     *payload.Reply
	schemas   *payload.Mapping
}

func newAPI(ctx context.Context, s *Server, state *State, command *payload.Command, reply *payload.Reply) Api {
	return Api{
		ctx:       ctx,
		server:    s,
		component: s.component,
		config:    s.config,
		state:     state,
		command:   command,
		reply:     reply,
		schemas:   s.mapping(),
	}
}

func (a *Api) apiBase() *Api { return a }

// Context returns the context of the request being serviced. It ends when
// the request times out or the server shuts down.
func (a *Api) Context() context.Context { return a.ctx }

// IsDebug reports whether the component runs in debug mode.
func (a *Api) IsDebug() bool { return a.config.Debug }

// FrameworkVersion returns the framework version.
func (a *Api) FrameworkVersion() string { return a.config.FrameworkVersion }

// Name returns the component name.
func (a *Api) Name() string { return a.config.Name }

// Version returns the component version.
func (a *Api) Version() string { return a.config.Version }

// HasVariable reports whether an engine variable is defined.
func (a *Api) HasVariable(name string) bool { return a.config.HasVariable(name) }

// Variable returns the value of an engine variable, or an empty string.
func (a *Api) Variable(name string) string { return a.config.Variable(name) }

// Variables returns all the engine variables.
func (a *Api) Variables() map[string]string { return a.config.Variables() }

// HasResource reports whether a component resource exists.
func (a *Api) HasResource(name string) bool { return a.component.HasResource(name) }

// Resource returns the value of a component resource.
func (a *Api) Resource(name string) (any, error) { return a.component.Resource(name) }

// Services returns the name and version of every service registered in the
// current schema mapping.
func (a *Api) Services() []payload.ServiceVersion { return a.schemas.Services() }

// ServiceSchema returns the schema for a service version. The version may be
// a pattern using "*" to resolve the highest matching version.
func (a *Api) ServiceSchema(name, version string) (*ServiceSchema, error) {
	p, err := a.schemas.SchemaPayload(name, version)
	if err != nil {
		return nil, err
	}
	return &ServiceSchema{p: p}, nil
}

// Log writes a value to the component log with a syslog numeric severity.
func (a *Api) Log(severity int, value any) {
	a.state.Logger().Logf(severity, "%v", value)
}

// Logger returns the logger tagged with the current request ID.
func (a *Api) Logger() RequestLogger { return a.state.Logger() }

// A ServiceSchema describes a service version registered in the schema
// mapping.
type ServiceSchema struct {
	p *payload.ServiceSchemaPayload
}

// Name returns the service name.
func (s *ServiceSchema) Name() string { return s.p.Name() }

// Version returns the service version.
func (s *ServiceSchema) Version() string { return s.p.Version() }

// Address returns the internal address of the service.
func (s *ServiceSchema) Address() string { return s.p.Address() }

// HasFileServer reports whether the service serves local files.
func (s *ServiceSchema) HasFileServer() bool { return s.p.HasFileServer() }

// Actions returns the names of the service actions.
func (s *ServiceSchema) Actions() []string { return s.p.ActionNames() }

// HasAction reports whether the service defines an action.
func (s *ServiceSchema) HasAction(name string) bool { return s.p.HasAction(name) }

// ActionSchema returns the schema for an action.
func (s *ServiceSchema) ActionSchema(name string) (*ActionSchema, error) {
	p, err := s.p.ActionSchemaPayload(name)
	if err != nil {
		return nil, fmt.Errorf("service %q (%s): %w", s.Name(), s.Version(), err)
	}
	return &ActionSchema{p: p}, nil
}

// An ActionSchema describes one action of a service.
type ActionSchema struct {
	p *payload.ActionSchemaPayload
}

// Name returns the action name.
func (a *ActionSchema) Name() string { return a.p.Name() }

// HasReturn reports whether the action declares a return value.
func (a *ActionSchema) HasReturn() bool { return a.p.HasReturn() }

// ReturnType returns the declared return value type.
func (a *ActionSchema) ReturnType() string { return a.p.ReturnType() }

// Params returns the names of the declared action parameters.
func (a *ActionSchema) Params() []string { return a.p.Params() }

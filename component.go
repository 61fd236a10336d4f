package mizuchi

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

// An ActionFunc handles a service action request.
type ActionFunc func(*Action) (*Action, error)

// A RequestFunc handles a middleware request. It returns either the Request
// to continue the middleware chain, or a Response to short-circuit it.
type RequestFunc func(*Request) (MiddlewareResult, error)

// A ResponseFunc handles a middleware response.
type ResponseFunc func(*Response) (*Response, error)

// A MiddlewareResult is a value a middleware request callback may return:
// either its *Request or a *Response.
type MiddlewareResult interface {
	apiBase() *Api
}

// callback holds the registered handler for one action name. Exactly one
// field is set, matching the component kind.
type callback struct {
	action   func(*Action) (apiResult, error)
	request  func(*Request) (apiResult, error)
	response func(*Response) (apiResult, error)
}

type apiResult = MiddlewareResult

// A ResourceFactory creates a userland resource during component startup.
type ResourceFactory func(*Component) (any, error)

// A Component is the shared state of a running service or middleware: its
// configuration, userland resources and lifecycle hooks. Components are
// created once at startup and passed by reference to everything that needs
// them.
type Component struct {
	config *Config

	mu        sync.Mutex
	resources map[string]any

	startupHook  func(*Component) error
	shutdownHook func(*Component) error
	errorHook    func(error)
}

func newComponent() *Component {
	return &Component{config: NewConfig(), resources: make(map[string]any)}
}

// Config returns the component configuration.
func (c *Component) Config() *Config { return c.config }

// SetResource creates a userland resource with a name. The factory runs
// immediately and its value is stored for the component lifetime.
func (c *Component) SetResource(name string, factory ResourceFactory) error {
	value, err := factory(c)
	if err != nil {
		return fmt.Errorf("create resource %q: %w", name, err)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resources[name] = value
	return nil
}

// HasResource reports whether a resource with the given name exists.
func (c *Component) HasResource(name string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.resources[name]
	return ok
}

// Resource returns the value of a named resource.
func (c *Component) Resource(name string) (any, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	value, ok := c.resources[name]
	if !ok {
		return nil, fmt.Errorf("resource not found: %q", name)
	}
	return value, nil
}

// Startup registers a callback to run before the server starts.
func (c *Component) Startup(f func(*Component) error) *Component {
	c.startupHook = f
	return c
}

// Shutdown registers a callback to run after the server stops.
func (c *Component) Shutdown(f func(*Component) error) *Component {
	c.shutdownHook = f
	return c
}

// Error registers a callback that is notified of every userland callback
// error.
func (c *Component) Error(f func(error)) *Component {
	c.errorHook = f
	return c
}

// Log writes a message with a syslog numeric severity.
func (c *Component) Log(severity int, message string) *Component {
	logger.Logf(logLevel(severity), "%s", message)
	return c
}

// run parses the process configuration, sets up logging and services
// requests until the process receives a termination signal.
func (c *Component) run(callbacks map[string]callback, kind string) error {
	fs := flag.NewFlagSet(os.Args[0], flag.ContinueOnError)
	if err := c.config.ParseFlags(fs, os.Args[1:]); err != nil {
		return err
	}
	if err := c.config.Validate(); err != nil {
		return err
	}
	if c.config.Component != kind {
		return fmt.Errorf("component type mismatch: running a %s as %q", kind, c.config.Component)
	}
	setupLogging(c.config.LogLevel, c.config.Debug)
	logger.Debugf("Using PID: %d", os.Getpid())

	if c.startupHook != nil {
		if err := c.startupHook(c); err != nil {
			return fmt.Errorf("component startup: %w", err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	err := newServer(c, callbacks).Run(ctx)

	if c.shutdownHook != nil {
		if herr := c.shutdownHook(c); herr != nil && err == nil {
			err = fmt.Errorf("component shutdown: %w", herr)
		}
	}
	return err
}

// A Service is a component that exposes named actions.
type Service struct {
	Component

	actions map[string]callback
}

// NewService creates a service component.
func NewService() *Service {
	return &Service{Component: *newComponent(), actions: make(map[string]callback)}
}

// Action registers a callback for an action name. It panics when the name is
// empty or already registered. Action returns s to permit chaining.
func (s *Service) Action(name string, fn ActionFunc) *Service {
	if name == "" {
		panic("service action name must not be empty")
	}
	if _, ok := s.actions[name]; ok {
		panic(fmt.Sprintf("duplicate service action %q", name))
	}
	s.actions[name] = callback{action: func(a *Action) (apiResult, error) { return fn(a) }}
	return s
}

// Run parses the process configuration and services requests until the
// process is terminated.
func (s *Service) Run() error { return s.run(s.actions, ComponentService) }

// A Middleware is a component that processes requests before they reach a
// service, and responses before they return to the client.
type Middleware struct {
	Component

	callbacks map[string]callback
}

// NewMiddleware creates a middleware component.
func NewMiddleware() *Middleware {
	return &Middleware{Component: *newComponent(), callbacks: make(map[string]callback)}
}

// Request registers the callback that processes incoming requests. It returns
// m to permit chaining.
func (m *Middleware) Request(fn RequestFunc) *Middleware {
	m.callbacks["request"] = callback{request: func(r *Request) (apiResult, error) { return fn(r) }}
	return m
}

// Response registers the callback that processes outgoing responses. It
// returns m to permit chaining.
func (m *Middleware) Response(fn ResponseFunc) *Middleware {
	m.callbacks["response"] = callback{response: func(r *Response) (apiResult, error) { return fn(r) }}
	return m
}

// Run parses the process configuration and services requests until the
// process is terminated.
func (m *Middleware) Run() error { return m.run(m.callbacks, ComponentMiddleware) }

package mizuchi

import (
	"flag"
	"fmt"
	"sort"
	"strings"

	"github.com/creachadair/flax"
	"github.com/mizuchi-rpc/sdk-go/channel"
)

// Default per-request execution timeout in milliseconds.
const defaultExecutionTimeout = 30000

// Component kinds.
const (
	ComponentService    = "service"
	ComponentMiddleware = "middleware"
)

// A Config holds the process configuration passed by the framework runtime on
// the command line.
type Config struct {
	Component        string  `flag:"component,Component type (service or middleware)"`
	Name             string  `flag:"name,Component name"`
	Version          string  `flag:"version,Component version"`
	FrameworkVersion string  `flag:"framework-version,Framework version"`
	Address          string  `flag:"address,Component address as IP:PORT"`
	Socket           string  `flag:"ipc,IPC socket name"`
	TCP              int     `flag:"tcp,TCP port to use when the IPC socket is not used"`
	Timeout          int     `flag:"timeout,Execution timeout per request in milliseconds"`
	Debug            bool    `flag:"debug,Enable debug output"`
	LogLevel         int     `flag:"log-level,Numeric syslog severity level (0..7)"`
	Vars             varList `flag:"var,Component variable as NAME=VALUE (repeatable)"`
}

// NewConfig creates a config with the default values.
func NewConfig() *Config {
	return &Config{Timeout: defaultExecutionTimeout, LogLevel: LogInfo, Vars: varList{}}
}

// ParseFlags binds the config to a flag set and parses args.
func (c *Config) ParseFlags(fs *flag.FlagSet, args []string) error {
	flax.MustBind(fs, c)
	return fs.Parse(args)
}

// Validate reports an error when a required value is missing or invalid.
func (c *Config) Validate() error {
	switch c.Component {
	case ComponentService, ComponentMiddleware:
	default:
		return fmt.Errorf("invalid component type: %q", c.Component)
	}
	if c.Name == "" {
		return fmt.Errorf("a component name is required")
	}
	if c.Version == "" {
		return fmt.Errorf("a component version is required")
	}
	if c.FrameworkVersion == "" {
		return fmt.Errorf("a framework version is required")
	}
	return nil
}

// IsService reports whether the component is a service.
func (c *Config) IsService() bool { return c.Component == ComponentService }

// Title returns the component title used in error messages and logs.
func (c *Config) Title() string { return fmt.Sprintf("%q (%s)", c.Name, c.Version) }

// ExecutionTimeout returns the per-request timeout in milliseconds.
func (c *Config) ExecutionTimeout() int {
	if c.Timeout <= 0 {
		return defaultExecutionTimeout
	}
	return c.Timeout
}

// TCPEnabled reports whether connections use TCP instead of IPC sockets.
func (c *Config) TCPEnabled() bool { return c.TCP != 0 }

// ComponentAddress returns the local address used for run-time calls, keeping
// the port assigned by the runtime.
func (c *Config) ComponentAddress() string {
	if i := strings.LastIndex(c.Address, ":"); i >= 0 {
		return "127.0.0.1:" + c.Address[i+1:]
	}
	return c.Address
}

// Channel returns the endpoint the component server listens on.
func (c *Config) Channel() string {
	if c.TCPEnabled() {
		return channel.TCP(fmt.Sprintf("127.0.0.1:%d", c.TCP))
	}
	if c.Socket != "" {
		return "ipc://" + c.Socket
	}
	return channel.IPC(c.Component, c.Name, c.Version)
}

// HasVariable reports whether an engine variable is defined.
func (c *Config) HasVariable(name string) bool {
	_, ok := c.Vars[name]
	return ok
}

// Variable returns the value of an engine variable, or an empty string when
// the variable is not defined.
func (c *Config) Variable(name string) string { return c.Vars[name] }

// Variables returns a copy of all the engine variables.
func (c *Config) Variables() map[string]string {
	vars := make(map[string]string, len(c.Vars))
	for name, value := range c.Vars {
		vars[name] = value
	}
	return vars
}

// varList collects repeated NAME=VALUE flag values into a map.
type varList map[string]string

// Set implements part of the flag.Value interface.
func (v *varList) Set(s string) error {
	name, value, ok := strings.Cut(s, "=")
	if !ok || name == "" {
		return fmt.Errorf("invalid variable format: %q", s)
	}
	if *v == nil {
		*v = varList{}
	}
	(*v)[name] = value
	return nil
}

// String implements part of the flag.Value interface.
func (v *varList) String() string {
	var parts []string
	for name, value := range *v {
		parts = append(parts, name+"="+value)
	}
	sort.Strings(parts)
	return strings.Join(parts, ",")
}

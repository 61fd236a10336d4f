package mizuchi

import (
	"flag"
	"io"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func parseArgs(t *testing.T, args ...string) *Config {
	t.Helper()
	cfg := NewConfig()
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	if err := cfg.ParseFlags(fs, args); err != nil {
		t.Fatalf("ParseFlags: unexpected error: %v", err)
	}
	return cfg
}

func TestConfigParseFlags(t *testing.T) {
	cfg := parseArgs(t,
		"--component", "service",
		"--name", "users",
		"--version", "1.0.0",
		"--framework-version", "1.2.0",
		"--tcp", "7001",
		"--timeout", "5000",
		"--debug",
		"--var", "db-host=10.0.0.3",
		"--var", "db-name=app",
	)
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: unexpected error: %v", err)
	}
	if !cfg.IsService() {
		t.Error("IsService: got false, want true")
	}
	if got, want := cfg.Title(), `"users" (1.0.0)`; got != want {
		t.Errorf("Title: got %q, want %q", got, want)
	}
	if got, want := cfg.Channel(), "tcp://127.0.0.1:7001"; got != want {
		t.Errorf("Channel: got %q, want %q", got, want)
	}
	if got := cfg.ExecutionTimeout(); got != 5000 {
		t.Errorf("ExecutionTimeout: got %d, want 5000", got)
	}
	want := map[string]string{"db-host": "10.0.0.3", "db-name": "app"}
	if diff := cmp.Diff(want, cfg.Variables()); diff != "" {
		t.Errorf("Variables (-want, +got):\n%s", diff)
	}
	if !cfg.HasVariable("db-host") || cfg.Variable("db-name") != "app" {
		t.Error("Variable accessors disagree with Variables")
	}
}

func TestConfigValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			Component:        ComponentService,
			Name:             "users",
			Version:          "1.0.0",
			FrameworkVersion: "1.2.0",
		}
	}
	if err := base().Validate(); err != nil {
		t.Errorf("Validate of a complete config: unexpected error: %v", err)
	}

	tests := []struct {
		name string
		mod  func(*Config)
	}{
		{"bad component", func(c *Config) { c.Component = "gateway" }},
		{"missing name", func(c *Config) { c.Name = "" }},
		{"missing version", func(c *Config) { c.Version = "" }},
		{"missing framework version", func(c *Config) { c.FrameworkVersion = "" }},
	}
	for _, test := range tests {
		cfg := base()
		test.mod(cfg)
		if err := cfg.Validate(); err == nil {
			t.Errorf("Validate (%s): got nil, want error", test.name)
		}
	}
}

func TestConfigChannel(t *testing.T) {
	cfg := &Config{Component: ComponentService, Name: "users", Version: "1.0.0"}
	if got, want := cfg.Channel(), "ipc://@mizuchi-service-users-1-0-0"; got != want {
		t.Errorf("Channel: got %q, want %q", got, want)
	}

	cfg.Socket = "custom.sock"
	if got, want := cfg.Channel(), "ipc://custom.sock"; got != want {
		t.Errorf("Channel with a socket name: got %q, want %q", got, want)
	}

	cfg.TCP = 7001
	if got, want := cfg.Channel(), "tcp://127.0.0.1:7001"; got != want {
		t.Errorf("Channel with TCP: got %q, want %q", got, want)
	}
}

func TestComponentAddress(t *testing.T) {
	cfg := &Config{Address: "10.0.0.5:7331"}
	if got, want := cfg.ComponentAddress(), "127.0.0.1:7331"; got != want {
		t.Errorf("ComponentAddress: got %q, want %q", got, want)
	}
	cfg.Address = "nocolon"
	if got := cfg.ComponentAddress(); got != "nocolon" {
		t.Errorf("ComponentAddress without a port: got %q, want nocolon", got)
	}
}

func TestExecutionTimeoutDefault(t *testing.T) {
	if got := (&Config{}).ExecutionTimeout(); got != defaultExecutionTimeout {
		t.Errorf("ExecutionTimeout: got %d, want %d", got, defaultExecutionTimeout)
	}
}

func TestVarListErrors(t *testing.T) {
	var v varList
	if err := v.Set("novalue"); err == nil {
		t.Error("Set without a separator: got nil, want error")
	}
	if err := v.Set("=value"); err == nil {
		t.Error("Set without a name: got nil, want error")
	}
	if err := v.Set("b=2"); err != nil {
		t.Errorf("Set: unexpected error: %v", err)
	}
	if err := v.Set("a=1"); err != nil {
		t.Errorf("Set: unexpected error: %v", err)
	}
	if got, want := v.String(), "a=1,b=2"; got != want {
		t.Errorf("String: got %q, want %q", got, want)
	}
}

// Program mizuchi is a command-line utility for inspecting Mizuchi SDK
// payloads and endpoints.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/creachadair/command"
	"github.com/creachadair/flax"
	"github.com/mizuchi-rpc/sdk-go/channel"
	"github.com/mizuchi-rpc/sdk-go/codec"
)

var decodeFlags struct {
	Indent bool `flag:"indent,Indent the JSON output"`
}

var endpointFlags struct {
	TCP bool `flag:"tcp,Print a TCP endpoint instead of an IPC name"`
}

func main() {
	root := &command.C{
		Name: filepath.Base(os.Args[0]),
		Help: "Utilities for inspecting Mizuchi SDK payloads and endpoints.",
		Commands: []*command.C{
			{
				Name:  "decode",
				Usage: "[file]",
				Help: `Decode a binary payload and print it as JSON.

The payload is read from the named file, or from stdin when no file is
given. Extension values (decimal, date, datetime, time of day) print in
their string forms.`,
				SetFlags: func(_ *command.Env, fs *flag.FlagSet) { flax.MustBind(fs, &decodeFlags) },
				Run:      runDecode,
			},
			{
				Name:  "endpoint",
				Usage: "<component> <name> <version>",
				Help: `Print the channel endpoint for a component.

By default this is the IPC name the component binds; with -tcp the
component string is treated as a host:port address instead.`,
				SetFlags: func(_ *command.Env, fs *flag.FlagSet) { flax.MustBind(fs, &endpointFlags) },
				Run:      runEndpoint,
			},
			command.VersionCommand(),
			command.HelpCommand(nil),
		},
	}
	command.RunOrFail(root.NewEnv(nil).MergeFlags(true), os.Args[1:])
}

func runDecode(env *command.Env) error {
	var data []byte
	var err error
	switch len(env.Args) {
	case 0:
		data, err = io.ReadAll(os.Stdin)
	case 1:
		data, err = os.ReadFile(env.Args[0])
	default:
		return env.Usagef("Extra arguments: %q", env.Args[1:])
	}
	if err != nil {
		return err
	}

	value, err := codec.Unmarshal(data)
	if err != nil {
		return fmt.Errorf("decode payload: %w", err)
	}

	enc := json.NewEncoder(os.Stdout)
	if decodeFlags.Indent {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(jsonSafe(value))
}

// jsonSafe converts decoded values that have no JSON representation into
// printable forms.
func jsonSafe(v any) any {
	switch t := v.(type) {
	case map[string]any:
		m := make(map[string]any, len(t))
		for k, e := range t {
			m[k] = jsonSafe(e)
		}
		return m
	case []any:
		s := make([]any, len(t))
		for i, e := range t {
			s[i] = jsonSafe(e)
		}
		return s
	case []byte:
		return string(t)
	case fmt.Stringer:
		return t.String()
	default:
		return v
	}
}

func runEndpoint(env *command.Env) error {
	if endpointFlags.TCP {
		if len(env.Args) != 1 {
			return env.Usagef("A host:port address is required")
		}
		fmt.Println(channel.TCP(env.Args[0]))
		return nil
	}
	if len(env.Args) != 3 {
		return env.Usagef("A component type, name and version are required")
	}
	fmt.Println(channel.IPC(env.Args...))
	return nil
}

package payload

import "github.com/mizuchi-rpc/sdk-go/payload/ns"

// A Command is an inbound command payload: the decoded body of a request
// received from the framework runtime. Path operations are rooted at the
// command arguments.
type Command struct {
	*Payload
}

// NewCommand wraps a decoded document tree as a command payload.
func NewCommand(data map[string]any) *Command {
	return &Command{Payload: WithPrefix(data, ns.Command, ns.Arguments)}
}

// NewCommandFor creates a command payload with a name and scope and optional
// arguments.
func NewCommandFor(name, scope string, args map[string]any) *Command {
	data := map[string]any{
		ns.Command: map[string]any{
			ns.Name: name,
		},
		ns.Meta: map[string]any{
			ns.Scope: scope,
		},
	}
	c := NewCommand(data)
	if args != nil {
		c.Unprefixed().Set([]string{ns.Command, ns.Arguments}, args)
	}
	return c
}

// NewRuntimeCallCommand creates the command payload for a run-time call.
// The callee is the service name, version and action to call.
func NewRuntimeCallCommand(callerAction string, callee [3]string, transport *Transport, params, files []any) *Command {
	var tdata map[string]any
	if transport != nil {
		tdata = transport.Data()
	} else {
		tdata = map[string]any{}
	}
	args := map[string]any{
		ns.Action:    callerAction,
		ns.Callee:    []any{callee[0], callee[1], callee[2]},
		ns.Transport: tdata,
	}
	if len(params) > 0 {
		args[ns.Params] = params
	}
	if len(files) > 0 {
		args[ns.Files] = files
	}
	return NewCommandFor("runtime-call", "service", args)
}

// Name returns the name of the command.
func (c *Command) Name() string {
	return c.Unprefixed().GetString([]string{ns.Command, ns.Name}, "")
}

// Attributes returns the request attributes.
func (c *Command) Attributes() map[string]any { return c.GetMap(ns.Attributes) }

// ServiceCallData returns the service call descriptor for a request command.
func (c *Command) ServiceCallData() map[string]any { return c.GetMap(ns.Call) }

// TransportData returns the transport tree for an action command.
func (c *Command) TransportData() map[string]any { return c.GetMap(ns.Transport) }

// ResponseData returns the HTTP response tree for a response command.
func (c *Command) ResponseData() map[string]any { return c.GetMap(ns.Response) }

// RequestID returns the request ID. Request and response commands carry it
// in the command meta; action commands carry it in the transport meta.
func (c *Command) RequestID() string {
	if rid := c.GetString([]string{ns.Meta, ns.ID}, ""); rid != "" {
		return rid
	}
	return c.GetString([]string{ns.Transport, ns.Meta, ns.ID}, "")
}

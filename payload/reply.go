package payload

import (
	"fmt"

	"github.com/mizuchi-rpc/sdk-go/payload/ns"
)

// HTTP defaults for new reply payloads.
const (
	HTTPVersion  = "1.1"
	HTTPStatusOK = "200 OK"
)

// A Reply is the outbound half of a command exchange. Its shape depends on
// the component that produces it: request replies carry attributes, a
// service call descriptor and a default HTTP response, response replies
// carry attributes and an HTTP response, and action replies carry the
// request transport.
type Reply struct {
	*Payload
}

func newReply(result map[string]any, command *Command) *Reply {
	return &Reply{Payload: WithPrefix(map[string]any{
		ns.CommandReply: map[string]any{
			ns.Name:   command.Name(),
			ns.Result: result,
		},
	}, ns.CommandReply, ns.Result)}
}

// NewReply creates an empty reply rooted at the command reply result.
func NewReply() *Reply {
	return &Reply{Payload: WithPrefix(map[string]any{}, ns.CommandReply, ns.Result)}
}

// WrapReply wraps a decoded document tree as a reply payload.
func WrapReply(data map[string]any) *Reply {
	return &Reply{Payload: WithPrefix(data, ns.CommandReply, ns.Result)}
}

// NewRequestReply creates the reply shell for a request middleware command.
func NewRequestReply(command *Command) *Reply {
	call := command.ServiceCallData()
	return newReply(map[string]any{
		ns.Attributes: command.Attributes(),
		ns.Call: map[string]any{
			ns.Name:    getString(call, ns.Name),
			ns.Version: getString(call, ns.Version),
			ns.Action:  getString(call, ns.Action),
			ns.Params:  getSlice(call, ns.Params),
		},
		ns.Response: map[string]any{
			ns.Version: HTTPVersion,
			ns.Status:  HTTPStatusOK,
			ns.Headers: map[string]any{"Content-Type": []any{"text/plain"}},
			ns.Body:    []byte{},
		},
	}, command)
}

// NewResponseReply creates the reply shell for a response middleware command.
func NewResponseReply(command *Command) *Reply {
	return newReply(map[string]any{
		ns.Attributes: command.Attributes(),
		ns.Response:   command.ResponseData(),
	}, command)
}

// NewActionReply creates the reply shell for a service action command. The
// transport starts as a snapshot of the inbound command transport.
func NewActionReply(command *Command) *Reply {
	return newReply(map[string]any{
		ns.Transport: command.TransportData(),
	}, command)
}

// SetResponse replaces the reply response with a fresh HTTP response for the
// given status.
func (r *Reply) SetResponse(code int, text string) *Reply {
	r.Set([]string{ns.Response}, map[string]any{
		ns.Version: HTTPVersion,
		ns.Status:  statusLine(code, text),
		ns.Headers: map[string]any{},
		ns.Body:    []byte{},
	})
	return r
}

// ReturnValue returns the return value stored in the reply, or nil.
func (r *Reply) ReturnValue() any { return r.Get([]string{ns.ReturnValue}, nil) }

// Transport returns the transport stored in the reply, or nil when the reply
// carries none.
func (r *Reply) Transport() *Transport {
	if data, ok := r.Get([]string{ns.Transport}, nil).(map[string]any); ok {
		return NewTransport(data)
	}
	return nil
}

// ForRequest shapes the reply for a request middleware result by dropping
// the response payload.
func (r *Reply) ForRequest() *Reply {
	r.Delete(ns.Response)
	return r
}

// ForResponse shapes the reply for a response middleware result by dropping
// the service call descriptor.
func (r *Reply) ForResponse() *Reply {
	r.Delete(ns.Call)
	return r
}

func statusLine(code int, text string) string { return fmt.Sprintf("%d %s", code, text) }

func getString(m map[string]any, key string) string {
	if s, ok := m[key].(string); ok {
		return s
	}
	return ""
}

func getSlice(m map[string]any, key string) []any {
	if s, ok := m[key].([]any); ok {
		return s
	}
	return []any{}
}

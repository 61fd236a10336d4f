package mizuchi

import (
	"context"

	"github.com/mizuchi-rpc/sdk-go/payload"
	"github.com/mizuchi-rpc/sdk-go/payload/ns"
)

// A Response is the wrapper a middleware response callback receives. It
// reads the transport produced by the request and shapes the HTTP response
// returned to the client.
type Response struct {
	Api
}

func newResponse(ctx context.Context, s *Server, state *State, command *payload.Command, reply *payload.Reply) *Response {
	return &Response{Api: newAPI(ctx, s, state, command, reply)}
}

// GatewayProtocol returns the protocol the gateway used for the request.
func (r *Response) GatewayProtocol() string {
	return r.command.GetString([]string{ns.Meta, ns.Protocol}, "")
}

// GatewayAddress returns the public address of the gateway.
func (r *Response) GatewayAddress() string {
	if pair, ok := r.command.Get([]string{ns.Meta, ns.Gateway}, nil).([]any); ok && len(pair) > 1 {
		if addr, ok := pair[1].(string); ok {
			return addr
		}
	}
	return ""
}

// RequestAttribute returns a request attribute set by a request middleware,
// or def when the attribute is not defined.
func (r *Response) RequestAttribute(name, def string) string {
	return r.command.GetString([]string{ns.Attributes, name}, def)
}

// RequestAttributes returns the first value of every request attribute.
func (r *Response) RequestAttributes() map[string]string {
	attributes := r.command.GetMap(ns.Attributes)
	out := make(map[string]string, len(attributes))
	for name, value := range attributes {
		if s, ok := value.(string); ok {
			out[name] = s
		}
	}
	return out
}

// HTTPRequest returns a view of the HTTP request that arrived at the
// gateway.
func (r *Response) HTTPRequest() *HTTPRequest {
	return newHTTPRequest(r.command.GetMap(ns.Request))
}

// HTTPResponse returns the HTTP response being returned to the client.
func (r *Response) HTTPResponse() *HTTPResponse {
	return newHTTPResponse(r.reply)
}

// HasReturn reports whether the called action returned a value.
func (r *Response) HasReturn() bool { return r.command.Exists(ns.ReturnValue) }

// ReturnValue returns the value returned by the called action, or nil.
func (r *Response) ReturnValue() any {
	return r.command.Get([]string{ns.ReturnValue}, nil)
}

// Transport returns a read-only view of the request transport.
func (r *Response) Transport() *payload.Transport {
	return payload.NewTransport(r.command.TransportData())
}

package mizuchi

import (
	"context"
	"sort"

	"github.com/mizuchi-rpc/sdk-go/payload"
	"github.com/mizuchi-rpc/sdk-go/payload/ns"
)

// A Request is the wrapper a middleware request callback receives. It reads
// the HTTP request that arrived at the gateway and decides which service
// action the framework should call, or it produces a Response directly to
// short-circuit the middleware chain.
type Request struct {
	Api
}

func newRequest(ctx context.Context, s *Server, state *State, command *payload.Command, reply *payload.Reply) *Request {
	return &Request{Api: newAPI(ctx, s, state, command, reply)}
}

// ID returns the request ID.
func (r *Request) ID() string {
	return r.command.GetString([]string{ns.Meta, ns.ID}, "")
}

// Timestamp returns the time the request arrived at the gateway.
func (r *Request) Timestamp() string {
	return r.command.GetString([]string{ns.Meta, ns.Datetime}, "")
}

// GatewayProtocol returns the protocol the gateway used for the request.
func (r *Request) GatewayProtocol() string {
	return r.command.GetString([]string{ns.Meta, ns.Protocol}, "")
}

// GatewayAddress returns the public address of the gateway.
func (r *Request) GatewayAddress() string {
	if pair, ok := r.command.Get([]string{ns.Meta, ns.Gateway}, nil).([]any); ok && len(pair) > 1 {
		if addr, ok := pair[1].(string); ok {
			return addr
		}
	}
	return ""
}

// ClientAddress returns the address of the client that made the request.
func (r *Request) ClientAddress() string {
	return r.command.GetString([]string{ns.Meta, ns.Client}, "")
}

// SetAttribute registers a request attribute: a string value that travels
// with the request and is readable by the response middlewares.
func (r *Request) SetAttribute(name, value string) *Request {
	r.reply.Set([]string{ns.Attributes, name}, value)
	return r
}

// ServiceName returns the name of the service the request resolves to.
func (r *Request) ServiceName() string {
	return r.reply.GetString([]string{ns.Call, ns.Name}, "")
}

// SetServiceName sets the name of the service to call.
func (r *Request) SetServiceName(service string) *Request {
	r.reply.Set([]string{ns.Call, ns.Name}, service)
	return r
}

// ServiceVersion returns the version of the service the request resolves to.
func (r *Request) ServiceVersion() string {
	return r.reply.GetString([]string{ns.Call, ns.Version}, "")
}

// SetServiceVersion sets the version of the service to call.
func (r *Request) SetServiceVersion(version string) *Request {
	r.reply.Set([]string{ns.Call, ns.Version}, version)
	return r
}

// ActionName returns the name of the action the request resolves to.
func (r *Request) ActionName() string {
	return r.reply.GetString([]string{ns.Call, ns.Action}, "")
}

// SetActionName sets the name of the action to call.
func (r *Request) SetActionName(action string) *Request {
	r.reply.Set([]string{ns.Call, ns.Action}, action)
	return r
}

// HasParam reports whether a call parameter is set.
func (r *Request) HasParam(name string) bool {
	_, ok := r.paramRecord(name)
	return ok
}

// Param returns a call parameter. A parameter that is not set reports Exists
// false and has an empty value.
func (r *Request) Param(name string) Param {
	if record, ok := r.paramRecord(name); ok {
		return newParamFromPayload(record)
	}
	return Param{name: name, value: "", typ: TypeString}
}

// Params returns all the call parameters, sorted by name.
func (r *Request) Params() []Param {
	var params []Param
	for _, value := range r.reply.GetSlice(ns.Call, ns.Params) {
		if record, ok := value.(map[string]any); ok {
			params = append(params, newParamFromPayload(record))
		}
	}
	sort.Slice(params, func(i, j int) bool { return params[i].Name() < params[j].Name() })
	return params
}

// SetParam adds a parameter to the service call, replacing an existing
// parameter with the same name.
func (r *Request) SetParam(param Param) *Request {
	records := r.reply.GetSlice(ns.Call, ns.Params)
	for i, value := range records {
		if record, ok := value.(map[string]any); ok && record[ns.Name] == param.Name() {
			records[i] = param.data()
			return r
		}
	}
	r.reply.Append([]string{ns.Call, ns.Params}, param.data())
	return r
}

// NewParam creates a parameter with a value.
func (r *Request) NewParam(name string, value any) Param { return NewParam(name, value) }

func (r *Request) paramRecord(name string) (map[string]any, bool) {
	for _, value := range r.reply.GetSlice(ns.Call, ns.Params) {
		record, ok := value.(map[string]any)
		if ok && record[ns.Name] == name {
			return record, true
		}
	}
	return nil, false
}

// NewResponse short-circuits the middleware chain: the reply is reshaped as
// an HTTP response with the given status and the service call is skipped.
func (r *Request) NewResponse(code int, text string) *Response {
	r.reply.SetResponse(code, text)
	return &Response{Api: *r.apiBase()}
}

// HTTPRequest returns a view of the HTTP request that arrived at the
// gateway.
func (r *Request) HTTPRequest() *HTTPRequest {
	return newHTTPRequest(r.command.GetMap(ns.Request))
}

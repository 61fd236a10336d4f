package mizuchi

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mizuchi-rpc/sdk-go/payload"
	"github.com/mizuchi-rpc/sdk-go/payload/ns"
)

// An HTTPResponse is a view of the HTTP response a middleware returns to the
// client. Writes go directly into the reply payload.
type HTTPResponse struct {
	reply *payload.Reply
}

func newHTTPResponse(reply *payload.Reply) *HTTPResponse {
	return &HTTPResponse{reply: reply}
}

// IsProtocolVersion reports whether the response uses an HTTP version.
func (r *HTTPResponse) IsProtocolVersion(version string) bool {
	return r.ProtocolVersion() == version
}

// ProtocolVersion returns the HTTP version of the response.
func (r *HTTPResponse) ProtocolVersion() string {
	return r.reply.GetString([]string{ns.Response, ns.Version}, payload.HTTPVersion)
}

// SetProtocolVersion sets the HTTP version of the response.
func (r *HTTPResponse) SetProtocolVersion(version string) *HTTPResponse {
	r.reply.Set([]string{ns.Response, ns.Version}, version)
	return r
}

// IsStatus reports whether the response has a status line.
func (r *HTTPResponse) IsStatus(status string) bool { return r.Status() == status }

// Status returns the response status line, like "200 OK".
func (r *HTTPResponse) Status() string {
	return r.reply.GetString([]string{ns.Response, ns.Status}, payload.HTTPStatusOK)
}

// StatusCode returns the numeric status code.
func (r *HTTPResponse) StatusCode() int {
	code, _, _ := strings.Cut(r.Status(), " ")
	n, err := strconv.Atoi(code)
	if err != nil {
		return 0
	}
	return n
}

// StatusText returns the text of the status line.
func (r *HTTPResponse) StatusText() string {
	_, text, _ := strings.Cut(r.Status(), " ")
	return text
}

// SetStatus sets the response status.
func (r *HTTPResponse) SetStatus(code int, text string) *HTTPResponse {
	r.reply.Set([]string{ns.Response, ns.Status}, fmt.Sprintf("%d %s", code, text))
	return r
}

// HasHeader reports whether the response has a header. Header names are case
// insensitive.
func (r *HTTPResponse) HasHeader(name string) bool {
	_, ok := r.headerValues(name)
	return ok
}

// Header returns the first value of a response header, or def.
func (r *HTTPResponse) Header(name, def string) string {
	if values, ok := r.headerValues(name); ok {
		return firstString(values, def)
	}
	return def
}

// HeaderArray returns all the values of a response header.
func (r *HTTPResponse) HeaderArray(name string) []string {
	values, _ := r.headerValues(name)
	return stringValues(values)
}

// Headers returns the first value of every response header.
func (r *HTTPResponse) Headers() map[string]string {
	return firstValues(r.reply.GetMap(ns.Response, ns.Headers))
}

// SetHeader adds a value to a response header, keeping existing values.
func (r *HTTPResponse) SetHeader(name, value string) *HTTPResponse {
	r.reply.Append([]string{ns.Response, ns.Headers, name}, value)
	return r
}

// ReplaceHeader replaces all the values of a response header.
func (r *HTTPResponse) ReplaceHeader(name, value string) *HTTPResponse {
	headers := r.reply.GetMap(ns.Response, ns.Headers)
	for header := range headers {
		if strings.EqualFold(header, name) {
			r.reply.Delete(ns.Response, ns.Headers, header)
		}
	}
	return r.SetHeader(name, value)
}

func (r *HTTPResponse) headerValues(name string) ([]any, bool) {
	for header, values := range r.reply.GetMap(ns.Response, ns.Headers) {
		if strings.EqualFold(header, name) {
			s, ok := values.([]any)
			return s, ok
		}
	}
	return nil, false
}

// HasBody reports whether the response has a body.
func (r *HTTPResponse) HasBody() bool { return len(r.Body()) > 0 }

// Body returns the response body.
func (r *HTTPResponse) Body() []byte {
	if body, ok := r.reply.Get([]string{ns.Response, ns.Body}, nil).([]byte); ok {
		return body
	}
	return nil
}

// SetBody sets the response body.
func (r *HTTPResponse) SetBody(content []byte) *HTTPResponse {
	if content == nil {
		content = []byte{}
	}
	r.reply.Set([]string{ns.Response, ns.Body}, content)
	return r
}

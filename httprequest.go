package mizuchi

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/mizuchi-rpc/sdk-go/payload"
	"github.com/mizuchi-rpc/sdk-go/payload/ns"
)

// An HTTPRequest is a read-only view of the HTTP request that arrived at the
// gateway.
type HTTPRequest struct {
	p *payload.Payload
}

func newHTTPRequest(data map[string]any) *HTTPRequest {
	return &HTTPRequest{p: payload.From(data)}
}

// IsMethod reports whether the request uses an HTTP method. The comparison
// is case insensitive.
func (r *HTTPRequest) IsMethod(method string) bool {
	return strings.EqualFold(r.Method(), method)
}

// Method returns the HTTP method.
func (r *HTTPRequest) Method() string {
	return r.p.GetString([]string{ns.Method}, "")
}

// URL returns the request URL.
func (r *HTTPRequest) URL() string {
	return r.p.GetString([]string{ns.URL}, "")
}

func (r *HTTPRequest) parseURL() *url.URL {
	u, err := url.Parse(r.URL())
	if err != nil {
		return &url.URL{}
	}
	return u
}

// URLScheme returns the scheme of the request URL.
func (r *HTTPRequest) URLScheme() string { return r.parseURL().Scheme }

// URLHost returns the host of the request URL, without the port.
func (r *HTTPRequest) URLHost() string { return r.parseURL().Hostname() }

// URLPort returns the port of the request URL, or zero.
func (r *HTTPRequest) URLPort() int {
	port, err := strconv.Atoi(r.parseURL().Port())
	if err != nil {
		return 0
	}
	return port
}

// URLPath returns the path of the request URL.
func (r *HTTPRequest) URLPath() string { return r.parseURL().Path }

// IsProtocolVersion reports whether the request uses an HTTP version.
func (r *HTTPRequest) IsProtocolVersion(version string) bool {
	return r.ProtocolVersion() == version
}

// ProtocolVersion returns the HTTP version of the request.
func (r *HTTPRequest) ProtocolVersion() string {
	return r.p.GetString([]string{ns.Version}, "")
}

// HasQueryParam reports whether the query string has a parameter.
func (r *HTTPRequest) HasQueryParam(name string) bool {
	return r.p.Exists(ns.Query, name)
}

// QueryParam returns the first value of a query string parameter, or def.
func (r *HTTPRequest) QueryParam(name, def string) string {
	return firstString(r.p.GetSlice(ns.Query, name), def)
}

// QueryParamArray returns all the values of a query string parameter.
func (r *HTTPRequest) QueryParamArray(name string) []string {
	return stringValues(r.p.GetSlice(ns.Query, name))
}

// QueryParams returns the first value of every query string parameter.
func (r *HTTPRequest) QueryParams() map[string]string {
	return firstValues(r.p.GetMap(ns.Query))
}

// HasPostParam reports whether the request body has a form parameter.
func (r *HTTPRequest) HasPostParam(name string) bool {
	return r.p.Exists(ns.PostData, name)
}

// PostParam returns the first value of a form parameter, or def.
func (r *HTTPRequest) PostParam(name, def string) string {
	return firstString(r.p.GetSlice(ns.PostData, name), def)
}

// PostParamArray returns all the values of a form parameter.
func (r *HTTPRequest) PostParamArray(name string) []string {
	return stringValues(r.p.GetSlice(ns.PostData, name))
}

// PostParams returns the first value of every form parameter.
func (r *HTTPRequest) PostParams() map[string]string {
	return firstValues(r.p.GetMap(ns.PostData))
}

// HasHeader reports whether the request has a header. Header names are case
// insensitive.
func (r *HTTPRequest) HasHeader(name string) bool {
	_, ok := r.headerValues(name)
	return ok
}

// Header returns the first value of a request header, or def.
func (r *HTTPRequest) Header(name, def string) string {
	if values, ok := r.headerValues(name); ok {
		return firstString(values, def)
	}
	return def
}

// HeaderArray returns all the values of a request header.
func (r *HTTPRequest) HeaderArray(name string) []string {
	values, _ := r.headerValues(name)
	return stringValues(values)
}

// Headers returns the first value of every request header.
func (r *HTTPRequest) Headers() map[string]string {
	return firstValues(r.p.GetMap(ns.Headers))
}

func (r *HTTPRequest) headerValues(name string) ([]any, bool) {
	for header, values := range r.p.GetMap(ns.Headers) {
		if strings.EqualFold(header, name) {
			s, ok := values.([]any)
			return s, ok
		}
	}
	return nil, false
}

// HasBody reports whether the request has a body.
func (r *HTTPRequest) HasBody() bool { return len(r.Body()) > 0 }

// Body returns the request body.
func (r *HTTPRequest) Body() []byte {
	if body, ok := r.p.Get([]string{ns.Body}, nil).([]byte); ok {
		return body
	}
	return nil
}

// HasFile reports whether the request carries an uploaded file.
func (r *HTTPRequest) HasFile(name string) bool {
	_, ok := r.fileRecord(name)
	return ok
}

// File returns an uploaded file. A file that was not sent has no location.
func (r *HTTPRequest) File(name string) File {
	if record, ok := r.fileRecord(name); ok {
		return newFileFromPayload(record)
	}
	return File{name: name}
}

// Files returns all the uploaded files.
func (r *HTTPRequest) Files() []File {
	var files []File
	for _, value := range r.p.GetSlice(ns.Files) {
		if record, ok := value.(map[string]any); ok {
			files = append(files, newFileFromPayload(record))
		}
	}
	return files
}

func (r *HTTPRequest) fileRecord(name string) (map[string]any, bool) {
	for _, value := range r.p.GetSlice(ns.Files) {
		record, ok := value.(map[string]any)
		if ok && record[ns.Name] == name {
			return record, true
		}
	}
	return nil, false
}

func firstString(values []any, def string) string {
	if len(values) > 0 {
		if s, ok := values[0].(string); ok {
			return s
		}
	}
	return def
}

func stringValues(values []any) []string {
	var out []string
	for _, v := range values {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func firstValues(m map[string]any) map[string]string {
	out := make(map[string]string, len(m))
	for name, values := range m {
		if s, ok := values.([]any); ok {
			out[name] = firstString(s, "")
		}
	}
	return out
}

package mizuchi

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/mizuchi-rpc/sdk-go/payload"
)

func TestHTTPResponseStatus(t *testing.T) {
	r := newHTTPResponse(payload.NewReply())

	// Defaults apply until something is written.
	if got := r.Status(); got != "200 OK" {
		t.Errorf("Status: got %q, want 200 OK", got)
	}
	if got := r.ProtocolVersion(); got != "1.1" {
		t.Errorf("ProtocolVersion: got %q, want 1.1", got)
	}

	r.SetStatus(404, "Not Found")
	if !r.IsStatus("404 Not Found") {
		t.Errorf("Status after SetStatus: got %q", r.Status())
	}
	if r.StatusCode() != 404 || r.StatusText() != "Not Found" {
		t.Errorf("Status parts: got %d %q", r.StatusCode(), r.StatusText())
	}
}

func TestHTTPResponseHeaders(t *testing.T) {
	r := newHTTPResponse(payload.NewReply())

	r.SetHeader("X-Trace", "t1").SetHeader("X-Trace", "t2")
	if diff := cmp.Diff([]string{"t1", "t2"}, r.HeaderArray("x-trace")); diff != "" {
		t.Errorf("HeaderArray after SetHeader (-want, +got):\n%s", diff)
	}

	r.ReplaceHeader("x-trace", "t3")
	if diff := cmp.Diff([]string{"t3"}, r.HeaderArray("X-Trace")); diff != "" {
		t.Errorf("HeaderArray after ReplaceHeader (-want, +got):\n%s", diff)
	}
	if !r.HasHeader("X-TRACE") {
		t.Error("HasHeader(X-TRACE): got false, want true")
	}
	if got := r.Header("Missing", "fallback"); got != "fallback" {
		t.Errorf("Header(Missing): got %q, want fallback", got)
	}
}

func TestHTTPResponseBody(t *testing.T) {
	r := newHTTPResponse(payload.NewReply())

	if r.HasBody() {
		t.Error("HasBody on an empty response: got true, want false")
	}
	r.SetBody([]byte("content"))
	if string(r.Body()) != "content" {
		t.Errorf("Body: got %q, want content", r.Body())
	}
	r.SetBody(nil)
	if r.HasBody() {
		t.Error("HasBody after clearing: got true, want false")
	}
}

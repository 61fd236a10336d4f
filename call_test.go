package mizuchi

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/fortytw2/leaktest"
	"github.com/mizuchi-rpc/sdk-go/channel"
	"github.com/mizuchi-rpc/sdk-go/codec"
	"github.com/mizuchi-rpc/sdk-go/payload"
	"github.com/mizuchi-rpc/sdk-go/payload/ns"
)

// peerDialer returns a dial function whose channels are serviced by handle
// in the background. A nil result from handle leaves the request unanswered
// until the caller hangs up.
func peerDialer(t *testing.T, handle func(frames [][]byte) [][]byte) dialFunc {
	return func(ctx context.Context, endpoint string) (channel.Channel, error) {
		client, peer := channel.Direct()
		go func() {
			defer peer.Close()
			frames, err := peer.Recv()
			if err != nil {
				return
			}
			if out := handle(frames); out != nil {
				peer.Send(out)
			} else {
				peer.Recv() // wait for the caller to hang up
			}
		}()
		return client, nil
	}
}

// replyStream encodes a call reply carrying a return value and a transport.
func replyStream(t *testing.T, rv any, transport map[string]any) [][]byte {
	t.Helper()
	data, err := codec.Marshal(map[string]any{
		ns.CommandReply: map[string]any{
			ns.Name: "runtime-call",
			ns.Result: map[string]any{
				ns.ReturnValue: rv,
				ns.Transport:   transport,
			},
		},
	})
	if err != nil {
		t.Fatalf("Encoding reply: unexpected error: %v", err)
	}
	return [][]byte{data}
}

func testCall(c *callClient, timeout int) (any, *payload.Transport, error) {
	base := payload.NewTransport(map[string]any{
		ns.Meta: map[string]any{
			ns.ID:      "req-1",
			ns.Gateway: []any{"ipc://gw", "http://10.0.0.1:80"},
		},
	})
	return c.Call(context.Background(), "127.0.0.1:9001", "read",
		[3]string{"posts", "1.1.0", "list"}, timeout, base, nil, nil)
}

func TestCallSuccess(t *testing.T) {
	defer leaktest.Check(t)()

	dial := peerDialer(t, func(frames [][]byte) [][]byte {
		if len(frames) != 2 || !bytes.Equal(frames[0], runtimeCallTag) {
			t.Errorf("Request frames: got %d with tag %v", len(frames), frames[0])
		}
		value, err := codec.Unmarshal(frames[1])
		if err != nil {
			t.Errorf("Decoding command: unexpected error: %v", err)
			return replyStream(t, nil, nil)
		}
		command := payload.NewCommand(value.(map[string]any))
		if got, want := command.Name(), "runtime-call"; got != want {
			t.Errorf("Command name: got %q, want %q", got, want)
		}
		if got := command.GetString([]string{ns.Action}, ""); got != "read" {
			t.Errorf("Caller action: got %q, want read", got)
		}
		return replyStream(t, int64(42), map[string]any{
			ns.Links: map[string]any{
				"http://10.0.0.1:80": map[string]any{"posts": map[string]any{"self": "/posts/7"}},
			},
		})
	})

	c := &callClient{log: newRequestLogger("req-1"), dial: dial}
	value, transport, err := testCall(c, 1000)
	if err != nil {
		t.Fatalf("Call: unexpected error: %v", err)
	}
	if value != int64(42) {
		t.Errorf("Return value: got %v, want 42", value)
	}
	if transport == nil {
		t.Fatal("Call transport: got nil, want a transport")
	}
	if got := transport.Get([]string{ns.Links, "http://10.0.0.1:80", "posts", "self"}, nil); got != "/posts/7" {
		t.Errorf("Callee link: got %v, want /posts/7", got)
	}
	if c.Duration() < 0 {
		t.Errorf("Duration: got %d, want >= 0", c.Duration())
	}
}

func TestCallTimeout(t *testing.T) {
	defer leaktest.Check(t)()

	dial := peerDialer(t, func([][]byte) [][]byte { return nil })
	c := &callClient{log: newRequestLogger("req-1"), dial: dial}

	_, _, err := testCall(c, 10)
	if err == nil {
		t.Fatal("Call: got nil, want a timeout error")
	}
	if got, want := err.Error(), "Run-time call failed: Timeout"; got != want {
		t.Errorf("Call error: got %q, want %q", got, want)
	}
}

func TestCallRemoteError(t *testing.T) {
	defer leaktest.Check(t)()

	dial := peerDialer(t, func([][]byte) [][]byte {
		data, err := codec.Marshal(payload.NewError("User not found", 404, "404 Not Found").Data())
		if err != nil {
			t.Errorf("Encoding error payload: %v", err)
		}
		return [][]byte{data}
	})
	c := &callClient{log: newRequestLogger("req-1"), dial: dial}

	_, _, err := testCall(c, 1000)
	if got, want := err.Error(), "Run-time call failed: User not found"; got != want {
		t.Errorf("Call error: got %q, want %q", got, want)
	}
}

func TestCallBadReplies(t *testing.T) {
	defer leaktest.Check(t)()

	tests := []struct {
		name  string
		reply [][]byte
		want  string
	}{
		{"undecodable stream", [][]byte{{0xc1}},
			"Run-time call failed: The response format is invalid"},
		{"scalar payload", mustStream(t, "whoops"),
			"Run-time call failed: The payload data is not valid"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			dial := peerDialer(t, func([][]byte) [][]byte { return test.reply })
			c := &callClient{log: newRequestLogger("req-1"), dial: dial}

			_, _, err := testCall(c, 1000)
			if err == nil || err.Error() != test.want {
				t.Errorf("Call error: got %v, want %q", err, test.want)
			}
		})
	}
}

func TestCallDialFailure(t *testing.T) {
	defer leaktest.Check(t)()

	fail := errors.New("no route to runtime")
	c := &callClient{log: newRequestLogger("req-1"), dial: func(context.Context, string) (channel.Channel, error) {
		return nil, fail
	}}

	_, _, err := testCall(c, 1000)
	if got, want := err.Error(), "Run-time call failed: Failed to make the request"; got != want {
		t.Errorf("Call error: got %q, want %q", got, want)
	}
	if !errors.Is(err, fail) {
		t.Error("Call error does not wrap the dial failure")
	}
}

func mustStream(t *testing.T, v any) [][]byte {
	t.Helper()
	data, err := codec.Marshal(v)
	if err != nil {
		t.Fatalf("Encoding %v: unexpected error: %v", v, err)
	}
	return [][]byte{data}
}

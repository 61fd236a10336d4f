package mizuchi

import (
	"context"
	"time"

	"github.com/mizuchi-rpc/sdk-go/channel"
	"github.com/mizuchi-rpc/sdk-go/codec"
	"github.com/mizuchi-rpc/sdk-go/payload"
)

// Fixed failure reasons for run-time call errors. The resulting messages are
// part of the protocol contract with userland code.
const (
	callReasonTimeout        = "Timeout"
	callReasonRequestFailed  = "Failed to make the request"
	callReasonInvalidFormat  = "The response format is invalid"
	callReasonInvalidPayload = "The payload data is not valid"
)

// runtimeCallTag is the first frame of every run-time call message.
var runtimeCallTag = []byte{0x01}

// A dialFunc opens a request channel to an endpoint. It exists so tests can
// substitute in-memory channels for sockets.
type dialFunc func(ctx context.Context, endpoint string) (channel.Channel, error)

// A callClient makes run-time service calls. Each call opens its own
// connection scoped to exactly one exchange; clients carry no state shared
// between calls except the last call duration.
type callClient struct {
	log  RequestLogger
	tcp  bool     // connect over TCP instead of IPC
	dial dialFunc // nil means channel.Dial

	duration int // duration of the last call in rounded milliseconds
}

// Duration returns the duration of the last call in milliseconds.
func (c *callClient) Duration() int { return c.duration }

// Call makes a run-time service call and returns the remote return value and
// the transport produced by the callee.
//
// Calls are sent to the runtime address where the caller runs, not to the
// target service: the framework routes the call to keep the semantics
// consistent across SDKs. The duration is recorded on every exit path.
func (c *callClient) Call(
	ctx context.Context,
	address string,
	action string,
	callee [3]string,
	timeout int,
	transport *payload.Transport,
	params, files []any,
) (any, *payload.Transport, error) {
	sdkMetrics.callOut.Add(1)
	command := payload.NewRuntimeCallCommand(action, callee, transport, params, files)
	data, err := codec.Marshal(command.Data())
	if err != nil {
		sdkMetrics.callOutErr.Add(1)
		return nil, nil, &CallError{Reason: callReasonRequestFailed, Err: err}
	}

	var endpoint string
	if c.tcp {
		endpoint = channel.TCP(address)
	} else {
		endpoint = channel.IPC(address)
	}

	stream, err := c.exchange(ctx, endpoint, data, timeout)
	if err != nil {
		sdkMetrics.callOutErr.Add(1)
		return nil, nil, err
	}
	return c.parseReply(stream)
}

// exchange sends the framed command and waits at most timeout milliseconds
// for the single-frame reply. The connection is released on every exit path.
func (c *callClient) exchange(ctx context.Context, endpoint string, data []byte, timeout int) (_ []byte, err error) {
	start := time.Now()
	defer func() {
		c.duration = int(time.Since(start).Round(time.Millisecond) / time.Millisecond)
	}()

	ch, err := c.dialChannel(ctx, endpoint)
	if err != nil {
		c.log.Errorf("Run-time call to address %q failed: %v", endpoint, err)
		return nil, &CallError{Reason: callReasonRequestFailed, Err: err}
	}
	defer ch.Close()

	if err := ch.Send([][]byte{runtimeCallTag, data}); err != nil {
		c.log.Errorf("Run-time call to address %q failed: %v", endpoint, err)
		return nil, &CallError{Reason: callReasonRequestFailed, Err: err}
	}

	type reply struct {
		frames [][]byte
		err    error
	}
	recv := make(chan reply, 1)
	go func() {
		frames, err := ch.Recv()
		recv <- reply{frames: frames, err: err}
	}()

	timer := time.NewTimer(time.Duration(timeout) * time.Millisecond)
	defer timer.Stop()

	select {
	case r := <-recv:
		if r.err != nil {
			c.log.Errorf("Run-time call to address %q failed: %v", endpoint, r.err)
			return nil, &CallError{Reason: callReasonRequestFailed, Err: r.err}
		}
		if len(r.frames) == 0 {
			return nil, &CallError{Reason: callReasonInvalidFormat}
		}
		return r.frames[0], nil

	case <-timer.C:
		c.log.Errorf("Run-time call to address %q failed: Timeout", endpoint)
		return nil, &CallError{Reason: callReasonTimeout}

	case <-ctx.Done():
		c.log.Errorf("Run-time call to address %q failed: %v", endpoint, ctx.Err())
		return nil, &CallError{Reason: callReasonRequestFailed, Err: ctx.Err()}
	}
}

func (c *callClient) dialChannel(ctx context.Context, endpoint string) (channel.Channel, error) {
	if c.dial != nil {
		return c.dial(ctx, endpoint)
	}
	return channel.Dial(ctx, endpoint)
}

// parseReply decodes a reply stream into a return value and a transport.
func (c *callClient) parseReply(stream []byte) (any, *payload.Transport, error) {
	value, err := codec.Unmarshal(stream)
	if err != nil {
		sdkMetrics.callOutErr.Add(1)
		c.log.Errorf("Run-time call response format is invalid: %v", err)
		return nil, nil, &CallError{Reason: callReasonInvalidFormat, Err: err}
	}

	data, ok := value.(map[string]any)
	if !ok {
		sdkMetrics.callOutErr.Add(1)
		c.log.Errorf("Run-time call response data is not a map")
		return nil, nil, &CallError{Reason: callReasonInvalidPayload}
	}

	if payload.IsError(data) {
		sdkMetrics.callOutErr.Add(1)
		return nil, nil, &CallError{Reason: payload.NewErrorPayload(data).Message()}
	}

	reply := payload.WrapReply(data)
	return reply.ReturnValue(), reply.Transport(), nil
}

package mizuchi

import (
	"context"
	"errors"
	"expvar"
	"fmt"
	"net"
	"os"
	"sync/atomic"
	"time"

	"github.com/creachadair/taskgroup"
	"github.com/mizuchi-rpc/sdk-go/channel"
	"github.com/mizuchi-rpc/sdk-go/codec"
	"github.com/mizuchi-rpc/sdk-go/payload"
)

// Response flag bits for the second frame of a reply. A service reply reports
// what its transport carries so the peer can skip re-parsing it when nothing
// interesting happened; flagNone is the empty-flags sentinel.
const (
	flagNone         byte = 0x00
	flagServiceCall  byte = 0x01
	flagFiles        byte = 0x02
	flagTransactions byte = 0x04
	flagDownload     byte = 0x08
)

// A listenFunc binds a reply channel on an endpoint. It exists so tests can
// substitute in-memory channels for sockets.
type listenFunc func(ctx context.Context, endpoint string) (channel.Channel, error)

// A Server runs the component request loop: it binds one socket for the
// process lifetime, receives multipart requests, dispatches each to a
// userland callback under the configured timeout and sends back a multipart
// reply.
type Server struct {
	config    *Config
	component *Component
	callbacks map[string]callback
	onError   func(error)

	listen listenFunc // nil means channel.Listen
	dial   dialFunc   // passed to run-time call clients, nil means channel.Dial

	schemas atomic.Pointer[payload.Mapping]

	stop chan struct{} // closed to request shutdown
	ch   atomic.Value  // channel.Channel once bound
}

// newServer creates a server for a component and its registered callbacks.
func newServer(component *Component, callbacks map[string]callback) *Server {
	s := &Server{
		config:    component.config,
		component: component,
		callbacks: callbacks,
		onError:   component.errorHook,
		stop:      make(chan struct{}),
	}
	s.schemas.Store(payload.NewMapping(nil))
	return s
}

// Metrics returns the metrics map for the server. It is safe for the caller
// to add additional metrics to the map while the server is active.
func (s *Server) Metrics() *expvar.Map { return sdkMetrics.emap }

// Stop closes the server socket, causing Run to return.
func (s *Server) Stop() {
	select {
	case <-s.stop:
	default:
		close(s.stop)
	}
	if ch, ok := s.ch.Load().(channel.Channel); ok {
		ch.Close()
	}
}

// Run binds the server endpoint and services requests until ctx ends, Stop is
// called or the channel fails. The socket is released on every exit path.
func (s *Server) Run(ctx context.Context) error {
	endpoint := s.config.Channel()
	logger.Debugf("Listening for incoming requests in channel: %q", endpoint)

	ch, err := s.bind(ctx, endpoint)
	if err != nil {
		return fmt.Errorf("bind %s: %w", endpoint, err)
	}
	s.ch.Store(ch)
	defer ch.Close()

	// Close the channel when the context ends so the receive loop unblocks.
	watch := taskgroup.Go(func() error {
		select {
		case <-ctx.Done():
			ch.Close()
		case <-s.stop:
		}
		return nil
	})
	defer func() { s.Stop(); watch.Wait() }()

	g := taskgroup.New(nil)
	defer g.Wait()

	for {
		frames, err := ch.Recv()
		if err != nil {
			if ctx.Err() != nil || s.stopped() || errors.Is(err, net.ErrClosed) {
				return nil
			}
			return err
		}
		sdkMetrics.requestRecv.Add(1)

		state, err := newState(frames)
		var out [][]byte
		if err != nil {
			logger.Errorf("Received an invalid multipart request: %v", err)
			out = errorStream("-", "Failed to handle request")
		} else {
			out = s.handleRequest(ctx, g, state)
		}

		// The peer uses a strict request/reply pattern, so the reply is sent
		// before the next request is accepted.
		if err := ch.Send(out); err != nil {
			if ctx.Err() != nil || s.stopped() || errors.Is(err, net.ErrClosed) {
				return nil
			}
			return err
		}
	}
}

func (s *Server) bind(ctx context.Context, endpoint string) (channel.Channel, error) {
	if s.listen != nil {
		return s.listen(ctx, endpoint)
	}
	return channel.Listen(ctx, endpoint)
}

func (s *Server) stopped() bool {
	select {
	case <-s.stop:
		return true
	default:
		return false
	}
}

// mapping returns the current service schema mapping.
func (s *Server) mapping() *payload.Mapping { return s.schemas.Load() }

// updateSchemas decodes a schema stream and replaces the process-wide
// mapping. The mapping is swapped wholesale so concurrent readers never
// observe a partial update.
func (s *Server) updateSchemas(state *State) {
	state.Logger().Debugf("Updating schemas for services ...")
	value, err := codec.Unmarshal(state.Schemas)
	if err != nil {
		state.Logger().Errorf("Failed to update schemas: Stream format is not valid: %v", err)
		return
	}
	data, ok := value.(map[string]any)
	if !ok {
		state.Logger().Errorf("Failed to update schemas: The schema is not a map")
		return
	}
	s.schemas.Store(payload.NewMapping(data))
	sdkMetrics.schemaUpdates.Add(1)
}

// handleRequest dispatches a request in its own task, bounded by the
// configured execution timeout.
func (s *Server) handleRequest(ctx context.Context, g *taskgroup.Group, state *State) [][]byte {
	timeout := s.config.ExecutionTimeout()
	rctx, cancel := context.WithTimeout(ctx, time.Duration(timeout)*time.Millisecond)
	defer cancel()

	sdkMetrics.requestActive.Add(1)
	result := make(chan [][]byte, 1)
	g.Go(func() error {
		defer sdkMetrics.requestActive.Add(-1)
		result <- s.processRequest(rctx, state)
		return nil
	})

	select {
	case out := <-result:
		return out
	case <-rctx.Done():
		if errors.Is(rctx.Err(), context.DeadlineExceeded) {
			sdkMetrics.requestTimeout.Add(1)
			msg := fmt.Sprintf("Execution timed out after %dms", timeout)
			state.Logger().Warningf("%s. PID: %d", msg, os.Getpid())
			return errorStream(state.ID, msg)
		}
		return errorStream(state.ID, "Failed to handle request")
	}
}

// processRequest services one request: it applies schema updates, resolves
// the callback, decodes the command and shapes the reply.
func (s *Server) processRequest(ctx context.Context, state *State) [][]byte {
	if len(state.Schemas) > 0 {
		s.updateSchemas(state)
	}

	cb, ok := s.callbacks[state.Action]
	if !ok {
		msg := fmt.Sprintf("Invalid action for component %s: %q", s.config.Title(), state.Action)
		return errorStream(state.ID, msg)
	}

	value, err := codec.Unmarshal(state.Command)
	data, isMap := value.(map[string]any)
	if err != nil || !isMap {
		const msg = "The request contains an invalid payload"
		state.Logger().Criticalf("%s: %v", msg, err)
		return errorStream(state.ID, msg)
	}
	command := payload.NewCommand(data)

	return s.processAction(ctx, state, command, cb)
}

// processAction invokes the userland callback and converts its outcome into
// a reply stream. All error conversion happens here.
func (s *Server) processAction(ctx context.Context, state *State, command *payload.Command, cb callback) [][]byte {
	api, reply := s.createAPI(ctx, state, command)

	result, err := invoke(cb, api)
	if err != nil {
		state.Logger().Errorf("Callback error: %v", err)
		s.notifyError(err)

		var ferr *Error
		if !errors.As(err, &ferr) {
			// Unexpected failures abandon the reply shape and carry only the
			// message.
			sdkMetrics.requestErr.Add(1)
			return errorStream(state.ID, err.Error())
		}
		result = s.convertError(ferr, api, reply)
	}
	return s.processResult(state, result, reply)
}

// createAPI builds the reply shell and the userland wrapper for a request.
// Services get an action reply, request middlewares a request reply and
// response middlewares a response reply.
func (s *Server) createAPI(ctx context.Context, state *State, command *payload.Command) (apiResult, *payload.Reply) {
	if s.config.IsService() {
		reply := payload.NewActionReply(command)
		return newAction(ctx, s, state, command, reply), reply
	}
	if state.Action == "response" {
		reply := payload.NewResponseReply(command)
		return newResponse(ctx, s, state, command, reply), reply
	}
	// The reply starts shaped as a request and is reshaped when the callback
	// produces a response to short-circuit the middleware chain.
	reply := payload.NewRequestReply(command)
	return newRequest(ctx, s, state, command, reply), reply
}

// invoke runs the callback registered for the component kind.
func invoke(cb callback, api apiResult) (apiResult, error) {
	switch t := api.(type) {
	case *Action:
		return cb.action(t)
	case *Request:
		return cb.request(t)
	case *Response:
		return cb.response(t)
	}
	return nil, fmt.Errorf("invalid callback component: %T", api)
}

// convertError turns a framework error into a valid result: an error action
// for services, or a 500 response for middlewares.
func (s *Server) convertError(ferr *Error, api apiResult, reply *payload.Reply) apiResult {
	if action, ok := api.(*Action); ok {
		status := ferr.Status
		if status == "" {
			status = payload.DefaultErrorStatus
		}
		action.Error(ferr.Message, ferr.Code, status)
		return action
	}

	response := &Response{Api: *api.apiBase()}
	hr := response.HTTPResponse()
	hr.SetStatus(500, "Internal Server Error")
	hr.SetBody([]byte(ferr.Message))
	return response
}

// processResult shapes and encodes the reply for a callback result. The flags
// frame reports pending calls, files, transactions and downloads for service
// results.
func (s *Server) processResult(state *State, result apiResult, reply *payload.Reply) [][]byte {
	flags := flagNone
	switch t := result.(type) {
	case *Request:
		reply.ForRequest()
	case *Response:
		reply.ForResponse()
	case *Action:
		if transport := reply.Transport(); transport != nil {
			var f byte
			if transport.HasCalls(t.Name(), t.Version()) {
				f |= flagServiceCall
			}
			if transport.HasFiles() {
				f |= flagFiles
			}
			if transport.HasTransactions() {
				f |= flagTransactions
			}
			if transport.HasDownload() {
				f |= flagDownload
			}
			if f != flagNone {
				flags = f
			}
		}
	default:
		state.Logger().Errorf("Callback returned an invalid value: %T", result)
		sdkMetrics.requestErr.Add(1)
		return errorStream(state.ID, "Invalid value returned from callback")
	}

	data, err := codec.Marshal(reply.Data())
	if err != nil {
		state.Logger().Errorf("Failed to serialize the reply: %v", err)
		sdkMetrics.requestErr.Add(1)
		return errorStream(state.ID, "Failed to serialize the reply")
	}
	return [][]byte{[]byte(state.ID), {flags}, data}
}

func (s *Server) notifyError(err error) {
	if s.onError != nil {
		s.onError(err)
	}
}

// errorStream creates a multipart error reply.
func errorStream(rid, message string) [][]byte {
	data, err := codec.Marshal(payload.NewError(message, 0, "").Data())
	if err != nil {
		// An error payload only holds scalars, so this cannot happen.
		panic(fmt.Sprintf("encode error payload: %v", err))
	}
	return [][]byte{[]byte(rid), {flagNone}, data}
}

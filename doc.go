// Package mizuchi implements the Mizuchi SDK protocol engine.
//
// Mizuchi is a framework for building distributed platforms out of services
// and middlewares. The framework runtime connects to each SDK component over
// a local request/reply socket: requests arrive as multipart messages, the
// SDK dispatches them to userland callbacks and encodes the replies.
//
// # Components
//
// A component is either a [Service], which exposes named actions, or a
// [Middleware], which processes requests before they reach a service and
// responses before they return to the client:
//
//	svc := mizuchi.NewService()
//	svc.Action("read", func(a *mizuchi.Action) (*mizuchi.Action, error) {
//	    return a.SetEntity(map[string]any{"id": a.Param("id").Value()}), nil
//	})
//	if err := svc.Run(); err != nil {
//	    log.Fatal(err)
//	}
//
// Run parses the configuration the runtime passes on the command line, binds
// the component socket and services requests until the process receives a
// termination signal. Each request is dispatched under the configured
// execution timeout; callbacks that exceed it are cancelled and answered
// with an error reply.
//
// # Callbacks
//
// Service callbacks receive an [Action] bound to the request transport: the
// per-request execution state that accumulates data, relations, links,
// calls, transactions, errors and files across the whole call graph.
// Middleware request callbacks receive a [Request] and return either the
// request, to continue the chain, or a Response created with
// [Request.NewResponse] to short-circuit it. Middleware response callbacks
// receive a [Response].
//
// A callback that returns an [*Error] produces a structured error response;
// any other error is answered with a bare error payload carrying its
// message. Both are forwarded to the hook registered with [Component.Error].
//
// # Run-time calls
//
// An action may call another service action in-process with [Action.Call].
// The call is routed through the runtime, bounded by its own timeout, and
// its resulting transport is merged back into the caller's so the caller
// observes the cumulative effects of the whole call graph. Errors reported
// by run-time calls have concrete type [*CallError].
package mizuchi

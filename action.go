package mizuchi

import (
	"context"
	"fmt"
	"sort"

	"github.com/mizuchi-rpc/sdk-go/payload"
	"github.com/mizuchi-rpc/sdk-go/payload/ns"
)

// An Action is the wrapper a service action callback receives. It reads the
// inbound parameters and files, and writes data, relations, links, calls,
// transactions and errors to the request transport.
type Action struct {
	Api

	transport *payload.Transport
	params    map[string]map[string]any
	files     map[string]map[string]any
}

// newAction builds the action wrapper for a service command. The transport is
// a deep copy of the inbound snapshot: mutations never leak backward into the
// command, which keeps a clean base transport for run-time calls.
func newAction(ctx context.Context, s *Server, state *State, command *payload.Command, reply *payload.Reply) *Action {
	data := payload.DeepCopy(command.TransportData()).(map[string]any)
	a := &Action{
		Api:       newAPI(ctx, s, state, command, reply),
		transport: payload.NewTransport(data).Bind(reply),
		params:    make(map[string]map[string]any),
		files:     make(map[string]map[string]any),
	}

	for _, value := range command.GetSlice(ns.Params) {
		if record, ok := value.(map[string]any); ok {
			if name, ok := record[ns.Name].(string); ok {
				a.params[name] = record
			}
		}
	}

	gateway := a.transport.GatewayAddress()
	path := []string{ns.Files, gateway, a.Name(), a.Version(), a.ActionName()}
	for _, value := range a.transport.GetSlice(path...) {
		if record, ok := value.(map[string]any); ok {
			if name, ok := record[ns.Name].(string); ok {
				a.files[name] = record
			}
		}
	}

	a.setDefaultReturn()
	return a
}

// setDefaultReturn initializes the reply return value from the action schema
// so the reply is valid even when the callback never calls SetReturn.
func (a *Action) setDefaultReturn() {
	schema, err := a.ServiceSchema(a.Name(), a.Version())
	if err != nil {
		return
	}
	action, err := schema.ActionSchema(a.ActionName())
	if err != nil || !action.HasReturn() {
		return
	}
	a.transport.SetReturn(defaultReturnValue(action.ReturnType()))
}

func defaultReturnValue(typ string) any {
	switch typ {
	case TypeBoolean:
		return false
	case TypeInteger:
		return int64(0)
	case TypeFloat:
		return float64(0)
	case TypeString, TypeBinary:
		return ""
	case TypeArray:
		return []any{}
	case TypeObject:
		return map[string]any{}
	default:
		return nil
	}
}

// ActionName returns the name of the action being executed.
func (a *Action) ActionName() string { return a.state.Action }

// IsOrigin reports whether this service is the origin of the request.
func (a *Action) IsOrigin() bool {
	origin := []any{a.Name(), a.Version(), a.ActionName()}
	return a.transport.Equals([]string{ns.Meta, ns.Origin}, origin)
}

// SetProperty sets a userland property in the transport meta.
func (a *Action) SetProperty(name, value string) *Action {
	a.transport.SetProperty(name, value)
	return a
}

// HasParam reports whether a parameter was sent for the action.
func (a *Action) HasParam(name string) bool {
	_, ok := a.params[name]
	return ok
}

// Param returns an action parameter. A parameter that was not sent reports
// Exists false and has an empty value.
func (a *Action) Param(name string) Param {
	if record, ok := a.params[name]; ok {
		return newParamFromPayload(record)
	}
	return Param{name: name, value: "", typ: TypeString}
}

// Params returns all the action parameters, sorted by name.
func (a *Action) Params() []Param {
	names := make([]string, 0, len(a.params))
	for name := range a.params {
		names = append(names, name)
	}
	sort.Strings(names)
	params := make([]Param, len(names))
	for i, name := range names {
		params[i] = newParamFromPayload(a.params[name])
	}
	return params
}

// NewParam creates a parameter with a value to pass to another service.
func (a *Action) NewParam(name string, value any) Param { return NewParam(name, value) }

// HasFile reports whether a file was sent for the action.
func (a *Action) HasFile(name string) bool {
	_, ok := a.files[name]
	return ok
}

// File returns an action file. A file that was not sent has no location.
func (a *Action) File(name string) File {
	if record, ok := a.files[name]; ok {
		return newFileFromPayload(record)
	}
	return File{name: name}
}

// Files returns all the action files, sorted by name.
func (a *Action) Files() []File {
	names := make([]string, 0, len(a.files))
	for name := range a.files {
		names = append(names, name)
	}
	sort.Strings(names)
	files := make([]File, len(names))
	for i, name := range names {
		files[i] = newFileFromPayload(a.files[name])
	}
	return files
}

// NewFile creates a file parameter for a local path.
func (a *Action) NewFile(name, path, mime string) File { return NewFile(name, path, mime) }

// SetDownload registers a file as the response body for the request.
func (a *Action) SetDownload(file File) *Action {
	a.transport.SetDownload(file.data())
	return a
}

// SetReturn sets the value returned by the action. The action schema must
// declare a return value.
func (a *Action) SetReturn(value any) error {
	schema, err := a.ServiceSchema(a.Name(), a.Version())
	if err == nil {
		if action, err := schema.ActionSchema(a.ActionName()); err == nil && !action.HasReturn() {
			return NewError(fmt.Sprintf("Cannot set a return value in %s for action: %q", a.config.Title(), a.ActionName()))
		}
	}
	a.transport.SetReturn(value)
	return nil
}

// SetEntity registers an entity object as data for the current action.
func (a *Action) SetEntity(entity map[string]any) *Action {
	a.transport.AddData(a.Name(), a.Version(), a.ActionName(), entity)
	return a
}

// SetCollection registers a collection of entities as data for the current
// action.
func (a *Action) SetCollection(collection []any) *Action {
	a.transport.AddData(a.Name(), a.Version(), a.ActionName(), collection)
	return a
}

// RelateOne relates an entity of this service to one entity of another local
// service.
func (a *Action) RelateOne(primaryKey, service, foreignKey string) *Action {
	a.transport.AddRelateOne(a.Name(), primaryKey, service, foreignKey)
	return a
}

// RelateMany relates an entity of this service to many entities of another
// local service.
func (a *Action) RelateMany(primaryKey, service string, foreignKeys []any) *Action {
	a.transport.AddRelateMany(a.Name(), primaryKey, service, foreignKeys)
	return a
}

// RelateOneRemote relates an entity of this service to one entity of a
// service in another realm.
func (a *Action) RelateOneRemote(primaryKey, address, service, foreignKey string) *Action {
	a.transport.AddRelateOneRemote(a.Name(), primaryKey, address, service, foreignKey)
	return a
}

// RelateManyRemote relates an entity of this service to many entities of a
// service in another realm.
func (a *Action) RelateManyRemote(primaryKey, address, service string, foreignKeys []any) *Action {
	a.transport.AddRelateManyRemote(a.Name(), primaryKey, address, service, foreignKeys)
	return a
}

// SetLink registers a named link for the current service.
func (a *Action) SetLink(link, uri string) *Action {
	a.transport.AddLink(a.Name(), link, uri)
	return a
}

// Commit registers a transaction to run when the whole request succeeds.
func (a *Action) Commit(action string, params []Param) error {
	return a.transport.AddTransaction(payload.TransactionCommit, a.Name(), a.Version(), a.ActionName(), action, paramsData(params))
}

// Rollback registers a transaction to run when the request fails.
func (a *Action) Rollback(action string, params []Param) error {
	return a.transport.AddTransaction(payload.TransactionRollback, a.Name(), a.Version(), a.ActionName(), action, paramsData(params))
}

// Complete registers a transaction to run when the request finishes,
// regardless of the outcome.
func (a *Action) Complete(action string, params []Param) error {
	return a.transport.AddTransaction(payload.TransactionComplete, a.Name(), a.Version(), a.ActionName(), action, paramsData(params))
}

// CallOptions carry the optional arguments of a run-time, deferred or remote
// call.
type CallOptions struct {
	Params  []Param
	Files   []File
	Timeout int // milliseconds, defaults to the execution timeout
}

// Call makes a run-time call to another service and returns its return
// value. The call is performed through the runtime and blocks until the
// callee finishes or the timeout expires; either way a call record with the
// duration is added to the transport.
func (a *Action) Call(service, version, action string, opts CallOptions) (any, error) {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = a.config.ExecutionTimeout()
	}
	params := paramsData(opts.Params)
	files := filesData(opts.Files)

	if err := a.checkLocalFiles(service, version, opts.Files); err != nil {
		return nil, err
	}

	client := &callClient{log: a.Logger(), tcp: a.config.TCPEnabled(), dial: a.server.dial}
	// The base transport for the call is the inbound snapshot, without any
	// data this action has already written.
	base := payload.NewTransport(a.command.TransportData())
	value, transport, err := client.Call(
		a.ctx,
		a.config.ComponentAddress(),
		a.ActionName(),
		[3]string{service, version, action},
		timeout,
		base,
		params,
		files,
	)

	// The call record is added even when the call fails, so the caller's
	// transport always accounts for the attempt.
	if merr := a.transport.AddCall(a.Name(), a.Version(), a.ActionName(), service, version, action, client.Duration(), payload.CallOptions{
		Params:    params,
		Files:     files,
		Timeout:   timeout,
		Transport: transport,
	}); merr != nil && err == nil {
		err = merr
	}
	return value, err
}

// DeferCall registers a call for the runtime to execute after the current
// request completes.
func (a *Action) DeferCall(service, version, action string, opts CallOptions) error {
	if err := a.checkLocalFiles(service, version, opts.Files); err != nil {
		return err
	}
	a.transport.AddDeferCall(a.Name(), a.Version(), a.ActionName(), service, version, action, paramsData(opts.Params), filesData(opts.Files))
	return nil
}

// RemoteCall registers a call to a service behind a gateway in another
// realm.
func (a *Action) RemoteCall(address, service, version, action string, opts CallOptions) error {
	if err := a.checkLocalFiles(service, version, opts.Files); err != nil {
		return err
	}
	a.transport.AddRemoteCall(address, a.Name(), a.Version(), a.ActionName(), service, version, action, opts.Timeout, paramsData(opts.Params), filesData(opts.Files))
	return nil
}

// checkLocalFiles verifies the service has a file server before local files
// are passed along with a call.
func (a *Action) checkLocalFiles(service, version string, files []File) error {
	for _, file := range files {
		if !file.IsLocal() {
			continue
		}
		schema, err := a.ServiceSchema(a.Name(), a.Version())
		if err != nil || !schema.HasFileServer() {
			return NewError(fmt.Sprintf("File server not configured: %q (%s)", service, version))
		}
		return nil
	}
	return nil
}

// Error registers an error for the current service. Zero code and empty
// status use the defaults.
func (a *Action) Error(message string, code int, status string) *Action {
	if status == "" {
		status = payload.DefaultErrorStatus
	}
	a.transport.AddError(a.Name(), a.Version(), message, code, status)
	return a
}

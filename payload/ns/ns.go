// Package ns defines the field names used in framework payloads.
//
// Payload field names are single characters (occasionally two) to keep the
// serialized messages small. The same character may name different fields in
// different payload contexts; the constants here are grouped by the context
// they belong to.
package ns

// Command envelope fields.
const (
	Command      = "c"
	CommandReply = "cr"
	Name         = "n"
	Arguments    = "a"
	Result       = "r"
	Meta         = "m"
	Scope        = "s"
)

// Command meta and request meta fields.
const (
	ID       = "i"
	Datetime = "d"
	Protocol = "P"
	Client   = "c"
	Origin   = "o"
	Level    = "l"
	Version  = "v"
	Gateway  = "g"
)

// Transport sections.
const (
	Data         = "d"
	Relations    = "r"
	Links        = "l"
	Calls        = "C"
	Transactions = "t"
	Errors       = "e"
	Files        = "f"
	Body         = "b"
	Properties   = "p"
	Fallbacks    = "F"
	Duration     = "D"
)

// Call and transaction record fields. Name, Version and Duration are shared
// with the groups above.
const (
	Action  = "a"
	Caller  = "c"
	Callee  = "c"
	Params  = "p"
	Timeout = "x"
)

// Transaction types.
const (
	Commit   = "c"
	Rollback = "r"
	Complete = "C"
)

// Error payload fields.
const (
	Error   = "E"
	Message = "m"
	Code    = "c"
	Status  = "s"
)

// Command reply result fields.
const (
	Attributes  = "a"
	Call        = "c"
	Response    = "R"
	ReturnValue = "rv"
	Transport   = "T"
)

// Parameter fields. Name and Value are shared with the groups above.
const (
	Value = "v"
	Type  = "t"
)

// File fields.
const (
	Path     = "p"
	Mime     = "m"
	Filename = "f"
	Size     = "s"
	Token    = "t"
)

// HTTP request and response fields.
const (
	Request  = "r"
	Method   = "m"
	URL      = "u"
	Query    = "q"
	PostData = "p"
	Headers  = "h"
)

// Service schema fields.
const (
	Address    = "a"
	Actions    = "ac"
	HTTP       = "h"
	FileServer = "fs"
	Return     = "rv"
)

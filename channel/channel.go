// Package channel provides the multipart message channels used to talk to
// the framework runtime.
//
// The runtime speaks a strict request/reply socket pattern: the component
// binds one reply channel for its process lifetime, and every outbound
// run-time call dials a short lived request channel. Direct constructs an
// in-memory channel pair with the same semantics for tests.
package channel

import (
	"context"
	"net"
	"regexp"
	"strings"

	"github.com/go-zeromq/zmq4"
)

// appTag prefixes every inter-process channel name.
const appTag = "mizuchi"

// A Channel is a reliable stream of multipart messages shared by two peers.
//
// Send and Recv must be safe for concurrent use by one sender and one
// receiver. After Close, all operations report an error.
type Channel interface {
	// Send a multipart message to the peer.
	Send(frames [][]byte) error

	// Recv the next multipart message from the peer.
	Recv() ([][]byte, error)

	// Close the channel, causing pending operations to terminate and
	// report an error.
	Close() error
}

var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9]+`)

// IPC returns the inter-process endpoint for an address. Runs of
// non-alphanumeric characters collapse to a single separator and the fixed
// application tag is prepended.
func IPC(parts ...string) string {
	name := nonAlphanumeric.ReplaceAllString(strings.Join(parts, "-"), "-")
	return "ipc://@" + appTag + "-" + name
}

// TCP returns the network endpoint for an address of the form host:port.
func TCP(address string) string { return "tcp://" + address }

// Listen binds a reply channel on an endpoint. The returned channel receives
// multipart requests and must send exactly one multipart reply for each.
func Listen(ctx context.Context, endpoint string) (Channel, error) {
	sock := zmq4.NewRep(ctx)
	if err := sock.Listen(endpoint); err != nil {
		sock.Close()
		return nil, err
	}
	return socketChannel{sock: sock}, nil
}

// Dial connects a request channel to an endpoint. The returned channel sends
// one multipart request and receives one multipart reply; its lifetime is
// scoped to a single exchange.
func Dial(ctx context.Context, endpoint string) (Channel, error) {
	sock := zmq4.NewReq(ctx)
	if err := sock.Dial(endpoint); err != nil {
		sock.Close()
		return nil, err
	}
	return socketChannel{sock: sock}, nil
}

// socketChannel adapts a ZeroMQ socket to the Channel interface.
type socketChannel struct {
	sock zmq4.Socket
}

// Send implements a method of the [Channel] interface.
func (c socketChannel) Send(frames [][]byte) error {
	return c.sock.SendMulti(zmq4.NewMsgFrom(frames...))
}

// Recv implements a method of the [Channel] interface.
func (c socketChannel) Recv() ([][]byte, error) {
	msg, err := c.sock.Recv()
	if err != nil {
		return nil, err
	}
	return msg.Frames, nil
}

// Close implements a method of the [Channel] interface.
func (c socketChannel) Close() error { return c.sock.Close() }

// Direct constructs a connected pair of in-memory channels that pass frames
// directly without a socket. Messages sent to A are received by B and vice
// versa.
func Direct() (A, B Channel) {
	a2b := make(chan [][]byte)
	b2a := make(chan [][]byte)
	A = direct{out: a2b, in: b2a}
	B = direct{out: b2a, in: a2b}
	return
}

type direct struct {
	out chan<- [][]byte
	in  <-chan [][]byte
}

// Send implements a method of the [Channel] interface.
func (d direct) Send(frames [][]byte) (err error) {
	defer safeClose(&err)
	d.out <- frames
	return nil
}

// Recv implements a method of the [Channel] interface.
func (d direct) Recv() ([][]byte, error) {
	frames, ok := <-d.in
	if !ok {
		return nil, net.ErrClosed
	}
	return frames, nil
}

// Close implements a method of the [Channel] interface.
func (d direct) Close() (err error) {
	defer safeClose(&err)
	close(d.out)
	return nil
}

func safeClose(err *error) {
	if x := recover(); x != nil && *err == nil {
		*err = net.ErrClosed
	}
}

package channel_test

import (
	"testing"

	"github.com/fortytw2/leaktest"
	"github.com/google/go-cmp/cmp"
	"github.com/mizuchi-rpc/sdk-go/channel"
)

func TestIPC(t *testing.T) {
	tests := []struct {
		parts []string
		want  string
	}{
		{[]string{"users"}, "ipc://@mizuchi-users"},
		{[]string{"users", "1.0.0"}, "ipc://@mizuchi-users-1-0-0"},
		{[]string{"my service", "1.0"}, "ipc://@mizuchi-my-service-1-0"},
		{[]string{"a//b..c"}, "ipc://@mizuchi-a-b-c"},
	}
	for _, tc := range tests {
		if got := channel.IPC(tc.parts...); got != tc.want {
			t.Errorf("IPC(%v): got %q, want %q", tc.parts, got, tc.want)
		}
	}
}

func TestTCP(t *testing.T) {
	if got, want := channel.TCP("127.0.0.1:7070"), "tcp://127.0.0.1:7070"; got != want {
		t.Errorf("TCP: got %q, want %q", got, want)
	}
}

func TestDirect(t *testing.T) {
	defer leaktest.Check(t)()

	a, b := channel.Direct()

	done := make(chan struct{})
	go func() {
		defer close(done)
		frames, err := b.Recv()
		if err != nil {
			t.Errorf("Recv: unexpected error: %v", err)
		}
		want := [][]byte{[]byte("id"), []byte("hello")}
		if diff := cmp.Diff(want, frames); diff != "" {
			t.Errorf("Recv frames (-want, +got):\n%s", diff)
		}
		if err := b.Send([][]byte{[]byte("reply")}); err != nil {
			t.Errorf("Send: unexpected error: %v", err)
		}
	}()

	if err := a.Send([][]byte{[]byte("id"), []byte("hello")}); err != nil {
		t.Fatalf("Send: unexpected error: %v", err)
	}
	frames, err := a.Recv()
	if err != nil {
		t.Fatalf("Recv: unexpected error: %v", err)
	}
	if got, want := string(frames[0]), "reply"; got != want {
		t.Errorf("Recv: got %q, want %q", got, want)
	}
	<-done

	if err := a.Close(); err != nil {
		t.Errorf("Close: unexpected error: %v", err)
	}
	if _, err := b.Recv(); err == nil {
		t.Error("Recv after peer close: got nil, want error")
	}
	if err := a.Close(); err == nil {
		t.Error("second Close: got nil, want error")
	}
}

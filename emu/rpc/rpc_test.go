package rpc

import (
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type fakeEmu struct {
	mu    sync.Mutex
	calls []string
}

func (e *fakeEmu) record(s string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls = append(e.calls, s)
}

func (e *fakeEmu) Reset() { e.record("reset") }
func (e *fakeEmu) Stop()  { e.record("stop") }
func (e *fakeEmu) SetPause(pause bool) {
	if pause {
		e.record("pause")
	} else {
		e.record("resume")
	}
}

func TestClientServer(t *testing.T) {
	emu := &fakeEmu{}
	port := UnusedPort()
	srv, err := NewServer(port, emu)
	if err != nil {
		t.Fatal(err)
	}
	errc := make(chan error, 1)
	go func() { errc <- srv.Serve() }()

	c, err := NewClient(port)
	if err != nil {
		t.Fatal(err)
	}

	for _, call := range []func() error{
		func() error { return c.SetPause(true) },
		func() error { return c.SetPause(false) },
		c.Reset,
		c.Stop,
	} {
		if err := call(); err != nil {
			t.Fatal(err)
		}
	}

	if err := c.Close(); err != nil {
		t.Error(err)
	}
	if err := srv.Close(); err != nil {
		t.Error(err)
	}
	if err := <-errc; err != nil {
		t.Errorf("Serve() = %v", err)
	}

	want := []string{"pause", "resume", "reset", "stop"}
	if diff := cmp.Diff(want, emu.calls); diff != "" {
		t.Errorf("calls mismatch (-want +got):\n%s", diff)
	}
}

func TestTwoServers(t *testing.T) {
	// Each server has its own registry.
	for range 2 {
		srv, err := NewServer(UnusedPort(), &fakeEmu{})
		if err != nil {
			t.Fatal(err)
		}
		srv.Close()
	}
}

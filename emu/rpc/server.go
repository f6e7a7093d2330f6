package rpc

import (
	"errors"
	"net"
	"net/http"
	"net/rpc"
	"strconv"
)

// Emu is the part of a running emulator controllable over RPC.
type Emu interface {
	Reset()
	SetPause(pause bool)
	Stop()
}

type emuProxy struct {
	emu Emu
}

func (ep *emuProxy) Reset(_, _ *struct{}) error             { ep.emu.Reset(); return nil }
func (ep *emuProxy) SetPause(pause bool, _ *struct{}) error { ep.emu.SetPause(pause); return nil }
func (ep *emuProxy) Stop(_, _ *struct{}) error              { ep.emu.Stop(); return nil }

func (ep *emuProxy) IsReady(_ *struct{}, reply *bool) error {
	*reply = true
	return nil
}

// Server serves an Emu over HTTP on localhost.
type Server struct {
	l   net.Listener
	srv *http.Server
}

func NewServer(port int, emu Emu) (*Server, error) {
	rs := rpc.NewServer()
	if err := rs.RegisterName("emu", &emuProxy{emu: emu}); err != nil {
		return nil, err
	}
	mux := http.NewServeMux()
	mux.Handle(rpc.DefaultRPCPath, rs)

	l, err := net.Listen("tcp", "localhost:"+strconv.Itoa(port))
	if err != nil {
		return nil, err
	}

	s := &Server{l: l, srv: &http.Server{Handler: mux}}
	modRPC.InfoZ("rpc server listening").Int("port", port).End()
	return s, nil
}

// Serve serves requests until Close is called.
func (s *Server) Serve() error {
	if err := s.srv.Serve(s.l); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Close() error {
	modRPC.DebugZ("closing rpc server").End()
	err := s.srv.Close()
	// The listener isn't tracked by srv if Serve was never called.
	s.l.Close()
	return err
}

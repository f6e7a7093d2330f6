package debugger

import (
	"bytes"
	"context"
	"net"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"

	"speccy/emu/log"
)

// A Server gives websocket clients access to a Shell. A single worker
// goroutine owns the controller and executes the requests of all clients
// in turn.
type Server struct {
	ctrl *Controller
	sh   *Shell
	out  bytes.Buffer

	reqs chan execRequest
}

type execRequest struct {
	line  string
	state bool // return the state rather than executing a command
	resp  chan<- []byte
}

// NewServer returns a server executing commands with a new Shell for
// ctrl and mach.
func NewServer(ctrl *Controller, mach Machine) *Server {
	s := &Server{
		ctrl: ctrl,
		reqs: make(chan execRequest),
	}
	s.sh = NewShell(ctrl, mach, &s.out)
	return s
}

// Serve accepts websocket connections on ln, at /ws, until ctx is
// cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebsocket(ctx))

	server := http.Server{
		Handler:     mux,
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.ModDbg.InfoZ("debugger server listening").String("addr", ln.Addr().String()).End()
		if err := server.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "debugger server")
		}
		return nil
	})
	g.Go(func() error {
		return s.worker(ctx)
	})
	g.Go(func() error {
		<-ctx.Done()
		s.ctrl.Stop()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// ListenAndServe listens on the TCP address addr then calls Serve.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

func (s *Server) worker(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case req := <-s.reqs:
			req.resp <- s.handle(req)
		}
	}
}

func (s *Server) handle(req execRequest) []byte {
	var e jx.Encoder
	if req.state {
		encodeState(&e, s.state())
		return e.Bytes()
	}

	s.out.Reset()
	err := s.sh.Exec(req.line)
	if err != nil && !errors.Is(err, ErrQuit) {
		log.ModDbg.DebugZ("command failed").String("line", req.line).Error("err", err).End()
	}
	encodeOutput(&e, s.out.String(), err)
	return e.Bytes()
}

func (s *Server) state() stateData {
	cpu := s.ctrl.CPU()
	return stateData{
		State: s.ctrl.State(),
		Regs:  cpu.Regs,
		Clock: cpu.Clock(),
	}
}

// submit hands req to the worker and waits for its response.
func (s *Server) submit(ctx context.Context, line string, state bool) ([]byte, error) {
	resp := make(chan []byte, 1)
	select {
	case s.reqs <- execRequest{line: line, state: state, resp: resp}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	select {
	case buf := <-resp:
		return buf, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// handleWebsocket returns the WebSocket handler for clients to connect.
func (s *Server) handleWebsocket(ctx context.Context) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var upgrader = websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		}
		upgrader.CheckOrigin = func(r *http.Request) bool { return true }

		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.ModDbg.ErrorZ("failed to perform websocket handshake").Error("err", err).End()
			return
		}
		defer ws.Close()

		log.ModDbg.DebugZ("websocket handshake success").String("remote", r.RemoteAddr).End()

		if err := newWsDriver(s, ws).drive(ctx); err != nil {
			log.ModDbg.InfoZ("connection to debugger client ended").Error("err", err).End()
		}
	}
}

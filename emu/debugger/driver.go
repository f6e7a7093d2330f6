package debugger

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"

	"speccy/emu/log"
)

// A wsdriver serves one websocket client.
//
// The reader decodes requests and queues them, the forwarder submits them
// one by one to the server worker and the writer sends responses back.
// Stop requests skip the queue so that they can interrupt a running
// command.
type wsdriver struct {
	srv *Server
	ws  *websocket.Conn

	queue chan wsRequest
	resps chan []byte
}

func newWsDriver(srv *Server, ws *websocket.Conn) *wsdriver {
	return &wsdriver{
		srv:   srv,
		ws:    ws,
		queue: make(chan wsRequest, 8),
		resps: make(chan []byte, 8),
	}
}

func (d *wsdriver) drive(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return d.write(ctx) })
	g.Go(func() error { return d.forward(ctx) })
	g.Go(func() error {
		// Unblock the reader when the writer fails or the server shuts down.
		<-ctx.Done()
		d.ws.Close()
		return nil
	})
	g.Go(func() error {
		defer close(d.queue)
		return d.read(ctx)
	})
	return g.Wait()
}

func (d *wsdriver) send(ctx context.Context, resp []byte) error {
	select {
	case d.resps <- resp:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *wsdriver) read(ctx context.Context) error {
	for {
		_, buf, err := d.ws.ReadMessage()
		if err != nil {
			return errors.Wrap(err, "read request")
		}

		var e jx.Encoder
		req, err := decodeRequest(buf)
		if err != nil {
			log.ModDbg.WarnZ("invalid debugger request").
				String("msg", string(buf)).
				Error("err", err).
				End()
			encodeError(&e, err)
			if err := d.send(ctx, e.Bytes()); err != nil {
				return err
			}
			continue
		}

		log.ModDbg.DebugZ("received message from debugger client").
			String("event", req.Event).
			String("data", req.Data).
			End()

		switch req.Event {
		case "stop":
			// Acknowledge first, so that the client receives it before the
			// output of the interrupted command.
			encodeEvent(&e, "stop", nil)
			if err := d.send(ctx, e.Bytes()); err != nil {
				return err
			}
			d.srv.ctrl.Stop()
			continue
		case "state", "exec":
			select {
			case d.queue <- req:
			case <-ctx.Done():
				return ctx.Err()
			}
			continue
		default:
			encodeError(&e, errors.Errorf("unknown event %q", req.Event))
		}
		if err := d.send(ctx, e.Bytes()); err != nil {
			return err
		}
	}
}

func (d *wsdriver) forward(ctx context.Context) error {
	initmsg, err := d.srv.submit(ctx, "", true)
	if err != nil {
		return err
	}
	if err := d.send(ctx, initmsg); err != nil {
		return err
	}

	for req := range d.queue {
		resp, err := d.srv.submit(ctx, req.Data, req.Event == "state")
		if err != nil {
			return err
		}
		if err := d.send(ctx, resp); err != nil {
			return err
		}
	}
	return nil
}

func (d *wsdriver) write(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case resp := <-d.resps:
			if err := d.ws.WriteMessage(websocket.TextMessage, resp); err != nil {
				return errors.Wrap(err, "write response")
			}
		}
	}
}

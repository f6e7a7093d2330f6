package debugger

import (
	"github.com/go-faster/errors"
	"github.com/go-faster/jx"

	"speccy/hw/z80"
)

// The debugger and a remote client communicate over a websocket, following
// this simple protocol.
//
// Every message is a JSON object {"event": ..., "data": ...}. As soon as the
// connection is established the debugger sends its current state. Then the
// client sends requests, each of them answered with exactly one response:
//
//	exec  data is a command line, answered with an output event.
//	state no data, answered with a state event.
//	stop  no data, answered with a stop event. Stop is handled out of band:
//	      it interrupts a running continue command.

/* Client -> debugger requests */

type wsRequest struct {
	Event string
	Data  string
}

func decodeRequest(buf []byte) (wsRequest, error) {
	var req wsRequest
	d := jx.DecodeBytes(buf)
	err := d.ObjBytes(func(d *jx.Decoder, key []byte) error {
		switch string(key) {
		case "event":
			s, err := d.Str()
			req.Event = s
			return err
		case "data":
			if d.Next() != jx.String {
				return d.Skip()
			}
			s, err := d.Str()
			req.Data = s
			return err
		}
		return d.Skip()
	})
	if err != nil {
		return req, errors.Wrap(err, "decode request")
	}
	if req.Event == "" {
		return req, errors.New("request has no event")
	}
	return req, nil
}

/* Debugger -> client responses */

// stateData is the data of the 'state' event.
type stateData struct {
	State State
	Regs  z80.RegisterFile
	Clock int64
}

func encodeEvent(e *jx.Encoder, event string, data func(e *jx.Encoder)) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("event", func(e *jx.Encoder) { e.Str(event) })
		if data != nil {
			e.Field("data", data)
		}
	})
}

func encodeOutput(e *jx.Encoder, text string, err error) {
	encodeEvent(e, "output", func(e *jx.Encoder) {
		e.Obj(func(e *jx.Encoder) {
			e.Field("text", func(e *jx.Encoder) { e.Str(text) })
			if err != nil {
				e.Field("error", func(e *jx.Encoder) { e.Str(err.Error()) })
			}
		})
	})
}

func encodeError(e *jx.Encoder, err error) {
	encodeEvent(e, "error", func(e *jx.Encoder) { e.Str(err.Error()) })
}

func encodeState(e *jx.Encoder, st stateData) {
	r := &st.Regs
	regs16 := []struct {
		name string
		val  uint16
	}{
		{"af", r.AF()}, {"bc", r.BC()}, {"de", r.DE()}, {"hl", r.HL()},
		{"af_", r.Alt(z80.RegAF)}, {"bc_", r.Alt(z80.RegBC)},
		{"de_", r.Alt(z80.RegDE)}, {"hl_", r.Alt(z80.RegHL)},
		{"ix", r.IX}, {"iy", r.IY}, {"sp", r.SP}, {"pc", r.PC},
		{"i", uint16(r.I)}, {"r", uint16(r.R)}, {"im", uint16(r.IM)},
	}

	encodeEvent(e, "state", func(e *jx.Encoder) {
		e.Obj(func(e *jx.Encoder) {
			e.Field("status", func(e *jx.Encoder) { e.Str(st.State.String()) })
			e.Field("clock", func(e *jx.Encoder) { e.Int64(st.Clock) })
			e.Field("regs", func(e *jx.Encoder) {
				e.Obj(func(e *jx.Encoder) {
					for _, reg := range regs16 {
						e.Field(reg.name, func(e *jx.Encoder) { e.Int(int(reg.val)) })
					}
					e.Field("iff1", func(e *jx.Encoder) { e.Bool(r.IFF1) })
					e.Field("iff2", func(e *jx.Encoder) { e.Bool(r.IFF2) })
					e.Field("flags", func(e *jx.Encoder) { e.Str(r.F().String()) })
				})
			})
		})
	})
}

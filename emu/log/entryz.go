package log

import (
	"fmt"
	"sync"
	"time"

	"gopkg.in/Sirupsen/logrus.v0"
)

const maxZFields = 16

// EntryZ is a zero-allocation log entry. A nil *EntryZ is valid and all its
// methods are no-ops, so that disabled log statements cost a single branch.
//
//	log.ModCPU.WarnZ("halted").Hex16("pc", pc).End()
type EntryZ struct {
	mod   Module
	lvl   Level
	msg   string
	zfbuf [maxZFields]ZField
	zfidx int
}

var entryzPool = sync.Pool{
	New: func() any { return new(EntryZ) },
}

func NewEntryZ() *EntryZ {
	e := entryzPool.Get().(*EntryZ)
	e.zfidx = 0
	return e
}

func (z *EntryZ) field() *ZField {
	if z.zfidx == maxZFields {
		return &ZField{}
	}
	f := &z.zfbuf[z.zfidx]
	z.zfidx++
	*f = ZField{}
	return f
}

func (z *EntryZ) Bool(key string, b bool) *EntryZ {
	if z != nil {
		f := z.field()
		f.Type, f.Key, f.Boolean = FieldTypeBool, key, b
	}
	return z
}

func (z *EntryZ) String(key string, s string) *EntryZ {
	if z != nil {
		f := z.field()
		f.Type, f.Key, f.String = FieldTypeString, key, s
	}
	return z
}

func (z *EntryZ) Stringer(key string, s fmt.Stringer) *EntryZ {
	if z != nil {
		f := z.field()
		f.Type, f.Key, f.Interface = FieldTypeStringer, key, s
	}
	return z
}

func (z *EntryZ) Hex8(key string, v uint8) *EntryZ {
	if z != nil {
		f := z.field()
		f.Type, f.Key, f.Integer = FieldTypeHex8, key, uint64(v)
	}
	return z
}

func (z *EntryZ) Hex16(key string, v uint16) *EntryZ {
	if z != nil {
		f := z.field()
		f.Type, f.Key, f.Integer = FieldTypeHex16, key, uint64(v)
	}
	return z
}

func (z *EntryZ) Hex32(key string, v uint32) *EntryZ {
	if z != nil {
		f := z.field()
		f.Type, f.Key, f.Integer = FieldTypeHex32, key, uint64(v)
	}
	return z
}

func (z *EntryZ) Int(key string, v int) *EntryZ {
	return z.Int64(key, int64(v))
}

func (z *EntryZ) Int64(key string, v int64) *EntryZ {
	if z != nil {
		f := z.field()
		f.Type, f.Key, f.Integer = FieldTypeInt, key, uint64(v)
	}
	return z
}

func (z *EntryZ) Uint(key string, v uint64) *EntryZ {
	if z != nil {
		f := z.field()
		f.Type, f.Key, f.Integer = FieldTypeUint, key, v
	}
	return z
}

func (z *EntryZ) Error(key string, err error) *EntryZ {
	if z != nil {
		f := z.field()
		f.Type, f.Key, f.Error = FieldTypeError, key, err
	}
	return z
}

func (z *EntryZ) Duration(key string, d time.Duration) *EntryZ {
	if z != nil {
		f := z.field()
		f.Type, f.Key, f.Duration = FieldTypeDuration, key, d
	}
	return z
}

func (z *EntryZ) Blob(key string, buf []byte) *EntryZ {
	if z != nil {
		f := z.field()
		f.Type, f.Key, f.Blob = FieldTypeBlob, key, buf
	}
	return z
}

// End emits the entry. For FatalZ entries the process exits, for PanicZ
// entries End panics after logging.
func (z *EntryZ) End() {
	if z == nil {
		return
	}

	for _, c := range contexts {
		c.AddLogContext(z)
	}

	fields := make(logrus.Fields, z.zfidx+1)
	fields["_mod"] = modNames[z.mod]
	for i := range z.zfbuf[:z.zfidx] {
		fields[z.zfbuf[i].Key] = z.zfbuf[i].Value()
	}

	entry := logrus.StandardLogger().WithFields(fields)
	lvl, msg := z.lvl, z.msg
	entryzPool.Put(z)

	switch lvl {
	case DebugLevel:
		entry.Debug(msg)
	case InfoLevel:
		entry.Info(msg)
	case WarnLevel:
		entry.Warn(msg)
	case ErrorLevel:
		entry.Error(msg)
	case FatalLevel:
		entry.Fatal(msg)
	case PanicLevel:
		entry.Panic(msg)
	}
}

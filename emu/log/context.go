package log

// Context adds fields to every log entry. The commands register the CPU so
// that each line carries the current program counter and clock.
type Context interface {
	AddLogContext(z *EntryZ)
}

var contexts []Context

func AddContext(ctx Context) {
	contexts = append(contexts, ctx)
}

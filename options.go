package incremental

import "log"

// Logger receives diagnostic messages about engine-state repairs that are
// normal control flow, not errors: a dead edge pruned while a ComputedNode
// polls its dependencies, and a panic recovered from a compute function
// when no OnPanic hook is installed. Edges pruned during a producer's
// notification fan-out and detected cycles are not logged. Nothing here is
// on the failure channel (see errors.go) — it exists purely for operators who want
// visibility into the graph's steady-state behavior.
type Logger interface {
	Debugf(format string, args ...any)
}

// stdLogger adapts the standard library's log.Logger to Logger, matching
// the "log and continue" default the rest of this codebase's ancestor
// uses for unexpected-but-recoverable conditions.
type stdLogger struct {
	l *log.Logger
}

func (s stdLogger) Debugf(format string, args ...any) {
	s.l.Printf(format, args...)
}

var defaultLogger Logger = stdLogger{l: log.New(log.Writer(), "incremental: ", log.LstdFlags)}

// nodeOptions holds the construction-time configuration shared by
// ValueNode and ComputedNode.
type nodeOptions struct {
	logger  Logger
	onPanic func(err any, stack []byte)
	name    string
}

// NodeOption configures a ValueNode or ComputedNode at construction time.
type NodeOption func(*nodeOptions)

// WithLogger overrides the default stdlib logger for one node.
func WithLogger(l Logger) NodeOption {
	return func(o *nodeOptions) { o.logger = l }
}

// WithOnPanic installs a handler invoked when a ComputedNode's compute
// function panics, instead of the default log-and-convert-to-error
// behavior. The handler receives the recovered value and a stack trace.
func WithOnPanic(fn func(err any, stack []byte)) NodeOption {
	return func(o *nodeOptions) { o.onPanic = fn }
}

// WithName sets a human-readable identifier used in diagnostic log lines,
// error messages, and String(). Defaults to the node's pointer address.
func WithName(name string) NodeOption {
	return func(o *nodeOptions) { o.name = name }
}

func buildOptions(opts []NodeOption) nodeOptions {
	var o nodeOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func (o *nodeOptions) log() Logger {
	if o.logger != nil {
		return o.logger
	}
	return defaultLogger
}

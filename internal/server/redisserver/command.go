package redisserver

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/yndnr/respkv/internal/telemetry/metric"
)

// CommandKind is the closed set of commands the dispatcher knows.
type CommandKind int

const (
	CmdUnknown CommandKind = iota
	CmdEcho
	CmdSet
	CmdGet
	CmdPing
)

// String returns the command word for known kinds.
func (k CommandKind) String() string {
	switch k {
	case CmdEcho:
		return "ECHO"
	case CmdSet:
		return "SET"
	case CmdGet:
		return "GET"
	case CmdPing:
		return "PING"
	default:
		return "UNKNOWN"
	}
}

// Classify maps an uppercased command word to its kind.
func Classify(name string) CommandKind {
	switch name {
	case "ECHO":
		return CmdEcho
	case "SET":
		return CmdSet
	case "GET":
		return CmdGet
	case "PING":
		return CmdPing
	default:
		return CmdUnknown
	}
}

// Command is a classified request. It is owned by a single call and
// discarded after dispatch.
type Command struct {
	Kind CommandKind
	Name string
	Args []string
}

// ParseCommand extracts a command from a decoded request. ok is false
// when req does not have the shape of a request (see Value.IsRequest).
//
// Elements after the first that are not concrete bulk strings are
// skipped; they do not invalidate the request.
func ParseCommand(req Value) (cmd Command, ok bool) {
	if !req.IsRequest() {
		return Command{}, false
	}

	name, _ := req.Elems[0].BulkText()
	cmd.Name = normalizeCommandName(name)
	cmd.Kind = Classify(cmd.Name)

	cmd.Args = make([]string, 0, len(req.Elems)-1)
	for _, e := range req.Elems[1:] {
		if s, ok := e.BulkText(); ok {
			cmd.Args = append(cmd.Args, s)
		}
	}
	return cmd, true
}

// ArityError is returned when a known command gets the wrong number of
// arguments.
type ArityError struct {
	Command string
	Want    int
}

func (e *ArityError) Error() string {
	noun := "arguments"
	if e.Want == 1 {
		noun = "argument"
	}
	return fmt.Sprintf("%s command requires exactly %d %s", e.Command, e.Want, noun)
}

// UnknownCommandError is returned for command words outside the fixed set.
type UnknownCommandError struct {
	Name string
}

func (e *UnknownCommandError) Error() string {
	return "Unknown command: " + e.Name
}

// Store is the key-value state the dispatcher reads and writes.
type Store interface {
	Get(key string) (string, bool)
	Set(key, value string)
}

// Dispatcher executes decoded requests against a Store.
type Dispatcher struct {
	store   Store
	metrics *metric.Registry
	logger  *slog.Logger
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithMetrics records per-command counters in m.
func WithMetrics(m *metric.Registry) DispatcherOption {
	return func(d *Dispatcher) {
		d.metrics = m
	}
}

// WithLogger sets the logger used for debug output.
func WithLogger(logger *slog.Logger) DispatcherOption {
	return func(d *Dispatcher) {
		d.logger = logger
	}
}

// NewDispatcher creates a Dispatcher backed by store.
func NewDispatcher(store Store, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		store:  store,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Execute runs req and returns the encoded reply, ready to be written
// verbatim. A non-nil error carries a plain message that the caller
// wraps with ErrorReply.
func (d *Dispatcher) Execute(req Value) (string, error) {
	cmd, ok := ParseCommand(req)
	if !ok {
		d.metrics.ObserveCommand(CmdPing.String())
		return PongReply, nil
	}

	reply, err := d.dispatch(cmd)
	d.metrics.ObserveCommand(cmd.Kind.String())
	if err != nil {
		d.metrics.ObserveError(errorKind(err))
		d.logger.Debug("command failed", "command", cmd.Name, "args", len(cmd.Args), "error", err)
		return "", err
	}
	d.logger.Debug("command executed", "command", cmd.Name, "args", len(cmd.Args))
	return reply, nil
}

func (d *Dispatcher) dispatch(cmd Command) (string, error) {
	switch cmd.Kind {
	case CmdEcho:
		if len(cmd.Args) != 1 {
			return "", &ArityError{Command: "ECHO", Want: 1}
		}
		return SimpleReply(cmd.Args[0]), nil

	case CmdSet:
		if len(cmd.Args) != 2 {
			return "", &ArityError{Command: "SET", Want: 2}
		}
		d.store.Set(cmd.Args[0], cmd.Args[1])
		return OKReply, nil

	case CmdGet:
		if len(cmd.Args) != 1 {
			return "", &ArityError{Command: "GET", Want: 1}
		}
		if v, ok := d.store.Get(cmd.Args[0]); ok {
			return SimpleReply(v), nil
		}
		return NullBulkReply, nil

	case CmdPing:
		return PongReply, nil

	default:
		return "", &UnknownCommandError{Name: cmd.Name}
	}
}

// errorKind labels an error for the error counter.
func errorKind(err error) string {
	var arity *ArityError
	var unknown *UnknownCommandError
	switch {
	case errors.As(err, &arity):
		return metric.ErrorKindArity
	case errors.As(err, &unknown):
		return metric.ErrorKindUnknown
	case errors.Is(err, ErrMalformed):
		return metric.ErrorKindProtocol
	default:
		return metric.ErrorKindOther
	}
}

func normalizeCommandName(name string) string {
	return strings.ToUpper(name)
}

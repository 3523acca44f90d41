// Package log is a small key-value logger in the log15 style: leveled,
// structured, colorized on a terminal. Call sites read as
// log.Info("message", "key", value, "key2", value2).
package log

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/go-stack/stack"
)

// Lvl is a logging level, ordered from most to least severe.
type Lvl int

const (
	LvlCrit Lvl = iota
	LvlError
	LvlWarn
	LvlInfo
	LvlDebug
	LvlTrace
)

func (l Lvl) String() string {
	switch l {
	case LvlCrit:
		return "CRIT"
	case LvlError:
		return "ERROR"
	case LvlWarn:
		return "WARN"
	case LvlInfo:
		return "INFO"
	case LvlDebug:
		return "DEBUG"
	case LvlTrace:
		return "TRACE"
	default:
		return "UNKNOWN"
	}
}

// Record is one emitted log line.
type Record struct {
	Time time.Time
	Lvl  Lvl
	Msg  string
	Ctx  []interface{}
	Call stack.Call
}

// Handler processes a Record; it is the only extension point of this
// package.
type Handler interface {
	Log(r *Record) error
}

// Logger emits Records at each level, carrying a fixed context appended to
// every call (set via New).
type Logger interface {
	New(ctx ...interface{}) Logger
	Trace(msg string, ctx ...interface{})
	Debug(msg string, ctx ...interface{})
	Info(msg string, ctx ...interface{})
	Warn(msg string, ctx ...interface{})
	Error(msg string, ctx ...interface{})
	Crit(msg string, ctx ...interface{})
}

type logger struct {
	ctx []interface{}
	h   *holder
}

type holder struct {
	mu sync.RWMutex
	h  Handler
}

func (h *holder) get() Handler {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.h
}

func (h *holder) set(handler Handler) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.h = handler
}

var root = &logger{h: &holder{h: StreamHandler(ColorableStderr(), TerminalFormat())}}

// New returns a Logger carrying ctx in addition to the root logger's own
// context (empty for the root).
func New(ctx ...interface{}) Logger { return root.New(ctx...) }

func (l *logger) New(ctx ...interface{}) Logger {
	child := &logger{h: l.h}
	child.ctx = append(append([]interface{}{}, l.ctx...), ctx...)
	return child
}

func (l *logger) write(lvl Lvl, msg string, ctx []interface{}) {
	r := &Record{Time: time.Now(), Lvl: lvl, Msg: msg, Ctx: append(append([]interface{}{}, l.ctx...), ctx...)}
	if lvl <= LvlError {
		r.Call = stack.Caller(2)
	}
	if err := l.h.get().Log(r); err != nil {
		fmt.Fprintf(os.Stderr, "log: handler error: %v\n", err)
	}
}

func (l *logger) Trace(msg string, ctx ...interface{}) { l.write(LvlTrace, msg, ctx) }
func (l *logger) Debug(msg string, ctx ...interface{}) { l.write(LvlDebug, msg, ctx) }
func (l *logger) Info(msg string, ctx ...interface{})  { l.write(LvlInfo, msg, ctx) }
func (l *logger) Warn(msg string, ctx ...interface{})  { l.write(LvlWarn, msg, ctx) }
func (l *logger) Error(msg string, ctx ...interface{}) { l.write(LvlError, msg, ctx) }
func (l *logger) Crit(msg string, ctx ...interface{}) {
	l.write(LvlCrit, msg, ctx)
	os.Exit(1)
}

// Package-level convenience functions operating on the root logger
// (log.Info(...), log.Debug(...), ...).
func Trace(msg string, ctx ...interface{}) { root.Trace(msg, ctx...) }
func Debug(msg string, ctx ...interface{}) { root.Debug(msg, ctx...) }
func Info(msg string, ctx ...interface{})  { root.Info(msg, ctx...) }
func Warn(msg string, ctx ...interface{})  { root.Warn(msg, ctx...) }
func Error(msg string, ctx ...interface{}) { root.Error(msg, ctx...) }
func Crit(msg string, ctx ...interface{})  { root.Crit(msg, ctx...) }

// Root returns the root Logger, for SetHandler and similar global setup.
func Root() Logger { return root }

// SetHandler replaces the root logger's Handler.
func SetHandler(h Handler) { root.h.set(h) }

package errors

import (
	"runtime"
	"strconv"
	"strings"
	"sync/atomic"
	"time"
)

type handlerBox struct{ h ErrorHandler }

var current atomic.Pointer[handlerBox]

func init() {
	current.Store(&handlerBox{h: &LogHandler{}})
}

// SetHandler installs h as the global error handler and returns the one it
// replaced, so callers can restore it:
//
//	defer errors.SetHandler(errors.SetHandler(h))
//
// A nil h installs a LogHandler writing through slog.Default.
func SetHandler(h ErrorHandler) ErrorHandler {
	if h == nil {
		h = &LogHandler{}
	}
	return current.Swap(&handlerBox{h: h}).h
}

// Handler returns the global error handler.
func Handler() ErrorHandler {
	return current.Load().h
}

// HandlerFuncs adapts a pair of functions to ErrorHandler. A nil field
// drops that kind of report.
type HandlerFuncs struct {
	OnError func(*MayError)
	OnPanic func(*PanicError)
}

// HandleError implements ErrorHandler.
func (f HandlerFuncs) HandleError(err *MayError) {
	if f.OnError != nil {
		f.OnError(err)
	}
}

// HandlePanic implements ErrorHandler.
func (f HandlerFuncs) HandlePanic(err *PanicError) {
	if f.OnPanic != nil {
		f.OnPanic(err)
	}
}

// Report stamps err with the current time if it has none and passes it to
// the global handler.
func Report(err *MayError) {
	if err == nil {
		return
	}
	if err.Timestamp.IsZero() {
		err.Timestamp = time.Now()
	}
	Handler().HandleError(err)
}

// ReportPanic is Report for recovered panics.
func ReportPanic(err *PanicError) {
	if err == nil {
		return
	}
	if err.Timestamp.IsZero() {
		err.Timestamp = time.Now()
	}
	Handler().HandlePanic(err)
}

// Recover reports a panic without stopping it from unwinding further than
// the deferring function.
//
//	defer errors.Recover("fonts.LoadDir")
func Recover(op string) {
	if r := recover(); r != nil {
		ReportPanic(newPanic(op, r))
	}
}

// RecoverInto is Recover for functions with a named error result: the
// reported panic is also stored in *dst.
//
//	defer errors.RecoverInto("engine.Tick", &err)
func RecoverInto(op string, dst *error) {
	if r := recover(); r != nil {
		pe := newPanic(op, r)
		ReportPanic(pe)
		if dst != nil {
			*dst = pe
		}
	}
}

func newPanic(op string, value any) *PanicError {
	// Skip newPanic, the Recover helper and the runtime's panic frame.
	return &PanicError{Op: op, Value: value, StackTrace: stack(4), Timestamp: time.Now()}
}

// CaptureStack returns the caller's stack, one "function\n\tfile:line"
// entry per frame.
func CaptureStack() string {
	return stack(3)
}

func stack(skip int) string {
	var pcs [32]uintptr
	n := runtime.Callers(skip, pcs[:])
	if n == 0 {
		return ""
	}
	var sb strings.Builder
	frames := runtime.CallersFrames(pcs[:n])
	for {
		frame, more := frames.Next()
		if !strings.HasPrefix(frame.Function, "runtime.") {
			sb.WriteString(frame.Function)
			sb.WriteString("\n\t")
			sb.WriteString(frame.File)
			sb.WriteByte(':')
			sb.WriteString(strconv.Itoa(frame.Line))
			sb.WriteByte('\n')
		}
		if !more {
			break
		}
	}
	return sb.String()
}

// Package errors provides structured error handling for the may pipeline.
//
// Errors raised inside a tick are classified by [ErrorKind]. Recoverable
// conditions (an unregistered theme scheme, a missing font) degrade the
// frame and are reported through the global [ErrorHandler]; structural
// violations such as a layout tree that no longer matches the widget tree
// abort the tick and are returned to the caller as a [*CongruenceError].
package errors

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Sentinel errors.
var (
	// ErrNoLayout is returned when a layout node is required but the layout
	// engine produced none.
	ErrNoLayout = errors.New("no layout node")
	// ErrUnknownFont is returned when a font name is not registered.
	ErrUnknownFont = errors.New("unknown font")
)

// ErrorKind identifies the category of an error.
type ErrorKind int

const (
	// KindUnknown indicates an error of unknown type.
	KindUnknown ErrorKind = iota
	// KindLayout indicates a layout engine failure or a broken tree invariant.
	KindLayout
	// KindRender indicates a failure in the render walk or the backend.
	KindRender
	// KindTheme indicates a theme lookup or theme file failure.
	KindTheme
	// KindConfig indicates an invalid or unreadable configuration.
	KindConfig
	// KindFont indicates a font registry failure.
	KindFont
	// KindCallback indicates a failure inside a widget callback.
	KindCallback
	// KindPanic indicates a recovered panic.
	KindPanic
)

func (k ErrorKind) String() string {
	switch k {
	case KindLayout:
		return "layout"
	case KindRender:
		return "render"
	case KindTheme:
		return "theme"
	case KindConfig:
		return "config"
	case KindFont:
		return "font"
	case KindCallback:
		return "callback"
	case KindPanic:
		return "panic"
	default:
		return "unknown"
	}
}

// MayError represents a structured error raised by the pipeline.
type MayError struct {
	// Op is the operation that failed (e.g., "engine.Tick").
	Op string
	// Kind categorizes the error.
	Kind ErrorKind
	// Err is the underlying error.
	Err error
	// Widget is the identity of the widget involved, if any.
	Widget string
	// StackTrace contains the call stack at the time of the error.
	StackTrace string
	// Timestamp is when the error occurred.
	Timestamp time.Time
}

func (e *MayError) Error() string {
	if e.Widget != "" {
		return fmt.Sprintf("%s [%s] widget=%s: %v", e.Op, e.Kind, e.Widget, e.Err)
	}
	return fmt.Sprintf("%s [%s]: %v", e.Op, e.Kind, e.Err)
}

func (e *MayError) Unwrap() error {
	return e.Err
}

// New wraps err into a MayError.
func New(op string, kind ErrorKind, err error) *MayError {
	return &MayError{Op: op, Kind: kind, Err: err, Timestamp: time.Now()}
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool { return errors.Is(err, target) }

// As finds the first error in err's chain that matches target.
func As(err error, target any) bool { return errors.As(err, target) }

// KindOf returns the kind of the first MayError in err's chain.
func KindOf(err error) ErrorKind {
	var me *MayError
	if errors.As(err, &me) {
		return me.Kind
	}
	var ce *CongruenceError
	if errors.As(err, &ce) {
		return KindLayout
	}
	var pe *PanicError
	if errors.As(err, &pe) {
		return KindPanic
	}
	return KindUnknown
}

// PanicError represents a recovered panic.
type PanicError struct {
	// Op is the operation that panicked (e.g., "engine.Tick").
	Op string
	// Value is the value passed to panic().
	Value any
	// StackTrace contains the call stack at the time of the panic.
	StackTrace string
	// Timestamp is when the panic occurred.
	Timestamp time.Time
}

func (e *PanicError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("panic in %s: %v", e.Op, e.Value)
	}
	return fmt.Sprintf("panic: %v", e.Value)
}

// Unwrap returns the panic value when it is an error.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

// CongruenceError reports that the widget tree and the layout tree no longer
// share the same shape. It is fatal for the tick in which it occurs.
type CongruenceError struct {
	// Path is the child-index path from the root to the mismatching node.
	Path []int
	// Widget is the identity of the widget at Path.
	Widget string
	// Want is the number of children the widget declares.
	Want int
	// Got is the number of children the layout node carries, or -1 when the
	// layout node itself is missing.
	Got int
}

func (e *CongruenceError) Error() string {
	var sb strings.Builder
	sb.WriteString("root")
	for _, i := range e.Path {
		sb.WriteString("/")
		sb.WriteString(strconv.Itoa(i))
	}
	if e.Got < 0 {
		return fmt.Sprintf("layout tree incongruent at %s (%s): %v", sb.String(), e.Widget, ErrNoLayout)
	}
	return fmt.Sprintf("layout tree incongruent at %s (%s): widget has %d children, layout node has %d",
		sb.String(), e.Widget, e.Want, e.Got)
}

// Unwrap exposes ErrNoLayout for missing nodes.
func (e *CongruenceError) Unwrap() error {
	if e.Got < 0 {
		return ErrNoLayout
	}
	return nil
}

// ErrorHandler receives errors reported by the pipeline.
type ErrorHandler interface {
	// HandleError is called when an error occurs.
	HandleError(err *MayError)
	// HandlePanic is called when a panic is recovered.
	HandlePanic(err *PanicError)
}

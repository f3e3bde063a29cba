package errors

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestMayErrorString(t *testing.T) {
	err := &MayError{
		Op:   "engine.Tick",
		Kind: KindLayout,
		Err:  ErrNoLayout,
	}
	got := err.Error()
	want := "engine.Tick [layout]: no layout node"
	if got != want {
		t.Errorf("MayError.Error() = %q, want %q", got, want)
	}
}

func TestMayErrorWithWidget(t *testing.T) {
	err := &MayError{
		Op:     "theme.Resolve",
		Kind:   KindTheme,
		Widget: "may-widgets:Button",
		Err:    fmt.Errorf("no scheme"),
	}
	got := err.Error()
	want := "widget=may-widgets:Button"
	if !strings.Contains(got, want) {
		t.Errorf("error string %q should contain %q", got, want)
	}
}

func TestMayErrorUnwrap(t *testing.T) {
	err := New("fonts.Get", KindFont, ErrUnknownFont)
	if !errors.Is(err, ErrUnknownFont) {
		t.Error("expected errors.Is to find ErrUnknownFont")
	}
	if err.Timestamp.IsZero() {
		t.Error("expected New to stamp the error")
	}
}

func TestErrorKindString(t *testing.T) {
	tests := []struct {
		kind ErrorKind
		want string
	}{
		{KindUnknown, "unknown"},
		{KindLayout, "layout"},
		{KindRender, "render"},
		{KindTheme, "theme"},
		{KindConfig, "config"},
		{KindFont, "font"},
		{KindCallback, "callback"},
		{KindPanic, "panic"},
	}
	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("ErrorKind(%d).String() = %q, want %q", tt.kind, got, tt.want)
		}
	}
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorKind
	}{
		{"may error", New("x", KindConfig, errors.New("bad")), KindConfig},
		{"wrapped may error", fmt.Errorf("outer: %w", New("x", KindFont, ErrUnknownFont)), KindFont},
		{"congruence", &CongruenceError{Got: -1}, KindLayout},
		{"panic", &PanicError{Value: "boom"}, KindPanic},
		{"plain", errors.New("plain"), KindUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.want {
				t.Errorf("KindOf() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCongruenceErrorString(t *testing.T) {
	err := &CongruenceError{Path: []int{0, 2}, Widget: "may-widgets:Container", Want: 3, Got: 1}
	want := "layout tree incongruent at root/0/2 (may-widgets:Container): widget has 3 children, layout node has 1"
	if got := err.Error(); got != want {
		t.Errorf("CongruenceError.Error() = %q, want %q", got, want)
	}
	if errors.Is(err, ErrNoLayout) {
		t.Error("count mismatch should not unwrap to ErrNoLayout")
	}

	missing := &CongruenceError{Path: nil, Widget: "w", Got: -1}
	if !errors.Is(missing, ErrNoLayout) {
		t.Error("missing node should unwrap to ErrNoLayout")
	}
}

func TestPanicErrorString(t *testing.T) {
	err := &PanicError{
		Value:     "test panic",
		Timestamp: time.Now(),
	}
	got := err.Error()
	want := "panic: test panic"
	if got != want {
		t.Errorf("PanicError.Error() = %q, want %q", got, want)
	}
}

func TestPanicErrorStringWithOp(t *testing.T) {
	err := &PanicError{
		Op:        "engine.Tick",
		Value:     "test panic",
		Timestamp: time.Now(),
	}
	got := err.Error()
	want := "panic in engine.Tick: test panic"
	if got != want {
		t.Errorf("PanicError.Error() = %q, want %q", got, want)
	}
}

func TestReport(t *testing.T) {
	var capturedErr *MayError
	defer SetHandler(SetHandler(HandlerFuncs{
		OnError: func(err *MayError) { capturedErr = err },
	}))

	Report(&MayError{
		Op:   "test.op",
		Kind: KindTheme,
		Err:  errors.New("missing"),
	})

	if capturedErr == nil {
		t.Fatal("expected error to be captured")
	}
	if capturedErr.Op != "test.op" {
		t.Errorf("Op = %q, want %q", capturedErr.Op, "test.op")
	}
	if capturedErr.Timestamp.IsZero() {
		t.Error("expected Timestamp to be set")
	}
}

func TestRecoverInto(t *testing.T) {
	var capturedPanic *PanicError
	defer SetHandler(SetHandler(HandlerFuncs{
		OnPanic: func(err *PanicError) { capturedPanic = err },
	}))

	var err error
	func() {
		defer RecoverInto("test.recover", &err)
		panic("boom")
	}()

	if capturedPanic == nil {
		t.Fatal("expected panic to be reported")
	}
	var pe *PanicError
	if !errors.As(err, &pe) {
		t.Fatalf("err = %v, want *PanicError", err)
	}
	if pe.Op != "test.recover" || pe.Value != "boom" {
		t.Errorf("PanicError = %+v", pe)
	}
	if pe.StackTrace == "" {
		t.Error("expected a stack trace")
	}
}

func TestRecoverNoPanic(t *testing.T) {
	called := false
	defer SetHandler(SetHandler(HandlerFuncs{OnPanic: func(*PanicError) { called = true }}))

	func() {
		defer Recover("test.none")
	}()

	if called {
		t.Error("handler should not be called without a panic")
	}
}

func TestLogHandler(t *testing.T) {
	var buf bytes.Buffer
	h := &LogHandler{Logger: slog.New(slog.NewTextHandler(&buf, nil))}

	h.HandleError(&MayError{Op: "engine.Tick", Kind: KindLayout, Err: ErrNoLayout, Widget: "root"})
	h.HandlePanic(&PanicError{Op: "engine.Tick", Value: "boom"})

	out := buf.String()
	for _, want := range []string{"op=engine.Tick", "kind=layout", "widget=root", "value=boom"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output %q should contain %q", out, want)
		}
	}
}

func TestSetHandlerNilRestoresDefault(t *testing.T) {
	defer SetHandler(SetHandler(HandlerFuncs{}))

	prev := SetHandler(nil)
	if _, ok := prev.(HandlerFuncs); !ok {
		t.Errorf("SetHandler returned %T, want the replaced HandlerFuncs", prev)
	}
	if _, ok := Handler().(*LogHandler); !ok {
		t.Errorf("handler = %T, want *LogHandler", Handler())
	}
}

func TestStackSkipsRuntimeFrames(t *testing.T) {
	var err error
	func() {
		defer SetHandler(SetHandler(HandlerFuncs{}))
		defer RecoverInto("test.stack", &err)
		panic("boom")
	}()
	var pe *PanicError
	if !errors.As(err, &pe) {
		t.Fatalf("err = %v, want *PanicError", err)
	}
	if strings.Contains(pe.StackTrace, "runtime.gopanic") {
		t.Errorf("stack should not include runtime frames:\n%s", pe.StackTrace)
	}
	if !strings.Contains(pe.StackTrace, "TestStackSkipsRuntimeFrames") {
		t.Errorf("stack should include the panicking test:\n%s", pe.StackTrace)
	}
}

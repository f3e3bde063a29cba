package core

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-drift/may/pkg/fonts"
	"github.com/go-drift/may/pkg/graphics"
)

// FlowMode selects how the host event loop waits between ticks.
type FlowMode int

const (
	// FlowWait sleeps until the next event.
	FlowWait FlowMode = iota
	// FlowPoll ticks continuously.
	FlowPoll
	// FlowWaitUntil sleeps until an event or a deadline.
	FlowWaitUntil
)

// String returns a human-readable representation of the mode.
func (m FlowMode) String() string {
	switch m {
	case FlowWait:
		return "wait"
	case FlowPoll:
		return "poll"
	case FlowWaitUntil:
		return "wait_until"
	default:
		return fmt.Sprintf("FlowMode(%d)", int(m))
	}
}

// ControlFlow tells the host event loop how to schedule the next tick.
type ControlFlow struct {
	Mode     FlowMode
	Deadline time.Time
}

var (
	// ControlFlowWait sleeps until the next event.
	ControlFlowWait = ControlFlow{Mode: FlowWait}
	// ControlFlowPoll ticks continuously.
	ControlFlowPoll = ControlFlow{Mode: FlowPoll}
)

// ControlFlowWaitUntil sleeps until an event arrives or deadline passes.
func ControlFlowWaitUntil(deadline time.Time) ControlFlow {
	return ControlFlow{Mode: FlowWaitUntil, Deadline: deadline}
}

// ParseControlFlow parses "wait" or "poll".
func ParseControlFlow(s string) (ControlFlow, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "wait":
		return ControlFlowWait, nil
	case "poll":
		return ControlFlowPoll, nil
	default:
		return ControlFlow{}, fmt.Errorf("unknown control flow %q", s)
	}
}

func (cf ControlFlow) String() string {
	if cf.Mode == FlowWaitUntil {
		return fmt.Sprintf("wait_until(%s)", cf.Deadline.Format(time.RFC3339Nano))
	}
	return cf.Mode.String()
}

// CommandKind identifies a queued command.
type CommandKind int

const (
	// CommandExit asks the host to stop the event loop.
	CommandExit CommandKind = iota
	// CommandSetControlFlow changes the loop's scheduling.
	CommandSetControlFlow
)

// Command is an effect a widget requests from the host. Commands are queued
// on the Context and applied by the engine after the phase completes.
type Command struct {
	Kind        CommandKind
	ControlFlow ControlFlow
}

func (c Command) String() string {
	switch c.Kind {
	case CommandExit:
		return "exit"
	case CommandSetControlFlow:
		return "set_control_flow(" + c.ControlFlow.String() + ")"
	default:
		return fmt.Sprintf("Command(%d)", int(c.Kind))
	}
}

// Context is the per-phase handle widgets use to read input and request
// effects. It must not be retained past the call it was passed to.
type Context struct {
	// Info is the input snapshot of this tick.
	Info *InteractionInfo

	flags    Update
	surface  graphics.Surface
	fonts    *fonts.Registry
	logger   *slog.Logger
	commands []Command
}

// NewContext returns a context for one phase. A nil info is treated as no
// input, a nil registry as the shared registry and a nil logger as
// slog.Default().
func NewContext(info *InteractionInfo, surface graphics.Surface, reg *fonts.Registry, logger *slog.Logger) *Context {
	if info == nil {
		info = &InteractionInfo{}
	}
	if reg == nil {
		reg = fonts.Shared()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Context{Info: info, surface: surface, fonts: reg, logger: logger}
}

// Flags returns the flags raised through this context.
func (c *Context) Flags() Update {
	return c.flags
}

// Raise adds flags to be merged into the engine's pending set.
func (c *Context) Raise(u Update) {
	c.flags.Insert(u)
}

// Surface returns the rendering surface, or nil in headless phases.
func (c *Context) Surface() graphics.Surface {
	return c.surface
}

// Fonts returns the font registry.
func (c *Context) Fonts() *fonts.Registry {
	return c.fonts
}

// Logger returns the engine logger.
func (c *Context) Logger() *slog.Logger {
	return c.logger
}

// Exit asks the host to terminate the event loop.
func (c *Context) Exit() {
	c.commands = append(c.commands, Command{Kind: CommandExit})
}

// SetControlFlow asks the host to change how it schedules ticks.
func (c *Context) SetControlFlow(cf ControlFlow) {
	c.commands = append(c.commands, Command{Kind: CommandSetControlFlow, ControlFlow: cf})
}

// Commands returns the queued commands in order and empties the queue.
func (c *Context) Commands() []Command {
	cmds := c.commands
	c.commands = nil
	return cmds
}

// Pending reports the number of queued commands.
func (c *Context) Pending() int {
	return len(c.commands)
}

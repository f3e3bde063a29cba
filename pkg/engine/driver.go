package engine

import (
	"slices"
	"sync"

	"github.com/go-drift/may/pkg/core"
)

// Driver is the host event loop the engine hands drained commands to.
type Driver interface {
	// Exit stops the event loop.
	Exit()
	// SetControlFlow changes how the loop schedules ticks.
	SetControlFlow(cf core.ControlFlow)
}

// NopDriver ignores every command.
type NopDriver struct{}

// Exit implements Driver.
func (NopDriver) Exit() {}

// SetControlFlow implements Driver.
func (NopDriver) SetControlFlow(core.ControlFlow) {}

// RecordingDriver remembers the commands it receives.
type RecordingDriver struct {
	mu    sync.Mutex
	exits int
	flows []core.ControlFlow
}

// Exit implements Driver.
func (d *RecordingDriver) Exit() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.exits++
}

// SetControlFlow implements Driver.
func (d *RecordingDriver) SetControlFlow(cf core.ControlFlow) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.flows = append(d.flows, cf)
}

// Exits returns how many exit commands were received.
func (d *RecordingDriver) Exits() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.exits
}

// ControlFlows returns the received control flows in order.
func (d *RecordingDriver) ControlFlows() []core.ControlFlow {
	d.mu.Lock()
	defer d.mu.Unlock()
	return slices.Clone(d.flows)
}

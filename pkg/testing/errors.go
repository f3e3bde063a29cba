package testing

import "errors"

var errNoWidget = errors.New("no widget pumped: call PumpWidget first")

// ErrSettleTimeout is returned when PumpAndSettle runs out of ticks.
var ErrSettleTimeout = errors.New("PumpAndSettle timed out: tree did not settle")

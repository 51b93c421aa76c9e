// Package shutdown provides the cooperative stop signal shared by all
// worker loops. The flag is set exactly once, by the orchestrator's
// interrupt handler, and never cleared; workers poll it once per loop
// iteration and finish the current iteration before exiting.
package shutdown

import "sync/atomic"

// Flag is a process-wide stop signal.
type Flag struct {
	set atomic.Bool
}

// NewFlag returns an unset flag.
func NewFlag() *Flag {
	return &Flag{}
}

// Set requests shutdown. Calling it more than once is harmless.
func (f *Flag) Set() {
	f.set.Store(true)
}

// IsSet reports whether shutdown has been requested.
func (f *Flag) IsSet() bool {
	return f.set.Load()
}

// Package detect contains pure classification logic for relay power
// monitoring. This package has NO external dependencies (no GPIO, AWS, OS,
// or time.Sleep). Time is always injectable via time.Time parameters.
package detect

import "time"

// State is the last-known classified power state of a channel.
type State string

const (
	// StateInitializing is the state before the first observation.
	StateInitializing State = "INITIALIZING"
	StatePowerOn      State = "POWER_ON"
	StatePowerOff     State = "POWER_OFF"
)

// Status is the classification outcome of a single observation.
type Status string

const (
	// StatusInitializing marks the forced first observation of a channel.
	StatusInitializing Status = "Initializing"
	// StatusFailure means power just went off (genuine transition).
	StatusFailure Status = "Failure"
	// StatusSuccess means power just came back on (genuine transition).
	StatusSuccess Status = "Success"
	// StatusGhost marks a repeated observation that is not a new transition.
	StatusGhost Status = "Ghost Trigger"
)

// Descriptions attached to events. Level 1 means the relay circuit is
// closed, which for Normally-Closed-on-no-power relays means power is off.
const (
	DescPowerOff = "Power is Off"
	DescPowerOn  = "Power is On"
)

// Event is an immutable record of one classified observation.
type Event struct {
	Channel     string
	Timestamp   time.Time
	Status      Status
	Description string
	Level       int // raw signal level, 0 or 1
	Hostname    string
	Environment string
}

// Genuine reports whether the event is a real power transition that must
// be forwarded to the alert dispatcher.
func (e Event) Genuine() bool {
	return e.Status == StatusFailure || e.Status == StatusSuccess
}

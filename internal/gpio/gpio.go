// Package gpio provides relay input and LED indicator access with hardware
// abstraction. The real implementation uses the Linux GPIO character device.
// The fake implementations allow testing without hardware.
package gpio

// Relay is one monitored relay-contact input line.
//
// Level 1 means the line is asserted (circuit closed); for the
// Normally-Closed-on-no-power relays this project monitors, that means the
// mains power is OFF. Level 0 means the circuit is open and power is on.
type Relay interface {
	// Level reads the current raw level, 0 or 1.
	Level() (int, error)

	// Watch registers a handler for future level changes. The handler is
	// invoked once per edge, in order, with the new level. Only one
	// handler may be registered.
	Watch(handler func(level int)) error

	// Close releases the line.
	Close() error
}

// Indicator is a single LED output line.
type Indicator interface {
	Assert() error
	Deassert() error
	Close() error
}

// Default BCM pin assignments, aligned with the RPi breakout board circuitry.
const (
	DefaultRelay1Pin = 25
	DefaultRelay1Red = 17
	DefaultRelay1Grn = 4
	DefaultRelay2Pin = 5
	DefaultRelay2Red = 27
	DefaultRelay2Grn = 18
	DefaultRelay3Pin = 6
	DefaultRelay3Red = 23
	DefaultRelay3Grn = 22
	DefaultChipName  = "gpiochip0"
)

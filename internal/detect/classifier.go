package detect

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidLevel is returned when the signal source breaks its contract
// and reports a level other than 0 or 1.
var ErrInvalidLevel = errors.New("signal level must be 0 or 1")

// Classifier owns one channel's classified state and decides whether each
// raw level observation is a genuine power transition, a ghost trigger, or
// the initial state snapshot.
//
// Classification is pure given (prev, level); the classifier must only be
// driven by a single caller at a time (one logical owner per channel).
type Classifier struct {
	channel     string
	hostname    string
	environment string
	state       State
}

// NewClassifier creates a classifier for one channel. The hostname and
// environment tag are stamped onto every event it produces.
func NewClassifier(channel, hostname, environment string) *Classifier {
	return &Classifier{
		channel:     channel,
		hostname:    hostname,
		environment: environment,
		state:       StateInitializing,
	}
}

// State returns the current classified state.
func (c *Classifier) State() State {
	return c.state
}

// Classify consumes one raw level observation and returns the resulting
// event. The very first observation always classifies as Initializing.
// After that, a level that matches the known state is a ghost trigger and
// leaves the state untouched; a level that contradicts it is a genuine
// Failure (power went off) or Success (power came back).
func (c *Classifier) Classify(level int, at time.Time) (Event, error) {
	if level != 0 && level != 1 {
		return Event{}, fmt.Errorf("channel %s: got level %d: %w", c.channel, level, ErrInvalidLevel)
	}

	ev := Event{
		Channel:     c.channel,
		Timestamp:   at,
		Description: describe(level),
		Level:       level,
		Hostname:    c.hostname,
		Environment: c.environment,
	}

	switch {
	case c.state == StateInitializing:
		ev.Status = StatusInitializing
		c.state = stateForLevel(level)
	case level == 1 && c.state == StatePowerOn:
		ev.Status = StatusFailure
		c.state = StatePowerOff
	case level == 1 && c.state == StatePowerOff:
		ev.Status = StatusGhost
	case level == 0 && c.state == StatePowerOff:
		ev.Status = StatusSuccess
		c.state = StatePowerOn
	default: // level == 0 && c.state == StatePowerOn
		ev.Status = StatusGhost
	}

	return ev, nil
}

func stateForLevel(level int) State {
	if level == 1 {
		return StatePowerOff
	}
	return StatePowerOn
}

func describe(level int) string {
	if level == 1 {
		return DescPowerOff
	}
	return DescPowerOn
}

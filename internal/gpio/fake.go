package gpio

import "errors"

// FakeRelay is a test double for a relay input line.
type FakeRelay struct {
	// CurrentLevel is returned by Level.
	CurrentLevel int

	// LevelError, if set, will be returned by Level.
	LevelError error

	// WatchError, if set, will be returned by Watch.
	WatchError error

	// Closed tracks if Close was called.
	Closed bool

	handler func(level int)
}

// NewFakeRelay creates a FakeRelay reporting the given initial level.
func NewFakeRelay(level int) *FakeRelay {
	return &FakeRelay{CurrentLevel: level}
}

// Level returns the scripted level.
func (f *FakeRelay) Level() (int, error) {
	if f.LevelError != nil {
		return 0, f.LevelError
	}
	return f.CurrentLevel, nil
}

// Watch stores the handler for later Fire calls.
func (f *FakeRelay) Watch(handler func(level int)) error {
	if f.WatchError != nil {
		return f.WatchError
	}
	if f.handler != nil {
		return errors.New("relay already watched")
	}
	f.handler = handler
	return nil
}

// Fire simulates an edge event, updating the current level and invoking
// the registered handler synchronously.
func (f *FakeRelay) Fire(level int) {
	f.CurrentLevel = level
	if f.handler != nil {
		f.handler(level)
	}
}

// Watched reports whether a handler has been registered.
func (f *FakeRelay) Watched() bool {
	return f.handler != nil
}

// Close marks the relay as closed.
func (f *FakeRelay) Close() error {
	f.Closed = true
	return nil
}

// FakeIndicator is a test double for an LED output line.
type FakeIndicator struct {
	// Lit is the current on/off state.
	Lit bool

	// History records every Assert (1) and Deassert (0) in order.
	History []int

	// Closed tracks if Close was called.
	Closed bool
}

// NewFakeIndicator creates an unlit FakeIndicator.
func NewFakeIndicator() *FakeIndicator {
	return &FakeIndicator{}
}

// Assert turns the fake indicator on.
func (f *FakeIndicator) Assert() error {
	f.Lit = true
	f.History = append(f.History, 1)
	return nil
}

// Deassert turns the fake indicator off.
func (f *FakeIndicator) Deassert() error {
	f.Lit = false
	f.History = append(f.History, 0)
	return nil
}

// Close marks the indicator as closed.
func (f *FakeIndicator) Close() error {
	f.Closed = true
	return nil
}

//go:build !linux

package gpio

import "errors"

var errUnsupported = errors.New("gpio: not supported on this platform (requires Linux)")

// Chip is not available on non-Linux platforms.
type Chip struct{}

// OpenChip returns an error on non-Linux platforms.
func OpenChip(name string) (*Chip, error) {
	return nil, errUnsupported
}

// Close is not implemented on non-Linux platforms.
func (c *Chip) Close() error { return nil }

// RealRelay is not available on non-Linux platforms.
type RealRelay struct{}

// RequestRelay returns an error on non-Linux platforms.
func (c *Chip) RequestRelay(pin int) (*RealRelay, error) {
	return nil, errUnsupported
}

func (r *RealRelay) Level() (int, error)           { return 0, errUnsupported }
func (r *RealRelay) Watch(handler func(int)) error { return errUnsupported }
func (r *RealRelay) Close() error                  { return nil }

// RealIndicator is not available on non-Linux platforms.
type RealIndicator struct{}

// RequestIndicator returns an error on non-Linux platforms.
func (c *Chip) RequestIndicator(pin int) (*RealIndicator, error) {
	return nil, errUnsupported
}

func (i *RealIndicator) Assert() error   { return errUnsupported }
func (i *RealIndicator) Deassert() error { return errUnsupported }
func (i *RealIndicator) Close() error    { return nil }

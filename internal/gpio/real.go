//go:build linux

package gpio

import (
	"fmt"
	"sync"

	"github.com/warthog618/go-gpiocdev"
)

// Chip wraps one GPIO character device and hands out relay and indicator
// lines on it. All lines must be closed before the chip is closed.
type Chip struct {
	chip *gpiocdev.Chip
}

// OpenChip opens the named GPIO character device (e.g. "gpiochip0").
func OpenChip(name string) (*Chip, error) {
	chip, err := gpiocdev.NewChip(name)
	if err != nil {
		return nil, fmt.Errorf("open gpio chip %s: %w", name, err)
	}
	return &Chip{chip: chip}, nil
}

// Close releases the chip handle.
func (c *Chip) Close() error {
	return c.chip.Close()
}

// RealRelay reads a relay contact from actual hardware.
//
// The line is requested with edge detection up front; edge events are
// routed to the handler registered via Watch. Events that arrive before a
// handler is registered are dropped, which matches the startup sequence:
// the initial state is read explicitly before watching begins.
type RealRelay struct {
	line *gpiocdev.Line

	mu      sync.Mutex
	handler func(level int)
}

// RequestRelay requests the given BCM pin as a relay input with pull-down
// to match Pi boot defaults, watching both edges.
func (c *Chip) RequestRelay(pin int) (*RealRelay, error) {
	r := &RealRelay{}
	line, err := c.chip.RequestLine(pin,
		gpiocdev.AsInput,
		gpiocdev.WithPullDown,
		gpiocdev.WithBothEdges,
		gpiocdev.WithEventHandler(r.handleEvent))
	if err != nil {
		return nil, fmt.Errorf("request relay pin %d: %w", pin, err)
	}
	r.line = line
	return r, nil
}

func (r *RealRelay) handleEvent(evt gpiocdev.LineEvent) {
	level := 0
	if evt.Type == gpiocdev.LineEventRisingEdge {
		level = 1
	}

	r.mu.Lock()
	handler := r.handler
	r.mu.Unlock()

	if handler != nil {
		handler(level)
	}
}

// Level reads the current raw level of the relay line.
func (r *RealRelay) Level() (int, error) {
	v, err := r.line.Value()
	if err != nil {
		return 0, fmt.Errorf("read relay level: %w", err)
	}
	return v, nil
}

// Watch registers the change handler. Edge events are delivered serially
// by the character device event goroutine, preserving order.
func (r *RealRelay) Watch(handler func(level int)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.handler != nil {
		return fmt.Errorf("relay already watched")
	}
	r.handler = handler
	return nil
}

// Close detaches the handler and releases the line. The line is
// reconfigured back to input with pull-down (Pi boot defaults) first so
// external hardware sees a clean state across restarts.
func (r *RealRelay) Close() error {
	r.mu.Lock()
	r.handler = nil
	r.mu.Unlock()

	var errs []error
	if err := r.line.Reconfigure(gpiocdev.AsInput, gpiocdev.WithPullDown); err != nil {
		errs = append(errs, fmt.Errorf("reconfigure relay line: %w", err))
	}
	if err := r.line.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close relay line: %w", err))
	}
	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}

// RealIndicator drives an LED output line on actual hardware.
type RealIndicator struct {
	line *gpiocdev.Line
}

// RequestIndicator requests the given BCM pin as an output, initially off.
func (c *Chip) RequestIndicator(pin int) (*RealIndicator, error) {
	line, err := c.chip.RequestLine(pin, gpiocdev.AsOutput(0))
	if err != nil {
		return nil, fmt.Errorf("request indicator pin %d: %w", pin, err)
	}
	return &RealIndicator{line: line}, nil
}

// Assert turns the indicator on.
func (i *RealIndicator) Assert() error {
	if err := i.line.SetValue(1); err != nil {
		return fmt.Errorf("assert indicator: %w", err)
	}
	return nil
}

// Deassert turns the indicator off.
func (i *RealIndicator) Deassert() error {
	if err := i.line.SetValue(0); err != nil {
		return fmt.Errorf("deassert indicator: %w", err)
	}
	return nil
}

// Close turns the indicator off and releases the line.
func (i *RealIndicator) Close() error {
	var errs []error
	if err := i.line.SetValue(0); err != nil {
		errs = append(errs, fmt.Errorf("clear indicator: %w", err))
	}
	if err := i.line.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close indicator line: %w", err))
	}
	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}

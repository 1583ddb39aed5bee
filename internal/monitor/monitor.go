// Package monitor wires the classification core to the GPIO and alert
// capabilities and runs the per-channel monitoring loops.
package monitor

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kcsoukup/VigorousPowerDetector/internal/alert"
	"github.com/kcsoukup/VigorousPowerDetector/internal/detect"
	"github.com/kcsoukup/VigorousPowerDetector/internal/gpio"
)

// Counts tracks how many observations of each kind a channel has seen.
type Counts struct {
	Initializing int
	Success      int
	Failure      int
	Ghosts       int
}

// ChannelMonitor owns exactly one channel: its classifier state, its relay
// line, and its two indicator LEDs.
//
// Observations are funneled through a buffered channel and consumed by a
// single goroutine, so classification for one channel is strictly serial
// while a slow dispatch never stalls any other channel.
type ChannelMonitor struct {
	name       string
	classifier *detect.Classifier
	relay      gpio.Relay
	red        gpio.Indicator
	green      gpio.Indicator
	dispatcher *alert.Dispatcher
	logGhosts  bool
	log        *zap.Logger

	levels chan int
	dead   chan struct{}

	// owned by the run goroutine; safe to read after it exits
	counts  Counts
	failure error
}

// NewChannelMonitor creates a monitor for one enabled channel.
func NewChannelMonitor(name string, relay gpio.Relay, red, green gpio.Indicator, dispatcher *alert.Dispatcher, hostname, environment string, logGhosts bool, log *zap.Logger) *ChannelMonitor {
	return &ChannelMonitor{
		name:       name,
		classifier: detect.NewClassifier(name, hostname, environment),
		relay:      relay,
		red:        red,
		green:      green,
		dispatcher: dispatcher,
		logGhosts:  logGhosts,
		log:        log.With(zap.String("channel", name)),
		levels:     make(chan int, 32),
		dead:       make(chan struct{}),
	}
}

// Observe enqueues one raw level for classification. Called by the GPIO
// event handler and once at startup for the initial state snapshot.
// Observations after the monitor has died are dropped.
func (m *ChannelMonitor) Observe(level int) {
	select {
	case <-m.dead:
	case m.levels <- level:
	}
}

// Counts returns the per-status observation counters. Only meaningful
// after the run goroutine has exited.
func (m *ChannelMonitor) Counts() Counts {
	return m.counts
}

// Err returns the error that stopped this channel, if any.
func (m *ChannelMonitor) Err() error {
	return m.failure
}

// run consumes queued observations until the context is cancelled or the
// channel hits a contract violation. A panic anywhere in handling is
// caught and recorded so one broken channel cannot take down the rest.
func (m *ChannelMonitor) run(ctx context.Context) {
	defer close(m.dead)
	defer func() {
		if r := recover(); r != nil {
			m.failure = fmt.Errorf("channel %s: panic: %v", m.name, r)
			m.log.Error("channel monitor panicked", zap.Any("panic", r))
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case level := <-m.levels:
			if err := m.handle(level, time.Now()); err != nil {
				m.failure = err
				m.log.Error("channel monitor stopped", zap.Error(err))
				return
			}
		}
	}
}

// handle classifies one observation and applies its side effects. Only a
// signal-level contract violation is fatal; dispatch failures are logged
// and swallowed because power-state correctness must never depend on
// notification delivery.
func (m *ChannelMonitor) handle(level int, at time.Time) error {
	ev, err := m.classifier.Classify(level, at)
	if err != nil {
		return err
	}

	// Indicators track the latest raw level on every observation, ghosts
	// and re-initialization included.
	m.driveIndicators(level)

	switch ev.Status {
	case detect.StatusInitializing:
		m.counts.Initializing++
		m.log.Info("initial state established",
			zap.String("description", ev.Description),
			zap.Int("pin_state", ev.Level))

	case detect.StatusGhost:
		m.counts.Ghosts++
		if m.logGhosts {
			m.log.Info("ghost trigger",
				zap.String("description", ev.Description),
				zap.Int("pin_state", ev.Level))
		}

	default: // Failure or Success
		if ev.Status == detect.StatusFailure {
			m.counts.Failure++
		} else {
			m.counts.Success++
		}
		m.log.Info("power transition",
			zap.String("status", string(ev.Status)),
			zap.String("description", ev.Description),
			zap.Int("pin_state", ev.Level))

		// The transition is already committed; an in-flight dispatch is
		// allowed to finish even during shutdown, so it does not ride on
		// the loop context. The transports carry their own timeouts.
		if _, err := m.dispatcher.Dispatch(context.Background(), ev); err != nil {
			m.log.Error("alert dispatch failed", zap.Error(err))
		}
	}

	return nil
}

func (m *ChannelMonitor) driveIndicators(level int) {
	var errs []error
	if level == 1 {
		errs = append(errs, m.green.Deassert(), m.red.Assert())
	} else {
		errs = append(errs, m.red.Deassert(), m.green.Assert())
	}
	for _, err := range errs {
		if err != nil {
			m.log.Warn("indicator write failed", zap.Error(err))
		}
	}
}

// release closes the relay and indicator lines. Errors are logged, never
// propagated: teardown must run to completion.
func (m *ChannelMonitor) release() {
	if err := m.relay.Close(); err != nil {
		m.log.Warn("close relay", zap.Error(err))
	}
	if err := m.red.Close(); err != nil {
		m.log.Warn("close red indicator", zap.Error(err))
	}
	if err := m.green.Close(); err != nil {
		m.log.Warn("close green indicator", zap.Error(err))
	}
}

package monitor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Supervisor owns the set of enabled channel monitors and runs the process
// lifecycle: initial state snapshot, indefinite wait, graceful teardown.
type Supervisor struct {
	log      *zap.Logger
	monitors []*ChannelMonitor

	wg      sync.WaitGroup
	allDead chan struct{}
	started time.Time
}

// NewSupervisor creates an empty supervisor.
func NewSupervisor(log *zap.Logger) *Supervisor {
	return &Supervisor{
		log:     log,
		allDead: make(chan struct{}),
	}
}

// Add registers a monitor. Disabled channels are never constructed, so
// they never reach the supervisor.
func (s *Supervisor) Add(m *ChannelMonitor) {
	s.monitors = append(s.monitors, m)
}

// Start seeds every monitor with one forced observation of the current
// level (always classified as Initializing, never dispatched), subscribes
// it to future level changes, and launches its loop.
func (s *Supervisor) Start(ctx context.Context) error {
	s.started = time.Now()

	if len(s.monitors) == 0 {
		s.log.Warn("no enabled channels configured")
	}

	for _, m := range s.monitors {
		level, err := m.relay.Level()
		if err != nil {
			return fmt.Errorf("read initial level for %s: %w", m.name, err)
		}
		m.log.Info("checking current state", zap.Int("pin_state", level))
		m.Observe(level)

		if err := m.relay.Watch(m.Observe); err != nil {
			return fmt.Errorf("watch relay for %s: %w", m.name, err)
		}

		s.wg.Add(1)
		go func(m *ChannelMonitor) {
			defer s.wg.Done()
			m.run(ctx)
		}(m)
	}

	if len(s.monitors) > 0 {
		go func() {
			s.wg.Wait()
			close(s.allDead)
		}()
	}

	s.log.Info("monitoring started", zap.Int("channels", len(s.monitors)))
	return nil
}

// Run blocks until the context is cancelled (operator interrupt — not an
// error) or every channel monitor has stopped on its own, which means
// there is nothing left to watch.
func (s *Supervisor) Run(ctx context.Context) error {
	select {
	case <-ctx.Done():
		s.log.Info("interrupt received, terminating")
		return nil
	case <-s.allDead:
		err := errors.New("all channel monitors stopped")
		for _, m := range s.monitors {
			if ferr := m.Err(); ferr != nil {
				err = fmt.Errorf("%w; %v", err, ferr)
			}
		}
		return err
	}
}

// Stop waits for in-flight observations to complete, releases every
// channel's GPIO lines unconditionally, and logs the run-time summary.
// Safe to call whatever caused teardown.
func (s *Supervisor) Stop() {
	s.wg.Wait()

	for _, m := range s.monitors {
		m.release()
	}

	var total Counts
	for _, m := range s.monitors {
		c := m.Counts()
		total.Initializing += c.Initializing
		total.Success += c.Success
		total.Failure += c.Failure
		total.Ghosts += c.Ghosts
		fields := []zap.Field{
			zap.String("channel", m.name),
			zap.Int("failures", c.Failure),
			zap.Int("recoveries", c.Success),
			zap.Int("ghosts", c.Ghosts),
		}
		if err := m.Err(); err != nil {
			fields = append(fields, zap.NamedError("stopped_by", err))
		}
		s.log.Info("channel summary", fields...)
	}

	s.log.Info("mission complete",
		zap.Duration("elapsed", time.Since(s.started)),
		zap.Int("failures", total.Failure),
		zap.Int("recoveries", total.Success),
		zap.Int("ghosts", total.Ghosts))
}

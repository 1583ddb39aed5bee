// Package alert converts power events into outbound notifications and
// delivers them through a pluggable transport (SNS in production, MQTT as
// an alternative, a fake for tests).
package alert

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/kcsoukup/VigorousPowerDetector/internal/detect"
)

// Message is the fixed notification body; the interesting data rides in
// the attributes.
const Message = "Vigorous Power Detector Notification"

// ErrDispatch wraps transport failures so callers can recognize them.
var ErrDispatch = errors.New("alert dispatch failed")

// Transport delivers one alert to the outside world.
type Transport interface {
	// Publish sends the message with the given string attributes and
	// returns the transport's acknowledgment as an HTTP status code.
	Publish(ctx context.Context, message string, attrs map[string]string) (int, error)

	// Close releases the transport connection.
	Close() error
}

// Result reports the outcome of one dispatch attempt.
type Result struct {
	// Delivered is false when alerting is globally disabled.
	Delivered bool
	// AckStatus is the transport's HTTP acknowledgment code (0 when not
	// delivered).
	AckStatus int
}

// Dispatcher delivers power events exactly once, synchronously, with no
// retry. A failed delivery is reported to the caller and otherwise
// forgotten: the state transition already happened in the real world, so
// nothing is rolled back.
type Dispatcher struct {
	transport Transport
	enabled   bool
	log       *zap.Logger
}

// NewDispatcher creates a dispatcher. When enabled is false every Dispatch
// is a no-op success.
func NewDispatcher(transport Transport, enabled bool, log *zap.Logger) *Dispatcher {
	return &Dispatcher{
		transport: transport,
		enabled:   enabled,
		log:       log,
	}
}

// Dispatch builds the attribute payload for the event and makes a single
// delivery attempt.
func (d *Dispatcher) Dispatch(ctx context.Context, ev detect.Event) (Result, error) {
	if !d.enabled {
		return Result{}, nil
	}

	attrs := Attributes(ev)
	d.log.Info("sending alert",
		zap.String("channel", ev.Channel),
		zap.String("status", string(ev.Status)))

	status, err := d.transport.Publish(ctx, Message, attrs)
	if err != nil {
		return Result{}, fmt.Errorf("%w: channel %s: %v", ErrDispatch, ev.Channel, err)
	}

	d.log.Info("alert acknowledged",
		zap.String("channel", ev.Channel),
		zap.Int("http_status", status))
	return Result{Delivered: true, AckStatus: status}, nil
}

// Attributes flattens a power event into the named string attributes the
// transports carry.
func Attributes(ev detect.Event) map[string]string {
	return map[string]string{
		"eventTime":   ev.Timestamp.Format("2006-01-02 15:04:05.000000"),
		"relayName":   ev.Channel,
		"status":      string(ev.Status),
		"description": ev.Description,
		"pinState":    fmt.Sprintf("%d", ev.Level),
		"environment": ev.Environment,
		"hostname":    ev.Hostname,
	}
}

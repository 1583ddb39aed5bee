package monitor

import (
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kcsoukup/VigorousPowerDetector/internal/alert"
	"github.com/kcsoukup/VigorousPowerDetector/internal/detect"
	"github.com/kcsoukup/VigorousPowerDetector/internal/gpio"
)

// testMonitor builds a monitor with fakes. Tests drive handle directly to
// exercise the serial observation path.
func testMonitor(t *testing.T, transport *alert.FakeTransport, logGhosts bool) (*ChannelMonitor, *gpio.FakeRelay, *gpio.FakeIndicator, *gpio.FakeIndicator) {
	t.Helper()
	relay := gpio.NewFakeRelay(1)
	red := gpio.NewFakeIndicator()
	green := gpio.NewFakeIndicator()
	d := alert.NewDispatcher(transport, true, zap.NewNop())
	m := NewChannelMonitor("Sump Pump Relay", relay, red, green, d, "pi-host", "dev", logGhosts, zap.NewNop())
	return m, relay, red, green
}

func TestScriptedSequenceDispatchesExactlyTwice(t *testing.T) {
	transport := alert.NewFakeTransport()
	m, _, _, _ := testMonitor(t, transport, false)

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, level := range []int{1, 1, 0, 0, 1} {
		if err := m.handle(level, now.Add(time.Duration(i)*time.Second)); err != nil {
			t.Fatalf("step %d: unexpected error: %v", i, err)
		}
	}

	if transport.Count() != 2 {
		t.Fatalf("expected exactly 2 dispatched alerts, got %d", transport.Count())
	}
	if got := transport.Alert(0).Attributes["status"]; got != string(detect.StatusSuccess) {
		t.Errorf("first alert: expected Success, got %s", got)
	}
	if got := transport.Alert(1).Attributes["status"]; got != string(detect.StatusFailure) {
		t.Errorf("second alert: expected Failure, got %s", got)
	}

	c := m.Counts()
	if c.Initializing != 1 || c.Ghosts != 2 || c.Success != 1 || c.Failure != 1 {
		t.Errorf("unexpected counts: %+v", c)
	}
}

func TestInitialObservationNeverDispatched(t *testing.T) {
	for _, level := range []int{0, 1} {
		transport := alert.NewFakeTransport()
		m, _, _, _ := testMonitor(t, transport, true)

		if err := m.handle(level, time.Now()); err != nil {
			t.Fatalf("level %d: unexpected error: %v", level, err)
		}
		if transport.Count() != 0 {
			t.Errorf("level %d: initial observation was dispatched", level)
		}
	}
}

func TestGhostsNeverDispatchedEvenWhenLogged(t *testing.T) {
	transport := alert.NewFakeTransport()
	m, _, _, _ := testMonitor(t, transport, true)

	m.handle(1, time.Now())
	for i := 0; i < 5; i++ {
		m.handle(1, time.Now())
	}

	if transport.Count() != 0 {
		t.Errorf("expected no dispatches for ghosts, got %d", transport.Count())
	}
	if m.Counts().Ghosts != 5 {
		t.Errorf("expected 5 ghosts counted, got %d", m.Counts().Ghosts)
	}
}

func TestIndicatorsTrackEveryObservation(t *testing.T) {
	transport := alert.NewFakeTransport()
	m, _, red, green := testMonitor(t, transport, false)

	// init=1, ghost=1, success=0, ghost=0
	levels := []int{1, 1, 0, 0}
	for _, level := range levels {
		m.handle(level, time.Now())
	}

	// Indicators are driven on every observation, ghosts included: red
	// sees assert,assert,deassert,deassert; green the inverse.
	wantRed := []int{1, 1, 0, 0}
	wantGreen := []int{0, 0, 1, 1}
	if len(red.History) != len(wantRed) {
		t.Fatalf("red history: expected %v, got %v", wantRed, red.History)
	}
	for i := range wantRed {
		if red.History[i] != wantRed[i] {
			t.Errorf("red history[%d]: expected %d, got %d", i, wantRed[i], red.History[i])
		}
		if green.History[i] != wantGreen[i] {
			t.Errorf("green history[%d]: expected %d, got %d", i, wantGreen[i], green.History[i])
		}
	}
	if red.Lit {
		t.Error("expected red off after level 0")
	}
	if !green.Lit {
		t.Error("expected green on after level 0")
	}
}

func TestDispatchFailureDoesNotBlockLaterEvents(t *testing.T) {
	transport := alert.NewFakeTransport()
	m, _, _, _ := testMonitor(t, transport, false)

	m.handle(0, time.Now()) // init: power on

	transport.SetPublishError(errors.New("broker unreachable"))
	if err := m.handle(1, time.Now()); err != nil {
		t.Fatalf("dispatch failure must not be fatal to the monitor: %v", err)
	}

	// State progressed to PowerOff despite the failed alert, so the next
	// genuine event classifies and dispatches normally.
	transport.SetPublishError(nil)
	if err := m.handle(0, time.Now()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if transport.Count() != 1 {
		t.Fatalf("expected 1 successful dispatch, got %d", transport.Count())
	}
	if got := transport.Alert(0).Attributes["status"]; got != string(detect.StatusSuccess) {
		t.Errorf("expected Success after recovery, got %s", got)
	}
}

func TestInvalidLevelIsFatalToMonitor(t *testing.T) {
	transport := alert.NewFakeTransport()
	m, _, red, _ := testMonitor(t, transport, false)

	m.handle(1, time.Now())
	redWrites := len(red.History)

	err := m.handle(7, time.Now())
	if !errors.Is(err, detect.ErrInvalidLevel) {
		t.Fatalf("expected ErrInvalidLevel, got %v", err)
	}
	if len(red.History) != redWrites {
		t.Error("invalid level must not drive indicators")
	}
	if transport.Count() != 0 {
		t.Error("invalid level must not dispatch")
	}
}

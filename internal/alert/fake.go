package alert

import (
	"context"
	"net/http"
	"sync"
)

// PublishedAlert records one Publish call on the fake transport.
type PublishedAlert struct {
	Message    string
	Attributes map[string]string
}

// FakeTransport records published alerts for test assertions. Safe for
// concurrent use, since monitors for different channels publish from
// independent goroutines.
type FakeTransport struct {
	mu sync.Mutex

	// Published contains every alert that was published. Use Count and
	// Alert when monitors are still running.
	Published []PublishedAlert

	// Status is the acknowledgment code to return (defaults to 200).
	Status int

	// PublishError, if set, will be returned by Publish.
	PublishError error

	// Closed tracks if Close was called.
	Closed bool
}

// NewFakeTransport creates a FakeTransport for testing.
func NewFakeTransport() *FakeTransport {
	return &FakeTransport{}
}

// Publish records the alert.
func (f *FakeTransport) Publish(ctx context.Context, message string, attrs map[string]string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.PublishError != nil {
		return 0, f.PublishError
	}

	f.Published = append(f.Published, PublishedAlert{Message: message, Attributes: attrs})

	if f.Status != 0 {
		return f.Status, nil
	}
	return http.StatusOK, nil
}

// Count returns how many alerts have been published.
func (f *FakeTransport) Count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.Published)
}

// Alert returns the i-th published alert.
func (f *FakeTransport) Alert(i int) PublishedAlert {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Published[i]
}

// SetPublishError scripts the error returned by subsequent Publish calls.
func (f *FakeTransport) SetPublishError(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.PublishError = err
}

// Close marks the transport as closed.
func (f *FakeTransport) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Closed = true
	return nil
}

// Reset clears recorded alerts.
func (f *FakeTransport) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Published = nil
	f.Status = 0
	f.PublishError = nil
	f.Closed = false
}

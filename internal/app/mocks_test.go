package app

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/bft-labs/framebridge/internal/domain"
	"github.com/bft-labs/framebridge/internal/ports"
	"github.com/bft-labs/framebridge/pkg/log"
)

// mockLogger implements log.Logger and records messages by level.
type mockLogger struct {
	mu      sync.Mutex
	entries []logEntry
}

type logEntry struct {
	level string
	msg   string
}

func (m *mockLogger) record(level, msg string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, logEntry{level, msg})
}

func (m *mockLogger) Debug(msg string, fields ...log.Field) { m.record("debug", msg) }
func (m *mockLogger) Info(msg string, fields ...log.Field)  { m.record("info", msg) }
func (m *mockLogger) Warn(msg string, fields ...log.Field)  { m.record("warn", msg) }
func (m *mockLogger) Error(msg string, fields ...log.Field) { m.record("error", msg) }

func (m *mockLogger) count(level string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, e := range m.entries {
		if e.level == level {
			n++
		}
	}
	return n
}

var errTransportClosed = errors.New("transport closed")

// timeoutError mimics a deadline error from a serial driver.
type timeoutError struct{}

func (timeoutError) Error() string { return "i/o timeout" }
func (timeoutError) Timeout() bool { return true }

type readResult struct {
	data []byte
	err  error
}

// fakeTransport replays scripted reads in order, then blocks until closed.
type fakeTransport struct {
	reads      chan readResult
	closed     chan struct{}
	closeOnce  sync.Once
	closeCalls atomic.Int32
}

func newFakeTransport(results ...readResult) *fakeTransport {
	t := &fakeTransport{
		reads:  make(chan readResult, len(results)+16),
		closed: make(chan struct{}),
	}
	for _, r := range results {
		t.reads <- r
	}
	return t
}

func (t *fakeTransport) push(r readResult) { t.reads <- r }

func (t *fakeTransport) Read(p []byte) (int, error) {
	select {
	case <-t.closed:
		return 0, errTransportClosed
	default:
	}
	select {
	case r := <-t.reads:
		return copy(p, r.data), r.err
	case <-t.closed:
		return 0, errTransportClosed
	}
}

func (t *fakeTransport) Close() error {
	t.closeCalls.Add(1)
	t.closeOnce.Do(func() { close(t.closed) })
	return nil
}

// fakeOpener hands out a prepared transport and records the settings used.
type fakeOpener struct {
	transport ports.Transport
	err       error

	mu       sync.Mutex
	port     string
	settings ports.SerialSettings
	opens    int
}

func (o *fakeOpener) Open(portName string, settings ports.SerialSettings) (ports.Transport, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.opens++
	o.port = portName
	o.settings = settings
	if o.err != nil {
		return nil, o.err
	}
	return o.transport, nil
}

type fakeDetector struct {
	port string
	err  error
}

func (d fakeDetector) DetectAvailablePort() (string, error) { return d.port, d.err }

// fakeSink records submissions in order and completes them on its own goroutines.
type fakeSink struct {
	fail func(payload []byte) error

	mu         sync.Mutex
	published  [][]byte
	inflight   sync.WaitGroup
	offset     atomic.Int64
	flushCalls atomic.Int32
	closeCalls atomic.Int32
	closed     atomic.Bool
}

func (s *fakeSink) Publish(payload []byte, onComplete ports.DeliveryFunc) {
	s.mu.Lock()
	s.published = append(s.published, append([]byte(nil), payload...))
	s.mu.Unlock()

	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		if s.fail != nil {
			if err := s.fail(payload); err != nil {
				onComplete(domain.Placement{}, err)
				return
			}
		}
		onComplete(domain.Placement{Topic: "frames", Offset: s.offset.Add(1) - 1}, nil)
	}()
}

func (s *fakeSink) Flush(ctx context.Context) error {
	s.flushCalls.Add(1)
	done := make(chan struct{})
	go func() {
		s.inflight.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *fakeSink) Close() error {
	s.closeCalls.Add(1)
	s.closed.Store(true)
	return nil
}

func (s *fakeSink) payloads() [][]byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([][]byte(nil), s.published...)
}

// recordingEmitter captures pipeline events.
type recordingEmitter struct {
	mu        sync.Mutex
	rejected  []string
	delivered []domain.Placement
	failed    []error
}

func (e *recordingEmitter) OnFrameRejected(frame domain.Frame, reason string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.rejected = append(e.rejected, reason)
}

func (e *recordingEmitter) OnPublishSuccess(placement domain.Placement, size int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.delivered = append(e.delivered, placement)
}

func (e *recordingEmitter) OnPublishError(err error, size int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.failed = append(e.failed, err)
}

// mockEmitter tracks state change events for testing.
type mockEmitter struct {
	mu     sync.Mutex
	events []stateChangeEvent
}

type stateChangeEvent struct {
	previous State
	current  State
	reason   string
}

func (m *mockEmitter) OnStateChange(previous, current State, reason string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, stateChangeEvent{previous, current, reason})
}

func (m *mockEmitter) Events() []stateChangeEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]stateChangeEvent{}, m.events...)
}

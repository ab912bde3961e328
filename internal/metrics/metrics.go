// Package metrics is the thin facade the rest of the code reports through.
//
// The default backend is a nop, so extraction code can instrument
// unconditionally; a real backend (see metrics/datadog) is opted into by the
// command at startup. Core packages depend only on this facade, never on a
// vendor SDK.
package metrics

import "sync"

// Labels are free-form metric dimensions (e.g. {"kind": "bio"}).
type Labels map[string]string

// Backend receives every reported metric.
type Backend interface {
	IncCounter(name string, delta float64, labels Labels)
	ObserveHistogram(name string, value float64, labels Labels)
}

// Flusher is implemented by backends that buffer before submission.
type Flusher interface {
	Flush() error
}

var (
	mu      sync.RWMutex
	backend Backend = nopBackend{}
)

// SetBackend swaps the active backend. Call once at startup, before any
// metrics are reported.
func SetBackend(b Backend) {
	mu.Lock()
	defer mu.Unlock()
	if b != nil {
		backend = b
	}
}

// IncCounter adds delta to the named counter.
func IncCounter(name string, delta float64, labels Labels) {
	mu.RLock()
	b := backend
	mu.RUnlock()
	b.IncCounter(name, delta, labels)
}

// ObserveHistogram records one sample for the named histogram.
func ObserveHistogram(name string, value float64, labels Labels) {
	mu.RLock()
	b := backend
	mu.RUnlock()
	b.ObserveHistogram(name, value, labels)
}

// Flush submits buffered metrics when the active backend supports it.
func Flush() error {
	mu.RLock()
	b := backend
	mu.RUnlock()
	if f, ok := b.(Flusher); ok {
		return f.Flush()
	}
	return nil
}

type nopBackend struct{}

func (nopBackend) IncCounter(string, float64, Labels)       {}
func (nopBackend) ObserveHistogram(string, float64, Labels) {}

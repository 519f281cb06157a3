package grpc

import (
	"sync"
	"time"
)

type fakeMetrics struct {
	mu sync.Mutex
	up map[string]bool
}

func newFakeMetrics() *fakeMetrics {
	return &fakeMetrics{up: make(map[string]bool)}
}

func (f *fakeMetrics) RecordRequest(string, string, string, int, time.Duration) {}
func (f *fakeMetrics) RecordAuthFailure(string, string)                       {}
func (f *fakeMetrics) RecordSessionCreated()                                  {}

func (f *fakeMetrics) SetBackendUp(backend string, up bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.up[backend] = up
}

func (f *fakeMetrics) get(backend string) (bool, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	up, ok := f.up[backend]
	return up, ok
}

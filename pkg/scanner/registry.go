package scanner

import "sync"

// Registry tracks live progress for running scans so the API can report on
// a scan without hitting the database mid-flight. Entries are removed when
// the scan finishes.
type Registry struct {
	mu    sync.RWMutex
	scans map[string]Progress
}

func NewRegistry() *Registry {
	return &Registry{scans: map[string]Progress{}}
}

func (r *Registry) Set(progress Progress) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.scans[progress.ScanID] = progress
}

func (r *Registry) Get(scanID string) (Progress, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.scans[scanID]
	return p, ok
}

func (r *Registry) Delete(scanID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.scans, scanID)
}

package backends

import "sync"

// storePath holds the key store path for a backend. Backends that do not
// require a path embed it and never read the value back themselves.
type storePath struct {
	mu   sync.RWMutex
	path string
}

// KeyStorePath returns the configured path, or "" if none is set.
func (p *storePath) KeyStorePath() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.path
}

// SetKeyStorePath records path.
func (p *storePath) SetKeyStorePath(path string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.path = path
}

// Package keymutex provides mutual exclusion scoped to a string key.
//
// The storefront uses it to serialize cart mutation and checkout
// confirmation per user: two requests for the same user run one at a time,
// requests for different users do not contend.
package keymutex

import "sync"

// lockEntry counts waiters so entries can be removed once idle.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// KeyMutex is a set of named mutexes. The zero value is not usable; call New.
type KeyMutex struct {
	mu      sync.Mutex
	entries map[string]*lockEntry
}

// New creates an empty KeyMutex.
func New() *KeyMutex {
	return &KeyMutex{entries: make(map[string]*lockEntry)}
}

// Lock acquires the mutex for key, blocking while another holder owns it.
func (k *KeyMutex) Lock(key string) {
	k.mu.Lock()
	e, ok := k.entries[key]
	if !ok {
		e = &lockEntry{}
		k.entries[key] = e
	}
	e.refs++
	k.mu.Unlock()

	e.mu.Lock()
}

// Unlock releases the mutex for key. The entry is dropped once nobody holds
// or waits on it.
func (k *KeyMutex) Unlock(key string) {
	k.mu.Lock()
	e, ok := k.entries[key]
	if !ok {
		k.mu.Unlock()
		panic("keymutex: unlock of unheld key " + key)
	}
	e.refs--
	if e.refs == 0 {
		delete(k.entries, key)
	}
	k.mu.Unlock()

	e.mu.Unlock()
}

// Package names keeps remembered player names in process memory.
package names

import "sync"

// Memory is an in-process game.NameStore.
type Memory struct {
	mu sync.RWMutex
	m  map[string]string
}

// NewMemory returns an empty store.
func NewMemory() *Memory {
	return &Memory{m: make(map[string]string)}
}

func (s *Memory) Get(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.m[key]
	return v, ok
}

func (s *Memory) Set(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[key] = value
}

func (s *Memory) Remove(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, key)
}

// Book holds one Memory per host session id, the way a browser keeps one
// session storage per tab.
type Book struct {
	mu       sync.Mutex
	sessions map[string]*Memory
}

// NewBook returns an empty Book.
func NewBook() *Book {
	return &Book{sessions: make(map[string]*Memory)}
}

// Scope returns the store for sessionID, creating it on first use.
func (b *Book) Scope(sessionID string) *Memory {
	b.mu.Lock()
	defer b.mu.Unlock()
	m, ok := b.sessions[sessionID]
	if !ok {
		m = NewMemory()
		b.sessions[sessionID] = m
	}
	return m
}

// Len returns the number of scopes.
func (b *Book) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.sessions)
}

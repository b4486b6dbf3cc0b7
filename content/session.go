package content

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// Session is one admin's editing context. It owns a Staging buffer per
// document name, loaded lazily on first use and discarded on Close.
type Session struct {
	ID      string
	Started time.Time

	mu      sync.Mutex
	backend Backend
	docs    map[string]*Staging
}

// NewSession creates an empty session backed by b.
func NewSession(id string, b Backend) *Session {
	return &Session{
		ID:      id,
		Started: time.Now(),
		backend: b,
		docs:    make(map[string]*Staging),
	}
}

// Open returns the staging buffer for name, loading it from the backend the
// first time it is requested.
func (s *Session) Open(ctx context.Context, name string) (*Staging, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if st, ok := s.docs[name]; ok {
		return st, nil
	}
	doc, err := s.backend.LoadDocument(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("load %q: %w", name, err)
	}
	st := NewStaging(name, doc)
	s.docs[name] = st
	return st, nil
}

// Save commits the staging buffer for name. Saving a document that was never
// opened is a no-op.
func (s *Session) Save(ctx context.Context, name string) error {
	s.mu.Lock()
	st, ok := s.docs[name]
	s.mu.Unlock()
	if !ok {
		return nil
	}
	return st.Commit(ctx, s.backend)
}

// Names lists the documents opened in this session, sorted.
func (s *Session) Names() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.docs))
	for n := range s.docs {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Close drops every staging buffer, discarding uncommitted edits.
func (s *Session) Close() {
	s.mu.Lock()
	s.docs = make(map[string]*Staging)
	s.mu.Unlock()
}

// Sessions tracks the editing sessions of logged-in admins.
type Sessions struct {
	mu      sync.Mutex
	backend Backend
	byID    map[string]*Session
}

// NewSessions creates an empty registry whose sessions use b.
func NewSessions(b Backend) *Sessions {
	return &Sessions{backend: b, byID: make(map[string]*Session)}
}

// Get returns the session for id, creating it on first use.
func (r *Sessions) Get(id string) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.byID[id]; ok {
		return s
	}
	s := NewSession(id, r.backend)
	r.byID[id] = s
	return s
}

// End tears down the session for id. It reports whether one existed.
func (r *Sessions) End(id string) bool {
	r.mu.Lock()
	s, ok := r.byID[id]
	delete(r.byID, id)
	r.mu.Unlock()
	if ok {
		s.Close()
	}
	return ok
}

// Len returns the number of live sessions.
func (r *Sessions) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byID)
}

// Prune ends sessions started before cutoff and returns how many were removed.
func (r *Sessions) Prune(cutoff time.Time) int {
	r.mu.Lock()
	var stale []*Session
	for id, s := range r.byID {
		if s.Started.Before(cutoff) {
			stale = append(stale, s)
			delete(r.byID, id)
		}
	}
	r.mu.Unlock()
	for _, s := range stale {
		s.Close()
	}
	return len(stale)
}

package content

import (
	"context"
	"fmt"
	"sync"
)

// Loader returns the last persisted version of a named document, or an empty
// document if none has been saved yet.
type Loader interface {
	LoadDocument(ctx context.Context, name string) (Document, error)
}

// Saver atomically replaces the persisted version of a named document.
type Saver interface {
	SaveDocument(ctx context.Context, name string, doc Document) error
}

// Backend is the persistence collaborator of an editing session.
type Backend interface {
	Loader
	Saver
}

// Staging is a working copy of one document. Edits accumulate in memory
// until Commit sends the whole document to a Saver.
type Staging struct {
	mu      sync.Mutex
	name    string
	saved   Document
	working Document
	dirty   bool
	rev     uint64
}

// NewStaging starts a staging buffer from a persisted snapshot.
func NewStaging(name string, saved Document) *Staging {
	snap := Clone(saved)
	return &Staging{name: name, saved: snap, working: snap}
}

// Name returns the document name.
func (s *Staging) Name() string {
	return s.name
}

// Get reads path from the working copy.
func (s *Staging) Get(path string) any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Get(s.working, path)
}

// Set writes value at path in the working copy.
func (s *Staging) Set(path string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.working = Set(s.working, path, value)
	s.dirty = true
	s.rev++
}

// Replace swaps the whole working copy for doc.
func (s *Staging) Replace(doc Document) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.working = Clone(doc)
	s.dirty = true
	s.rev++
}

// Document returns a deep copy of the working copy.
func (s *Staging) Document() Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Clone(s.working)
}

// Saved returns a deep copy of the last persisted snapshot.
func (s *Staging) Saved() Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Clone(s.saved)
}

// Dirty reports whether the working copy has edits not yet committed.
func (s *Staging) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dirty
}

// Revert discards uncommitted edits.
func (s *Staging) Revert() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.working = s.saved
	s.dirty = false
	s.rev++
}

// Commit persists the entire working copy. On failure the working copy and
// dirty flag are left as they were so the caller can retry.
func (s *Staging) Commit(ctx context.Context, saver Saver) error {
	s.mu.Lock()
	doc, rev := s.working, s.rev
	s.mu.Unlock()

	if err := saver.SaveDocument(ctx, s.name, Clone(doc)); err != nil {
		return fmt.Errorf("save %q: %w", s.name, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.saved = doc
	// Edits made while the save was in flight stay dirty.
	if s.rev == rev {
		s.dirty = false
	}
	return nil
}

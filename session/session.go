package session

import (
	"errors"
	"sync"
	"time"

	"github.com/hairizuanbinnoorazman/testcase-generator/testcase"
)

var (
	// ErrWorkspaceNotFound is returned when a workspace is not found.
	ErrWorkspaceNotFound = errors.New("workspace not found")

	// ErrWorkspaceExpired is returned when a workspace has expired.
	ErrWorkspaceExpired = errors.New("workspace expired")
)

// Workspace is the per-browser state of the generator: the customization
// options, the imported template and the last generated test cases.
type Workspace struct {
	ID            string                 `json:"id"`
	Customization testcase.Customization `json:"customization"`
	Template      string                 `json:"template"`
	TemplateName  string                 `json:"templateName,omitempty"`
	TestCases     []testcase.TestCase    `json:"testCases"`
	CreatedAt     time.Time              `json:"createdAt"`
	ExpiresAt     time.Time              `json:"expiresAt"`
}

// IsExpired checks if the workspace has expired.
func (w *Workspace) IsExpired() bool {
	return time.Now().After(w.ExpiresAt)
}

// clone returns a copy that shares no slices with w.
func (w *Workspace) clone() *Workspace {
	out := *w
	out.TestCases = make([]testcase.TestCase, len(w.TestCases))
	for i, tc := range w.TestCases {
		tc.Steps = append([]string(nil), tc.Steps...)
		out.TestCases[i] = tc
	}
	return &out
}

// Store is an in-memory workspace store.
type Store struct {
	mu         sync.RWMutex
	workspaces map[string]*Workspace
}

// NewStore creates a new in-memory workspace store.
func NewStore() *Store {
	return &Store{
		workspaces: make(map[string]*Workspace),
	}
}

// Set stores a copy of the workspace.
func (s *Store) Set(w *Workspace) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.workspaces[w.ID] = w.clone()
}

// Get returns a copy of the workspace.
func (s *Store) Get(id string) (*Workspace, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	w, exists := s.workspaces[id]
	if !exists {
		return nil, ErrWorkspaceNotFound
	}

	if w.IsExpired() {
		return nil, ErrWorkspaceExpired
	}

	return w.clone(), nil
}

// Update applies fn to the stored workspace while holding the store lock.
// Changes are discarded when fn returns an error.
func (s *Store) Update(id string, fn func(*Workspace) error) (*Workspace, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, exists := s.workspaces[id]
	if !exists {
		return nil, ErrWorkspaceNotFound
	}
	if w.IsExpired() {
		return nil, ErrWorkspaceExpired
	}

	next := w.clone()
	if err := fn(next); err != nil {
		return nil, err
	}
	next.ID = w.ID
	s.workspaces[id] = next

	return next.clone(), nil
}

// Delete removes a workspace from the store.
func (s *Store) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.workspaces, id)
}

// Len returns the number of stored workspaces, expired ones included.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.workspaces)
}

// Cleanup removes expired workspaces from the store.
func (s *Store) Cleanup() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	now := time.Now()
	for id, w := range s.workspaces {
		if now.After(w.ExpiresAt) {
			delete(s.workspaces, id)
			removed++
		}
	}

	return removed
}

package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hairizuanbinnoorazman/testcase-generator/logger"
	"github.com/hairizuanbinnoorazman/testcase-generator/testcase"
)

// Manager manages workspaces with a sliding expiry and automatic cleanup.
type Manager struct {
	store    *Store
	duration time.Duration
	logger   logger.Logger

	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewManager creates a new workspace manager with the given idle duration.
func NewManager(duration time.Duration, log logger.Logger) *Manager {
	return &Manager{
		store:    NewStore(),
		duration: duration,
		logger:   log,
		stopCh:   make(chan struct{}),
	}
}

// Create creates an empty workspace with the default customization.
func (m *Manager) Create(ctx context.Context) *Workspace {
	now := time.Now()
	w := &Workspace{
		ID:            uuid.NewString(),
		Customization: testcase.DefaultCustomization(),
		TestCases:     []testcase.TestCase{},
		CreatedAt:     now,
		ExpiresAt:     now.Add(m.duration),
	}

	m.store.Set(w)

	m.logger.Info(ctx, "workspace created", map[string]interface{}{
		"workspace_id": w.ID,
	})

	return w.clone()
}

// Get retrieves a workspace by ID.
func (m *Manager) Get(id string) (*Workspace, error) {
	return m.store.Get(id)
}

// Update applies fn to the workspace and extends its expiry.
func (m *Manager) Update(id string, fn func(*Workspace) error) (*Workspace, error) {
	return m.store.Update(id, func(w *Workspace) error {
		if err := fn(w); err != nil {
			return err
		}
		w.ExpiresAt = time.Now().Add(m.duration)
		return nil
	})
}

// Delete deletes a workspace by ID.
func (m *Manager) Delete(ctx context.Context, id string) {
	m.store.Delete(id)
	m.logger.Info(ctx, "workspace deleted", map[string]interface{}{
		"workspace_id": id,
	})
}

// StartCleanup starts a background goroutine that periodically removes expired workspaces.
func (m *Manager) StartCleanup(interval time.Duration) {
	ticker := time.NewTicker(interval)
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				removed := m.store.Cleanup()
				if removed > 0 {
					m.logger.Info(context.Background(), "cleaned up expired workspaces", map[string]interface{}{
						"removed_count": removed,
					})
				}
			case <-m.stopCh:
				return
			}
		}
	}()
}

// StopCleanup stops the cleanup goroutine and waits for it to exit.
// It is safe to call more than once.
func (m *Manager) StopCleanup() {
	m.stopOnce.Do(func() {
		close(m.stopCh)
	})
	m.wg.Wait()
}

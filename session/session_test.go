package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/hairizuanbinnoorazman/testcase-generator/logger"
	"github.com/hairizuanbinnoorazman/testcase-generator/testcase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestWorkspace_IsExpired(t *testing.T) {
	tests := []struct {
		name      string
		expiresAt time.Time
		want      bool
	}{
		{
			name:      "not expired",
			expiresAt: time.Now().Add(time.Hour),
			want:      false,
		},
		{
			name:      "expired",
			expiresAt: time.Now().Add(-time.Hour),
			want:      true,
		},
		{
			name:      "just expired",
			expiresAt: time.Now().Add(-time.Second),
			want:      true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := &Workspace{
				ExpiresAt: tt.expiresAt,
			}
			assert.Equal(t, tt.want, w.IsExpired())
		})
	}
}

func newWorkspace(id string, expiresIn time.Duration) *Workspace {
	return &Workspace{
		ID:            id,
		Customization: testcase.DefaultCustomization(),
		CreatedAt:     time.Now(),
		ExpiresAt:     time.Now().Add(expiresIn),
	}
}

func TestStore_SetAndGet(t *testing.T) {
	store := NewStore()

	w := newWorkspace("ws-1", time.Hour)
	w.TestCases = []testcase.TestCase{{ID: "TC1", Steps: []string{"a"}}}
	store.Set(w)

	retrieved, err := store.Get("ws-1")
	require.NoError(t, err)
	assert.Equal(t, w.ID, retrieved.ID)
	assert.Equal(t, w.Customization, retrieved.Customization)
	assert.Equal(t, w.TestCases, retrieved.TestCases)

	retrieved.TestCases[0].Steps[0] = "changed"
	again, err := store.Get("ws-1")
	require.NoError(t, err)
	assert.Equal(t, "a", again.TestCases[0].Steps[0], "callers get copies")
}

func TestStore_GetNonExistent(t *testing.T) {
	store := NewStore()

	_, err := store.Get("non-existent-id")
	assert.ErrorIs(t, err, ErrWorkspaceNotFound)
}

func TestStore_GetExpired(t *testing.T) {
	store := NewStore()
	store.Set(newWorkspace("expired", -time.Hour))

	_, err := store.Get("expired")
	assert.ErrorIs(t, err, ErrWorkspaceExpired)
}

func TestStore_Update(t *testing.T) {
	store := NewStore()
	store.Set(newWorkspace("ws-1", time.Hour))

	updated, err := store.Update("ws-1", func(w *Workspace) error {
		w.Template = "Focus on accessibility"
		w.ID = "hijacked"
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ws-1", updated.ID, "ID cannot be changed")
	assert.Equal(t, "Focus on accessibility", updated.Template)

	boom := errors.New("rejected")
	_, err = store.Update("ws-1", func(w *Workspace) error {
		w.Template = "discarded"
		return boom
	})
	assert.ErrorIs(t, err, boom)

	current, err := store.Get("ws-1")
	require.NoError(t, err)
	assert.Equal(t, "Focus on accessibility", current.Template)

	_, err = store.Update("missing", func(w *Workspace) error { return nil })
	assert.ErrorIs(t, err, ErrWorkspaceNotFound)
}

func TestStore_Delete(t *testing.T) {
	store := NewStore()
	store.Set(newWorkspace("delete-me", time.Hour))
	store.Delete("delete-me")

	_, err := store.Get("delete-me")
	assert.ErrorIs(t, err, ErrWorkspaceNotFound)
}

func TestStore_Cleanup(t *testing.T) {
	store := NewStore()
	store.Set(newWorkspace("active", time.Hour))
	store.Set(newWorkspace("expired", -time.Hour))

	removed := store.Cleanup()
	assert.Equal(t, 1, removed)

	_, err := store.Get("active")
	assert.NoError(t, err)

	_, err = store.Get("expired")
	assert.ErrorIs(t, err, ErrWorkspaceNotFound)
}

func TestManager_Create(t *testing.T) {
	manager := NewManager(24*time.Hour, logger.NewTestLogger())

	w := manager.Create(context.Background())
	assert.NotEmpty(t, w.ID)
	assert.Equal(t, testcase.DefaultCustomization(), w.Customization)
	assert.Empty(t, w.TestCases)
	assert.NotNil(t, w.TestCases)
	assert.False(t, w.IsExpired())

	retrieved, err := manager.Get(w.ID)
	require.NoError(t, err)
	assert.Equal(t, w.ID, retrieved.ID)
}

func TestManager_GetExpired(t *testing.T) {
	manager := NewManager(time.Millisecond, logger.NewTestLogger())

	w := manager.Create(context.Background())

	time.Sleep(10 * time.Millisecond)

	_, err := manager.Get(w.ID)
	assert.ErrorIs(t, err, ErrWorkspaceExpired)
}

func TestManager_UpdateExtendsExpiry(t *testing.T) {
	manager := NewManager(time.Hour, logger.NewTestLogger())
	w := manager.Create(context.Background())

	time.Sleep(5 * time.Millisecond)

	updated, err := manager.Update(w.ID, func(ws *Workspace) error {
		ws.Customization.Coverage = 95
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 95, updated.Customization.Coverage)
	assert.True(t, updated.ExpiresAt.After(w.ExpiresAt))
}

func TestManager_Delete(t *testing.T) {
	manager := NewManager(24*time.Hour, logger.NewTestLogger())

	w := manager.Create(context.Background())
	manager.Delete(context.Background(), w.ID)

	_, err := manager.Get(w.ID)
	assert.ErrorIs(t, err, ErrWorkspaceNotFound)
}

func TestManager_BackgroundCleanup(t *testing.T) {
	log := logger.NewTestLogger()
	manager := NewManager(20*time.Millisecond, log)

	manager.Create(context.Background())
	manager.Create(context.Background())

	manager.StartCleanup(10 * time.Millisecond)
	defer manager.StopCleanup()

	require.Eventually(t, func() bool {
		return manager.store.Len() == 0
	}, time.Second, 10*time.Millisecond)
}

func TestManager_StopCleanupIsIdempotent(t *testing.T) {
	manager := NewManager(time.Hour, logger.NewTestLogger())
	manager.StartCleanup(time.Hour)

	manager.StopCleanup()
	manager.StopCleanup()
}

func TestManager_Concurrent(t *testing.T) {
	manager := NewManager(24*time.Hour, logger.NewTestLogger())
	w := manager.Create(context.Background())

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := manager.Update(w.ID, func(ws *Workspace) error {
				ws.TestCases = append(ws.TestCases, testcase.TestCase{ID: "TC"})
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	final, err := manager.Get(w.ID)
	require.NoError(t, err)
	assert.Len(t, final.TestCases, 100)
}

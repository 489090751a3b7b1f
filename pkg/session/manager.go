package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"log/slog"

	"github.com/aretw0/espalier/internal/logging"
	"github.com/aretw0/espalier/pkg/domain"
	"github.com/aretw0/espalier/pkg/ports"
)

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager orchestrates access to named scenes in a shared store, ensuring
// safe concurrent operations. It uses reference counting to garbage collect
// unused locks.
type Manager struct {
	store ports.SceneStore

	mu    sync.Mutex            // Global lock for the map
	locks map[string]*lockEntry // Map of active locks

	locker  ports.SceneLocker // Optional distributed locker
	lockTTL time.Duration
	logger  *slog.Logger
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking, serializing edits across replicas
// that share one store.
func WithLocker(locker ports.SceneLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLockTTL overrides how long a distributed lock may outlive a crashed
// holder before its backend expires it.
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		m.lockTTL = ttl
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// NewManager creates a scene manager over the given persistence store.
func NewManager(store ports.SceneStore, opts ...Option) *Manager {
	m := &Manager{
		store:   store,
		locks:   make(map[string]*lockEntry),
		lockTTL: 30 * time.Second,
		logger:  logging.NewNop(), // Default to no-op
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST Lock the entry.mu, and then call release(sceneID) after
// unlocking.
func (m *Manager) acquire(sceneID string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[sceneID]
	if !exists {
		entry = &lockEntry{}
		m.locks[sceneID] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches
// zero.
func (m *Manager) release(sceneID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[sceneID]
	if !exists {
		return // Should not happen if paired correctly
	}

	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, sceneID)
	}
}

// Load retrieves an existing scene from the store.
func (m *Manager) Load(ctx context.Context, sceneID string) (*domain.SceneDocument, error) {
	var doc *domain.SceneDocument
	err := m.WithLock(ctx, sceneID, func(ctx context.Context) error {
		var err error
		doc, err = m.store.Load(ctx, sceneID)
		return err
	})
	return doc, err
}

// LoadOrCreate tries to load a scene. If not found, it reserves the ID with
// an empty document so two replicas cannot both initialize it.
func (m *Manager) LoadOrCreate(ctx context.Context, sceneID string) (*domain.SceneDocument, error) {
	var doc *domain.SceneDocument
	err := m.WithLock(ctx, sceneID, func(ctx context.Context) error {
		var err error
		doc, err = m.store.Load(ctx, sceneID)
		if err == nil {
			return nil
		}

		if !errors.Is(err, domain.ErrSceneNotFound) {
			return fmt.Errorf("failed to check scene existence: %w", err)
		}

		doc = &domain.SceneDocument{}
		if err := m.store.Save(ctx, sceneID, doc); err != nil {
			return fmt.Errorf("failed to initialize scene: %w", err)
		}
		return nil
	})
	return doc, err
}

// Save persists the scene document.
func (m *Manager) Save(ctx context.Context, sceneID string, doc *domain.SceneDocument) error {
	return m.WithLock(ctx, sceneID, func(ctx context.Context) error {
		return m.store.Save(ctx, sceneID, doc)
	})
}

// Delete removes the scene from the store.
func (m *Manager) Delete(ctx context.Context, sceneID string) error {
	return m.WithLock(ctx, sceneID, func(ctx context.Context) error {
		return m.store.Delete(ctx, sceneID)
	})
}

// List delegates to the store.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	return m.store.List(ctx)
}

// Store returns the underlying scene store.
func (m *Manager) Store() ports.SceneStore {
	return m.store
}

// WithLock executes a function while holding the lock for the scene.
func (m *Manager) WithLock(ctx context.Context, sceneID string, fn func(context.Context) error) error {
	entry := m.acquire(sceneID)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(sceneID)
	}()

	// Distributed locking
	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, sceneID, m.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(ctx); err != nil {
				m.logger.Warn("Failed to release distributed lock (will expire via TTL)",
					"scene_id", sceneID,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}

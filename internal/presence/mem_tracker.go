package presence

import (
	"context"
	"sync"
	"time"

	"techrobotics-site/internal/metrics"
	"techrobotics-site/internal/models"
)

type MemTracker struct {
	users map[string]ActiveUser
	mutex sync.RWMutex
	now   func() time.Time
}

func NewMemTracker() *MemTracker {
	return &MemTracker{
		users: make(map[string]ActiveUser),
		now:   time.Now,
	}
}

func (m *MemTracker) MarkActive(ctx context.Context, user models.User) error {
	defer observe(metrics.StoreTypeMemory, metrics.PresenceOperationMarkActive, time.Now())

	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.users[user.ID] = activeUserFrom(user, m.now())
	metrics.ActiveUsers.WithLabelValues(metrics.StoreTypeMemory).Set(float64(len(m.users)))
	return nil
}

func (m *MemTracker) MarkInactive(ctx context.Context, userID string) error {
	defer observe(metrics.StoreTypeMemory, metrics.PresenceOperationMarkInactive, time.Now())

	m.mutex.Lock()
	defer m.mutex.Unlock()

	delete(m.users, userID)
	metrics.ActiveUsers.WithLabelValues(metrics.StoreTypeMemory).Set(float64(len(m.users)))
	return nil
}

func (m *MemTracker) ListActive(ctx context.Context) ([]ActiveUser, error) {
	defer observe(metrics.StoreTypeMemory, metrics.PresenceOperationList, time.Now())

	m.mutex.RLock()
	users := make([]ActiveUser, 0, len(m.users))
	for _, user := range m.users {
		users = append(users, user)
	}
	m.mutex.RUnlock()

	sortByLastSeen(users)
	return users, nil
}

func (m *MemTracker) Count(ctx context.Context) (int, error) {
	defer observe(metrics.StoreTypeMemory, metrics.PresenceOperationCount, time.Now())

	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.users), nil
}

func (m *MemTracker) Sweep(ctx context.Context, olderThan time.Time) (int, error) {
	defer observe(metrics.StoreTypeMemory, metrics.PresenceOperationSweep, time.Now())

	m.mutex.Lock()
	defer m.mutex.Unlock()

	removed := 0
	for id, user := range m.users {
		if user.LastSeen.Before(olderThan) {
			delete(m.users, id)
			removed++
		}
	}
	metrics.ActiveUsers.WithLabelValues(metrics.StoreTypeMemory).Set(float64(len(m.users)))
	return removed, nil
}

func (m *MemTracker) Close() error { return nil }

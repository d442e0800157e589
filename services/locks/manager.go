package locks

import (
	"sync"
	"time"

	"medislot/models"
)

// DefaultTTL is how long a soft lock lives unless released.
const DefaultTTL = 2 * time.Minute

// Listener is told about every lock install and removal. It is invoked while the manager's mutex is
// held, which is what keeps slotLocked before slotReleased for one acquisition; it must not block and
// must not call back into the Manager.
type Listener interface {
	LockAcquired(lock models.SoftLock)
	LockReleased(lock models.SoftLock)
}

type entry struct {
	lock  models.SoftLock
	token uint64
	timer *time.Timer
}

// Manager holds advisory, process-local slot locks with a fixed TTL. It is constructed once and
// shared by handlers; it is never authoritative over a booking.
type Manager struct {
	mu       sync.Mutex
	ttl      time.Duration
	entries  map[models.LockKey]*entry
	listener Listener
	seq      uint64
	now      func() time.Time
}

func NewManager(ttl time.Duration, listener Listener) *Manager {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Manager{
		ttl:      ttl,
		entries:  make(map[models.LockKey]*entry),
		listener: listener,
		now:      time.Now,
	}
}

func (m *Manager) TTL() time.Duration { return m.ttl }

// Acquire installs a lock for key owned by userID if no unexpired lock exists. It returns false,
// with no side effect, when one does.
func (m *Manager) Acquire(key models.LockKey, userID string) (models.SoftLock, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if e, ok := m.entries[key]; ok {
		if now.Before(e.lock.ExpiresAt) {
			return e.lock, false
		}
		// Deadline passed but the timer has not run yet.
		m.removeLocked(key, e)
	}

	m.seq++
	token := m.seq
	e := &entry{
		lock: models.SoftLock{
			Key:        key,
			OwnerID:    userID,
			AcquiredAt: now,
			ExpiresAt:  now.Add(m.ttl),
		},
		token: token,
	}
	e.timer = time.AfterFunc(m.ttl, func() { m.expire(key, token) })
	m.entries[key] = e

	if m.listener != nil {
		m.listener.LockAcquired(e.lock)
	}
	return e.lock, true
}

// Release removes any lock for key. Releasing an absent key is a no-op.
func (m *Manager) Release(key models.LockKey) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok {
		return false
	}
	m.removeLocked(key, e)
	return true
}

// ReleaseOwned removes the lock for key only if userID holds it.
func (m *Manager) ReleaseOwned(key models.LockKey, userID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok || e.lock.OwnerID != userID {
		return false
	}
	m.removeLocked(key, e)
	return true
}

// Peek returns the unexpired lock for key, if any.
func (m *Manager) Peek(key models.LockKey) (models.SoftLock, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok || !m.now().Before(e.lock.ExpiresAt) {
		return models.SoftLock{}, false
	}
	return e.lock, true
}

// Len reports the number of installed locks, expired-but-unswept ones included.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// Stop cancels every pending expiry without broadcasting.
func (m *Manager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key, e := range m.entries {
		e.timer.Stop()
		delete(m.entries, key)
	}
}

// expire runs from the TTL timer. It only removes the acquisition it was scheduled for; a newer lock
// that reused the key carries a different token and is left alone.
func (m *Manager) expire(key models.LockKey, token uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok || e.token != token {
		return
	}
	m.removeLocked(key, e)
}

func (m *Manager) removeLocked(key models.LockKey, e *entry) {
	e.timer.Stop()
	delete(m.entries, key)
	if m.listener != nil {
		m.listener.LockReleased(e.lock)
	}
}

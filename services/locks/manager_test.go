package locks

import (
	"sync"
	"testing"
	"time"

	"medislot/models"
)

type recorder struct {
	mu     sync.Mutex
	events []string
	done   chan struct{}
}

func newRecorder() *recorder { return &recorder{done: make(chan struct{}, 16)} }

func (r *recorder) LockAcquired(l models.SoftLock) { r.add("locked:" + l.OwnerID) }
func (r *recorder) LockReleased(l models.SoftLock) { r.add("released:" + l.OwnerID) }

func (r *recorder) add(e string) {
	r.mu.Lock()
	r.events = append(r.events, e)
	r.mu.Unlock()
	r.done <- struct{}{}
}

func (r *recorder) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}

var key = models.LockKey{DoctorID: "doc-1", Date: "2025-03-10", SlotTime: "09:00"}

func TestAcquireIsExclusive(t *testing.T) {
	m := NewManager(time.Minute, nil)
	defer m.Stop()

	if _, ok := m.Acquire(key, "alice"); !ok {
		t.Fatalf("first acquire should succeed")
	}
	holder, ok := m.Acquire(key, "bob")
	if ok {
		t.Fatalf("second acquire should fail while the lock is live")
	}
	if holder.OwnerID != "alice" {
		t.Errorf("expected alice to hold the lock, got %q", holder.OwnerID)
	}
	if _, ok := m.Acquire(key, "alice"); ok {
		t.Errorf("re-acquire by the owner should also fail")
	}

	other := key
	other.SlotTime = "09:15"
	if _, ok := m.Acquire(other, "bob"); !ok {
		t.Errorf("a different slot should be independent")
	}
}

func TestReleaseAndReacquire(t *testing.T) {
	rec := newRecorder()
	m := NewManager(time.Minute, rec)
	defer m.Stop()

	m.Acquire(key, "alice")
	if !m.Release(key) {
		t.Fatalf("release should report the removed lock")
	}
	if m.Release(key) {
		t.Errorf("releasing an absent key is a no-op")
	}
	if _, ok := m.Peek(key); ok {
		t.Errorf("peek after release should be empty")
	}
	if _, ok := m.Acquire(key, "bob"); !ok {
		t.Fatalf("acquire after release should succeed")
	}

	want := []string{"locked:alice", "released:alice", "locked:bob"}
	got := rec.snapshot()
	if len(got) != len(want) {
		t.Fatalf("got events %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("event %d: got %s, want %s", i, got[i], want[i])
		}
	}
}

func TestReleaseOwned(t *testing.T) {
	m := NewManager(time.Minute, nil)
	defer m.Stop()

	m.Acquire(key, "alice")
	if m.ReleaseOwned(key, "bob") {
		t.Fatalf("bob must not release alice's lock")
	}
	if !m.ReleaseOwned(key, "alice") {
		t.Fatalf("alice should release her own lock")
	}
}

func TestLockExpires(t *testing.T) {
	rec := newRecorder()
	ttl := 40 * time.Millisecond
	m := NewManager(ttl, rec)
	defer m.Stop()

	start := time.Now()
	m.Acquire(key, "alice")
	<-rec.done

	select {
	case <-rec.done:
	case <-time.After(2 * time.Second):
		t.Fatalf("lock never expired")
	}
	if elapsed := time.Since(start); elapsed < ttl {
		t.Errorf("released after %v, before the %v ttl", elapsed, ttl)
	}
	if _, ok := m.Peek(key); ok {
		t.Errorf("expired lock still visible")
	}
	if m.Len() != 0 {
		t.Errorf("expired lock not removed")
	}
	if _, ok := m.Acquire(key, "bob"); !ok {
		t.Errorf("acquire after expiry should succeed")
	}
}

func TestStaleTimerLeavesNewLockAlone(t *testing.T) {
	m := NewManager(time.Minute, nil)
	defer m.Stop()

	m.Acquire(key, "alice")
	first := m.entries[key].token
	m.Release(key)
	m.Acquire(key, "bob")

	// A timer from the first acquisition firing late must not remove bob's lock.
	m.expire(key, first)
	lock, ok := m.Peek(key)
	if !ok || lock.OwnerID != "bob" {
		t.Fatalf("expected bob's lock to survive, got %+v ok=%v", lock, ok)
	}
}

func TestExpiredButUnsweptIsReplaced(t *testing.T) {
	rec := newRecorder()
	m := NewManager(time.Minute, rec)
	defer m.Stop()

	now := time.Now()
	m.now = func() time.Time { return now }
	m.Acquire(key, "alice")

	m.now = func() time.Time { return now.Add(2 * time.Minute) }
	if _, ok := m.Peek(key); ok {
		t.Errorf("lock past its deadline should not be visible")
	}
	if _, ok := m.Acquire(key, "bob"); !ok {
		t.Fatalf("acquire should replace a lock past its deadline")
	}
	got := rec.snapshot()
	want := []string{"locked:alice", "released:alice", "locked:bob"}
	if len(got) != 3 || got[0] != want[0] || got[1] != want[1] || got[2] != want[2] {
		t.Errorf("got events %v, want %v", got, want)
	}
}

func TestConcurrentAcquireSingleWinner(t *testing.T) {
	m := NewManager(time.Minute, nil)
	defer m.Stop()

	const n = 50
	var wg sync.WaitGroup
	var mu sync.Mutex
	winners := 0
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if _, ok := m.Acquire(key, string(rune('a'+i%26))); ok {
				mu.Lock()
				winners++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()
	if winners != 1 {
		t.Fatalf("expected exactly one winner, got %d", winners)
	}
}

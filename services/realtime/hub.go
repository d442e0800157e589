package realtime

import (
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"medislot/models"
)

// Subscription receives slot events, optionally filtered to one doctor/date.
type Subscription struct {
	id       uint64
	doctorID string
	date     string
	events   chan models.SlotEvent
	hub      *Hub
	once     sync.Once
}

func (s *Subscription) Events() <-chan models.SlotEvent { return s.events }

// Close detaches the subscription and closes its channel.
func (s *Subscription) Close() {
	s.once.Do(func() { s.hub.unsubscribe(s) })
}

func (s *Subscription) matches(evt models.SlotEvent) bool {
	if s.doctorID != "" && s.doctorID != evt.DoctorID {
		return false
	}
	if s.date != "" && s.date != evt.Date {
		return false
	}
	return true
}

// Hub fans slot events out to live subscribers. Delivery is best effort and at most once: a
// subscriber whose buffer is full misses the event, and nobody gets events published before they
// subscribed.
type Hub struct {
	mu      sync.RWMutex
	subs    map[uint64]*Subscription
	nextID  uint64
	buffer  int
	dropped atomic.Uint64
	logger  *zap.Logger
}

func NewHub(buffer int, logger *zap.Logger) *Hub {
	if buffer <= 0 {
		buffer = 64
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		subs:   make(map[uint64]*Subscription),
		buffer: buffer,
		logger: logger,
	}
}

// Subscribe registers a viewer. Empty doctorID or date means "any".
func (h *Hub) Subscribe(doctorID, date string) *Subscription {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.nextID++
	sub := &Subscription{
		id:       h.nextID,
		doctorID: doctorID,
		date:     date,
		events:   make(chan models.SlotEvent, h.buffer),
		hub:      h,
	}
	h.subs[sub.id] = sub
	return sub
}

func (h *Hub) unsubscribe(sub *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.subs, sub.id)
	close(sub.events)
}

// Publish delivers evt to every matching subscriber without blocking.
func (h *Hub) Publish(evt models.SlotEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, sub := range h.subs {
		if !sub.matches(evt) {
			continue
		}
		select {
		case sub.events <- evt:
		default:
			h.dropped.Add(1)
			h.logger.Warn("slot event dropped for slow subscriber",
				zap.String("type", evt.Type),
				zap.String("doctorId", evt.DoctorID),
				zap.String("date", evt.Date),
				zap.String("slotTime", evt.SlotTime))
		}
	}
}

// Subscribers returns the number of live subscriptions.
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Dropped returns how many deliveries were skipped because a subscriber was full.
func (h *Hub) Dropped() uint64 { return h.dropped.Load() }

// LockAcquired broadcasts slotLocked.
func (h *Hub) LockAcquired(lock models.SoftLock) {
	h.Publish(eventFor(models.EventSlotLocked, lock.Key))
}

// LockReleased broadcasts slotReleased, whether the lock was released explicitly or timed out.
func (h *Hub) LockReleased(lock models.SoftLock) {
	h.Publish(eventFor(models.EventSlotReleased, lock.Key))
}

func eventFor(kind string, key models.LockKey) models.SlotEvent {
	return models.SlotEvent{
		Type:     kind,
		DoctorID: key.DoctorID,
		Date:     key.Date,
		SlotTime: key.SlotTime,
	}
}

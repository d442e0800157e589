package booking

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"medislot/models"
	"medislot/utils"
)

// memSlots is an in-memory slot store whose flips are atomic under one mutex.
type memSlots struct {
	mu    sync.Mutex
	days  map[string]*models.Availability
	flips int
}

func newMemSlots() *memSlots { return &memSlots{days: map[string]*models.Availability{}} }

func dayKey(doctorID, date string) string { return doctorID + "|" + date }

func (m *memSlots) Create(_ context.Context, a *models.Availability) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.days[dayKey(a.DoctorID, a.Date)]; ok {
		return utils.ErrDuplicateAvailability
	}
	cp := *a
	cp.Slots = append([]models.Slot(nil), a.Slots...)
	m.days[dayKey(a.DoctorID, a.Date)] = &cp
	return nil
}

func (m *memSlots) GetByDoctorAndDate(_ context.Context, doctorID, date string) (*models.Availability, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.days[dayKey(doctorID, date)]
	if !ok {
		return nil, utils.ErrAvailabilityNotFound
	}
	cp := *a
	cp.Slots = append([]models.Slot(nil), a.Slots...)
	return &cp, nil
}

func (m *memSlots) flip(doctorID, date, slotTime string, to bool) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.days[dayKey(doctorID, date)]
	if !ok {
		return false
	}
	for i := range a.Slots {
		if a.Slots[i].Time == slotTime && a.Slots[i].IsBooked != to {
			a.Slots[i].IsBooked = to
			m.flips++
			return true
		}
	}
	return false
}

func (m *memSlots) ClaimSlot(_ context.Context, doctorID, date, slotTime string) (bool, error) {
	return m.flip(doctorID, date, slotTime, true), nil
}

func (m *memSlots) ReleaseSlot(_ context.Context, doctorID, date, slotTime string) (bool, error) {
	return m.flip(doctorID, date, slotTime, false), nil
}

func (m *memSlots) EnsureIndexes(context.Context) error { return nil }

func (m *memSlots) isBooked(doctorID, date, slotTime string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.days[dayKey(doctorID, date)].Slots {
		if s.Time == slotTime {
			return s.IsBooked
		}
	}
	return false
}

// memAppointments mirrors the conditional updates of the Mongo repository.
type memAppointments struct {
	mu   sync.Mutex
	byID map[string]*models.Appointment
}

func newMemAppointments() *memAppointments {
	return &memAppointments{byID: map[string]*models.Appointment{}}
}

func (m *memAppointments) Create(_ context.Context, a *models.Appointment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.byID {
		if existing.Status == models.StatusBooked && existing.DoctorID == a.DoctorID &&
			existing.Date == a.Date && existing.SlotTime == a.SlotTime {
			return utils.ErrSlotAlreadyBooked
		}
	}
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	a.CreatedAt = time.Now()
	a.UpdatedAt = a.CreatedAt
	cp := *a
	m.byID[a.ID] = &cp
	return nil
}

func (m *memAppointments) GetByID(_ context.Context, id string) (*models.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.byID[id]
	if !ok {
		return nil, utils.ErrAppointmentNotFound
	}
	cp := *a
	return &cp, nil
}

func (m *memAppointments) list(match func(*models.Appointment) bool) []models.Appointment {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Appointment{}
	for _, a := range m.byID {
		if match(a) {
			out = append(out, *a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (m *memAppointments) ListByDoctor(_ context.Context, doctorID string) ([]models.Appointment, error) {
	return m.list(func(a *models.Appointment) bool { return a.DoctorID == doctorID }), nil
}

func (m *memAppointments) ListByPatient(_ context.Context, patientID string) ([]models.Appointment, error) {
	return m.list(func(a *models.Appointment) bool { return a.PatientID == patientID }), nil
}

func (m *memAppointments) update(id string, match func(*models.Appointment) bool, apply func(*models.Appointment)) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.byID[id]
	if !ok || !match(a) {
		return false
	}
	apply(a)
	return true
}

func (m *memAppointments) MarkPaid(_ context.Context, id string) (bool, error) {
	return m.update(id,
		func(a *models.Appointment) bool {
			return a.Status == models.StatusBooked && a.PaymentStatus == models.PaymentPending
		},
		func(a *models.Appointment) { a.PaymentStatus = models.PaymentPaid }), nil
}

func (m *memAppointments) MarkCancelled(_ context.Context, id, patientID string) (bool, error) {
	return m.update(id,
		func(a *models.Appointment) bool { return a.PatientID == patientID && a.Status == models.StatusBooked },
		func(a *models.Appointment) { a.Status = models.StatusCancelled }), nil
}

func (m *memAppointments) MarkCompleted(_ context.Context, id, doctorID string) (bool, error) {
	return m.update(id,
		func(a *models.Appointment) bool { return a.DoctorID == doctorID && a.Status == models.StatusBooked },
		func(a *models.Appointment) { a.Status = models.StatusCompleted }), nil
}

func (m *memAppointments) DeletePending(_ context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.byID[id]
	if !ok || a.Status != models.StatusBooked || a.PaymentStatus != models.PaymentPending {
		return false, nil
	}
	delete(m.byID, id)
	return true, nil
}

func (m *memAppointments) EnsureIndexes(context.Context) error { return nil }

func (m *memAppointments) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.byID)
}

type memDoctors map[string]*models.Doctor

func (m memDoctors) GetByID(_ context.Context, id string) (*models.Doctor, error) {
	d, ok := m[id]
	if !ok {
		return nil, utils.ErrDoctorNotFound
	}
	return d, nil
}

func (m memDoctors) Create(_ context.Context, d *models.Doctor) error {
	m[d.ID] = d
	return nil
}

type recordedTimeout struct {
	appointmentID string
	after         time.Duration
}

type fakeTimeouts struct {
	mu        sync.Mutex
	scheduled []recordedTimeout
	err       error
}

func (f *fakeTimeouts) SchedulePaymentTimeout(_ context.Context, appointmentID string, after time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.scheduled = append(f.scheduled, recordedTimeout{appointmentID, after})
	return nil
}

// hookSlots runs afterRelease once, right after the first ReleaseSlot, to interleave another
// operation into the middle of a multi-step call.
type hookSlots struct {
	*memSlots
	afterRelease func()
}

func (h *hookSlots) ReleaseSlot(ctx context.Context, doctorID, date, slotTime string) (bool, error) {
	released, err := h.memSlots.ReleaseSlot(ctx, doctorID, date, slotTime)
	if hook := h.afterRelease; hook != nil {
		h.afterRelease = nil
		hook()
	}
	return released, err
}

package booking

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"medislot/models"
	"medislot/services/locks"
	"medislot/utils"
)

const (
	doctorID = "doc-1"
	day      = "2025-03-10"
)

type fixture struct {
	svc          *DefaultBookingService
	slots        *memSlots
	appointments *memAppointments
	timeouts     *fakeTimeouts
	locks        *locks.Manager
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	slots := newMemSlots()
	err := slots.Create(context.Background(), &models.Availability{
		DoctorID: doctorID,
		Date:     day,
		Slots: []models.Slot{
			{Time: "09:00"}, {Time: "09:15"}, {Time: "09:30"}, {Time: "09:45"},
		},
	})
	if err != nil {
		t.Fatalf("seed availability: %v", err)
	}
	f := &fixture{
		slots:        slots,
		appointments: newMemAppointments(),
		timeouts:     &fakeTimeouts{},
		locks:        locks.NewManager(time.Minute, nil),
	}
	t.Cleanup(f.locks.Stop)
	f.svc = &DefaultBookingService{
		Slots:          f.slots,
		Appointments:   f.appointments,
		Doctors:        memDoctors{doctorID: {ID: doctorID, Role: models.RoleDoctor, ConsultationFee: 500}},
		Locks:          f.locks,
		Timeouts:       f.timeouts,
		PaymentTimeout: 15 * time.Minute,
		Logger:         zap.NewNop(),
	}
	return f
}

func request(slot string) models.BookingRequest {
	return models.BookingRequest{DoctorID: doctorID, Date: day, SlotTime: slot}
}

func (f *fixture) book(t *testing.T, patient, slot string) *models.Appointment {
	t.Helper()
	a, err := f.svc.Finalize(context.Background(), patient, request(slot))
	if err != nil {
		t.Fatalf("finalize %s for %s: %v", slot, patient, err)
	}
	return a
}

func TestFinalizeCreatesPendingAppointment(t *testing.T) {
	f := newFixture(t)
	a := f.book(t, "pat-1", "9:15")

	if a.SlotTime != "09:15" || a.Status != models.StatusBooked || a.PaymentStatus != models.PaymentPending {
		t.Fatalf("unexpected appointment %+v", a)
	}
	if a.Amount != 500 {
		t.Errorf("expected the consultation fee as amount, got %v", a.Amount)
	}
	if !f.slots.isBooked(doctorID, day, "09:15") {
		t.Errorf("slot should be booked")
	}
	if len(f.timeouts.scheduled) != 1 || f.timeouts.scheduled[0].appointmentID != a.ID ||
		f.timeouts.scheduled[0].after != 15*time.Minute {
		t.Errorf("expected one payment timeout for %s, got %+v", a.ID, f.timeouts.scheduled)
	}

	if _, err := f.svc.Finalize(context.Background(), "pat-2", request("09:15")); !errors.Is(err, utils.ErrSlotAlreadyBooked) {
		t.Errorf("expected SlotAlreadyBooked, got %v", err)
	}
}

func TestFinalizeConcurrentSingleWinner(t *testing.T) {
	f := newFixture(t)
	const n = 32

	var wg sync.WaitGroup
	results := make(chan error, n)
	start := make(chan struct{})
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			_, err := f.svc.Finalize(context.Background(), fmt.Sprintf("pat-%d", i), request("09:30"))
			results <- err
		}(i)
	}
	close(start)
	wg.Wait()
	close(results)

	wins, conflicts := 0, 0
	for err := range results {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, utils.ErrSlotAlreadyBooked):
			conflicts++
		default:
			t.Errorf("unexpected error %v", err)
		}
	}
	if wins != 1 || conflicts != n-1 {
		t.Fatalf("expected 1 winner and %d conflicts, got %d and %d", n-1, wins, conflicts)
	}
	if f.appointments.count() != 1 {
		t.Fatalf("expected exactly one appointment, got %d", f.appointments.count())
	}
}

func TestFinalizeRespectsForeignSoftLock(t *testing.T) {
	f := newFixture(t)
	key := models.LockKey{DoctorID: doctorID, Date: day, SlotTime: "09:00"}
	f.locks.Acquire(key, "pat-1")

	if _, err := f.svc.Finalize(context.Background(), "pat-2", request("09:00")); !errors.Is(err, utils.ErrSlotLocked) {
		t.Fatalf("expected SlotLocked, got %v", err)
	}
	if f.slots.isBooked(doctorID, day, "09:00") {
		t.Fatalf("slot must stay free after a locked rejection")
	}

	f.book(t, "pat-1", "09:00")
	if _, held := f.locks.Peek(key); held {
		t.Errorf("lock should be released after finalize")
	}
}

func TestFinalizeUnknownDoctorGivesSlotBack(t *testing.T) {
	f := newFixture(t)
	f.svc.Doctors = memDoctors{}

	if _, err := f.svc.Finalize(context.Background(), "pat-1", request("09:00")); !errors.Is(err, utils.ErrDoctorNotFound) {
		t.Fatalf("expected DoctorNotFound, got %v", err)
	}
	if f.slots.isBooked(doctorID, day, "09:00") {
		t.Errorf("slot should be released when no appointment could be created")
	}
}

func TestFinalizeValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cases := []struct {
		patient string
		req     models.BookingRequest
		want    error
	}{
		{"", request("09:00"), utils.ErrMissingField},
		{"pat-1", models.BookingRequest{Date: day, SlotTime: "09:00"}, utils.ErrMissingField},
		{"pat-1", models.BookingRequest{DoctorID: doctorID, Date: "tomorrow", SlotTime: "09:00"}, utils.ErrMissingField},
		{"pat-1", request("nine"), utils.ErrInvalidTimeFormat},
		{"pat-1", request("12:00"), utils.ErrSlotAlreadyBooked},
	}
	for _, tc := range cases {
		if _, err := f.svc.Finalize(ctx, tc.patient, tc.req); !errors.Is(err, tc.want) {
			t.Errorf("%+v: expected %v, got %v", tc.req, tc.want, err)
		}
	}
}

func TestFinalizeSurvivesTimeoutSchedulingFailure(t *testing.T) {
	f := newFixture(t)
	f.timeouts.err = errors.New("queue down")
	f.book(t, "pat-1", "09:00")
}

func TestLockSlot(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	lock, err := f.svc.LockSlot(ctx, "pat-1", request("09:00"))
	if err != nil {
		t.Fatalf("lock: %v", err)
	}
	if lock.OwnerID != "pat-1" || lock.Key.SlotTime != "09:00" {
		t.Errorf("unexpected lock %+v", lock)
	}
	if _, err := f.svc.LockSlot(ctx, "pat-2", request("09:00")); !errors.Is(err, utils.ErrSlotLocked) {
		t.Errorf("expected SlotLocked, got %v", err)
	}
	if released, _ := f.svc.UnlockSlot("pat-2", request("09:00")); released {
		t.Errorf("pat-2 must not unlock pat-1's slot")
	}
	if released, _ := f.svc.UnlockSlot("pat-1", request("09:00")); !released {
		t.Errorf("pat-1 should unlock its own slot")
	}

	f.book(t, "pat-3", "09:15")
	if _, err := f.svc.LockSlot(ctx, "pat-1", request("09:15")); !errors.Is(err, utils.ErrSlotAlreadyBooked) {
		t.Errorf("expected SlotAlreadyBooked for a booked slot, got %v", err)
	}
	if _, err := f.svc.LockSlot(ctx, "pat-1", request("18:00")); !errors.Is(err, utils.ErrAvailabilityNotFound) {
		t.Errorf("expected AvailabilityNotFound for an unknown slot, got %v", err)
	}
}

func TestRevert(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.book(t, "pat-1", "09:00")

	if err := f.svc.Revert(ctx, a.ID); err != nil {
		t.Fatalf("revert: %v", err)
	}
	if f.slots.isBooked(doctorID, day, "09:00") {
		t.Errorf("slot should be free after revert")
	}
	if _, err := f.svc.Get(ctx, a.ID); !errors.Is(err, utils.ErrAppointmentNotFound) {
		t.Errorf("appointment should be deleted, got %v", err)
	}

	flips := f.slots.flips
	if err := f.svc.Revert(ctx, a.ID); !errors.Is(err, utils.ErrAppointmentNotFound) {
		t.Fatalf("second revert should be NotFound, got %v", err)
	}
	if f.slots.flips != flips {
		t.Errorf("second revert touched the slot")
	}

	again := f.book(t, "pat-2", "09:00")
	if again.PatientID != "pat-2" {
		t.Errorf("slot should be bookable again")
	}
}

func TestRevertPaidIsRejected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.book(t, "pat-1", "09:00")

	if _, err := f.svc.ConfirmPayment(ctx, a.ID); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if err := f.svc.Revert(ctx, a.ID); !errors.Is(err, utils.ErrCannotRevertPaid) {
		t.Fatalf("expected CannotRevertPaid, got %v", err)
	}
	if !f.slots.isBooked(doctorID, day, "09:00") {
		t.Errorf("paid slot must stay booked")
	}
	if !IsSettled(utils.ErrCannotRevertPaid) || IsSettled(errors.New("boom")) {
		t.Errorf("IsSettled misclassifies errors")
	}
}

func TestRevertLosesRaceToCancel(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.book(t, "pat-1", "09:00")

	hooked := &hookSlots{memSlots: f.slots}
	f.svc.Slots = hooked
	hooked.afterRelease = func() {
		if _, err := f.svc.Cancel(ctx, "pat-1", a.ID); err != nil {
			t.Errorf("cancel between release and delete: %v", err)
		}
	}

	if err := f.svc.Revert(ctx, a.ID); !errors.Is(err, utils.ErrInvalidTransition) {
		t.Fatalf("expected InvalidTransition, got %v", err)
	}
	got, err := f.svc.Get(ctx, a.ID)
	if err != nil || got.Status != models.StatusCancelled {
		t.Fatalf("appointment should be cancelled, got %+v %v", got, err)
	}
	if f.slots.isBooked(doctorID, day, "09:00") {
		t.Fatalf("slot of a cancelled appointment must stay free")
	}

	f.svc.Slots = f.slots
	if again := f.book(t, "pat-2", "09:00"); again.PatientID != "pat-2" {
		t.Errorf("slot should be bookable again")
	}
}

func TestRevertLosesRaceToPayment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.book(t, "pat-1", "09:00")

	hooked := &hookSlots{memSlots: f.slots}
	f.svc.Slots = hooked
	hooked.afterRelease = func() {
		if _, err := f.svc.ConfirmPayment(ctx, a.ID); err != nil {
			t.Errorf("confirm between release and delete: %v", err)
		}
	}

	if err := f.svc.Revert(ctx, a.ID); !errors.Is(err, utils.ErrCannotRevertPaid) {
		t.Fatalf("expected CannotRevertPaid, got %v", err)
	}
	if !f.slots.isBooked(doctorID, day, "09:00") {
		t.Fatalf("slot of a paid appointment must be booked again")
	}
}

func TestConfirmPaymentIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.book(t, "pat-1", "09:00")

	for i := 0; i < 2; i++ {
		paid, err := f.svc.ConfirmPayment(ctx, a.ID)
		if err != nil {
			t.Fatalf("confirm %d: %v", i, err)
		}
		if paid.PaymentStatus != models.PaymentPaid {
			t.Fatalf("expected Paid, got %s", paid.PaymentStatus)
		}
	}

	if _, err := f.svc.ConfirmPayment(ctx, "missing"); !errors.Is(err, utils.ErrAppointmentNotFound) {
		t.Errorf("expected NotFound, got %v", err)
	}
}

func TestCancel(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.book(t, "pat-1", "09:00")

	if _, err := f.svc.Cancel(ctx, "pat-2", a.ID); !errors.Is(err, utils.ErrNotOwner) {
		t.Fatalf("expected NotOwner, got %v", err)
	}
	if ae, ok := utils.AsAppError(utils.ErrNotOwner); !ok || ae.Kind != utils.KindAuthorization {
		t.Fatalf("NotOwner must be an authorization error")
	}
	unchanged, _ := f.svc.Get(ctx, a.ID)
	if unchanged.Status != models.StatusBooked || !f.slots.isBooked(doctorID, day, "09:00") {
		t.Fatalf("non-owner cancel changed state")
	}

	cancelled, err := f.svc.Cancel(ctx, "pat-1", a.ID)
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if cancelled.Status != models.StatusCancelled {
		t.Errorf("expected Cancelled, got %s", cancelled.Status)
	}
	if f.slots.isBooked(doctorID, day, "09:00") {
		t.Errorf("cancel should free the slot")
	}
	if _, err := f.svc.Cancel(ctx, "pat-1", a.ID); !errors.Is(err, utils.ErrAlreadyCancelled) {
		t.Errorf("expected AlreadyCancelled, got %v", err)
	}
	if err := f.svc.Revert(ctx, a.ID); !errors.Is(err, utils.ErrInvalidTransition) {
		t.Errorf("reverting a cancelled appointment should be rejected, got %v", err)
	}

	f.book(t, "pat-2", "09:00")
}

func TestComplete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.book(t, "pat-1", "09:00")

	if _, err := f.svc.Complete(ctx, "doc-2", a.ID); !errors.Is(err, utils.ErrNotOwner) {
		t.Fatalf("expected NotOwner for another doctor, got %v", err)
	}
	done, err := f.svc.Complete(ctx, doctorID, a.ID)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if done.Status != models.StatusCompleted {
		t.Fatalf("expected Completed, got %s", done.Status)
	}
	if _, err := f.svc.Complete(ctx, doctorID, a.ID); err != nil {
		t.Errorf("completing twice should be a no-op, got %v", err)
	}
	if _, err := f.svc.Cancel(ctx, "pat-1", a.ID); !errors.Is(err, utils.ErrInvalidTransition) {
		t.Errorf("cancelling a completed appointment should fail, got %v", err)
	}

	b := f.book(t, "pat-1", "09:15")
	if _, err := f.svc.Cancel(ctx, "pat-1", b.ID); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if _, err := f.svc.Complete(ctx, doctorID, b.ID); !errors.Is(err, utils.ErrInvalidTransition) {
		t.Errorf("completing a cancelled appointment should fail, got %v", err)
	}
}

func TestLists(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.book(t, "pat-1", "09:00")
	f.book(t, "pat-2", "09:15")
	f.book(t, "pat-1", "09:30")

	mine, _ := f.svc.ListForPatient(ctx, "pat-1")
	if len(mine) != 2 {
		t.Errorf("expected 2 appointments for pat-1, got %d", len(mine))
	}
	all, _ := f.svc.ListForDoctor(ctx, doctorID)
	if len(all) != 3 {
		t.Errorf("expected 3 appointments for the doctor, got %d", len(all))
	}
}

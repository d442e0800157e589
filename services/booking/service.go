package booking

import (
	"context"
	"time"

	"go.uber.org/zap"

	appointmentRepo "medislot/database/repository/appointment"
	availabilityRepo "medislot/database/repository/availability"
	doctorRepo "medislot/database/repository/doctor"
	"medislot/models"
	"medislot/services/locks"
)

// TimeoutScheduler enqueues the deferred compensation for an unpaid appointment.
type TimeoutScheduler interface {
	SchedulePaymentTimeout(ctx context.Context, appointmentID string, after time.Duration) error
}

// BookingService claims slots and drives appointments through their lifecycle.
type BookingService interface {
	LockSlot(ctx context.Context, patientID string, req models.BookingRequest) (models.SoftLock, error)
	UnlockSlot(patientID string, req models.BookingRequest) (bool, error)
	PeekLock(req models.BookingRequest) (models.SoftLock, bool, error)

	Finalize(ctx context.Context, patientID string, req models.BookingRequest) (*models.Appointment, error)
	ConfirmPayment(ctx context.Context, appointmentID string) (*models.Appointment, error)
	Revert(ctx context.Context, appointmentID string) error
	Cancel(ctx context.Context, patientID, appointmentID string) (*models.Appointment, error)
	Complete(ctx context.Context, doctorID, appointmentID string) (*models.Appointment, error)

	Get(ctx context.Context, appointmentID string) (*models.Appointment, error)
	ListForDoctor(ctx context.Context, doctorID string) ([]models.Appointment, error)
	ListForPatient(ctx context.Context, patientID string) ([]models.Appointment, error)
}

// DefaultBookingService is the production BookingService.
type DefaultBookingService struct {
	Slots          availabilityRepo.AvailabilityRepository
	Appointments   appointmentRepo.AppointmentRepository
	Doctors        doctorRepo.DoctorRepository
	Locks          *locks.Manager
	Timeouts       TimeoutScheduler
	PaymentTimeout time.Duration
	Logger         *zap.Logger
}

func (s *DefaultBookingService) Get(ctx context.Context, appointmentID string) (*models.Appointment, error) {
	return s.Appointments.GetByID(ctx, appointmentID)
}

func (s *DefaultBookingService) ListForDoctor(ctx context.Context, doctorID string) ([]models.Appointment, error) {
	return s.Appointments.ListByDoctor(ctx, doctorID)
}

func (s *DefaultBookingService) ListForPatient(ctx context.Context, patientID string) ([]models.Appointment, error) {
	return s.Appointments.ListByPatient(ctx, patientID)
}

func slotFields(doctorID, date, slotTime string) []zap.Field {
	return []zap.Field{
		zap.String("doctorId", doctorID),
		zap.String("date", date),
		zap.String("slotTime", slotTime),
	}
}

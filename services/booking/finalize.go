package booking

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"medislot/models"
	"medislot/utils"
)

// Finalize claims a slot for patientID and creates its appointment.
//
// The conditional flip in the slot store decides the race; the soft lock check in front of it only
// turns away callers early. Writes are ordered slot, then appointment, then lock release. A crash
// between the flip and the insert leaves a booked slot with no appointment.
func (s *DefaultBookingService) Finalize(ctx context.Context, patientID string, req models.BookingRequest) (*models.Appointment, error) {
	if patientID == "" {
		return nil, utils.ErrMissingField.WithMessage("patient identity is required")
	}
	req, err := normalizeRequest(req)
	if err != nil {
		return nil, err
	}
	key := lockKey(req)
	fields := slotFields(req.DoctorID, req.Date, req.SlotTime)

	if s.Locks != nil {
		if lock, held := s.Locks.Peek(key); held && lock.OwnerID != patientID {
			return nil, utils.ErrSlotLocked
		}
	}

	claimed, err := s.Slots.ClaimSlot(ctx, req.DoctorID, req.Date, req.SlotTime)
	if err != nil {
		return nil, err
	}
	if !claimed {
		return nil, utils.ErrSlotAlreadyBooked
	}

	doctor, err := s.Doctors.GetByID(ctx, req.DoctorID)
	if err != nil {
		s.unclaim(ctx, req, fields)
		return nil, err
	}

	appointment := &models.Appointment{
		PatientID:     patientID,
		DoctorID:      req.DoctorID,
		Date:          req.Date,
		SlotTime:      req.SlotTime,
		Amount:        doctor.ConsultationFee,
		Status:        models.StatusBooked,
		PaymentStatus: models.PaymentPending,
	}
	if err := s.Appointments.Create(ctx, appointment); err != nil {
		// A duplicate live appointment means the slot really is taken; leave it booked.
		if !errors.Is(err, utils.ErrSlotAlreadyBooked) {
			s.unclaim(ctx, req, fields)
		}
		return nil, err
	}

	if s.Locks != nil {
		s.Locks.Release(key)
	}

	if s.Timeouts != nil {
		if err := s.Timeouts.SchedulePaymentTimeout(ctx, appointment.ID, s.PaymentTimeout); err != nil {
			s.Logger.Warn("failed to schedule payment timeout",
				append(fields, zap.String("appointmentId", appointment.ID), zap.Error(err))...)
		}
	}

	s.Logger.Info("appointment booked",
		append(fields, zap.String("appointmentId", appointment.ID), zap.String("patientId", patientID))...)
	return appointment, nil
}

// unclaim gives back a slot this call flipped but could not attach an appointment to.
func (s *DefaultBookingService) unclaim(ctx context.Context, req models.BookingRequest, fields []zap.Field) {
	released, err := s.Slots.ReleaseSlot(context.WithoutCancel(ctx), req.DoctorID, req.Date, req.SlotTime)
	if err != nil || !released {
		s.Logger.Error("orphaned booked slot: claimed without an appointment",
			append(fields, zap.Bool("released", released), zap.Error(err))...)
	}
}

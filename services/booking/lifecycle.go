package booking

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"medislot/models"
	"medislot/utils"
)

// ConfirmPayment moves a pending appointment to Paid. Confirming an already paid appointment
// returns it unchanged.
func (s *DefaultBookingService) ConfirmPayment(ctx context.Context, appointmentID string) (*models.Appointment, error) {
	updated, err := s.Appointments.MarkPaid(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	appointment, err := s.Appointments.GetByID(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if updated {
		s.Logger.Info("payment confirmed", zap.String("appointmentId", appointmentID))
		return appointment, nil
	}
	if appointment.PaymentStatus == models.PaymentPaid {
		return appointment, nil
	}
	return nil, utils.ErrInvalidTransition.WithMessage("appointment %s is %s and cannot be paid", appointmentID, appointment.Status)
}

// Revert undoes a pending booking: the slot is freed first, then the appointment is deleted.
// A second revert of the same id fails with NotFound.
func (s *DefaultBookingService) Revert(ctx context.Context, appointmentID string) error {
	appointment, err := s.Appointments.GetByID(ctx, appointmentID)
	if err != nil {
		return err
	}
	if appointment.PaymentStatus == models.PaymentPaid {
		return utils.ErrCannotRevertPaid
	}
	if appointment.Status != models.StatusBooked {
		return utils.ErrInvalidTransition.WithMessage("appointment %s is %s and cannot be reverted", appointmentID, appointment.Status)
	}
	fields := append(slotFields(appointment.DoctorID, appointment.Date, appointment.SlotTime),
		zap.String("appointmentId", appointmentID))

	released, err := s.Slots.ReleaseSlot(ctx, appointment.DoctorID, appointment.Date, appointment.SlotTime)
	if err != nil {
		return err
	}
	if !released {
		s.Logger.Warn("revert found slot already free", fields...)
	}

	deleted, err := s.Appointments.DeletePending(ctx, appointmentID)
	if err != nil {
		return err
	}
	if deleted {
		s.Logger.Info("appointment reverted", fields...)
		return nil
	}

	// The appointment changed between our read and the delete. Only a still-live appointment (just
	// paid) owns the slot we freed; a cancelled or deleted one must leave it free.
	current, err := s.Appointments.GetByID(context.WithoutCancel(ctx), appointmentID)
	if err != nil {
		return err
	}
	if released && current.Status == models.StatusBooked {
		if ok, err := s.Slots.ClaimSlot(context.WithoutCancel(ctx), appointment.DoctorID, appointment.Date, appointment.SlotTime); err != nil || !ok {
			s.Logger.Error("failed to restore slot after lost revert race", append(fields, zap.Error(err))...)
		}
	}
	if current.PaymentStatus == models.PaymentPaid {
		return utils.ErrCannotRevertPaid
	}
	return utils.ErrInvalidTransition.WithMessage("appointment %s changed during revert", appointmentID)
}

// Cancel lets the booking patient give up an appointment. The status flips before the slot is freed
// so the slot is never open while a live appointment still points at it.
func (s *DefaultBookingService) Cancel(ctx context.Context, patientID, appointmentID string) (*models.Appointment, error) {
	appointment, err := s.Appointments.GetByID(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if appointment.PatientID != patientID {
		return nil, utils.ErrNotOwner
	}
	if err := cancellable(appointment); err != nil {
		return nil, err
	}

	updated, err := s.Appointments.MarkCancelled(ctx, appointmentID, patientID)
	if err != nil {
		return nil, err
	}
	if !updated {
		current, err := s.Appointments.GetByID(ctx, appointmentID)
		if err != nil {
			return nil, err
		}
		if err := cancellable(current); err != nil {
			return nil, err
		}
		return nil, utils.ErrInvalidTransition.WithMessage("appointment %s changed during cancel", appointmentID)
	}
	appointment.Status = models.StatusCancelled

	fields := append(slotFields(appointment.DoctorID, appointment.Date, appointment.SlotTime),
		zap.String("appointmentId", appointmentID))
	released, err := s.Slots.ReleaseSlot(context.WithoutCancel(ctx), appointment.DoctorID, appointment.Date, appointment.SlotTime)
	if err != nil {
		s.Logger.Error("appointment cancelled but slot not freed", append(fields, zap.Error(err))...)
		return appointment, fmt.Errorf("free slot after cancel: %w", err)
	}
	if !released {
		s.Logger.Warn("cancelled appointment's slot was already free", fields...)
	}

	s.Logger.Info("appointment cancelled", fields...)
	return appointment, nil
}

func cancellable(appointment *models.Appointment) error {
	switch appointment.Status {
	case models.StatusCancelled:
		return utils.ErrAlreadyCancelled
	case models.StatusCompleted:
		return utils.ErrInvalidTransition.WithMessage("appointment %s is already completed", appointment.ID)
	}
	return nil
}

// Complete marks a doctor's appointment done. Completing twice is a no-op.
func (s *DefaultBookingService) Complete(ctx context.Context, doctorID, appointmentID string) (*models.Appointment, error) {
	appointment, err := s.Appointments.GetByID(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if appointment.DoctorID != doctorID {
		return nil, utils.ErrNotOwner.WithMessage("appointment does not belong to this doctor")
	}

	for attempt := 0; attempt < 2; attempt++ {
		switch appointment.Status {
		case models.StatusCompleted:
			return appointment, nil
		case models.StatusCancelled:
			return nil, utils.ErrInvalidTransition.WithMessage("appointment %s is cancelled", appointmentID)
		}

		updated, err := s.Appointments.MarkCompleted(ctx, appointmentID, doctorID)
		if err != nil {
			return nil, err
		}
		if updated {
			appointment.Status = models.StatusCompleted
			s.Logger.Info("appointment completed", zap.String("appointmentId", appointmentID))
			return appointment, nil
		}
		if appointment, err = s.Appointments.GetByID(ctx, appointmentID); err != nil {
			return nil, err
		}
	}
	return nil, utils.ErrInvalidTransition.WithMessage("appointment %s could not be completed", appointmentID)
}

// IsSettled reports whether err means a revert has nothing left to do.
func IsSettled(err error) bool {
	return errors.Is(err, utils.ErrAppointmentNotFound) ||
		errors.Is(err, utils.ErrCannotRevertPaid) ||
		errors.Is(err, utils.ErrInvalidTransition)
}

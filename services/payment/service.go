package payment

import (
	"context"
	"errors"
	"math"
	"strings"

	"go.uber.org/zap"

	"medislot/models"
	"medislot/services/booking"
	"medislot/utils"
)

// PaymentService connects the payment collaborator's signals to the appointment lifecycle.
type PaymentService interface {
	CreateOrder(ctx context.Context, patientID, appointmentID string) (*models.PaymentOrder, error)
	Verify(ctx context.Context, patientID string, req models.VerifyPaymentRequest) (*models.Appointment, error)
	Revert(ctx context.Context, patientID, appointmentID string) error
	HandleEvent(ctx context.Context, event models.PaymentEvent) error
}

type DefaultPaymentService struct {
	Bookings booking.BookingService
	Gateway  Gateway
	Dedup    Deduplicator
	Currency string
	Logger   *zap.Logger
}

func (s *DefaultPaymentService) owned(ctx context.Context, patientID, appointmentID string) (*models.Appointment, error) {
	if strings.TrimSpace(appointmentID) == "" {
		return nil, utils.ErrMissingField.WithMessage("appointmentId is required")
	}
	appointment, err := s.Bookings.Get(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if appointment.PatientID != patientID {
		return nil, utils.ErrNotOwner
	}
	return appointment, nil
}

// CreateOrder opens a gateway order for a pending appointment of patientID.
func (s *DefaultPaymentService) CreateOrder(ctx context.Context, patientID, appointmentID string) (*models.PaymentOrder, error) {
	appointment, err := s.owned(ctx, patientID, appointmentID)
	if err != nil {
		return nil, err
	}
	if appointment.Status != models.StatusBooked || appointment.PaymentStatus != models.PaymentPending {
		return nil, utils.ErrInvalidTransition.WithMessage("appointment %s is not awaiting payment", appointmentID)
	}

	amountMinor := int64(math.Round(appointment.Amount * 100))
	orderID, secret, err := s.Gateway.CreateOrder(ctx, appointmentID, amountMinor, s.Currency)
	if err != nil {
		s.Logger.Error("payment order creation failed", zap.String("appointmentId", appointmentID), zap.Error(err))
		return nil, err
	}

	s.Logger.Info("payment order created",
		zap.String("appointmentId", appointmentID),
		zap.String("orderId", orderID),
		zap.Int64("amountMinor", amountMinor))
	return &models.PaymentOrder{
		OrderID:       orderID,
		ClientSecret:  secret,
		AppointmentID: appointmentID,
		Amount:        appointment.Amount,
		AmountMinor:   amountMinor,
		Currency:      s.Currency,
	}, nil
}

// Verify asks the gateway about an order and marks the appointment paid once it settled.
func (s *DefaultPaymentService) Verify(ctx context.Context, patientID string, req models.VerifyPaymentRequest) (*models.Appointment, error) {
	appointment, err := s.owned(ctx, patientID, req.AppointmentID)
	if err != nil {
		return nil, err
	}
	if appointment.PaymentStatus == models.PaymentPaid {
		return appointment, nil
	}
	if strings.TrimSpace(req.OrderID) == "" {
		return nil, utils.ErrMissingField.WithMessage("orderId is required")
	}

	settled, err := s.Gateway.Verify(ctx, req.OrderID, req.AppointmentID)
	if err != nil {
		return nil, err
	}
	if !settled {
		return nil, utils.ErrPaymentNotConfirmed
	}
	return s.Bookings.ConfirmPayment(ctx, req.AppointmentID)
}

// Revert runs compensation for a payment the patient failed or dismissed.
func (s *DefaultPaymentService) Revert(ctx context.Context, patientID, appointmentID string) error {
	if _, err := s.owned(ctx, patientID, appointmentID); err != nil {
		return err
	}
	return s.Bookings.Revert(ctx, appointmentID)
}

// HandleEvent applies one signal from the payment collaborator. Events already seen are skipped, and
// compensation that has nothing left to do is treated as success.
func (s *DefaultPaymentService) HandleEvent(ctx context.Context, event models.PaymentEvent) error {
	logger := s.Logger.With(
		zap.String("eventId", event.EventID),
		zap.String("type", event.Type),
		zap.String("appointmentId", event.AppointmentID))

	if event.AppointmentID == "" {
		logger.Warn("payment event without appointment id dropped")
		return nil
	}

	if s.Dedup != nil && event.EventID != "" {
		first, err := s.Dedup.FirstSeen(ctx, event.EventID)
		if err != nil {
			logger.Warn("payment event dedup unavailable, processing anyway", zap.Error(err))
		} else if !first {
			logger.Debug("duplicate payment event skipped")
			return nil
		}
	}

	err := s.apply(ctx, event)
	if err != nil && s.Dedup != nil && event.EventID != "" {
		if ferr := s.Dedup.Forget(ctx, event.EventID); ferr != nil {
			logger.Warn("failed to clear dedup marker", zap.Error(ferr))
		}
	}
	if err != nil {
		logger.Error("payment event failed", zap.Error(err))
		return err
	}
	logger.Info("payment event applied")
	return nil
}

func (s *DefaultPaymentService) apply(ctx context.Context, event models.PaymentEvent) error {
	switch event.Type {
	case models.PaymentEventPaid:
		_, err := s.Bookings.ConfirmPayment(ctx, event.AppointmentID)
		if errors.Is(err, utils.ErrAppointmentNotFound) || errors.Is(err, utils.ErrInvalidTransition) {
			// Money arrived after the appointment was reverted or cancelled. Redelivery cannot fix
			// that, so the event is consumed and the payment needs a refund.
			s.Logger.Error("payment received for a settled appointment, refund required",
				zap.String("eventId", event.EventID),
				zap.String("appointmentId", event.AppointmentID),
				zap.Error(err))
			return nil
		}
		return err
	case models.PaymentEventFailed, models.PaymentEventDismissed:
		if err := s.Bookings.Revert(ctx, event.AppointmentID); err != nil && !booking.IsSettled(err) {
			return err
		}
		return nil
	default:
		s.Logger.Warn("unknown payment event type", zap.String("type", event.Type))
		return nil
	}
}

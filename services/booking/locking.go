package booking

import (
	"context"

	"go.uber.org/zap"

	"medislot/models"
	"medislot/utils"
)

// LockSlot takes the advisory lock for a slot that is still free in the store.
func (s *DefaultBookingService) LockSlot(ctx context.Context, patientID string, req models.BookingRequest) (models.SoftLock, error) {
	req, err := normalizeRequest(req)
	if err != nil {
		return models.SoftLock{}, err
	}

	availability, err := s.Slots.GetByDoctorAndDate(ctx, req.DoctorID, req.Date)
	if err != nil {
		return models.SoftLock{}, err
	}
	found := false
	for _, slot := range availability.Slots {
		if slot.Time != req.SlotTime {
			continue
		}
		if slot.IsBooked {
			return models.SoftLock{}, utils.ErrSlotAlreadyBooked
		}
		found = true
		break
	}
	if !found {
		return models.SoftLock{}, utils.ErrAvailabilityNotFound.WithMessage("no slot at %s on %s", req.SlotTime, req.Date)
	}

	lock, ok := s.Locks.Acquire(lockKey(req), patientID)
	if !ok {
		return lock, utils.ErrSlotLocked
	}
	s.Logger.Debug("slot locked", append(slotFields(req.DoctorID, req.Date, req.SlotTime), zap.String("patientId", patientID))...)
	return lock, nil
}

// UnlockSlot releases the caller's own lock. Releasing a lock held by someone else, or no lock, is a no-op.
func (s *DefaultBookingService) UnlockSlot(patientID string, req models.BookingRequest) (bool, error) {
	req, err := normalizeRequest(req)
	if err != nil {
		return false, err
	}
	return s.Locks.ReleaseOwned(lockKey(req), patientID), nil
}

func (s *DefaultBookingService) PeekLock(req models.BookingRequest) (models.SoftLock, bool, error) {
	req, err := normalizeRequest(req)
	if err != nil {
		return models.SoftLock{}, false, err
	}
	lock, ok := s.Locks.Peek(lockKey(req))
	return lock, ok, nil
}

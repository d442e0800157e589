package booking

import (
	"strings"

	"medislot/models"
	"medislot/services/schedule"
	"medislot/utils"
)

// normalizeRequest validates a slot address and rewrites its time into the stored "HH:MM" form.
func normalizeRequest(req models.BookingRequest) (models.BookingRequest, error) {
	req.DoctorID = strings.TrimSpace(req.DoctorID)
	if req.DoctorID == "" {
		return req, utils.ErrMissingField.WithMessage("doctorId is required")
	}
	if err := schedule.ValidateDate(req.Date); err != nil {
		return req, err
	}
	minutes, err := schedule.ParseClock(req.SlotTime)
	if err != nil {
		return req, err
	}
	req.SlotTime = schedule.FormatClock(minutes)
	return req, nil
}

func lockKey(req models.BookingRequest) models.LockKey {
	return models.LockKey{DoctorID: req.DoctorID, Date: req.Date, SlotTime: req.SlotTime}
}

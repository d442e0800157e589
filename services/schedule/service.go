package schedule

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	availabilityRepo "medislot/database/repository/availability"
	doctorRepo "medislot/database/repository/doctor"
	"medislot/models"
	"medislot/utils"
)

// ScheduleService manages doctors' day grids.
type ScheduleService interface {
	CreateAvailability(ctx context.Context, doctorID string, req models.CreateAvailabilityRequest) (*models.Availability, error)
	GetGrid(ctx context.Context, doctorID, date string) ([]models.Slot, error)
}

type DefaultScheduleService struct {
	Repo    availabilityRepo.AvailabilityRepository
	Doctors doctorRepo.DoctorRepository
	Logger  *zap.Logger
}

// ValidateDate checks a "2006-01-02" calendar date.
func ValidateDate(date string) error {
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return utils.ErrMissingField.WithMessage("date %q must be formatted as YYYY-MM-DD", date)
	}
	return nil
}

func (s *DefaultScheduleService) CreateAvailability(ctx context.Context, doctorID string, req models.CreateAvailabilityRequest) (*models.Availability, error) {
	if strings.TrimSpace(doctorID) == "" {
		return nil, utils.ErrMissingField.WithMessage("doctorId is required")
	}
	if err := ValidateDate(req.Date); err != nil {
		return nil, err
	}

	slots, err := Generate(req.StartTime, req.EndTime, req.BreakStart, req.BreakEnd)
	if err != nil {
		return nil, err
	}
	if len(slots) == 0 {
		return nil, utils.ErrEmptyGrid.WithMessage("no slots created between %s and %s", req.StartTime, req.EndTime)
	}

	if _, err := s.Doctors.GetByID(ctx, doctorID); err != nil {
		return nil, err
	}

	availability := &models.Availability{
		DoctorID: doctorID,
		Date:     req.Date,
		Slots:    slots,
	}
	if err := s.Repo.Create(ctx, availability); err != nil {
		return nil, err
	}

	s.Logger.Info("availability created",
		zap.String("doctorId", doctorID),
		zap.String("date", req.Date),
		zap.Int("slots", len(slots)))
	return availability, nil
}

func (s *DefaultScheduleService) GetGrid(ctx context.Context, doctorID, date string) ([]models.Slot, error) {
	availability, err := s.Repo.GetByDoctorAndDate(ctx, doctorID, date)
	if err != nil {
		return nil, fmt.Errorf("get grid: %w", err)
	}
	return availability.Slots, nil
}

package schedule

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"medislot/models"
	"medislot/utils"
)

const slotMinutes = int(models.SlotDuration / time.Minute)

// ParseClock converts "HH:MM" (or "H:MM") into minutes since midnight. "24:00" is accepted as end of day.
func ParseClock(value string) (int, error) {
	parts := strings.Split(strings.TrimSpace(value), ":")
	if len(parts) != 2 || len(parts[0]) < 1 || len(parts[0]) > 2 || len(parts[1]) != 2 {
		return 0, utils.ErrInvalidTimeFormat.WithMessage("invalid time %q, expected HH:MM", value)
	}
	hours, err := strconv.Atoi(parts[0])
	if err != nil || hours < 0 || hours > 24 {
		return 0, utils.ErrInvalidTimeFormat.WithMessage("invalid hour in %q", value)
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil || minutes < 0 || minutes > 59 {
		return 0, utils.ErrInvalidTimeFormat.WithMessage("invalid minute in %q", value)
	}
	if hours == 24 && minutes != 0 {
		return 0, utils.ErrInvalidTimeFormat.WithMessage("invalid time %q", value)
	}
	return hours*60 + minutes, nil
}

// FormatClock renders minutes since midnight as "HH:MM".
func FormatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// Generate builds the 15-minute grid between start and end. A slot is kept only if it ends at or
// before end. When both break bounds are given, slots starting inside [breakStart, breakEnd) are
// skipped; an empty break bound disables the filter, but a non-empty unparseable one is an error.
func Generate(start, end, breakStart, breakEnd string) ([]models.Slot, error) {
	startMin, err := ParseClock(start)
	if err != nil {
		return nil, err
	}
	endMin, err := ParseClock(end)
	if err != nil {
		return nil, err
	}

	hasBreakStart := strings.TrimSpace(breakStart) != ""
	hasBreakEnd := strings.TrimSpace(breakEnd) != ""
	var breakStartMin, breakEndMin int
	if hasBreakStart {
		if breakStartMin, err = ParseClock(breakStart); err != nil {
			return nil, err
		}
	}
	if hasBreakEnd {
		if breakEndMin, err = ParseClock(breakEnd); err != nil {
			return nil, err
		}
	}
	filterBreak := hasBreakStart && hasBreakEnd

	slots := []models.Slot{}
	for current := startMin; current+slotMinutes <= endMin; current += slotMinutes {
		if filterBreak && current >= breakStartMin && current < breakEndMin {
			continue
		}
		slots = append(slots, models.Slot{Time: FormatClock(current), IsBooked: false})
	}
	return slots, nil
}

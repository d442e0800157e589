package models

import "time"

// SlotDuration is the fixed length of a bookable slot.
const SlotDuration = 15 * time.Minute

// Slot is a single bookable unit inside a doctor's day.
type Slot struct {
	Time     string `bson:"time" json:"time"` // "HH:MM"
	IsBooked bool   `bson:"isBooked" json:"isBooked"`
}

// Availability is the schedule record for one doctor on one date.
// (doctorId, date) is unique.
type Availability struct {
	ID        string    `bson:"id" json:"id"`
	DoctorID  string    `bson:"doctorId" json:"doctorId"`
	Date      string    `bson:"date" json:"date"` // "2006-01-02"
	Slots     []Slot    `bson:"slots" json:"slots"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// CreateAvailabilityRequest is the payload for generating a day grid.
type CreateAvailabilityRequest struct {
	DoctorID   string `json:"doctorId"`
	Date       string `json:"date" binding:"required"`
	StartTime  string `json:"startTime" binding:"required"`
	EndTime    string `json:"endTime" binding:"required"`
	BreakStart string `json:"breakStart,omitempty"`
	BreakEnd   string `json:"breakEnd,omitempty"`
}

// FreeSlots returns the slots that are not booked, in grid order.
func (a Availability) FreeSlots() []Slot {
	free := make([]Slot, 0, len(a.Slots))
	for _, s := range a.Slots {
		if !s.IsBooked {
			free = append(free, s)
		}
	}
	return free
}

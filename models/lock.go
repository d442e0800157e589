package models

import (
	"fmt"
	"time"
)

// LockKey addresses one slot of one doctor's day.
type LockKey struct {
	DoctorID string `json:"doctorId"`
	Date     string `json:"date"`
	SlotTime string `json:"slotTime"`
}

func (k LockKey) String() string {
	return fmt.Sprintf("%s_%s_%s", k.DoctorID, k.Date, k.SlotTime)
}

// SoftLock is an advisory, in-memory reservation of a slot. It never decides a booking.
type SoftLock struct {
	Key        LockKey   `json:"key"`
	OwnerID    string    `json:"ownerId"`
	AcquiredAt time.Time `json:"acquiredAt"`
	ExpiresAt  time.Time `json:"expiresAt"`
}

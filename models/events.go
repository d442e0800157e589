package models

const (
	EventSlotLocked   = "slotLocked"
	EventSlotReleased = "slotReleased"
	EventLockSuccess  = "lockSuccess"
	EventLockFailed   = "lockFailed"
)

// SlotEvent is broadcast to every viewer of a doctor's day.
type SlotEvent struct {
	Type     string `json:"type"`
	DoctorID string `json:"doctorId"`
	Date     string `json:"date"`
	SlotTime string `json:"slotTime"`
}

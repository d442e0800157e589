package models

import "time"

type AppointmentStatus string

const (
	StatusBooked    AppointmentStatus = "Booked"
	StatusCancelled AppointmentStatus = "Cancelled"
	StatusCompleted AppointmentStatus = "Completed"
)

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "Pending"
	PaymentPaid    PaymentStatus = "Paid"
)

// Appointment is created only after its slot has been claimed.
type Appointment struct {
	ID            string            `bson:"id" json:"id"`
	PatientID     string            `bson:"patientId" json:"patientId"`
	DoctorID      string            `bson:"doctorId" json:"doctorId"`
	Date          string            `bson:"date" json:"date"`
	SlotTime      string            `bson:"slotTime" json:"slotTime"`
	Amount        float64           `bson:"amount" json:"amount"`
	Status        AppointmentStatus `bson:"status" json:"status"`
	PaymentStatus PaymentStatus     `bson:"paymentStatus" json:"paymentStatus"`
	CreatedAt     time.Time         `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time         `bson:"updatedAt" json:"updatedAt"`
}

// BookingRequest identifies the slot a patient wants to confirm or lock.
type BookingRequest struct {
	DoctorID string `json:"doctorId" binding:"required"`
	Date     string `json:"date" binding:"required"`
	SlotTime string `json:"slotTime" binding:"required"`
}

// AppointmentActionRequest carries the target of a lifecycle transition.
type AppointmentActionRequest struct {
	AppointmentID string `json:"appointmentId" binding:"required"`
}

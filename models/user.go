package models

import "time"

const (
	RolePatient = "patient"
	RoleDoctor  = "doctor"
	RoleAdmin   = "admin"
)

// Doctor is the subset of a user document the booking core reads.
type Doctor struct {
	ID              string    `bson:"id" json:"id"`
	Name            string    `bson:"name" json:"name"`
	Email           string    `bson:"email" json:"email"`
	PasswordHash    string    `bson:"password,omitempty" json:"-"`
	Role            string    `bson:"role" json:"role"`
	Specialization  string    `bson:"specialization,omitempty" json:"specialization,omitempty"`
	ConsultationFee float64   `bson:"consultationFee" json:"consultationFee"`
	CreatedAt       time.Time `bson:"createdAt" json:"createdAt"`
}

// Identity is the authenticated caller attached to a request.
type Identity struct {
	UserID string
	Role   string
}

// File: database/repository/availability/interface.go
package availabilityRepo

import (
	"context"

	"medislot/models"

	"go.mongodb.org/mongo-driver/mongo"
)

// AvailabilityRepository is the Slot Schedule Store: the single source of truth for whether a slot is taken.
type AvailabilityRepository interface {
	Create(ctx context.Context, availability *models.Availability) error
	GetByDoctorAndDate(ctx context.Context, doctorID, date string) (*models.Availability, error)
	// ClaimSlot flips the slot from free to booked in one atomic update and reports whether it did.
	ClaimSlot(ctx context.Context, doctorID, date, slotTime string) (bool, error)
	// ReleaseSlot flips the slot from booked to free and reports whether it did.
	ReleaseSlot(ctx context.Context, doctorID, date, slotTime string) (bool, error)
	EnsureIndexes(ctx context.Context) error
}

type mongoAvailabilityRepo struct {
	coll *mongo.Collection
}

// NewMongoAvailabilityRepo constructs a MongoDB-backed AvailabilityRepository.
func NewMongoAvailabilityRepo(db *mongo.Database) AvailabilityRepository {
	return &mongoAvailabilityRepo{
		coll: db.Collection("availabilities"),
	}
}

// File: database/repository/availability/crud.go
package availabilityRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"medislot/models"
	"medislot/utils"
)

func (r *mongoAvailabilityRepo) Create(ctx context.Context, availability *models.Availability) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if availability.ID == "" {
		availability.ID = uuid.New().String()
	}
	now := time.Now()
	availability.CreatedAt = now
	availability.UpdatedAt = now

	if _, err := r.coll.InsertOne(ctx, availability); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return utils.ErrDuplicateAvailability
		}
		return fmt.Errorf("failed to create availability: %w", err)
	}
	return nil
}

func (r *mongoAvailabilityRepo) GetByDoctorAndDate(ctx context.Context, doctorID, date string) (*models.Availability, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"doctorId": doctorID, "date": date}
	var availability models.Availability
	if err := r.coll.FindOne(ctx, filter).Decode(&availability); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, utils.ErrAvailabilityNotFound
		}
		return nil, fmt.Errorf("failed to fetch availability for doctor %s on %s: %w", doctorID, date, err)
	}
	return &availability, nil
}

package appointmentRepo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"medislot/models"
)

func (r *mongoAppointmentRepo) transition(ctx context.Context, filter, set bson.M) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	set["updatedAt"] = time.Now()
	res, err := r.coll.UpdateOne(ctx, filter, bson.M{"$set": set})
	if err != nil {
		return false, fmt.Errorf("failed to update appointment %v: %w", filter["id"], err)
	}
	return res.MatchedCount == 1, nil
}

func (r *mongoAppointmentRepo) MarkPaid(ctx context.Context, id string) (bool, error) {
	filter := bson.M{
		"id":            id,
		"status":        models.StatusBooked,
		"paymentStatus": models.PaymentPending,
	}
	return r.transition(ctx, filter, bson.M{"paymentStatus": models.PaymentPaid})
}

func (r *mongoAppointmentRepo) MarkCancelled(ctx context.Context, id, patientID string) (bool, error) {
	filter := bson.M{
		"id":        id,
		"patientId": patientID,
		"status":    models.StatusBooked,
	}
	return r.transition(ctx, filter, bson.M{"status": models.StatusCancelled})
}

func (r *mongoAppointmentRepo) MarkCompleted(ctx context.Context, id, doctorID string) (bool, error) {
	filter := bson.M{
		"id":       id,
		"doctorId": doctorID,
		"status":   models.StatusBooked,
	}
	return r.transition(ctx, filter, bson.M{"status": models.StatusCompleted})
}

func (r *mongoAppointmentRepo) DeletePending(ctx context.Context, id string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"id":            id,
		"status":        models.StatusBooked,
		"paymentStatus": models.PaymentPending,
	}
	res, err := r.coll.DeleteOne(ctx, filter)
	if err != nil {
		return false, fmt.Errorf("failed to delete appointment %s: %w", id, err)
	}
	return res.DeletedCount == 1, nil
}

package availabilityRepo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
)

// flipSlot sets isBooked to `to` on the slot at slotTime, but only if it currently equals !to.
// The match and the write happen in a single document update, which is what serializes
// competing bookings across requests and instances.
func (r *mongoAvailabilityRepo) flipSlot(ctx context.Context, doctorID, date, slotTime string, to bool) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"doctorId": doctorID,
		"date":     date,
		"slots": bson.M{
			"$elemMatch": bson.M{
				"time":     slotTime,
				"isBooked": !to,
			},
		},
	}
	update := bson.M{
		"$set": bson.M{
			"slots.$.isBooked": to,
			"updatedAt":        time.Now(),
		},
	}

	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, fmt.Errorf("failed to update slot %s for doctor %s on %s: %w", slotTime, doctorID, date, err)
	}
	return res.MatchedCount == 1, nil
}

func (r *mongoAvailabilityRepo) ClaimSlot(ctx context.Context, doctorID, date, slotTime string) (bool, error) {
	return r.flipSlot(ctx, doctorID, date, slotTime, true)
}

func (r *mongoAvailabilityRepo) ReleaseSlot(ctx context.Context, doctorID, date, slotTime string) (bool, error) {
	return r.flipSlot(ctx, doctorID, date, slotTime, false)
}

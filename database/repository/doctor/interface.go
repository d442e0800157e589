package doctorRepo

import (
	"context"

	"medislot/models"

	"go.mongodb.org/mongo-driver/mongo"
)

// DoctorRepository reads doctor profiles out of the users collection.
type DoctorRepository interface {
	GetByID(ctx context.Context, id string) (*models.Doctor, error)
	Create(ctx context.Context, doctor *models.Doctor) error
}

type mongoDoctorRepo struct {
	coll *mongo.Collection
}

// NewMongoDoctorRepo constructs a MongoDB-backed DoctorRepository.
func NewMongoDoctorRepo(db *mongo.Database) DoctorRepository {
	return &mongoDoctorRepo{
		coll: db.Collection("users"),
	}
}

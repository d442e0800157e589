package appointmentRepo

import (
	"context"

	"medislot/models"

	"go.mongodb.org/mongo-driver/mongo"
)

// AppointmentRepository persists appointments. Every state change is a conditional update so that
// concurrent transitions on the same appointment cannot both apply.
type AppointmentRepository interface {
	Create(ctx context.Context, appointment *models.Appointment) error
	GetByID(ctx context.Context, id string) (*models.Appointment, error)
	ListByDoctor(ctx context.Context, doctorID string) ([]models.Appointment, error)
	ListByPatient(ctx context.Context, patientID string) ([]models.Appointment, error)

	// MarkPaid moves a Booked+Pending appointment to Paid.
	MarkPaid(ctx context.Context, id string) (bool, error)
	// MarkCancelled moves a Booked appointment owned by patientID to Cancelled.
	MarkCancelled(ctx context.Context, id, patientID string) (bool, error)
	// MarkCompleted moves a Booked appointment of doctorID to Completed.
	MarkCompleted(ctx context.Context, id, doctorID string) (bool, error)
	// DeletePending removes a Booked+Pending appointment.
	DeletePending(ctx context.Context, id string) (bool, error)

	EnsureIndexes(ctx context.Context) error
}

type mongoAppointmentRepo struct {
	coll *mongo.Collection
}

// NewMongoAppointmentRepo constructs a MongoDB-backed AppointmentRepository.
func NewMongoAppointmentRepo(db *mongo.Database) AppointmentRepository {
	return &mongoAppointmentRepo{
		coll: db.Collection("appointments"),
	}
}

package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"medislot/models"
)

const TypePaymentTimeout = "appointment:payment_timeout"

// NewPaymentTimeoutTask builds the delayed compensation task for an appointment.
func NewPaymentTimeoutTask(appointmentID string, after time.Duration) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(models.PaymentTimeoutPayload{AppointmentID: appointmentID})
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypePaymentTimeout, b)
	opts := []asynq.Option{
		asynq.ProcessIn(after),
		asynq.TaskID(TypePaymentTimeout + ":" + appointmentID),
		asynq.MaxRetry(5),
	}
	return task, opts, nil
}

// ParsePaymentTimeoutTask reads the payload of a TypePaymentTimeout task.
func ParsePaymentTimeoutTask(task *asynq.Task) (models.PaymentTimeoutPayload, error) {
	var p models.PaymentTimeoutPayload
	if err := json.Unmarshal(task.Payload(), &p); err != nil {
		return p, fmt.Errorf("invalid payment timeout payload: %w", err)
	}
	if p.AppointmentID == "" {
		return p, fmt.Errorf("payment timeout payload without appointment id")
	}
	return p, nil
}

// Enqueuer is the subset of *asynq.Client used to schedule tasks.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// TimeoutScheduler schedules payment timeouts on an asynq queue.
type TimeoutScheduler struct {
	Client Enqueuer
}

func (s *TimeoutScheduler) SchedulePaymentTimeout(ctx context.Context, appointmentID string, after time.Duration) error {
	task, opts, err := NewPaymentTimeoutTask(appointmentID, after)
	if err != nil {
		return err
	}
	if _, err := s.Client.EnqueueContext(ctx, task, opts...); err != nil {
		return fmt.Errorf("enqueue payment timeout for %s: %w", appointmentID, err)
	}
	return nil
}

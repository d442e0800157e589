package cron

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"medislot/config"
	"medislot/services/booking"
	"medislot/services/tasks"
)

// Reverter is the compensation entry point the worker drives.
type Reverter interface {
	Revert(ctx context.Context, appointmentID string) error
}

func queueRedisOpts() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	}
}

// NewQueueClient returns the asynq client that schedules payment timeouts.
func NewQueueClient() *asynq.Client {
	return asynq.NewClient(queueRedisOpts())
}

// InitPaymentTimeoutWorker runs the async worker in background and returns it for shutdown.
func InitPaymentTimeoutWorker(ctx context.Context, reverter Reverter, logger *zap.Logger) *asynq.Server {
	srv := asynq.NewServer(
		queueRedisOpts(),
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypePaymentTimeout, HandlePaymentTimeout(reverter, logger))

	go monitorQueueRedis(ctx, logger)

	go func() {
		logger.Info("starting payment timeout worker")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			err := srv.Run(mux)
			if err == nil {
				return
			}
			logger.Error("payment timeout worker failed to start",
				zap.Int("attempt", attempts), zap.Int("maxAttempts", maxAttempts), zap.Error(err))
			if attempts == maxAttempts {
				logger.Fatal("payment timeout worker gave up")
			}
			time.Sleep(time.Duration(attempts*2) * time.Second)
		}
	}()
	return srv
}

// HandlePaymentTimeout reverts an appointment whose payment never arrived. An appointment that was
// paid, cancelled or already reverted needs nothing more.
func HandlePaymentTimeout(reverter Reverter, logger *zap.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		p, err := tasks.ParsePaymentTimeoutTask(task)
		if err != nil {
			logger.Error("dropping payment timeout task", zap.Error(err))
			return asynq.SkipRetry
		}

		err = reverter.Revert(ctx, p.AppointmentID)
		switch {
		case err == nil:
			logger.Info("unpaid appointment reverted", zap.String("appointmentId", p.AppointmentID))
			return nil
		case booking.IsSettled(err):
			logger.Debug("payment timeout found nothing to revert",
				zap.String("appointmentId", p.AppointmentID), zap.Error(err))
			return nil
		default:
			logger.Error("payment timeout revert failed", zap.String("appointmentId", p.AppointmentID), zap.Error(err))
			return err
		}
	}
}

// monitorQueueRedis pings the queue's Redis periodically to surface failures at runtime.
func monitorQueueRedis(ctx context.Context, logger *zap.Logger) {
	client := redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	})
	defer client.Close()

	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := client.Ping(ctx).Err(); err != nil {
				logger.Warn("queue redis connection lost", zap.Error(err))
			}
		}
	}
}

package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"golang.org/x/crypto/bcrypt"

	"medislot/config"
	"medislot/database"
	availabilityRepo "medislot/database/repository/availability"
	doctorRepo "medislot/database/repository/doctor"
	"medislot/models"
	"medislot/services/schedule"
	"medislot/utils"
)

func main() {
	config.LoadConfig()

	// Initialize the database connection.
	database.InitDB()
	db := database.DB()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	doctors := doctorRepo.NewMongoDoctorRepo(db)
	availability := availabilityRepo.NewMongoAvailabilityRepo(db)
	if err := availability.EnsureIndexes(ctx); err != nil {
		log.Fatalf("Failed to ensure availability indexes: %v", err)
	}

	// Clear the previous seed doctor and its days.
	const doctorID = "doc-seed-1"
	if _, err := db.Collection("users").DeleteMany(ctx, bson.M{"id": doctorID}); err != nil {
		log.Fatalf("Failed to clear seed doctor: %v", err)
	}
	if _, err := db.Collection("availabilities").DeleteMany(ctx, bson.M{"doctorId": doctorID}); err != nil {
		log.Fatalf("Failed to clear seed availability: %v", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte("$Password1234"), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}
	doctor := &models.Doctor{
		ID:              doctorID,
		Name:            "Dr. Seed",
		Email:           "doctor@example.com",
		PasswordHash:    string(hashed),
		Specialization:  "General Medicine",
		ConsultationFee: 500,
	}
	if err := doctors.Create(ctx, doctor); err != nil {
		log.Fatalf("Failed to insert doctor: %v", err)
	}

	// A morning and afternoon session with a lunch break for the next 7 days.
	svc := &schedule.DefaultScheduleService{Repo: availability, Doctors: doctors, Logger: utils.GetLogger()}
	today := time.Now()
	for i := 0; i < 7; i++ {
		date := today.AddDate(0, 0, i).Format("2006-01-02")
		req := models.CreateAvailabilityRequest{
			Date:       date,
			StartTime:  "09:00",
			EndTime:    "17:00",
			BreakStart: "13:00",
			BreakEnd:   "14:00",
		}
		if _, err := svc.CreateAvailability(ctx, doctorID, req); err != nil && !errors.Is(err, utils.ErrDuplicateAvailability) {
			log.Fatalf("Failed to create availability for %s: %v", date, err)
		}
	}

	fmt.Printf("Seeded doctor %s with 7 days of availability\n", doctorID)
	for _, who := range []struct{ id, role string }{
		{doctorID, models.RoleDoctor},
		{"pat-seed-1", models.RolePatient},
		{"adm-seed-1", models.RoleAdmin},
	} {
		token, err := utils.GenerateToken(who.id, who.role, 24*time.Hour)
		if err != nil {
			log.Fatalf("failed to sign token: %v", err)
		}
		fmt.Printf("%-8s %s\n", who.role, token)
	}
}

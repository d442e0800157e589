package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"medislot/middleware"
	"medislot/models"
	"medislot/services/schedule"
	"medislot/utils"
)

type AvailabilityHandler struct {
	Service schedule.ScheduleService
}

// CreateOwnAvailabilityHandler lets a doctor publish a day grid for itself.
func (h *AvailabilityHandler) CreateOwnAvailabilityHandler(c *gin.Context) {
	var req models.CreateAvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	h.create(c, middleware.Identity(c).UserID, req)
}

// CreateAvailabilityForDoctorHandler lets an admin publish a day grid for any existing doctor.
func (h *AvailabilityHandler) CreateAvailabilityForDoctorHandler(c *gin.Context) {
	var req models.CreateAvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	h.create(c, req.DoctorID, req)
}

func (h *AvailabilityHandler) create(c *gin.Context, doctorID string, req models.CreateAvailabilityRequest) {
	availability, err := h.Service.CreateAvailability(c.Request.Context(), doctorID, req)
	if err != nil {
		utils.WriteError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message":      "Availability created",
		"availability": availability,
	})
}

// GetGridHandler returns the day grid; ?available=true keeps only free slots.
func (h *AvailabilityHandler) GetGridHandler(c *gin.Context) {
	doctorID := c.Param("doctorId")
	date := c.Param("date")

	slots, err := h.Service.GetGrid(c.Request.Context(), doctorID, date)
	if err != nil {
		utils.WriteError(c, err)
		return
	}
	if c.Query("available") == "true" {
		slots = models.Availability{Slots: slots}.FreeSlots()
	}
	c.JSON(http.StatusOK, gin.H{
		"doctorId": doctorID,
		"date":     date,
		"slots":    slots,
	})
}

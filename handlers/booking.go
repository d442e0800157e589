package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"medislot/middleware"
	"medislot/models"
	"medislot/services/booking"
	"medislot/utils"
)

type BookingHandler struct {
	Service booking.BookingService
}

// LockSlotHandler answers lockSuccess or lockFailed; viewers learn about it through slotLocked.
func (h *BookingHandler) LockSlotHandler(c *gin.Context) {
	var req models.BookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	lock, err := h.Service.LockSlot(c.Request.Context(), middleware.Identity(c).UserID, req)
	if err != nil {
		if errors.Is(err, utils.ErrSlotLocked) || errors.Is(err, utils.ErrSlotAlreadyBooked) {
			ae, _ := utils.AsAppError(err)
			c.JSON(http.StatusConflict, gin.H{
				"type":    models.EventLockFailed,
				"code":    ae.Code,
				"message": ae.Message,
			})
			return
		}
		utils.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"type":      models.EventLockSuccess,
		"doctorId":  lock.Key.DoctorID,
		"date":      lock.Key.Date,
		"slotTime":  lock.Key.SlotTime,
		"expiresAt": lock.ExpiresAt,
	})
}

func (h *BookingHandler) UnlockSlotHandler(c *gin.Context) {
	var req models.BookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	released, err := h.Service.UnlockSlot(middleware.Identity(c).UserID, req)
	if err != nil {
		utils.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"released": released})
}

func (h *BookingHandler) PeekLockHandler(c *gin.Context) {
	req := models.BookingRequest{
		DoctorID: c.Param("doctorId"),
		Date:     c.Param("date"),
		SlotTime: c.Param("slotTime"),
	}
	lock, held, err := h.Service.PeekLock(req)
	if err != nil {
		utils.WriteError(c, err)
		return
	}
	if !held {
		c.JSON(http.StatusOK, gin.H{"locked": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"locked":     true,
		"lockedByMe": lock.OwnerID == middleware.Identity(c).UserID,
		"expiresAt":  lock.ExpiresAt,
	})
}

// ConfirmBookingHandler finalizes the caller's booking of a slot.
func (h *BookingHandler) ConfirmBookingHandler(c *gin.Context) {
	var req models.BookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	appointment, err := h.Service.Finalize(c.Request.Context(), middleware.Identity(c).UserID, req)
	if err != nil {
		getLogger(c).Info("booking rejected",
			zap.String("doctorId", req.DoctorID),
			zap.String("date", req.Date),
			zap.String("slotTime", req.SlotTime),
			zap.Error(err))
		utils.WriteError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message":     "Appointment booked; complete payment to confirm",
		"appointment": appointment,
	})
}

func (h *BookingHandler) CancelHandler(c *gin.Context) {
	var req models.AppointmentActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	appointment, err := h.Service.Cancel(c.Request.Context(), middleware.Identity(c).UserID, req.AppointmentID)
	if err != nil {
		utils.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Appointment cancelled", "appointment": appointment})
}

func (h *BookingHandler) CompleteHandler(c *gin.Context) {
	var req models.AppointmentActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	appointment, err := h.Service.Complete(c.Request.Context(), middleware.Identity(c).UserID, req.AppointmentID)
	if err != nil {
		utils.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Appointment completed", "appointment": appointment})
}

// RevertHandler is the system-side compensation entry point.
func (h *BookingHandler) RevertHandler(c *gin.Context) {
	var req models.AppointmentActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	if err := h.Service.Revert(c.Request.Context(), req.AppointmentID); err != nil {
		utils.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Appointment reverted and slot released"})
}

func (h *BookingHandler) MyAppointmentsHandler(c *gin.Context) {
	appointments, err := h.Service.ListForPatient(c.Request.Context(), middleware.Identity(c).UserID)
	if err != nil {
		utils.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"appointments": appointments})
}

func (h *BookingHandler) DoctorAppointmentsHandler(c *gin.Context) {
	appointments, err := h.Service.ListForDoctor(c.Request.Context(), middleware.Identity(c).UserID)
	if err != nil {
		utils.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"appointments": appointments})
}

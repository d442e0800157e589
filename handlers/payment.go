package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"medislot/middleware"
	"medislot/models"
	"medislot/services/payment"
	"medislot/utils"
)

type PaymentHandler struct {
	Service payment.PaymentService
}

func (h *PaymentHandler) CreateOrderHandler(c *gin.Context) {
	var req models.AppointmentActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	order, err := h.Service.CreateOrder(c.Request.Context(), middleware.Identity(c).UserID, req.AppointmentID)
	if err != nil {
		utils.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *PaymentHandler) VerifyHandler(c *gin.Context) {
	var req models.VerifyPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	appointment, err := h.Service.Verify(c.Request.Context(), middleware.Identity(c).UserID, req)
	if err != nil {
		utils.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Payment confirmed", "appointment": appointment})
}

// RevertHandler handles a payment the patient failed or dismissed.
func (h *PaymentHandler) RevertHandler(c *gin.Context) {
	var req models.AppointmentActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	if err := h.Service.Revert(c.Request.Context(), middleware.Identity(c).UserID, req.AppointmentID); err != nil {
		utils.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Payment cancelled and slot released"})
}

package models

// PaymentOrder is what a patient needs to complete a payment with the gateway.
type PaymentOrder struct {
	OrderID       string  `json:"orderId"`
	ClientSecret  string  `json:"clientSecret,omitempty"`
	AppointmentID string  `json:"appointmentId"`
	Amount        float64 `json:"amount"`
	AmountMinor   int64   `json:"amountMinor"`
	Currency      string  `json:"currency"`
}

type VerifyPaymentRequest struct {
	AppointmentID string `json:"appointmentId" binding:"required"`
	OrderID       string `json:"orderId"`
}

const (
	PaymentEventPaid      = "payment.paid"
	PaymentEventFailed    = "payment.failed"
	PaymentEventDismissed = "payment.dismissed"
)

// PaymentEvent is a signal from the payment collaborator.
type PaymentEvent struct {
	EventID       string `json:"eventId"`
	Type          string `json:"type"`
	AppointmentID string `json:"appointmentId"`
}

// PaymentTimeoutPayload is the body of the delayed compensation task.
type PaymentTimeoutPayload struct {
	AppointmentID string `json:"appointmentId"`
}

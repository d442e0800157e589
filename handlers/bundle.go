package handlers

// HandlerBundle groups all endpoint handlers into one struct.
type HandlerBundle struct {
	Availability *AvailabilityHandler
	Booking      *BookingHandler
	Payment      *PaymentHandler
	Realtime     *RealtimeHandler
	Health       *HealthHandler
}

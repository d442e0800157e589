package payment

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/paymentintent"
)

// Gateway is the external payment collaborator: it opens orders and reports whether they settled.
type Gateway interface {
	CreateOrder(ctx context.Context, appointmentID string, amountMinor int64, currency string) (orderID, clientSecret string, err error)
	Verify(ctx context.Context, orderID, appointmentID string) (bool, error)
}

// StripeGateway backs orders with Stripe PaymentIntents. stripe.Key must be set before use.
type StripeGateway struct{}

func (StripeGateway) CreateOrder(ctx context.Context, appointmentID string, amountMinor int64, currency string) (string, string, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amountMinor),
		Currency: stripe.String(currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx
	params.AddMetadata("appointmentId", appointmentID)

	intent, err := paymentintent.New(params)
	if err != nil {
		return "", "", fmt.Errorf("stripe create payment intent: %w", err)
	}
	return intent.ID, intent.ClientSecret, nil
}

func (StripeGateway) Verify(ctx context.Context, orderID, appointmentID string) (bool, error) {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx

	intent, err := paymentintent.Get(orderID, params)
	if err != nil {
		return false, fmt.Errorf("stripe fetch payment intent %s: %w", orderID, err)
	}
	if intent.Metadata["appointmentId"] != appointmentID {
		return false, nil
	}
	return intent.Status == stripe.PaymentIntentStatusSucceeded, nil
}

// SandboxGateway settles every order it issued. It is used when no Stripe key is configured.
type SandboxGateway struct {
	mu     sync.Mutex
	orders map[string]string
}

func NewSandboxGateway() *SandboxGateway {
	return &SandboxGateway{orders: make(map[string]string)}
}

func (g *SandboxGateway) CreateOrder(_ context.Context, appointmentID string, _ int64, _ string) (string, string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	orderID := "sandbox_" + uuid.New().String()
	g.orders[orderID] = appointmentID
	return orderID, orderID + "_secret", nil
}

func (g *SandboxGateway) Verify(_ context.Context, orderID, appointmentID string) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	owner, ok := g.orders[orderID]
	return ok && owner == appointmentID, nil
}

package payment

import (
	"context"
	"fmt"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/paymentintent"
	"github.com/stripe/stripe-go/v76/refund"
)

// StripeProvider implements Provider over the Stripe API.
type StripeProvider struct{}

// NewStripeProvider sets the API key and returns the provider.
func NewStripeProvider(apiKey string) *StripeProvider {
	stripe.Key = apiKey
	return &StripeProvider{}
}

func (p *StripeProvider) CreateIntent(ctx context.Context, amount int64, currency, bookingID string) (*Intent, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amount),
		Currency: stripe.String(currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.AddMetadata("bookingId", bookingID)

	pi, err := paymentintent.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe create intent: %w", err)
	}
	return &Intent{
		ID:           pi.ID,
		ClientSecret: pi.ClientSecret,
		Amount:       pi.Amount,
		Currency:     string(pi.Currency),
		Status:       string(pi.Status),
	}, nil
}

func (p *StripeProvider) Confirm(ctx context.Context, intentID string) (*Intent, error) {
	pi, err := paymentintent.Get(intentID, nil)
	if err != nil {
		return nil, fmt.Errorf("stripe get intent: %w", err)
	}
	if pi.Status != stripe.PaymentIntentStatusSucceeded &&
		pi.Status != stripe.PaymentIntentStatusRequiresCapture {
		return nil, fmt.Errorf("payment intent %s not settled (status %s)", intentID, pi.Status)
	}
	return &Intent{
		ID:       pi.ID,
		Amount:   pi.Amount,
		Currency: string(pi.Currency),
		Status:   string(pi.Status),
	}, nil
}

func (p *StripeProvider) Refund(ctx context.Context, intentID string, amount int64) error {
	params := &stripe.RefundParams{
		PaymentIntent: stripe.String(intentID),
	}
	if amount > 0 {
		params.Amount = stripe.Int64(amount)
	}
	if _, err := refund.New(params); err != nil {
		return fmt.Errorf("stripe refund: %w", err)
	}
	return nil
}

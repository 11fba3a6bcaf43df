// Package payment owns the money flow: intent creation, confirmation,
// refunds, and companion earnings summaries. All provider interaction
// goes through one Provider interface so the rest of the system never
// touches the gateway SDK directly.
package payment

import "context"

// Intent is the provider-neutral view of a payment intent.
type Intent struct {
	ID           string `json:"id"`
	ClientSecret string `json:"clientSecret,omitempty"`
	Amount       int64  `json:"amount"` // smallest currency unit
	Currency     string `json:"currency"`
	Status       string `json:"status"`
}

// Provider abstracts the payment gateway. Amounts are in the smallest
// currency unit (cents).
type Provider interface {
	CreateIntent(ctx context.Context, amount int64, currency, bookingID string) (*Intent, error)
	Confirm(ctx context.Context, intentID string) (*Intent, error)
	Refund(ctx context.Context, intentID string, amount int64) error
}

package payment

import (
	"context"
	"fmt"
	"sync"
)

// MockProvider is a deterministic in-memory Provider for development
// and tests. Intents confirm on first Confirm call.
type MockProvider struct {
	mu      sync.Mutex
	seq     int
	intents map[string]*Intent
	refunds map[string]int64
}

func NewMockProvider() *MockProvider {
	return &MockProvider{
		intents: make(map[string]*Intent),
		refunds: make(map[string]int64),
	}
}

func (p *MockProvider) CreateIntent(ctx context.Context, amount int64, currency, bookingID string) (*Intent, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.seq++
	in := &Intent{
		ID:           fmt.Sprintf("pi_mock_%d", p.seq),
		ClientSecret: fmt.Sprintf("pi_mock_%d_secret", p.seq),
		Amount:       amount,
		Currency:     currency,
		Status:       "requires_payment_method",
	}
	p.intents[in.ID] = in
	return in, nil
}

func (p *MockProvider) Confirm(ctx context.Context, intentID string) (*Intent, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	in, ok := p.intents[intentID]
	if !ok {
		return nil, fmt.Errorf("unknown payment intent %s", intentID)
	}
	in.Status = "succeeded"
	return in, nil
}

func (p *MockProvider) Refund(ctx context.Context, intentID string, amount int64) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.intents[intentID]; !ok {
		return fmt.Errorf("unknown payment intent %s", intentID)
	}
	p.refunds[intentID] += amount
	return nil
}

// Refunded reports the total refunded against an intent.
func (p *MockProvider) Refunded(intentID string) int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.refunds[intentID]
}

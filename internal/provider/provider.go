package provider

import (
	"context"

	"album-bot/internal/domain"
)

// PaymentProvider is the outbound/inbound contract with the payment gateway.
type PaymentProvider interface {
	// GetName returns the provider name.
	GetName() string

	// InitializePayment performs the single outbound payment-initiation
	// call and returns the hosted checkout URL. No retries happen here;
	// a failed attempt surfaces to the caller.
	InitializePayment(ctx context.Context, req *domain.PaymentRequest) (*InitResult, error)

	// ParseCallback parses an inbound provider callback body.
	ParseCallback(payload []byte) (*CallbackResult, error)
}

type InitResult struct {
	CheckoutURL string
	Message     string
}

type CallbackResult struct {
	Status  string
	TxRef   string
	Success bool
	RawData map[string]interface{}
}

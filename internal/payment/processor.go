// Package payment is a stand-in for a payment gateway. It validates the
// request the way a gateway would reject it and issues a transaction
// reference; no money moves and card data is never stored.
package payment

import (
	"context"
	"fmt"
	"time"

	"github.com/Domenick1991/travelbooking/internal/domain"
	"github.com/google/uuid"
)

const (
	MethodCreditCard = "CreditCard"
	MethodPayPal     = "PayPal"
)

// PayPalStatusCancel is what the simulated PayPal checkout returns when the user backs out.
const PayPalStatusCancel = "cancel"

type Details struct {
	CardNumber   string
	CVV          string
	ExpiryMonth  int
	ExpiryYear   int
	PayPalStatus string
}

type Result struct {
	Method               string
	TransactionReference string
}

type Processor interface {
	Process(ctx context.Context, bookingID, amountCents int64, method string, details Details) (*Result, error)
}

type StubProcessor struct {
	now func() time.Time
}

func NewStubProcessor() *StubProcessor {
	return &StubProcessor{now: time.Now}
}

func (p *StubProcessor) Process(_ context.Context, _ int64, amountCents int64, method string, d Details) (*Result, error) {
	if amountCents < 0 {
		return nil, fmt.Errorf("%w: negative amount", domain.ErrValidation)
	}

	switch method {
	case MethodCreditCard:
		if d.CardNumber == "" || d.CVV == "" {
			return nil, fmt.Errorf("%w: credit card information is required", domain.ErrPaymentDeclined)
		}
		if d.ExpiryMonth < 1 || d.ExpiryMonth > 12 {
			return nil, fmt.Errorf("%w: invalid expiry month", domain.ErrPaymentDeclined)
		}
		if cardExpired(d.ExpiryYear, time.Month(d.ExpiryMonth), p.now()) {
			return nil, fmt.Errorf("%w: card has expired", domain.ErrPaymentDeclined)
		}
		return &Result{Method: MethodCreditCard, TransactionReference: "CC-" + uuid.NewString()}, nil
	case MethodPayPal:
		if d.PayPalStatus == PayPalStatusCancel {
			return nil, fmt.Errorf("%w: paypal payment was cancelled", domain.ErrPaymentDeclined)
		}
		return &Result{Method: MethodPayPal, TransactionReference: "PAYPAL-" + uuid.NewString()}, nil
	default:
		return nil, fmt.Errorf("%w: invalid payment method %q", domain.ErrValidation, method)
	}
}

// cardExpired reports whether the last day of the expiry month is before today.
func cardExpired(year int, month time.Month, now time.Time) bool {
	lastDay := time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC)
	return lastDay.Before(domain.DateOf(now))
}

var _ Processor = (*StubProcessor)(nil)

package models

import "time"

type PaymentState string

const (
	PaymentInitiated PaymentState = "INITIATED"
	PaymentVerified  PaymentState = "VERIFIED"
	PaymentFailed    PaymentState = "FAILED"
	PaymentRefunded  PaymentState = "REFUNDED"
)

// Terminal reports whether no further transition is possible from s, apart
// from VERIFIED -> REFUNDED on an explicit refund.
func (s PaymentState) Terminal() bool {
	return s == PaymentFailed || s == PaymentRefunded || s == PaymentVerified
}

// PaymentTransaction is the coordinator's view of one payment. The gateway
// owns the authoritative state; a verify answer wins on disagreement.
type PaymentTransaction struct {
	ID             string       `json:"transactionId"`
	Amount         float64      `json:"amount"`
	RefundedAmount float64      `json:"refundedAmount,omitempty"`
	Currency       string       `json:"currency"`
	State          PaymentState `json:"state"`
	Correlation    string       `json:"correlation,omitempty"`
	CreatedAt      time.Time    `json:"createdAt"`
	UpdatedAt      time.Time    `json:"updatedAt"`
}

package models

import "time"

// PaymentStatus is the lifecycle state of one payment attempt. Transitions
// only move forward: none -> created -> paid.
type PaymentStatus string

const (
	PaymentStatusNone    PaymentStatus = "none"
	PaymentStatusCreated PaymentStatus = "created"
	PaymentStatusPaid    PaymentStatus = "paid"
)

// PaymentRecord tracks one payment attempt, keyed by the session/chat
// identifier embedded in the merchant transaction id. A verified webhook
// callback is the only writer of the paid status.
type PaymentRecord struct {
	SessionKey      string        `json:"sessionKey"`
	MerchantTransID string        `json:"merchantTransId"`
	Amount          string        `json:"amount"`
	Status          PaymentStatus `json:"status"`
	CreatedAt       time.Time     `json:"createdAt"`
	PaidAt          *time.Time    `json:"paidAt,omitempty"`
}

package domain

import (
	"time"
)

// Payment is one recorded amount against a set. Payments are immutable once
// created; corrections are new rows.
type Payment struct {
	ID          uint64    `json:"id"`
	SetID       uint64    `json:"set_id" gorm:"index"`
	Amount      float64   `json:"amount"`
	Currency    string    `json:"currency"`
	PaymentDate time.Time `json:"payment_date"`
	CreatedAt   time.Time `json:"created_at"`
}

// Payment statuses derived from cost and the paid total
const (
	PaymentStatusUnpaid  = "unpaid"
	PaymentStatusPartial = "partial"
	PaymentStatusPaid    = "paid"
)

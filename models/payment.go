package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Payment statuses. The schema stores a plain string; transition legality is
// enforced in code via CanTransition.
const (
	PaymentStatusPending   = "pending"
	PaymentStatusCompleted = "completed"
	PaymentStatusFailed    = "failed"
	PaymentStatusCancelled = "cancelled"
	PaymentStatusRefunded  = "refunded"
)

var PaymentStatuses = []string{
	PaymentStatusPending,
	PaymentStatusCompleted,
	PaymentStatusFailed,
	PaymentStatusCancelled,
	PaymentStatusRefunded,
}

// Currencies accepted at checkout.
var Currencies = []string{"USD", "EUR", "GBP", "CAD", "AUD"}

// allowedTransitions is the explicit state machine for payment status updates.
// The intake path writes a final status at creation time and never walks this
// table; it exists for the admin correction path (refunds).
var allowedTransitions = map[string][]string{
	PaymentStatusPending:   {PaymentStatusCompleted, PaymentStatusFailed, PaymentStatusCancelled},
	PaymentStatusCompleted: {PaymentStatusRefunded},
}

// CanTransition reports whether a payment may move from one status to another.
func CanTransition(from, to string) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// PaymentRecord is the dependent row of a ProfileSubmission. OrderID carries
// the unique constraint that makes retried submissions idempotent. Customer
// name/email are denormalized on purpose so the audit trail survives profile
// edits.
type PaymentRecord struct {
	PaymentID     string          `gorm:"primaryKey;size:36" json:"payment_id"`
	UserID        string          `gorm:"size:36;not null;index" json:"user_id"`
	OrderID       string          `gorm:"size:64;not null;uniqueIndex" json:"order_id"`
	CaptureID     string          `gorm:"size:64" json:"capture_id"`
	Amount        decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"amount"`
	Currency      string          `gorm:"size:3;not null" json:"currency"`
	PackageID     string          `gorm:"size:64" json:"package_id"`
	PackageName   string          `gorm:"size:128" json:"package_name"`
	CustomerEmail string          `gorm:"size:191;not null" json:"customer_email"`
	CustomerName  string          `gorm:"size:128" json:"customer_name"`
	Status        string          `gorm:"size:16;not null" json:"status"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

func (PaymentRecord) TableName() string {
	return "payment_records"
}

package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	PaymentStatusCompleted = "completed"
	PaymentStatusRejected  = "rejected"
)

// Payment represents a payment made by a customer against their active
// loans. Status is decided once at creation from the active-loan snapshot
// and never changes afterward.
type Payment struct {
	ID                 uuid.UUID       `json:"-" db:"id"`
	ExternalID         string          `json:"external_id" db:"external_id"`
	CustomerID         uuid.UUID       `json:"-" db:"customer_id"`
	CustomerExternalID string          `json:"customer_external_id" db:"customer_external_id"`
	TotalAmount        decimal.Decimal `json:"total_amount" db:"total_amount"`
	Status             string          `json:"status" db:"status"`
	PaidAt             time.Time       `json:"paid_at" db:"paid_at"`
	CreatedAt          time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at" db:"updated_at"`
}

// PaymentDetail records the portion of one payment allocated to one loan.
// Rows exist only for completed payments; at most one row per
// (payment, loan) pair is created per allocation run.
type PaymentDetail struct {
	ID        uuid.UUID       `json:"-" db:"id"`
	PaymentID uuid.UUID       `json:"-" db:"payment_id"`
	LoanID    uuid.UUID       `json:"-" db:"loan_id"`
	Amount    decimal.Decimal `json:"amount" db:"amount"`
	CreatedAt time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt time.Time       `json:"updated_at" db:"updated_at"`
}

// DTOs for requests and responses

type CreatePaymentRequest struct {
	ExternalID         string          `json:"external_id" validate:"required,max=60"`
	CustomerExternalID string          `json:"customer_external_id" validate:"required,max=60"`
	TotalAmount        decimal.Decimal `json:"total_amount" validate:"decimal_gt=0"`
}

// CustomerPaymentRecord is one row of the payments-by-customer view:
// a PaymentDetail joined with its Payment and Loan. A payment allocated
// across several loans yields several rows with the same payment identity.
type CustomerPaymentRecord struct {
	PaymentExternalID  string          `json:"payment_external_id" db:"payment_external_id"`
	CustomerExternalID string          `json:"customer_external_id" db:"customer_external_id"`
	LoanExternalID     string          `json:"loan_external_id" db:"loan_external_id"`
	PaymentDate        time.Time       `json:"payment_date" db:"payment_date"`
	Status             string          `json:"status" db:"status"`
	TotalAmount        decimal.Decimal `json:"total_amount" db:"total_amount"`
	PaymentAmount      decimal.Decimal `json:"payment_amount" db:"payment_amount"`
}

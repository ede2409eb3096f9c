package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	CustomerStatusActive   = "active"
	CustomerStatusInactive = "inactive"
)

// Customer represents a credit customer. Score is the credit limit: the
// maximum total outstanding (pending + active loans) the customer may carry.
type Customer struct {
	ID            uuid.UUID       `json:"-" db:"id"`
	ExternalID    string          `json:"external_id" db:"external_id"`
	Status        string          `json:"status" db:"status"`
	Score         decimal.Decimal `json:"score" db:"score"`
	PreapprovedAt time.Time       `json:"preapproved_at" db:"preapproved_at"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at" db:"updated_at"`
}

// DTOs for requests and responses

type CreateCustomerRequest struct {
	ExternalID string          `json:"external_id" validate:"required,max=60"`
	Score      decimal.Decimal `json:"score" validate:"decimal_gte=0"`
}

// CustomerBalance is the balance projection returned by the balance view:
// available_amount = score - total_debt, total_debt summed over pending
// and active loans.
type CustomerBalance struct {
	ExternalID      string          `json:"external_id"`
	Score           decimal.Decimal `json:"score"`
	AvailableAmount decimal.Decimal `json:"available_amount"`
	TotalDebt       decimal.Decimal `json:"total_debt"`
}

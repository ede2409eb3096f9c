package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	LoanStatusPending  = "pending"
	LoanStatusActive   = "active"
	LoanStatusRejected = "rejected"
	LoanStatusPaid     = "paid"
)

// Loan represents a loan drawn against a customer's credit limit.
// Outstanding starts equal to Amount and only ever decreases; the loan
// reaches paid exactly when outstanding hits zero during allocation.
type Loan struct {
	ID                 uuid.UUID       `json:"-" db:"id"`
	ExternalID         string          `json:"external_id" db:"external_id"`
	CustomerID         uuid.UUID       `json:"-" db:"customer_id"`
	CustomerExternalID string          `json:"customer_external_id" db:"customer_external_id"`
	Amount             decimal.Decimal `json:"amount" db:"amount"`
	Outstanding        decimal.Decimal `json:"outstanding" db:"outstanding"`
	Status             string          `json:"status" db:"status"`
	ContractVersion    *string         `json:"contract_version,omitempty" db:"contract_version"`
	MaximumPaymentDate *time.Time      `json:"maximum_payment_date,omitempty" db:"maximum_payment_date"`
	TakenAt            *time.Time      `json:"taken_at,omitempty" db:"taken_at"`
	CreatedAt          time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at" db:"updated_at"`
}

// loanTransitions holds the legal status transitions. Paid is reachable
// only from active and only as a side effect of allocation; it is never
// accepted as a caller-supplied target.
var loanTransitions = map[string][]string{
	LoanStatusPending:  {LoanStatusActive, LoanStatusRejected},
	LoanStatusActive:   {LoanStatusPaid},
	LoanStatusRejected: {},
	LoanStatusPaid:     {},
}

// CanTransitionTo reports whether moving the loan to the target status is
// a legal lifecycle transition.
func (l *Loan) CanTransitionTo(target string) bool {
	for _, next := range loanTransitions[l.Status] {
		if next == target {
			return true
		}
	}
	return false
}

// DTOs for requests and responses

type CreateLoanRequest struct {
	ExternalID         string          `json:"external_id" validate:"required,max=60"`
	CustomerExternalID string          `json:"customer_external_id" validate:"required,max=60"`
	Amount             decimal.Decimal `json:"amount" validate:"decimal_gt=0"`
	ContractVersion    *string         `json:"contract_version,omitempty" validate:"omitempty,max=30"`
	MaximumPaymentDate *time.Time      `json:"maximum_payment_date,omitempty"`
}

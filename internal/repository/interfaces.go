package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/camilozg/lending-engine/internal/domain"
)

// CustomerRepository defines the interface for customer data operations
type CustomerRepository interface {
	// Create creates a new customer
	Create(ctx context.Context, customer *domain.Customer) error

	// GetByExternalID retrieves a customer by its external ID
	GetByExternalID(ctx context.Context, externalID string) (*domain.Customer, error)
}

// LoanRepository defines the interface for loan data operations
type LoanRepository interface {
	// GetByExternalID retrieves a loan by its external ID
	GetByExternalID(ctx context.Context, externalID string) (*domain.Loan, error)

	// ListByCustomer retrieves all loans of a customer, any status
	ListByCustomer(ctx context.Context, customerExternalID string) ([]*domain.Loan, error)

	// SumOutstanding sums outstanding over the customer's loans in the
	// given statuses; zero when no loans match
	SumOutstanding(ctx context.Context, customerID uuid.UUID, statuses ...string) (decimal.Decimal, error)

	// Activate flips a pending loan to active and stamps taken_at. The
	// update is guarded on the current status still being pending; it
	// returns sql.ErrNoRows when the guard misses
	Activate(ctx context.Context, externalID string, takenAt time.Time) (*domain.Loan, error)

	// Reject flips a pending loan to rejected under the same guard
	Reject(ctx context.Context, externalID string) (*domain.Loan, error)

	// ListOverdue retrieves active loans whose maximum payment date has
	// passed as of the given time
	ListOverdue(ctx context.Context, asOf time.Time) ([]*domain.Loan, error)
}

// PaymentRepository defines the interface for payment data operations
type PaymentRepository interface {
	// GetByExternalID retrieves a payment by its external ID
	GetByExternalID(ctx context.Context, externalID string) (*domain.Payment, error)

	// ListDetailsByCustomer retrieves every allocation row of the
	// customer's payments, joined with payment and loan identity
	ListDetailsByCustomer(ctx context.Context, customerExternalID string) ([]*domain.CustomerPaymentRecord, error)
}

// Store hands out transactional units of work over the ledger tables.
type Store interface {
	Begin(ctx context.Context) (LedgerTx, error)
}

// LedgerTx is one atomic unit of work. Reads lock the rows they return,
// so the snapshot read is the snapshot mutated; Commit applies everything
// or Rollback discards everything.
type LedgerTx interface {
	// LockCustomer loads the customer row FOR UPDATE, serializing
	// originations and allocations touching the same customer
	LockCustomer(ctx context.Context, externalID string) (*domain.Customer, error)

	// LoansForUpdate loads the customer's loans in the given statuses
	// FOR UPDATE, ordered by creation time ascending
	LoansForUpdate(ctx context.Context, customerID uuid.UUID, statuses ...string) ([]*domain.Loan, error)

	// SumOutstanding sums outstanding within the transaction
	SumOutstanding(ctx context.Context, customerID uuid.UUID, statuses ...string) (decimal.Decimal, error)

	InsertLoan(ctx context.Context, loan *domain.Loan) error
	InsertPayment(ctx context.Context, payment *domain.Payment) error
	InsertPaymentDetail(ctx context.Context, detail *domain.PaymentDetail) error

	// UpdateLoanBalance persists a loan's outstanding and status
	UpdateLoanBalance(ctx context.Context, loan *domain.Loan) error

	Commit() error
	Rollback() error
}

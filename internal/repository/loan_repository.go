package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/camilozg/lending-engine/internal/domain"
)

const loanColumns = `
	l.id, l.external_id, l.customer_id, c.external_id AS customer_external_id,
	l.amount, l.outstanding, l.status, l.contract_version,
	l.maximum_payment_date, l.taken_at, l.created_at, l.updated_at
`

type loanRepository struct {
	db *sqlx.DB
}

func NewLoanRepository(db *sqlx.DB) LoanRepository {
	return &loanRepository{db: db}
}

func (r *loanRepository) GetByExternalID(ctx context.Context, externalID string) (*domain.Loan, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM loans l
		JOIN customers c ON c.id = l.customer_id
		WHERE l.external_id = $1
	`, loanColumns)

	var loan domain.Loan
	if err := r.db.GetContext(ctx, &loan, query, externalID); err != nil {
		return nil, err
	}

	return &loan, nil
}

func (r *loanRepository) ListByCustomer(ctx context.Context, customerExternalID string) ([]*domain.Loan, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM loans l
		JOIN customers c ON c.id = l.customer_id
		WHERE c.external_id = $1
		ORDER BY l.created_at ASC
	`, loanColumns)

	var loans []*domain.Loan
	if err := r.db.SelectContext(ctx, &loans, query, customerExternalID); err != nil {
		return nil, err
	}

	return loans, nil
}

func (r *loanRepository) SumOutstanding(ctx context.Context, customerID uuid.UUID, statuses ...string) (decimal.Decimal, error) {
	return sumOutstanding(ctx, r.db, customerID, statuses)
}

// Activate is a single-row optimistic update: the status predicate makes
// concurrent double-activation lose with sql.ErrNoRows instead of silently
// succeeding twice.
func (r *loanRepository) Activate(ctx context.Context, externalID string, takenAt time.Time) (*domain.Loan, error) {
	query := `
		UPDATE loans
		SET status = $2, taken_at = $3, updated_at = $4
		WHERE external_id = $1 AND status = $5
		RETURNING id
	`

	var id uuid.UUID
	err := r.db.GetContext(ctx, &id, query,
		externalID,
		domain.LoanStatusActive,
		takenAt,
		time.Now(),
		domain.LoanStatusPending,
	)
	if err != nil {
		return nil, err
	}

	return r.GetByExternalID(ctx, externalID)
}

func (r *loanRepository) Reject(ctx context.Context, externalID string) (*domain.Loan, error) {
	query := `
		UPDATE loans
		SET status = $2, updated_at = $3
		WHERE external_id = $1 AND status = $4
		RETURNING id
	`

	var id uuid.UUID
	err := r.db.GetContext(ctx, &id, query,
		externalID,
		domain.LoanStatusRejected,
		time.Now(),
		domain.LoanStatusPending,
	)
	if err != nil {
		return nil, err
	}

	return r.GetByExternalID(ctx, externalID)
}

func (r *loanRepository) ListOverdue(ctx context.Context, asOf time.Time) ([]*domain.Loan, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM loans l
		JOIN customers c ON c.id = l.customer_id
		WHERE l.status = $1 AND l.maximum_payment_date IS NOT NULL AND l.maximum_payment_date < $2
		ORDER BY l.maximum_payment_date ASC
	`, loanColumns)

	var loans []*domain.Loan
	if err := r.db.SelectContext(ctx, &loans, query, domain.LoanStatusActive, asOf); err != nil {
		return nil, err
	}

	return loans, nil
}

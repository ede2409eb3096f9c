package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/camilozg/lending-engine/internal/domain"
)

type ledgerStore struct {
	db *sqlx.DB
}

// NewStore creates a Store backed by the given database.
func NewStore(db *sqlx.DB) Store {
	return &ledgerStore{db: db}
}

func (s *ledgerStore) Begin(ctx context.Context) (LedgerTx, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &ledgerTx{tx: tx}, nil
}

type ledgerTx struct {
	tx *sqlx.Tx
}

func (t *ledgerTx) LockCustomer(ctx context.Context, externalID string) (*domain.Customer, error) {
	query := `
		SELECT id, external_id, status, score, preapproved_at, created_at, updated_at
		FROM customers
		WHERE external_id = $1
		FOR UPDATE
	`

	var customer domain.Customer
	if err := t.tx.GetContext(ctx, &customer, query, externalID); err != nil {
		return nil, err
	}

	return &customer, nil
}

func (t *ledgerTx) LoansForUpdate(ctx context.Context, customerID uuid.UUID, statuses ...string) ([]*domain.Loan, error) {
	query := fmt.Sprintf(`
		SELECT l.id, l.external_id, l.customer_id, c.external_id AS customer_external_id,
		       l.amount, l.outstanding, l.status, l.contract_version,
		       l.maximum_payment_date, l.taken_at, l.created_at, l.updated_at
		FROM loans l
		JOIN customers c ON c.id = l.customer_id
		WHERE l.customer_id = $1 AND l.status IN (%s)
		ORDER BY l.created_at ASC
		FOR UPDATE OF l
	`, statusPlaceholders(2, len(statuses)))

	var loans []*domain.Loan
	if err := t.tx.SelectContext(ctx, &loans, query, statusArgs(customerID, statuses)...); err != nil {
		return nil, err
	}

	return loans, nil
}

func (t *ledgerTx) SumOutstanding(ctx context.Context, customerID uuid.UUID, statuses ...string) (decimal.Decimal, error) {
	return sumOutstanding(ctx, t.tx, customerID, statuses)
}

func (t *ledgerTx) InsertLoan(ctx context.Context, loan *domain.Loan) error {
	query := `
		INSERT INTO loans (id, external_id, customer_id, amount, outstanding, status,
		                   contract_version, maximum_payment_date, taken_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := t.tx.ExecContext(ctx, query,
		loan.ID,
		loan.ExternalID,
		loan.CustomerID,
		loan.Amount,
		loan.Outstanding,
		loan.Status,
		loan.ContractVersion,
		loan.MaximumPaymentDate,
		loan.TakenAt,
		loan.CreatedAt,
		loan.UpdatedAt,
	)

	return err
}

func (t *ledgerTx) InsertPayment(ctx context.Context, payment *domain.Payment) error {
	query := `
		INSERT INTO payments (id, external_id, customer_id, total_amount, status, paid_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := t.tx.ExecContext(ctx, query,
		payment.ID,
		payment.ExternalID,
		payment.CustomerID,
		payment.TotalAmount,
		payment.Status,
		payment.PaidAt,
		payment.CreatedAt,
		payment.UpdatedAt,
	)

	return err
}

func (t *ledgerTx) InsertPaymentDetail(ctx context.Context, detail *domain.PaymentDetail) error {
	query := `
		INSERT INTO payment_details (id, payment_id, loan_id, amount, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := t.tx.ExecContext(ctx, query,
		detail.ID,
		detail.PaymentID,
		detail.LoanID,
		detail.Amount,
		detail.CreatedAt,
		detail.UpdatedAt,
	)

	return err
}

func (t *ledgerTx) UpdateLoanBalance(ctx context.Context, loan *domain.Loan) error {
	query := `
		UPDATE loans
		SET outstanding = $2, status = $3, updated_at = $4
		WHERE id = $1
	`

	_, err := t.tx.ExecContext(ctx, query,
		loan.ID,
		loan.Outstanding,
		loan.Status,
		time.Now(),
	)

	return err
}

func (t *ledgerTx) Commit() error {
	return t.tx.Commit()
}

func (t *ledgerTx) Rollback() error {
	return t.tx.Rollback()
}

// statusPlaceholders builds the $n placeholder list for a status IN
// clause starting at the given ordinal.
func statusPlaceholders(start, count int) string {
	placeholders := make([]string, count)
	for i := range placeholders {
		placeholders[i] = fmt.Sprintf("$%d", start+i)
	}
	return strings.Join(placeholders, ", ")
}

func statusArgs(customerID uuid.UUID, statuses []string) []interface{} {
	args := make([]interface{}, 0, len(statuses)+1)
	args = append(args, customerID)
	for _, status := range statuses {
		args = append(args, status)
	}
	return args
}

func sumOutstanding(ctx context.Context, q sqlx.QueryerContext, customerID uuid.UUID, statuses []string) (decimal.Decimal, error) {
	query := fmt.Sprintf(`
		SELECT COALESCE(SUM(outstanding), 0)
		FROM loans
		WHERE customer_id = $1 AND status IN (%s)
	`, statusPlaceholders(2, len(statuses)))

	var total decimal.Decimal
	if err := sqlx.GetContext(ctx, q, &total, query, statusArgs(customerID, statuses)...); err != nil {
		return decimal.Zero, err
	}

	return total, nil
}

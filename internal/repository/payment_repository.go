package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/camilozg/lending-engine/internal/domain"
)

type paymentRepository struct {
	db *sqlx.DB
}

func NewPaymentRepository(db *sqlx.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

func (r *paymentRepository) GetByExternalID(ctx context.Context, externalID string) (*domain.Payment, error) {
	query := `
		SELECT p.id, p.external_id, p.customer_id, c.external_id AS customer_external_id,
		       p.total_amount, p.status, p.paid_at, p.created_at, p.updated_at
		FROM payments p
		JOIN customers c ON c.id = p.customer_id
		WHERE p.external_id = $1
	`

	var payment domain.Payment
	if err := r.db.GetContext(ctx, &payment, query, externalID); err != nil {
		return nil, err
	}

	return &payment, nil
}

func (r *paymentRepository) ListDetailsByCustomer(ctx context.Context, customerExternalID string) ([]*domain.CustomerPaymentRecord, error) {
	query := `
		SELECT p.external_id AS payment_external_id,
		       c.external_id AS customer_external_id,
		       l.external_id AS loan_external_id,
		       p.paid_at AS payment_date,
		       p.status AS status,
		       p.total_amount AS total_amount,
		       d.amount AS payment_amount
		FROM payment_details d
		JOIN payments p ON p.id = d.payment_id
		JOIN customers c ON c.id = p.customer_id
		JOIN loans l ON l.id = d.loan_id
		WHERE c.external_id = $1
		ORDER BY p.paid_at ASC, l.created_at ASC
	`

	var records []*domain.CustomerPaymentRecord
	if err := r.db.SelectContext(ctx, &records, query, customerExternalID); err != nil {
		return nil, err
	}

	return records, nil
}

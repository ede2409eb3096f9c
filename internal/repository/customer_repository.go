package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/camilozg/lending-engine/internal/domain"
)

type customerRepository struct {
	db *sqlx.DB
}

func NewCustomerRepository(db *sqlx.DB) CustomerRepository {
	return &customerRepository{db: db}
}

func (r *customerRepository) Create(ctx context.Context, customer *domain.Customer) error {
	query := `
		INSERT INTO customers (id, external_id, status, score, preapproved_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.ExecContext(ctx, query,
		customer.ID,
		customer.ExternalID,
		customer.Status,
		customer.Score,
		customer.PreapprovedAt,
		customer.CreatedAt,
		customer.UpdatedAt,
	)

	return err
}

func (r *customerRepository) GetByExternalID(ctx context.Context, externalID string) (*domain.Customer, error) {
	query := `
		SELECT id, external_id, status, score, preapproved_at, created_at, updated_at
		FROM customers
		WHERE external_id = $1
	`

	var customer domain.Customer
	if err := r.db.GetContext(ctx, &customer, query, externalID); err != nil {
		return nil, err
	}

	return &customer, nil
}

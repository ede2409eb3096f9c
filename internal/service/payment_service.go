package service

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/camilozg/lending-engine/internal/domain"
	"github.com/camilozg/lending-engine/internal/repository"
	customError "github.com/camilozg/lending-engine/pkg/errors"
	"github.com/camilozg/lending-engine/pkg/utils"
)

type PaymentService struct {
	Store       repository.Store
	PaymentRepo repository.PaymentRepository
	Cache       BalanceCache
}

func NewPaymentService(
	store repository.Store,
	paymentRepo repository.PaymentRepository,
	cache BalanceCache,
) *PaymentService {
	return &PaymentService{
		Store:       store,
		PaymentRepo: paymentRepo,
		Cache:       cache,
	}
}

// Create applies a payment to the customer's active loans inside a single
// transaction.
//
// The outcome is decided once, up front, from the locked active-loan
// snapshot: a payment covered by the total active outstanding (boundary
// inclusive) completes and is allocated oldest loan first; a larger one is
// recorded as rejected and touches nothing. A customer with no active
// loans fails before any row is written.
func (s *PaymentService) Create(ctx context.Context, request *domain.CreatePaymentRequest) (*domain.Payment, error) {
	if !request.TotalAmount.IsPositive() {
		return nil, customError.WrapInvalidAmount("total_amount")
	}

	tx, err := s.Store.Begin(ctx)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	defer tx.Rollback()

	customer, err := tx.LockCustomer(ctx, request.CustomerExternalID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapCustomerNotFound(request.CustomerExternalID)
		}
		return nil, customError.WrapDatabaseError(err)
	}

	// Snapshot and lock the active loans, oldest first. Any loan in
	// active status is eligible, including one already at zero
	// outstanding.
	loans, err := tx.LoansForUpdate(ctx, customer.ID, domain.LoanStatusActive)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	if len(loans) == 0 {
		return nil, customError.WrapNoActiveLoans(customer.ExternalID)
	}

	balances := make([]decimal.Decimal, len(loans))
	for i, loan := range loans {
		balances[i] = loan.Outstanding
	}
	eligible := utils.SumOutstanding(balances)

	totalAmount := utils.RoundPaymentAmount(request.TotalAmount)

	status := domain.PaymentStatusRejected
	if totalAmount.LessThanOrEqual(eligible) {
		status = domain.PaymentStatusCompleted
	}

	now := time.Now()
	payment := &domain.Payment{
		ID:                 uuid.New(),
		ExternalID:         request.ExternalID,
		CustomerID:         customer.ID,
		CustomerExternalID: customer.ExternalID,
		TotalAmount:        totalAmount,
		Status:             status,
		PaidAt:             now,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	// The payment row is recorded for both outcomes; only a completed
	// payment allocates.
	if err := tx.InsertPayment(ctx, payment); err != nil {
		return nil, translateStoreError(err, request.ExternalID)
	}

	if status == domain.PaymentStatusCompleted {
		if err := s.allocate(ctx, tx, payment, loans); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	if status == domain.PaymentStatusCompleted {
		s.invalidateBalance(ctx, customer.ExternalID)
	}

	return payment, nil
}

// allocate distributes the payment across the locked snapshot in creation
// order, one detail row per touched loan. Loans past the exhausting point
// are left alone; a loan driven to zero flips to paid.
func (s *PaymentService) allocate(ctx context.Context, tx repository.LedgerTx, payment *domain.Payment, loans []*domain.Loan) error {
	remaining := payment.TotalAmount
	now := time.Now()

	for _, loan := range loans {
		if !remaining.IsPositive() {
			break
		}

		allocated := utils.MinDecimal(loan.Outstanding, remaining)
		loan.Outstanding = loan.Outstanding.Sub(allocated)
		remaining = remaining.Sub(allocated)

		detail := &domain.PaymentDetail{
			ID:        uuid.New(),
			PaymentID: payment.ID,
			LoanID:    loan.ID,
			Amount:    allocated,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := tx.InsertPaymentDetail(ctx, detail); err != nil {
			return customError.WrapDatabaseError(err)
		}

		if loan.Outstanding.IsZero() {
			loan.Status = domain.LoanStatusPaid
		}

		if err := tx.UpdateLoanBalance(ctx, loan); err != nil {
			return customError.WrapDatabaseError(err)
		}
	}

	return nil
}

// Get retrieves a payment by external ID.
func (s *PaymentService) Get(ctx context.Context, externalID string) (*domain.Payment, error) {
	payment, err := s.PaymentRepo.GetByExternalID(ctx, externalID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapPaymentNotFound(externalID)
		}
		return nil, customError.WrapDatabaseError(err)
	}

	return payment, nil
}

// ListByCustomer returns one row per allocation across all of the
// customer's payments.
func (s *PaymentService) ListByCustomer(ctx context.Context, customerExternalID string) ([]*domain.CustomerPaymentRecord, error) {
	records, err := s.PaymentRepo.ListDetailsByCustomer(ctx, customerExternalID)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	return records, nil
}

func (s *PaymentService) invalidateBalance(ctx context.Context, customerExternalID string) {
	if err := s.Cache.Invalidate(ctx, customerExternalID); err != nil {
		log.Printf("balance cache invalidation failed for %s: %v", customerExternalID, err)
	}
}

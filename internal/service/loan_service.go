package service

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/camilozg/lending-engine/internal/domain"
	"github.com/camilozg/lending-engine/internal/repository"
	customError "github.com/camilozg/lending-engine/pkg/errors"
	"github.com/camilozg/lending-engine/pkg/utils"
)

type LoanService struct {
	Store    repository.Store
	LoanRepo repository.LoanRepository
	Cache    BalanceCache
}

func NewLoanService(
	store repository.Store,
	loanRepo repository.LoanRepository,
	cache BalanceCache,
) *LoanService {
	return &LoanService{
		Store:    store,
		LoanRepo: loanRepo,
		Cache:    cache,
	}
}

// Create originates a loan. The credit check and the insert run in one
// transaction holding the customer row lock, so no concurrent origination
// for the same customer can interleave between evaluation and creation.
func (s *LoanService) Create(ctx context.Context, request *domain.CreateLoanRequest) (*domain.Loan, error) {
	if !request.Amount.IsPositive() {
		return nil, customError.WrapInvalidAmount("amount")
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

	amount := utils.RoundLoanAmount(request.Amount)

	outstanding, err := tx.SumOutstanding(ctx, customer.ID,
		domain.LoanStatusPending, domain.LoanStatusActive)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	if outstanding.Add(amount).GreaterThan(customer.Score) {
		return nil, customError.WrapCreditLimitExceeded(customer.ExternalID)
	}

	now := time.Now()
	loan := &domain.Loan{
		ID:                 uuid.New(),
		ExternalID:         request.ExternalID,
		CustomerID:         customer.ID,
		CustomerExternalID: customer.ExternalID,
		Amount:             amount,
		Outstanding:        amount,
		Status:             domain.LoanStatusPending,
		ContractVersion:    request.ContractVersion,
		MaximumPaymentDate: request.MaximumPaymentDate,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if err := tx.InsertLoan(ctx, loan); err != nil {
		return nil, translateStoreError(err, request.ExternalID)
	}

	if err := tx.Commit(); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	s.invalidateBalance(ctx, customer.ExternalID)

	return loan, nil
}

// Get retrieves a loan by external ID.
func (s *LoanService) Get(ctx context.Context, externalID string) (*domain.Loan, error) {
	loan, err := s.LoanRepo.GetByExternalID(ctx, externalID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapLoanNotFound(externalID)
		}
		return nil, customError.WrapDatabaseError(err)
	}

	return loan, nil
}

// ListByCustomer returns all loans of a customer, any status.
func (s *LoanService) ListByCustomer(ctx context.Context, customerExternalID string) ([]*domain.Loan, error) {
	loans, err := s.LoanRepo.ListByCustomer(ctx, customerExternalID)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	return loans, nil
}

// Activate moves a pending loan to active and stamps taken_at. The update
// is guarded on the status still being pending, so of two concurrent
// activations exactly one succeeds and the loser gets an illegal-transition
// error.
func (s *LoanService) Activate(ctx context.Context, externalID string) (*domain.Loan, error) {
	loan, err := s.LoanRepo.Activate(ctx, externalID, time.Now())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, s.explainMissedGuard(ctx, externalID, domain.LoanStatusActive)
		}
		return nil, translateStoreError(err, externalID)
	}

	return loan, nil
}

// Reject moves a pending loan to rejected, under the same optimistic guard
// as activation.
func (s *LoanService) Reject(ctx context.Context, externalID string) (*domain.Loan, error) {
	loan, err := s.LoanRepo.Reject(ctx, externalID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, s.explainMissedGuard(ctx, externalID, domain.LoanStatusRejected)
		}
		return nil, translateStoreError(err, externalID)
	}

	s.invalidateBalance(ctx, loan.CustomerExternalID)

	return loan, nil
}

// explainMissedGuard turns a missed optimistic status guard into the right
// error: the loan does not exist, sits in a status the transition is
// illegal from, or is being moved by a concurrent transaction.
func (s *LoanService) explainMissedGuard(ctx context.Context, externalID, target string) error {
	loan, err := s.LoanRepo.GetByExternalID(ctx, externalID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return customError.WrapLoanNotFound(externalID)
		}
		return customError.WrapDatabaseError(err)
	}

	// The guard cannot miss on a loan the refetch still shows eligible
	// unless another transaction holds the row mid-transition.
	if loan.CanTransitionTo(target) {
		return customError.WrapTransitionConflict(externalID)
	}

	return customError.WrapIllegalTransition(externalID, loan.Status, target)
}

func (s *LoanService) invalidateBalance(ctx context.Context, customerExternalID string) {
	if err := s.Cache.Invalidate(ctx, customerExternalID); err != nil {
		log.Printf("balance cache invalidation failed for %s: %v", customerExternalID, err)
	}
}

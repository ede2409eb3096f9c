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

// BalanceCache caches customer balance projections. A nil return from Get
// with no error is a miss. Cache failures degrade to the database; they
// never fail the request.
type BalanceCache interface {
	Get(ctx context.Context, externalID string) (*domain.CustomerBalance, error)
	Set(ctx context.Context, externalID string, balance *domain.CustomerBalance) error
	Invalidate(ctx context.Context, externalID string) error
}

type CustomerService struct {
	CustomerRepo repository.CustomerRepository
	LoanRepo     repository.LoanRepository
	Cache        BalanceCache
}

func NewCustomerService(
	customerRepo repository.CustomerRepository,
	loanRepo repository.LoanRepository,
	cache BalanceCache,
) *CustomerService {
	return &CustomerService{
		CustomerRepo: customerRepo,
		LoanRepo:     loanRepo,
		Cache:        cache,
	}
}

// Create registers a new customer with the given credit score. Customers
// start active and preapproved at creation time.
func (s *CustomerService) Create(ctx context.Context, request *domain.CreateCustomerRequest) (*domain.Customer, error) {
	now := time.Now()
	customer := &domain.Customer{
		ID:            uuid.New(),
		ExternalID:    request.ExternalID,
		Status:        domain.CustomerStatusActive,
		Score:         utils.RoundLoanAmount(request.Score),
		PreapprovedAt: now,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.CustomerRepo.Create(ctx, customer); err != nil {
		return nil, translateStoreError(err, request.ExternalID)
	}

	return customer, nil
}

// Get retrieves a customer by external ID.
func (s *CustomerService) Get(ctx context.Context, externalID string) (*domain.Customer, error) {
	customer, err := s.CustomerRepo.GetByExternalID(ctx, externalID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapCustomerNotFound(externalID)
		}
		return nil, customError.WrapDatabaseError(err)
	}

	return customer, nil
}

// GetBalance returns the customer's balance projection: total debt summed
// over pending and active loans, and the credit still available against
// the score. Served from the cache when possible.
func (s *CustomerService) GetBalance(ctx context.Context, externalID string) (*domain.CustomerBalance, error) {
	if cached, err := s.Cache.Get(ctx, externalID); err != nil {
		log.Printf("balance cache read failed for %s: %v", externalID, err)
	} else if cached != nil {
		return cached, nil
	}

	customer, err := s.Get(ctx, externalID)
	if err != nil {
		return nil, err
	}

	totalDebt, err := s.LoanRepo.SumOutstanding(ctx, customer.ID,
		domain.LoanStatusPending, domain.LoanStatusActive)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	balance := &domain.CustomerBalance{
		ExternalID:      customer.ExternalID,
		Score:           customer.Score,
		AvailableAmount: customer.Score.Sub(totalDebt),
		TotalDebt:       totalDebt,
	}

	if err := s.Cache.Set(ctx, externalID, balance); err != nil {
		log.Printf("balance cache write failed for %s: %v", externalID, err)
	}

	return balance, nil
}

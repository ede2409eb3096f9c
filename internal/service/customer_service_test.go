package service_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/camilozg/lending-engine/internal/domain"
	"github.com/camilozg/lending-engine/internal/repository/mocks"
	"github.com/camilozg/lending-engine/internal/service"
	customError "github.com/camilozg/lending-engine/pkg/errors"
)

func TestCreateCustomer(t *testing.T) {
	mockCustomerRepo := &mocks.MockCustomerRepository{}
	mockCustomerRepo.On("Create", mock.Anything, mock.MatchedBy(func(c *domain.Customer) bool {
		return c.ExternalID == "external_c01" &&
			c.Status == domain.CustomerStatusActive &&
			c.Score.Equal(decimal.NewFromInt(1000))
	})).Return(nil)

	svc := service.NewCustomerService(mockCustomerRepo, &mocks.MockLoanRepository{}, &mocks.MockBalanceCache{})

	customer, err := svc.Create(context.Background(), &domain.CreateCustomerRequest{
		ExternalID: "external_c01",
		Score:      decimal.NewFromInt(1000),
	})

	assert.NoError(t, err)
	assert.Equal(t, domain.CustomerStatusActive, customer.Status)
	assert.False(t, customer.PreapprovedAt.IsZero())

	mockCustomerRepo.AssertExpectations(t)
}

func TestCreateCustomer_DuplicateExternalID(t *testing.T) {
	mockCustomerRepo := &mocks.MockCustomerRepository{}
	mockCustomerRepo.On("Create", mock.Anything, mock.Anything).Return(&pq.Error{Code: "23505"})

	svc := service.NewCustomerService(mockCustomerRepo, &mocks.MockLoanRepository{}, &mocks.MockBalanceCache{})

	customer, err := svc.Create(context.Background(), &domain.CreateCustomerRequest{
		ExternalID: "external_c01",
		Score:      decimal.NewFromInt(1000),
	})

	assert.Error(t, err)
	assert.Nil(t, customer)

	var bizErr *customError.BusinessError
	assert.ErrorAs(t, err, &bizErr)
	assert.Equal(t, customError.ErrCodeAlreadyExists, bizErr.Code)
}

func TestGetCustomer_NotFound(t *testing.T) {
	mockCustomerRepo := &mocks.MockCustomerRepository{}
	mockCustomerRepo.On("GetByExternalID", mock.Anything, "external_c99").Return(nil, sql.ErrNoRows)

	svc := service.NewCustomerService(mockCustomerRepo, &mocks.MockLoanRepository{}, &mocks.MockBalanceCache{})

	customer, err := svc.Get(context.Background(), "external_c99")

	assert.Error(t, err)
	assert.Nil(t, customer)

	var bizErr *customError.BusinessError
	assert.ErrorAs(t, err, &bizErr)
	assert.Equal(t, customError.ErrCodeCustomerNotFound, bizErr.Code)
}

func TestGetBalance(t *testing.T) {
	customer := &domain.Customer{
		ID:         uuid.New(),
		ExternalID: "external_c01",
		Score:      decimal.NewFromInt(1000),
	}

	t.Run("cache miss computes and stores the balance", func(t *testing.T) {
		mockCustomerRepo := &mocks.MockCustomerRepository{}
		mockLoanRepo := &mocks.MockLoanRepository{}
		mockCache := &mocks.MockBalanceCache{}

		mockCache.On("Get", mock.Anything, customer.ExternalID).Return(nil, nil)
		mockCustomerRepo.On("GetByExternalID", mock.Anything, customer.ExternalID).Return(customer, nil)
		mockLoanRepo.On("SumOutstanding", mock.Anything, customer.ID,
			[]string{domain.LoanStatusPending, domain.LoanStatusActive}).
			Return(decimal.NewFromInt(900), nil)
		mockCache.On("Set", mock.Anything, customer.ExternalID, mock.MatchedBy(func(b *domain.CustomerBalance) bool {
			return b.TotalDebt.Equal(decimal.NewFromInt(900)) &&
				b.AvailableAmount.Equal(decimal.NewFromInt(100))
		})).Return(nil)

		svc := service.NewCustomerService(mockCustomerRepo, mockLoanRepo, mockCache)

		balance, err := svc.GetBalance(context.Background(), customer.ExternalID)

		assert.NoError(t, err)
		assert.True(t, balance.TotalDebt.Equal(decimal.NewFromInt(900)))
		assert.True(t, balance.AvailableAmount.Equal(decimal.NewFromInt(100)))
		assert.True(t, balance.Score.Equal(customer.Score))

		mockCache.AssertExpectations(t)
		mockLoanRepo.AssertExpectations(t)
	})

	t.Run("cache hit skips the database", func(t *testing.T) {
		mockCustomerRepo := &mocks.MockCustomerRepository{}
		mockLoanRepo := &mocks.MockLoanRepository{}
		mockCache := &mocks.MockBalanceCache{}

		cached := &domain.CustomerBalance{
			ExternalID:      customer.ExternalID,
			Score:           customer.Score,
			AvailableAmount: decimal.NewFromInt(100),
			TotalDebt:       decimal.NewFromInt(900),
		}
		mockCache.On("Get", mock.Anything, customer.ExternalID).Return(cached, nil)

		svc := service.NewCustomerService(mockCustomerRepo, mockLoanRepo, mockCache)

		balance, err := svc.GetBalance(context.Background(), customer.ExternalID)

		assert.NoError(t, err)
		assert.Equal(t, cached, balance)

		mockCustomerRepo.AssertNotCalled(t, "GetByExternalID", mock.Anything, mock.Anything)
		mockLoanRepo.AssertNotCalled(t, "SumOutstanding", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("no loans means zero debt, not an error", func(t *testing.T) {
		mockCustomerRepo := &mocks.MockCustomerRepository{}
		mockLoanRepo := &mocks.MockLoanRepository{}
		mockCache := &mocks.MockBalanceCache{}

		mockCache.On("Get", mock.Anything, customer.ExternalID).Return(nil, nil)
		mockCustomerRepo.On("GetByExternalID", mock.Anything, customer.ExternalID).Return(customer, nil)
		mockLoanRepo.On("SumOutstanding", mock.Anything, customer.ID,
			[]string{domain.LoanStatusPending, domain.LoanStatusActive}).
			Return(decimal.Zero, nil)
		mockCache.On("Set", mock.Anything, customer.ExternalID, mock.Anything).Return(nil)

		svc := service.NewCustomerService(mockCustomerRepo, mockLoanRepo, mockCache)

		balance, err := svc.GetBalance(context.Background(), customer.ExternalID)

		assert.NoError(t, err)
		assert.True(t, balance.TotalDebt.IsZero())
		assert.True(t, balance.AvailableAmount.Equal(customer.Score))
	})

	t.Run("cache failure degrades to the database", func(t *testing.T) {
		mockCustomerRepo := &mocks.MockCustomerRepository{}
		mockLoanRepo := &mocks.MockLoanRepository{}
		mockCache := &mocks.MockBalanceCache{}

		mockCache.On("Get", mock.Anything, customer.ExternalID).Return(nil, assert.AnError)
		mockCustomerRepo.On("GetByExternalID", mock.Anything, customer.ExternalID).Return(customer, nil)
		mockLoanRepo.On("SumOutstanding", mock.Anything, customer.ID, mock.Anything).
			Return(decimal.NewFromInt(900), nil)
		mockCache.On("Set", mock.Anything, customer.ExternalID, mock.Anything).Return(assert.AnError)

		svc := service.NewCustomerService(mockCustomerRepo, mockLoanRepo, mockCache)

		balance, err := svc.GetBalance(context.Background(), customer.ExternalID)

		assert.NoError(t, err)
		assert.True(t, balance.TotalDebt.Equal(decimal.NewFromInt(900)))
	})
}
